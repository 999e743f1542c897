//go:build linux

package fsal

import (
	"golang.org/x/sys/unix"

	fsalerrors "github.com/rwolafka/nfs-ganesha/errors"
	"github.com/rwolafka/nfs-ganesha/export"
	"github.com/rwolafka/nfs-ganesha/kernel"
	"github.com/rwolafka/nfs-ganesha/object"
)

// Symlink creates a SYMBOLIC_LINK named name within parent pointing at
// target. Requires the export's symlink_support capability. A failure
// after the link is created unlinks it, like mkdir.
func (c *Core) Symlink(parent *object.Record, name, target string, attrs object.Attributes) (*object.Record, error) {
	if !c.export.Supports(export.CapSymlink) {
		return nil, fsalerrors.New(fsalerrors.NotSupp, nil)
	}
	if name == "" {
		return nil, fsalerrors.New(fsalerrors.Inval, nil)
	}
	if err := requireDirectory(parent); err != nil {
		return nil, err
	}

	parentDirFD, err := c.openPathOnly(parent.Handle())
	if err != nil {
		return nil, err
	}
	defer kernel.Close(parentDirFD)

	if err := kernel.Symlinkat(target, parentDirFD, name); err != nil {
		return nil, err
	}

	child, err := c.finishOrRollback(parentDirFD, name, false, 0, false, attrs)
	if err != nil {
		return nil, err
	}

	child.Lock()
	child.Symlink().Target = target
	child.Symlink().Cached = true
	child.Unlock()

	return child, nil
}

// Readlink returns the cached target of a SYMBOLIC_LINK, refreshing the
// cache first if refresh is true or nothing is cached yet. buf must
// strictly exceed the target's length (including the NUL terminator) or
// this fails FAULT. The returned length is always the cached length,
// whichever branch was taken.
func (c *Core) Readlink(obj *object.Record, buf []byte, refresh bool) (int, error) {
	if obj.Kind() != object.SymbolicLink {
		return 0, fsalerrors.New(fsalerrors.Inval, nil)
	}

	obj.Lock()
	needRefresh := refresh || !obj.Symlink().Cached
	obj.Unlock()

	if needRefresh {
		pathFD, err := c.openPathOnly(obj.Handle())
		if err != nil {
			return 0, err
		}
		defer kernel.Close(pathFD)

		rbuf := make([]byte, unix.PathMax)
		n, err := kernel.Readlinkat(pathFD, "", rbuf)
		if err != nil {
			return 0, err
		}
		if n == len(rbuf) {
			return 0, fsalerrors.New(fsalerrors.NameTooLong, unix.ENAMETOOLONG)
		}

		obj.Lock()
		obj.Symlink().Target = string(rbuf[:n])
		obj.Symlink().Cached = true
		obj.Unlock()
	}

	obj.Lock()
	target := obj.Symlink().Target
	length := obj.Symlink().Len()
	obj.Unlock()

	if len(buf) <= length {
		return length, fsalerrors.New(fsalerrors.Fault, nil)
	}

	n := copy(buf, target)
	buf[n] = 0

	return length, nil
}
