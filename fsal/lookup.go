//go:build linux

package fsal

import (
	"golang.org/x/sys/unix"

	fsalerrors "github.com/rwolafka/nfs-ganesha/errors"
	"github.com/rwolafka/nfs-ganesha/kernel"
	"github.com/rwolafka/nfs-ganesha/object"
)

// Lookup resolves name within parent and returns a fresh, ref-counted
// record for the child. It follows neither "." nor "..", caches the
// symlink target for SYMBOLIC_LINK children, and remembers (parent
// handle, name) for SOCKET_FILE children, which must always be populated
// since a socket can never be reopened through its own handle. A name that
// does not exist in parent fails STALE.
func (c *Core) Lookup(parent *object.Record, name string) (*object.Record, error) {
	if name == "" {
		return nil, fsalerrors.New(fsalerrors.Inval, nil)
	}
	if name == "." || name == ".." {
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

	child, err := c.statChild(parentDirFD, name)
	if err != nil {
		if fe, ok := err.(*fsalerrors.Error); ok && fe.Err == unix.ENOENT {
			return nil, fsalerrors.Stale(unix.ENOENT)
		}
		return nil, err
	}

	if child.Kind() == object.SymbolicLink {
		if rerr := c.refreshSymlinkCache(child, parentDirFD, name); rerr != nil {
			// Lookup itself still succeeds without a primed cache; the next
			// Readlink call will refresh it.
			_ = rerr
		}
	}

	return child, nil
}

// refreshSymlinkCache reads the link target through dirFD/name and caches
// it on child, taking child's lock itself to store the result, so the
// caller must not hold that lock.
func (c *Core) refreshSymlinkCache(child *object.Record, dirFD int, name string) error {
	buf := make([]byte, unix.PathMax)
	n, err := kernel.Readlinkat(dirFD, name, buf)
	if err != nil {
		return err
	}
	if n == len(buf) {
		return fsalerrors.New(fsalerrors.NameTooLong, unix.ENAMETOOLONG)
	}

	child.Lock()
	child.Symlink().Target = string(buf[:n])
	child.Symlink().Cached = true
	child.Unlock()
	return nil
}
