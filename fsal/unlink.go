//go:build linux

package fsal

import (
	"golang.org/x/sys/unix"

	fsalerrors "github.com/rwolafka/nfs-ganesha/errors"
	"github.com/rwolafka/nfs-ganesha/kernel"
	"github.com/rwolafka/nfs-ganesha/object"
)

// Unlink removes name from dir. It first stats the child to decide
// whether AT_REMOVEDIR is needed, so that removing a directory entry
// always goes through rmdir semantics and removing anything else always
// goes through unlink semantics — the kernel itself enforces
// EISDIR/ENOTDIR if the caller picks the wrong one, and that errno is
// propagated unchanged.
func (c *Core) Unlink(dir *object.Record, name string) error {
	if name == "" {
		return fsalerrors.New(fsalerrors.Inval, nil)
	}
	if err := requireDirectory(dir); err != nil {
		return err
	}

	dirFD, err := c.openPathOnly(dir.Handle())
	if err != nil {
		return err
	}
	defer kernel.Close(dirFD)

	st, err := kernel.Fstatat(dirFD, name, unix.AT_SYMLINK_NOFOLLOW)
	if err != nil {
		return err
	}

	flags := 0
	if object.KindFromMode(st.Mode) == object.Directory {
		flags = unix.AT_REMOVEDIR
	}

	return kernel.Unlinkat(dirFD, name, flags)
}
