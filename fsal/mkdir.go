//go:build linux

package fsal

import (
	"golang.org/x/sys/unix"

	fsalerrors "github.com/rwolafka/nfs-ganesha/errors"
	"github.com/rwolafka/nfs-ganesha/kernel"
	"github.com/rwolafka/nfs-ganesha/object"
)

// Mkdir creates a directory. Unlike Create, a failure after the
// directory is created unlinks it before returning, so the caller either
// gets a usable record or the parent is left unchanged. It is created at
// mode 0 and chmod'd to the requested mode afterward, so the owning
// process's own umask never gets a second chance to mask it on top of the
// export's umask.
func (c *Core) Mkdir(parent *object.Record, name string, attrs object.Attributes) (*object.Record, error) {
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

	if err := kernel.Mkdirat(parentDirFD, name, 0); err != nil {
		return nil, err
	}

	mode := attrs.Mode &^ c.export.Umask()
	child, err := c.finishOrRollback(parentDirFD, name, true, mode, true, attrs)
	return child, err
}

// finishOrRollback runs the chown + (optional chmod) + stat tail shared by
// mkdir, mknod and symlink: on any failure it unlinks the just-created
// entry and returns the original error, so the directory is left unchanged
// rather than holding a half-initialized child. Group ownership is
// inherited from the parent directory, read fresh, when the parent has the
// set-gid bit. chmod is skipped for symlinks: POSIX chmod on a symlink name
// affects the target, not the link, so mode is simply never applied there.
func (c *Core) finishOrRollback(parentDirFD int, name string, isDir bool, mode uint32, chmod bool, attrs object.Attributes) (*object.Record, error) {
	gid, err := inheritedGID(parentDirFD, attrs.GID)
	if err != nil {
		rollbackPartialChild(parentDirFD, name, isDir)
		return nil, err
	}

	if err := kernel.Fchownat(parentDirFD, name, int(attrs.UID), int(gid), unix.AT_SYMLINK_NOFOLLOW); err != nil {
		rollbackPartialChild(parentDirFD, name, isDir)
		return nil, err
	}

	if chmod {
		if err := kernel.Fchmodat(parentDirFD, name, mode); err != nil {
			rollbackPartialChild(parentDirFD, name, isDir)
			return nil, err
		}
	}

	child, err := c.statChild(parentDirFD, name)
	if err != nil {
		rollbackPartialChild(parentDirFD, name, isDir)
		return nil, err
	}

	return child, nil
}
