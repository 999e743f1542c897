//go:build linux

package fsal

import (
	"golang.org/x/sys/unix"

	fsalerrors "github.com/rwolafka/nfs-ganesha/errors"
	"github.com/rwolafka/nfs-ganesha/kernel"
	"github.com/rwolafka/nfs-ganesha/object"
)

// Create makes a new regular file. It opens with
// O_CREAT|O_WRONLY|O_TRUNC|O_EXCL at mode 0000, then chowns/chmods to the
// requested owner/group/mode (mode masked by the export umask; group is
// inherited from parent when parent has the set-gid bit).
//
// If chown, chmod or the post-create stat fails, the zero-mode file is
// left in place — create is explicitly exempted from the
// unlink-on-failure rule every other creating operation follows. This
// mirrors historical FSAL_VFS behavior rather than being the "obviously
// correct" choice; see DESIGN.md.
func (c *Core) Create(parent *object.Record, name string, attrs object.Attributes) (*object.Record, error) {
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

	fd, err := kernel.Openat(parentDirFD, name, unix.O_CREAT|unix.O_WRONLY|unix.O_TRUNC|unix.O_EXCL, 0000)
	if err != nil {
		return nil, err
	}
	defer kernel.Close(fd)

	gid := attrs.GID
	parentSt, err := kernel.Fstatat(parentDirFD, "", unix.AT_EMPTY_PATH)
	if err != nil {
		return nil, err
	}
	if parentSt.Mode&unix.S_ISGID != 0 {
		gid = parentSt.Gid
	}

	if err := kernel.Fchown(fd, int(attrs.UID), int(gid)); err != nil {
		return nil, err
	}

	mode := attrs.Mode &^ c.export.Umask()
	if err := kernel.Fchmod(fd, mode); err != nil {
		return nil, err
	}

	child, err := c.statChild(parentDirFD, name)
	if err != nil {
		return nil, err
	}

	return child, nil
}
