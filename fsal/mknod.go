//go:build linux

package fsal

import (
	"golang.org/x/sys/unix"

	fsalerrors "github.com/rwolafka/nfs-ganesha/errors"
	"github.com/rwolafka/nfs-ganesha/kernel"
	"github.com/rwolafka/nfs-ganesha/object"
)

// Mknod creates a BLOCK_DEVICE, CHARACTER_DEVICE, FIFO or SOCKET_FILE.
// BLOCK/CHAR require a (major, minor) device tuple. For SOCKET, the
// resulting record's parent handle and name are populated by statChild,
// since open_by_handle_at cannot reach a socket directly.
func (c *Core) Mknod(parent *object.Record, name string, kind object.Kind, attrs object.Attributes, dev object.DeviceTuple) (*object.Record, error) {
	if name == "" {
		return nil, fsalerrors.New(fsalerrors.Inval, nil)
	}
	if err := requireDirectory(parent); err != nil {
		return nil, err
	}

	var modeType uint32
	var rdev uint64
	switch kind {
	case object.BlockDevice:
		modeType = unix.S_IFBLK
		rdev = dev.Rdev()
	case object.CharDevice:
		modeType = unix.S_IFCHR
		rdev = dev.Rdev()
	case object.FIFO:
		modeType = unix.S_IFIFO
	case object.SocketFile:
		modeType = unix.S_IFSOCK
	default:
		return nil, fsalerrors.New(fsalerrors.Inval, nil)
	}

	parentDirFD, err := c.openPathOnly(parent.Handle())
	if err != nil {
		return nil, err
	}
	defer kernel.Close(parentDirFD)

	if err := kernel.Mknodat(parentDirFD, name, modeType, rdev); err != nil {
		return nil, err
	}

	mode := attrs.Mode &^ c.export.Umask()
	return c.finishOrRollback(parentDirFD, name, false, mode, true, attrs)
}
