//go:build linux

package fsal

import (
	"golang.org/x/sys/unix"

	fsalerrors "github.com/rwolafka/nfs-ganesha/errors"
	"github.com/rwolafka/nfs-ganesha/kernel"
	"github.com/rwolafka/nfs-ganesha/object"
)

// Truncate sets obj's size to length. Regular files only; anything else
// fails INVAL. Opens with write access through the handle and calls
// ftruncate on the fresh descriptor — never the cached FD in
// obj.Regular(), which may not even be open.
func (c *Core) Truncate(obj *object.Record, length int64) error {
	if obj.Kind() != object.RegularFile {
		return fsalerrors.New(fsalerrors.Inval, nil)
	}

	fd, err := kernel.OpenByHandleAt(c.export.RootFD(), obj.Handle(), unix.O_WRONLY)
	if err != nil {
		return err
	}
	defer kernel.Close(fd)

	return kernel.Ftruncate(fd, length)
}
