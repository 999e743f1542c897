//go:build linux

package fsal

import (
	"golang.org/x/sys/unix"

	"github.com/rwolafka/nfs-ganesha/handle"
	"github.com/rwolafka/nfs-ganesha/kernel"
	"github.com/rwolafka/nfs-ganesha/object"
)

// ReaddirCallback receives one directory entry. name must not be retained
// beyond the call. Returning cont=false stops the
// scan early without that counting as an error or as hitting eof.
type ReaddirCallback func(name string, dtype uint8, parent handle.Blob, cookie []byte) (cont bool, err error)

const readdirBufSize = 32 * 1024

// Readdir scans dir starting at the opaque cookie whence, invoking cb for
// each entry other than "." and "..", stopping at eof, at limit entries, or
// when cb returns cont=false or an error. eof is true
// only when the kernel itself reported end of directory.
func (c *Core) Readdir(dir *object.Record, limit int, whence []byte, cb ReaddirCallback) (bool, error) {
	if err := requireDirectory(dir); err != nil {
		return false, err
	}

	offset, err := kernel.DecodeCookie(whence)
	if err != nil {
		return false, err
	}

	fd, err := kernel.OpenByHandleAt(c.export.RootFD(), dir.Handle(), unix.O_RDONLY|unix.O_DIRECTORY)
	if err != nil {
		return false, err
	}
	defer kernel.Close(fd)

	if offset != 0 {
		if _, err := kernel.Seek(fd, offset, unix.SEEK_SET); err != nil {
			return false, err
		}
	}

	buf := make([]byte, readdirBufSize)
	count := 0

	for {
		n, err := kernel.Getdents(fd, buf)
		if err != nil {
			return false, err
		}
		if n == 0 {
			return true, nil
		}

		entries, err := kernel.ParseDirents(buf[:n])
		if err != nil {
			return false, err
		}

		for _, e := range entries {
			if e.Name == "." || e.Name == ".." {
				continue
			}

			cont, err := cb(e.Name, e.Type, dir.Handle(), kernel.EncodeCookie(e.Off))
			if err != nil {
				return false, err
			}
			count++

			if !cont || count >= limit {
				return false, nil
			}
		}
	}
}
