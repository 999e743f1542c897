//go:build linux

// Package kernel is the thin, typed syscall adapter: it wraps
// open_by_handle_at, name_to_handle_at, the *at family, linkat, getdents and
// readlinkat, converting errno into the FSAL error taxonomy. open_by_handle_at
// and name_to_handle_at only exist on Linux, hence the build tag.
package kernel

import (
	"syscall"

	"golang.org/x/sys/unix"

	fsalerrors "github.com/rwolafka/nfs-ganesha/errors"
	"github.com/rwolafka/nfs-ganesha/handle"
)

// wrap turns a raw error from golang.org/x/sys/unix into an *errors.Error,
// applying only the default error table; callers that need the
// ENOENT-means-STALE or readlink-exact-fill special cases apply those
// themselves before falling back to wrap for anything else.
func wrap(err error) error {
	if err == nil {
		return nil
	}
	errno, ok := err.(syscall.Errno)
	if !ok {
		return fsalerrors.New(fsalerrors.ServerFault, err)
	}
	return fsalerrors.FromErrno(errno)
}

// OpenByHandleAt reopens a handle previously obtained from NameToHandleAt.
// Ownership of the returned fd transfers to the caller, who must release it
// on every exit path.
//
// An ENOENT here means the kernel no longer recognizes the handle: the
// object has been removed underneath the server. That is reported as STALE
// rather than the generic errno mapping.
func OpenByHandleAt(mountFD int, h handle.Blob, flags int) (int, error) {
	fh := unix.NewFileHandle(h.Type(), h.Opaque())
	fd, err := unix.OpenByHandleAt(mountFD, fh, flags)
	if err != nil {
		errno, _ := err.(syscall.Errno)
		if errno == syscall.ENOENT || errno == unix.ESTALE {
			return -1, fsalerrors.Stale(errno)
		}
		return -1, wrap(err)
	}
	return fd, nil
}

// NameToHandleAt resolves name within dirFD to a fresh handle and the mount
// ID it was minted under.
func NameToHandleAt(dirFD int, name string, flags int) (handle.Blob, int, error) {
	fh, mountID, err := unix.NameToHandleAt(dirFD, name, flags)
	if err != nil {
		return handle.Blob{}, 0, wrap(err)
	}
	return handle.New(fh.Type(), fh.Bytes()), mountID, nil
}

// Openat opens name within dirFD. Used by create's O_CREAT open and by
// BootstrapRoot's conventional opens; path-only FDs for handles come from
// OpenByHandleAt instead.
func Openat(dirFD int, name string, flags int, mode uint32) (int, error) {
	fd, err := unix.Openat(dirFD, name, flags, mode)
	if err != nil {
		return -1, wrap(err)
	}
	return fd, nil
}

// Fstatat stats name within dirFD (or the dirFD object itself when name is
// "" and flags includes AT_EMPTY_PATH).
func Fstatat(dirFD int, name string, flags int) (unix.Stat_t, error) {
	var st unix.Stat_t
	err := unix.Fstatat(dirFD, name, &st, flags)
	if err != nil {
		return unix.Stat_t{}, wrap(err)
	}
	return st, nil
}

func Mkdirat(dirFD int, name string, mode uint32) error {
	return wrap(unix.Mkdirat(dirFD, name, mode))
}

func Mknodat(dirFD int, name string, mode uint32, dev uint64) error {
	return wrap(unix.Mknodat(dirFD, name, mode, int(dev)))
}

func Symlinkat(target string, dirFD int, name string) error {
	return wrap(unix.Symlinkat(target, dirFD, name))
}

func Linkat(oldDirFD int, oldName string, newDirFD int, newName string, flags int) error {
	return wrap(unix.Linkat(oldDirFD, oldName, newDirFD, newName, flags))
}

func Renameat(oldDirFD int, oldName string, newDirFD int, newName string) error {
	return wrap(unix.Renameat(oldDirFD, oldName, newDirFD, newName))
}

func Unlinkat(dirFD int, name string, flags int) error {
	return wrap(unix.Unlinkat(dirFD, name, flags))
}

func Fchown(fd int, uid, gid int) error {
	return wrap(unix.Fchown(fd, uid, gid))
}

func Fchmod(fd int, mode uint32) error {
	return wrap(unix.Fchmod(fd, mode))
}

func Fchownat(dirFD int, name string, uid, gid, flags int) error {
	return wrap(unix.Fchownat(dirFD, name, uid, gid, flags))
}

func Fchmodat(dirFD int, name string, mode uint32) error {
	return wrap(unix.Fchmodat(dirFD, name, mode, 0))
}

// Futimesat sets the access and modification times of name within dirFD.
// Either timestamp may be the zero Timespec-with-UTIME_OMIT sentinel
// (unix.UTIME_OMIT) to leave that field untouched, which is how setattr
// preserves the side of the pair the caller didn't ask to change.
func Futimesat(dirFD int, name string, times [2]unix.Timespec, flags int) error {
	return wrap(unix.UtimesNanoAt(dirFD, name, times[:], flags))
}

func Ftruncate(fd int, length int64) error {
	return wrap(unix.Ftruncate(fd, length))
}

// Readlinkat reads the symlink at name within dirFD into buf. It returns the
// number of bytes written. If the kernel fills buf exactly we cannot
// tell whether the target was truncated, so the caller is expected to
// synthesize NAMETOOLONG in that case; this function only reports real
// errno failures.
func Readlinkat(dirFD int, name string, buf []byte) (int, error) {
	n, err := unix.Readlinkat(dirFD, name, buf)
	if err != nil {
		return 0, wrap(err)
	}
	return n, nil
}

// Getdents reads raw directory entries from fd into buf, returning the
// number of bytes read (0 at end of directory).
func Getdents(fd int, buf []byte) (int, error) {
	n, err := unix.Getdents(fd, buf)
	if err != nil {
		return 0, wrap(err)
	}
	return n, nil
}

// Seek repositions fd, used by readdir to resume at a cookie's raw offset.
func Seek(fd int, offset int64, whence int) (int64, error) {
	off, err := unix.Seek(fd, offset, whence)
	if err != nil {
		return 0, wrap(err)
	}
	return off, nil
}

// Close releases fd. It is idempotent against EBADF (a double-close is a
// programmer error elsewhere, not something this adapter should panic on)
// so call sites can always defer kernel.Close without tracking whether an
// earlier path already closed it.
func Close(fd int) error {
	if fd < 0 {
		return nil
	}
	err := unix.Close(fd)
	if err == syscall.EBADF {
		return nil
	}
	return wrap(err)
}
