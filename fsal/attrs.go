//go:build linux

package fsal

import (
	"strconv"

	"golang.org/x/sys/unix"

	fsalerrors "github.com/rwolafka/nfs-ganesha/errors"
	"github.com/rwolafka/nfs-ganesha/kernel"
	"github.com/rwolafka/nfs-ganesha/object"
)

// attrTarget abstracts over the two ways an object can be reached for
// attribute operations: through its own descriptor with AT_EMPTY_PATH (the
// common case), or through its parent directory's descriptor plus its name
// (SOCKET_FILE, which open_by_handle_at cannot return an FD for at all).
type attrTarget struct {
	dirFD int // either the object's own FD (fd case) or its parent's (name case)
	name  string
	own   bool // true: dirFD is the object's own FD, use AT_EMPTY_PATH; false: use name
}

func (t attrTarget) stat() (unix.Stat_t, error) {
	if t.own {
		return kernel.Fstatat(t.dirFD, "", unix.AT_EMPTY_PATH|unix.AT_SYMLINK_NOFOLLOW)
	}
	return kernel.Fstatat(t.dirFD, t.name, unix.AT_SYMLINK_NOFOLLOW)
}

func (t attrTarget) chown(uid, gid int) error {
	if t.own {
		return kernel.Fchownat(t.dirFD, "", uid, gid, unix.AT_EMPTY_PATH|unix.AT_SYMLINK_NOFOLLOW)
	}
	return kernel.Fchownat(t.dirFD, t.name, uid, gid, unix.AT_SYMLINK_NOFOLLOW)
}

func (t attrTarget) chmod(mode uint32) error {
	if t.own {
		// fchmodat takes no AT_EMPTY_PATH and fchmod rejects O_PATH
		// descriptors, so the object's own FD is reached through its
		// /proc/self/fd entry.
		return kernel.Fchmodat(unix.AT_FDCWD, "/proc/self/fd/"+strconv.Itoa(t.dirFD), mode)
	}
	return kernel.Fchmodat(t.dirFD, t.name, mode)
}

func (t attrTarget) utimes(times [2]unix.Timespec) error {
	flags := unix.AT_SYMLINK_NOFOLLOW
	name := t.name
	if t.own {
		name = ""
		flags |= unix.AT_EMPTY_PATH
	}
	return kernel.Futimesat(t.dirFD, name, times, flags)
}

// openAttrTarget implements the open rules shared by getattr and setattr:
// sockets go through their parent + name, symlinks and everything else
// path-only except FIFOs, which need a real (non-blocking) descriptor to
// avoid the open-blocks-until-a-reader-shows-up deadlock.
func (c *Core) openAttrTarget(obj *object.Record) (attrTarget, func(), error) {
	if obj.Kind() == object.SocketFile {
		obj.Lock()
		parentHandle := obj.Socket().ParentHandle
		name := obj.Socket().Name
		obj.Unlock()

		if parentHandle.IsZero() || name == "" {
			return attrTarget{}, func() {}, fsalerrors.New(fsalerrors.ServerFault, nil)
		}

		parentFD, err := c.openPathOnly(parentHandle)
		if err != nil {
			return attrTarget{}, func() {}, err
		}
		return attrTarget{dirFD: parentFD, name: name, own: false}, func() { kernel.Close(parentFD) }, nil
	}

	flags := unix.O_PATH | unix.O_NOFOLLOW
	if obj.Kind() == object.FIFO {
		flags = unix.O_RDONLY | unix.O_NONBLOCK
	}

	fd, err := kernel.OpenByHandleAt(c.export.RootFD(), obj.Handle(), flags)
	if err != nil {
		return attrTarget{}, func() {}, err
	}
	return attrTarget{dirFD: fd, own: true}, func() { kernel.Close(fd) }, nil
}

// Getattr refreshes and returns obj's attributes for the fields in mask.
// On a mask this export doesn't support it clears the cached mask, sets
// RdAttrErr and fails ATTRNOTSUPP before any syscall. AttributesFromStat
// cannot itself fail (see kernel.AttributesFromStat), so an unsupported
// mask is the only way RdAttrErr gets set.
func (c *Core) Getattr(obj *object.Record, mask object.AttrMask) (object.Attributes, error) {
	unsupported := mask &^ c.export.SupportedAttrs()
	if unsupported != 0 {
		obj.Lock()
		attrs := obj.Attributes()
		attrs.Mask = 0
		attrs.RdAttrErr = true
		obj.SetAttributes(attrs)
		result := attrs
		obj.Unlock()
		return result, fsalerrors.New(fsalerrors.AttrNotSupp, nil)
	}

	target, release, err := c.openAttrTarget(obj)
	if err != nil {
		return object.Attributes{}, err
	}
	defer release()

	st, err := target.stat()
	if err != nil {
		return object.Attributes{}, err
	}

	attrs := kernel.AttributesFromStat(st)
	attrs.Mask &= mask

	obj.Lock()
	obj.SetAttributes(attrs)
	obj.Unlock()

	return attrs, nil
}

// Setattr applies the fields set in attrs.Mask to obj. chmod is silently
// skipped for SYMBOLIC_LINK per POSIX. Ownership changes use -1 sentinels
// for the unspecified side. If only one of atime/mtime is requested, the
// other is passed as UTIME_OMIT so the kernel leaves it untouched.
func (c *Core) Setattr(obj *object.Record, attrs object.Attributes) error {
	target, release, err := c.openAttrTarget(obj)
	if err != nil {
		return err
	}
	defer release()

	if attrs.Mask.Has(object.AttrMode) && obj.Kind() != object.SymbolicLink {
		mode := attrs.Mode &^ c.export.Umask()
		if err := target.chmod(mode); err != nil {
			return err
		}
	}

	if attrs.Mask.Has(object.AttrUID) || attrs.Mask.Has(object.AttrGID) {
		uid, gid := -1, -1
		if attrs.Mask.Has(object.AttrUID) {
			uid = int(attrs.UID)
		}
		if attrs.Mask.Has(object.AttrGID) {
			gid = int(attrs.GID)
		}
		if err := target.chown(uid, gid); err != nil {
			return err
		}
	}

	wantATime := attrs.Mask.Has(object.AttrATime)
	wantMTime := attrs.Mask.Has(object.AttrMTime)
	if wantATime || wantMTime {
		times := [2]unix.Timespec{
			{Nsec: int64(unix.UTIME_OMIT)},
			{Nsec: int64(unix.UTIME_OMIT)},
		}

		if wantATime {
			times[0] = unix.NsecToTimespec(attrs.ATime.UnixNano())
		}
		if wantMTime {
			times[1] = unix.NsecToTimespec(attrs.MTime.UnixNano())
		}
		// If only one side was requested, the other keeps UTIME_OMIT so the
		// kernel leaves it untouched and a fresh stat below reflects
		// whatever it already was — we never need to read-then-write it
		// ourselves.
		if err := target.utimes(times); err != nil {
			return err
		}
	}

	st, err := target.stat()
	if err != nil {
		return err
	}

	obj.Lock()
	obj.SetAttributes(kernel.AttributesFromStat(st))
	obj.Unlock()

	return nil
}
