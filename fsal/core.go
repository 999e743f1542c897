//go:build linux

// Package fsal implements the tree operation suite — lookup, create,
// mkdir, mknod, symlink, readlink, link, rename, unlink, truncate, getattr,
// setattr and readdir — plus record acquire/release, on top of the handle,
// object and export packages. Core implements the upward capability set;
// object.Record itself stays a passive state container.
package fsal

import (
	"golang.org/x/sys/unix"

	fsalerrors "github.com/rwolafka/nfs-ganesha/errors"
	"github.com/rwolafka/nfs-ganesha/export"
	"github.com/rwolafka/nfs-ganesha/handle"
	"github.com/rwolafka/nfs-ganesha/kernel"
	"github.com/rwolafka/nfs-ganesha/object"
)

// Core is the one implementer of the upward capability set. It holds no
// per-call state; every method re-derives whatever FDs it needs from the
// handles in the object.Record arguments rather than keeping descriptors
// open across calls.
type Core struct {
	export *export.Export
}

func NewCore(exp *export.Export) *Core {
	return &Core{export: exp}
}

func (c *Core) Export() *export.Export { return c.export }

// openPathOnly re-opens a record's handle as a path-only FD
// (O_PATH|O_NOFOLLOW). The caller owns the returned FD and must close it
// on every exit path.
func (c *Core) openPathOnly(h handle.Blob) (int, error) {
	return kernel.OpenByHandleAt(c.export.RootFD(), h, unix.O_PATH|unix.O_NOFOLLOW)
}

// requireDirectory implements step 1 of the common protocol: fail
// NOT_A_DIRECTORY if parent isn't one.
func requireDirectory(parent *object.Record) error {
	if parent.Kind() != object.Directory {
		return fsalerrors.New(fsalerrors.NotADirectory, nil)
	}
	return nil
}

// statChild performs step 5 of the common protocol for a freshly created or
// looked-up child: it resolves name within parentDirFD to a fresh handle,
// stats it through a path-only re-open (closed before returning), and
// returns a populated Record, already attached to the export by object.New.
func (c *Core) statChild(parentDirFD int, name string) (*object.Record, error) {
	h, _, err := kernel.NameToHandleAt(parentDirFD, name, unix.AT_SYMLINK_NOFOLLOW)
	if err != nil {
		return nil, err
	}

	childFD, err := c.openPathOnly(h)
	if err != nil {
		return nil, err
	}
	defer kernel.Close(childFD)

	st, err := kernel.Fstatat(childFD, "", unix.AT_EMPTY_PATH|unix.AT_SYMLINK_NOFOLLOW)
	if err != nil {
		return nil, err
	}

	kind := object.KindFromMode(st.Mode)
	attrs := kernel.AttributesFromStat(st)

	r := object.New(h, kind, attrs, c.export)

	if kind == object.SocketFile {
		r.Lock()
		r.Socket().ParentHandle = lookupParentHandle(parentDirFD)
		r.Socket().Name = name
		r.Unlock()
	}

	return r, nil
}

// lookupParentHandle resolves parentDirFD's own handle via
// name_to_handle_at(dirfd, "", AT_EMPTY_PATH), used to populate a freshly
// minted SOCKET_FILE record's parent-handle field.
// Failure here is not fatal to the caller that's in the middle of creating
// or looking up the socket; an empty Blob is returned and the zero value is
// simply never a valid handle, so later reopen attempts will fail cleanly
// instead of silently using the wrong parent.
func lookupParentHandle(parentDirFD int) handle.Blob {
	h, _, err := kernel.NameToHandleAt(parentDirFD, "", unix.AT_EMPTY_PATH)
	if err != nil {
		return handle.Blob{}
	}
	return h
}

// inheritedGID returns attrs.GID, except when parentDirFD's directory has
// the set-gid bit set, in which case the directory's own group is
// inherited instead. The check is against a fresh stat of the directory,
// never a cached object.Record, since a concurrent chmod +s on the parent
// must be observed.
func inheritedGID(parentDirFD int, gid uint32) (uint32, error) {
	st, err := kernel.Fstatat(parentDirFD, "", unix.AT_EMPTY_PATH)
	if err != nil {
		return 0, err
	}
	if st.Mode&unix.S_ISGID != 0 {
		return st.Gid, nil
	}
	return gid, nil
}

// rollbackPartialChild implements the "unlink the partially created child"
// requirement shared by mkdir, mknod and symlink: they must
// restore the directory to its prior state if any step after the child was
// created fails. create() is exempted and never calls this.
func rollbackPartialChild(parentDirFD int, name string, isDir bool) {
	flags := 0
	if isDir {
		flags = unix.AT_REMOVEDIR
	}
	// Best-effort: the original error from the failing step is what gets
	// returned, never this one.
	_ = kernel.Unlinkat(parentDirFD, name, flags)
}
