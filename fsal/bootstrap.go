//go:build linux

package fsal

import (
	"strings"

	"golang.org/x/sys/unix"

	fsalerrors "github.com/rwolafka/nfs-ganesha/errors"
	"github.com/rwolafka/nfs-ganesha/handle"
	"github.com/rwolafka/nfs-ganesha/kernel"
	"github.com/rwolafka/nfs-ganesha/object"
)

// RootLookupResult is what BootstrapRoot resolves an export's root path
// to: everything object.New needs to mint the root record, plus a
// conventionally-opened descriptor to the root itself. That descriptor is
// meant to be kept open for the export's lifetime and used as the mount_fd
// for every subsequent open_by_handle_at call against this export — it is
// on the same mount as every handle minted under it, which is all
// open_by_handle_at requires of its first argument.
type RootLookupResult struct {
	Handle    handle.Blob
	Kind      object.Kind
	Attrs     object.Attributes
	RootDirFD int
}

// BootstrapRoot resolves an absolute path to the root of an export without
// using the handle API for the parent: it splits at the last '/', opens
// the parent with a conventional open(), then
// resolves the leaf with name_to_handle_at. This runs once, before any
// export or object.Record exists — it is the one place in this module that
// uses a path-based open instead of a handle-based one, because by
// definition there is no handle yet for anything above the export root.
func BootstrapRoot(path string) (*RootLookupResult, error) {
	if !strings.HasPrefix(path, "/") {
		return nil, fsalerrors.New(fsalerrors.Inval, nil)
	}

	idx := strings.LastIndexByte(path, '/')
	parentPath := path[:idx]
	leaf := path[idx+1:]
	if parentPath == "" {
		parentPath = "/"
	}
	if leaf == "" {
		return nil, fsalerrors.New(fsalerrors.Inval, nil)
	}

	parentFD, err := kernel.Openat(unix.AT_FDCWD, parentPath, unix.O_RDONLY|unix.O_DIRECTORY, 0)
	if err != nil {
		return nil, err
	}
	defer kernel.Close(parentFD)

	st, err := kernel.Fstatat(parentFD, "", unix.AT_EMPTY_PATH)
	if err != nil {
		return nil, err
	}
	if st.Mode&unix.S_IFMT != unix.S_IFDIR {
		return nil, fsalerrors.New(fsalerrors.NotADirectory, nil)
	}

	h, _, err := kernel.NameToHandleAt(parentFD, leaf, unix.AT_SYMLINK_NOFOLLOW)
	if err != nil {
		return nil, err
	}

	rootDirFD, err := kernel.Openat(parentFD, leaf, unix.O_RDONLY|unix.O_DIRECTORY, 0)
	if err != nil {
		return nil, err
	}

	leafSt, err := kernel.Fstatat(rootDirFD, "", unix.AT_EMPTY_PATH)
	if err != nil {
		kernel.Close(rootDirFD)
		return nil, err
	}

	kind := object.KindFromMode(leafSt.Mode)
	attrs := kernel.AttributesFromStat(leafSt)

	if kind == object.SocketFile {
		// A socket can never be the root of an export (exports are mounted
		// subtrees, always directories in practice), but guard anyway: a
		// root-level socket has no usable parent handle here since rootDirFD
		// above would have failed to open it as O_DIRECTORY already.
		kernel.Close(rootDirFD)
		return nil, fsalerrors.New(fsalerrors.ServerFault, nil)
	}

	return &RootLookupResult{
		Handle:    h,
		Kind:      kind,
		Attrs:     attrs,
		RootDirFD: rootDirFD,
	}, nil
}
