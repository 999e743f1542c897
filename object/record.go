// Package object implements the per-object state: the handle blob, cached
// attributes, kind-specific payload, reference count and lock that
// together make up one live file-system entity.
package object

import (
	"sync"

	"github.com/rwolafka/nfs-ganesha/handle"
)

// Registry is the export-side attach/detach surface a Record is bound to.
// export.Export implements it; object does not import export to avoid a
// cycle — readers of a Record only ever need to tell its registry "I'm
// fully initialized" or "I'm gone".
type Registry interface {
	Attach(*Record)
	Detach(*Record)
}

// RegularPayload is the REGULAR_FILE kind-specific payload: the current
// FD (FD == -1 means closed), the flags it was opened with, and
// whether a byte-range lock is currently held through it. The FD is the
// only long-lived descriptor this module keeps; every tree operation
// otherwise opens and closes its own scratch FDs.
type RegularPayload struct {
	FD        int
	OpenFlags int
	LockHeld  bool
}

func (p *RegularPayload) IsOpen() bool { return p.FD >= 0 }

// SymlinkPayload is the SYMBOLIC_LINK kind-specific payload: a lazily
// populated cache of the link target. The NUL terminator is not stored,
// but Len counts it.
type SymlinkPayload struct {
	Target string // without the NUL terminator
	Cached bool
}

// Len returns the cached length including the NUL terminator, or 0 if
// nothing is cached yet.
func (p *SymlinkPayload) Len() int {
	if !p.Cached {
		return 0
	}
	return len(p.Target) + 1
}

// SocketPayload is the SOCKET_FILE kind-specific payload: sockets cannot be
// reached through open_by_handle_at, so the record instead remembers how
// to reach them through their parent directory.
type SocketPayload struct {
	ParentHandle handle.Blob
	Name         string
}

// Record is one live file-system object.
type Record struct {
	mu sync.Mutex

	// Immutable for the life of the record.
	h        handle.Blob
	kind     Kind
	registry Registry

	// GUARDED_BY(mu)
	attrs Attributes
	// GUARDED_BY(mu)
	refcount uint64

	// At most one of these is non-nil, selected by kind (regular files,
	// symlinks and sockets; other kinds have none). GUARDED_BY(mu)
	regular *RegularPayload
	symlink *SymlinkPayload
	socket  *SocketPayload
}

// New allocates a record with ref count 1, attaches it to registry, and
// returns it locked-free and ready to use. The caller is
// responsible for populating any kind-specific payload via the Regular/
// Symlink/Socket accessors before publishing the record to other goroutines.
func New(h handle.Blob, kind Kind, attrs Attributes, registry Registry) *Record {
	r := &Record{
		h:        h,
		kind:     kind,
		attrs:    attrs,
		refcount: 1,
		registry: registry,
	}

	switch kind {
	case RegularFile:
		r.regular = &RegularPayload{FD: -1}
	case SymbolicLink:
		r.symlink = &SymlinkPayload{}
	case SocketFile:
		r.socket = &SocketPayload{}
	}

	r.mu.Lock()
	registry.Attach(r)
	r.mu.Unlock()

	return r
}

func (r *Record) Handle() handle.Blob { return r.h }
func (r *Record) Kind() Kind          { return r.kind }

func (r *Record) Lock()   { r.mu.Lock() }
func (r *Record) Unlock() { r.mu.Unlock() }

// Attributes returns a copy of the cached attributes snapshot.
// REQUIRES: the caller holds the record lock.
func (r *Record) Attributes() Attributes { return r.attrs }

// SetAttributes replaces the cached attributes snapshot.
// REQUIRES: the caller holds the record lock.
func (r *Record) SetAttributes(a Attributes) { r.attrs = a }

// Regular returns the REGULAR_FILE payload, or nil if this record is not a
// regular file. REQUIRES: the caller holds the record lock.
func (r *Record) Regular() *RegularPayload { return r.regular }

// Symlink returns the SYMBOLIC_LINK payload, or nil otherwise.
// REQUIRES: the caller holds the record lock.
func (r *Record) Symlink() *SymlinkPayload { return r.symlink }

// Socket returns the SOCKET_FILE payload, or nil otherwise.
// REQUIRES: the caller holds the record lock.
func (r *Record) Socket() *SocketPayload { return r.socket }

// Acquire increments the reference count.
// REQUIRES: the caller holds the record lock.
func (r *Record) Acquire() {
	r.refcount++
}

// quiescent reports whether this record may be destroyed: ref count zero
// and, for REGULAR_FILE, no open FD and no held lock.
// REQUIRES: the caller holds the record lock.
func (r *Record) quiescent() bool {
	if r.refcount != 0 {
		return false
	}
	if r.regular != nil && (r.regular.IsOpen() || r.regular.LockHeld) {
		return false
	}
	return true
}

// ReleaseResult is the outcome of Release.
type ReleaseResult uint8

const (
	// ReleaseDestroyed means the record hit ref count zero, was quiescent,
	// and has been detached and torn down. The caller must not use it again.
	ReleaseDestroyed ReleaseResult = iota
	// ReleaseBusy means the ref count is still positive.
	ReleaseBusy
	// ReleaseOpen means the ref count reached zero but the record is a
	// REGULAR_FILE with an open FD or a held lock.
	ReleaseOpen
)

// Release decrements the reference count and, if it reaches zero and the
// record is quiescent, detaches it from its registry and tears it down.
// The caller must hold the record lock on entry;
// Release always leaves it unlocked on return, whatever the outcome,
// because a destroyed record has no lock left to hold and a record that
// stays alive should not be left locked by a release call.
func (r *Record) Release() ReleaseResult {
	defer r.mu.Unlock()

	if r.refcount == 0 {
		panic("object: Release called with ref count already zero")
	}
	r.refcount--

	if r.refcount != 0 {
		return ReleaseBusy
	}
	if !r.quiescent() {
		return ReleaseOpen
	}

	r.registry.Detach(r)
	r.regular = nil
	r.symlink = nil
	r.socket = nil
	return ReleaseDestroyed
}
