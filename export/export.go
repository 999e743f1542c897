// Package export implements the per-export intrusive set of live object
// records and the sideways registry interface the core consumes from its
// owning export.
package export

import (
	"encoding/binary"
	"sync"

	"github.com/rwolafka/nfs-ganesha/object"
)

// Capability names an optional export behavior.
type Capability string

const (
	// CapLink gates the link() operation.
	CapLink Capability = "link_support"
	// CapSymlink gates symlink()/readlink().
	CapSymlink Capability = "symlink_support"
	// CapChownRestricted mirrors POSIX _PC_CHOWN_RESTRICTED: only root may
	// change ownership.
	CapChownRestricted Capability = "chown_restricted"
)

// Export owns the long-lived root FD that anchors all handle resolution
// for this subtree, the export's umask, its supported-attributes mask, and
// its capability set, plus the registry of every live Record minted under
// it.
type Export struct {
	rootFD int
	umask  uint32
	attrs  object.AttrMask
	caps   map[Capability]bool

	mu      sync.Mutex
	records map[string]*object.Record // keyed by KeyOf(handle): type prefix + handle.Blob.Key()
}

// New constructs an Export anchored at rootFD (a path-only FD to the
// exported subtree's root, already opened by the caller).
func New(rootFD int, umask uint32, supportedAttrs object.AttrMask, caps ...Capability) *Export {
	e := &Export{
		rootFD:  rootFD,
		umask:   umask,
		attrs:   supportedAttrs,
		caps:    make(map[Capability]bool, len(caps)),
		records: make(map[string]*object.Record),
	}
	for _, c := range caps {
		e.caps[c] = true
	}
	return e
}

func (e *Export) RootFD() int                    { return e.rootFD }
func (e *Export) Umask() uint32                  { return e.umask }
func (e *Export) SupportedAttrs() object.AttrMask { return e.attrs }

func (e *Export) Supports(c Capability) bool {
	return e.caps[c]
}

func keyOf(r *object.Record) string {
	return KeyOf(r.Handle())
}

// Attach adds r to the registry. This is called while r's own lock is
// held, so r only becomes observable to Lookup once it is fully
// initialized.
func (e *Export) Attach(r *object.Record) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.records[keyOf(r)] = r
}

// Detach removes r from the registry.
func (e *Export) Detach(r *object.Record) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.records, keyOf(r))
}

// Lookup returns the live record for this handle key, if any. It does not
// acquire a reference; callers must lock and Acquire it themselves before
// use.
func (e *Export) Lookup(key string) (*object.Record, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, ok := e.records[key]
	return r, ok
}

// KeyOf derives the registry key for a handle, for callers that need to
// look one up without constructing a Record first (e.g. resolving a digest
// freshly decoded off the wire). The kernel handle type is folded in so two
// filesystems that happen to mint identical opaque bytes under different
// types never collide.
func KeyOf(h interface{ Key() []byte; Type() int32 }) string {
	var typeBytes [4]byte
	binary.LittleEndian.PutUint32(typeBytes[:], uint32(h.Type()))
	return string(typeBytes[:]) + string(h.Key())
}

// Count returns the number of live records, for tests and diagnostics.
func (e *Export) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.records)
}
