// Package handle implements the opaque, persistent file handle: a byte
// blob naming an inode durably within one export, comparable, hashable and
// serializable, with no pointers and no path embedded in it.
package handle

import "bytes"

// MaxHandleSize bounds the kernel-opaque portion of a handle blob. 128 bytes
// comfortably covers the struct file_handle payloads name_to_handle_at
// returns on every Linux filesystem in common use (ext4, xfs, btrfs all fit
// well under this), matching VFS_HANDLE_LEN in the FSAL this core is modeled
// on.
const MaxHandleSize = 128

// Blob is the opaque, position-independent handle value returned by
// name_to_handle_at and consumed by open_by_handle_at. Type is the kernel's
// handle_type discriminant (struct file_handle.handle_type) — it is
// filesystem-internal and opaque to us, but must be preserved byte-for-byte
// alongside Opaque to reopen the handle later. It owns a copy of the
// kernel-issued bytes; callers must not retain a Blob's Opaque() slice
// across structural mutation of the Blob, but Blob itself never mutates
// after construction.
type Blob struct {
	htype  int32
	opaque []byte // kernel-opaque handle bytes, length <= MaxHandleSize
}

// New copies opaque into a new Blob tagged with the kernel handle type
// htype. It panics if opaque exceeds MaxHandleSize or is empty — a
// zero-length handle must be rejected by every caller, and the cheapest
// place to enforce that is construction.
func New(htype int32, opaque []byte) Blob {
	if len(opaque) == 0 {
		panic("handle: empty opaque handle")
	}
	if len(opaque) > MaxHandleSize {
		panic("handle: opaque handle exceeds MaxHandleSize")
	}
	cp := make([]byte, len(opaque))
	copy(cp, opaque)
	return Blob{htype: htype, opaque: cp}
}

func (b Blob) Type() int32 { return b.htype }

// Opaque returns the kernel-issued bytes. The caller must not modify the
// returned slice.
func (b Blob) Opaque() []byte { return b.opaque }

func (b Blob) IsZero() bool { return len(b.opaque) == 0 }

// Equal holds the invariant that equality of (type, handle-length,
// handle-bytes) implies "same object". Here "type" is the kernel handle
// type, since two blobs can only name the same inode if the kernel agrees
// on how to interpret their opaque bytes.
func (a Blob) Equal(b Blob) bool {
	return a.htype == b.htype && bytes.Equal(a.opaque, b.opaque)
}

// Key returns a borrowed view suitable for use as a hash-table key. The
// view is only valid as long as the
// underlying Blob is kept alive by its owning object.Record; callers that
// need a durable key should copy it (e.g. via string(blob.Key())).
func (b Blob) Key() []byte {
	return b.opaque
}
