//go:build linux

package fsal

import (
	"github.com/rwolafka/nfs-ganesha/handle"
	"github.com/rwolafka/nfs-ganesha/object"
)

// Capability is the upward-facing polymorphic capability set, the FSAL
// core's contract with the protocol layer above it. *Core is the sole
// implementer; object.Record stays a passive state container.
type Capability interface {
	Lookup(parent *object.Record, name string) (*object.Record, error)
	Readdir(dir *object.Record, limit int, whence []byte, cb ReaddirCallback) (eof bool, err error)
	Create(parent *object.Record, name string, attrs object.Attributes) (*object.Record, error)
	Mkdir(parent *object.Record, name string, attrs object.Attributes) (*object.Record, error)
	Mknod(parent *object.Record, name string, kind object.Kind, attrs object.Attributes, dev object.DeviceTuple) (*object.Record, error)
	Symlink(parent *object.Record, name, target string, attrs object.Attributes) (*object.Record, error)
	Readlink(obj *object.Record, buf []byte, refresh bool) (int, error)
	Link(src, destDir *object.Record, name string) error
	Rename(oldDir *object.Record, oldName string, newDir *object.Record, newName string) error
	Unlink(dir *object.Record, name string) error
	Truncate(obj *object.Record, length int64) error
	Getattr(obj *object.Record, mask object.AttrMask) (object.Attributes, error)
	Setattr(obj *object.Record, attrs object.Attributes) error
	Compare(a, b *object.Record) bool
	HandleDigest(r *object.Record, kind handle.DigestKind, dst []byte) (int, error)
	HandleToKey(r *object.Record) []byte
	Acquire(r *object.Record)
	Release(r *object.Record) error
	HandleIs(r *object.Record, kind object.Kind) bool
}

var _ Capability = (*Core)(nil)

// Compare reports whether a and b name the same inode.
func (c *Core) Compare(a, b *object.Record) bool {
	return a.Handle().Equal(b.Handle())
}

// HandleDigest encodes r's handle into dst in the given wire form.
func (c *Core) HandleDigest(r *object.Record, kind handle.DigestKind, dst []byte) (int, error) {
	return handle.Encode(r.Handle(), kind, dst)
}

// HandleToKey returns a borrowed view of r's handle bytes for hash-table
// use. Valid only while r is held.
func (c *Core) HandleToKey(r *object.Record) []byte {
	return r.Handle().Key()
}

// HandleIs reports whether r is of the given object kind.
func (c *Core) HandleIs(r *object.Record, kind object.Kind) bool {
	return r.Kind() == kind
}
