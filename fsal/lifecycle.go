//go:build linux

package fsal

import (
	fsalerrors "github.com/rwolafka/nfs-ganesha/errors"
	"github.com/rwolafka/nfs-ganesha/object"
)

// Acquire increments r's reference count.
func (c *Core) Acquire(r *object.Record) {
	r.Lock()
	r.Acquire()
	r.Unlock()
}

// Release decrements r's reference count, destroying it if that was the
// last reference and it is quiescent. It returns nil when the record was
// destroyed, BUSY if the ref count is still positive, and INVAL if the ref
// count reached zero but a REGULAR_FILE's descriptor is still open or its
// lock bit is still held.
func (c *Core) Release(r *object.Record) error {
	r.Lock()
	switch r.Release() {
	case object.ReleaseDestroyed:
		return nil
	case object.ReleaseBusy:
		return fsalerrors.New(fsalerrors.Busy, nil)
	case object.ReleaseOpen:
		return fsalerrors.New(fsalerrors.Inval, nil)
	default:
		return fsalerrors.New(fsalerrors.ServerFault, nil)
	}
}
