//go:build linux

package fsal

import (
	fsalerrors "github.com/rwolafka/nfs-ganesha/errors"
	"github.com/rwolafka/nfs-ganesha/kernel"
	"github.com/rwolafka/nfs-ganesha/object"
)

// Rename moves oldName within oldDir to newName within newDir. After a
// successful rename a Lookup of the old name fails STALE and a Lookup of
// the new name resolves to the same inode the old name did; handles name
// inodes, not paths, so records already held for the object stay valid.
func (c *Core) Rename(oldDir *object.Record, oldName string, newDir *object.Record, newName string) error {
	if oldName == "" || newName == "" {
		return fsalerrors.New(fsalerrors.Inval, nil)
	}
	if err := requireDirectory(oldDir); err != nil {
		return err
	}
	if err := requireDirectory(newDir); err != nil {
		return err
	}

	oldDirFD, err := c.openPathOnly(oldDir.Handle())
	if err != nil {
		return err
	}
	defer kernel.Close(oldDirFD)

	newDirFD, err := c.openPathOnly(newDir.Handle())
	if err != nil {
		return err
	}
	defer kernel.Close(newDirFD)

	return kernel.Renameat(oldDirFD, oldName, newDirFD, newName)
}
