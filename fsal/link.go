//go:build linux

package fsal

import (
	"golang.org/x/sys/unix"

	fsalerrors "github.com/rwolafka/nfs-ganesha/errors"
	"github.com/rwolafka/nfs-ganesha/export"
	"github.com/rwolafka/nfs-ganesha/kernel"
	"github.com/rwolafka/nfs-ganesha/object"
)

// Link creates a new directory entry name within destDir pointing at src
// Requires the export's link_support capability. Both
// src and destDir are opened as path-only FDs and linkat is called with
// AT_EMPTY_PATH against src's empty relative path.
func (c *Core) Link(src, destDir *object.Record, name string) error {
	if !c.export.Supports(export.CapLink) {
		return fsalerrors.New(fsalerrors.NotSupp, nil)
	}
	if name == "" {
		return fsalerrors.New(fsalerrors.Inval, nil)
	}
	if err := requireDirectory(destDir); err != nil {
		return err
	}

	srcFD, err := c.openPathOnly(src.Handle())
	if err != nil {
		return err
	}
	defer kernel.Close(srcFD)

	destDirFD, err := c.openPathOnly(destDir.Handle())
	if err != nil {
		return err
	}
	defer kernel.Close(destDirFD)

	return kernel.Linkat(srcFD, "", destDirFD, name, unix.AT_EMPTY_PATH)
}
