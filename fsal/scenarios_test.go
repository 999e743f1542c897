//go:build linux

package fsal

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fsalerrors "github.com/rwolafka/nfs-ganesha/errors"
	"github.com/rwolafka/nfs-ganesha/export"
	"github.com/rwolafka/nfs-ganesha/object"
)

// requirePrivileged skips a test when the process can't be expected to have
// CAP_DAC_READ_SEARCH, which name_to_handle_at/open_by_handle_at require on
// most kernels for anything the caller doesn't already own outright.
func requirePrivileged(t *testing.T) {
	t.Helper()
	if os.Geteuid() != 0 {
		t.Skip("requires CAP_DAC_READ_SEARCH (run as root)")
	}
}

func newTestCore(t *testing.T) (*Core, *object.Record) {
	t.Helper()
	requirePrivileged(t)

	root := t.TempDir()
	result, err := BootstrapRoot(root)
	require.NoError(t, err)

	exp := export.New(result.RootDirFD, 0022, object.AttrAll, export.CapLink, export.CapSymlink)
	rootRecord := object.New(result.Handle, result.Kind, result.Attrs, exp)
	return NewCore(exp), rootRecord
}

func TestMkdirLookupReturnSameHandleAndKind(t *testing.T) {
	core, root := newTestCore(t)

	created, err := core.Mkdir(root, "dir1", object.Attributes{Mode: 0755})
	require.NoError(t, err)
	assert.Equal(t, object.Directory, created.Kind())

	found, err := core.Lookup(root, "dir1")
	require.NoError(t, err)

	assert.True(t, core.Compare(created, found))
	assert.Equal(t, object.Directory, found.Kind())
}

func TestSymlinkReadlinkBufferSizing(t *testing.T) {
	core, root := newTestCore(t)

	link, err := core.Symlink(root, "link1", "/some/target", object.Attributes{Mode: 0777})
	require.NoError(t, err)
	assert.Equal(t, object.SymbolicLink, link.Kind())

	target := "/some/target"

	tooSmall := make([]byte, len(target))
	_, err = core.Readlink(link, tooSmall, false)
	assert.Error(t, err)

	exact := make([]byte, len(target)+2)
	n, err := core.Readlink(link, exact, false)
	require.NoError(t, err)
	assert.Equal(t, len(target)+1, n)
	assert.Equal(t, target, string(exact[:len(target)]))
	assert.Equal(t, byte(0), exact[len(target)])
}

func TestCreateInheritsSetgidFromParent(t *testing.T) {
	core, root := newTestCore(t)

	dir, err := core.Mkdir(root, "sgiddir", object.Attributes{Mode: 0755})
	require.NoError(t, err)

	err = core.Setattr(dir, object.Attributes{
		Mask: object.AttrMode,
		Mode: 0755 | unixSetgidBit,
	})
	require.NoError(t, err)

	attrs, err := core.Getattr(dir, object.AttrMode|object.AttrGID)
	require.NoError(t, err)
	require.NotZero(t, attrs.Mode&unixSetgidBit)

	file, err := core.Create(dir, "inherited", object.Attributes{Mode: 0644, GID: 9999})
	require.NoError(t, err)

	fileAttrs, err := core.Getattr(file, object.AttrGID)
	require.NoError(t, err)
	assert.Equal(t, attrs.GID, fileAttrs.GID)
	assert.NotEqual(t, uint32(9999), fileAttrs.GID)
}

func TestRenameOldNameStaleNewNameSameInode(t *testing.T) {
	core, root := newTestCore(t)

	file, err := core.Create(root, "original", object.Attributes{Mode: 0644})
	require.NoError(t, err)

	err = core.Rename(root, "original", root, "renamed")
	require.NoError(t, err)

	_, err = core.Lookup(root, "original")
	assert.Error(t, err)
	assert.True(t, fsalerrors.Is(err, fsalerrors.Stale))

	found, err := core.Lookup(root, "renamed")
	require.NoError(t, err)
	assert.True(t, core.Compare(file, found))
}

func TestUnlinkNonEmptyDirectoryFailsLookupStillSucceeds(t *testing.T) {
	core, root := newTestCore(t)

	dir, err := core.Mkdir(root, "parent", object.Attributes{Mode: 0755})
	require.NoError(t, err)
	_, err = core.Mkdir(dir, "child", object.Attributes{Mode: 0755})
	require.NoError(t, err)

	err = core.Unlink(root, "parent")
	assert.Error(t, err)

	found, err := core.Lookup(root, "parent")
	require.NoError(t, err)
	assert.True(t, core.Compare(dir, found))
}

func TestReleaseOnOpenRegularFileStaysReachable(t *testing.T) {
	core, root := newTestCore(t)

	file, err := core.Create(root, "held-open", object.Attributes{Mode: 0644})
	require.NoError(t, err)

	file.Lock()
	file.Regular().FD = 99
	file.Unlock()

	err = core.Release(file)
	assert.Error(t, err)

	found, err := core.Lookup(root, "held-open")
	require.NoError(t, err)
	assert.True(t, core.Compare(file, found))

	// The INVAL release above already took the ref count to zero, so one
	// more reference is acquired before the final, destroying release.
	file.Lock()
	file.Regular().FD = -1
	file.Unlock()
	core.Acquire(file)
	require.NoError(t, core.Release(file))
}

const unixSetgidBit = 0o2000
