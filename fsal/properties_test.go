//go:build linux

package fsal

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rwolafka/nfs-ganesha/handle"
	"github.com/rwolafka/nfs-ganesha/object"
)

// Compare is reflexive, and distinct inodes never compare equal.
func TestCompareReflexiveAndDistinguishesInodes(t *testing.T) {
	core, root := newTestCore(t)

	a, err := core.Create(root, "a", object.Attributes{Mode: 0644})
	require.NoError(t, err)
	b, err := core.Create(root, "b", object.Attributes{Mode: 0644})
	require.NoError(t, err)

	assert.True(t, core.Compare(a, a))
	assert.True(t, core.Compare(root, root))
	assert.False(t, core.Compare(a, b))
}

// A handle round-tripped through NFSv4 digest encode/decode names the same
// inode under Compare.
func TestHandleDigestRoundTripNFSv4PreservesIdentity(t *testing.T) {
	core, root := newTestCore(t)

	file, err := core.Create(root, "digested", object.Attributes{Mode: 0644})
	require.NoError(t, err)

	dst := make([]byte, 128)
	n, err := core.HandleDigest(file, handle.DigestNFSv4, dst)
	require.NoError(t, err)

	decoded, err := handle.Decode(dst[:n])
	require.NoError(t, err)

	assert.True(t, file.Handle().Equal(decoded))
}

// Mkdir and Mknod share the same post-creation finish/rollback step; a
// failure before anything is created (an unsupported kind here) must leave
// no entry behind at all. This is the pre-creation case only: no test here
// injects a failure after the entry exists.
func TestMknodRejectsUnsupportedKindWithoutCreatingEntry(t *testing.T) {
	core, root := newTestCore(t)

	_, err := core.Mknod(root, "badnode", object.RegularFile, object.Attributes{Mode: 0644}, object.DeviceTuple{})
	require.Error(t, err)

	_, lookupErr := core.Lookup(root, "badnode")
	assert.Error(t, lookupErr, "a rejected mknod must not create a directory entry")
}

// No operation leaks an FD on error: repeatedly failing the same call many
// times must not exhaust descriptors for calls that follow it.
func TestFailingLookupLeavesNoFDLeak(t *testing.T) {
	core, root := newTestCore(t)

	for i := 0; i < 512; i++ {
		_, err := core.Lookup(root, fmt.Sprintf("does-not-exist-%d", i))
		require.Error(t, err)
	}

	// A working call after many failures proves the process didn't run out
	// of descriptors in the loop above.
	_, err := core.Create(root, "after-many-failures", object.Attributes{Mode: 0644})
	require.NoError(t, err)
}

// readdir never yields "." or "..", and paginating with forwarded cookies
// yields the same set of names, as a multiset, as a single unbounded call.
func TestReaddirExcludesDotEntriesAndPaginationMatchesUnbounded(t *testing.T) {
	core, root := newTestCore(t)

	const total = 20
	for i := 0; i < total; i++ {
		_, err := core.Mkdir(root, fmt.Sprintf("entry-%02d", i), object.Attributes{Mode: 0755})
		require.NoError(t, err)
	}

	full := collectNames(t, core, root, total+1, nil)
	assert.Len(t, full, total)
	assertNoDotEntries(t, full)

	var paginated []string
	var cookie []byte
	for {
		names, next, eof := collectPage(t, core, root, 7, cookie)
		paginated = append(paginated, names...)
		if eof {
			break
		}
		cookie = next
	}
	assertNoDotEntries(t, paginated)
	assert.ElementsMatch(t, full, paginated)
}

func collectNames(t *testing.T, core *Core, dir *object.Record, limit int, whence []byte) []string {
	t.Helper()
	var names []string
	_, err := core.Readdir(dir, limit, whence, func(name string, dtype uint8, parent handle.Blob, cookie []byte) (bool, error) {
		names = append(names, name)
		return true, nil
	})
	require.NoError(t, err)
	return names
}

func collectPage(t *testing.T, core *Core, dir *object.Record, limit int, whence []byte) (names []string, lastCookie []byte, eof bool) {
	t.Helper()
	eof, err := core.Readdir(dir, limit, whence, func(name string, dtype uint8, parent handle.Blob, cookie []byte) (bool, error) {
		names = append(names, name)
		lastCookie = cookie
		return true, nil
	})
	require.NoError(t, err)
	return names, lastCookie, eof
}

func assertNoDotEntries(t *testing.T, names []string) {
	t.Helper()
	for _, n := range names {
		assert.NotEqual(t, ".", n)
		assert.NotEqual(t, "..", n)
	}
}
