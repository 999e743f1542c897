package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rwolafka/nfs-ganesha/handle"
)

type fakeRegistry struct {
	attached map[*Record]bool
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{attached: map[*Record]bool{}}
}

func (f *fakeRegistry) Attach(r *Record) { f.attached[r] = true }
func (f *fakeRegistry) Detach(r *Record) { delete(f.attached, r) }

func testHandle() handle.Blob {
	return handle.New(1, []byte{1, 2, 3, 4})
}

func TestReleaseDestroysAtZeroRefcount(t *testing.T) {
	reg := newFakeRegistry()
	r := New(testHandle(), Directory, Attributes{}, reg)
	require.True(t, reg.attached[r])

	r.Lock()
	result := r.Release()

	assert.Equal(t, ReleaseDestroyed, result)
	assert.False(t, reg.attached[r])
}

func TestReleaseBusyWhileRefcountPositive(t *testing.T) {
	reg := newFakeRegistry()
	r := New(testHandle(), Directory, Attributes{}, reg)

	r.Lock()
	r.Acquire()
	r.Unlock()

	r.Lock()
	result := r.Release()

	assert.Equal(t, ReleaseBusy, result)
	assert.True(t, reg.attached[r])
}

// Release on a REGULAR_FILE whose fd is open returns INVAL-equivalent
// (ReleaseOpen) and the record is still reachable through the registry.
func TestReleaseOpenRegularFileStaysAlive(t *testing.T) {
	reg := newFakeRegistry()
	r := New(testHandle(), RegularFile, Attributes{}, reg)

	r.Lock()
	r.Regular().FD = 42
	result := r.Release()

	assert.Equal(t, ReleaseOpen, result)
	assert.True(t, reg.attached[r])
}

func TestReleasePanicsOnDoubleRelease(t *testing.T) {
	reg := newFakeRegistry()
	r := New(testHandle(), Directory, Attributes{}, reg)

	r.Lock()
	r.Release()

	assert.Panics(t, func() {
		r.Lock()
		r.Release()
	})
}
