package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rwolafka/nfs-ganesha/handle"
	"github.com/rwolafka/nfs-ganesha/object"
)

func TestAttachLookupDetach(t *testing.T) {
	e := New(3, 0022, object.AttrAll, CapLink)

	h := handle.New(1, []byte{1, 2, 3})
	r := object.New(h, object.Directory, object.Attributes{}, e)
	require.Equal(t, 1, e.Count())

	got, ok := e.Lookup(KeyOf(h))
	require.True(t, ok)
	assert.Same(t, r, got)

	r.Lock()
	r.Release()
	assert.Equal(t, 0, e.Count())

	_, ok = e.Lookup(KeyOf(h))
	assert.False(t, ok)
}

func TestSupportsCapability(t *testing.T) {
	e := New(3, 0, object.AttrAll, CapLink)
	assert.True(t, e.Supports(CapLink))
	assert.False(t, e.Supports(CapSymlink))
}
