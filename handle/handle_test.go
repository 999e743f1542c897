package handle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlobEqual(t *testing.T) {
	a := New(1, []byte{1, 2, 3})
	b := New(1, []byte{1, 2, 3})
	c := New(1, []byte{1, 2, 4})
	d := New(2, []byte{1, 2, 3})

	assert.True(t, a.Equal(a))
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(d))
}

func TestNewRejectsEmptyHandle(t *testing.T) {
	assert.Panics(t, func() {
		New(1, nil)
	})
}

func TestNewRejectsOversizeHandle(t *testing.T) {
	assert.Panics(t, func() {
		New(1, make([]byte, MaxHandleSize+1))
	})
}

func TestKeyIsBorrowedView(t *testing.T) {
	b := New(1, []byte{9, 9})
	require.Equal(t, []byte{9, 9}, b.Key())
	assert.Same(t, &b.Opaque()[0], &b.Key()[0])
}
