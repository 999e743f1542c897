package errors

import (
	"errors"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	testCases := []struct {
		name       string
		err        *Error
		wantErrMsg string
	}{
		{
			name:       "with_underlying_error",
			err:        New(Stale, syscall.ENOENT),
			wantErrMsg: "STALE: no such file or directory",
		},
		{
			name:       "without_underlying_error",
			err:        New(Busy, nil),
			wantErrMsg: "BUSY",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.wantErrMsg, tc.err.Error())
			if tc.err.Err != nil {
				assert.True(t, errors.Is(tc.err, tc.err.Err))
			}
		})
	}
}

func TestIsMatchesKindNotCause(t *testing.T) {
	a := New(Stale, syscall.ENOENT)
	b := New(Stale, syscall.ESTALE)

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, New(Busy, nil)))
}

func TestFromErrno(t *testing.T) {
	assert.Nil(t, FromErrno(0))
	assert.True(t, Is(FromErrno(syscall.EINVAL), Inval))
	assert.True(t, Is(FromErrno(syscall.ENOTDIR), NotADirectory))
	assert.True(t, Is(FromErrno(syscall.EPERM), System))
}
