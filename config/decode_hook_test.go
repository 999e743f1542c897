package config

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeOctal(t *testing.T, s string) Octal {
	t.Helper()
	hook := decodeOctalHook()
	v, err := hook(reflect.TypeOf(""), reflect.TypeOf(Octal(0)), s)
	require.NoError(t, err)
	return v.(Octal)
}

func TestDecodeOctalHookParsesBase8(t *testing.T) {
	assert.Equal(t, Octal(0022), decodeOctal(t, "0022"))
	assert.Equal(t, Octal(0755), decodeOctal(t, "755"))
}

func TestDecodeOctalHookRejectsGarbage(t *testing.T) {
	hook := decodeOctalHook()
	_, err := hook(reflect.TypeOf(""), reflect.TypeOf(Octal(0)), "not-a-number")
	assert.Error(t, err)
}

func TestDecodeOctalHookIgnoresOtherTargetTypes(t *testing.T) {
	hook := decodeOctalHook()
	out, err := hook(reflect.TypeOf(""), reflect.TypeOf(0), "0022")
	require.NoError(t, err)
	assert.Equal(t, "0022", out)
}

func TestDecodeOctalHookIgnoresNonStringSource(t *testing.T) {
	hook := decodeOctalHook()
	out, err := hook(reflect.TypeOf(0), reflect.TypeOf(Octal(0)), 18)
	require.NoError(t, err)
	assert.Equal(t, 18, out)
}
