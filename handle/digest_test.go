package handle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fsalerrors "github.com/rwolafka/nfs-ganesha/errors"
)

func TestEncodeDecodeRoundTripNFSv4(t *testing.T) {
	b := New(2, []byte{0xde, 0xad, 0xbe, 0xef})

	buf := make([]byte, MaxDigestSize)
	n, err := Encode(b, DigestNFSv4, buf)
	require.NoError(t, err)

	got, err := Decode(buf[:n])
	require.NoError(t, err)
	assert.True(t, b.Equal(got))
}

func TestEncodeTooSmallBuffer(t *testing.T) {
	b := New(1, []byte{1, 2, 3})
	buf := make([]byte, 1)

	_, err := Encode(b, DigestNFSv3, buf)
	require.Error(t, err)
	assert.True(t, fsalerrors.Is(err, fsalerrors.TooSmall))
}

func TestEncodeFileID3ZeroExtendsLittleEndian(t *testing.T) {
	b := New(1, []byte{0x01, 0x00, 0x00, 0x00, 0xff})

	buf := make([]byte, 8)
	n, err := Encode(b, DigestFileID3, buf)
	require.NoError(t, err)
	require.Equal(t, 8, n)

	assert.Equal(t, []byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, buf)
}

func TestDecodeExactSizeBufferAccepted(t *testing.T) {
	b := New(7, make([]byte, MaxHandleSize))
	buf := make([]byte, MaxDigestSize)
	n, err := Encode(b, DigestNFSv2, buf)
	require.NoError(t, err)
	require.Equal(t, MaxDigestSize, n)

	_, err = Decode(buf[:n])
	require.NoError(t, err)
}

func TestDecodeRejectsOversizeDigest(t *testing.T) {
	buf := make([]byte, MaxDigestSize+1)
	_, err := Decode(buf)
	require.Error(t, err)
	assert.True(t, fsalerrors.Is(err, fsalerrors.Fault))
}

func TestDecodeRejectsOversizeDeclaredLength(t *testing.T) {
	buf := make([]byte, headerSize+4)
	buf[4] = 0xff
	buf[5] = 0xff // declares a length far larger than MaxHandleSize

	_, err := Decode(buf)
	require.Error(t, err)
	assert.True(t, fsalerrors.Is(err, fsalerrors.Fault))
}
