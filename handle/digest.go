package handle

import (
	"encoding/binary"

	fsalerrors "github.com/rwolafka/nfs-ganesha/errors"
)

// DigestKind selects one of the six wire encodings of a handle: the full
// handle (NFSv2/v3/v4) or a truncated file id (FILEID2/3/4).
type DigestKind uint8

const (
	DigestNFSv2 DigestKind = iota
	DigestNFSv3
	DigestNFSv4
	DigestFileID2
	DigestFileID3
	DigestFileID4
)

// headerSize is the on-wire size of the (handle_type, handle_length) header
// that precedes the opaque bytes in the NFSv2/v3/v4 digests: a 4-byte
// kernel handle type plus a 2-byte length.
const headerSize = 6

// fileID2Width is the compile-time constant width used by the FILEID2
// encoding; chosen to match the width of a 32-bit legacy NFSv2 fileid.
const fileID2Width = 4

// MaxDigestSize bounds the buffer create_handle_from_digest (Decode) will
// accept: sizeof(handle_header) + MAX_HANDLE_SZ.
const MaxDigestSize = headerSize + MaxHandleSize

// EncodedSize returns the number of bytes Encode will write for kind, or an
// error if kind is not recognized.
func EncodedSize(b Blob, kind DigestKind) (int, error) {
	switch kind {
	case DigestNFSv2, DigestNFSv3, DigestNFSv4:
		return headerSize + len(b.opaque), nil
	case DigestFileID2:
		return fileID2Width, nil
	case DigestFileID3, DigestFileID4:
		return 8, nil
	default:
		return 0, fsalerrors.New(fsalerrors.Inval, nil)
	}
}

// Encode writes the digest of kind for b into dst, returning the number of
// bytes written. If dst is shorter than the required size, it fails
// TOOSMALL without writing anything.
func Encode(b Blob, kind DigestKind, dst []byte) (int, error) {
	need, err := EncodedSize(b, kind)
	if err != nil {
		return 0, err
	}
	if len(dst) < need {
		return 0, fsalerrors.New(fsalerrors.TooSmall, nil)
	}

	switch kind {
	case DigestNFSv2, DigestNFSv3, DigestNFSv4:
		binary.LittleEndian.PutUint32(dst[0:4], uint32(b.htype))
		binary.LittleEndian.PutUint16(dst[4:6], uint16(len(b.opaque)))
		copy(dst[headerSize:], b.opaque)
		return need, nil

	case DigestFileID2:
		var buf [fileID2Width]byte
		copy(buf[:], b.opaque)
		copy(dst, buf[:])
		return need, nil

	case DigestFileID3, DigestFileID4:
		var low uint32
		if len(b.opaque) >= 4 {
			low = binary.LittleEndian.Uint32(b.opaque[:4])
		} else {
			var buf [4]byte
			copy(buf[:], b.opaque)
			low = binary.LittleEndian.Uint32(buf[:])
		}
		binary.LittleEndian.PutUint64(dst[:8], uint64(low))
		return need, nil

	default:
		return 0, fsalerrors.New(fsalerrors.Inval, nil)
	}
}

// Decode implements create_handle_from_digest: it parses a full NFSv2/v3/v4
// digest (header + opaque bytes) back into a Blob. FILEID digests are
// lossy by construction and are not accepted here — only full handle
// digests round-trip.
//
// digest must be no longer than MaxDigestSize, and the length declared in
// its header must be no greater than MaxHandleSize; any violation fails
// FAULT.
func Decode(digest []byte) (Blob, error) {
	if len(digest) > MaxDigestSize {
		return Blob{}, fsalerrors.New(fsalerrors.Fault, nil)
	}
	if len(digest) < headerSize {
		return Blob{}, fsalerrors.New(fsalerrors.Fault, nil)
	}

	htype := int32(binary.LittleEndian.Uint32(digest[0:4]))
	n := int(binary.LittleEndian.Uint16(digest[4:6]))
	if n <= 0 || n > MaxHandleSize {
		return Blob{}, fsalerrors.New(fsalerrors.Fault, nil)
	}
	if len(digest) < headerSize+n {
		return Blob{}, fsalerrors.New(fsalerrors.Fault, nil)
	}

	return New(htype, digest[headerSize:headerSize+n]), nil
}
