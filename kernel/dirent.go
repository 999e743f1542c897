//go:build linux

package kernel

import (
	"encoding/binary"

	fsalerrors "github.com/rwolafka/nfs-ganesha/errors"
)

// DirEntry is one parsed struct linux_dirent64 entry, as returned by
// Getdents. Off is the kernel's own directory-stream offset to seek to in
// order to resume just after this entry — it is the cookie value readdir
// forwards opaquely without assigning it any meaning of its own.
type DirEntry struct {
	Ino  uint64
	Off  int64
	Type uint8
	Name string
}

// ParseDirents decodes every struct linux_dirent64 record packed into buf
// by a prior Getdents call.
//
//	struct linux_dirent64 {
//	    uint64_t d_ino;
//	    int64_t  d_off;
//	    uint16_t d_reclen;
//	    uint8_t  d_type;
//	    char     d_name[];
//	};
func ParseDirents(buf []byte) ([]DirEntry, error) {
	var entries []DirEntry

	for len(buf) > 0 {
		if len(buf) < 19 {
			return nil, fsalerrors.New(fsalerrors.ServerFault, nil)
		}

		reclen := binary.LittleEndian.Uint16(buf[16:18])
		if int(reclen) > len(buf) || reclen < 19 {
			return nil, fsalerrors.New(fsalerrors.ServerFault, nil)
		}

		rec := buf[:reclen]
		ino := binary.LittleEndian.Uint64(rec[0:8])
		off := int64(binary.LittleEndian.Uint64(rec[8:16]))
		dtype := rec[18]

		nameBytes := rec[19:]
		n := 0
		for n < len(nameBytes) && nameBytes[n] != 0 {
			n++
		}

		entries = append(entries, DirEntry{
			Ino:  ino,
			Off:  off,
			Type: dtype,
			Name: string(nameBytes[:n]),
		})

		buf = buf[reclen:]
	}

	return entries, nil
}

// EncodeCookie packs a raw directory offset into the opaque 8-byte cookie
// form readdir hands to its callback and later accepts back as whence.
func EncodeCookie(off int64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(off))
	return buf
}

// DecodeCookie is the inverse of EncodeCookie. An empty cookie decodes to
// offset 0 (start of directory), which is also how a freshly opened
// directory's stream position reads.
func DecodeCookie(cookie []byte) (int64, error) {
	if len(cookie) == 0 {
		return 0, nil
	}
	if len(cookie) != 8 {
		return 0, fsalerrors.New(fsalerrors.Inval, nil)
	}
	return int64(binary.LittleEndian.Uint64(cookie)), nil
}
