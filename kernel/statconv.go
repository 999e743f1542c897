//go:build linux

package kernel

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/rwolafka/nfs-ganesha/object"
)

// AttributesFromStat converts a raw POSIX stat buffer into the object
// package's Attributes snapshot, setting every bit of AttrAll. On a
// conversion failure the caller should set RdAttrErr and clear Mask instead
// of using this result; AttributesFromStat itself cannot fail since
// unix.Stat_t already validated the kernel's reply.
func AttributesFromStat(st unix.Stat_t) object.Attributes {
	return object.Attributes{
		Mask:  object.AttrAll,
		Mode:  st.Mode,
		UID:   st.Uid,
		GID:   st.Gid,
		Size:  uint64(st.Size),
		ATime: time.Unix(st.Atim.Sec, st.Atim.Nsec),
		MTime: time.Unix(st.Mtim.Sec, st.Mtim.Nsec),
		CTime: time.Unix(st.Ctim.Sec, st.Ctim.Nsec),
		Rdev:  st.Rdev,
		Nlink: uint32(st.Nlink),
		Inode: st.Ino,
	}
}
