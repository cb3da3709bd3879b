package snapfs

import (
	"time"

	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/snapfs/snapfs/pkg/snap"
)

// Static attribute policy. The store tracks only a kind, a size and one
// modification instant; everything else is fixed.
const (
	attrTTL = time.Second

	// nominalSize replaces a reported size of zero. Directories carry no
	// meaningful byte length in the store, and size-sensitive clients
	// must not take them for empty.
	nominalSize = 4096

	blockSize = 512

	defaultUID = 1000
	defaultGID = 1000
)

// fillAttr translates store metadata into the kernel attribute record for
// the given identifier. All three timestamps carry the store's single
// modification instant.
func fillAttr(info snap.Info, ino uint64, out *fuse.Attr) {
	size := uint64(info.Size)
	if size == 0 {
		size = nominalSize
	}

	out.Ino = ino
	out.Size = size
	out.Blocks = 0
	out.Blksize = blockSize
	out.Mode = entryMode(info)
	out.Nlink = 1
	out.Owner = fuse.Owner{Uid: defaultUID, Gid: defaultGID}

	mtime := uint64(info.ModTime.Unix())
	mtimensec := uint32(info.ModTime.Nanosecond())
	out.Atime, out.Mtime, out.Ctime = mtime, mtime, mtime
	out.Atimensec, out.Mtimensec, out.Ctimensec = mtimensec, mtimensec, mtimensec
}

// entryMode maps the store's kind onto a fixed mode: directories are
// world-traversable, everything else is a read-only regular file.
func entryMode(info snap.Info) uint32 {
	if info.Dir {
		return fuse.S_IFDIR | 0755
	}
	return fuse.S_IFREG | 0644
}
