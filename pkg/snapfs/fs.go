package snapfs

import (
	"path"

	"github.com/hanwen/go-fuse/v2/fuse"
	log "github.com/sirupsen/logrus"

	"github.com/snapfs/snapfs/pkg/snap"
)

// Tree is the view of one snapshot the filesystem reads from. *snap.Tree
// implements it; tests substitute in-memory fixtures. The empty path is
// the root, child paths join with "/".
type Tree interface {
	Stat(path string) (snap.Info, error)
	List(path string) ([]snap.Child, error)
	ReadAll(path string) ([]byte, error)
}

// Filesystem adapts one snapshot tree to the kernel's inode-addressed
// request model. The identifier table is the only state it owns;
// attributes are recomputed from the tree on every query. Every failure
// class (unknown identifier, missing object, enumeration failure, read
// failure) surfaces to the kernel as ENOENT.
type Filesystem struct {
	fuse.RawFileSystem

	tree  Tree
	table *Table
}

// New builds a read-only filesystem over tree, with the root pre-assigned
// identifier 1. Write-family operations fall through to the embedded
// default implementation and fail with ENOSYS.
func New(tree Tree) *Filesystem {
	return &Filesystem{
		RawFileSystem: fuse.NewDefaultRawFileSystem(),
		tree:          tree,
		table:         NewTable(),
	}
}

func (f *Filesystem) String() string {
	return "snapfs"
}

// childPath joins a parent identifier and an entry name into the entry's
// relative path. Children of the root are their bare names.
func (f *Filesystem) childPath(parent uint64, name string) (string, bool) {
	if parent == RootID {
		return name, true
	}
	dir, ok := f.table.Path(parent)
	if !ok {
		return "", false
	}
	return path.Join(dir, name), true
}

func (f *Filesystem) Lookup(cancel <-chan struct{}, header *fuse.InHeader, name string, out *fuse.EntryOut) fuse.Status {
	p, ok := f.childPath(header.NodeId, name)
	if !ok {
		log.WithField("ino", header.NodeId).Debug("lookup with unknown parent")
		return fuse.ENOENT
	}
	info, err := f.tree.Stat(p)
	if err != nil {
		log.WithError(err).WithField("path", p).Debug("lookup miss")
		return fuse.ENOENT
	}

	ino := f.table.AssignOrGet(p)
	out.NodeId = ino
	fillAttr(info, ino, &out.Attr)
	out.SetEntryTimeout(attrTTL)
	out.SetAttrTimeout(attrTTL)
	return fuse.OK
}

func (f *Filesystem) GetAttr(cancel <-chan struct{}, input *fuse.GetAttrIn, out *fuse.AttrOut) fuse.Status {
	p, ok := f.table.Path(input.NodeId)
	if !ok {
		log.WithField("ino", input.NodeId).Debug("getattr for unknown inode")
		return fuse.ENOENT
	}
	info, err := f.tree.Stat(p)
	if err != nil {
		log.WithError(err).WithField("path", p).Debug("getattr miss")
		return fuse.ENOENT
	}

	fillAttr(info, input.NodeId, &out.Attr)
	out.SetTimeout(attrTTL)
	return fuse.OK
}

func (f *Filesystem) OpenDir(cancel <-chan struct{}, input *fuse.OpenIn, out *fuse.OpenOut) fuse.Status {
	if _, ok := f.table.Path(input.NodeId); !ok {
		return fuse.ENOENT
	}
	return fuse.OK
}

// listDir drives one directory enumeration: it resolves the directory,
// skips the first offset entries and feeds the rest to emit until emit
// reports the reply is full. A full reply is not an error; the kernel
// re-issues the listing with the next offset.
func (f *Filesystem) listDir(ino, offset uint64, emit func(ino uint64, info snap.Info, name string) bool) fuse.Status {
	dir, ok := f.table.Path(ino)
	if !ok {
		log.WithField("ino", ino).Debug("readdir for unknown inode")
		return fuse.ENOENT
	}
	children, err := f.tree.List(dir)
	if err != nil {
		log.WithError(err).WithField("path", dir).Debug("cannot enumerate children")
		return fuse.ENOENT
	}
	if offset > uint64(len(children)) {
		return fuse.OK
	}

	for _, c := range children[offset:] {
		child := f.table.AssignOrGet(path.Join(dir, c.Name))
		if !emit(child, c.Info, c.Name) {
			break
		}
	}
	return fuse.OK
}

func (f *Filesystem) ReadDir(cancel <-chan struct{}, input *fuse.ReadIn, out *fuse.DirEntryList) fuse.Status {
	return f.listDir(input.NodeId, input.Offset, func(ino uint64, info snap.Info, name string) bool {
		return out.AddDirEntry(fuse.DirEntry{Ino: ino, Mode: entryMode(info), Name: name})
	})
}

func (f *Filesystem) ReadDirPlus(cancel <-chan struct{}, input *fuse.ReadIn, out *fuse.DirEntryList) fuse.Status {
	return f.listDir(input.NodeId, input.Offset, func(ino uint64, info snap.Info, name string) bool {
		entry := out.AddDirLookupEntry(fuse.DirEntry{Ino: ino, Mode: entryMode(info), Name: name})
		if entry == nil {
			return false
		}

		entry.NodeId = ino
		fillAttr(info, ino, &entry.Attr)
		entry.SetEntryTimeout(attrTTL)
		entry.SetAttrTimeout(attrTTL)
		return true
	})
}

func (f *Filesystem) Open(cancel <-chan struct{}, input *fuse.OpenIn, out *fuse.OpenOut) fuse.Status {
	if _, ok := f.table.Path(input.NodeId); !ok {
		return fuse.ENOENT
	}

	// The snapshot is immutable; the kernel may keep the page cache
	// across opens.
	out.OpenFlags = fuse.FOPEN_KEEP_CACHE
	return fuse.OK
}

func (f *Filesystem) Read(cancel <-chan struct{}, input *fuse.ReadIn, buf []byte) (fuse.ReadResult, fuse.Status) {
	p, ok := f.table.Path(input.NodeId)
	if !ok {
		log.WithField("ino", input.NodeId).Debug("read for unknown inode")
		return nil, fuse.ENOENT
	}
	data, err := f.tree.ReadAll(p)
	if err != nil {
		log.WithError(err).WithField("path", p).Debug("cannot read content")
		return nil, fuse.ENOENT
	}

	if input.Offset >= uint64(len(data)) {
		return fuse.ReadResultData(nil), fuse.OK
	}
	end := input.Offset + uint64(len(buf))
	if end > uint64(len(data)) {
		end = uint64(len(data))
	}
	return fuse.ReadResultData(data[input.Offset:end]), fuse.OK
}

func (f *Filesystem) StatFs(cancel <-chan struct{}, input *fuse.InHeader, out *fuse.StatfsOut) fuse.Status {
	out.Bsize = blockSize
	out.NameLen = 255
	return fuse.OK
}
