package snap

import (
	"fmt"
	"strings"
	"time"
)

// Info is the metadata the store exposes per entry: a kind, a byte size
// and a single modification instant.
type Info struct {
	Dir     bool
	Size    int64
	ModTime time.Time
}

// Child is one directory entry as yielded by List.
type Child struct {
	Name string
	Info Info
}

// Tree is a read-only handle on one snapshot, addressed by /-separated
// relative paths. The root is the empty path.
type Tree struct {
	store *Store
	root  string
}

// OpenTree opens the snapshot the given ref points at.
func (s *Store) OpenTree(ref string) (*Tree, error) {
	id, err := s.resolveRef(ref)
	if err != nil {
		return nil, err
	}
	if _, err := s.getNode(id); err != nil {
		return nil, fmt.Errorf("ref %q: %w", ref, err)
	}
	return &Tree{store: s, root: id}, nil
}

func splitPath(path string) []string {
	var segs []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			segs = append(segs, seg)
		}
	}
	return segs
}

// walk resolves a relative path to its node, one component at a time.
func (t *Tree) walk(path string) (*nodeRecord, error) {
	node, err := t.store.getNode(t.root)
	if err != nil {
		return nil, err
	}
	for _, seg := range splitPath(path) {
		var next string
		for _, c := range node.Children {
			if c.Name == seg {
				next = c.ID
				break
			}
		}
		if next == "" {
			return nil, fmt.Errorf("no entry %q in snapshot", path)
		}
		if node, err = t.store.getNode(next); err != nil {
			return nil, err
		}
	}
	return node, nil
}

func (n *nodeRecord) info() Info {
	return Info{Dir: n.Dir, Size: n.Size, ModTime: n.ModTime}
}

// Stat returns the metadata of the entry at path.
func (t *Tree) Stat(path string) (Info, error) {
	node, err := t.walk(path)
	if err != nil {
		return Info{}, err
	}
	return node.info(), nil
}

// List enumerates the immediate children of the directory at path, in the
// order they were committed. The order is stable across calls.
func (t *Tree) List(path string) ([]Child, error) {
	node, err := t.walk(path)
	if err != nil {
		return nil, err
	}
	if !node.Dir {
		return nil, fmt.Errorf("%q is not a directory", path)
	}

	children := make([]Child, 0, len(node.Children))
	for _, c := range node.Children {
		cn, err := t.store.getNode(c.ID)
		if err != nil {
			return nil, err
		}
		children = append(children, Child{Name: c.Name, Info: cn.info()})
	}
	return children, nil
}

// ReadAll returns the full content of the file at path.
func (t *Tree) ReadAll(path string) ([]byte, error) {
	node, err := t.walk(path)
	if err != nil {
		return nil, err
	}
	if node.Dir {
		return nil, fmt.Errorf("%q is a directory", path)
	}

	data, err := t.store.get(blobPrefix + node.Blob)
	if err != nil {
		return nil, fmt.Errorf("cannot load content of %q: %w", path, err)
	}
	return data, nil
}
