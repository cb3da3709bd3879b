package snapfs

import "sync"

// RootID is the identifier of the mount root. The kernel addresses the
// root as 1 by convention; the empty relative path is pre-assigned to it.
const RootID uint64 = 1

// Table is the bidirectional path↔inode mapping for one mount.
// Identifiers are handed out lazily, strictly increasing, and never reused
// or dropped for the life of the mount, so a path keeps the same identity
// across repeated requests.
type Table struct {
	mu    sync.RWMutex
	paths map[uint64]string
	inos  map[string]uint64
	next  uint64
}

// NewTable returns a table pre-seeded with the root entry.
func NewTable() *Table {
	return &Table{
		paths: map[uint64]string{RootID: ""},
		inos:  map[string]uint64{"": RootID},
		next:  RootID,
	}
}

// Path returns the path an identifier was assigned to.
func (t *Table) Path(ino uint64) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	path, ok := t.paths[ino]
	return path, ok
}

// Ino returns the identifier a path was assigned, if any.
func (t *Table) Ino(path string) (uint64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ino, ok := t.inos[path]
	return ino, ok
}

// AssignOrGet returns the identifier of path, allocating the next unused
// one on first sight. Both mapping directions are inserted together; this
// is the only write site of the table.
func (t *Table) AssignOrGet(path string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if ino, ok := t.inos[path]; ok {
		return ino
	}

	t.next++
	t.paths[t.next] = path
	t.inos[path] = t.next
	return t.next
}
