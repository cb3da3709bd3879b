package snap

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v3"
)

// Key prefixes within the badger keyspace. Everything under node/ and
// blob/ is content-addressed: the key suffix is the hex SHA-256 of the
// stored bytes, so identical content is stored once.
const (
	refPrefix  = "ref/"
	nodePrefix = "node/"
	blobPrefix = "blob/"
)

// Store is a content-addressed snapshot repository backed by a badger
// database. Snapshots are immutable trees of nodes; refs give their roots
// names.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the repository at dir.
func Open(dir string) (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("cannot open repository at %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

// OpenInMemory opens a store that lives entirely in memory.
func OpenInMemory() (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Ref names a snapshot root.
type Ref struct {
	Name string
	ID   string
}

// Refs enumerates all snapshot refs in the store, in key order.
func (s *Store) Refs() ([]Ref, error) {
	var refs []Ref
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(refPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			name := strings.TrimPrefix(string(item.Key()), refPrefix)

			err := item.Value(func(val []byte) error {
				refs = append(refs, Ref{Name: name, ID: string(val)})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return refs, nil
}

// nodeRecord is the JSON document stored under node/<id>. Children are
// kept in commit order (sorted by name); that order is the canonical
// enumeration order for the whole snapshot.
type nodeRecord struct {
	Dir      bool       `json:"dir"`
	Size     int64      `json:"size"`
	ModTime  time.Time  `json:"mtime"`
	Blob     string     `json:"blob,omitempty"`
	Children []childRef `json:"children,omitempty"`
}

type childRef struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

func objectID(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (s *Store) put(prefix string, data []byte) (string, error) {
	id := objectID(data)
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(prefix+id), data)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) get(key string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *Store) putNode(node *nodeRecord) (string, error) {
	data, err := json.Marshal(node)
	if err != nil {
		return "", err
	}
	return s.put(nodePrefix, data)
}

func (s *Store) getNode(id string) (*nodeRecord, error) {
	data, err := s.get(nodePrefix + id)
	if err != nil {
		return nil, fmt.Errorf("cannot load node %s: %w", id, err)
	}
	var node nodeRecord
	if err := json.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("cannot decode node %s: %w", id, err)
	}
	return &node, nil
}

func (s *Store) setRef(name, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(refPrefix+name), []byte(id))
	})
}

func (s *Store) resolveRef(name string) (string, error) {
	id, err := s.get(refPrefix + name)
	if err != nil {
		return "", fmt.Errorf("unknown ref %q: %w", name, err)
	}
	return string(id), nil
}
