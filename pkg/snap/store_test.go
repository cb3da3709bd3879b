package snap_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/snapfs/snapfs/pkg/snap"
)

const (
	fileHelloTXT       = "Hello World\nThis is a test"
	fileHidden         = "Filename starts with a ."
	fileFooSlashBarTXT = "More file content"
)

func prepareTestStore(t *testing.T) *snap.Store {
	t.Helper()

	src := t.TempDir()
	files := map[string]string{
		"hello.txt":             fileHelloTXT,
		".hidden":               fileHidden,
		"foo/bar.txt":           fileFooSlashBarTXT,
		"foo/three/levels/deep": fileHelloTXT,
	}
	for path, content := range files {
		full := filepath.Join(src, path)
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.MkdirAll(filepath.Join(src, "foo", "dir"), 0755); err != nil {
		t.Fatal(err)
	}

	store, err := snap.OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	if _, err := store.Commit("main", src); err != nil {
		t.Fatalf("cannot commit test snapshot: %v", err)
	}
	return store
}

func TestRefs(t *testing.T) {
	store := prepareTestStore(t)

	extra := t.TempDir()
	if _, err := store.Commit("alt", extra); err != nil {
		t.Fatal(err)
	}

	refs, err := store.Refs()
	if err != nil {
		t.Fatal(err)
	}

	var names []string
	for _, r := range refs {
		names = append(names, r.Name)
		if len(r.ID) != 64 {
			t.Errorf("ref %s has ID %q; want a hex SHA-256", r.Name, r.ID)
		}
	}
	if diff := cmp.Diff([]string{"alt", "main"}, names); diff != "" {
		t.Errorf("Refs() mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenTreeUnknownRef(t *testing.T) {
	store := prepareTestStore(t)

	if _, err := store.OpenTree("nope"); err == nil {
		t.Error("OpenTree of an unknown ref succeeded")
	}
}

func TestStat(t *testing.T) {
	store := prepareTestStore(t)
	tree, err := store.OpenTree("main")
	if err != nil {
		t.Fatal(err)
	}

	type Expectation struct {
		Dir  bool
		Size int64
		Err  bool
	}
	tests := []struct {
		Name        string
		Path        string
		Expectation Expectation
	}{
		{Name: "root", Path: "", Expectation: Expectation{Dir: true}},
		{Name: "directory", Path: "foo", Expectation: Expectation{Dir: true}},
		{Name: "file", Path: "foo/bar.txt", Expectation: Expectation{Size: int64(len(fileFooSlashBarTXT))}},
		{Name: "deep file", Path: "foo/three/levels/deep", Expectation: Expectation{Size: int64(len(fileHelloTXT))}},
		{Name: "missing", Path: "foo/nothing", Expectation: Expectation{Err: true}},
		{Name: "descend through file", Path: "hello.txt/sub", Expectation: Expectation{Err: true}},
	}
	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			info, err := tree.Stat(test.Path)
			if test.Expectation.Err {
				if err == nil {
					t.Fatalf("Stat(%q) succeeded; want error", test.Path)
				}
				return
			}
			if err != nil {
				t.Fatalf("Stat(%q): %v", test.Path, err)
			}

			if info.Dir != test.Expectation.Dir || info.Size != test.Expectation.Size {
				t.Errorf("Stat(%q) = dir=%v size=%d; want dir=%v size=%d",
					test.Path, info.Dir, info.Size, test.Expectation.Dir, test.Expectation.Size)
			}
			if info.ModTime.IsZero() {
				t.Errorf("Stat(%q) has a zero modification time", test.Path)
			}
		})
	}
}

func TestList(t *testing.T) {
	store := prepareTestStore(t)
	tree, err := store.OpenTree("main")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		Name    string
		Path    string
		Entries []string
	}{
		{Name: "root", Path: "", Entries: []string{".hidden", "foo", "hello.txt"}},
		{Name: "foo", Path: "foo", Entries: []string{"bar.txt", "dir", "three"}},
		{Name: "empty dir", Path: "foo/dir", Entries: []string{}},
	}
	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			children, err := tree.List(test.Path)
			if err != nil {
				t.Fatalf("List(%q): %v", test.Path, err)
			}

			names := make([]string, 0, len(children))
			for _, c := range children {
				names = append(names, c.Name)
			}
			if diff := cmp.Diff(test.Entries, names); diff != "" {
				t.Errorf("List(%q) mismatch (-want +got):\n%s", test.Path, diff)
			}

			// The stored order is canonical: a second enumeration must
			// repeat it exactly.
			again, err := tree.List(test.Path)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(children, again); diff != "" {
				t.Errorf("List(%q) is not stable (-first +second):\n%s", test.Path, diff)
			}
		})
	}
}

func TestListErrors(t *testing.T) {
	store := prepareTestStore(t)
	tree, err := store.OpenTree("main")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := tree.List("hello.txt"); err == nil {
		t.Error("List of a file succeeded; want error")
	}
	if _, err := tree.List("missing"); err == nil {
		t.Error("List of a missing path succeeded; want error")
	}
}

func TestReadAll(t *testing.T) {
	store := prepareTestStore(t)
	tree, err := store.OpenTree("main")
	if err != nil {
		t.Fatal(err)
	}

	content, err := tree.ReadAll("hello.txt")
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != fileHelloTXT {
		t.Errorf("ReadAll(hello.txt) = %q; want %q", content, fileHelloTXT)
	}

	if _, err := tree.ReadAll("foo"); err == nil {
		t.Error("ReadAll of a directory succeeded; want error")
	}
	if _, err := tree.ReadAll("missing"); err == nil {
		t.Error("ReadAll of a missing path succeeded; want error")
	}
}
