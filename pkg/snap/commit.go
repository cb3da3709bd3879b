package snap

import (
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// Commit stores the directory tree rooted at srcDir as a new snapshot and
// points ref at it. Only directories and regular files are included;
// anything else (symlinks, devices, sockets) is skipped with a warning.
func (s *Store) Commit(ref, srcDir string) (string, error) {
	id, err := s.commitDir(srcDir)
	if err != nil {
		return "", err
	}
	if err := s.setRef(ref, id); err != nil {
		return "", err
	}

	log.WithField("ref", ref).WithField("id", id).Debug("committed snapshot")
	return id, nil
}

func (s *Store) commitDir(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	fi, err := os.Stat(dir)
	if err != nil {
		return "", err
	}

	node := nodeRecord{Dir: true, ModTime: fi.ModTime()}
	// os.ReadDir yields entries sorted by name; that order becomes the
	// canonical listing order of the snapshot.
	for _, entry := range entries {
		var id string
		switch {
		case entry.IsDir():
			id, err = s.commitDir(filepath.Join(dir, entry.Name()))
		case entry.Type().IsRegular():
			id, err = s.commitFile(filepath.Join(dir, entry.Name()))
		default:
			log.WithField("name", entry.Name()).Warn("skipping irregular entry")
			continue
		}
		if err != nil {
			return "", err
		}

		node.Children = append(node.Children, childRef{Name: entry.Name(), ID: id})
	}

	return s.putNode(&node)
}

func (s *Store) commitFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	fi, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	blob, err := s.put(blobPrefix, content)
	if err != nil {
		return "", err
	}
	id, err := s.putNode(&nodeRecord{Size: fi.Size(), ModTime: fi.ModTime(), Blob: blob})
	if err != nil {
		return "", err
	}

	log.WithField("path", path).WithField("id", id).Debug("added file to snapshot")
	return id, nil
}
