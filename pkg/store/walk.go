package store

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/odvcencio/casq/pkg/hash"
	"github.com/odvcencio/casq/pkg/object"
)

// AddPath ingests a regular file or directory tree into the store and
// returns the resulting blob or tree hash. Symbolic links and other
// non-regular files are rejected; walk policy beyond that (ignore
// files, hidden files) belongs to the caller. Each successful top-level
// add appends a journal entry.
func (s *Store) AddPath(path string) (hash.Hash, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return hash.Hash{}, fmt.Errorf("add %s: %w", path, err)
	}

	var h hash.Hash
	switch {
	case info.Mode().IsRegular():
		h, err = s.addFile(path)
	case info.IsDir():
		h, err = s.addDir(path)
	default:
		return hash.Hash{}, fmt.Errorf("add %s: unsupported file type %s", path, info.Mode().Type())
	}
	if err != nil {
		return hash.Hash{}, err
	}

	metadata, err := s.addMetadata(h, info)
	if err != nil {
		return hash.Hash{}, err
	}
	if err := s.journal.Append("add", h, path, metadata); err != nil {
		return hash.Hash{}, fmt.Errorf("add %s: %w", path, err)
	}
	return h, nil
}

// addMetadata builds the journal metadata field for an add: the entry
// count and a size, which is the file size for a regular file and the
// tree object's on-disk size for a directory.
func (s *Store) addMetadata(h hash.Hash, info fs.FileInfo) (string, error) {
	if info.Mode().IsRegular() {
		return fmt.Sprintf("entries=1,size=%d", info.Size()), nil
	}
	entries, err := s.GetTree(h)
	if err != nil {
		return "", err
	}
	objInfo, err := s.Stat(h)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("entries=%d,size=%d", len(entries), objInfo.DiskSize), nil
}

func (s *Store) addFile(path string) (hash.Hash, error) {
	f, err := os.Open(path)
	if err != nil {
		return hash.Hash{}, fmt.Errorf("add %s: %w", path, err)
	}
	defer f.Close()

	h, err := s.PutBlob(f)
	if err != nil {
		return hash.Hash{}, fmt.Errorf("add %s: %w", path, err)
	}
	return h, nil
}

func (s *Store) addDir(path string) (hash.Hash, error) {
	dirents, err := os.ReadDir(path)
	if err != nil {
		return hash.Hash{}, fmt.Errorf("add %s: %w", path, err)
	}

	entries := make([]object.TreeEntry, 0, len(dirents))
	for _, de := range dirents {
		childPath := filepath.Join(path, de.Name())
		info, err := de.Info()
		if err != nil {
			return hash.Hash{}, fmt.Errorf("add %s: %w", childPath, err)
		}

		var entry object.TreeEntry
		switch {
		case info.Mode().IsRegular():
			h, err := s.addFile(childPath)
			if err != nil {
				return hash.Hash{}, err
			}
			entry, err = object.NewTreeEntry(object.EntryBlob, entryMode(info), h, de.Name())
			if err != nil {
				return hash.Hash{}, fmt.Errorf("add %s: %w", childPath, err)
			}
		case info.IsDir():
			h, err := s.addDir(childPath)
			if err != nil {
				return hash.Hash{}, err
			}
			entry, err = object.NewTreeEntry(object.EntryTree, object.ModeDirectory, h, de.Name())
			if err != nil {
				return hash.Hash{}, fmt.Errorf("add %s: %w", childPath, err)
			}
		default:
			return hash.Hash{}, fmt.Errorf("add %s: unsupported file type %s", childPath, info.Mode().Type())
		}
		entries = append(entries, entry)
	}

	return s.PutTree(entries)
}

// entryMode maps a file's permission bits onto the canonical tree entry
// modes: executable or regular.
func entryMode(info fs.FileInfo) uint32 {
	if info.Mode()&0o111 != 0 {
		return object.ModeExecutable
	}
	return object.ModeRegular
}
