package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/odvcencio/casq/pkg/hash"
	"github.com/odvcencio/casq/pkg/object"
)

// Materialize writes an object back to the filesystem. A blob or
// chunked blob becomes a single file at dest; a tree becomes a
// directory materialized recursively, preserving entry modes. Fails
// with ErrPathExists if dest is already present.
func (s *Store) Materialize(h hash.Hash, dest string) error {
	if _, err := os.Lstat(dest); err == nil {
		return fmt.Errorf("%w: %s", ErrPathExists, dest)
	}

	info, err := s.Stat(h)
	if err != nil {
		return err
	}

	switch info.Type {
	case object.TypeBlob, object.TypeChunkList:
		return s.materializeBlob(h, dest, 0o644)
	case object.TypeTree:
		return s.materializeTree(h, dest)
	default:
		return fmt.Errorf("%w: %s: unknown object type", object.ErrCorruptedObject, h)
	}
}

func (s *Store) materializeBlob(h hash.Hash, dest string, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("materialize %s: %w", h, err)
	}
	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("materialize %s: %w", h, err)
	}
	if err := s.GetBlobTo(h, f); err != nil {
		f.Close()
		os.Remove(dest)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("materialize %s: %w", h, err)
	}
	// Creation honors the umask; chmod to the exact recorded bits.
	if err := os.Chmod(dest, perm); err != nil {
		return fmt.Errorf("materialize %s: %w", h, err)
	}
	return nil
}

func (s *Store) materializeTree(h hash.Hash, dest string) error {
	entries, err := s.GetTree(h)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("materialize %s: %w", h, err)
	}

	for _, e := range entries {
		entryPath := filepath.Join(dest, e.Name)
		switch e.Type {
		case object.EntryBlob:
			if err := s.materializeBlob(e.Target, entryPath, os.FileMode(e.Mode&0o777)); err != nil {
				return err
			}
		case object.EntryTree:
			if err := s.materializeTree(e.Target, entryPath); err != nil {
				return err
			}
		}
	}
	return nil
}
