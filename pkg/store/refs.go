package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/odvcencio/casq/pkg/hash"
)

// Refs gives access to the store's named references. A reference is an
// append-only text file under refs/; its current value is the last
// non-blank, non-comment line that parses as a hash.
type Refs struct {
	store *Store
}

// Refs returns the reference manager for the store.
func (s *Store) Refs() *Refs {
	return &Refs{store: s}
}

// Ref is one resolved reference.
type Ref struct {
	Name   string
	Target hash.Hash
}

// refPath validates name and returns its file path. Names must not be
// empty, contain path separators or NUL, or escape the refs directory.
func (r *Refs) refPath(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrInvalidRef)
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return "", fmt.Errorf("%w: %q contains a path separator or NUL", ErrInvalidRef, name)
	}
	if name == "." || name == ".." || strings.Contains(name, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidRef, name)
	}
	return filepath.Join(r.store.root, "refs", name), nil
}

// Add appends a new current value to the named reference, creating it
// if needed.
func (r *Refs) Add(name string, h hash.Hash) error {
	path, err := r.refPath(name)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("ref %s: %w", name, err)
	}
	defer f.Close()
	if _, err := fmt.Fprintln(f, h.Hex()); err != nil {
		return fmt.Errorf("ref %s: %w", name, err)
	}
	return nil
}

// Get resolves the current value of the named reference.
func (r *Refs) Get(name string) (hash.Hash, error) {
	path, err := r.refPath(name)
	if err != nil {
		return hash.Hash{}, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return hash.Hash{}, fmt.Errorf("%w: ref %q", ErrObjectNotFound, name)
		}
		return hash.Hash{}, fmt.Errorf("ref %s: %w", name, err)
	}

	var current hash.Hash
	found := false
	for line := range strings.Lines(string(raw)) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		h, err := hash.ParseHex(line)
		if err != nil {
			continue
		}
		current = h
		found = true
	}
	if !found {
		return hash.Hash{}, fmt.Errorf("%w: ref %q has no value", ErrObjectNotFound, name)
	}
	return current, nil
}

// List resolves every reference, ordered by name. References whose
// files hold no parseable value are skipped.
func (r *Refs) List() ([]Ref, error) {
	dirents, err := os.ReadDir(filepath.Join(r.store.root, "refs"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list refs: %w", err)
	}

	var refs []Ref
	for _, de := range dirents {
		if de.IsDir() {
			continue
		}
		h, err := r.Get(de.Name())
		if err != nil {
			continue
		}
		refs = append(refs, Ref{Name: de.Name(), Target: h})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

// Remove deletes the named reference.
func (r *Refs) Remove(name string) error {
	path, err := r.refPath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: ref %q", ErrObjectNotFound, name)
		}
		return fmt.Errorf("ref %s: %w", name, err)
	}
	return nil
}
