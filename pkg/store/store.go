// Package store implements the casq storage engine: a local,
// single-writer, content-addressed object store with named references,
// an operation journal, and mark-and-sweep garbage collection.
//
// Layout under the store root:
//
//	config                           key=value lines (version, algo)
//	journal                          append-only operation log
//	objects/<algo>/<xx>/<rest>       xx = first 2 hex chars of the hash
//	refs/<name>                      one append-only file per reference
package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/odvcencio/casq/pkg/hash"
	"github.com/odvcencio/casq/pkg/object"
)

// ConfigVersion is the store config schema version.
const ConfigVersion = 1

// CompressionThreshold is the payload size at and above which blobs are
// zstd-compressed. Trees are never compressed regardless of size.
const CompressionThreshold = 4096

// ChunkingThreshold is the file size at and above which blobs are split
// into content-defined chunks behind a chunk_list object.
const ChunkingThreshold = 1024 * 1024

// Store is a handle on one store root. A single process owns the root;
// concurrent external writers are undefined behavior.
type Store struct {
	root    string
	alg     hash.Algorithm
	journal *Journal
}

// Init creates a new store at root. It fails with ErrInvalidStore if a
// config file already exists, unless force is set.
func Init(root string, alg hash.Algorithm, force bool) (*Store, error) {
	if !alg.Valid() {
		return nil, fmt.Errorf("%w: %s", hash.ErrUnsupportedAlgorithm, alg)
	}

	configPath := filepath.Join(root, "config")
	if _, err := os.Stat(configPath); err == nil && !force {
		return nil, fmt.Errorf("%w: already initialized at %s", ErrInvalidStore, root)
	}

	dirs := []string{
		filepath.Join(root, "objects", alg.String()),
		filepath.Join(root, "refs"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", d, err)
		}
	}

	config := fmt.Sprintf("version=%d\nalgo=%s\n", ConfigVersion, alg)
	if err := writeFileAtomic(configPath, []byte(config)); err != nil {
		return nil, fmt.Errorf("init: write config: %w", err)
	}

	journal, err := openJournal(filepath.Join(root, "journal"))
	if err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}

	return &Store{root: root, alg: alg, journal: journal}, nil
}

// Open opens an existing store, validating its config and layout.
func Open(root string) (*Store, error) {
	raw, err := os.ReadFile(filepath.Join(root, "config"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no config at %s", ErrInvalidStore, root)
		}
		return nil, fmt.Errorf("open store: read config: %w", err)
	}

	alg, err := parseConfig(string(raw))
	if err != nil {
		return nil, err
	}

	if info, err := os.Stat(filepath.Join(root, "objects", alg.String())); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: objects directory missing at %s", ErrInvalidStore, root)
	}
	if info, err := os.Stat(filepath.Join(root, "refs")); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: refs directory missing at %s", ErrInvalidStore, root)
	}

	journal, err := openJournal(filepath.Join(root, "journal"))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	return &Store{root: root, alg: alg, journal: journal}, nil
}

// parseConfig extracts the algorithm from config contents. Unknown keys
// are ignored for forward compatibility.
func parseConfig(content string) (hash.Algorithm, error) {
	var version, algo string
	for line := range strings.Lines(content) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return 0, fmt.Errorf("%w: malformed config line %q", ErrInvalidStore, line)
		}
		switch strings.TrimSpace(key) {
		case "version":
			version = strings.TrimSpace(value)
		case "algo":
			algo = strings.TrimSpace(value)
		}
	}

	if version != fmt.Sprintf("%d", ConfigVersion) {
		return 0, fmt.Errorf("%w: unsupported config version %q", ErrInvalidStore, version)
	}
	if algo == "" {
		return 0, fmt.Errorf("%w: config is missing algo", ErrInvalidStore)
	}
	alg, err := hash.ParseAlgorithm(algo)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidStore, err)
	}
	return alg, nil
}

// Root returns the store root directory.
func (s *Store) Root() string {
	return s.root
}

// Algorithm returns the store's content hash algorithm.
func (s *Store) Algorithm() hash.Algorithm {
	return s.alg
}

// Journal returns the store's operation journal.
func (s *Store) Journal() *Journal {
	return s.journal
}

// objectsDir is the root of the sharded object tree.
func (s *Store) objectsDir() string {
	return filepath.Join(s.root, "objects", s.alg.String())
}

// objectPath returns the canonical on-disk location of an object.
func (s *Store) objectPath(h hash.Hash) string {
	return filepath.Join(s.objectsDir(), h.Prefix(), h.Suffix())
}

// Has reports whether the store contains an object with the given hash.
func (s *Store) Has(h hash.Hash) bool {
	_, err := os.Stat(s.objectPath(h))
	return err == nil
}

// ObjectInfo describes a stored object's header and on-disk footprint.
type ObjectInfo struct {
	Hash        hash.Hash
	Type        object.Type
	Compression object.Compression
	PayloadLen  uint64
	DiskSize    int64
}

// Stat reads an object's header without touching its payload.
func (s *Store) Stat(h hash.Hash) (ObjectInfo, error) {
	path := s.objectPath(h)
	hdr, size, err := s.readHeader(path, h)
	if err != nil {
		return ObjectInfo{}, err
	}
	return ObjectInfo{
		Hash:        h,
		Type:        hdr.Type,
		Compression: hdr.Compression,
		PayloadLen:  hdr.PayloadLen,
		DiskSize:    size,
	}, nil
}

// readHeader decodes the object header at path and checks that the file
// is exactly header plus payload_len bytes long. Returns the on-disk
// size alongside the header.
func (s *Store) readHeader(path string, h hash.Hash) (object.Header, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return object.Header{}, 0, fmt.Errorf("%w: %s", ErrObjectNotFound, h)
		}
		return object.Header{}, 0, fmt.Errorf("read object %s: %w", h, err)
	}
	defer f.Close()

	var buf [object.HeaderSize]byte
	if _, err := io.ReadFull(f, buf[:]); err != nil {
		return object.Header{}, 0, fmt.Errorf("%w: %s: short header: %v", object.ErrCorruptedObject, h, err)
	}
	hdr, err := object.DecodeHeader(buf[:])
	if err != nil {
		return object.Header{}, 0, fmt.Errorf("%s: %w", h, err)
	}

	info, err := f.Stat()
	if err != nil {
		return object.Header{}, 0, fmt.Errorf("read object %s: %w", h, err)
	}
	want := int64(object.HeaderSize) + int64(hdr.PayloadLen)
	if info.Size() != want {
		return object.Header{}, 0, fmt.Errorf("%w: %s: file is %d bytes, header says %d",
			object.ErrCorruptedObject, h, info.Size(), want)
	}
	return hdr, info.Size(), nil
}

// readPayload returns the payload bytes of the object at path, already
// length-checked by readHeader.
func (s *Store) readPayload(path string, h hash.Hash, hdr object.Header) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", h, err)
	}
	if uint64(len(raw)) != object.HeaderSize+hdr.PayloadLen {
		return nil, fmt.Errorf("%w: %s: payload length changed underfoot", object.ErrCorruptedObject, h)
	}
	return raw[object.HeaderSize:], nil
}

// writeObject atomically places a header-framed object at its
// content-addressed path. A final file that already exists is a dedup
// hit and counts as success.
func (s *Store) writeObject(h hash.Hash, hdr object.Header, payload []byte) error {
	dest := s.objectPath(h)
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("object write mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("object write tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	head := hdr.Encode()
	if _, err := tmp.Write(head[:]); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("object write: %w", err)
	}
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("object write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("object write close: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("object write rename: %w", err)
	}
	return nil
}

// writeFileAtomic writes data to path via a sibling temp file + rename.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
