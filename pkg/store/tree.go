package store

import (
	"fmt"

	"github.com/odvcencio/casq/pkg/hash"
	"github.com/odvcencio/casq/pkg/object"
)

// PutTree canonicalizes, validates, and stores a tree. Entries may be
// given in any order; the tree hash depends only on their canonical
// sorted encoding. Trees are stored uncompressed.
func (s *Store) PutTree(entries []object.TreeEntry) (hash.Hash, error) {
	payload, err := object.EncodeTree(entries)
	if err != nil {
		return hash.Hash{}, fmt.Errorf("put tree: %w", err)
	}

	h := hash.HashBytes(payload)
	if s.Has(h) {
		return h, nil
	}

	hdr := object.Header{
		Type:        object.TypeTree,
		Algorithm:   s.alg,
		Compression: object.CompressionNone,
		PayloadLen:  uint64(len(payload)),
	}
	if err := s.writeObject(h, hdr, payload); err != nil {
		return hash.Hash{}, fmt.Errorf("put tree %s: %w", h, err)
	}
	return h, nil
}

// GetTree reads and decodes a tree object, verifying its content hash.
func (s *Store) GetTree(h hash.Hash) ([]object.TreeEntry, error) {
	path := s.objectPath(h)
	hdr, _, err := s.readHeader(path, h)
	if err != nil {
		return nil, err
	}
	if hdr.Type != object.TypeTree {
		return nil, fmt.Errorf("get tree %s: object is a %s", h, hdr.Type)
	}
	if hdr.Compression != object.CompressionNone {
		return nil, fmt.Errorf("%w: %s: tree must not be compressed", object.ErrCorruptedObject, h)
	}

	payload, err := s.readPayload(path, h, hdr)
	if err != nil {
		return nil, err
	}
	if got := hash.HashBytes(payload); got != h {
		return nil, fmt.Errorf("%w: %s: content hashes to %s", object.ErrCorruptedObject, h, got)
	}
	return object.DecodeTree(payload)
}
