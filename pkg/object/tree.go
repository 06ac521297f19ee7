package object

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/odvcencio/casq/pkg/hash"
)

// EntryType identifies what a tree entry points at.
type EntryType uint8

const (
	EntryBlob EntryType = 1
	EntryTree EntryType = 2
)

// Valid reports whether t is a known entry type.
func (t EntryType) Valid() bool {
	return t == EntryBlob || t == EntryTree
}

func (t EntryType) String() string {
	switch t {
	case EntryBlob:
		return "blob"
	case EntryTree:
		return "tree"
	default:
		return fmt.Sprintf("entry(%d)", uint8(t))
	}
}

// Canonical POSIX modes recorded in tree entries.
const (
	ModeRegular    uint32 = 0o100644
	ModeExecutable uint32 = 0o100755
	ModeDirectory  uint32 = 0o040755
)

// MaxNameLen is the maximum entry name length in bytes.
const MaxNameLen = 255

// TreeEntry is one entry in a tree object.
//
// Wire format:
//
//	0x00  1   type (1=blob, 2=tree)
//	0x01  4   mode (u32 LE)
//	0x05  32  target hash (raw)
//	0x25  1   name_len (1..=255)
//	0x26  n   name bytes (UTF-8, no NUL)
type TreeEntry struct {
	Type   EntryType
	Mode   uint32
	Target hash.Hash
	Name   string
}

// NewTreeEntry constructs a validated entry.
func NewTreeEntry(typ EntryType, mode uint32, target hash.Hash, name string) (TreeEntry, error) {
	e := TreeEntry{Type: typ, Mode: mode, Target: target, Name: name}
	if err := e.Validate(); err != nil {
		return TreeEntry{}, err
	}
	return e, nil
}

// Validate checks the entry against the tree codec rules.
func (e TreeEntry) Validate() error {
	if !e.Type.Valid() {
		return fmt.Errorf("%w: unknown entry type %d", ErrInvalidEntry, uint8(e.Type))
	}
	if len(e.Name) == 0 {
		return fmt.Errorf("%w: empty name", ErrInvalidEntry)
	}
	if len(e.Name) > MaxNameLen {
		return fmt.Errorf("%w: name is %d bytes (max %d)", ErrInvalidEntry, len(e.Name), MaxNameLen)
	}
	if strings.IndexByte(e.Name, 0) >= 0 {
		return fmt.Errorf("%w: name contains NUL", ErrInvalidEntry)
	}
	if !utf8.ValidString(e.Name) {
		return fmt.Errorf("%w: name is not valid UTF-8", ErrInvalidEntry)
	}
	return nil
}

func (e TreeEntry) encodedLen() int {
	return 1 + 4 + hash.Size + 1 + len(e.Name)
}

func (e TreeEntry) appendTo(buf []byte) []byte {
	buf = append(buf, uint8(e.Type))
	buf = binary.LittleEndian.AppendUint32(buf, e.Mode)
	buf = append(buf, e.Target[:]...)
	buf = append(buf, uint8(len(e.Name)))
	buf = append(buf, e.Name...)
	return buf
}

// SortEntries puts entries into canonical order: ascending by name as a
// byte sequence.
func SortEntries(entries []TreeEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return bytes.Compare([]byte(entries[i].Name), []byte(entries[j].Name)) < 0
	})
}

// EncodeTree validates, canonicalizes, and serializes a tree payload.
// The caller's slice is not reordered. Duplicate names are rejected:
// the canonical form requires unique names within one tree.
func EncodeTree(entries []TreeEntry) ([]byte, error) {
	sorted := make([]TreeEntry, len(entries))
	copy(sorted, entries)
	SortEntries(sorted)

	size := 0
	for i, e := range sorted {
		if err := e.Validate(); err != nil {
			return nil, err
		}
		if i > 0 && sorted[i-1].Name == e.Name {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidEntry, e.Name)
		}
		size += e.encodedLen()
	}

	buf := make([]byte, 0, size)
	for _, e := range sorted {
		buf = e.appendTo(buf)
	}
	return buf, nil
}

// DecodeTree parses a tree payload into its entries. Any truncation or
// validation failure yields ErrCorruptedObject.
func DecodeTree(data []byte) ([]TreeEntry, error) {
	var entries []TreeEntry
	off := 0
	for off < len(data) {
		rest := data[off:]
		if len(rest) < 1+4+hash.Size+1 {
			return nil, fmt.Errorf("%w: tree entry truncated at offset %d", ErrCorruptedObject, off)
		}
		var e TreeEntry
		e.Type = EntryType(rest[0])
		e.Mode = binary.LittleEndian.Uint32(rest[1:5])
		copy(e.Target[:], rest[5:5+hash.Size])
		nameLen := int(rest[5+hash.Size])
		nameStart := 1 + 4 + hash.Size + 1
		if len(rest) < nameStart+nameLen {
			return nil, fmt.Errorf("%w: tree entry name truncated at offset %d", ErrCorruptedObject, off)
		}
		e.Name = string(rest[nameStart : nameStart+nameLen])
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptedObject, err)
		}
		entries = append(entries, e)
		off += nameStart + nameLen
	}
	return entries, nil
}
