// Package object defines the on-disk binary formats of the store: the
// 16-byte framed object header, the chunk list payload, and the tree
// entry codec.
//
// Every object file is a header followed by a payload:
//
//	0x00  4   "CAFS" magic
//	0x04  1   version = 2
//	0x05  1   type: 1=blob, 2=tree, 3=chunk_list
//	0x06  1   algorithm: 1=blake3-256
//	0x07  1   compression: 0=none, 1=zstd
//	0x08  8   payload_len (u64 LE, post-compression size)
package object

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/odvcencio/casq/pkg/hash"
)

// Magic is the 4-byte prefix of every object file.
var Magic = [4]byte{'C', 'A', 'F', 'S'}

// Version is the current object format version. The store reads and
// writes only this version; v1 files are rejected.
const Version = 2

// HeaderSize is the encoded header length in bytes.
const HeaderSize = 16

var (
	// ErrCorruptedObject reports a header mismatch, hash verification
	// failure, invalid codec payload, or wrong object length.
	ErrCorruptedObject = errors.New("corrupted object")

	// ErrInvalidEntry reports a tree entry that violates the validation
	// rules.
	ErrInvalidEntry = errors.New("invalid tree entry")
)

// Type identifies the kind of object stored.
type Type uint8

const (
	TypeBlob      Type = 1
	TypeTree      Type = 2
	TypeChunkList Type = 3
)

// Valid reports whether t is a known object type.
func (t Type) Valid() bool {
	return t == TypeBlob || t == TypeTree || t == TypeChunkList
}

func (t Type) String() string {
	switch t {
	case TypeBlob:
		return "blob"
	case TypeTree:
		return "tree"
	case TypeChunkList:
		return "chunk_list"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// Compression identifies the payload compression of an object.
type Compression uint8

const (
	CompressionNone Compression = 0
	CompressionZstd Compression = 1
)

// Valid reports whether c is a known compression tag.
func (c Compression) Valid() bool {
	return c == CompressionNone || c == CompressionZstd
}

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// Header is the decoded form of the 16-byte object header. Version is
// implicit: encode always writes Version, decode rejects anything else.
type Header struct {
	Type        Type
	Algorithm   hash.Algorithm
	Compression Compression
	PayloadLen  uint64
}

// Encode serializes the header to its 16-byte form.
func (h Header) Encode() [HeaderSize]byte {
	var buf [HeaderSize]byte
	copy(buf[0:4], Magic[:])
	buf[4] = Version
	buf[5] = uint8(h.Type)
	buf[6] = h.Algorithm.ID()
	buf[7] = uint8(h.Compression)
	binary.LittleEndian.PutUint64(buf[8:16], h.PayloadLen)
	return buf
}

// DecodeHeader parses a 16-byte object header. It never panics; any
// malformed input yields ErrCorruptedObject.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, fmt.Errorf("%w: header truncated at %d bytes", ErrCorruptedObject, len(buf))
	}
	if !bytes.Equal(buf[0:4], Magic[:]) {
		return Header{}, fmt.Errorf("%w: bad magic %q", ErrCorruptedObject, buf[0:4])
	}
	if buf[4] != Version {
		return Header{}, fmt.Errorf("%w: unsupported version %d", ErrCorruptedObject, buf[4])
	}
	typ := Type(buf[5])
	if !typ.Valid() {
		return Header{}, fmt.Errorf("%w: unknown object type %d", ErrCorruptedObject, buf[5])
	}
	alg, err := hash.AlgorithmFromID(buf[6])
	if err != nil {
		return Header{}, fmt.Errorf("%w: %v", ErrCorruptedObject, err)
	}
	comp := Compression(buf[7])
	if !comp.Valid() {
		return Header{}, fmt.Errorf("%w: unknown compression %d", ErrCorruptedObject, buf[7])
	}
	return Header{
		Type:        typ,
		Algorithm:   alg,
		Compression: comp,
		PayloadLen:  binary.LittleEndian.Uint64(buf[8:16]),
	}, nil
}
