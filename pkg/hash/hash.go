// Package hash provides the content digest used to address every object
// in a casq store: a 32-byte BLAKE3 hash with a lowercase hex form.
package hash

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// Size is the digest size in bytes.
const Size = 32

// HexLen is the length of the hex form of a Hash.
const HexLen = Size * 2

var (
	// ErrInvalidHash reports malformed hex input.
	ErrInvalidHash = errors.New("invalid hash")

	// ErrUnsupportedAlgorithm reports an algorithm name or id the store
	// does not know.
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")
)

// Hash is a raw 32-byte BLAKE3 digest. Equality is byte equality;
// ordering is byte-lexicographic via Compare.
type Hash [Size]byte

// HashBytes computes the BLAKE3 digest of data.
func HashBytes(data []byte) Hash {
	return Hash(blake3.Sum256(data))
}

// HashReader computes the BLAKE3 digest of everything readable from r.
func HashReader(r io.Reader) (Hash, error) {
	h := NewHasher()
	if _, err := io.Copy(h, r); err != nil {
		return Hash{}, fmt.Errorf("hash reader: %w", err)
	}
	return h.Sum(), nil
}

// HashFile computes the BLAKE3 digest of the file at path.
func HashFile(path string) (Hash, error) {
	f, err := os.Open(path)
	if err != nil {
		return Hash{}, fmt.Errorf("hash file: %w", err)
	}
	defer f.Close()
	return HashReader(f)
}

// ParseHex parses a 64-character hex string into a Hash.
func ParseHex(s string) (Hash, error) {
	if len(s) != HexLen {
		return Hash{}, fmt.Errorf("%w: got %d hex characters, want %d", ErrInvalidHash, len(s), HexLen)
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	var h Hash
	copy(h[:], raw)
	return h, nil
}

// Hex returns the 64-character lowercase hex form.
func (h Hash) Hex() string {
	return hex.EncodeToString(h[:])
}

// Prefix returns the first 2 hex characters, used for directory sharding.
func (h Hash) Prefix() string {
	return hex.EncodeToString(h[:1])
}

// Suffix returns the remaining 62 hex characters, used as the object
// file name within a shard.
func (h Hash) Suffix() string {
	return hex.EncodeToString(h[1:])
}

// Compare orders hashes byte-lexicographically.
func (h Hash) Compare(other Hash) int {
	return bytes.Compare(h[:], other[:])
}

func (h Hash) String() string {
	return h.Hex()
}

// Hasher computes a digest incrementally. The zero value is not usable;
// create one with NewHasher.
type Hasher struct {
	inner *blake3.Hasher
}

// NewHasher returns a fresh incremental BLAKE3 hasher.
func NewHasher() *Hasher {
	return &Hasher{inner: blake3.New()}
}

func (h *Hasher) Write(p []byte) (int, error) {
	return h.inner.Write(p)
}

// Sum returns the digest of everything written so far.
func (h *Hasher) Sum() Hash {
	var out Hash
	copy(out[:], h.inner.Sum(nil))
	return out
}

// Algorithm identifies the content hash algorithm of a store. The id is
// the byte encoded into object headers; the string form is what the
// store config records.
type Algorithm uint8

// AlgorithmBlake3 is BLAKE3 with 256-bit output, the only algorithm the
// current store format defines.
const AlgorithmBlake3 Algorithm = 1

// String returns the config-file name of the algorithm.
func (a Algorithm) String() string {
	switch a {
	case AlgorithmBlake3:
		return "blake3-256"
	default:
		return fmt.Sprintf("algorithm(%d)", uint8(a))
	}
}

// ID returns the header byte for the algorithm.
func (a Algorithm) ID() uint8 {
	return uint8(a)
}

// Valid reports whether a is a known algorithm.
func (a Algorithm) Valid() bool {
	return a == AlgorithmBlake3
}

// ParseAlgorithm resolves a config-file algorithm name.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch s {
	case "blake3-256":
		return AlgorithmBlake3, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, s)
	}
}

// AlgorithmFromID resolves a header algorithm byte.
func AlgorithmFromID(id uint8) (Algorithm, error) {
	a := Algorithm(id)
	if !a.Valid() {
		return 0, fmt.Errorf("%w: id %d", ErrUnsupportedAlgorithm, id)
	}
	return a, nil
}
