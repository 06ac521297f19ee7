package object

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"github.com/odvcencio/casq/pkg/hash"
)

func TestChunkListRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	for _, n := range []int{0, 1, 3, 20} {
		entries := make([]ChunkEntry, n)
		for i := range entries {
			rng.Read(entries[i].Hash[:])
			entries[i].Size = rng.Uint64()
		}

		encoded := EncodeChunkList(entries)
		if len(encoded) != n*ChunkEntrySize {
			t.Fatalf("encoded length: got %d, want %d", len(encoded), n*ChunkEntrySize)
		}
		decoded, err := DecodeChunkList(encoded)
		if err != nil {
			t.Fatalf("DecodeChunkList: %v", err)
		}
		if n == 0 {
			if len(decoded) != 0 {
				t.Fatalf("decoded %d entries from empty payload", len(decoded))
			}
			continue
		}
		if !reflect.DeepEqual(decoded, entries) {
			t.Fatalf("round trip mismatch for %d entries", n)
		}
	}
}

func TestChunkListBadLength(t *testing.T) {
	for _, n := range []int{1, 39, 41, 79, 399} {
		if _, err := DecodeChunkList(make([]byte, n)); !errors.Is(err, ErrCorruptedObject) {
			t.Errorf("DecodeChunkList(%d bytes): got %v, want ErrCorruptedObject", n, err)
		}
	}
}

func TestChunkEntrySize(t *testing.T) {
	if ChunkEntrySize != hash.Size+8 {
		t.Errorf("ChunkEntrySize = %d, want %d", ChunkEntrySize, hash.Size+8)
	}
}
