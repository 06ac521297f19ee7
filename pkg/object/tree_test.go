package object

import (
	"errors"
	"math/rand"
	"reflect"
	"strings"
	"testing"

	"github.com/odvcencio/casq/pkg/hash"
)

func mustEntry(t *testing.T, typ EntryType, mode uint32, name string) TreeEntry {
	t.Helper()
	e, err := NewTreeEntry(typ, mode, hash.HashBytes([]byte(name)), name)
	if err != nil {
		t.Fatalf("NewTreeEntry(%q): %v", name, err)
	}
	return e
}

func TestTreeEntryValidation(t *testing.T) {
	target := hash.HashBytes([]byte("x"))
	cases := []struct {
		name      string
		entryName string
		typ       EntryType
	}{
		{"empty name", "", EntryBlob},
		{"nul in name", "a\x00b", EntryBlob},
		{"name too long", strings.Repeat("a", 256), EntryBlob},
		{"invalid utf8", "a\xff\xfe", EntryBlob},
		{"bad type", "ok", EntryType(9)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewTreeEntry(tc.typ, ModeRegular, target, tc.entryName); !errors.Is(err, ErrInvalidEntry) {
				t.Errorf("got %v, want ErrInvalidEntry", err)
			}
		})
	}

	// 255 bytes is the longest legal name.
	if _, err := NewTreeEntry(EntryBlob, ModeRegular, target, strings.Repeat("a", 255)); err != nil {
		t.Errorf("255-byte name rejected: %v", err)
	}
}

func TestTreeRoundTrip(t *testing.T) {
	entries := []TreeEntry{
		mustEntry(t, EntryBlob, ModeRegular, "b.txt"),
		mustEntry(t, EntryTree, ModeDirectory, "sub"),
		mustEntry(t, EntryBlob, ModeExecutable, "a.sh"),
	}

	encoded, err := EncodeTree(entries)
	if err != nil {
		t.Fatalf("EncodeTree: %v", err)
	}
	decoded, err := DecodeTree(encoded)
	if err != nil {
		t.Fatalf("DecodeTree: %v", err)
	}

	sorted := make([]TreeEntry, len(entries))
	copy(sorted, entries)
	SortEntries(sorted)
	if !reflect.DeepEqual(decoded, sorted) {
		t.Fatalf("round trip: got %+v, want %+v", decoded, sorted)
	}
	if decoded[0].Name != "a.sh" || decoded[1].Name != "b.txt" || decoded[2].Name != "sub" {
		t.Fatalf("canonical order wrong: %+v", decoded)
	}
}

func TestTreeCanonicalizationOrderIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	entries := []TreeEntry{
		mustEntry(t, EntryBlob, ModeRegular, "one"),
		mustEntry(t, EntryBlob, ModeRegular, "two"),
		mustEntry(t, EntryTree, ModeDirectory, "three"),
		mustEntry(t, EntryBlob, ModeExecutable, "four"),
		mustEntry(t, EntryBlob, ModeRegular, "five"),
	}

	canonical, err := EncodeTree(entries)
	if err != nil {
		t.Fatalf("EncodeTree: %v", err)
	}
	want := hash.HashBytes(canonical)

	for i := 0; i < 32; i++ {
		shuffled := make([]TreeEntry, len(entries))
		copy(shuffled, entries)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		encoded, err := EncodeTree(shuffled)
		if err != nil {
			t.Fatalf("EncodeTree(shuffled): %v", err)
		}
		if hash.HashBytes(encoded) != want {
			t.Fatal("tree hash depends on input order")
		}
	}
}

func TestEncodeTreeDuplicateNames(t *testing.T) {
	entries := []TreeEntry{
		mustEntry(t, EntryBlob, ModeRegular, "same"),
		mustEntry(t, EntryTree, ModeDirectory, "same"),
	}
	if _, err := EncodeTree(entries); !errors.Is(err, ErrInvalidEntry) {
		t.Errorf("duplicate names: got %v, want ErrInvalidEntry", err)
	}
}

func TestEncodeEmptyTree(t *testing.T) {
	encoded, err := EncodeTree(nil)
	if err != nil {
		t.Fatalf("EncodeTree(nil): %v", err)
	}
	if len(encoded) != 0 {
		t.Errorf("empty tree encodes to %d bytes", len(encoded))
	}
	decoded, err := DecodeTree(encoded)
	if err != nil {
		t.Fatalf("DecodeTree: %v", err)
	}
	if len(decoded) != 0 {
		t.Errorf("empty tree decodes to %d entries", len(decoded))
	}
}

func TestDecodeTreeTruncated(t *testing.T) {
	entry := mustEntry(t, EntryBlob, ModeRegular, "file.txt")
	encoded, err := EncodeTree([]TreeEntry{entry})
	if err != nil {
		t.Fatalf("EncodeTree: %v", err)
	}

	for _, n := range []int{1, 5, 37, len(encoded) - 1} {
		if _, err := DecodeTree(encoded[:n]); !errors.Is(err, ErrCorruptedObject) {
			t.Errorf("DecodeTree(%d bytes): got %v, want ErrCorruptedObject", n, err)
		}
	}
}

func TestDecodeTreeInvalidEntry(t *testing.T) {
	entry := mustEntry(t, EntryBlob, ModeRegular, "ab")
	encoded, err := EncodeTree([]TreeEntry{entry})
	if err != nil {
		t.Fatalf("EncodeTree: %v", err)
	}

	// Corrupt the type byte.
	bad := make([]byte, len(encoded))
	copy(bad, encoded)
	bad[0] = 9
	if _, err := DecodeTree(bad); !errors.Is(err, ErrCorruptedObject) {
		t.Errorf("bad type byte: got %v, want ErrCorruptedObject", err)
	}

	// Inject a NUL into the name.
	copy(bad, encoded)
	bad[len(bad)-1] = 0
	if _, err := DecodeTree(bad); !errors.Is(err, ErrCorruptedObject) {
		t.Errorf("NUL in name: got %v, want ErrCorruptedObject", err)
	}
}
