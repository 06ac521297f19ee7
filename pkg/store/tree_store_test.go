package store

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/odvcencio/casq/pkg/hash"
	"github.com/odvcencio/casq/pkg/object"
)

func blobEntry(t *testing.T, s *Store, content, name string) object.TreeEntry {
	t.Helper()
	h, err := s.PutBlob(bytes.NewReader([]byte(content)))
	if err != nil {
		t.Fatalf("PutBlob: %v", err)
	}
	e, err := object.NewTreeEntry(object.EntryBlob, object.ModeRegular, h, name)
	if err != nil {
		t.Fatalf("NewTreeEntry: %v", err)
	}
	return e
}

func TestPutTreeCanonicalization(t *testing.T) {
	s := tempStore(t)
	a := blobEntry(t, s, "content a", "a.txt")
	b := blobEntry(t, s, "content b", "b.txt")

	h1, err := s.PutTree([]object.TreeEntry{b, a})
	if err != nil {
		t.Fatalf("PutTree: %v", err)
	}
	h2, err := s.PutTree([]object.TreeEntry{a, b})
	if err != nil {
		t.Fatalf("PutTree (reversed): %v", err)
	}
	if h1 != h2 {
		t.Errorf("tree hash depends on entry order: %s vs %s", h1, h2)
	}
}

func TestTreeRoundTripThroughStore(t *testing.T) {
	s := tempStore(t)
	entries := []object.TreeEntry{
		blobEntry(t, s, "one", "z-last.txt"),
		blobEntry(t, s, "two", "a-first.txt"),
	}

	h, err := s.PutTree(entries)
	if err != nil {
		t.Fatalf("PutTree: %v", err)
	}
	got, err := s.GetTree(h)
	if err != nil {
		t.Fatalf("GetTree: %v", err)
	}

	want := make([]object.TreeEntry, len(entries))
	copy(want, entries)
	object.SortEntries(want)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetTree: got %+v, want %+v", got, want)
	}
}

func TestPutTreeInvalidEntry(t *testing.T) {
	s := tempStore(t)
	bad := object.TreeEntry{
		Type:   object.EntryBlob,
		Mode:   object.ModeRegular,
		Target: hash.HashBytes([]byte("x")),
		Name:   "",
	}
	if _, err := s.PutTree([]object.TreeEntry{bad}); !errors.Is(err, object.ErrInvalidEntry) {
		t.Errorf("got %v, want ErrInvalidEntry", err)
	}
}

func TestGetTreeNotFound(t *testing.T) {
	s := tempStore(t)
	if _, err := s.GetTree(hash.HashBytes([]byte("missing"))); !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("got %v, want ErrObjectNotFound", err)
	}
}

func TestGetTreeOnBlob(t *testing.T) {
	s := tempStore(t)
	h, err := s.PutBlob(bytes.NewReader([]byte("not a tree")))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetTree(h); err == nil {
		t.Error("GetTree on a blob succeeded")
	}
}

func TestEmptyTree(t *testing.T) {
	s := tempStore(t)
	h, err := s.PutTree(nil)
	if err != nil {
		t.Fatalf("PutTree(nil): %v", err)
	}
	entries, err := s.GetTree(h)
	if err != nil {
		t.Fatalf("GetTree: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("empty tree has %d entries", len(entries))
	}
}
