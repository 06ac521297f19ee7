package store

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/odvcencio/casq/pkg/hash"
)

func TestJournalAppendRead(t *testing.T) {
	s := tempStore(t)
	h := hash.HashBytes([]byte("thing"))

	if err := s.Journal().Append("add", h, "/tmp/thing", "entries=1,size=5"); err != nil {
		t.Fatalf("Append: %v", err)
	}

	entries, err := s.Journal().ReadRecent(10)
	if err != nil {
		t.Fatalf("ReadRecent: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.Operation != "add" || e.Hash != h || e.Path != "/tmp/thing" || e.Metadata != "entries=1,size=5" {
		t.Errorf("entry: %+v", e)
	}
	if e.Timestamp == 0 {
		t.Error("timestamp not set")
	}
}

func TestJournalReadRecentLimits(t *testing.T) {
	s := tempStore(t)
	for i := 0; i < 5; i++ {
		h := hash.HashBytes([]byte(fmt.Sprintf("obj-%d", i)))
		if err := s.Journal().Append("add", h, fmt.Sprintf("/p/%d", i), ""); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := s.Journal().ReadRecent(2)
	if err != nil {
		t.Fatalf("ReadRecent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Path != "/p/3" || entries[1].Path != "/p/4" {
		t.Errorf("wrong tail: %+v", entries)
	}
}

func TestJournalIgnoresMalformedLines(t *testing.T) {
	s := tempStore(t)
	h := hash.HashBytes([]byte("valid"))
	s.Journal().Append("add", h, "/valid", "")

	f, err := os.OpenFile(filepath.Join(s.Root(), "journal"), os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	f.WriteString("garbage line\n")
	f.WriteString("123|add|nothex|/x|\n")
	f.WriteString("notanumber|add|" + h.Hex() + "|/x|\n")
	f.WriteString("\n")
	f.Close()

	entries, err := s.Journal().ReadRecent(100)
	if err != nil {
		t.Fatalf("ReadRecent: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("got %d entries, want 1 (malformed lines must be ignored)", len(entries))
	}
}

func TestJournalMetadataSurvivesPipes(t *testing.T) {
	s := tempStore(t)
	h := hash.HashBytes([]byte("meta"))
	if err := s.Journal().Append("add", h, "/p", "note=a|b|c"); err != nil {
		t.Fatal(err)
	}
	entries, err := s.Journal().ReadRecent(1)
	if err != nil {
		t.Fatal(err)
	}
	if entries[0].Metadata != "note=a|b|c" {
		t.Errorf("metadata: %q", entries[0].Metadata)
	}
}

func TestJournalFindOrphans(t *testing.T) {
	s := tempStore(t)
	kept := hash.HashBytes([]byte("kept"))
	lost := hash.HashBytes([]byte("lost"))
	s.Journal().Append("add", kept, "/kept", "")
	s.Journal().Append("add", lost, "/lost", "")

	reachable := map[hash.Hash]struct{}{kept: {}}
	orphans, err := s.Journal().FindOrphans(reachable)
	if err != nil {
		t.Fatalf("FindOrphans: %v", err)
	}
	if len(orphans) != 1 || orphans[0].Hash != lost {
		t.Errorf("orphans: %+v", orphans)
	}
}
