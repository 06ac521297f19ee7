package store

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/odvcencio/casq/pkg/hash"
)

// JournalEntry records one put operation. The journal is informational:
// GC never consults it.
type JournalEntry struct {
	Timestamp int64
	Operation string
	Hash      hash.Hash
	Path      string
	Metadata  string
}

// line renders the entry in the journal's pipe-delimited wire form.
func (e JournalEntry) line() string {
	return fmt.Sprintf("%d|%s|%s|%s|%s", e.Timestamp, e.Operation, e.Hash.Hex(), e.Path, e.Metadata)
}

// parseJournalLine parses one journal record. The metadata field is the
// free-form tail, so pipes inside it survive.
func parseJournalLine(line string) (JournalEntry, bool) {
	parts := strings.SplitN(line, "|", 5)
	if len(parts) != 5 {
		return JournalEntry{}, false
	}
	ts, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return JournalEntry{}, false
	}
	h, err := hash.ParseHex(parts[2])
	if err != nil {
		return JournalEntry{}, false
	}
	return JournalEntry{
		Timestamp: ts,
		Operation: parts[1],
		Hash:      h,
		Path:      parts[3],
		Metadata:  parts[4],
	}, true
}

// Journal is the append-only operation log at the store root.
type Journal struct {
	path string
}

// openJournal opens the journal file, creating it if absent.
func openJournal(path string) (*Journal, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	f.Close()
	return &Journal{path: path}, nil
}

// Append records an operation. The timestamp is the current unix time.
func (j *Journal) Append(operation string, h hash.Hash, path, metadata string) error {
	entry := JournalEntry{
		Timestamp: time.Now().Unix(),
		Operation: operation,
		Hash:      h,
		Path:      path,
		Metadata:  metadata,
	}
	f, err := os.OpenFile(j.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("journal append: %w", err)
	}
	defer f.Close()
	if _, err := fmt.Fprintln(f, entry.line()); err != nil {
		return fmt.Errorf("journal append: %w", err)
	}
	return nil
}

// readAll returns every well-formed entry in order. Malformed lines are
// skipped by contract.
func (j *Journal) readAll() ([]JournalEntry, error) {
	f, err := os.Open(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("journal read: %w", err)
	}
	defer f.Close()

	var entries []JournalEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if entry, ok := parseJournalLine(line); ok {
			entries = append(entries, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("journal read: %w", err)
	}
	return entries, nil
}

// ReadRecent returns the most recent n entries, oldest first.
func (j *Journal) ReadRecent(n int) ([]JournalEntry, error) {
	entries, err := j.readAll()
	if err != nil {
		return nil, err
	}
	if n < len(entries) {
		entries = entries[len(entries)-n:]
	}
	return entries, nil
}

// FindOrphans returns entries whose hashes are not in the reachable
// set, giving human-readable context for orphaned objects.
func (j *Journal) FindOrphans(reachable map[hash.Hash]struct{}) ([]JournalEntry, error) {
	entries, err := j.readAll()
	if err != nil {
		return nil, err
	}
	var orphaned []JournalEntry
	for _, e := range entries {
		if _, ok := reachable[e.Hash]; !ok {
			orphaned = append(orphaned, e)
		}
	}
	return orphaned, nil
}
