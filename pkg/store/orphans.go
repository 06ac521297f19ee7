package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/odvcencio/casq/pkg/hash"
	"github.com/odvcencio/casq/pkg/object"
)

// OrphanRoot is a tree that no reference names and no other tree
// contains: the root of a forgotten ingest.
type OrphanRoot struct {
	Hash       hash.Hash
	EntryCount int
	DiskSize   uint64
}

// FindOrphanRoots enumerates every tree in the store and returns those
// that are neither a reference target nor an entry of another tree.
// Inner trees of an orphaned ingest are not reported, only its root.
func (s *Store) FindOrphanRoots() ([]OrphanRoot, error) {
	refs, err := s.Refs().List()
	if err != nil {
		return nil, fmt.Errorf("find orphans: %w", err)
	}
	refTargets := make(map[hash.Hash]struct{}, len(refs))
	for _, ref := range refs {
		refTargets[ref.Target] = struct{}{}
	}

	trees := make(map[hash.Hash]OrphanRoot)
	childTrees := make(map[hash.Hash]struct{})

	err = s.forEachObject(func(h hash.Hash, path string, size int64) error {
		hdr, _, err := s.readHeader(path, h)
		if err != nil {
			return err
		}
		if hdr.Type != object.TypeTree {
			return nil
		}
		entries, err := s.GetTree(h)
		if err != nil {
			return err
		}
		trees[h] = OrphanRoot{Hash: h, EntryCount: len(entries), DiskSize: uint64(size)}
		for _, e := range entries {
			if e.Type == object.EntryTree {
				childTrees[e.Target] = struct{}{}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("find orphans: %w", err)
	}

	var orphans []OrphanRoot
	for h, info := range trees {
		if _, ok := refTargets[h]; ok {
			continue
		}
		if _, ok := childTrees[h]; ok {
			continue
		}
		orphans = append(orphans, info)
	}
	sort.Slice(orphans, func(i, j int) bool {
		return orphans[i].Hash.Compare(orphans[j].Hash) < 0
	})
	return orphans, nil
}

// OrphanJournalEntries returns journal entries whose hashes are no
// longer reachable from any reference, as human-readable context for
// orphaned objects.
func (s *Store) OrphanJournalEntries() ([]JournalEntry, error) {
	reachable, err := s.markReachable()
	if err != nil {
		return nil, err
	}
	return s.journal.FindOrphans(reachable)
}

// forEachObject calls fn for every object file in the store with its
// hash, path, and on-disk size. Files whose names do not parse as
// hashes are skipped.
func (s *Store) forEachObject(fn func(h hash.Hash, path string, size int64) error) error {
	shards, err := os.ReadDir(s.objectsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, shard := range shards {
		if !shard.IsDir() {
			continue
		}
		shardPath := filepath.Join(s.objectsDir(), shard.Name())
		objs, err := os.ReadDir(shardPath)
		if err != nil {
			return err
		}
		for _, obj := range objs {
			if obj.IsDir() {
				continue
			}
			h, err := hash.ParseHex(shard.Name() + obj.Name())
			if err != nil {
				continue
			}
			info, err := obj.Info()
			if err != nil {
				return err
			}
			if err := fn(h, filepath.Join(shardPath, obj.Name()), info.Size()); err != nil {
				return err
			}
		}
	}
	return nil
}
