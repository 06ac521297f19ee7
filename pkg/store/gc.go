package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/odvcencio/casq/pkg/hash"
	"github.com/odvcencio/casq/pkg/object"
)

// GCStats summarizes a garbage collection run. In dry-run mode the
// counters cover what would have been deleted.
type GCStats struct {
	ObjectsDeleted int    `json:"objects_deleted"`
	BytesFreed     uint64 `json:"bytes_freed"`
}

// GC reclaims objects unreachable from any reference. The mark phase
// walks tree and chunk list edges from every ref target; a read error
// on a reachable object aborts before anything is deleted. The sweep
// phase removes every unmarked object; per-object deletion failures are
// collected and returned joined, without stopping the sweep.
func (s *Store) GC(dryRun bool) (GCStats, error) {
	live, err := s.markReachable()
	if err != nil {
		return GCStats{}, err
	}
	return s.sweep(live, dryRun)
}

// markReachable computes the reachable closure from all references
// using an explicit work stack. Object graphs are acyclic by
// construction; duplicate edges are dropped via the visited set.
// Ref targets that no longer exist are skipped.
func (s *Store) markReachable() (map[hash.Hash]struct{}, error) {
	refs, err := s.Refs().List()
	if err != nil {
		return nil, fmt.Errorf("gc mark: %w", err)
	}

	live := make(map[hash.Hash]struct{})
	stack := make([]hash.Hash, 0, len(refs))
	for _, ref := range refs {
		stack = append(stack, ref.Target)
	}

	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := live[h]; ok {
			continue
		}
		if !s.Has(h) {
			continue
		}
		live[h] = struct{}{}

		path := s.objectPath(h)
		hdr, _, err := s.readHeader(path, h)
		if err != nil {
			return nil, fmt.Errorf("gc mark: %w", err)
		}
		switch hdr.Type {
		case object.TypeBlob:
			// No outgoing edges.
		case object.TypeTree:
			entries, err := s.GetTree(h)
			if err != nil {
				return nil, fmt.Errorf("gc mark: %w", err)
			}
			for _, e := range entries {
				stack = append(stack, e.Target)
			}
		case object.TypeChunkList:
			raw, err := s.readPayload(path, h, hdr)
			if err != nil {
				return nil, fmt.Errorf("gc mark: %w", err)
			}
			entries, err := object.DecodeChunkList(raw)
			if err != nil {
				return nil, fmt.Errorf("gc mark: %s: %w", h, err)
			}
			for _, e := range entries {
				stack = append(stack, e.Hash)
			}
		}
	}
	return live, nil
}

// sweep enumerates every object file and deletes the unmarked ones.
// Files whose names do not parse as hashes (stray temp files) are left
// alone. Empty shard directories are pruned after a real sweep.
func (s *Store) sweep(live map[hash.Hash]struct{}, dryRun bool) (GCStats, error) {
	var stats GCStats
	var deleteErrs []error

	shards, err := os.ReadDir(s.objectsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return stats, nil
		}
		return stats, fmt.Errorf("gc sweep: %w", err)
	}

	for _, shard := range shards {
		if !shard.IsDir() {
			continue
		}
		shardPath := filepath.Join(s.objectsDir(), shard.Name())
		objs, err := os.ReadDir(shardPath)
		if err != nil {
			deleteErrs = append(deleteErrs, fmt.Errorf("gc sweep %s: %w", shardPath, err))
			continue
		}

		for _, obj := range objs {
			if obj.IsDir() {
				continue
			}
			h, err := hash.ParseHex(shard.Name() + obj.Name())
			if err != nil {
				continue
			}
			if _, ok := live[h]; ok {
				continue
			}

			objPath := filepath.Join(shardPath, obj.Name())
			info, err := obj.Info()
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					continue
				}
				deleteErrs = append(deleteErrs, fmt.Errorf("gc sweep %s: %w", h, err))
				continue
			}
			if !dryRun {
				if err := os.Remove(objPath); err != nil {
					deleteErrs = append(deleteErrs, fmt.Errorf("gc sweep %s: %w", h, err))
					continue
				}
			}
			stats.ObjectsDeleted++
			stats.BytesFreed += uint64(info.Size())
		}

		if !dryRun {
			// Ignore failure: the shard may have live objects left.
			os.Remove(shardPath)
		}
	}

	return stats, errors.Join(deleteErrs...)
}
