package object

import (
	"encoding/binary"
	"fmt"

	"github.com/odvcencio/casq/pkg/hash"
)

// ChunkEntrySize is the encoded size of one chunk list entry:
// 32-byte chunk hash followed by the chunk size as u64 LE.
const ChunkEntrySize = hash.Size + 8

// ChunkEntry names one chunk of a large blob.
type ChunkEntry struct {
	Hash hash.Hash
	Size uint64
}

// EncodeChunkList serializes chunk entries in order. The result is the
// payload of a chunk_list object; its content hash is the hash of the
// original uncompressed file, not of this payload.
func EncodeChunkList(entries []ChunkEntry) []byte {
	buf := make([]byte, 0, len(entries)*ChunkEntrySize)
	for _, e := range entries {
		buf = append(buf, e.Hash[:]...)
		buf = binary.LittleEndian.AppendUint64(buf, e.Size)
	}
	return buf
}

// DecodeChunkList parses a chunk_list payload. The payload length must
// be an exact multiple of ChunkEntrySize.
func DecodeChunkList(data []byte) ([]ChunkEntry, error) {
	if len(data)%ChunkEntrySize != 0 {
		return nil, fmt.Errorf("%w: chunk list payload of %d bytes is not a multiple of %d",
			ErrCorruptedObject, len(data), ChunkEntrySize)
	}
	entries := make([]ChunkEntry, 0, len(data)/ChunkEntrySize)
	for off := 0; off < len(data); off += ChunkEntrySize {
		var e ChunkEntry
		copy(e.Hash[:], data[off:off+hash.Size])
		e.Size = binary.LittleEndian.Uint64(data[off+hash.Size : off+ChunkEntrySize])
		entries = append(entries, e)
	}
	return entries, nil
}
