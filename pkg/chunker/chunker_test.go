package chunker

import (
	"bytes"
	"io"
	"math/rand"
	"testing"

	"github.com/odvcencio/casq/pkg/hash"
)

func chunkAll(t *testing.T, data []byte) [][]byte {
	t.Helper()
	c := New(bytes.NewReader(data))
	var chunks [][]byte
	for {
		chunk, err := c.Next()
		if err == io.EOF {
			return chunks
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		chunks = append(chunks, chunk)
	}
}

func randomData(seed int64, n int) []byte {
	data := make([]byte, n)
	rand.New(rand.NewSource(seed)).Read(data)
	return data
}

func TestChunkBoundsAndSum(t *testing.T) {
	data := randomData(10, 8<<20)
	chunks := chunkAll(t, data)

	if len(chunks) < 8 {
		t.Fatalf("8 MiB yielded only %d chunks", len(chunks))
	}

	total := 0
	for i, c := range chunks {
		total += len(c)
		if len(c) > MaxSize {
			t.Errorf("chunk %d is %d bytes, above max %d", i, len(c), MaxSize)
		}
		if i < len(chunks)-1 && len(c) < MinSize {
			t.Errorf("non-final chunk %d is %d bytes, below min %d", i, len(c), MinSize)
		}
	}
	if total != len(data) {
		t.Errorf("chunk sizes sum to %d, want %d", total, len(data))
	}
}

func TestChunkContentMatchesInput(t *testing.T) {
	data := randomData(11, 3<<20)
	chunks := chunkAll(t, data)

	var rebuilt []byte
	for _, c := range chunks {
		rebuilt = append(rebuilt, c...)
	}
	if !bytes.Equal(rebuilt, data) {
		t.Error("concatenated chunks differ from input")
	}
}

func TestChunkDeterminism(t *testing.T) {
	data := randomData(12, 4<<20)
	first := chunkAll(t, data)
	second := chunkAll(t, data)

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !bytes.Equal(first[i], second[i]) {
			t.Fatalf("chunk %d differs between runs", i)
		}
	}
}

func TestSmallInputSingleChunk(t *testing.T) {
	data := randomData(13, 100*1024)
	chunks := chunkAll(t, data)
	if len(chunks) != 1 {
		t.Fatalf("100 KiB input yielded %d chunks, want 1", len(chunks))
	}
	if !bytes.Equal(chunks[0], data) {
		t.Error("single chunk differs from input")
	}
}

func TestEmptyInput(t *testing.T) {
	chunks := chunkAll(t, nil)
	if len(chunks) != 0 {
		t.Fatalf("empty input yielded %d chunks", len(chunks))
	}
}

func TestAppendPreservesPrefixChunks(t *testing.T) {
	base := randomData(14, 32<<20)
	extended := append(append([]byte(nil), base...), randomData(15, 4096)...)

	baseChunks := chunkAll(t, base)
	extChunks := chunkAll(t, extended)

	if len(baseChunks) < 16 {
		t.Fatalf("expected a long chunk sequence, got %d", len(baseChunks))
	}
	// Every boundary found before the appended tail depends only on
	// bytes the two inputs share, so all chunks but the final one must
	// reappear unchanged.
	stable := len(baseChunks) - 1
	if len(extChunks) < stable {
		t.Fatalf("extended input has %d chunks, want at least %d", len(extChunks), stable)
	}
	for i := 0; i < stable; i++ {
		if hash.HashBytes(baseChunks[i]) != hash.HashBytes(extChunks[i]) {
			t.Fatalf("chunk %d changed after append", i)
		}
	}
	if float64(stable)/float64(len(baseChunks)) < 0.95 {
		t.Fatalf("only %d of %d chunks stable", stable, len(baseChunks))
	}
}

func TestInsertionPreservesPriorChunks(t *testing.T) {
	base := randomData(16, 16<<20)
	// Insert a few bytes near the middle of the stream.
	insertAt := 8 << 20
	modified := append([]byte(nil), base[:insertAt]...)
	modified = append(modified, []byte("wedge")...)
	modified = append(modified, base[insertAt:]...)

	baseChunks := chunkAll(t, base)
	modChunks := chunkAll(t, modified)

	baseHashes := make(map[hash.Hash]struct{}, len(baseChunks))
	for _, c := range baseChunks {
		baseHashes[hash.HashBytes(c)] = struct{}{}
	}

	// All chunks ending before the insertion point are untouched; a
	// substantial fraction of the modified stream's chunks must already
	// exist in the base set.
	shared := 0
	for _, c := range modChunks {
		if _, ok := baseHashes[hash.HashBytes(c)]; ok {
			shared++
		}
	}
	if shared < len(baseChunks)/3 {
		t.Fatalf("only %d of %d chunks shared after insertion", shared, len(modChunks))
	}
}

func TestStreamingMatchesOneShot(t *testing.T) {
	data := randomData(17, 5<<20)

	// Feed the reader in awkward odd-sized pieces to stress the refill
	// path.
	c := New(&slowReader{data: data, step: 8191})
	var slow [][]byte
	for {
		chunk, err := c.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		slow = append(slow, chunk)
	}
	fast := chunkAll(t, data)

	if len(slow) != len(fast) {
		t.Fatalf("chunk counts differ: %d vs %d", len(slow), len(fast))
	}
	for i := range slow {
		if !bytes.Equal(slow[i], fast[i]) {
			t.Fatalf("chunk %d differs between slow and fast reads", i)
		}
	}
}

// slowReader returns at most step bytes per Read call.
type slowReader struct {
	data []byte
	step int
	off  int
}

func (r *slowReader) Read(p []byte) (int, error) {
	if r.off >= len(r.data) {
		return 0, io.EOF
	}
	n := r.step
	if n > len(p) {
		n = len(p)
	}
	if n > len(r.data)-r.off {
		n = len(r.data) - r.off
	}
	copy(p, r.data[r.off:r.off+n])
	r.off += n
	return n, nil
}
