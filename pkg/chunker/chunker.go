// Package chunker splits byte streams into content-defined chunks using
// a GearHash rolling hash with FastCDC-style normalized cut-point
// selection. Boundaries depend only on content, so a chunk's hash
// survives insertions and deletions elsewhere in the stream.
package chunker

import (
	"fmt"
	"io"
)

// Chunking parameters. These are format constants: changing them moves
// every chunk boundary and invalidates chunk-level deduplication
// against existing stores.
const (
	// MinSize is the minimum chunk size. No boundary can occur before
	// this many bytes have accumulated in the current chunk.
	MinSize = 128 * 1024

	// AvgSize is the target average chunk size. Below this point the
	// strict boundary mask applies; past it the relaxed mask takes
	// over, pulling the size distribution toward the target.
	AvgSize = 512 * 1024

	// MaxSize forces a boundary regardless of hash state, bounding the
	// worst case for any input pattern.
	MaxSize = 1024 * 1024
)

// Boundary masks. A boundary is declared when (hash & mask) == 0. The
// strict mask carries 21 high one-bits (boundary probability 1/2^21 per
// byte), the relaxed mask 17, centered around the 1/2^19 probability an
// unnormalized 512 KiB target would use.
const (
	maskStrict  uint64 = 0xFFFFF80000000000
	maskRelaxed uint64 = 0xFFFF800000000000
)

// gearWindow is the effective window of the rolling hash: after 64
// shifts a byte's contribution has left the 64-bit state.
const gearWindow = 64

// gearSkip is how many bytes of each chunk are skipped before hashing
// begins. Boundaries are impossible before MinSize, and the hash state
// at MinSize depends only on the preceding gearWindow bytes, so the
// skipped bytes cannot change any boundary decision.
const gearSkip = MinSize - gearWindow - 1

// Chunker yields successive content-defined chunks from a reader.
// Every chunk except the last has MinSize <= len <= MaxSize; the last
// may be shorter than MinSize. Chunk sizes always sum to the input
// length, and identical input yields identical chunks.
type Chunker struct {
	r    io.Reader
	buf  []byte
	scan []byte
	eof  bool
}

// New returns a Chunker reading from r.
func New(r io.Reader) *Chunker {
	return &Chunker{
		r:    r,
		buf:  make([]byte, 0, 2*MaxSize),
		scan: make([]byte, 64*1024),
	}
}

// Next returns the next chunk, or io.EOF when the input is exhausted.
// The returned slice is owned by the caller.
func (c *Chunker) Next() ([]byte, error) {
	for !c.eof && len(c.buf) < MaxSize {
		n, err := c.r.Read(c.scan)
		c.buf = append(c.buf, c.scan[:n]...)
		if err == io.EOF {
			c.eof = true
		} else if err != nil {
			return nil, fmt.Errorf("chunker read: %w", err)
		}
	}
	if len(c.buf) == 0 {
		return nil, io.EOF
	}

	n := cutPoint(c.buf)
	chunk := make([]byte, n)
	copy(chunk, c.buf[:n])
	c.buf = append(c.buf[:0], c.buf[n:]...)
	return chunk, nil
}

// cutPoint returns the length of the next chunk within data: the first
// normalized GearHash boundary in [MinSize, MaxSize], or the data/max
// limit when no boundary fires.
func cutPoint(data []byte) int {
	n := len(data)
	if n <= MinSize {
		return n
	}
	if n > MaxSize {
		n = MaxSize
	}
	normal := AvgSize
	if normal > n {
		normal = n
	}

	var h uint64
	pos := gearSkip
	for pos < n {
		h = h<<1 + gearTable[data[pos]]
		pos++
		if pos < MinSize {
			continue
		}
		if pos < normal {
			if h&maskStrict == 0 {
				return pos
			}
		} else if h&maskRelaxed == 0 {
			return pos
		}
	}
	return n
}
