package store

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/odvcencio/casq/pkg/chunker"
	"github.com/odvcencio/casq/pkg/hash"
	"github.com/odvcencio/casq/pkg/object"
)

// PutBlob stores the bytes readable from r and returns their content
// hash. Inputs below ChunkingThreshold become a single blob object;
// larger inputs are streamed through the content-defined chunker and
// stored as a chunk_list whose hash is that of the original bytes.
func (s *Store) PutBlob(r io.Reader) (hash.Hash, error) {
	head := make([]byte, ChunkingThreshold)
	n, err := io.ReadFull(r, head)
	switch {
	case err == io.EOF || errors.Is(err, io.ErrUnexpectedEOF):
		return s.putBlobWhole(head[:n])
	case err != nil:
		return hash.Hash{}, fmt.Errorf("put blob: %w", err)
	}
	return s.putBlobChunked(io.MultiReader(bytes.NewReader(head), r))
}

// putBlobWhole stores payload as a single blob object, compressing at
// and above CompressionThreshold. The content hash is always computed
// over the uncompressed bytes.
func (s *Store) putBlobWhole(payload []byte) (hash.Hash, error) {
	h := hash.HashBytes(payload)
	if s.Has(h) {
		return h, nil
	}

	stored := payload
	compression := object.CompressionNone
	if len(payload) >= CompressionThreshold {
		compressed, err := compressZstd(payload)
		if err != nil {
			return hash.Hash{}, fmt.Errorf("put blob %s: %w", h, err)
		}
		stored = compressed
		compression = object.CompressionZstd
	}

	hdr := object.Header{
		Type:        object.TypeBlob,
		Algorithm:   s.alg,
		Compression: compression,
		PayloadLen:  uint64(len(stored)),
	}
	if err := s.writeObject(h, hdr, stored); err != nil {
		return hash.Hash{}, fmt.Errorf("put blob %s: %w", h, err)
	}
	return h, nil
}

// putBlobChunked streams r through the chunker, storing each chunk as a
// blob, and writes a chunk_list under the hash of the original bytes.
func (s *Store) putBlobChunked(r io.Reader) (hash.Hash, error) {
	running := hash.NewHasher()
	ck := chunker.New(io.TeeReader(r, running))

	var entries []object.ChunkEntry
	for {
		chunk, err := ck.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return hash.Hash{}, fmt.Errorf("put blob: %w", err)
		}
		ch, err := s.putBlobWhole(chunk)
		if err != nil {
			return hash.Hash{}, err
		}
		entries = append(entries, object.ChunkEntry{Hash: ch, Size: uint64(len(chunk))})
	}

	h := running.Sum()
	if s.Has(h) {
		return h, nil
	}

	payload := object.EncodeChunkList(entries)
	hdr := object.Header{
		Type:        object.TypeChunkList,
		Algorithm:   s.alg,
		Compression: object.CompressionNone,
		PayloadLen:  uint64(len(payload)),
	}
	if err := s.writeObject(h, hdr, payload); err != nil {
		return hash.Hash{}, fmt.Errorf("put chunk list %s: %w", h, err)
	}
	return h, nil
}

// GetBlob returns the full contents of a blob or chunked blob.
func (s *Store) GetBlob(h hash.Hash) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.GetBlobTo(h, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GetBlobTo streams the contents of a blob or chunked blob to w. The
// content hash is verified on every read; chunked blobs are verified
// chunk-by-chunk and again across the reassembled stream.
func (s *Store) GetBlobTo(h hash.Hash, w io.Writer) error {
	path := s.objectPath(h)
	hdr, _, err := s.readHeader(path, h)
	if err != nil {
		return err
	}

	switch hdr.Type {
	case object.TypeBlob:
		payload, err := s.readBlobPayload(path, h, hdr)
		if err != nil {
			return err
		}
		if _, err := w.Write(payload); err != nil {
			return fmt.Errorf("get blob %s: %w", h, err)
		}
		return nil

	case object.TypeChunkList:
		if hdr.Compression != object.CompressionNone {
			return fmt.Errorf("%w: %s: chunk list must not be compressed", object.ErrCorruptedObject, h)
		}
		raw, err := s.readPayload(path, h, hdr)
		if err != nil {
			return err
		}
		entries, err := object.DecodeChunkList(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", h, err)
		}
		return s.reassembleChunks(h, entries, w)

	case object.TypeTree:
		return fmt.Errorf("get blob %s: object is a tree", h)

	default:
		return fmt.Errorf("%w: %s: unknown object type", object.ErrCorruptedObject, h)
	}
}

// readBlobPayload reads, decompresses, and hash-verifies a blob object.
func (s *Store) readBlobPayload(path string, h hash.Hash, hdr object.Header) ([]byte, error) {
	if hdr.Type != object.TypeBlob {
		return nil, fmt.Errorf("%w: %s: expected blob, found %s", object.ErrCorruptedObject, h, hdr.Type)
	}
	payload, err := s.readPayload(path, h, hdr)
	if err != nil {
		return nil, err
	}
	if hdr.Compression == object.CompressionZstd {
		payload, err = decompressZstd(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", object.ErrCorruptedObject, h, err)
		}
	}
	if got := hash.HashBytes(payload); got != h {
		return nil, fmt.Errorf("%w: %s: content hashes to %s", object.ErrCorruptedObject, h, got)
	}
	return payload, nil
}

// reassembleChunks streams each referenced chunk blob to w, verifying
// every chunk and the whole reassembled stream against the chunk list's
// own hash.
func (s *Store) reassembleChunks(h hash.Hash, entries []object.ChunkEntry, w io.Writer) error {
	running := hash.NewHasher()
	for _, e := range entries {
		chunkPath := s.objectPath(e.Hash)
		chunkHdr, _, err := s.readHeader(chunkPath, e.Hash)
		if err != nil {
			if errors.Is(err, ErrObjectNotFound) {
				return fmt.Errorf("%w: %s: missing chunk %s", object.ErrCorruptedObject, h, e.Hash)
			}
			return err
		}
		chunk, err := s.readBlobPayload(chunkPath, e.Hash, chunkHdr)
		if err != nil {
			return err
		}
		if uint64(len(chunk)) != e.Size {
			return fmt.Errorf("%w: %s: chunk %s is %d bytes, chunk list says %d",
				object.ErrCorruptedObject, h, e.Hash, len(chunk), e.Size)
		}
		if _, err := w.Write(chunk); err != nil {
			return fmt.Errorf("get blob %s: %w", h, err)
		}
		running.Write(chunk)
	}
	if got := running.Sum(); got != h {
		return fmt.Errorf("%w: %s: reassembled content hashes to %s", object.ErrCorruptedObject, h, got)
	}
	return nil
}
