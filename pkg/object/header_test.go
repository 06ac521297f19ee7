package object

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/odvcencio/casq/pkg/hash"
)

func TestHeaderRoundTrip(t *testing.T) {
	types := []Type{TypeBlob, TypeTree, TypeChunkList}
	compressions := []Compression{CompressionNone, CompressionZstd}
	lengths := []uint64{0, 1, 4096, 1<<20 - 1, 0x123456789ABCDEF0}

	for _, typ := range types {
		for _, comp := range compressions {
			for _, n := range lengths {
				hdr := Header{
					Type:        typ,
					Algorithm:   hash.AlgorithmBlake3,
					Compression: comp,
					PayloadLen:  n,
				}
				buf := hdr.Encode()
				decoded, err := DecodeHeader(buf[:])
				if err != nil {
					t.Fatalf("DecodeHeader(%v): %v", hdr, err)
				}
				if decoded != hdr {
					t.Fatalf("round trip: got %+v, want %+v", decoded, hdr)
				}
			}
		}
	}
}

func TestHeaderEncodedBytes(t *testing.T) {
	hdr := Header{
		Type:        TypeBlob,
		Algorithm:   hash.AlgorithmBlake3,
		Compression: CompressionNone,
		PayloadLen:  6,
	}
	buf := hdr.Encode()
	want := [HeaderSize]byte{
		0x43, 0x41, 0x46, 0x53, // "CAFS"
		0x02, 0x01, 0x01, 0x00,
		0x06, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}
	if buf != want {
		t.Errorf("Encode: got % x, want % x", buf, want)
	}
}

func TestDecodeHeaderRejections(t *testing.T) {
	valid := Header{Type: TypeBlob, Algorithm: hash.AlgorithmBlake3, Compression: CompressionNone, PayloadLen: 1}.Encode()

	mutate := func(i int, v byte) []byte {
		buf := valid
		buf[i] = v
		return buf[:]
	}

	cases := []struct {
		name string
		buf  []byte
	}{
		{"short buffer", valid[:10]},
		{"empty buffer", nil},
		{"bad magic", mutate(0, 'X')},
		{"version 1", mutate(4, 1)},
		{"version 99", mutate(4, 99)},
		{"type 0", mutate(5, 0)},
		{"type 4", mutate(5, 4)},
		{"algorithm 0", mutate(6, 0)},
		{"algorithm 9", mutate(6, 9)},
		{"compression 2", mutate(7, 2)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodeHeader(tc.buf); !errors.Is(err, ErrCorruptedObject) {
				t.Errorf("DecodeHeader: got %v, want ErrCorruptedObject", err)
			}
		})
	}
}

func TestDecodeHeaderNeverPanics(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	buf := make([]byte, HeaderSize)
	for i := 0; i < 4096; i++ {
		rng.Read(buf)
		DecodeHeader(buf)
	}
}
