package poc

import (
	"encoding/binary"
	"testing"
)

// encode packs (nonce, hash, word) into a 4-byte value so a transposed
// buffer can be checked against the addressing contract directly, without
// going through a real hash kernel.
func encode(nonce, hash, word uint64) uint32 {
	return uint32(nonce)<<20 | uint32(hash)<<4 | uint32(word)
}

func buildAddressedBlock(t *testing.T, gws uint64) []byte {
	t.Helper()
	buf := make([]byte, gws*PlotSize)
	for n := uint64(0); n < gws; n++ {
		for h := uint64(0); h < HashesPerNonce; h++ {
			for w := uint64(0); w < HashWords; w++ {
				off := byteOffset(Address(n, h, w))
				binary.LittleEndian.PutUint32(buf[off:off+4], encode(n, h, w))
			}
		}
	}
	return buf
}

func TestTransposeMatchesAddressingContract(t *testing.T) {
	const gws = 16
	src := buildAddressedBlock(t, gws)

	for _, scoop := range []int{0, 1, 2047, 2048, 4095} {
		dst := make([]byte, gws*ScoopBytes)
		Transpose(src, dst, scoop, 0, gws)

		hiA := uint64(scoop * 2)
		hiB := uint64(HashesPerNonce - (scoop*2 + 1))
		for i := 0; i < gws; i++ {
			rec := dst[i*ScoopBytes : (i+1)*ScoopBytes]
			for w := uint64(0); w < HashWords; w++ {
				got := binary.LittleEndian.Uint32(rec[w*4 : w*4+4])
				want := encode(uint64(i), hiA, w)
				if got != want {
					t.Fatalf("scoop %d nonce %d wordA %d: got %x want %x", scoop, i, w, got, want)
				}
			}
			for w := uint64(0); w < HashWords; w++ {
				got := binary.LittleEndian.Uint32(rec[HashBytes+w*4 : HashBytes+w*4+4])
				want := encode(uint64(i), hiB, w)
				if got != want {
					t.Fatalf("scoop %d nonce %d wordB %d: got %x want %x", scoop, i, w, got, want)
				}
			}
		}
	}
}

func TestTransposePartialRange(t *testing.T) {
	const gws = 32
	src := buildAddressedBlock(t, gws)

	dst := make([]byte, 8*ScoopBytes)
	Transpose(src, dst, 10, 16, 8)

	hiA := uint64(20)
	for i := 0; i < 8; i++ {
		rec := dst[i*ScoopBytes : (i+1)*ScoopBytes]
		got := binary.LittleEndian.Uint32(rec[:4])
		want := encode(uint64(16+i), hiA, 0)
		if got != want {
			t.Fatalf("nonce %d: got %x want %x", 16+i, got, want)
		}
	}
}
