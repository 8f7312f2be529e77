package poc

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// CPUPlot computes the reference, linear (non-interleaved) hash material
// for one nonce: HashesPerNonce hashes of HashBytes each, concatenated in
// ascending hash-index order. It is deterministic in (plotID, nonce) and is
// used by tests to check GPU/CPU equivalence and by the "test" CLI mode.
//
// The real PoC hashing procedure is an external collaborator per this
// repo's scope — what it computes is out of scope, only the layout
// downstream code sees is. This chained blake2b construction is a
// deterministic stand-in with the right shape (8192 32-byte hashes,
// each depending on the previous), not a claim about the mining protocol's
// actual hash function.
func CPUPlot(plotID, nonce uint64) []byte {
	out := make([]byte, PlotSize)

	var seed [16]byte
	binary.BigEndian.PutUint64(seed[0:8], plotID)
	binary.BigEndian.PutUint64(seed[8:16], nonce)
	state := blake2b.Sum256(seed[:])

	buf := make([]byte, 32+4)
	for h := 0; h < HashesPerNonce; h++ {
		copy(buf[:32], state[:])
		binary.BigEndian.PutUint32(buf[32:36], uint32(h))
		state = blake2b.Sum256(buf)
		copy(out[h*HashBytes:(h+1)*HashBytes], state[:])
	}
	return out
}
