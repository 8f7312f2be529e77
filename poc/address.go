package poc

// Address computes the 32-bit-word index of (nonce, hash, word) within a
// GPU-layout block, per the kernel's output contract:
//
//	Address(nonce, hash, word) =
//	     (nonce &^ 15) * 8192 * 8
//	   + hash          * 16   * 8
//	   + word          * 16
//	   + (nonce & 15)
//
// 16 consecutive nonces form a lane group; within a group, words of the
// same hash index are interleaved across the 16 nonces. nonce is the
// nonce's index within the block (0 for the block's first nonce), not its
// absolute value.
func Address(nonce, hash, word uint64) uint64 {
	return (nonce&^laneMask)*HashesPerNonce*HashWords +
		hash*Lane*HashWords +
		word*Lane +
		(nonce & laneMask)
}

// byteOffset converts a word address into a byte offset for indexing a
// []byte-backed block.
func byteOffset(word uint64) int {
	return int(word) * 4
}
