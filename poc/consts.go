// Package poc implements the proof-of-capacity hash material layout: the
// GPU-native interleaved addressing scheme, the scoop transposition that
// turns it into the on-disk layout, and a deterministic CPU reference
// kernel that stands in for the real (out-of-scope) GPU hash kernel.
package poc

const (
	// PlotSize is the amount of hash material produced per nonce.
	PlotSize = 256 * 1024

	// HashesPerNonce is the number of 32-byte hashes that make up one
	// nonce's worth of hash material.
	HashesPerNonce = 8192

	// HashBytes is the size of a single hash.
	HashBytes = 32

	// HashWords is the size of a single hash in 32-bit words.
	HashWords = 8

	// ScoopsPerNonce is the number of 64-byte scoop records per nonce.
	ScoopsPerNonce = 4096

	// ScoopBytes is the size of a single scoop record: two hashes.
	ScoopBytes = 2 * HashBytes

	// Lane is the number of nonces grouped into one SIMD/GPU batch for
	// addressing purposes.
	Lane = 16

	// laneMask implements "nonce & 15" (and, complemented, "nonce &^ 15").
	laneMask = Lane - 1
)
