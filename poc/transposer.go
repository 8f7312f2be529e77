package poc

// Transpose copies one scoop's worth of data, for n consecutive nonces
// starting at nstart, out of a GPU-layout block src into a linear
// destination buffer dst. dst must have room for n*ScoopBytes bytes; it is
// filled starting at dst[0], not at any offset implied by nstart.
//
// A scoop pairs a hash with its "mirror": hash 2*scoop and hash
// 8192-(2*scoop+1). This pairing is a detail of the mining protocol, not an
// accident of layout. Transpose is the only function the writer and the
// test command use to read the GPU layout.
func Transpose(src, dst []byte, scoop, nstart, n int) {
	hiA := uint64(scoop * 2)
	hiB := uint64(HashesPerNonce - (scoop*2 + 1))

	for i := 0; i < n; i++ {
		nonce := uint64(nstart + i)
		rec := dst[i*ScoopBytes : (i+1)*ScoopBytes]
		for w := uint64(0); w < HashWords; w++ {
			srcOff := byteOffset(Address(nonce, hiA, w))
			copy(rec[w*4:w*4+4], src[srcOff:srcOff+4])
		}
		for w := uint64(0); w < HashWords; w++ {
			srcOff := byteOffset(Address(nonce, hiB, w))
			copy(rec[HashBytes+w*4:HashBytes+w*4+4], src[srcOff:srcOff+4])
		}
	}
}
