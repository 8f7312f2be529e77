package pool

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// pageSize is resolved once at startup; every block's Data slice starts on
// a multiple of it.
var pageSize = unix.Getpagesize()

// Block is a page-aligned byte buffer sized to hold one hasher task's
// worth of GPU-layout hash material (GlobalWorkSize * PlotSize bytes). A
// Block has exactly one owner at any moment as it moves through the
// pipeline: dispatcher -> hasher task -> hasher worker -> writer worker ->
// back to the pool. It is never shared or copied by reference into two
// places at once.
type Block struct {
	raw  []byte
	Data []byte
}

// newBlock allocates a Block whose Data slice starts on a page boundary.
func newBlock(size uint64) *Block {
	raw := make([]byte, size+uint64(pageSize))
	addr := uintptr(unsafe.Pointer(&raw[0]))
	pad := (uintptr(pageSize) - addr%uintptr(pageSize)) % uintptr(pageSize)
	return &Block{
		raw:  raw,
		Data: raw[pad : pad+uintptr(size)],
	}
}
