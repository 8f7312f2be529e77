// Package pool implements the block-buffer allocator that bounds the
// pipeline's total in-flight memory. It hands out page-aligned blocks
// sized to match one hasher task's GPU output and returns them to a free
// list on release, rather than letting the garbage collector reclaim and
// re-allocate on every cycle.
package pool

import (
	"gitlab.com/NebulousLabs/demotemutex"

	"github.com/ventfang/parallel-ploter/build"
)

// Status reports the pool's current accounting, for the progress display
// and for tests.
type Status struct {
	Base      uint64
	Available uint64
	InFlight  uint64
}

// Pool is a bounded, non-blocking allocator of fixed-size Blocks. Acquire
// never blocks: if the budget is saturated it returns (nil, false)
// immediately, and the caller (the dispatcher) is expected to poll again
// later rather than wait. This is what lets the dispatcher stay responsive
// to the stop token while memory is full.
type Pool struct {
	mu demotemutex.DemoteMutex

	blockBytes uint64
	budget     uint64
	inFlight   uint64
	free       []*Block
}

// New returns a Pool that will allow at most budget/blockBytes blocks to be
// outstanding at once (integer division); any remainder of budget is never
// handed out, though Status still reports budget as given.
func New(budget, blockBytes uint64) *Pool {
	return &Pool{
		blockBytes: blockBytes,
		budget:     budget,
	}
}

// Acquire returns a Block if doing so would not push in-flight bytes over
// budget, and (nil, false) otherwise. It never blocks.
func (p *Pool) Acquire() (*Block, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.inFlight+p.blockBytes > p.budget {
		return nil, false
	}
	p.inFlight += p.blockBytes

	if n := len(p.free); n > 0 {
		b := p.free[n-1]
		p.free = p.free[:n-1]
		return b, true
	}
	return newBlock(p.blockBytes), true
}

// Release returns a Block to the pool's free list. Releasing a block not
// acquired from this pool, or releasing the same block twice, is a
// developer error.
func (p *Pool) Release(b *Block) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.inFlight < p.blockBytes {
		build.Critical("pool: released more bytes than were ever acquired")
		p.inFlight = 0
	} else {
		p.inFlight -= p.blockBytes
	}
	p.free = append(p.free, b)
}

// Status returns a snapshot of the pool's accounting.
func (p *Pool) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Status{
		Base:      p.budget,
		Available: p.budget - p.inFlight,
		InFlight:  p.inFlight,
	}
}

// BlockBytes returns the fixed size of every block this pool hands out.
func (p *Pool) BlockBytes() uint64 {
	return p.blockBytes
}
