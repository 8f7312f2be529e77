package pool

import (
	"testing"
	"unsafe"
)

func TestAcquireRespectsBudget(t *testing.T) {
	const blockBytes = 4096
	p := New(2*blockBytes, blockBytes)

	b1, ok := p.Acquire()
	if !ok {
		t.Fatal("first acquire should succeed")
	}
	b2, ok := p.Acquire()
	if !ok {
		t.Fatal("second acquire should succeed")
	}
	if _, ok := p.Acquire(); ok {
		t.Fatal("third acquire should fail: budget exhausted")
	}

	p.Release(b1)
	b3, ok := p.Acquire()
	if !ok {
		t.Fatal("acquire after release should succeed")
	}
	p.Release(b2)
	p.Release(b3)

	st := p.Status()
	if st.InFlight != 0 {
		t.Fatalf("expected 0 in-flight after releasing everything, got %d", st.InFlight)
	}
}

func TestAcquireNeverBlocks(t *testing.T) {
	p := New(0, 4096)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, ok := p.Acquire(); ok {
			t.Error("acquire against a zero budget should fail")
		}
	}()
	select {
	case <-done:
	default:
		// Acquire must return immediately; if it were blocking this branch
		// would never be reached deterministically, but absence of a
		// timeout here is still a smoke check, not a proof.
	}
	<-done
}

func TestBlockAlignment(t *testing.T) {
	p := New(4096, 4096)
	b, ok := p.Acquire()
	if !ok {
		t.Fatal("acquire failed")
	}
	if len(b.Data) != 4096 {
		t.Fatalf("got block of %d bytes, want 4096", len(b.Data))
	}
	if addr := uintptr(unsafe.Pointer(&b.Data[0])); addr%uintptr(pageSize) != 0 {
		t.Fatalf("block data at %#x is not aligned to the %d-byte page size", addr, pageSize)
	}
}
