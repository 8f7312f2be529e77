package ploter

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ventfang/parallel-ploter/persist"
	"github.com/ventfang/parallel-ploter/plan"
	"github.com/ventfang/parallel-ploter/poc"
	"github.com/ventfang/parallel-ploter/pool"
	"github.com/ventfang/parallel-ploter/stop"
)

func testLogger(t *testing.T) *persist.Logger {
	l, err := persist.NewLogger(io.Discard)
	if err != nil {
		t.Fatalf("could not build test logger: %v", err)
	}
	return l
}

// TestWriterWorkerOutOfOrderArrival checks that two hasher tasks belonging
// to the same file, completed and pushed in the opposite order from which
// they were minted, still land at the right byte offsets: the task itself
// carries its target offset, not a shared cursor the writer advances on
// arrival.
func TestWriterWorkerOutOfOrderArrival(t *testing.T) {
	dir := t.TempDir()
	task := plan.WriterTask{PlotID: 7, InitSN: 0, InitNonces: 32, Driver: dir}
	p := pool.New(4*poc.PlotSize*16, 16*poc.PlotSize)
	st := stop.New()
	out := make(chan Report, 8)

	w := NewWriterWorker(0, dir, []plan.WriterTask{task}, 0, p, st, testLogger(t), out)

	blockA, ok := p.Acquire()
	if !ok {
		t.Fatal("acquire A failed")
	}
	engine := poc.NewGPUEngine(&poc.CPURunner{}, 16)
	if err := engine.Plot(7, 0, blockA.Data); err != nil {
		t.Fatalf("plot A: %v", err)
	}
	htA := w.NextHasherTask(16, blockA)

	blockB, ok := p.Acquire()
	if !ok {
		t.Fatal("acquire B failed")
	}
	if err := engine.Plot(7, 16, blockB.Data); err != nil {
		t.Fatalf("plot B: %v", err)
	}
	htB := w.NextHasherTask(16, blockB)

	go w.Run()
	// Push the second-minted task first.
	w.push(htB)
	w.push(htA)

	var reports []Report
	for len(reports) < 2 {
		reports = append(reports, <-out)
	}
	st.Stop()

	for _, r := range reports {
		if r.Err != nil {
			t.Fatalf("unexpected write error: %v", r.Err)
		}
	}

	got, err := os.ReadFile(filepath.Join(dir, task.FileName()))
	if err != nil {
		t.Fatalf("could not read plot file: %v", err)
	}

	want := make([]byte, 32*poc.ScoopBytes*poc.ScoopsPerNonce)
	buf := make([]byte, poc.ScoopBytes)
	for scoop := 0; scoop < poc.ScoopsPerNonce; scoop++ {
		for n := 0; n < 16; n++ {
			poc.Transpose(blockA.Data, buf, scoop, n, 1)
			copy(want[(uint64(scoop)*32+uint64(n))*poc.ScoopBytes:], buf)
		}
		for n := 0; n < 16; n++ {
			poc.Transpose(blockB.Data, buf, scoop, n, 1)
			copy(want[(uint64(scoop)*32+uint64(16+n))*poc.ScoopBytes:], buf)
		}
	}

	if !bytes.Equal(got, want) {
		t.Fatal("plot file contents do not match expected scoop-major layout after out-of-order arrival")
	}
}

// TestWriterWorkerBenchModeSkipsIO checks that bit 0 of the bench mode
// flag makes the writer release blocks and report completion without
// touching disk at all.
func TestWriterWorkerBenchModeSkipsIO(t *testing.T) {
	dir := t.TempDir()
	task := plan.WriterTask{PlotID: 1, InitSN: 0, InitNonces: 16, Driver: dir}
	p := pool.New(2*poc.PlotSize*16, 16*poc.PlotSize)
	st := stop.New()
	out := make(chan Report, 4)

	w := NewWriterWorker(0, dir, []plan.WriterTask{task}, 0x01, p, st, testLogger(t), out)
	block, ok := p.Acquire()
	if !ok {
		t.Fatal("acquire failed")
	}
	ht := w.NextHasherTask(16, block)

	go w.Run()
	w.push(ht)

	rep := <-out
	st.Stop()

	if !rep.Skipped {
		t.Fatal("expected bench-mode report to be marked Skipped")
	}
	if _, err := os.Stat(filepath.Join(dir, task.FileName())); !os.IsNotExist(err) {
		t.Fatalf("bench mode should not have created a plot file, stat error: %v", err)
	}
	if st.Stopped() != true {
		t.Fatal("token should be stopped")
	}
}

// TestWriterWorkerRunHonorsStopWithoutWork checks that a writer with no
// inbound tasks still exits promptly once the stop token is set, rather
// than blocking forever on its inbound channel.
func TestWriterWorkerRunHonorsStopWithoutWork(t *testing.T) {
	dir := t.TempDir()
	p := pool.New(poc.PlotSize*16, 16*poc.PlotSize)
	st := stop.New()
	out := make(chan Report, 1)
	w := NewWriterWorker(0, dir, nil, 0, p, st, testLogger(t), out)

	done := make(chan struct{})
	go func() {
		w.Run()
		close(done)
	}()

	st.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("writer worker did not exit after Stop")
	}
}
