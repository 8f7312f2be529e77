package ploter

import (
	"time"

	"github.com/ventfang/parallel-ploter/persist"
	"github.com/ventfang/parallel-ploter/plan"
	"github.com/ventfang/parallel-ploter/poc"
	"github.com/ventfang/parallel-ploter/pool"
	"github.com/ventfang/parallel-ploter/stop"

	"gitlab.com/NebulousLabs/demotemutex"
	"gitlab.com/NebulousLabs/errors"
)

// scoopsPerWrite caps how many nonces' worth of one scoop are transposed
// into the write buffer before issuing a WriteAt. Keeping it well under a
// nonce batch lets the stop token be rechecked mid-scoop instead of only
// between scoops.
const scoopsPerWrite = 256

// inboundDepth bounds how many completed hasher tasks a writer worker will
// let queue up before the hasher workers feeding it block. A deep queue
// would let memory balloon past the pool's budget in spirit even though
// every block in it was legitimately acquired.
const inboundDepth = 2

// WriterWorker owns one drive's worth of WriterTasks and the single open
// file handle needed to write them in order. It is the only goroutine that
// ever opens, preallocates, writes to, or closes its files, so none of
// that needs its own lock; only the cursor state that NextHasherTask
// mutates (read concurrently by status callers) is guarded.
type WriterWorker struct {
	idx    int
	driver string
	tasks  []plan.WriterTask
	bench  uint8

	pool    *pool.Pool
	stop    *stop.Token
	log     *persist.Logger
	reports chan<- Report

	mu           demotemutex.DemoteMutex
	writeCursor  int
	nonceCursor  uint64
	preallocated []bool

	inbound chan *HasherTask

	openIdx int
	file    *PlotFile
	buffer  []byte
}

// NewWriterWorker returns a WriterWorker for one drive's assigned tasks.
// idx is this worker's position in the dispatcher's round-robin list, used
// only to label reports.
func NewWriterWorker(idx int, driver string, tasks []plan.WriterTask, bench uint8, blockPool *pool.Pool, stopToken *stop.Token, log *persist.Logger, reports chan<- Report) *WriterWorker {
	return &WriterWorker{
		idx:          idx,
		driver:       driver,
		tasks:        tasks,
		bench:        bench,
		pool:         blockPool,
		stop:         stopToken,
		log:          log,
		reports:      reports,
		preallocated: make([]bool, len(tasks)),
		inbound:      make(chan *HasherTask, inboundDepth),
		openIdx:      -1,
		buffer:       make([]byte, scoopsPerWrite*poc.ScoopBytes),
	}
}

// Done reports whether every task assigned to this worker has been fully
// carved into hasher tasks. It does not mean those tasks have finished
// writing; a task already minted can still be in flight.
func (w *WriterWorker) Done() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writeCursor >= len(w.tasks)
}

// NextHasherTask carves up to maxNonces nonces off this worker's current
// WriterTask and returns a HasherTask bound to block, advancing the
// worker's cursor. It returns nil once every assigned task is exhausted.
// Called only by the dispatcher; the mutex exists so status queries from
// other goroutines can read the cursor without racing it.
func (w *WriterWorker) NextHasherTask(maxNonces uint64, block *pool.Block) *HasherTask {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.writeCursor >= len(w.tasks) {
		return nil
	}
	task := w.tasks[w.writeCursor]
	remaining := task.InitNonces - w.nonceCursor
	n := maxNonces
	if n > remaining {
		n = remaining
	}

	ht := &HasherTask{
		PlotID:       task.PlotID,
		SN:           task.InitSN + w.nonceCursor,
		Nonces:       n,
		Block:        block,
		Writer:       w,
		WriteTaskIdx: w.writeCursor,
		mintedAt:     time.Now(),
	}

	w.nonceCursor += n
	if w.nonceCursor == task.InitNonces {
		w.writeCursor++
		w.nonceCursor = 0
	}
	return ht
}

// push hands a completed HasherTask to this worker's write queue. It is
// called by whichever HasherWorker finished filling ht.Block.
func (w *WriterWorker) push(ht *HasherTask) {
	w.inbound <- ht
}

// Run drains completed hasher tasks and writes each one's scoops to disk
// in order of arrival, which need not be the order the tasks were minted
// in: the file and offset each task belongs to are derived from the task
// itself rather than inferred from a shared cursor.
func (w *WriterWorker) Run() {
	if err := w.stop.Add(); err != nil {
		return
	}
	defer w.stop.Done()

	w.log.Printf("writer [%s]: starting, %d tasks assigned", w.driver, len(w.tasks))
	for {
		select {
		case <-w.stop.StopChan():
			w.closeFile()
			w.log.Printf("writer [%s]: stopped", w.driver)
			return
		case ht := <-w.inbound:
			w.handle(ht)
		}
	}
}

func (w *WriterWorker) handle(ht *HasherTask) {
	task := w.tasks[ht.WriteTaskIdx]
	rep := Report{
		WriterIdx:    w.idx,
		WriteTaskIdx: ht.WriteTaskIdx,
		SN:           ht.SN,
		Nonces:       ht.Nonces,
	}

	if w.bench&0x01 != 0 {
		rep.Skipped = true
		rep.Elapsed = time.Since(ht.mintedAt)
		w.pool.Release(ht.Block)
		w.reports <- rep
		return
	}

	if err := w.ensureFile(ht.WriteTaskIdx, task); err != nil {
		rep.Err = errors.AddContext(err, "writer: could not open plot file")
		w.pool.Release(ht.Block)
		w.reports <- rep
		return
	}

	if err := w.performWritePlot(task, ht); err != nil {
		rep.Err = errors.AddContext(err, "writer: could not write scoop data")
	}

	rep.Elapsed = time.Since(ht.mintedAt)
	if rep.Elapsed > 0 {
		rep.MBps = float64(ht.Nonces) * float64(poc.PlotSize) / (1024 * 1024) / rep.Elapsed.Seconds()
	}
	w.pool.Release(ht.Block)
	w.reports <- rep
}

// ensureFile opens idx's file if it is not already open, closing whatever
// was open for a previous task first, and preallocates it exactly once.
func (w *WriterWorker) ensureFile(idx int, task plan.WriterTask) error {
	if w.openIdx != idx {
		w.closeFile()
		f, err := CreatePlotFile(task.Path())
		if err != nil {
			return err
		}
		w.file = f
		w.openIdx = idx
	}
	if !w.preallocated[idx] {
		if err := w.file.Allocate(int64(task.InitNonces) * poc.PlotSize); err != nil {
			return err
		}
		w.preallocated[idx] = true
	}
	return nil
}

func (w *WriterWorker) closeFile() {
	if w.file != nil {
		if err := w.file.Close(); err != nil {
			w.log.Printf("writer [%s]: error closing %s: %v", w.driver, w.file.Path(), err)
		}
		w.file = nil
		w.openIdx = -1
	}
}

// performWritePlot transposes ht's block, scoop by scoop and in bounded
// batches of nonces, straight into the open file at the offset the scoop
// layout dictates. The stop token is checked at both loop heads, matching
// the two places a long-running plot can be interrupted without leaving a
// scoop half written.
func (w *WriterWorker) performWritePlot(task plan.WriterTask, ht *HasherTask) error {
	relSN := ht.SN - task.InitSN
	nonces := int(ht.Nonces)

	for scoop := 0; scoop < poc.ScoopsPerNonce; scoop++ {
		if w.stop.Stopped() {
			return nil
		}
		base := (relSN + uint64(scoop)*task.InitNonces) * poc.ScoopBytes

		for nstart := 0; nstart < nonces; nstart += scoopsPerWrite {
			if w.stop.Stopped() {
				return nil
			}
			n := nonces - nstart
			if n > scoopsPerWrite {
				n = scoopsPerWrite
			}
			poc.Transpose(ht.Block.Data, w.buffer, scoop, nstart, n)

			offset := int64(base) + int64(nstart)*poc.ScoopBytes
			if err := w.file.WriteAt(w.buffer[:n*poc.ScoopBytes], offset); err != nil {
				return err
			}
		}
	}
	return nil
}
