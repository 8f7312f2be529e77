package ploter

import (
	"sync"
	"time"

	"github.com/ventfang/parallel-ploter/persist"
	"github.com/ventfang/parallel-ploter/poc"
	"github.com/ventfang/parallel-ploter/pool"
	"github.com/ventfang/parallel-ploter/stop"
)

// pendingDepth bounds how many minted hasher tasks can sit ahead of the
// single hasher worker. It need not be large: the dispatcher only mints a
// new task once it has acquired a block for it, so this queue can never
// hold more in-flight bytes than the pool's own budget already allows.
const pendingDepth = 2

// reportDepth is sized generously enough that a writer worker's send into
// Dispatcher.reports essentially never blocks on the dispatcher being busy
// elsewhere; the dispatcher drains it opportunistically every loop turn.
const reportDepth = 64

// Dispatcher is the pipeline's sole producer of work: it round-robins over
// writer workers that still have unassigned nonces, acquires a block for
// each one from the pool, and hands the resulting HasherTask to the (one)
// hasher worker. It owns every worker goroutine's lifetime.
type Dispatcher struct {
	writers []*WriterWorker
	hasher  *HasherWorker
	engine  poc.HashEngine

	pool *pool.Pool
	stop *stop.Token
	log  *persist.Logger

	pending chan *HasherTask
	reports chan Report
	out     chan<- Report

	rrIdx    int
	inFlight int
}

// NewDispatcher returns a Dispatcher for the given writer workers and hash
// engine. out receives every Report as it completes, in arrival order; the
// caller must keep draining it, since the dispatcher's send on out blocks
// once out's buffer is full.
func NewDispatcher(writers []*WriterWorker, engine poc.HashEngine, blockPool *pool.Pool, stopToken *stop.Token, log *persist.Logger, out chan<- Report) *Dispatcher {
	reports := make(chan Report, reportDepth)
	for _, w := range writers {
		w.reports = reports
	}
	pending := make(chan *HasherTask, pendingDepth)
	return &Dispatcher{
		writers: writers,
		hasher:  NewHasherWorker(engine, stopToken, log, pending),
		engine:  engine,
		pool:    blockPool,
		stop:    stopToken,
		log:     log,
		pending: pending,
		reports: reports,
		out:     out,
	}
}

// Run starts every writer worker and the hasher worker, mints and routes
// hasher tasks until every writer's assigned work is exhausted and every
// minted task has been reported on, then stops the token and waits for all
// worker goroutines to exit. Run blocks until the whole pipeline is done,
// whether that is by completion or by the stop token being set
// externally (e.g. by a signal handler).
func (d *Dispatcher) Run() {
	var wg sync.WaitGroup
	wg.Add(1 + len(d.writers))
	go func() {
		defer wg.Done()
		d.hasher.Run()
	}()
	for _, w := range d.writers {
		w := w
		go func() {
			defer wg.Done()
			w.Run()
		}()
	}

	d.loop()

	d.stop.Stop()
	wg.Wait()
}

func (d *Dispatcher) loop() {
	gws := d.engine.GlobalWorkSize()
	for {
		d.drainReady()
		if d.allDone() && d.inFlight == 0 {
			return
		}
		if d.stop.Stopped() {
			return
		}

		block, ok := d.pool.Acquire()
		if !ok {
			d.awaitProgress()
			continue
		}

		ht := d.mint(gws, block)
		if ht == nil {
			// Every writer has already carved all of its tasks into hasher
			// tasks; only tasks still in flight remain, so wait for a report
			// the same way the failed-Acquire branch above does instead of
			// spinning.
			d.pool.Release(block)
			d.awaitProgress()
			continue
		}
		d.inFlight++
		select {
		case d.pending <- ht:
		case <-d.stop.StopChan():
			d.inFlight--
			d.pool.Release(block)
			return
		}
	}
}

// awaitProgress blocks for up to 100ms for a report to drain, giving the
// dispatcher a chance to free a block and mint again without busy-spinning
// when neither Acquire nor mint can currently make progress.
func (d *Dispatcher) awaitProgress() {
	select {
	case rep := <-d.reports:
		d.inFlight--
		d.out <- rep
	case <-time.After(100 * time.Millisecond):
	case <-d.stop.StopChan():
	}
}

// drainReady forwards every report already sitting in the channel without
// blocking, so a burst of fast writes never backs up behind the dispatcher
// waiting on a slow block acquisition.
func (d *Dispatcher) drainReady() {
	for {
		select {
		case rep := <-d.reports:
			d.inFlight--
			d.out <- rep
		default:
			return
		}
	}
}

// mint walks the writer list starting after the last worker that produced
// a task, returning the first HasherTask any of them still has to give.
func (d *Dispatcher) mint(gws uint64, block *pool.Block) *HasherTask {
	n := len(d.writers)
	for i := 0; i < n; i++ {
		idx := (d.rrIdx + i) % n
		if ht := d.writers[idx].NextHasherTask(gws, block); ht != nil {
			d.rrIdx = (idx + 1) % n
			return ht
		}
	}
	return nil
}

func (d *Dispatcher) allDone() bool {
	for _, w := range d.writers {
		if !w.Done() {
			return false
		}
	}
	return true
}
