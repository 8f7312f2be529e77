package ploter

import (
	"github.com/ventfang/parallel-ploter/persist"
	"github.com/ventfang/parallel-ploter/poc"
	"github.com/ventfang/parallel-ploter/stop"
)

// HasherWorker owns the GPU (or CPU stand-in) engine and turns minted
// HasherTasks into filled blocks. There is exactly one of these per
// pipeline, since the donor's hash kernel models a single device; nothing
// here prevents running several against independent devices, but nothing
// asks for it either.
type HasherWorker struct {
	engine poc.HashEngine
	stop   *stop.Token
	log    *persist.Logger

	pending chan *HasherTask
}

// NewHasherWorker returns a HasherWorker driving engine. pending is fed by
// the dispatcher and drained here.
func NewHasherWorker(engine poc.HashEngine, stopToken *stop.Token, log *persist.Logger, pending chan *HasherTask) *HasherWorker {
	return &HasherWorker{engine: engine, stop: stopToken, log: log, pending: pending}
}

// Run drains pending HasherTasks, fills each one's block via the engine,
// and routes the completed task to the writer worker that minted it.
func (h *HasherWorker) Run() {
	if err := h.stop.Add(); err != nil {
		return
	}
	defer h.stop.Done()

	h.log.Printf("hasher: starting")
	for {
		select {
		case <-h.stop.StopChan():
			h.log.Printf("hasher: stopped")
			return
		case ht := <-h.pending:
			if err := h.engine.Plot(ht.PlotID, ht.SN, ht.Block.Data); err != nil {
				h.log.Printf("hasher: plot %d nonce %d failed: %v", ht.PlotID, ht.SN, err)
				ht.Writer.pool.Release(ht.Block)
				continue
			}
			ht.Writer.push(ht)
		}
	}
}
