package ploter

import (
	"time"

	"github.com/ventfang/parallel-ploter/pool"
)

// HasherTask is a single GPU batch's worth of work in flight: it owns
// exactly one Block from the moment the dispatcher mints it until the
// owning WriterWorker releases that Block back to the pool. WriteTaskIdx
// and Writer are non-owning back-references used to route a completed task
// to the writer that asked for it; the writer outlives every task it
// hands out.
type HasherTask struct {
	PlotID       uint64
	SN           uint64
	Nonces       uint64
	Block        *pool.Block
	Writer       *WriterWorker
	WriteTaskIdx int

	mintedAt time.Time
}
