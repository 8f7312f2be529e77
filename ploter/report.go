package ploter

import "time"

// Report describes one hasher task's trip through a writer worker, from the
// moment the dispatcher minted it to the moment its block was released. The
// progress display and the pipeline's own tests consume a stream of these.
type Report struct {
	WriterIdx    int
	WriteTaskIdx int
	SN           uint64
	Nonces       uint64
	Elapsed      time.Duration
	MBps         float64
	Skipped      bool
	Err          error
}
