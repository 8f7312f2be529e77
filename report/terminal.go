// Package report renders live aggregate throughput for a running plot job.
// It consumes the same ploter.Report stream the dispatcher produces.
// Terminal.Update is called from a consumer goroutine that drains the
// dispatcher's output channel, so terminal I/O runs on that goroutine, not
// on the dispatcher's.
package report

import (
	"fmt"
	"io"

	"github.com/vbauerster/mpb/v5"
	"github.com/vbauerster/mpb/v5/decor"

	"github.com/ventfang/parallel-ploter/ploter"
)

// Terminal is a single progress bar tracking nonces written against the
// total nonces a plot run was asked to produce.
type Terminal struct {
	pbs *mpb.Progress
	bar *mpb.Bar

	written uint64
	mbps    float64
}

// NewTerminal returns a Terminal that will render to w and expects
// totalNonces nonces to be reported complete over the run's lifetime.
func NewTerminal(w io.Writer, totalNonces uint64) *Terminal {
	t := &Terminal{}
	t.pbs = mpb.New(mpb.WithOutput(w), mpb.WithWidth(40))
	t.bar = t.pbs.AddBar(
		int64(totalNonces),
		mpb.PrependDecorators(
			decor.Name("plotting", decor.WC{W: 10}),
			decor.Percentage(decor.WC{W: 6}),
		),
		mpb.AppendDecorators(
			decor.Any(func(decor.Statistics) string {
				return fmt.Sprintf("%.1f MB/s", t.mbps)
			}, decor.WC{W: 12}),
		),
	)
	return t
}

// Update advances the bar by rep's nonce count, regardless of whether the
// write was skipped by bench mode: progress tracks coverage, not bytes
// actually committed to disk. rep's throughput is folded into a rolling
// average only when it is non-zero, so bench-mode reports leave the
// average unchanged.
func (t *Terminal) Update(rep ploter.Report) {
	t.written += rep.Nonces
	if rep.MBps > 0 {
		if t.mbps == 0 {
			t.mbps = rep.MBps
		} else {
			t.mbps = 0.8*t.mbps + 0.2*rep.MBps
		}
	}
	t.bar.SetCurrent(int64(t.written))
}

// Wait blocks until the bar has rendered its final frame. Call it after the
// dispatcher's Run has returned and the report channel has been drained.
func (t *Terminal) Wait() {
	t.pbs.Wait()
}
