// Package plan computes the one-time, startup assignment of nonce ranges
// to plot files and drives, and validates that the configured memory
// budget can sustain the pipeline before any goroutine is spawned.
package plan

import (
	"fmt"
	"math"
	"path/filepath"

	"gitlab.com/NebulousLabs/errors"

	"github.com/ventfang/parallel-ploter/poc"
)

var (
	// ErrNoDrivers is returned when no output directories were configured.
	ErrNoDrivers = errors.New("no drivers (directories) specified")

	// ErrNoNonces is returned when the requested range is empty.
	ErrNoNonces = errors.New("total nonces must be greater than zero")

	// ErrWeightTooSmall is returned when max_weight_per_file cannot hold
	// even a single nonce.
	ErrWeightTooSmall = errors.New("max weight per file is smaller than a single nonce's plot size")
)

// WriterTask is one plot file to be produced on one drive: an immutable
// assignment of a contiguous nonce range, created once during planning and
// never mutated afterward. Only the writer worker's cursor state (tracked
// alongside, not on this struct) changes as hasher tasks are minted and
// written.
type WriterTask struct {
	PlotID     uint64
	InitSN     uint64
	InitNonces uint64
	Driver     string
}

// FileName returns the deterministic plot file name for a task:
// <plot_id>_<init_sn>_<init_nonces>.
func (t WriterTask) FileName() string {
	return fmt.Sprintf("%d_%d_%d", t.PlotID, t.InitSN, t.InitNonces)
}

// Path returns the full path of the plot file this task produces.
func (t WriterTask) Path() string {
	return filepath.Join(t.Driver, t.FileName())
}

// Result is the outcome of planning: one ordered list of WriterTasks per
// drive, in the same order as the input drives slice.
type Result struct {
	Drivers []string
	Tasks   [][]WriterTask
}

// Plan allocates [startNonce, startNonce+totalNonces) across drivers,
// filling each drive up to maxFilesPerDriver plot files before moving to
// the next, per the base spec's planning rule. It does not validate the
// memory budget; call ValidateMemory separately once the hash engine's
// block size is known.
func Plan(plotID, startNonce, totalNonces uint64, maxWeightPerFile uint64, drivers []string) (Result, error) {
	if len(drivers) == 0 {
		return Result{}, ErrNoDrivers
	}
	if totalNonces == 0 {
		return Result{}, ErrNoNonces
	}
	maxNoncesPerFile := maxWeightPerFile / poc.PlotSize
	if maxNoncesPerFile == 0 {
		return Result{}, ErrWeightTooSmall
	}

	totalFiles := uint64(math.Ceil(float64(totalNonces) / float64(maxNoncesPerFile)))
	maxFilesPerDriver := uint64(math.Ceil(float64(totalFiles) / float64(len(drivers))))

	res := Result{Drivers: drivers, Tasks: make([][]WriterTask, len(drivers))}
	sn := startNonce
	remaining := totalNonces
	for i, driver := range drivers {
		for f := uint64(0); f < maxFilesPerDriver && remaining > 0; f++ {
			n := maxNoncesPerFile
			if n > remaining {
				n = remaining
			}
			res.Tasks[i] = append(res.Tasks[i], WriterTask{
				PlotID:     plotID,
				InitSN:     sn,
				InitNonces: n,
				Driver:     driver,
			})
			sn += n
			remaining -= n
		}
	}
	if remaining != 0 {
		return Result{}, errors.New("planning failed to cover the requested nonce range")
	}
	return res, nil
}

// ValidateMemory rejects a configuration that cannot feed the pipeline: the
// block pool must be able to hold at least one block per writer worker plus
// one for whichever block the hasher worker is actively filling, or the
// dispatcher can starve the hasher forever.
func ValidateMemory(blockBytes, memBudget uint64, numDrivers int) error {
	minBlocks := uint64(numDrivers + 1)
	if memBudget < minBlocks*blockBytes {
		return fmt.Errorf(
			"memory budget %d bytes cannot hold %d concurrent blocks of %d bytes each (need at least drives+1)",
			memBudget, minBlocks, blockBytes)
	}
	return nil
}
