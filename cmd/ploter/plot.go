package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"gitlab.com/NebulousLabs/errors"

	"github.com/ventfang/parallel-ploter/config"
	"github.com/ventfang/parallel-ploter/persist"
	"github.com/ventfang/parallel-ploter/plan"
	"github.com/ventfang/parallel-ploter/ploter"
	"github.com/ventfang/parallel-ploter/poc"
	"github.com/ventfang/parallel-ploter/pool"
	"github.com/ventfang/parallel-ploter/report"
	"github.com/ventfang/parallel-ploter/stop"
)

const giB = 1 << 30

var plotFlags config.Config
var driversFlag string

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Plot a contiguous nonce range across the configured drives.",
	RunE:  runPlot,
}

func init() {
	f := plotCmd.Flags()
	f.Uint64Var(&plotFlags.PlotID, "id", 0, "plot identifier")
	f.Uint64Var(&plotFlags.StartNonce, "sn", 0, "starting nonce")
	f.Uint64Var(&plotFlags.TotalNonces, "num", 0, "total nonces to plot")
	f.Float64Var(&plotFlags.MemGiB, "mem", 0, "memory budget, in GiB")
	f.Float64Var(&plotFlags.WeightGiB, "weight", 0, "max weight per plot file, in GiB")
	f.StringVar(&driversFlag, "drivers", "", `comma-space-separated output directories, e.g. "dir1, dir2"`)
	f.Uint64Var(&plotFlags.LWS, "lws", 256, "GPU local work size (not used by the CPU stand-in engine)")
	f.Uint64Var(&plotFlags.GWS, "gws", 16, "GPU global work size")
	f.Int32Var(&plotFlags.Step, "step", 0, "hash kernel step parameter")
	f.Uint8Var(&plotFlags.Bench, "bench", 0, "bench-mode bit field; bit 0 skips disk I/O")
	f.StringVar(&plotFlags.KernelPath, "kernel", "", "path to the kernel descriptor; defaults to one resolved relative to this binary")
}

// splitDrivers parses the comma-space-separated --drivers value into a
// clean directory list.
func splitDrivers(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func runPlot(cmd *cobra.Command, args []string) error {
	cfg := plotFlags
	cfg.Drivers = splitDrivers(driversFlag)

	if configPath != "" {
		file, err := config.LoadFile(configPath)
		if err != nil {
			return err
		}
		config.Merge(&cfg, file, cmd.Flags())
	}
	if len(cfg.Drivers) == 0 {
		return errors.New("at least one drive (--drivers, or config's drivers:) is required")
	}
	if cfg.GWS == 0 {
		cfg.GWS = 16
	}

	log, err := persist.NewLogger(os.Stderr)
	if err != nil {
		return errors.AddContext(err, "could not start logger")
	}

	runner := &poc.CPURunner{Step: cfg.Step}
	kernelPath, err := poc.ResolveKernelPath(cfg.KernelPath)
	if err != nil {
		log.Printf("plot: could not resolve kernel descriptor path: %v", err)
	} else if err := runner.Init(kernelPath); err != nil {
		log.Printf("plot: no kernel descriptor at %s, using default parameters: %v", kernelPath, err)
	}
	engine := poc.NewGPUEngine(runner, cfg.GWS)
	blockBytes := cfg.GWS * poc.PlotSize

	memBudget := uint64(cfg.MemGiB * giB)
	weightBytes := uint64(cfg.WeightGiB * giB)
	if err := plan.ValidateMemory(blockBytes, memBudget, len(cfg.Drivers)); err != nil {
		return err
	}

	res, err := plan.Plan(cfg.PlotID, cfg.StartNonce, cfg.TotalNonces, weightBytes, cfg.Drivers)
	if err != nil {
		return err
	}

	blockPool := pool.New(memBudget, blockBytes)
	stopToken := stop.New()
	stopToken.InstallSignalHandler()

	out := make(chan ploter.Report, 256)
	writers := make([]*ploter.WriterWorker, len(res.Drivers))
	for i, driver := range res.Drivers {
		writers[i] = ploter.NewWriterWorker(i, driver, res.Tasks[i], cfg.Bench, blockPool, stopToken, log, out)
	}
	dispatcher := ploter.NewDispatcher(writers, engine, blockPool, stopToken, log, out)

	term := report.NewTerminal(os.Stdout, cfg.TotalNonces)
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		for rep := range out {
			term.Update(rep)
			if rep.Err != nil {
				log.Printf("plot: writer %d task %d: %v", rep.WriterIdx, rep.WriteTaskIdx, rep.Err)
			}
		}
	}()

	dispatcher.Run()
	close(out)
	<-consumerDone
	term.Wait()

	log.Printf("plot: finished plot %d, nonces [%d, %d)", cfg.PlotID, cfg.StartNonce, cfg.StartNonce+cfg.TotalNonces)
	return nil
}
