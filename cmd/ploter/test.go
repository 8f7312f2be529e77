package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gitlab.com/NebulousLabs/errors"
	"gitlab.com/NebulousLabs/fastrand"

	"github.com/ventfang/parallel-ploter/config"
	"github.com/ventfang/parallel-ploter/persist"
	"github.com/ventfang/parallel-ploter/poc"
)

var testFlags config.Config
var testSamples int

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Check the engine's GPU-layout output against the reference plot for a handful of random nonces.",
	RunE:  runTest,
}

func init() {
	f := testCmd.Flags()
	f.Uint64Var(&testFlags.PlotID, "id", 0, "plot identifier")
	f.Uint64Var(&testFlags.StartNonce, "sn", 0, "starting nonce of the batch to sample from")
	f.Uint64Var(&testFlags.GWS, "gws", 16, "GPU global work size")
	f.Int32Var(&testFlags.Step, "step", 0, "hash kernel step parameter")
	f.StringVar(&testFlags.KernelPath, "kernel", "", "path to the kernel descriptor")
	f.IntVar(&testSamples, "samples", 8, "number of random nonces to sample and verify")
}

// runTest fills one engine batch and checks, for a handful of randomly
// sampled nonces in it, that every scoop the transposition produces
// matches the same two hashes pulled directly out of the reference linear
// plot. This is the same invariant the poc package's own tests check;
// running it here is a quick sanity check against a real kernel
// descriptor and batch size before committing to a long plot run.
func runTest(cmd *cobra.Command, args []string) error {
	cfg := testFlags
	if configPath != "" {
		file, err := config.LoadFile(configPath)
		if err != nil {
			return err
		}
		config.Merge(&cfg, file, cmd.Flags())
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
		log.Printf("test: could not resolve kernel descriptor path: %v", err)
	} else if err := runner.Init(kernelPath); err != nil {
		log.Printf("test: no kernel descriptor at %s, using default parameters: %v", kernelPath, err)
	}
	engine := poc.NewGPUEngine(runner, cfg.GWS)

	block := make([]byte, cfg.GWS*poc.PlotSize)
	if err := engine.Plot(cfg.PlotID, cfg.StartNonce, block); err != nil {
		return errors.AddContext(err, "test: could not fill batch")
	}

	mismatches := 0
	scoopBuf := make([]byte, poc.ScoopBytes)
	for s := 0; s < testSamples; s++ {
		local := fastrand.Uint64n(cfg.GWS)
		nonce := cfg.StartNonce + local
		reference := poc.CPUPlot(cfg.PlotID, nonce)

		for scoop := 0; scoop < poc.ScoopsPerNonce; scoop++ {
			poc.Transpose(block, scoopBuf, scoop, int(local), 1)

			hiA := scoop * 2
			hiB := poc.HashesPerNonce - (scoop*2 + 1)
			wantA := reference[hiA*poc.HashBytes : (hiA+1)*poc.HashBytes]
			wantB := reference[hiB*poc.HashBytes : (hiB+1)*poc.HashBytes]

			if !bytes.Equal(scoopBuf[:poc.HashBytes], wantA) || !bytes.Equal(scoopBuf[poc.HashBytes:], wantB) {
				mismatches++
			}
		}
	}

	if mismatches > 0 {
		return fmt.Errorf("test: %d scoop mismatches across %d sampled nonces", mismatches, testSamples)
	}
	log.Printf("test: %d sampled nonces verified against the reference layout, no mismatches", testSamples)
	return nil
}
