package config

import (
	"os"
	"path/filepath"
	"testing"
)

// fakeFlags is a changedFlags backed by a fixed set of names, standing in
// for a *pflag.FlagSet without needing a live CLI parse.
type fakeFlags map[string]bool

func (f fakeFlags) Changed(name string) bool { return f[name] }

func TestLoadFileParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ploter.yaml")
	const contents = `
id: 42
sn: 1000
num: 64
mem: 4.5
weight: 0.25
drivers: ["/mnt/a", "/mnt/b"]
lws: 256
gws: 16384
step: 2
bench: 3
kernel: /opt/ploter/kernel.yaml
`
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if c.PlotID != 42 || c.StartNonce != 1000 || c.TotalNonces != 64 {
		t.Fatalf("unexpected core fields: %+v", c)
	}
	if c.MemGiB != 4.5 || c.WeightGiB != 0.25 {
		t.Fatalf("unexpected memory fields: %+v", c)
	}
	if len(c.Drivers) != 2 || c.Drivers[0] != "/mnt/a" || c.Drivers[1] != "/mnt/b" {
		t.Fatalf("unexpected drivers: %+v", c.Drivers)
	}
	if c.LWS != 256 || c.GWS != 16384 || c.Step != 2 || c.Bench != 3 {
		t.Fatalf("unexpected work-size/bench fields: %+v", c)
	}
	if c.KernelPath != "/opt/ploter/kernel.yaml" {
		t.Fatalf("unexpected kernel path: %q", c.KernelPath)
	}
}

func TestLoadFileRejectsMissingFile(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestMergeUsesFileValueWhenFlagUnset(t *testing.T) {
	cfg := &Config{}
	file := Config{
		StartNonce:  1000,
		TotalNonces: 64,
		MemGiB:      4.5,
		Drivers:     []string{"/mnt/a"},
		KernelPath:  "/opt/kernel.yaml",
	}
	Merge(cfg, file, fakeFlags{})

	if cfg.StartNonce != 1000 || cfg.TotalNonces != 64 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.MemGiB != 4.5 {
		t.Fatalf("file MemGiB not applied: %+v", cfg)
	}
	if len(cfg.Drivers) != 1 || cfg.Drivers[0] != "/mnt/a" {
		t.Fatalf("file Drivers not applied: %+v", cfg.Drivers)
	}
	if cfg.KernelPath != "/opt/kernel.yaml" {
		t.Fatalf("file KernelPath not applied: %q", cfg.KernelPath)
	}
}

func TestMergeFlagWinsWhenSet(t *testing.T) {
	cfg := &Config{StartNonce: 2000, MemGiB: 2.0, Drivers: []string{"/mnt/flag"}}
	file := Config{StartNonce: 1000, MemGiB: 4.5, Drivers: []string{"/mnt/a"}}

	flags := fakeFlags{"sn": true, "mem": true, "drivers": true}
	Merge(cfg, file, flags)

	if cfg.StartNonce != 2000 {
		t.Fatalf("flag-set StartNonce was overwritten by file: %d", cfg.StartNonce)
	}
	if cfg.MemGiB != 2.0 {
		t.Fatalf("flag-set MemGiB was overwritten by file: %v", cfg.MemGiB)
	}
	if len(cfg.Drivers) != 1 || cfg.Drivers[0] != "/mnt/flag" {
		t.Fatalf("flag-set Drivers was overwritten by file: %+v", cfg.Drivers)
	}
}

// TestMergeExplicitZeroFlagWins exercises the case Merge's doc comment
// specifically calls out: a flag explicitly set to its zero value (e.g.
// --bench 0) must still win over a non-zero file default, because
// flags.Changed alone gates the overlay — the file's value is never
// consulted once the flag is known to have been set.
func TestMergeExplicitZeroFlagWins(t *testing.T) {
	cfg := &Config{Bench: 0}
	file := Config{Bench: 5}

	Merge(cfg, file, fakeFlags{"bench": true})

	if cfg.Bench != 0 {
		t.Fatalf("explicit --bench 0 was overwritten by file value: got %d", cfg.Bench)
	}
}

func TestMergeFileBenchAppliedWhenFlagUnset(t *testing.T) {
	cfg := &Config{Bench: 0}
	file := Config{Bench: 5}

	Merge(cfg, file, fakeFlags{})

	if cfg.Bench != 5 {
		t.Fatalf("file Bench not applied when flag unset: got %d", cfg.Bench)
	}
}

func TestMergeLeavesFieldsAloneWhenFileIsZeroValue(t *testing.T) {
	cfg := &Config{PlotID: 7, StartNonce: 500, KernelPath: "/opt/kernel.yaml"}
	Merge(cfg, Config{}, fakeFlags{})

	if cfg.PlotID != 7 || cfg.StartNonce != 500 {
		t.Fatalf("zero-value file fields clobbered existing config: %+v", cfg)
	}
	if cfg.KernelPath != "/opt/kernel.yaml" {
		t.Fatalf("zero-value file KernelPath clobbered existing config: %q", cfg.KernelPath)
	}
}
