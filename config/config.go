// Package config resolves the ploter's run parameters from two layers: an
// optional YAML file supplying defaults, and CLI flags that always win over
// the file. This mirrors the donor daemon's config.toml + flag overlay, but
// trimmed to the handful of knobs this tool exposes.
package config

import (
	"io/ioutil"

	"gitlab.com/NebulousLabs/errors"
	"gopkg.in/yaml.v2"
)

// Config holds every parameter needed to plan and run a plot.
type Config struct {
	PlotID       uint64   `yaml:"id"`
	StartNonce   uint64   `yaml:"sn"`
	TotalNonces  uint64   `yaml:"num"`
	MemGiB       float64  `yaml:"mem"`
	WeightGiB    float64  `yaml:"weight"`
	Drivers      []string `yaml:"drivers"`
	LWS          uint64   `yaml:"lws"`
	GWS          uint64   `yaml:"gws"`
	Step         int32    `yaml:"step"`
	Bench        uint8    `yaml:"bench"`
	KernelPath   string   `yaml:"kernel"`
}

// LoadFile parses a YAML file of flag defaults. A missing field is left at
// its Go zero value and simply does not override anything in Merge.
func LoadFile(path string) (Config, error) {
	var c Config
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return c, errors.AddContext(err, "could not read config file")
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return c, errors.AddContext(err, "could not parse config file")
	}
	return c, nil
}

// changedFlags is the subset of pflag.FlagSet that Merge needs: whether a
// given flag name was explicitly set on the command line. Accepting an
// interface instead of *pflag.FlagSet keeps this package testable without a
// live flag set.
type changedFlags interface {
	Changed(name string) bool
}

// Merge overlays file defaults under cfg, without clobbering any flag the
// user actually set. flags.Changed(name) is consulted per field so that a
// zero-value flag (e.g. --bench 0) is still honored as "explicitly set".
func Merge(cfg *Config, file Config, flags changedFlags) {
	setUint64 := func(changed string, dst *uint64, val uint64) {
		if !flags.Changed(changed) && val != 0 {
			*dst = val
		}
	}
	if !flags.Changed("id") && file.PlotID != 0 {
		cfg.PlotID = file.PlotID
	}
	setUint64("sn", &cfg.StartNonce, file.StartNonce)
	setUint64("num", &cfg.TotalNonces, file.TotalNonces)
	if !flags.Changed("mem") && file.MemGiB != 0 {
		cfg.MemGiB = file.MemGiB
	}
	if !flags.Changed("weight") && file.WeightGiB != 0 {
		cfg.WeightGiB = file.WeightGiB
	}
	if !flags.Changed("drivers") && len(file.Drivers) > 0 {
		cfg.Drivers = file.Drivers
	}
	setUint64("lws", &cfg.LWS, file.LWS)
	setUint64("gws", &cfg.GWS, file.GWS)
	if !flags.Changed("step") && file.Step != 0 {
		cfg.Step = file.Step
	}
	if !flags.Changed("bench") && file.Bench != 0 {
		cfg.Bench = file.Bench
	}
	if !flags.Changed("kernel") && file.KernelPath != "" {
		cfg.KernelPath = file.KernelPath
	}
}
