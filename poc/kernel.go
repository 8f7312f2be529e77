package poc

import (
	"io/ioutil"
	"path/filepath"

	"github.com/kardianos/osext"
	"gitlab.com/NebulousLabs/errors"
	"gopkg.in/yaml.v2"
)

// defaultKernelRelPath is where the kernel descriptor lives relative to the
// installed binary, mirroring the donor's "./kernel/kernel.cl" convention.
const defaultKernelRelPath = "kernel/kernel.yaml"

// KernelDescriptor carries the hash-kernel parameters that, for a real GPU
// backend, would instead live in an OpenCL source file's build options.
type KernelDescriptor struct {
	Step int32 `yaml:"step"`
	Lane int   `yaml:"lane"`
}

// LoadKernelDescriptor reads and parses a kernel descriptor file.
func LoadKernelDescriptor(path string) (KernelDescriptor, error) {
	var d KernelDescriptor
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return d, errors.AddContext(err, "could not read kernel descriptor")
	}
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return d, errors.AddContext(err, "could not parse kernel descriptor")
	}
	return d, nil
}

// ResolveKernelPath returns the path the kernel descriptor should be loaded
// from. An explicit flagPath always wins; otherwise the default relative
// path is resolved against the directory containing the running
// executable, not the process's working directory, so the tool can be
// invoked from anywhere.
func ResolveKernelPath(flagPath string) (string, error) {
	if flagPath != "" {
		return flagPath, nil
	}
	exe, err := osext.Executable()
	if err != nil {
		return "", errors.AddContext(err, "could not resolve executable path")
	}
	return filepath.Join(filepath.Dir(exe), defaultKernelRelPath), nil
}
