package poc

import (
	"gitlab.com/NebulousLabs/errors"
)

// KernelRunner produces one nonce's worth of hash material in the linear,
// non-interleaved layout (HashesPerNonce hashes of HashBytes, concatenated
// in hash-index order). It stands in for the real GPU kernel, which this
// repo only contracts the output layout of. Init loads whatever on-disk
// descriptor the runner needs (an OpenCL source file for a real GPU
// backend; a YAML parameter file for the CPU stand-in here).
type KernelRunner interface {
	Init(descriptorPath string) error
	Hash(plotID, nonce uint64) []byte
}

// HashEngine is the producer half of the pipeline: given a starting nonce,
// it fills a caller-provided block with GlobalWorkSize nonces' worth of
// hash material in the GPU-native interleaved layout.
type HashEngine interface {
	// GlobalWorkSize is the engine's natural batch size, in nonces. It is
	// also the size, in nonces, that BlockPool blocks are sized for.
	GlobalWorkSize() uint64

	// Plot fills out with GlobalWorkSize() nonces of hash material for
	// plotID, starting at startNonce, in the GPU-layout addressed by
	// Address. out must be at least GlobalWorkSize()*PlotSize bytes.
	Plot(plotID, startNonce uint64, out []byte) error
}

// GPUEngine models the GPU kernel contract: it is deterministic given
// (plotID, startNonce) and, once initialized, infallible barring device
// loss. The actual per-nonce hash computation is delegated to a
// KernelRunner so this package never needs real GPU hardware to exercise
// the addressing and transposition logic downstream code depends on.
type GPUEngine struct {
	runner KernelRunner
	gws    uint64
}

// NewGPUEngine returns a GPUEngine that delegates per-nonce hashing to
// runner and produces gws nonces per Plot call.
func NewGPUEngine(runner KernelRunner, gws uint64) *GPUEngine {
	return &GPUEngine{runner: runner, gws: gws}
}

// GlobalWorkSize implements HashEngine.
func (e *GPUEngine) GlobalWorkSize() uint64 {
	return e.gws
}

// Plot implements HashEngine.
func (e *GPUEngine) Plot(plotID, startNonce uint64, out []byte) error {
	need := e.gws * PlotSize
	if uint64(len(out)) < need {
		return errors.New("poc: out buffer too small for global work size")
	}
	for i := uint64(0); i < e.gws; i++ {
		nonce := startNonce + i
		linear := e.runner.Hash(plotID, nonce)
		if uint64(len(linear)) != PlotSize {
			return errors.New("poc: kernel runner returned malformed hash material")
		}
		for h := uint64(0); h < HashesPerNonce; h++ {
			for w := uint64(0); w < HashWords; w++ {
				srcOff := int(h*HashBytes + w*4)
				dstOff := byteOffset(Address(i, h, w))
				copy(out[dstOff:dstOff+4], linear[srcOff:srcOff+4])
			}
		}
	}
	return nil
}

// CPURunner is the KernelRunner used in place of a real GPU backend: it
// computes CPUPlot for every requested nonce. Step is forwarded from the
// CLI but otherwise unused, since the actual hash procedure is out of
// scope here.
type CPURunner struct {
	Step int32
}

// Init implements KernelRunner. The CPU runner has no device or program to
// build, so Init only validates that the descriptor, if any, parses.
func (r *CPURunner) Init(descriptorPath string) error {
	if descriptorPath == "" {
		return nil
	}
	desc, err := LoadKernelDescriptor(descriptorPath)
	if err != nil {
		return errors.AddContext(err, "could not load kernel descriptor")
	}
	r.Step = desc.Step
	return nil
}

// Hash implements KernelRunner.
func (r *CPURunner) Hash(plotID, nonce uint64) []byte {
	return CPUPlot(plotID, nonce)
}
