package ploter

import (
	"os"

	"golang.org/x/sys/unix"

	"gitlab.com/NebulousLabs/errors"
)

// defaultFilePerm matches the donor's storage-folder file permissions.
const defaultFilePerm = 0644

// PlotFile is a thin wrapper over a plot file on disk: it tracks the path
// it was opened for, offers preallocation, and writes positionally so the
// writer's out-of-order hasher-task arrivals never need to coordinate a
// shared seek cursor.
type PlotFile struct {
	path string
	f    *os.File
}

// CreatePlotFile opens path for read/write, creating it if it does not
// exist, and returns a PlotFile wrapping it. It does not preallocate; call
// Allocate once the target size is known.
func CreatePlotFile(path string) (*PlotFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, defaultFilePerm)
	if err != nil {
		return nil, errors.AddContext(err, "could not open plot file")
	}
	return &PlotFile{path: path, f: f}, nil
}

// Path returns the file's path.
func (pf *PlotFile) Path() string {
	return pf.path
}

// Allocate reserves size bytes of disk space for the file using the
// Linux fallocate primitive (so this file builds on Linux only). If the
// filesystem does not support it (ENOSYS or EOPNOTSUPP), Allocate falls
// back to a sparse Truncate, which is
// explicitly acceptable per this tool's layout contract: every byte gets
// written by the scoop loop regardless, preallocation only avoids
// fragmentation.
func (pf *PlotFile) Allocate(size int64) error {
	err := unix.Fallocate(int(pf.f.Fd()), 0, 0, size)
	if err == nil {
		return nil
	}
	if err == unix.ENOSYS || err == unix.EOPNOTSUPP {
		return pf.f.Truncate(size)
	}
	return errors.AddContext(err, "could not preallocate plot file")
}

// WriteAt writes p at the given byte offset. Positional writes, rather than
// a shared seek cursor, are what let out-of-order hasher-task completions
// land in the right place without serializing on a cursor update.
func (pf *PlotFile) WriteAt(p []byte, offset int64) error {
	_, err := pf.f.WriteAt(p, offset)
	if err != nil {
		return errors.AddContext(err, "could not write plot file")
	}
	return nil
}

// Close closes the underlying file.
func (pf *PlotFile) Close() error {
	return pf.f.Close()
}
