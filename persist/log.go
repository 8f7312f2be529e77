package persist

import (
	"io"

	"github.com/ventfang/parallel-ploter/build"
	"gitlab.com/NebulousLabs/log"
)

// Logger is a wrapper for log.Logger.
type Logger struct {
	*log.Logger
}

// buildOptions assembles a log.Options snapshot from the build package's
// current state. Every constructor calls this fresh rather than reading a
// package-level var computed once at init: the build package's vars are
// exported and can be reassigned after this package's own initializers
// have run, and a cached snapshot would silently keep the old values.
func buildOptions() log.Options {
	return log.Options{
		BinaryName:   build.BinaryName,
		BugReportURL: build.IssuesURL,
		Debug:        build.DEBUG,
		Release:      releaseType(build.Release),
		Version:      build.Version,
	}
}

// NewFileLogger returns a logger that logs to logFilename. The file is opened
// in append mode, and created if it does not exist.
func NewFileLogger(logFilename string) (*Logger, error) {
	logger, err := log.NewFileLogger(logFilename, buildOptions())
	return &Logger{logger}, err
}

// NewLogger returns a logger that can be closed. Calls should not be made to
// the logger after 'Close' has been called.
func NewLogger(w io.Writer) (*Logger, error) {
	logger, err := log.NewLogger(w, buildOptions())
	return &Logger{logger}, err
}

// releaseType maps the build package's release string onto the logging
// library's own enum, defaulting to Release for anything unrecognized.
func releaseType(release string) log.ReleaseType {
	switch release {
	case "standard":
		return log.Release
	case "dev":
		return log.Dev
	case "testing":
		return log.Testing
	default:
		return log.Release
	}
}
