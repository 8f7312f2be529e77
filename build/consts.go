package build

// Release identifies which build of the ploter is running. When it holds
// "testing" at package init (e.g. stamped with -ldflags -X), DEBUG is on and
// Critical panics instead of merely logging, letting invariant violations
// fail tests loudly.
var Release = "standard"

// DEBUG controls whether Critical and Severe panic in addition to logging.
// It is forced on for "testing" builds.
var DEBUG = Release == "testing"

var (
	// BinaryName is the name of the compiled binary, used in log headers and
	// crash messages.
	BinaryName = "ploter"

	// Version is the current version of the ploter, supplied at compile time
	// via -ldflags.
	Version = "?.?.?"

	// IssuesURL is where Critical failures point users to file a report.
	IssuesURL = "https://github.com/ventfang/parallel-ploter/issues"
)
