package profile

import (
	"iter"
	"slices"
)

// Tag is the build tag required to enable profiling.
const Tag = `pprof`

// Stopper stops a running profiler and flushes its output.
type Stopper interface{ Stop() }

// Profiler describes a profiling session.
type Profiler struct {
	Mode  string // One of [Modes]; empty disables profiling
	Path  string // Output directory; empty uses the working directory
	Quiet bool   // Suppress the profiler's own log lines
}

// Start begins profiling and returns a Stopper that ends it. Start returns
// a no-op Stopper when Mode is empty or unknown, or when the binary was
// built without the pprof tag. Both Start and Stop are always safe to call.
func (p Profiler) Start() Stopper {
	if p.Mode == "" || !slices.Contains(modes(), p.Mode) {
		return ignore{}
	}

	return start(p)
}

// Modes returns the supported profiling modes in sorted order. It is empty
// unless the binary was built with the pprof tag.
func Modes() iter.Seq[string] { return slices.Values(modes()) }

// Enabled reports whether profiling support was compiled in.
func Enabled() bool { return len(modes()) > 0 }

type ignore struct{}

func (ignore) Stop() {}
