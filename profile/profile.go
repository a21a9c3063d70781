package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`

// Profiler selects a profiling mode and the directory profiles are written
// to. The zero Profiler profiles nothing.
type Profiler struct {
	Mode  string
	Path  string
	Quiet bool
}

// Start begins profiling and returns the handle that stops it.
// Without the pprof build tag, or with an empty or unknown Mode, Start
// returns a no-op. Both Start and Stop are always safe to call.
func (p Profiler) Start() interface{ Stop() } {
	if p.Mode == "" {
		return ignore{}
	}

	return start(p)
}

type ignore struct{}

func (ignore) Stop() {}
