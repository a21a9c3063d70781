// Package profile provides optional runtime profiling backed by
// [github.com/pkg/profile].
//
// Profiling is compiled in only with the "pprof" build tag:
//
//	go build -tags pprof -o fncall .
//
// Without the tag [Modes] is empty and [Profiler.Start] returns a no-op.
// With it, the fncall command accepts --pprof-mode and --pprof-dir and
// writes one profile (e.g. cpu.pprof) to the directory on exit:
//
//	fncall --pprof-mode=cpu run program.fn
//	go tool pprof -http=: ~/.cache/fncall/pprof/cpu.pprof
//
// Supported modes are allocs, block, clock, cpu, goroutine, heap, mem,
// mutex, thread and trace.
package profile
