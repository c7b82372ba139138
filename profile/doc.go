// Package profile provides optional runtime profiling for zedup.
//
// Profiling uses [github.com/pkg/profile] and is only compiled in when the
// binary is built with the "pprof" build tag:
//
//	go build -tags pprof .
//
// Without the tag every [Profiler] is a no-op and [Modes] is empty.
//
// # Modes
//
//   - allocs:    memory allocation profiling (all allocations)
//   - block:     blocking on synchronization primitives
//   - clock:     wall-clock profiling
//   - cpu:       CPU profiling
//   - goroutine: goroutine stacks
//   - heap:      live heap allocations
//   - mem:       general memory profiling
//   - mutex:     mutex contention
//   - thread:    thread creation
//   - trace:     execution trace
//
// # Usage
//
//	p := profile.Profiler{Mode: "cpu", Path: "/tmp/profiles"}
//	defer p.Start().Stop()
//
// From the command line, profile a merge run and inspect the result:
//
//	zedup --pprof-mode cpu --pprof-dir ./profiles merge -f merge.zd -r records.yaml
//	go tool pprof -http=: ./profiles/cpu.pprof
//
// The default output directory is the "pprof" directory under the user cache
// directory ($XDG_CACHE_HOME/zedup/pprof on Linux).
package profile
