// Package profile provides optional runtime profiling for the micron
// command.
//
// Profiling is built on [github.com/pkg/profile] and must be enabled at build
// time with the "pprof" build tag:
//
//	go build -tags pprof -o micron .
//
// Without the tag, [Profiler.Start] is a no-op, [Modes] is empty, and the
// profiling dependency is not linked.
//
// # Modes
//
//   - allocs:    memory allocation profiling (all allocations)
//   - block:     block (synchronization) profiling
//   - clock:     wall-clock profiling
//   - cpu:       CPU profiling
//   - goroutine: goroutine profiling
//   - heap:      heap profiling (live allocations)
//   - mem:       general memory profiling
//   - mutex:     mutex contention profiling
//   - thread:    thread creation profiling
//   - trace:     execution trace
//
// # Usage
//
//	p := profile.New(profile.WithMode("cpu"), profile.WithPath(dir))
//	defer p.Start().Stop()
//
// The command line exposes the same settings:
//
//	micron --pprof-mode cpu run -e '3 ** 100000'
//	go tool pprof -http=: ~/.cache/micron/pprof/cpu.pprof
package profile
