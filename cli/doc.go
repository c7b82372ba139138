// Package cli contains the command line interface for zedup.
//
// # Usage
//
// The default command runs a script read from a file or standard input:
//
//	echo 'return a + b' | zedup -p a -p b 33 29
//
// The merge command runs a script over record pairs read from YAML:
//
//	zedup merge -f merge.zd -r records.yaml --where 'candidate.address != master.address'
//
// # Configuration
//
// Flag defaults are read from a YAML file in the user configuration
// directory (see [pkg.ConfigDir]), keyed by flag name. The init command
// writes that file from the current flag values. Every flag can also be
// set through an environment variable named after the executable, such as
// ZEDUP_LOG_LEVEL.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, datetime, none, ...)
//   - --log-caller: Include caller information in log output
//   - --[no-]log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o zedup .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory
package cli
