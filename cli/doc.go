// Package cli contains the command line interface for fncall.
//
// # Usage
//
//	fncall [flags] [run] [SOURCE ...]
//	fncall tokens [--filter=EXPR] [--json] [SOURCE ...]
//	fncall fmt native|json|yaml|ast [SOURCE]
//	fncall init [--force]
//	fncall repl
//
// The run command is selected when no command is named, so
// "fncall hello.fn" executes hello.fn.
//
// # Configuration
//
// Flag defaults are read from $XDG_CONFIG_HOME/fncall/config (YAML) and
// config.json in the same directory. Keys are flag names with hyphens
// written as underscores:
//
//	log_level: debug
//	max_depth: 64
//	include:
//	  - ~/lib/fncall
//
// "fncall init" writes the current flag values to the YAML file.
// Command-line flags override file values.
//
// # Logging Options
//
//   - --log-level: trace, debug, info, warn or error
//   - --log-format: text or json
//   - --log-time-layout: a Go time layout or a name such as RFC3339 or none
//   - --[no-]log-caller: include the source location of each record
//   - --[no-]log-pretty: colorize records
//
// # Profiling Options
//
// Available only when built with the pprof build tag:
//
//	go build -tags pprof -o fncall .
//
//   - --pprof-mode: allocs, block, clock, cpu, goroutine, heap, mem, mutex,
//     thread or trace
//   - --pprof-dir: profile output directory (default ~/.cache/fncall/pprof)
package cli
