// Package cmd implements the fncall subcommands: run, tokens, fmt, init and
// repl. The interactive terminal model lives in package repl.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the YAML configuration file.
	ConfigIdentifier = "config"
)

// PathEnv names the environment variable holding a list of directories
// searched for relative source files, separated like PATH.
const PathEnv = "FNCALL_PATH"
