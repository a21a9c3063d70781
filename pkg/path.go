package pkg

import (
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

// debugBinary matches the default output name of the dlv debugger.
var debugBinary = regexp.MustCompile(`^__debug_bin\d+$`)

// Prefix returns the base name used for the configuration and cache
// directories. It is the executable name without extension or leading dots,
// or [Name] when running under the debugger.
//
//nolint:gochecknoglobals
var Prefix = sync.OnceValue(
	func() string {
		exe, err := os.Executable()
		if err != nil {
			exe = os.Args[0]
		}

		return prefixOf(exe)
	},
)

func prefixOf(exe string) string {
	base := filepath.Base(exe)
	base = base[:len(base)-len(filepath.Ext(base))]

	if debugBinary.MatchString(base) {
		return Name
	}

	for len(base) > 0 && base[0] == '.' {
		base = base[1:]
	}

	if base == "" {
		return Name
	}

	return base
}

// ConfigDir returns the configuration directory path.
//
//nolint:gochecknoglobals
var ConfigDir = sync.OnceValue(
	func() string { return userDir(os.UserConfigDir, ".config") },
)

// CacheDir returns the cache directory path used for transient files.
//
//nolint:gochecknoglobals
var CacheDir = sync.OnceValue(
	func() string { return userDir(os.UserCacheDir, ".cache") },
)

// userDir joins [Prefix] to the directory returned by base. If base fails it
// falls back to the named directory under the user's home, then to the
// working directory.
func userDir(base func() (string, error), home string) string {
	dir, err := base()
	if err != nil {
		if dir, err = os.UserHomeDir(); err == nil {
			dir = filepath.Join(dir, home)
		} else if dir, err = os.Getwd(); err != nil {
			dir = "."
		}
	}

	return filepath.Join(dir, Prefix())
}
