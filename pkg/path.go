package pkg

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Prefix is the executable's base name without extension or leading dots.
// It names the config and cache directories and prefixes environment
// variables. Debugger builds (__debug_bin*) fall back to [Name].
//
//nolint:gochecknoglobals
var Prefix = sync.OnceValue(func() string {
	return prefixOf(os.Args[0])
})

func prefixOf(arg0 string) string {
	path := arg0
	if exe, err := os.Executable(); err == nil {
		path = exe
	}

	base := filepath.Base(path)
	base = strings.TrimLeft(strings.TrimSuffix(base, filepath.Ext(base)), ".")

	if base == "" || strings.HasPrefix(base, "__debug_bin") {
		return Name
	}

	return base
}

// ConfigDir is where the configuration file lives.
//
//nolint:gochecknoglobals
var ConfigDir = sync.OnceValue(func() string {
	return userDir(os.UserConfigDir, ".config")
})

// CacheDir holds transient files such as REPL history and profiles.
//
//nolint:gochecknoglobals
var CacheDir = sync.OnceValue(func() string {
	return userDir(os.UserCacheDir, ".cache")
})

// userDir joins [Prefix] onto the directory returned by base, falling back to
// $HOME/hidden and then the working directory.
func userDir(base func() (string, error), hidden string) string {
	dir, err := base()
	if err != nil {
		if home, herr := os.UserHomeDir(); herr == nil {
			dir = filepath.Join(home, hidden)
		} else if wd, werr := os.Getwd(); werr == nil {
			dir = wd
		} else {
			dir = "."
		}
	}

	return filepath.Join(dir, Prefix())
}
