// Package cmd implements the zedup subcommands: running scripts, merging
// record pairs, checking and formatting scripts, the interactive REPL, and
// writing the configuration file.
//
// Commands receive their dependencies through the context: the parsed
// kong.Context ([WithContext]), the script engine ([WithEngine]), the
// logger ([WithLogger]), and the standard streams ([WithStdio]).
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file.
	ConfigIdentifier = "config"
)
