// Package cmd implements the micron subcommands: run, repl, dump, fmt and
// init.
//
// Each command is a kong command struct with a Run(context.Context) method.
// The parsed [kong.Context] travels in the context (see [WithContext]) so
// commands can reach the configured writers and the kong variables below.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file. It is also the variable the configuration
	// program binds its settings to.
	ConfigIdentifier = "config"
)
