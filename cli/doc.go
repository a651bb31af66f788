// Package cli contains the command line interface for micron.
//
// # Usage
//
//	micron [flags] [SOURCE...]         start the REPL (default command)
//	micron run [-e SRC]... [SOURCE...] execute and print results
//	micron dump [-f yaml|json] ...     execute and write the environment
//	micron fmt [--ast] [SOURCE]        format source
//	micron init [--force]              write the configuration file
//
// A SOURCE of "-" reads standard input.
//
// # Configuration File
//
// The configuration file is a Micron program stored in the user configuration
// directory (for example ~/.config/micron/config). It is executed on start and
// the Dict bound to the variable config supplies flag defaults:
//
//	config = {
//	  "log-level": "debug",
//	  "log-pretty": 1,
//	};
//
// Keys may use hyphens or underscores. Booleans are Integers, where zero is
// false. A config.json file in the same directory is also read, and flags
// given on the command line take precedence over both. Use "micron init" to
// write the current settings.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp layout (RFC3339, kitchen, none, ...)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// Logging flags are applied before the rest of the command line is parsed.
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o micron .
//
// The flag --pprof-mode selects the profile and --pprof-dir the output
// directory (default ~/.cache/micron/pprof).
package cli
