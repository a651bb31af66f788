// Package log provides leveled structured logging based on [log/slog].
//
// A [Logger] is configured once, when it is made, using functional options.
// Loggers are values and never change after creation, so they are safe to
// share between goroutines.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Warn("division by zero", slog.String("expr", "x / 0"))
//
// # Configuration
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelTrace),
//		log.WithFormat(log.FormatJSON),
//		log.WithTimeLayout("rfc3339nano"),
//		log.WithCaller(true))
//
// [Logger.Wrap] derives a new Logger from an existing configuration.
//
// # Levels
//
// Five levels are supported: [LevelTrace], [LevelDebug], [LevelInfo],
// [LevelWarn], and [LevelError]. Trace is below Debug and is used for
// per-node evaluation detail. [Level] and [Format] implement
// [encoding.TextUnmarshaler], so they can be parsed directly from
// command-line flags and configuration files.
//
// # Pretty Output
//
// [WithPretty] enables ANSI-colored output in either format. It is meant for
// terminals, not for machine consumption.
//
// # Package-Level Logger
//
// The package-level functions such as [Info] and [Warn] use a default Logger
// writing to standard error. [Config] reconfigures it.
package log
