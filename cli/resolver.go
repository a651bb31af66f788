package cli

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/micron/lang"
	"github.com/ardnew/micron/log"
)

// resolve returns a [kong.ConfigurationLoader] for configuration files
// written in Micron.
//
// The file is executed in a fresh interpreter and the Dict bound to the
// variable name supplies flag values:
//
//	config = {
//	  "log-level": "debug",
//	  "log_format": "json",
//	  "log-pretty": 1,
//	};
//
// Keys may spell a flag name with hyphens or underscores. Integers are
// accepted for boolean flags, zero being false. A file that fails to execute
// is logged and ignored, and command-line flags always win.
func resolve(ctx context.Context, name string) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		in := lang.NewInterpreter(
			lang.WithLogger(log.With(slog.String("component", "config"))),
		)

		if _, err := in.ExecReader(ctx, r); err != nil {
			log.WarnContext(ctx, "ignoring configuration file",
				slog.Any("error", err),
			)

			return config{}, nil
		}

		v, ok := in.Environment().Get(name)
		if !ok || v.Kind() != lang.KindDict {
			return config{}, nil
		}

		c := make(config, len(v.Dict()))
		for key, val := range v.Dict() {
			c[normalizeKey(key)] = val
		}

		return c, nil
	}
}

// config implements [kong.Resolver] over the entries of a configuration Dict,
// keyed by normalized flag name.
type config map[string]lang.Value

func normalizeKey(key string) string { return strings.ReplaceAll(key, "_", "-") }

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	v, ok := c[normalizeKey(flag.Name)]
	if !ok {
		return nil, nil
	}

	return flagValue(v, flag.IsBool()), nil
}

// flagValue converts v to the form kong parses for a flag. Numbers are
// rendered as text, and Integers become booleans for boolean flags.
func flagValue(v lang.Value, isBool bool) any {
	switch v.Kind() {
	case lang.KindInteger:
		if isBool {
			return v.Int().Sign() != 0
		}

		return v.Int().String()

	case lang.KindFloat:
		if f, ok := lang.Native(v).(float64); ok {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}

		return lang.Native(v)

	default:
		return lang.Native(v)
	}
}
