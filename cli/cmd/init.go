package cmd

import (
	"bytes"
	"context"
	"encoding"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/micron/lang"
	"github.com/ardnew/micron/log"
	"github.com/ardnew/micron/profile"
)

// defaultConfigIndent is the number of spaces to use for indentation
// when generating the default configuration file.
const defaultConfigIndent = 2

// configFileMode is the permission mode of a written configuration file.
const configFileMode os.FileMode = 0o600

// Init writes a configuration program holding the current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) error {
	ktx := kongContextFrom(ctx)
	if ktx == nil || ktx.Model == nil {
		return ErrWriteConfig.With(slog.String("reason", "no command-line model"))
	}

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	if _, err := os.Stat(confPath); err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(ErrFileExists)
	}

	var buf bytes.Buffer

	err := lang.Format(ctx, &buf, []lang.Statement{configProgram(ktx)}, defaultConfigIndent)
	if err != nil {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}

	if err := os.WriteFile(confPath, buf.Bytes(), configFileMode); err != nil {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}

	log.DebugContext(ctx, "initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// configProgram builds the statement "config = {...}" from the application
// flags, sorted by name.
func configProgram(ktx *kong.Context) lang.Statement {
	ignore := []string{"help", "version", profile.Tag}

	var entries []lang.DictEntry

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(ignore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		if v, ok := flagLiteral(ktx.FlagValue(flag)); ok {
			entries = append(entries, lang.DictEntry{Key: flag.Name, Value: &lang.Literal{Value: v}})
		}
	}

	slices.SortFunc(entries, func(a, b lang.DictEntry) int {
		return strings.Compare(a.Key, b.Key)
	})

	return &lang.Assignment{
		Target: lang.Singular(ConfigIdentifier),
		Value:  &lang.DictLit{Entries: entries},
	}
}

// flagLiteral converts a parsed flag value to a Micron value. Booleans become
// the Integers 1 and 0. Unset values and empty strings are skipped.
func flagLiteral(val any) (lang.Value, bool) {
	switch v := val.(type) {
	case nil:
		return lang.Value{}, false

	case bool:
		if v {
			return lang.MakeInt(1), true
		}

		return lang.MakeInt(0), true

	case string:
		if v == "" {
			return lang.Value{}, false
		}

		return lang.MakeString(v), true

	case int:
		return lang.MakeInt(int64(v)), true

	case int64:
		return lang.MakeInt(v), true

	case uint:
		return lang.MakeInt(int64(v)), true

	case float64:
		return lang.MakeFloat(v), true

	case encoding.TextMarshaler:
		text, err := v.MarshalText()
		if err != nil || len(text) == 0 {
			return lang.Value{}, false
		}

		return lang.MakeString(string(text)), true

	default:
		return lang.MakeString(fmt.Sprint(v)), true
	}
}
