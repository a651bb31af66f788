package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/micron/cli/cmd/repl"
	"github.com/ardnew/micron/log"
)

// Repl starts an interactive session.
//
// Sources named on the command line execute first and seed the session's
// environment.
type Repl struct {
	Expr   []string `help:"Inline source to execute before the session starts (repeatable)." placeholder:"SRC" short:"e"`
	Source []string `arg:"" help:"Source file(s) or '-' for stdin." name:"source" optional:""`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) error {
	srcs, err := readSources(os.Stdin, r.Expr, r.Source)
	if err != nil {
		return err
	}

	in := newInterpreter()

	if err := execSources(ctx, in, srcs, stderr(ctx), nil); err != nil {
		return err
	}

	cacheDir, _ := kongVar(ctx, CacheIdentifier)

	if cacheDir != "" {
		if err := os.MkdirAll(cacheDir, cacheDirMode); err != nil {
			log.WarnContext(ctx, "history disabled",
				slog.String("cache_dir", cacheDir),
				slog.String("error", err.Error()),
			)

			cacheDir = ""
		}
	}

	return repl.Run(ctx, in, cacheDir, log.With(slog.String("component", "repl")))
}

// cacheDirMode is the permission mode of a created cache directory.
const cacheDirMode os.FileMode = 0o700
