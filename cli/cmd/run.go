package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/ardnew/micron/lang"
)

// Run executes statements and prints the value of each bare expression.
//
// Inline sources given with -e run first, in order, followed by the source
// files. All of them share one environment.
type Run struct {
	Expr   []string `help:"Inline source to execute (repeatable)." placeholder:"SRC" short:"e"`
	Source []string `arg:"" help:"Source file(s) or '-' for stdin." name:"source" optional:""`
}

// Run executes the run command.
func (r *Run) Run(ctx context.Context) error {
	paths := r.Source
	if len(r.Expr) == 0 && len(paths) == 0 {
		paths = []string{stdinSource}
	}

	srcs, err := readSources(os.Stdin, r.Expr, paths)
	if err != nil {
		return err
	}

	out := stdout(ctx)

	return execSources(ctx, newInterpreter(), srcs, stderr(ctx),
		func(res lang.Result) error {
			if res.Value == nil {
				return nil
			}

			_, err := fmt.Fprintln(out, res.Value.String())

			return err
		},
	)
}
