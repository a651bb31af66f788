package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/micron/lang"
)

// Fmt parses a source and writes it back in canonical form.
type Fmt struct {
	AST    bool   `help:"Print the syntax tree instead of source."`
	Indent int    `default:"0" help:"Indent width for dictionary literals; 0 keeps them on one line." short:"i"`
	Source string `arg:"" default:"-" help:"Source input file or '-' for stdin." name:"source"`
}

// Run executes the fmt command.
func (f *Fmt) Run(ctx context.Context) error {
	srcs, err := readSources(os.Stdin, nil, []string{f.Source})
	if err != nil {
		return err
	}

	var text string
	if len(srcs) > 0 {
		text = srcs[0].text
	}

	stmts, err := lang.ParseString(ctx, text)
	if err != nil {
		if snip := lang.Snippet(text, err); snip != "" {
			_, _ = stderr(ctx).Write([]byte(snip + "\n"))
		}

		return lang.WrapError(err).With(slog.String("source", f.Source))
	}

	if f.AST {
		return lang.Print(ctx, stdout(ctx), stmts)
	}

	return lang.Format(ctx, stdout(ctx), stmts, f.Indent)
}
