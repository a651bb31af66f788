package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/micron/lang"
)

// Dump executes sources and writes the resulting environment as data.
type Dump struct {
	Format string   `default:"yaml" enum:"yaml,json" help:"Output format (${enum})." short:"f"`
	Indent int      `default:"2"                     help:"Indent width; 0 selects compact output." short:"i"`
	Expr   []string `help:"Inline source to execute (repeatable)." placeholder:"SRC" short:"e"`
	Source []string `arg:"" help:"Source file(s) or '-' for stdin." name:"source" optional:""`
}

// Run executes the dump command.
func (d *Dump) Run(ctx context.Context) error {
	paths := d.Source
	if len(d.Expr) == 0 && len(paths) == 0 {
		paths = []string{stdinSource}
	}

	srcs, err := readSources(os.Stdin, d.Expr, paths)
	if err != nil {
		return err
	}

	in := newInterpreter()

	if err := execSources(ctx, in, srcs, stderr(ctx), nil); err != nil {
		return err
	}

	data, err := marshalEnvironment(ctx, in.Environment(), d.Format, d.Indent)
	if err != nil {
		return err
	}

	_, err = stdout(ctx).Write(data)

	return err
}

// marshalEnvironment renders env in format, always ending with a newline.
func marshalEnvironment(
	ctx context.Context,
	env *lang.Environment,
	format string,
	indent int,
) ([]byte, error) {
	var (
		data []byte
		err  error
	)

	switch format {
	case "json":
		data, err = lang.MarshalJSONIndent(env, indent)
		if err != nil {
			return nil, ErrJSONMarshal.Wrap(err)
		}

	default:
		data, err = lang.MarshalYAML(ctx, env, indent)
		if err != nil {
			return nil, ErrYAMLMarshal.With(slog.String("format", format)).Wrap(err)
		}
	}

	if len(data) == 0 || data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}

	return data, nil
}
