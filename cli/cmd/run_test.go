package cmd

import (
	"errors"
	"testing"

	"github.com/ardnew/micron/lang"
)

func TestRunRun(t *testing.T) {
	dir := t.TempDir()
	lib := writeFile(t, dir, "lib.mc", "base = 2 ** 64\n")
	main := writeFile(t, dir, "main.mc", "base + 1\nname = \"micron\"\nname.at(0)\n")

	tests := []struct {
		name string
		cmd  Run
		want string
	}{
		{
			name: "inline",
			cmd:  Run{Expr: []string{"1 + 2; x = 3", "x * x"}},
			want: "3\n9\n",
		},
		{
			name: "files_share_environment",
			cmd:  Run{Source: []string{lib, main}},
			want: "18446744073709551617\n\"m\"\n",
		},
		{
			name: "inline_before_files",
			cmd:  Run{Expr: []string{"base = 1"}, Source: []string{main}},
			want: "2\n\"m\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, out, _ := testContext(t, nil)

			if err := tt.cmd.Run(ctx); err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			if got := out.String(); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRunRun_Error(t *testing.T) {
	ctx, out, _ := testContext(t, nil)

	cmd := Run{Expr: []string{"1; missing + 1; 2"}}

	err := cmd.Run(ctx)
	if !errors.Is(err, ErrExecute) || !errors.Is(err, lang.ErrUnknownVariable) {
		t.Fatalf("Run() error = %v, want %v wrapping %v", err, ErrExecute, lang.ErrUnknownVariable)
	}

	if got := out.String(); got != "1\n" {
		t.Errorf("output = %q, want the results before the error", got)
	}
}
