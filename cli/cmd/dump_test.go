package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
)

func TestDumpRun(t *testing.T) {
	src := []string{`port = 8080; server = {"host": "localhost", "tls": 1}; ratio = 0.5`}

	tests := []struct {
		name   string
		format string
		indent int
		check  func(t *testing.T, out string)
	}{
		{
			name:   "yaml",
			format: "yaml",
			indent: 2,
			check: func(t *testing.T, out string) {
				var got map[string]any
				if err := yaml.Unmarshal([]byte(out), &got); err != nil {
					t.Fatalf("yaml.Unmarshal() error = %v", err)
				}

				if len(got) != 3 {
					t.Errorf("decoded %d bindings, want 3", len(got))
				}

				if !strings.Contains(out, "host: localhost") {
					t.Errorf("output = %q", out)
				}
			},
		},
		{
			name:   "json_indented",
			format: "json",
			indent: 4,
			check: func(t *testing.T, out string) {
				var got map[string]any
				if err := json.Unmarshal([]byte(out), &got); err != nil {
					t.Fatalf("json.Unmarshal() error = %v", err)
				}

				if got["port"] != float64(8080) || got["ratio"] != 0.5 {
					t.Errorf("decoded = %v", got)
				}

				if !strings.Contains(out, "\n    \"port\": 8080") {
					t.Errorf("output is not indented by 4: %q", out)
				}
			},
		},
		{
			name:   "json_compact",
			format: "json",
			indent: 0,
			check: func(t *testing.T, out string) {
				if strings.Count(out, "\n") != 1 || !strings.HasSuffix(out, "}\n") {
					t.Errorf("output = %q, want a single line", out)
				}
			},
		},
		{
			name:   "yaml_flow",
			format: "yaml",
			indent: 0,
			check: func(t *testing.T, out string) {
				if !strings.HasPrefix(out, "{") {
					t.Errorf("output = %q, want flow style", out)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, out, _ := testContext(t, nil)

			cmd := Dump{Format: tt.format, Indent: tt.indent, Expr: src}
			if err := cmd.Run(ctx); err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			tt.check(t, out.String())
		})
	}
}
