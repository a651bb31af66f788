package cli

import (
	"os"
	"testing"

	"github.com/ardnew/micron/log"
)

func TestLogConfigScan(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want logConfig
	}{
		{
			name: "assigned_values",
			args: []string{"--log-level=debug", "--log-format=json", "--log-time-layout=kitchen"},
			want: logConfig{Level: "debug", Format: "json", TimeLayout: "kitchen"},
		},
		{
			name: "separate_values",
			args: []string{"run", "--log-level", "trace", "--log-format", "text", "file.mc"},
			want: logConfig{Level: "trace", Format: "text"},
		},
		{
			name: "value_missing",
			args: []string{"--log-level", "--log-caller"},
			want: logConfig{Caller: true},
		},
		{
			name: "booleans",
			args: []string{"--log-pretty", "--log-caller=false"},
			want: logConfig{Pretty: true},
		},
		{
			name: "negated",
			args: []string{"--log-pretty", "--no-log-pretty", "--no-log-caller=false"},
			want: logConfig{Caller: true},
		},
		{
			name: "invalid_boolean_ignored",
			args: []string{"--log-caller=maybe"},
			want: logConfig{},
		},
		{
			name: "stops_at_terminator",
			args: []string{"--", "--log-level=debug"},
			want: logConfig{},
		},
	}

	t.Cleanup(func() { log.Config(log.WithDefaults(os.Stderr)) })

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got logConfig

			got.scan(tt.args)

			if got != tt.want {
				t.Errorf("scan(%q) = %+v, want %+v", tt.args, got, tt.want)
			}
		})
	}
}

func TestLogConfigScan_ConfiguresLogger(t *testing.T) {
	t.Cleanup(func() { log.Config(log.WithDefaults(os.Stderr)) })

	var cfg logConfig

	cfg.scan([]string{"--log-level=debug", "--log-format=json"})

	logger := log.Default()
	if logger.Level() != log.LevelDebug {
		t.Errorf("Level() = %v, want %v", logger.Level(), log.LevelDebug)
	}

	if logger.Format() != log.FormatJSON {
		t.Errorf("Format() = %v, want %v", logger.Format(), log.FormatJSON)
	}
}

func TestScanBool(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		assigned bool
		want     bool
		ok       bool
	}{
		{"--log-pretty", "", false, true, true},
		{"--no-log-pretty", "", false, false, true},
		{"--log-pretty", "false", true, false, true},
		{"--no-log-pretty", "false", true, true, true},
		{"--log-pretty", "x", true, false, false},
	}

	for _, tt := range tests {
		got, ok := scanBool(tt.name, tt.value, tt.assigned)
		if got != tt.want || ok != tt.ok {
			t.Errorf("scanBool(%q, %q, %v) = (%v, %v), want (%v, %v)",
				tt.name, tt.value, tt.assigned, got, ok, tt.want, tt.ok)
		}
	}
}
