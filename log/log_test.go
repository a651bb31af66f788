package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestLogger_Make_DefaultConfiguration(t *testing.T) {
	logger := Make(&bytes.Buffer{})

	if logger.Level() != DefaultLevel {
		t.Errorf("expected default level %v, got %v", DefaultLevel, logger.Level())
	}
	if logger.Format() != DefaultFormat {
		t.Errorf("expected default format %v, got %v", DefaultFormat, logger.Format())
	}
	if logger.caller {
		t.Error("expected caller disabled by default")
	}
	if logger.pretty {
		t.Error("expected pretty disabled by default")
	}
}

func TestLogger_ZeroValue_Discards(t *testing.T) {
	var logger Logger

	logger.Error("nothing happens")
	logger.TraceContext(t.Context(), "nothing happens")

	if logger.Level() != DefaultLevel {
		t.Errorf("expected zero logger level %v, got %v", DefaultLevel, logger.Level())
	}
	if got := logger.With(slog.Int("n", 1)); got.Logger != nil {
		t.Error("expected With on zero logger to stay zero")
	}

	var buf bytes.Buffer

	wrapped := logger.Wrap(WithOutput(&buf), WithLevel(LevelInfo))
	wrapped.Info("now visible")

	if !strings.Contains(buf.String(), "now visible") {
		t.Errorf("expected Wrap of zero logger to log, got: %s", buf.String())
	}
}

func TestLogger_WithLevel_FiltersMessages(t *testing.T) {
	tests := []struct {
		level Level
		log   func(Logger)
		want  bool
	}{
		{LevelTrace, func(l Logger) { l.Trace("m") }, true},
		{LevelDebug, func(l Logger) { l.Trace("m") }, false},
		{LevelDebug, func(l Logger) { l.Debug("m") }, true},
		{LevelInfo, func(l Logger) { l.Debug("m") }, false},
		{LevelWarn, func(l Logger) { l.Info("m") }, false},
		{LevelWarn, func(l Logger) { l.Warn("m") }, true},
		{LevelError, func(l Logger) { l.Warn("m") }, false},
		{LevelError, func(l Logger) { l.Error("m") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			var buf bytes.Buffer

			tt.log(Make(&buf, WithLevel(tt.level)))

			if got := buf.Len() > 0; got != tt.want {
				t.Errorf("expected logged=%v, got output: %q", tt.want, buf.String())
			}
		})
	}
}

func TestLogger_WithFormat_SetsOutputFormat(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer

		logger := Make(&buf, WithFormat(FormatJSON), WithLevel(LevelTrace))
		logger.Trace("test message", slog.String("key", "value"))

		var result map[string]any
		if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
			t.Fatalf("failed to parse JSON output: %v", err)
		}
		if result["msg"] != "test message" {
			t.Errorf("expected msg=test message, got %v", result["msg"])
		}
		if result["level"] != "TRACE" {
			t.Errorf("expected level=TRACE, got %v", result["level"])
		}
		if result["key"] != "value" {
			t.Errorf("expected key=value, got %v", result["key"])
		}
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer

		logger := Make(&buf, WithFormat(FormatText))
		logger.Warn("test message", slog.String("key", "value"))

		output := buf.String()
		if !strings.Contains(output, `msg="test message"`) {
			t.Errorf("expected text message, got: %s", output)
		}
		if !strings.Contains(output, "key=value") {
			t.Errorf("expected text attribute, got: %s", output)
		}
	})
}

func TestLogger_WithTimeLayout(t *testing.T) {
	tests := []struct {
		layout string
		want   func(string) bool
	}{
		{"RFC3339", func(s string) bool { return strings.Contains(s, "time=") && strings.Contains(s, "T") }},
		{"rfc-3339-nano", func(s string) bool { return strings.Contains(s, "time=") && strings.Contains(s, ".") }},
		{"kitchen", func(s string) bool { return strings.Contains(s, "M ") }},
		{"none", func(s string) bool { return !strings.Contains(s, "time=") }},
		{"", func(s string) bool { return !strings.Contains(s, "time=") }},
	}

	for _, tt := range tests {
		t.Run(tt.layout, func(t *testing.T) {
			var buf bytes.Buffer

			Make(&buf, WithTimeLayout(tt.layout)).Warn("test")

			if !tt.want(buf.String()) {
				t.Errorf("unexpected time rendering for %q: %s", tt.layout, buf.String())
			}
		})
	}
}

func TestLogger_WithCaller_IncludesSource(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithCaller(true)).Warn("test message")

	if !strings.Contains(buf.String(), "log_test.go:") {
		t.Errorf("expected source in this file, got: %s", buf.String())
	}

	buf.Reset()
	Make(&buf, WithCaller(false)).Warn("test message")

	if strings.Contains(buf.String(), "source=") {
		t.Errorf("expected no source, got: %s", buf.String())
	}
}

func TestLogger_Wrap_KeepsBaseConfiguration(t *testing.T) {
	var buf bytes.Buffer

	base := Make(&buf, WithFormat(FormatJSON), WithLevel(LevelError))
	wrapped := base.Wrap(WithLevel(LevelDebug))

	if wrapped.Format() != FormatJSON {
		t.Errorf("expected format carried over, got %v", wrapped.Format())
	}
	if wrapped.Level() != LevelDebug {
		t.Errorf("expected overridden level, got %v", wrapped.Level())
	}
	if base.Level() != LevelError {
		t.Errorf("expected base unchanged, got %v", base.Level())
	}

	wrapped.Debug("wrapped")

	if !strings.Contains(buf.String(), `"msg":"wrapped"`) {
		t.Errorf("expected output on shared writer, got: %s", buf.String())
	}
}

func TestLogger_With_AddsAttributes(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf).With(slog.String("file", "a.mc"))
	logger.Warn("one", slog.Int("line", 1))

	output := buf.String()
	if !strings.Contains(output, "file=a.mc") || !strings.Contains(output, "line=1") {
		t.Errorf("expected both attributes, got: %s", output)
	}

	if logger.Level() != DefaultLevel {
		t.Errorf("expected With to keep configuration, got %v", logger.Level())
	}
}

func TestLogger_ConcurrentUse(t *testing.T) {
	var (
		buf bytes.Buffer
		mu  sync.Mutex
		wg  sync.WaitGroup
	)

	logger := Make(writerFunc(func(p []byte) (int, error) {
		mu.Lock()
		defer mu.Unlock()

		return buf.Write(p)
	}), WithLevel(LevelInfo))

	for i := range 8 {
		wg.Go(func() {
			logger.With(slog.Int("worker", i)).Info("tick")
		})
	}

	wg.Wait()

	if n := strings.Count(buf.String(), "msg=tick"); n != 8 {
		t.Errorf("expected 8 records, got %d", n)
	}
}

func TestLogger_Pretty(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		want   []string
	}{
		{"text", FormatText, []string{colorGray + "msg" + colorReset + "=", "WARN", "scope.name", "42"}},
		{"json", FormatJSON, []string{"{\n", `"msg"`, `"scope.name"`, "\n}"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			logger := Make(&buf, WithPretty(true), WithFormat(tt.format), WithTimeLayout("none")).
				With(slog.String("file", "x.mc"))

			logger.WithGroup("scope").Warn("hello", slog.String("name", "inner"), slog.Int("n", 42))

			output := buf.String()
			for _, w := range append(tt.want, "file", "hello", "inner") {
				if !strings.Contains(output, w) {
					t.Errorf("expected %q in pretty output: %q", w, output)
				}
			}

			if strings.Contains(output, "time") {
				t.Errorf("expected no timestamp, got %q", output)
			}
		})
	}
}

type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }
