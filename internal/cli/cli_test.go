package cli

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/jamesainslie/go-segqual/internal/exitcode"
)

func TestLogLevel(t *testing.T) {
	tests := []struct {
		name    string
		flag    string
		env     string
		want    slog.Level
		wantErr bool
	}{
		{"default", "", "", slog.LevelInfo, false},
		{"flag", "debug", "error", slog.LevelDebug, false},
		{"env", "", "warn", slog.LevelWarn, false},
		{"invalid", "loud", "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvLogLevel, tt.env)
			got, err := LogLevel(tt.flag)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LogLevel(%q) error = %v", tt.flag, err)
			}
			if tt.wantErr && exitcode.Classify(err) != exitcode.Usage {
				t.Errorf("LogLevel(%q) error %v does not map to a usage exit", tt.flag, err)
			}
			if got != tt.want {
				t.Errorf("LogLevel(%q) = %v, want %v", tt.flag, got, tt.want)
			}
		})
	}
}

func TestWorkers(t *testing.T) {
	t.Setenv(EnvWorkers, "3")
	if n, err := Workers(0); err != nil || n != 3 {
		t.Errorf("Workers(0) = %d, %v; want 3", n, err)
	}
	if n, err := Workers(5); err != nil || n != 5 {
		t.Errorf("Workers(5) = %d, %v; want 5", n, err)
	}

	t.Setenv(EnvWorkers, "many")
	if _, err := Workers(0); !errors.Is(err, exitcode.ErrUsage) {
		t.Errorf("expected ErrUsage for non-numeric workers, got: %v", err)
	}
}

func TestFail_AttachesTrace(t *testing.T) {
	var buf bytes.Buffer
	Fail(NewLogger(&buf, slog.LevelInfo), "comparison failed", errors.New("boom"))

	out := buf.String()
	if !strings.Contains(out, "error.msg=boom") {
		t.Errorf("log line missing error message: %q", out)
	}
	if !strings.Contains(out, "error.trace=") || !strings.Contains(out, "cli.go") {
		t.Errorf("log line missing stack trace: %q", out)
	}
}
