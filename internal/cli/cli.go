// Package cli holds the logging and environment setup shared by the commands.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mdobak/go-xerrors"

	"github.com/jamesainslie/go-segqual/internal/exitcode"
)

// Environment variables read by the commands.
const (
	EnvLogLevel = "SEGQUAL_LOG_LEVEL"
	EnvWorkers  = "SEGQUAL_WORKERS"
)

// LoadEnv loads .env from the working directory if present. Variables already
// set in the environment are kept.
func LoadEnv() {
	_ = godotenv.Load() // .env is optional
}

// LogLevel returns the level named by flagValue, falling back to
// SEGQUAL_LOG_LEVEL and then info.
func LogLevel(flagValue string) (slog.Level, error) {
	s := flagValue
	if s == "" {
		s = os.Getenv(EnvLogLevel)
	}
	if s == "" {
		return slog.LevelInfo, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("%w: invalid log level %q", exitcode.ErrUsage, s)
	}
	return l, nil
}

// Workers returns flagValue when positive, else SEGQUAL_WORKERS, else 0.
func Workers(flagValue int) (int, error) {
	if flagValue > 0 {
		return flagValue, nil
	}
	s := strings.TrimSpace(os.Getenv(EnvWorkers))
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", exitcode.ErrUsage, EnvWorkers, s)
	}
	return n, nil
}

// NewLogger returns a text logger on w. Error attributes are expanded with
// the stack trace recorded by xerrors, when there is one.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceAttr,
	}))
}

// Fail logs err with a stack trace attached at the call site.
func Fail(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, slog.Any("error", xerrors.New(err)))
}

func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() != slog.KindAny {
		return a
	}
	err, ok := a.Value.Any().(error)
	if !ok {
		return a
	}
	attrs := []any{slog.String("msg", err.Error())}
	if trace := stack(err); trace != "" {
		attrs = append(attrs, slog.String("trace", trace))
	}
	return slog.Group(a.Key, attrs...)
}

func stack(err error) string {
	trace := xerrors.StackTrace(err)
	if len(trace) == 0 {
		return ""
	}
	frames := trace.Frames()
	parts := make([]string, 0, len(frames))
	for _, f := range frames {
		parts = append(parts, fmt.Sprintf("%s %s:%d", filepath.Base(f.Function), filepath.Base(f.File), f.Line))
	}
	return strings.Join(parts, " < ")
}
