package evaluate

import (
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/jamesainslie/go-segqual"
	"github.com/jamesainslie/go-segqual/volume"
)

// Policy decides what a batch does when one item fails.
type Policy string

const (
	// PolicyAbort cancels the batch on the first failure and returns it.
	PolicyAbort Policy = "abort"
	// PolicySkip records the failure on the item and continues.
	PolicySkip Policy = "skip"
)

// ParsePolicy parses "abort" or "skip". The empty string means PolicyAbort.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyAbort, nil
	case PolicyAbort, PolicySkip:
		return p, nil
	}
	return "", fmt.Errorf("%w: unknown failure policy %q", segqual.ErrInputValidation, s)
}

// Loader reads a label volume from a path.
type Loader func(path string) (*volume.Volume, error)

// Option configures an Evaluator.
type Option func(*config)

type config struct {
	logger   *slog.Logger
	workers  int
	policy   Policy
	debugDir string
	loader   Loader
}

func defaultConfig() config {
	return config{
		logger:  slog.Default(),
		workers: runtime.GOMAXPROCS(0),
		policy:  PolicyAbort,
		loader:  volume.Load,
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithWorkers bounds how many comparisons run at once (default: GOMAXPROCS).
func WithWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithPolicy sets the batch failure policy (default: PolicyAbort).
func WithPolicy(p Policy) Option {
	return func(c *config) {
		if p != "" {
			c.policy = p
		}
	}
}

// WithDebugDir enables per-region debug tables under dir.
func WithDebugDir(dir string) Option {
	return func(c *config) {
		c.debugDir = dir
	}
}

// WithLoader replaces volume.Load.
func WithLoader(l Loader) Option {
	return func(c *config) {
		if l != nil {
			c.loader = l
		}
	}
}
