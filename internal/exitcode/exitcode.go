// Package exitcode maps errors from the evaluator to process exit codes.
//
// The mapping relies only on sentinel errors and standard library error
// types; messages are never inspected.
package exitcode

import (
	"context"
	"errors"
	"io/fs"

	"github.com/jamesainslie/go-segqual"
)

// Process exit codes.
const (
	OK              = 0
	Usage           = 1
	Validation      = 2
	Inconsistency   = 3
	UndefinedMetric = 4
	IO              = 5
	Cancelled       = 6
	Other           = 1
)

// ErrUsage indicates bad command-line arguments.
var ErrUsage = errors.New("usage error")

// Classify returns the exit code for err. A nil error is OK.
func Classify(err error) int {
	switch {
	case err == nil:
		return OK
	case errors.Is(err, ErrUsage):
		return Usage
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return Cancelled
	case errors.Is(err, segqual.ErrClassificationInconsistency):
		return Inconsistency
	case errors.Is(err, segqual.ErrInputValidation), errors.Is(err, segqual.ErrInputArity),
		errors.Is(err, segqual.ErrEmptyInput):
		return Validation
	case errors.Is(err, segqual.ErrUndefinedMetric):
		return UndefinedMetric
	}
	var perr *fs.PathError
	if errors.As(err, &perr) || errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
		return IO
	}
	return Other
}
