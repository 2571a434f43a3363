package exitcode

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"testing"

	"github.com/jamesainslie/go-segqual"
)

func TestClassify(t *testing.T) {
	_, statErr := os.Stat("/nonexistent/segqual/volume.lvol")

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, OK},
		{"usage", fmt.Errorf("%w: missing argument", ErrUsage), Usage},
		{"validation", fmt.Errorf("loading: %w", segqual.ErrInputValidation), Validation},
		{"shape mismatch", segqual.ErrShapeMismatch, Validation},
		{"arity", segqual.ErrInputArity, Validation},
		{"inconsistency", fmt.Errorf("run 3: %w", segqual.ErrClassificationInconsistency), Inconsistency},
		{"undefined metric", &segqual.UndefinedMetricError{Metric: segqual.MetricPrecision}, UndefinedMetric},
		{"path error", statErr, IO},
		{"not exist", fmt.Errorf("open: %w", fs.ErrNotExist), IO},
		{"cancelled", fmt.Errorf("batch: %w", context.Canceled), Cancelled},
		{"deadline", context.DeadlineExceeded, Cancelled},
		{"other", errors.New("boom"), Other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestClassify_ValidationBeatsIO(t *testing.T) {
	err := errors.Join(segqual.ErrShapeMismatch, fs.ErrNotExist)
	if got := Classify(err); got != Validation {
		t.Errorf("Classify = %d, want %d", got, Validation)
	}
}
