package segqual

import (
	"errors"
	"fmt"

	"github.com/jamesainslie/go-segqual/spatial"
)

// Sentinel errors for conditions callers may need to handle differently.
var (
	// ErrInputValidation indicates malformed regions or inputs detected before matching.
	ErrInputValidation = errors.New("segqual: invalid input")

	// ErrShapeMismatch indicates the compared volumes differ in voxel shape or
	// their centroids differ in dimensionality.
	ErrShapeMismatch = fmt.Errorf("%w: shape mismatch", ErrInputValidation)

	// ErrEmptyInput indicates a spatial index was requested over zero regions.
	ErrEmptyInput = spatial.ErrEmptyInput

	// ErrClassificationInconsistency indicates the classification counts broke
	// an invariant. It always points at a bug in the matching logic.
	ErrClassificationInconsistency = errors.New("segqual: classification inconsistency")

	// ErrUndefinedMetric indicates a metric whose denominator is zero.
	ErrUndefinedMetric = errors.New("segqual: undefined metric")

	// ErrInputArity indicates the number of labels differs from the number of inputs.
	ErrInputArity = errors.New("segqual: input arity mismatch")
)

// UndefinedMetricError names the metric that could not be computed.
type UndefinedMetricError struct {
	Metric string
}

func (e *UndefinedMetricError) Error() string {
	return fmt.Sprintf("segqual: %s is undefined: zero denominator", e.Metric)
}

// Is reports whether target is ErrUndefinedMetric.
func (e *UndefinedMetricError) Is(target error) bool {
	return target == ErrUndefinedMetric
}
