package segqual

import "errors"

// Metric names as reported in tables and UndefinedMetricError.
const (
	MetricRecall    = "recall"
	MetricPrecision = "precision"
	MetricFMeasure  = "fMeasure"
	MetricAccuracy  = "accuracy"
)

// Metrics holds detection quality derived from ConfusionCounts.
// A metric listed in Undefined has a zero denominator and its field is zero.
type Metrics struct {
	Recall    float64  `json:"recall"`
	Precision float64  `json:"precision"`
	FMeasure  float64  `json:"fMeasure"`
	Accuracy  float64  `json:"accuracy"`
	Undefined []string `json:"undefined,omitempty"`
}

// Defined reports whether the named metric could be computed.
func (m Metrics) Defined(name string) bool {
	for _, u := range m.Undefined {
		if u == name {
			return false
		}
	}
	return true
}

// Recall returns TP / (TP + FN).
func Recall(c ConfusionCounts) (float64, error) {
	return ratio(MetricRecall, c.TruePositives, c.TruePositives+c.FalseNegatives)
}

// Precision returns TP / (TP + FP).
func Precision(c ConfusionCounts) (float64, error) {
	return ratio(MetricPrecision, c.TruePositives, c.TruePositives+c.FalsePositives)
}

// FMeasure returns the harmonic mean of recall and precision. It is undefined
// when either is undefined or both are zero.
func FMeasure(c ConfusionCounts) (float64, error) {
	r, err := Recall(c)
	if err != nil {
		return 0, &UndefinedMetricError{Metric: MetricFMeasure}
	}
	p, err := Precision(c)
	if err != nil {
		return 0, &UndefinedMetricError{Metric: MetricFMeasure}
	}
	if r+p == 0 {
		return 0, &UndefinedMetricError{Metric: MetricFMeasure}
	}
	return 2 * r * p / (r + p), nil
}

// Accuracy returns TP / (TP + FP + FN).
func Accuracy(c ConfusionCounts) (float64, error) {
	return ratio(MetricAccuracy, c.TruePositives, c.TruePositives+c.FalsePositives+c.FalseNegatives)
}

// ComputeMetrics evaluates every metric. Undefined metrics are listed in
// Metrics.Undefined and reported together in the returned error, which matches
// ErrUndefinedMetric; the defined ones are still filled in.
func ComputeMetrics(c ConfusionCounts) (Metrics, error) {
	var (
		m    Metrics
		errs []error
	)
	for _, f := range []struct {
		name string
		fn   func(ConfusionCounts) (float64, error)
		dst  *float64
	}{
		{MetricRecall, Recall, &m.Recall},
		{MetricPrecision, Precision, &m.Precision},
		{MetricFMeasure, FMeasure, &m.FMeasure},
		{MetricAccuracy, Accuracy, &m.Accuracy},
	} {
		v, err := f.fn(c)
		if err != nil {
			m.Undefined = append(m.Undefined, f.name)
			errs = append(errs, err)
			continue
		}
		*f.dst = v
	}
	return m, errors.Join(errs...)
}

func ratio(name string, num, den int) (float64, error) {
	if den == 0 {
		return 0, &UndefinedMetricError{Metric: name}
	}
	return float64(num) / float64(den), nil
}
