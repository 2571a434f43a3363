package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/jamesainslie/go-segqual"
)

// SummaryColumns is the header of the batch summary table.
var SummaryColumns = []string{"quantity", "n", "mean", "std", "pooled"}

// Stat summarises one quantity across a batch.
type Stat struct {
	Name string
	// N is the number of rows where the quantity was defined.
	N      int
	Mean   float64
	StdDev float64
	// Pooled is the value computed from counts summed over the batch; it is
	// empty for quantities that are not metrics.
	Pooled string
}

// Summarize returns mean and sample standard deviation of each metric over the
// rows where it is defined, plus the predicted region count. Each metric also
// carries its pooled value over the summed confusion counts.
func Summarize(rows []Row) []Stat {
	var total segqual.ConfusionCounts
	for _, r := range rows {
		total.TruePositives += r.Counts.TruePositives
		total.FalsePositives += r.Counts.FalsePositives
		total.FalseNegatives += r.Counts.FalseNegatives
		total.NoiseFalsePositives += r.Counts.NoiseFalsePositives
		total.NonNoiseFalsePositives += r.Counts.NonNoiseFalsePositives
	}
	// Undefined pooled metrics are rendered by FormatMetric.
	pooled, _ := segqual.ComputeMetrics(total)

	metric := func(name string, get func(segqual.Metrics) float64) Stat {
		var xs []float64
		for _, r := range rows {
			if r.Metrics.Defined(name) {
				xs = append(xs, get(r.Metrics))
			}
		}
		s := describe(name, xs)
		s.Pooled = FormatMetric(pooled, name)
		return s
	}

	predicted := make([]float64, len(rows))
	for i, r := range rows {
		predicted[i] = float64(r.PredictedRegions)
	}

	return []Stat{
		metric(segqual.MetricRecall, func(m segqual.Metrics) float64 { return m.Recall }),
		metric(segqual.MetricPrecision, func(m segqual.Metrics) float64 { return m.Precision }),
		metric(segqual.MetricFMeasure, func(m segqual.Metrics) float64 { return m.FMeasure }),
		metric(segqual.MetricAccuracy, func(m segqual.Metrics) float64 { return m.Accuracy }),
		describe("predictedCount", predicted),
	}
}

func describe(name string, xs []float64) Stat {
	s := Stat{Name: name, N: len(xs)}
	switch len(xs) {
	case 0:
	case 1:
		s.Mean = xs[0]
	default:
		s.Mean, s.StdDev = stat.MeanStdDev(xs, nil)
	}
	return s
}

// WriteSummary writes stats as CSV. Quantities with no defined values have
// empty mean and std cells.
func WriteSummary(w io.Writer, stats []Stat) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SummaryColumns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, s := range stats {
		mean, std := "", ""
		if s.N > 0 {
			mean = strconv.FormatFloat(s.Mean, 'g', -1, 64)
			std = strconv.FormatFloat(s.StdDev, 'g', -1, 64)
		}
		if err := cw.Write([]string{s.Name, strconv.Itoa(s.N), mean, std, s.Pooled}); err != nil {
			return fmt.Errorf("writing %s: %w", s.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummaryFile writes the summary table to path.
func WriteSummaryFile(path string, stats []Stat) error {
	return writeFile(path, func(w io.Writer) error { return WriteSummary(w, stats) })
}
