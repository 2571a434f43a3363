// Package export writes evaluation results as CSV tables and into SQLite.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/jamesainslie/go-segqual"
)

// Undefined is written in place of a metric whose denominator was zero.
const Undefined = "undefined"

// MetricsColumns is the header of the aggregate metrics table.
var MetricsColumns = []string{
	"label", "recall", "precision", "fMeasure", "accuracy",
	"predictedCount", "groundTruthCount",
	"nFP", "nTP", "nFN", "nNoiseFP", "nNonNoiseFP",
}

// Row is one predicted volume's line in the aggregate table.
type Row struct {
	Label              string
	Counts             segqual.ConfusionCounts
	Metrics            segqual.Metrics
	PredictedRegions   int
	GroundTruthRegions int
	// Detail is optional and feeds the per-region debug and SQLite tables.
	Detail *Detail
}

// Detail carries the per-region outcome behind a Row.
type Detail struct {
	Predicted   *segqual.RegionSet
	GroundTruth *segqual.RegionSet
	Result      *segqual.Result
}

// WriteMetrics writes rows as CSV sorted by label. Rows sharing a label keep
// their given order; rows itself is not reordered.
func WriteMetrics(w io.Writer, rows []Row) error {
	rows = slices.Clone(rows)
	slices.SortStableFunc(rows, func(a, b Row) int {
		return strings.Compare(a.Label, b.Label)
	})

	cw := csv.NewWriter(w)
	if err := cw.Write(MetricsColumns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, r := range rows {
		c := r.Counts
		record := []string{
			r.Label,
			FormatMetric(r.Metrics, segqual.MetricRecall),
			FormatMetric(r.Metrics, segqual.MetricPrecision),
			FormatMetric(r.Metrics, segqual.MetricFMeasure),
			FormatMetric(r.Metrics, segqual.MetricAccuracy),
			strconv.Itoa(r.PredictedRegions),
			strconv.Itoa(r.GroundTruthRegions),
			strconv.Itoa(c.FalsePositives),
			strconv.Itoa(c.TruePositives),
			strconv.Itoa(c.FalseNegatives),
			strconv.Itoa(c.NoiseFalsePositives),
			strconv.Itoa(c.NonNoiseFalsePositives),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing row %q: %w", r.Label, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMetricsFile writes the aggregate table to path.
func WriteMetricsFile(path string, rows []Row) error {
	return writeFile(path, func(w io.Writer) error { return WriteMetrics(w, rows) })
}

// FormatMetric renders the named metric, or Undefined.
func FormatMetric(m segqual.Metrics, name string) string {
	if !m.Defined(name) {
		return Undefined
	}
	var v float64
	switch name {
	case segqual.MetricRecall:
		v = m.Recall
	case segqual.MetricPrecision:
		v = m.Precision
	case segqual.MetricFMeasure:
		v = m.FMeasure
	case segqual.MetricAccuracy:
		v = m.Accuracy
	default:
		return Undefined
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()
	return write(f)
}
