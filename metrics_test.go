package segqual

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestComputeMetrics(t *testing.T) {
	tests := []struct {
		name          string
		counts        ConfusionCounts
		want          Metrics
		wantUndefined []string
	}{
		{
			name:   "perfect",
			counts: ConfusionCounts{TruePositives: 1},
			want:   Metrics{Recall: 1, Precision: 1, FMeasure: 1, Accuracy: 1},
		},
		{
			name:   "one of each",
			counts: ConfusionCounts{TruePositives: 2, FalsePositives: 2, FalseNegatives: 2, NoiseFalsePositives: 2},
			want:   Metrics{Recall: 0.5, Precision: 0.5, FMeasure: 0.5, Accuracy: 1.0 / 3},
		},
		{
			name:   "precision heavy",
			counts: ConfusionCounts{TruePositives: 3, FalsePositives: 1, FalseNegatives: 9},
			want:   Metrics{Recall: 0.25, Precision: 0.75, FMeasure: 0.375, Accuracy: 3.0 / 13},
		},
		{
			name:          "empty predicted",
			counts:        ConfusionCounts{FalseNegatives: 4},
			want:          Metrics{Recall: 0, Accuracy: 0},
			wantUndefined: []string{MetricPrecision, MetricFMeasure},
		},
		{
			name:          "empty ground truth",
			counts:        ConfusionCounts{FalsePositives: 4, NoiseFalsePositives: 4},
			want:          Metrics{Precision: 0, Accuracy: 0},
			wantUndefined: []string{MetricRecall, MetricFMeasure},
		},
		{
			name:          "nothing matched",
			counts:        ConfusionCounts{FalsePositives: 1, FalseNegatives: 1, NoiseFalsePositives: 1},
			want:          Metrics{},
			wantUndefined: []string{MetricFMeasure},
		},
		{
			name:          "both empty",
			counts:        ConfusionCounts{},
			wantUndefined: []string{MetricRecall, MetricPrecision, MetricFMeasure, MetricAccuracy},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeMetrics(tt.counts)
			if len(tt.wantUndefined) == 0 && err != nil {
				t.Fatalf("ComputeMetrics() unexpected error: %v", err)
			}
			if len(tt.wantUndefined) > 0 && !errors.Is(err, ErrUndefinedMetric) {
				t.Fatalf("expected ErrUndefinedMetric, got: %v", err)
			}
			if !reflect.DeepEqual(got.Undefined, tt.wantUndefined) {
				t.Errorf("Undefined = %v, want %v", got.Undefined, tt.wantUndefined)
			}

			for _, f := range []struct {
				name      string
				got, want float64
			}{
				{MetricRecall, got.Recall, tt.want.Recall},
				{MetricPrecision, got.Precision, tt.want.Precision},
				{MetricFMeasure, got.FMeasure, tt.want.FMeasure},
				{MetricAccuracy, got.Accuracy, tt.want.Accuracy},
			} {
				if math.IsNaN(f.got) || math.IsInf(f.got, 0) {
					t.Errorf("%s = %v, want a finite value", f.name, f.got)
				}
				if math.Abs(f.got-f.want) > 1e-12 {
					t.Errorf("%s = %v, want %v", f.name, f.got, f.want)
				}
			}
		})
	}
}

func TestUndefinedMetricError_NamesMetric(t *testing.T) {
	_, err := Recall(ConfusionCounts{FalsePositives: 3})
	var ume *UndefinedMetricError
	if !errors.As(err, &ume) {
		t.Fatalf("expected *UndefinedMetricError, got: %v", err)
	}
	if ume.Metric != MetricRecall {
		t.Errorf("Metric = %q, want %q", ume.Metric, MetricRecall)
	}
	if !errors.Is(err, ErrUndefinedMetric) {
		t.Error("expected error to match ErrUndefinedMetric")
	}
}

func TestMetrics_Defined(t *testing.T) {
	m, _ := ComputeMetrics(ConfusionCounts{FalseNegatives: 1})
	if !m.Defined(MetricRecall) {
		t.Error("recall should be defined")
	}
	if m.Defined(MetricPrecision) {
		t.Error("precision should be undefined")
	}
}
