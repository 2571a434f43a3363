package evaluate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/jamesainslie/go-segqual"
	"github.com/jamesainslie/go-segqual/volume"
)

const side = 16

// paint fills the box [lo, hi] on every axis with label.
func paint(v *volume.Volume, label uint32, lo, hi [3]int) {
	for z := lo[2]; z <= hi[2]; z++ {
		for y := lo[1]; y <= hi[1]; y++ {
			for x := lo[0]; x <= hi[0]; x++ {
				v.Set(label, x, y, z)
			}
		}
	}
}

// fixtures returns a ground truth with one 3x3x3 cube and predictions that
// hit it, add a noise blob, over-segment it, or miss everything.
func fixtures() map[string]*volume.Volume {
	gt := volume.New(side, side, side)
	paint(gt, 1, [3]int{2, 2, 2}, [3]int{4, 4, 4})

	hit := volume.New(side, side, side)
	paint(hit, 9, [3]int{2, 2, 2}, [3]int{4, 4, 4})

	noise := volume.New(side, side, side)
	paint(noise, 1, [3]int{2, 2, 2}, [3]int{4, 4, 4})
	noise.Set(2, 14, 14, 14)

	split := volume.New(side, side, side)
	paint(split, 1, [3]int{2, 2, 2}, [3]int{3, 4, 4})
	paint(split, 2, [3]int{4, 2, 2}, [3]int{4, 4, 4})

	return map[string]*volume.Volume{
		"gt.lvol":    gt,
		"hit.lvol":   hit,
		"noise.lvol": noise,
		"split.lvol": split,
		"empty.lvol": volume.New(side, side, side),
		"small.lvol": volume.New(side, side, side-1),
	}
}

func memLoader(vols map[string]*volume.Volume) Loader {
	return func(path string) (*volume.Volume, error) {
		v, ok := vols[path]
		if !ok {
			return nil, fmt.Errorf("open %s: %w", path, fs.ErrNotExist)
		}
		return v, nil
	}
}

var wantCounts = map[string]segqual.ConfusionCounts{
	"hit.lvol":   {TruePositives: 1},
	"noise.lvol": {TruePositives: 1, FalsePositives: 1, NoiseFalsePositives: 1},
	"split.lvol": {TruePositives: 1, FalsePositives: 1, NonNoiseFalsePositives: 1},
	"empty.lvol": {FalseNegatives: 1},
}

func TestCompare_Files(t *testing.T) {
	dir := t.TempDir()
	for name, v := range fixtures() {
		if err := volume.WriteFile(filepath.Join(dir, name), v); err != nil {
			t.Fatalf("WriteFile(%s) failed: %v", name, err)
		}
	}
	e := New()
	gt := filepath.Join(dir, "gt.lvol")

	for name, want := range wantCounts {
		t.Run(name, func(t *testing.T) {
			out, err := e.Compare(context.Background(), filepath.Join(dir, name), gt)
			if err != nil {
				t.Fatalf("Compare failed: %v", err)
			}
			if out.Result.Counts != want {
				t.Errorf("Counts = %+v, want %+v", out.Result.Counts, want)
			}
		})
	}
}

func TestCompare_UndefinedMetricIsReported(t *testing.T) {
	e := New(WithLoader(memLoader(fixtures())))
	out, err := e.Compare(context.Background(), "empty.lvol", "gt.lvol")
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if !errors.Is(out.MetricErr, segqual.ErrUndefinedMetric) {
		t.Errorf("MetricErr = %v, want ErrUndefinedMetric", out.MetricErr)
	}
	if out.Metrics.Defined(segqual.MetricPrecision) {
		t.Error("precision should be undefined")
	}
}

func TestCompare_ShapeMismatch(t *testing.T) {
	e := New(WithLoader(memLoader(fixtures())))
	_, err := e.Compare(context.Background(), "small.lvol", "gt.lvol")
	if !errors.Is(err, segqual.ErrShapeMismatch) {
		t.Errorf("expected ErrShapeMismatch, got: %v", err)
	}
}

func TestCompare_DebugTables(t *testing.T) {
	debug := t.TempDir()
	e := New(WithLoader(memLoader(fixtures())), WithDebugDir(debug))
	out, err := e.Compare(context.Background(), "split.lvol", "gt.lvol")
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if out.DebugDir != filepath.Join(debug, "split_gt") {
		t.Errorf("DebugDir = %q", out.DebugDir)
	}
	for _, name := range []string{"groundtruth.csv", "predicted.csv"} {
		if _, err := os.Stat(filepath.Join(out.DebugDir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestRun_PreservesOrder(t *testing.T) {
	e := New(WithLoader(memLoader(fixtures())), WithWorkers(3))
	files := []string{"split.lvol", "empty.lvol", "hit.lvol", "noise.lvol", "hit.lvol", "split.lvol"}
	labels := []string{"f", "e", "d", "c", "b", "a"}

	records, err := e.Run(context.Background(), Batch{GroundTruth: "gt.lvol", Files: files, Labels: labels})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(records) != len(files) {
		t.Fatalf("got %d records, want %d", len(records), len(files))
	}
	for i, r := range records {
		if r.Label != labels[i] || r.File != files[i] {
			t.Errorf("record %d = %s/%s, want %s/%s", i, r.Label, r.File, labels[i], files[i])
		}
		if r.Counts != wantCounts[files[i]] {
			t.Errorf("record %d counts = %+v, want %+v", i, r.Counts, wantCounts[files[i]])
		}
		if r.GroundTruthRegions != 1 {
			t.Errorf("record %d GroundTruthRegions = %d, want 1", i, r.GroundTruthRegions)
		}
	}
	if records[0].PredictedRegions != 2 || records[1].PredictedRegions != 0 {
		t.Errorf("predicted counts = %d, %d", records[0].PredictedRegions, records[1].PredictedRegions)
	}

	// The same ground truth is shared by every record.
	if records[0].Outcome.GroundTruth != records[5].Outcome.GroundTruth {
		t.Error("ground truth extracted more than once")
	}
}

func TestRun_DebugDirsDistinctForSameStub(t *testing.T) {
	vols := fixtures()
	vols[filepath.Join("a", "pred.lvol")] = vols["hit.lvol"]
	vols[filepath.Join("b", "pred.lvol")] = vols["noise.lvol"]
	debug := t.TempDir()
	e := New(WithLoader(memLoader(vols)), WithWorkers(2), WithDebugDir(debug))

	records, err := e.Run(context.Background(), Batch{
		GroundTruth: "gt.lvol",
		Files:       []string{filepath.Join("a", "pred.lvol"), filepath.Join("b", "pred.lvol"), "split.lvol"},
		Labels:      []string{"a", "b", "split"},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := []string{"pred-0_gt", "pred-1_gt", "split_gt"}
	for i, r := range records {
		if r.Outcome.DebugDir != filepath.Join(debug, want[i]) {
			t.Errorf("record %d DebugDir = %q, want %q", i, r.Outcome.DebugDir, filepath.Join(debug, want[i]))
		}
	}

	// Each directory holds its own run: b has one more predicted region than a.
	for i, wantLines := range []int{2, 3} {
		data, err := os.ReadFile(filepath.Join(records[i].Outcome.DebugDir, "predicted.csv"))
		if err != nil {
			t.Fatalf("reading predicted.csv: %v", err)
		}
		if got := strings.Count(string(data), "\n"); got != wantLines {
			t.Errorf("record %d predicted.csv has %d lines, want %d", i, got, wantLines)
		}
	}
}

func TestRun_ArityBeforeWork(t *testing.T) {
	var loads atomic.Int32
	loader := func(string) (*volume.Volume, error) {
		loads.Add(1)
		return volume.New(1), nil
	}
	e := New(WithLoader(loader))

	_, err := e.Run(context.Background(), Batch{
		GroundTruth: "gt.lvol",
		Files:       []string{"a.lvol", "b.lvol"},
		Labels:      []string{"a"},
	})
	if !errors.Is(err, segqual.ErrInputArity) {
		t.Errorf("expected ErrInputArity, got: %v", err)
	}
	if loads.Load() != 0 {
		t.Errorf("loader called %d times before arity check", loads.Load())
	}
}

func TestRun_Policies(t *testing.T) {
	batch := Batch{
		GroundTruth: "gt.lvol",
		Files:       []string{"hit.lvol", "missing.lvol", "small.lvol", "noise.lvol"},
		Labels:      []string{"hit", "missing", "small", "noise"},
	}

	t.Run("abort", func(t *testing.T) {
		e := New(WithLoader(memLoader(fixtures())), WithWorkers(1))
		records, err := e.Run(context.Background(), batch)
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("expected fs.ErrNotExist, got: %v", err)
		}
		if records != nil {
			t.Errorf("aborted batch returned %d records", len(records))
		}
	})

	t.Run("skip", func(t *testing.T) {
		e := New(WithLoader(memLoader(fixtures())), WithPolicy(PolicySkip))
		records, err := e.Run(context.Background(), batch)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if !errors.Is(records[1].Err, fs.ErrNotExist) {
			t.Errorf("missing record Err = %v", records[1].Err)
		}
		if !errors.Is(records[2].Err, segqual.ErrShapeMismatch) {
			t.Errorf("small record Err = %v", records[2].Err)
		}
		if records[0].Err != nil || records[3].Err != nil {
			t.Errorf("healthy records failed: %v, %v", records[0].Err, records[3].Err)
		}

		rows := Rows(records)
		if len(rows) != 2 || rows[0].Label != "hit" || rows[1].Label != "noise" {
			t.Errorf("Rows = %+v", rows)
		}
	})
}

func TestRun_GroundTruthFailure(t *testing.T) {
	e := New(WithLoader(memLoader(fixtures())), WithPolicy(PolicySkip))
	_, err := e.Run(context.Background(), Batch{GroundTruth: "nope.lvol", Files: []string{"hit.lvol"}, Labels: []string{"hit"}})
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got: %v", err)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := New(WithLoader(memLoader(fixtures())), WithPolicy(PolicySkip))
	records, err := e.Run(ctx, Batch{GroundTruth: "gt.lvol", Files: []string{"hit.lvol"}, Labels: []string{"hit"}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got: %v", err)
	}
	if records != nil {
		t.Error("cancelled batch returned records")
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"", PolicyAbort, false},
		{"abort", PolicyAbort, false},
		{" Skip ", PolicySkip, false},
		{"retry", "", true},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePolicy(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParsePolicy(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
