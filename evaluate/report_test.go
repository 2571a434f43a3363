package evaluate

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jamesainslie/go-segqual/internal/export"
)

func TestWriteReport(t *testing.T) {
	e := New(WithLoader(memLoader(fixtures())), WithPolicy(PolicySkip))
	records, err := e.Run(context.Background(), Batch{
		GroundTruth: "gt.lvol",
		Files:       []string{"noise.lvol", "missing.lvol", "empty.lvol"},
		Labels:      []string{"noise", "missing", "empty"},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	out := filepath.Join(t.TempDir(), "out")
	rep, err := WriteReport(context.Background(), out, "batch", records, false)
	if err != nil {
		t.Fatalf("WriteReport failed: %v", err)
	}
	if rep.Rows != 2 || rep.SQLite != "" {
		t.Errorf("Report = %+v", rep)
	}

	f, err := os.Open(rep.Metrics)
	if err != nil {
		t.Fatalf("opening metrics: %v", err)
	}
	defer func() { _ = f.Close() }()
	table, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parsing metrics: %v", err)
	}
	if len(table) != 3 {
		t.Fatalf("metrics has %d lines, want 3", len(table))
	}
	if table[1][0] != "empty" || table[2][0] != "noise" {
		t.Errorf("labels = %q, %q", table[1][0], table[2][0])
	}
	if table[1][2] != export.Undefined {
		t.Errorf("empty precision = %q, want %q", table[1][2], export.Undefined)
	}

	summary, err := os.ReadFile(rep.Summary)
	if err != nil {
		t.Fatalf("reading summary: %v", err)
	}
	if !strings.HasPrefix(string(summary), "quantity,n,mean,std,pooled\n") {
		t.Errorf("summary = %q", summary)
	}
}

func TestWriteReport_SQLite(t *testing.T) {
	e := New(WithLoader(memLoader(fixtures())))
	records, err := e.Run(context.Background(), Batch{
		GroundTruth: "gt.lvol",
		Files:       []string{"split.lvol"},
		Labels:      []string{"split"},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	rep, err := WriteReport(context.Background(), t.TempDir(), "batch", records, true)
	if err != nil {
		if strings.Contains(err.Error(), "CGO_ENABLED=0") {
			t.Skip("sqlite3 driver built without cgo")
		}
		t.Fatalf("WriteReport failed: %v", err)
	}

	store, err := export.OpenStore(rep.SQLite)
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	defer func() { _ = store.Close() }()
	runs, err := store.Runs(context.Background(), "batch")
	if err != nil {
		t.Fatalf("Runs failed: %v", err)
	}
	if len(runs) != 1 || runs[0].Counts.NonNoiseFalsePositives != 1 {
		t.Errorf("runs = %+v", runs)
	}
}
