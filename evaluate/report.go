package evaluate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jamesainslie/go-segqual/internal/export"
)

// Output file names inside a batch output directory.
const (
	MetricsFile = "metrics.csv"
	SummaryFile = "summary.csv"
	SQLiteFile  = "metrics.db"
	DebugSubdir = "debug"
)

// Report lists the files written for a batch.
type Report struct {
	BatchID string
	Metrics string
	Summary string
	SQLite  string
	Rows    int
}

// WriteReport writes the metrics and summary tables for records into dir and,
// when withSQLite is set, stores them under batchID in dir/metrics.db.
// Records that failed are left out.
func WriteReport(ctx context.Context, dir, batchID string, records []Record, withSQLite bool) (*Report, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	rows := Rows(records)
	rep := &Report{
		BatchID: batchID,
		Metrics: filepath.Join(dir, MetricsFile),
		Summary: filepath.Join(dir, SummaryFile),
		Rows:    len(rows),
	}

	if err := export.WriteMetricsFile(rep.Metrics, rows); err != nil {
		return nil, fmt.Errorf("writing metrics table: %w", err)
	}
	if err := export.WriteSummaryFile(rep.Summary, export.Summarize(rows)); err != nil {
		return nil, fmt.Errorf("writing summary table: %w", err)
	}

	if withSQLite {
		rep.SQLite = filepath.Join(dir, SQLiteFile)
		store, err := export.OpenStore(rep.SQLite)
		if err != nil {
			return nil, err
		}
		defer func() { _ = store.Close() }()
		if err := store.SaveBatch(ctx, batchID, rows); err != nil {
			return nil, err
		}
	}
	return rep, nil
}
