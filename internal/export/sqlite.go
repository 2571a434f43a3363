package export

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3" // SQLite driver registration

	"github.com/jamesainslie/go-segqual"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    batch_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    label TEXT NOT NULL,
    recall REAL,
    precision REAL,
    f_measure REAL,
    accuracy REAL,
    predicted_count INTEGER NOT NULL,
    ground_truth_count INTEGER NOT NULL,
    n_fp INTEGER NOT NULL,
    n_tp INTEGER NOT NULL,
    n_fn INTEGER NOT NULL,
    n_noise_fp INTEGER NOT NULL,
    n_non_noise_fp INTEGER NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_runs_batch ON runs(batch_id, position);

CREATE TABLE IF NOT EXISTS regions (
    run_id INTEGER NOT NULL REFERENCES runs(id),
    side TEXT NOT NULL,
    region_id INTEGER NOT NULL,
    centroid TEXT NOT NULL,
    radius REAL NOT NULL,
    classification TEXT NOT NULL,
    neighbor INTEGER,
    distance REAL,
    PRIMARY KEY (run_id, side, region_id)
);
`

// Store persists batch results in a SQLite database.
type Store struct {
	db *sql.DB
}

// OpenStore opens or creates the database at path and ensures the schema exists.
func OpenStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	dsn := path
	if !strings.Contains(dsn, "_busy_timeout") {
		dsn += "?_busy_timeout=5000"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close() // Schema error takes precedence
		return nil, fmt.Errorf("creating tables: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveBatch stores rows under batchID in one transaction. Region lines are
// written for rows that carry a Detail.
func (s *Store) SaveBatch(ctx context.Context, batchID string, rows []Row) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback() // Original error takes precedence
		}
	}()

	runStmt, err := tx.PrepareContext(ctx, `INSERT INTO runs (
        batch_id, position, label, recall, precision, f_measure, accuracy,
        predicted_count, ground_truth_count, n_fp, n_tp, n_fn, n_noise_fp, n_non_noise_fp
    ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing run insert: %w", err)
	}
	defer func() { _ = runStmt.Close() }()

	regionStmt, err := tx.PrepareContext(ctx, `INSERT INTO regions (
        run_id, side, region_id, centroid, radius, classification, neighbor, distance
    ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing region insert: %w", err)
	}
	defer func() { _ = regionStmt.Close() }()

	for pos, r := range rows {
		c := r.Counts
		res, err := runStmt.ExecContext(ctx, batchID, pos, r.Label,
			nullMetric(r.Metrics, segqual.MetricRecall, r.Metrics.Recall),
			nullMetric(r.Metrics, segqual.MetricPrecision, r.Metrics.Precision),
			nullMetric(r.Metrics, segqual.MetricFMeasure, r.Metrics.FMeasure),
			nullMetric(r.Metrics, segqual.MetricAccuracy, r.Metrics.Accuracy),
			r.PredictedRegions, r.GroundTruthRegions,
			c.FalsePositives, c.TruePositives, c.FalseNegatives,
			c.NoiseFalsePositives, c.NonNoiseFalsePositives)
		if err != nil {
			return fmt.Errorf("inserting run %q: %w", r.Label, err)
		}
		if r.Detail == nil || r.Detail.Result == nil {
			continue
		}
		runID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading run id: %w", err)
		}
		for _, side := range []struct {
			name    string
			set     *segqual.RegionSet
			matches []segqual.Match
		}{
			{"groundtruth", r.Detail.GroundTruth, r.Detail.Result.GroundTruth},
			{"predicted", r.Detail.Predicted, r.Detail.Result.Predicted},
		} {
			for i, m := range side.matches {
				reg := side.set.At(i)
				var neighbor sql.NullInt64
				var distance sql.NullFloat64
				if m.Neighbor >= 0 {
					neighbor = sql.NullInt64{Int64: int64(m.Neighbor), Valid: true}
					distance = sql.NullFloat64{Float64: m.Distance, Valid: true}
				}
				if _, err := regionStmt.ExecContext(ctx, runID, side.name, reg.ID,
					FormatCentroid(reg.Centroid), reg.Radius, m.Label.String(),
					neighbor, distance); err != nil {
					return fmt.Errorf("inserting %s region %d: %w", side.name, reg.ID, err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing batch: %w", err)
	}
	return nil
}

// Runs returns the rows stored under batchID in their original order.
// Detail is never populated.
func (s *Store) Runs(ctx context.Context, batchID string) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT label, recall, precision, f_measure, accuracy,
        predicted_count, ground_truth_count, n_fp, n_tp, n_fn, n_noise_fp, n_non_noise_fp
        FROM runs WHERE batch_id = ? ORDER BY position`, batchID)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Row
	for rows.Next() {
		var (
			r                          Row
			recall, precision, fm, acc sql.NullFloat64
		)
		c := &r.Counts
		if err := rows.Scan(&r.Label, &recall, &precision, &fm, &acc,
			&r.PredictedRegions, &r.GroundTruthRegions,
			&c.FalsePositives, &c.TruePositives, &c.FalseNegatives,
			&c.NoiseFalsePositives, &c.NonNoiseFalsePositives); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		for _, f := range []struct {
			name string
			v    sql.NullFloat64
			dst  *float64
		}{
			{segqual.MetricRecall, recall, &r.Metrics.Recall},
			{segqual.MetricPrecision, precision, &r.Metrics.Precision},
			{segqual.MetricFMeasure, fm, &r.Metrics.FMeasure},
			{segqual.MetricAccuracy, acc, &r.Metrics.Accuracy},
		} {
			if !f.v.Valid {
				r.Metrics.Undefined = append(r.Metrics.Undefined, f.name)
				continue
			}
			*f.dst = f.v.Float64
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return out, nil
}

// RegionCount returns the number of stored region lines for batchID.
func (s *Store) RegionCount(ctx context.Context, batchID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM regions
        JOIN runs ON runs.id = regions.run_id WHERE runs.batch_id = ?`, batchID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting regions: %w", err)
	}
	return n, nil
}

func nullMetric(m segqual.Metrics, name string, v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: m.Defined(name)}
}
