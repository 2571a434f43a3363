// Package evaluate compares predicted label volumes against a ground truth.
//
// An Evaluator loads volumes, extracts their regions, classifies them and
// computes metrics, either for a single pair (Compare) or for a batch of
// predictions sharing one ground truth (Run). Batch items run in parallel and
// come back in input order.
package evaluate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jamesainslie/go-segqual"
	"github.com/jamesainslie/go-segqual/internal/export"
	"github.com/jamesainslie/go-segqual/volume"
)

// Outcome is the full result of one comparison.
type Outcome struct {
	Predicted   *segqual.RegionSet
	GroundTruth *segqual.RegionSet
	Result      *segqual.Result
	Metrics     segqual.Metrics
	// MetricErr reports undefined metrics; it matches segqual.ErrUndefinedMetric.
	MetricErr error
	// DebugDir is where debug tables were written, if any.
	DebugDir string
}

// Batch lists predicted volumes to compare against one ground truth.
type Batch struct {
	GroundTruth string
	Files       []string
	Labels      []string
}

// Record is one batch item's outcome. Err is set only under PolicySkip.
type Record struct {
	Label              string
	File               string
	Counts             segqual.ConfusionCounts
	Metrics            segqual.Metrics
	PredictedRegions   int
	GroundTruthRegions int
	Outcome            *Outcome
	Err                error
}

// Evaluator runs comparisons. It is safe for concurrent use.
type Evaluator struct {
	logger     *slog.Logger
	workers    int
	policy     Policy
	debugDir   string
	loader     Loader
	classifier *segqual.Classifier
}

// New creates an Evaluator.
func New(opts ...Option) *Evaluator {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Evaluator{
		logger:     cfg.logger,
		workers:    cfg.workers,
		policy:     cfg.policy,
		debugDir:   cfg.debugDir,
		loader:     cfg.loader,
		classifier: segqual.NewClassifier(segqual.WithLogger(cfg.logger)),
	}
}

// groundTruth is a loaded and extracted reference shared read-only by a batch.
type groundTruth struct {
	path    string
	volume  *volume.Volume
	regions *segqual.RegionSet
}

func (e *Evaluator) loadGroundTruth(path string) (*groundTruth, error) {
	v, err := e.loader(path)
	if err != nil {
		return nil, fmt.Errorf("loading ground truth: %w", err)
	}
	regions, err := volume.Extract(v)
	if err != nil {
		return nil, fmt.Errorf("extracting ground truth %s: %w", path, err)
	}
	return &groundTruth{path: path, volume: v, regions: regions}, nil
}

// Compare evaluates one predicted volume against one ground-truth volume.
// Undefined metrics do not fail the comparison; they are reported in
// Outcome.MetricErr.
func (e *Evaluator) Compare(ctx context.Context, predictedPath, groundTruthPath string) (*Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	gt, err := e.loadGroundTruth(groundTruthPath)
	if err != nil {
		return nil, err
	}
	return e.compare(ctx, predictedPath, export.Stub(predictedPath), gt)
}

// compare evaluates one prediction; stub names its debug directory.
func (e *Evaluator) compare(ctx context.Context, predictedPath, stub string, gt *groundTruth) (*Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, err := e.loader(predictedPath)
	if err != nil {
		return nil, fmt.Errorf("loading prediction: %w", err)
	}
	if err := volume.CheckSameShape(v, gt.volume); err != nil {
		return nil, err
	}
	pred, err := volume.Extract(v)
	if err != nil {
		return nil, fmt.Errorf("extracting prediction: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := e.classifier.Classify(pred, gt.regions)
	if err != nil {
		return nil, err
	}
	m, merr := segqual.ComputeMetrics(res.Counts)

	out := &Outcome{
		Predicted:   pred,
		GroundTruth: gt.regions,
		Result:      res,
		Metrics:     m,
		MetricErr:   merr,
	}
	if e.debugDir != "" {
		dir, err := export.WriteDebug(e.debugDir, stub, export.Stub(gt.path), out.Detail())
		if err != nil {
			return nil, fmt.Errorf("writing debug tables: %w", err)
		}
		out.DebugDir = dir
	}
	return out, nil
}

// Detail returns the per-region view used by the exporters.
func (o *Outcome) Detail() *export.Detail {
	return &export.Detail{Predicted: o.Predicted, GroundTruth: o.GroundTruth, Result: o.Result}
}

// Run evaluates every file in b against b.GroundTruth. It fails with
// segqual.ErrInputArity before doing any work when files and labels differ in
// number. Records are returned in input order. Under PolicyAbort the first
// failure cancels the remaining items; a cancelled batch returns no records.
func (e *Evaluator) Run(ctx context.Context, b Batch) ([]Record, error) {
	if len(b.Files) != len(b.Labels) {
		return nil, fmt.Errorf("%w: %d files and %d labels", segqual.ErrInputArity, len(b.Files), len(b.Labels))
	}
	start := time.Now()

	gt, err := e.loadGroundTruth(b.GroundTruth)
	if err != nil {
		return nil, err
	}

	stubs := debugStubs(b.Files)
	records := make([]Record, len(b.Files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, file := range b.Files {
		g.Go(func() error {
			rec := &records[i]
			rec.Label, rec.File = b.Labels[i], file

			out, err := e.compare(gctx, file, stubs[i], gt)
			if err != nil {
				err = fmt.Errorf("%s: %w", rec.Label, err)
				if e.policy == PolicySkip && !isCancellation(err) && gctx.Err() == nil {
					e.logger.Warn("skipping failed item", "label", rec.Label, "file", file, "error", err)
					rec.Err = err
					return nil
				}
				return err
			}

			rec.Outcome = out
			rec.Counts = out.Result.Counts
			rec.Metrics = out.Metrics
			rec.PredictedRegions = out.Predicted.Len()
			rec.GroundTruthRegions = out.GroundTruth.Len()
			e.logger.Debug("compared", "label", rec.Label, "file", file,
				"tp", rec.Counts.TruePositives, "fp", rec.Counts.FalsePositives, "fn", rec.Counts.FalseNegatives)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	failed := 0
	for _, r := range records {
		if r.Err != nil {
			failed++
		}
	}
	e.logger.Info("batch complete",
		"items", len(records),
		"failed", failed,
		"ground_truth_regions", gt.regions.Len(),
		"elapsed", time.Since(start))
	return records, nil
}

// debugStubs names each item's debug directory after its file. Files sharing a
// stub get their batch position appended so parallel items never share a directory.
func debugStubs(files []string) []string {
	stubs := make([]string, len(files))
	seen := make(map[string]int, len(files))
	for i, f := range files {
		stubs[i] = export.Stub(f)
		seen[stubs[i]]++
	}
	for i, s := range stubs {
		if seen[s] > 1 {
			stubs[i] = fmt.Sprintf("%s-%d", s, i)
		}
	}
	return stubs
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Rows converts successful records to export rows, preserving order.
func Rows(records []Record) []export.Row {
	rows := make([]export.Row, 0, len(records))
	for _, r := range records {
		if r.Err != nil {
			continue
		}
		row := export.Row{
			Label:              r.Label,
			Counts:             r.Counts,
			Metrics:            r.Metrics,
			PredictedRegions:   r.PredictedRegions,
			GroundTruthRegions: r.GroundTruthRegions,
		}
		if r.Outcome != nil {
			row.Detail = r.Outcome.Detail()
		}
		rows = append(rows, row)
	}
	return rows
}
