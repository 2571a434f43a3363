// Package segqual scores a predicted label segmentation against ground truth.
//
// Each labelled region is reduced to a centroid and an equivalent spherical
// radius. A ground-truth region counts as detected when the nearest predicted
// centroid lies inside its sphere; predicted regions that nothing claimed are
// false positives, split into noise (outside every ground-truth sphere) and
// non-noise (inside the nearest ground-truth sphere, usually an over-split).
//
// # Quick Start
//
//	res, err := segqual.Classify(predicted, groundTruth)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	m, err := segqual.ComputeMetrics(res.Counts)
//	if errors.Is(err, segqual.ErrUndefinedMetric) {
//	    // some of m.Undefined could not be computed
//	}
//	fmt.Printf("recall=%.3f precision=%.3f\n", m.Recall, m.Precision)
//
// # True Positive Counting
//
// Several ground-truth regions may nominate the same predicted region. That
// predicted region is one true positive, and the same distinct count is used
// for recall, precision and accuracy. Result.GroundTruthHits keeps the number
// of ground-truth regions whose containment test passed.
//
// # Thread Safety
//
// Classification is a pure function of its inputs. RegionSet builds its
// spatial index once, on first use, and is safe for concurrent use.
package segqual
