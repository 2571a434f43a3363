package segqual

import (
	"fmt"
	"log/slog"
)

// ConfusionCounts holds the region-level outcome of one comparison.
type ConfusionCounts struct {
	TruePositives          int `json:"nTP"`
	FalsePositives         int `json:"nFP"`
	FalseNegatives         int `json:"nFN"`
	NoiseFalsePositives    int `json:"nNoiseFP"`
	NonNoiseFalsePositives int `json:"nNonNoiseFP"`
}

// Validate checks the counting invariants for the given set sizes.
func (c ConfusionCounts) Validate(nPredicted, nGroundTruth int) error {
	switch {
	case c.TruePositives < 0 || c.TruePositives > min(nPredicted, nGroundTruth):
		return fmt.Errorf("%w: nTP=%d with %d predicted and %d ground-truth regions",
			ErrClassificationInconsistency, c.TruePositives, nPredicted, nGroundTruth)
	case c.FalsePositives != nPredicted-c.TruePositives:
		return fmt.Errorf("%w: nFP=%d, want %d", ErrClassificationInconsistency,
			c.FalsePositives, nPredicted-c.TruePositives)
	case c.FalseNegatives != nGroundTruth-c.TruePositives:
		return fmt.Errorf("%w: nFN=%d, want %d", ErrClassificationInconsistency,
			c.FalseNegatives, nGroundTruth-c.TruePositives)
	case c.NoiseFalsePositives+c.NonNoiseFalsePositives != c.FalsePositives:
		return fmt.Errorf("%w: noise (%d) and non-noise (%d) false positives do not add up to nFP=%d",
			ErrClassificationInconsistency, c.NoiseFalsePositives, c.NonNoiseFalsePositives, c.FalsePositives)
	}
	return nil
}

// Match records how one region was classified.
type Match struct {
	Label Label
	// Neighbor is the index of the nearest region in the other set, or -1 when
	// no query was made for this region.
	Neighbor int
	// Distance is the Euclidean distance to Neighbor.
	Distance float64
}

// Result is the complete outcome of a classification run.
type Result struct {
	Counts ConfusionCounts
	// Predicted and GroundTruth hold one Match per region, in set order.
	Predicted   []Match
	GroundTruth []Match
	// GroundTruthHits is the number of ground-truth regions labelled TruePositive.
	// It exceeds Counts.TruePositives when ground-truth regions share a claim.
	GroundTruthHits int
}

// Classifier runs the two-pass matching. The zero value is not usable; use NewClassifier.
type Classifier struct {
	logger *slog.Logger
}

// NewClassifier creates a Classifier.
func NewClassifier(opts ...Option) *Classifier {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Classifier{logger: cfg.logger}
}

// Classify runs a default Classifier.
func Classify(predicted, groundTruth *RegionSet) (*Result, error) {
	return NewClassifier().Classify(predicted, groundTruth)
}

// Classify assigns a Label to every predicted and ground-truth region.
//
// Pass 1 queries the predicted index with each ground-truth centroid; a
// ground-truth region is a TruePositive when that nearest predicted centroid
// lies within its radius, and it claims that predicted region. Distinct claimed
// predicted regions are TruePositives. Pass 2 queries the ground-truth index with
// each unclaimed predicted centroid and compares the distance with the radius of
// the matched ground-truth region: outside is noise, inside is non-noise.
func (c *Classifier) Classify(predicted, groundTruth *RegionSet) (*Result, error) {
	if predicted == nil || groundTruth == nil {
		return nil, fmt.Errorf("%w: nil region set", ErrInputValidation)
	}
	if err := compatible(predicted, groundTruth); err != nil {
		return nil, err
	}

	nPred, nGT := predicted.Len(), groundTruth.Len()
	res := &Result{
		Predicted:   newMatches(nPred),
		GroundTruth: newMatches(nGT),
	}

	claimed := make([]bool, nPred)
	nClaimed := 0

	if nPred == 0 {
		for i := range res.GroundTruth {
			res.GroundTruth[i].Label = FalseNegative
		}
	} else if nGT > 0 {
		idx, err := predicted.spatialIndex()
		if err != nil {
			return nil, fmt.Errorf("indexing predicted regions: %w", err)
		}
		neighbors, err := idx.Nearest(groundTruth.centroids(allIndices(nGT)))
		if err != nil {
			return nil, fmt.Errorf("matching ground truth: %w", err)
		}
		for i, n := range neighbors {
			m := &res.GroundTruth[i]
			m.Neighbor, m.Distance = n.Index, n.Distance
			if n.Distance > groundTruth.At(i).Radius {
				m.Label = FalseNegative
				continue
			}
			m.Label = TruePositive
			res.GroundTruthHits++
			if !claimed[n.Index] {
				claimed[n.Index] = true
				nClaimed++
			}
		}
	}

	var unclaimed []int
	for i := range claimed {
		if claimed[i] {
			res.Predicted[i].Label = TruePositive
			continue
		}
		unclaimed = append(unclaimed, i)
	}

	noise, nonNoise := 0, 0
	if len(unclaimed) > 0 {
		if nGT == 0 {
			// Nothing to overlap: every unclaimed prediction is noise.
			for _, i := range unclaimed {
				res.Predicted[i].Label = FalsePositiveNoise
			}
			noise = len(unclaimed)
		} else {
			idx, err := groundTruth.spatialIndex()
			if err != nil {
				return nil, fmt.Errorf("indexing ground-truth regions: %w", err)
			}
			neighbors, err := idx.Nearest(predicted.centroids(unclaimed))
			if err != nil {
				return nil, fmt.Errorf("matching false positives: %w", err)
			}
			for k, n := range neighbors {
				m := &res.Predicted[unclaimed[k]]
				m.Neighbor, m.Distance = n.Index, n.Distance
				if n.Distance > groundTruth.At(n.Index).Radius {
					m.Label = FalsePositiveNoise
					noise++
				} else {
					m.Label = FalsePositiveNonNoise
					nonNoise++
				}
			}
		}
	}

	res.Counts = ConfusionCounts{
		TruePositives:          nClaimed,
		FalsePositives:         nPred - nClaimed,
		FalseNegatives:         nGT - nClaimed,
		NoiseFalsePositives:    noise,
		NonNoiseFalsePositives: nonNoise,
	}
	if err := res.Counts.Validate(nPred, nGT); err != nil {
		return nil, err
	}

	c.logger.Debug("classified regions",
		"predicted", nPred,
		"ground_truth", nGT,
		"tp", res.Counts.TruePositives,
		"fp", res.Counts.FalsePositives,
		"fn", res.Counts.FalseNegatives,
		"noise_fp", noise,
		"non_noise_fp", nonNoise,
		"ground_truth_hits", res.GroundTruthHits)

	return res, nil
}

func newMatches(n int) []Match {
	m := make([]Match, n)
	for i := range m {
		m[i].Neighbor = -1
	}
	return m
}

func allIndices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
