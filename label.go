package segqual

// Label is the class assigned to one region by the Classifier.
type Label int

const (
	// Unclassified is the zero value; no region carries it after classification.
	Unclassified Label = iota
	// TruePositive marks a detected ground-truth region or a confirmed prediction.
	TruePositive
	// FalseNegative marks a ground-truth region with no prediction inside its sphere.
	FalseNegative
	// FalsePositiveNoise marks a prediction outside its nearest ground-truth sphere.
	FalsePositiveNoise
	// FalsePositiveNonNoise marks an unclaimed prediction inside its nearest
	// ground-truth sphere.
	FalsePositiveNonNoise
)

// String returns the short form used in debug tables.
func (l Label) String() string {
	switch l {
	case TruePositive:
		return "TP"
	case FalseNegative:
		return "FN"
	case FalsePositiveNoise:
		return "FP-Noise"
	case FalsePositiveNonNoise:
		return "FP-NonNoise"
	default:
		return "unclassified"
	}
}
