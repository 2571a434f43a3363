package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jamesainslie/go-segqual"
)

// RegionColumns is the header of the per-region debug tables.
var RegionColumns = []string{"id", "centroid", "radius", "classification"}

// WriteRegions writes one line per region of set with the label from matches.
func WriteRegions(w io.Writer, set *segqual.RegionSet, matches []segqual.Match) error {
	if len(matches) != set.Len() {
		return fmt.Errorf("%d matches for %d regions", len(matches), set.Len())
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(RegionColumns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i := 0; i < set.Len(); i++ {
		r := set.At(i)
		if err := cw.Write([]string{
			strconv.Itoa(r.ID),
			FormatCentroid(r.Centroid),
			strconv.FormatFloat(r.Radius, 'g', -1, 64),
			matches[i].Label.String(),
		}); err != nil {
			return fmt.Errorf("writing region %d: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// FormatCentroid joins coordinates with spaces.
func FormatCentroid(c []float64) string {
	parts := make([]string, len(c))
	for i, v := range c {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, " ")
}

// DebugDir returns the directory holding the debug tables of one comparison.
func DebugDir(root, predictedStub, groundTruthStub string) string {
	return filepath.Join(root, predictedStub+"_"+groundTruthStub)
}

// WriteDebug writes groundtruth.csv and predicted.csv for one comparison into
// DebugDir(root, predictedStub, groundTruthStub) and returns that directory.
func WriteDebug(root, predictedStub, groundTruthStub string, d *Detail) (string, error) {
	if d == nil || d.Result == nil {
		return "", fmt.Errorf("no region detail for %s", predictedStub)
	}
	dir := DebugDir(root, predictedStub, groundTruthStub)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating debug directory: %w", err)
	}

	err := writeFile(filepath.Join(dir, "groundtruth.csv"), func(w io.Writer) error {
		return WriteRegions(w, d.GroundTruth, d.Result.GroundTruth)
	})
	if err != nil {
		return "", err
	}
	err = writeFile(filepath.Join(dir, "predicted.csv"), func(w io.Writer) error {
		return WriteRegions(w, d.Predicted, d.Result.Predicted)
	})
	if err != nil {
		return "", err
	}
	return dir, nil
}

// Stub returns the file name of path up to its first dot, so "a.nii.gz"
// becomes "a". A name that starts with a dot is returned whole.
func Stub(path string) string {
	base := filepath.Base(path)
	if stub, _, _ := strings.Cut(base, "."); stub != "" {
		return stub
	}
	return base
}
