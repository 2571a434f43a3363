package volume

import (
	"fmt"
	"math"
	"slices"

	"github.com/jamesainslie/go-segqual"
)

// EquivalentRadius returns the radius of the dims-dimensional ball whose
// measure equals volume. For dims == 3 this is (3V/4π)^(1/3).
func EquivalentRadius(volume float64, dims int) (float64, error) {
	if !(volume > 0) || math.IsInf(volume, 0) {
		return 0, fmt.Errorf("%w: region volume %v", segqual.ErrInputValidation, volume)
	}
	if dims <= 0 {
		return 0, fmt.Errorf("%w: %d dimensions", segqual.ErrInputValidation, dims)
	}
	k := float64(dims)
	unitBall := math.Pow(math.Pi, k/2) / math.Gamma(k/2+1)
	return math.Pow(volume/unitBall, 1/k), nil
}

type accumulator struct {
	count int
	sum   []float64
}

// Extract reduces every non-zero label to a Region in ascending label order.
// The centroid is the mean voxel index along each axis scaled by spacing and the
// radius is the equivalent ball radius of the region's physical volume.
func Extract(v *Volume) (*segqual.RegionSet, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	dims := v.Dims()
	spacing := v.VoxelSpacing()

	voxel := 1.0
	for _, s := range spacing {
		voxel *= s
	}

	acc := make(map[uint32]*accumulator)
	coords := make([]int, dims)
	for _, label := range v.Labels {
		if label != 0 {
			a, ok := acc[label]
			if !ok {
				a = &accumulator{sum: make([]float64, dims)}
				acc[label] = a
			}
			a.count++
			for axis, c := range coords {
				a.sum[axis] += float64(c)
			}
		}
		// Advance the odometer; axis 0 varies fastest.
		for axis := range coords {
			coords[axis]++
			if coords[axis] < v.Shape[axis] {
				break
			}
			coords[axis] = 0
		}
	}

	labels := make([]uint32, 0, len(acc))
	for l := range acc {
		labels = append(labels, l)
	}
	slices.Sort(labels)

	regions := make([]segqual.Region, len(labels))
	for i, l := range labels {
		a := acc[l]
		centroid := make([]float64, dims)
		for axis := range centroid {
			centroid[axis] = a.sum[axis] / float64(a.count) * spacing[axis]
		}
		r, err := EquivalentRadius(float64(a.count)*voxel, dims)
		if err != nil {
			return nil, fmt.Errorf("label %d: %w", l, err)
		}
		regions[i] = segqual.Region{ID: int(l), Centroid: centroid, Radius: r}
	}

	return segqual.NewRegionSet(regions, v.Shape)
}
