package segqual

import (
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/jamesainslie/go-segqual/spatial"
)

// Region is one labelled object reduced to its centroid and equivalent spherical radius.
type Region struct {
	ID       int
	Centroid []float64
	Radius   float64
}

// RegionSet is an ordered, immutable collection of regions sharing one coordinate space.
// Its spatial index is built on first query and reused afterwards.
type RegionSet struct {
	regions []Region
	dims    int
	shape   []int

	once     sync.Once
	index    *spatial.Index
	indexErr error
}

// NewRegionSet validates regions and returns a set that preserves their order.
//
// shape is the voxel shape of the volume the regions were extracted from; it may
// be nil when unknown. Every region must have a positive, unique ID, a positive
// finite radius and a finite centroid of the same dimensionality.
func NewRegionSet(regions []Region, shape []int) (*RegionSet, error) {
	dims := len(shape)
	if len(regions) > 0 {
		dims = len(regions[0].Centroid)
	}
	if len(regions) > 0 && dims == 0 {
		return nil, fmt.Errorf("%w: region %d has an empty centroid", ErrInputValidation, regions[0].ID)
	}
	if shape != nil && len(shape) != dims {
		return nil, fmt.Errorf("%w: centroids have %d coordinates but shape has %d axes",
			ErrShapeMismatch, dims, len(shape))
	}
	for axis, n := range shape {
		if n <= 0 {
			return nil, fmt.Errorf("%w: shape axis %d is %d", ErrInputValidation, axis, n)
		}
	}

	seen := make(map[int]struct{}, len(regions))
	owned := make([]Region, len(regions))
	for i, r := range regions {
		if r.ID <= 0 {
			return nil, fmt.Errorf("%w: region %d has non-positive id %d", ErrInputValidation, i, r.ID)
		}
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate region id %d", ErrInputValidation, r.ID)
		}
		seen[r.ID] = struct{}{}

		if len(r.Centroid) != dims {
			return nil, fmt.Errorf("%w: region %d has %d coordinates, want %d",
				ErrShapeMismatch, r.ID, len(r.Centroid), dims)
		}
		for _, c := range r.Centroid {
			if math.IsNaN(c) || math.IsInf(c, 0) {
				return nil, fmt.Errorf("%w: region %d has a non-finite centroid", ErrInputValidation, r.ID)
			}
		}
		if !(r.Radius > 0) || math.IsInf(r.Radius, 0) {
			return nil, fmt.Errorf("%w: region %d has radius %v", ErrInputValidation, r.ID, r.Radius)
		}

		owned[i] = Region{ID: r.ID, Centroid: slices.Clone(r.Centroid), Radius: r.Radius}
	}

	return &RegionSet{
		regions: owned,
		dims:    dims,
		shape:   slices.Clone(shape),
	}, nil
}

// Len returns the number of regions.
func (s *RegionSet) Len() int {
	return len(s.regions)
}

// At returns the i-th region. The centroid must not be modified.
func (s *RegionSet) At(i int) Region {
	return s.regions[i]
}

// Dims returns the dimensionality of the centroids (0 for an empty set with no shape).
func (s *RegionSet) Dims() int {
	return s.dims
}

// Shape returns a copy of the voxel shape, or nil when unknown.
func (s *RegionSet) Shape() []int {
	return slices.Clone(s.shape)
}

// IDs returns the region ids in set order.
func (s *RegionSet) IDs() []int {
	ids := make([]int, len(s.regions))
	for i, r := range s.regions {
		ids[i] = r.ID
	}
	return ids
}

func (s *RegionSet) centroids(indices []int) [][]float64 {
	out := make([][]float64, len(indices))
	for i, idx := range indices {
		out[i] = s.regions[idx].Centroid
	}
	return out
}

// spatialIndex returns the lazily built nearest-neighbour index.
func (s *RegionSet) spatialIndex() (*spatial.Index, error) {
	s.once.Do(func() {
		points := make([][]float64, len(s.regions))
		for i, r := range s.regions {
			points[i] = r.Centroid
		}
		s.index, s.indexErr = spatial.Build(points)
	})
	return s.index, s.indexErr
}

// compatible reports an error when two sets cannot be compared.
func compatible(predicted, groundTruth *RegionSet) error {
	if predicted.shape != nil && groundTruth.shape != nil && !slices.Equal(predicted.shape, groundTruth.shape) {
		return fmt.Errorf("%w: predicted %v, ground truth %v", ErrShapeMismatch, predicted.shape, groundTruth.shape)
	}
	if predicted.dims != 0 && groundTruth.dims != 0 && predicted.dims != groundTruth.dims {
		return fmt.Errorf("%w: predicted centroids have %d coordinates, ground truth %d",
			ErrShapeMismatch, predicted.dims, groundTruth.dims)
	}
	return nil
}
