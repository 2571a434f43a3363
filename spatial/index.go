// Package spatial provides nearest-neighbour queries over fixed centroid sets.
//
// An Index is a static k-d tree built once over a set of K-dimensional points.
// Queries return the Euclidean distance to the closest indexed point and that
// point's position in the slice passed to Build. Equal distances resolve to the
// lowest original position, so results depend only on input order.
package spatial

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"
)

var (
	// ErrEmptyInput indicates an index was requested over zero points.
	ErrEmptyInput = errors.New("spatial: empty input")

	// ErrDimensionMismatch indicates points or queries of differing dimensionality.
	ErrDimensionMismatch = errors.New("spatial: dimension mismatch")
)

// Neighbor is the answer to one nearest query.
type Neighbor struct {
	Distance float64
	Index    int
}

// Index is an immutable k-d tree over a point set. It is safe for concurrent use.
type Index struct {
	tree *kdtree.Tree
	dims int
	size int
}

// Build constructs an index over points. The input slice is not retained or modified.
func Build(points [][]float64) (*Index, error) {
	if len(points) == 0 {
		return nil, ErrEmptyInput
	}

	dims := len(points[0])
	if dims == 0 {
		return nil, fmt.Errorf("%w: zero-dimensional points", ErrDimensionMismatch)
	}

	pts := make(centroids, len(points))
	for i, p := range points {
		if len(p) != dims {
			return nil, fmt.Errorf("%w: point %d has %d coordinates, want %d",
				ErrDimensionMismatch, i, len(p), dims)
		}
		coords := make([]float64, dims)
		copy(coords, p)
		pts[i] = centroid{coords: coords, index: i}
	}

	return &Index{
		tree: kdtree.New(pts, false),
		dims: dims,
		size: len(points),
	}, nil
}

// Len returns the number of indexed points.
func (x *Index) Len() int {
	return x.size
}

// Dims returns the dimensionality of the indexed points.
func (x *Index) Dims() int {
	return x.dims
}

// Nearest returns, for each query, the closest indexed point.
func (x *Index) Nearest(queries [][]float64) ([]Neighbor, error) {
	out := make([]Neighbor, len(queries))
	for i, q := range queries {
		n, err := x.nearest(q)
		if err != nil {
			return nil, fmt.Errorf("query %d: %w", i, err)
		}
		out[i] = n
	}
	return out, nil
}

func (x *Index) nearest(q []float64) (Neighbor, error) {
	if len(q) != x.dims {
		return Neighbor{}, fmt.Errorf("%w: query has %d coordinates, want %d",
			ErrDimensionMismatch, len(q), x.dims)
	}

	query := centroid{coords: q, index: -1}
	got, dist2 := x.tree.Nearest(query)
	if got == nil {
		return Neighbor{}, ErrEmptyInput
	}
	best := got.(centroid).index

	// The tree reports one of possibly several equidistant points; collect all
	// of them so the lowest original index wins.
	keeper := kdtree.NewDistKeeper(dist2)
	x.tree.NearestSet(keeper, query)
	for _, c := range keeper.Heap {
		if c.Comparable == nil || c.Dist != dist2 {
			continue
		}
		if idx := c.Comparable.(centroid).index; idx < best {
			best = idx
		}
	}

	return Neighbor{Distance: math.Sqrt(dist2), Index: best}, nil
}
