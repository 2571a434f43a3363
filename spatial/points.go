package spatial

import "gonum.org/v1/gonum/spatial/kdtree"

// centroid is a point that remembers its position in the caller's slice.
type centroid struct {
	coords []float64
	index  int
}

// Compare implements kdtree.Comparable.
func (p centroid) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(centroid)
	return p.coords[d] - q.coords[d]
}

// Dims implements kdtree.Comparable.
func (p centroid) Dims() int {
	return len(p.coords)
}

// Distance implements kdtree.Comparable. It returns the squared Euclidean distance.
func (p centroid) Distance(c kdtree.Comparable) float64 {
	q := c.(centroid)
	var sum float64
	for i, v := range p.coords {
		d := v - q.coords[i]
		sum += d * d
	}
	return sum
}

// centroids implements kdtree.Interface.
type centroids []centroid

func (p centroids) Index(i int) kdtree.Comparable { return p[i] }
func (p centroids) Len() int                      { return len(p) }
func (p centroids) Slice(start, end int) kdtree.Interface {
	return p[start:end]
}

// Pivot partitions around the median along d. Median of medians keeps the
// tree shape independent of any random source.
func (p centroids) Pivot(d kdtree.Dim) int {
	return plane{dim: d, centroids: p}.pivot()
}

// plane sorts centroids along a single dimension.
type plane struct {
	dim kdtree.Dim
	centroids
}

func (p plane) Less(i, j int) bool {
	return p.centroids[i].coords[p.dim] < p.centroids[j].coords[p.dim]
}

func (p plane) Swap(i, j int) {
	p.centroids[i], p.centroids[j] = p.centroids[j], p.centroids[i]
}

func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.centroids = p.centroids[start:end]
	return p
}

func (p plane) pivot() int {
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}
