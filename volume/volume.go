// Package volume loads, writes and measures integer label volumes.
//
// A Volume stores one label per voxel with axis 0 varying fastest, so a 3-D
// volume of shape [X, Y, Z] keeps voxel (x, y, z) at x + X*(y + Y*z). Label 0 is
// background; every other label value is one region.
package volume

import (
	"fmt"
	"math"
	"slices"

	"github.com/jamesainslie/go-segqual"
)

// ErrUnsupportedFormat indicates a path whose format cannot be read or written.
var ErrUnsupportedFormat = fmt.Errorf("%w: unsupported volume format", segqual.ErrInputValidation)

// Volume is a K-dimensional label volume.
type Volume struct {
	// Name is informational; it is carried by the .lvol format.
	Name string
	// Shape is the voxel count along each axis.
	Shape []int
	// Spacing is the physical voxel size along each axis. Nil means 1 per axis.
	Spacing []float64
	// Labels holds one label per voxel.
	Labels []uint32
}

// New allocates an all-background volume of the given shape.
func New(shape ...int) *Volume {
	n := 1
	for _, s := range shape {
		n *= max(s, 0)
	}
	return &Volume{
		Shape:  slices.Clone(shape),
		Labels: make([]uint32, n),
	}
}

// Validate checks that the shape, spacing and label buffer agree.
func (v *Volume) Validate() error {
	if v == nil {
		return fmt.Errorf("%w: nil volume", segqual.ErrInputValidation)
	}
	if len(v.Shape) == 0 {
		return fmt.Errorf("%w: volume has no axes", segqual.ErrInputValidation)
	}
	n := 1
	for axis, s := range v.Shape {
		if s <= 0 {
			return fmt.Errorf("%w: shape axis %d is %d", segqual.ErrInputValidation, axis, s)
		}
		if s > math.MaxInt/n {
			return fmt.Errorf("%w: shape %v overflows the voxel count", segqual.ErrInputValidation, v.Shape)
		}
		n *= s
	}
	if len(v.Labels) != n {
		return fmt.Errorf("%w: shape %v needs %d labels, have %d",
			segqual.ErrInputValidation, v.Shape, n, len(v.Labels))
	}
	if v.Spacing != nil {
		if len(v.Spacing) != len(v.Shape) {
			return fmt.Errorf("%w: %d spacing values for %d axes",
				segqual.ErrInputValidation, len(v.Spacing), len(v.Shape))
		}
		for axis, s := range v.Spacing {
			if !(s > 0) {
				return fmt.Errorf("%w: spacing axis %d is %v", segqual.ErrInputValidation, axis, s)
			}
		}
	}
	return nil
}

// Dims returns the number of axes.
func (v *Volume) Dims() int {
	return len(v.Shape)
}

// VoxelSpacing returns the spacing, defaulting to 1 per axis.
func (v *Volume) VoxelSpacing() []float64 {
	if v.Spacing != nil {
		return slices.Clone(v.Spacing)
	}
	sp := make([]float64, len(v.Shape))
	for i := range sp {
		sp[i] = 1
	}
	return sp
}

// Offset returns the position of the voxel at coords in Labels.
func (v *Volume) Offset(coords ...int) int {
	off, stride := 0, 1
	for axis, c := range coords {
		off += c * stride
		stride *= v.Shape[axis]
	}
	return off
}

// At returns the label at coords.
func (v *Volume) At(coords ...int) uint32 {
	return v.Labels[v.Offset(coords...)]
}

// Set stores label at coords.
func (v *Volume) Set(label uint32, coords ...int) {
	v.Labels[v.Offset(coords...)] = label
}

// CheckSameShape returns segqual.ErrShapeMismatch unless a and b have equal shapes.
func CheckSameShape(a, b *Volume) error {
	if !slices.Equal(a.Shape, b.Shape) {
		return fmt.Errorf("%w: %v vs %v", segqual.ErrShapeMismatch, a.Shape, b.Shape)
	}
	return nil
}
