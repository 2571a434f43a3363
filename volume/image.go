package volume

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/tiff"

	"github.com/jamesainslie/go-segqual"
)

// imageExts lists the extensions read as 2-D label images.
var imageExts = []string{".png", ".tif", ".tiff", ".bmp", ".gif"}

func isImage(path string) bool {
	return slices.Contains(imageExts, strings.ToLower(filepath.Ext(path)))
}

// ReadImage loads a single 2-D label image. Grey and paletted images are read
// as raw label values; any other colour model is converted to 16-bit grey.
func ReadImage(path string) (*Volume, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening label image: %w", err)
	}
	v := fromImage(img)
	v.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return v, nil
}

func fromImage(img image.Image) *Volume {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	v := New(w, h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px, py := b.Min.X+x, b.Min.Y+y
			var label uint32
			switch m := img.(type) {
			case *image.Gray16:
				label = uint32(m.Gray16At(px, py).Y)
			case *image.Gray:
				label = uint32(m.GrayAt(px, py).Y)
			case *image.Paletted:
				label = uint32(m.ColorIndexAt(px, py))
			default:
				label = uint32(color.Gray16Model.Convert(img.At(px, py)).(color.Gray16).Y)
			}
			v.Labels[x+w*y] = label
		}
	}
	return v
}

// ReadStack loads every label image in dir, sorted by name, as the z slices of a
// 3-D volume. All slices must share one size.
func ReadStack(dir string) (*Volume, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading slice directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && isImage(e.Name()) {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no label slices in %s", segqual.ErrInputValidation, dir)
	}
	slices.Sort(names)

	var v *Volume
	for z, name := range names {
		s, err := ReadImage(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		if v == nil {
			v = &Volume{
				Name:   filepath.Base(dir),
				Shape:  []int{s.Shape[0], s.Shape[1], len(names)},
				Labels: make([]uint32, 0, len(s.Labels)*len(names)),
			}
		}
		if s.Shape[0] != v.Shape[0] || s.Shape[1] != v.Shape[1] {
			return nil, fmt.Errorf("%w: slice %d (%s) is %dx%d, want %dx%d", segqual.ErrShapeMismatch,
				z, name, s.Shape[0], s.Shape[1], v.Shape[0], v.Shape[1])
		}
		v.Labels = append(v.Labels, s.Labels...)
	}
	return v, nil
}

// WriteStack writes a 2-D or 3-D volume as 16-bit grey TIFF slices named
// slice_0000.tif, slice_0001.tif, ... in dir, creating dir if needed.
func WriteStack(dir string, v *Volume) error {
	if err := v.Validate(); err != nil {
		return err
	}
	if v.Dims() != 2 && v.Dims() != 3 {
		return fmt.Errorf("%w: cannot write %d-D volume as slices", ErrUnsupportedFormat, v.Dims())
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating slice directory: %w", err)
	}

	w, h := v.Shape[0], v.Shape[1]
	depth := 1
	if v.Dims() == 3 {
		depth = v.Shape[2]
	}
	for z := 0; z < depth; z++ {
		img := image.NewGray16(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				l := v.Labels[x+w*(y+h*z)]
				if l > 0xffff {
					return fmt.Errorf("%w: label %d does not fit a 16-bit slice", ErrUnsupportedFormat, l)
				}
				img.SetGray16(x, y, color.Gray16{Y: uint16(l)})
			}
		}
		if err := writeTIFF(filepath.Join(dir, fmt.Sprintf("slice_%04d.tif", z)), img); err != nil {
			return err
		}
	}
	return nil
}

func writeTIFF(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating slice: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing slice: %w", cerr)
		}
	}()
	if err := tiff.Encode(f, img, &tiff.Options{Compression: tiff.Deflate}); err != nil {
		return fmt.Errorf("encoding slice: %w", err)
	}
	return nil
}
