//go:build ignore

// Generate a synthetic ground-truth label volume of spheres plus predictions
// with known defects, and a batch descriptor listing them.
// Usage: go run ./scripts/make-phantom.go
package main

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/jamesainslie/go-segqual/evaluate"
	"github.com/jamesainslie/go-segqual/volume"
)

const (
	side    = 64
	spheres = 24
	outDir  = "testdata/phantom"
)

type sphere struct {
	x, y, z, r int
}

func main() {
	rng := rand.New(rand.NewPCG(1, 2))

	var truth []sphere
	for len(truth) < spheres {
		s := sphere{
			x: 6 + rng.IntN(side-12),
			y: 6 + rng.IntN(side-12),
			z: 6 + rng.IntN(side-12),
			r: 2 + rng.IntN(3),
		}
		if !overlaps(truth, s) {
			truth = append(truth, s)
		}
	}

	variants := []struct {
		name  string
		build func() *volume.Volume
	}{
		{"exact", func() *volume.Volume { return paint(truth, false) }},
		{"shifted", func() *volume.Volume {
			moved := make([]sphere, len(truth))
			for i, s := range truth {
				s.x += rng.IntN(3) - 1
				s.y += rng.IntN(3) - 1
				moved[i] = s
			}
			return paint(moved, false)
		}},
		{"oversegmented", func() *volume.Volume { return paint(truth, true) }},
		{"noisy", func() *volume.Volume {
			v := paint(truth, false)
			for i := 0; i < 10; i++ {
				v.Set(uint32(1000+i), rng.IntN(side), rng.IntN(side), rng.IntN(side))
			}
			return v
		}},
		{"sparse", func() *volume.Volume { return paint(truth[:spheres/2], false) }},
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", outDir, err)
		os.Exit(1)
	}

	gt := paint(truth, false)
	gt.Name = "groundtruth"
	gtPath := filepath.Join(outDir, "groundtruth.lvol")
	if err := volume.Save(gtPath, gt); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", gtPath, err)
		os.Exit(1)
	}
	// The same ground truth as a TIFF slice stack, to exercise the directory loader.
	if err := volume.Save(filepath.Join(outDir, "groundtruth_slices"), gt); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing slices: %v\n", err)
		os.Exit(1)
	}

	desc := evaluate.Descriptor{
		GroundTruthFile: gtPath,
		OutputDirectory: filepath.Join(outDir, "results"),
		SaveDebugInfo:   true,
	}
	for _, variant := range variants {
		v := variant.build()
		v.Name = variant.name
		path := filepath.Join(outDir, variant.name+volume.Ext)
		if err := volume.Save(path, v); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", path, err)
			continue
		}
		desc.TestFiles = append(desc.TestFiles, path)
		desc.TestLabels = append(desc.TestLabels, variant.name)
		fmt.Printf("  -> %s\n", path)
	}

	data, err := json.MarshalIndent(desc, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding descriptor: %v\n", err)
		os.Exit(1)
	}
	descPath := filepath.Join(outDir, "batch.json")
	if err := os.WriteFile(descPath, append(data, '\n'), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", descPath, err)
		os.Exit(1)
	}

	fmt.Printf("\nDone! %d spheres; run: segqual-batch %s\n", len(truth), descPath)
}

func overlaps(existing []sphere, s sphere) bool {
	for _, e := range existing {
		dx, dy, dz := e.x-s.x, e.y-s.y, e.z-s.z
		gap := e.r + s.r + 2
		if dx*dx+dy*dy+dz*dz < gap*gap {
			return true
		}
	}
	return false
}

// paint rasterises spheres with labels 1..n. With split set, the half of each
// sphere with x above the centre gets its own label.
func paint(spheres []sphere, split bool) *volume.Volume {
	v := volume.New(side, side, side)
	for i, s := range spheres {
		label := uint32(i + 1)
		for z := s.z - s.r; z <= s.z+s.r; z++ {
			for y := s.y - s.r; y <= s.y+s.r; y++ {
				for x := s.x - s.r; x <= s.x+s.r; x++ {
					dx, dy, dz := x-s.x, y-s.y, z-s.z
					if dx*dx+dy*dy+dz*dz > s.r*s.r {
						continue
					}
					l := label
					if split && x > s.x {
						l += 500
					}
					v.Set(l, x, y, z)
				}
			}
		}
	}
	return v
}
