package volume

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Ext is the file extension of the protobuf label volume format.
const Ext = ".lvol"

// Load reads a label volume from path. Directories are read as slice stacks,
// .lvol files with the protobuf codec and image files as 2-D label images.
func Load(path string) (*Volume, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("loading volume: %w", err)
	}
	if info.IsDir() {
		return ReadStack(path)
	}

	switch {
	case strings.EqualFold(filepath.Ext(path), Ext):
		return ReadFile(path)
	case isImage(path):
		return ReadImage(path)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// Save writes v to path, choosing the format the same way Load does. A path
// without an extension is written as a slice directory.
func Save(path string, v *Volume) error {
	ext := filepath.Ext(path)
	switch {
	case strings.EqualFold(ext, Ext):
		return WriteFile(path, v)
	case ext == "":
		return WriteStack(path, v)
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}
