package evaluate

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jamesainslie/go-segqual"
)

// Descriptor is the JSON description of a batch run.
type Descriptor struct {
	GroundTruthFile string   `json:"groundTruthFile"`
	TestFiles       []string `json:"testFiles"`
	TestLabels      []string `json:"testLabels"`
	OutputDirectory string   `json:"outputDirectory"`
	SaveDebugInfo   bool     `json:"saveDebugInfo,omitempty"`
	SQLite          bool     `json:"sqlite,omitempty"`
	Workers         int      `json:"workers,omitempty"`
	FailurePolicy   Policy   `json:"failurePolicy,omitempty"`
}

// UnmarshalJSON also accepts the legacy parameter-file keys gtLabelImageFile,
// testLabelImageFiles, testImageFileLabels and outputDir. Current keys win.
func (d *Descriptor) UnmarshalJSON(data []byte) error {
	type plain Descriptor
	var aux struct {
		plain
		GTLabelImageFile    string   `json:"gtLabelImageFile"`
		TestLabelImageFiles []string `json:"testLabelImageFiles"`
		TestImageFileLabels []string `json:"testImageFileLabels"`
		OutputDir           string   `json:"outputDir"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*d = Descriptor(aux.plain)
	if d.GroundTruthFile == "" {
		d.GroundTruthFile = aux.GTLabelImageFile
	}
	if d.TestFiles == nil {
		d.TestFiles = aux.TestLabelImageFiles
	}
	if d.TestLabels == nil {
		d.TestLabels = aux.TestImageFileLabels
	}
	if d.OutputDirectory == "" {
		d.OutputDirectory = aux.OutputDir
	}
	return nil
}

// LoadDescriptor reads and validates a descriptor file.
func LoadDescriptor(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading descriptor: %w", err)
	}
	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: parsing descriptor %s: %w", segqual.ErrInputValidation, path, err)
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("descriptor %s: %w", path, err)
	}
	return &d, nil
}

// Validate checks required fields and that every test file has a label.
func (d *Descriptor) Validate() error {
	if d.GroundTruthFile == "" {
		return fmt.Errorf("%w: groundTruthFile is required", segqual.ErrInputValidation)
	}
	if d.OutputDirectory == "" {
		return fmt.Errorf("%w: outputDirectory is required", segqual.ErrInputValidation)
	}
	if len(d.TestFiles) != len(d.TestLabels) {
		return fmt.Errorf("%w: %d test files and %d labels",
			segqual.ErrInputArity, len(d.TestFiles), len(d.TestLabels))
	}
	if d.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", segqual.ErrInputValidation)
	}
	if _, err := ParsePolicy(string(d.FailurePolicy)); err != nil {
		return err
	}
	return nil
}

// Batch returns the batch described by d.
func (d *Descriptor) Batch() Batch {
	return Batch{
		GroundTruth: d.GroundTruthFile,
		Files:       d.TestFiles,
		Labels:      d.TestLabels,
	}
}
