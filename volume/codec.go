package volume

import (
	"fmt"
	"math"
	"os"

	"google.golang.org/protobuf/proto"

	"github.com/jamesainslie/go-segqual"
	pb "github.com/jamesainslie/go-segqual/internal/proto"
)

// ErrMalformed indicates a .lvol payload that is not a valid LabelVolume message.
var ErrMalformed = fmt.Errorf("%w: malformed label volume", segqual.ErrInputValidation)

// Marshal encodes v as a LabelVolume protobuf message.
func Marshal(v *Volume) ([]byte, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}

	msg := &pb.LabelVolume{
		Shape:   make([]uint32, len(v.Shape)),
		Spacing: v.Spacing,
		Labels:  v.Labels,
		Name:    v.Name,
	}
	for i, s := range v.Shape {
		if uint64(s) > math.MaxUint32 {
			return nil, fmt.Errorf("%w: shape axis %d exceeds uint32", segqual.ErrInputValidation, s)
		}
		msg.Shape[i] = uint32(s)
	}

	data, err := proto.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encoding label volume: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a LabelVolume message and validates the result.
func Unmarshal(b []byte) (*Volume, error) {
	var msg pb.LabelVolume
	if err := proto.Unmarshal(b, &msg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	v := &Volume{
		Name:    msg.GetName(),
		Shape:   make([]int, len(msg.GetShape())),
		Spacing: msg.GetSpacing(),
		Labels:  msg.GetLabels(),
	}
	for i, s := range msg.GetShape() {
		v.Shape[i] = int(s)
	}

	if err := v.Validate(); err != nil {
		return nil, err
	}
	return v, nil
}

// ReadFile loads a .lvol file.
func ReadFile(path string) (*Volume, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading label volume: %w", err)
	}
	v, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return v, nil
}

// WriteFile stores v as a .lvol file.
func WriteFile(path string, v *Volume) error {
	data, err := Marshal(v)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing label volume: %w", err)
	}
	return nil
}
