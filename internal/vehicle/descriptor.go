package vehicle

import (
	"fmt"
	"math"

	"github.com/LVPlayground/gamemode/pkg/core"
)

// Model id range accepted by the host runtime.
const (
	MinModelID = 400
	MaxModelID = 611
)

const (
	// ColorRandom asks the host to pick a random color.
	ColorRandom = -1

	// PaintjobNone removes any paintjob from the vehicle.
	PaintjobNone = 3
)

// Descriptor is the input to Manager.CreateVehicle.
// ModelID and Position are required. Colors and paintjob are pointers because zero is a
// meaningful value for them; nil selects the default.
type Descriptor struct {
	ModelID        int              `json:"modelId"`
	Position       *core.Position3D `json:"position"`
	Rotation       float64          `json:"rotation"`
	PrimaryColor   *int             `json:"primaryColor,omitempty"`
	SecondaryColor *int             `json:"secondaryColor,omitempty"`
	Siren          bool             `json:"siren"`
	Paintjob       *int             `json:"paintjob,omitempty"`
	InteriorID     int              `json:"interiorId"`
	VirtualWorld   int              `json:"virtualWorld"`
}

// Validate checks the descriptor without applying defaults.
func (d Descriptor) Validate() error {
	if d.ModelID == 0 {
		return fmt.Errorf("%w: modelId is required", ErrInvalidDescriptor)
	}
	if d.ModelID < MinModelID || d.ModelID > MaxModelID {
		return fmt.Errorf("%w: modelId %d out of range [%d, %d]", ErrInvalidDescriptor, d.ModelID, MinModelID, MaxModelID)
	}
	if d.Position == nil {
		return fmt.Errorf("%w: position is required", ErrInvalidDescriptor)
	}
	for _, f := range []float64{d.Position.X, d.Position.Y, d.Position.Z, d.Rotation} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: position and rotation must be finite", ErrInvalidDescriptor)
		}
	}
	if err := validateColor("primaryColor", d.PrimaryColor); err != nil {
		return err
	}
	if err := validateColor("secondaryColor", d.SecondaryColor); err != nil {
		return err
	}
	if d.Paintjob != nil && (*d.Paintjob < 0 || *d.Paintjob > PaintjobNone) {
		return fmt.Errorf("%w: paintjob %d out of range [0, %d]", ErrInvalidDescriptor, *d.Paintjob, PaintjobNone)
	}
	if d.InteriorID < 0 || d.InteriorID > 255 {
		return fmt.Errorf("%w: interiorId %d out of range [0, 255]", ErrInvalidDescriptor, d.InteriorID)
	}
	if d.VirtualWorld < 0 {
		return fmt.Errorf("%w: virtualWorld must not be negative", ErrInvalidDescriptor)
	}
	return nil
}

func validateColor(field string, color *int) error {
	if color != nil && (*color < ColorRandom || *color > 255) {
		return fmt.Errorf("%w: %s %d out of range [%d, 255]", ErrInvalidDescriptor, field, *color, ColorRandom)
	}
	return nil
}

// normalize validates d and returns a copy with every optional field filled in.
func (d Descriptor) normalize() (Descriptor, error) {
	if err := d.Validate(); err != nil {
		return d, err
	}

	position := *d.Position
	d.Position = &position
	d.PrimaryColor = withDefault(d.PrimaryColor, ColorRandom)
	d.SecondaryColor = withDefault(d.SecondaryColor, ColorRandom)
	d.Paintjob = withDefault(d.Paintjob, PaintjobNone)
	return d, nil
}

func withDefault(v *int, def int) *int {
	if v == nil {
		return &def
	}
	n := *v
	return &n
}
