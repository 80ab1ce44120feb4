package kart

import (
	"errors"
	"fmt"

	"github.com/cxd309/kart-engine/internal/align"
	"github.com/cxd309/kart-engine/internal/drift"
	"github.com/cxd309/kart-engine/internal/kinematics"
	"github.com/cxd309/kart-engine/internal/suspension"
)

// ErrInvalidConfig is wrapped by configuration errors raised by this package.
// Sub-config errors keep their own sentinels.
var ErrInvalidConfig = errors.New("invalid kart config")

// DefaultMaxSpeed is the stock top speed, m/s.
const DefaultMaxSpeed = 35.0

// DriveConfig tunes the drive and steering integrator.
type DriveConfig struct {
	Model    kinematics.MotionModel `json:"-"` // resolved from the "model" discriminator
	Steering kinematics.Steering    `json:"steering"`

	// SmoothedSteer reads the steering direction from the smoothed axis
	// instead of the raw one. Drift decisions always use the raw axis.
	SmoothedSteer bool `json:"smoothed_steer,omitempty"`
}

// Config bundles the tuning of every kart component.
type Config struct {
	Suspension suspension.Config `json:"suspension"`
	Align      align.Config      `json:"align"`
	Drive      DriveConfig       `json:"drive"`
	Drift      drift.Config      `json:"drift"`
}

// DefaultSuspension returns suspension tuning for a 100 kg kart with a 1 m contact radius.
func DefaultSuspension() suspension.Config {
	return suspension.Config{
		RestLength:     0.5,
		SpringTravel:   0.2,
		WheelRadius:    0.3,
		SpringConstant: 3000,
		DamperConstant: 300,
		Radius:         1,
		LostContact:    suspension.HoldLastLength,
	}
}

// DefaultConfig returns stock tuning.
func DefaultConfig() Config {
	return Config{
		Suspension: DefaultSuspension(),
		Align:      align.DefaultConfig(),
		Drive: DriveConfig{
			Model:    kinematics.NewExponential(DefaultMaxSpeed),
			Steering: kinematics.DefaultSteering(),
		},
		Drift: drift.DefaultConfig(),
	}
}

// Validate checks every sub-config.
func (c Config) Validate() error {
	if err := c.Suspension.Validate(); err != nil {
		return fmt.Errorf("suspension: %w", err)
	}
	if err := c.Align.Validate(); err != nil {
		return fmt.Errorf("align: %w", err)
	}
	if c.Drive.Model == nil {
		return fmt.Errorf("%w: drive model is not set", ErrInvalidConfig)
	}
	if err := c.Drive.Model.Validate(); err != nil {
		return fmt.Errorf("drive: %w", err)
	}
	if err := c.Drive.Steering.Validate(); err != nil {
		return fmt.Errorf("steering: %w", err)
	}
	if err := c.Drift.Validate(); err != nil {
		return fmt.Errorf("drift: %w", err)
	}
	return nil
}
