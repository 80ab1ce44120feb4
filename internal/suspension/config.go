package suspension

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is wrapped by every error Validate returns.
var ErrInvalidConfig = errors.New("invalid suspension config")

// LostContactPolicy decides what happens to a corner's spring length on a step
// where its ray finds no ground.
type LostContactPolicy string

const (
	// HoldLastLength keeps the last measured length, so re-contact is damped
	// against the length the wheel had when it left the ground.
	HoldLastLength LostContactPolicy = "hold"
	// ResetToMax extends the spring fully while airborne.
	ResetToMax LostContactPolicy = "reset"
)

// Config holds the static suspension parameters of one kart.
type Config struct {
	RestLength     float64 `json:"rest_length"`     // metres
	SpringTravel   float64 `json:"spring_travel"`   // metres either side of rest
	WheelRadius    float64 `json:"wheel_radius"`    // metres
	SpringConstant float64 `json:"spring_constant"` // N/m
	DamperConstant float64 `json:"damper_constant"` // N·s/m

	// Radius is the body's contact radius. Corner mounts sit at ±Radius along
	// the body's right and forward axes unless HalfWidth/HalfLength override it.
	Radius     float64 `json:"radius"`
	HalfWidth  float64 `json:"half_width,omitempty"`
	HalfLength float64 `json:"half_length,omitempty"`

	LostContact LostContactPolicy `json:"lost_contact,omitempty"` // default "hold"

	// RaiseShortRest lifts a rest length that does not clear the contact
	// radius to Radius/2 + RestLength.
	RaiseShortRest bool `json:"raise_short_rest,omitempty"`
}

// Validate checks the invariant 0 < min < rest < max and the sign of every constant.
func (c Config) Validate() error {
	switch {
	case c.Radius <= 0:
		return fmt.Errorf("%w: radius must be positive, got %g", ErrInvalidConfig, c.Radius)
	case c.RestLength <= 0:
		return fmt.Errorf("%w: rest_length must be positive, got %g", ErrInvalidConfig, c.RestLength)
	case c.SpringTravel <= 0:
		return fmt.Errorf("%w: spring_travel must be positive, got %g", ErrInvalidConfig, c.SpringTravel)
	case c.WheelRadius < 0:
		return fmt.Errorf("%w: wheel_radius must not be negative, got %g", ErrInvalidConfig, c.WheelRadius)
	case c.SpringConstant <= 0:
		return fmt.Errorf("%w: spring_constant must be positive, got %g", ErrInvalidConfig, c.SpringConstant)
	case c.DamperConstant < 0:
		return fmt.Errorf("%w: damper_constant must not be negative, got %g", ErrInvalidConfig, c.DamperConstant)
	case c.HalfWidth < 0 || c.HalfLength < 0:
		return fmt.Errorf("%w: half extents must not be negative", ErrInvalidConfig)
	}
	if rest := c.EffectiveRest(); rest <= c.SpringTravel {
		return fmt.Errorf("%w: rest length %g must exceed spring_travel %g", ErrInvalidConfig, rest, c.SpringTravel)
	}
	switch c.LostContact {
	case "", HoldLastLength, ResetToMax:
	default:
		return fmt.Errorf("%w: unknown lost_contact policy %q", ErrInvalidConfig, c.LostContact)
	}
	return nil
}

// EffectiveRest returns the rest length after the RaiseShortRest adjustment.
func (c Config) EffectiveRest() float64 {
	if c.RaiseShortRest && c.RestLength <= c.Radius {
		return c.Radius/2 + c.RestLength
	}
	return c.RestLength
}

// Limits returns the clamped spring range around the effective rest length.
func (c Config) Limits() (minLength, restLength, maxLength float64) {
	rest := c.EffectiveRest()
	return rest - c.SpringTravel, rest, rest + c.SpringTravel
}

// RayLength is the maximum distance a corner ray travels.
func (c Config) RayLength() float64 {
	_, _, maxLength := c.Limits()
	return maxLength + c.WheelRadius
}

func (c Config) halfExtents() (halfWidth, halfLength float64) {
	halfWidth, halfLength = c.HalfWidth, c.HalfLength
	if halfWidth == 0 {
		halfWidth = c.Radius
	}
	if halfLength == 0 {
		halfLength = c.Radius
	}
	return halfWidth, halfLength
}

func (c Config) policy() LostContactPolicy {
	if c.LostContact == "" {
		return HoldLastLength
	}
	return c.LostContact
}
