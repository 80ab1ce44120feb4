package kinematics

import (
	"fmt"
	"math"
)

// ExponentialModelName is the JSON discriminator string for the Exponential model.
const ExponentialModelName = "exponential"

// Default smoothing time constants, in seconds.
const (
	DefaultTauForward = 2.0
	DefaultTauReverse = 1.0
	DefaultTauCoast   = 0.667
)

// Exponential implements MotionModel as a first-order lag toward the throttle target.
// Each branch has its own time constant, so a kart pulls away slower than it brakes.
//
// JSON discriminator: "model": "exponential"
type Exponential struct {
	Limits
	TauForward float64 `json:"tau_forward,omitempty"` // s
	TauReverse float64 `json:"tau_reverse,omitempty"` // s
	TauCoast   float64 `json:"tau_coast,omitempty"`   // s
}

// NewExponential returns the model with the default time constants.
func NewExponential(vMax float64) Exponential {
	return Exponential{
		Limits:     Limits{VMaxVal: vMax, ReverseRatio: DefaultReverseRatio, BoostMultiplier: DefaultBoostMultiplier},
		TauForward: DefaultTauForward,
		TauReverse: DefaultTauReverse,
		TauCoast:   DefaultTauCoast,
	}
}

func (e Exponential) tau(th Throttle) float64 {
	switch th {
	case ThrottleForward:
		return orDefault(e.TauForward, DefaultTauForward)
	case ThrottleReverse:
		return orDefault(e.TauReverse, DefaultTauReverse)
	default:
		return orDefault(e.TauCoast, DefaultTauCoast)
	}
}

func (e Exponential) Step(v float64, th Throttle, boosting bool, dt float64) float64 {
	if dt <= 0 {
		return v
	}
	target := e.TargetSpeed(th, boosting)
	k := 1 - math.Exp(-dt/e.tau(th))
	return v + (target-v)*k
}

func (e Exponential) Validate() error {
	if err := e.Limits.validate(); err != nil {
		return err
	}
	if e.TauForward < 0 || e.TauReverse < 0 || e.TauCoast < 0 {
		return fmt.Errorf("%w: time constants must not be negative", ErrInvalidModel)
	}
	return nil
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}
