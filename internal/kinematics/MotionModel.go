// Package kinematics defines the MotionModel interface for kart drive response,
// along with built-in implementations and the steering law.
//
// Adding a new drive model requires only implementing MotionModel and registering it
// in the JSON discriminator in the driver package; the kart itself never needs to change.
package kinematics

import (
	"errors"
	"fmt"
)

// ErrInvalidModel is wrapped by every model validation error.
var ErrInvalidModel = errors.New("invalid motion model")

// Throttle is the discrete drive request for one step.
type Throttle string

const (
	ThrottleCoast   Throttle = "coast"
	ThrottleForward Throttle = "forward"
	ThrottleReverse Throttle = "reverse"
)

// ThrottleOf maps the two drive keys to a throttle. Holding both coasts.
func ThrottleOf(forward, reverse bool) Throttle {
	switch {
	case forward && !reverse:
		return ThrottleForward
	case reverse && !forward:
		return ThrottleReverse
	default:
		return ThrottleCoast
	}
}

// MotionModel is the drive contract every kinematics implementation must satisfy.
// Speeds are signed forward speeds in m/s and time is in seconds.
type MotionModel interface {
	// VMax returns the top forward speed without boost.
	VMax() float64

	// TargetSpeed returns the signed speed the throttle asks for.
	TargetSpeed(th Throttle, boosting bool) float64

	// Step advances the smoothed speed v toward the throttle target over dt seconds.
	// Implementations never overshoot the target.
	Step(v float64, th Throttle, boosting bool, dt float64) float64

	// Validate reports whether the model parameters are usable.
	Validate() error
}

// Limits carries the speed targets shared by the built-in models.
type Limits struct {
	VMaxVal         float64 `json:"v_max"`                      // m/s
	ReverseRatio    float64 `json:"reverse_ratio,omitempty"`    // reverse top speed is VMax / ReverseRatio
	BoostMultiplier float64 `json:"boost_multiplier,omitempty"` // forward target scale while boosting
}

const (
	// DefaultReverseRatio divides VMax to give the reverse top speed.
	DefaultReverseRatio = 1.75
	// DefaultBoostMultiplier scales the forward target while a boost runs.
	DefaultBoostMultiplier = 1.5
)

func (l Limits) VMax() float64 { return l.VMaxVal }

// VReverse returns the reverse top speed as a positive magnitude.
func (l Limits) VReverse() float64 {
	r := l.ReverseRatio
	if r == 0 {
		r = DefaultReverseRatio
	}
	return l.VMaxVal / r
}

func (l Limits) TargetSpeed(th Throttle, boosting bool) float64 {
	switch th {
	case ThrottleForward:
		if boosting && l.BoostMultiplier > 0 {
			return l.VMaxVal * l.BoostMultiplier
		}
		return l.VMaxVal
	case ThrottleReverse:
		return -l.VReverse()
	default:
		return 0
	}
}

func (l Limits) validate() error {
	if l.VMaxVal <= 0 {
		return fmt.Errorf("%w: v_max must be positive, got %g", ErrInvalidModel, l.VMaxVal)
	}
	if l.ReverseRatio < 0 {
		return fmt.Errorf("%w: reverse_ratio must not be negative, got %g", ErrInvalidModel, l.ReverseRatio)
	}
	if l.BoostMultiplier < 0 {
		return fmt.Errorf("%w: boost_multiplier must not be negative, got %g", ErrInvalidModel, l.BoostMultiplier)
	}
	return nil
}
