package kinematics

import (
	"fmt"
	"math"
)

// ConstantModelName is the JSON discriminator string for the Constant model.
const ConstantModelName = "constant"

// ConstantAcceleration implements MotionModel using fixed acceleration and deceleration rates.
// Speed ramps linearly toward the throttle target and stops exactly on it.
//
// JSON discriminator: "model": "constant"
type ConstantAcceleration struct {
	Limits
	AAcc float64 `json:"a_acc"` // m/s² when the target is faster than the current speed
	ADcc float64 `json:"a_dcc"` // m/s² (positive) when the target is slower
}

func (c ConstantAcceleration) Step(v float64, th Throttle, boosting bool, dt float64) float64 {
	target := c.TargetSpeed(th, boosting)
	if dt <= 0 {
		return v
	}
	if v < target {
		if c.AAcc <= 0 {
			return target
		}
		return math.Min(v+c.AAcc*dt, target)
	}
	if c.ADcc <= 0 {
		return target
	}
	return math.Max(v-c.ADcc*dt, target)
}

func (c ConstantAcceleration) Validate() error {
	if err := c.Limits.validate(); err != nil {
		return err
	}
	if c.AAcc < 0 || c.ADcc < 0 {
		return fmt.Errorf("%w: a_acc and a_dcc must not be negative", ErrInvalidModel)
	}
	return nil
}
