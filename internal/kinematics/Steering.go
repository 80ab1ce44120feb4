package kinematics

import (
	"fmt"
	"math"

	"github.com/cxd309/kart-engine/internal/geom"
)

// Steering defaults.
const (
	DefaultSteerConstant  = 1.0
	DefaultSpeedThreshold = 30.0
	DefaultFastDivisor    = 4.0
	DefaultSlowDivisor    = 1.5
	DefaultYawRate        = 3.0
)

// Steering turns forward speed and a steer direction into a yaw request.
// Steering authority scales with speed and drops once the kart is fast.
type Steering struct {
	SteerConstant  float64 `json:"steer_constant"`
	SpeedThreshold float64 `json:"speed_threshold,omitempty"` // m/s
	FastDivisor    float64 `json:"fast_divisor,omitempty"`
	SlowDivisor    float64 `json:"slow_divisor,omitempty"`
	YawRate        float64 `json:"yaw_rate,omitempty"` // per second
}

// DefaultSteering returns the stock steering law.
func DefaultSteering() Steering {
	return Steering{
		SteerConstant:  DefaultSteerConstant,
		SpeedThreshold: DefaultSpeedThreshold,
		FastDivisor:    DefaultFastDivisor,
		SlowDivisor:    DefaultSlowDivisor,
		YawRate:        DefaultYawRate,
	}
}

// Value returns the steering magnitude in degrees for the given local forward
// speed and steer direction. Reversing flips the turn, as a real kart does.
func (s Steering) Value(forwardSpeed, direction float64) float64 {
	div := orDefault(s.SlowDivisor, DefaultSlowDivisor)
	if math.Abs(forwardSpeed) > orDefault(s.SpeedThreshold, DefaultSpeedThreshold) {
		div = orDefault(s.FastDivisor, DefaultFastDivisor)
	}
	return forwardSpeed / div * direction * s.SteerConstant
}

// YawDelta returns the part of steerValue applied this frame.
func (s Steering) YawDelta(steerValue, frameDt float64) float64 {
	return steerValue * geom.Blend(orDefault(s.YawRate, DefaultYawRate), frameDt)
}

func (s Steering) Validate() error {
	if s.SpeedThreshold < 0 || s.FastDivisor < 0 || s.SlowDivisor < 0 || s.YawRate < 0 {
		return fmt.Errorf("%w: steering parameters must not be negative", ErrInvalidModel)
	}
	return nil
}
