// Package align turns sampled ground normals into a smoothed body rotation.
package align

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/cxd309/kart-engine/internal/geom"
)

// DefaultRate is the approach rate toward the ground normal, per second.
const DefaultRate = 7.5

// ErrInvalidConfig is wrapped by every error Validate returns.
var ErrInvalidConfig = errors.New("invalid align config")

// Mode selects how the normals of several grounded corners are combined.
type Mode string

const (
	// PerCorner nudges the rotation toward each corner's normal in turn,
	// so later corners act on the already corrected rotation.
	PerCorner Mode = "per_corner"
	// Average applies a single correction toward the mean normal.
	Average Mode = "average"
)

// Config controls the aligner.
type Config struct {
	Rate float64 `json:"rate"` // per second; 0 disables alignment
	Mode Mode    `json:"mode,omitempty"`
}

// DefaultConfig returns the per-corner aligner at DefaultRate.
func DefaultConfig() Config {
	return Config{Rate: DefaultRate, Mode: PerCorner}
}

// Validate rejects negative rates and unknown modes.
func (c Config) Validate() error {
	if c.Rate < 0 {
		return fmt.Errorf("%w: rate must not be negative, got %g", ErrInvalidConfig, c.Rate)
	}
	switch c.Mode {
	case "", PerCorner, Average:
		return nil
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, c.Mode)
	}
}

// Toward rotates rot so that its up axis moves toward normal, by the
// exponential blend of rate over frameDt. A zero normal leaves rot unchanged.
func Toward(rot mgl64.Quat, normal mgl64.Vec3, rate, frameDt float64) mgl64.Quat {
	t := geom.Blend(rate, frameDt)
	if t == 0 || normal.Len() == 0 {
		return rot
	}
	up := rot.Rotate(geom.LocalUp)
	target := mgl64.QuatBetweenVectors(up, normal).Mul(rot)
	return mgl64.QuatSlerp(rot, target, t).Normalize()
}

// Apply corrects rot toward the given ground normals. No normals means no contact
// and no correction.
func (c Config) Apply(rot mgl64.Quat, normals []mgl64.Vec3, frameDt float64) mgl64.Quat {
	if len(normals) == 0 {
		return rot
	}
	if c.Mode == Average {
		var sum mgl64.Vec3
		for _, n := range normals {
			sum = sum.Add(n)
		}
		return Toward(rot, sum, c.Rate, frameDt)
	}
	for _, n := range normals {
		rot = Toward(rot, n, c.Rate, frameDt)
	}
	return rot
}
