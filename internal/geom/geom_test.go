package geom

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestBasisOf_Identity(t *testing.T) {
	b := BasisOf(mgl64.QuatIdent())
	assert.True(t, b.Forward.ApproxEqual(LocalForward))
	assert.True(t, b.Right.ApproxEqual(LocalRight))
	assert.True(t, b.Up.ApproxEqual(LocalUp))
}

func TestYawRotation_TurnsNoseRight(t *testing.T) {
	b := BasisOf(YawRotation(90))
	assert.InDelta(t, 1, b.Forward.X(), 1e-9, "forward = %v", b.Forward)
	assert.InDelta(t, 0, b.Forward.Y(), 1e-9, "forward = %v", b.Forward)
	assert.InDelta(t, 0, b.Forward.Z(), 1e-9, "forward = %v", b.Forward)
	assert.InDelta(t, -1, b.Right.Z(), 1e-9, "right = %v", b.Right)
	assert.InDelta(t, 90, Yaw(YawRotation(90)), 1e-9)
	assert.InDelta(t, 270, Yaw(YawRotation(-90)), 1e-9)
}

func TestBlend(t *testing.T) {
	tests := []struct {
		name      string
		rate, dt  float64
		want      float64
		tolerance float64
	}{
		{"zero rate", 0, 0.02, 0, 0},
		{"zero dt", 7.5, 0, 0, 0},
		{"negative dt", 7.5, -1, 0, 0},
		{"small step approximates rate*dt", 3, 0.001, 0.003, 1e-5},
		{"long step saturates", 10, 10, 1, 1e-9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Blend(tt.rate, tt.dt), tt.tolerance)
		})
	}
}

func TestBlend_FrameRateIndependent(t *testing.T) {
	// Two half steps must land where one full step does.
	one := Blend(7.5, 0.02)
	half := Blend(7.5, 0.01)
	two := 1 - (1-half)*(1-half)
	assert.InDelta(t, one, two, 1e-12)
}

func TestNormalizeDeg(t *testing.T) {
	assert.InDelta(t, 350, NormalizeDeg(-10), 1e-9)
	assert.InDelta(t, 10, NormalizeDeg(370), 1e-9)
	assert.InDelta(t, 0, NormalizeDeg(360), 1e-9)
}

func TestFinite(t *testing.T) {
	assert.True(t, Finite(mgl64.Vec3{1, 2, 3}))
	assert.False(t, Finite(mgl64.Vec3{math.NaN(), 0, 0}))
	assert.False(t, Finite(mgl64.Vec3{0, math.Inf(1), 0}))
}
