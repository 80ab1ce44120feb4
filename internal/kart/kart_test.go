package kart

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cxd309/kart-engine/internal/drift"
	"github.com/cxd309/kart-engine/internal/geom"
	"github.com/cxd309/kart-engine/internal/kinematics"
	"github.com/cxd309/kart-engine/internal/suspension"
)

// plane is a horizontal floor at y = 0.
type plane struct{}

func (plane) Raycast(origin, dir mgl64.Vec3, maxDist float64) (geom.Hit, bool) {
	dir = dir.Normalize()
	if dir.Y() >= 0 {
		return geom.Hit{}, false
	}
	d := origin.Y() / -dir.Y()
	if d < 0 || d > maxDist {
		return geom.Hit{}, false
	}
	return geom.Hit{Distance: d, Normal: geom.WorldUp, SurfaceID: "floor"}, true
}

var step = Delta{Fixed: 0.02, Frame: 0.02}

func restHeight(cfg Config) float64 {
	return cfg.Suspension.RestLength + cfg.Suspension.WheelRadius
}

func newKart(t *testing.T, cfg Config) *Kart {
	t.Helper()
	k, err := New(cfg)
	require.NoError(t, err)
	return k
}

func TestNew_Validation(t *testing.T) {
	_, err := New(DefaultConfig())
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Drive.Model = nil
	_, err = New(cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg = DefaultConfig()
	cfg.Suspension.SpringTravel = cfg.Suspension.RestLength
	_, err = New(cfg)
	assert.ErrorIs(t, err, suspension.ErrInvalidConfig)

	cfg = DefaultConfig()
	cfg.Drive.Model = kinematics.Exponential{}
	_, err = New(cfg)
	assert.ErrorIs(t, err, kinematics.ErrInvalidModel)

	cfg = DefaultConfig()
	cfg.Drift.MinDriftSpeed = -1
	_, err = New(cfg)
	assert.ErrorIs(t, err, drift.ErrInvalidConfig)
}

func TestStep_RestPoseIsStill(t *testing.T) {
	cfg := DefaultConfig()
	k := newKart(t, cfg)
	rot := geom.YawRotation(40)
	body := Body{Position: mgl64.Vec3{2, restHeight(cfg), 5}, Rotation: rot}

	res := k.Step(body, plane{}, Input{}, step)

	require.True(t, res.Grounded)
	assert.Equal(t, 4, res.GroundedCount)
	var net mgl64.Vec3
	for _, f := range res.Forces {
		net = net.Add(f.Vector)
	}
	assert.InDelta(t, 0, net.Len(), 1e-9)
	assert.True(t, res.Rotation.ApproxEqualThreshold(rot, 1e-9), "no orientation correction")
	assert.InDelta(t, 0, res.Velocity.Len(), 1e-12)
	assert.Equal(t, drift.Neutral, res.Drift.Mode)
}

func TestStep_DriveForwardKeepsVerticalVelocity(t *testing.T) {
	cfg := DefaultConfig()
	k := newKart(t, cfg)
	body := Body{
		Position: mgl64.Vec3{0, restHeight(cfg), 0},
		Rotation: mgl64.QuatIdent(),
		Velocity: mgl64.Vec3{0, -2, 0},
	}

	var prev float64
	for i := 0; i < 50; i++ {
		res := k.Step(body, plane{}, Input{Forward: true}, step)
		require.Greater(t, res.Motion.CurrentSpeed, prev)
		assert.Equal(t, -2.0, res.Velocity.Y())
		assert.InDelta(t, 0, res.Velocity.X(), 1e-12, "no steer, no sideways motion")
		assert.InDelta(t, res.Motion.CurrentSpeed, res.Velocity.Z(), 1e-12)
		prev = res.Motion.CurrentSpeed
	}
	assert.Less(t, prev, DefaultMaxSpeed)
}

func TestStep_ReverseAndCoast(t *testing.T) {
	cfg := DefaultConfig()
	k := newKart(t, cfg)
	body := Body{Position: mgl64.Vec3{0, restHeight(cfg), 0}, Rotation: mgl64.QuatIdent()}

	res := k.Step(body, plane{}, Input{Reverse: true}, step)
	assert.Less(t, res.Motion.CurrentSpeed, 0.0)
	assert.Less(t, res.Velocity.Z(), 0.0)

	res = k.Step(body, plane{}, Input{Forward: true, Reverse: true}, step)
	assert.Greater(t, res.Motion.CurrentSpeed, -1.0, "both keys coast back toward zero")
}

func TestStep_SteeringYawsTowardAxis(t *testing.T) {
	cfg := DefaultConfig()
	body := Body{
		Position: mgl64.Vec3{0, restHeight(cfg), 0},
		Rotation: mgl64.QuatIdent(),
		Velocity: mgl64.Vec3{0, 0, 15},
	}

	right := newKart(t, cfg).Step(body, plane{}, Input{Steer: 1}, step)
	assert.InDelta(t, 10, right.SteerValue, 1e-9)
	want := 10 * geom.Blend(kinematics.DefaultYawRate, step.Frame)
	assert.InDelta(t, want, geom.Yaw(right.Rotation), 1e-6)

	left := newKart(t, cfg).Step(body, plane{}, Input{Steer: -1}, step)
	assert.InDelta(t, 360-want, geom.Yaw(left.Rotation), 1e-6)

	// Pitch and roll are left alone by steering.
	assert.InDelta(t, 0, geom.BasisOf(right.Rotation).Up.Sub(geom.WorldUp).Len(), 1e-9)
}

func TestStep_SmoothedSteer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Drive.SmoothedSteer = true
	body := Body{
		Position: mgl64.Vec3{0, restHeight(cfg), 0},
		Rotation: mgl64.QuatIdent(),
		Velocity: mgl64.Vec3{0, 0, 15},
	}
	res := newKart(t, cfg).Step(body, plane{}, Input{Steer: 1, SteerSmoothed: 0.5}, step)
	assert.InDelta(t, 5, res.SteerValue, 1e-9)
}

func TestStep_DriftOverridesSteerAndPushesSideways(t *testing.T) {
	cfg := DefaultConfig()
	k := newKart(t, cfg)
	body := Body{
		Position: mgl64.Vec3{0, restHeight(cfg), 0},
		Rotation: mgl64.QuatIdent(),
		Velocity: mgl64.Vec3{0, 0, 20},
	}

	res := k.Step(body, plane{}, Input{Drift: true, Steer: 0.3}, step)
	require.True(t, res.DriftEffect.Engaged)
	assert.Equal(t, drift.Right, res.Drift.Mode)
	assert.InDelta(t, 20/1.5*drift.DefaultInnerSteer, res.SteerValue, 1e-9)

	require.Len(t, res.Forces, 5)
	lateral := res.Forces[4]
	assert.InDelta(t, -cfg.Drift.CentripetalForce*step.Frame, lateral.Vector.X(), 1e-9)
	assert.Equal(t, body.Position, lateral.Point)

	res = k.Step(body, plane{}, Input{Drift: true, Steer: -0.3}, step)
	assert.Equal(t, drift.Right, res.Drift.Mode, "side is fixed at engagement")
	assert.InDelta(t, 20/1.5*drift.DefaultOuterSteer, res.SteerValue, 1e-9)
}

func TestStep_DriftNeedsGround(t *testing.T) {
	k := newKart(t, DefaultConfig())
	body := Body{
		Position: mgl64.Vec3{0, 5, 0},
		Rotation: mgl64.QuatIdent(),
		Velocity: mgl64.Vec3{0, 0, 20},
	}
	res := k.Step(body, plane{}, Input{Drift: true, Steer: 1}, step)
	assert.False(t, res.Grounded)
	assert.Equal(t, drift.Neutral, res.Drift.Mode)
	assert.Empty(t, res.Forces)
}

func TestStep_DriftReleaseAwardsBoost(t *testing.T) {
	cfg := DefaultConfig()
	k := newKart(t, cfg)
	body := Body{
		Position: mgl64.Vec3{0, restHeight(cfg), 0},
		Rotation: mgl64.QuatIdent(),
		Velocity: mgl64.Vec3{0, 0, 20},
	}
	for i := 0; i < 100; i++ { // two seconds
		k.Step(body, plane{}, Input{Forward: true, Drift: true, Steer: 1}, step)
	}
	assert.InDelta(t, 2, k.DriftState().DriftTime, 1e-9)

	res := k.Step(body, plane{}, Input{Forward: true, Steer: 1}, step)
	require.True(t, res.DriftEffect.Released)
	assert.Equal(t, 0.75, k.BoostDuration())
	assert.Zero(t, res.Motion.BoostTimer, "boost is not consumed automatically")
}

func TestGrantBoost(t *testing.T) {
	cfg := DefaultConfig()
	body := Body{Position: mgl64.Vec3{0, restHeight(cfg), 0}, Rotation: mgl64.QuatIdent()}

	plain := newKart(t, cfg)
	boosted := newKart(t, cfg)
	boosted.GrantBoost(0.5)
	boosted.GrantBoost(0.2)
	assert.Equal(t, 0.5, boosted.Motion().BoostTimer, "a shorter grant does not cut the window")

	var a, b Result
	for i := 0; i < 25; i++ {
		a = plain.Step(body, plane{}, Input{Forward: true}, step)
		b = boosted.Step(body, plane{}, Input{Forward: true}, step)
	}
	assert.Greater(t, b.Motion.CurrentSpeed, a.Motion.CurrentSpeed)
	assert.InDelta(t, 0, b.Motion.BoostTimer, 1e-9)

	for i := 0; i < 5; i++ {
		b = boosted.Step(body, plane{}, Input{Forward: true}, step)
	}
	assert.Zero(t, b.Motion.BoostTimer)
}

func TestDelta_FrameFallsBackToFixed(t *testing.T) {
	assert.Equal(t, 0.02, Delta{Fixed: 0.02}.frame())
	assert.Equal(t, 0.01, Delta{Fixed: 0.02, Frame: 0.01}.frame())
}

func TestReset(t *testing.T) {
	cfg := DefaultConfig()
	k := newKart(t, cfg)
	body := Body{Position: mgl64.Vec3{0, 0.6, 0}, Rotation: mgl64.QuatIdent()}
	k.Step(body, plane{}, Input{Forward: true}, step)
	k.GrantBoost(1)
	k.Reset()

	assert.Equal(t, Motion{}, k.Motion())
	assert.Equal(t, drift.State{Mode: drift.Neutral}, k.DriftState())
	for _, c := range k.Corners() {
		assert.Equal(t, cfg.Suspension.RestLength, c.Length)
		assert.False(t, c.Grounded)
	}
}
