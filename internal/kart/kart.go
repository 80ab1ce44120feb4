// Package kart composes the suspension, aligner, drive integrator and drift
// machine into a single fixed-step update.
//
// Step is free of host callbacks: it reads a body snapshot and an input
// snapshot and returns the forces, rotation and velocity to write back.
// Controller is the thin adapter a host engine calls every physics tick.
package kart

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/cxd309/kart-engine/internal/drift"
	"github.com/cxd309/kart-engine/internal/geom"
	"github.com/cxd309/kart-engine/internal/kinematics"
	"github.com/cxd309/kart-engine/internal/suspension"
)

// Body is the snapshot of the host rigid body a step reads.
type Body struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Velocity mgl64.Vec3
}

// Input is one step's input snapshot.
type Input struct {
	Forward       bool
	Reverse       bool
	Drift         bool
	Steer         float64 // raw axis in [-1, 1]
	SteerSmoothed float64 // smoothed axis in [-1, 1]
}

// Throttle returns the drive request for the held keys.
func (in Input) Throttle() kinematics.Throttle {
	return kinematics.ThrottleOf(in.Forward, in.Reverse)
}

// Delta carries the fixed physics step and the frame time separately.
// Forces use Fixed; smoothing uses Frame. A zero Frame falls back to Fixed.
type Delta struct {
	Fixed float64
	Frame float64
}

func (d Delta) frame() float64 {
	if d.Frame > 0 {
		return d.Frame
	}
	return d.Fixed
}

// Motion is the drive state carried between steps.
type Motion struct {
	CurrentSpeed float64 `json:"current_speed"` // signed, smoothed, m/s
	BoostTimer   float64 `json:"boost_timer"`   // s remaining
}

// Result is everything one step asks the host to apply, plus diagnostics.
type Result struct {
	Forces        []geom.Force
	Rotation      mgl64.Quat
	Velocity      mgl64.Vec3
	Grounded      bool
	GroundedCount int
	ForwardSpeed  float64 // body-local forward speed read at the start of the step
	SteerValue    float64 // degrees
	Drift         drift.State
	DriftEffect   drift.Effect
	Motion        Motion
}

// Kart is one vehicle's core state.
type Kart struct {
	cfg        Config
	suspension *suspension.Model
	drift      *drift.Machine
	motion     Motion
}

// New validates cfg and builds a kart at rest.
func New(cfg Config) (*Kart, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	susp, err := suspension.New(cfg.Suspension)
	if err != nil {
		return nil, err
	}
	dm, err := drift.NewMachine(cfg.Drift)
	if err != nil {
		return nil, err
	}
	return &Kart{cfg: cfg, suspension: susp, drift: dm}, nil
}

// Step runs suspension, alignment, drift and drive in that order.
func (k *Kart) Step(body Body, world geom.RayCaster, in Input, dt Delta) Result {
	frameDt := dt.frame()

	susp := k.suspension.Step(body.Position, body.Rotation, world, dt.Fixed)
	rot := k.cfg.Align.Apply(body.Rotation, susp.Normals, frameDt)
	basis := geom.BasisOf(rot)
	forwardSpeed := body.Velocity.Dot(basis.Forward)

	eff := k.drift.Step(drift.Input{
		Held:         in.Drift,
		Grounded:     susp.Grounded,
		Steer:        in.Steer,
		ForwardSpeed: forwardSpeed,
		Dt:           frameDt,
	})

	forces := susp.Forces
	if eff.LateralForce != 0 {
		forces = append(forces, geom.Force{
			Vector: basis.Right.Mul(eff.LateralForce),
			Point:  body.Position,
		})
	}

	boosting := k.motion.BoostTimer > 0
	k.motion.CurrentSpeed = k.cfg.Drive.Model.Step(k.motion.CurrentSpeed, in.Throttle(), boosting, frameDt)
	k.motion.BoostTimer = math.Max(0, k.motion.BoostTimer-frameDt)

	direction := in.Steer
	if k.cfg.Drive.SmoothedSteer {
		direction = in.SteerSmoothed
	}
	if eff.Override {
		direction = eff.Steer
	}
	steer := k.cfg.Drive.Steering.Value(forwardSpeed, direction)
	if yaw := k.cfg.Drive.Steering.YawDelta(steer, frameDt); yaw != 0 {
		rot = geom.YawRotation(yaw).Mul(rot).Normalize()
	}

	vel := rot.Rotate(geom.LocalForward).Mul(k.motion.CurrentSpeed)
	vel[1] = body.Velocity.Y()

	return Result{
		Forces:        forces,
		Rotation:      rot,
		Velocity:      vel,
		Grounded:      susp.Grounded,
		GroundedCount: susp.GroundedCount,
		ForwardSpeed:  forwardSpeed,
		SteerValue:    steer,
		Drift:         k.drift.State(),
		DriftEffect:   eff,
		Motion:        k.motion,
	}
}

// GrantBoost starts a boost window of at least seconds. An active longer window is kept.
func (k *Kart) GrantBoost(seconds float64) {
	k.motion.BoostTimer = math.Max(k.motion.BoostTimer, seconds)
}

// BoostDuration returns the boost earned by the last released drift.
func (k *Kart) BoostDuration() float64 { return k.drift.BoostDuration() }

func (k *Kart) Config() Config                                    { return k.cfg }
func (k *Kart) Motion() Motion                                    { return k.motion }
func (k *Kart) DriftState() drift.State                           { return k.drift.State() }
func (k *Kart) Corners() [suspension.NumCorners]suspension.Corner { return k.suspension.Corners() }

// Reset returns springs, drift and motion to rest.
func (k *Kart) Reset() {
	k.suspension.Reset()
	k.drift.Reset()
	k.motion = Motion{}
}
