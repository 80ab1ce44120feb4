package kart

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"github.com/cxd309/kart-engine/internal/geom"
)

// Host is the rigid-body engine a Controller drives.
type Host interface {
	geom.RayCaster
	Pose() (position mgl64.Vec3, rotation mgl64.Quat)
	Velocity() mgl64.Vec3
	SetVelocity(v mgl64.Vec3)
	SetRotation(rot mgl64.Quat)
	ApplyForceAtPoint(force, point mgl64.Vec3)
}

// InputSource is the input-polling layer.
type InputSource interface {
	AxisRaw(name string) float64
	AxisSmoothed(name string) float64
	KeyHeld(key string) bool
}

// Bindings names the axis and keys a Controller polls.
type Bindings struct {
	SteerAxis string `json:"steer_axis"`
	Forward   string `json:"forward"`
	Reverse   string `json:"reverse"`
	Drift     string `json:"drift"`
}

// DefaultBindings returns the stock keyboard layout.
func DefaultBindings() Bindings {
	return Bindings{SteerAxis: "Horizontal", Forward: "w", Reverse: "s", Drift: "space"}
}

// ReadInput polls src once. Axis values are clamped to [-1, 1].
func ReadInput(src InputSource, b Bindings) Input {
	return Input{
		Forward:       src.KeyHeld(b.Forward),
		Reverse:       src.KeyHeld(b.Reverse),
		Drift:         src.KeyHeld(b.Drift),
		Steer:         mgl64.Clamp(src.AxisRaw(b.SteerAxis), -1, 1),
		SteerSmoothed: mgl64.Clamp(src.AxisSmoothed(b.SteerAxis), -1, 1),
	}
}

// Controller runs a Kart against a Host once per physics tick.
type Controller struct {
	kart     *Kart
	host     Host
	input    InputSource
	bindings Bindings
	log      zerolog.Logger
}

// NewController wires k to a host and an input source.
func NewController(k *Kart, host Host, input InputSource, bindings Bindings, log zerolog.Logger) *Controller {
	return &Controller{kart: k, host: host, input: input, bindings: bindings, log: log}
}

// FixedUpdate reads input, steps the kart and writes forces, rotation and
// velocity back to the host.
func (c *Controller) FixedUpdate(dt Delta) Result {
	pos, rot := c.host.Pose()
	in := ReadInput(c.input, c.bindings)
	res := c.kart.Step(Body{Position: pos, Rotation: rot, Velocity: c.host.Velocity()}, c.host, in, dt)

	for _, f := range res.Forces {
		c.host.ApplyForceAtPoint(f.Vector, f.Point)
	}
	c.host.SetRotation(res.Rotation)
	c.host.SetVelocity(res.Velocity)

	switch {
	case res.DriftEffect.Engaged:
		c.log.Debug().
			Str("mode", string(res.Drift.Mode)).
			Float64("speed", res.ForwardSpeed).
			Msg("drift engaged")
	case res.DriftEffect.Released:
		c.log.Debug().
			Float64("drift_time", res.DriftEffect.Charge).
			Float64("boost", res.DriftEffect.Boost).
			Msg("drift released")
	}
	return res
}

// BoostDuration returns the boost earned by the last released drift.
func (c *Controller) BoostDuration() float64 { return c.kart.BoostDuration() }
