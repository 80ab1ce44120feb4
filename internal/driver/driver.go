// Package driver defines the driver, vehicle and input-script types used in the
// kart simulation, along with the SimDriver that runs one kart on a rigid body.
package driver

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"github.com/cxd309/kart-engine/internal/drift"
	"github.com/cxd309/kart-engine/internal/geom"
	"github.com/cxd309/kart-engine/internal/kart"
	"github.com/cxd309/kart-engine/internal/rigid"
	"github.com/cxd309/kart-engine/internal/suspension"
	"github.com/cxd309/kart-engine/internal/terrain"
)

// DriverID is a unique string identifier for a driver.
type DriverID = string

// DriverState describes what a kart is doing after a step.
type DriverState string

const (
	StateIdle     DriverState = "idle"
	StateDriving  DriverState = "driving"
	StateDrifting DriverState = "drifting"
	StateBoosting DriverState = "boosting"
	StateAirborne DriverState = "airborne"
)

// idleSpeed is the speed below which a grounded kart counts as idle, m/s.
const idleSpeed = 0.05

// Spawn places a kart. Without Height the kart starts at rest on the terrain below (X, Z).
type Spawn struct {
	X      float64  `json:"x"`
	Z      float64  `json:"z"`
	Yaw    float64  `json:"yaw,omitempty"`    // degrees, from +Z toward +X
	Height *float64 `json:"height,omitempty"` // absolute Y of the body centre
}

// Driver is the static definition of one scripted kart.
type Driver struct {
	DriverID DriverID     `json:"driver_id"`
	Vehicle  Vehicle      `json:"vehicle"`
	Spawn    Spawn        `json:"spawn"`
	Script   []InputFrame `json:"script"`

	// AutoBoost grants every boost earned by a drift as soon as the drift ends,
	// standing in for the race system that would otherwise consume it.
	AutoBoost        bool           `json:"auto_boost,omitempty"`
	SteerSensitivity float64        `json:"steer_sensitivity,omitempty"` // axis units per second
	Bindings         *kart.Bindings `json:"bindings,omitempty"`
}

// SimDriver is a Driver enriched with live simulation state.
type SimDriver struct {
	Driver
	Body         *rigid.Body
	State        DriverState
	DriftCount   int // drifts engaged
	BoostsEarned int // drifts released with a non-zero boost
	PadBoosts    int // steps spent on a boost pad
	Contacts     int // steps the chassis collider touched the terrain

	kart       *kart.Kart
	controller *kart.Controller
	input      *ScriptInput
	terrain    *terrain.Terrain
	last       kart.Result
}

// NewSimDriver builds the kart, rigid body and input cursor for d on ter.
func NewSimDriver(d Driver, ter *terrain.Terrain, log zerolog.Logger) (*SimDriver, error) {
	if d.Vehicle.Kart.Drive.Model == nil {
		d.Vehicle.Kart = kart.DefaultConfig()
	}
	if d.Vehicle.Mass == 0 {
		d.Vehicle.Mass = DefaultMass
	}
	k, err := kart.New(d.Vehicle.Kart)
	if err != nil {
		return nil, fmt.Errorf("vehicle %q: %w", d.Vehicle.Name, err)
	}

	pos, err := spawnPosition(d.Spawn, d.Vehicle.Kart.Suspension, ter)
	if err != nil {
		return nil, err
	}
	body, err := rigid.NewBody(d.Vehicle.Mass, d.Vehicle.Kart.Suspension.Radius, pos, geom.YawRotation(d.Spawn.Yaw))
	if err != nil {
		return nil, err
	}
	body.ContactRadius = colliderRadius(d.Vehicle, k)
	if body.ContactRadius < 0 {
		return nil, fmt.Errorf("vehicle %q: collider radius must not be negative", d.Vehicle.Name)
	}

	bindings := kart.DefaultBindings()
	if d.Bindings != nil {
		bindings = *d.Bindings
	}
	input, err := NewScriptInput(d.Script, bindings, d.SteerSensitivity)
	if err != nil {
		return nil, err
	}

	host := rigid.Host{Body: body, World: ter}
	return &SimDriver{
		Driver:     d,
		Body:       body,
		State:      StateIdle,
		kart:       k,
		controller: kart.NewController(k, host, input, bindings, log.With().Str("driver", d.DriverID).Logger()),
		input:      input,
		terrain:    ter,
	}, nil
}

func spawnPosition(s Spawn, susp suspension.Config, ter *terrain.Terrain) (mgl64.Vec3, error) {
	if s.Height != nil {
		return mgl64.Vec3{s.X, *s.Height, s.Z}, nil
	}
	ground, ok := ter.HeightAt(s.X, s.Z)
	if !ok {
		return mgl64.Vec3{}, fmt.Errorf("no terrain below spawn (%g, %g)", s.X, s.Z)
	}
	return mgl64.Vec3{s.X, ground + susp.EffectiveRest() + susp.WheelRadius, s.Z}, nil
}

func colliderRadius(v Vehicle, k *kart.Kart) float64 {
	if v.ColliderRadius != 0 {
		return v.ColliderRadius
	}
	susp := k.Config().Suspension
	minLength, _, _ := susp.Limits()
	return minLength + susp.WheelRadius
}

// Step reads the script at time t and runs one kart update against the body.
// Forces are queued on the body; call Integrate to apply them.
func (s *SimDriver) Step(t float64, dt kart.Delta) kart.Result {
	s.input.Advance(t, dt.Frame)
	res := s.controller.FixedUpdate(dt)

	if res.DriftEffect.Engaged {
		s.DriftCount++
	}
	if res.DriftEffect.Released && res.DriftEffect.Boost > 0 {
		s.BoostsEarned++
		if s.AutoBoost {
			s.kart.GrantBoost(res.DriftEffect.Boost)
		}
	}
	if boost := s.padBoost(); boost > 0 {
		s.PadBoosts++
		s.kart.GrantBoost(boost)
	}

	s.last = res
	s.State = stateOf(res, s.kart.Motion())
	return res
}

// padBoost returns the largest boost among the pads under grounded corners.
func (s *SimDriver) padBoost() float64 {
	var boost float64
	for _, c := range s.kart.Corners() {
		if !c.Grounded || c.SurfaceID == "" {
			continue
		}
		surf, err := s.terrain.GetSurfaceByID(c.SurfaceID)
		if err != nil || surf.Kind != terrain.KindPad {
			continue
		}
		if surf.Boost > boost {
			boost = surf.Boost
		}
	}
	return boost
}

func stateOf(res kart.Result, m kart.Motion) DriverState {
	switch {
	case !res.Grounded:
		return StateAirborne
	case res.Drift.Drifting():
		return StateDrifting
	case m.BoostTimer > 0:
		return StateBoosting
	case abs(m.CurrentSpeed) < idleSpeed:
		return StateIdle
	default:
		return StateDriving
	}
}

// Integrate advances the body by the fixed step under gravity and keeps the
// chassis collider out of the terrain.
func (s *SimDriver) Integrate(fixedDt float64, gravity mgl64.Vec3) error {
	s.Body.Integrate(fixedDt, gravity)
	if _, hit := s.Body.ResolveContact(s.terrain); hit {
		s.Contacts++
	}
	if !s.Body.Finite() {
		return fmt.Errorf("body state is not finite")
	}
	return nil
}

// Kart returns the driver's kart.
func (s *SimDriver) Kart() *kart.Kart { return s.kart }

// BoostDuration returns the boost earned by the last released drift.
func (s *SimDriver) BoostDuration() float64 { return s.controller.BoostDuration() }

// DriverLog is a point-in-time snapshot of a SimDriver's state.
type DriverLog struct {
	DriverID        DriverID                       `json:"driver_id"`
	Position        terrain.Coordinate             `json:"position"`
	Velocity        terrain.Coordinate             `json:"velocity"`
	Speed           float64                        `json:"speed"`            // smoothed forward speed, m/s
	Yaw             float64                        `json:"yaw"`              // degrees
	State           DriverState                    `json:"state"`
	GroundedCorners int                            `json:"grounded_corners"`
	SpringLengths   [suspension.NumCorners]float64 `json:"spring_lengths"`
	DriftMode       drift.Mode                     `json:"drift_mode"`
	DriftTime       float64                        `json:"drift_time"`
	BoostDuration   float64                        `json:"boost_duration"`
	BoostTimer      float64                        `json:"boost_timer"`
}

// GetLog returns a point-in-time snapshot of the driver state.
func (s *SimDriver) GetLog() DriverLog {
	var lengths [suspension.NumCorners]float64
	for i, c := range s.kart.Corners() {
		lengths[i] = c.Length
	}
	ds := s.kart.DriftState()
	m := s.kart.Motion()
	return DriverLog{
		DriverID:        s.DriverID,
		Position:        terrain.CoordinateOf(s.Body.Position),
		Velocity:        terrain.CoordinateOf(s.Body.Velocity),
		Speed:           m.CurrentSpeed,
		Yaw:             geom.Yaw(s.Body.Rotation),
		State:           s.State,
		GroundedCorners: s.last.GroundedCount,
		SpringLengths:   lengths,
		DriftMode:       ds.Mode,
		DriftTime:       ds.DriftTime,
		BoostDuration:   ds.BoostDuration,
		BoostTimer:      m.BoostTimer,
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
