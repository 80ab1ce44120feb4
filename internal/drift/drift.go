// Package drift implements the drift-charge state machine.
//
// A kart enters a drift by holding the drift input while grounded and
// steering. Time spent steering through the drift above the minimum speed
// charges a boost, which is awarded by tier when the drift ends.
package drift

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is wrapped by every error Validate returns.
var ErrInvalidConfig = errors.New("invalid drift config")

// Mode is the drift side.
type Mode string

const (
	Neutral Mode = "neutral"
	Left    Mode = "left"
	Right   Mode = "right"
)

// Side returns +1 for Right, -1 for Left and 0 for Neutral.
func (m Mode) Side() float64 {
	switch m {
	case Right:
		return 1
	case Left:
		return -1
	default:
		return 0
	}
}

// Tier awards Boost seconds to a drift of at least MinTime seconds.
type Tier struct {
	MinTime float64 `json:"min_time"`
	Boost   float64 `json:"boost"`
}

// DefaultTiers is the stock boost table.
var DefaultTiers = []Tier{
	{MinTime: 1.5, Boost: 0.75},
	{MinTime: 4, Boost: 1.5},
	{MinTime: 7, Boost: 2.5},
}

// BoostFor maps a drift time to its boost duration. Thresholds are lower-inclusive;
// a drift shorter than every tier earns nothing.
func BoostFor(driftTime float64, tiers []Tier) float64 {
	var boost, best float64
	found := false
	for _, t := range tiers {
		if driftTime >= t.MinTime && (!found || t.MinTime >= best) {
			boost, best, found = t.Boost, t.MinTime, true
		}
	}
	return boost
}

// Config holds the drift tuning.
type Config struct {
	MinDriftSpeed    float64 `json:"min_drift_speed"`   // m/s
	CentripetalForce float64 `json:"centripetal_force"` // N, scaled by frame time
	InnerSteer       float64 `json:"inner_steer,omitempty"`
	OuterSteer       float64 `json:"outer_steer,omitempty"`

	// LegacyAccumulation keeps DriftTime across drift sessions instead of
	// zeroing it on engagement and on exit.
	LegacyAccumulation bool `json:"legacy_accumulation,omitempty"`

	Tiers []Tier `json:"tiers,omitempty"`
}

// Steer override defaults.
const (
	DefaultInnerSteer = 1.5
	DefaultOuterSteer = 0.5
)

// DefaultConfig returns stock drift tuning.
func DefaultConfig() Config {
	return Config{
		MinDriftSpeed:    10,
		CentripetalForce: 5000,
		InnerSteer:       DefaultInnerSteer,
		OuterSteer:       DefaultOuterSteer,
		Tiers:            append([]Tier(nil), DefaultTiers...),
	}
}

// Validate rejects negative tuning and malformed tier tables.
func (c Config) Validate() error {
	if c.MinDriftSpeed < 0 {
		return fmt.Errorf("%w: min_drift_speed must not be negative, got %g", ErrInvalidConfig, c.MinDriftSpeed)
	}
	if c.CentripetalForce < 0 {
		return fmt.Errorf("%w: centripetal_force must not be negative, got %g", ErrInvalidConfig, c.CentripetalForce)
	}
	if c.InnerSteer < 0 || c.OuterSteer < 0 {
		return fmt.Errorf("%w: steer overrides must not be negative", ErrInvalidConfig)
	}
	seen := make(map[float64]bool, len(c.Tiers))
	for _, t := range c.Tiers {
		if t.MinTime < 0 || t.Boost < 0 {
			return fmt.Errorf("%w: tier %+v has a negative field", ErrInvalidConfig, t)
		}
		if seen[t.MinTime] {
			return fmt.Errorf("%w: duplicate tier at %g s", ErrInvalidConfig, t.MinTime)
		}
		seen[t.MinTime] = true
	}
	return nil
}

func (c Config) tiers() []Tier {
	if c.Tiers == nil {
		return DefaultTiers
	}
	return c.Tiers
}

func (c Config) steer() (inner, outer float64) {
	inner, outer = c.InnerSteer, c.OuterSteer
	if inner == 0 {
		inner = DefaultInnerSteer
	}
	if outer == 0 {
		outer = DefaultOuterSteer
	}
	return inner, outer
}

// State is the drift machine state carried between steps.
type State struct {
	Mode          Mode    `json:"mode"`
	DriftTime     float64 `json:"drift_time"`     // s
	BoostDuration float64 `json:"boost_duration"` // s, from the last release
}

// Drifting reports whether a drift is active.
func (s State) Drifting() bool { return s.Mode == Left || s.Mode == Right }

// Input is what the machine reads each step.
type Input struct {
	Held         bool    // drift key
	Grounded     bool    // any corner in contact
	Steer        float64 // raw axis in [-1, 1]
	ForwardSpeed float64 // body-local forward speed, m/s
	Dt           float64 // frame time, s
}

// Effect is what one transition asks of the rest of the kart.
type Effect struct {
	Engaged  bool
	Released bool

	// Override is set while drifting; Steer then replaces the raw axis.
	Override bool
	Steer    float64

	// LateralForce is the signed magnitude along body right.
	LateralForce float64

	DriftTimeDelta float64

	// Charge and Boost are set on release.
	Charge float64
	Boost  float64
}

// Next returns the state after one step and the effects of the transition.
// A drift that would be released in the same step never engages.
func Next(s State, in Input, cfg Config) (State, Effect) {
	var eff Effect
	if s.Mode == Neutral || s.Mode == "" {
		s.Mode = Neutral
		if !in.Held || !in.Grounded || in.Steer == 0 || in.ForwardSpeed < cfg.MinDriftSpeed {
			return s, eff
		}
		s.Mode = Left
		if in.Steer > 0 {
			s.Mode = Right
		}
		if !cfg.LegacyAccumulation {
			s.DriftTime = 0
		}
		eff.Engaged = true
	}

	if !in.Held || in.ForwardSpeed < cfg.MinDriftSpeed {
		eff.Charge = s.DriftTime
		s.BoostDuration = BoostFor(s.DriftTime, cfg.tiers())
		s.Mode = Neutral
		if !cfg.LegacyAccumulation {
			s.DriftTime = 0
		}
		eff.Released = true
		eff.Boost = s.BoostDuration
		return s, eff
	}

	inner, outer := cfg.steer()
	side := s.Mode.Side()
	eff.Override = true
	if in.Steer*side > 0 {
		eff.Steer = side * inner
	} else {
		eff.Steer = side * outer
	}
	if in.Grounded {
		eff.LateralForce = -side * cfg.CentripetalForce * in.Dt
	}
	if in.ForwardSpeed > cfg.MinDriftSpeed && in.Steer != 0 && in.Dt > 0 {
		s.DriftTime += in.Dt
		eff.DriftTimeDelta = in.Dt
	}
	return s, eff
}

// Machine owns a State and steps it with a fixed Config.
type Machine struct {
	cfg   Config
	state State
}

// NewMachine validates cfg and returns a machine in Neutral.
func NewMachine(cfg Config) (*Machine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Machine{cfg: cfg, state: State{Mode: Neutral}}, nil
}

// Step advances the machine by one step.
func (m *Machine) Step(in Input) Effect {
	var eff Effect
	m.state, eff = Next(m.state, in, m.cfg)
	return eff
}

func (m *Machine) State() State           { return m.state }
func (m *Machine) BoostDuration() float64 { return m.state.BoostDuration }

// Reset returns the machine to Neutral and clears the charge and the last boost.
func (m *Machine) Reset() { m.state = State{Mode: Neutral} }
