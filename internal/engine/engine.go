// Package engine implements the kart simulation loop.
//
// The simulation advances in fixed timesteps. Each step has two passes:
//
//  1. Control pass - every driver replays its input script and runs one kart
//     update, which queues suspension and drift forces on its rigid body and
//     writes the new rotation and velocity.
//
//  2. Integration pass - every body integrates the queued forces under gravity.
package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cxd309/kart-engine/internal/driver"
	"github.com/cxd309/kart-engine/internal/kart"
	"github.com/cxd309/kart-engine/internal/terrain"
)

// ErrInvalidMeta is returned when the simulation timing cannot be run.
var ErrInvalidMeta = errors.New("invalid simulation meta")

// NewSim constructs a Sim from a SimulationInput, building the terrain and
// placing each driver at its spawn.
func NewSim(input SimulationInput, opts ...Option) (*Sim, error) {
	o := options{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	meta, err := resolveMeta(input.Meta, o.defaults)
	if err != nil {
		return nil, err
	}

	ter, err := terrain.NewTerrain(input.Terrain)
	if err != nil {
		return nil, fmt.Errorf("building terrain: %w", err)
	}

	seen := make(map[driver.DriverID]bool, len(input.DriverList))
	drivers := make([]*driver.SimDriver, 0, len(input.DriverList))
	trackers := make([]*tracker, 0, len(input.DriverList))
	for _, d := range input.DriverList {
		if seen[d.DriverID] {
			return nil, fmt.Errorf("driver %q: duplicate id", d.DriverID)
		}
		seen[d.DriverID] = true

		sd, err := driver.NewSimDriver(d, ter, o.log)
		if err != nil {
			return nil, fmt.Errorf("driver %q: %w", d.DriverID, err)
		}
		drivers = append(drivers, sd)
		trackers = append(trackers, newTracker(sd.Body.Position))
	}

	return &Sim{
		meta:     meta,
		terrain:  ter,
		drivers:  drivers,
		trackers: trackers,
		gravity:  mgl64.Vec3{0, -*meta.Gravity, 0},
		opts:     o,
	}, nil
}

// resolveMeta fills zero fields from d and checks the timing is runnable.
func resolveMeta(m SimulationMeta, d Defaults) (SimulationMeta, error) {
	if m.SimulationID == "" {
		m.SimulationID = uuid.NewString()
	}
	if m.TimeStep == 0 {
		m.TimeStep = d.TimeStep
	}
	if m.RunTime == 0 {
		m.RunTime = d.RunTime
	}
	if m.FrameStep == 0 {
		m.FrameStep = d.FrameStep
	}
	if m.FrameStep == 0 {
		m.FrameStep = m.TimeStep
	}
	if m.Gravity == nil {
		g := DefaultGravity
		if d.Gravity != nil {
			g = *d.Gravity
		}
		m.Gravity = &g
	}
	if m.LogEvery <= 0 {
		m.LogEvery = 1
	}

	switch {
	case !(m.TimeStep > 0) || math.IsInf(m.TimeStep, 0):
		return m, fmt.Errorf("%w: time_step %g must be positive", ErrInvalidMeta, m.TimeStep)
	case !(m.FrameStep > 0) || math.IsInf(m.FrameStep, 0):
		return m, fmt.Errorf("%w: frame_step %g must be positive", ErrInvalidMeta, m.FrameStep)
	case !(m.RunTime >= 0) || math.IsInf(m.RunTime, 0):
		return m, fmt.Errorf("%w: run_time %g must not be negative", ErrInvalidMeta, m.RunTime)
	case math.IsNaN(*m.Gravity) || math.IsInf(*m.Gravity, 0):
		return m, fmt.Errorf("%w: gravity %g must be finite", ErrInvalidMeta, *m.Gravity)
	}
	return m, nil
}

// Meta returns the resolved simulation meta.
func (s *Sim) Meta() SimulationMeta { return s.meta }

// Run executes the full simulation and returns the log.
func (s *Sim) Run() (SimulationLog, error) {
	log := SimulationLog{Meta: s.meta}
	s.opts.log.Info().
		Str("simulation_id", s.meta.SimulationID).
		Int("drivers", len(s.drivers)).
		Float64("run_time", s.meta.RunTime).
		Float64("time_step", s.meta.TimeStep).
		Msg("simulation started")

	// Time is derived from the step index so long runs do not drift.
	for ; ; s.steps++ {
		t := float64(s.steps) * s.meta.TimeStep
		if t > s.meta.RunTime+s.meta.TimeStep*1e-9 {
			break
		}
		if err := s.step(t); err != nil {
			return SimulationLog{}, fmt.Errorf("at t=%.2f: %w", t, err)
		}
		if !s.opts.summaryOnly && s.steps%s.meta.LogEvery == 0 {
			log.Output = append(log.Output, s.row(t))
		}
	}

	log.Summary = s.summarise()
	s.opts.log.Info().
		Str("simulation_id", s.meta.SimulationID).
		Int("steps", s.steps).
		Msg("simulation finished")
	return log, nil
}

// step advances the simulation by one timestep.
func (s *Sim) step(t float64) error {
	dt := kart.Delta{Fixed: s.meta.TimeStep, Frame: s.meta.FrameStep}

	// Pass 1: control.
	results := make([]kart.Result, len(s.drivers))
	for i, d := range s.drivers {
		results[i] = d.Step(t, dt)
	}

	// Pass 2: integration.
	for i, d := range s.drivers {
		if err := d.Integrate(dt.Fixed, s.gravity); err != nil {
			return fmt.Errorf("driver %q: %w", d.DriverID, err)
		}
		s.trackers[i].record(d, results[i])
	}
	return nil
}

// row snapshots all drivers for the log.
func (s *Sim) row(t float64) SimulationLogRow {
	logs := make([]driver.DriverLog, len(s.drivers))
	for i, d := range s.drivers {
		logs[i] = d.GetLog()
	}
	return SimulationLogRow{Timestamp: t, DriverLogs: logs}
}

// RunJSON is the primary entry point for the CLI and WASM targets.
// It accepts a JSON-encoded SimulationInput, runs the simulation, and returns a
// JSON-encoded SimulationLog.
func RunJSON(jsonInput string, opts ...Option) (string, error) {
	var input SimulationInput
	if err := json.Unmarshal([]byte(jsonInput), &input); err != nil {
		return "", fmt.Errorf("invalid input JSON: %w", err)
	}

	sim, err := NewSim(input, opts...)
	if err != nil {
		return "", err
	}

	simLog, err := sim.Run()
	if err != nil {
		return "", err
	}

	out, err := json.Marshal(simLog)
	if err != nil {
		return "", fmt.Errorf("marshaling output: %w", err)
	}
	return string(out), nil
}
