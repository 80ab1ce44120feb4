package engine

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"github.com/cxd309/kart-engine/internal/driver"
	"github.com/cxd309/kart-engine/internal/terrain"
)

// DefaultGravity is the downward acceleration used when the input leaves it unset, m/s².
const DefaultGravity = 9.81

// SimulationMeta holds the identity and timing parameters for a simulation run.
type SimulationMeta struct {
	SimulationID string   `json:"simulation_id"`
	RunTime      float64  `json:"run_time"`             // seconds
	TimeStep     float64  `json:"time_step"`            // fixed physics step, seconds
	FrameStep    float64  `json:"frame_step,omitempty"` // frame time used for smoothing; 0 = TimeStep
	Gravity      *float64 `json:"gravity,omitempty"`    // downward, m/s²
	LogEvery     int      `json:"log_every,omitempty"`  // record every Nth step; 0 = every step
}

// SimulationInput is the JSON-serialisable input to the engine.
type SimulationInput struct {
	Meta       SimulationMeta      `json:"simulation_meta"`
	Terrain    terrain.TerrainData `json:"terrain"`
	DriverList []driver.Driver     `json:"driver_list"`
}

// SimulationLogRow is the state of all drivers at a single simulation timestep.
type SimulationLogRow struct {
	Timestamp  float64            `json:"timestamp"` // seconds
	DriverLogs []driver.DriverLog `json:"driver_logs"`
}

// SimulationLog is the complete output of a simulation run.
type SimulationLog struct {
	Meta    SimulationMeta     `json:"simulation_meta"`
	Output  []SimulationLogRow `json:"output,omitempty"`
	Summary []DriverSummary    `json:"summary"`
}

// Defaults fills the timing fields an input leaves at zero.
// A nil Gravity leaves DefaultGravity in place; a zero one runs without gravity.
type Defaults struct {
	RunTime   float64
	TimeStep  float64
	FrameStep float64
	Gravity   *float64
}

type options struct {
	log         zerolog.Logger
	defaults    Defaults
	summaryOnly bool
}

// Option configures a Sim.
type Option func(*options)

// WithLogger sets the logger used for run start and end and for drift events.
func WithLogger(log zerolog.Logger) Option { return func(o *options) { o.log = log } }

// WithDefaults sets the timing used when the input leaves a field at zero.
func WithDefaults(d Defaults) Option { return func(o *options) { o.defaults = d } }

// WithSummaryOnly drops the per-step rows from the log.
func WithSummaryOnly() Option { return func(o *options) { o.summaryOnly = true } }

// Sim is the kart simulation engine state.
type Sim struct {
	meta     SimulationMeta
	terrain  *terrain.Terrain
	drivers  []*driver.SimDriver
	trackers []*tracker
	gravity  mgl64.Vec3
	opts     options
	steps    int
}
