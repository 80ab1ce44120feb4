package engine

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/cxd309/kart-engine/internal/driver"
	"github.com/cxd309/kart-engine/internal/kart"
)

// DriverSummary aggregates one driver over a whole run.
type DriverSummary struct {
	DriverID           driver.DriverID `json:"driver_id"`
	MeanSpeed          float64         `json:"mean_speed"` // m/s, unsigned
	MaxSpeed           float64         `json:"max_speed"`  // m/s, unsigned
	Distance           float64         `json:"distance"`   // horizontal path length, m
	MeanSpringLength   float64         `json:"mean_spring_length"`
	SpringLengthStdDev float64         `json:"spring_length_std_dev"`
	AirborneFraction   float64         `json:"airborne_fraction"`
	Drifts             int             `json:"drifts"`
	BoostsEarned       int             `json:"boosts_earned"`
	PadBoosts          int             `json:"pad_boosts"`
	Contacts           int             `json:"contacts"` // steps the chassis touched the terrain
}

// tracker collects per-step samples for one driver.
type tracker struct {
	speeds   []float64
	springs  []float64
	airborne int
	distance float64
	last     mgl64.Vec3
}

func newTracker(start mgl64.Vec3) *tracker { return &tracker{last: start} }

func (tr *tracker) record(d *driver.SimDriver, res kart.Result) {
	tr.speeds = append(tr.speeds, math.Abs(res.Motion.CurrentSpeed))
	if !res.Grounded {
		tr.airborne++
	}
	for _, c := range d.Kart().Corners() {
		if c.Grounded {
			tr.springs = append(tr.springs, c.Length)
		}
	}
	pos := d.Body.Position
	step := pos.Sub(tr.last)
	tr.distance += math.Hypot(step.X(), step.Z())
	tr.last = pos
}

func (tr *tracker) summary(d *driver.SimDriver) DriverSummary {
	s := DriverSummary{
		DriverID:     d.DriverID,
		Distance:     tr.distance,
		Drifts:       d.DriftCount,
		BoostsEarned: d.BoostsEarned,
		PadBoosts:    d.PadBoosts,
		Contacts:     d.Contacts,
	}
	if n := len(tr.speeds); n > 0 {
		s.MeanSpeed = stat.Mean(tr.speeds, nil)
		s.MaxSpeed = floats.Max(tr.speeds)
		s.AirborneFraction = float64(tr.airborne) / float64(n)
	}
	if len(tr.springs) > 0 {
		s.MeanSpringLength = stat.Mean(tr.springs, nil)
	}
	if len(tr.springs) > 1 {
		s.SpringLengthStdDev = stat.StdDev(tr.springs, nil)
	}
	return s
}

func (s *Sim) summarise() []DriverSummary {
	out := make([]DriverSummary, len(s.drivers))
	for i, d := range s.drivers {
		out[i] = s.trackers[i].summary(d)
	}
	return out
}
