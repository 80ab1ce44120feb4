package driver

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/cxd309/kart-engine/internal/kart"
)

// DefaultSteerSensitivity is how fast the smoothed steering axis follows the
// raw axis, in axis units per second.
const DefaultSteerSensitivity = 3.0

// InputFrame holds the inputs that apply from At until the next frame.
type InputFrame struct {
	At      float64 `json:"at"` // seconds
	Forward bool    `json:"forward,omitempty"`
	Reverse bool    `json:"reverse,omitempty"`
	Drift   bool    `json:"drift,omitempty"`
	Steer   float64 `json:"steer,omitempty"` // [-1, 1]
}

// ScriptInput replays a timeline of InputFrames as a kart.InputSource.
type ScriptInput struct {
	frames      []InputFrame
	next        int
	current     InputFrame
	smoothed    float64
	sensitivity float64
	bindings    kart.Bindings
}

// NewScriptInput validates frames, which must be ordered by At, and returns a
// cursor positioned before the first frame. Before the first frame no input is held.
func NewScriptInput(frames []InputFrame, bindings kart.Bindings, sensitivity float64) (*ScriptInput, error) {
	for i, f := range frames {
		if f.At < 0 || math.IsNaN(f.At) {
			return nil, fmt.Errorf("input frame %d: time %g must not be negative", i, f.At)
		}
		if i > 0 && f.At < frames[i-1].At {
			return nil, fmt.Errorf("input frame %d: time %g is before the previous frame", i, f.At)
		}
		if math.IsNaN(f.Steer) || math.Abs(f.Steer) > 1 {
			return nil, fmt.Errorf("input frame %d: steer %g out of [-1, 1]", i, f.Steer)
		}
	}
	if sensitivity <= 0 {
		sensitivity = DefaultSteerSensitivity
	}
	return &ScriptInput{frames: frames, sensitivity: sensitivity, bindings: bindings}, nil
}

// Advance moves the cursor to time t and moves the smoothed axis toward the
// raw axis for frameDt seconds.
func (s *ScriptInput) Advance(t, frameDt float64) {
	for s.next < len(s.frames) && s.frames[s.next].At <= t {
		s.current = s.frames[s.next]
		s.next++
	}
	maxMove := s.sensitivity * math.Max(0, frameDt)
	s.smoothed += mgl64.Clamp(s.current.Steer-s.smoothed, -maxMove, maxMove)
}

// Current returns the frame in effect.
func (s *ScriptInput) Current() InputFrame { return s.current }

func (s *ScriptInput) AxisRaw(name string) float64 {
	if name != s.bindings.SteerAxis {
		return 0
	}
	return s.current.Steer
}

func (s *ScriptInput) AxisSmoothed(name string) float64 {
	if name != s.bindings.SteerAxis {
		return 0
	}
	return s.smoothed
}

func (s *ScriptInput) KeyHeld(key string) bool {
	switch key {
	case s.bindings.Forward:
		return s.current.Forward
	case s.bindings.Reverse:
		return s.current.Reverse
	case s.bindings.Drift:
		return s.current.Drift
	default:
		return false
	}
}
