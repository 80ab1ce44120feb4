package kart

import (
	"bytes"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cxd309/kart-engine/internal/drift"
)

type fakeHost struct {
	plane
	pos    mgl64.Vec3
	rot    mgl64.Quat
	vel    mgl64.Vec3
	forces []mgl64.Vec3
	points []mgl64.Vec3
}

func (h *fakeHost) Pose() (mgl64.Vec3, mgl64.Quat) { return h.pos, h.rot }
func (h *fakeHost) Velocity() mgl64.Vec3           { return h.vel }
func (h *fakeHost) SetVelocity(v mgl64.Vec3)       { h.vel = v }
func (h *fakeHost) SetRotation(rot mgl64.Quat)     { h.rot = rot }
func (h *fakeHost) ApplyForceAtPoint(force, point mgl64.Vec3) {
	h.forces = append(h.forces, force)
	h.points = append(h.points, point)
}

type fakeInput struct {
	raw, smoothed map[string]float64
	keys          map[string]bool
}

func (f fakeInput) AxisRaw(name string) float64      { return f.raw[name] }
func (f fakeInput) AxisSmoothed(name string) float64 { return f.smoothed[name] }
func (f fakeInput) KeyHeld(key string) bool          { return f.keys[key] }

func TestReadInput(t *testing.T) {
	b := DefaultBindings()
	src := fakeInput{
		raw:      map[string]float64{"Horizontal": 3},
		smoothed: map[string]float64{"Horizontal": -0.4},
		keys:     map[string]bool{"w": true, "space": true},
	}
	in := ReadInput(src, b)
	assert.Equal(t, Input{Forward: true, Drift: true, Steer: 1, SteerSmoothed: -0.4}, in)
}

func TestController_FixedUpdate(t *testing.T) {
	cfg := DefaultConfig()
	k := newKart(t, cfg)
	host := &fakeHost{
		pos: mgl64.Vec3{0, restHeight(cfg) - 0.1, 0},
		rot: mgl64.QuatIdent(),
		vel: mgl64.Vec3{0, 0, 20},
	}
	src := fakeInput{
		raw:  map[string]float64{"Horizontal": 1},
		keys: map[string]bool{"w": true, "space": true},
	}
	var buf bytes.Buffer
	c := NewController(k, host, src, DefaultBindings(), zerolog.New(&buf).Level(zerolog.DebugLevel))

	res := c.FixedUpdate(step)
	require.True(t, res.DriftEffect.Engaged)
	assert.Len(t, host.forces, 5)
	assert.Equal(t, res.Rotation, host.rot)
	assert.Equal(t, res.Velocity, host.vel)
	for _, f := range host.forces[:4] {
		assert.Greater(t, f.Y(), 0.0, "compressed springs push up")
	}
	assert.Contains(t, buf.String(), `"message":"drift engaged"`)
	assert.Contains(t, buf.String(), `"mode":"right"`)

	src.keys["space"] = false
	host.vel = mgl64.Vec3{0, 0, 20}
	res = c.FixedUpdate(step)
	assert.True(t, res.DriftEffect.Released)
	assert.Equal(t, drift.Neutral, res.Drift.Mode)
	assert.Contains(t, buf.String(), `"message":"drift released"`)
	assert.Zero(t, c.BoostDuration())
}

func TestController_QuietLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	host := &fakeHost{pos: mgl64.Vec3{0, restHeight(cfg), 0}, rot: mgl64.QuatIdent(), vel: mgl64.Vec3{0, 0, 20}}
	src := fakeInput{raw: map[string]float64{"Horizontal": -1}, keys: map[string]bool{"space": true}}
	c := NewController(newKart(t, cfg), host, src, DefaultBindings(), zerolog.New(&buf).Level(zerolog.InfoLevel))

	res := c.FixedUpdate(step)
	assert.Equal(t, drift.Left, res.Drift.Mode)
	assert.Empty(t, buf.String())
}
