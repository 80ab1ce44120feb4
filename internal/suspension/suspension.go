// Package suspension implements the four-corner raycast spring-damper model.
//
// Each fixed step a ray is cast down the body's up axis from every corner
// mount. A corner whose ray reaches the ground becomes a spring clamped to
// [min, max] around the rest length and pushes the body along its up axis at
// the mount point. The package computes forces and contact state only; the
// caller applies them to the host body.
package suspension

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/cxd309/kart-engine/internal/geom"
)

// CornerID indexes the four fixed corners in iteration order.
type CornerID int

const (
	FrontLeft CornerID = iota
	FrontRight
	RearLeft
	RearRight
	NumCorners
)

func (c CornerID) String() string {
	switch c {
	case FrontLeft:
		return "front_left"
	case FrontRight:
		return "front_right"
	case RearLeft:
		return "rear_left"
	case RearRight:
		return "rear_right"
	default:
		return fmt.Sprintf("corner(%d)", int(c))
	}
}

// Corner is the per-step state of one wheel mount.
type Corner struct {
	ID          CornerID   `json:"id"`
	Offset      mgl64.Vec3 `json:"offset"` // body-local, x right, z forward
	LastLength  float64    `json:"last_length"`
	Length      float64    `json:"length"`
	Origin      mgl64.Vec3 `json:"origin"`
	Grounded    bool       `json:"grounded"`
	Normal      mgl64.Vec3 `json:"normal"`
	SurfaceID   string     `json:"surface_id,omitempty"`
	SpringForce float64    `json:"spring_force"`
	DamperForce float64    `json:"damper_force"`
}

// Result is the outcome of one suspension step.
type Result struct {
	Forces        []geom.Force
	Normals       []mgl64.Vec3 // contact normals of grounded corners, in corner order
	Grounded      bool         // any corner touching ground
	GroundedCount int
}

// Model tracks the spring state of the four corners of one kart.
type Model struct {
	cfg        Config
	minLength  float64
	restLength float64
	maxLength  float64
	corners    [NumCorners]Corner
}

// New validates cfg and returns a model with every spring at rest length.
func New(cfg Config) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Model{cfg: cfg}
	m.minLength, m.restLength, m.maxLength = cfg.Limits()

	hw, hl := cfg.halfExtents()
	signs := [NumCorners][2]float64{
		FrontLeft:  {-1, 1},
		FrontRight: {1, 1},
		RearLeft:   {-1, -1},
		RearRight:  {1, -1},
	}
	for i := range m.corners {
		m.corners[i] = Corner{
			ID:     CornerID(i),
			Offset: mgl64.Vec3{signs[i][0] * hw, 0, signs[i][1] * hl},
		}
	}
	m.Reset()
	return m, nil
}

// Reset puts every spring back at rest length and clears contact state.
func (m *Model) Reset() {
	for i := range m.corners {
		c := &m.corners[i]
		c.LastLength = m.restLength
		c.Length = m.restLength
		c.Grounded = false
		c.Normal = mgl64.Vec3{}
		c.SurfaceID = ""
		c.SpringForce = 0
		c.DamperForce = 0
	}
}

// Config returns the configuration the model was built with.
func (m *Model) Config() Config { return m.cfg }

// Limits returns the clamped spring range.
func (m *Model) Limits() (minLength, restLength, maxLength float64) {
	return m.minLength, m.restLength, m.maxLength
}

// Corners returns a copy of the corner states after the last step.
func (m *Model) Corners() [NumCorners]Corner { return m.corners }

// Step casts the four corner rays from the body pose and returns the spring
// forces to apply. fixedDt is the physics step used for the spring velocity.
// All corners use the pose at the start of the step.
func (m *Model) Step(pos mgl64.Vec3, rot mgl64.Quat, world geom.RayCaster, fixedDt float64) Result {
	basis := geom.BasisOf(rot)
	down := basis.Up.Mul(-1)
	rayLength := m.cfg.RayLength()

	var res Result
	for i := range m.corners {
		c := &m.corners[i]
		c.Origin = pos.
			Add(basis.Right.Mul(c.Offset.X())).
			Add(basis.Forward.Mul(c.Offset.Z()))

		hit, ok := world.Raycast(c.Origin, down, rayLength)
		if !ok {
			m.loseContact(c)
			continue
		}

		c.LastLength = c.Length
		c.Length = mgl64.Clamp(hit.Distance-m.cfg.WheelRadius, m.minLength, m.maxLength)
		c.SpringForce = SpringForce(m.restLength, c.Length, m.cfg.SpringConstant)
		c.DamperForce = DamperForce(m.cfg.DamperConstant, c.LastLength, c.Length, fixedDt)
		c.Grounded = true
		c.Normal = hit.Normal
		c.SurfaceID = hit.SurfaceID

		res.Forces = append(res.Forces, geom.Force{
			Vector: basis.Up.Mul(c.SpringForce + c.DamperForce),
			Point:  c.Origin,
		})
		res.Normals = append(res.Normals, hit.Normal)
		res.GroundedCount++
	}
	res.Grounded = res.GroundedCount > 0
	return res
}

func (m *Model) loseContact(c *Corner) {
	c.Grounded = false
	c.Normal = mgl64.Vec3{}
	c.SurfaceID = ""
	c.SpringForce = 0
	c.DamperForce = 0
	if m.cfg.policy() == ResetToMax {
		c.LastLength = m.maxLength
		c.Length = m.maxLength
	}
}

// SpringForce is the Hooke force of a spring at length relative to rest.
// Positive values push the body away from the ground.
func SpringForce(restLength, length, k float64) float64 {
	return (restLength - length) * k
}

// DamperForce opposes the rate of change between two consecutive lengths.
// A non-positive dt yields no damping.
func DamperForce(c, lastLength, length, dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	return c * (lastLength - length) / dt
}
