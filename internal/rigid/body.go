// Package rigid is the minimal rigid-body host the simulation harness runs
// karts on: force and torque accumulation, damping, gravity and
// semi-implicit Euler integration of position and rotation.
package rigid

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/cxd309/kart-engine/internal/geom"
	"github.com/cxd309/kart-engine/internal/kart"
)

// ErrInvalidBody is wrapped by NewBody errors.
var ErrInvalidBody = errors.New("invalid rigid body")

// Default damping per second.
const (
	DefaultLinearDamping  = 0.05
	DefaultAngularDamping = 2.0
)

// Body is a rigid body with scalar rotational inertia (a solid sphere).
type Body struct {
	Mass            float64
	Inertia         float64
	Position        mgl64.Vec3
	Rotation        mgl64.Quat
	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3 // world space, rad/s
	LinearDamping   float64
	AngularDamping  float64

	// ContactRadius is the radius of the collision sphere kept out of the
	// world by ResolveContact. Zero disables contact.
	ContactRadius float64

	force  mgl64.Vec3
	torque mgl64.Vec3
	prev   mgl64.Vec3 // position before the last Integrate
}

// NewBody returns a body of the given mass and radius at rest.
func NewBody(mass, radius float64, pos mgl64.Vec3, rot mgl64.Quat) (*Body, error) {
	if mass <= 0 || math.IsInf(mass, 0) || math.IsNaN(mass) {
		return nil, fmt.Errorf("%w: mass must be positive and finite, got %g", ErrInvalidBody, mass)
	}
	if radius <= 0 {
		return nil, fmt.Errorf("%w: radius must be positive, got %g", ErrInvalidBody, radius)
	}
	return &Body{
		Mass:           mass,
		Inertia:        0.4 * mass * radius * radius,
		Position:       pos,
		Rotation:       rot.Normalize(),
		prev:           pos,
		LinearDamping:  DefaultLinearDamping,
		AngularDamping: DefaultAngularDamping,
	}, nil
}

// ApplyForce queues a force through the centre of mass.
func (b *Body) ApplyForce(f mgl64.Vec3) {
	b.force = b.force.Add(f)
}

// ApplyForceAtPoint queues a force at a world-space point, adding the torque it produces.
func (b *Body) ApplyForceAtPoint(f, point mgl64.Vec3) {
	b.force = b.force.Add(f)
	b.torque = b.torque.Add(point.Sub(b.Position).Cross(f))
}

// PendingForce returns the force queued since the last Integrate.
func (b *Body) PendingForce() mgl64.Vec3 { return b.force }

// Integrate advances the body by dt under the queued forces and gravity, then
// clears the accumulators.
func (b *Body) Integrate(dt float64, gravity mgl64.Vec3) {
	if dt <= 0 {
		return
	}
	acc := b.force.Mul(1 / b.Mass).Add(gravity)
	b.Velocity = b.Velocity.Add(acc.Mul(dt)).Mul(dampFactor(b.LinearDamping, dt))

	alpha := b.torque.Mul(1 / b.Inertia)
	b.AngularVelocity = b.AngularVelocity.Add(alpha.Mul(dt)).Mul(dampFactor(b.AngularDamping, dt))

	b.prev = b.Position
	b.Position = b.Position.Add(b.Velocity.Mul(dt))
	if w := b.AngularVelocity.Len(); w > 0 {
		spin := mgl64.QuatRotate(w*dt, b.AngularVelocity.Mul(1/w))
		b.Rotation = spin.Mul(b.Rotation).Normalize()
	}

	b.force = mgl64.Vec3{}
	b.torque = mgl64.Vec3{}
}

func dampFactor(damping, dt float64) float64 {
	return math.Max(0, 1-damping*dt)
}

// ResolveContact pushes the collision sphere out of the deepest surface it
// reached during the last Integrate and removes the velocity into that surface.
func (b *Body) ResolveContact(world geom.SphereCollider) (geom.Contact, bool) {
	if b.ContactRadius <= 0 {
		return geom.Contact{}, false
	}
	c, ok := world.SweepSphere(b.prev, b.Position, b.ContactRadius)
	if !ok {
		return geom.Contact{}, false
	}
	b.Position = b.Position.Add(c.Normal.Mul(c.Depth))
	if vn := b.Velocity.Dot(c.Normal); vn < 0 {
		b.Velocity = b.Velocity.Sub(c.Normal.Mul(vn))
	}
	return c, true
}

// Finite reports whether the body state is free of NaN and Inf.
func (b *Body) Finite() bool {
	q := b.Rotation
	return geom.Finite(b.Position) && geom.Finite(b.Velocity) && geom.Finite(b.AngularVelocity) &&
		geom.Finite(q.V) && !math.IsNaN(q.W) && !math.IsInf(q.W, 0)
}

// Host adapts a Body and a world to the kart host interface.
type Host struct {
	Body  *Body
	World geom.RayCaster
}

var _ kart.Host = Host{}

func (h Host) Raycast(origin, dir mgl64.Vec3, maxDist float64) (geom.Hit, bool) {
	return h.World.Raycast(origin, dir, maxDist)
}

func (h Host) Pose() (mgl64.Vec3, mgl64.Quat)        { return h.Body.Position, h.Body.Rotation }
func (h Host) Velocity() mgl64.Vec3                  { return h.Body.Velocity }
func (h Host) SetVelocity(v mgl64.Vec3)              { h.Body.Velocity = v }
func (h Host) SetRotation(rot mgl64.Quat)            { h.Body.Rotation = rot.Normalize() }
func (h Host) ApplyForceAtPoint(force, p mgl64.Vec3) { h.Body.ApplyForceAtPoint(force, p) }
