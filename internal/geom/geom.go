// Package geom holds the vector, rotation and query types shared by the kart
// components and the simulation host.
//
// World space is Y-up. A body at identity rotation faces +Z with +X to its
// right, so a positive yaw turns the nose toward +X.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	WorldUp      = mgl64.Vec3{0, 1, 0}
	LocalForward = mgl64.Vec3{0, 0, 1}
	LocalRight   = mgl64.Vec3{1, 0, 0}
	LocalUp      = mgl64.Vec3{0, 1, 0}
)

// Basis is the set of body axes expressed in world space.
type Basis struct {
	Forward mgl64.Vec3
	Right   mgl64.Vec3
	Up      mgl64.Vec3
}

// BasisOf returns the world-space axes of a body with rotation rot.
func BasisOf(rot mgl64.Quat) Basis {
	return Basis{
		Forward: rot.Rotate(LocalForward),
		Right:   rot.Rotate(LocalRight),
		Up:      rot.Rotate(LocalUp),
	}
}

// Force is a world-space force applied at a world-space point.
type Force struct {
	Vector mgl64.Vec3 `json:"vector"`
	Point  mgl64.Vec3 `json:"point"`
}

// Hit is the result of a successful raycast.
type Hit struct {
	Distance  float64    `json:"distance"`
	Normal    mgl64.Vec3 `json:"normal"`
	SurfaceID string     `json:"surface_id"`
}

// RayCaster is the physics query every host world must provide.
// dir need not be normalised; distances are measured along the normalised ray.
type RayCaster interface {
	Raycast(origin, dir mgl64.Vec3, maxDist float64) (Hit, bool)
}

// Contact is a sphere overlapping a surface. Moving the sphere Depth along
// Normal separates them.
type Contact struct {
	Normal    mgl64.Vec3 `json:"normal"`
	Depth     float64    `json:"depth"`
	SurfaceID string     `json:"surface_id"`
}

// SphereCollider finds the deepest contact of a sphere that moved from one
// centre to another during a step.
type SphereCollider interface {
	SweepSphere(from, to mgl64.Vec3, radius float64) (Contact, bool)
}

// Blend returns the interpolation factor of an exponential approach running
// at rate per second for dt seconds. It is 0 for non-positive inputs and
// tends to rate*dt for small steps.
func Blend(rate, dt float64) float64 {
	if rate <= 0 || dt <= 0 {
		return 0
	}
	return 1 - math.Exp(-rate*dt)
}

// YawRotation returns a rotation of deg degrees about the world up axis.
func YawRotation(deg float64) mgl64.Quat {
	return mgl64.QuatRotate(mgl64.DegToRad(deg), WorldUp)
}

// Yaw returns the heading of rot in degrees in [0, 360), measured from +Z toward +X.
func Yaw(rot mgl64.Quat) float64 {
	f := rot.Rotate(LocalForward)
	return NormalizeDeg(mgl64.RadToDeg(math.Atan2(f.X(), f.Z())))
}

// NormalizeDeg wraps d into [0, 360).
func NormalizeDeg(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// Finite reports whether every component of v is a finite number.
func Finite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
