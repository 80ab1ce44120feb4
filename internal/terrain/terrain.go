// Package terrain provides the static world surfaces of a simulation and the
// raycast query the kart suspension runs against them.
package terrain

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/cxd309/kart-engine/internal/geom"
)

// SurfaceID is a string identifier for a surface.
type SurfaceID = string

// SurfaceKind classifies a surface.
type SurfaceKind string

const (
	KindGround SurfaceKind = "ground"
	KindRamp   SurfaceKind = "ramp"
	// KindPad grants a boost to a kart with a wheel on it.
	KindPad SurfaceKind = "pad"
)

// Coordinate is a 3D position or direction in metres, Y up.
type Coordinate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vec returns c as a vector.
func (c Coordinate) Vec() mgl64.Vec3 { return mgl64.Vec3{c.X, c.Y, c.Z} }

// CoordinateOf converts a vector back to a Coordinate.
func CoordinateOf(v mgl64.Vec3) Coordinate { return Coordinate{X: v.X(), Y: v.Y(), Z: v.Z()} }

// Surface is a plane through Point with the given Normal. HalfX and HalfZ
// bound it on the world X and Z axes around Point; zero leaves that axis unbounded.
type Surface struct {
	ID     SurfaceID   `json:"surface_id"`
	Kind   SurfaceKind `json:"kind,omitempty"` // default "ground"
	Point  Coordinate  `json:"point"`
	Normal Coordinate  `json:"normal"`
	HalfX  float64     `json:"half_x,omitempty"` // metres
	HalfZ  float64     `json:"half_z,omitempty"` // metres
	Boost  float64     `json:"boost,omitempty"`  // seconds, pads only
}

// TerrainData is the serialisable input representation of the world.
type TerrainData struct {
	Surfaces []Surface `json:"surfaces"`
}

// plane is a Surface with its geometry resolved.
type plane struct {
	id     SurfaceID
	point  mgl64.Vec3
	normal mgl64.Vec3
	halfX  float64
	halfZ  float64
}

// Terrain is the set of surfaces a simulation runs on.
type Terrain struct {
	surfaces   []Surface
	planes     []plane
	surfaceMap map[SurfaceID]Surface
}

// NewTerrain builds a Terrain from TerrainData, returning an error if any surface
// is malformed or duplicated.
func NewTerrain(data TerrainData) (*Terrain, error) {
	t := &Terrain{surfaceMap: make(map[SurfaceID]Surface)}
	for _, s := range data.Surfaces {
		if err := t.AddSurface(s); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// AddSurface adds a surface. Returns an error if the ID is empty or already
// exists, or if the geometry is unusable.
func (t *Terrain) AddSurface(s Surface) error {
	if s.ID == "" {
		return fmt.Errorf("surface has no id")
	}
	if _, exists := t.surfaceMap[s.ID]; exists {
		return fmt.Errorf("surface %q already exists", s.ID)
	}
	if s.Kind == "" {
		s.Kind = KindGround
	}
	switch s.Kind {
	case KindGround, KindRamp:
	case KindPad:
		if s.Boost <= 0 {
			return fmt.Errorf("surface %q: pad needs a positive boost, got %g", s.ID, s.Boost)
		}
	default:
		return fmt.Errorf("surface %q: unknown kind %q", s.ID, s.Kind)
	}
	n := s.Normal.Vec()
	if n.Len() == 0 || !geom.Finite(n) || !geom.Finite(s.Point.Vec()) {
		return fmt.Errorf("surface %q: normal must be a non-zero finite vector", s.ID)
	}
	if s.HalfX < 0 || s.HalfZ < 0 {
		return fmt.Errorf("surface %q: half extents must not be negative", s.ID)
	}
	t.surfaces = append(t.surfaces, s)
	t.planes = append(t.planes, plane{
		id:     s.ID,
		point:  s.Point.Vec(),
		normal: n.Normalize(),
		halfX:  s.HalfX,
		halfZ:  s.HalfZ,
	})
	t.surfaceMap[s.ID] = s
	return nil
}

// GetSurfaceByID looks up a surface by its ID.
func (t *Terrain) GetSurfaceByID(id SurfaceID) (Surface, error) {
	s, ok := t.surfaceMap[id]
	if !ok {
		return Surface{}, fmt.Errorf("surface %q not found", id)
	}
	return s, nil
}

// Surfaces returns the surfaces in insertion order.
func (t *Terrain) Surfaces() []Surface { return t.surfaces }

// Raycast returns the nearest surface the ray meets within maxDist.
// Only surfaces facing the ray can be hit; the earlier surface wins a tie.
func (t *Terrain) Raycast(origin, dir mgl64.Vec3, maxDist float64) (geom.Hit, bool) {
	if dir.Len() == 0 || maxDist <= 0 {
		return geom.Hit{}, false
	}
	dir = dir.Normalize()

	var best geom.Hit
	found := false
	for _, p := range t.planes {
		denom := dir.Dot(p.normal)
		if denom >= 0 {
			continue
		}
		d := p.point.Sub(origin).Dot(p.normal) / denom
		if d < 0 || d > maxDist || (found && d >= best.Distance) {
			continue
		}
		if !p.contains(origin.Add(dir.Mul(d))) {
			continue
		}
		best = geom.Hit{Distance: d, Normal: p.normal, SurfaceID: p.id}
		found = true
	}
	return best, found
}

// contains reports whether q lies within the plane's horizontal extents.
func (p plane) contains(q mgl64.Vec3) bool {
	if p.halfX > 0 && math.Abs(q.X()-p.point.X()) > p.halfX {
		return false
	}
	if p.halfZ > 0 && math.Abs(q.Z()-p.point.Z()) > p.halfZ {
		return false
	}
	return true
}

// SweepSphere returns the deepest surface overlapped by a sphere of the given
// radius that moved from one centre to another. A surface counts when the end
// centre is less than a radius from its front, less than a radius behind it,
// or behind it after starting in front.
func (t *Terrain) SweepSphere(from, to mgl64.Vec3, radius float64) (geom.Contact, bool) {
	if radius <= 0 {
		return geom.Contact{}, false
	}
	var best geom.Contact
	found := false
	for _, p := range t.planes {
		end := to.Sub(p.point).Dot(p.normal)
		if end >= radius {
			continue
		}
		if end <= -radius && from.Sub(p.point).Dot(p.normal) < 0 {
			continue
		}
		if !p.contains(to.Sub(p.normal.Mul(end))) {
			continue
		}
		if depth := radius - end; !found || depth > best.Depth {
			best = geom.Contact{Normal: p.normal, Depth: depth, SurfaceID: p.id}
			found = true
		}
	}
	return best, found
}

// castHeight is where HeightAt starts its downward ray.
const castHeight = 1e4

// HeightAt returns the height of the highest surface below castHeight at (x, z).
func (t *Terrain) HeightAt(x, z float64) (float64, bool) {
	hit, ok := t.Raycast(mgl64.Vec3{x, castHeight, z}, mgl64.Vec3{0, -1, 0}, 2*castHeight)
	if !ok {
		return 0, false
	}
	return castHeight - hit.Distance, true
}
