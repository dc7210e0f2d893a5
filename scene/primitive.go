package scene

import (
	"github.com/achilleasa/raytra/bvh"
	"github.com/achilleasa/raytra/types"
	"github.com/chewxy/math32"
)

// Determinants below this threshold indicate a ray parallel to a triangle.
const triEpsilon = 1e-7

// The Primitive interface is implemented by all scene objects that can be
// inserted into a BVH.
type Primitive interface {
	// Get a new bounding box that encloses the primitive.
	BBox() *bvh.BoundingBox

	// Get the distance along the ray to the nearest intersection with the
	// primitive or bvh.Miss if the ray does not hit it.
	Intersect(ray types.Ray) float32
}

// A triangle primitive.
type Triangle struct {
	Vertices [3]types.Vec3
}

// Create new triangle primitive.
func NewTriangle(v0, v1, v2 types.Vec3) *Triangle {
	return &Triangle{Vertices: [3]types.Vec3{v0, v1, v2}}
}

func (t *Triangle) BBox() *bvh.BoundingBox {
	return bvh.NewBoundingBoxFromPoints(t.Vertices[:]...)
}

// Get the triangle normal. The surface point is ignored as the normal is
// constant across a triangle.
func (t *Triangle) Normal(_ types.Vec3) types.Vec3 {
	e01 := t.Vertices[1].Sub(t.Vertices[0])
	e02 := t.Vertices[2].Sub(t.Vertices[0])
	return e01.Cross(e02).Normalize()
}

// Intersect ray with the triangle using the Möller-Trumbore algorithm.
func (t *Triangle) Intersect(ray types.Ray) float32 {
	e1 := t.Vertices[1].Sub(t.Vertices[0])
	e2 := t.Vertices[2].Sub(t.Vertices[0])

	p := ray.Dir.Cross(e2)
	det := e1.Dot(p)
	if det > -triEpsilon && det < triEpsilon {
		return bvh.Miss
	}
	invDet := 1.0 / det

	s := ray.Origin.Sub(t.Vertices[0])
	u := s.Dot(p) * invDet
	if u < 0 || u > 1 {
		return bvh.Miss
	}

	q := s.Cross(e1)
	v := ray.Dir.Dot(q) * invDet
	if v < 0 || u+v > 1 {
		return bvh.Miss
	}

	dist := e2.Dot(q) * invDet
	if dist < 0 {
		return bvh.Miss
	}
	return dist
}

// A sphere primitive.
type Sphere struct {
	Center types.Vec3
	Radius float32
}

// Create new sphere primitive.
func NewSphere(center types.Vec3, radius float32) *Sphere {
	return &Sphere{Center: center, Radius: radius}
}

func (s *Sphere) BBox() *bvh.BoundingBox {
	r := types.XYZ(s.Radius, s.Radius, s.Radius)
	return bvh.NewBoundingBoxFromPoints(s.Center.Sub(r), s.Center.Add(r))
}

// Get the outward facing normal at a point on the sphere surface.
func (s *Sphere) Normal(point types.Vec3) types.Vec3 {
	return point.Sub(s.Center).Normalize()
}

// Intersect ray with the sphere by solving the ray/sphere quadratic. Rays
// that start inside the sphere report the exit point.
func (s *Sphere) Intersect(ray types.Ray) float32 {
	oc := ray.Origin.Sub(s.Center)
	a := ray.Dir.Dot(ray.Dir)
	b := 2 * oc.Dot(ray.Dir)
	c := oc.Dot(oc) - s.Radius*s.Radius

	disc := b*b - 4*a*c
	if a == 0 || disc < 0 {
		return bvh.Miss
	}

	sqrtDisc := math32.Sqrt(disc)
	if t0 := (-b - sqrtDisc) / (2 * a); t0 >= 0 {
		return t0
	}
	if t1 := (-b + sqrtDisc) / (2 * a); t1 >= 0 {
		return t1
	}
	return bvh.Miss
}
