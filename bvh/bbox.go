package bvh

import (
	"fmt"

	"github.com/achilleasa/raytra/types"
	"github.com/chewxy/math32"
)

const (
	// The surface index reported by boxes that do not wrap a scene primitive.
	NoSurface = -1

	// The distance returned by Intersect when the ray misses the box.
	Miss float32 = -1
)

var (
	posInf = math32.Inf(1)
	negInf = math32.Inf(-1)
)

// An axis-aligned bounding box. Boxes created for scene primitives carry the
// index of the primitive they enclose; boxes created by Combine do not.
type BoundingBox struct {
	Min types.Vec3
	Max types.Vec3

	center       types.Vec3
	surfaceIndex int
}

// Create a bounding box from its per-axis extents. Extents may be equal along
// any axis (e.g. a triangle lying on a plane) in which case the box has zero
// thickness along that axis.
func NewBoundingBox(xmin, xmax, ymin, ymax, zmin, zmax float32) *BoundingBox {
	return newBoundingBox(
		types.XYZ(xmin, ymin, zmin),
		types.XYZ(xmax, ymax, zmax),
	)
}

// Create the tightest bounding box that encloses a set of points. At least
// one point must be specified.
func NewBoundingBoxFromPoints(points ...types.Vec3) *BoundingBox {
	if len(points) == 0 {
		panic("bvh: cannot create a bounding box from an empty point list")
	}

	min, max := points[0], points[0]
	for _, p := range points[1:] {
		min = types.MinVec3(min, p)
		max = types.MaxVec3(max, p)
	}
	return newBoundingBox(min, max)
}

func newBoundingBox(min, max types.Vec3) *BoundingBox {
	// Enforce min <= max for callers that pass the extents in reverse order.
	min, max = types.MinVec3(min, max), types.MaxVec3(min, max)
	return &BoundingBox{
		Min:          min,
		Max:          max,
		center:       min.Add(max).Mul(0.5),
		surfaceIndex: NoSurface,
	}
}

// Combine a non-empty list of boxes into the minimal box that encloses all of
// them. The returned box is newly allocated and is not tied to any surface.
//
// Calling Combine without any boxes is a programming error and panics.
func Combine(boxes ...*BoundingBox) *BoundingBox {
	if len(boxes) == 0 {
		panic("bvh: cannot combine an empty list of bounding boxes")
	}

	min, max := boxes[0].Min, boxes[0].Max
	for _, box := range boxes[1:] {
		min = types.MinVec3(min, box.Min)
		max = types.MaxVec3(max, box.Max)
	}
	return newBoundingBox(min, max)
}

// Get the box center.
func (b *BoundingBox) Center() types.Vec3 {
	return b.center
}

// Get the index of the scene primitive enclosed by this box.
func (b *BoundingBox) SurfaceIndex() int {
	return b.surfaceIndex
}

// Tag the box with the index of the scene primitive it encloses. Scene setup
// calls this once, right after creating the box.
func (b *BoundingBox) SetSurfaceIndex(idx int) {
	b.surfaceIndex = idx
}

// Check whether the box fully contains another box. Touching faces count as
// containment.
func (b *BoundingBox) Encloses(other *BoundingBox) bool {
	for axis := XAxis; axis <= ZAxis; axis++ {
		if other.Min[axis] < b.Min[axis] || other.Max[axis] > b.Max[axis] {
			return false
		}
	}
	return true
}

// Get the box surface area.
func (b *BoundingBox) SurfaceArea() float32 {
	side := b.Max.Sub(b.Min)
	return 2.0 * (side[0]*side[1] + side[1]*side[2] + side[0]*side[2])
}

// Calculate the parametric interval [tNear, tFar] in which the ray lies
// inside the box using the slab method. The ok flag is false when the ray
// misses the box or the box lies entirely behind the ray origin.
func (b *BoundingBox) IntersectInterval(ray types.Ray) (tNear, tFar float32, ok bool) {
	return intersectSlabs(b.Min, b.Max, ray)
}

// Intersect a ray with the three slabs of the box defined by min and max.
//
// A zero direction component means the ray runs parallel to that axis slab;
// it is inside the slab for every t if its origin lies within [min, max]
// (inclusive) and misses the box otherwise.
func intersectSlabs(min, max types.Vec3, ray types.Ray) (tNear, tFar float32, ok bool) {
	tNear, tFar = negInf, posInf

	for axis := XAxis; axis <= ZAxis; axis++ {
		origin, dir := ray.Origin[axis], ray.Dir[axis]
		if dir == 0 {
			if origin < min[axis] || origin > max[axis] {
				return Miss, Miss, false
			}
			continue
		}

		// Dividing directly keeps denormal directions finite at the slab
		// planes; 1/dir would overflow and turn 0*Inf into NaN.
		t0 := (min[axis] - origin) / dir
		t1 := (max[axis] - origin) / dir
		if dir < 0 {
			t0, t1 = t1, t0
		}

		if t0 > tNear {
			tNear = t0
		}
		if t1 < tFar {
			tFar = t1
		}
		if tNear > tFar {
			return Miss, Miss, false
		}
	}

	if tFar < 0 {
		return Miss, Miss, false
	}
	return tNear, tFar, true
}

// Get the distance along the ray to the nearest non-negative bound of the
// ray/box intersection interval. If the ray origin lies inside the box this
// is the exit distance. Returns Miss (a negative value) if the ray does not
// hit the box.
func (b *BoundingBox) Intersect(ray types.Ray) float32 {
	return nearestBound(b.IntersectInterval(ray))
}

// Select the smallest non-negative bound of a slab test interval.
func nearestBound(tNear, tFar float32, ok bool) float32 {
	if !ok {
		return Miss
	}
	if tNear >= 0 {
		return tNear
	}
	return tFar
}

// Check whether the ray hits the box.
func (b *BoundingBox) DoesIntersect(ray types.Ray) bool {
	return b.Intersect(ray) >= 0
}

// Compare the centers of two boxes along an axis. This defines a strict weak
// ordering that is used for partitioning boxes while building a tree.
func CompareAlongAxis(a, b *BoundingBox, axis Axis) bool {
	return a.center[axis] < b.center[axis]
}

func (b *BoundingBox) String() string {
	return fmt.Sprintf("bbox{min: %v, max: %v, surface: %d}", b.Min, b.Max, b.surfaceIndex)
}
