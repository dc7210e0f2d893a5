package bvh

import "github.com/achilleasa/raytra/types"

// The Intersector interface is implemented by scene containers that can test
// a ray against the primitive referenced by a leaf surface index. Intersect
// must return the distance along the ray to the primitive or a negative value
// if the ray misses it.
type Intersector interface {
	Intersect(surfaceIndex int, ray types.Ray) float32
}

// A nearest-hit query result.
type Hit struct {
	// The surface index of the hit primitive or NoSurface.
	SurfaceIndex int

	// Distance along the ray to the hit point.
	Dist float32
}

// The result returned by queries that do not hit any leaf.
var NoHit = Hit{SurfaceIndex: NoSurface, Dist: Miss}

// Returns true if the query hit a primitive.
func (h Hit) Ok() bool {
	return h.SurfaceIndex != NoSurface
}

// Tracks the best candidate while a nearest-hit query walks the tree.
type query struct {
	ray   types.Ray
	isect Intersector

	best     Hit
	bestDist float32
}

func newQuery(ray types.Ray, isect Intersector) *query {
	return &query{ray: ray, isect: isect, best: NoHit, bestDist: posInf}
}

// Test the primitive referenced by a leaf and keep it if it is closer than
// the current best candidate. When no Intersector is available the distance
// to the leaf box is used instead.
func (q *query) testLeaf(surfaceIndex int, min, max types.Vec3) {
	var dist float32
	if q.isect != nil {
		dist = q.isect.Intersect(surfaceIndex, q.ray)
	} else {
		dist = nearestBound(intersectSlabs(min, max, q.ray))
	}

	if dist >= 0 && dist < q.bestDist {
		q.best = Hit{SurfaceIndex: surfaceIndex, Dist: dist}
		q.bestDist = dist
	}
}

// Get the distance at which the ray enters a box. Rays that start inside the
// box enter it at distance 0.
func entryDist(min, max types.Vec3, ray types.Ray) (float32, bool) {
	tNear, _, ok := intersectSlabs(min, max, ray)
	if !ok {
		return Miss, false
	}
	if tNear < 0 {
		tNear = 0
	}
	return tNear, true
}

// Find the nearest primitive hit by a ray. The query only descends into
// nodes whose box is entered at a distance smaller than the current best
// candidate and visits the nearer child first.
//
// If isect is nil, leaf boxes are treated as the primitives themselves.
func (t *Tree) Nearest(ray types.Ray, isect Intersector) Hit {
	q := newQuery(ray, isect)
	box := t.root.BBox()
	if _, ok := entryDist(box.Min, box.Max, ray); ok {
		q.visit(t.root)
	}
	return q.best
}

func (q *query) visit(node Node) {
	switch n := node.(type) {
	case *Leaf:
		q.testLeaf(n.Box.surfaceIndex, n.Box.Min, n.Box.Max)
	case *Branch:
		lBox, rBox := n.Left.BBox(), n.Right.BBox()
		lDist, lOk := entryDist(lBox.Min, lBox.Max, q.ray)
		rDist, rOk := entryDist(rBox.Min, rBox.Max, q.ray)

		first, second := n.Left, n.Right
		firstDist, secondDist := lDist, rDist
		firstOk, secondOk := lOk, rOk
		if rOk && (!lOk || rDist < lDist) {
			first, second = second, first
			firstDist, secondDist = secondDist, firstDist
			firstOk, secondOk = secondOk, firstOk
		}

		if firstOk && firstDist < q.bestDist {
			q.visit(first)
		}
		if secondOk && secondDist < q.bestDist {
			q.visit(second)
		}
	}
}
