package bvh

import (
	"math/rand"
	"testing"

	"github.com/achilleasa/raytra/types"
)

// Treats each box as a solid primitive and counts the number of tests.
type boxIntersector struct {
	boxes []*BoundingBox
	tests int
}

func newBoxIntersector(boxes []*BoundingBox) *boxIntersector {
	byIndex := make([]*BoundingBox, len(boxes))
	for _, box := range boxes {
		byIndex[box.SurfaceIndex()] = box
	}
	return &boxIntersector{boxes: byIndex}
}

func (bi *boxIntersector) Intersect(surfaceIndex int, ray types.Ray) float32 {
	bi.tests++
	tNear, _, ok := bi.boxes[surfaceIndex].IntersectInterval(ray)
	if !ok {
		return Miss
	}
	if tNear < 0 {
		return 0
	}
	return tNear
}

func (bi *boxIntersector) bruteForce(ray types.Ray) Hit {
	best := NoHit
	for idx := range bi.boxes {
		if dist := bi.Intersect(idx, ray); dist >= 0 && (!best.Ok() || dist < best.Dist) {
			best = Hit{SurfaceIndex: idx, Dist: dist}
		}
	}
	return best
}

func TestNearestHit(t *testing.T) {
	var boxes []*BoundingBox
	for i := 0; i < 4; i++ {
		z := float32(-10 * (i + 1))
		box := NewBoundingBox(-1, 1, -1, 1, z-1, z+1)
		box.SetSurfaceIndex(i)
		boxes = append(boxes, box)
	}
	isect := newBoxIntersector(boxes)
	tree := Build(append([]*BoundingBox(nil), boxes...), XAxis)

	hit := tree.Nearest(types.NewRay(types.XYZ(0, 0, 0), types.XYZ(0, 0, -1)), isect)
	if !hit.Ok() || hit.SurfaceIndex != 0 || hit.Dist != 9 {
		t.Fatalf("expected to hit surface 0 at distance 9; got %+v", hit)
	}

	hit = tree.Nearest(types.NewRay(types.XYZ(0, 0, -100), types.XYZ(0, 0, 1)), isect)
	if !hit.Ok() || hit.SurfaceIndex != 3 || hit.Dist != 59 {
		t.Fatalf("expected to hit surface 3 at distance 59; got %+v", hit)
	}

	hit = tree.Nearest(types.NewRay(types.XYZ(5, 5, 0), types.XYZ(0, 0, -1)), isect)
	if hit.Ok() || hit != NoHit {
		t.Fatalf("expected ray to miss all boxes; got %+v", hit)
	}
}

func TestNearestWithoutIntersector(t *testing.T) {
	near := NewBoundingBox(2, 3, -1, 1, -1, 1)
	near.SetSurfaceIndex(0)
	far := NewBoundingBox(5, 6, -1, 1, -1, 1)
	far.SetSurfaceIndex(1)

	tree := Build([]*BoundingBox{far, near}, XAxis)
	hit := tree.Nearest(types.NewRay(types.XYZ(0, 0, 0), types.XYZ(1, 0, 0)), nil)
	if hit.SurfaceIndex != 0 || hit.Dist != 2 {
		t.Fatalf("expected leaf box distance to be used; got %+v", hit)
	}
}

func TestNearestMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	boxes := randomTaggedBoxes(rng, 500)
	isect := newBoxIntersector(boxes)
	tree := Build(append([]*BoundingBox(nil), boxes...), XAxis)
	nodes := tree.Linearize()

	var treeTests, bruteTests int
	for i := 0; i < 1000; i++ {
		ray := randomRay(rng)

		isect.tests = 0
		exp := isect.bruteForce(ray)
		bruteTests += isect.tests

		isect.tests = 0
		got := tree.Nearest(ray, isect)
		treeTests += isect.tests

		if got.Ok() != exp.Ok() || (exp.Ok() && got.Dist != exp.Dist) {
			t.Fatalf("[ray %d] expected tree query to return %+v; got %+v", i, exp, got)
		}

		if linear := NearestLinear(nodes, ray, isect); linear != got {
			t.Fatalf("[ray %d] expected linear query to return %+v; got %+v", i, got, linear)
		}
	}

	if treeTests >= bruteTests {
		t.Fatalf("expected tree queries to prune primitive tests; tree: %d, brute force: %d", treeTests, bruteTests)
	}
}

func TestLinearize(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	boxes := randomTaggedBoxes(rng, 9)
	tree := Build(boxes, YAxis)
	nodes := tree.Linearize()

	if len(nodes) != tree.Stats().Nodes {
		t.Fatalf("expected %d linear nodes; got %d", tree.Stats().Nodes, len(nodes))
	}

	var leafIndices []int
	for index := range nodes {
		node := &nodes[index]
		if node.IsLeaf() {
			leafIndices = append(leafIndices, node.SurfaceIndex())
			continue
		}

		left, right := node.ChildNodes()
		if left == 0 || right == 0 || int(left) >= len(nodes) || int(right) >= len(nodes) {
			t.Fatalf("[node %d] invalid child indices %d, %d", index, left, right)
		}
		if left != uint32(index)+1 {
			t.Fatalf("[node %d] expected left child to follow its parent; got %d", index, left)
		}
	}

	exp := tree.Leaves()
	if len(leafIndices) != len(exp) {
		t.Fatalf("expected %d leafs; got %d", len(exp), len(leafIndices))
	}
	for i := range exp {
		if leafIndices[i] != exp[i] {
			t.Fatalf("expected leaf order %v; got %v", exp, leafIndices)
		}
	}

	if NearestLinear(nil, randomRay(rng), nil) != NoHit {
		t.Fatal("expected query on an empty node list to return NoHit")
	}
}

func TestLinearNodeSurfaceZero(t *testing.T) {
	var node LinearNode
	node.SetSurfaceIndex(0)
	if !node.IsLeaf() || node.SurfaceIndex() != 0 {
		t.Fatalf("expected leaf for surface 0; got %+v", node)
	}

	node.SetChildNodes(1, 2)
	if node.IsLeaf() {
		t.Fatal("expected node with children not to be a leaf")
	}
}

func randomRay(rng *rand.Rand) types.Ray {
	var origin, dir types.Vec3
	for axis := 0; axis < 3; axis++ {
		origin[axis] = rng.Float32()*300 - 150
		dir[axis] = rng.Float32()*2 - 1
	}
	// Aim roughly towards the populated region
	target := types.XYZ(rng.Float32()*100-50, rng.Float32()*100-50, rng.Float32()*100-50)
	if rng.Intn(2) == 0 {
		dir = target.Sub(origin)
	}
	return types.NewRay(origin, dir)
}
