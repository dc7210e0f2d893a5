package bvh

import (
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/achilleasa/raytra/types"
)

func TestBuildTwoBoxes(t *testing.T) {
	box1 := NewBoundingBox(-3, -1, 0, 2, 0, 2)
	box1.SetSurfaceIndex(0)
	box2 := NewBoundingBox(1, 3, 0, 2, 0, 2)
	box2.SetSurfaceIndex(1)

	tree := Build([]*BoundingBox{box2, box1}, XAxis)
	if depth := tree.Depth(); depth != 2 {
		t.Fatalf("expected tree depth to be 2; got %d", depth)
	}

	root, isBranch := tree.Root().(*Branch)
	if !isBranch {
		t.Fatalf("expected root to be a branch; got %T", tree.Root())
	}
	for _, child := range []Node{root.Left, root.Right} {
		if _, isLeaf := child.(*Leaf); !isLeaf {
			t.Fatalf("expected root children to be leafs; got %T", child)
		}
	}

	leaves := tree.Leaves()
	sort.Ints(leaves)
	if len(leaves) != 2 || leaves[0] != 0 || leaves[1] != 1 {
		t.Fatalf("expected leafs to reference surfaces [0 1]; got %v", leaves)
	}

	// Boxes are ordered along X so the leftmost box ends up in the left leaf
	if root.Left.BBox() != box1 {
		t.Fatalf("expected left leaf to wrap box1; got %v", root.Left.BBox())
	}
	if root.Box == box1 || root.Box == box2 {
		t.Fatal("expected branch to own a newly allocated box")
	}
}

func TestBuildSingleBox(t *testing.T) {
	box := NewBoundingBox(0, 1, 0, 1, 0, 1)
	box.SetSurfaceIndex(42)

	tree := Build([]*BoundingBox{box}, XAxis)
	leaf, isLeaf := tree.Root().(*Leaf)
	if !isLeaf {
		t.Fatalf("expected root to be a leaf; got %T", tree.Root())
	}
	if leaf.Box != box || leaf.Box.SurfaceIndex() != 42 {
		t.Fatalf("expected leaf to wrap the input box; got %v", leaf.Box)
	}
	if tree.Depth() != 1 {
		t.Fatalf("expected leaf depth 1; got %d", tree.Depth())
	}
}

func TestBuildEmptyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected Build to panic when called with an empty list")
		}
	}()
	Build(nil, XAxis)
}

func TestBuildInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for _, n := range []int{1, 2, 3, 5, 8, 17, 100, 257} {
		boxes := randomTaggedBoxes(rng, n)
		inputs := append([]*BoundingBox(nil), boxes...)

		tree := Build(boxes, XAxis)

		// Every input appears exactly once as a leaf
		leaves := tree.Leaves()
		if len(leaves) != n {
			t.Fatalf("[n=%d] expected %d leafs; got %d", n, n, len(leaves))
		}
		sort.Ints(leaves)
		for i, idx := range leaves {
			if idx != i {
				t.Fatalf("[n=%d] expected sorted leaf indices to be 0..%d; got %v", n, n-1, leaves)
			}
		}

		for _, box := range inputs {
			if !tree.BBox().Encloses(box) {
				t.Fatalf("[n=%d] expected root box %v to enclose %v", n, tree.BBox(), box)
			}
		}

		// Branch boxes tightly enclose their children
		tree.Walk(func(node Node, _ int) bool {
			branch, isBranch := node.(*Branch)
			if !isBranch {
				return true
			}
			if branch.Left == nil || branch.Right == nil {
				t.Fatalf("[n=%d] expected branch to have two children", n)
			}
			lb, rb := branch.Left.BBox(), branch.Right.BBox()
			if branch.Box.Min != types.MinVec3(lb.Min, rb.Min) || branch.Box.Max != types.MaxVec3(lb.Max, rb.Max) {
				t.Fatalf("[n=%d] expected branch box %v to tightly enclose %v and %v", n, branch.Box, lb, rb)
			}
			return true
		})

		// Balanced: depth is ceil(log2(n)) + 1
		if exp := ceilLog2(n) + 1; tree.Depth() != exp {
			t.Fatalf("[n=%d] expected depth %d; got %d", n, exp, tree.Depth())
		}

		stats := tree.Stats()
		if stats.Items != n || stats.Leafs != n || stats.Nodes != 2*n-1 || stats.MaxDepth != tree.Depth() {
			t.Fatalf("[n=%d] unexpected build stats: %+v", n, stats)
		}
	}
}

func TestBuildDegenerateBoxes(t *testing.T) {
	// Many coincident boxes must still terminate and produce a balanced tree
	boxes := make([]*BoundingBox, 33)
	for i := range boxes {
		boxes[i] = NewBoundingBox(1, 1, 1, 1, 1, 1)
		boxes[i].SetSurfaceIndex(i)
	}

	tree := Build(boxes, ZAxis)
	if got := len(tree.Leaves()); got != 33 {
		t.Fatalf("expected 33 leafs; got %d", got)
	}
	if exp := ceilLog2(33) + 1; tree.Depth() != exp {
		t.Fatalf("expected depth %d; got %d", exp, tree.Depth())
	}
}

func TestBuildOddSplitFavorsLeft(t *testing.T) {
	boxes := make([]*BoundingBox, 3)
	for i := range boxes {
		x := float32(i * 10)
		boxes[i] = NewBoundingBox(x, x+1, 0, 1, 0, 1)
		boxes[i].SetSurfaceIndex(i)
	}

	tree := Build(boxes, XAxis)
	root := tree.Root().(*Branch)
	if _, isBranch := root.Left.(*Branch); !isBranch {
		t.Fatalf("expected left subtree to hold 2 boxes; got %T", root.Left)
	}
	if leaf, isLeaf := root.Right.(*Leaf); !isLeaf || leaf.Box.SurfaceIndex() != 2 {
		t.Fatalf("expected right subtree to be the leaf for surface 2; got %v", root.Right.BBox())
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	boxes := randomTaggedBoxes(rng, 200)

	// Add some coincident centers to exercise tie breaking
	for i := 0; i < 10; i++ {
		dup := NewBoundingBox(0, 2, 0, 2, 0, 2)
		dup.SetSurfaceIndex(len(boxes))
		boxes = append(boxes, dup)
	}

	reference := treeSignature(Build(append([]*BoundingBox(nil), boxes...), XAxis))
	for run := 0; run < 5; run++ {
		shuffled := append([]*BoundingBox(nil), boxes...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		if got := treeSignature(Build(shuffled, XAxis)); got != reference {
			t.Fatalf("[run %d] expected rebuilt tree to be structurally identical", run)
		}
	}
}

func TestStatsString(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	out := Build(randomTaggedBoxes(rng, 10), XAxis).Stats().String()
	for _, exp := range []string{"Items", "Leafs", "Max depth", "Build time"} {
		if !strings.Contains(out, exp) {
			t.Fatalf("expected stats table to contain %q; got:\n%s", exp, out)
		}
	}
}

func randomTaggedBoxes(rng *rand.Rand, n int) []*BoundingBox {
	boxes := make([]*BoundingBox, n)
	for i := range boxes {
		boxes[i] = randomBox(rng)
		boxes[i].SetSurfaceIndex(i)
	}
	return boxes
}

func ceilLog2(n int) int {
	depth := 0
	for v := 1; v < n; v <<= 1 {
		depth++
	}
	return depth
}

// Encode tree structure, boxes and leaf surfaces as a string.
func treeSignature(tree *Tree) string {
	var sb strings.Builder
	tree.Walk(func(node Node, depth int) bool {
		if _, isLeaf := node.(*Leaf); isLeaf {
			sb.WriteString("L")
		} else {
			sb.WriteString("B")
		}
		sb.WriteString(node.BBox().String())
		sb.WriteByte(byte('0' + depth%10))
		return true
	})
	return sb.String()
}
