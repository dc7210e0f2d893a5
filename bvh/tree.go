package bvh

import (
	"sort"
	"time"

	"github.com/achilleasa/raytra/log"
)

// A BVH tree node. A node is either a *Leaf that wraps the bounding box of a
// single scene primitive or a *Branch that owns two child nodes and a box
// that encloses both of them.
type Node interface {
	// Get the node bounding box.
	BBox() *BoundingBox

	// Get the depth of the subtree rooted at this node. Leafs have depth 1.
	Depth() int

	isNode()
}

// A leaf node.
type Leaf struct {
	Box *BoundingBox
}

func (l *Leaf) BBox() *BoundingBox { return l.Box }
func (l *Leaf) Depth() int         { return 1 }
func (l *Leaf) isNode()            {}

// An internal node. Both children are always populated.
type Branch struct {
	Box   *BoundingBox
	Left  Node
	Right Node
}

func (b *Branch) BBox() *BoundingBox { return b.Box }

func (b *Branch) Depth() int {
	ld, rd := b.Left.Depth(), b.Right.Depth()
	if rd > ld {
		return 1 + rd
	}
	return 1 + ld
}

func (b *Branch) isNode() {}

// A bounding volume hierarchy. Trees are immutable once built and can be
// safely queried by multiple goroutines.
type Tree struct {
	root  Node
	stats Stats
}

type builder struct {
	logger log.Logger
	stats  Stats
}

// Build a BVH over a non-empty list of boxes using axis as the split axis
// for the root level. Each subsequent level splits along the next axis in the
// X -> Y -> Z cycle.
//
// At each level the boxes are sorted by their center along the split axis and
// split at the midpoint; for odd counts the left subtree receives the extra
// box. Ties are resolved using the centers along the remaining axes and then
// the surface index so the resulting tree only depends on the set of input
// boxes and not on their order.
//
// The boxes slice is reordered in place. Building a tree from an empty list is
// a programming error and panics.
func Build(boxes []*BoundingBox, axis Axis) *Tree {
	if len(boxes) == 0 {
		panic("bvh: cannot build a tree from an empty list of bounding boxes")
	}

	b := &builder{
		logger: log.New("bvh builder"),
		stats:  Stats{Items: len(boxes)},
	}

	start := time.Now()
	root := b.partition(boxes, axis, 1)
	b.stats.BuildTime = time.Since(start)
	b.logger.Debugf(
		"BVH tree build time: %d ms, items: %d, maxDepth: %d, nodes: %d, leafs: %d",
		b.stats.BuildTime.Nanoseconds()/1e6,
		b.stats.Items, b.stats.MaxDepth, b.stats.Nodes, b.stats.Leafs,
	)

	return &Tree{root: root, stats: b.stats}
}

// Partition the work list and return the root of the generated subtree.
func (b *builder) partition(workList []*BoundingBox, axis Axis, depth int) Node {
	b.stats.Nodes++
	if depth > b.stats.MaxDepth {
		b.stats.MaxDepth = depth
	}

	if len(workList) == 1 {
		b.stats.Leafs++
		return &Leaf{Box: workList[0]}
	}

	sort.Slice(workList, func(i, j int) bool {
		return splitLess(workList[i], workList[j], axis)
	})

	// Both halves are non-empty and strictly smaller than the work list.
	mid := (len(workList) + 1) / 2
	left := b.partition(workList[:mid], axis.Next(), depth+1)
	right := b.partition(workList[mid:], axis.Next(), depth+1)

	return &Branch{
		Box:   Combine(left.BBox(), right.BBox()),
		Left:  left,
		Right: right,
	}
}

// Order boxes by their center along axis, falling back to the other two axes
// when centers coincide. Boxes sharing a center are ordered by their min
// corner and finally by surface index.
func splitLess(a, b *BoundingBox, axis Axis) bool {
	for i := 0; i < 3; i, axis = i+1, axis.Next() {
		if CompareAlongAxis(a, b, axis) {
			return true
		}
		if CompareAlongAxis(b, a, axis) {
			return false
		}
	}
	for i := 0; i < 3; i, axis = i+1, axis.Next() {
		if a.Min[axis] != b.Min[axis] {
			return a.Min[axis] < b.Min[axis]
		}
	}
	return a.surfaceIndex < b.surfaceIndex
}

// Get the tree root.
func (t *Tree) Root() Node {
	return t.root
}

// Get the tree bounding box.
func (t *Tree) BBox() *BoundingBox {
	return t.root.BBox()
}

// Get the tree depth. A tree with a single leaf has depth 1.
func (t *Tree) Depth() int {
	return t.root.Depth()
}

// Get the statistics collected while building the tree.
func (t *Tree) Stats() Stats {
	return t.stats
}

// Visit all tree nodes in depth-first, left to right order. The callback
// receives each node and its depth (the root is at depth 1). Returning false
// from the callback skips the node's children.
func (t *Tree) Walk(fn func(node Node, depth int) bool) {
	walk(t.root, 1, fn)
}

func walk(node Node, depth int, fn func(Node, int) bool) {
	if !fn(node, depth) {
		return
	}
	if branch, isBranch := node.(*Branch); isBranch {
		walk(branch.Left, depth+1, fn)
		walk(branch.Right, depth+1, fn)
	}
}

// Get the surface indices of all tree leafs in left to right order.
func (t *Tree) Leaves() []int {
	indices := make([]int, 0, t.stats.Leafs)
	t.Walk(func(node Node, _ int) bool {
		if leaf, isLeaf := node.(*Leaf); isLeaf {
			indices = append(indices, leaf.Box.SurfaceIndex())
		}
		return true
	})
	return indices
}
