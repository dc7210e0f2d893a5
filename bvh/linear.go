package bvh

import "github.com/achilleasa/raytra/types"

// Size in bytes of a LinearNode (two Vec3 and two int32).
const linearNodeSize = 32

// A BVH node in a flat, depth-first node array. The LData and RData fields
// are interpreted according to the node type:
//
// - For branches they are both > 0 and point to the L/R child nodes.
// - For leafs RData is 0 and LData stores the negated surface index.
//
// The root always occupies index 0 so child indices are never 0.
type LinearNode struct {
	Min   types.Vec3
	LData int32

	Max   types.Vec3
	RData int32
}

// Set left and right child node indices.
func (n *LinearNode) SetChildNodes(left, right uint32) {
	n.LData = int32(left)
	n.RData = int32(right)
}

// Get left and right child node indices.
func (n *LinearNode) ChildNodes() (left, right uint32) {
	return uint32(n.LData), uint32(n.RData)
}

// Set the surface index for a leaf node.
func (n *LinearNode) SetSurfaceIndex(index int) {
	n.LData = -int32(index)
	n.RData = 0
}

// Get the surface index for a leaf node.
func (n *LinearNode) SurfaceIndex() int {
	return int(-n.LData)
}

// Returns true if this is a leaf node.
func (n *LinearNode) IsLeaf() bool {
	return n.RData <= 0
}

// Flatten the tree into a contiguous node array suitable for uploading to
// devices or serializing. Nodes are stored in depth-first order.
func (t *Tree) Linearize() []LinearNode {
	nodes := make([]LinearNode, 0, t.stats.Nodes)

	var flatten func(node Node) uint32
	flatten = func(node Node) uint32 {
		nodeIndex := uint32(len(nodes))
		box := node.BBox()
		nodes = append(nodes, LinearNode{Min: box.Min, Max: box.Max})

		switch n := node.(type) {
		case *Leaf:
			nodes[nodeIndex].SetSurfaceIndex(n.Box.surfaceIndex)
		case *Branch:
			left := flatten(n.Left)
			right := flatten(n.Right)
			nodes[nodeIndex].SetChildNodes(left, right)
		}
		return nodeIndex
	}

	flatten(t.root)
	return nodes
}

type stackEntry struct {
	nodeIndex uint32
	dist      float32
}

// Find the nearest primitive hit by a ray using a flat node array generated
// by Linearize. The traversal visits nodes in the same order as Tree.Nearest
// and always returns the same result.
func NearestLinear(nodes []LinearNode, ray types.Ray, isect Intersector) Hit {
	if len(nodes) == 0 {
		return NoHit
	}

	q := newQuery(ray, isect)
	rootDist, ok := entryDist(nodes[0].Min, nodes[0].Max, ray)
	if !ok {
		return NoHit
	}

	stack := make([]stackEntry, 0, 64)
	stack = append(stack, stackEntry{0, rootDist})
	for len(stack) > 0 {
		entry := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		// The best candidate may have improved since this node was pushed
		if entry.dist >= q.bestDist {
			continue
		}

		node := &nodes[entry.nodeIndex]
		if node.IsLeaf() {
			q.testLeaf(node.SurfaceIndex(), node.Min, node.Max)
			continue
		}

		left, right := node.ChildNodes()
		lDist, lOk := entryDist(nodes[left].Min, nodes[left].Max, ray)
		rDist, rOk := entryDist(nodes[right].Min, nodes[right].Max, ray)

		// Push the farther child first so the nearer one is popped next
		if rOk && (!lOk || rDist < lDist) {
			if lOk {
				stack = append(stack, stackEntry{left, lDist})
			}
			stack = append(stack, stackEntry{right, rDist})
		} else {
			if rOk {
				stack = append(stack, stackEntry{right, rDist})
			}
			if lOk {
				stack = append(stack, stackEntry{left, lDist})
			}
		}
	}

	return q.best
}
