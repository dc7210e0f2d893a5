package scene

import (
	"errors"

	"github.com/achilleasa/raytra/bvh"
	"github.com/achilleasa/raytra/log"
	"github.com/achilleasa/raytra/types"
)

var (
	ErrEmptyScene   = errors.New("scene: no primitives defined")
	ErrNilPrimitive = errors.New("scene: nil primitive")
)

type Scene struct {
	Camera *Camera

	// Scene primitives. The index of each primitive in this list is used
	// as the surface index of its bounding box.
	Primitives []Primitive
}

func NewScene() *Scene {
	return &Scene{
		Primitives: make([]Primitive, 0),
	}
}

// Attach a camera to the scene.
func (s *Scene) SetCamera(camera *Camera) {
	s.Camera = camera
}

// Add a primitive to the scene and return its surface index.
func (s *Scene) AddPrimitive(primitive Primitive) (int, error) {
	if primitive == nil {
		return -1, ErrNilPrimitive
	}
	s.Primitives = append(s.Primitives, primitive)
	return len(s.Primitives) - 1, nil
}

// Generate a bounding box for each scene primitive tagged with the primitive
// index.
func (s *Scene) BoundingBoxes() []*bvh.BoundingBox {
	boxes := make([]*bvh.BoundingBox, len(s.Primitives))
	for index, prim := range s.Primitives {
		boxes[index] = prim.BBox()
		boxes[index].SetSurfaceIndex(index)
	}
	return boxes
}

// Build a BVH over the scene primitives, starting with a split along the X
// axis.
func (s *Scene) BuildBVH() (*bvh.Tree, error) {
	if len(s.Primitives) == 0 {
		return nil, ErrEmptyScene
	}

	tree := bvh.Build(s.BoundingBoxes(), bvh.XAxis)
	stats := tree.Stats()
	log.New("scene").Infof("built BVH for %d primitives; depth: %d, nodes: %d", len(s.Primitives), stats.MaxDepth, stats.Nodes)
	return tree, nil
}

// Intersect a ray with the primitive at surfaceIndex. This allows the scene
// to be used as a bvh.Intersector.
func (s *Scene) Intersect(surfaceIndex int, ray types.Ray) float32 {
	return s.Primitives[surfaceIndex].Intersect(ray)
}
