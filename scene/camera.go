package scene

import (
	"fmt"
	"math/rand"

	"github.com/achilleasa/raytra/types"
)

// A pinhole camera that generates rays through the pixels of an image plane
// placed FocalLength units in front of the eye.
type Camera struct {
	Eye types.Vec3

	// Orthonormal camera basis. W points away from the viewing direction.
	U, V, W types.Vec3

	FocalLength float32

	// Image plane extents.
	Left, Right, Bottom, Top float32

	// Image dimensions in pixels.
	PixelsX, PixelsY int
}

// Create a camera at eye looking along dir. The image plane has dimensions
// planeW x planeH and is sampled by pixelsX x pixelsY pixels.
func NewCamera(eye, dir types.Vec3, focalLength, planeW, planeH float32, pixelsX, pixelsY int) (*Camera, error) {
	if dir.Len() == 0 {
		return nil, fmt.Errorf("camera: zero view direction")
	}
	if pixelsX <= 0 || pixelsY <= 0 {
		return nil, fmt.Errorf("camera: invalid image dimensions %dx%d", pixelsX, pixelsY)
	}

	up := types.XYZ(0, 1, 0)
	u := dir.Cross(up).Normalize()
	if u.Len() == 0 {
		return nil, fmt.Errorf("camera: view direction %v is parallel to the up vector", dir)
	}

	return &Camera{
		Eye:         eye,
		W:           dir.Neg().Normalize(),
		U:           u,
		// V points up so pixel row 0 is the bottom row of the image.
		V:           u.Cross(dir).Normalize(),
		FocalLength: focalLength,
		Left:        -planeW / 2,
		Right:       planeW / 2,
		Bottom:      -planeH / 2,
		Top:         planeH / 2,
		PixelsX:     pixelsX,
		PixelsY:     pixelsY,
	}, nil
}

// Calculate the direction of a camera ray through pixel (x, y). The pixel is
// split into strata x strata cells and (i, j) selects the cell to sample. The
// sample position within the cell is jittered using rng; if rng is nil the
// cell center is used.
func (c *Camera) RayDirection(x, y, i, j, strata int, rng *rand.Rand) types.Vec3 {
	var jx, jy float32 = 0.5, 0.5
	if rng != nil {
		jx, jy = rng.Float32(), rng.Float32()
	}

	xDisp := (jx + float32(i)) / float32(strata)
	yDisp := (jy + float32(j)) / float32(strata)
	centerX := c.Left + (c.Right-c.Left)*(float32(x)+xDisp)/float32(c.PixelsX)
	centerY := c.Bottom + (c.Top-c.Bottom)*(float32(y)+yDisp)/float32(c.PixelsY)

	return c.W.Mul(-c.FocalLength).Add(c.U.Mul(centerX)).Add(c.V.Mul(centerY)).Normalize()
}

// Generate a camera ray for a pixel sample. See RayDirection.
func (c *Camera) Ray(x, y, i, j, strata int, rng *rand.Rand) types.Ray {
	return types.NewRay(c.Eye, c.RayDirection(x, y, i, j, strata, rng))
}
