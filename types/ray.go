package types

// A ray with an origin and a direction. The direction does not need to be
// normalized.
type Ray struct {
	Origin Vec3
	Dir    Vec3
}

// Create a new ray.
func NewRay(origin, dir Vec3) Ray {
	return Ray{Origin: origin, Dir: dir}
}

// Get the point at parametric distance t along the ray.
func (r Ray) At(t float32) Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}
