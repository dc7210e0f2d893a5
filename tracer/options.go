package tracer

type Options struct {
	// Frame dims. If zero, the camera's pixel dimensions are used.
	FrameW uint32
	FrameH uint32

	// Number of strata per pixel axis; each pixel receives
	// SamplesPerPixel * SamplesPerPixel jittered rays.
	SamplesPerPixel uint32

	// Number of concurrent workers. If zero, one worker per CPU is used.
	Workers int

	// Seed for the per-row random number generators.
	Seed int64

	// Query the flattened BVH layout instead of the node tree.
	UseLinearBVH bool
}
