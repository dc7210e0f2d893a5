package tracer

import "errors"

var (
	ErrNoTree       = errors.New("tracer: no BVH defined")
	ErrNoCamera     = errors.New("tracer: no camera defined")
	ErrInvalidFrame = errors.New("tracer: invalid frame dimensions or sample count")
	ErrInterrupted  = errors.New("tracer: interrupted while tracing")
)
