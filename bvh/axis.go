package bvh

type Axis uint8

const (
	XAxis Axis = iota
	YAxis
	ZAxis
)

var (
	axisNames = [...]string{XAxis: "X", YAxis: "Y", ZAxis: "Z"}

	// Successor table for the X -> Y -> Z -> X split axis cycle. Indexing
	// with anything outside the three defined axes panics.
	nextAxis = [...]Axis{XAxis: YAxis, YAxis: ZAxis, ZAxis: XAxis}
)

// Get the split axis for the next tree level.
func (a Axis) Next() Axis {
	return nextAxis[a]
}

func (a Axis) String() string {
	return axisNames[a]
}
