package bvh

import (
	"bytes"
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
)

// Tree statistics collected by the builder.
type Stats struct {
	// Number of boxes the tree was built from.
	Items int

	// Total nodes (branches + leafs) and leafs.
	Nodes int
	Leafs int

	// The depth of the deepest leaf; the root is at depth 1.
	MaxDepth int

	BuildTime time.Duration
}

// Build a tabular representation of the tree statistics.
func (s Stats) String() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"BVH", "Value"})
	table.Append([]string{"Items", fmt.Sprint(s.Items)})
	table.Append([]string{"Nodes", fmt.Sprint(s.Nodes)})
	table.Append([]string{"Leafs", fmt.Sprint(s.Leafs)})
	table.Append([]string{"Max depth", fmt.Sprint(s.MaxDepth)})
	table.Append([]string{"Memory", fmtSize(s.Nodes * linearNodeSize)})
	table.SetFooter([]string{"Build time", fmt.Sprintf("%d ms", s.BuildTime.Nanoseconds()/1e6)})
	table.Render()
	return buf.String()
}

// Format a byte count using the appropriate byte/kb/mb unit.
func fmtSize(totalBytes int) string {
	if totalBytes < 1e3 {
		return fmt.Sprintf("%3d bytes", totalBytes)
	} else if totalBytes < 1e6 {
		return fmt.Sprintf("%3.1f kb", float32(totalBytes)/1e3)
	}
	return fmt.Sprintf("%5.1f mb", float32(totalBytes)/1e6)
}
