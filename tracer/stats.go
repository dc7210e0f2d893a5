package tracer

import (
	"bytes"
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
)

type WorkerStat struct {
	// The worker id.
	Id int

	// The block height and the percentage of total frame area it represents.
	BlockH       uint32
	FramePercent float32

	// Rays traced by this worker and how many of them hit a surface.
	Rays uint64
	Hits uint64

	// Trace time for assigned block
	TraceTime time.Duration
}

type FrameStats struct {
	// Individual worker stats.
	Workers []WorkerStat

	// Totals for the entire frame.
	Rays      uint64
	Hits      uint64
	TraceTime time.Duration
}

// Build a tabular representation of the per-worker frame statistics.
func (s FrameStats) String() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Worker", "Block height", "% of frame", "Rays", "Hits", "Trace time"})
	for _, stat := range s.Workers {
		table.Append([]string{
			fmt.Sprintf("%d", stat.Id),
			fmt.Sprintf("%d", stat.BlockH),
			fmt.Sprintf("%02.1f %%", stat.FramePercent),
			fmt.Sprintf("%d", stat.Rays),
			fmt.Sprintf("%d", stat.Hits),
			fmt.Sprintf("%s", stat.TraceTime),
		})
	}
	table.SetFooter([]string{"", "", "TOTAL", fmt.Sprintf("%d", s.Rays), fmt.Sprintf("%d", s.Hits), fmt.Sprintf("%s", s.TraceTime)})
	table.Render()
	return buf.String()
}
