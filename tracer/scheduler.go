package tracer

import "math"

// Per-worker statistics for the last traced frame.
type BlockStats struct {
	// The traced block height
	BlockH uint32

	// The time for tracing this block (in nanoseconds)
	BlockTime int64
}

// A contiguous range of frame rows assigned to a worker.
type Block struct {
	Y uint32
	H uint32
}

// The BlockScheduler interface is implemented by all block scheduling algorithms.
type BlockScheduler interface {
	// Split frame into blocks of variable height and assign them to a pool
	// of workers, optionally using the stats collected for the previous frame.
	//
	// This function returns the block height assignment for each worker.
	Schedule(workers int, frameH uint32, lastFrame []BlockStats) []uint32
}

// The naive scheduler splits the frame into blocks of equal height.
type naiveScheduler struct{}

// Create a new naive scheduler instance.
func NewNaiveScheduler() BlockScheduler {
	return naiveScheduler{}
}

func (naiveScheduler) Schedule(workers int, frameH uint32, _ []BlockStats) []uint32 {
	return evenSplit(workers, frameH)
}

// The perfect scheduler assumes that the volume of tracing work between two
// subsequent frames is approximately the same.
type perfectScheduler struct{}

// Create a new perfect scheduler instance.
func NewPerfectScheduler() BlockScheduler {
	return perfectScheduler{}
}

// Split frame into blocks of variable height using feedback collected from
// the previous frame. When previous frame information is available the
// scheduler uses the following formula for estimating the workload for
// worker w and frame i+1:
// w_i, f_i+1 = (blockH,w_i / time,w_i) / Σ(blockH_i-1 / time,i-1)
func (perfectScheduler) Schedule(workers int, frameH uint32, lastFrame []BlockStats) []uint32 {
	// Without stats for the same pool size fall back to an even split
	if len(lastFrame) != workers {
		return evenSplit(workers, frameH)
	}

	var total float64 = 0.0
	speed := make([]float64, workers)
	for idx, stats := range lastFrame {
		blockTime := math.Max(1.0, float64(stats.BlockTime))
		speed[idx] = float64(stats.BlockH) / blockTime
		total += speed[idx]
	}
	if total == 0 {
		return evenSplit(workers, frameH)
	}

	scaler := float64(frameH) / total
	blockAssignment := make([]uint32, workers)
	for idx := range blockAssignment {
		blockAssignment[idx] = uint32(math.Max(1.0, math.Floor(speed[idx]*scaler)))
	}

	return rebalance(blockAssignment, frameH)
}

// Split frameH rows into equal blocks; the first frameH % workers blocks get
// an extra row.
func evenSplit(workers int, frameH uint32) []uint32 {
	blockAssignment := make([]uint32, workers)
	rows := frameH / uint32(workers)
	extra := frameH % uint32(workers)
	for idx := range blockAssignment {
		blockAssignment[idx] = rows
		if uint32(idx) < extra {
			blockAssignment[idx]++
		}
	}
	return blockAssignment
}

// Ensure that the assigned rows add up to frameH. Missing rows are appended
// to the first worker while surplus rows are removed from the largest blocks.
func rebalance(blockAssignment []uint32, frameH uint32) []uint32 {
	var scheduledRows uint32 = 0
	for _, rows := range blockAssignment {
		scheduledRows += rows
	}

	if scheduledRows <= frameH {
		blockAssignment[0] += frameH - scheduledRows
		return blockAssignment
	}

	for ; scheduledRows > frameH; scheduledRows-- {
		largest := 0
		for idx, rows := range blockAssignment {
			if rows > blockAssignment[largest] {
				largest = idx
			}
		}
		blockAssignment[largest]--
	}
	return blockAssignment
}

// Convert a block height assignment into row ranges.
func blocksFromAssignment(blockAssignment []uint32) []Block {
	blocks := make([]Block, len(blockAssignment))
	var blockY uint32 = 0
	for idx, blockH := range blockAssignment {
		blocks[idx] = Block{Y: blockY, H: blockH}
		blockY += blockH
	}
	return blocks
}
