package tracer

import (
	"context"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/achilleasa/raytra/bvh"
	"github.com/achilleasa/raytra/log"
	"github.com/achilleasa/raytra/scene"
	"github.com/achilleasa/raytra/types"
	"golang.org/x/sync/errgroup"
)

// A traced frame. Pixel (x, y) is stored at index y*W + x; row 0 is the
// bottom row of the image plane.
type Frame struct {
	W, H int

	// Nearest surface index per pixel or bvh.NoSurface if all pixel
	// samples missed.
	SurfaceIndex []int32

	// Distance to the nearest surface per pixel or bvh.Miss.
	Dist []float32
}

func newFrame(w, h int) *Frame {
	return &Frame{
		W:            w,
		H:            h,
		SurfaceIndex: make([]int32, w*h),
		Dist:         make([]float32, w*h),
	}
}

// Get the nearest hit recorded for pixel (x, y).
func (f *Frame) At(x, y int) bvh.Hit {
	offset := y*f.W + x
	return bvh.Hit{SurfaceIndex: int(f.SurfaceIndex[offset]), Dist: f.Dist[offset]}
}

func (f *Frame) set(x, y int, hit bvh.Hit) {
	offset := y*f.W + x
	f.SurfaceIndex[offset] = int32(hit.SurfaceIndex)
	f.Dist[offset] = hit.Dist
}

// Tracer casts camera rays against a BVH using a pool of workers. The BVH
// is shared read-only between workers.
type Tracer struct {
	logger log.Logger

	tree      *bvh.Tree
	isect     bvh.Intersector
	camera    *scene.Camera
	scheduler BlockScheduler
	metrics   *Metrics

	mu        sync.Mutex
	nodes     []bvh.LinearNode
	lastFrame []BlockStats
	stats     FrameStats
}

// Create a new tracer. If scheduler is nil a perfect scheduler is used.
// The metrics argument may be nil.
func NewTracer(tree *bvh.Tree, isect bvh.Intersector, camera *scene.Camera, scheduler BlockScheduler, metrics *Metrics) (*Tracer, error) {
	if tree == nil {
		return nil, ErrNoTree
	}
	if camera == nil {
		return nil, ErrNoCamera
	}
	if scheduler == nil {
		scheduler = NewPerfectScheduler()
	}

	return &Tracer{
		logger:    log.New("tracer"),
		tree:      tree,
		isect:     isect,
		camera:    camera,
		scheduler: scheduler,
		metrics:   metrics,
	}, nil
}

// Get the statistics for the last traced frame.
func (t *Tracer) Stats() FrameStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

// Trace a frame. Rows are split into blocks which are traced concurrently.
// Each row uses its own random number generator seeded with opts.Seed plus
// the row index so the result does not depend on the number of workers.
//
// Tracing stops between rows if ctx is cancelled and ErrInterrupted is
// returned.
func (t *Tracer) Trace(ctx context.Context, opts Options) (*Frame, error) {
	cam := *t.camera
	if opts.FrameW != 0 {
		cam.PixelsX = int(opts.FrameW)
	}
	if opts.FrameH != 0 {
		cam.PixelsY = int(opts.FrameH)
	}
	if cam.PixelsX <= 0 || cam.PixelsY <= 0 || opts.SamplesPerPixel == 0 {
		return nil, ErrInvalidFrame
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > cam.PixelsY {
		workers = cam.PixelsY
	}

	nearest := t.nearestFn(opts.UseLinearBVH)

	t.mu.Lock()
	blocks := blocksFromAssignment(t.scheduler.Schedule(workers, uint32(cam.PixelsY), t.lastFrame))
	t.mu.Unlock()

	frame := newFrame(cam.PixelsX, cam.PixelsY)
	workerStats := make([]WorkerStat, len(blocks))
	strata := int(opts.SamplesPerPixel)

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for idx, block := range blocks {
		idx, block := idx, block
		g.Go(func() error {
			stat := &workerStats[idx]
			stat.Id = idx
			stat.BlockH = block.H
			stat.FramePercent = 100.0 * float32(block.H) / float32(frame.H)

			blockStart := time.Now()
			for y := int(block.Y); y < int(block.Y+block.H); y++ {
				if gctx.Err() != nil {
					return ErrInterrupted
				}

				rng := rand.New(rand.NewSource(opts.Seed + int64(y)))
				rays, hits := traceRow(&cam, frame, y, strata, rng, nearest)
				stat.Rays += rays
				stat.Hits += hits
			}
			stat.TraceTime = time.Since(blockStart)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		t.logger.Warningf("frame tracing aborted: %s", err)
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ErrInterrupted
	}

	stats := FrameStats{
		Workers:   workerStats,
		TraceTime: time.Since(start),
	}
	lastFrame := make([]BlockStats, len(workerStats))
	for idx, stat := range workerStats {
		stats.Rays += stat.Rays
		stats.Hits += stat.Hits
		lastFrame[idx] = BlockStats{BlockH: stat.BlockH, BlockTime: stat.TraceTime.Nanoseconds()}
	}

	t.mu.Lock()
	t.stats = stats
	t.lastFrame = lastFrame
	t.mu.Unlock()

	t.metrics.observeFrame(&stats)
	t.logger.Debugf(
		"traced %dx%d frame with %d workers in %d ms; rays: %d, hits: %d",
		frame.W, frame.H, len(blocks), stats.TraceTime.Nanoseconds()/1e6, stats.Rays, stats.Hits,
	)

	return frame, nil
}

// Select the BVH query implementation. The flattened layout is generated
// on first use.
func (t *Tracer) nearestFn(useLinear bool) func(types.Ray) bvh.Hit {
	if !useLinear {
		return func(ray types.Ray) bvh.Hit {
			return t.tree.Nearest(ray, t.isect)
		}
	}

	t.mu.Lock()
	if t.nodes == nil {
		t.nodes = t.tree.Linearize()
	}
	nodes := t.nodes
	t.mu.Unlock()

	return func(ray types.Ray) bvh.Hit {
		return bvh.NearestLinear(nodes, ray, t.isect)
	}
}

// Trace all pixels of row y. Each pixel is sampled by strata x strata
// jittered rays and keeps the nearest hit among them.
func traceRow(cam *scene.Camera, frame *Frame, y, strata int, rng *rand.Rand, nearest func(types.Ray) bvh.Hit) (rays, hits uint64) {
	for x := 0; x < frame.W; x++ {
		best := bvh.NoHit
		for j := 0; j < strata; j++ {
			for i := 0; i < strata; i++ {
				hit := nearest(cam.Ray(x, y, i, j, strata, rng))
				rays++
				if !hit.Ok() {
					continue
				}

				hits++
				if !best.Ok() || hit.Dist < best.Dist {
					best = hit
				}
			}
		}
		frame.set(x, y, best)
	}
	return rays, hits
}
