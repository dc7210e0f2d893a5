package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/achilleasa/raytra/bvh"
	"github.com/achilleasa/raytra/scene/reader"
	"github.com/achilleasa/raytra/tracer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli"
)

// Trace a single frame of a scene and display hit statistics.
func TraceFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}

	var flagValues [4]uint32
	for i, name := range []string{"width", "height", "spp", "workers"} {
		val := ctx.Int(name)
		if val < 0 {
			err := fmt.Errorf("invalid value for --%s: %d", name, val)
			logger.Error(err)
			return err
		}
		flagValues[i] = uint32(val)
	}

	opts := tracer.Options{
		FrameW:          flagValues[0],
		FrameH:          flagValues[1],
		SamplesPerPixel: flagValues[2],
		Workers:         int(flagValues[3]),
		Seed:            ctx.Int64("seed"),
		UseLinearBVH:    ctx.Bool("linear"),
	}

	// Abort tracing on interrupt
	traceCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sc, err := reader.ReadScene(traceCtx, ctx.Args().First())
	if err != nil {
		logger.Error(err)
		return err
	}

	tree, err := sc.BuildBVH()
	if err != nil {
		logger.Error(err)
		return err
	}

	reg := prometheus.NewRegistry()
	tr, err := tracer.NewTracer(tree, sc, sc.Camera, tracer.NewPerfectScheduler(), tracer.NewMetrics(reg))
	if err != nil {
		logger.Error(err)
		return err
	}

	frame, err := tr.Trace(traceCtx, opts)
	if err != nil {
		logger.Error(err)
		return err
	}

	displayFrameStats(frame, tr.Stats())
	displayMetrics(reg)
	return nil
}

func displayFrameStats(frame *tracer.Frame, stats tracer.FrameStats) {
	hitPixels := 0
	surfaces := make(map[int32]struct{})
	for _, surfaceIndex := range frame.SurfaceIndex {
		if surfaceIndex == bvh.NoSurface {
			continue
		}
		hitPixels++
		surfaces[surfaceIndex] = struct{}{}
	}

	logger.Noticef(
		"traced %dx%d frame; pixels hit: %d (%02.1f %%), visible surfaces: %d",
		frame.W, frame.H, hitPixels, 100.0*float32(hitPixels)/float32(len(frame.SurfaceIndex)), len(surfaces),
	)
	logger.Noticef("frame statistics\n%s", stats)
}

func displayMetrics(reg prometheus.Gatherer) {
	families, err := reg.Gather()
	if err != nil {
		logger.Warningf("could not gather metrics: %s", err)
		return
	}

	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				logger.Infof("%s: %v", mf.GetName(), m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				logger.Infof("%s: count %d, sum %v", mf.GetName(), m.GetHistogram().GetSampleCount(), m.GetHistogram().GetSampleSum())
			}
		}
	}
}
