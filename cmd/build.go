package cmd

import (
	"context"
	"errors"
	"strings"

	"github.com/achilleasa/raytra/scene/reader"
	"github.com/urfave/cli"
)

// Parse one or more scenes and display the statistics of the generated BVH.
func BuildBVH(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() == 0 {
		return errors.New("missing scene file argument")
	}

	for idx := 0; idx < ctx.NArg(); idx++ {
		sceneFile := ctx.Args().Get(idx)
		if !strings.HasSuffix(sceneFile, ".obj") {
			logger.Warningf("skipping unsupported file %s", sceneFile)
			continue
		}

		logger.Noticef("parsing scene: %s", sceneFile)
		sc, err := reader.ReadScene(context.Background(), sceneFile)
		if err != nil {
			logger.Error(err)
			return err
		}

		tree, err := sc.BuildBVH()
		if err != nil {
			logger.Error(err)
			return err
		}

		logger.Noticef("BVH information for %s:\n%s", sceneFile, tree.Stats())
	}

	return nil
}
