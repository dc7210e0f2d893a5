package main

import (
	"os"

	"github.com/achilleasa/raytra/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "raytra"
	app.Usage = "build bounding volume hierarchies and trace nearest-hit rays"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "build",
			Usage: "build a BVH for one or more scenes and display its statistics",
			Description: `
Parse a scene definition from a wavefront obj file and build a bounding volume
hierarchy over its primitives using median splits along the X, Y and Z axes.`,
			ArgsUsage: "scene_file1.obj scene_file2.obj ...",
			Action:    cmd.BuildBVH,
		},
		{
			Name:  "trace",
			Usage: "trace a frame of nearest-hit queries",
			Description: `
Cast camera rays through every pixel of the scene camera and report the nearest
surface hit by each pixel. The scene file must define a camera.`,
			ArgsUsage: "scene_file.obj",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "width",
					Value: 0,
					Usage: "frame width (defaults to the camera width)",
				},
				cli.IntFlag{
					Name:  "height",
					Value: 0,
					Usage: "frame height (defaults to the camera height)",
				},
				cli.IntFlag{
					Name:  "spp",
					Value: 1,
					Usage: "strata per pixel axis; each pixel is sampled spp*spp times",
				},
				cli.IntFlag{
					Name:  "workers",
					Value: 0,
					Usage: "number of tracing workers (defaults to the number of CPUs)",
				},
				cli.Int64Flag{
					Name:  "seed",
					Value: 0,
					Usage: "random seed for sample jittering",
				},
				cli.BoolFlag{
					Name:  "linear",
					Usage: "query the flattened BVH layout",
				},
			},
			Action: cmd.TraceFrame,
		},
	}

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}
