package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/achilleasa/raytra/log"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
)

const testScene = `# a quad behind a sphere
v -4 -4 -5
v 4 -4 -5
v 4 4 -5
v -4 4 -5
f 1 2 3 4
s 0 0 -3 0.5
c 0 0 0 0 0 -1 1 2 2 8 8
`

func newTestApp() *cli.App {
	app := cli.NewApp()
	app.Flags = []cli.Flag{
		cli.BoolFlag{Name: "v"},
		cli.BoolFlag{Name: "vv"},
	}
	app.Commands = []cli.Command{
		{
			Name:   "build",
			Action: BuildBVH,
		},
		{
			Name: "trace",
			Flags: []cli.Flag{
				cli.IntFlag{Name: "width"},
				cli.IntFlag{Name: "height"},
				cli.IntFlag{Name: "spp", Value: 1},
				cli.IntFlag{Name: "workers"},
				cli.Int64Flag{Name: "seed"},
				cli.BoolFlag{Name: "linear"},
			},
			Action: TraceFrame,
		},
	}
	return app
}

func captureLogs(t *testing.T) *bytes.Buffer {
	var buf bytes.Buffer
	log.SetSink(&buf)
	t.Cleanup(func() {
		log.SetSink(os.Stdout)
		log.SetLevel(log.Notice)
	})
	return &buf
}

func writeTestScene(t *testing.T, contents string) string {
	sceneFile := filepath.Join(t.TempDir(), "scene.obj")
	require.NoError(t, os.WriteFile(sceneFile, []byte(contents), 0644))
	return sceneFile
}

func TestBuildCommand(t *testing.T) {
	logs := captureLogs(t)
	sceneFile := writeTestScene(t, testScene)

	err := newTestApp().Run([]string{"raytra", "build", sceneFile, "ignored.txt"})
	require.NoError(t, err)
	require.Contains(t, logs.String(), "BVH information")
	require.Contains(t, logs.String(), "skipping unsupported file ignored.txt")

	err = newTestApp().Run([]string{"raytra", "build"})
	require.EqualError(t, err, "missing scene file argument")
}

func TestTraceCommand(t *testing.T) {
	logs := captureLogs(t)
	sceneFile := writeTestScene(t, testScene)

	err := newTestApp().Run([]string{"raytra", "-v", "trace", "--workers", "3", "--spp", "2", "--linear", sceneFile})
	require.NoError(t, err)
	require.Contains(t, logs.String(), "traced 8x8 frame")
	require.Contains(t, logs.String(), "visible surfaces: 3")
	require.Contains(t, logs.String(), "raytra_rays_traced_total: 256")
}

func TestTraceCommandWithoutCamera(t *testing.T) {
	captureLogs(t)
	sceneFile := writeTestScene(t, "s 0 0 -3 1\n")

	err := newTestApp().Run([]string{"raytra", "trace", sceneFile})
	require.Error(t, err)
	require.Equal(t, "tracer: no camera defined", err.Error())
}

func TestTraceCommandRejectsNegativeFlags(t *testing.T) {
	captureLogs(t)
	sceneFile := writeTestScene(t, testScene)

	specs := []struct {
		flag   string
		expErr string
	}{
		{"--width", "invalid value for --width: -1"},
		{"--height", "invalid value for --height: -1"},
		{"--spp", "invalid value for --spp: -1"},
		{"--workers", "invalid value for --workers: -1"},
	}

	for specIndex, spec := range specs {
		err := newTestApp().Run([]string{"raytra", "trace", spec.flag + "=-1", sceneFile})
		require.EqualError(t, err, spec.expErr, "spec %d", specIndex)
	}
}
