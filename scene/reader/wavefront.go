package reader

import (
	"bufio"
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/achilleasa/raytra/asset"
	"github.com/achilleasa/raytra/log"
	"github.com/achilleasa/raytra/scene"
	"github.com/achilleasa/raytra/types"
)

type wavefrontSceneReader struct {
	logger log.Logger

	// The parsed scene.
	scene *scene.Scene

	// Coordinates referenced by faces.
	vertexList []types.Vec3

	faceCount int

	// Include trail used for annotating errors.
	errStack []string

	// Paths of the resources currently being parsed.
	openPaths map[string]struct{}
}

// Create a new text scene reader.
func newWavefrontReader() *wavefrontSceneReader {
	return &wavefrontSceneReader{
		logger:     log.New("wavefront scene reader"),
		scene:      scene.NewScene(),
		vertexList: make([]types.Vec3, 0),
		errStack:   make([]string, 0),
		openPaths:  make(map[string]struct{}),
	}
}

// Read scene definition.
func (r *wavefrontSceneReader) Read(ctx context.Context, sceneRes *asset.Resource) (*scene.Scene, error) {
	r.logger.Noticef(`parsing scene from "%s"`, sceneRes.Path())
	start := time.Now()

	err := r.parse(ctx, sceneRes)
	if err != nil {
		return nil, err
	}

	r.logger.Noticef("read %d vertices and %d faces", len(r.vertexList), r.faceCount)
	r.logger.Debugf("parsed scene in %d ms", time.Since(start).Nanoseconds()/1e6)
	return r.scene, nil
}

// Generate an error message that also includes any data in the error stack.
func (r *wavefrontSceneReader) emitError(file string, line int, msgFormat string, args ...interface{}) error {
	msg := fmt.Sprintf(msgFormat, args...)

	var errMsg string
	if file != "" {
		errMsg = strings.Trim(
			fmt.Sprintf("[%s: %d] error: %s\n%s", file, line, msg, strings.Join(r.errStack, "\n")),
			"\n",
		)
	} else {
		errMsg = strings.Trim(
			fmt.Sprintf("error: %s\n%s", msg, strings.Join(r.errStack, "\n")),
			"\n",
		)
	}

	return fmt.Errorf("%s", errMsg)
}

// Push a frame to the error stack.
func (r *wavefrontSceneReader) pushFrame(msg string) {
	r.errStack = append([]string{msg}, r.errStack...)
}

// Pop a frame from the error stack.
func (r *wavefrontSceneReader) popFrame() {
	r.errStack = r.errStack[1:]
}

// Parse wavefront object scene format.
func (r *wavefrontSceneReader) parse(ctx context.Context, res *asset.Resource) error {
	var lineNum int = 0

	resKey := resourceKey(res)
	r.openPaths[resKey] = struct{}{}
	defer delete(r.openPaths, resKey)

	// Included files use 1-based indices relative to their own vertex list.
	relVertexOffset := len(r.vertexList)

	scanner := bufio.NewScanner(res)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "call":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 1 argument; got %d`, lineTokens[0], len(lineTokens)-1)
			}

			incRes, err := asset.NewResource(ctx, lineTokens[1], res)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			if _, open := r.openPaths[resourceKey(incRes)]; open {
				incRes.Close()
				return r.emitError(res.Path(), lineNum, "circular include of %s", incRes.Path())
			}

			r.pushFrame(fmt.Sprintf("referenced from %s:%d [%s]", res.Path(), lineNum, lineTokens[0]))

			err = r.parse(ctx, incRes)
			incRes.Close()
			if err != nil {
				return err
			}
			r.popFrame()
		case "v":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			r.vertexList = append(r.vertexList, v)
		case "f":
			primList, err := r.parseFace(lineTokens, relVertexOffset)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			if err = r.addPrimitives(primList...); err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			r.faceCount++
		case "s":
			sphere, err := parseSphere(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			if err = r.addPrimitives(sphere); err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
		case "c":
			camera, err := parseCamera(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			r.scene.SetCamera(camera)
		default:
			r.logger.Debugf("[%s: %d] ignoring unsupported keyword %q", res.Path(), lineNum, lineTokens[0])
		}
	}

	if err := scanner.Err(); err != nil {
		return r.emitError(res.Path(), lineNum, "%s", err.Error())
	}
	return nil
}

// Local resources are keyed by their absolute path so that relative and
// resolved references to the same file compare equal.
func resourceKey(res *asset.Resource) string {
	if res.IsRemote() {
		return res.Path()
	}
	if absPath, err := filepath.Abs(res.Path()); err == nil {
		return absPath
	}
	return res.Path()
}

// Append primitives to the scene.
func (r *wavefrontSceneReader) addPrimitives(primList ...scene.Primitive) error {
	for _, prim := range primList {
		if _, err := r.scene.AddPrimitive(prim); err != nil {
			return err
		}
	}
	return nil
}

// Parse a face definition into triangles. Each face argument may use any of
// the v, v/vt, v//vn or v/vt/vn forms; only the vertex index is used.
//
// This method only works with triangular/quad faces and will return an error if a
// face with more than 4 vertices is encountered.
func (r *wavefrontSceneReader) parseFace(lineTokens []string, relVertexOffset int) ([]scene.Primitive, error) {
	if len(lineTokens) < 4 || len(lineTokens) > 5 {
		return nil, fmt.Errorf(`unsupported syntax for "f"; expected 3 arguments for triangular face or 4 arguments for a quad face; got %d`, len(lineTokens)-1)
	}

	var vertices [4]types.Vec3
	expIndices := 0
	for arg := 0; arg < len(lineTokens)-1; arg++ {
		vTokens := strings.Split(lineTokens[arg+1], "/")

		// The first arg defines the format for the following args
		if arg == 0 {
			expIndices = len(vTokens)
		} else if len(vTokens) != expIndices {
			return nil, fmt.Errorf("expected each face argument to contain %d indices; arg %d contains %d indices", expIndices, arg, len(vTokens))
		}

		if vTokens[0] == "" {
			return nil, fmt.Errorf("face argument %d does not include a vertex index", arg)
		}

		vOffset, err := selectFaceCoordIndex(vTokens[0], len(r.vertexList), relVertexOffset)
		if err != nil {
			return nil, fmt.Errorf("could not parse vertex coord for face argument %d: %s", arg, err.Error())
		}
		vertices[arg] = r.vertexList[vOffset]
	}

	// Quads are split along the 0-2 diagonal
	primitives := []scene.Primitive{
		scene.NewTriangle(vertices[0], vertices[1], vertices[2]),
	}
	if len(lineTokens) == 5 {
		primitives = append(primitives, scene.NewTriangle(vertices[0], vertices[2], vertices[3]))
	}
	return primitives, nil
}

// Parse a sphere definition: s x y z radius
func parseSphere(lineTokens []string) (*scene.Sphere, error) {
	if len(lineTokens) != 5 {
		return nil, fmt.Errorf(`unsupported syntax for "s"; expected 4 arguments; got %d`, len(lineTokens)-1)
	}

	center, err := parseVec3(lineTokens)
	if err != nil {
		return nil, err
	}
	radius, err := parseFloat32(lineTokens[3:])
	if err != nil {
		return nil, err
	}
	if radius <= 0 {
		return nil, fmt.Errorf("sphere radius must be positive; got %v", radius)
	}
	return scene.NewSphere(center, radius), nil
}

// Parse a camera definition: c x y z vx vy vz d iw ih pw ph
func parseCamera(lineTokens []string) (*scene.Camera, error) {
	if len(lineTokens) != 12 {
		return nil, fmt.Errorf(`unsupported syntax for "c"; expected 11 arguments; got %d`, len(lineTokens)-1)
	}

	eye, err := parseVec3(lineTokens)
	if err != nil {
		return nil, err
	}
	dir, err := parseVec3(lineTokens[3:])
	if err != nil {
		return nil, err
	}

	var planeDims [3]float32
	for i := range planeDims {
		planeDims[i], err = parseFloat32(lineTokens[6+i:])
		if err != nil {
			return nil, err
		}
	}

	var pixels [2]int
	for i := range pixels {
		val, err := strconv.ParseInt(lineTokens[10+i], 10, 32)
		if err != nil {
			return nil, err
		}
		pixels[i] = int(val)
	}

	return scene.NewCamera(eye, dir, planeDims[0], planeDims[1], planeDims[2], pixels[0], pixels[1])
}

// Given an index for a face coord calculate the proper offset into the coord
// list. Wavefront format can also use negative indices to reference elements
// from the end of the coord list.
func selectFaceCoordIndex(indexToken string, coordListLen int, relOffset int) (int, error) {
	index, err := strconv.ParseInt(indexToken, 10, 32)
	if err != nil {
		return -1, err
	}

	var vOffset int = 0
	if index == 0 {
		return -1, fmt.Errorf("index 0 is not a valid coord index")
	} else if index < 0 {
		vOffset = coordListLen + int(index)
	} else {
		vOffset = relOffset + int(index-1)
	}
	if vOffset < 0 || vOffset >= coordListLen {
		return -1, fmt.Errorf("index out of bounds")
	}
	return vOffset, nil
}

// Parse a float scalar value.
func parseFloat32(lineTokens []string) (float32, error) {
	if len(lineTokens) < 2 {
		return 0, fmt.Errorf(`unsupported syntax for "%s"; expected 1 argument; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	val, err := strconv.ParseFloat(lineTokens[1], 32)
	if err != nil {
		return 0, err
	}

	return float32(val), nil
}

// Parse a Vec3 row.
func parseVec3(lineTokens []string) (types.Vec3, error) {
	if len(lineTokens) < 4 {
		return types.Vec3{}, fmt.Errorf(`unsupported syntax for "%s"; expected 3 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec3{}
	for tokIdx := 1; tokIdx <= 3; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}
