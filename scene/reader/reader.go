package reader

import (
	"context"
	"fmt"
	"strings"

	"github.com/achilleasa/raytra/asset"
	"github.com/achilleasa/raytra/scene"
)

// The Reader interface is implemented by all scene readers.
type Reader interface {
	// Read scene definition from a resource.
	Read(ctx context.Context, res *asset.Resource) (*scene.Scene, error)
}

// Read scene from a local file or an http/https URL.
func ReadScene(ctx context.Context, filename string) (*scene.Scene, error) {
	// Select reader based on file extension
	var reader Reader
	if strings.HasSuffix(filename, ".obj") {
		reader = newWavefrontReader()
	} else {
		return nil, fmt.Errorf("readScene: unsupported file format")
	}

	res, err := asset.NewResource(ctx, filename, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	return reader.Read(ctx, res)
}
