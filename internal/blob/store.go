// Package blob is the remote object store holding drawings and inspection
// photos. Keys follow "{project}/{drawing}/..." throughout.
package blob

import (
	"context"
	"errors"
	"path"
	"strings"
)

// ErrNotFound is returned by Download when the key does not exist.
var ErrNotFound = errors.New("blob: object not found")

// Store is the subset of an object store the pipeline needs.
type Store interface {
	Download(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
	Upload(ctx context.Context, key string, data []byte, contentType string) error
}

// DrawingKey returns the canonical key of a drawing's DXF file.
func DrawingKey(project, drawing string) string {
	return project + "/" + drawing + "/" + drawing + ".dxf"
}

// FindDrawing returns the canonical drawing key when present, otherwise the
// first key under the project whose folder contains the drawing name and
// whose file is "{drawing}.dxf".
func FindDrawing(ctx context.Context, s Store, project, drawing string) (string, error) {
	canonical := DrawingKey(project, drawing)
	keys, err := s.List(ctx, project+"/")
	if err != nil {
		return "", err
	}
	for _, key := range keys {
		if key == canonical {
			return key, nil
		}
	}
	for _, key := range keys {
		dir, file := path.Split(strings.TrimPrefix(key, project+"/"))
		if file == drawing+".dxf" && strings.Contains(dir, drawing) {
			return key, nil
		}
	}
	return "", ErrNotFound
}
