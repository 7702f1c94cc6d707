package source

import (
	"context"
	"fmt"
	"os"

	"github.com/sharktrack/sharktrack-backend-go/pkg/errs"
)

// Source fetches the raw GeoJSON feature collection the pipeline runs on
type Source interface {
	// Load returns the feature collection bytes
	Load(ctx context.Context) ([]byte, error)

	// Name identifies the source in logs and responses
	Name() string
}

// Invalidator is implemented by sources that keep a copy of the last body
type Invalidator interface {
	Invalidate()
}

// FileSource reads the collection from a local file
type FileSource struct {
	path string
}

// NewFileSource creates a new file source
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Name returns the source name
func (s *FileSource) Name() string {
	return "file:" + s.path
}

// Load reads the file
func (s *FileSource) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrSourceUnavailable, err)
	}
	return data, nil
}
