package source

import (
	"context"
	"fmt"

	"github.com/sharktrack/sharktrack-backend-go/internal/repository"
	"github.com/sharktrack/sharktrack-backend-go/pkg/errs"
)

// SQLiteSource serves a dataset previously stored through the repository
type SQLiteSource struct {
	repo    *repository.FeatureRepository
	dataset string
}

// NewSQLiteSource creates a new SQLite source
func NewSQLiteSource(repo *repository.FeatureRepository, dataset string) *SQLiteSource {
	return &SQLiteSource{repo: repo, dataset: dataset}
}

// Name returns the source name
func (s *SQLiteSource) Name() string {
	return "sqlite:" + s.dataset
}

// Load returns the stored dataset as a feature collection
func (s *SQLiteSource) Load(ctx context.Context) ([]byte, error) {
	data, err := s.repo.LoadCollection(ctx, s.dataset)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrSourceUnavailable, err)
	}
	return data, nil
}
