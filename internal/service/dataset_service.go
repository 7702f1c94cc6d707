package service

import (
	"context"
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"github.com/sharktrack/sharktrack-backend-go/internal/config"
	"github.com/sharktrack/sharktrack-backend-go/internal/ingest"
	"github.com/sharktrack/sharktrack-backend-go/internal/models"
	"github.com/sharktrack/sharktrack-backend-go/internal/repository"
	"github.com/sharktrack/sharktrack-backend-go/pkg/errs"
)

var datasetNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidDatasetName reports whether name can be used as a dataset key
func ValidDatasetName(name string) bool {
	return datasetNamePattern.MatchString(name)
}

// DatasetService handles business logic for stored source datasets
type DatasetService struct {
	repo     *repository.FeatureRepository
	ingestor *ingest.Ingestor
	logger   *zap.Logger
}

// NewDatasetService creates a new dataset service
func NewDatasetService(repo *repository.FeatureRepository, p *config.Pipeline, logger *zap.Logger) (*DatasetService, error) {
	ingestor, err := ingest.New(p.Mapping, p.Policy)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DatasetService{repo: repo, ingestor: ingestor, logger: logger.Named("datasets")}, nil
}

// List returns every stored dataset
func (s *DatasetService) List(ctx context.Context) ([]models.DatasetInfo, error) {
	return s.repo.ListDatasets(ctx)
}

// Import replaces the named dataset with the uploaded feature collection.
// Features are stored as sent; the counts report how ingestion will treat them.
func (s *DatasetService) Import(ctx context.Context, name string, data []byte) (*models.ImportResult, error) {
	if !ValidDatasetName(name) {
		return nil, fmt.Errorf("%w: invalid dataset name %q", errs.ErrMalformedInput, name)
	}

	features, err := ingest.SplitCollection(data)
	if err != nil {
		return nil, err
	}
	result, err := s.ingestor.Ingest(data)
	if err != nil {
		return nil, err
	}

	stored, err := s.repo.ReplaceDataset(ctx, name, features)
	if err != nil {
		return nil, fmt.Errorf("failed to store dataset %s: %w", name, err)
	}

	s.logger.Info("dataset imported",
		zap.String("dataset", name),
		zap.Int("stored", stored),
		zap.Int("dropped", result.Dropped),
	)

	return &models.ImportResult{
		Dataset: name,
		Stored:  stored,
		Valid:   len(result.Dataset),
		Dropped: result.Dropped,
	}, nil
}
