package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sharktrack/sharktrack-backend-go/internal/config"
	"github.com/sharktrack/sharktrack-backend-go/internal/heatmap"
	"github.com/sharktrack/sharktrack-backend-go/internal/hotspot"
	"github.com/sharktrack/sharktrack-backend-go/internal/ingest"
	"github.com/sharktrack/sharktrack-backend-go/internal/metrics"
	"github.com/sharktrack/sharktrack-backend-go/internal/models"
	"github.com/sharktrack/sharktrack-backend-go/internal/source"
	"github.com/sharktrack/sharktrack-backend-go/internal/stats"
)

// Pipeline stage names used for metrics and logs
const (
	StageLoad       = "load"
	StageIngest     = "ingest"
	StageSummary    = "summary"
	StageHistogram  = "histogram"
	StageConfidence = "confidence"
	StageHeatmap    = "heatmap"
	StageHotspots   = "hotspots"
)

// PipelineService runs the visualization pipeline against the configured source.
// Every call re-fetches the source and recomputes; nothing derived is cached.
type PipelineService struct {
	src      source.Source
	ingestor *ingest.Ingestor
	binSpec  stats.BinSpec
	heat     *heatmap.Builder
	selector *hotspot.Selector
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewPipelineService builds the pipeline components from validated configuration
func NewPipelineService(src source.Source, p *config.Pipeline, m *metrics.Metrics, logger *zap.Logger) (*PipelineService, error) {
	ingestor, err := ingest.New(p.Mapping, p.Policy)
	if err != nil {
		return nil, err
	}
	heat, err := heatmap.NewBuilder(p.Heatmap)
	if err != nil {
		return nil, err
	}
	selector, err := hotspot.NewSelector(p.Hotspots)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &PipelineService{
		src:      src,
		ingestor: ingestor,
		binSpec:  p.BinSpec,
		heat:     heat,
		selector: selector,
		metrics:  m,
		logger:   logger.Named("pipeline"),
	}, nil
}

// SourceName returns the name of the configured source
func (s *PipelineService) SourceName() string {
	return s.src.Name()
}

// Load fetches and ingests the source collection. A source failure stops the
// pipeline before any component runs.
func (s *PipelineService) Load(ctx context.Context) (ingest.Result, error) {
	start := time.Now()
	data, err := s.src.Load(ctx)
	s.metrics.ObserveStage(StageLoad, time.Since(start).Seconds())
	if err != nil {
		if s.metrics != nil {
			s.metrics.SourceErrors.WithLabelValues(s.src.Name()).Inc()
		}
		s.logger.Warn("source load failed", zap.String("source", s.src.Name()), zap.Error(err))
		return ingest.Result{}, err
	}

	result, err := s.Ingest(data)
	if err != nil {
		// keep a bad body from being served again until it expires
		if inv, ok := s.src.(source.Invalidator); ok {
			inv.Invalidate()
		}
		return ingest.Result{}, err
	}
	return result, nil
}

// Ingest runs the ingestor on raw collection bytes
func (s *PipelineService) Ingest(data []byte) (ingest.Result, error) {
	start := time.Now()
	result, err := s.ingestor.Ingest(data)
	s.metrics.ObserveStage(StageIngest, time.Since(start).Seconds())
	if err != nil {
		return ingest.Result{}, fmt.Errorf("failed to ingest %s: %w", s.src.Name(), err)
	}

	if s.metrics != nil {
		s.metrics.FeaturesIngested.Add(float64(result.Total))
		s.metrics.FeaturesDropped.Add(float64(result.Dropped))
	}
	if result.Dropped > 0 {
		s.logger.Debug("dropped malformed features",
			zap.String("source", s.src.Name()),
			zap.Int("total", result.Total),
			zap.Int("dropped", result.Dropped),
		)
	}
	return result, nil
}

// Histogram returns the probability distribution of the source
func (s *PipelineService) Histogram(ctx context.Context) (models.Histogram, error) {
	result, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return s.histogram(result.Dataset), nil
}

// Summary returns descriptive statistics of the source probabilities
func (s *PipelineService) Summary(ctx context.Context) (models.ProbabilityStats, error) {
	result, err := s.Load(ctx)
	if err != nil {
		return models.ProbabilityStats{}, err
	}
	return s.summary(result.Dataset), nil
}

// Confidence returns the confidence tier summary of the source
func (s *PipelineService) Confidence(ctx context.Context) (models.ConfidenceSummary, error) {
	result, err := s.Load(ctx)
	if err != nil {
		return models.ConfidenceSummary{}, err
	}
	return s.confidence(result.Dataset), nil
}

// HeatField returns the weighted heat field of the source
func (s *PipelineService) HeatField(ctx context.Context) (models.HeatField, error) {
	result, err := s.Load(ctx)
	if err != nil {
		return models.HeatField{}, err
	}
	return s.heatField(result.Dataset), nil
}

// Hotspots returns the clustered marker layer at the requested zoom
func (s *PipelineService) Hotspots(ctx context.Context, filter models.HotspotFilter) (models.HotspotResponse, error) {
	selector, err := s.selectorFor(filter)
	if err != nil {
		return models.HotspotResponse{}, err
	}

	result, err := s.Load(ctx)
	if err != nil {
		return models.HotspotResponse{}, err
	}
	return s.hotspots(selector, result.Dataset, filter.Zoom), nil
}

// Overview computes every view from a single source snapshot.
// The reductions only read the dataset, so they run concurrently.
func (s *PipelineService) Overview(ctx context.Context, filter models.HotspotFilter) (*models.Overview, error) {
	selector, err := s.selectorFor(filter)
	if err != nil {
		return nil, err
	}

	result, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	overview := &models.Overview{
		Source:   s.src.Name(),
		Ingested: len(result.Dataset),
		Dropped:  result.Dropped,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		overview.Summary = s.summary(result.Dataset)
		return gctx.Err()
	})
	g.Go(func() error {
		overview.Histogram = s.histogram(result.Dataset)
		return gctx.Err()
	})
	g.Go(func() error {
		overview.Confidence = s.confidence(result.Dataset)
		return gctx.Err()
	})
	g.Go(func() error {
		overview.HeatField = s.heatField(result.Dataset)
		return gctx.Err()
	})
	g.Go(func() error {
		overview.Hotspots = s.hotspots(selector, result.Dataset, filter.Zoom)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return overview, nil
}

func (s *PipelineService) selectorFor(filter models.HotspotFilter) (*hotspot.Selector, error) {
	if filter.Threshold == nil {
		return s.selector, nil
	}
	return s.selector.WithThreshold(*filter.Threshold)
}

func (s *PipelineService) summary(dataset models.Dataset) models.ProbabilityStats {
	defer s.observe(StageSummary, time.Now())
	return stats.Describe(dataset)
}

func (s *PipelineService) histogram(dataset models.Dataset) models.Histogram {
	defer s.observe(StageHistogram, time.Now())
	return stats.Bin(dataset, s.binSpec)
}

func (s *PipelineService) confidence(dataset models.Dataset) models.ConfidenceSummary {
	defer s.observe(StageConfidence, time.Now())
	return stats.Summarize(dataset, s.binSpec)
}

func (s *PipelineService) heatField(dataset models.Dataset) models.HeatField {
	defer s.observe(StageHeatmap, time.Now())
	return s.heat.Build(dataset)
}

func (s *PipelineService) hotspots(selector *hotspot.Selector, dataset models.Dataset, zoom int) models.HotspotResponse {
	defer s.observe(StageHotspots, time.Now())
	return selector.Run(dataset, zoom)
}

func (s *PipelineService) observe(stage string, start time.Time) {
	s.metrics.ObserveStage(stage, time.Since(start).Seconds())
}
