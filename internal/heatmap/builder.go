package heatmap

import (
	"github.com/sharktrack/sharktrack-backend-go/internal/models"
)

// Builder projects datasets into heat fields
type Builder struct {
	cfg Config
}

// NewBuilder validates the config and creates a heat field builder
func NewBuilder(cfg Config) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	gradient := make(models.Gradient, len(cfg.Gradient))
	copy(gradient, cfg.Gradient)
	cfg.Gradient = gradient

	return &Builder{cfg: cfg}, nil
}

// Config returns the builder configuration
func (b *Builder) Config() Config {
	return b.cfg
}

// Build maps every sample with a finite probability to a heat sample weighted by
// that probability. MaxWeight is the largest such probability, 0 when there is none.
func (b *Builder) Build(dataset models.Dataset) models.HeatField {
	samples := make([]models.HeatSample, 0, len(dataset))
	maxWeight := 0.0

	for _, s := range dataset {
		if !s.HasValidProbability() {
			continue
		}
		if len(samples) == 0 || s.Probability > maxWeight {
			maxWeight = s.Probability
		}
		samples = append(samples, models.HeatSample{
			Lat:    s.Lat,
			Lng:    s.Lon,
			Weight: s.Probability,
		})
	}

	return models.HeatField{
		Samples:   samples,
		Count:     len(samples),
		MaxWeight: maxWeight,
		Options: models.HeatOptions{
			Radius:   b.cfg.Radius,
			Blur:     b.cfg.Blur,
			MaxZoom:  b.cfg.MaxZoom,
			Max:      maxWeight,
			Gradient: b.cfg.Gradient,
		},
	}
}
