package hotspot

import (
	"math"

	"github.com/sharktrack/sharktrack-backend-go/internal/models"
	"github.com/sharktrack/sharktrack-backend-go/internal/spatial"
	"github.com/sharktrack/sharktrack-backend-go/pkg/errs"
)

// Config controls hotspot selection and clustering
type Config struct {
	Threshold               float64 // Samples strictly above are hotspots
	ClusterRadiusPx         float64 // Cluster radius in screen pixels
	MaxZoom                 int     // Requested zooms are clamped to [0, MaxZoom]
	DisableClusteringAtZoom int     // At or above this zoom every hotspot stands alone, 0 disables
}

// DefaultConfig matches the map page marker layer
func DefaultConfig() Config {
	return Config{
		Threshold:       0.9,
		ClusterRadiusPx: 80,
		MaxZoom:         20,
	}
}

// Validate checks the configuration
func (c Config) Validate() error {
	if math.IsNaN(c.Threshold) || math.IsInf(c.Threshold, 0) {
		return errs.NewConfigError("hotspot", "threshold", "must be a finite number, got %v", c.Threshold)
	}
	if !(c.ClusterRadiusPx > 0) || math.IsInf(c.ClusterRadiusPx, 0) {
		return errs.NewConfigError("hotspot", "cluster_radius_px", "must be a positive number, got %v", c.ClusterRadiusPx)
	}
	if c.MaxZoom < 0 {
		return errs.NewConfigError("hotspot", "max_zoom", "must not be negative, got %d", c.MaxZoom)
	}
	if c.DisableClusteringAtZoom < 0 {
		return errs.NewConfigError("hotspot", "disable_clustering_at_zoom", "must not be negative, got %d", c.DisableClusteringAtZoom)
	}
	return nil
}

// Selector picks significant samples and clusters them for marker rendering
type Selector struct {
	cfg Config
}

// NewSelector validates the config and creates a selector
func NewSelector(cfg Config) (*Selector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Selector{cfg: cfg}, nil
}

// Config returns the selector configuration
func (s *Selector) Config() Config {
	return s.cfg
}

// WithThreshold returns a copy of the selector using another threshold
func (s *Selector) WithThreshold(threshold float64) (*Selector, error) {
	cfg := s.cfg
	cfg.Threshold = threshold
	return NewSelector(cfg)
}

// Select keeps every sample with probability strictly above the threshold.
// There is no upper bound.
func (s *Selector) Select(dataset models.Dataset) []models.Hotspot {
	hotspots := make([]models.Hotspot, 0)
	for _, sample := range dataset {
		if sample.Probability > s.cfg.Threshold {
			hotspots = append(hotspots, models.Hotspot{Sample: sample})
		}
	}
	return hotspots
}

// ClampZoom bounds a requested zoom to [0, MaxZoom]
func (s *Selector) ClampZoom(zoom int) int {
	if zoom < 0 {
		return 0
	}
	if zoom > s.cfg.MaxZoom {
		return s.cfg.MaxZoom
	}
	return zoom
}

// RadiusMeters returns the clustering distance at the given zoom.
// Zero means clustering is disabled at that zoom.
func (s *Selector) RadiusMeters(zoom int) float64 {
	zoom = s.ClampZoom(zoom)
	if s.cfg.DisableClusteringAtZoom > 0 && zoom >= s.cfg.DisableClusteringAtZoom {
		return 0
	}
	return spatial.PixelsToMeters(s.cfg.ClusterRadiusPx, zoom)
}

// Run selects hotspots from the dataset and clusters them at the given zoom
func (s *Selector) Run(dataset models.Dataset, zoom int) models.HotspotResponse {
	hotspots := s.Select(dataset)
	radius := s.RadiusMeters(zoom)
	clusters := Cluster(hotspots, radius)

	return models.HotspotResponse{
		Clusters:     clusters,
		ClusterCount: len(clusters),
		HotspotCount: len(hotspots),
		Threshold:    s.cfg.Threshold,
		Zoom:         s.ClampZoom(zoom),
		RadiusMeters: radius,
	}
}
