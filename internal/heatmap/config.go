package heatmap

import (
	"math"
	"strconv"
	"strings"

	"github.com/sharktrack/sharktrack-backend-go/internal/models"
	"github.com/sharktrack/sharktrack-backend-go/pkg/errs"
)

// Config holds the heat layer rendering options
type Config struct {
	Radius   float64         // Influence radius in pixels at the reference zoom
	Blur     float64         // Smoothing in pixels
	MaxZoom  int             // Zoom at which points reach full intensity
	Gradient models.Gradient // Ascending stops in [0,1]
}

// DefaultConfig matches the map page heat layer
func DefaultConfig() Config {
	return Config{
		Radius:  25,
		Blur:    15,
		MaxZoom: 10,
		Gradient: models.Gradient{
			{Stop: 0.4, Color: "blue"},
			{Stop: 0.6, Color: "cyan"},
			{Stop: 0.8, Color: "yellow"},
			{Stop: 1.0, Color: "red"},
		},
	}
}

// Validate checks the configuration
func (c Config) Validate() error {
	if !(c.Radius > 0) || math.IsInf(c.Radius, 0) {
		return errs.NewConfigError("heatmap", "radius", "must be a positive number, got %v", c.Radius)
	}
	if !(c.Blur >= 0) || math.IsInf(c.Blur, 0) {
		return errs.NewConfigError("heatmap", "blur", "must be a non-negative number, got %v", c.Blur)
	}
	if c.MaxZoom < 0 {
		return errs.NewConfigError("heatmap", "max_zoom", "must not be negative, got %d", c.MaxZoom)
	}
	return validateGradient(c.Gradient)
}

func validateGradient(g models.Gradient) error {
	if len(g) == 0 {
		return errs.NewConfigError("heatmap", "gradient", "at least one color stop is required")
	}
	for i, s := range g {
		if math.IsNaN(s.Stop) || s.Stop < 0 || s.Stop > 1 {
			return errs.NewConfigError("heatmap", "gradient", "stop %v is outside [0,1]", s.Stop)
		}
		if i > 0 && s.Stop <= g[i-1].Stop {
			return errs.NewConfigError("heatmap", "gradient", "stops must be strictly ascending: %v after %v", s.Stop, g[i-1].Stop)
		}
		if strings.TrimSpace(s.Color) == "" {
			return errs.NewConfigError("heatmap", "gradient", "stop %v has no color", s.Stop)
		}
	}
	return nil
}

// ParseGradient parses "stop:color" entries such as "0.4:blue" or "1.0:#ff0000".
// The result is not sorted; Validate rejects out of order stops.
func ParseGradient(entries []string) (models.Gradient, error) {
	g := make(models.Gradient, 0, len(entries))
	for _, e := range entries {
		stopStr, color, ok := strings.Cut(e, ":")
		if !ok {
			return nil, errs.NewConfigError("heatmap", "gradient", "entry %q is not in stop:color form", e)
		}
		stop, err := strconv.ParseFloat(strings.TrimSpace(stopStr), 64)
		if err != nil {
			return nil, errs.NewConfigError("heatmap", "gradient", "entry %q has a non-numeric stop", e)
		}
		g = append(g, models.GradientStop{Stop: stop, Color: strings.TrimSpace(color)})
	}
	return g, nil
}
