package stats

import (
	"math"
	"sort"

	"github.com/sharktrack/sharktrack-backend-go/internal/models"
	"github.com/sharktrack/sharktrack-backend-go/pkg/errs"
)

// DefaultBoundaries splits [0,1] into five equal ranges
var DefaultBoundaries = []float64{0, 0.2, 0.4, 0.6, 0.8, 1.0}

// BinSpec is a validated ascending list of histogram boundaries.
// Ranges are [b(i), b(i+1)) except the last one, which is closed on the right.
type BinSpec struct {
	bounds []float64
	labels []string
}

// NewBinSpec validates the boundaries and builds a BinSpec
func NewBinSpec(boundaries []float64) (BinSpec, error) {
	if len(boundaries) < 2 {
		return BinSpec{}, errs.NewConfigError("histogram", "boundaries",
			"need at least 2 boundaries, got %d", len(boundaries))
	}

	bounds := make([]float64, len(boundaries))
	for i, b := range boundaries {
		if math.IsNaN(b) || math.IsInf(b, 0) {
			return BinSpec{}, errs.NewConfigError("histogram", "boundaries",
				"boundary %d is not finite", i)
		}
		if i > 0 && b <= bounds[i-1] {
			return BinSpec{}, errs.NewConfigError("histogram", "boundaries",
				"boundaries must be strictly ascending: %v <= %v at index %d", b, bounds[i-1], i)
		}
		bounds[i] = b
	}

	labels := make([]string, len(bounds)-1)
	for i := range labels {
		labels[i] = models.FormatBound(bounds[i]) + "-" + models.FormatBound(bounds[i+1])
	}

	return BinSpec{bounds: bounds, labels: labels}, nil
}

// MustBinSpec is NewBinSpec for boundaries known to be valid
func MustBinSpec(boundaries []float64) BinSpec {
	spec, err := NewBinSpec(boundaries)
	if err != nil {
		panic(err)
	}
	return spec
}

// Len returns the number of ranges
func (s BinSpec) Len() int {
	return len(s.labels)
}

// Boundaries returns a copy of the boundaries
func (s BinSpec) Boundaries() []float64 {
	out := make([]float64, len(s.bounds))
	copy(out, s.bounds)
	return out
}

// Index returns the range containing v, or -1 when v is outside [b0, bn] or not finite
func (s BinSpec) Index(v float64) int {
	n := len(s.bounds)
	if n < 2 || math.IsNaN(v) || v < s.bounds[0] || v > s.bounds[n-1] {
		return -1
	}
	if v == s.bounds[n-1] {
		return n - 2
	}
	// first boundary strictly greater than v closes v's range
	return sort.Search(n, func(i int) bool { return s.bounds[i] > v }) - 1
}
