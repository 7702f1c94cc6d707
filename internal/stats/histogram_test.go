package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharktrack/sharktrack-backend-go/internal/models"
	"github.com/sharktrack/sharktrack-backend-go/pkg/errs"
)

func scenarioDataset() models.Dataset {
	return models.Dataset{
		{Lat: 0, Lon: 0, Probability: 0.85},
		{Lat: 0, Lon: 0, Probability: 0.95},
		{Lat: 10, Lon: 10, Probability: 0.5},
	}
}

func TestNewBinSpecRejectsInvalidBoundaries(t *testing.T) {
	tests := []struct {
		name       string
		boundaries []float64
	}{
		{"empty", nil},
		{"single boundary", []float64{0.5}},
		{"descending", []float64{0, 0.5, 0.4}},
		{"duplicate", []float64{0, 0.5, 0.5, 1}},
		{"nan", []float64{0, math.NaN(), 1}},
		{"infinite", []float64{0, math.Inf(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBinSpec(tt.boundaries)
			require.Error(t, err)
			assert.ErrorIs(t, err, errs.ErrInvalidConfig)
		})
	}
}

func TestNewBinSpecCopiesInput(t *testing.T) {
	in := []float64{0, 0.5, 1}
	spec, err := NewBinSpec(in)
	require.NoError(t, err)

	in[1] = 0.9
	assert.Equal(t, []float64{0, 0.5, 1}, spec.Boundaries())
}

func TestBinScenario(t *testing.T) {
	spec := MustBinSpec([]float64{0.8, 0.9, 1.0})

	hist := Bin(scenarioDataset(), spec)

	require.Len(t, hist, 2)
	assert.Equal(t, "0.8-0.9", hist[0].Label)
	assert.Equal(t, 1, hist[0].Count)
	assert.Equal(t, "0.9-1.0", hist[1].Label)
	assert.Equal(t, 1, hist[1].Count)
	assert.Equal(t, 2, hist.Total())
}

func TestBinBoundaryPolicy(t *testing.T) {
	spec := MustBinSpec([]float64{0, 0.5, 1})

	dataset := models.Dataset{
		{Probability: 0},    // lower edge of first range
		{Probability: 0.5},  // belongs to the second range, not the first
		{Probability: 1},    // closed last range
		{Probability: -0.1}, // below b0
		{Probability: 1.01}, // above bn
		{Probability: math.NaN()},
		{Probability: math.Inf(1)},
	}

	hist := Bin(dataset, spec)
	assert.Equal(t, 1, hist[0].Count)
	assert.Equal(t, 2, hist[1].Count)
	assert.Equal(t, 3, hist.Total())
}

func TestBinEmptyDataset(t *testing.T) {
	hist := Bin(nil, MustBinSpec(DefaultBoundaries))

	require.Len(t, hist, 5)
	for _, b := range hist {
		assert.Zero(t, b.Count)
	}
	assert.Equal(t, "0.0-0.2", hist[0].Label)
	assert.Equal(t, "0.8-1.0", hist[4].Label)
}

func TestBinSingleRange(t *testing.T) {
	hist := Bin(scenarioDataset(), MustBinSpec([]float64{0, 1}))

	require.Len(t, hist, 1)
	assert.Equal(t, 3, hist[0].Count)
}

func TestBinCountsNeverExceedDataset(t *testing.T) {
	specs := [][]float64{
		DefaultBoundaries,
		{0.25, 0.5, 0.75},
		{-1, 0, 2},
	}
	dataset := models.Dataset{}
	for i := 0; i < 200; i++ {
		dataset = append(dataset, models.Sample{Probability: float64(i%23)/20 - 0.05})
	}

	for _, b := range specs {
		spec := MustBinSpec(b)
		hist := Bin(dataset, spec)
		assert.LessOrEqual(t, hist.Total(), len(dataset))

		inside := 0
		for _, s := range dataset {
			if s.Probability >= b[0] && s.Probability <= b[len(b)-1] {
				inside++
			}
		}
		assert.Equal(t, inside, hist.Total())
	}
}
