package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sharktrack/sharktrack-backend-go/internal/models"
)

func TestSummarizeTiers(t *testing.T) {
	dataset := models.Dataset{
		{Probability: 0.95},
		{Probability: 0.81},
		{Probability: 0.8}, // medium, the high tier is exclusive
		{Probability: 0.61},
		{Probability: 0.6}, // low
		{Probability: 0.41},
		{Probability: 0.4}, // no tier
		{Probability: 0.1},
		{Probability: math.NaN()},
	}

	summary := Summarize(dataset, MustBinSpec(DefaultBoundaries))

	assert.Equal(t, 2, summary.High)
	assert.Equal(t, 2, summary.Medium)
	assert.Equal(t, 2, summary.Low)
	assert.Equal(t, 8, summary.TotalValid)
	// [0.8,1.0] holds 0.95, 0.81 and 0.8
	assert.Equal(t, 3, summary.PeakBinCount)
}

func TestSummarizeScenario(t *testing.T) {
	summary := Summarize(scenarioDataset(), MustBinSpec([]float64{0.8, 0.9, 1.0}))

	assert.Equal(t, models.ConfidenceSummary{
		High:         2,
		Medium:       0,
		Low:          1,
		PeakBinCount: 1,
		TotalValid:   3,
	}, summary)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, models.ConfidenceSummary{}, Summarize(nil, MustBinSpec(DefaultBoundaries)))
}

func TestSummarizeTotalValidIgnoresTiers(t *testing.T) {
	dataset := models.Dataset{
		{Probability: -3},
		{Probability: 7},
		{Probability: math.Inf(-1)},
		{Probability: 0},
	}

	summary := Summarize(dataset, MustBinSpec(DefaultBoundaries))
	assert.Equal(t, 3, summary.TotalValid)
	assert.Equal(t, 1, summary.High) // 7 is out of nominal range but still > 0.8
}
