package stats

import (
	"github.com/sharktrack/sharktrack-backend-go/internal/models"
)

// Confidence tier lower bounds (exclusive)
const (
	HighTierFloor   = 0.8
	MediumTierFloor = 0.6
	LowTierFloor    = 0.4
)

// Summarize reduces the dataset into confidence tier counts.
// PeakBinCount comes from binning the same dataset with spec.
func Summarize(dataset models.Dataset, spec BinSpec) models.ConfidenceSummary {
	var summary models.ConfidenceSummary

	for _, s := range dataset {
		if !s.HasValidProbability() {
			continue
		}
		summary.TotalValid++

		p := s.Probability
		switch {
		case p > HighTierFloor:
			summary.High++
		case p > MediumTierFloor:
			summary.Medium++
		case p > LowTierFloor:
			summary.Low++
		}
	}

	summary.PeakBinCount = Bin(dataset, spec).Peak()
	return summary
}
