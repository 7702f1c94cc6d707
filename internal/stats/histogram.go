package stats

import (
	"github.com/sharktrack/sharktrack-backend-go/internal/models"
)

// Bin counts samples per BinSpec range. Samples outside the spec are dropped.
func Bin(dataset models.Dataset, spec BinSpec) models.Histogram {
	hist := make(models.Histogram, spec.Len())
	for i := range hist {
		hist[i] = models.HistogramBin{
			Label: spec.labels[i],
			Lower: spec.bounds[i],
			Upper: spec.bounds[i+1],
		}
	}

	for _, s := range dataset {
		if idx := spec.Index(s.Probability); idx >= 0 {
			hist[idx].Count++
		}
	}

	return hist
}
