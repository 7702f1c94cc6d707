package models

import "math"

// Sample represents one validated geo-referenced foraging probability observation
type Sample struct {
	Lat         float64 `json:"lat"`          // Latitude
	Lon         float64 `json:"lon"`          // Longitude
	Probability float64 `json:"probability"`  // Nominally 0~1, not range checked
	ID          string  `json:"id,omitempty"` // Source feature id, if any
}

// HasValidProbability reports whether the probability is a finite number
func (s Sample) HasValidProbability() bool {
	return !math.IsNaN(s.Probability) && !math.IsInf(s.Probability, 0)
}

// Dataset is the ordered result of one ingestion call.
// Every downstream reduction is order independent and never mutates it.
type Dataset []Sample
