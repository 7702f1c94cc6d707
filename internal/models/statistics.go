package models

// HistogramBin is one bar of the probability distribution chart
type HistogramBin struct {
	Label string  `json:"range"` // e.g. "0.8-0.9"
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Histogram is aligned 1:1 with the ranges of the BinSpec that produced it
type Histogram []HistogramBin

// Total returns the sum of all bin counts
func (h Histogram) Total() int {
	total := 0
	for _, b := range h {
		total += b.Count
	}
	return total
}

// Peak returns the largest bin count, 0 for an empty histogram
func (h Histogram) Peak() int {
	peak := 0
	for _, b := range h {
		if b.Count > peak {
			peak = b.Count
		}
	}
	return peak
}

// ConfidenceSummary holds the confidence tier counts for the summary chart.
// High, Medium and Low need not sum to TotalValid: samples at or below 0.4
// belong to no tier.
type ConfidenceSummary struct {
	High         int `json:"high"`           // probability > 0.8
	Medium       int `json:"medium"`         // 0.6 < probability <= 0.8
	Low          int `json:"low"`            // 0.4 < probability <= 0.6
	PeakBinCount int `json:"peak_bin_count"` // Largest histogram bin
	TotalValid   int `json:"total_valid"`    // Samples with a finite probability
}

// ProbabilityStats summarizes the finite probabilities of a dataset
type ProbabilityStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"` // Sample standard deviation
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	P10    float64 `json:"p10"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
}
