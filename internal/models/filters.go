package models

import "time"

// HotspotFilter represents query parameters for the marker layer
type HotspotFilter struct {
	Zoom      int      `form:"zoom"`      // Map zoom level, clamped to the configured range
	Threshold *float64 `form:"threshold"` // Overrides the configured significance threshold
}

// DatasetInfo describes a stored source dataset
type DatasetInfo struct {
	Name         string    `json:"name"`
	FeatureCount int       `json:"feature_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ImportResult reports what a dataset upload stored
type ImportResult struct {
	Dataset string `json:"dataset"`
	Stored  int    `json:"stored"`  // Features written
	Valid   int    `json:"valid"`   // Features the pipeline would ingest
	Dropped int    `json:"dropped"` // Features the pipeline would drop
}
