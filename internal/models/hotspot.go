package models

// Hotspot is a sample whose probability exceeds the significance threshold
type Hotspot struct {
	Sample
}

// LatLng is a plain coordinate pair
type LatLng struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Bounds is the latitude/longitude extent of a set of points
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Cluster groups nearby hotspots for marker rendering.
// Clusters carry no identity across calls.
type Cluster struct {
	Centroid       LatLng    `json:"centroid"`        // Arithmetic mean of member coordinates
	Bounds         Bounds    `json:"bounds"`          // Extent of member coordinates
	MemberCount    int       `json:"member_count"`
	MaxProbability float64   `json:"max_probability"` // Highest member probability
	Members        []Hotspot `json:"members"`         // Detail shown on expansion
}

// HotspotResponse is the marker layer payload
type HotspotResponse struct {
	Clusters     []Cluster `json:"clusters"`
	ClusterCount int       `json:"cluster_count"`
	HotspotCount int       `json:"hotspot_count"`
	Threshold    float64   `json:"threshold"`
	Zoom         int       `json:"zoom"`
	RadiusMeters float64   `json:"radius_meters"`
}

// Overview bundles every derived structure computed from one dataset snapshot
type Overview struct {
	Source     string            `json:"source"`
	Ingested   int               `json:"ingested"`
	Dropped    int               `json:"dropped"`
	Summary    ProbabilityStats  `json:"summary"`
	Histogram  Histogram         `json:"histogram"`
	Confidence ConfidenceSummary `json:"confidence"`
	HeatField  HeatField         `json:"heat_field"`
	Hotspots   HotspotResponse   `json:"hotspots"`
}
