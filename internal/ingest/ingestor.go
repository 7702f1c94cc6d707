package ingest

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/sharktrack/sharktrack-backend-go/internal/models"
	"github.com/sharktrack/sharktrack-backend-go/internal/spatial"
	"github.com/sharktrack/sharktrack-backend-go/pkg/errs"
)

// CoordinatePolicy decides what happens to coordinates outside [-90,90] x [-180,180]
type CoordinatePolicy string

const (
	PolicyPassthrough CoordinatePolicy = "passthrough" // keep as is
	PolicyReject      CoordinatePolicy = "reject"      // drop the record
	PolicyClamp       CoordinatePolicy = "clamp"       // clamp latitude, wrap longitude
)

// PropertyMapping names the feature properties the ingestor reads.
// ProbabilityKeys are tried in order; the first key present on a feature wins.
type PropertyMapping struct {
	ProbabilityKeys []string
	IDKey           string // Optional, falls back to the feature id
}

// DefaultMapping covers both property names seen in deployments
func DefaultMapping() PropertyMapping {
	return PropertyMapping{ProbabilityKeys: []string{"foraging_prob", "probability"}}
}

// Result is the outcome of one ingestion call
type Result struct {
	Dataset models.Dataset
	Total   int // Features seen
	Dropped int // Features rejected as malformed
}

// Ingestor turns feature collections into datasets
type Ingestor struct {
	mapping PropertyMapping
	policy  CoordinatePolicy
}

// New validates the mapping and policy and creates an ingestor
func New(mapping PropertyMapping, policy CoordinatePolicy) (*Ingestor, error) {
	keys := make([]string, 0, len(mapping.ProbabilityKeys))
	for _, k := range mapping.ProbabilityKeys {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil, errs.NewConfigError("ingest", "probability_keys", "at least one property name is required")
	}

	if policy == "" {
		policy = PolicyPassthrough
	}
	switch policy {
	case PolicyPassthrough, PolicyReject, PolicyClamp:
	default:
		return nil, errs.NewConfigError("ingest", "coordinate_policy", "unknown policy %q", policy)
	}

	return &Ingestor{
		mapping: PropertyMapping{ProbabilityKeys: keys, IDKey: strings.TrimSpace(mapping.IDKey)},
		policy:  policy,
	}, nil
}

// rawCollection is decoded leniently so that one bad feature does not
// fail the whole collection
type rawCollection struct {
	Type     string            `json:"type"`
	Features []json.RawMessage `json:"features"`
}

// rawGeometry is used to detect points with missing coordinates, which
// geojson decoding would otherwise zero fill
type rawGeometry struct {
	Geometry *struct {
		Type        string            `json:"type"`
		Coordinates []json.RawMessage `json:"coordinates"`
	} `json:"geometry"`
}

// SplitCollection checks that data is a feature collection and returns its
// features undecoded, in order
func SplitCollection(data []byte) ([]json.RawMessage, error) {
	var raw rawCollection
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrMalformedInput, err)
	}
	if raw.Type != "FeatureCollection" {
		return nil, fmt.Errorf("%w: type is %q", errs.ErrMalformedInput, raw.Type)
	}
	return raw.Features, nil
}

// Ingest parses a GeoJSON feature collection. Malformed features are dropped;
// an error is returned only when data is not a feature collection.
func (in *Ingestor) Ingest(data []byte) (Result, error) {
	features, err := SplitCollection(data)
	if err != nil {
		return Result{}, err
	}

	res := Result{Dataset: make(models.Dataset, 0, len(features)), Total: len(features)}
	for _, rf := range features {
		sample, ok := in.ingestFeature(rf)
		if !ok {
			res.Dropped++
			continue
		}
		res.Dataset = append(res.Dataset, sample)
	}

	return res, nil
}

func (in *Ingestor) ingestFeature(rf json.RawMessage) (models.Sample, bool) {
	var probe rawGeometry
	if err := json.Unmarshal(rf, &probe); err != nil || probe.Geometry == nil ||
		probe.Geometry.Type != "Point" || len(probe.Geometry.Coordinates) < 2 {
		return models.Sample{}, false
	}

	f, err := geojson.UnmarshalFeature(rf)
	if err != nil {
		return models.Sample{}, false
	}
	return in.sampleFrom(f)
}

func (in *Ingestor) sampleFrom(f *geojson.Feature) (models.Sample, bool) {
	if f == nil || f.Geometry == nil {
		return models.Sample{}, false
	}
	pt, ok := f.Geometry.(orb.Point)
	if !ok {
		return models.Sample{}, false
	}

	prob, ok := in.probability(f.Properties)
	if !ok {
		return models.Sample{}, false
	}

	// GeoJSON order is (lon, lat)
	p := spatial.Point{Lat: pt.Lat(), Lon: pt.Lon()}
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lon, 0) {
		return models.Sample{}, false
	}
	if !spatial.InRange(p) {
		switch in.policy {
		case PolicyReject:
			return models.Sample{}, false
		case PolicyClamp:
			p = spatial.Clamp(p)
		}
	}

	return models.Sample{
		Lat:         p.Lat,
		Lon:         p.Lon,
		Probability: prob,
		ID:          in.featureID(f),
	}, true
}

// probability reads the first configured key present on the feature and
// accepts it only if it is a finite number. Numeric strings are rejected.
func (in *Ingestor) probability(props geojson.Properties) (float64, bool) {
	for _, key := range in.mapping.ProbabilityKeys {
		v, present := props[key]
		if !present {
			continue
		}
		f, ok := toFloat(v)
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func (in *Ingestor) featureID(f *geojson.Feature) string {
	if in.mapping.IDKey != "" {
		if v, ok := f.Properties[in.mapping.IDKey]; ok && v != nil {
			return stringify(v)
		}
	}
	if f.ID != nil {
		return stringify(f.ID)
	}
	return ""
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func stringify(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
