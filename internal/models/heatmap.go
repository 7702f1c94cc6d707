package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// HeatSample represents a single weighted point in the heat field
type HeatSample struct {
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Weight float64 `json:"weight"` // Raw probability, not rescaled
}

// MarshalJSON encodes the sample as the [lat, lng, weight] triple heat layers consume
func (h HeatSample) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]float64{h.Lat, h.Lng, h.Weight})
}

// UnmarshalJSON decodes a [lat, lng, weight] triple
func (h *HeatSample) UnmarshalJSON(data []byte) error {
	var triple [3]float64
	if err := json.Unmarshal(data, &triple); err != nil {
		return err
	}
	h.Lat, h.Lng, h.Weight = triple[0], triple[1], triple[2]
	return nil
}

// GradientStop maps a normalized intensity to a color
type GradientStop struct {
	Stop  float64 `json:"stop"`  // 0~1
	Color string  `json:"color"` // CSS color name or hex
}

// Gradient is an ordered list of color stops
type Gradient []GradientStop

// MarshalJSON encodes the gradient as an object keyed by stop, in stop order,
// e.g. {"0.4":"blue","1.0":"red"}
func (g Gradient) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range g {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(FormatBound(s.Stop))
		val, err := json.Marshal(s.Color)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// HeatOptions carries the rendering options passed through to the heat layer
type HeatOptions struct {
	Radius   float64  `json:"radius"`  // Pixels at the reference zoom
	Blur     float64  `json:"blur"`    // Pixels
	MaxZoom  int      `json:"maxZoom"` // Zoom at which points reach full intensity
	Max      float64  `json:"max"`     // Same as HeatField.MaxWeight
	Gradient Gradient `json:"gradient"`
}

// HeatField is the heat layer payload
type HeatField struct {
	Samples   []HeatSample `json:"points"`
	Count     int          `json:"count"`
	MaxWeight float64      `json:"max_weight"`
	Options   HeatOptions  `json:"options"`
}

// FormatBound prints a boundary value with at least one decimal place
func FormatBound(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	for i := 0; i < len(s); i++ {
		if s[i] == '.' || s[i] == 'e' || s[i] == 'I' || s[i] == 'N' {
			return s
		}
	}
	return s + ".0"
}
