package spatial

import (
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// Constants
const (
	EarthRadiusMeters = 6371000.0 // Earth's mean radius in meters

	// MetersPerDegreeLat is the length of one degree of latitude on the mean sphere
	MetersPerDegreeLat = EarthRadiusMeters * math.Pi / 180
)

// HaversineDistance calculates the great-circle distance between two points in meters
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return AngleToMeters(p1.Distance(p2))
}

// Distance returns the great-circle distance between two points in meters
func Distance(a, b Point) float64 {
	return HaversineDistance(a.Lat, a.Lon, b.Lat, b.Lon)
}

// AngleToMeters converts a central angle to a surface distance
func AngleToMeters(a s1.Angle) float64 {
	return a.Radians() * EarthRadiusMeters
}
