package spatial

import "math"

// WebMercatorEquatorMetersPerPixel is the ground resolution of a 256px tile at zoom 0
const WebMercatorEquatorMetersPerPixel = 2 * math.Pi * 6378137 / 256

// MetersPerPixel returns the equatorial ground resolution at the given zoom level.
// The equatorial value is used everywhere so that a pixel radius maps to the same
// distance regardless of where the points are.
func MetersPerPixel(zoom int) float64 {
	return WebMercatorEquatorMetersPerPixel / math.Pow(2, float64(zoom))
}

// PixelsToMeters converts a screen distance at a zoom level into meters
func PixelsToMeters(pixels float64, zoom int) float64 {
	return pixels * MetersPerPixel(zoom)
}
