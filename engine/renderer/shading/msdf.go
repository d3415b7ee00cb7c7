package shading

import "github.com/chewxy/math32"

// Median3 returns the middle of three values, the standard multi-channel
// distance field decode: robust to single-channel disagreement at shape
// corners.
//
// Parameters:
//   - r, g, b: the three channel distances
//
// Returns:
//   - float32: the median distance
func Median3(r, g, b float32) float32 {
	return math32.Max(math32.Min(r, g), math32.Min(math32.Max(r, g), b))
}

// MSDFOpacity converts a decoded median distance into glyph coverage.
// screenPixelRange is the distance-field range expressed in screen pixels
// (derived from the UV derivative on the GPU); it is floored at 1 so the
// boundary values stay fixed under extreme minification: median 0 is always
// fully transparent, 0.5 sits exactly on the edge, and 1 is fully opaque.
//
// Parameters:
//   - median: the median channel distance in [0,1]
//   - screenPixelRange: the field range in screen pixels
//
// Returns:
//   - float32: coverage in [0,1]
func MSDFOpacity(median, screenPixelRange float32) float32 {
	r := math32.Max(screenPixelRange, 1.0)
	return Clamp(r*(median-0.5)+0.5, 0.0, 1.0)
}
