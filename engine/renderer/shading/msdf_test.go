package shading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMedian3(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b float32
		want    float32
	}{
		{name: "ascending", r: 0.2, g: 0.5, b: 0.8, want: 0.5},
		{name: "descending", r: 0.8, g: 0.5, b: 0.2, want: 0.5},
		{name: "middle first", r: 0.5, g: 0.2, b: 0.8, want: 0.5},
		{name: "middle last", r: 0.2, g: 0.8, b: 0.5, want: 0.5},
		{name: "all equal", r: 0.3, g: 0.3, b: 0.3, want: 0.3},
		{name: "two low", r: 0.1, g: 0.1, b: 0.9, want: 0.1},
		{name: "two high", r: 0.9, g: 0.9, b: 0.1, want: 0.9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Median3(tt.r, tt.g, tt.b))
		})
	}
}

func TestMSDFOpacityBoundaries(t *testing.T) {
	// Fully outside, on the edge, and fully inside must map to 0, 0.5 and 1
	// at any screen pixel range, so glyph edges stay stable under scaling.
	for _, screenRange := range []float32{0.25, 1.0, 2.0, 8.0, 64.0} {
		assert.Equal(t, float32(0.0), MSDFOpacity(0.0, screenRange), "range %v", screenRange)
		assert.Equal(t, float32(0.5), MSDFOpacity(0.5, screenRange), "range %v", screenRange)
		assert.Equal(t, float32(1.0), MSDFOpacity(1.0, screenRange), "range %v", screenRange)
	}
}

func TestMSDFOpacitySharpensWithRange(t *testing.T) {
	// A larger pixel range steepens the transition around the edge.
	near := MSDFOpacity(0.55, 1.0)
	sharp := MSDFOpacity(0.55, 8.0)
	assert.Greater(t, sharp, near)
	assert.LessOrEqual(t, sharp, float32(1.0))

	nearOut := MSDFOpacity(0.45, 1.0)
	sharpOut := MSDFOpacity(0.45, 8.0)
	assert.Less(t, sharpOut, nearOut)
	assert.GreaterOrEqual(t, sharpOut, float32(0.0))
}

func TestMSDFOpacityMonotonic(t *testing.T) {
	previous := float32(-1.0)
	for _, distance := range []float32{0.0, 0.2, 0.4, 0.5, 0.6, 0.8, 1.0} {
		opacity := MSDFOpacity(distance, 4.0)
		assert.GreaterOrEqual(t, opacity, previous)
		previous = opacity
	}
}
