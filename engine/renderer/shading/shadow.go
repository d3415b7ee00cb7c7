package shading

import "github.com/chewxy/math32"

// DepthMap is the lookup surface the shadow filter samples. Satisfied by
// CPU-side reference maps in tests; the GPU path expresses the same taps as a
// comparison sampler.
type DepthMap interface {
	// Sample returns the stored depth in [0,1] at normalized coordinates.
	// Implementations clamp addressing at the edges.
	//
	// Parameters:
	//   - u, v: normalized texture coordinates
	//
	// Returns:
	//   - float32: the stored depth
	Sample(u, v float32) float32

	// Size returns the map dimensions in texels.
	//
	// Returns:
	//   - width, height: the map dimensions
	Size() (width, height int)
}

// ShadowFilter computes percentage-closer-filtered shadow visibility from a
// depth map rendered in the light's projected space.
type ShadowFilter struct {
	params LightingParams
}

// NewShadowFilter creates a shadow filter with the given tuning.
//
// Parameters:
//   - params: the lighting constants, of which ShadowBias and Epsilon apply
//
// Returns:
//   - ShadowFilter: the filter
func NewShadowFilter(params LightingParams) ShadowFilter {
	return ShadowFilter{params: params}
}

// Visibility runs a 3x3 PCF kernel at a fragment's light-space position and
// returns the fraction of taps that pass the depth comparison, in [0,1].
// A fragment is lit at a tap when its biased depth is at most the stored
// depth. A nil map means the shadow pass did not run; the fragment is fully
// lit rather than sampling an uninitialized resource.
//
// Parameters:
//   - depthMap: the shadow depth map, may be nil
//   - u, v: the fragment's light-space UV
//   - depth: the fragment's light-space depth in [0,1]
//
// Returns:
//   - float32: the raw visibility fraction in [0,1]
func (f ShadowFilter) Visibility(depthMap DepthMap, u, v, depth float32) float32 {
	if depthMap == nil {
		return 1.0
	}

	width, height := depthMap.Size()
	texelU := 1.0 / math32.Max(float32(width), f.params.Epsilon)
	texelV := 1.0 / math32.Max(float32(height), f.params.Epsilon)

	reference := depth - f.params.ShadowBias

	var lit float32
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			tapU := u + float32(dx)*texelU
			tapV := v + float32(dy)*texelV
			if reference <= depthMap.Sample(tapU, tapV) {
				lit += 1.0
			}
		}
	}
	return lit / 9.0
}
