package shading

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
)

// gridDepthMap is a nearest-sample depth texture with clamped addressing,
// mirroring how the shadow map sampler behaves at the edges.
type gridDepthMap struct {
	width  int
	height int
	depths []float32
}

func (m *gridDepthMap) Sample(u, v float32) float32 {
	x := int(u * float32(m.width))
	y := int(v * float32(m.height))
	if x < 0 {
		x = 0
	}
	if x >= m.width {
		x = m.width - 1
	}
	if y < 0 {
		y = 0
	}
	if y >= m.height {
		y = m.height - 1
	}
	return m.depths[y*m.width+x]
}

func (m *gridDepthMap) Size() (int, int) {
	return m.width, m.height
}

func uniformDepthMap(size int, depth float32) *gridDepthMap {
	depths := make([]float32, size*size)
	for i := range depths {
		depths[i] = depth
	}
	return &gridDepthMap{width: size, height: size, depths: depths}
}

func TestShadowVisibilityNilMap(t *testing.T) {
	filter := NewShadowFilter(DefaultLightingParams())
	assert.Equal(t, float32(1.0), filter.Visibility(nil, 0.5, 0.5, 0.5))
}

func TestShadowVisibilityFarPlaneMap(t *testing.T) {
	filter := NewShadowFilter(DefaultLightingParams())

	// A cleared shadow map stores the far plane everywhere, so every
	// fragment in front of it is fully lit.
	depthMap := uniformDepthMap(4, 1.0)
	assert.Equal(t, float32(1.0), filter.Visibility(depthMap, 0.5, 0.5, 0.75))
}

func TestShadowVisibilityFullyOccluded(t *testing.T) {
	filter := NewShadowFilter(DefaultLightingParams())

	// Occluder at depth 0.1 covers the whole map, fragment sits behind it.
	depthMap := uniformDepthMap(4, 0.1)
	assert.Equal(t, float32(0.0), filter.Visibility(depthMap, 0.5, 0.5, 0.9))
}

func TestShadowVisibilityPartialOcclusion(t *testing.T) {
	filter := NewShadowFilter(DefaultLightingParams())

	// On a 2x2 map sampled at its center, the one-texel tap offsets land on
	// texel (1,1) four times and the other texels five times. Occluding only
	// (1,1) therefore blocks 4 of the 9 taps.
	depthMap := &gridDepthMap{
		width:  2,
		height: 2,
		depths: []float32{1.0, 1.0, 1.0, 0.1},
	}

	visibility := filter.Visibility(depthMap, 0.5, 0.5, 0.5)
	assert.InDelta(t, 5.0/9.0, visibility, 1e-6)
}

func TestShadowBiasPreventsSelfShadowing(t *testing.T) {
	filter := NewShadowFilter(DefaultLightingParams())

	// A fragment at exactly its own stored depth must count as lit. Without
	// the bias, floating point noise flickers it in and out of shadow.
	depthMap := uniformDepthMap(4, 0.5)
	assert.Equal(t, float32(1.0), filter.Visibility(depthMap, 0.5, 0.5, 0.5))
}

func TestShadowVisibilityFeedsSimpleRemap(t *testing.T) {
	params := DefaultLightingParams()
	filter := NewShadowFilter(params)
	model := NewSimpleModel(params)

	depthMap := &gridDepthMap{
		width:  2,
		height: 2,
		depths: []float32{1.0, 1.0, 1.0, 0.1},
	}
	visibility := filter.Visibility(depthMap, 0.5, 0.5, 0.5)

	// Away-facing surface isolates the floored diffuse and ambient terms,
	// so the remapped visibility is directly observable.
	surface := Surface{
		Normal: Vec3{0, 1, 0},
		View:   Vec3{0, 1, 0},
		Albedo: Vec3{1, 1, 1},
	}
	light := Light{Direction: Vec3{0, 1, 0}, Color: Vec3{1, 1, 1}}

	color := model.Shade(surface, light, visibility)

	remapped := Lerp(params.SimpleShadowFloor, 1.0, 5.0/9.0)
	want := math32.Pow(0.6*remapped+0.2, 2.2)
	for i := range 3 {
		assert.InDelta(t, want, color[i], 1e-4)
	}
}
