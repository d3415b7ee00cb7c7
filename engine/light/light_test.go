package light

import (
	"testing"

	"github.com/Dualsub/rusty-rift/common"
	"github.com/stretchr/testify/assert"
)

func TestNewLightDefaults(t *testing.T) {
	l := NewLight()

	assert.Equal(t, [3]float32{0, -1, 0}, l.Direction())
	assert.Equal(t, [3]float32{1, 1, 1}, l.Color())
	assert.Equal(t, float32(1.0), l.Intensity())
	assert.True(t, l.Enabled())
	assert.True(t, l.CastsShadows())
	assert.Equal(t, DefaultShadowHalfExtent, l.ShadowHalfExtent())
}

func TestLightDirectionNormalized(t *testing.T) {
	l := NewLight(WithDirection(3, 0, 4))
	assert.InDelta(t, 0.6, l.Direction()[0], 1e-6)
	assert.InDelta(t, 0.0, l.Direction()[1], 1e-6)
	assert.InDelta(t, 0.8, l.Direction()[2], 1e-6)

	l.SetDirection(0, -5, 0)
	assert.Equal(t, [3]float32{0, -1, 0}, l.Direction())
}

func TestLightEffectiveColor(t *testing.T) {
	l := NewLight(WithColor(0.5, 0.25, 1.0), WithIntensity(2.0))

	c := l.EffectiveColor()
	assert.InDelta(t, 1.0, c[0], 1e-6)
	assert.InDelta(t, 0.5, c[1], 1e-6)
	assert.InDelta(t, 2.0, c[2], 1e-6)
}

func TestViewProjectionFraming(t *testing.T) {
	// Sun pointing straight down with default framing. The eye sits 100
	// units above the focus, so the frustum spans world y in [99.9, -100].
	l := NewLight(WithDirection(0, -1, 0), WithFocus(0, 0, 0))

	var vp [16]float32
	l.ViewProjection(vp[:])

	t.Run("focus sits mid frustum", func(t *testing.T) {
		clip := common.TransformVec4(vp[:], [4]float32{0, 0, 0, 1})
		assert.InDelta(t, 0.0, clip[0], 1e-5)
		assert.InDelta(t, 0.0, clip[1], 1e-5)
		assert.InDelta(t, (100.0-0.1)/199.9, clip[2], 1e-4)
		assert.InDelta(t, 1.0, clip[3], 1e-6)
	})

	t.Run("far plane maps to depth one", func(t *testing.T) {
		clip := common.TransformVec4(vp[:], [4]float32{0, -100, 0, 1})
		assert.InDelta(t, 1.0, clip[2], 1e-5)
	})

	t.Run("near plane maps to depth zero", func(t *testing.T) {
		clip := common.TransformVec4(vp[:], [4]float32{0, 100 - 0.1, 0, 1})
		assert.InDelta(t, 0.0, clip[2], 1e-4)
	})

	t.Run("half extent reaches clip edge", func(t *testing.T) {
		clip := common.TransformVec4(vp[:], [4]float32{40, 0, 0, 1})
		assert.InDelta(t, 1.0, abs(clip[0]), 1e-5)

		clip = common.TransformVec4(vp[:], [4]float32{0, 0, 40, 1})
		assert.InDelta(t, 1.0, abs(clip[1]), 1e-5)
	})
}

func TestViewProjectionAngledLight(t *testing.T) {
	l := NewLight(WithDirection(1, -1, 0), WithFocus(10, 0, -5))

	var vp [16]float32
	l.ViewProjection(vp[:])

	// The focus point always projects to the clip center regardless of the
	// light angle.
	clip := common.TransformVec4(vp[:], [4]float32{10, 0, -5, 1})
	assert.InDelta(t, 0.0, clip[0], 1e-4)
	assert.InDelta(t, 0.0, clip[1], 1e-4)
	assert.InDelta(t, (100.0-0.1)/199.9, clip[2], 1e-4)
}

func TestViewProjectionCustomFrustum(t *testing.T) {
	l := NewLight(
		WithDirection(0, -1, 0),
		WithShadowFrustum(10, 0, 50),
		WithShadowDistance(25),
	)

	var vp [16]float32
	l.ViewProjection(vp[:])

	clip := common.TransformVec4(vp[:], [4]float32{10, 0, 0, 1})
	assert.InDelta(t, 1.0, abs(clip[0]), 1e-5)

	clip = common.TransformVec4(vp[:], [4]float32{0, -25, 0, 1})
	assert.InDelta(t, 1.0, clip[2], 1e-5)
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
