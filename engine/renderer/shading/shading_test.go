package shading

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLightingParamsDefaults(t *testing.T) {
	p := DefaultLightingParams()

	assert.Equal(t, float32(0.007), p.ShadowBias)
	assert.Equal(t, float32(0.5), p.SimpleShadowFloor)
	assert.Equal(t, float32(0.4), p.PBRShadowFloor)
	assert.Equal(t, float32(0.6), p.DiffuseFloor)
	assert.Equal(t, float32(16.0), p.SpecularExponent)
	assert.Equal(t, float32(0.4), p.WrapAmount)
	assert.Equal(t, float32(5.0), p.SpecularClamp)
	assert.Equal(t, float32(0.04), p.DielectricF0)
	assert.Equal(t, float32(1e-4), p.Epsilon)
}

func TestLoadLightingParams(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lighting.yaml")
	require.NoError(t, os.WriteFile(path, []byte("shadow_bias: 0.01\nwrap_amount: 0.5\n"), 0o644))

	p, err := LoadLightingParams(path)
	require.NoError(t, err)

	// Named keys override; everything else keeps its default.
	assert.Equal(t, float32(0.01), p.ShadowBias)
	assert.Equal(t, float32(0.5), p.WrapAmount)
	assert.Equal(t, float32(0.6), p.DiffuseFloor)
	assert.Equal(t, float32(5.0), p.SpecularClamp)
}

func TestLoadLightingParamsMissingFile(t *testing.T) {
	_, err := LoadLightingParams(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestSimpleModelDiffuseFloor(t *testing.T) {
	model := NewSimpleModel(DefaultLightingParams())

	// Light travels straight up, surface faces up: N.L = -1, but the floor
	// holds the diffuse term at 0.6. The half vector degenerates to zero, so
	// there is no specular.
	surface := Surface{
		Normal: Vec3{0, 1, 0},
		View:   Vec3{0, 1, 0},
		Albedo: Vec3{1, 1, 1},
	}
	light := Light{Direction: Vec3{0, 1, 0}, Color: Vec3{1, 1, 1}}

	color := model.Shade(surface, light, 1.0)

	want := math32.Pow(0.6+0.2, 2.2)
	for i := range 3 {
		assert.InDelta(t, want, color[i], 1e-4)
	}
}

func TestSimpleModelShadowFloor(t *testing.T) {
	model := NewSimpleModel(DefaultLightingParams())

	surface := Surface{
		Normal: Vec3{0, 1, 0},
		View:   Vec3{0, 1, 0},
		Albedo: Vec3{1, 1, 1},
	}
	light := Light{Direction: Vec3{0, 1, 0}, Color: Vec3{1, 1, 1}}

	// Fully shadowed remaps to 0.5, never to black: lit terms halve, the
	// ambient term stays.
	color := model.Shade(surface, light, 0.0)

	want := math32.Pow(0.6*0.5+0.2, 2.2)
	for i := range 3 {
		assert.InDelta(t, want, color[i], 1e-4)
	}
}

func TestSimpleModelHeadOnSaturates(t *testing.T) {
	model := NewSimpleModel(DefaultLightingParams())

	// Light, view, and normal all aligned: full diffuse plus boosted
	// specular pushes past 1 and clamps.
	surface := Surface{
		Normal: Vec3{0, 1, 0},
		View:   Vec3{0, 1, 0},
		Albedo: Vec3{1, 1, 1},
	}
	light := Light{Direction: Vec3{0, -1, 0}, Color: Vec3{1, 1, 1}}

	color := model.Shade(surface, light, 1.0)
	assert.Equal(t, Vec3{1, 1, 1}, color)
}

func TestPBRSpecularDegenerateGeometry(t *testing.T) {
	model := NewPBRModel(DefaultLightingParams())

	// Black albedo kills diffuse and ambient, isolating specular.
	base := Surface{
		Albedo:    Vec3{0, 0, 0},
		Metallic:  0.0,
		Roughness: 0.0,
	}

	t.Run("N.L zero", func(t *testing.T) {
		surface := base
		surface.Normal = Vec3{0, 1, 0}
		surface.View = Vec3{0, 1, 0}
		light := Light{Direction: Vec3{-1, 0, 0}, Color: Vec3{1, 1, 1}}

		color := model.Shade(surface, light, 1.0)
		assert.InDelta(t, 0.0, color[0], 1e-6)
		assert.InDelta(t, 0.0, color[1], 1e-6)
		assert.InDelta(t, 0.0, color[2], 1e-6)
	})

	t.Run("N.V zero", func(t *testing.T) {
		surface := base
		surface.Normal = Vec3{0, 1, 0}
		surface.View = Vec3{1, 0, 0}
		light := Light{Direction: Vec3{0, -1, 0}, Color: Vec3{1, 1, 1}}

		color := model.Shade(surface, light, 1.0)
		assert.InDelta(t, 0.0, color[0], 1e-6)
		assert.InDelta(t, 0.0, color[1], 1e-6)
		assert.InDelta(t, 0.0, color[2], 1e-6)
	})
}

func TestPBRSpecularCompressedRange(t *testing.T) {
	model := NewPBRModel(DefaultLightingParams())

	// Head-on geometry maximizes the specular term. Across the roughness
	// and metallic ranges the compressed term must stay inside [0,1).
	for _, roughness := range []float32{0.01, 0.1, 0.25, 0.5, 0.75, 1.0} {
		for _, metallic := range []float32{0.0, 0.5, 1.0} {
			surface := Surface{
				Normal:    Vec3{0, 1, 0},
				View:      Vec3{0, 1, 0},
				Albedo:    Vec3{0, 0, 0},
				Metallic:  metallic,
				Roughness: roughness,
			}
			light := Light{Direction: Vec3{0, -1, 0}, Color: Vec3{1, 1, 1}}

			color := model.Shade(surface, light, 1.0)
			for i := range 3 {
				assert.GreaterOrEqual(t, color[i], float32(0), "roughness %v metallic %v", roughness, metallic)
				assert.Less(t, color[i], float32(1), "roughness %v metallic %v", roughness, metallic)
			}
		}
	}
}

func TestPBRWrappedDiffuseCutoff(t *testing.T) {
	model := NewPBRModel(DefaultLightingParams())

	// At N.L = -0.4 the wrapped diffuse term reaches zero, leaving only the
	// hemispheric ambient.
	nl := float32(-0.4)
	lx := math32.Sqrt(1.0 - nl*nl)
	surface := Surface{
		Normal:    Vec3{0, 1, 0},
		View:      Vec3{0, 1, 0},
		Albedo:    Vec3{1, 1, 1},
		Roughness: 1.0,
	}
	light := Light{Direction: Vec3{-lx, -nl, 0}, Color: Vec3{1, 1, 1}}

	color := model.Shade(surface, light, 1.0)

	// Up-facing normal blends fully toward the sky color.
	p := DefaultLightingParams()
	for i := range 3 {
		assert.InDelta(t, p.SkyColor[i]*p.AmbientScale, color[i], 1e-4)
	}
}

func TestPBRShadowScalesLitTermsOnly(t *testing.T) {
	params := DefaultLightingParams()
	model := NewPBRModel(params)

	surface := Surface{
		Normal:    Vec3{0, 1, 0},
		View:      Vec3{0, 1, 0},
		Albedo:    Vec3{0.8, 0.6, 0.4},
		Metallic:  0.2,
		Roughness: 0.7,
	}
	// Half intensity keeps every channel below the final clamp so the
	// lerp relation stays observable.
	light := Light{Direction: Vec3{0, -1, 0}, Color: Vec3{0.5, 0.5, 0.5}}

	// Shading with a black light isolates the ambient term.
	ambient := model.Shade(surface, Light{Direction: light.Direction, Color: Vec3{}}, 1.0)

	lit := model.Shade(surface, light, 1.0)
	shadowed := model.Shade(surface, light, 0.0)

	// Fully shadowed = lit terms scaled by the 0.4 floor, ambient intact.
	for i := range 3 {
		want := (lit[i]-ambient[i])*params.PBRShadowFloor + ambient[i]
		assert.InDelta(t, want, shadowed[i], 1e-4)
	}
}
