package material

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dualsub/rusty-rift/engine/texture"
)

func TestNewMaterialDefaults(t *testing.T) {
	m := NewMaterial(WithName("default"))

	assert.Equal(t, "default", m.Name())
	assert.Equal(t, KindSimple, m.Kind())
	assert.Equal(t, [4]float32{1, 1, 1, 1}, m.BaseColor())
	assert.Equal(t, float32(0), m.Metallic())
	assert.Equal(t, float32(1), m.Roughness())
	assert.Nil(t, m.Albedo())
	assert.Nil(t, m.BindGroupProvider())
}

func TestMaterialOptions(t *testing.T) {
	atlas := texture.NewSolidColor(255, 128, 0, 255)
	m := NewMaterial(
		WithName("gold"),
		WithKind(KindPBR),
		WithBaseColor([4]float32{1, 0.8, 0.3, 1}),
		WithMetallic(1.0),
		WithRoughness(0.25),
		WithAlbedo(atlas),
		WithPipelineKey("mesh_static_pbr"),
	)

	assert.Equal(t, KindPBR, m.Kind())
	assert.Same(t, atlas, m.Albedo())
	assert.Equal(t, "mesh_static_pbr", m.PipelineKey())

	params := m.Params()
	assert.Equal(t, [4]float32{1, 0.8, 0.3, 1}, params.BaseColor)
	assert.Equal(t, float32(1.0), params.Metallic)
	assert.Equal(t, float32(0.25), params.Roughness)
}

func TestMaterialParamsMarshal(t *testing.T) {
	params := GPUMaterialParams{
		BaseColor: [4]float32{0.1, 0.2, 0.3, 1},
		Metallic:  0.5,
		Roughness: 0.75,
	}

	buf := params.Marshal()
	require.Equal(t, 32, len(buf))
	assert.Equal(t, 32, params.Size())
	assert.Equal(t, float32(0.1), math.Float32frombits(binary.LittleEndian.Uint32(buf[0:])))
	assert.Equal(t, float32(0.5), math.Float32frombits(binary.LittleEndian.Uint32(buf[16:])))
	assert.Equal(t, float32(0.75), math.Float32frombits(binary.LittleEndian.Uint32(buf[20:])))
	// Padding stays zeroed.
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(buf[24:]))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(buf[28:]))
}
