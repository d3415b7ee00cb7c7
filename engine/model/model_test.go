package model

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func putU32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func putF32(buf []byte, v float32) []byte {
	return putU32(buf, math.Float32bits(v))
}

func putStaticVertex(buf []byte, v GPUStaticVertex) []byte {
	for _, f := range v.Position {
		buf = putF32(buf, f)
	}
	for _, f := range v.Normal {
		buf = putF32(buf, f)
	}
	for _, f := range v.TexCoord {
		buf = putF32(buf, f)
	}
	for _, f := range v.Color {
		buf = putF32(buf, f)
	}
	return buf
}

func TestParseStaticMesh(t *testing.T) {
	v0 := GPUStaticVertex{Position: [3]float32{1, 2, 3}, Normal: [3]float32{0, 1, 0}, TexCoord: [3]float32{0.5, 0.25, 2}, Color: [4]float32{1, 0, 0, 1}}
	v1 := GPUStaticVertex{Position: [3]float32{-1, 0, 1}, Normal: [3]float32{0, 0, 1}, TexCoord: [3]float32{0, 1, 2}, Color: [4]float32{0, 1, 0, 1}}
	v2 := GPUStaticVertex{Position: [3]float32{0, 4, 0}, Normal: [3]float32{1, 0, 0}, TexCoord: [3]float32{1, 1, 2}, Color: [4]float32{0, 0, 1, 1}}

	// Two sections; the second section's indices are numbered across the file.
	var data []byte
	data = putU32(data, 2)
	data = putU32(data, 2)
	data = putStaticVertex(data, v0)
	data = putStaticVertex(data, v1)
	data = putU32(data, 0)
	data = putU32(data, 1)
	data = putStaticVertex(data, v2)
	data = putU32(data, 3)
	data = putU32(data, 0)
	data = putU32(data, 1)
	data = putU32(data, 2)

	mesh, err := ParseStaticMesh("test", data)
	require.NoError(t, err)
	assert.Equal(t, "test", mesh.Name())
	assert.False(t, mesh.Skinned())
	assert.Equal(t, 3, mesh.VertexCount())
	assert.Equal(t, []GPUStaticVertex{v0, v1, v2}, mesh.StaticVertices())
	assert.Equal(t, []uint32{0, 1, 2}, mesh.Indices())
	assert.Equal(t, 3, mesh.IndexCount())
	assert.Equal(t, 3*52, len(mesh.VertexData()))
	assert.Equal(t, 12, len(mesh.IndexData()))
	assert.InDelta(t, float32(math.Sqrt(16)), mesh.BoundingRadius(), 1e-6)
}

func TestParseStaticMeshErrors(t *testing.T) {
	t.Run("truncated vertices", func(t *testing.T) {
		var data []byte
		data = putU32(data, 1)
		data = putU32(data, 2)
		data = putF32(data, 1.0)
		_, err := ParseStaticMesh("broken", data)
		assert.Error(t, err)
	})

	t.Run("index out of range", func(t *testing.T) {
		var data []byte
		data = putU32(data, 1)
		data = putU32(data, 1)
		data = putStaticVertex(data, GPUStaticVertex{})
		data = putU32(data, 3)
		data = putU32(data, 0)
		data = putU32(data, 0)
		data = putU32(data, 7)
		_, err := ParseStaticMesh("broken", data)
		assert.Error(t, err)
	})
}

func TestParseSkinnedMesh(t *testing.T) {
	unusedSlot := int32(-1)
	var data []byte
	data = putU32(data, 1)
	data = putU32(data, 2)
	for i := 0; i < 2; i++ {
		data = putStaticVertex(data, GPUStaticVertex{Position: [3]float32{float32(i), 0, 0}})
		data = putU32(data, uint32(int32(4)))   // bone id 4
		data = putU32(data, uint32(unusedSlot)) // unused slot
		data = putU32(data, uint32(unusedSlot))
		data = putU32(data, uint32(unusedSlot))
		data = putF32(data, 1.0)
		data = putF32(data, 0.0)
		data = putF32(data, 0.0)
		data = putF32(data, 0.0)
	}
	data = putU32(data, 3)
	data = putU32(data, 0)
	data = putU32(data, 1)
	data = putU32(data, 1)

	mesh, err := ParseSkinnedMesh("rig", data)
	require.NoError(t, err)
	assert.True(t, mesh.Skinned())
	assert.Equal(t, 2, mesh.VertexCount())
	assert.Equal(t, 2*84, len(mesh.VertexData()))
	assert.Equal(t, [4]int32{4, -1, -1, -1}, mesh.SkinnedVertices()[0].BoneIndices)
	// Highest referenced bone id is 4, so 5 bones are required.
	assert.Equal(t, 5, mesh.BoneCount())
}

func TestMarshalStaticVertex(t *testing.T) {
	v := GPUStaticVertex{
		Position: [3]float32{1, 2, 3},
		Normal:   [3]float32{0, 1, 0},
		TexCoord: [3]float32{0.5, 0.75, 3},
		Color:    [4]float32{0.1, 0.2, 0.3, 1},
	}
	buf := v.Marshal()
	require.Equal(t, 52, len(buf))
	assert.Equal(t, 52, v.Size())
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(buf[0:])))
	assert.Equal(t, float32(0.5), math.Float32frombits(binary.LittleEndian.Uint32(buf[24:])))
	// The uv z component carries the texture array layer.
	assert.Equal(t, float32(3), math.Float32frombits(binary.LittleEndian.Uint32(buf[32:])))
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(buf[48:])))
}

func TestMarshalSkinnedVertex(t *testing.T) {
	v := GPUSkinnedVertex{
		BoneIndices: [4]int32{0, 3, -1, -1},
		BoneWeights: [4]float32{0.5, 0.5, 0, 0},
	}
	buf := v.Marshal()
	require.Equal(t, 84, len(buf))
	assert.Equal(t, 84, v.Size())
	assert.Equal(t, int32(3), int32(binary.LittleEndian.Uint32(buf[56:])))
	assert.Equal(t, int32(-1), int32(binary.LittleEndian.Uint32(buf[60:])))
	assert.Equal(t, float32(0.5), math.Float32frombits(binary.LittleEndian.Uint32(buf[68:])))
}

func TestNewCube(t *testing.T) {
	cube := NewCube(1, [4]float32{1, 1, 1, 1})
	assert.Equal(t, 24, cube.VertexCount())
	assert.Equal(t, 36, cube.IndexCount())
	assert.InDelta(t, float32(math.Sqrt(3)), cube.BoundingRadius(), 1e-5)
	for _, index := range cube.Indices() {
		assert.Less(t, int(index), cube.VertexCount())
	}
}

func TestNewSkinnedRibbon(t *testing.T) {
	ribbon := NewSkinnedRibbon(1, 4, 4, [4]float32{1, 1, 1, 1})
	require.True(t, ribbon.Skinned())
	assert.Equal(t, 10, ribbon.VertexCount())
	assert.Equal(t, 4, ribbon.BoneCount())

	// Every vertex is rigidly bound to a single bone.
	for _, v := range ribbon.SkinnedVertices() {
		assert.Equal(t, float32(1), v.BoneWeights[0])
		assert.GreaterOrEqual(t, v.BoneIndices[0], int32(0))
		assert.Less(t, v.BoneIndices[0], int32(4))
		assert.Equal(t, int32(-1), v.BoneIndices[1])
	}

	// The top row clamps to the last bone.
	top := ribbon.SkinnedVertices()[8]
	assert.Equal(t, int32(3), top.BoneIndices[0])
	assert.Equal(t, float32(4), top.Position[1])
}
