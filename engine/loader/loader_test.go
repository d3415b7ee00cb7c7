package loader

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dualsub/rusty-rift/engine/model"
)

func putU32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func putF32(buf []byte, v float32) []byte {
	return putU32(buf, math.Float32bits(v))
}

// staticMeshAsset encodes one triangle in the static mesh layout.
func staticMeshAsset() []byte {
	var buf []byte
	buf = putU32(buf, 1) // mesh count
	buf = putU32(buf, 3) // vertex count
	positions := [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	for _, p := range positions {
		buf = putF32(buf, p[0])
		buf = putF32(buf, p[1])
		buf = putF32(buf, p[2])
		for i := 0; i < 3; i++ { // normal
			buf = putF32(buf, 0)
		}
		for i := 0; i < 3; i++ { // texcoord
			buf = putF32(buf, 0)
		}
		for i := 0; i < 4; i++ { // color
			buf = putF32(buf, 1)
		}
	}
	buf = putU32(buf, 3) // index count
	for i := uint32(0); i < 3; i++ {
		buf = putU32(buf, i)
	}
	return buf
}

// skinnedMeshAsset encodes one triangle rigidly bound to bone 1.
func skinnedMeshAsset() []byte {
	var buf []byte
	buf = putU32(buf, 1)
	buf = putU32(buf, 3)
	for v := 0; v < 3; v++ {
		for i := 0; i < 13; i++ { // position, normal, texcoord, color
			buf = putF32(buf, 0)
		}
		buf = putU32(buf, 1) // bone indices
		for i := 0; i < 3; i++ {
			buf = putU32(buf, 0xFFFFFFFF) // -1, unused slot
		}
		buf = putF32(buf, 1) // bone weights
		for i := 0; i < 3; i++ {
			buf = putF32(buf, 0)
		}
	}
	buf = putU32(buf, 3)
	for i := uint32(0); i < 3; i++ {
		buf = putU32(buf, i)
	}
	return buf
}

// textureAsset encodes a 1x1 RGBA texture.
func textureAsset() []byte {
	var buf []byte
	buf = putU32(buf, 1) // width
	buf = putU32(buf, 1) // height
	buf = putU32(buf, 1) // layers
	buf = putU32(buf, 4) // channels
	buf = putU32(buf, 1) // bytes per channel
	buf = putU32(buf, 1) // mips
	return append(buf, 0x10, 0x20, 0x30, 0x40)
}

// fontAsset encodes a single-glyph font with a 1x1 atlas.
func fontAsset() []byte {
	var buf []byte
	buf = putU32(buf, 1)   // glyph count
	buf = putU32(buf, 'A') // unicode
	buf = putF32(buf, 0.5) // advance
	buf = append(buf, 0)   // no bounds
	return append(buf, textureAsset()...)
}

// clipAsset encodes a one-bone, two-frame clip translating along x.
func clipAsset() []byte {
	var buf []byte
	buf = putU32(buf, 1) // bones
	buf = putU32(buf, 2) // frames
	for frame := 0; frame < 2; frame++ {
		buf = putF32(buf, float32(frame)) // position x
		buf = putF32(buf, 0)
		buf = putF32(buf, 0)
		buf = putF32(buf, 1) // rotation w
		buf = putF32(buf, 0)
		buf = putF32(buf, 0)
		buf = putF32(buf, 0)
	}
	buf = putF32(buf, 0) // frame times
	buf = putF32(buf, 1)
	return buf
}

func writeAsset(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoadStaticMeshCachesByName(t *testing.T) {
	path := writeAsset(t, "tri.dat", staticMeshAsset())

	l := NewLoader()
	m, err := l.LoadStaticMesh("tri", path)
	require.NoError(t, err)
	assert.Equal(t, "tri", m.Name())
	assert.False(t, m.Skinned())
	assert.Equal(t, 3, m.VertexCount())
	assert.Equal(t, 3, m.IndexCount())
	assert.Nil(t, m.Provider())

	// Cache hits resolve by name without touching the file again.
	require.NoError(t, os.Remove(path))
	again, err := l.LoadStaticMesh("tri", path)
	require.NoError(t, err)
	assert.Same(t, m, again)
	assert.Same(t, m, l.Mesh("tri"))
}

func TestLoadSkinnedMesh(t *testing.T) {
	path := writeAsset(t, "rig.dat", skinnedMeshAsset())

	l := NewLoader()
	m, err := l.LoadSkinnedMesh("rig", path)
	require.NoError(t, err)
	assert.True(t, m.Skinned())
	assert.Equal(t, 3, m.VertexCount())
	assert.Equal(t, 2, m.BoneCount())
}

func TestLoadTexture(t *testing.T) {
	path := writeAsset(t, "pixel.dat", textureAsset())

	l := NewLoader()
	desc, err := l.LoadTexture("pixel", path)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), desc.Width)
	assert.Equal(t, uint32(4), desc.ChannelCount)
	assert.Equal(t, []byte{0x10, 0x20, 0x30, 0x40}, desc.Pixels)
	assert.Same(t, desc, l.Texture("pixel"))
}

func TestLoadFont(t *testing.T) {
	path := writeAsset(t, "hud.dat", fontAsset())

	l := NewLoader()
	f, err := l.LoadFont("hud", path)
	require.NoError(t, err)
	assert.Equal(t, 1, f.GlyphCount())
	glyph, ok := f.Glyph('A')
	require.True(t, ok)
	assert.Equal(t, float32(0.5), glyph.Advance)
	require.NotNil(t, f.Atlas())
	assert.Equal(t, uint32(1), f.Atlas().Width)
}

func TestLoadClip(t *testing.T) {
	path := writeAsset(t, "walk.dat", clipAsset())

	l := NewLoader()
	clip, err := l.LoadClip("walk", path)
	require.NoError(t, err)
	assert.Equal(t, "walk", clip.Name())
	assert.Equal(t, 1, clip.BoneCount())
	assert.Equal(t, 2, clip.FrameCount())
	assert.Equal(t, float32(1), clip.Duration())
	assert.Same(t, clip, l.Clip("walk"))
}

func TestLoadMissingFile(t *testing.T) {
	l := NewLoader()
	path := filepath.Join(t.TempDir(), "absent.dat")

	_, err := l.LoadStaticMesh("absent", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
	assert.Nil(t, l.Mesh("absent"))
}

func TestLoadTruncatedMesh(t *testing.T) {
	data := staticMeshAsset()
	path := writeAsset(t, "cut.dat", data[:len(data)-8])

	l := NewLoader()
	_, err := l.LoadStaticMesh("cut", path)
	require.Error(t, err)
	assert.Nil(t, l.Mesh("cut"))
}

func TestWithMeshPrepopulatesCache(t *testing.T) {
	cube := model.NewCube(1, [4]float32{1, 1, 1, 1})
	l := NewLoader(WithMesh("cube", cube))

	assert.Same(t, cube, l.Mesh("cube"))
	assert.Nil(t, l.Mesh("sphere"))
	assert.Nil(t, l.Texture("cube"))

	l.Release()
	assert.Nil(t, l.Mesh("cube"))
}
