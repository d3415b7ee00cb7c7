package ui

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUSpriteInstanceSource is the canonical WGSL definition of the SpriteInstance struct.
// Matches GPUSpriteInstance layout exactly (64 bytes, std430 aligned).
//
//go:embed assets/sprite_instance.wgsl
var GPUSpriteInstanceSource string

// GPUSpriteInstance is the GPU-aligned representation of one sprite or glyph
// quad in the UI pass instance stream.
// Matches the WGSL SpriteInstance struct layout exactly (see GPUSpriteInstanceSource).
// Size: 64 bytes (std430 / WGSL aligned).
type GPUSpriteInstance struct {
	OffsetAndSize [4]float32 // offset  0: anchor-relative offset (xy) and quad size (zw)
	Color         [4]float32 // offset 16: RGBA tint
	TexBounds     [4]float32 // offset 32: atlas sub-rectangle, offset (xy) + extent (zw)
	Mode          uint32     // offset 48: texel interpretation (0 = sprite, 1 = MSDF)
	Layer         uint32     // offset 52: texture array layer
	Anchor        uint32     // offset 56: 3x3 grid anchor index
	Space         uint32     // offset 60: coordinate space selector
}

// Size returns the size of the GPUSpriteInstance struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (g *GPUSpriteInstance) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUSpriteInstance struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload
func (g *GPUSpriteInstance) Marshal() []byte {
	buf := make([]byte, g.Size())
	g.MarshalInto(buf)
	return buf
}

// MarshalInto serializes the GPUSpriteInstance struct into an existing buffer.
// The buffer must hold at least Size() bytes.
//
// Parameters:
//   - buf: destination buffer
func (g *GPUSpriteInstance) MarshalInto(buf []byte) {
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.OffsetAndSize[i]))
	}
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[16+i*4:], math.Float32bits(g.Color[i]))
	}
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[32+i*4:], math.Float32bits(g.TexBounds[i]))
	}
	binary.LittleEndian.PutUint32(buf[48:], g.Mode)
	binary.LittleEndian.PutUint32(buf[52:], g.Layer)
	binary.LittleEndian.PutUint32(buf[56:], g.Anchor)
	binary.LittleEndian.PutUint32(buf[60:], g.Space)
}

// GPUSpriteUniformSource is the canonical WGSL definition of the SpriteUniform struct.
// Matches GPUSpriteUniform layout exactly (16 bytes, std140 aligned).
//
//go:embed assets/sprite_uniform.wgsl
var GPUSpriteUniformSource string

// GPUSpriteUniform is the GPU-aligned representation of the per-frame UI pass
// uniform block.
// Matches the WGSL SpriteUniform struct layout exactly (see GPUSpriteUniformSource).
// Size: 16 bytes (std140 / WGSL aligned).
type GPUSpriteUniform struct {
	ScreenWidth  float32 // offset  0: surface width in pixels
	ScreenHeight float32 // offset  4: surface height in pixels
	UIScale      float32 // offset  8: reference-space scale factor
	_pad         float32 // offset 12: padding to 16 bytes
}

// Size returns the size of the GPUSpriteUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (16)
func (g *GPUSpriteUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUSpriteUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload
func (g *GPUSpriteUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(g.ScreenWidth))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(g.ScreenHeight))
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(g.UIScale))
	binary.LittleEndian.PutUint32(buf[12:], 0) // _pad
	return buf
}
