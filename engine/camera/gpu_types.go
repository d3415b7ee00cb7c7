package camera

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUFrameUniformsSource is the canonical WGSL definition of the FrameUniforms struct.
// Matches GPUFrameUniforms layout exactly (240 bytes, std140 aligned).
//
//go:embed assets/frame_uniforms.wgsl
var GPUFrameUniformsSource string

// GPUFrameUniforms is the GPU-aligned uniform block shared by every mesh pass
// in a frame: camera view and projection, the camera position for specular
// math, and the directional light's matrix, direction and color. Uploaded
// once per frame; the shadow pass reads the light matrix, the main pass reads
// everything.
// Matches the WGSL FrameUniforms struct layout exactly (see GPUFrameUniformsSource).
// Size: 240 bytes (std140 aligned).
type GPUFrameUniforms struct {
	View                [16]float32 // offset   0: camera view matrix, column-major (64 bytes)
	Projection          [16]float32 // offset  64: camera projection matrix, column-major (64 bytes)
	CameraPos           [3]float32  // offset 128: camera world position (12 bytes)
	_pad0               float32     // offset 140: padding to 16-byte alignment (4 bytes)
	LightViewProjection [16]float32 // offset 144: directional light view-projection matrix (64 bytes)
	LightDir            [3]float32  // offset 208: normalized light travel direction (12 bytes)
	_pad1               float32     // offset 220: padding to 16-byte alignment (4 bytes)
	LightColor          [4]float32  // offset 224: light color premultiplied by intensity (16 bytes)
}

// Size returns the size of the GPUFrameUniforms struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUFrameUniforms) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUFrameUniforms struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 240-byte buffer ready for GPU upload.
func (g *GPUFrameUniforms) Marshal() []byte {
	buf := make([]byte, 240)
	for i, v := range g.View {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	for i, v := range g.Projection {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(v))
	}
	binary.LittleEndian.PutUint32(buf[128:], math.Float32bits(g.CameraPos[0]))
	binary.LittleEndian.PutUint32(buf[132:], math.Float32bits(g.CameraPos[1]))
	binary.LittleEndian.PutUint32(buf[136:], math.Float32bits(g.CameraPos[2]))
	for i, v := range g.LightViewProjection {
		binary.LittleEndian.PutUint32(buf[144+i*4:], math.Float32bits(v))
	}
	binary.LittleEndian.PutUint32(buf[208:], math.Float32bits(g.LightDir[0]))
	binary.LittleEndian.PutUint32(buf[212:], math.Float32bits(g.LightDir[1]))
	binary.LittleEndian.PutUint32(buf[216:], math.Float32bits(g.LightDir[2]))
	binary.LittleEndian.PutUint32(buf[224:], math.Float32bits(g.LightColor[0]))
	binary.LittleEndian.PutUint32(buf[228:], math.Float32bits(g.LightColor[1]))
	binary.LittleEndian.PutUint32(buf[232:], math.Float32bits(g.LightColor[2]))
	binary.LittleEndian.PutUint32(buf[236:], math.Float32bits(g.LightColor[3]))
	return buf
}
