package shading

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPULightingParamsSource is the canonical WGSL definition of the LightingParams struct.
// Matches GPULightingParams layout exactly (80 bytes, std140 aligned).
//
//go:embed assets/lighting_params.wgsl
var GPULightingParamsSource string

// GPULightingParams is the GPU-aligned uniform carrying the shading tunables
// into the main pass fragment shaders, so the WGSL and the Go shading models
// read the same values. The vec3 colors pack a trailing scalar into their
// alignment padding.
// Matches the WGSL LightingParams struct layout exactly (see GPULightingParamsSource).
// Size: 80 bytes (std140 aligned).
type GPULightingParams struct {
	SkyColor          [3]float32 // offset  0: upper hemisphere ambient color (12 bytes)
	ShadowBias        float32    // offset 12: depth bias for shadow comparisons (4 bytes)
	GroundColor       [3]float32 // offset 16: lower hemisphere ambient color (12 bytes)
	SimpleShadowFloor float32    // offset 28: simple model shadow remap floor (4 bytes)
	PBRShadowFloor    float32    // offset 32: PBR model shadow remap floor (4 bytes)
	DiffuseFloor      float32    // offset 36: simple model minimum N.L (4 bytes)
	SpecularExponent  float32    // offset 40: simple model Blinn-Phong power (4 bytes)
	SpecularBoost     float32    // offset 44: simple model specular multiplier (4 bytes)
	SimpleAmbient     float32    // offset 48: simple model flat ambient scale (4 bytes)
	OutputGamma       float32    // offset 52: simple model output exponent (4 bytes)
	WrapAmount        float32    // offset 56: PBR wrapped diffuse shift (4 bytes)
	WrapPower         float32    // offset 60: PBR wrapped diffuse exponent (4 bytes)
	AmbientScale      float32    // offset 64: PBR hemispheric ambient scale (4 bytes)
	SpecularClamp     float32    // offset 68: PBR specular ceiling before compression (4 bytes)
	DielectricF0      float32    // offset 72: Fresnel reflectance at normal incidence (4 bytes)
	Epsilon           float32    // offset 76: denominator floor (4 bytes)
}

// Size returns the size of the GPULightingParams struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPULightingParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPULightingParams struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 80-byte buffer ready for GPU upload.
func (g *GPULightingParams) Marshal() []byte {
	buf := make([]byte, 80)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.SkyColor[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.SkyColor[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.SkyColor[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.ShadowBias))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.GroundColor[0]))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(g.GroundColor[1]))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(g.GroundColor[2]))
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(g.SimpleShadowFloor))
	binary.LittleEndian.PutUint32(buf[32:36], math.Float32bits(g.PBRShadowFloor))
	binary.LittleEndian.PutUint32(buf[36:40], math.Float32bits(g.DiffuseFloor))
	binary.LittleEndian.PutUint32(buf[40:44], math.Float32bits(g.SpecularExponent))
	binary.LittleEndian.PutUint32(buf[44:48], math.Float32bits(g.SpecularBoost))
	binary.LittleEndian.PutUint32(buf[48:52], math.Float32bits(g.SimpleAmbient))
	binary.LittleEndian.PutUint32(buf[52:56], math.Float32bits(g.OutputGamma))
	binary.LittleEndian.PutUint32(buf[56:60], math.Float32bits(g.WrapAmount))
	binary.LittleEndian.PutUint32(buf[60:64], math.Float32bits(g.WrapPower))
	binary.LittleEndian.PutUint32(buf[64:68], math.Float32bits(g.AmbientScale))
	binary.LittleEndian.PutUint32(buf[68:72], math.Float32bits(g.SpecularClamp))
	binary.LittleEndian.PutUint32(buf[72:76], math.Float32bits(g.DielectricF0))
	binary.LittleEndian.PutUint32(buf[76:80], math.Float32bits(g.Epsilon))
	return buf
}

// GPU converts the parameter set to its GPU uniform representation.
//
// Returns:
//   - GPULightingParams: the uniform contents
func (p LightingParams) GPU() GPULightingParams {
	return GPULightingParams{
		SkyColor:          p.SkyColor,
		ShadowBias:        p.ShadowBias,
		GroundColor:       p.GroundColor,
		SimpleShadowFloor: p.SimpleShadowFloor,
		PBRShadowFloor:    p.PBRShadowFloor,
		DiffuseFloor:      p.DiffuseFloor,
		SpecularExponent:  p.SpecularExponent,
		SpecularBoost:     p.SpecularBoost,
		SimpleAmbient:     p.SimpleAmbient,
		OutputGamma:       p.OutputGamma,
		WrapAmount:        p.WrapAmount,
		WrapPower:         p.WrapPower,
		AmbientScale:      p.AmbientScale,
		SpecularClamp:     p.SpecularClamp,
		DielectricF0:      p.DielectricF0,
		Epsilon:           p.Epsilon,
	}
}
