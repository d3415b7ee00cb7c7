package model

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUStaticVertexSource is the canonical WGSL definition of the VertexInput struct for static mesh pipelines.
// Matches GPUStaticVertex layout exactly (52 bytes, tightly packed).
//
//go:embed assets/static_vertex.wgsl
var GPUStaticVertexSource string

// GPUStaticVertex is the GPU-aligned representation of a single mesh vertex for static (non-skinned) geometry.
// Matches the WGSL VertexInput struct layout exactly (see GPUStaticVertexSource).
// Size: 52 bytes (vertex buffer stride, no padding required).
type GPUStaticVertex struct {
	Position [3]float32 // offset  0: vertex position in object space (12 bytes)
	Normal   [3]float32 // offset 12: vertex normal for lighting (12 bytes)
	TexCoord [3]float32 // offset 24: xy texel coordinates, z selects the texture array layer (12 bytes)
	Color    [4]float32 // offset 36: per-vertex RGBA color (16 bytes)
}

// Size returns the size of the GPUStaticVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUStaticVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUStaticVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 52-byte buffer ready for GPU upload.
func (g *GPUStaticVertex) Marshal() []byte {
	buf := make([]byte, 52)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.Position[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.Normal[0]))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.Normal[1]))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(g.Normal[2]))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(g.TexCoord[0]))
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(g.TexCoord[1]))
	binary.LittleEndian.PutUint32(buf[32:36], math.Float32bits(g.TexCoord[2]))
	binary.LittleEndian.PutUint32(buf[36:40], math.Float32bits(g.Color[0]))
	binary.LittleEndian.PutUint32(buf[40:44], math.Float32bits(g.Color[1]))
	binary.LittleEndian.PutUint32(buf[44:48], math.Float32bits(g.Color[2]))
	binary.LittleEndian.PutUint32(buf[48:52], math.Float32bits(g.Color[3]))
	return buf
}

// GPUSkinnedVertexSource is the canonical WGSL definition of the VertexInput struct for skinned mesh pipelines.
// Matches GPUSkinnedVertex layout exactly (84 bytes, tightly packed).
//
//go:embed assets/skinned_vertex.wgsl
var GPUSkinnedVertexSource string

// GPUSkinnedVertex is the GPU-aligned representation of a single mesh vertex for skinned (bone-animated) geometry.
// It extends GPUStaticVertex with per-vertex bone skinning data.
// Matches the WGSL VertexInput struct layout for skinned pipelines (see GPUSkinnedVertexSource).
// Size: 84 bytes (52 base vertex + 32 skinning data, no padding required).
type GPUSkinnedVertex struct {
	GPUStaticVertex            // offset  0: base vertex data (position, normal, uv, color) — 52 bytes
	BoneIndices     [4]int32   // offset 52: indices of up to 4 influencing bones, -1 marks an unused slot (16 bytes)
	BoneWeights     [4]float32 // offset 68: blend weights for each bone, expected to sum to <= 1.0 (16 bytes)
}

// Size returns the size of the GPUSkinnedVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUSkinnedVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUSkinnedVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 84-byte buffer ready for GPU upload.
func (g *GPUSkinnedVertex) Marshal() []byte {
	buf := make([]byte, 84)
	// Base vertex fields (52 bytes)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.Position[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.Normal[0]))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.Normal[1]))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(g.Normal[2]))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(g.TexCoord[0]))
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(g.TexCoord[1]))
	binary.LittleEndian.PutUint32(buf[32:36], math.Float32bits(g.TexCoord[2]))
	binary.LittleEndian.PutUint32(buf[36:40], math.Float32bits(g.Color[0]))
	binary.LittleEndian.PutUint32(buf[40:44], math.Float32bits(g.Color[1]))
	binary.LittleEndian.PutUint32(buf[44:48], math.Float32bits(g.Color[2]))
	binary.LittleEndian.PutUint32(buf[48:52], math.Float32bits(g.Color[3]))
	// Bone skinning fields (32 bytes)
	binary.LittleEndian.PutUint32(buf[52:56], uint32(g.BoneIndices[0]))
	binary.LittleEndian.PutUint32(buf[56:60], uint32(g.BoneIndices[1]))
	binary.LittleEndian.PutUint32(buf[60:64], uint32(g.BoneIndices[2]))
	binary.LittleEndian.PutUint32(buf[64:68], uint32(g.BoneIndices[3]))
	binary.LittleEndian.PutUint32(buf[68:72], math.Float32bits(g.BoneWeights[0]))
	binary.LittleEndian.PutUint32(buf[72:76], math.Float32bits(g.BoneWeights[1]))
	binary.LittleEndian.PutUint32(buf[76:80], math.Float32bits(g.BoneWeights[2]))
	binary.LittleEndian.PutUint32(buf[80:84], math.Float32bits(g.BoneWeights[3]))
	return buf
}

// GPUMeshInstanceSource is the canonical WGSL definition of the MeshInstance struct.
// Matches GPUMeshInstance layout exactly (112 bytes, std430 aligned).
//
//go:embed assets/mesh_instance.wgsl
var GPUMeshInstanceSource string

// GPUMeshInstance is the GPU-aligned per-instance record for mesh draws. The
// vertex shaders index a storage buffer of these by instance_index. Skinned
// pipelines add the bone offset to each vertex's bone ids to address the
// frame's shared bone palette; static pipelines ignore it.
// Matches the WGSL MeshInstance struct layout exactly (see GPUMeshInstanceSource).
// Size: 112 bytes (std430 aligned array stride).
type GPUMeshInstance struct {
	Model      [16]float32 // offset  0: model matrix, column-major (64 bytes)
	Color      [4]float32  // offset 64: instance RGBA tint multiplied with the vertex color (16 bytes)
	TexBounds  [4]float32  // offset 80: xy = uv offset, zw = uv scale into the albedo layer (16 bytes)
	BoneOffset uint32      // offset 96: index of this instance's first bone in the frame palette (4 bytes)
	_pad       [3]uint32   // offset 100: padding to 112-byte array stride (12 bytes)
}

// Size returns the size of the GPUMeshInstance struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUMeshInstance) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUMeshInstance struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 112-byte buffer ready for GPU upload.
func (g *GPUMeshInstance) Marshal() []byte {
	buf := make([]byte, 112)
	g.MarshalInto(buf)
	return buf
}

// MarshalInto serializes the GPUMeshInstance struct into the first 112 bytes
// of buf, which must be at least that long. Used for in-place writes into a
// frame's shared instance staging buffer.
//
// Parameters:
//   - buf: destination slice, at least 112 bytes
func (g *GPUMeshInstance) MarshalInto(buf []byte) {
	for i, v := range g.Model {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	binary.LittleEndian.PutUint32(buf[64:], math.Float32bits(g.Color[0]))
	binary.LittleEndian.PutUint32(buf[68:], math.Float32bits(g.Color[1]))
	binary.LittleEndian.PutUint32(buf[72:], math.Float32bits(g.Color[2]))
	binary.LittleEndian.PutUint32(buf[76:], math.Float32bits(g.Color[3]))
	binary.LittleEndian.PutUint32(buf[80:], math.Float32bits(g.TexBounds[0]))
	binary.LittleEndian.PutUint32(buf[84:], math.Float32bits(g.TexBounds[1]))
	binary.LittleEndian.PutUint32(buf[88:], math.Float32bits(g.TexBounds[2]))
	binary.LittleEndian.PutUint32(buf[92:], math.Float32bits(g.TexBounds[3]))
	binary.LittleEndian.PutUint32(buf[96:], g.BoneOffset)
	binary.LittleEndian.PutUint32(buf[100:], 0)
	binary.LittleEndian.PutUint32(buf[104:], 0)
	binary.LittleEndian.PutUint32(buf[108:], 0)
}

// ComputeBoundingRadius calculates the bounding sphere radius from a slice of
// static vertices. The radius is the maximum distance from the origin across
// all vertices in the slice.
//
// Parameters:
//   - vertices: the vertex data to compute the bounding radius from
//
// Returns:
//   - float32: the maximum distance from the origin
func ComputeBoundingRadius(vertices []GPUStaticVertex) float32 {
	var maxDistSq float32
	for _, v := range vertices {
		p := v.Position
		distSq := p[0]*p[0] + p[1]*p[1] + p[2]*p[2]
		if distSq > maxDistSq {
			maxDistSq = distSq
		}
	}
	return float32(math.Sqrt(float64(maxDistSq)))
}

// ComputeSkinnedBoundingRadius calculates the bounding sphere radius from a
// slice of skinned vertices at bind pose. Animated deformation can exceed this
// bound, so callers should treat it as an approximation.
//
// Parameters:
//   - vertices: the vertex data to compute the bounding radius from
//
// Returns:
//   - float32: the maximum distance from the origin
func ComputeSkinnedBoundingRadius(vertices []GPUSkinnedVertex) float32 {
	var maxDistSq float32
	for _, v := range vertices {
		p := v.Position
		distSq := p[0]*p[0] + p[1]*p[1] + p[2]*p[2]
		if distSq > maxDistSq {
			maxDistSq = distSq
		}
	}
	return float32(math.Sqrt(float64(maxDistSq)))
}
