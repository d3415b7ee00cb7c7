package model

import (
	"github.com/Dualsub/rusty-rift/common"
)

// SkinPosition applies linear blend skinning to a vertex position using a flat
// bone matrix palette. Each of the four influence slots contributes
// weight * (bone_matrix * position); slots with a bone index of -1 are
// skipped. This is the CPU reference for the skinned vertex shader, which
// performs the same blend per vertex on the GPU.
//
// Parameters:
//   - v: the skinned vertex to transform
//   - bones: flat palette of column-major 4x4 bone matrices (16 floats each)
//   - boneOffset: index of the instance's first bone within the palette
//
// Returns:
//   - [3]float32: the blended position in object space
func SkinPosition(v GPUSkinnedVertex, bones []float32, boneOffset uint32) [3]float32 {
	var out [3]float32
	for i := range 4 {
		id := v.BoneIndices[i]
		if id < 0 {
			continue
		}
		base := (int(boneOffset) + int(id)) * 16
		p := common.TransformPoint(bones[base:base+16], v.Position[0], v.Position[1], v.Position[2])
		w := v.BoneWeights[i]
		out[0] += w * p[0]
		out[1] += w * p[1]
		out[2] += w * p[2]
	}
	return out
}

// SkinNormal applies linear blend skinning to a vertex normal. The normal is
// transformed as a direction (translation ignored), matching the shader's
// mat3 rotation of the bone matrix. The result is not renormalized here;
// callers that need a unit vector normalize after blending, as the shader
// does.
//
// Parameters:
//   - v: the skinned vertex to transform
//   - bones: flat palette of column-major 4x4 bone matrices (16 floats each)
//   - boneOffset: index of the instance's first bone within the palette
//
// Returns:
//   - [3]float32: the blended normal direction
func SkinNormal(v GPUSkinnedVertex, bones []float32, boneOffset uint32) [3]float32 {
	var out [3]float32
	for i := range 4 {
		id := v.BoneIndices[i]
		if id < 0 {
			continue
		}
		base := (int(boneOffset) + int(id)) * 16
		m := bones[base : base+16]
		w := v.BoneWeights[i]
		out[0] += w * (m[0]*v.Normal[0] + m[4]*v.Normal[1] + m[8]*v.Normal[2])
		out[1] += w * (m[1]*v.Normal[0] + m[5]*v.Normal[1] + m[9]*v.Normal[2])
		out[2] += w * (m[2]*v.Normal[0] + m[6]*v.Normal[1] + m[10]*v.Normal[2])
	}
	return out
}
