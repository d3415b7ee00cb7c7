package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Dualsub/rusty-rift/common"
)

func translationMatrix(tx, ty, tz float32) []float32 {
	m := make([]float32, 16)
	common.Identity(m)
	m[12] = tx
	m[13] = ty
	m[14] = tz
	return m
}

func TestSkinPositionRigid(t *testing.T) {
	// A single bone at weight 1 is a rigid transform.
	v := GPUSkinnedVertex{
		GPUStaticVertex: GPUStaticVertex{Position: [3]float32{1, 2, 3}},
		BoneIndices:     [4]int32{0, -1, -1, -1},
		BoneWeights:     [4]float32{1, 0, 0, 0},
	}
	bones := translationMatrix(5, 6, 7)

	assert.Equal(t, [3]float32{6, 8, 10}, SkinPosition(v, bones, 0))
}

func TestSkinPositionBlendsWeights(t *testing.T) {
	v := GPUSkinnedVertex{
		GPUStaticVertex: GPUStaticVertex{Position: [3]float32{1, 0, 0}},
		BoneIndices:     [4]int32{0, 1, -1, -1},
		BoneWeights:     [4]float32{0.5, 0.5, 0, 0},
	}
	identity := make([]float32, 16)
	common.Identity(identity)
	bones := append(identity, translationMatrix(2, 0, 0)...)

	// Halfway between rest and the translated pose.
	pos := SkinPosition(v, bones, 0)
	assert.InDelta(t, 2.0, pos[0], 1e-6)
	assert.InDelta(t, 0.0, pos[1], 1e-6)
	assert.InDelta(t, 0.0, pos[2], 1e-6)
}

func TestSkinPositionSkipsUnusedSlots(t *testing.T) {
	v := GPUSkinnedVertex{
		GPUStaticVertex: GPUStaticVertex{Position: [3]float32{1, 2, 3}},
		BoneIndices:     [4]int32{-1, -1, -1, -1},
		BoneWeights:     [4]float32{1, 1, 1, 1},
	}
	bones := translationMatrix(100, 100, 100)

	// No influencing bones leaves the position at the blend origin.
	assert.Equal(t, [3]float32{0, 0, 0}, SkinPosition(v, bones, 0))
}

func TestSkinPositionBoneOffset(t *testing.T) {
	v := GPUSkinnedVertex{
		GPUStaticVertex: GPUStaticVertex{Position: [3]float32{0, 0, 0}},
		BoneIndices:     [4]int32{0, -1, -1, -1},
		BoneWeights:     [4]float32{1, 0, 0, 0},
	}
	bones := append(translationMatrix(1, 0, 0), translationMatrix(0, 9, 0)...)

	// The offset relocates bone 0 into the second palette entry.
	assert.Equal(t, [3]float32{0, 9, 0}, SkinPosition(v, bones, 1))
}

func TestSkinNormalIgnoresTranslation(t *testing.T) {
	v := GPUSkinnedVertex{
		GPUStaticVertex: GPUStaticVertex{Normal: [3]float32{0, 1, 0}},
		BoneIndices:     [4]int32{0, -1, -1, -1},
		BoneWeights:     [4]float32{1, 0, 0, 0},
	}
	bones := translationMatrix(50, 50, 50)

	assert.Equal(t, [3]float32{0, 1, 0}, SkinNormal(v, bones, 0))
}

func TestSkinNormalRotates(t *testing.T) {
	v := GPUSkinnedVertex{
		GPUStaticVertex: GPUStaticVertex{Normal: [3]float32{1, 0, 0}},
		BoneIndices:     [4]int32{0, -1, -1, -1},
		BoneWeights:     [4]float32{1, 0, 0, 0},
	}
	// Quarter turn about the z axis carries +x onto +y.
	bones := make([]float32, 16)
	common.Identity(bones)
	bones[0] = 0
	bones[1] = 1
	bones[4] = -1
	bones[5] = 0

	n := SkinNormal(v, bones, 0)
	assert.InDelta(t, 0.0, n[0], 1e-6)
	assert.InDelta(t, 1.0, n[1], 1e-6)
	assert.InDelta(t, 0.0, n[2], 1e-6)
}
