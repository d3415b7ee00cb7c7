package animation

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Dualsub/rusty-rift/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func putF32(buf []byte, v float32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], math.Float32bits(v))
	return append(buf, tmp[:]...)
}

func putU32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

// quatZ returns a rotation of the given angle around the Z axis.
func quatZ(radians float32) common.Quat {
	half := float64(radians) / 2
	return common.Quat{0, 0, float32(math.Sin(half)), float32(math.Cos(half))}
}

func TestParseClip(t *testing.T) {
	// 2 bones, 2 keyframes. Rotations are stored w-first on disk.
	var data []byte
	data = putU32(data, 2)
	data = putU32(data, 2)
	poses := []Frame{
		{Position: [3]float32{0, 0, 0}, Rotation: common.QuatIdentity()},
		{Position: [3]float32{1, 0, 0}, Rotation: common.QuatIdentity()},
		{Position: [3]float32{0, 2, 0}, Rotation: quatZ(math.Pi)},
		{Position: [3]float32{1, 2, 0}, Rotation: common.QuatIdentity()},
	}
	for _, p := range poses {
		data = putF32(data, p.Position[0])
		data = putF32(data, p.Position[1])
		data = putF32(data, p.Position[2])
		data = putF32(data, p.Rotation[3]) // w first
		data = putF32(data, p.Rotation[0])
		data = putF32(data, p.Rotation[1])
		data = putF32(data, p.Rotation[2])
	}
	data = putF32(data, 0)
	data = putF32(data, 1)

	clip, err := ParseClip("walk", data)
	require.NoError(t, err)
	assert.Equal(t, "walk", clip.Name())
	assert.Equal(t, 2, clip.BoneCount())
	assert.Equal(t, 2, clip.FrameCount())
	assert.Equal(t, float32(1), clip.Duration())
	assert.Equal(t, poses[1], clip.FrameAt(0, 1))
	assert.InDelta(t, float64(quatZ(math.Pi)[2]), float64(clip.FrameAt(1, 0).Rotation[2]), 1e-6)
}

func TestParseClipTruncated(t *testing.T) {
	var data []byte
	data = putU32(data, 2)
	data = putU32(data, 2)
	data = putF32(data, 1.0)
	_, err := ParseClip("broken", data)
	assert.Error(t, err)
}

func makeTwoFrameClip(t *testing.T) Clip {
	t.Helper()
	return NewClip(
		WithName("test"),
		WithBoneCount(1),
		WithFrames([]Frame{
			{Position: [3]float32{0, 0, 0}, Rotation: common.QuatIdentity()},
			{Position: [3]float32{2, 0, 0}, Rotation: quatZ(math.Pi)},
		}),
		WithTimes([]float32{0, 2}),
	)
}

func TestSampleInterpolation(t *testing.T) {
	clip := makeTwoFrameClip(t)

	// Exact keyframe hits.
	pose := clip.Sample(0, false, nil)
	assert.Equal(t, [3]float32{0, 0, 0}, pose[0].Position)
	pose = clip.Sample(2, false, nil)
	assert.Equal(t, [3]float32{2, 0, 0}, pose[0].Position)

	// Midpoint: position lerps, rotation nlerps to a quarter turn around Z.
	pose = clip.Sample(1, false, pose)
	assert.InDelta(t, 1.0, float64(pose[0].Position[0]), 1e-6)
	var m [16]float32
	pose[0].Matrix(m[:])
	rotated := common.TransformPoint(m[:], 1, 0, 0)
	assert.InDelta(t, 1.0, float64(rotated[0]), 1e-5)
	assert.InDelta(t, 1.0, float64(rotated[1]), 1e-5)
}

func TestSampleLooping(t *testing.T) {
	clip := makeTwoFrameClip(t)

	looped := clip.Sample(2.5, true, nil)
	direct := clip.Sample(0.5, false, nil)
	assert.InDelta(t, float64(direct[0].Position[0]), float64(looped[0].Position[0]), 1e-6)

	// Without looping, time past the end clamps to the last keyframe.
	clamped := clip.Sample(10, false, nil)
	assert.Equal(t, [3]float32{2, 0, 0}, clamped[0].Position)
}

func TestNewClipPanicsOnMismatch(t *testing.T) {
	assert.Panics(t, func() {
		NewClip(
			WithBoneCount(2),
			WithFrames(make([]Frame, 3)),
			WithTimes([]float32{0, 1}),
		)
	})
}

func TestPoseMatricesRigidTransform(t *testing.T) {
	// A vertex fully weighted to one bone must transform rigidly by that
	// bone's pose: rotate then translate.
	pose := []Frame{
		{Position: [3]float32{5, 0, 0}, Rotation: quatZ(math.Pi / 2)},
	}
	palette := PoseMatrices(pose, nil)
	require.Equal(t, 16, len(palette))

	p := common.TransformPoint(palette, 1, 0, 0)
	assert.InDelta(t, 5.0, float64(p[0]), 1e-5)
	assert.InDelta(t, 1.0, float64(p[1]), 1e-5)
	assert.InDelta(t, 0.0, float64(p[2]), 1e-5)
}

func TestAnimatorBlendTransition(t *testing.T) {
	from := NewClip(
		WithName("idle"),
		WithBoneCount(1),
		WithFrames([]Frame{{Position: [3]float32{0, 0, 0}, Rotation: common.QuatIdentity()}}),
		WithTimes([]float32{0}),
	)
	to := NewClip(
		WithName("run"),
		WithBoneCount(1),
		WithFrames([]Frame{{Position: [3]float32{4, 0, 0}, Rotation: common.QuatIdentity()}}),
		WithTimes([]float32{0}),
	)

	a := NewAnimator(WithClip(from, true))
	a.BlendTo(to, 1.0, true)
	require.True(t, a.IsBlending())

	a.Update(0.5)
	assert.InDelta(t, 0.5, float64(a.BlendProgress()), 1e-6)
	pose := a.Pose()
	require.Equal(t, 1, len(pose))
	assert.InDelta(t, 2.0, float64(pose[0].Position[0]), 1e-5)

	// Completing the blend promotes the target clip.
	a.Update(0.6)
	assert.False(t, a.IsBlending())
	assert.Equal(t, to, a.Clip())
	pose = a.Pose()
	assert.InDelta(t, 4.0, float64(pose[0].Position[0]), 1e-5)
}

func TestAnimatorMismatchedBoneCountSwitchesDirectly(t *testing.T) {
	from := NewClip(
		WithBoneCount(1),
		WithFrames(make([]Frame, 1)),
		WithTimes([]float32{0}),
	)
	to := NewClip(
		WithBoneCount(2),
		WithFrames(make([]Frame, 2)),
		WithTimes([]float32{0}),
	)

	a := NewAnimator(WithClip(from, false))
	a.BlendTo(to, 0.5, false)
	assert.False(t, a.IsBlending())
	assert.Equal(t, to, a.Clip())
}

func TestAnimatorLoopWraps(t *testing.T) {
	clip := makeTwoFrameClip(t)
	a := NewAnimator(WithClip(clip, true))

	a.Update(2.5)
	pose := a.Pose()
	expected := clip.Sample(0.5, true, nil)
	assert.InDelta(t, float64(expected[0].Position[0]), float64(pose[0].Position[0]), 1e-6)
}
