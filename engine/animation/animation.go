// package animation provides CPU-side skeletal animation: binary clip
// decoding, pose sampling with interpolation and looping, two-clip blending,
// and conversion of sampled poses to the flat bone palette matrices consumed
// by the skinned mesh pipelines.
package animation

import (
	"fmt"

	"github.com/Dualsub/rusty-rift/common"
	"github.com/chewxy/math32"
)

// Frame is the pose of a single bone at one point in time: a model-space
// translation and rotation. Scale is not animated.
type Frame struct {
	// Position is the bone translation.
	Position [3]float32
	// Rotation is the bone orientation.
	Rotation common.Quat
}

// IdentityFrame returns the rest pose for a bone.
func IdentityFrame() Frame {
	return Frame{Rotation: common.QuatIdentity()}
}

// Matrix writes the frame's 4x4 column-major transform into out.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
func (f Frame) Matrix(out []float32) {
	common.RotationTranslation(out, f.Rotation, f.Position[0], f.Position[1], f.Position[2])
}

// clip is the implementation of the Clip interface.
type clip struct {
	name      string
	boneCount int
	frames    []Frame
	times     []float32
}

// Clip defines the interface for a decoded animation clip. Frames are stored
// frame-major: the pose of bone b at keyframe f sits at index f*BoneCount+b.
// Keyframe times are in seconds and strictly increasing.
type Clip interface {
	// Name retrieves the clip identifier.
	//
	// Returns:
	//   - string: the clip name
	Name() string

	// BoneCount returns the number of bones per keyframe.
	//
	// Returns:
	//   - int: the bone count
	BoneCount() int

	// FrameCount returns the number of keyframes.
	//
	// Returns:
	//   - int: the keyframe count
	FrameCount() int

	// Duration returns the timestamp of the last keyframe in seconds, or 0
	// for an empty clip.
	//
	// Returns:
	//   - float32: the clip duration
	Duration() float32

	// Times retrieves the keyframe timestamps in seconds.
	//
	// Returns:
	//   - []float32: the timestamps
	Times() []float32

	// FrameAt retrieves the stored pose of one bone at one keyframe without
	// interpolation.
	//
	// Parameters:
	//   - frameIndex: the keyframe index
	//   - boneIndex: the bone index
	//
	// Returns:
	//   - Frame: the stored pose
	FrameAt(frameIndex, boneIndex int) Frame

	// Sample computes the interpolated pose of every bone at the given time.
	// Positions interpolate linearly and rotations with shortest-path nlerp
	// between the surrounding keyframes. Looping wraps time by the clip
	// duration; otherwise time clamps to the clip's range.
	//
	// Parameters:
	//   - time: the playback time in seconds
	//   - loop: whether to wrap time by the clip duration
	//   - dst: destination pose reused when it has capacity, may be nil
	//
	// Returns:
	//   - []Frame: the sampled pose, one Frame per bone
	Sample(time float32, loop bool, dst []Frame) []Frame
}

var _ Clip = &clip{}

// NewClip creates a new Clip instance with the specified options applied.
// Panics if the frame data does not cover FrameCount x BoneCount poses, since
// a malformed clip is a programming or asset pipeline error.
//
// Parameters:
//   - options: a variadic list of ClipBuilderOption functions to configure the Clip
//
// Returns:
//   - Clip: a new instance of Clip configured with the provided options
func NewClip(options ...ClipBuilderOption) Clip {
	c := &clip{}
	for _, opt := range options {
		opt(c)
	}
	if len(c.frames) != len(c.times)*c.boneCount {
		panic(fmt.Sprintf("animation clip %s: %d frames does not cover %d keyframes x %d bones", c.name, len(c.frames), len(c.times), c.boneCount))
	}
	return c
}

func (c *clip) Name() string {
	return c.name
}

func (c *clip) BoneCount() int {
	return c.boneCount
}

func (c *clip) FrameCount() int {
	return len(c.times)
}

func (c *clip) Duration() float32 {
	if len(c.times) == 0 {
		return 0
	}
	return c.times[len(c.times)-1]
}

func (c *clip) Times() []float32 {
	return c.times
}

func (c *clip) FrameAt(frameIndex, boneIndex int) Frame {
	return c.frames[frameIndex*c.boneCount+boneIndex]
}

func (c *clip) Sample(time float32, loop bool, dst []Frame) []Frame {
	pose := resizePose(dst, c.boneCount)
	if len(c.times) == 0 {
		for i := range pose {
			pose[i] = IdentityFrame()
		}
		return pose
	}

	duration := c.Duration()
	if loop && duration > 0 {
		time = math32.Mod(time, duration)
		if time < 0 {
			time += duration
		}
	}

	// Clamp outside the keyframe range.
	if time <= c.times[0] || len(c.times) == 1 {
		copy(pose, c.frames[:c.boneCount])
		return pose
	}
	if time >= duration {
		last := (len(c.times) - 1) * c.boneCount
		copy(pose, c.frames[last:last+c.boneCount])
		return pose
	}

	// Binary search for the first keyframe at or after time.
	lo, hi := 1, len(c.times)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if c.times[mid] < time {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	next := lo
	prev := next - 1

	span := c.times[next] - c.times[prev]
	alpha := float32(0)
	if span > 0 {
		alpha = (time - c.times[prev]) / span
	}

	base0 := prev * c.boneCount
	base1 := next * c.boneCount
	for b := 0; b < c.boneCount; b++ {
		pose[b] = lerpFrame(c.frames[base0+b], c.frames[base1+b], alpha)
	}
	return pose
}

// lerpFrame interpolates a single bone pose.
func lerpFrame(a, b Frame, alpha float32) Frame {
	return Frame{
		Position: [3]float32{
			a.Position[0] + (b.Position[0]-a.Position[0])*alpha,
			a.Position[1] + (b.Position[1]-a.Position[1])*alpha,
			a.Position[2] + (b.Position[2]-a.Position[2])*alpha,
		},
		Rotation: common.QuatNlerp(a.Rotation, b.Rotation, alpha),
	}
}

// resizePose returns dst if it has exactly boneCount capacity, else a new slice.
func resizePose(dst []Frame, boneCount int) []Frame {
	if cap(dst) >= boneCount {
		return dst[:boneCount]
	}
	return make([]Frame, boneCount)
}

// BlendPoses mixes two poses of equal length: positions lerp and rotations
// nlerp. Used for clip transitions. Panics if the poses differ in length.
//
// Parameters:
//   - from: pose at alpha 0
//   - to: pose at alpha 1
//   - alpha: blend factor in [0, 1]
//   - dst: destination pose reused when it has capacity, may be nil or alias from
//
// Returns:
//   - []Frame: the blended pose
func BlendPoses(from, to []Frame, alpha float32, dst []Frame) []Frame {
	if len(from) != len(to) {
		panic(fmt.Sprintf("cannot blend poses of %d and %d bones", len(from), len(to)))
	}
	pose := resizePose(dst, len(from))
	for i := range from {
		pose[i] = lerpFrame(from[i], to[i], alpha)
	}
	return pose
}

// PoseMatrices converts a sampled pose into the flat column-major bone palette
// uploaded for skinning: 16 floats per bone, in bone order.
//
// Parameters:
//   - pose: the sampled pose
//   - out: destination slice reused when it has capacity, may be nil
//
// Returns:
//   - []float32: the palette, len(pose)*16 floats
func PoseMatrices(pose []Frame, out []float32) []float32 {
	need := len(pose) * 16
	if cap(out) < need {
		out = make([]float32, need)
	}
	out = out[:need]
	for i, frame := range pose {
		frame.Matrix(out[i*16 : (i+1)*16])
	}
	return out
}

// ParseClip decodes an animation asset from its binary encoding: a bone count
// and keyframe count (little-endian uint32), then keyframe-major bone poses
// (position xyz, rotation stored w-first), then the keyframe times in seconds.
//
// Parameters:
//   - name: the clip identifier
//   - data: the encoded clip bytes
//
// Returns:
//   - Clip: the decoded clip
//   - error: error if the data is truncated
func ParseClip(name string, data []byte) (Clip, error) {
	r := common.NewByteReader(data)

	boneCount := r.U32()
	frameCount := r.U32()

	frames := make([]Frame, 0, boneCount*frameCount)
	for i := uint32(0); i < boneCount*frameCount && r.Err() == nil; i++ {
		px, py, pz := r.F32(), r.F32(), r.F32()
		w, x, y, z := r.F32(), r.F32(), r.F32(), r.F32()
		frames = append(frames, Frame{
			Position: [3]float32{px, py, pz},
			Rotation: common.Quat{x, y, z, w},
		})
	}

	times := make([]float32, 0, frameCount)
	for i := uint32(0); i < frameCount && r.Err() == nil; i++ {
		times = append(times, r.F32())
	}

	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse animation %s: %w", name, err)
	}

	return NewClip(
		WithName(name),
		WithBoneCount(int(boneCount)),
		WithFrames(frames),
		WithTimes(times),
	), nil
}
