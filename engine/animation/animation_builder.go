package animation

// ClipBuilderOption is a functional option for configuring a Clip via NewClip.
type ClipBuilderOption func(*clip)

// WithName is an option builder that sets the name of the Clip.
//
// Parameters:
//   - name: the clip identifier
//
// Returns:
//   - ClipBuilderOption: a function that applies the name option to a clip
func WithName(name string) ClipBuilderOption {
	return func(c *clip) {
		c.name = name
	}
}

// WithBoneCount is an option builder that sets the number of bones per keyframe.
//
// Parameters:
//   - count: the bone count
//
// Returns:
//   - ClipBuilderOption: a function that applies the bone count option to a clip
func WithBoneCount(count int) ClipBuilderOption {
	return func(c *clip) {
		c.boneCount = count
	}
}

// WithFrames is an option builder that sets the keyframe-major bone poses.
// The slice must hold FrameCount x BoneCount entries with the pose of bone b
// at keyframe f stored at index f*BoneCount+b.
//
// Parameters:
//   - frames: the bone poses to set
//
// Returns:
//   - ClipBuilderOption: a function that applies the frames option to a clip
func WithFrames(frames []Frame) ClipBuilderOption {
	return func(c *clip) {
		c.frames = frames
	}
}

// WithTimes is an option builder that sets the keyframe timestamps in seconds.
// Timestamps must be strictly increasing.
//
// Parameters:
//   - times: the timestamps to set
//
// Returns:
//   - ClipBuilderOption: a function that applies the times option to a clip
func WithTimes(times []float32) ClipBuilderOption {
	return func(c *clip) {
		c.times = times
	}
}
