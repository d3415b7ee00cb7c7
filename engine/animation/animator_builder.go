package animation

// AnimatorBuilderOption is a functional option for configuring an Animator via NewAnimator.
type AnimatorBuilderOption func(*animator)

// WithClip is an option builder that starts the Animator playing a clip.
//
// Parameters:
//   - clip: the clip to play
//   - loop: whether playback wraps at the clip duration
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the clip option to an animator
func WithClip(clip Clip, loop bool) AnimatorBuilderOption {
	return func(a *animator) {
		a.clip = clip
		a.loop = loop
	}
}

// WithSpeed is an option builder that sets the playback speed multiplier.
//
// Parameters:
//   - speed: the speed multiplier (1.0 = normal)
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the speed option to an animator
func WithSpeed(speed float32) AnimatorBuilderOption {
	return func(a *animator) {
		a.speed = speed
	}
}
