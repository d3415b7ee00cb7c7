package animation

import (
	"log"
	"sync"

	"github.com/chewxy/math32"
)

// animator is the implementation of the Animator interface.
type animator struct {
	mu *sync.Mutex

	clip Clip

	time, speed    float32
	loop, blending bool

	blendTo                     Clip
	blendToTime                 float32
	blendToLoop                 bool
	blendDuration, blendElapsed float32

	// Reusable pose buffers to avoid per-frame heap allocations.
	primaryPose, secondaryPose, blendedPose []Frame
}

// Animator defines the interface for animation playback on a single skinned
// instance. It tracks playback time, speed, looping and blend transitions, and
// produces the current bone pose each frame. Safe for concurrent use.
type Animator interface {
	// Play starts a clip from the beginning, cancelling any blend in progress.
	//
	// Parameters:
	//   - clip: the clip to play
	//   - loop: whether playback wraps at the clip duration
	Play(clip Clip, loop bool)

	// BlendTo smoothly transitions to a new clip over blendDuration seconds.
	// If the target's bone count differs from the current clip's, the
	// transition is applied immediately instead of blended.
	//
	// Parameters:
	//   - clip: the clip to transition to
	//   - blendDuration: the transition length in seconds
	//   - loop: whether target playback wraps at the clip duration
	BlendTo(clip Clip, blendDuration float32, loop bool)

	// SetTime sets the playback position in seconds.
	//
	// Parameters:
	//   - time: the playback time
	SetTime(time float32)

	// SetSpeed sets the playback speed multiplier.
	//
	// Parameters:
	//   - speed: the speed multiplier (1.0 = normal, 0.5 = half speed)
	SetSpeed(speed float32)

	// IsBlending returns whether a blend transition is in progress.
	//
	// Returns:
	//   - bool: true while blending
	IsBlending() bool

	// BlendProgress returns the transition progress from 0.0 to 1.0, or 0.0
	// when not blending.
	//
	// Returns:
	//   - float32: the blend progress
	BlendProgress() float32

	// CancelBlend stops an in-progress blend and keeps the current clip.
	CancelBlend()

	// Update advances playback time, wraps looping clips, and completes blend
	// transitions that have reached their full duration.
	//
	// Parameters:
	//   - deltaTime: elapsed time in seconds since the previous update
	Update(deltaTime float32)

	// Pose samples the current pose, blending two clips while a transition is
	// in progress. Returns nil when no clip is playing. The returned slice is
	// reused across calls; callers must not retain it past the next Pose call.
	//
	// Returns:
	//   - []Frame: the current pose, one Frame per bone
	Pose() []Frame

	// Clip returns the clip currently playing, or nil.
	//
	// Returns:
	//   - Clip: the active clip
	Clip() Clip
}

var _ Animator = &animator{}

// NewAnimator creates a new Animator instance with the specified options applied.
//
// Parameters:
//   - options: a variadic list of AnimatorBuilderOption functions to configure the Animator
//
// Returns:
//   - Animator: a new instance of Animator configured with the provided options
func NewAnimator(options ...AnimatorBuilderOption) Animator {
	a := &animator{
		mu:    &sync.Mutex{},
		speed: 1.0,
	}
	for _, opt := range options {
		opt(a)
	}
	return a
}

func (a *animator) Play(clip Clip, loop bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.clip = clip
	a.time = 0
	a.loop = loop
	a.blending = false
	a.blendElapsed = 0
}

func (a *animator) BlendTo(clip Clip, blendDuration float32, loop bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.clip == nil || blendDuration <= 0 {
		a.clip = clip
		a.time = 0
		a.loop = loop
		a.blending = false
		return
	}
	if clip.BoneCount() != a.clip.BoneCount() {
		log.Printf("[Animation] cannot blend %s (%d bones) into %s (%d bones), switching directly", clip.Name(), clip.BoneCount(), a.clip.Name(), a.clip.BoneCount())
		a.clip = clip
		a.time = 0
		a.loop = loop
		a.blending = false
		return
	}
	a.blending = true
	a.blendTo = clip
	a.blendToTime = 0
	a.blendToLoop = loop
	a.blendDuration = blendDuration
	a.blendElapsed = 0
}

func (a *animator) SetTime(time float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.time = time
}

func (a *animator) SetSpeed(speed float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.speed = speed
}

func (a *animator) IsBlending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.blending
}

func (a *animator) BlendProgress() float32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.blending {
		return 0
	}
	return a.blendElapsed / a.blendDuration
}

func (a *animator) CancelBlend() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.blending = false
	a.blendElapsed = 0
}

func (a *animator) Update(deltaTime float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.clip == nil {
		return
	}

	a.time += deltaTime * a.speed
	if a.loop {
		if duration := a.clip.Duration(); duration > 0 && a.time > duration {
			a.time = math32.Mod(a.time, duration)
		}
	}

	if a.blending {
		a.blendElapsed += deltaTime
		a.blendToTime += deltaTime * a.speed

		if a.blendToLoop {
			if duration := a.blendTo.Duration(); duration > 0 && a.blendToTime > duration {
				a.blendToTime = math32.Mod(a.blendToTime, duration)
			}
		}

		if a.blendElapsed/a.blendDuration >= 1.0 {
			a.clip = a.blendTo
			a.time = a.blendToTime
			a.loop = a.blendToLoop
			a.blending = false
			a.blendElapsed = 0
		}
	}
}

func (a *animator) Pose() []Frame {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.clip == nil {
		return nil
	}

	a.primaryPose = a.clip.Sample(a.time, a.loop, a.primaryPose)
	if !a.blending {
		return a.primaryPose
	}

	a.secondaryPose = a.blendTo.Sample(a.blendToTime, a.blendToLoop, a.secondaryPose)
	progress := a.blendElapsed / a.blendDuration
	a.blendedPose = BlendPoses(a.primaryPose, a.secondaryPose, progress, a.blendedPose)
	return a.blendedPose
}

func (a *animator) Clip() Clip {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.clip
}
