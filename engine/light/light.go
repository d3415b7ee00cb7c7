package light

import (
	"github.com/Dualsub/rusty-rift/common"
)

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	direction      [3]float32
	color          [3]float32
	intensity      float32
	enabled        bool
	castsShadows   bool
	focus          [3]float32
	shadowExtent   float32
	shadowNear     float32
	shadowFar      float32
	shadowDistance float32
}

// Light defines the interface for the scene's directional light.
//
// The renderer uses a single sun-style light with no position, only a
// direction. Its direction and color are uploaded in the per-frame uniform
// block, and its orthographic view-projection drives both the shadow depth
// pass and the shadow comparison in the main shading pass.
type Light interface {
	// Direction returns the normalized direction the light travels in,
	// pointing from the light toward the scene.
	//
	// Returns:
	//   - [3]float32: normalized direction as (x, y, z)
	Direction() [3]float32

	// Color returns the RGB color of the light.
	//
	// Returns:
	//   - [3]float32: color as (r, g, b)
	Color() [3]float32

	// Intensity returns the scalar intensity multiplier for the light.
	//
	// Returns:
	//   - float32: the intensity value
	Intensity() float32

	// EffectiveColor returns the light color premultiplied by intensity.
	// This is the value uploaded in the frame uniforms.
	//
	// Returns:
	//   - [3]float32: color * intensity as (r, g, b)
	EffectiveColor() [3]float32

	// Enabled returns whether this light is active for rendering.
	//
	// Returns:
	//   - bool: true if the light is enabled
	Enabled() bool

	// CastsShadows returns whether the shadow depth pass runs for this light.
	// When disabled the renderer binds a far-plane depth texture instead, so
	// every shadow comparison passes and geometry renders unshadowed.
	//
	// Returns:
	//   - bool: true if the light casts shadows
	CastsShadows() bool

	// Focus returns the world-space point the shadow frustum is centered on,
	// typically the camera target.
	//
	// Returns:
	//   - [3]float32: focus point as (x, y, z)
	Focus() [3]float32

	// ShadowHalfExtent returns the orthographic half-extent of the shadow
	// frustum in world units.
	//
	// Returns:
	//   - float32: the half-extent value
	ShadowHalfExtent() float32

	// SetDirection sets the direction of the light and normalizes it.
	//
	// Parameters:
	//   - x, y, z: direction components (will be normalized)
	SetDirection(x, y, z float32)

	// SetColor sets the RGB color of the light.
	//
	// Parameters:
	//   - r, g, b: color components
	SetColor(r, g, b float32)

	// SetIntensity sets the scalar intensity multiplier.
	//
	// Parameters:
	//   - intensity: the intensity value
	SetIntensity(intensity float32)

	// SetEnabled enables or disables the light for rendering.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// SetCastsShadows sets whether the shadow depth pass runs for this light.
	//
	// Parameters:
	//   - castsShadows: true to enable shadow casting
	SetCastsShadows(castsShadows bool)

	// SetFocus sets the world-space point the shadow frustum is centered on.
	//
	// Parameters:
	//   - x, y, z: focus point components
	SetFocus(x, y, z float32)

	// SetShadowHalfExtent sets the orthographic half-extent of the shadow
	// frustum in world units.
	//
	// Parameters:
	//   - halfExtent: the half-extent value
	SetShadowHalfExtent(halfExtent float32)

	// ViewProjection computes the light's combined orthographic
	// view-projection matrix. The eye sits shadowDistance world units behind
	// the focus point along the reversed light direction, so the focus lands
	// mid-frustum in depth.
	//
	// Parameters:
	//   - out: destination slice for the column-major 4x4 matrix (must be at
	//     least 16 elements)
	ViewProjection(out []float32)
}

var _ Light = &lightImpl{}

// NewLight creates a new directional Light with sensible defaults and any
// provided options applied.
//
// Parameters:
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(opts ...LightBuilderOption) Light {
	l := &lightImpl{
		direction:      [3]float32{0, -1, 0},
		color:          [3]float32{1, 1, 1},
		intensity:      1.0,
		enabled:        true,
		castsShadows:   true,
		focus:          [3]float32{0, 0, 0},
		shadowExtent:   DefaultShadowHalfExtent,
		shadowNear:     DefaultShadowNear,
		shadowFar:      DefaultShadowFar,
		shadowDistance: DefaultShadowDistance,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Direction() [3]float32 {
	return l.direction
}

func (l *lightImpl) Color() [3]float32 {
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	return l.intensity
}

func (l *lightImpl) EffectiveColor() [3]float32 {
	return [3]float32{
		l.color[0] * l.intensity,
		l.color[1] * l.intensity,
		l.color[2] * l.intensity,
	}
}

func (l *lightImpl) Enabled() bool {
	return l.enabled
}

func (l *lightImpl) CastsShadows() bool {
	return l.castsShadows
}

func (l *lightImpl) Focus() [3]float32 {
	return l.focus
}

func (l *lightImpl) ShadowHalfExtent() float32 {
	return l.shadowExtent
}

func (l *lightImpl) SetDirection(x, y, z float32) {
	l.direction = normalize3(x, y, z)
}

func (l *lightImpl) SetColor(r, g, b float32) {
	l.color = [3]float32{r, g, b}
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.intensity = intensity
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.enabled = enabled
}

func (l *lightImpl) SetCastsShadows(castsShadows bool) {
	l.castsShadows = castsShadows
}

func (l *lightImpl) SetFocus(x, y, z float32) {
	l.focus = [3]float32{x, y, z}
}

func (l *lightImpl) SetShadowHalfExtent(halfExtent float32) {
	l.shadowExtent = halfExtent
}

func (l *lightImpl) ViewProjection(out []float32) {
	dir := l.direction
	if dir == [3]float32{0, 0, 0} {
		dir = [3]float32{0, -1, 0}
	}
	eye := [3]float32{
		l.focus[0] - dir[0]*l.shadowDistance,
		l.focus[1] - dir[1]*l.shadowDistance,
		l.focus[2] - dir[2]*l.shadowDistance,
	}

	// A vertical sun is parallel to the default up vector, which would
	// degenerate the view basis.
	up := [3]float32{0, 1, 0}
	if dir[0]*dir[0]+dir[2]*dir[2] < 1e-6 {
		up = [3]float32{0, 0, 1}
	}

	var view, proj [16]float32
	common.LookAt(view[:], eye[0], eye[1], eye[2], l.focus[0], l.focus[1], l.focus[2], up[0], up[1], up[2])
	common.Orthographic(proj[:], l.shadowExtent, l.shadowNear, l.shadowFar)
	common.Mul4(out, proj[:], view[:])
}
