package light

import "math"

// LightBuilderOption is a function that configures a Light instance during construction.
type LightBuilderOption func(*lightImpl)

// WithDirection is an option builder that sets the direction of the light.
// The direction is normalized before storing.
//
// Parameters:
//   - x: the x direction component
//   - y: the y direction component
//   - z: the z direction component
//
// Returns:
//   - LightBuilderOption: a function that applies the direction option to a lightImpl
func WithDirection(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.direction = normalize3(x, y, z)
	}
}

// WithColor is an option builder that sets the RGB color of the light.
//
// Parameters:
//   - r: the red color component
//   - g: the green color component
//   - b: the blue color component
//
// Returns:
//   - LightBuilderOption: a function that applies the color option to a lightImpl
func WithColor(r, g, b float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = [3]float32{r, g, b}
	}
}

// WithIntensity is an option builder that sets the scalar intensity multiplier.
//
// Parameters:
//   - intensity: the intensity value
//
// Returns:
//   - LightBuilderOption: a function that applies the intensity option to a lightImpl
func WithIntensity(intensity float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.intensity = intensity
	}
}

// WithEnabled is an option builder that sets whether the light is active for rendering.
//
// Parameters:
//   - enabled: true to enable the light
//
// Returns:
//   - LightBuilderOption: a function that applies the enabled option to a lightImpl
func WithEnabled(enabled bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.enabled = enabled
	}
}

// WithCastsShadows is an option builder that sets whether the shadow depth pass
// runs for this light.
//
// Parameters:
//   - castsShadows: true to enable shadow casting
//
// Returns:
//   - LightBuilderOption: a function that applies the shadow casting option to a lightImpl
func WithCastsShadows(castsShadows bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.castsShadows = castsShadows
	}
}

// WithFocus is an option builder that sets the world-space point the shadow
// frustum is centered on.
//
// Parameters:
//   - x: the x focus component
//   - y: the y focus component
//   - z: the z focus component
//
// Returns:
//   - LightBuilderOption: a function that applies the focus option to a lightImpl
func WithFocus(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.focus = [3]float32{x, y, z}
	}
}

// WithShadowFrustum is an option builder that sets the orthographic framing of
// the shadow projection.
//
// Parameters:
//   - halfExtent: orthographic half-extent in world units
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - LightBuilderOption: a function that applies the shadow frustum option to a lightImpl
func WithShadowFrustum(halfExtent, near, far float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.shadowExtent = halfExtent
		l.shadowNear = near
		l.shadowFar = far
	}
}

// WithShadowDistance is an option builder that sets how far behind the focus
// point the shadow eye sits, along the reversed light direction.
//
// Parameters:
//   - distance: eye offset in world units
//
// Returns:
//   - LightBuilderOption: a function that applies the shadow distance option to a lightImpl
func WithShadowDistance(distance float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.shadowDistance = distance
	}
}

// normalize3 normalizes a 3-component vector. Returns a zero vector if the input
// has zero length.
func normalize3(x, y, z float32) [3]float32 {
	length := float32(math.Sqrt(float64(x*x + y*y + z*z)))
	if length == 0 {
		return [3]float32{0, 0, 0}
	}
	inv := 1.0 / length
	return [3]float32{x * inv, y * inv, z * inv}
}
