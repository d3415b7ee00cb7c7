// Package shading holds the host-side reference implementation of the main
// pass lighting math: the shadow visibility filter and the two shading
// models. The WGSL fragment shaders are the per-pixel form of exactly this
// code; keeping a CPU mirror makes the numerically sensitive parts testable
// and documents the pipeline's tuned constants in one place.
package shading

// Surface describes one shaded point. Albedo is the texture sample already
// multiplied by the instance and vertex colors; View is the unit vector from
// the point toward the camera.
type Surface struct {
	Position  Vec3
	Normal    Vec3
	View      Vec3
	Albedo    Vec3
	Metallic  float32
	Roughness float32
}

// Light is the directional light a surface is shaded with. Direction points
// from the light toward the scene.
type Light struct {
	Direction Vec3
	Color     Vec3
}

// ShadingModel computes the lit color of a surface. Implementations own
// their shadow remap: visibility is the raw PCF average in [0,1] and each
// model softens it with its own floor before applying it to the lit terms.
type ShadingModel interface {
	// Shade computes the final color for a surface point.
	//
	// Parameters:
	//   - surface: the shaded point
	//   - light: the directional light
	//   - visibility: raw shadow visibility in [0,1] (1 = fully lit)
	//
	// Returns:
	//   - Vec3: the output color, clamped to [0,1]
	Shade(surface Surface, light Light, visibility float32) Vec3
}
