package scene

import (
	"github.com/Dualsub/rusty-rift/engine/light"
	"github.com/Dualsub/rusty-rift/engine/renderer/shading"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithActive sets whether the scene is active for rendering.
//
// Parameters:
//   - active: whether the scene is active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithLight attaches a directional light to the scene at construction.
// Without one the scene renders unlit and skips the shadow pass.
//
// Parameters:
//   - l: the directional light
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLight(l light.Light) SceneBuilderOption {
	return func(s *scene) {
		s.lightSource = l
	}
}

// WithUIScale sets the reference-space scale factor for the UI pass.
// Default is ui.DefaultUIScale (1.0).
//
// Parameters:
//   - scale: multiplier applied to reference-space sprite units
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithUIScale(scale float32) SceneBuilderOption {
	return func(s *scene) {
		s.uiScale = scale
	}
}

// WithLightingParams replaces the scene's shading tunables at construction.
// Default is shading.DefaultLightingParams(), the shipped look.
//
// Parameters:
//   - params: the shading tunables
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLightingParams(params shading.LightingParams) SceneBuilderOption {
	return func(s *scene) {
		s.params = params
	}
}

// WithComputeWorkers sets the number of worker goroutines used during the
// parallel instance marshaling phase of RenderFrame. Defaults to
// runtime.NumCPU()-1. Higher values may improve throughput for scenes with
// many instances; lower values reduce scheduling overhead for simple scenes.
//
// Parameters:
//   - n: the number of compute workers (minimum 1)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithComputeWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		if n < 1 {
			n = 1
		}
		s.computeWorkers = n
	}
}

// WithCullingDisabled disables camera frustum culling for the scene. When
// set to true every submitted instance is drawn, including shadow casters
// outside the view. By default culling is enabled (disabled = false).
//
// Parameters:
//   - disabled: true to disable frustum culling, false to enable it (default)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCullingDisabled(disabled bool) SceneBuilderOption {
	return func(s *scene) {
		s.cullingDisabled = disabled
	}
}

// WithFrameLimits sets the per-frame caps on mesh instances, bone matrices
// and sprite quads. The caps size the GPU storage buffers once at
// construction; a frame exceeding one is rejected whole. Defaults are
// DefaultMaxInstances, DefaultMaxBones and DefaultMaxSprites.
//
// Parameters:
//   - maxInstances: mesh instance cap per frame
//   - maxBones: bone matrix cap per frame
//   - maxSprites: sprite quad cap per frame
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithFrameLimits(maxInstances, maxBones, maxSprites int) SceneBuilderOption {
	return func(s *scene) {
		if maxInstances > 0 {
			s.maxInstances = maxInstances
		}
		if maxBones > 0 {
			s.maxBones = maxBones
		}
		if maxSprites > 0 {
			s.maxSprites = maxSprites
		}
	}
}

// WithShadowMapResolution sets the width and height in texels of the shadow
// depth texture. Higher values produce sharper shadows at the cost of more
// GPU memory and fill-rate. The texture is allocated once at construction.
// Default is light.ShadowMapResolution (2048).
//
// Parameters:
//   - resolution: shadow map width and height in texels (e.g. 1024, 2048, 4096)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithShadowMapResolution(resolution int) SceneBuilderOption {
	return func(s *scene) {
		if resolution > 0 {
			s.shadowMapResolution = resolution
		}
	}
}
