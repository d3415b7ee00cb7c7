package light

// ShadowMapResolution is the width and height in texels of the shadow depth
// texture. The renderer allocates a square Depth32Float target at this size
// for the shadow pass.
const ShadowMapResolution = 2048

// DefaultShadowHalfExtent is the default orthographic half-extent (in world units)
// used for the directional light shadow frustum. Controls how much of the scene
// around the focus point is captured in the shadow map.
const DefaultShadowHalfExtent float32 = 40.0

// DefaultShadowNear is the default near plane for the directional light's
// orthographic shadow projection.
const DefaultShadowNear float32 = 0.1

// DefaultShadowFar is the default far plane for the directional light's
// orthographic shadow projection.
const DefaultShadowFar float32 = 200.0

// DefaultShadowDistance is the default offset of the shadow eye behind the
// focus point, along the reversed light direction. Half of the near-to-far
// span, so the focus point sits mid-frustum in depth.
const DefaultShadowDistance float32 = 100.0
