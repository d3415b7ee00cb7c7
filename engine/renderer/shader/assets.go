package shader

import _ "embed"

// The engine's pass shaders, embedded so the pipeline set can be constructed
// without touching the filesystem. Each source carries @rift: annotations;
// bind group layouts, vertex layouts and provider declarations are parsed
// from them at shader construction.

// SourceShadowStatic is the depth-only shadow pass vertex stage for static meshes.
//
//go:embed assets/shadow_static.wgsl
var SourceShadowStatic string

// SourceShadowSkinned is the depth-only shadow pass vertex stage for skinned meshes.
//
//go:embed assets/shadow_skinned.wgsl
var SourceShadowSkinned string

// SourceMeshStaticVert is the main pass vertex stage for static meshes.
//
//go:embed assets/mesh_static_vert.wgsl
var SourceMeshStaticVert string

// SourceMeshSkinnedVert is the main pass vertex stage for skinned meshes.
//
//go:embed assets/mesh_skinned_vert.wgsl
var SourceMeshSkinnedVert string

// SourceMeshSimpleFrag is the main pass fragment stage for the simple shading model.
//
//go:embed assets/mesh_simple_frag.wgsl
var SourceMeshSimpleFrag string

// SourceMeshPBRFrag is the main pass fragment stage for the stylized PBR shading model.
//
//go:embed assets/mesh_pbr_frag.wgsl
var SourceMeshPBRFrag string

// SourceCompositeVert is the full-screen triangle vertex stage of the composite pass.
//
//go:embed assets/composite_vert.wgsl
var SourceCompositeVert string

// SourceCompositeFrag is the composite pass fragment stage.
//
//go:embed assets/composite_frag.wgsl
var SourceCompositeFrag string

// SourceSpriteVert is the UI pass vertex stage; expands sprite instances into quads.
//
//go:embed assets/sprite_vert.wgsl
var SourceSpriteVert string

// SourceSpriteFrag is the UI pass fragment stage; handles sprite and MSDF text modes.
//
//go:embed assets/sprite_frag.wgsl
var SourceSpriteFrag string
