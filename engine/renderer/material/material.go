package material

import (
	"github.com/Dualsub/rusty-rift/engine/renderer/bind_group_provider"
	"github.com/Dualsub/rusty-rift/engine/texture"
)

// Kind selects the shading model a material is drawn with.
type Kind uint8

const (
	// KindSimple is the flat-look model: floored diffuse and a boosted
	// Blinn-Phong highlight.
	KindSimple Kind = iota
	// KindPBR is the stylized physically based model: GGX specular,
	// wrapped diffuse and hemispheric ambient.
	KindPBR
)

// material is the implementation of the Material interface.
type material struct {
	name              string
	kind              Kind
	baseColor         [4]float32
	metallic          float32
	roughness         float32
	albedo            *texture.Descriptor
	pipelineKey       string
	bindGroupProvider bind_group_provider.BindGroupProvider
}

// Material defines the interface for a render material, encapsulating the
// shading model selection, surface parameters and GPU resource bindings
// needed for draw calls.
//
// Surface properties (name, kind, base color, metallic, roughness, albedo)
// are set at creation time and are read-only through this interface. GPU
// resource references (pipeline key, bind group provider) are mutable so they
// can be configured after construction during renderer initialization.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// Kind retrieves the shading model this material is drawn with.
	//
	// Returns:
	//   - Kind: the shading model kind
	Kind() Kind

	// BaseColor retrieves the base RGBA color of the material. Instances
	// without an explicit color tint inherit this value.
	//
	// Returns:
	//   - [4]float32: the base color as RGBA values
	BaseColor() [4]float32

	// Metallic retrieves the metallic factor of the material.
	// A value of 0.0 represents a dielectric surface, 1.0 represents a fully metallic surface.
	//
	// Returns:
	//   - float32: the metallic factor
	Metallic() float32

	// Roughness retrieves the roughness factor of the material.
	// A value of 0.0 represents a perfectly smooth surface, 1.0 represents a fully rough surface.
	//
	// Returns:
	//   - float32: the roughness factor
	Roughness() float32

	// Albedo retrieves the albedo texture array descriptor, or nil if none is
	// set. Instances select a layer of this array via their tex_bounds z
	// component or sprite layer field.
	//
	// Returns:
	//   - *texture.Descriptor: the albedo texture array, or nil
	Albedo() *texture.Descriptor

	// Params assembles the GPU uniform block for this material's surface
	// parameters.
	//
	// Returns:
	//   - GPUMaterialParams: the uniform contents
	Params() GPUMaterialParams

	// PipelineKey retrieves the pipeline key fragment assigned to this material.
	// For mesh materials this is the shading variant ("simple" or "pbr") that the
	// scene composes with the vertex family ("mesh_static_", "mesh_skinned_");
	// for UI materials it is the full sprite pipeline key.
	//
	// Returns:
	//   - string: the pipeline key fragment, empty until the material is registered
	PipelineKey() string

	// BindGroupProvider retrieves the bind group provider holding GPU-side resources for this material.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the bind group provider, or nil if not yet initialized
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// SetPipelineKey sets the render pipeline key for this material.
	//
	// Parameters:
	//   - key: the pipeline key to associate with this material
	SetPipelineKey(key string)

	// SetBindGroupProvider sets the bind group provider for this material.
	//
	// Parameters:
	//   - provider: the bind group provider containing GPU resources for this material
	SetBindGroupProvider(provider bind_group_provider.BindGroupProvider)
}

var _ Material = &material{}

// NewMaterial creates a new Material instance configured with the provided options.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		kind:      KindSimple,
		baseColor: [4]float32{1, 1, 1, 1},
		metallic:  0.0,
		roughness: 1.0,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) Kind() Kind {
	return m.kind
}

func (m *material) BaseColor() [4]float32 {
	return m.baseColor
}

func (m *material) Metallic() float32 {
	return m.metallic
}

func (m *material) Roughness() float32 {
	return m.roughness
}

func (m *material) Albedo() *texture.Descriptor {
	return m.albedo
}

func (m *material) Params() GPUMaterialParams {
	return GPUMaterialParams{
		BaseColor: m.baseColor,
		Metallic:  m.metallic,
		Roughness: m.roughness,
	}
}

func (m *material) PipelineKey() string {
	return m.pipelineKey
}

func (m *material) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return m.bindGroupProvider
}

func (m *material) SetPipelineKey(key string) {
	m.pipelineKey = key
}

func (m *material) SetBindGroupProvider(provider bind_group_provider.BindGroupProvider) {
	m.bindGroupProvider = provider
}
