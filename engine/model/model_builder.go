package model

import (
	"github.com/Dualsub/rusty-rift/engine/renderer/bind_group_provider"
)

// MeshBuilderOption is a functional option for configuring a Mesh via NewMesh.
type MeshBuilderOption func(*mesh)

// WithName is an option builder that sets the name of the Mesh.
//
// Parameters:
//   - name: the mesh identifier
//
// Returns:
//   - MeshBuilderOption: a function that applies the name option to a mesh
func WithName(name string) MeshBuilderOption {
	return func(m *mesh) {
		m.name = name
	}
}

// WithStaticVertices is an option builder that sets the structured vertex data
// for a static mesh. Marks the mesh as non-skinned.
//
// Parameters:
//   - vertices: the static vertices to set
//
// Returns:
//   - MeshBuilderOption: a function that applies the vertices option to a mesh
func WithStaticVertices(vertices []GPUStaticVertex) MeshBuilderOption {
	return func(m *mesh) {
		m.staticVertices = vertices
		m.skinned = false
	}
}

// WithSkinnedVertices is an option builder that sets the structured vertex data
// for a skinned mesh. Marks the mesh as skinned.
//
// Parameters:
//   - vertices: the skinned vertices to set
//
// Returns:
//   - MeshBuilderOption: a function that applies the vertices option to a mesh
func WithSkinnedVertices(vertices []GPUSkinnedVertex) MeshBuilderOption {
	return func(m *mesh) {
		m.skinnedVertices = vertices
		m.skinned = true
	}
}

// WithIndices is an option builder that sets the triangle index list of the Mesh.
//
// Parameters:
//   - indices: the indices to set
//
// Returns:
//   - MeshBuilderOption: a function that applies the indices option to a mesh
func WithIndices(indices []uint32) MeshBuilderOption {
	return func(m *mesh) {
		m.indices = indices
	}
}

// WithBoneCount is an option builder that overrides the referenced bone count.
// Use this when the skeleton has more bones than the mesh references, so bone
// palette validation accounts for the full skeleton.
//
// Parameters:
//   - count: the bone count to set
//
// Returns:
//   - MeshBuilderOption: a function that applies the bone count option to a mesh
func WithBoneCount(count int) MeshBuilderOption {
	return func(m *mesh) {
		m.boneCount = count
	}
}

// WithBoundingRadius is an option builder that manually sets the bounding sphere radius.
// Use this to override the auto-computed value when a manually tuned
// conservative bound is preferred, e.g. for heavily deforming skinned meshes.
//
// Parameters:
//   - radius: the bounding radius to set
//
// Returns:
//   - MeshBuilderOption: a function that applies the bounding radius option to a mesh
func WithBoundingRadius(radius float32) MeshBuilderOption {
	return func(m *mesh) {
		m.boundingRadius = radius
	}
}

// WithProvider is an option builder that sets the BindGroupProvider for mesh GPU resources.
//
// Parameters:
//   - provider: the BindGroupProvider holding vertex/index buffers
//
// Returns:
//   - MeshBuilderOption: a function that applies the provider option to a mesh
func WithProvider(provider bind_group_provider.BindGroupProvider) MeshBuilderOption {
	return func(m *mesh) {
		m.provider = provider
	}
}
