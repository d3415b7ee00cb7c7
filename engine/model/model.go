package model

import (
	"github.com/Dualsub/rusty-rift/engine/renderer/bind_group_provider"
)

// mesh is the implementation of the Mesh interface.
type mesh struct {
	name            string
	skinned         bool
	boneCount       int
	staticVertices  []GPUStaticVertex
	skinnedVertices []GPUSkinnedVertex
	indices         []uint32
	vertexData      []byte
	indexData       []byte
	boundingRadius  float32
	provider        bind_group_provider.BindGroupProvider
}

// Mesh defines the interface for GPU-ready mesh geometry.
// A Mesh holds the vertex and index data in both structured and marshaled
// form, plus the BindGroupProvider owning the GPU buffers once uploaded.
// It is produced by the Loader or by the procedural constructors.
type Mesh interface {
	// Name retrieves the mesh identifier.
	//
	// Returns:
	//   - string: the mesh name
	Name() string

	// Skinned reports whether this mesh carries bone skinning data.
	//
	// Returns:
	//   - bool: true if vertices include bone indices and weights
	Skinned() bool

	// BoneCount returns the number of bones this mesh references, derived
	// from the highest bone index across all vertices. Returns 0 for static
	// meshes.
	//
	// Returns:
	//   - int: the referenced bone count
	BoneCount() int

	// VertexCount returns the number of vertices in the mesh.
	//
	// Returns:
	//   - int: the vertex count
	VertexCount() int

	// StaticVertices retrieves the structured vertex data for static meshes.
	// Returns nil for skinned meshes.
	//
	// Returns:
	//   - []GPUStaticVertex: the vertices or nil
	StaticVertices() []GPUStaticVertex

	// SkinnedVertices retrieves the structured vertex data for skinned meshes.
	// Returns nil for static meshes.
	//
	// Returns:
	//   - []GPUSkinnedVertex: the vertices or nil
	SkinnedVertices() []GPUSkinnedVertex

	// Indices retrieves the triangle index list.
	//
	// Returns:
	//   - []uint32: the indices
	Indices() []uint32

	// VertexData returns the marshaled vertex data ready for GPU upload.
	//
	// Returns:
	//   - []byte: the vertex data
	VertexData() []byte

	// IndexData returns the marshaled index data ready for GPU upload.
	//
	// Returns:
	//   - []byte: the index data
	IndexData() []byte

	// IndexCount returns the number of indices in the mesh.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int

	// BoundingRadius returns the bounding sphere radius for this mesh,
	// measured as the maximum vertex distance from the origin. Used by
	// frustum culling.
	//
	// Returns:
	//   - float32: the bounding radius
	BoundingRadius() float32

	// Provider retrieves the BindGroupProvider holding GPU vertex and index
	// buffers, or nil before upload.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the mesh provider or nil
	Provider() bind_group_provider.BindGroupProvider

	// SetProvider assigns the BindGroupProvider holding GPU mesh resources.
	//
	// Parameters:
	//   - provider: the provider to associate
	SetProvider(provider bind_group_provider.BindGroupProvider)
}

var _ Mesh = &mesh{}

// NewMesh creates a new Mesh instance with the specified options applied.
// Marshaled vertex/index data, the bounding radius and the referenced bone
// count are derived from the structured vertex data unless set explicitly.
//
// Parameters:
//   - options: a variadic list of MeshBuilderOption functions to configure the Mesh
//
// Returns:
//   - Mesh: a new instance of Mesh configured with the provided options
func NewMesh(options ...MeshBuilderOption) Mesh {
	m := &mesh{}
	for _, opt := range options {
		opt(m)
	}
	m.derive()
	return m
}

// derive fills in fields computable from the structured vertex data.
func (m *mesh) derive() {
	if m.skinned {
		if m.vertexData == nil && len(m.skinnedVertices) > 0 {
			data := make([]byte, 0, len(m.skinnedVertices)*84)
			for i := range m.skinnedVertices {
				data = append(data, m.skinnedVertices[i].Marshal()...)
			}
			m.vertexData = data
		}
		if m.boundingRadius == 0 {
			m.boundingRadius = ComputeSkinnedBoundingRadius(m.skinnedVertices)
		}
		if m.boneCount == 0 {
			m.boneCount = deriveBoneCount(m.skinnedVertices)
		}
	} else {
		if m.vertexData == nil && len(m.staticVertices) > 0 {
			data := make([]byte, 0, len(m.staticVertices)*52)
			for i := range m.staticVertices {
				data = append(data, m.staticVertices[i].Marshal()...)
			}
			m.vertexData = data
		}
		if m.boundingRadius == 0 {
			m.boundingRadius = ComputeBoundingRadius(m.staticVertices)
		}
	}
	if m.indexData == nil && len(m.indices) > 0 {
		data := make([]byte, len(m.indices)*4)
		for i, index := range m.indices {
			data[i*4] = byte(index)
			data[i*4+1] = byte(index >> 8)
			data[i*4+2] = byte(index >> 16)
			data[i*4+3] = byte(index >> 24)
		}
		m.indexData = data
	}
}

// deriveBoneCount returns the highest referenced bone index plus one,
// skipping -1 slots. Returns 0 when no vertex references any bone.
func deriveBoneCount(vertices []GPUSkinnedVertex) int {
	maxIndex := int32(-1)
	for i := range vertices {
		for _, id := range vertices[i].BoneIndices {
			if id > maxIndex {
				maxIndex = id
			}
		}
	}
	return int(maxIndex + 1)
}

func (m *mesh) Name() string {
	return m.name
}

func (m *mesh) Skinned() bool {
	return m.skinned
}

func (m *mesh) BoneCount() int {
	return m.boneCount
}

func (m *mesh) VertexCount() int {
	if m.skinned {
		return len(m.skinnedVertices)
	}
	return len(m.staticVertices)
}

func (m *mesh) StaticVertices() []GPUStaticVertex {
	return m.staticVertices
}

func (m *mesh) SkinnedVertices() []GPUSkinnedVertex {
	return m.skinnedVertices
}

func (m *mesh) Indices() []uint32 {
	return m.indices
}

func (m *mesh) VertexData() []byte {
	return m.vertexData
}

func (m *mesh) IndexData() []byte {
	return m.indexData
}

func (m *mesh) IndexCount() int {
	return len(m.indices)
}

func (m *mesh) BoundingRadius() float32 {
	return m.boundingRadius
}

func (m *mesh) Provider() bind_group_provider.BindGroupProvider {
	return m.provider
}

func (m *mesh) SetProvider(provider bind_group_provider.BindGroupProvider) {
	m.provider = provider
}
