package model

import (
	"fmt"

	"github.com/Dualsub/rusty-rift/common"
)

// Mesh assets are a little-endian binary container: a mesh count, then for
// each mesh a vertex count, the vertex records, an index count and the index
// list. Index values are numbered across the whole file, so the sections
// concatenate into a single vertex and index buffer.

// ParseStaticMesh decodes a mesh asset holding static (52-byte) vertex records.
//
// Parameters:
//   - name: the mesh identifier
//   - data: the encoded mesh bytes
//
// Returns:
//   - Mesh: the decoded mesh
//   - error: error if the data is truncated or indices are out of range
func ParseStaticMesh(name string, data []byte) (Mesh, error) {
	r := common.NewByteReader(data)

	var vertices []GPUStaticVertex
	var indices []uint32

	meshCount := r.U32()
	for m := uint32(0); m < meshCount && r.Err() == nil; m++ {
		vertexCount := r.U32()
		for v := uint32(0); v < vertexCount && r.Err() == nil; v++ {
			vertices = append(vertices, GPUStaticVertex{
				Position: [3]float32{r.F32(), r.F32(), r.F32()},
				Normal:   [3]float32{r.F32(), r.F32(), r.F32()},
				TexCoord: [3]float32{r.F32(), r.F32(), r.F32()},
				Color:    [4]float32{r.F32(), r.F32(), r.F32(), r.F32()},
			})
		}
		indexCount := r.U32()
		for i := uint32(0); i < indexCount && r.Err() == nil; i++ {
			indices = append(indices, r.U32())
		}
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse static mesh %s: %w", name, err)
	}
	if err := checkIndices(indices, len(vertices)); err != nil {
		return nil, fmt.Errorf("failed to parse static mesh %s: %w", name, err)
	}

	return NewMesh(
		WithName(name),
		WithStaticVertices(vertices),
		WithIndices(indices),
	), nil
}

// ParseSkinnedMesh decodes a mesh asset holding skinned (84-byte) vertex
// records, which extend the static record with 4 bone indices and 4 weights.
//
// Parameters:
//   - name: the mesh identifier
//   - data: the encoded mesh bytes
//
// Returns:
//   - Mesh: the decoded mesh
//   - error: error if the data is truncated or indices are out of range
func ParseSkinnedMesh(name string, data []byte) (Mesh, error) {
	r := common.NewByteReader(data)

	var vertices []GPUSkinnedVertex
	var indices []uint32

	meshCount := r.U32()
	for m := uint32(0); m < meshCount && r.Err() == nil; m++ {
		vertexCount := r.U32()
		for v := uint32(0); v < vertexCount && r.Err() == nil; v++ {
			vertices = append(vertices, GPUSkinnedVertex{
				GPUStaticVertex: GPUStaticVertex{
					Position: [3]float32{r.F32(), r.F32(), r.F32()},
					Normal:   [3]float32{r.F32(), r.F32(), r.F32()},
					TexCoord: [3]float32{r.F32(), r.F32(), r.F32()},
					Color:    [4]float32{r.F32(), r.F32(), r.F32(), r.F32()},
				},
				BoneIndices: [4]int32{r.I32(), r.I32(), r.I32(), r.I32()},
				BoneWeights: [4]float32{r.F32(), r.F32(), r.F32(), r.F32()},
			})
		}
		indexCount := r.U32()
		for i := uint32(0); i < indexCount && r.Err() == nil; i++ {
			indices = append(indices, r.U32())
		}
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse skinned mesh %s: %w", name, err)
	}
	if err := checkIndices(indices, len(vertices)); err != nil {
		return nil, fmt.Errorf("failed to parse skinned mesh %s: %w", name, err)
	}

	return NewMesh(
		WithName(name),
		WithSkinnedVertices(vertices),
		WithIndices(indices),
	), nil
}

// checkIndices verifies every index addresses a vertex in range.
func checkIndices(indices []uint32, vertexCount int) error {
	for i, index := range indices {
		if int(index) >= vertexCount {
			return fmt.Errorf("index %d at position %d exceeds vertex count %d", index, i, vertexCount)
		}
	}
	return nil
}
