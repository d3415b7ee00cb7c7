package model

// Procedural mesh constructors. These produce small, well-formed meshes for
// examples and tests without touching the asset pipeline.

// NewCube builds an axis-aligned cube centered at the origin with flat-shaded
// faces (4 vertices per face, 36 indices). Texture coordinates tile each face
// once on array layer 0.
//
// Parameters:
//   - halfExtent: half the edge length
//   - color: per-vertex RGBA color applied to every vertex
//
// Returns:
//   - Mesh: the cube mesh
func NewCube(halfExtent float32, color [4]float32) Mesh {
	h := halfExtent
	faces := []struct {
		normal  [3]float32
		corners [4][3]float32
	}{
		{[3]float32{0, 0, 1}, [4][3]float32{{-h, -h, h}, {h, -h, h}, {h, h, h}, {-h, h, h}}},
		{[3]float32{0, 0, -1}, [4][3]float32{{h, -h, -h}, {-h, -h, -h}, {-h, h, -h}, {h, h, -h}}},
		{[3]float32{1, 0, 0}, [4][3]float32{{h, -h, h}, {h, -h, -h}, {h, h, -h}, {h, h, h}}},
		{[3]float32{-1, 0, 0}, [4][3]float32{{-h, -h, -h}, {-h, -h, h}, {-h, h, h}, {-h, h, -h}}},
		{[3]float32{0, 1, 0}, [4][3]float32{{-h, h, h}, {h, h, h}, {h, h, -h}, {-h, h, -h}}},
		{[3]float32{0, -1, 0}, [4][3]float32{{-h, -h, -h}, {h, -h, -h}, {h, -h, h}, {-h, -h, h}}},
	}
	uvs := [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

	vertices := make([]GPUStaticVertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, face := range faces {
		base := uint32(len(vertices))
		for i, corner := range face.corners {
			vertices = append(vertices, GPUStaticVertex{
				Position: corner,
				Normal:   face.normal,
				TexCoord: [3]float32{uvs[i][0], uvs[i][1], 0},
				Color:    color,
			})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}

	return NewMesh(
		WithName("cube"),
		WithStaticVertices(vertices),
		WithIndices(indices),
	)
}

// NewPlane builds a flat quad in the XZ plane centered at the origin with its
// normal pointing up. Texture coordinates span the quad once on array layer 0.
//
// Parameters:
//   - halfExtent: half the edge length
//   - color: per-vertex RGBA color applied to every vertex
//
// Returns:
//   - Mesh: the plane mesh
func NewPlane(halfExtent float32, color [4]float32) Mesh {
	h := halfExtent
	vertices := []GPUStaticVertex{
		{Position: [3]float32{-h, 0, -h}, Normal: [3]float32{0, 1, 0}, TexCoord: [3]float32{0, 0, 0}, Color: color},
		{Position: [3]float32{h, 0, -h}, Normal: [3]float32{0, 1, 0}, TexCoord: [3]float32{1, 0, 0}, Color: color},
		{Position: [3]float32{h, 0, h}, Normal: [3]float32{0, 1, 0}, TexCoord: [3]float32{1, 1, 0}, Color: color},
		{Position: [3]float32{-h, 0, h}, Normal: [3]float32{0, 1, 0}, TexCoord: [3]float32{0, 1, 0}, Color: color},
	}
	indices := []uint32{0, 2, 1, 0, 3, 2}

	return NewMesh(
		WithName("plane"),
		WithStaticVertices(vertices),
		WithIndices(indices),
	)
}

// NewSkinnedRibbon builds a vertical ribbon in the XY plane rising from the
// origin, split into segments along its height. Each vertex row is rigidly
// bound to one bone (row r to bone r, the top row to the last bone), so
// animating the bone palette bends the ribbon. Useful as a minimal skinned
// mesh for examples and skinning tests.
//
// Parameters:
//   - width: ribbon width along X
//   - height: ribbon height along Y
//   - segments: number of quad segments (and bones), must be >= 1
//   - color: per-vertex RGBA color applied to every vertex
//
// Returns:
//   - Mesh: the skinned ribbon mesh
func NewSkinnedRibbon(width, height float32, segments int, color [4]float32) Mesh {
	if segments < 1 {
		segments = 1
	}
	halfWidth := width / 2

	vertices := make([]GPUSkinnedVertex, 0, (segments+1)*2)
	for row := 0; row <= segments; row++ {
		y := height * float32(row) / float32(segments)
		v := 1 - float32(row)/float32(segments)
		bone := int32(row)
		if bone >= int32(segments) {
			bone = int32(segments) - 1
		}
		for side := 0; side < 2; side++ {
			x := -halfWidth
			u := float32(0)
			if side == 1 {
				x = halfWidth
				u = 1
			}
			vertices = append(vertices, GPUSkinnedVertex{
				GPUStaticVertex: GPUStaticVertex{
					Position: [3]float32{x, y, 0},
					Normal:   [3]float32{0, 0, 1},
					TexCoord: [3]float32{u, v, 0},
					Color:    color,
				},
				BoneIndices: [4]int32{bone, -1, -1, -1},
				BoneWeights: [4]float32{1, 0, 0, 0},
			})
		}
	}

	indices := make([]uint32, 0, segments*6)
	for row := 0; row < segments; row++ {
		base := uint32(row * 2)
		indices = append(indices, base, base+1, base+3, base, base+3, base+2)
	}

	return NewMesh(
		WithName("skinned_ribbon"),
		WithSkinnedVertices(vertices),
		WithIndices(indices),
	)
}
