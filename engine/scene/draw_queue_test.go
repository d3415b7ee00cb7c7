package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dualsub/rusty-rift/engine/model"
	"github.com/Dualsub/rusty-rift/engine/renderer/material"
	"github.com/Dualsub/rusty-rift/engine/texture"
	"github.com/Dualsub/rusty-rift/engine/ui"
)

var white = [4]float32{1, 1, 1, 1}

func layeredMaterial(name string, layers uint32) material.Material {
	return material.NewMaterial(
		material.WithName(name),
		material.WithAlbedo(&texture.Descriptor{
			Width:           1,
			Height:          1,
			LayerCount:      layers,
			ChannelCount:    4,
			BytesPerChannel: 1,
			MipLevelCount:   1,
			Pixels:          make([]byte, 4*layers),
		}),
	)
}

func translation(x, y, z float32) [16]float32 {
	return [16]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		x, y, z, 1,
	}
}

// flatPose builds an identity palette with a marker in each bone's x
// translation so assertions can tell poses apart.
func flatPose(bones int, marker float32) []float32 {
	pose := make([]float32, bones*16)
	for b := 0; b < bones; b++ {
		pose[b*16+0] = 1
		pose[b*16+5] = 1
		pose[b*16+10] = 1
		pose[b*16+15] = 1
		pose[b*16+12] = marker
	}
	return pose
}

func TestBuildDrawDataBatchesAndSorts(t *testing.T) {
	alpha := material.NewMaterial(material.WithName("alpha"))
	beta := material.NewMaterial(material.WithName("beta"))
	cube := model.NewCube(1, white)
	plane := model.NewPlane(1, white)

	submit := func(q *DrawQueue) {
		q.SubmitStatic(StaticJob{Material: beta, Mesh: plane, Color: [4]float32{0.1, 0, 0, 1}})
		q.SubmitStatic(StaticJob{Material: alpha, Mesh: cube, Color: [4]float32{0.2, 0, 0, 1}})
		q.SubmitStatic(StaticJob{Material: beta, Mesh: plane, Color: [4]float32{0.3, 0, 0, 1}})
		q.SubmitStatic(StaticJob{Material: alpha, Mesh: plane, Color: [4]float32{0.4, 0, 0, 1}})
		q.SubmitStatic(StaticJob{Material: alpha, Mesh: cube, Color: [4]float32{0.5, 0, 0, 1}})
	}

	q := NewDrawQueue(DefaultMaxInstances, DefaultMaxBones, DefaultMaxSprites)
	submit(q)
	data, err := q.BuildDrawData(nil)
	require.NoError(t, err)

	// Batches sort by material name then mesh name.
	require.Len(t, data.StaticBatches, 3)
	assert.Same(t, alpha, data.StaticBatches[0].Key.Material)
	assert.Same(t, cube, data.StaticBatches[0].Key.Mesh)
	assert.Same(t, alpha, data.StaticBatches[1].Key.Material)
	assert.Same(t, plane, data.StaticBatches[1].Key.Mesh)
	assert.Same(t, beta, data.StaticBatches[2].Key.Material)

	// Ranges tile the instance stream contiguously.
	assert.Equal(t, uint32(0), data.StaticBatches[0].Start)
	assert.Equal(t, data.StaticBatches[0].End, data.StaticBatches[1].Start)
	assert.Equal(t, data.StaticBatches[1].End, data.StaticBatches[2].Start)
	assert.Equal(t, uint32(len(data.Instances)), data.StaticBatches[2].End)

	// Instances keep submission order within a batch.
	alphaCube := data.Instances[data.StaticBatches[0].Start:data.StaticBatches[0].End]
	require.Len(t, alphaCube, 2)
	assert.Equal(t, float32(0.2), alphaCube[0].Color[0])
	assert.Equal(t, float32(0.5), alphaCube[1].Color[0])
	betaPlane := data.Instances[data.StaticBatches[2].Start:data.StaticBatches[2].End]
	require.Len(t, betaPlane, 2)
	assert.Equal(t, float32(0.1), betaPlane[0].Color[0])
	assert.Equal(t, float32(0.3), betaPlane[1].Color[0])

	// Identical submissions produce identical draw data.
	q2 := NewDrawQueue(DefaultMaxInstances, DefaultMaxBones, DefaultMaxSprites)
	submit(q2)
	data2, err := q2.BuildDrawData(nil)
	require.NoError(t, err)
	assert.Equal(t, data.StaticBatches, data2.StaticBatches)
	assert.Equal(t, data.Instances, data2.Instances)
}

func TestBuildDrawDataStaticsPrecedeSkinned(t *testing.T) {
	mat := material.NewMaterial(material.WithName("shared"))
	cube := model.NewCube(1, white)
	ribbon := model.NewSkinnedRibbon(1, 2, 2, white)

	q := NewDrawQueue(DefaultMaxInstances, DefaultMaxBones, DefaultMaxSprites)
	q.SubmitSkinned(SkinnedJob{Material: mat, Mesh: ribbon, Pose: flatPose(2, 0)})
	q.SubmitStatic(StaticJob{Material: mat, Mesh: cube})

	data, err := q.BuildDrawData(nil)
	require.NoError(t, err)
	require.Len(t, data.StaticBatches, 1)
	require.Len(t, data.SkinnedBatches, 1)

	// The skinned submission came first but the static pass still owns the
	// front of the shared instance stream.
	assert.Equal(t, uint32(0), data.StaticBatches[0].Start)
	assert.Equal(t, uint32(1), data.StaticBatches[0].End)
	assert.Equal(t, uint32(1), data.SkinnedBatches[0].Start)
	assert.Equal(t, uint32(2), data.SkinnedBatches[0].End)
}

func TestSubmitSkinnedBoneBookkeeping(t *testing.T) {
	mat := material.NewMaterial(material.WithName("skin"))
	ribbon := model.NewSkinnedRibbon(1, 2, 2, white)
	require.Equal(t, 2, ribbon.BoneCount())

	poseA := flatPose(2, 5)
	poseB := flatPose(2, 9)

	q := NewDrawQueue(DefaultMaxInstances, DefaultMaxBones, DefaultMaxSprites)
	q.SubmitSkinned(SkinnedJob{Material: mat, Mesh: ribbon, Pose: poseA})
	q.SubmitSkinned(SkinnedJob{Material: mat, Mesh: ribbon, Pose: poseB})

	data, err := q.BuildDrawData(nil)
	require.NoError(t, err)
	require.Len(t, data.Instances, 2)

	// Each instance's bone range is exactly the pose it submitted.
	assert.Equal(t, uint32(0), data.Instances[0].BoneOffset)
	assert.Equal(t, uint32(2), data.Instances[1].BoneOffset)
	require.Len(t, data.Bones, 64)
	assert.Equal(t, poseA, data.Bones[:32])
	assert.Equal(t, poseB, data.Bones[32:])
}

func TestBuildDrawDataCulls(t *testing.T) {
	mat := material.NewMaterial(material.WithName("culled"))
	cube := model.NewCube(1, white)

	q := NewDrawQueue(DefaultMaxInstances, DefaultMaxBones, DefaultMaxSprites)
	q.SubmitStatic(StaticJob{Material: mat, Mesh: cube, Transform: translation(0, 0, 0)})
	q.SubmitStatic(StaticJob{Material: mat, Mesh: cube, Transform: translation(100, 0, 0)})
	q.SubmitStatic(StaticJob{Material: mat, Mesh: cube, Transform: translation(200, 0, 0)})

	nearOnly := func(mesh model.Mesh, instance *model.GPUMeshInstance) bool {
		return instance.Model[12] < 50
	}
	data, err := q.BuildDrawData(nearOnly)
	require.NoError(t, err)
	require.Len(t, data.StaticBatches, 1)
	assert.Len(t, data.Instances, 1)
	assert.Equal(t, float32(0), data.Instances[0].Model[12])

	// A fully culled frame is valid and empty.
	q.Reset()
	q.SubmitStatic(StaticJob{Material: mat, Mesh: cube})
	data, err = q.BuildDrawData(func(model.Mesh, *model.GPUMeshInstance) bool { return false })
	require.NoError(t, err)
	assert.Empty(t, data.StaticBatches)
	assert.Empty(t, data.Instances)
}

func TestBuildDrawDataLimitsIgnoreCulling(t *testing.T) {
	mat := material.NewMaterial(material.WithName("over"))
	cube := model.NewCube(1, white)

	q := NewDrawQueue(2, DefaultMaxBones, DefaultMaxSprites)
	for i := 0; i < 3; i++ {
		q.SubmitStatic(StaticJob{Material: mat, Mesh: cube})
	}

	// Limits bind on submitted volume, so rejecting cannot depend on the
	// camera, even when culling would drop every instance.
	_, err := q.BuildDrawData(func(model.Mesh, *model.GPUMeshInstance) bool { return false })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 mesh instances, limit is 2")
}

func TestBuildDrawDataBoneAndSpriteLimits(t *testing.T) {
	mat := material.NewMaterial(material.WithName("limits"))
	ribbon := model.NewSkinnedRibbon(1, 2, 2, white)

	q := NewDrawQueue(DefaultMaxInstances, 3, DefaultMaxSprites)
	q.SubmitSkinned(SkinnedJob{Material: mat, Mesh: ribbon, Pose: flatPose(2, 0)})
	q.SubmitSkinned(SkinnedJob{Material: mat, Mesh: ribbon, Pose: flatPose(2, 0)})
	_, err := q.BuildDrawData(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "4 bones, limit is 3")

	q = NewDrawQueue(DefaultMaxInstances, DefaultMaxBones, 1)
	q.SubmitSprite(SpriteJob{Material: mat, Size: [2]float32{1, 1}})
	q.SubmitSprite(SpriteJob{Material: mat, Size: [2]float32{1, 1}})
	_, err = q.BuildDrawData(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 sprites, limit is 1")
}

func TestSubmitErrorsStickUntilReset(t *testing.T) {
	mat := material.NewMaterial(material.WithName("ok"))
	cube := model.NewCube(1, white)
	ribbon := model.NewSkinnedRibbon(1, 2, 2, white)

	cases := []struct {
		name    string
		submit  func(q *DrawQueue)
		wantErr string
	}{
		{
			name:    "static job without mesh",
			submit:  func(q *DrawQueue) { q.SubmitStatic(StaticJob{Material: mat}) },
			wantErr: "requires a mesh and a material",
		},
		{
			name:    "static job with skinned mesh",
			submit:  func(q *DrawQueue) { q.SubmitStatic(StaticJob{Material: mat, Mesh: ribbon}) },
			wantErr: "skinned mesh",
		},
		{
			name:    "skinned job with static mesh",
			submit:  func(q *DrawQueue) { q.SubmitSkinned(SkinnedJob{Material: mat, Mesh: cube, Pose: flatPose(2, 0)}) },
			wantErr: "static mesh",
		},
		{
			name:    "pose not matrix aligned",
			submit:  func(q *DrawQueue) { q.SubmitSkinned(SkinnedJob{Material: mat, Mesh: ribbon, Pose: make([]float32, 17)}) },
			wantErr: "multiple of 16",
		},
		{
			name:    "pose missing bones",
			submit:  func(q *DrawQueue) { q.SubmitSkinned(SkinnedJob{Material: mat, Mesh: ribbon, Pose: flatPose(1, 0)}) },
			wantErr: "has 1 bones, mesh references 2",
		},
		{
			name:    "sprite with unknown anchor",
			submit:  func(q *DrawQueue) { q.SubmitSprite(SpriteJob{Material: mat, Anchor: ui.Anchor(9)}) },
			wantErr: "unknown anchor",
		},
		{
			name:    "sprite with unknown space",
			submit:  func(q *DrawQueue) { q.SubmitSprite(SpriteJob{Material: mat, Space: ui.Space(3)}) },
			wantErr: "unknown coordinate space",
		},
		{
			name:    "sprite with unknown mode",
			submit:  func(q *DrawQueue) { q.SubmitSprite(SpriteJob{Material: mat, Mode: ui.RenderMode(2)}) },
			wantErr: "unknown render mode",
		},
		{
			name:    "text without font",
			submit:  func(q *DrawQueue) { q.SubmitText(TextJob{Material: mat, Text: "hi"}) },
			wantErr: "requires a font",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := NewDrawQueue(DefaultMaxInstances, DefaultMaxBones, DefaultMaxSprites)
			tc.submit(q)
			require.Error(t, q.Err())

			// Later valid submissions cannot unstick the frame.
			q.SubmitStatic(StaticJob{Material: mat, Mesh: cube})
			_, err := q.BuildDrawData(nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)

			// Reset clears the error and the queue renders again.
			q.Reset()
			q.SubmitStatic(StaticJob{Material: mat, Mesh: cube})
			data, err := q.BuildDrawData(nil)
			require.NoError(t, err)
			assert.Len(t, data.Instances, 1)
		})
	}
}

func TestBuildDrawDataValidatesTextureLayers(t *testing.T) {
	single := material.NewMaterial(material.WithName("single"))
	double := layeredMaterial("double", 2)

	layerMesh := model.NewMesh(
		model.WithName("decal"),
		model.WithStaticVertices([]model.GPUStaticVertex{
			{TexCoord: [3]float32{0, 0, 1.25}},
			{TexCoord: [3]float32{1, 0, 0}},
			{TexCoord: [3]float32{0, 1, 0}},
		}),
		model.WithIndices([]uint32{0, 1, 2}),
	)

	// The shader truncates the uv z channel to i32, so 1.25 selects layer 1.
	q := NewDrawQueue(DefaultMaxInstances, DefaultMaxBones, DefaultMaxSprites)
	q.SubmitStatic(StaticJob{Material: single, Mesh: layerMesh})
	_, err := q.BuildDrawData(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "selects texture layer 1")

	q = NewDrawQueue(DefaultMaxInstances, DefaultMaxBones, DefaultMaxSprites)
	q.SubmitStatic(StaticJob{Material: double, Mesh: layerMesh})
	_, err = q.BuildDrawData(nil)
	require.NoError(t, err)

	// Sprite layers check against the material's atlas the same way.
	q = NewDrawQueue(DefaultMaxInstances, DefaultMaxBones, DefaultMaxSprites)
	q.SubmitSprite(SpriteJob{Material: double, Layer: 2})
	_, err = q.BuildDrawData(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "selects layer 2")
}

func TestSpriteBatchesSplitByLayer(t *testing.T) {
	atlas := layeredMaterial("atlas", 2)

	q := NewDrawQueue(DefaultMaxInstances, DefaultMaxBones, DefaultMaxSprites)
	q.SubmitSprite(SpriteJob{Material: atlas, Layer: 1, Size: [2]float32{8, 8}})
	q.SubmitSprite(SpriteJob{Material: atlas, Layer: 0, Size: [2]float32{4, 4}})
	q.SubmitSprite(SpriteJob{Material: atlas, Layer: 1, Size: [2]float32{2, 2}})

	data, err := q.BuildDrawData(nil)
	require.NoError(t, err)
	require.Len(t, data.SpriteBatches, 2)
	assert.Equal(t, uint32(0), data.SpriteBatches[0].Key.Layer)
	assert.Equal(t, uint32(1), data.SpriteBatches[1].Key.Layer)

	layer1 := data.Sprites[data.SpriteBatches[1].Start:data.SpriteBatches[1].End]
	require.Len(t, layer1, 2)
	assert.Equal(t, float32(8), layer1[0].OffsetAndSize[2])
	assert.Equal(t, float32(2), layer1[1].OffsetAndSize[2])
}

func TestSubmitTextFansOutGlyphQuads(t *testing.T) {
	font := ui.NewFont(ui.WithGlyphs(map[uint32]ui.Glyph{
		'A': {
			Unicode: 'A', Advance: 0.6, HasBounds: true,
			PlaneOffset: [2]float32{0.05, 0.1}, PlaneSize: [2]float32{0.5, 0.7},
			UVOffset: [2]float32{0.1, 0.2}, UVSize: [2]float32{0.3, 0.4},
		},
		' ': {Unicode: ' ', Advance: 0.3},
	}))
	mat := material.NewMaterial(material.WithName("font"))

	q := NewDrawQueue(DefaultMaxInstances, DefaultMaxBones, DefaultMaxSprites)
	q.SubmitText(TextJob{
		Text:     "A A",
		Font:     font,
		Material: mat,
		Position: [2]float32{10, 20},
		Size:     16,
		Anchor:   ui.AnchorBottomRight,
		Space:    ui.SpaceReference,
	})

	data, err := q.BuildDrawData(nil)
	require.NoError(t, err)
	require.Len(t, data.SpriteBatches, 1)

	// The space advances the pen but emits no quad.
	quads := ui.LayoutText(font, "A A", 16, 10, 20, ui.AlignLeft)
	require.Len(t, data.Sprites, len(quads))
	for i, quad := range quads {
		sprite := data.Sprites[i]
		assert.Equal(t, quad.Position[0], sprite.OffsetAndSize[0])
		assert.Equal(t, quad.Position[1], sprite.OffsetAndSize[1])
		assert.Equal(t, quad.Size[0], sprite.OffsetAndSize[2])
		assert.Equal(t, quad.Size[1], sprite.OffsetAndSize[3])
		assert.Equal(t, [4]float32{quad.UVOffset[0], quad.UVOffset[1], quad.UVSize[0], quad.UVSize[1]}, sprite.TexBounds)
		assert.Equal(t, uint32(ui.RenderModeMSDF), sprite.Mode)
		assert.Equal(t, uint32(ui.AnchorBottomRight), sprite.Anchor)
		assert.Equal(t, uint32(ui.SpaceReference), sprite.Space)
	}

	// Empty runs queue nothing.
	q.Reset()
	q.SubmitText(TextJob{Text: "", Font: font, Material: mat})
	data, err = q.BuildDrawData(nil)
	require.NoError(t, err)
	assert.Empty(t, data.Sprites)
}

func TestSubmitNormalizesZeroValues(t *testing.T) {
	mat := material.NewMaterial(material.WithName("defaults"))
	cube := model.NewCube(1, white)

	q := NewDrawQueue(DefaultMaxInstances, DefaultMaxBones, DefaultMaxSprites)
	q.SubmitStatic(StaticJob{Material: mat, Mesh: cube})
	q.SubmitStatic(StaticJob{
		Material:  mat,
		Mesh:      cube,
		Color:     [4]float32{0.5, 0, 0, 0.5},
		TexOffset: [2]float32{0.25, 0.25},
		TexScale:  [2]float32{0.5, 0.5},
	})

	data, err := q.BuildDrawData(nil)
	require.NoError(t, err)
	require.Len(t, data.Instances, 2)
	assert.Equal(t, [4]float32{1, 1, 1, 1}, data.Instances[0].Color)
	assert.Equal(t, [4]float32{0, 0, 1, 1}, data.Instances[0].TexBounds)
	assert.Equal(t, [4]float32{0.5, 0, 0, 0.5}, data.Instances[1].Color)
	assert.Equal(t, [4]float32{0.25, 0.25, 0.5, 0.5}, data.Instances[1].TexBounds)
}

func TestResetClearsFrameState(t *testing.T) {
	mat := material.NewMaterial(material.WithName("reset"))
	ribbon := model.NewSkinnedRibbon(1, 2, 2, white)

	q := NewDrawQueue(DefaultMaxInstances, DefaultMaxBones, DefaultMaxSprites)
	q.SubmitSkinned(SkinnedJob{Material: mat, Mesh: ribbon, Pose: flatPose(2, 1)})
	q.SubmitSprite(SpriteJob{Material: mat, Size: [2]float32{1, 1}})
	_, err := q.BuildDrawData(nil)
	require.NoError(t, err)

	q.Reset()
	data, err := q.BuildDrawData(nil)
	require.NoError(t, err)
	assert.Empty(t, data.Instances)
	assert.Empty(t, data.Bones)
	assert.Empty(t, data.Sprites)
	assert.Empty(t, data.SkinnedBatches)
	assert.Empty(t, data.SpriteBatches)

	// The queue keeps working after a reset, with bone offsets starting over.
	q.SubmitSkinned(SkinnedJob{Material: mat, Mesh: ribbon, Pose: flatPose(2, 2)})
	data, err = q.BuildDrawData(nil)
	require.NoError(t, err)
	require.Len(t, data.Instances, 1)
	assert.Equal(t, uint32(0), data.Instances[0].BoneOffset)
}
