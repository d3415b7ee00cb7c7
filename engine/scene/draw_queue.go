package scene

import (
	"fmt"
	"sort"

	"github.com/Dualsub/rusty-rift/engine/model"
	"github.com/Dualsub/rusty-rift/engine/renderer/material"
	"github.com/Dualsub/rusty-rift/engine/ui"
)

const (
	// DefaultMaxInstances caps the number of mesh instances drawn per frame.
	// Sizes the shared instance storage buffer.
	DefaultMaxInstances = 8192

	// DefaultMaxBones caps the number of bone matrices in the per-frame
	// skinning palette. Sizes the bone storage buffer.
	DefaultMaxBones = 4096

	// DefaultMaxSprites caps the number of sprite and glyph quads drawn in the
	// UI pass per frame. Sizes the sprite instance storage buffer.
	DefaultMaxSprites = 8192
)

// CullFunc reports whether a mesh instance should be drawn this frame.
// BuildDrawData calls it once per submitted instance when non-nil; returning
// false drops the instance from every pass. Structural validation still runs
// for dropped instances, so a frame's acceptance never depends on the camera.
type CullFunc func(mesh model.Mesh, instance *model.GPUMeshInstance) bool

// StaticJob describes one static mesh instance to draw this frame. A zero
// Color renders white and a zero TexScale covers the full atlas layer, so
// jobs only fill the fields they care about.
type StaticJob struct {
	Transform [16]float32 // object-to-world model matrix, column-major
	Material  material.Material
	Mesh      model.Mesh
	Color     [4]float32
	TexOffset [2]float32 // albedo sub-rectangle origin, normalized
	TexScale  [2]float32 // albedo sub-rectangle extent, normalized
}

// SkinnedJob describes one skinned mesh instance and its pose for this frame.
// Pose is a flat bone palette, one column-major 4x4 matrix (16 floats) per
// bone in mesh bone order, as produced by animation players. It must cover at
// least the mesh's referenced bone count.
type SkinnedJob struct {
	Transform [16]float32
	Material  material.Material
	Mesh      model.Mesh
	Color     [4]float32
	TexOffset [2]float32
	TexScale  [2]float32
	Pose      []float32
}

// SpriteJob describes one screen-space quad for the UI pass. Position is the
// offset from the anchor's origin and Size the quad extent, both in the units
// selected by Space. The material must be registered for the UI pass.
type SpriteJob struct {
	Position  [2]float32
	Size      [2]float32
	Material  material.Material
	Color     [4]float32
	TexOffset [2]float32 // atlas sub-rectangle origin, normalized
	TexScale  [2]float32 // atlas sub-rectangle extent, normalized
	Layer     uint32     // atlas array layer
	Mode      ui.RenderMode
	Anchor    ui.Anchor
	Space     ui.Space
}

// TextJob describes a text run drawn as one distance-field quad per glyph.
// Position is the pen origin relative to the anchor and Size the glyph height
// in the units selected by Space. The material must carry the font's atlas
// and be registered for the UI pass.
type TextJob struct {
	Text      string
	Font      ui.Font
	Material  material.Material
	Position  [2]float32
	Size      float32
	Color     [4]float32
	Layer     uint32
	Alignment ui.TextAlignment
	Anchor    ui.Anchor
	Space     ui.Space
}

// BatchKey identifies one instanced draw bucket. Jobs sharing a key are drawn
// together in a single instanced draw call. Mesh buckets leave Layer zero;
// sprite buckets leave Mesh nil.
type BatchKey struct {
	Material material.Material
	Mesh     model.Mesh
	Layer    uint32
}

// Batch is one instanced draw covering records [Start, End) of its pass's
// flat instance stream.
type Batch struct {
	Key   BatchKey
	Start uint32
	End   uint32
}

// DrawData is the flattened, GPU-ready draw stream for one frame, produced by
// DrawQueue.BuildDrawData. Instances holds static instances first and skinned
// instances after them, so both mesh passes share one instance buffer and
// offset draws with the batch's Start. SpriteBatches index Sprites the same
// way. The slices alias the queue's internal storage and are valid until the
// next Reset.
type DrawData struct {
	Instances []model.GPUMeshInstance
	Bones     []float32
	Sprites   []ui.GPUSpriteInstance

	StaticBatches  []Batch
	SkinnedBatches []Batch
	SpriteBatches  []Batch
}

// DrawQueue accumulates draw jobs between frames and flattens them into
// deterministic GPU-ready instance streams. Submission is cheap and never
// fails directly; structural errors stick and surface from BuildDrawData,
// which rejects the whole frame rather than drawing part of it. Not safe for
// concurrent use; the scene serializes access.
type DrawQueue struct {
	maxInstances int
	maxBones     int
	maxSprites   int

	meshBuckets   map[BatchKey][]model.GPUMeshInstance
	meshOrder     []BatchKey // first-submission order of non-empty mesh buckets
	spriteBuckets map[BatchKey][]ui.GPUSpriteInstance
	spriteOrder   []BatchKey
	bones         []float32

	// meshLayerBounds caches the highest texture array layer each mesh's
	// vertices select, matching the shader's i32 truncation of the uv z
	// channel. Mesh geometry is immutable, so entries survive Reset.
	meshLayerBounds map[model.Mesh]int32

	// Flattened output storage, reused across frames.
	flatInstances  []model.GPUMeshInstance
	flatSprites    []ui.GPUSpriteInstance
	staticBatches  []Batch
	skinnedBatches []Batch
	spriteBatches  []Batch

	err error // first structural submission error, surfaced by BuildDrawData
}

// NewDrawQueue creates an empty queue bounded by the given per-frame limits.
//
// Parameters:
//   - maxInstances: mesh instance cap per frame
//   - maxBones: bone matrix cap per frame
//   - maxSprites: sprite quad cap per frame
//
// Returns:
//   - *DrawQueue: the new queue
func NewDrawQueue(maxInstances, maxBones, maxSprites int) *DrawQueue {
	return &DrawQueue{
		maxInstances:    maxInstances,
		maxBones:        maxBones,
		maxSprites:      maxSprites,
		meshBuckets:     make(map[BatchKey][]model.GPUMeshInstance),
		spriteBuckets:   make(map[BatchKey][]ui.GPUSpriteInstance),
		meshLayerBounds: make(map[model.Mesh]int32),
	}
}

// Err returns the first structural error recorded by a submission, or nil.
func (q *DrawQueue) Err() error {
	return q.err
}

// SubmitStatic queues one static mesh instance.
//
// Parameters:
//   - job: the instance description; Mesh and Material are required
func (q *DrawQueue) SubmitStatic(job StaticJob) {
	if job.Mesh == nil || job.Material == nil {
		q.fail(fmt.Errorf("static job requires a mesh and a material"))
		return
	}
	if job.Mesh.Skinned() {
		q.fail(fmt.Errorf("static job submitted with skinned mesh %q", job.Mesh.Name()))
		return
	}
	q.appendMeshInstance(job.Mesh, job.Material, model.GPUMeshInstance{
		Model:     job.Transform,
		Color:     normalizeColor(job.Color),
		TexBounds: texBounds(job.TexOffset, job.TexScale),
	})
}

// SubmitSkinned queues one skinned mesh instance. The job's pose matrices are
// appended to the frame's flat bone palette and the instance records the
// palette index where they begin, so every instance of a mesh can carry an
// independent pose.
//
// Parameters:
//   - job: the instance description; Mesh, Material and Pose are required
func (q *DrawQueue) SubmitSkinned(job SkinnedJob) {
	if job.Mesh == nil || job.Material == nil {
		q.fail(fmt.Errorf("skinned job requires a mesh and a material"))
		return
	}
	if !job.Mesh.Skinned() {
		q.fail(fmt.Errorf("skinned job submitted with static mesh %q", job.Mesh.Name()))
		return
	}
	if len(job.Pose)%16 != 0 {
		q.fail(fmt.Errorf("pose for mesh %q is %d floats, want a multiple of 16", job.Mesh.Name(), len(job.Pose)))
		return
	}
	if len(job.Pose)/16 < job.Mesh.BoneCount() {
		q.fail(fmt.Errorf("pose for mesh %q has %d bones, mesh references %d", job.Mesh.Name(), len(job.Pose)/16, job.Mesh.BoneCount()))
		return
	}

	boneOffset := uint32(len(q.bones) / 16)
	q.bones = append(q.bones, job.Pose...)
	q.appendMeshInstance(job.Mesh, job.Material, model.GPUMeshInstance{
		Model:      job.Transform,
		Color:      normalizeColor(job.Color),
		TexBounds:  texBounds(job.TexOffset, job.TexScale),
		BoneOffset: boneOffset,
	})
}

// SubmitSprite queues one quad for the UI pass.
//
// Parameters:
//   - job: the quad description; Material is required
func (q *DrawQueue) SubmitSprite(job SpriteJob) {
	if job.Material == nil {
		q.fail(fmt.Errorf("sprite job requires a material"))
		return
	}
	if job.Mode > ui.RenderModeMSDF {
		q.fail(fmt.Errorf("sprite job has unknown render mode %d", job.Mode))
		return
	}
	if job.Anchor > ui.AnchorBottomRight {
		q.fail(fmt.Errorf("sprite job has unknown anchor %d", job.Anchor))
		return
	}
	if job.Space > ui.SpaceNormalized {
		q.fail(fmt.Errorf("sprite job has unknown coordinate space %d", job.Space))
		return
	}

	key := BatchKey{Material: job.Material, Layer: job.Layer}
	bucket := q.spriteBuckets[key]
	if len(bucket) == 0 {
		q.spriteOrder = append(q.spriteOrder, key)
	}
	scale := normalizeScale(job.TexScale)
	q.spriteBuckets[key] = append(bucket, ui.GPUSpriteInstance{
		OffsetAndSize: [4]float32{job.Position[0], job.Position[1], job.Size[0], job.Size[1]},
		Color:         normalizeColor(job.Color),
		TexBounds:     [4]float32{job.TexOffset[0], job.TexOffset[1], scale[0], scale[1]},
		Mode:          uint32(job.Mode),
		Layer:         job.Layer,
		Anchor:        uint32(job.Anchor),
		Space:         uint32(job.Space),
	})
}

// SubmitText lays the run out with the job's font and queues one
// distance-field sprite per glyph, all sharing the job's anchor and space.
// An empty string queues nothing.
//
// Parameters:
//   - job: the text run description; Font and Material are required
func (q *DrawQueue) SubmitText(job TextJob) {
	if job.Font == nil {
		q.fail(fmt.Errorf("text job requires a font"))
		return
	}
	if job.Material == nil {
		q.fail(fmt.Errorf("text job requires a material"))
		return
	}
	for _, quad := range ui.LayoutText(job.Font, job.Text, job.Size, job.Position[0], job.Position[1], job.Alignment) {
		q.SubmitSprite(SpriteJob{
			Position:  quad.Position,
			Size:      quad.Size,
			Material:  job.Material,
			Color:     job.Color,
			TexOffset: quad.UVOffset,
			TexScale:  quad.UVSize,
			Layer:     job.Layer,
			Mode:      ui.RenderModeMSDF,
			Anchor:    job.Anchor,
			Space:     job.Space,
		})
	}
}

// BuildDrawData flattens the submitted jobs into per-pass instance streams
// and batch lists. Batches sort by material name, mesh name and layer, and
// instances keep submission order within a batch, so identical submissions
// always produce identical draw order.
//
// The whole frame is rejected when any submission was structurally invalid,
// a stream exceeds its limit, an instance's bone range escapes the palette,
// or a batch selects a texture layer its material does not have. Nothing is
// ever partially drawn.
//
// Parameters:
//   - cull: optional per-instance visibility test; nil draws everything
//
// Returns:
//   - *DrawData: the flattened frame, valid until the next Reset
//   - error: the reason the frame was rejected
func (q *DrawQueue) BuildDrawData(cull CullFunc) (*DrawData, error) {
	if q.err != nil {
		return nil, q.err
	}

	sort.SliceStable(q.meshOrder, func(i, j int) bool { return lessBatchKey(q.meshOrder[i], q.meshOrder[j]) })
	sort.SliceStable(q.spriteOrder, func(i, j int) bool { return lessBatchKey(q.spriteOrder[i], q.spriteOrder[j]) })

	// Limits apply to submitted volume, not post-cull volume, so acceptance
	// is independent of the camera.
	totalInstances := 0
	for _, key := range q.meshOrder {
		totalInstances += len(q.meshBuckets[key])
	}
	if totalInstances > q.maxInstances {
		return nil, fmt.Errorf("frame submits %d mesh instances, limit is %d", totalInstances, q.maxInstances)
	}
	if paletteLen := len(q.bones) / 16; paletteLen > q.maxBones {
		return nil, fmt.Errorf("frame submits %d bones, limit is %d", paletteLen, q.maxBones)
	}
	totalSprites := 0
	for _, key := range q.spriteOrder {
		totalSprites += len(q.spriteBuckets[key])
	}
	if totalSprites > q.maxSprites {
		return nil, fmt.Errorf("frame submits %d sprites, limit is %d", totalSprites, q.maxSprites)
	}

	data := &DrawData{Bones: q.bones}

	flat := q.flatInstances[:0]
	staticBatches := q.staticBatches[:0]
	for _, key := range q.meshOrder {
		if key.Mesh.Skinned() {
			continue
		}
		if err := q.validateMeshLayers(key); err != nil {
			return nil, err
		}
		start := uint32(len(flat))
		flat = appendVisible(flat, key, q.meshBuckets[key], cull)
		if uint32(len(flat)) > start {
			staticBatches = append(staticBatches, Batch{Key: key, Start: start, End: uint32(len(flat))})
		}
	}

	paletteLen := uint32(len(q.bones) / 16)
	skinnedBatches := q.skinnedBatches[:0]
	for _, key := range q.meshOrder {
		if !key.Mesh.Skinned() {
			continue
		}
		if err := q.validateMeshLayers(key); err != nil {
			return nil, err
		}
		meshBones := uint32(key.Mesh.BoneCount())
		insts := q.meshBuckets[key]
		for i := range insts {
			if insts[i].BoneOffset+meshBones > paletteLen {
				return nil, fmt.Errorf("instance of mesh %q reads bones [%d, %d) beyond a palette of %d",
					key.Mesh.Name(), insts[i].BoneOffset, insts[i].BoneOffset+meshBones, paletteLen)
			}
		}
		start := uint32(len(flat))
		flat = appendVisible(flat, key, insts, cull)
		if uint32(len(flat)) > start {
			skinnedBatches = append(skinnedBatches, Batch{Key: key, Start: start, End: uint32(len(flat))})
		}
	}

	flatSprites := q.flatSprites[:0]
	spriteBatches := q.spriteBatches[:0]
	for _, key := range q.spriteOrder {
		if layers := materialLayerCount(key.Material); key.Layer >= layers {
			return nil, fmt.Errorf("sprite batch selects layer %d, material %q has %d", key.Layer, key.Material.Name(), layers)
		}
		start := uint32(len(flatSprites))
		flatSprites = append(flatSprites, q.spriteBuckets[key]...)
		spriteBatches = append(spriteBatches, Batch{Key: key, Start: start, End: uint32(len(flatSprites))})
	}

	q.flatInstances = flat
	q.flatSprites = flatSprites
	q.staticBatches = staticBatches
	q.skinnedBatches = skinnedBatches
	q.spriteBatches = spriteBatches

	data.Instances = flat
	data.Sprites = flatSprites
	data.StaticBatches = staticBatches
	data.SkinnedBatches = skinnedBatches
	data.SpriteBatches = spriteBatches
	return data, nil
}

// Reset clears the queue for the next frame. Bucket storage is retained so
// steady-state frames allocate nothing.
func (q *DrawQueue) Reset() {
	for key, bucket := range q.meshBuckets {
		q.meshBuckets[key] = bucket[:0]
	}
	for key, bucket := range q.spriteBuckets {
		q.spriteBuckets[key] = bucket[:0]
	}
	q.meshOrder = q.meshOrder[:0]
	q.spriteOrder = q.spriteOrder[:0]
	q.bones = q.bones[:0]
	q.err = nil
}

func (q *DrawQueue) fail(err error) {
	if q.err == nil {
		q.err = err
	}
}

func (q *DrawQueue) appendMeshInstance(mesh model.Mesh, mat material.Material, inst model.GPUMeshInstance) {
	key := BatchKey{Material: mat, Mesh: mesh}
	bucket := q.meshBuckets[key]
	if len(bucket) == 0 {
		q.meshOrder = append(q.meshOrder, key)
	}
	q.meshBuckets[key] = append(bucket, inst)
}

// validateMeshLayers rejects a batch whose mesh selects a texture array layer
// its material's albedo does not have.
func (q *DrawQueue) validateMeshLayers(key BatchKey) error {
	bound := q.meshLayerBound(key.Mesh)
	if layers := materialLayerCount(key.Material); bound >= int32(layers) {
		return fmt.Errorf("mesh %q selects texture layer %d, material %q has %d", key.Mesh.Name(), bound, key.Material.Name(), layers)
	}
	return nil
}

func (q *DrawQueue) meshLayerBound(mesh model.Mesh) int32 {
	if bound, ok := q.meshLayerBounds[mesh]; ok {
		return bound
	}
	var bound int32
	if mesh.Skinned() {
		for _, v := range mesh.SkinnedVertices() {
			if layer := int32(v.TexCoord[2]); layer > bound {
				bound = layer
			}
		}
	} else {
		for _, v := range mesh.StaticVertices() {
			if layer := int32(v.TexCoord[2]); layer > bound {
				bound = layer
			}
		}
	}
	q.meshLayerBounds[mesh] = bound
	return bound
}

func materialLayerCount(mat material.Material) uint32 {
	if albedo := mat.Albedo(); albedo != nil {
		return albedo.LayerCount
	}
	// Registration substitutes a single-layer fallback texture.
	return 1
}

// appendVisible copies a bucket's instances to the flat stream, skipping
// instances the cull test rejects.
func appendVisible(flat []model.GPUMeshInstance, key BatchKey, insts []model.GPUMeshInstance, cull CullFunc) []model.GPUMeshInstance {
	if cull == nil {
		return append(flat, insts...)
	}
	for i := range insts {
		if cull(key.Mesh, &insts[i]) {
			flat = append(flat, insts[i])
		}
	}
	return flat
}

// lessBatchKey orders batches by material name, mesh name, then layer. Ties
// keep first-submission order through the stable sort.
func lessBatchKey(a, b BatchKey) bool {
	if am, bm := a.Material.Name(), b.Material.Name(); am != bm {
		return am < bm
	}
	if an, bn := meshName(a.Mesh), meshName(b.Mesh); an != bn {
		return an < bn
	}
	return a.Layer < b.Layer
}

func meshName(m model.Mesh) string {
	if m == nil {
		return ""
	}
	return m.Name()
}

// normalizeColor maps the zero value to opaque white so unset job colors
// leave the material and vertex colors unchanged.
func normalizeColor(c [4]float32) [4]float32 {
	if c == ([4]float32{}) {
		return [4]float32{1, 1, 1, 1}
	}
	return c
}

// normalizeScale maps the zero value to full extent.
func normalizeScale(s [2]float32) [2]float32 {
	if s == ([2]float32{}) {
		return [2]float32{1, 1}
	}
	return s
}

func texBounds(offset, scale [2]float32) [4]float32 {
	scale = normalizeScale(scale)
	return [4]float32{offset[0], offset[1], scale[0], scale[1]}
}
