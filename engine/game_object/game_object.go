package game_object

import (
	"sync"
	"sync/atomic"

	"github.com/Dualsub/rusty-rift/common"
	"github.com/Dualsub/rusty-rift/engine/animation"
	"github.com/Dualsub/rusty-rift/engine/model"
	"github.com/Dualsub/rusty-rift/engine/renderer/material"
	"github.com/Dualsub/rusty-rift/engine/scene"
)

type gameObject struct {
	mu sync.Mutex

	id      uint64
	enabled atomic.Bool

	mesh model.Mesh
	mat  material.Material
	anim animation.Animator

	position      [3]float32
	rotation      [3]float32
	rotationSpeed [3]float32
	scale         [3]float32
	color         [4]float32

	// palette is reused across frames; the scene copies it on submission.
	palette []float32
}

// GameObject is a scene entity owning a transform, a mesh/material pairing,
// and optionally an Animator for skinned meshes. Objects are immediate-mode:
// each frame the caller updates them and submits them to a Scene, which
// batches the resulting instances. Update and Submit may run on different
// goroutines.
type GameObject interface {
	// ID returns the object's unique identifier.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// Enabled returns whether this object is enabled for rendering.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// Mesh returns the mesh this object draws, or nil if not set.
	//
	// Returns:
	//   - model.Mesh: the mesh or nil
	Mesh() model.Mesh

	// Material returns the material this object draws with, or nil if not set.
	//
	// Returns:
	//   - material.Material: the material or nil
	Material() material.Material

	// Animator returns the Animator driving this object's pose, or nil.
	//
	// Returns:
	//   - animation.Animator: the animator or nil
	Animator() animation.Animator

	// Position returns the object's current position.
	//
	// Returns:
	//   - x, y, z: position components
	Position() (x, y, z float32)

	// Rotation returns the object's current rotation as Euler angles in radians.
	//
	// Returns:
	//   - rx, ry, rz: rotation angles
	Rotation() (rx, ry, rz float32)

	// RotationSpeed returns the object's angular velocity in radians per second.
	//
	// Returns:
	//   - rx, ry, rz: rotation speed values
	RotationSpeed() (rx, ry, rz float32)

	// Scale returns the object's current scale.
	//
	// Returns:
	//   - sx, sy, sz: scale components
	Scale() (sx, sy, sz float32)

	// Color returns the object's instance color multiplier.
	//
	// Returns:
	//   - [4]float32: RGBA color
	Color() [4]float32

	// Transform composes the object's model matrix from its position, rotation,
	// and scale.
	//
	// Returns:
	//   - [16]float32: the column-major model matrix
	Transform() [16]float32

	// SetID sets the object's unique identifier.
	//
	// Parameters:
	//   - id: the ID to assign
	SetID(id uint64)

	// SetEnabled sets whether the object is enabled for rendering.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// SetMesh assigns the mesh this object draws.
	//
	// Parameters:
	//   - m: the mesh to associate
	SetMesh(m model.Mesh)

	// SetMaterial assigns the material this object draws with.
	//
	// Parameters:
	//   - m: the material to associate
	SetMaterial(m material.Material)

	// SetAnimator sets the Animator driving this object's pose.
	//
	// Parameters:
	//   - anim: the Animator to associate, or nil to detach
	SetAnimator(anim animation.Animator)

	// SetPosition updates the object's position.
	//
	// Parameters:
	//   - x, y, z: new position components
	SetPosition(x, y, z float32)

	// SetRotation updates the object's rotation as Euler angles in radians.
	//
	// Parameters:
	//   - rx, ry, rz: new rotation angles
	SetRotation(rx, ry, rz float32)

	// SetRotationSpeed updates the object's angular velocity in radians per second.
	// Update applies it to the rotation each tick.
	//
	// Parameters:
	//   - rx, ry, rz: new rotation speed values
	SetRotationSpeed(rx, ry, rz float32)

	// SetScale updates the object's scale.
	//
	// Parameters:
	//   - sx, sy, sz: new scale factors
	SetScale(sx, sy, sz float32)

	// SetColor sets the object's instance color multiplier.
	//
	// Parameters:
	//   - color: RGBA color, multiplied with the material in the shader
	SetColor(color [4]float32)

	// Update advances the object's spin by its rotation speed and steps the
	// Animator when one is attached.
	//
	// Parameters:
	//   - deltaTime: elapsed time in seconds since the previous update
	Update(deltaTime float32)

	// Submit queues this object for the current frame. Skinned meshes submit
	// with the Animator's current pose, or a bind pose when no clip is playing.
	// Disabled objects and objects missing a mesh or material submit nothing.
	//
	// Parameters:
	//   - s: the scene receiving the draw submission
	Submit(s scene.Scene)
}

var _ GameObject = &gameObject{}

// NewGameObject creates a new GameObject configured with the given options.
// Objects start enabled with unit scale and a white color.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the newly created object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	obj := &gameObject{
		scale: [3]float32{1, 1, 1},
		color: [4]float32{1, 1, 1, 1},
	}
	obj.enabled.Store(true)
	for _, option := range options {
		option(obj)
	}
	return obj
}

func (g *gameObject) ID() uint64 {
	return g.id
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) Mesh() model.Mesh {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mesh
}

func (g *gameObject) Material() material.Material {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mat
}

func (g *gameObject) Animator() animation.Animator {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.anim
}

func (g *gameObject) Position() (x, y, z float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.position[0], g.position[1], g.position[2]
}

func (g *gameObject) Rotation() (rx, ry, rz float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rotation[0], g.rotation[1], g.rotation[2]
}

func (g *gameObject) RotationSpeed() (rx, ry, rz float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rotationSpeed[0], g.rotationSpeed[1], g.rotationSpeed[2]
}

func (g *gameObject) Scale() (sx, sy, sz float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.scale[0], g.scale[1], g.scale[2]
}

func (g *gameObject) Color() [4]float32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.color
}

func (g *gameObject) Transform() [16]float32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.transformLocked()
}

// transformLocked composes the TRS matrix; callers must hold g.mu.
func (g *gameObject) transformLocked() [16]float32 {
	var m [16]float32
	common.BuildModelMatrix(m[:],
		g.position[0], g.position[1], g.position[2],
		g.rotation[0], g.rotation[1], g.rotation[2],
		g.scale[0], g.scale[1], g.scale[2])
	return m
}

func (g *gameObject) SetID(id uint64) {
	g.id = id
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *gameObject) SetMesh(m model.Mesh) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mesh = m
}

func (g *gameObject) SetMaterial(m material.Material) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mat = m
}

func (g *gameObject) SetAnimator(anim animation.Animator) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.anim = anim
}

func (g *gameObject) SetPosition(x, y, z float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.position = [3]float32{x, y, z}
}

func (g *gameObject) SetRotation(rx, ry, rz float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rotation = [3]float32{rx, ry, rz}
}

func (g *gameObject) SetRotationSpeed(rx, ry, rz float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rotationSpeed = [3]float32{rx, ry, rz}
}

func (g *gameObject) SetScale(sx, sy, sz float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.scale = [3]float32{sx, sy, sz}
}

func (g *gameObject) SetColor(color [4]float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.color = color
}

func (g *gameObject) Update(deltaTime float32) {
	g.mu.Lock()
	g.rotation[0] += g.rotationSpeed[0] * deltaTime
	g.rotation[1] += g.rotationSpeed[1] * deltaTime
	g.rotation[2] += g.rotationSpeed[2] * deltaTime
	anim := g.anim
	g.mu.Unlock()

	if anim != nil {
		anim.Update(deltaTime)
	}
}

func (g *gameObject) Submit(s scene.Scene) {
	if !g.enabled.Load() {
		return
	}

	g.mu.Lock()
	mesh := g.mesh
	mat := g.mat
	anim := g.anim
	transform := g.transformLocked()
	color := g.color
	g.mu.Unlock()

	if mesh == nil || mat == nil {
		return
	}

	if !mesh.Skinned() {
		s.SubmitStatic(scene.StaticJob{
			Transform: transform,
			Material:  mat,
			Mesh:      mesh,
			Color:     color,
		})
		return
	}

	g.palette = g.palette[:0]
	if anim != nil {
		if pose := anim.Pose(); pose != nil {
			g.palette = animation.PoseMatrices(pose, g.palette)
		}
	}
	if len(g.palette) == 0 {
		g.palette = bindPose(g.palette, mesh.BoneCount())
	}

	s.SubmitSkinned(scene.SkinnedJob{
		Transform: transform,
		Material:  mat,
		Mesh:      mesh,
		Pose:      g.palette,
		Color:     color,
	})
}

// bindPose fills boneCount identity matrices so a skinned mesh with no
// playing clip still renders in its authored pose.
func bindPose(dst []float32, boneCount int) []float32 {
	need := boneCount * 16
	if cap(dst) < need {
		dst = make([]float32, need)
	}
	dst = dst[:need]
	for i := 0; i < boneCount; i++ {
		common.Identity(dst[i*16 : (i+1)*16])
	}
	return dst
}
