package scene

import (
	"fmt"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Dualsub/rusty-rift/common"
	"github.com/Dualsub/rusty-rift/engine/camera"
	"github.com/Dualsub/rusty-rift/engine/light"
	"github.com/Dualsub/rusty-rift/engine/model"
	"github.com/Dualsub/rusty-rift/engine/renderer"
	"github.com/Dualsub/rusty-rift/engine/renderer/bind_group_provider"
	"github.com/Dualsub/rusty-rift/engine/renderer/material"
	"github.com/Dualsub/rusty-rift/engine/renderer/pipeline"
	"github.com/Dualsub/rusty-rift/engine/renderer/shader"
	"github.com/Dualsub/rusty-rift/engine/renderer/shading"
	"github.com/Dualsub/rusty-rift/engine/texture"
	"github.com/Dualsub/rusty-rift/engine/ui"
	"github.com/chewxy/math32"
	"github.com/cogentcore/webgpu/wgpu"
)

// Pipeline keys registered by every scene. Mesh draws compose their key from
// the vertex variant and the material's fragment variant, so
// "mesh_static_" + Material.PipelineKey() must name a registered pipeline.
// Collaborators can register additional variants through the renderer and
// select them with Material.SetPipelineKey.
const (
	PipelineShadowStatic  = "shadow_static"
	PipelineShadowSkinned = "shadow_skinned"

	PipelineMeshStaticSimple  = "mesh_static_simple"
	PipelineMeshStaticPBR     = "mesh_static_pbr"
	PipelineMeshSkinnedSimple = "mesh_skinned_simple"
	PipelineMeshSkinnedPBR    = "mesh_skinned_pbr"

	PipelineComposite = "composite"
	PipelineSprite    = "sprite"
)

// marshalChunk is the number of instance records marshaled per worker task.
const marshalChunk = 256

// GPU record strides, taken from the marshaled sizes of the instance types.
var (
	meshInstanceStride   = uint64((&model.GPUMeshInstance{}).Size())
	spriteInstanceStride = uint64((&ui.GPUSpriteInstance{}).Size())
)

// boneMatrixStride is the byte size of one bone palette matrix (mat4x4<f32>).
const boneMatrixStride = 64

// FrameStats carries CPU-side timings and volume counters for the most
// recently rendered frame.
type FrameStats struct {
	Build     time.Duration // draw data flatten, cull and validation
	Staging   time.Duration // instance marshal and buffer writes
	Shadow    time.Duration // shadow pass encode
	Main      time.Duration // main pass encode
	Composite time.Duration // composite pass encode
	UI        time.Duration // UI pass encode

	Instances int // mesh instances drawn
	Sprites   int // sprite quads drawn
	Batches   int // instanced draw calls across all passes
}

// Scene is the collaborator-facing rendering surface. Collaborators register
// meshes and materials once, submit draw jobs each frame, and call
// RenderFrame to flatten, upload and encode the shadow, main, composite and
// UI passes in one command submission. All GPU wiring — pass pipelines,
// frame and material bind groups, the shadow map and its fallback — is owned
// by the scene. Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Active returns whether this scene is currently active for rendering.
	Active() bool

	// SetActive sets whether this scene is active for rendering.
	SetActive(active bool)

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// Light returns the scene's directional light, or nil if none is set.
	Light() light.Light

	// SetLight replaces the scene's directional light. A nil light renders
	// unlit: zero light color, no shadow pass, and lit shaders sample the
	// white fallback shadow map.
	//
	// Parameters:
	//   - l: the new light, or nil to remove lighting
	SetLight(l light.Light)

	// Renderer returns the scene's renderer.
	Renderer() renderer.Renderer

	// UIScale returns the reference-space scale factor for the UI pass.
	UIScale() float32

	// SetUIScale sets the reference-space scale factor for the UI pass.
	//
	// Parameters:
	//   - scale: multiplier applied to reference-space sprite units
	SetUIScale(scale float32)

	// LightingParams returns the scene's shading tunables.
	LightingParams() shading.LightingParams

	// SetLightingParams replaces the scene's shading tunables. The uniform
	// is re-uploaded on the next frame.
	//
	// Parameters:
	//   - params: the new tunables
	SetLightingParams(params shading.LightingParams)

	// CullingDisabled returns whether camera frustum culling is disabled.
	CullingDisabled() bool

	// SetCullingDisabled enables or disables camera frustum culling. When
	// disabled every submitted instance is drawn.
	//
	// Parameters:
	//   - disabled: true to disable culling
	SetCullingDisabled(disabled bool)

	// ScreenSize returns the surface size in pixels as last reported to
	// NewScene or HandleResize.
	//
	// Returns:
	//   - int: width in pixels
	//   - int: height in pixels
	ScreenSize() (int, int)

	// FrameStats returns CPU timings and draw volumes for the most recently
	// rendered frame.
	//
	// Returns:
	//   - FrameStats: the last frame's stats
	FrameStats() FrameStats

	// RegisterMesh uploads a mesh's vertex and index data to the GPU and
	// attaches the resulting buffer provider to the mesh. Idempotent: a mesh
	// that already has a provider is left untouched.
	//
	// Parameters:
	//   - m: the mesh to register
	//
	// Returns:
	//   - error: error if the upload fails
	RegisterMesh(m model.Mesh) error

	// RegisterMaterial initializes a material's GPU resources for the main
	// pass: the albedo texture array (a 1x1 white fallback when the material
	// has none), its sampler, the surface parameter uniform, and the bind
	// group. All mesh materials share one bind group layout. The material's
	// pipeline key is set from its shading model unless already set.
	// Idempotent: a material that already has a provider is left untouched.
	//
	// Parameters:
	//   - mat: the material to register
	//
	// Returns:
	//   - error: error if resource initialization fails
	RegisterMaterial(mat material.Material) error

	// RegisterUIMaterial initializes a material's GPU resources for the UI
	// pass: the atlas texture array, its sampler, and a bind group sharing
	// the per-frame sprite uniform and instance buffers with every other UI
	// material. Fonts need no separate registration; wrap the font's Atlas
	// in a material and register it here. Idempotent.
	//
	// Parameters:
	//   - mat: the material to register
	//
	// Returns:
	//   - error: error if resource initialization fails
	RegisterUIMaterial(mat material.Material) error

	// SubmitStatic queues one static mesh instance for this frame.
	//
	// Parameters:
	//   - job: the instance description
	SubmitStatic(job StaticJob)

	// SubmitSkinned queues one skinned mesh instance and its pose for this
	// frame.
	//
	// Parameters:
	//   - job: the instance description
	SubmitSkinned(job SkinnedJob)

	// SubmitSprite queues one UI quad for this frame.
	//
	// Parameters:
	//   - job: the quad description
	SubmitSprite(job SpriteJob)

	// SubmitText queues a text run for this frame, one distance-field quad
	// per glyph.
	//
	// Parameters:
	//   - job: the text run description
	SubmitText(job TextJob)

	// RenderFrame flattens the queued jobs, uploads the frame's uniform,
	// instance, bone and sprite data, and encodes the shadow, main,
	// composite and UI passes in a single command submission. A frame that
	// fails validation is dropped whole — nothing is encoded — and the
	// queue is cleared either way.
	//
	// Returns:
	//   - error: the reason the frame was rejected or failed to encode
	RenderFrame() error

	// HandleResize reconfigures the surface and the offscreen pass targets
	// for a new drawable size and updates the camera's aspect ratio.
	// Zero-area sizes (minimized windows) are ignored.
	//
	// Parameters:
	//   - width: new surface width in pixels
	//   - height: new surface height in pixels
	HandleResize(width, height int)

	// Release frees every GPU resource owned by the scene: frame and shadow
	// bind groups, registered mesh buffers, and material resources. The
	// renderer itself is left to its owner.
	Release()
}

type scene struct {
	mu *sync.RWMutex

	name   string
	active bool

	cam         camera.Camera
	lightSource light.Light
	r           renderer.Renderer

	queue  *DrawQueue
	params shading.LightingParams

	uiScale      float32
	screenWidth  int
	screenHeight int

	maxInstances        int
	maxBones            int
	maxSprites          int
	shadowMapResolution int
	cullingDisabled     bool

	bindings bindingTable

	// Frame-level providers. The skinned variants share the frame, instance
	// and lighting buffers with the static ones but carry their own bind
	// groups because the bone palette binding differs.
	mainStaticBGP    bind_group_provider.BindGroupProvider
	mainSkinnedBGP   bind_group_provider.BindGroupProvider
	shadowStaticBGP  bind_group_provider.BindGroupProvider
	shadowSkinnedBGP bind_group_provider.BindGroupProvider
	shadowReadBGP    bind_group_provider.BindGroupProvider
	targetBGP        bind_group_provider.BindGroupProvider

	// Registered resources. All mesh materials share one bind group layout;
	// UI materials share a layout plus the sprite uniform and instance
	// buffers owned by spriteOwnerBGP.
	meshes         []model.Mesh
	materialSet    map[material.Material]bool
	uiMaterialSet  map[material.Material]bool
	materialLayout *wgpu.BindGroupLayout
	spriteLayout   *wgpu.BindGroupLayout
	spriteOwnerBGP bind_group_provider.BindGroupProvider

	// Shadow map resources. shadowReadBGP binds the real depth view while a
	// shadow-casting light is present and the 1x1 white fallback otherwise.
	shadowDepthView    *wgpu.TextureView
	shadowDepthTex     *wgpu.Texture
	fallbackShadowView *wgpu.TextureView
	fallbackShadowTex  *wgpu.Texture
	shadowsBound       bool

	// Draw-call bind group slices ordered by group index and reused every
	// frame; the material slot is filled per batch.
	staticDrawGroups    []bind_group_provider.BindGroupProvider
	skinnedDrawGroups   []bind_group_provider.BindGroupProvider
	shadowStaticGroups  []bind_group_provider.BindGroupProvider
	shadowSkinnedGroups []bind_group_provider.BindGroupProvider
	compositeGroups     []bind_group_provider.BindGroupProvider
	uiDrawGroups        []bind_group_provider.BindGroupProvider

	// Pre-allocated slices reused each frame to avoid per-frame allocations.
	writePool       []bind_group_provider.BufferWrite
	instanceStaging []byte
	spriteStaging   []byte

	stats FrameStats

	// computePool manages a bounded set of reusable goroutines for the
	// parallel instance marshaling phase of RenderFrame. Workers persist
	// across frames, avoiding per-frame goroutine spawn/teardown overhead.
	computePool    worker.DynamicWorkerPool
	computeWorkers int
}

// Ensure scene implements Scene interface.
var _ Scene = &scene{}

// NewScene creates a Scene bound to a camera and renderer, compiles and
// registers the pass pipelines, and initializes every frame-level GPU
// resource: the frame uniform, instance, bone, lighting and sprite buffers,
// the shadow map with its white fallback, and the composite target bind
// group. The camera's aspect ratio is set from the surface size. NewScene
// panics if the camera or renderer is nil or GPU initialization fails,
// mirroring how pipeline construction treats unusable configuration.
//
// Parameters:
//   - name: the name of the scene
//   - cam: the camera to attach (must not be nil)
//   - r: the renderer to attach (must not be nil)
//   - width: initial surface width in pixels
//   - height: initial surface height in pixels
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, cam camera.Camera, r renderer.Renderer, width, height int, options ...SceneBuilderOption) Scene {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}
	if r == nil {
		panic("scene: NewScene requires a non-nil Renderer")
	}

	s := &scene{
		mu:                  &sync.RWMutex{},
		name:                name,
		active:              false,
		cam:                 cam,
		r:                   r,
		params:              shading.DefaultLightingParams(),
		uiScale:             ui.DefaultUIScale,
		screenWidth:         width,
		screenHeight:        height,
		maxInstances:        DefaultMaxInstances,
		maxBones:            DefaultMaxBones,
		maxSprites:          DefaultMaxSprites,
		shadowMapResolution: light.ShadowMapResolution,
		materialSet:         make(map[material.Material]bool),
		uiMaterialSet:       make(map[material.Material]bool),
		computeWorkers:      max(runtime.NumCPU()-1, 1),
	}

	for _, option := range options {
		option(s)
	}

	s.queue = NewDrawQueue(s.maxInstances, s.maxBones, s.maxSprites)

	// Initialize the compute pool after options so WithComputeWorkers can
	// override the default. Queue size of 256 accommodates typical chunk
	// counts with headroom.
	s.computePool = worker.NewDynamicWorkerPool(s.computeWorkers, 256, 1*time.Second)

	if height > 0 {
		cam.SetAspect(float32(width) / float32(height))
	}

	s.registerPassPipelines()
	s.initFrameResources()
	return s
}

// registerPassPipelines compiles the pass shaders, registers one pipeline per
// pass variant, and discovers the binding table from the shader annotations.
func (s *scene) registerPassPipelines() {
	staticVert := shader.NewShaderFromSource("mesh_static_vert", shader.ShaderTypeVertex, shader.SourceMeshStaticVert)
	skinnedVert := shader.NewShaderFromSource("mesh_skinned_vert", shader.ShaderTypeVertex, shader.SourceMeshSkinnedVert)
	simpleFrag := shader.NewShaderFromSource("mesh_simple_frag", shader.ShaderTypeFragment, shader.SourceMeshSimpleFrag)
	pbrFrag := shader.NewShaderFromSource("mesh_pbr_frag", shader.ShaderTypeFragment, shader.SourceMeshPBRFrag)
	shadowStatic := shader.NewShaderFromSource("shadow_static", shader.ShaderTypeVertex, shader.SourceShadowStatic)
	shadowSkinned := shader.NewShaderFromSource("shadow_skinned", shader.ShaderTypeVertex, shader.SourceShadowSkinned)
	compositeVert := shader.NewShaderFromSource("composite_vert", shader.ShaderTypeVertex, shader.SourceCompositeVert)
	compositeFrag := shader.NewShaderFromSource("composite_frag", shader.ShaderTypeFragment, shader.SourceCompositeFrag)
	spriteVert := shader.NewShaderFromSource("sprite_vert", shader.ShaderTypeVertex, shader.SourceSpriteVert)
	spriteFrag := shader.NewShaderFromSource("sprite_frag", shader.ShaderTypeFragment, shader.SourceSpriteFrag)

	err := s.r.RegisterPipelines(
		pipeline.NewPipeline(PipelineShadowStatic, pipeline.PassShadow,
			pipeline.WithVertexShader(shadowStatic)),
		pipeline.NewPipeline(PipelineShadowSkinned, pipeline.PassShadow,
			pipeline.WithVertexShader(shadowSkinned)),
		pipeline.NewPipeline(PipelineMeshStaticSimple, pipeline.PassMain,
			pipeline.WithVertexShader(staticVert), pipeline.WithFragmentShader(simpleFrag),
			pipeline.WithCullMode(wgpu.CullModeBack)),
		pipeline.NewPipeline(PipelineMeshStaticPBR, pipeline.PassMain,
			pipeline.WithVertexShader(staticVert), pipeline.WithFragmentShader(pbrFrag),
			pipeline.WithCullMode(wgpu.CullModeBack)),
		pipeline.NewPipeline(PipelineMeshSkinnedSimple, pipeline.PassMain,
			pipeline.WithVertexShader(skinnedVert), pipeline.WithFragmentShader(simpleFrag),
			pipeline.WithCullMode(wgpu.CullModeBack)),
		pipeline.NewPipeline(PipelineMeshSkinnedPBR, pipeline.PassMain,
			pipeline.WithVertexShader(skinnedVert), pipeline.WithFragmentShader(pbrFrag),
			pipeline.WithCullMode(wgpu.CullModeBack)),
		pipeline.NewPipeline(PipelineComposite, pipeline.PassComposite,
			pipeline.WithVertexShader(compositeVert), pipeline.WithFragmentShader(compositeFrag)),
		pipeline.NewPipeline(PipelineSprite, pipeline.PassUI,
			pipeline.WithVertexShader(spriteVert), pipeline.WithFragmentShader(spriteFrag)),
	)
	if err != nil {
		panic(fmt.Sprintf("scene: failed to register pass pipelines: %v", err))
	}

	s.bindings = discoverBindings(staticVert, skinnedVert, simpleFrag, compositeFrag, spriteVert, spriteFrag)
}

// initFrameResources creates the frame-level bind groups, the shadow map and
// its fallback, and the composite target bind group. Bind group layouts come
// from the pipelines' merged descriptors so scene bind groups stay
// group-equivalent with the pipeline layouts the backend built.
func (s *scene) initFrameResources() {
	b := s.bindings
	staticPipe := s.r.Pipeline(PipelineMeshStaticSimple)
	skinnedPipe := s.r.Pipeline(PipelineMeshSkinnedSimple)
	shadowStaticPipe := s.r.Pipeline(PipelineShadowStatic)
	shadowSkinnedPipe := s.r.Pipeline(PipelineShadowSkinned)
	compositePipe := s.r.Pipeline(PipelineComposite)

	s.mainStaticBGP = bind_group_provider.NewBindGroupProvider("Main Static Frame")
	err := s.r.InitBindGroup(s.mainStaticBGP, renderer.MergedBindGroupLayout(staticPipe, b.frameGroup), map[int]uint64{
		b.instanceBinding: uint64(s.maxInstances) * meshInstanceStride,
	})
	if err != nil {
		panic(fmt.Sprintf("scene: failed to init static frame bind group: %v", err))
	}

	s.mainSkinnedBGP = bind_group_provider.NewBindGroupProvider("Main Skinned Frame",
		bind_group_provider.WithBuffer(b.frameBinding, s.mainStaticBGP.Buffer(b.frameBinding)),
		bind_group_provider.WithBuffer(b.instanceBinding, s.mainStaticBGP.Buffer(b.instanceBinding)),
		bind_group_provider.WithBuffer(b.lightingBinding, s.mainStaticBGP.Buffer(b.lightingBinding)),
	)
	err = s.r.InitBindGroup(s.mainSkinnedBGP, renderer.MergedBindGroupLayout(skinnedPipe, b.frameGroup), map[int]uint64{
		b.boneBinding: uint64(s.maxBones) * boneMatrixStride,
	})
	if err != nil {
		panic(fmt.Sprintf("scene: failed to init skinned frame bind group: %v", err))
	}

	s.shadowStaticBGP = bind_group_provider.NewBindGroupProvider("Shadow Static Frame",
		bind_group_provider.WithBuffer(b.frameBinding, s.mainStaticBGP.Buffer(b.frameBinding)),
		bind_group_provider.WithBuffer(b.instanceBinding, s.mainStaticBGP.Buffer(b.instanceBinding)),
	)
	if err := s.r.InitBindGroup(s.shadowStaticBGP, renderer.MergedBindGroupLayout(shadowStaticPipe, b.frameGroup), nil); err != nil {
		panic(fmt.Sprintf("scene: failed to init shadow static frame bind group: %v", err))
	}

	s.shadowSkinnedBGP = bind_group_provider.NewBindGroupProvider("Shadow Skinned Frame",
		bind_group_provider.WithBuffer(b.frameBinding, s.mainStaticBGP.Buffer(b.frameBinding)),
		bind_group_provider.WithBuffer(b.instanceBinding, s.mainStaticBGP.Buffer(b.instanceBinding)),
		bind_group_provider.WithBuffer(b.boneBinding, s.mainSkinnedBGP.Buffer(b.boneBinding)),
	)
	if err := s.r.InitBindGroup(s.shadowSkinnedBGP, renderer.MergedBindGroupLayout(shadowSkinnedPipe, b.frameGroup), nil); err != nil {
		panic(fmt.Sprintf("scene: failed to init shadow skinned frame bind group: %v", err))
	}

	view, tex, err := s.r.CreateShadowDepthTexture(s.shadowMapResolution, s.shadowMapResolution)
	if err != nil {
		panic(fmt.Sprintf("scene: failed to create shadow depth texture: %v", err))
	}
	s.shadowDepthView, s.shadowDepthTex = view, tex

	fallbackView, fallbackTex, err := s.r.CreateFallbackShadowTexture()
	if err != nil {
		panic(fmt.Sprintf("scene: failed to create fallback shadow texture: %v", err))
	}
	s.fallbackShadowView, s.fallbackShadowTex = fallbackView, fallbackTex

	// Lit shaders always sample a shadow texture; without a shadow-casting
	// light they read the fallback, whose 1.0 depth makes every tap pass.
	comparison, err := s.r.CreateComparisonSampler()
	if err != nil {
		panic(fmt.Sprintf("scene: failed to create shadow comparison sampler: %v", err))
	}
	s.shadowReadBGP = bind_group_provider.NewBindGroupProvider("Shadow Read")
	s.shadowReadBGP.SetSampler(b.shadowSamplerBinding, comparison)
	s.shadowReadBGP.SetTextureView(b.shadowTextureBinding, s.fallbackShadowView)
	if err := s.r.InitBindGroup(s.shadowReadBGP, renderer.MergedBindGroupLayout(staticPipe, b.shadowGroup), nil); err != nil {
		panic(fmt.Sprintf("scene: failed to init shadow read bind group: %v", err))
	}
	s.shadowsBound = false

	s.targetBGP = bind_group_provider.NewBindGroupProvider("Composite Target")
	s.targetBGP.SetTextureView(b.targetTextureBinding, s.r.OffscreenColorView())
	err = s.r.InitSampler(s.targetBGP, b.targetSamplerBinding, common.SamplerStagingData{
		AddressModeU: wgpu.AddressModeClampToEdge,
		AddressModeV: wgpu.AddressModeClampToEdge,
	})
	if err != nil {
		panic(fmt.Sprintf("scene: failed to init composite sampler: %v", err))
	}
	if err := s.r.InitBindGroup(s.targetBGP, renderer.MergedBindGroupLayout(compositePipe, b.targetGroup), nil); err != nil {
		panic(fmt.Sprintf("scene: failed to init composite target bind group: %v", err))
	}

	mainGroups := b.maxMainGroup + 1
	s.staticDrawGroups = make([]bind_group_provider.BindGroupProvider, mainGroups)
	s.staticDrawGroups[b.frameGroup] = s.mainStaticBGP
	s.staticDrawGroups[b.shadowGroup] = s.shadowReadBGP
	s.skinnedDrawGroups = make([]bind_group_provider.BindGroupProvider, mainGroups)
	s.skinnedDrawGroups[b.frameGroup] = s.mainSkinnedBGP
	s.skinnedDrawGroups[b.shadowGroup] = s.shadowReadBGP
	s.shadowStaticGroups = []bind_group_provider.BindGroupProvider{s.shadowStaticBGP}
	s.shadowSkinnedGroups = []bind_group_provider.BindGroupProvider{s.shadowSkinnedBGP}
	s.compositeGroups = []bind_group_provider.BindGroupProvider{s.targetBGP}
	s.uiDrawGroups = make([]bind_group_provider.BindGroupProvider, 1)

	// The lighting uniform uploads once up front and again each frame.
	params := s.params.GPU()
	s.r.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: s.mainStaticBGP, Binding: b.lightingBinding, Data: params.Marshal()},
	})
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Camera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cam
}

func (s *scene) Light() light.Light {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lightSource
}

func (s *scene) SetLight(l light.Light) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lightSource = l
}

func (s *scene) Renderer() renderer.Renderer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.r
}

func (s *scene) UIScale() float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.uiScale
}

func (s *scene) SetUIScale(scale float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uiScale = scale
}

func (s *scene) LightingParams() shading.LightingParams {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

func (s *scene) SetLightingParams(params shading.LightingParams) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params = params
}

func (s *scene) CullingDisabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cullingDisabled
}

func (s *scene) SetCullingDisabled(disabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cullingDisabled = disabled
}

func (s *scene) ScreenSize() (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.screenWidth, s.screenHeight
}

func (s *scene) FrameStats() FrameStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

func (s *scene) RegisterMesh(m model.Mesh) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m == nil {
		return fmt.Errorf("cannot register a nil mesh")
	}
	if m.Provider() != nil {
		return nil
	}

	bgp := bind_group_provider.NewBindGroupProvider(m.Name() + " Mesh")
	if err := s.r.InitMeshBuffers(bgp, m.VertexData(), m.IndexData(), m.IndexCount()); err != nil {
		return fmt.Errorf("failed to upload mesh %q: %w", m.Name(), err)
	}
	m.SetProvider(bgp)
	s.meshes = append(s.meshes, m)

	log.Printf("[Scene] registered mesh %q: %d vertices, %d indices, skinned=%v", m.Name(), m.VertexCount(), m.IndexCount(), m.Skinned())
	return nil
}

func (s *scene) RegisterMaterial(mat material.Material) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if mat == nil {
		return fmt.Errorf("cannot register a nil material")
	}
	if mat.BindGroupProvider() != nil {
		return nil
	}

	albedo := mat.Albedo()
	if albedo == nil {
		albedo = texture.NewSolidColor(255, 255, 255, 255)
	}

	b := s.bindings
	var opts []bind_group_provider.BindGroupProviderOption
	if s.materialLayout != nil {
		opts = append(opts, bind_group_provider.WithBindGroupLayout(s.materialLayout))
	}
	bgp := bind_group_provider.NewBindGroupProvider(mat.Name()+" Material", opts...)

	if err := s.r.InitTextureView(bgp, b.albedoBinding, albedo.StagingData()); err != nil {
		return fmt.Errorf("failed to upload albedo for material %q: %w", mat.Name(), err)
	}
	if err := s.r.InitSampler(bgp, b.albedoSamplerBinding, common.SamplerStagingData{}); err != nil {
		return fmt.Errorf("failed to init sampler for material %q: %w", mat.Name(), err)
	}
	descriptor := renderer.MergedBindGroupLayout(s.r.Pipeline(PipelineMeshStaticSimple), b.materialGroup)
	if err := s.r.InitBindGroup(bgp, descriptor, nil); err != nil {
		return fmt.Errorf("failed to init bind group for material %q: %w", mat.Name(), err)
	}
	if s.materialLayout == nil {
		s.materialLayout = bgp.BindGroupLayout()
	}

	params := mat.Params()
	s.r.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: bgp, Binding: b.materialParamsBinding, Data: params.Marshal()},
	})

	mat.SetBindGroupProvider(bgp)
	if mat.PipelineKey() == "" {
		mat.SetPipelineKey(variantForKind(mat.Kind()))
	}
	s.materialSet[mat] = true

	log.Printf("[Scene] registered material %q: variant=%s, layers=%d", mat.Name(), mat.PipelineKey(), albedo.LayerCount)
	return nil
}

func (s *scene) RegisterUIMaterial(mat material.Material) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if mat == nil {
		return fmt.Errorf("cannot register a nil material")
	}
	if mat.BindGroupProvider() != nil {
		return nil
	}

	atlas := mat.Albedo()
	if atlas == nil {
		atlas = texture.NewSolidColor(255, 255, 255, 255)
	}

	b := s.bindings
	var opts []bind_group_provider.BindGroupProviderOption
	if s.spriteOwnerBGP != nil {
		opts = append(opts,
			bind_group_provider.WithBindGroupLayout(s.spriteLayout),
			bind_group_provider.WithBuffer(b.spriteUniformBinding, s.spriteOwnerBGP.Buffer(b.spriteUniformBinding)),
			bind_group_provider.WithBuffer(b.spriteInstanceBinding, s.spriteOwnerBGP.Buffer(b.spriteInstanceBinding)),
		)
	}
	bgp := bind_group_provider.NewBindGroupProvider(mat.Name()+" Sprite", opts...)

	if err := s.r.InitTextureView(bgp, b.atlasBinding, atlas.StagingData()); err != nil {
		return fmt.Errorf("failed to upload atlas for material %q: %w", mat.Name(), err)
	}
	// Clamped addressing keeps glyph and sprite samples from bleeding across
	// atlas edges.
	err := s.r.InitSampler(bgp, b.atlasSamplerBinding, common.SamplerStagingData{
		AddressModeU: wgpu.AddressModeClampToEdge,
		AddressModeV: wgpu.AddressModeClampToEdge,
	})
	if err != nil {
		return fmt.Errorf("failed to init sampler for material %q: %w", mat.Name(), err)
	}
	descriptor := renderer.MergedBindGroupLayout(s.r.Pipeline(PipelineSprite), b.spriteGroup)
	err = s.r.InitBindGroup(bgp, descriptor, map[int]uint64{
		b.spriteInstanceBinding: uint64(s.maxSprites) * spriteInstanceStride,
	})
	if err != nil {
		return fmt.Errorf("failed to init bind group for material %q: %w", mat.Name(), err)
	}
	if s.spriteOwnerBGP == nil {
		s.spriteOwnerBGP = bgp
		s.spriteLayout = bgp.BindGroupLayout()
	}

	mat.SetBindGroupProvider(bgp)
	mat.SetPipelineKey(PipelineSprite)
	s.uiMaterialSet[mat] = true

	log.Printf("[Scene] registered UI material %q: layers=%d", mat.Name(), atlas.LayerCount)
	return nil
}

func (s *scene) SubmitStatic(job StaticJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.SubmitStatic(job)
}

func (s *scene) SubmitSkinned(job SkinnedJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.SubmitSkinned(job)
}

func (s *scene) SubmitSprite(job SpriteJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.SubmitSprite(job)
}

func (s *scene) SubmitText(job TextJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.SubmitText(job)
}

func (s *scene) RenderFrame() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats FrameStats
	s.cam.Update()

	buildStart := time.Now()
	data, err := s.queue.BuildDrawData(s.cullFunc())
	if err != nil {
		s.queue.Reset()
		return fmt.Errorf("frame rejected: %w", err)
	}
	// Resolve every batch to registered resources and pipelines before any
	// pass is encoded, so a bad frame drops whole.
	if err := s.validateBatches(data); err != nil {
		s.queue.Reset()
		return fmt.Errorf("frame rejected: %w", err)
	}
	stats.Build = time.Since(buildStart)
	stats.Instances = len(data.Instances)
	stats.Sprites = len(data.Sprites)
	stats.Batches = len(data.StaticBatches) + len(data.SkinnedBatches) + len(data.SpriteBatches)

	castShadows := s.lightSource != nil && s.lightSource.Enabled() && s.lightSource.CastsShadows()
	if castShadows != s.shadowsBound {
		if err := s.rebindShadowRead(castShadows); err != nil {
			s.queue.Reset()
			return err
		}
	}

	stats.Staging, _ = timed(func() error {
		s.stageFrameWrites(data)
		return nil
	})

	if err := s.r.BeginFrame(); err != nil {
		s.queue.Reset()
		return fmt.Errorf("failed to begin frame: %w", err)
	}

	var encodeErr error
	if castShadows {
		stats.Shadow, encodeErr = timed(func() error { return s.encodeShadowPass(data) })
	}
	if encodeErr == nil {
		stats.Main, encodeErr = timed(func() error { return s.encodeMainPass(data) })
	}
	if encodeErr == nil {
		stats.Composite, encodeErr = timed(func() error { return s.encodeCompositePass() })
	}
	if encodeErr == nil {
		stats.UI, encodeErr = timed(func() error { return s.encodeUIPass(data) })
	}

	s.r.EndFrame()
	s.r.Present()
	s.queue.Reset()
	s.stats = stats

	if encodeErr != nil {
		return fmt.Errorf("failed to encode frame: %w", encodeErr)
	}
	return nil
}

func (s *scene) HandleResize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Minimized windows report zero area; keep the last valid surface.
	if width <= 0 || height <= 0 {
		return
	}
	s.screenWidth, s.screenHeight = width, height
	s.r.Resize(width, height)
	s.cam.SetAspect(float32(width) / float32(height))

	// The offscreen color target was recreated with the surface; rebind it.
	s.targetBGP.SetTextureView(s.bindings.targetTextureBinding, s.r.OffscreenColorView())
	descriptor := renderer.MergedBindGroupLayout(s.r.Pipeline(PipelineComposite), s.bindings.targetGroup)
	if err := s.r.InitBindGroup(s.targetBGP, descriptor, nil); err != nil {
		log.Printf("[Scene] failed to rebind composite target after resize: %v", err)
	}
}

func (s *scene) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.bindings

	// The composite view belongs to the renderer and the shadow views to the
	// scene; detach them so provider release cannot double-free.
	if s.targetBGP != nil {
		s.targetBGP.SetTextureView(b.targetTextureBinding, nil)
		s.targetBGP.Release()
		s.targetBGP = nil
	}
	if s.shadowReadBGP != nil {
		s.shadowReadBGP.SetTextureView(b.shadowTextureBinding, nil)
		s.shadowReadBGP.Release()
		s.shadowReadBGP = nil
	}
	if s.shadowDepthView != nil {
		s.shadowDepthView.Release()
		s.shadowDepthView = nil
	}
	if s.shadowDepthTex != nil {
		s.shadowDepthTex.Release()
		s.shadowDepthTex = nil
	}
	if s.fallbackShadowView != nil {
		s.fallbackShadowView.Release()
		s.fallbackShadowView = nil
	}
	if s.fallbackShadowTex != nil {
		s.fallbackShadowTex.Release()
		s.fallbackShadowTex = nil
	}

	// Frame providers share buffers; the static main provider owns the
	// frame, instance and lighting buffers, the skinned one owns the bone
	// buffer. Sharers detach before releasing.
	if s.shadowSkinnedBGP != nil {
		s.shadowSkinnedBGP.SetBuffer(b.frameBinding, nil)
		s.shadowSkinnedBGP.SetBuffer(b.instanceBinding, nil)
		s.shadowSkinnedBGP.SetBuffer(b.boneBinding, nil)
		s.shadowSkinnedBGP.Release()
		s.shadowSkinnedBGP = nil
	}
	if s.shadowStaticBGP != nil {
		s.shadowStaticBGP.SetBuffer(b.frameBinding, nil)
		s.shadowStaticBGP.SetBuffer(b.instanceBinding, nil)
		s.shadowStaticBGP.Release()
		s.shadowStaticBGP = nil
	}
	if s.mainSkinnedBGP != nil {
		s.mainSkinnedBGP.SetBuffer(b.frameBinding, nil)
		s.mainSkinnedBGP.SetBuffer(b.instanceBinding, nil)
		s.mainSkinnedBGP.SetBuffer(b.lightingBinding, nil)
		s.mainSkinnedBGP.Release()
		s.mainSkinnedBGP = nil
	}
	if s.mainStaticBGP != nil {
		s.mainStaticBGP.Release()
		s.mainStaticBGP = nil
	}

	// Mesh materials share one bind group layout; exactly one provider
	// releases it and the rest detach first.
	releasedLayout := false
	for mat := range s.materialSet {
		bgp := mat.BindGroupProvider()
		if bgp == nil {
			continue
		}
		if releasedLayout {
			bgp.SetBindGroupLayout(nil)
		}
		releasedLayout = true
		bgp.Release()
		mat.SetBindGroupProvider(nil)
	}
	clear(s.materialSet)
	s.materialLayout = nil

	// UI materials additionally share the sprite uniform and instance
	// buffers owned by spriteOwnerBGP.
	for mat := range s.uiMaterialSet {
		bgp := mat.BindGroupProvider()
		if bgp == nil {
			continue
		}
		if bgp != s.spriteOwnerBGP {
			bgp.SetBindGroupLayout(nil)
			bgp.SetBuffer(b.spriteUniformBinding, nil)
			bgp.SetBuffer(b.spriteInstanceBinding, nil)
		}
		bgp.Release()
		mat.SetBindGroupProvider(nil)
	}
	clear(s.uiMaterialSet)
	s.spriteOwnerBGP = nil
	s.spriteLayout = nil

	for _, m := range s.meshes {
		if bgp := m.Provider(); bgp != nil {
			bgp.Release()
			m.SetProvider(nil)
		}
	}
	s.meshes = nil
}

// cullFunc builds the per-instance visibility test for this frame, or nil
// when culling is disabled. Instances are tested as bounding spheres against
// the camera frustum; a culled instance skips the shadow pass too, so a
// caster just outside the view no longer throws a shadow into it. Disable
// culling if that matters more than the draw savings.
func (s *scene) cullFunc() CullFunc {
	if s.cullingDisabled {
		return nil
	}
	vp := s.cam.ViewProjectionMatrix()
	frustum := common.ExtractFrustumFromMatrix(vp[:])
	return func(mesh model.Mesh, instance *model.GPUMeshInstance) bool {
		center := [3]float32{instance.Model[12], instance.Model[13], instance.Model[14]}
		radius := mesh.BoundingRadius() * modelMaxScale(&instance.Model)
		return frustum.ContainsSphere(center, radius)
	}
}

// validateBatches resolves every batch against registered resources and
// pipelines before encoding begins.
func (s *scene) validateBatches(data *DrawData) error {
	for i := range data.StaticBatches {
		if err := s.validateMeshBatch(&data.StaticBatches[i], false); err != nil {
			return err
		}
	}
	for i := range data.SkinnedBatches {
		if err := s.validateMeshBatch(&data.SkinnedBatches[i], true); err != nil {
			return err
		}
	}
	for i := range data.SpriteBatches {
		if mat := data.SpriteBatches[i].Key.Material; !s.uiMaterialSet[mat] {
			return fmt.Errorf("material %q is not registered for the UI pass", mat.Name())
		}
	}
	return nil
}

func (s *scene) validateMeshBatch(b *Batch, skinned bool) error {
	if b.Key.Mesh.Provider() == nil {
		return fmt.Errorf("mesh %q is not registered", b.Key.Mesh.Name())
	}
	if !s.materialSet[b.Key.Material] {
		return fmt.Errorf("material %q is not registered", b.Key.Material.Name())
	}
	if key := meshPipelineKey(skinned, b.Key.Material); s.r.Pipeline(key) == nil {
		return fmt.Errorf("material %q resolves to unregistered pipeline %q", b.Key.Material.Name(), key)
	}
	return nil
}

// stageFrameWrites marshals the frame's instance and sprite records into the
// reusable staging buffers and coalesces every buffer upload into a single
// WriteBuffers call. Marshaling fans out across the compute pool in fixed
// chunks; each chunk writes a disjoint slice of the staging buffer, so the
// output is deterministic regardless of completion order.
func (s *scene) stageFrameWrites(data *DrawData) {
	b := s.bindings

	instanceBytes := len(data.Instances) * int(meshInstanceStride)
	s.instanceStaging = growBytes(s.instanceStaging, instanceBytes)
	spriteBytes := len(data.Sprites) * int(spriteInstanceStride)
	s.spriteStaging = growBytes(s.spriteStaging, spriteBytes)

	// A WaitGroup provides the frame barrier since pool.Wait() blocks until
	// workers idle-exit, which is unsuitable for frame-rate workloads.
	var wg sync.WaitGroup
	taskID := 0
	for start := 0; start < len(data.Instances); start += marshalChunk {
		end := min(start+marshalChunk, len(data.Instances))
		wg.Add(1)
		chunkStart, chunkEnd := start, end
		id := taskID
		taskID++
		s.computePool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				for i := chunkStart; i < chunkEnd; i++ {
					data.Instances[i].MarshalInto(s.instanceStaging[uint64(i)*meshInstanceStride:])
				}
				return nil, nil
			},
		})
	}
	for start := 0; start < len(data.Sprites); start += marshalChunk {
		end := min(start+marshalChunk, len(data.Sprites))
		wg.Add(1)
		chunkStart, chunkEnd := start, end
		id := taskID
		taskID++
		s.computePool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				for i := chunkStart; i < chunkEnd; i++ {
					data.Sprites[i].MarshalInto(s.spriteStaging[uint64(i)*spriteInstanceStride:])
				}
				return nil, nil
			},
		})
	}
	wg.Wait()

	frame := s.frameUniforms()
	params := s.params.GPU()

	writes := s.writePool[:0]
	writes = append(writes,
		bind_group_provider.BufferWrite{Provider: s.mainStaticBGP, Binding: b.frameBinding, Data: frame.Marshal()},
		bind_group_provider.BufferWrite{Provider: s.mainStaticBGP, Binding: b.lightingBinding, Data: params.Marshal()},
	)
	if instanceBytes > 0 {
		writes = append(writes, bind_group_provider.BufferWrite{
			Provider: s.mainStaticBGP, Binding: b.instanceBinding, Data: s.instanceStaging[:instanceBytes],
		})
	}
	if len(data.Bones) > 0 {
		// Bone matrices are already GPU-shaped; upload the float slice as-is.
		writes = append(writes, bind_group_provider.BufferWrite{
			Provider: s.mainSkinnedBGP, Binding: b.boneBinding, Data: common.SliceToBytes(data.Bones),
		})
	}
	if s.spriteOwnerBGP != nil {
		uniform := ui.GPUSpriteUniform{
			ScreenWidth:  float32(s.screenWidth),
			ScreenHeight: float32(s.screenHeight),
			UIScale:      s.uiScale,
		}
		writes = append(writes, bind_group_provider.BufferWrite{
			Provider: s.spriteOwnerBGP, Binding: b.spriteUniformBinding, Data: uniform.Marshal(),
		})
		if spriteBytes > 0 {
			writes = append(writes, bind_group_provider.BufferWrite{
				Provider: s.spriteOwnerBGP, Binding: b.spriteInstanceBinding, Data: s.spriteStaging[:spriteBytes],
			})
		}
	}
	s.writePool = writes
	s.r.WriteBuffers(writes)
}

// frameUniforms assembles the per-frame uniform block from the camera and
// light. A nil or disabled light zeroes the light color so lit shaders
// contribute nothing for it, and keeps a well-defined direction and matrix.
func (s *scene) frameUniforms() camera.GPUFrameUniforms {
	u := camera.GPUFrameUniforms{
		View:       s.cam.ViewMatrix(),
		Projection: s.cam.ProjectionMatrix(),
		CameraPos:  s.cam.Position(),
	}
	if s.lightSource != nil && s.lightSource.Enabled() {
		var lightVP [16]float32
		s.lightSource.ViewProjection(lightVP[:])
		u.LightViewProjection = lightVP
		u.LightDir = s.lightSource.Direction()
		color := s.lightSource.EffectiveColor()
		u.LightColor = [4]float32{color[0], color[1], color[2], 1}
	} else {
		common.Identity(u.LightViewProjection[:])
		u.LightDir = [3]float32{0, -1, 0}
	}
	return u
}

// rebindShadowRead swaps the lit passes' shadow texture between the real
// depth map and the white fallback, rebuilding the read bind group.
func (s *scene) rebindShadowRead(castShadows bool) error {
	view := s.fallbackShadowView
	if castShadows {
		view = s.shadowDepthView
	}
	s.shadowReadBGP.SetTextureView(s.bindings.shadowTextureBinding, view)
	descriptor := renderer.MergedBindGroupLayout(s.r.Pipeline(PipelineMeshStaticSimple), s.bindings.shadowGroup)
	if err := s.r.InitBindGroup(s.shadowReadBGP, descriptor, nil); err != nil {
		return fmt.Errorf("failed to rebind shadow map: %w", err)
	}
	s.shadowsBound = castShadows
	return nil
}

// encodeShadowPass renders every mesh batch depth-only from the light's
// point of view. The pass always runs while a shadow-casting light exists so
// the map clears even on frames with no casters.
func (s *scene) encodeShadowPass(data *DrawData) error {
	s.r.BeginShadowPass(s.shadowDepthView)
	defer s.r.EndShadowPass()

	for _, batch := range data.StaticBatches {
		if err := s.r.ShadowDrawCall(PipelineShadowStatic, batch.Key.Mesh.Provider(), batch.Start, batch.End-batch.Start, s.shadowStaticGroups); err != nil {
			return err
		}
	}
	for _, batch := range data.SkinnedBatches {
		if err := s.r.ShadowDrawCall(PipelineShadowSkinned, batch.Key.Mesh.Provider(), batch.Start, batch.End-batch.Start, s.shadowSkinnedGroups); err != nil {
			return err
		}
	}
	return nil
}

func (s *scene) encodeMainPass(data *DrawData) error {
	s.r.BeginMainPass()
	defer s.r.EndMainPass()

	for _, batch := range data.StaticBatches {
		s.staticDrawGroups[s.bindings.materialGroup] = batch.Key.Material.BindGroupProvider()
		if err := s.r.DrawCall(meshPipelineKey(false, batch.Key.Material), batch.Key.Mesh.Provider(), batch.Start, batch.End-batch.Start, s.staticDrawGroups); err != nil {
			return err
		}
	}
	for _, batch := range data.SkinnedBatches {
		s.skinnedDrawGroups[s.bindings.materialGroup] = batch.Key.Material.BindGroupProvider()
		if err := s.r.DrawCall(meshPipelineKey(true, batch.Key.Material), batch.Key.Mesh.Provider(), batch.Start, batch.End-batch.Start, s.skinnedDrawGroups); err != nil {
			return err
		}
	}
	return nil
}

func (s *scene) encodeCompositePass() error {
	s.r.BeginCompositePass()
	defer s.r.EndCompositePass()
	return s.r.CompositeDraw(PipelineComposite, s.compositeGroups)
}

func (s *scene) encodeUIPass(data *DrawData) error {
	if len(data.SpriteBatches) == 0 {
		return nil
	}
	s.r.BeginUIPass()
	defer s.r.EndUIPass()

	for _, batch := range data.SpriteBatches {
		s.uiDrawGroups[0] = batch.Key.Material.BindGroupProvider()
		if err := s.r.UIDrawCall(PipelineSprite, batch.Start, batch.End-batch.Start, s.uiDrawGroups); err != nil {
			return err
		}
	}
	return nil
}

// bindingTable holds the group and binding indices discovered from the pass
// shaders' annotations at construction, so buffer staging and draw encoding
// never hard-code the WGSL binding layout.
type bindingTable struct {
	frameGroup      int
	frameBinding    int
	instanceBinding int
	boneBinding     int
	lightingBinding int

	materialGroup         int
	materialParamsBinding int
	albedoBinding         int
	albedoSamplerBinding  int

	shadowGroup          int
	shadowTextureBinding int
	shadowSamplerBinding int

	targetGroup          int
	targetTextureBinding int
	targetSamplerBinding int

	spriteGroup           int
	spriteUniformBinding  int
	spriteInstanceBinding int
	atlasBinding          int
	atlasSamplerBinding   int

	maxMainGroup int // highest bind group index used by the main pass
}

// discoverBindings scans the pass shaders' variable names and provider
// annotations for every group and binding index the scene stages or binds.
// Panics when a shader stops declaring an expected resource, since that is a
// build-time drift between the WGSL and the scene.
func discoverBindings(staticVert, skinnedVert, litFrag, compositeFrag, spriteVert, spriteFrag shader.Shader) bindingTable {
	var b bindingTable

	b.frameGroup, b.frameBinding = mustFindVar(staticVert, "frame")
	_, b.instanceBinding = mustFindVar(staticVert, "instances")
	_, b.boneBinding = mustFindProviderBinding(skinnedVert, shader.AnnotationArgFrame, shader.AnnotationArgBones)
	_, b.lightingBinding = mustFindVar(litFrag, "lighting")

	b.materialGroup = mustFindProviderGroup(litFrag, shader.AnnotationArgMaterial)
	_, b.materialParamsBinding = mustFindVar(litFrag, "material")
	_, b.albedoBinding = mustFindProviderBinding(litFrag, shader.AnnotationArgMaterial, shader.AnnotationArgAlbedoTexture)
	_, b.albedoSamplerBinding = mustFindProviderBinding(litFrag, shader.AnnotationArgMaterial, shader.AnnotationArgAlbedoSampler)

	b.shadowGroup = mustFindProviderGroup(litFrag, shader.AnnotationArgShadow)
	_, b.shadowTextureBinding = mustFindProviderBinding(litFrag, shader.AnnotationArgShadow, shader.AnnotationArgShadowTexture)
	_, b.shadowSamplerBinding = mustFindProviderBinding(litFrag, shader.AnnotationArgShadow, shader.AnnotationArgShadowSampler)

	b.targetGroup = mustFindProviderGroup(compositeFrag, shader.AnnotationArgTarget)
	_, b.targetTextureBinding = mustFindProviderBinding(compositeFrag, shader.AnnotationArgTarget, shader.AnnotationArgTargetTexture)
	_, b.targetSamplerBinding = mustFindProviderBinding(compositeFrag, shader.AnnotationArgTarget, shader.AnnotationArgTargetSampler)

	b.spriteGroup, b.spriteUniformBinding = mustFindVar(spriteVert, "screen")
	_, b.spriteInstanceBinding = mustFindVar(spriteVert, "sprites")
	_, b.atlasBinding = mustFindProviderBinding(spriteFrag, shader.AnnotationArgSprite, shader.AnnotationArgAtlasTexture)
	_, b.atlasSamplerBinding = mustFindProviderBinding(spriteFrag, shader.AnnotationArgSprite, shader.AnnotationArgAtlasSampler)

	b.maxMainGroup = max(b.frameGroup, b.materialGroup, b.shadowGroup)
	return b
}

func mustFindVar(s shader.Shader, varName string) (group, binding int) {
	for g, names := range s.BindGroupVarNames() {
		for bIdx, name := range names {
			if name == varName {
				return g, bIdx
			}
		}
	}
	panic(fmt.Sprintf("scene: shader %q does not declare variable %q", s.Key(), varName))
}

func mustFindProviderGroup(s shader.Shader, identity shader.AnnotationArg) int {
	group, ok := shader.FindProviderGroup(s.Declarations(), identity)
	if !ok {
		panic(fmt.Sprintf("scene: shader %q does not annotate a %q provider group", s.Key(), identity))
	}
	return group
}

func mustFindProviderBinding(s shader.Shader, identity, role shader.AnnotationArg) (group, binding int) {
	group, binding, ok := shader.FindProviderBinding(s.Declarations(), identity, role)
	if !ok {
		panic(fmt.Sprintf("scene: shader %q does not annotate a %q binding for provider %q", s.Key(), role, identity))
	}
	return group, binding
}

// meshPipelineKey composes the pipeline key for a mesh draw from the vertex
// variant and the material's fragment variant.
func meshPipelineKey(skinned bool, mat material.Material) string {
	variant := mat.PipelineKey()
	if variant == "" {
		variant = variantForKind(mat.Kind())
	}
	if skinned {
		return "mesh_skinned_" + variant
	}
	return "mesh_static_" + variant
}

// variantForKind maps a material's shading model to the fragment variant
// segment of the mesh pipeline keys.
func variantForKind(k material.Kind) string {
	if k == material.KindPBR {
		return "pbr"
	}
	return "simple"
}

// modelMaxScale returns the largest axis scale encoded in a column-major
// model matrix, used to scale mesh bounding radii for culling.
func modelMaxScale(m *[16]float32) float32 {
	sx := m[0]*m[0] + m[1]*m[1] + m[2]*m[2]
	sy := m[4]*m[4] + m[5]*m[5] + m[6]*m[6]
	sz := m[8]*m[8] + m[9]*m[9] + m[10]*m[10]
	return math32.Sqrt(max(sx, sy, sz))
}

// growBytes returns buf resized to n bytes, reusing the backing array when
// it is large enough.
func growBytes(buf []byte, n int) []byte {
	if cap(buf) < n {
		return make([]byte, n)
	}
	return buf[:n]
}

func timed(f func() error) (time.Duration, error) {
	start := time.Now()
	err := f()
	return time.Since(start), err
}
