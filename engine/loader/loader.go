package loader

import (
	"fmt"
	"os"
	"sync"

	"github.com/Dualsub/rusty-rift/engine/animation"
	"github.com/Dualsub/rusty-rift/engine/model"
	"github.com/Dualsub/rusty-rift/engine/renderer"
	"github.com/Dualsub/rusty-rift/engine/renderer/bind_group_provider"
	"github.com/Dualsub/rusty-rift/engine/texture"
	"github.com/Dualsub/rusty-rift/engine/ui"
)

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	renderer renderer.Renderer

	meshes   map[string]model.Mesh
	textures map[string]*texture.Descriptor
	fonts    map[string]ui.Font
	clips    map[string]animation.Clip
}

// Loader parses the engine's binary asset formats and caches the results by
// name. Every asset kind shares the same container discipline (little-endian
// fields, tightly packed records), but the kind is not self-describing, so
// callers pick the decoder by calling the matching Load method.
//
// When a Renderer is attached (WithRenderer), loaded meshes get their vertex
// and index buffers uploaded immediately and are draw-ready without further
// registration. Textures and fonts stay CPU-side; their GPU resources are
// created when a material referencing them is registered with a Scene.
type Loader interface {
	// LoadStaticMesh reads and decodes a mesh asset with static vertex records,
	// caching the result under the given name. If the name is already cached,
	// the cached mesh is returned and the file is not read.
	//
	// Parameters:
	//   - name: the cache key and mesh identifier
	//   - path: the file path to the mesh asset
	//
	// Returns:
	//   - model.Mesh: the loaded mesh
	//   - error: error if reading, decoding, or GPU upload fails
	LoadStaticMesh(name, path string) (model.Mesh, error)

	// LoadSkinnedMesh reads and decodes a mesh asset with skinned vertex
	// records (bone indices and weights), caching the result under the given
	// name. If the name is already cached, the cached mesh is returned.
	//
	// Parameters:
	//   - name: the cache key and mesh identifier
	//   - path: the file path to the mesh asset
	//
	// Returns:
	//   - model.Mesh: the loaded mesh
	//   - error: error if reading, decoding, or GPU upload fails
	LoadSkinnedMesh(name, path string) (model.Mesh, error)

	// LoadTexture reads and decodes a texture asset, caching the descriptor
	// under the given name. If the name is already cached, the cached
	// descriptor is returned.
	//
	// Parameters:
	//   - name: the cache key
	//   - path: the file path to the texture asset
	//
	// Returns:
	//   - *texture.Descriptor: the decoded pixel data and format metadata
	//   - error: error if reading or decoding fails
	LoadTexture(name, path string) (*texture.Descriptor, error)

	// LoadFont reads and decodes a font asset (glyph metrics plus the embedded
	// distance-field atlas), caching it under the given name. If the name is
	// already cached, the cached font is returned.
	//
	// Parameters:
	//   - name: the cache key
	//   - path: the file path to the font asset
	//
	// Returns:
	//   - ui.Font: the decoded font
	//   - error: error if reading or decoding fails
	LoadFont(name, path string) (ui.Font, error)

	// LoadClip reads and decodes an animation clip asset, caching it under the
	// given name. If the name is already cached, the cached clip is returned.
	//
	// Parameters:
	//   - name: the cache key and clip identifier
	//   - path: the file path to the animation asset
	//
	// Returns:
	//   - animation.Clip: the decoded clip
	//   - error: error if reading or decoding fails
	LoadClip(name, path string) (animation.Clip, error)

	// Mesh retrieves a cached mesh by name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - model.Mesh: the cached mesh or nil
	Mesh(name string) model.Mesh

	// Texture retrieves a cached texture by name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - *texture.Descriptor: the cached descriptor or nil
	Texture(name string) *texture.Descriptor

	// Font retrieves a cached font by name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - ui.Font: the cached font or nil
	Font(name string) ui.Font

	// Clip retrieves a cached clip by name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - animation.Clip: the cached clip or nil
	Clip(name string) animation.Clip

	// Release frees the GPU buffers of every mesh this loader uploaded and
	// clears all caches. Safe to call when no Renderer is attached.
	Release()
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified options applied.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided options
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:       sync.RWMutex{},
		meshes:   make(map[string]model.Mesh),
		textures: make(map[string]*texture.Descriptor),
		fonts:    make(map[string]ui.Font),
		clips:    make(map[string]animation.Clip),
	}
	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) LoadStaticMesh(name, path string) (model.Mesh, error) {
	l.mu.RLock()
	if cached, ok := l.meshes[name]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	m, err := model.ParseStaticMesh(name, data)
	if err != nil {
		return nil, err
	}
	if err := l.uploadMesh(m); err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.meshes[name] = m
	l.mu.Unlock()
	return m, nil
}

func (l *loader) LoadSkinnedMesh(name, path string) (model.Mesh, error) {
	l.mu.RLock()
	if cached, ok := l.meshes[name]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	m, err := model.ParseSkinnedMesh(name, data)
	if err != nil {
		return nil, err
	}
	if err := l.uploadMesh(m); err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.meshes[name] = m
	l.mu.Unlock()
	return m, nil
}

func (l *loader) LoadTexture(name, path string) (*texture.Descriptor, error) {
	l.mu.RLock()
	if cached, ok := l.textures[name]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	desc, err := texture.Load(path)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.textures[name] = desc
	l.mu.Unlock()
	return desc, nil
}

func (l *loader) LoadFont(name, path string) (ui.Font, error) {
	l.mu.RLock()
	if cached, ok := l.fonts[name]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	f, err := ui.LoadFont(path)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.fonts[name] = f
	l.mu.Unlock()
	return f, nil
}

func (l *loader) LoadClip(name, path string) (animation.Clip, error) {
	l.mu.RLock()
	if cached, ok := l.clips[name]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	clip, err := animation.ParseClip(name, data)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.clips[name] = clip
	l.mu.Unlock()
	return clip, nil
}

func (l *loader) Mesh(name string) model.Mesh {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.meshes[name]
}

func (l *loader) Texture(name string) *texture.Descriptor {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.textures[name]
}

func (l *loader) Font(name string) ui.Font {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.fonts[name]
}

func (l *loader) Clip(name string) animation.Clip {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.clips[name]
}

func (l *loader) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, m := range l.meshes {
		if provider := m.Provider(); provider != nil {
			provider.Release()
			m.SetProvider(nil)
		}
	}
	clear(l.meshes)
	clear(l.textures)
	clear(l.fonts)
	clear(l.clips)
}

// uploadMesh creates the mesh's GPU vertex and index buffers when a Renderer
// is attached. Without one the mesh stays CPU-side and can be uploaded later
// through Scene.RegisterMesh.
func (l *loader) uploadMesh(m model.Mesh) error {
	if l.renderer == nil {
		return nil
	}
	provider := bind_group_provider.NewBindGroupProvider(m.Name() + " Mesh")
	if err := l.renderer.InitMeshBuffers(provider, m.VertexData(), m.IndexData(), m.IndexCount()); err != nil {
		return fmt.Errorf("failed to upload mesh %q: %w", m.Name(), err)
	}
	m.SetProvider(provider)
	return nil
}
