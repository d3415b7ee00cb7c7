package loader

import (
	"github.com/Dualsub/rusty-rift/engine/model"
	"github.com/Dualsub/rusty-rift/engine/renderer"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithRenderer is an option builder that sets the Renderer used by the Loader.
// Meshes loaded while a renderer is attached get their GPU buffers uploaded
// immediately.
//
// Parameters:
//   - r: the renderer instance
//
// Returns:
//   - LoaderBuilderOption: a function that applies the renderer option to a loader
func WithRenderer(r renderer.Renderer) LoaderBuilderOption {
	return func(l *loader) {
		l.renderer = r
	}
}

// WithMesh is an option builder that pre-populates the mesh cache, letting
// procedural meshes live alongside loaded ones under the same lookup.
//
// Parameters:
//   - name: the cache key for the mesh
//   - m: the mesh to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the mesh option to a loader
func WithMesh(name string, m model.Mesh) LoaderBuilderOption {
	return func(l *loader) {
		l.meshes[name] = m
	}
}
