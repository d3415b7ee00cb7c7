package ui

import "github.com/Dualsub/rusty-rift/engine/texture"

// FontBuilderOption is a function that configures a Font instance during construction.
type FontBuilderOption func(*fontImpl)

// WithGlyphs is an option builder that sets the glyph table of the font,
// keyed by unicode code point.
//
// Parameters:
//   - glyphs: the glyph table to set
//
// Returns:
//   - FontBuilderOption: a function that applies the glyph table to a fontImpl
func WithGlyphs(glyphs map[uint32]Glyph) FontBuilderOption {
	return func(f *fontImpl) {
		f.glyphs = glyphs
	}
}

// WithAtlas is an option builder that sets the font's atlas texture descriptor.
//
// Parameters:
//   - atlas: the parsed atlas texture
//
// Returns:
//   - FontBuilderOption: a function that applies the atlas to a fontImpl
func WithAtlas(atlas *texture.Descriptor) FontBuilderOption {
	return func(f *fontImpl) {
		f.atlas = atlas
	}
}
