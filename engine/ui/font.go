package ui

import (
	"fmt"
	"log"
	"os"

	"github.com/Dualsub/rusty-rift/common"
	"github.com/Dualsub/rusty-rift/engine/texture"
)

// Glyph describes a single character in a font atlas. Glyphs without bounds
// (whitespace) contribute horizontal advance but emit no quad.
type Glyph struct {
	Unicode uint32
	Advance float32 // horizontal pen advance in em units

	HasBounds   bool
	PlaneOffset [2]float32 // quad offset from the pen position, in em units
	PlaneSize   [2]float32 // quad size in em units
	UVOffset    [2]float32 // atlas sub-rectangle origin, normalized
	UVSize      [2]float32 // atlas sub-rectangle extent, normalized
}

// fontImpl is the implementation of the Font interface.
type fontImpl struct {
	glyphs map[uint32]Glyph
	atlas  *texture.Descriptor
}

// Font defines the interface for a distance-field font atlas.
//
// A font couples a glyph table (per-character layout metrics and atlas
// coordinates) with the texture the glyph shapes are rendered from. Text jobs
// look glyphs up per rune; characters missing from the table are skipped
// entirely and contribute no advance.
type Font interface {
	// Glyph looks up the glyph for a rune.
	//
	// Parameters:
	//   - r: the character to look up
	//
	// Returns:
	//   - Glyph: the glyph metrics, zero value if absent
	//   - bool: true if the font contains the rune
	Glyph(r rune) (Glyph, bool)

	// GlyphCount returns the number of glyphs in the font.
	//
	// Returns:
	//   - int: the glyph count
	GlyphCount() int

	// Atlas returns the descriptor of the font's atlas texture.
	//
	// Returns:
	//   - *texture.Descriptor: the parsed atlas, nil if the font has none
	Atlas() *texture.Descriptor
}

var _ Font = &fontImpl{}

// NewFont creates a new Font from the provided options.
//
// Parameters:
//   - options: functional options to configure the font
//
// Returns:
//   - Font: the newly created font
func NewFont(options ...FontBuilderOption) Font {
	f := &fontImpl{
		glyphs: make(map[uint32]Glyph),
	}
	for _, option := range options {
		option(f)
	}
	return f
}

func (f *fontImpl) Glyph(r rune) (Glyph, bool) {
	g, ok := f.glyphs[uint32(r)]
	return g, ok
}

func (f *fontImpl) GlyphCount() int {
	return len(f.glyphs)
}

func (f *fontImpl) Atlas() *texture.Descriptor {
	return f.atlas
}

// LoadFont reads and parses a binary font file from disk.
//
// Parameters:
//   - path: filesystem path to the font file
//
// Returns:
//   - Font: the parsed font
//   - error: non-nil if reading or parsing fails
func LoadFont(path string) (Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file %s: %w", path, err)
	}
	f, err := ParseFont(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font file %s: %w", path, err)
	}
	return f, nil
}

// ParseFont decodes the binary font format: a little-endian glyph table
// (count, then per glyph unicode u32, advance f32, has_bounds u8 and, when
// set, plane offset/size and UV offset/size as 8 f32s) followed by the atlas
// texture stream.
//
// Parameters:
//   - data: the raw font file contents
//
// Returns:
//   - Font: the parsed font
//   - error: non-nil if the data is truncated or the atlas is malformed
func ParseFont(data []byte) (Font, error) {
	r := common.NewByteReader(data)

	glyphCount := r.U32()
	glyphs := make(map[uint32]Glyph, glyphCount)

	for i := uint32(0); i < glyphCount && r.Err() == nil; i++ {
		g := Glyph{
			Unicode: r.U32(),
			Advance: r.F32(),
		}
		g.HasBounds = r.U8() != 0
		if g.HasBounds {
			g.PlaneOffset = [2]float32{r.F32(), r.F32()}
			g.PlaneSize = [2]float32{r.F32(), r.F32()}
			g.UVOffset = [2]float32{r.F32(), r.F32()}
			g.UVSize = [2]float32{r.F32(), r.F32()}
		}
		glyphs[g.Unicode] = g
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse glyph table: %w", err)
	}

	atlas, err := texture.Parse(r.Rest())
	if err != nil {
		return nil, fmt.Errorf("failed to parse font atlas: %w", err)
	}

	log.Printf("[UI] loaded font: %d glyphs, %dx%d atlas", len(glyphs), atlas.Width, atlas.Height)

	return NewFont(WithGlyphs(glyphs), WithAtlas(atlas)), nil
}
