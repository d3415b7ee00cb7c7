package ui

// TextAlignment controls how a text run is positioned horizontally relative
// to its pen origin.
type TextAlignment int

const (
	// AlignLeft starts the run at the pen position.
	AlignLeft TextAlignment = iota

	// AlignCenter centers the run on the pen position.
	AlignCenter

	// AlignRight ends the run at the pen position.
	AlignRight
)

// GlyphQuad is one positioned glyph produced by text layout. Position and
// Size are in the same units as the pen position (em units scaled by the text
// size); UVOffset and UVSize select the glyph's atlas sub-rectangle.
type GlyphQuad struct {
	Position [2]float32
	Size     [2]float32
	UVOffset [2]float32
	UVSize   [2]float32
}

// MeasureText computes the horizontal advance of a text run at the given
// size. Characters missing from the font contribute nothing.
//
// Parameters:
//   - font: the font to measure with
//   - text: the run to measure
//   - size: text size multiplier applied to glyph advances
//
// Returns:
//   - float32: the total advance
func MeasureText(font Font, text string, size float32) float32 {
	var width float32
	for _, r := range text {
		if g, ok := font.Glyph(r); ok {
			width += g.Advance * size
		}
	}
	return width
}

// LayoutText positions the glyphs of a text run and returns one quad per
// glyph with bounds. The pen starts at (x, y) shifted left by the alignment
// fraction of the run width; each present glyph advances the pen whether or
// not it emits a quad, so whitespace spaces the run correctly.
//
// Parameters:
//   - font: the font to lay out with
//   - text: the run to lay out
//   - size: text size multiplier applied to glyph metrics
//   - x, y: the pen origin
//   - alignment: horizontal alignment relative to the pen origin
//
// Returns:
//   - []GlyphQuad: positioned quads for every glyph with bounds, in order
func LayoutText(font Font, text string, size float32, x, y float32, alignment TextAlignment) []GlyphQuad {
	switch alignment {
	case AlignCenter:
		x -= MeasureText(font, text, size) * 0.5
	case AlignRight:
		x -= MeasureText(font, text, size)
	}

	quads := make([]GlyphQuad, 0, len(text))
	for _, r := range text {
		g, ok := font.Glyph(r)
		if !ok {
			continue
		}
		if g.HasBounds {
			quads = append(quads, GlyphQuad{
				Position: [2]float32{x + g.PlaneOffset[0]*size, y + g.PlaneOffset[1]*size},
				Size:     [2]float32{g.PlaneSize[0] * size, g.PlaneSize[1] * size},
				UVOffset: g.UVOffset,
				UVSize:   g.UVSize,
			})
		}
		x += g.Advance * size
	}
	return quads
}
