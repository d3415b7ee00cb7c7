package ui

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnchorOrigin(t *testing.T) {
	const w, h = 800.0, 600.0

	tests := []struct {
		name   string
		anchor Anchor
		x, y   float32
	}{
		{"top left", AnchorTopLeft, 0, 0},
		{"top center", AnchorTopCenter, 400, 0},
		{"top right", AnchorTopRight, 800, 0},
		{"center left", AnchorCenterLeft, 0, 300},
		{"center", AnchorCenter, 400, 300},
		{"center right", AnchorCenterRight, 800, 300},
		{"bottom left", AnchorBottomLeft, 0, 600},
		{"bottom center", AnchorBottomCenter, 400, 600},
		{"bottom right", AnchorBottomRight, 800, 600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := AnchorOrigin(tt.anchor, w, h)
			assert.Equal(t, tt.x, x)
			assert.Equal(t, tt.y, y)
		})
	}
}

func TestSpriteCornerReferenceSpace(t *testing.T) {
	tr := SpriteTransform{ScreenWidth: 800, ScreenHeight: 600, UIScale: 2.0}

	// Bottom-right corner of a quad at offset (10,20), size (30,40), scaled
	// by 2: pixel (80, 120).
	x, y := tr.Corner([2]float32{10, 20}, [2]float32{30, 40}, 1, 1, AnchorTopLeft, SpaceReference)
	assert.InDelta(t, -0.8, x, 1e-6)
	assert.InDelta(t, 0.6, y, 1e-6)
}

func TestSpriteCornerAbsoluteSpace(t *testing.T) {
	tr := SpriteTransform{ScreenWidth: 800, ScreenHeight: 600, UIScale: 2.0}

	// UI scale must not apply: pixel (40, 60).
	x, y := tr.Corner([2]float32{10, 20}, [2]float32{30, 40}, 1, 1, AnchorTopLeft, SpaceAbsolute)
	assert.InDelta(t, -0.9, x, 1e-6)
	assert.InDelta(t, 0.8, y, 1e-6)
}

func TestSpriteCornerNormalizedSpace(t *testing.T) {
	tr := SpriteTransform{ScreenWidth: 800, ScreenHeight: 600, UIScale: 2.0}

	// Full-screen quad passes through untouched except for the Y-flip.
	x, y := tr.Corner([2]float32{-1, -1}, [2]float32{2, 2}, 0, 0, AnchorTopLeft, SpaceNormalized)
	assert.InDelta(t, -1.0, x, 1e-6)
	assert.InDelta(t, 1.0, y, 1e-6)

	x, y = tr.Corner([2]float32{-1, -1}, [2]float32{2, 2}, 1, 1, AnchorTopLeft, SpaceNormalized)
	assert.InDelta(t, 1.0, x, 1e-6)
	assert.InDelta(t, -1.0, y, 1e-6)
}

func TestSpriteCornerAnchorsMatchOrigins(t *testing.T) {
	// A zero-size quad at zero offset must land exactly on its anchor point
	// in both pixel-based spaces, for every anchor.
	tr := SpriteTransform{ScreenWidth: 1280, ScreenHeight: 720, UIScale: 1.5}

	for anchor := AnchorTopLeft; anchor <= AnchorBottomRight; anchor++ {
		for _, space := range []Space{SpaceReference, SpaceAbsolute} {
			px, py := AnchorOrigin(anchor, tr.ScreenWidth, tr.ScreenHeight)
			wantX := (px/tr.ScreenWidth)*2.0 - 1.0
			wantY := 1.0 - (py/tr.ScreenHeight)*2.0

			x, y := tr.Corner([2]float32{0, 0}, [2]float32{0, 0}, 0, 0, anchor, space)
			assert.InDelta(t, wantX, x, 1e-6, "anchor %d space %d", anchor, space)
			assert.InDelta(t, wantY, y, 1e-6, "anchor %d space %d", anchor, space)
		}
	}
}

// testFont builds a small font with 'A' and 'B' glyph quads and a boundless
// space glyph.
func testFont() Font {
	glyphs := map[uint32]Glyph{
		'A': {
			Unicode:     'A',
			Advance:     0.5,
			HasBounds:   true,
			PlaneOffset: [2]float32{0.05, -0.8},
			PlaneSize:   [2]float32{0.4, 0.9},
			UVOffset:    [2]float32{0.0, 0.0},
			UVSize:      [2]float32{0.25, 0.5},
		},
		'B': {
			Unicode:     'B',
			Advance:     0.7,
			HasBounds:   true,
			PlaneOffset: [2]float32{0.1, -0.8},
			PlaneSize:   [2]float32{0.5, 0.9},
			UVOffset:    [2]float32{0.25, 0.0},
			UVSize:      [2]float32{0.25, 0.5},
		},
		' ': {
			Unicode: ' ',
			Advance: 0.3,
		},
	}
	return NewFont(WithGlyphs(glyphs))
}

func TestMeasureText(t *testing.T) {
	font := testFont()

	assert.InDelta(t, 12.0, MeasureText(font, "AB", 10), 1e-5)
	assert.InDelta(t, 15.0, MeasureText(font, "A B", 10), 1e-5)

	// Unknown characters contribute no advance.
	assert.InDelta(t, 12.0, MeasureText(font, "A?B", 10), 1e-5)
	assert.Equal(t, float32(0), MeasureText(font, "", 10))
}

func TestLayoutTextLeft(t *testing.T) {
	font := testFont()

	quads := LayoutText(font, "AB", 10, 100, 50, AlignLeft)
	require.Len(t, quads, 2)

	// 'A' quad sits at the pen plus its plane offset.
	assert.InDelta(t, 100.5, quads[0].Position[0], 1e-4)
	assert.InDelta(t, 42.0, quads[0].Position[1], 1e-4)
	assert.InDelta(t, 4.0, quads[0].Size[0], 1e-4)
	assert.InDelta(t, 9.0, quads[0].Size[1], 1e-4)
	assert.Equal(t, [2]float32{0.0, 0.0}, quads[0].UVOffset)
	assert.Equal(t, [2]float32{0.25, 0.5}, quads[0].UVSize)

	// 'B' starts after A's advance (5 units at size 10).
	assert.InDelta(t, 106.0, quads[1].Position[0], 1e-4)
}

func TestLayoutTextWhitespaceAdvances(t *testing.T) {
	font := testFont()

	quads := LayoutText(font, "A B", 10, 0, 0, AlignLeft)
	require.Len(t, quads, 2)

	// Space emits no quad but moves the pen: B pen = 5 + 3 = 8.
	assert.InDelta(t, 9.0, quads[1].Position[0], 1e-4)
}

func TestLayoutTextSkipsUnknownRunes(t *testing.T) {
	font := testFont()

	quads := LayoutText(font, "A?B", 10, 0, 0, AlignLeft)
	require.Len(t, quads, 2)

	// '?' is absent from the font, so B follows A directly.
	assert.InDelta(t, 6.0, quads[1].Position[0], 1e-4)
}

func TestLayoutTextAlignment(t *testing.T) {
	font := testFont()
	width := MeasureText(font, "AB", 10)

	left := LayoutText(font, "AB", 10, 100, 0, AlignLeft)
	center := LayoutText(font, "AB", 10, 100, 0, AlignCenter)
	right := LayoutText(font, "AB", 10, 100, 0, AlignRight)

	require.Len(t, left, 2)
	require.Len(t, center, 2)
	require.Len(t, right, 2)

	assert.InDelta(t, left[0].Position[0]-width*0.5, center[0].Position[0], 1e-4)
	assert.InDelta(t, left[0].Position[0]-width, right[0].Position[0], 1e-4)
}

func putU32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func putF32(buf []byte, v float32) []byte {
	return putU32(buf, math.Float32bits(v))
}

func TestParseFont(t *testing.T) {
	var buf []byte
	buf = putU32(buf, 2) // glyph count

	// 'A' with bounds
	buf = putU32(buf, 'A')
	buf = putF32(buf, 0.6)
	buf = append(buf, 1)
	buf = putF32(buf, 0.05)
	buf = putF32(buf, -0.1)
	buf = putF32(buf, 0.5)
	buf = putF32(buf, 0.9)
	buf = putF32(buf, 0.25)
	buf = putF32(buf, 0.5)
	buf = putF32(buf, 0.125)
	buf = putF32(buf, 0.25)

	// space without bounds
	buf = putU32(buf, ' ')
	buf = putF32(buf, 0.3)
	buf = append(buf, 0)

	// embedded 1x1 RGBA8 atlas
	buf = putU32(buf, 1)
	buf = putU32(buf, 1)
	buf = putU32(buf, 1)
	buf = putU32(buf, 4)
	buf = putU32(buf, 1)
	buf = putU32(buf, 1)
	buf = append(buf, 0xff, 0x00, 0xff, 0xff)

	font, err := ParseFont(buf)
	require.NoError(t, err)
	assert.Equal(t, 2, font.GlyphCount())

	a, ok := font.Glyph('A')
	require.True(t, ok)
	assert.InDelta(t, 0.6, a.Advance, 1e-6)
	assert.True(t, a.HasBounds)
	assert.Equal(t, [2]float32{0.05, -0.1}, a.PlaneOffset)
	assert.Equal(t, [2]float32{0.5, 0.9}, a.PlaneSize)
	assert.Equal(t, [2]float32{0.25, 0.5}, a.UVOffset)
	assert.Equal(t, [2]float32{0.125, 0.25}, a.UVSize)

	space, ok := font.Glyph(' ')
	require.True(t, ok)
	assert.False(t, space.HasBounds)

	_, ok = font.Glyph('Z')
	assert.False(t, ok)

	require.NotNil(t, font.Atlas())
	assert.Equal(t, uint32(1), font.Atlas().Width)
	assert.Equal(t, uint32(1), font.Atlas().Height)
}

func TestParseFontErrors(t *testing.T) {
	t.Run("truncated glyph table", func(t *testing.T) {
		var buf []byte
		buf = putU32(buf, 5)
		buf = putU32(buf, 'A')

		_, err := ParseFont(buf)
		assert.ErrorContains(t, err, "glyph table")
	})

	t.Run("missing atlas", func(t *testing.T) {
		var buf []byte
		buf = putU32(buf, 0)

		_, err := ParseFont(buf)
		assert.ErrorContains(t, err, "atlas")
	})
}

func TestSpriteInstanceMarshal(t *testing.T) {
	inst := GPUSpriteInstance{
		OffsetAndSize: [4]float32{10, 20, 30, 40},
		Color:         [4]float32{1, 0.5, 0.25, 1},
		TexBounds:     [4]float32{0.25, 0.5, 0.125, 0.0625},
		Mode:          uint32(RenderModeMSDF),
		Layer:         3,
		Anchor:        uint32(AnchorBottomRight),
		Space:         uint32(SpaceAbsolute),
	}

	buf := inst.Marshal()
	assert.Equal(t, 64, len(buf))
	assert.Equal(t, 64, inst.Size())

	assert.Equal(t, float32(10), math.Float32frombits(binary.LittleEndian.Uint32(buf[0:])))
	assert.Equal(t, float32(0.5), math.Float32frombits(binary.LittleEndian.Uint32(buf[20:])))
	assert.Equal(t, float32(0.125), math.Float32frombits(binary.LittleEndian.Uint32(buf[40:])))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(buf[48:]))
	assert.Equal(t, uint32(3), binary.LittleEndian.Uint32(buf[52:]))
	assert.Equal(t, uint32(8), binary.LittleEndian.Uint32(buf[56:]))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(buf[60:]))
}

func TestSpriteUniformMarshal(t *testing.T) {
	u := GPUSpriteUniform{ScreenWidth: 1920, ScreenHeight: 1080, UIScale: 1.5}

	buf := u.Marshal()
	assert.Equal(t, 16, len(buf))
	assert.Equal(t, float32(1920), math.Float32frombits(binary.LittleEndian.Uint32(buf[0:])))
	assert.Equal(t, float32(1080), math.Float32frombits(binary.LittleEndian.Uint32(buf[4:])))
	assert.Equal(t, float32(1.5), math.Float32frombits(binary.LittleEndian.Uint32(buf[8:])))
}
