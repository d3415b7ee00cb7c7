// Package ui provides the screen-space layer of the renderer: anchored sprite
// placement in three coordinate spaces, bitmap font atlases with
// multi-channel signed-distance-field glyphs, and text layout. The scene
// consumes these to build the sprite instance stream drawn after compositing.
package ui

// RenderMode selects how the sprite fragment stage interprets sampled texels.
type RenderMode uint32

const (
	// RenderModeSprite samples the texture directly: RGB is tinted by the
	// instance color and the texel's alpha channel drives opacity.
	RenderModeSprite RenderMode = 0

	// RenderModeMSDF treats the texel RGB as a multi-channel signed distance
	// field: opacity derives from the median channel distance and RGB comes
	// entirely from the instance color.
	RenderModeMSDF RenderMode = 1
)

// Anchor identifies one of 9 canonical screen-relative reference points laid
// out as a 3x3 grid: column = anchor % 3 (left, center, right), row =
// anchor / 3 (top, middle, bottom).
type Anchor uint32

const (
	AnchorTopLeft      Anchor = 0
	AnchorTopCenter    Anchor = 1
	AnchorTopRight     Anchor = 2
	AnchorCenterLeft   Anchor = 3
	AnchorCenter       Anchor = 4
	AnchorCenterRight  Anchor = 5
	AnchorBottomLeft   Anchor = 6
	AnchorBottomCenter Anchor = 7
	AnchorBottomRight  Anchor = 8
)

// Space selects the coordinate space a sprite's position and size are
// interpreted in.
type Space uint32

const (
	// SpaceReference positions sprites in logical pixels scaled by the global
	// UI scale factor, for resolution-independent layout.
	SpaceReference Space = 0

	// SpaceAbsolute positions sprites in raw screen pixels.
	SpaceAbsolute Space = 1

	// SpaceNormalized bypasses anchoring and scaling entirely; coordinates
	// are already normalized device coordinates. Intended for full-screen
	// effects.
	SpaceNormalized Space = 2
)

// DefaultUIScale is the reference-space scale factor applied when the
// collaborator does not configure one.
const DefaultUIScale float32 = 1.0

// anchorFraction maps a single grid axis index to its screen fraction.
func anchorFraction(index uint32) float32 {
	switch index {
	case 1:
		return 0.5
	case 2:
		return 1.0
	default:
		return 0.0
	}
}

// AnchorOrigin computes the pixel position of an anchor point on a screen of
// the given size.
//
// Parameters:
//   - anchor: the 3x3 grid anchor index
//   - screenWidth: screen width in pixels
//   - screenHeight: screen height in pixels
//
// Returns:
//   - x, y: the anchor origin in pixels, Y-down
func AnchorOrigin(anchor Anchor, screenWidth, screenHeight float32) (x, y float32) {
	ax := uint32(anchor) % 3
	ay := uint32(anchor) / 3
	return anchorFraction(ax) * screenWidth, anchorFraction(ay) * screenHeight
}

// SpriteTransform holds the per-frame screen parameters of the sprite pass.
// It mirrors the vertex-stage math exactly, so host code can compute where a
// sprite corner lands without a GPU round trip.
type SpriteTransform struct {
	ScreenWidth  float32
	ScreenHeight float32
	UIScale      float32
}

// Corner computes the normalized-device-coordinate position of one unit-quad
// corner for a sprite instance.
//
// Reference and Absolute spaces place the quad at the anchor origin plus the
// instance offset, then convert pixels to NDC with a Y-flip (screen Y-down to
// NDC Y-up). Reference space additionally scales offset and size by the UI
// scale factor. Normalized space treats the coordinates as NDC already and
// only applies the Y-flip.
//
// Parameters:
//   - offset: instance position relative to the anchor origin
//   - size: quad size in the same units as offset
//   - localX, localY: unit-quad corner in [0,1] (0,0 = top-left)
//   - anchor: the screen anchor the offset is relative to
//   - space: the coordinate space of offset and size
//
// Returns:
//   - ndcX, ndcY: the corner position in normalized device coordinates
func (t SpriteTransform) Corner(offset, size [2]float32, localX, localY float32, anchor Anchor, space Space) (ndcX, ndcY float32) {
	if space == SpaceNormalized {
		px := offset[0] + localX*size[0]
		py := offset[1] + localY*size[1]
		return px, -py
	}

	scale := float32(1.0)
	if space == SpaceReference {
		scale = t.UIScale
	}

	anchorX, anchorY := AnchorOrigin(anchor, t.ScreenWidth, t.ScreenHeight)
	px := anchorX + (offset[0]+localX*size[0])*scale
	py := anchorY + (offset[1]+localY*size[1])*scale

	ndcX = (px/t.ScreenWidth)*2.0 - 1.0
	ndcY = 1.0 - (py/t.ScreenHeight)*2.0
	return ndcX, ndcY
}
