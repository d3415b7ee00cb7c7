// package texture contains the decoded texture asset representation and its
// binary codec. Texture assets store their full mip chain tightly packed, so
// a descriptor can be uploaded to the GPU without any host-side conversion.
package texture

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/Dualsub/rusty-rift/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// headerSize is the byte length of the encoded header: six little-endian uint32 fields.
const headerSize = 24

// Descriptor describes a texture asset: layer dimensions, texel format and the
// raw texel payload for every mip level.
type Descriptor struct {
	// Width and Height are the dimensions of the base mip level in pixels.
	Width  uint32
	Height uint32
	// LayerCount is the number of array layers.
	LayerCount uint32
	// ChannelCount is the number of channels per texel (1, 2 or 4).
	ChannelCount uint32
	// BytesPerChannel is the byte width of one channel (1 = unorm8, 2 = float16, 4 = float32).
	BytesPerChannel uint32
	// MipLevelCount is the number of mip levels stored in Pixels.
	MipLevelCount uint32
	// Pixels holds the texel data for all mip levels back to back, largest
	// first. Within a mip level the layers are stored back to back, each layer
	// row-major with no row padding. An empty slice means there is nothing to
	// upload and the texture contents are undefined until written.
	Pixels []byte
}

// Load reads and decodes a texture asset from disk.
//
// Parameters:
//   - path: filesystem path of the texture asset
//
// Returns:
//   - *Descriptor: the decoded texture
//   - error: error if the file cannot be read or decoded
func Load(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read texture %s: %w", path, err)
	}
	desc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse texture %s: %w", path, err)
	}
	return desc, nil
}

// Parse decodes a texture asset from its binary encoding. The encoding is six
// little-endian uint32 header fields (width, height, layer count, channel
// count, bytes per channel, mip level count) followed by the texel payload.
//
// Parameters:
//   - data: the encoded texture bytes
//
// Returns:
//   - *Descriptor: the decoded texture
//   - error: error if the data is truncated or describes an invalid texture
func Parse(data []byte) (*Descriptor, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("texture data too short: %d bytes, need at least %d", len(data), headerSize)
	}

	desc := &Descriptor{
		Width:           binary.LittleEndian.Uint32(data[0:]),
		Height:          binary.LittleEndian.Uint32(data[4:]),
		LayerCount:      binary.LittleEndian.Uint32(data[8:]),
		ChannelCount:    binary.LittleEndian.Uint32(data[12:]),
		BytesPerChannel: binary.LittleEndian.Uint32(data[16:]),
		MipLevelCount:   binary.LittleEndian.Uint32(data[20:]),
		Pixels:          data[headerSize:],
	}

	if err := desc.Validate(); err != nil {
		return nil, err
	}
	return desc, nil
}

// Validate checks that the descriptor is internally consistent: the format is
// one this engine supports, every mip level has nonzero dimensions, and the
// payload size matches the full mip chain exactly. An empty payload is valid.
//
// Returns:
//   - error: the first inconsistency found, or nil
func (d *Descriptor) Validate() error {
	if d.Width == 0 || d.Height == 0 {
		return fmt.Errorf("texture has zero dimension: %dx%d", d.Width, d.Height)
	}
	if d.LayerCount == 0 {
		return fmt.Errorf("texture has zero layers")
	}
	if d.MipLevelCount == 0 {
		return fmt.Errorf("texture has zero mip levels")
	}
	if _, err := d.Format(); err != nil {
		return err
	}

	for level := uint32(0); level < d.MipLevelCount; level++ {
		if d.Width>>level == 0 || d.Height>>level == 0 {
			return fmt.Errorf("mip level %d of %dx%d texture has zero dimension", level, d.Width, d.Height)
		}
	}

	if len(d.Pixels) == 0 {
		return nil
	}
	expected := 0
	for level := uint32(0); level < d.MipLevelCount; level++ {
		expected += d.MipSize(level)
	}
	if len(d.Pixels) != expected {
		return fmt.Errorf("texture payload is %d bytes, expected %d for %d mip levels", len(d.Pixels), expected, d.MipLevelCount)
	}
	return nil
}

// Format maps the channel count and channel width to a wgpu texture format.
// Supported channel widths are 1 (unorm8), 2 (float16) and 4 (float32), each
// with 1, 2 or 4 channels.
//
// Returns:
//   - wgpu.TextureFormat: the matching format
//   - error: error if the combination is unsupported
func (d *Descriptor) Format() (wgpu.TextureFormat, error) {
	switch d.BytesPerChannel {
	case 1:
		switch d.ChannelCount {
		case 1:
			return wgpu.TextureFormatR8Unorm, nil
		case 2:
			return wgpu.TextureFormatRG8Unorm, nil
		case 4:
			return wgpu.TextureFormatRGBA8Unorm, nil
		}
	case 2:
		switch d.ChannelCount {
		case 1:
			return wgpu.TextureFormatR16Float, nil
		case 2:
			return wgpu.TextureFormatRG16Float, nil
		case 4:
			return wgpu.TextureFormatRGBA16Float, nil
		}
	case 4:
		switch d.ChannelCount {
		case 1:
			return wgpu.TextureFormatR32Float, nil
		case 2:
			return wgpu.TextureFormatRG32Float, nil
		case 4:
			return wgpu.TextureFormatRGBA32Float, nil
		}
	}
	return wgpu.TextureFormatUndefined, fmt.Errorf("unsupported texel format: %d channels at %d bytes per channel", d.ChannelCount, d.BytesPerChannel)
}

// TexelSize returns the byte size of one texel.
func (d *Descriptor) TexelSize() int {
	return int(d.ChannelCount * d.BytesPerChannel)
}

// MipSize returns the byte size of one full mip level across all layers.
//
// Parameters:
//   - level: the mip level index
//
// Returns:
//   - int: byte size of that level
func (d *Descriptor) MipSize(level uint32) int {
	w := int(d.Width >> level)
	h := int(d.Height >> level)
	return w * h * int(d.LayerCount) * d.TexelSize()
}

// MipPixels returns the payload slice for one mip level, or nil when the
// descriptor carries no payload.
//
// Parameters:
//   - level: the mip level index
//
// Returns:
//   - []byte: the texel bytes for that level
func (d *Descriptor) MipPixels(level uint32) []byte {
	if len(d.Pixels) == 0 {
		return nil
	}
	offset := 0
	for l := uint32(0); l < level; l++ {
		offset += d.MipSize(l)
	}
	return d.Pixels[offset : offset+d.MipSize(level)]
}

// StagingData converts the descriptor to the staging form consumed by bind
// group providers.
//
// Returns:
//   - common.TextureStagingData: the staging representation
func (d *Descriptor) StagingData() common.TextureStagingData {
	format, err := d.Format()
	if err != nil {
		format = wgpu.TextureFormatRGBA8Unorm
	}
	return common.TextureStagingData{
		Pixels:        d.Pixels,
		Width:         d.Width,
		Height:        d.Height,
		LayerCount:    d.LayerCount,
		MipLevelCount: d.MipLevelCount,
		Format:        format,
	}
}

// NewSolidColor builds a single-layer 1x1 RGBA8 descriptor filled with one
// color. Used as the fallback albedo when a material has no texture.
//
// Parameters:
//   - r, g, b, a: color channels in [0, 255]
//
// Returns:
//   - *Descriptor: the 1x1 texture
func NewSolidColor(r, g, b, a uint8) *Descriptor {
	return &Descriptor{
		Width:           1,
		Height:          1,
		LayerCount:      1,
		ChannelCount:    4,
		BytesPerChannel: 1,
		MipLevelCount:   1,
		Pixels:          []byte{r, g, b, a},
	}
}
