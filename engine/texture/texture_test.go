package texture

import (
	"encoding/binary"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeHeader(width, height, layers, channels, bytesPerChannel, mips uint32) []byte {
	buf := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(buf[0:], width)
	binary.LittleEndian.PutUint32(buf[4:], height)
	binary.LittleEndian.PutUint32(buf[8:], layers)
	binary.LittleEndian.PutUint32(buf[12:], channels)
	binary.LittleEndian.PutUint32(buf[16:], bytesPerChannel)
	binary.LittleEndian.PutUint32(buf[20:], mips)
	return buf
}

func TestParse(t *testing.T) {
	pixels := make([]byte, 2*2*4)
	for i := range pixels {
		pixels[i] = byte(i)
	}
	data := append(encodeHeader(2, 2, 1, 4, 1, 1), pixels...)

	desc, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), desc.Width)
	assert.Equal(t, uint32(2), desc.Height)
	assert.Equal(t, uint32(1), desc.LayerCount)
	assert.Equal(t, uint32(4), desc.ChannelCount)
	assert.Equal(t, uint32(1), desc.BytesPerChannel)
	assert.Equal(t, uint32(1), desc.MipLevelCount)
	assert.Equal(t, pixels, desc.Pixels)
}

func TestParseMipChain(t *testing.T) {
	// 4x4 base with 3 mips across 2 layers, single channel unorm8.
	// Sizes per mip: 4*4*2, 2*2*2, 1*1*2.
	payload := make([]byte, 32+8+2)
	for i := range payload {
		payload[i] = byte(i + 1)
	}
	data := append(encodeHeader(4, 4, 2, 1, 1, 3), payload...)

	desc, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, 32, desc.MipSize(0))
	assert.Equal(t, 8, desc.MipSize(1))
	assert.Equal(t, 2, desc.MipSize(2))
	assert.Equal(t, payload[:32], desc.MipPixels(0))
	assert.Equal(t, payload[32:40], desc.MipPixels(1))
	assert.Equal(t, payload[40:42], desc.MipPixels(2))
}

func TestParseEmptyPayload(t *testing.T) {
	desc, err := Parse(encodeHeader(8, 8, 1, 4, 1, 1))
	require.NoError(t, err)
	assert.Empty(t, desc.Pixels)
	assert.Nil(t, desc.MipPixels(0))
}

func TestParseErrors(t *testing.T) {
	t.Run("truncated header", func(t *testing.T) {
		_, err := Parse(make([]byte, headerSize-1))
		assert.Error(t, err)
	})

	t.Run("payload size mismatch", func(t *testing.T) {
		data := append(encodeHeader(2, 2, 1, 4, 1, 1), make([]byte, 15)...)
		_, err := Parse(data)
		assert.Error(t, err)
	})

	t.Run("three channels unsupported", func(t *testing.T) {
		data := append(encodeHeader(1, 1, 1, 3, 1, 1), make([]byte, 3)...)
		_, err := Parse(data)
		assert.Error(t, err)
	})

	t.Run("mip chain exceeds dimensions", func(t *testing.T) {
		_, err := Parse(encodeHeader(2, 2, 1, 4, 1, 3))
		assert.Error(t, err)
	})

	t.Run("zero layers", func(t *testing.T) {
		_, err := Parse(encodeHeader(2, 2, 0, 4, 1, 1))
		assert.Error(t, err)
	})
}

func TestFormat(t *testing.T) {
	cases := []struct {
		channels uint32
		width    uint32
		format   wgpu.TextureFormat
	}{
		{1, 1, wgpu.TextureFormatR8Unorm},
		{2, 1, wgpu.TextureFormatRG8Unorm},
		{4, 1, wgpu.TextureFormatRGBA8Unorm},
		{1, 2, wgpu.TextureFormatR16Float},
		{4, 2, wgpu.TextureFormatRGBA16Float},
		{1, 4, wgpu.TextureFormatR32Float},
		{2, 4, wgpu.TextureFormatRG32Float},
		{4, 4, wgpu.TextureFormatRGBA32Float},
	}
	for _, c := range cases {
		desc := &Descriptor{ChannelCount: c.channels, BytesPerChannel: c.width}
		format, err := desc.Format()
		require.NoError(t, err)
		assert.Equal(t, c.format, format)
	}

	bad := &Descriptor{ChannelCount: 3, BytesPerChannel: 8}
	_, err := bad.Format()
	assert.Error(t, err)
}

func TestStagingData(t *testing.T) {
	desc := NewSolidColor(255, 128, 0, 255)
	staging := desc.StagingData()
	assert.Equal(t, []byte{255, 128, 0, 255}, staging.Pixels)
	assert.Equal(t, uint32(1), staging.Width)
	assert.Equal(t, uint32(1), staging.Height)
	assert.Equal(t, uint32(1), staging.LayerCount)
	assert.Equal(t, wgpu.TextureFormatRGBA8Unorm, staging.Format)
}
