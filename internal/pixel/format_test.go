package pixel_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reel/internal/pixel"
	"reel/internal/services"
)

func TestFormatLayouts(t *testing.T) {
	tests := []struct {
		format    pixel.Format
		name      string
		channels  int
		semantics []pixel.ChannelKind
	}{
		{pixel.RGB24, "rgb24", 3, []pixel.ChannelKind{pixel.Red, pixel.Green, pixel.Blue}},
		{pixel.RGBA, "rgba", 4, []pixel.ChannelKind{pixel.Red, pixel.Green, pixel.Blue, pixel.Alpha}},
		{pixel.BGR24, "bgr24", 3, []pixel.ChannelKind{pixel.Blue, pixel.Green, pixel.Red}},
		{pixel.Gray, "gray", 1, []pixel.ChannelKind{pixel.Luma}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, tc.format.Valid())
			assert.Equal(t, tc.name, tc.format.Name())
			assert.Equal(t, tc.channels, tc.format.Channels())
			assert.Equal(t, tc.semantics, tc.format.Semantics())
			assert.Len(t, tc.format.Semantics(), tc.format.Channels())
		})
	}
}

func TestFormatSemanticsReturnsCopy(t *testing.T) {
	sem := pixel.RGB24.Semantics()
	sem[0] = pixel.Alpha
	assert.Equal(t, pixel.Red, pixel.RGB24.Semantics()[0])
}

func TestZeroFormatIsInvalid(t *testing.T) {
	var f pixel.Format
	assert.False(t, f.Valid())
	assert.Equal(t, 0, f.Channels())
	assert.Equal(t, -1, f.Index(pixel.Red))
	assert.Equal(t, "invalid", f.String())
}

func TestFormatQueries(t *testing.T) {
	assert.True(t, pixel.RGBA.HasAlpha())
	assert.False(t, pixel.RGB24.HasAlpha())
	assert.True(t, pixel.BGR24.IsRGBLike())
	assert.False(t, pixel.Gray.IsRGBLike())
	assert.Equal(t, 2, pixel.BGR24.Index(pixel.Red))
	assert.Equal(t, 0, pixel.BGR24.Index(pixel.Blue))
}

func TestParse(t *testing.T) {
	f, err := pixel.Parse(" RGBA ")
	require.NoError(t, err)
	assert.Equal(t, pixel.RGBA, f)

	_, err = pixel.Parse("yuv420p")
	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrUnsupportedFormat))
}

func TestForSource(t *testing.T) {
	tests := map[string]pixel.Format{
		"":            pixel.RGB24,
		"yuv420p":     pixel.RGB24,
		"yuv420p10le": pixel.RGB24,
		"rgb24":       pixel.RGB24,
		"yuva420p":    pixel.RGBA,
		"rgba":        pixel.RGBA,
		"argb":        pixel.RGBA,
		"bgra":        pixel.RGBA,
		"rgba64be":    pixel.RGBA,
		"gbrap":       pixel.RGBA,
		"ya8":         pixel.RGBA,
		"gray":        pixel.Gray,
		"gray16le":    pixel.Gray,
		"unknownfmt":  pixel.RGB24,
	}
	for tag, want := range tests {
		assert.Equal(t, want, pixel.ForSource(tag), "tag %q", tag)
	}
}
