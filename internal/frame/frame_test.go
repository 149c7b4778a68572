package frame_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reel/internal/frame"
	"reel/internal/pixel"
	"reel/internal/services"
)

func TestNewEnforcesBufferSize(t *testing.T) {
	for _, format := range pixel.Formats() {
		for _, dims := range [][2]int{{1, 1}, {2, 3}, {7, 5}} {
			w, h := dims[0], dims[1]
			want := w * h * format.Channels()

			f, err := frame.New(make([]byte, want), w, h, format)
			require.NoError(t, err, "%s %dx%d", format, w, h)
			assert.Equal(t, frame.Shape{Width: w, Height: h, Format: format}, f.Shape())

			for _, bad := range []int{0, want - 1, want + 1, want * 2} {
				_, err := frame.New(make([]byte, bad), w, h, format)
				assert.True(t, errors.Is(err, services.ErrSizeMismatch), "%s %dx%d len %d: %v", format, w, h, bad, err)
			}
		}
	}
}

func TestNewRejectsInvalidShape(t *testing.T) {
	_, err := frame.New(nil, 0, 1, pixel.RGB24)
	assert.True(t, errors.Is(err, services.ErrSizeMismatch))
	_, err = frame.New(make([]byte, 3), 1, 1, pixel.Format{})
	assert.True(t, errors.Is(err, services.ErrSizeMismatch))
}

func TestPixelsRoundTrip(t *testing.T) {
	buf := make([]byte, 4*3*3)
	for i := range buf {
		buf[i] = byte(i)
	}
	f, err := frame.New(append([]byte(nil), buf...), 4, 3, pixel.RGB24)
	require.NoError(t, err)

	seq, err := frame.Pixels[pixel.RGB](f)
	require.NoError(t, err)

	var rebuilt []byte
	n := 0
	for _, p := range seq {
		rebuilt = append(rebuilt, p[:]...)
		n++
	}
	assert.Equal(t, 12, n)
	assert.Equal(t, buf, rebuilt)
}

func TestPixelsRowMajorOrder(t *testing.T) {
	f, err := frame.Blank(frame.Shape{Width: 3, Height: 2, Format: pixel.Gray})
	require.NoError(t, err)
	f.At(2, 0)[0] = 7
	f.At(0, 1)[0] = 9

	seq, err := frame.Pixels[pixel.Y](f)
	require.NoError(t, err)
	values := map[int]byte{}
	for i, p := range seq {
		values[i] = p[0]
	}
	assert.Equal(t, byte(7), values[2])
	assert.Equal(t, byte(9), values[3])
}

func TestPixelsMutPersists(t *testing.T) {
	f, err := frame.Blank(frame.Shape{Width: 2, Height: 2, Format: pixel.RGBA})
	require.NoError(t, err)

	seq, err := frame.PixelsMut[pixel.RGBAPixel](f)
	require.NoError(t, err)
	for i, p := range seq {
		p[0] = byte(i + 1)
		p[3] = 255
	}

	again, err := frame.Pixels[pixel.RGBAPixel](f)
	require.NoError(t, err)
	for i, p := range again {
		assert.Equal(t, byte(i+1), p[0])
		assert.Equal(t, byte(255), p[3])
	}
	assert.Equal(t, byte(4), f.Raw()[12])
}

func TestPixelsRejectsWrongStructure(t *testing.T) {
	f, err := frame.Blank(frame.Shape{Width: 1, Height: 1, Format: pixel.RGB24})
	require.NoError(t, err)
	_, err = frame.Pixels[pixel.RGBAPixel](f)
	assert.True(t, errors.Is(err, services.ErrUnsupportedFormat))
	_, err = frame.PixelsMut[pixel.BGR](f)
	assert.True(t, errors.Is(err, services.ErrUnsupportedFormat))
}

func TestTransformInPlace(t *testing.T) {
	f, err := frame.New([]byte{1, 2, 3, 4, 5, 6}, 2, 1, pixel.RGB24)
	require.NoError(t, err)
	out := f.Transform(func(px []byte) {
		px[0], px[2] = px[2], px[0]
	})
	assert.Same(t, f, out)
	assert.Equal(t, []byte{3, 2, 1, 6, 5, 4}, f.Raw())
}

func TestConvertChangesFormat(t *testing.T) {
	f, err := frame.New([]byte{10, 20, 30, 40, 50, 60}, 2, 1, pixel.RGB24)
	require.NoError(t, err)
	gray, err := f.Convert(pixel.Gray, func(dst, src []byte) {
		dst[0] = src[1]
	})
	require.NoError(t, err)
	assert.Equal(t, pixel.Gray, gray.Format())
	assert.Equal(t, []byte{20, 50}, gray.Raw())
	assert.Equal(t, []byte{10, 20, 30, 40, 50, 60}, f.Raw())

	_, err = f.Convert(pixel.Format{}, func(dst, src []byte) {})
	assert.Error(t, err)
}

func TestAtAndRowAlias(t *testing.T) {
	f, err := frame.Blank(frame.Shape{Width: 2, Height: 2, Format: pixel.RGB24})
	require.NoError(t, err)
	px := f.At(1, 1)
	assert.Len(t, px, 3)
	assert.Equal(t, 3, cap(px))
	px[2] = 42
	assert.Equal(t, byte(42), f.Raw()[11])
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 42}, f.Row(1))
}

func TestCloneIsDeep(t *testing.T) {
	f, err := frame.New([]byte{1}, 1, 1, pixel.Gray)
	require.NoError(t, err)
	c := f.Clone()
	c.Raw()[0] = 2
	assert.Equal(t, byte(1), f.Raw()[0])
}

func TestShapeValidate(t *testing.T) {
	assert.NoError(t, frame.Shape{Width: 1, Height: 1, Format: pixel.Gray}.Validate())
	assert.True(t, errors.Is(frame.Shape{Width: 0, Height: 1, Format: pixel.Gray}.Validate(), services.ErrValidation))
	assert.True(t, errors.Is(frame.Shape{Width: 1, Height: 1}.Validate(), services.ErrUnsupportedFormat))
	assert.True(t, errors.Is(frame.Shape{Width: frame.MaxDimension + 1, Height: 1, Format: pixel.Gray}.Validate(), services.ErrValidation))
	assert.True(t, errors.Is(frame.Shape{Width: 1, Height: 1 << 40, Format: pixel.Gray}.Validate(), services.ErrValidation))
	assert.Equal(t, 24, frame.Shape{Width: 2, Height: 3, Format: pixel.RGBA}.FrameSize())
}
