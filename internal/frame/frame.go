package frame

import (
	"fmt"
	"iter"

	"reel/internal/pixel"
	"reel/internal/services"
)

// MaxDimension bounds frame width and height so FrameSize cannot overflow.
const MaxDimension = 1 << 16

// Shape is the static geometry of every frame in a sequence.
type Shape struct {
	Width  int
	Height int
	Format pixel.Format
}

// PixelCount returns width*height.
func (s Shape) PixelCount() int {
	return s.Width * s.Height
}

// FrameSize returns the number of bytes in one frame.
func (s Shape) FrameSize() int {
	return s.Width * s.Height * s.Format.Channels()
}

// Validate reports whether the shape can describe a frame.
func (s Shape) Validate() error {
	if s.Width <= 0 || s.Height <= 0 || s.Width > MaxDimension || s.Height > MaxDimension {
		return services.Wrap(services.ErrValidation, "frame", "shape", fmt.Sprintf("invalid dimensions %dx%d", s.Width, s.Height), nil)
	}
	if !s.Format.Valid() {
		return services.Wrap(services.ErrUnsupportedFormat, "frame", "shape", "invalid pixel format", nil)
	}
	return nil
}

func (s Shape) String() string {
	return fmt.Sprintf("%dx%d %s", s.Width, s.Height, s.Format)
}

// Frame is one decoded image.
type Frame struct {
	buf   []byte
	shape Shape
}

// New wraps buf as a frame. The buffer length must equal
// width*height*format.Channels(); the frame takes ownership of buf.
func New(buf []byte, width, height int, format pixel.Format) (*Frame, error) {
	shape := Shape{Width: width, Height: height, Format: format}
	if width <= 0 || height <= 0 || width > MaxDimension || height > MaxDimension || !format.Valid() {
		return nil, services.Wrap(services.ErrSizeMismatch, "frame", "new", fmt.Sprintf("invalid shape %s", shape), nil)
	}
	if want := shape.FrameSize(); len(buf) != want {
		return nil, services.Wrap(services.ErrSizeMismatch, "frame", "new",
			fmt.Sprintf("buffer has %d bytes, %s needs %d", len(buf), shape, want), nil)
	}
	return &Frame{buf: buf, shape: shape}, nil
}

// Blank allocates a zero-filled frame.
func Blank(shape Shape) (*Frame, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	return &Frame{buf: make([]byte, shape.FrameSize()), shape: shape}, nil
}

func (f *Frame) Width() int           { return f.shape.Width }
func (f *Frame) Height() int          { return f.shape.Height }
func (f *Frame) Format() pixel.Format { return f.shape.Format }
func (f *Frame) Shape() Shape         { return f.shape }

// Raw returns the frame's buffer without copying.
func (f *Frame) Raw() []byte {
	return f.buf
}

// Clone returns a deep copy.
func (f *Frame) Clone() *Frame {
	return &Frame{buf: append([]byte(nil), f.buf...), shape: f.shape}
}

// At returns the channel bytes of pixel (x, y). The slice aliases the frame
// and its capacity is limited to the pixel. Coordinates must be in bounds.
func (f *Frame) At(x, y int) []byte {
	c := f.shape.Format.Channels()
	off := (y*f.shape.Width + x) * c
	return f.buf[off : off+c : off+c]
}

// Row returns the bytes of row y.
func (f *Frame) Row(y int) []byte {
	stride := f.shape.Width * f.shape.Format.Channels()
	return f.buf[y*stride : (y+1)*stride : (y+1)*stride]
}

// Transform calls fn on every pixel in place and returns f.
func (f *Frame) Transform(fn func(px []byte)) *Frame {
	c := f.shape.Format.Channels()
	for off := 0; off < len(f.buf); off += c {
		fn(f.buf[off : off+c : off+c])
	}
	return f
}

// Convert builds a new frame in format dst by calling fn with each
// destination pixel and the matching source pixel.
func (f *Frame) Convert(dst pixel.Format, fn func(dst, src []byte)) (*Frame, error) {
	out, err := Blank(Shape{Width: f.shape.Width, Height: f.shape.Height, Format: dst})
	if err != nil {
		return nil, err
	}
	sc, dc := f.shape.Format.Channels(), dst.Channels()
	for i, n := 0, f.shape.PixelCount(); i < n; i++ {
		s, d := i*sc, i*dc
		fn(out.buf[d:d+dc:d+dc], f.buf[s:s+sc:s+sc])
	}
	return out, nil
}

// Pixels yields every pixel of f by value in row-major order.
func Pixels[P pixel.Pixel](f *Frame) (iter.Seq2[int, P], error) {
	layout, err := pixel.Bind[P](f.shape.Format)
	if err != nil {
		return nil, err
	}
	return layout.Pixels(f.buf)
}

// PixelsMut yields a pointer into f's buffer for every pixel in row-major
// order.
func PixelsMut[P pixel.Pixel](f *Frame) (iter.Seq2[int, *P], error) {
	layout, err := pixel.Bind[P](f.shape.Format)
	if err != nil {
		return nil, err
	}
	return layout.PixelsMut(f.buf)
}
