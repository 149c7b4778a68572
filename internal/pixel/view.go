package pixel

import (
	"fmt"
	"iter"
	"slices"
	"unsafe"

	"reel/internal/services"
)

// RGB is one rgb24 pixel.
type RGB [3]uint8

// BGR is one bgr24 pixel.
type BGR [3]uint8

// RGBAPixel is one rgba pixel with straight alpha.
type RGBAPixel [4]uint8

// Y is one gray pixel.
type Y [1]uint8

func (RGB) order() []ChannelKind       { return layoutTable[rgb24ID].semantics }
func (BGR) order() []ChannelKind       { return layoutTable[bgr24ID].semantics }
func (RGBAPixel) order() []ChannelKind { return layoutTable[rgbaID].semantics }
func (Y) order() []ChannelKind         { return layoutTable[grayID].semantics }

// Pixel is the set of structures that may be laid over a frame buffer.
type Pixel interface {
	RGB | BGR | RGBAPixel | Y
	order() []ChannelKind
}

// Layout is a verified binding between pixel structure P and a Format.
type Layout[P Pixel] struct {
	format Format
	size   int
}

// Bind verifies that P matches f exactly: same byte size as f.Channels(),
// byte alignment, and the same channel order.
func Bind[P Pixel](f Format) (Layout[P], error) {
	var zero P
	if !f.Valid() {
		return Layout[P]{}, services.Wrap(services.ErrUnsupportedFormat, "pixel", "bind", "invalid format", nil)
	}
	size := int(unsafe.Sizeof(zero))
	if size != f.Channels() || unsafe.Alignof(zero) != 1 {
		return Layout[P]{}, services.Wrap(services.ErrUnsupportedFormat, "pixel", "bind",
			fmt.Sprintf("%T is %d bytes, %s has %d channels", zero, size, f.Name(), f.Channels()), nil)
	}
	if !slices.Equal(zero.order(), layoutTable[f.id].semantics) {
		return Layout[P]{}, services.Wrap(services.ErrUnsupportedFormat, "pixel", "bind",
			fmt.Sprintf("%T channel order does not match %s", zero, f.Name()), nil)
	}
	return Layout[P]{format: f, size: size}, nil
}

// Format returns the bound format.
func (l Layout[P]) Format() Format {
	return l.format
}

// Slice reinterprets buf as a slice of pixels. The result aliases buf.
func (l Layout[P]) Slice(buf []byte) ([]P, error) {
	if l.size == 0 {
		return nil, services.Wrap(services.ErrUnsupportedFormat, "pixel", "view", "layout not bound", nil)
	}
	if len(buf)%l.size != 0 {
		return nil, services.Wrap(services.ErrSizeMismatch, "pixel", "view",
			fmt.Sprintf("%d bytes is not a multiple of %d", len(buf), l.size), nil)
	}
	if len(buf) == 0 {
		return nil, nil
	}
	return unsafe.Slice((*P)(unsafe.Pointer(unsafe.SliceData(buf))), len(buf)/l.size), nil
}

// Pixels yields every pixel of buf by value, in memory order.
func (l Layout[P]) Pixels(buf []byte) (iter.Seq2[int, P], error) {
	px, err := l.Slice(buf)
	if err != nil {
		return nil, err
	}
	return func(yield func(int, P) bool) {
		for i := range px {
			if !yield(i, px[i]) {
				return
			}
		}
	}, nil
}

// PixelsMut yields a pointer to every pixel of buf; writes land in buf.
func (l Layout[P]) PixelsMut(buf []byte) (iter.Seq2[int, *P], error) {
	px, err := l.Slice(buf)
	if err != nil {
		return nil, err
	}
	return func(yield func(int, *P) bool) {
		for i := range px {
			if !yield(i, &px[i]) {
				return
			}
		}
	}, nil
}
