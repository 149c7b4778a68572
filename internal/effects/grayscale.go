package effects

import (
	"fmt"
	"strings"

	"reel/internal/frame"
	"reel/internal/pixel"
	"reel/internal/services"
)

// GrayMode selects how Grayscale writes luma back.
type GrayMode uint8

const (
	// GrayReplicate writes the luma value into every colour channel and keeps
	// the format. Applying it twice changes nothing.
	GrayReplicate GrayMode = iota
	// GrayScaleChannels multiplies each colour channel by its own luma weight
	// without summing.
	GrayScaleChannels
	// GrayCollapse produces single-channel gray frames.
	GrayCollapse
)

var grayModeNames = map[GrayMode]string{
	GrayReplicate:     "replicate",
	GrayScaleChannels: "scale",
	GrayCollapse:      "collapse",
}

func (m GrayMode) String() string {
	if name, ok := grayModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("GrayMode(%d)", uint8(m))
}

// ParseGrayMode resolves "replicate", "scale" or "collapse".
func ParseGrayMode(name string) (GrayMode, error) {
	cleaned := strings.ToLower(strings.TrimSpace(name))
	for mode, n := range grayModeNames {
		if n == cleaned {
			return mode, nil
		}
	}
	return 0, services.Wrap(services.ErrValidation, "effects", "grayscale", fmt.Sprintf("unknown mode %q", name), nil)
}

// Luma weights R, G and B by 0.30, 0.59 and 0.11, truncating once.
func Luma(r, g, b uint8) uint8 {
	return uint8((30*uint32(r) + 59*uint32(g) + 11*uint32(b)) / 100)
}

// Grayscale builds a luma stage over upstream, which must carry red, green
// and blue channels.
func Grayscale(upstream frame.Sequence, mode GrayMode) (*Stage, error) {
	in := upstream.Shape()
	if !in.Format.IsRGBLike() {
		return nil, services.Wrap(services.ErrUnsupportedFormat, "effects", "grayscale",
			fmt.Sprintf("%s has no colour channels", in.Format), nil)
	}
	ri, gi, bi := in.Format.Index(pixel.Red), in.Format.Index(pixel.Green), in.Format.Index(pixel.Blue)

	stage := &Stage{name: "grayscale", upstream: upstream, shape: in}
	switch mode {
	case GrayReplicate:
		stage.apply = func(f *frame.Frame) (*frame.Frame, error) {
			return f.Transform(func(px []byte) {
				y := Luma(px[ri], px[gi], px[bi])
				px[ri], px[gi], px[bi] = y, y, y
			}), nil
		}
	case GrayScaleChannels:
		stage.apply = func(f *frame.Frame) (*frame.Frame, error) {
			return f.Transform(func(px []byte) {
				px[ri] = uint8(30 * uint32(px[ri]) / 100)
				px[gi] = uint8(59 * uint32(px[gi]) / 100)
				px[bi] = uint8(11 * uint32(px[bi]) / 100)
			}), nil
		}
	case GrayCollapse:
		stage.shape = frame.Shape{Width: in.Width, Height: in.Height, Format: pixel.Gray}
		stage.apply = func(f *frame.Frame) (*frame.Frame, error) {
			return f.Convert(pixel.Gray, func(dst, src []byte) {
				dst[0] = Luma(src[ri], src[gi], src[bi])
			})
		}
	default:
		return nil, services.Wrap(services.ErrValidation, "effects", "grayscale", fmt.Sprintf("unknown mode %d", mode), nil)
	}
	return stage, nil
}
