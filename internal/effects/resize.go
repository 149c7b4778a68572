package effects

import (
	"fmt"
	"image"
	"math"
	"strings"

	"golang.org/x/image/draw"

	"reel/internal/frame"
	"reel/internal/pixel"
	"reel/internal/services"
)

// Filter selects the resampling kernel used by Resize.
type Filter uint8

const (
	Lanczos3 Filter = iota
	CatmullRom
	Bilinear
	Nearest
)

var filterNames = map[Filter]string{
	Lanczos3:   "lanczos3",
	CatmullRom: "catmullrom",
	Bilinear:   "bilinear",
	Nearest:    "nearest",
}

func (f Filter) String() string {
	if name, ok := filterNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Filter(%d)", uint8(f))
}

// ParseFilter resolves a filter name.
func ParseFilter(name string) (Filter, error) {
	cleaned := strings.ToLower(strings.TrimSpace(name))
	for f, n := range filterNames {
		if n == cleaned {
			return f, nil
		}
	}
	return 0, services.Wrap(services.ErrValidation, "effects", "resize", fmt.Sprintf("unknown filter %q", name), nil)
}

// lanczos3 is the three-lobe windowed sinc kernel.
var lanczos3 = &draw.Kernel{
	Support: 3,
	At: func(t float64) float64 {
		t = math.Abs(t)
		if t == 0 {
			return 1
		}
		if t >= 3 {
			return 0
		}
		x := math.Pi * t
		return 3 * math.Sin(x) * math.Sin(x/3) / (x * x)
	},
}

func (f Filter) scaler() (draw.Scaler, error) {
	switch f {
	case Lanczos3:
		return lanczos3, nil
	case CatmullRom:
		return draw.CatmullRom, nil
	case Bilinear:
		return draw.BiLinear, nil
	case Nearest:
		return draw.NearestNeighbor, nil
	default:
		return nil, services.Wrap(services.ErrValidation, "effects", "resize", fmt.Sprintf("unknown filter %d", f), nil)
	}
}

// Resize builds a stage producing exactly w x h frames. Aspect ratio is not
// preserved.
func Resize(upstream frame.Sequence, w, h int, filter Filter) (*Stage, error) {
	in := upstream.Shape()
	if w <= 0 || h <= 0 || w > frame.MaxDimension || h > frame.MaxDimension {
		return nil, services.Wrap(services.ErrValidation, "effects", "resize", fmt.Sprintf("invalid size %dx%d", w, h), nil)
	}
	scaler, err := filter.scaler()
	if err != nil {
		return nil, err
	}
	out := frame.Shape{Width: w, Height: h, Format: in.Format}
	stage := &Stage{name: "resize", upstream: upstream, shape: out}
	if w == in.Width && h == in.Height {
		stage.apply = func(f *frame.Frame) (*frame.Frame, error) { return f, nil }
		return stage, nil
	}

	switch {
	case in.Format == pixel.Gray:
		stage.apply = func(f *frame.Frame) (*frame.Frame, error) {
			src := &image.Gray{Pix: f.Raw(), Stride: in.Width, Rect: image.Rect(0, 0, in.Width, in.Height)}
			dst := image.NewGray(image.Rect(0, 0, w, h))
			scaler.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
			return frame.New(dst.Pix, w, h, in.Format)
		}
	case in.Format.HasAlpha():
		stage.apply = func(f *frame.Frame) (*frame.Frame, error) {
			src := &image.NRGBA{Pix: f.Raw(), Stride: in.Width * 4, Rect: image.Rect(0, 0, in.Width, in.Height)}
			dst := image.NewRGBA(image.Rect(0, 0, w, h))
			scaler.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
			unpremultiply(dst.Pix)
			return frame.New(dst.Pix, w, h, in.Format)
		}
	case in.Format.Channels() == 3:
		// Three-channel layouts are resampled channel-wise, so their order
		// does not matter: they ride in the first three NRGBA slots.
		stage.apply = func(f *frame.Frame) (*frame.Frame, error) {
			src := image.NewNRGBA(image.Rect(0, 0, in.Width, in.Height))
			pack3(src.Pix, f.Raw())
			dst := image.NewRGBA(image.Rect(0, 0, w, h))
			scaler.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
			buf := make([]byte, out.FrameSize())
			unpack3(buf, dst.Pix)
			return frame.New(buf, w, h, in.Format)
		}
	default:
		return nil, services.Wrap(services.ErrUnsupportedFormat, "effects", "resize", in.Format.String(), nil)
	}
	return stage, nil
}

func pack3(dst, src []byte) {
	for i, j := 0, 0; j+2 < len(src); i, j = i+4, j+3 {
		dst[i], dst[i+1], dst[i+2], dst[i+3] = src[j], src[j+1], src[j+2], 0xff
	}
}

func unpack3(dst, src []byte) {
	for i, j := 0, 0; i+2 < len(dst); i, j = i+3, j+4 {
		dst[i], dst[i+1], dst[i+2] = src[j], src[j+1], src[j+2]
	}
}

// unpremultiply converts premultiplied RGBA bytes back to straight alpha.
func unpremultiply(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		a := uint32(pix[i+3])
		if a == 0 || a == 0xff {
			continue
		}
		for c := range 3 {
			v := (uint32(pix[i+c])*0xff + a/2) / a
			pix[i+c] = uint8(min(v, 0xff))
		}
	}
}
