package effects

import (
	"fmt"

	"reel/internal/frame"
	"reel/internal/services"
)

// Crop builds a stage that keeps the w x h rectangle whose top-left corner is
// (x, y). The rectangle must lie inside the upstream frame; it is never
// clamped.
func Crop(upstream frame.Sequence, x, y, w, h int) (*Stage, error) {
	in := upstream.Shape()
	if x < 0 || y < 0 || w <= 0 || h <= 0 || w > in.Width-x || h > in.Height-y {
		return nil, services.Wrap(services.ErrValidation, "effects", "crop",
			fmt.Sprintf("rectangle %dx%d at (%d,%d) outside %dx%d frame", w, h, x, y, in.Width, in.Height), nil)
	}
	out := frame.Shape{Width: w, Height: h, Format: in.Format}
	c := in.Format.Channels()
	return &Stage{
		name:     "crop",
		upstream: upstream,
		shape:    out,
		apply: func(f *frame.Frame) (*frame.Frame, error) {
			buf := make([]byte, 0, out.FrameSize())
			for row := y; row < y+h; row++ {
				buf = append(buf, f.Row(row)[x*c:(x+w)*c]...)
			}
			return frame.New(buf, w, h, in.Format)
		},
	}, nil
}
