package ffmpeg

import (
	"fmt"
	"strconv"
	"time"

	"reel/internal/frame"
)

// Encoder selects the output codec settings. An empty Codec means libx264;
// an empty Preset or PixelFormat omits the corresponding argument.
type Encoder struct {
	Codec       string
	Preset      string
	PixelFormat string
}

// DefaultEncoder returns the settings used when none are configured.
func DefaultEncoder() Encoder {
	return Encoder{Codec: "libx264", Preset: "medium", PixelFormat: "yuv420p"}
}

// DecodeArgs builds the decoder command line for path. The decoder emits
// rawvideo frames of shape on stdout; the frame cap is enforced by the
// reader, not passed to ffmpeg.
func DecodeArgs(path string, shape frame.Shape, seek time.Duration) []string {
	args := []string{"-hide_banner", "-loglevel", "error"}
	if seek > 0 {
		args = append(args, "-ss", FormatTimecode(seek))
	}
	return append(args,
		"-i", path,
		"-an", "-sn", "-dn",
		"-f", "rawvideo",
		"-pix_fmt", shape.Format.Name(),
		"-vf", fmt.Sprintf("scale=%d:%d", shape.Width, shape.Height),
		"-sws_flags", "bicubic",
		"-vcodec", "rawvideo",
		"-",
	)
}

// EncodeArgs builds the encoder command line writing path from rawvideo
// frames of shape on stdin.
func EncodeArgs(path string, shape frame.Shape, fps float64, enc Encoder) []string {
	codec := enc.Codec
	if codec == "" {
		codec = "libx264"
	}
	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-f", "rawvideo",
		"-pix_fmt", shape.Format.Name(),
		"-s", fmt.Sprintf("%dx%d", shape.Width, shape.Height),
		"-r", strconv.FormatFloat(fps, 'f', 2, 64),
		"-an",
		"-i", "-",
		"-vcodec", codec,
	}
	if enc.Preset != "" {
		args = append(args, "-preset", enc.Preset)
	}
	if enc.PixelFormat != "" {
		args = append(args, "-pix_fmt", enc.PixelFormat)
	}
	return append(args, path)
}

// FormatTimecode renders d as HH:MM:SS, with a .mmm suffix when d has a
// millisecond component. Negative durations render as zero.
func FormatTimecode(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	h := ms / 3_600_000
	m := ms / 60_000 % 60
	s := ms / 1000 % 60
	frac := ms % 1000
	if frac == 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, frac)
}
