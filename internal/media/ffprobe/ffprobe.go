package ffprobe

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"

	"reel/internal/services"
)

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
	raw     []byte
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index        int    `json:"index"`
	CodecName    string `json:"codec_name"`
	CodecType    string `json:"codec_type"`
	CodecTag     string `json:"codec_tag_string"`
	Duration     string `json:"duration"`
	BitRate      string `json:"bit_rate"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	PixFmt       string `json:"pix_fmt"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
	NBFrames     string `json:"nb_frames"`
	SampleRate   string `json:"sample_rate"`
	Channels     int    `json:"channels"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
	FormatName string `json:"format_name"`
}

// Metadata is the video description consumed by the frame pipeline.
type Metadata struct {
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	DurationSeconds float64 `json:"duration_seconds"`
	PixelFormat     string  `json:"pixel_format"`
	FPS             float64 `json:"fps"`
	FrameCount      int     `json:"frame_count"`
}

// Inspect executes ffprobe against the provided path and decodes the JSON response.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path) //nolint:gosec
	output, err := cmd.Output()
	if err != nil {
		detail := ""
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			detail = strings.TrimSpace(string(exitErr.Stderr))
		}
		return Result{}, fmt.Errorf("ffprobe inspect: %w: %s", err, detail)
	}
	return Parse(output)
}

// Parse decodes an ffprobe JSON payload.
func Parse(payload []byte) (Result, error) {
	var result Result
	if err := sonic.Unmarshal(payload, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	result.raw = append([]byte(nil), payload...)
	return result, nil
}

// Probe inspects path and reduces the result to Metadata. Every failure is
// tagged with services.ErrMetadataUnavailable.
func Probe(ctx context.Context, binary string, path string) (Metadata, error) {
	result, err := Inspect(ctx, binary, path)
	if err != nil {
		return Metadata{}, services.Wrap(services.ErrMetadataUnavailable, "ffprobe", "inspect", path, err)
	}
	return result.Metadata()
}

// RawJSON returns the raw ffprobe JSON payload.
func (r Result) RawJSON() []byte {
	return append([]byte(nil), r.raw...)
}

// VideoStreamCount returns the number of video streams discovered.
func (r Result) VideoStreamCount() int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "video") {
			count++
		}
	}
	return count
}

// AudioStreamCount returns the number of audio streams discovered.
func (r Result) AudioStreamCount() int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			count++
		}
	}
	return count
}

// Video returns the first video stream.
func (r Result) Video() (Stream, bool) {
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "video") {
			return stream, true
		}
	}
	return Stream{}, false
}

// DurationSeconds returns the container duration in seconds, or 0 when unavailable.
func (r Result) DurationSeconds() float64 {
	return parseFloat(r.Format.Duration)
}

// SizeBytes returns the reported container size in bytes, or 0 when unavailable.
func (r Result) SizeBytes() int64 {
	size := parseFloat(r.Format.Size)
	if math.IsNaN(size) || size < 0 {
		return 0
	}
	return int64(size)
}

// BitRate returns the container bitrate in bits per second, or 0 when unavailable.
func (r Result) BitRate() int64 {
	rate := parseFloat(r.Format.BitRate)
	if math.IsNaN(rate) || rate < 0 {
		return 0
	}
	return int64(rate)
}

// Metadata reduces the first video stream to the fields the pipeline needs.
// Stream duration falls back to the container duration; the frame rate prefers
// avg_frame_rate, then r_frame_rate, then nb_frames/duration; the frame count
// falls back to ceil(duration*fps).
func (r Result) Metadata() (Metadata, error) {
	video, ok := r.Video()
	if !ok {
		return Metadata{}, services.Wrap(services.ErrMetadataUnavailable, "ffprobe", "metadata", "no video stream", nil)
	}
	if video.Width <= 0 || video.Height <= 0 {
		return Metadata{}, services.Wrap(services.ErrMetadataUnavailable, "ffprobe", "metadata", "no video dimensions", nil)
	}

	duration := positive(parseFloat(video.Duration))
	if duration == 0 {
		duration = positive(r.DurationSeconds())
	}
	if duration == 0 {
		return Metadata{}, services.Wrap(services.ErrMetadataUnavailable, "ffprobe", "metadata", "no video duration", nil)
	}

	frames := int(positive(parseFloat(video.NBFrames)))
	fps := positive(parseRate(video.AvgFrameRate))
	if fps == 0 {
		fps = positive(parseRate(video.RFrameRate))
	}
	if fps == 0 && frames > 0 {
		fps = float64(frames) / duration
	}
	if fps == 0 {
		return Metadata{}, services.Wrap(services.ErrMetadataUnavailable, "ffprobe", "metadata", "no video frame rate", nil)
	}
	if frames == 0 {
		frames = int(math.Ceil(duration*fps - 1e-6))
	}

	return Metadata{
		Width:           video.Width,
		Height:          video.Height,
		DurationSeconds: duration,
		PixelFormat:     strings.TrimSpace(video.PixFmt),
		FPS:             fps,
		FrameCount:      frames,
	}, nil
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}

// parseRate parses ffprobe rationals such as "30000/1001". "0/0" yields 0.
func parseRate(value string) float64 {
	num, den, found := strings.Cut(strings.TrimSpace(value), "/")
	if !found {
		return parseFloat(num)
	}
	n, d := parseFloat(num), parseFloat(den)
	if d == 0 || math.IsNaN(n) || math.IsNaN(d) {
		return 0
	}
	return n / d
}

func positive(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0
	}
	return v
}
