package clip

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"

	"reel/internal/ffmpeg"
	"reel/internal/frame"
	"reel/internal/logging"
	"reel/internal/media/ffprobe"
	"reel/internal/pixel"
	"reel/internal/services"
)

// frameEpsilon absorbs floating point error when converting a duration to a
// frame count, so 2s at 25fps is 50 frames and not 51.
const frameEpsilon = 1e-6

// MetadataProvider describes a video file.
type MetadataProvider interface {
	Probe(ctx context.Context, path string) (ffprobe.Metadata, error)
}

// ProbeFunc adapts a function to MetadataProvider.
type ProbeFunc func(ctx context.Context, path string) (ffprobe.Metadata, error)

func (f ProbeFunc) Probe(ctx context.Context, path string) (ffprobe.Metadata, error) {
	return f(ctx, path)
}

// FFprobe is the default MetadataProvider.
type FFprobe struct {
	Binary string
}

func (p FFprobe) Probe(ctx context.Context, path string) (ffprobe.Metadata, error) {
	return ffprobe.Probe(ctx, p.Binary, path)
}

// SourceOpener starts a frame sequence for a decode request.
type SourceOpener func(ctx context.Context, req ffmpeg.SourceRequest) (frame.Sequence, error)

// Option configures Open.
type Option func(*settings)

type settings struct {
	provider  MetadataProvider
	opener    SourceOpener
	format    pixel.Format
	logger    *slog.Logger
	sourceOps []ffmpeg.Option
}

// WithMetadataProvider replaces ffprobe.
func WithMetadataProvider(p MetadataProvider) Option {
	return func(s *settings) {
		if p != nil {
			s.provider = p
		}
	}
}

// WithSourceOpener replaces the ffmpeg decoder (primarily for tests).
func WithSourceOpener(open SourceOpener) Option {
	return func(s *settings) {
		if open != nil {
			s.opener = open
		}
	}
}

// WithSourceOptions passes options to every ffmpeg.Source the clip opens.
func WithSourceOptions(opts ...ffmpeg.Option) Option {
	return func(s *settings) {
		s.sourceOps = append(s.sourceOps, opts...)
	}
}

// WithFormat overrides the decode layout chosen from the source pix_fmt.
func WithFormat(format pixel.Format) Option {
	return func(s *settings) {
		s.format = format
	}
}

// WithLogger sets the clip logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// Clip is a video file, or a time window of one.
type Clip struct {
	path     string
	meta     ffprobe.Metadata
	format   pixel.Format
	start    time.Duration
	duration time.Duration
	windowed bool

	opener SourceOpener
	logger *slog.Logger
}

// Open probes path and returns a Clip spanning the whole file.
func Open(ctx context.Context, path string, opts ...Option) (*Clip, error) {
	s := settings{provider: FFprobe{}}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	if s.opener == nil {
		sourceOps := append([]ffmpeg.Option{ffmpeg.WithLogger(s.logger)}, s.sourceOps...)
		s.opener = func(ctx context.Context, req ffmpeg.SourceRequest) (frame.Sequence, error) {
			return ffmpeg.OpenSource(ctx, req, sourceOps...)
		}
	}

	if strings.TrimSpace(path) == "" {
		return nil, services.Wrap(services.ErrFileNotFound, "clip", "open", "empty path", nil)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, services.Wrap(services.ErrFileNotFound, "clip", "open", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, services.Wrap(services.ErrFileNotFound, "clip", "open", path+" is not a regular file", nil)
	}

	meta, err := s.provider.Probe(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := checkMetadata(meta); err != nil {
		return nil, services.Wrap(services.ErrMetadataUnavailable, "clip", "open", path, err)
	}

	format := s.format
	if !format.Valid() {
		format = pixel.ForSource(meta.PixelFormat)
	}
	c := &Clip{
		path:     path,
		meta:     meta,
		format:   format,
		duration: seconds(meta.DurationSeconds),
		opener:   s.opener,
		logger:   logging.NewComponentLogger(s.logger, "clip"),
	}
	logging.WithContext(ctx, c.logger).Debug("clip opened",
		logging.String("path", path),
		logging.String("shape", c.Shape().String()),
		logging.Float64("fps", meta.FPS),
		logging.Duration("duration", c.duration),
		logging.String("source_pix_fmt", meta.PixelFormat),
	)
	return c, nil
}

func checkMetadata(meta ffprobe.Metadata) error {
	var missing []string
	if meta.Width <= 0 || meta.Height <= 0 {
		missing = append(missing, "dimensions")
	}
	if !(meta.FPS > 0) || math.IsInf(meta.FPS, 0) {
		missing = append(missing, "frame rate")
	}
	if !(meta.DurationSeconds > 0) || math.IsInf(meta.DurationSeconds, 0) {
		missing = append(missing, "duration")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing %s", strings.Join(missing, ", "))
	}
	return nil
}

func seconds(v float64) time.Duration {
	return time.Duration(math.Round(v * float64(time.Second)))
}

func (c *Clip) Path() string               { return c.path }
func (c *Clip) FPS() float64               { return c.meta.FPS }
func (c *Clip) Metadata() ffprobe.Metadata { return c.meta }
func (c *Clip) Start() time.Duration       { return c.start }
func (c *Clip) Duration() time.Duration    { return c.duration }
func (c *Clip) Windowed() bool             { return c.windowed }

// Shape is the geometry frames are decoded to.
func (c *Clip) Shape() frame.Shape {
	return frame.Shape{Width: c.meta.Width, Height: c.meta.Height, Format: c.format}
}

// SeekTimecode renders Start as HH:MM:SS[.mmm].
func (c *Clip) SeekTimecode() string {
	return ffmpeg.FormatTimecode(c.start)
}

// FrameCap is the number of frames the clip spans. For a window it is
// ceil(duration*fps), clamped to the frames left after Start.
func (c *Clip) FrameCap() int {
	total := c.meta.FrameCount
	if total <= 0 {
		total = frameCount(c.meta.DurationSeconds, c.meta.FPS)
	}
	if !c.windowed {
		return total
	}
	n := frameCount(c.duration.Seconds(), c.meta.FPS)
	skipped := int(math.Floor(c.start.Seconds()*c.meta.FPS + frameEpsilon))
	return max(min(n, total-skipped), 0)
}

func frameCount(duration, fps float64) int {
	return int(math.Ceil(duration*fps - frameEpsilon))
}

// Subclip returns the window [start, start+duration) of c. start is relative
// to c's own window and the result must fit inside it.
func (c *Clip) Subclip(start, duration time.Duration) (*Clip, error) {
	if start < 0 || duration <= 0 || start+duration > c.duration {
		return nil, services.Wrap(services.ErrValidation, "clip", "subclip",
			fmt.Sprintf("window %s+%s outside clip of %s", start, duration, c.duration), nil)
	}
	sub := *c
	sub.start = c.start + start
	sub.duration = duration
	sub.windowed = true
	return &sub, nil
}

// Frames spawns a decoder for the clip's window.
func (c *Clip) Frames(ctx context.Context) (frame.Sequence, error) {
	req := ffmpeg.SourceRequest{
		Path:     c.path,
		Shape:    c.Shape(),
		Seek:     c.start,
		FrameCap: c.FrameCap(),
	}
	seq, err := c.opener(ctx, req)
	if err != nil {
		return nil, err
	}
	logging.WithContext(ctx, c.logger).Debug("clip frames opened",
		logging.String("path", c.path),
		logging.String("seek", c.SeekTimecode()),
		logging.Int("frame_cap", req.FrameCap),
	)
	return seq, nil
}
