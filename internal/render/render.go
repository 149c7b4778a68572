package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"reel/internal/ffmpeg"
	"reel/internal/frame"
	"reel/internal/logging"
	"reel/internal/services"
)

// FrameWriter consumes frames. *ffmpeg.Sink implements it.
type FrameWriter interface {
	Write(ctx context.Context, f *frame.Frame) error
}

// FrameSink is a FrameWriter that must be closed to finish the output.
type FrameSink interface {
	FrameWriter
	Close() error
}

// SinkOpener starts an encoder for req.
type SinkOpener func(ctx context.Context, req ffmpeg.SinkRequest) (FrameSink, error)

// Progress is reported after every written frame.
type Progress struct {
	Frames  int
	Total   int
	Known   bool
	Elapsed time.Duration
}

// Percent returns completion in [0, 100], or -1 when the total is unknown.
func (p Progress) Percent() float64 {
	if !p.Known || p.Total <= 0 {
		return -1
	}
	return min(float64(p.Frames)*100/float64(p.Total), 100)
}

// Stats summarizes a finished run.
type Stats struct {
	RunID   string
	Output  string
	Frames  int
	Elapsed time.Duration
}

// Request describes an output file.
type Request struct {
	Output string
	FPS    float64
}

// Option configures Run and ToFile.
type Option func(*settings)

type settings struct {
	logger     *slog.Logger
	progress   func(Progress)
	opener     SinkOpener
	sinkOpts   []ffmpeg.Option
	runID      string
	bucketSize float64
}

// WithLogger sets the logger for progress and lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithProgress registers a callback invoked after every frame.
func WithProgress(fn func(Progress)) Option {
	return func(s *settings) { s.progress = fn }
}

// WithSinkOpener replaces the ffmpeg encoder (primarily for tests).
func WithSinkOpener(open SinkOpener) Option {
	return func(s *settings) {
		if open != nil {
			s.opener = open
		}
	}
}

// WithSinkOptions passes options to the ffmpeg.Sink opened by ToFile.
func WithSinkOptions(opts ...ffmpeg.Option) Option {
	return func(s *settings) { s.sinkOpts = append(s.sinkOpts, opts...) }
}

// WithRunID fixes the run identifier instead of generating one.
func WithRunID(id string) Option {
	return func(s *settings) { s.runID = strings.TrimSpace(id) }
}

// WithProgressBucket sets the percentage step between progress log lines.
func WithProgressBucket(percent float64) Option {
	return func(s *settings) { s.bucketSize = percent }
}

func buildSettings(opts []Option) settings {
	s := settings{bucketSize: 10}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	if s.opener == nil {
		sinkOpts := append([]ffmpeg.Option{ffmpeg.WithLogger(s.logger)}, s.sinkOpts...)
		s.opener = func(ctx context.Context, req ffmpeg.SinkRequest) (FrameSink, error) {
			return ffmpeg.OpenSink(ctx, req, sinkOpts...)
		}
	}
	return s
}

// Run pulls frames from seq and writes each to w until seq is exhausted or
// an error occurs. It closes neither seq nor w.
func Run(ctx context.Context, seq frame.Sequence, w FrameWriter, opts ...Option) (Stats, error) {
	s := buildSettings(opts)
	logger := logging.NewComponentLogger(logging.WithContext(ctx, s.logger), "render")
	sampler := logging.NewProgressSampler(s.bucketSize)
	runID, _ := services.RunIDFromContext(ctx)

	started := time.Now()
	stats := Stats{RunID: runID}
	total, known := seq.Remaining()
	for {
		f, err := seq.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			stats.Elapsed = time.Since(started)
			return stats, fmt.Errorf("read frame %d: %w", stats.Frames, err)
		}
		if err := w.Write(ctx, f); err != nil {
			stats.Elapsed = time.Since(started)
			return stats, fmt.Errorf("write frame %d: %w", stats.Frames, err)
		}
		stats.Frames++

		progress := Progress{Frames: stats.Frames, Total: total, Known: known, Elapsed: time.Since(started)}
		if s.progress != nil {
			s.progress(progress)
		}
		if pct := progress.Percent(); pct >= 0 && sampler.ShouldLog(pct, "render") {
			logger.Info("render progress",
				logging.Float64(logging.FieldProgressPercent, pct),
				logging.Int("frames", stats.Frames),
				logging.Int("frame_total", total),
			)
		}
	}
	stats.Elapsed = time.Since(started)
	return stats, nil
}

// ToFile encodes seq into req.Output and closes seq. The output path is
// locked for the duration of the run; a concurrent render of the same path
// fails with services.ErrValidation.
func ToFile(ctx context.Context, seq frame.Sequence, req Request, opts ...Option) (stats Stats, err error) {
	defer func() {
		if cerr := seq.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	s := buildSettings(opts)
	output := strings.TrimSpace(req.Output)
	if output == "" {
		return Stats{}, services.Wrap(services.ErrValidation, "render", "open", "empty output path", nil)
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return Stats{}, services.Wrap(services.ErrValidation, "render", "open", "create output directory", err)
	}

	lock := flock.New(output + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return Stats{}, fmt.Errorf("acquire output lock: %w", err)
	}
	if !ok {
		return Stats{}, services.Wrap(services.ErrValidation, "render", "lock", fmt.Sprintf("another render is writing %s", output), nil)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lock.Path())
	}()

	runID := s.runID
	if runID == "" {
		runID = uuid.NewString()
	}
	ctx = services.WithStage(services.WithRunID(ctx, runID), "render")
	logger := logging.NewComponentLogger(logging.WithContext(ctx, s.logger), "render")

	shape := seq.Shape()
	sink, err := s.opener(ctx, ffmpeg.SinkRequest{Path: output, Shape: shape, FPS: req.FPS})
	if err != nil {
		return Stats{RunID: runID, Output: output}, err
	}
	logger.Info("render started",
		logging.String("output", output),
		logging.String("shape", shape.String()),
		logging.Float64("fps", req.FPS),
	)

	stats, err = Run(ctx, seq, sink, opts...)
	stats.Output = output
	closeErr := sink.Close()
	if err != nil {
		logging.ErrorWithContext(logger, "render failed", "render_failed",
			logging.String("output", output),
			logging.Int("frames", stats.Frames),
			logging.Error(err),
		)
		return stats, err
	}
	if closeErr != nil {
		return stats, closeErr
	}
	logger.Info("render finished",
		logging.String("output", output),
		logging.Int("frames", stats.Frames),
		logging.Duration("render_duration", stats.Elapsed),
	)
	return stats, nil
}
