package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"time"

	"reel/internal/frame"
	"reel/internal/logging"
	"reel/internal/services"
)

// SinkRequest describes an encode.
type SinkRequest struct {
	Path  string
	Shape frame.Shape
	FPS   float64
}

// Sink writes raw frames to an ffmpeg encoder. It is not safe for concurrent
// use.
type Sink struct {
	path    string
	shape   frame.Shape
	fps     float64
	proc    Process
	stdin   io.WriteCloser
	tail    *tailBuffer
	logger  *slog.Logger
	timeout time.Duration
	finish  time.Duration

	written int
	closed  bool
	err     error
	// pending is set while err has not been returned to the caller yet.
	pending bool
}

// OpenSink spawns an encoder writing req.Path.
func OpenSink(ctx context.Context, req SinkRequest, opts ...Option) (*Sink, error) {
	if err := req.Shape.Validate(); err != nil {
		return nil, err
	}
	if math.IsNaN(req.FPS) || math.IsInf(req.FPS, 0) || req.FPS <= 0 {
		return nil, services.Wrap(services.ErrValidation, "encode", "open", fmt.Sprintf("invalid frame rate %v", req.FPS), nil)
	}
	if strings.TrimSpace(req.Path) == "" {
		return nil, services.Wrap(services.ErrValidation, "encode", "open", "empty output path", nil)
	}

	o := buildOptions(opts)
	logger := logging.NewComponentLogger(logging.WithContext(ctx, o.logger), "ffmpeg.encode")
	tail := newTailBuffer(0)
	args := EncodeArgs(req.Path, req.Shape, req.FPS, o.encoder)
	proc, err := o.launcher.Launch(ctx, o.binary, args, Streams{Stdin: true, Stderr: tail})
	if err != nil {
		return nil, services.Wrap(services.ErrSpawnFailure, "encode", "spawn", o.binary, err)
	}
	logger.Debug("encoder started",
		logging.String("path", req.Path),
		logging.String("shape", req.Shape.String()),
		logging.Float64("fps", req.FPS),
		logging.String("args", strings.Join(args, " ")),
	)
	finish := o.finishTimeout
	if finish == 0 {
		finish = o.writeTimeout
	}
	return &Sink{
		path:    req.Path,
		shape:   req.Shape,
		fps:     req.FPS,
		proc:    proc,
		stdin:   proc.Stdin(),
		tail:    tail,
		logger:  logger,
		timeout: o.writeTimeout,
		finish:  finish,
	}, nil
}

func (s *Sink) Shape() frame.Shape { return s.shape }
func (s *Sink) FPS() float64       { return s.fps }

// Written returns how many frames the encoder has accepted.
func (s *Sink) Written() int { return s.written }

// WriteFrame hands one raw frame to the encoder, blocking until it is fully
// written. When the encoder fails the error carries its stderr output.
func (s *Sink) WriteFrame(ctx context.Context, buf []byte) error {
	if s.closed {
		return services.Wrap(services.ErrWriteFailure, "encode", "write frame", "sink closed", nil)
	}
	if s.err != nil {
		s.pending = false
		return s.err
	}
	if want := s.shape.FrameSize(); len(buf) != want {
		return services.Wrap(services.ErrSizeMismatch, "encode", "write frame",
			fmt.Sprintf("buffer has %d bytes, %s needs %d", len(buf), s.shape, want), nil)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	guard := watch(ctx, s.proc, s.timeout)
	_, err := s.stdin.Write(buf)
	interrupted := guard.stop()
	if err == nil && interrupted == nil {
		s.written++
		return nil
	}
	if err == nil && errors.Is(interrupted, errDeadline) {
		// The frame was accepted as the deadline fired and the encoder was
		// killed. The frame counts; the timeout surfaces on the next call.
		s.written++
		s.abort(false)
		s.err = services.Wrap(services.ErrTimeout, "encode", "write frame",
			fmt.Sprintf("encoder killed at the %s deadline after frame %d; %s", s.timeout, s.written, diagnostic(s.tail)), nil)
		s.pending = true
		s.warnFailed()
		return nil
	}

	s.abort(interrupted != nil)
	switch {
	case errors.Is(interrupted, errDeadline):
		s.err = services.Wrap(services.ErrTimeout, "encode", "write frame",
			fmt.Sprintf("frame %d not accepted within %s; %s", s.written, s.timeout, diagnostic(s.tail)), nil)
	case interrupted != nil:
		s.err = interrupted
	default:
		s.err = services.Wrap(services.ErrWriteFailure, "encode", "write frame",
			fmt.Sprintf("frame %d: %s", s.written, diagnostic(s.tail)), err)
	}
	s.warnFailed()
	return s.err
}

func (s *Sink) warnFailed() {
	logging.WarnWithContext(s.logger, "encoder write failed", "encode_failed",
		logging.String("path", s.path),
		logging.Int("frames", s.written),
		logging.Error(s.err),
		logging.String(logging.FieldErrorHint, "inspect the encoder diagnostics in the error"),
		logging.String(logging.FieldImpact, "output file is incomplete"),
	)
}

// Write checks f against the sink's shape and writes its buffer.
func (s *Sink) Write(ctx context.Context, f *frame.Frame) error {
	if f == nil {
		return services.Wrap(services.ErrValidation, "encode", "write frame", "nil frame", nil)
	}
	if f.Shape() != s.shape {
		return services.Wrap(services.ErrSizeMismatch, "encode", "write frame",
			fmt.Sprintf("frame is %s, sink expects %s", f.Shape(), s.shape), nil)
	}
	return s.WriteFrame(ctx, f.Raw())
}

// Close signals end of stream and waits for the encoder to exit. A non-zero
// exit is reported as services.ErrWriteFailure; an encoder still running when
// the finish timeout elapses is killed and reported as services.ErrTimeout.
// It is safe to call more than once. After a failure that a write already
// returned, Close returns nil.
func (s *Sink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.err != nil {
		if s.pending {
			s.pending = false
			return s.err
		}
		return nil
	}
	cerr := s.stdin.Close()
	guard := watch(context.Background(), s.proc, s.finish)
	werr := s.proc.Wait()
	interrupted := guard.stop()
	if werr != nil {
		if errors.Is(interrupted, errDeadline) {
			return services.Wrap(services.ErrTimeout, "encode", "finish",
				fmt.Sprintf("encoder did not exit within %s; %s", s.finish, diagnostic(s.tail)), nil)
		}
		return services.Wrap(services.ErrWriteFailure, "encode", "finish", diagnostic(s.tail), werr)
	}
	if cerr != nil && !errors.Is(cerr, io.ErrClosedPipe) {
		return services.Wrap(services.ErrWriteFailure, "encode", "close input", s.path, cerr)
	}
	s.logger.Info("encoder finished",
		logging.String("path", s.path),
		logging.Int("frames", s.written),
	)
	return nil
}

// abort ends the encoder after a failed write, draining its stderr to EOF.
func (s *Sink) abort(kill bool) {
	if kill {
		_ = s.proc.Kill()
	}
	_ = s.stdin.Close()
	_ = s.proc.Wait()
}
