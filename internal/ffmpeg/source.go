package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"reel/internal/frame"
	"reel/internal/logging"
	"reel/internal/services"
)

// SourceRequest describes a decode.
type SourceRequest struct {
	Path string
	// Shape is the geometry the decoder scales and converts every frame to.
	Shape frame.Shape
	// Seek is passed to the decoder as -ss when positive.
	Seek time.Duration
	// FrameCap is the maximum number of frames ReadFrame returns.
	FrameCap int
}

// Source reads raw frames from an ffmpeg decoder. It is not safe for
// concurrent use.
type Source struct {
	path    string
	shape   frame.Shape
	proc    Process
	stdout  io.ReadCloser
	tail    *tailBuffer
	logger  *slog.Logger
	timeout time.Duration

	emitted  int
	frameCap int
	finished bool
	reaped   bool
	err      error
}

// OpenSource spawns a decoder for req.
func OpenSource(ctx context.Context, req SourceRequest, opts ...Option) (*Source, error) {
	if err := req.Shape.Validate(); err != nil {
		return nil, err
	}
	if req.FrameCap < 0 {
		return nil, services.Wrap(services.ErrValidation, "decode", "open", fmt.Sprintf("negative frame cap %d", req.FrameCap), nil)
	}
	if req.Seek < 0 {
		return nil, services.Wrap(services.ErrValidation, "decode", "open", fmt.Sprintf("negative seek %s", req.Seek), nil)
	}
	if err := requireRegularFile(req.Path); err != nil {
		return nil, err
	}

	o := buildOptions(opts)
	logger := logging.NewComponentLogger(logging.WithContext(ctx, o.logger), "ffmpeg.decode")
	tail := newTailBuffer(0)
	args := DecodeArgs(req.Path, req.Shape, req.Seek)
	proc, err := o.launcher.Launch(ctx, o.binary, args, Streams{Stdout: true, Stderr: tail})
	if err != nil {
		return nil, services.Wrap(services.ErrSpawnFailure, "decode", "spawn", o.binary, err)
	}
	logger.Debug("decoder started",
		logging.String("path", req.Path),
		logging.String("shape", req.Shape.String()),
		logging.Int("frame_cap", req.FrameCap),
		logging.String("args", strings.Join(args, " ")),
	)
	return &Source{
		path:     req.Path,
		shape:    req.Shape,
		proc:     proc,
		stdout:   proc.Stdout(),
		tail:     tail,
		logger:   logger,
		timeout:  o.readTimeout,
		frameCap: req.FrameCap,
	}, nil
}

func requireRegularFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return services.Wrap(services.ErrFileNotFound, "decode", "open", "empty path", nil)
	}
	info, err := os.Stat(path)
	if err != nil {
		return services.Wrap(services.ErrFileNotFound, "decode", "open", path, err)
	}
	if !info.Mode().IsRegular() {
		return services.Wrap(services.ErrFileNotFound, "decode", "open", path+" is not a regular file", nil)
	}
	return nil
}

// Shape returns the geometry of every frame.
func (s *Source) Shape() frame.Shape { return s.shape }

// Emitted returns how many frames have been read.
func (s *Source) Emitted() int { return s.emitted }

// ReadFrame returns the next raw frame buffer. It returns io.EOF once the
// frame cap is reached or the decoder finishes cleanly; the decoder is
// stopped at that point. A partial frame is reported as
// services.ErrTruncatedStream. Failures are sticky.
func (s *Source) ReadFrame(ctx context.Context) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.finished {
		return nil, io.EOF
	}
	if s.emitted >= s.frameCap {
		s.finished = true
		s.terminate()
		s.logger.Debug("frame cap reached", logging.Int("frames", s.emitted))
		return nil, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	size := s.shape.FrameSize()
	buf := make([]byte, size)
	guard := watch(ctx, s.proc, s.timeout)
	n, err := io.ReadFull(s.stdout, buf)
	interrupted := guard.stop()

	switch {
	case err == nil && errors.Is(interrupted, errDeadline):
		// The frame arrived as the deadline fired and the decoder was
		// killed. The frame is complete; the timeout surfaces on the next
		// read unless the cap is already reached.
		s.emitted++
		s.terminate()
		if s.emitted >= s.frameCap {
			s.finished = true
		} else {
			s.err = services.Wrap(services.ErrTimeout, "decode", "read frame",
				fmt.Sprintf("decoder killed at the %s deadline after frame %d; %s", s.timeout, s.emitted, diagnostic(s.tail)), nil)
		}
		return buf, nil
	case interrupted != nil && errors.Is(interrupted, errDeadline):
		s.terminate()
		s.err = services.Wrap(services.ErrTimeout, "decode", "read frame",
			fmt.Sprintf("frame %d not produced within %s; %s", s.emitted, s.timeout, diagnostic(s.tail)), nil)
		return nil, s.err
	case interrupted != nil:
		s.terminate()
		s.err = interrupted
		return nil, interrupted
	case err == nil:
		s.emitted++
		return buf, nil
	case errors.Is(err, io.EOF):
		s.finished = true
		if werr := s.reap(); werr != nil {
			s.err = services.Wrap(services.ErrExternalTool, "decode", "exit", diagnostic(s.tail), werr)
			return nil, s.err
		}
		s.logger.Debug("decoder finished", logging.Int("frames", s.emitted))
		return nil, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		s.terminate()
		s.err = services.Wrap(services.ErrTruncatedStream, "decode", "read frame",
			fmt.Sprintf("frame %d: got %d of %d bytes; %s", s.emitted, n, size, diagnostic(s.tail)), nil)
		return nil, s.err
	default:
		s.terminate()
		s.err = services.Wrap(services.ErrExternalTool, "decode", "read frame", diagnostic(s.tail), err)
		return nil, s.err
	}
}

// Next returns the next frame.
func (s *Source) Next(ctx context.Context) (*frame.Frame, error) {
	buf, err := s.ReadFrame(ctx)
	if err != nil {
		return nil, err
	}
	return frame.New(buf, s.shape.Width, s.shape.Height, s.shape.Format)
}

// Remaining reports how many frames the cap still allows.
func (s *Source) Remaining() (int, bool) {
	if s.finished || s.err != nil {
		return 0, true
	}
	return s.frameCap - s.emitted, true
}

// Close stops the decoder. It is safe to call more than once.
func (s *Source) Close() error {
	s.finished = true
	s.terminate()
	return nil
}

// reap waits for a decoder that closed its output on its own.
func (s *Source) reap() error {
	if s.reaped {
		return nil
	}
	s.reaped = true
	err := s.proc.Wait()
	_ = s.stdout.Close()
	return err
}

// terminate kills and reaps the decoder, discarding its exit status.
func (s *Source) terminate() {
	if s.reaped {
		return
	}
	_ = s.proc.Kill()
	_ = s.stdout.Close()
	_ = s.reap()
}
