package ffmpeg

import (
	"log/slog"
	"strings"
	"time"

	"reel/internal/logging"
)

// Option configures a Source or Sink.
type Option func(*options)

type options struct {
	launcher      Launcher
	binary        string
	logger        *slog.Logger
	readTimeout   time.Duration
	writeTimeout  time.Duration
	finishTimeout time.Duration
	encoder       Encoder
}

func buildOptions(opts []Option) options {
	o := options{
		launcher: ExecLauncher{},
		binary:   "ffmpeg",
		encoder:  DefaultEncoder(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.logger == nil {
		o.logger = logging.NewNop()
	}
	return o
}

// WithLauncher injects a custom process launcher (primarily for tests).
func WithLauncher(l Launcher) Option {
	return func(o *options) {
		if l != nil {
			o.launcher = l
		}
	}
}

// WithBinary overrides the ffmpeg executable.
func WithBinary(binary string) Option {
	return func(o *options) {
		if b := strings.TrimSpace(binary); b != "" {
			o.binary = b
		}
	}
}

// WithLogger sets the logger used for process lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithReadTimeout bounds how long a Source waits for one frame. Zero
// disables the bound.
func WithReadTimeout(d time.Duration) Option {
	return func(o *options) {
		o.readTimeout = max(d, 0)
	}
}

// WithWriteTimeout bounds how long a Sink waits for the encoder to accept one
// frame. Zero disables the bound.
func WithWriteTimeout(d time.Duration) Option {
	return func(o *options) {
		o.writeTimeout = max(d, 0)
	}
}

// WithFinishTimeout bounds how long Sink.Close waits for the encoder to exit
// after end of stream. Zero falls back to the write timeout.
func WithFinishTimeout(d time.Duration) Option {
	return func(o *options) {
		o.finishTimeout = max(d, 0)
	}
}

// WithEncoder replaces the encoder settings used by a Sink.
func WithEncoder(enc Encoder) Option {
	return func(o *options) {
		o.encoder = enc
	}
}
