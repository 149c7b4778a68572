package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"reel/internal/clip"
	"reel/internal/effects"
	"reel/internal/ffmpeg"
	"reel/internal/frame"
	"reel/internal/logging"
	"reel/internal/pixel"
	"reel/internal/services"
)

// clipFlags are shared by every command that decodes frames.
type clipFlags struct {
	start       string
	duration    string
	effects     []string
	pixelFormat string
}

func (f *clipFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.start, "start", "", "Window start (seconds, HH:MM:SS[.mmm] or 1m30s)")
	cmd.Flags().StringVar(&f.duration, "duration", "", "Window length; defaults to the rest of the clip")
	cmd.Flags().StringArrayVarP(&f.effects, "effect", "e", nil, "Effect step applied in order: grayscale[=mode], crop=X:Y:W:H, resize=WxH[:filter]")
	cmd.Flags().StringVar(&f.pixelFormat, "pixel-format", "", "Decode layout (rgb24, rgba, bgr24, gray); defaults from the source")
}

func (f *clipFlags) windowed() bool {
	return strings.TrimSpace(f.start) != "" || strings.TrimSpace(f.duration) != ""
}

// pipeline is an opened clip with its effect chain attached.
type pipeline struct {
	clip  *clip.Clip
	steps []effects.Step
	seq   frame.Sequence
}

// openPipeline probes input, narrows it to the requested window, spawns the
// decoder and attaches the effect steps. The caller owns p.seq.
func (c *commandContext) openPipeline(ctx context.Context, cmd *cobra.Command, input string, flags clipFlags) (*pipeline, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger := c.loggerFor(cmd)

	parser, err := cfg.EffectParser()
	if err != nil {
		return nil, err
	}
	steps, err := parser.ParseAll(flags.effects)
	if err != nil {
		return nil, err
	}

	opts := []clip.Option{
		clip.WithLogger(logger),
		clip.WithMetadataProvider(clip.FFprobe{Binary: cfg.FFmpeg.FFprobeBinary}),
		clip.WithSourceOptions(
			ffmpeg.WithBinary(cfg.FFmpeg.FFmpegBinary),
			ffmpeg.WithReadTimeout(cfg.ReadTimeout()),
		),
	}
	if strings.TrimSpace(flags.pixelFormat) != "" {
		format, err := pixel.Parse(flags.pixelFormat)
		if err != nil {
			return nil, err
		}
		opts = append(opts, clip.WithFormat(format))
	}

	cl, err := clip.Open(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	if flags.windowed() {
		if cl, err = subclip(cl, flags); err != nil {
			return nil, err
		}
	}

	seq, err := cl.Frames(ctx)
	if err != nil {
		return nil, err
	}
	chained, err := effects.Apply(seq, steps...)
	if err != nil {
		_ = seq.Close()
		return nil, err
	}
	logging.WithContext(ctx, logger).Debug("pipeline ready",
		logging.String("input", input),
		logging.String("decode_shape", cl.Shape().String()),
		logging.String("output_shape", chained.Shape().String()),
		logging.String("effects", describeSteps(steps)),
		logging.Int("frame_cap", cl.FrameCap()),
	)
	return &pipeline{clip: cl, steps: steps, seq: chained}, nil
}

func subclip(cl *clip.Clip, flags clipFlags) (*clip.Clip, error) {
	var start time.Duration
	if strings.TrimSpace(flags.start) != "" {
		d, err := parseTimeFlag(flags.start)
		if err != nil {
			return nil, fmt.Errorf("--start: %w", err)
		}
		start = d
	}
	duration := cl.Duration() - start
	if strings.TrimSpace(flags.duration) != "" {
		d, err := parseTimeFlag(flags.duration)
		if err != nil {
			return nil, fmt.Errorf("--duration: %w", err)
		}
		duration = d
	}
	return cl.Subclip(start, duration)
}

// parseTimeFlag accepts plain seconds ("90", "1.5"), clock time
// ("01:30", "00:01:30.500") or a Go duration ("1m30s").
func parseTimeFlag(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	invalid := func() error {
		return services.Wrap(services.ErrValidation, "cli", "time", fmt.Sprintf("invalid time %q", value), nil)
	}
	if value == "" {
		return 0, invalid()
	}
	if secs, err := strconv.ParseFloat(value, 64); err == nil {
		if secs < 0 {
			return 0, invalid()
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	if strings.Contains(value, ":") {
		parts := strings.Split(value, ":")
		if len(parts) > 3 {
			return 0, invalid()
		}
		var total float64
		for i, part := range parts {
			n, err := strconv.ParseFloat(part, 64)
			if err != nil || n < 0 || (i < len(parts)-1 && strings.Contains(part, ".")) {
				return 0, invalid()
			}
			total = total*60 + n
		}
		return time.Duration(total * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return 0, invalid()
	}
	return d, nil
}

func describeSteps(steps []effects.Step) string {
	if len(steps) == 0 {
		return "none"
	}
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.String()
	}
	return strings.Join(names, ", ")
}
