package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"reel/internal/ffmpeg"
	"reel/internal/preflight"
	"reel/internal/render"
	"reel/internal/services"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var flags clipFlags
	var fps float64

	cmd := &cobra.Command{
		Use:   "render <input> <output>",
		Short: "Decode, transform and re-encode a clip",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			defer ctx.close()

			output, err := cfg.ResolveOutput(args[1])
			if err != nil {
				return services.Wrap(services.ErrValidation, "cli", "render", "output", err)
			}
			if fps < 0 {
				return services.Wrap(services.ErrValidation, "cli", "render", "--fps must be positive", nil)
			}

			if res := preflight.CheckBinary(cmd.Context(), "FFmpeg", cfg.FFmpeg.FFmpegBinary); !res.Passed {
				return services.Wrap(services.ErrExternalTool, "render", "preflight", res.Detail, nil)
			}

			runCtx := services.WithClip(cmd.Context(), args[0])
			p, err := ctx.openPipeline(runCtx, cmd, args[0], flags)
			if err != nil {
				return err
			}
			if fps == 0 {
				fps = p.clip.FPS()
			}

			logger := ctx.loggerFor(cmd)
			opts := []render.Option{
				render.WithLogger(logger),
				render.WithSinkOptions(
					ffmpeg.WithBinary(cfg.FFmpeg.FFmpegBinary),
					ffmpeg.WithWriteTimeout(cfg.WriteTimeout()),
					ffmpeg.WithEncoder(ffmpeg.Encoder{
						Codec:       cfg.Encoder.Codec,
						Preset:      cfg.Encoder.Preset,
						PixelFormat: cfg.Encoder.PixelFormat,
					}),
				),
			}
			stderr := cmd.ErrOrStderr()
			interactive := shouldColorize(stderr)
			if interactive {
				opts = append(opts, render.WithProgress(progressPrinter(stderr)))
			}

			stats, err := render.ToFile(runCtx, p.seq, render.Request{Output: output, FPS: fps}, opts...)
			if interactive {
				fmt.Fprintln(stderr)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rendered %d frames to %s in %s (run %s)\n",
				stats.Frames, stats.Output, stats.Elapsed.Round(time.Millisecond), stats.RunID)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().Float64Var(&fps, "fps", 0, "Output frame rate; defaults to the source rate")
	return cmd
}

// progressPrinter redraws a single status line on a terminal.
func progressPrinter(w io.Writer) func(render.Progress) {
	return func(p render.Progress) {
		if pct := p.Percent(); pct >= 0 {
			fmt.Fprintf(w, "\rrendering: %d/%d frames (%5.1f%%)", p.Frames, p.Total, pct)
			return
		}
		fmt.Fprintf(w, "\rrendering: %d frames", p.Frames)
	}
}
