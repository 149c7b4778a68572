package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"reel/internal/media/ffprobe"
	"reel/internal/pixel"
	"reel/internal/services"
)

// probeReport is the JSON shape of "reel probe --json".
type probeReport struct {
	Path         string           `json:"path"`
	Container    string           `json:"container,omitempty"`
	Codec        string           `json:"codec,omitempty"`
	DecodeFormat string           `json:"decode_format"`
	SizeBytes    int64            `json:"size_bytes,omitempty"`
	BitRate      int64            `json:"bit_rate,omitempty"`
	VideoStreams int              `json:"video_streams"`
	AudioStreams int              `json:"audio_streams"`
	Metadata     ffprobe.Metadata `json:"metadata"`
}

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "probe <file>",
		Short: "Show the video metadata reel decodes with",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			path := args[0]
			result, err := ffprobe.Inspect(cmd.Context(), cfg.FFmpeg.FFprobeBinary, path)
			if err != nil {
				return services.Wrap(services.ErrMetadataUnavailable, "probe", "inspect", path, err)
			}
			meta, err := result.Metadata()
			if err != nil {
				return err
			}
			report := probeReport{
				Path:         path,
				Container:    result.Format.FormatName,
				DecodeFormat: pixel.ForSource(meta.PixelFormat).String(),
				SizeBytes:    result.SizeBytes(),
				BitRate:      result.BitRate(),
				VideoStreams: result.VideoStreamCount(),
				AudioStreams: result.AudioStreamCount(),
				Metadata:     meta,
			}
			if video, ok := result.Video(); ok {
				report.Codec = video.CodecName
			}

			if asJSON {
				return writeJSON(cmd, report)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, probeRows(report), []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

func probeRows(r probeReport) [][]string {
	title := cases.Title(language.English)
	label := func(key string) string {
		return title.String(strings.ReplaceAll(key, "_", " "))
	}
	rows := [][]string{
		{label("path"), r.Path},
		{label("container"), r.Container},
		{label("codec"), r.Codec},
		{label("resolution"), fmt.Sprintf("%dx%d", r.Metadata.Width, r.Metadata.Height)},
		{label("source_pixel_format"), r.Metadata.PixelFormat},
		{label("decode_format"), r.DecodeFormat},
		{label("frame_rate"), strconv.FormatFloat(r.Metadata.FPS, 'f', 3, 64)},
		{label("frame_count"), strconv.Itoa(r.Metadata.FrameCount)},
		{label("duration"), strconv.FormatFloat(r.Metadata.DurationSeconds, 'f', 3, 64) + "s"},
		{label("video_streams"), strconv.Itoa(r.VideoStreams)},
		{label("audio_streams"), strconv.Itoa(r.AudioStreams)},
	}
	if r.SizeBytes > 0 {
		rows = append(rows, []string{label("size_bytes"), strconv.FormatInt(r.SizeBytes, 10)})
	}
	return rows
}
