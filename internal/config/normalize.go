package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeFFmpeg()
	c.normalizeEncoder()
	c.normalizeEffects()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.OutputDir, err = expandPath(strings.TrimSpace(c.Paths.OutputDir)); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

// Binaries fall back to REEL_FFMPEG / REEL_FFPROBE before the PATH names.
func (c *Config) normalizeFFmpeg() {
	c.FFmpeg.FFmpegBinary = strings.TrimSpace(c.FFmpeg.FFmpegBinary)
	if value, ok := os.LookupEnv("REEL_FFMPEG"); ok && strings.TrimSpace(value) != "" && c.FFmpeg.FFmpegBinary == defaultFFmpegBinary {
		c.FFmpeg.FFmpegBinary = strings.TrimSpace(value)
	}
	if c.FFmpeg.FFmpegBinary == "" {
		c.FFmpeg.FFmpegBinary = defaultFFmpegBinary
	}
	c.FFmpeg.FFprobeBinary = strings.TrimSpace(c.FFmpeg.FFprobeBinary)
	if value, ok := os.LookupEnv("REEL_FFPROBE"); ok && strings.TrimSpace(value) != "" && c.FFmpeg.FFprobeBinary == defaultFFprobeBinary {
		c.FFmpeg.FFprobeBinary = strings.TrimSpace(value)
	}
	if c.FFmpeg.FFprobeBinary == "" {
		c.FFmpeg.FFprobeBinary = defaultFFprobeBinary
	}
}

func (c *Config) normalizeEncoder() {
	c.Encoder.Codec = strings.TrimSpace(c.Encoder.Codec)
	if c.Encoder.Codec == "" {
		c.Encoder.Codec = defaultCodec
	}
	c.Encoder.Preset = strings.TrimSpace(c.Encoder.Preset)
	c.Encoder.PixelFormat = strings.ToLower(strings.TrimSpace(c.Encoder.PixelFormat))
}

func (c *Config) normalizeEffects() {
	c.Effects.ResizeFilter = strings.ToLower(strings.TrimSpace(c.Effects.ResizeFilter))
	if c.Effects.ResizeFilter == "" {
		c.Effects.ResizeFilter = defaultResizeFilter
	}
	c.Effects.GrayscaleMode = strings.ToLower(strings.TrimSpace(c.Effects.GrayscaleMode))
	if c.Effects.GrayscaleMode == "" {
		c.Effects.GrayscaleMode = defaultGrayscaleMode
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console", "text", "pretty":
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
