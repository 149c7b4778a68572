package config

import (
	"errors"
	"fmt"

	"reel/internal/effects"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateFFmpeg(); err != nil {
		return err
	}
	if err := c.validateEffects(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateFFmpeg() error {
	if c.FFmpeg.ReadTimeoutSeconds < 0 {
		return errors.New("ffmpeg.read_timeout_seconds must be >= 0")
	}
	if c.FFmpeg.WriteTimeoutSeconds < 0 {
		return errors.New("ffmpeg.write_timeout_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateEffects() error {
	if _, err := effects.ParseFilter(c.Effects.ResizeFilter); err != nil {
		return fmt.Errorf("effects.resize_filter: %w", err)
	}
	if _, err := effects.ParseGrayMode(c.Effects.GrayscaleMode); err != nil {
		return fmt.Errorf("effects.grayscale_mode: %w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not recognized", c.Logging.Level)
	}
	return nil
}
