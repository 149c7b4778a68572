package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"reel/internal/effects"
)

//go:embed sample_config.toml
var sampleConfig string

// FFmpeg contains the external tool locations and per-frame pipe timeouts.
type FFmpeg struct {
	FFmpegBinary        string `toml:"ffmpeg_binary"`
	FFprobeBinary       string `toml:"ffprobe_binary"`
	ReadTimeoutSeconds  int    `toml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `toml:"write_timeout_seconds"`
}

// Encoder contains the output encoding settings handed to ffmpeg.
type Encoder struct {
	Codec       string `toml:"codec"`
	Preset      string `toml:"preset"`
	PixelFormat string `toml:"pixel_format"`
}

// Effects contains defaults used when an effect step leaves an option out.
type Effects struct {
	ResizeFilter  string `toml:"resize_filter"`
	GrayscaleMode string `toml:"grayscale_mode"`
}

// Paths contains directory configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for reel.
//
// Configuration sections by subsystem:
//   - FFmpeg: decoder/probe binaries and pipe timeouts
//   - Encoder: codec, preset and output pixel format
//   - Effects: default resize filter and grayscale mode
//   - Paths: output and log directories
//   - Logging: log format, level, and retention
type Config struct {
	FFmpeg  FFmpeg  `toml:"ffmpeg"`
	Encoder Encoder `toml:"encoder"`
	Effects Effects `toml:"effects"`
	Paths   Paths   `toml:"paths"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file).DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return nil, "", false, fmt.Errorf("parse config: unknown keys:\n%s", strict.String())
			}
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log directory and, when configured, the
// output directory.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.OutputDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ReadTimeout returns the per-frame decoder read timeout; zero disables it.
func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.FFmpeg.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the per-frame encoder write timeout; zero disables it.
func (c *Config) WriteTimeout() time.Duration {
	return time.Duration(c.FFmpeg.WriteTimeoutSeconds) * time.Second
}

// EffectParser returns a step parser whose defaults come from [effects].
func (c *Config) EffectParser() (effects.Parser, error) {
	filter, err := effects.ParseFilter(c.Effects.ResizeFilter)
	if err != nil {
		return effects.Parser{}, err
	}
	mode, err := effects.ParseGrayMode(c.Effects.GrayscaleMode)
	if err != nil {
		return effects.Parser{}, err
	}
	return effects.Parser{GrayMode: mode, Filter: filter}, nil
}

// ResolveOutput places relative output paths under paths.output_dir when one
// is configured. Absolute paths are returned cleaned.
func (c *Config) ResolveOutput(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.New("output path is empty")
	}
	if strings.HasPrefix(path, "~") || filepath.IsAbs(path) || c.Paths.OutputDir == "" {
		return expandPath(path)
	}
	return filepath.Join(c.Paths.OutputDir, path), nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
