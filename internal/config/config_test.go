package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"reel/internal/config"
	"reel/internal/effects"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "reel", "config.toml") {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	wantLogs := filepath.Join(tempHome, ".local", "share", "reel", "logs")
	if cfg.Paths.LogDir != wantLogs {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogs)
	}
	if cfg.Paths.OutputDir != "" {
		t.Fatalf("expected empty output dir, got %q", cfg.Paths.OutputDir)
	}
	if cfg.FFmpeg.FFmpegBinary != "ffmpeg" || cfg.FFmpeg.FFprobeBinary != "ffprobe" {
		t.Fatalf("unexpected binaries: %+v", cfg.FFmpeg)
	}
	if cfg.Encoder != config.Default().Encoder {
		t.Fatalf("unexpected encoder: %+v", cfg.Encoder)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging: %+v", cfg.Logging)
	}
}

func TestLoadCustomConfig(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configPath := filepath.Join(t.TempDir(), "config.toml")
	content := `
[ffmpeg]
ffmpeg_binary = "/opt/ffmpeg/bin/ffmpeg"
read_timeout_seconds = 5
write_timeout_seconds = 0

[encoder]
codec = "libx265"
preset = ""
pixel_format = "YUV420P10LE"

[effects]
resize_filter = "Nearest"
grayscale_mode = "collapse"

[paths]
output_dir = "~/renders"

[logging]
format = "JSON"
level = "DEBUG"
retention_days = -4
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected explicit config to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.FFmpeg.FFmpegBinary != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("unexpected ffmpeg binary %q", cfg.FFmpeg.FFmpegBinary)
	}
	if cfg.FFmpeg.FFprobeBinary != "ffprobe" {
		t.Fatalf("expected default ffprobe binary, got %q", cfg.FFmpeg.FFprobeBinary)
	}
	if cfg.ReadTimeout().Seconds() != 5 || cfg.WriteTimeout() != 0 {
		t.Fatalf("unexpected timeouts: read=%s write=%s", cfg.ReadTimeout(), cfg.WriteTimeout())
	}
	if cfg.Encoder.Codec != "libx265" || cfg.Encoder.Preset != "" || cfg.Encoder.PixelFormat != "yuv420p10le" {
		t.Fatalf("unexpected encoder: %+v", cfg.Encoder)
	}
	if cfg.Paths.OutputDir != filepath.Join(tempHome, "renders") {
		t.Fatalf("unexpected output dir: %q", cfg.Paths.OutputDir)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" || cfg.Logging.RetentionDays != 0 {
		t.Fatalf("unexpected logging: %+v", cfg.Logging)
	}

	parser, err := cfg.EffectParser()
	if err != nil {
		t.Fatalf("EffectParser: %v", err)
	}
	if parser.Filter != effects.Nearest || parser.GrayMode != effects.GrayCollapse {
		t.Fatalf("unexpected parser defaults: %+v", parser)
	}
}

func TestLoadFindsProjectConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	project := t.TempDir()
	t.Chdir(project)

	if err := os.WriteFile("reel.toml", []byte("[encoder]\ncodec = \"mpeg4\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || filepath.Base(resolved) != "reel.toml" {
		t.Fatalf("expected project config, got %q exists=%v", resolved, exists)
	}
	if cfg.Encoder.Codec != "mpeg4" {
		t.Fatalf("unexpected codec %q", cfg.Encoder.Codec)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte("[encoder]\nbitrate = 5\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, _, err := config.Load(configPath)
	if err == nil || !strings.Contains(err.Error(), "bitrate") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestBinaryEnvironmentFallback(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	t.Setenv("REEL_FFMPEG", "/custom/ffmpeg")
	t.Setenv("REEL_FFPROBE", "/custom/ffprobe")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.FFmpeg.FFmpegBinary != "/custom/ffmpeg" || cfg.FFmpeg.FFprobeBinary != "/custom/ffprobe" {
		t.Fatalf("expected env binaries, got %+v", cfg.FFmpeg)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"negative read timeout", func(c *config.Config) { c.FFmpeg.ReadTimeoutSeconds = -1 }, "read_timeout_seconds"},
		{"negative write timeout", func(c *config.Config) { c.FFmpeg.WriteTimeoutSeconds = -1 }, "write_timeout_seconds"},
		{"unknown filter", func(c *config.Config) { c.Effects.ResizeFilter = "bicubic" }, "resize_filter"},
		{"unknown gray mode", func(c *config.Config) { c.Effects.GrayscaleMode = "sepia" }, "grayscale_mode"},
		{"unknown format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"unknown level", func(c *config.Config) { c.Logging.Level = "loud" }, "logging.level"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestResolveOutput(t *testing.T) {
	cfg := config.Default()
	abs := filepath.Join(t.TempDir(), "out.mp4")
	got, err := cfg.ResolveOutput(abs)
	if err != nil || got != abs {
		t.Fatalf("absolute path changed: %q %v", got, err)
	}

	cfg.Paths.OutputDir = "/srv/renders"
	got, err = cfg.ResolveOutput("clip.mp4")
	if err != nil || got != "/srv/renders/clip.mp4" {
		t.Fatalf("expected output dir join, got %q %v", got, err)
	}
	if _, err := cfg.ResolveOutput("  "); err == nil {
		t.Fatal("expected error for empty output")
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.OutputDir = filepath.Join(base, "out", "nested")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.LogDir, cfg.Paths.OutputDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q: %v", dir, err)
		}
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		t.Fatalf("sample is not valid toml: %v", err)
	}
	for _, section := range []string{"ffmpeg", "encoder", "effects", "paths", "logging"} {
		if _, ok := raw[section]; !ok {
			t.Fatalf("sample missing [%s]", section)
		}
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
}
