// Package testsupport builds configs and stub executables for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"reel/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Output and log directories are created so preflight checks pass.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "out")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.FFmpeg.ReadTimeoutSeconds = 5
	cfgVal.FFmpeg.WriteTimeoutSeconds = 5

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithStubbedBinaries writes stub executables that answer -version and
// points the config at them. If names is empty, ffmpeg and ffprobe are
// stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe"}
		}
		for _, name := range names {
			path := WriteScript(b.t, filepath.Join(b.baseDir, "bin"), name,
				`echo "`+name+` version 0.0-test Copyright (c) reel tests"`)
			b.bind(name, path)
		}
	}
}

// WithScript installs a stub named name with the given shell body and points
// the matching binary setting at it.
func WithScript(name, body string) ConfigOption {
	return func(b *configBuilder) {
		b.bind(name, WriteScript(b.t, filepath.Join(b.baseDir, "bin"), name, body))
	}
}

// WithOutputDir overrides paths.output_dir; an empty dir means the working
// directory.
func WithOutputDir(dir string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.OutputDir = dir
	}
}

func (b *configBuilder) bind(name, path string) {
	switch name {
	case "ffmpeg":
		b.cfg.FFmpeg.FFmpegBinary = path
	case "ffprobe":
		b.cfg.FFmpeg.FFprobeBinary = path
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
