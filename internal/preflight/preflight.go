package preflight

import (
	"context"
	"os"

	"reel/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every preflight check for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckBinary(ctx, "FFmpeg", cfg.FFmpeg.FFmpegBinary),
		CheckBinary(ctx, "FFprobe", cfg.FFmpeg.FFprobeBinary),
	}

	outputDir := cfg.Paths.OutputDir
	if outputDir == "" {
		if wd, err := os.Getwd(); err == nil {
			outputDir = wd
		}
	}
	results = append(results, CheckDirectoryAccess("Output directory", outputDir))

	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
