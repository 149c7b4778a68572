// Package logging assembles structured slog loggers and formatting helpers used
// across reel.
//
// It owns the console and JSON handlers, the per-day JSON log file under
// paths.log_dir, and context-aware helpers so pipeline code tags every line
// with the render run id, stage and clip path. NewNop gives tests and optional
// wiring a logger that cannot fail.
package logging
