package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"reel/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// Console receives human or JSON output; nil means os.Stderr.
	Console io.Writer
	// FilePath, when set, adds a JSON handler appending to that file.
	FilePath  string
	AddSource bool
}

// New constructs a slog logger using the provided options. The returned
// close function releases the log file and is safe to call when none was
// opened.
func New(opts Options) (*slog.Logger, func() error, error) {
	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLevel(opts.Level))
	addSource := opts.AddSource || levelVar.Level() <= slog.LevelDebug

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	var consoleHandler slog.Handler
	switch format := strings.ToLower(strings.TrimSpace(opts.Format)); format {
	case "", "console":
		consoleHandler = newPrettyHandler(console, levelVar, addSource)
	case "json":
		consoleHandler = newJSONHandler(console, levelVar, addSource)
	default:
		return nil, nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	closeFn := func() error { return nil }
	var fileHandler slog.Handler
	if path := strings.TrimSpace(opts.FilePath); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("ensure log directory: %w", err)
		}
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file %s: %w", path, err)
		}
		fileHandler = newJSONHandler(file, levelVar, true)
		closeFn = file.Close
	}

	return slog.New(newFanoutHandler(consoleHandler, fileHandler)), closeFn, nil
}

// NewFromConfig creates a logger from the [logging] and [paths] sections.
// Console output goes to console; a daily JSON log is kept under
// paths.log_dir and files older than logging.retention_days are pruned.
func NewFromConfig(cfg *config.Config, console io.Writer) (*slog.Logger, func() error, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: "console", Console: console})
	}

	var filePath string
	if cfg.Paths.LogDir != "" {
		filePath = LogFilePath(cfg.Paths.LogDir, time.Now())
	}
	logger, closeFn, err := New(Options{
		Level:    cfg.Logging.Level,
		Format:   cfg.Logging.Format,
		Console:  console,
		FilePath: filePath,
	})
	if err != nil {
		return nil, nil, err
	}
	if filePath != "" {
		CleanupOldLogs(logger, cfg.Logging.RetentionDays, RetentionTarget{
			Dir:     cfg.Paths.LogDir,
			Pattern: logFilePattern,
			Exclude: []string{filePath},
		})
	}
	return logger, closeFn, nil
}

const logFilePattern = "reel-*.log"

// LogFilePath returns the daily log file for day inside dir.
func LogFilePath(dir string, day time.Time) string {
	return filepath.Join(dir, "reel-"+day.Format("2006-01-02")+".log")
}

// ParseLevel validates a level name.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, errors.New("unknown log level " + level)
}

func parseLevel(level string) slog.Level {
	lvl, _ := ParseLevel(level)
	return lvl
}
