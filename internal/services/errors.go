package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrFileNotFound        = errors.New("file not found")
	ErrMetadataUnavailable = errors.New("metadata unavailable")
	ErrSpawnFailure        = errors.New("spawn failure")
	ErrSizeMismatch        = errors.New("size mismatch")
	ErrTruncatedStream     = errors.New("truncated stream")
	ErrWriteFailure        = errors.New("write failure")
	ErrUnsupportedFormat   = errors.New("unsupported format")
	ErrValidation          = errors.New("validation error")
	ErrTimeout             = errors.New("timeout")
	ErrExternalTool        = errors.New("external tool error")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ExitCode maps a pipeline error to the process exit status used by the CLI.
// Caller mistakes (bad arguments, missing files, unsupported layouts) exit with
// 2; failures of the external ffmpeg/ffprobe processes exit with 3.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrValidation), errors.Is(err, ErrFileNotFound),
		errors.Is(err, ErrUnsupportedFormat), errors.Is(err, ErrSizeMismatch):
		return 2
	case errors.Is(err, ErrSpawnFailure), errors.Is(err, ErrMetadataUnavailable),
		errors.Is(err, ErrTruncatedStream), errors.Is(err, ErrWriteFailure),
		errors.Is(err, ErrTimeout), errors.Is(err, ErrExternalTool):
		return 3
	default:
		return 1
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
