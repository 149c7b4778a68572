// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// This package has no reel-specific dependencies beyond the shared error
// markers and could be extracted as a standalone library.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video/subtitle stream properties
//   - Format: container-level metadata (duration, size, bitrate)
//   - Metadata: the reduced video description the frame pipeline needs
//     (dimensions, duration, pix_fmt, frame rate, frame count)
//
// Primary entry points:
//   - Inspect: executes ffprobe and returns parsed Result
//   - Probe: Inspect plus Result.Metadata, tagged ErrMetadataUnavailable
package ffprobe
