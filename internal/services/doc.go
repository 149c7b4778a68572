// Package services defines shared utilities consumed by the frame pipeline
// packages and the CLI.
//
// Key responsibilities:
//   - Structured error markers (file not found, truncated stream, write
//     failure, ...) plus the Wrap helper so every layer tags failures the same
//     way and callers can classify them with errors.Is.
//   - Context helpers that stamp run identifiers, stage names, and clip paths
//     for logging.
//
// Use these helpers when wiring new pipeline code so error handling and
// observability stay uniform across decode, effects, and encode.
package services
