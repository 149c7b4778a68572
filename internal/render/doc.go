// Package render drives a frame sequence into an encoder.
//
// Run alternates strictly between pulling one frame and writing it, so at
// most one frame is in flight between the decoder and the encoder. ToFile
// wraps Run with the encoder lifecycle, an exclusive lock on the output path
// and a run identifier that is attached to every log line.
package render
