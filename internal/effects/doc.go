// Package effects provides lazy per-frame transforms over a frame.Sequence.
//
// Each stage owns its upstream sequence, pulls one frame per Next call and
// never buffers more than that frame. Parameters are checked against the
// upstream Shape when the stage is built, so a misconfigured chain fails
// before any frame is decoded.
package effects
