package effects

import (
	"context"

	"reel/internal/frame"
)

// Stage is one transform applied to every frame of an upstream sequence.
type Stage struct {
	name     string
	upstream frame.Sequence
	shape    frame.Shape
	apply    func(*frame.Frame) (*frame.Frame, error)
}

// Name identifies the transform, e.g. "crop".
func (s *Stage) Name() string { return s.name }

// Shape returns the geometry of the transformed frames.
func (s *Stage) Shape() frame.Shape { return s.shape }

// Next pulls one upstream frame and transforms it. Upstream errors,
// including io.EOF, are returned unchanged.
func (s *Stage) Next(ctx context.Context) (*frame.Frame, error) {
	f, err := s.upstream.Next(ctx)
	if err != nil {
		return nil, err
	}
	return s.apply(f)
}

// Remaining passes the upstream hint through; stages never drop frames.
func (s *Stage) Remaining() (int, bool) { return s.upstream.Remaining() }

// Close closes the upstream sequence.
func (s *Stage) Close() error { return s.upstream.Close() }
