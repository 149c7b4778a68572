package frame

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"

	"reel/internal/services"
)

// Sequence is a lazily produced, finite stream of frames sharing one Shape.
type Sequence interface {
	// Shape describes every frame Next will return.
	Shape() Shape
	// Next returns the next frame or io.EOF when the sequence is exhausted.
	Next(ctx context.Context) (*Frame, error)
	// Remaining reports how many frames are left, when known.
	Remaining() (int, bool)
	// Close releases the sequence and everything upstream of it.
	Close() error
}

// SliceSequence replays frames held in memory.
type SliceSequence struct {
	shape  Shape
	frames []*Frame
	pos    int
}

// FromSlice builds a sequence over frames, which must all match shape.
func FromSlice(shape Shape, frames ...*Frame) (*SliceSequence, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	for i, f := range frames {
		if f == nil || f.Shape() != shape {
			return nil, services.Wrap(services.ErrSizeMismatch, "frame", "sequence", fmt.Sprintf("frame %d does not match %s", i, shape), nil)
		}
	}
	return &SliceSequence{shape: shape, frames: frames}, nil
}

func (s *SliceSequence) Shape() Shape { return s.shape }

func (s *SliceSequence) Next(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos >= len(s.frames) {
		return nil, io.EOF
	}
	f := s.frames[s.pos]
	s.frames[s.pos] = nil
	s.pos++
	return f, nil
}

func (s *SliceSequence) Remaining() (int, bool) {
	return len(s.frames) - s.pos, true
}

func (s *SliceSequence) Close() error {
	s.pos = len(s.frames)
	return nil
}

// All adapts seq to a range-over-func iterator. Iteration stops after the
// first error, which is yielded with a nil frame; io.EOF ends it cleanly.
func All(ctx context.Context, seq Sequence) iter.Seq2[*Frame, error] {
	return func(yield func(*Frame, error) bool) {
		for {
			f, err := seq.Next(ctx)
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(f, nil) {
				return
			}
		}
	}
}

// Count drains seq and returns how many frames it produced. The sequence is
// closed afterwards.
func Count(ctx context.Context, seq Sequence) (count int, err error) {
	defer func() {
		if cerr := seq.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	for _, ferr := range All(ctx, seq) {
		if ferr != nil {
			return count, ferr
		}
		count++
	}
	return count, nil
}
