package effects_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"reel/internal/frame"
	"reel/internal/pixel"
)

func newFrame(t *testing.T, w, h int, format pixel.Format, buf ...byte) *frame.Frame {
	t.Helper()
	f, err := frame.New(buf, w, h, format)
	require.NoError(t, err)
	return f
}

func sliceOf(t *testing.T, frames ...*frame.Frame) *frame.SliceSequence {
	t.Helper()
	require.NotEmpty(t, frames)
	seq, err := frame.FromSlice(frames[0].Shape(), frames...)
	require.NoError(t, err)
	return seq
}

func drain(t *testing.T, seq frame.Sequence) []*frame.Frame {
	t.Helper()
	var out []*frame.Frame
	for f, err := range frame.All(context.Background(), seq) {
		require.NoError(t, err)
		out = append(out, f)
	}
	return out
}

// closeCounter records Close calls on a wrapped sequence.
type closeCounter struct {
	frame.Sequence
	closed int
}

func (c *closeCounter) Close() error {
	c.closed++
	return c.Sequence.Close()
}
