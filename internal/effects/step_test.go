package effects_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reel/internal/effects"
	"reel/internal/frame"
	"reel/internal/pixel"
	"reel/internal/services"
)

func TestParseStep(t *testing.T) {
	cases := []struct {
		text string
		want effects.Step
	}{
		{"grayscale", effects.Step{Kind: effects.KindGrayscale, Gray: effects.GrayReplicate}},
		{"grayscale=collapse", effects.Step{Kind: effects.KindGrayscale, Gray: effects.GrayCollapse}},
		{" Grayscale = scale ", effects.Step{Kind: effects.KindGrayscale, Gray: effects.GrayScaleChannels}},
		{"crop=1:2:30:40", effects.Step{Kind: effects.KindCrop, X: 1, Y: 2, Width: 30, Height: 40}},
		{"resize=640x360", effects.Step{Kind: effects.KindResize, Width: 640, Height: 360, Filter: effects.Lanczos3}},
		{"resize=64X36:nearest", effects.Step{Kind: effects.KindResize, Width: 64, Height: 36, Filter: effects.Nearest}},
	}
	for _, tc := range cases {
		got, err := effects.ParseStep(tc.text)
		require.NoError(t, err, tc.text)
		assert.Equal(t, tc.want, got, tc.text)
	}
}

func TestParseStepErrors(t *testing.T) {
	for _, text := range []string{"", "blur", "crop=1:2:3", "crop=a:b:c:d", "resize=640", "resize=axb", "resize=2x2:sinc", "grayscale=sepia"} {
		_, err := effects.ParseStep(text)
		require.ErrorIs(t, err, services.ErrValidation, text)
	}
}

func TestParserDefaults(t *testing.T) {
	p := effects.Parser{GrayMode: effects.GrayCollapse, Filter: effects.Bilinear}
	steps, err := p.ParseAll([]string{"grayscale", "resize=4x4", "grayscale=replicate", "resize=4x4:catmullrom"})
	require.NoError(t, err)
	assert.Equal(t, effects.GrayCollapse, steps[0].Gray)
	assert.Equal(t, effects.Bilinear, steps[1].Filter)
	assert.Equal(t, effects.GrayReplicate, steps[2].Gray)
	assert.Equal(t, effects.CatmullRom, steps[3].Filter)
}

func TestStepStringRoundTrips(t *testing.T) {
	for _, step := range []effects.Step{
		{Kind: effects.KindGrayscale, Gray: effects.GrayCollapse},
		{Kind: effects.KindCrop, X: 3, Y: 4, Width: 5, Height: 6},
		{Kind: effects.KindResize, Width: 7, Height: 8, Filter: effects.CatmullRom},
	} {
		parsed, err := effects.ParseStep(step.String())
		require.NoError(t, err)
		assert.Equal(t, step, parsed)
	}
}

func TestApplyWithoutStepsReturnsUpstream(t *testing.T) {
	upstream := sliceOf(t, patterned(t, 2, 2))
	seq, err := effects.Apply(upstream)
	require.NoError(t, err)
	assert.Same(t, frame.Sequence(upstream), seq)
}

func TestApplyChecksEachStageAgainstItsInput(t *testing.T) {
	upstream := sliceOf(t, patterned(t, 8, 8))
	seq, err := effects.Apply(upstream,
		effects.Step{Kind: effects.KindResize, Width: 4, Height: 4},
		effects.Step{Kind: effects.KindCrop, X: 2, Y: 2, Width: 2, Height: 2},
		effects.Step{Kind: effects.KindGrayscale, Gray: effects.GrayCollapse},
	)
	require.NoError(t, err)
	assert.Equal(t, frame.Shape{Width: 2, Height: 2, Format: pixel.Gray}, seq.Shape())

	_, err = effects.Apply(sliceOf(t, patterned(t, 8, 8)),
		effects.Step{Kind: effects.KindResize, Width: 4, Height: 4},
		effects.Step{Kind: effects.KindCrop, X: 2, Y: 2, Width: 4, Height: 4},
	)
	require.ErrorIs(t, err, services.ErrValidation)
	assert.Contains(t, err.Error(), "step 2 (crop)")

	_, err = effects.Apply(sliceOf(t, patterned(t, 2, 2)),
		effects.Step{Kind: effects.KindGrayscale, Gray: effects.GrayCollapse},
		effects.Step{Kind: effects.KindGrayscale},
	)
	require.ErrorIs(t, err, services.ErrUnsupportedFormat)
}
