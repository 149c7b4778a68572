package effects

import (
	"fmt"
	"strconv"
	"strings"

	"reel/internal/frame"
	"reel/internal/services"
)

// Kind names a transform.
type Kind uint8

const (
	KindGrayscale Kind = iota + 1
	KindCrop
	KindResize
)

func (k Kind) String() string {
	switch k {
	case KindGrayscale:
		return "grayscale"
	case KindCrop:
		return "crop"
	case KindResize:
		return "resize"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Step describes one transform before it is attached to a sequence.
type Step struct {
	Kind   Kind
	Gray   GrayMode
	X, Y   int
	Width  int
	Height int
	Filter Filter
}

func (s Step) String() string {
	switch s.Kind {
	case KindGrayscale:
		return "grayscale=" + s.Gray.String()
	case KindCrop:
		return fmt.Sprintf("crop=%d:%d:%d:%d", s.X, s.Y, s.Width, s.Height)
	case KindResize:
		return fmt.Sprintf("resize=%dx%d:%s", s.Width, s.Height, s.Filter)
	default:
		return s.Kind.String()
	}
}

// Attach builds the stage for s over upstream.
func (s Step) Attach(upstream frame.Sequence) (*Stage, error) {
	switch s.Kind {
	case KindGrayscale:
		return Grayscale(upstream, s.Gray)
	case KindCrop:
		return Crop(upstream, s.X, s.Y, s.Width, s.Height)
	case KindResize:
		return Resize(upstream, s.Width, s.Height, s.Filter)
	default:
		return nil, services.Wrap(services.ErrValidation, "effects", "attach", fmt.Sprintf("unknown step %s", s.Kind), nil)
	}
}

// Apply attaches steps to upstream in order and returns the last stage, or
// upstream itself when steps is empty. On error nothing is closed; the caller
// still owns upstream.
func Apply(upstream frame.Sequence, steps ...Step) (frame.Sequence, error) {
	seq := upstream
	for i, step := range steps {
		stage, err := step.Attach(seq)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, step.Kind, err)
		}
		seq = stage
	}
	return seq, nil
}

// Parser turns textual step descriptions into Steps. Its fields supply the
// mode and filter when the text leaves them out.
type Parser struct {
	GrayMode GrayMode
	Filter   Filter
}

// ParseStep parses text with the built-in defaults.
func ParseStep(text string) (Step, error) {
	return Parser{}.Parse(text)
}

// Parse accepts "grayscale[=MODE]", "crop=X:Y:W:H" and "resize=WxH[:FILTER]".
func (p Parser) Parse(text string) (Step, error) {
	name, arg, _ := strings.Cut(strings.TrimSpace(text), "=")
	name = strings.ToLower(strings.TrimSpace(name))
	arg = strings.TrimSpace(arg)

	switch name {
	case "grayscale", "gray":
		mode := p.GrayMode
		if arg != "" {
			parsed, err := ParseGrayMode(arg)
			if err != nil {
				return Step{}, err
			}
			mode = parsed
		}
		return Step{Kind: KindGrayscale, Gray: mode}, nil
	case "crop":
		parts := strings.Split(arg, ":")
		if len(parts) != 4 {
			return Step{}, stepSyntax(text, "crop=X:Y:W:H")
		}
		vals, err := atoiAll(parts)
		if err != nil {
			return Step{}, stepSyntax(text, "crop=X:Y:W:H")
		}
		return Step{Kind: KindCrop, X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}, nil
	case "resize", "scale":
		size, filterName, hasFilter := strings.Cut(arg, ":")
		ws, hs, ok := strings.Cut(strings.ToLower(size), "x")
		if !ok {
			return Step{}, stepSyntax(text, "resize=WxH[:FILTER]")
		}
		vals, err := atoiAll([]string{ws, hs})
		if err != nil {
			return Step{}, stepSyntax(text, "resize=WxH[:FILTER]")
		}
		filter := p.Filter
		if hasFilter {
			if filter, err = ParseFilter(filterName); err != nil {
				return Step{}, err
			}
		}
		return Step{Kind: KindResize, Width: vals[0], Height: vals[1], Filter: filter}, nil
	default:
		return Step{}, services.Wrap(services.ErrValidation, "effects", "parse", fmt.Sprintf("unknown effect %q", text), nil)
	}
}

// ParseAll parses every entry of texts.
func (p Parser) ParseAll(texts []string) ([]Step, error) {
	steps := make([]Step, 0, len(texts))
	for _, text := range texts {
		step, err := p.Parse(text)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func atoiAll(parts []string) ([]int, error) {
	vals := make([]int, len(parts))
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

func stepSyntax(text, want string) error {
	return services.Wrap(services.ErrValidation, "effects", "parse", fmt.Sprintf("%q: expected %s", text, want), nil)
}
