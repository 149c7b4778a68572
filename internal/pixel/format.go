package pixel

import (
	"fmt"
	"strings"

	"reel/internal/services"
)

// ChannelKind names the meaning of one channel within a pixel.
type ChannelKind uint8

const (
	Red ChannelKind = iota + 1
	Green
	Blue
	Alpha
	Luma
)

func (k ChannelKind) String() string {
	switch k {
	case Red:
		return "R"
	case Green:
		return "G"
	case Blue:
		return "B"
	case Alpha:
		return "A"
	case Luma:
		return "Y"
	default:
		return "?"
	}
}

type formatID uint8

const (
	invalidID formatID = iota
	rgb24ID
	rgbaID
	bgr24ID
	grayID
)

type layoutSpec struct {
	name      string
	semantics []ChannelKind
}

var layoutTable = [...]layoutSpec{
	invalidID: {},
	rgb24ID:   {name: "rgb24", semantics: []ChannelKind{Red, Green, Blue}},
	rgbaID:    {name: "rgba", semantics: []ChannelKind{Red, Green, Blue, Alpha}},
	bgr24ID:   {name: "bgr24", semantics: []ChannelKind{Blue, Green, Red}},
	grayID:    {name: "gray", semantics: []ChannelKind{Luma}},
}

// Format is an interleaved 8-bit pixel layout. The zero value is invalid.
type Format struct {
	id formatID
}

var (
	RGB24 = Format{id: rgb24ID}
	RGBA  = Format{id: rgbaID}
	BGR24 = Format{id: bgr24ID}
	Gray  = Format{id: grayID}
)

// Formats lists every supported layout.
func Formats() []Format {
	return []Format{RGB24, RGBA, BGR24, Gray}
}

// Valid reports whether f is one of the supported layouts.
func (f Format) Valid() bool {
	return f.id > invalidID && int(f.id) < len(layoutTable)
}

// Channels returns the number of bytes per pixel.
func (f Format) Channels() int {
	if !f.Valid() {
		return 0
	}
	return len(layoutTable[f.id].semantics)
}

// Semantics returns the channel meanings in memory order.
func (f Format) Semantics() []ChannelKind {
	if !f.Valid() {
		return nil
	}
	return append([]ChannelKind(nil), layoutTable[f.id].semantics...)
}

// Name returns the canonical ffmpeg pix_fmt tag.
func (f Format) Name() string {
	if !f.Valid() {
		return ""
	}
	return layoutTable[f.id].name
}

func (f Format) String() string {
	if !f.Valid() {
		return "invalid"
	}
	return f.Name()
}

// Index returns the byte offset of kind within a pixel, or -1.
func (f Format) Index(kind ChannelKind) int {
	if !f.Valid() {
		return -1
	}
	for i, k := range layoutTable[f.id].semantics {
		if k == kind {
			return i
		}
	}
	return -1
}

// HasAlpha reports whether the layout carries an alpha channel.
func (f Format) HasAlpha() bool {
	return f.Index(Alpha) >= 0
}

// IsRGBLike reports whether the layout carries red, green and blue channels.
func (f Format) IsRGBLike() bool {
	return f.Index(Red) >= 0 && f.Index(Green) >= 0 && f.Index(Blue) >= 0
}

// Parse resolves a pix_fmt tag into a Format.
func Parse(name string) (Format, error) {
	cleaned := strings.ToLower(strings.TrimSpace(name))
	for _, f := range Formats() {
		if f.Name() == cleaned {
			return f, nil
		}
	}
	return Format{}, services.Wrap(services.ErrUnsupportedFormat, "pixel", "parse", fmt.Sprintf("%q", name), nil)
}

// ForSource picks the decode layout for a probed source pix_fmt. Sources with
// an alpha plane decode as rgba, gray sources as gray, and everything else
// (including unknown tags) as rgb24.
func ForSource(tag string) Format {
	cleaned := strings.ToLower(strings.TrimSpace(tag))
	switch {
	case cleaned == "":
		return RGB24
	case strings.HasPrefix(cleaned, "yuva"), strings.HasPrefix(cleaned, "ya"),
		strings.HasPrefix(cleaned, "gbrap"):
		return RGBA
	case strings.HasPrefix(cleaned, "gray"):
		return Gray
	}
	base := strings.TrimSuffix(strings.TrimSuffix(cleaned, "le"), "be")
	switch strings.TrimRight(base, "0123456789") {
	case "rgba", "bgra", "argb", "abgr":
		return RGBA
	}
	return RGB24
}
