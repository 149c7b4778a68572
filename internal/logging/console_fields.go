package logging

import (
	"log/slog"
	"strings"
)

type infoField struct {
	label  string
	value  string
	sticky bool
}

// infoHighlightKeys are printed first, in this order.
var infoHighlightKeys = []string{
	FieldAlert,
	FieldEventType,
	FieldProgressPercent,
	"error",
	FieldErrorHint,
	FieldImpact,
	FieldClip,
	"output",
	"frames",
	"frame_total",
	"frame_cap",
	"width",
	"height",
	"pixel_format",
	"fps",
	"codec",
	"preset",
	"effects",
	"start",
	"duration",
	"elapsed",
}

// stickyKeys are never dropped as repeats.
var stickyKeys = map[string]bool{
	FieldAlert:           true,
	FieldEventType:       true,
	FieldProgressPercent: true,
	"frames":             true,
	"error":              true,
}

const maxInfoValueLen = 120

// selectInfoFields returns formatted info-level fields and a count of hidden entries.
func selectInfoFields(attrs []kv) ([]infoField, int) {
	if len(attrs) == 0 {
		return nil, 0
	}
	used := make([]bool, len(attrs))
	result := make([]infoField, 0, len(attrs))
	hidden := 0

	add := func(idx int) {
		used[idx] = true
		attr := attrs[idx]
		if skipInfoKey(attr.key) {
			return
		}
		if isDebugOnlyKey(attr.key) {
			hidden++
			return
		}
		val := formatValueForKey(attr.key, attr.value)
		if attr.key != "error" && len(val) > maxInfoValueLen {
			hidden++
			return
		}
		result = append(result, infoField{label: displayLabel(attr.key), value: val, sticky: stickyKeys[attr.key]})
	}

	for _, key := range infoHighlightKeys {
		for idx, attr := range attrs {
			if !used[idx] && attr.key == key {
				add(idx)
				break
			}
		}
	}
	for idx := range attrs {
		if !used[idx] {
			add(idx)
		}
	}
	return result, hidden
}

// formatValueForKey applies friendlier formatting based on the key name.
func formatValueForKey(key string, v slog.Value) string {
	v = v.Resolve()
	switch {
	case v.Kind() == slog.KindDuration:
		return formatDurationHuman(v.Duration())
	case isPercentKey(key) && v.Kind() == slog.KindFloat64:
		return formatPercent(v.Float64())
	case key == "fps" && v.Kind() == slog.KindFloat64:
		return formatFPS(v.Float64())
	case v.Kind() == slog.KindBool:
		if v.Bool() {
			return "yes"
		}
		return "no"
	case key == "error":
		return truncateErrorValue(attrString(v))
	}
	return formatValue(v)
}

func isPercentKey(key string) bool {
	return strings.HasSuffix(key, "_percent")
}

func truncateErrorValue(value string) string {
	value = strings.TrimSpace(value)
	const maxLen = 300
	if len(value) > maxLen {
		value = value[:maxLen] + "…"
	}
	return value
}

func skipInfoKey(key string) bool {
	switch key {
	case "", FieldComponent, FieldRunID, FieldStage:
		return true
	}
	return false
}

func isDebugOnlyKey(key string) bool {
	switch key {
	case "args", "binary", "pid", "lock":
		return true
	}
	return strings.HasPrefix(key, "ffprobe.") || strings.HasSuffix(key, "_dir")
}

func displayLabel(key string) string {
	switch key {
	case FieldAlert:
		return "Alert"
	case FieldEventType:
		return "Event"
	case FieldProgressPercent:
		return "Progress"
	case FieldErrorHint:
		return "Hint"
	case FieldImpact:
		return "Impact"
	case FieldClip:
		return "Clip"
	case "frame_total":
		return "Of"
	case "fps":
		return "FPS"
	case "pixel_format":
		return "Format"
	default:
		return titleizeKey(key)
	}
}

func titleizeKey(key string) string {
	parts := strings.FieldsFunc(key, func(r rune) bool {
		return r == '_' || r == '-' || r == '.'
	})
	for i, part := range parts {
		parts[i] = strings.ToUpper(part[:1]) + strings.ToLower(part[1:])
	}
	return strings.Join(parts, " ")
}
