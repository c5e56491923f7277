package style

import (
	"strconv"
	"strings"
)

// Length converts a CSS length to pixels. Relative units resolve against
// fontSize (em) or container (%). It reports false for values it cannot
// interpret.
func Length(value string, fontSize, container float64) (float64, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return 0, false
	}
	if px, ok := fontSizeKeywords[v]; ok {
		return px, true
	}
	if v == "0" || v == "auto" {
		return 0, true
	}

	units := []struct {
		suffix string
		scale  float64
	}{
		{"rem", DefaultFontSize},
		{"px", 1},
		{"pt", 96.0 / 72.0},
		{"pc", 16},
		{"cm", 96.0 / 2.54},
		{"mm", 96.0 / 25.4},
		{"in", 96},
		{"em", fontSize},
		{"%", container / 100},
	}
	for _, u := range units {
		if !strings.HasSuffix(v, u.suffix) {
			continue
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(v, u.suffix)), 64)
		if err != nil {
			return 0, false
		}
		return n * u.scale, true
	}

	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

var fontSizeKeywords = map[string]float64{
	"xx-small": 9,
	"x-small":  10,
	"small":    13,
	"medium":   16,
	"large":    18,
	"x-large":  24,
	"xx-large": 32,
}

// parseBoxShorthand parses CSS shorthand like:
//   - "10px"
//   - "10px 20px"
//   - "10px 15px 8px"
//   - "10px 12px 8px 6px"
//
// and returns (top, right, bottom, left) values.
func parseBoxShorthand(value string, fontSize, container float64) (float64, float64, float64, float64) {
	parts := strings.Fields(value)
	to := func(s string) float64 {
		px, _ := Length(s, fontSize, container)
		return px
	}
	switch len(parts) {
	case 0:
		return 0, 0, 0, 0
	case 1:
		a := to(parts[0])
		return a, a, a, a
	case 2:
		vtb, vrl := to(parts[0]), to(parts[1])
		return vtb, vrl, vtb, vrl
	case 3:
		t, r, b := to(parts[0]), to(parts[1]), to(parts[2])
		return t, r, b, r
	default:
		return to(parts[0]), to(parts[1]), to(parts[2]), to(parts[3])
	}
}

func formatPx(px float64) string {
	return strconv.FormatFloat(px, 'f', -1, 64) + "px"
}
