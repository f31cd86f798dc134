package theme

import (
	"fmt"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
)

// InterpolateColor blends two #RRGGBB colors; pos 0 is colorA, 1 is colorB.
func InterpolateColor(colorA, colorB string, pos float64) string {
	pos = max(0, min(1, pos))
	r1, g1, b1 := ParseHexColor(colorA)
	r2, g2, b2 := ParseHexColor(colorB)

	mix := func(a, b uint8) uint8 {
		return uint8(float64(a)*(1-pos) + float64(b)*pos)
	}
	return FormatHexColor(mix(r1, r2), mix(g1, g2), mix(b1, b2))
}

// ParseHexColor reads #RRGGBB (the # is optional). Malformed input is
// black.
func ParseHexColor(hex string) (uint8, uint8, uint8) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return 0, 0, 0
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v)
}

// FormatHexColor formats a color as #rrggbb.
func FormatHexColor(r, g, b uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// Gradient colors each rune of text along the blend from one color to
// the other. Used for the CLI logo.
func Gradient(text, from, to string) string {
	runes := []rune(text)
	if len(runes) < 2 {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(from)).Render(text)
	}
	var b strings.Builder
	for i, r := range runes {
		c := InterpolateColor(from, to, float64(i)/float64(len(runes)-1))
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Render(string(r)))
	}
	return b.String()
}
