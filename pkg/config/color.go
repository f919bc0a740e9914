package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is an RGB triple used only for overlay rendering
type Color struct {
	R, G, B uint8
}

// DefaultColor is the neutral overlay used for labels without a configured color
var DefaultColor = Color{R: 0x80, G: 0x80, B: 0x80}

// ParseColor parses "#RRGGBB"
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("invalid color %q: want #RRGGBB", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// Hex returns the color as "#RRGGBB"
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}
