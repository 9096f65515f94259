package ink

import (
	"fmt"
	"image/color"
	"math"
)

// HSV is the color-picker working state. It exists only to compute the hex
// color assigned to the active pen before a stroke begins.
type HSV struct {
	H float64 // degrees, [0, 360)
	S float64 // [0, 1]
	V float64 // [0, 1]
}

// Hex converts the HSV triple to a "#rrggbb" string.
func (c HSV) Hex() string {
	r, g, b := c.rgb()
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func (c HSV) rgb() (uint8, uint8, uint8) {
	h := math.Mod(c.H, 360)
	if h < 0 {
		h += 360
	}
	s := clamp01(c.S)
	v := clamp01(c.V)

	chroma := v * s
	x := chroma * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - chroma

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = chroma, x, 0
	case h < 120:
		r, g, b = x, chroma, 0
	case h < 180:
		r, g, b = 0, chroma, x
	case h < 240:
		r, g, b = 0, x, chroma
	case h < 300:
		r, g, b = x, 0, chroma
	default:
		r, g, b = chroma, 0, x
	}

	return uint8(math.Round((r + m) * 255)),
		uint8(math.Round((g + m) * 255)),
		uint8(math.Round((b + m) * 255))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ParseHex parses "#rrggbb" (or "#rgb") into an opaque color.
// Malformed input falls back to black rather than failing the draw.
func ParseHex(s string) color.Color {
	var r, g, b uint8
	switch len(s) {
	case 7:
		if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
			return color.Black
		}
	case 4:
		if _, err := fmt.Sscanf(s, "#%1x%1x%1x", &r, &g, &b); err != nil {
			return color.Black
		}
		r, g, b = r*17, g*17, b*17
	default:
		return color.Black
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
