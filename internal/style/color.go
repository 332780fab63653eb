package style

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// ParseColor accepts CSS color names, #RRGGBB[AA] and 0xRRGGBB[AA], each
// optionally followed by an ffmpeg style "@alpha" suffix (0..1).
func ParseColor(s string) (color.NRGBA, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return color.NRGBA{}, fmt.Errorf("empty color")
	}

	alpha := -1.0
	if at := strings.LastIndex(raw, "@"); at >= 0 {
		a, err := strconv.ParseFloat(raw[at+1:], 64)
		if err != nil || a < 0 || a > 1 {
			return color.NRGBA{}, fmt.Errorf("invalid alpha in %q", s)
		}
		alpha = a
		raw = raw[:at]
	}

	var c color.NRGBA
	lower := strings.ToLower(raw)
	switch {
	case strings.HasPrefix(lower, "#"):
		parsed, err := parseHex(lower[1:])
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
		c = parsed
	case strings.HasPrefix(lower, "0x"):
		parsed, err := parseHex(lower[2:])
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
		c = parsed
	default:
		named, ok := colornames.Map[lower]
		if !ok {
			return color.NRGBA{}, fmt.Errorf("unknown color %q", s)
		}
		c = color.NRGBA{R: named.R, G: named.G, B: named.B, A: named.A}
	}

	if alpha >= 0 {
		c.A = uint8(alpha*255 + 0.5)
	}
	return c, nil
}

func parseHex(h string) (color.NRGBA, error) {
	if len(h) != 6 && len(h) != 8 {
		return color.NRGBA{}, fmt.Errorf("want 6 or 8 hex digits, got %d", len(h))
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, err
	}
	if len(h) == 6 {
		v = v<<8 | 0xff
	}
	return color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}

// FFmpegColor formats c as 0xRRGGBBAA.
func FFmpegColor(c color.NRGBA) string {
	return fmt.Sprintf("0x%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

// ASSColor formats c as &HAABBGGRR with ASS's inverted alpha.
func ASSColor(c color.NRGBA) string {
	return fmt.Sprintf("&H%02X%02X%02X%02X", 255-c.A, c.B, c.G, c.R)
}
