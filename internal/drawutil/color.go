package drawutil

import (
	"strconv"
	"strings"

	"github.com/opd-ai/go-wmdraw/internal/logging"
)

// FallbackColor replaces malformed colors given to HexToColor.
const FallbackColor = "#A9A9A9"

// Color is an RGBA color in the [0, 1] range together with the native pixel
// value of the same color. Both are computed from one hex string and never
// change independently.
type Color struct {
	Red, Green, Blue, Alpha float64
	Pixel                   uint32
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	a = uint32(c.Alpha*0xffff + 0.5)
	r = uint32(c.Red*c.Alpha*0xffff + 0.5)
	g = uint32(c.Green*c.Alpha*0xffff + 0.5)
	b = uint32(c.Blue*c.Alpha*0xffff + 0.5)
	return r, g, b, a
}

// Pixeler maps a "#RRGGBB" or "#RRGGBBAA" string to a native pixel value.
type Pixeler interface {
	ColorPixel(hex string) uint32
}

// ColorParser turns color strings into Colors.
type ColorParser struct {
	px       Pixeler
	log      logging.Logger
	fallback string
}

// NewColorParser returns a parser that computes native pixels with px.
func NewColorParser(px Pixeler, log logging.Logger) *ColorParser {
	return &ColorParser{px: px, log: logging.OrNop(log), fallback: FallbackColor}
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

// validHex reports whether s starts with '#' followed by six hex digits.
func validHex(s string) bool {
	if len(s) < 7 || s[0] != '#' {
		return false
	}
	for i := 1; i < 7; i++ {
		if !isHex(s[i]) {
			return false
		}
	}
	return true
}

// parse reads a color from the start of s, which must satisfy validHex. Two
// more hex digits are taken as alpha. It returns the number of bytes
// consumed.
func (p *ColorParser) parse(s string) (Color, int) {
	n := 7
	alpha := uint64(0xff)
	if len(s) >= 9 && isHex(s[7]) && isHex(s[8]) {
		alpha, _ = strconv.ParseUint(s[7:9], 16, 8)
		n = 9
	}
	channel := func(i int) float64 {
		v, _ := strconv.ParseUint(s[i:i+2], 16, 8)
		return float64(v) / 255
	}
	return Color{
		Red:   channel(1),
		Green: channel(3),
		Blue:  channel(5),
		Alpha: float64(alpha) / 255,
		Pixel: p.px.ColorPixel(s[:n]),
	}, n
}

// HexToColor parses "#RRGGBB" or "#RRGGBBAA". Malformed input is logged
// and replaced by FallbackColor, so the result is always usable.
func (p *ColorParser) HexToColor(s string) Color {
	if !validHex(s) {
		p.log.Error("could not parse color", "color", s)
		if !validHex(p.fallback) {
			return Color{}
		}
		s = p.fallback
	}
	c, _ := p.parse(s)
	return c
}

// ParseNextColor parses the next color of a whitespace separated list and
// advances *cursor past it. A "-" token is consumed and reported as found
// without touching out, so the caller keeps whatever it put there. On
// malformed input it logs and returns false, leaving *cursor as it was.
func (p *ColorParser) ParseNextColor(cursor *string, out *Color) bool {
	if cursor == nil {
		return false
	}
	s := strings.TrimLeft(*cursor, " \t\n\v\f\r")
	if strings.HasPrefix(s, "-") {
		*cursor = s[1:]
		return true
	}
	if !validHex(s) {
		p.log.Error("could not parse next color", "color", s)
		return false
	}
	c, n := p.parse(s)
	*out = c
	*cursor = s[n:]
	return true
}

// ParseColors fills dst from a list such as "#222222 - #ffffff", stopping
// at the end of s, at the first malformed token or when dst is full. "-"
// leaves the slot unchanged. It returns the number of slots consumed.
func (p *ColorParser) ParseColors(s string, dst []Color) int {
	n := 0
	for n < len(dst) && strings.TrimSpace(s) != "" {
		if !p.ParseNextColor(&s, &dst[n]) {
			break
		}
		n++
	}
	return n
}
