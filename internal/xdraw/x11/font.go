//go:build linux

package x11

import (
	"fmt"
	"sort"

	"github.com/jezek/xgb/xproto"

	"github.com/opd-ai/go-wmdraw/internal/logging"
	"github.com/opd-ai/go-wmdraw/internal/text"
	"github.com/opd-ai/go-wmdraw/internal/xdraw"
)

// maxGlyphsPerRequest is the longest string one ImageText16 request takes.
const maxGlyphsPerRequest = 255

// FontRenderer draws text with an X core font through ImageText16, which
// paints the glyphs on a box filled with the background pixel.
type FontRenderer struct {
	conn    *Conn
	font    xproto.Font
	ascent  int
	descent int
	log     logging.Logger
}

// OpenFont loads the core font matching pattern, for example "fixed" or
// "-misc-fixed-medium-r-normal--13-*".
func (c *Conn) OpenFont(pattern string) (*FontRenderer, error) {
	fid, err := xproto.NewFontId(c.X)
	if err != nil {
		return nil, fmt.Errorf("allocate font id: %w", err)
	}
	if err := xproto.OpenFontChecked(c.X, fid, uint16(len(pattern)), pattern).Check(); err != nil {
		return nil, fmt.Errorf("open font %q: %w", pattern, err)
	}
	info, err := xproto.QueryFont(c.X, xproto.Fontable(fid)).Reply()
	if err != nil {
		xproto.CloseFont(c.X, fid)
		return nil, fmt.Errorf("query font %q: %w", pattern, err)
	}
	return &FontRenderer{
		conn:    c,
		font:    fid,
		ascent:  int(info.FontAscent),
		descent: int(info.FontDescent),
		log:     c.log,
	}, nil
}

// Close unloads the font.
func (f *FontRenderer) Close() {
	xproto.CloseFont(f.conn.X, f.font)
}

// Height returns ascent plus descent.
func (f *FontRenderer) Height() int {
	return f.ascent + f.descent
}

func char2b(units []uint16) []xproto.Char2b {
	out := make([]xproto.Char2b, len(units))
	for i, u := range units {
		out[i] = xproto.Char2b{Byte1: byte(u >> 8), Byte2: byte(u)}
	}
	return out
}

func (f *FontRenderer) extent(chars []xproto.Char2b) int {
	if len(chars) == 0 {
		return 0
	}
	reply, err := xproto.QueryTextExtents(f.conn.X, xproto.Fontable(f.font), chars, uint16(len(chars))).Reply()
	if err != nil {
		f.log.Warn("could not query text extents", "error", err)
		return 0
	}
	return int(reply.OverallWidth)
}

// Width returns the width of t in pixels.
func (f *FontRenderer) Width(t *text.String) int {
	return f.extent(char2b(t.UCS2()))
}

// SetFontColors stores fg and bg in gc and selects the font.
func (f *FontRenderer) SetFontColors(gc xdraw.GContext, fg, bg uint32) {
	if gc == xdraw.None {
		return
	}
	err := xproto.ChangeGCChecked(f.conn.X, xproto.Gcontext(gc),
		xproto.GcForeground|xproto.GcBackground|xproto.GcFont,
		[]uint32{fg, bg, uint32(f.font)}).Check()
	if err != nil {
		f.log.Error("could not set font colors", "gc", gc, "error", err)
	}
}

// DrawText draws t with its top-left corner at (x, y). Glyphs that do not
// fit in maxWidth are dropped.
func (f *FontRenderer) DrawText(t *text.String, d xdraw.Drawable, gc xdraw.GContext, _ *xdraw.Visual, x, y, maxWidth int) {
	if gc == xdraw.None {
		f.log.Error("could not draw text", "text", t.String(), "error", "no graphics context")
		return
	}
	chars := char2b(t.UCS2())
	if maxWidth > 0 {
		n := sort.Search(len(chars)+1, func(i int) bool {
			return f.extent(chars[:i]) > maxWidth
		})
		chars = chars[:n-1]
	}
	baseline := y + f.ascent
	for len(chars) > 0 {
		n := min(len(chars), maxGlyphsPerRequest)
		chunk := chars[:n]
		xproto.ImageText16(f.conn.X, byte(n), xproto.Drawable(d), xproto.Gcontext(gc),
			int16(x), int16(baseline), chunk)
		x += f.extent(chunk)
		chars = chars[n:]
	}
}
