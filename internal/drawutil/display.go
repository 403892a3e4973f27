package drawutil

import (
	"github.com/opd-ai/go-wmdraw/internal/logging"
	"github.com/opd-ai/go-wmdraw/internal/text"
	"github.com/opd-ai/go-wmdraw/internal/xdraw"
)

// TextRenderer draws text directly into a drawable using a graphics
// context. Colors are native pixel values.
type TextRenderer interface {
	SetFontColors(gc xdraw.GContext, fg, bg uint32)
	DrawText(t *text.String, d xdraw.Drawable, gc xdraw.GContext, v *xdraw.Visual, x, y, maxWidth int)
}

// Options configure a Display.
type Options struct {
	// Visual is used by surfaces initialized without one. It is resolved
	// once at startup; nil means xdraw.DefaultVisual.
	Visual *xdraw.Visual
	// Text draws text. Without it Text operations only log.
	Text   TextRenderer
	Logger logging.Logger
}

// Display is the state shared by all surfaces of one connection.
type Display struct {
	conn   xdraw.Conn
	visual *xdraw.Visual
	text   TextRenderer
	log    logging.Logger

	// Colors parses colors into pixels for this connection.
	Colors *ColorParser
}

// NewDisplay returns a Display drawing through conn.
func NewDisplay(conn xdraw.Conn, opts Options) *Display {
	d := &Display{
		conn:   conn,
		visual: opts.Visual,
		text:   opts.Text,
		log:    logging.OrNop(opts.Logger),
	}
	if d.visual == nil {
		d.visual = xdraw.DefaultVisual()
	}
	d.Colors = NewColorParser(d.pixeler(), d.log)
	return d
}

// pixeler packs colors for the default visual. The connection packs for
// the root visual, so it is only asked on non-TrueColor screens.
func (d *Display) pixeler() Pixeler {
	if d.visual.IsTrueColor() {
		return d.visual
	}
	return d.conn
}

// Conn returns the connection.
func (d *Display) Conn() xdraw.Conn { return d.conn }

// DefaultVisual returns the visual used for surfaces created without one.
func (d *Display) DefaultVisual() *xdraw.Visual { return d.visual }

// Logger returns the display logger.
func (d *Display) Logger() logging.Logger { return d.log }

// TextRenderer returns the text renderer, which may be nil.
func (d *Display) TextRenderer() TextRenderer { return d.text }

// HexToColor is shorthand for d.Colors.HexToColor.
func (d *Display) HexToColor(s string) Color { return d.Colors.HexToColor(s) }
