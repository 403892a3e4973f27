//go:build linux

// Package x11 implements xdraw.Conn on a real X server using the pure Go
// XGB bindings.
package x11

import (
	"fmt"
	"image"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/opd-ai/go-wmdraw/internal/logging"
	"github.com/opd-ai/go-wmdraw/internal/xdraw"
)

// putImageHeader is the size of a PutImage request without its data.
const putImageHeader = 24

// Conn is a connection to an X server.
type Conn struct {
	X      *xgb.Conn
	screen *xproto.ScreenInfo
	visual *xdraw.Visual
	log    logging.Logger

	// pixels caches colors allocated on non-TrueColor screens.
	pixels map[string]uint32
}

// Open connects to display, or to $DISPLAY when display is empty.
func Open(display string, log logging.Logger) (*Conn, error) {
	x, err := xgb.NewConnDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}
	setup := xproto.Setup(x)
	if len(setup.Roots) == 0 {
		x.Close()
		return nil, fmt.Errorf("no screens found")
	}
	c := &Conn{
		X:      x,
		screen: setup.DefaultScreen(x),
		log:    logging.OrNop(log),
		pixels: make(map[string]uint32),
	}
	c.visual = c.VisualByID(uint32(c.screen.RootVisual))
	if c.visual == nil {
		x.Close()
		return nil, fmt.Errorf("root visual 0x%x not found", c.screen.RootVisual)
	}
	return c, nil
}

// Close closes the connection.
func (c *Conn) Close() {
	c.X.Close()
}

// Root returns the root window of the default screen.
func (c *Conn) Root() xdraw.Drawable {
	return xdraw.Drawable(c.screen.Root)
}

// ScreenSize returns the size of the default screen in pixels.
func (c *Conn) ScreenSize() (w, h int) {
	return int(c.screen.WidthInPixels), int(c.screen.HeightInPixels)
}

// RootVisual returns the visual of the root window.
func (c *Conn) RootVisual() *xdraw.Visual {
	return c.visual
}

func toVisual(depth byte, vi xproto.VisualInfo) *xdraw.Visual {
	return &xdraw.Visual{
		ID:        uint32(vi.VisualId),
		Class:     vi.Class,
		Depth:     depth,
		RedMask:   vi.RedMask,
		GreenMask: vi.GreenMask,
		BlueMask:  vi.BlueMask,
	}
}

// VisualByID looks a visual up on the default screen.
func (c *Conn) VisualByID(id uint32) *xdraw.Visual {
	for _, d := range c.screen.AllowedDepths {
		for _, vi := range d.Visuals {
			if uint32(vi.VisualId) == id {
				return toVisual(d.Depth, vi)
			}
		}
	}
	return nil
}

// ARGBVisual returns a 32-bit TrueColor visual if the screen has one.
func (c *Conn) ARGBVisual() (*xdraw.Visual, bool) {
	for _, d := range c.screen.AllowedDepths {
		if d.Depth != 32 {
			continue
		}
		for _, vi := range d.Visuals {
			if vi.Class == xproto.VisualClassTrueColor {
				return toVisual(d.Depth, vi), true
			}
		}
	}
	return nil, false
}

// CreateGC implements xdraw.Conn. Graphics exposures are disabled so
// copies do not flood the event queue.
func (c *Conn) CreateGC(d xdraw.Drawable) (xdraw.GContext, error) {
	gc, err := xproto.NewGcontextId(c.X)
	if err != nil {
		return xdraw.None, fmt.Errorf("allocate gc id: %w", err)
	}
	err = xproto.CreateGCChecked(c.X, gc, xproto.Drawable(d),
		xproto.GcGraphicsExposures, []uint32{0}).Check()
	if err != nil {
		return xdraw.None, fmt.Errorf("create gc: %w", err)
	}
	return xdraw.GContext(gc), nil
}

// FreeGC implements xdraw.Conn.
func (c *Conn) FreeGC(gc xdraw.GContext) error {
	return xproto.FreeGCChecked(c.X, xproto.Gcontext(gc)).Check()
}

// ChangeGC implements xdraw.Conn.
func (c *Conn) ChangeGC(gc xdraw.GContext, fg, bg uint32) error {
	return xproto.ChangeGCChecked(c.X, xproto.Gcontext(gc),
		xproto.GcForeground|xproto.GcBackground, []uint32{fg, bg}).Check()
}

// maxRows returns how many scanlines of stride bytes fit in one request.
func (c *Conn) maxRows(stride int) int {
	maxBytes := int(xproto.Setup(c.X).MaximumRequestLength)*4 - putImageHeader
	return max(maxBytes/max(stride, 1), 1)
}

// PutImage implements xdraw.Conn, splitting images larger than the maximum
// request size into bands of rows.
func (c *Conn) PutImage(d xdraw.Drawable, gc xdraw.GContext, depth uint8, r image.Rectangle, data []byte) error {
	stride, err := xdraw.Stride(depth, r.Dx())
	if err != nil {
		return err
	}
	rows := c.maxRows(stride)
	for y := r.Min.Y; y < r.Max.Y; y += rows {
		h := min(rows, r.Max.Y-y)
		off := (y - r.Min.Y) * stride
		err := xproto.PutImageChecked(c.X, xproto.ImageFormatZPixmap,
			xproto.Drawable(d), xproto.Gcontext(gc),
			uint16(r.Dx()), uint16(h), int16(r.Min.X), int16(y),
			0, depth, data[off:off+h*stride]).Check()
		if err != nil {
			return fmt.Errorf("put image: %w", err)
		}
	}
	return nil
}

// GetImage implements xdraw.Conn.
func (c *Conn) GetImage(d xdraw.Drawable, r image.Rectangle) (uint8, []byte, error) {
	reply, err := xproto.GetImage(c.X, xproto.ImageFormatZPixmap, xproto.Drawable(d),
		int16(r.Min.X), int16(r.Min.Y), uint16(r.Dx()), uint16(r.Dy()), 0xffffffff).Reply()
	if err != nil {
		return 0, nil, fmt.Errorf("get image: %w", err)
	}
	return reply.Depth, reply.Data, nil
}

// ColorPixel implements xdraw.Conn. TrueColor screens compute the pixel
// locally; other screens allocate a read-only color cell once per color.
func (c *Conn) ColorPixel(hex string) uint32 {
	if c.visual.IsTrueColor() {
		return c.visual.ColorPixel(hex)
	}
	if p, ok := c.pixels[hex]; ok {
		return p
	}
	r, g, b, _, err := xdraw.ParseHex(hex)
	if err != nil {
		c.log.Error("could not parse color", "color", hex, "error", err)
		return 0
	}
	reply, err := xproto.AllocColor(c.X, c.screen.DefaultColormap,
		uint16(r)*257, uint16(g)*257, uint16(b)*257).Reply()
	if err != nil {
		c.log.Error("could not allocate color", "color", hex, "error", err)
		return 0
	}
	c.pixels[hex] = reply.Pixel
	return reply.Pixel
}

var _ xdraw.Conn = (*Conn)(nil)
