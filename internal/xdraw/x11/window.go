//go:build linux

package x11

import (
	"fmt"

	"github.com/jezek/xgb/xproto"

	"github.com/opd-ai/go-wmdraw/internal/xdraw"
)

// WindowOptions describe a top-level window.
type WindowOptions struct {
	X, Y          int
	Width, Height int
	// Visual defaults to the root visual. Other visuals get their own
	// colormap.
	Visual *xdraw.Visual
	Title  string
	// Dock sets override-redirect so the window manager leaves the window
	// alone, as bars do.
	Dock bool
}

// CreateWindow creates and maps a window that reports exposure and
// configure events.
func (c *Conn) CreateWindow(opts WindowOptions) (xdraw.Drawable, error) {
	v := opts.Visual
	if v == nil {
		v = c.visual
	}
	wid, err := xproto.NewWindowId(c.X)
	if err != nil {
		return xdraw.None, fmt.Errorf("allocate window id: %w", err)
	}

	colormap := c.screen.DefaultColormap
	if v.ID != c.visual.ID {
		cm, err := xproto.NewColormapId(c.X)
		if err != nil {
			return xdraw.None, fmt.Errorf("allocate colormap id: %w", err)
		}
		err = xproto.CreateColormapChecked(c.X, xproto.ColormapAllocNone, cm,
			c.screen.Root, xproto.Visualid(v.ID)).Check()
		if err != nil {
			return xdraw.None, fmt.Errorf("create colormap: %w", err)
		}
		colormap = cm
	}

	override := uint32(0)
	if opts.Dock {
		override = 1
	}
	// value order follows the mask bit order
	mask := uint32(xproto.CwBackPixel | xproto.CwBorderPixel | xproto.CwOverrideRedirect |
		xproto.CwEventMask | xproto.CwColormap)
	values := []uint32{
		0,
		0,
		override,
		xproto.EventMaskExposure | xproto.EventMaskStructureNotify,
		uint32(colormap),
	}
	err = xproto.CreateWindowChecked(c.X, v.Depth, wid, c.screen.Root,
		int16(opts.X), int16(opts.Y), uint16(opts.Width), uint16(opts.Height), 0,
		xproto.WindowClassInputOutput, xproto.Visualid(v.ID), mask, values).Check()
	if err != nil {
		return xdraw.None, fmt.Errorf("create window: %w", err)
	}
	if opts.Title != "" {
		xproto.ChangeProperty(c.X, xproto.PropModeReplace, wid, xproto.AtomWmName,
			xproto.AtomString, 8, uint32(len(opts.Title)), []byte(opts.Title))
	}
	if err := xproto.MapWindowChecked(c.X, wid).Check(); err != nil {
		return xdraw.None, fmt.Errorf("map window: %w", err)
	}
	return xdraw.Drawable(wid), nil
}

// ResizeWindow changes the size of a window.
func (c *Conn) ResizeWindow(w xdraw.Drawable, width, height int) error {
	return xproto.ConfigureWindowChecked(c.X, xproto.Window(w),
		xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{uint32(width), uint32(height)}).Check()
}

// UnmapWindow hides a window.
func (c *Conn) UnmapWindow(w xdraw.Drawable) error {
	return xproto.UnmapWindowChecked(c.X, xproto.Window(w)).Check()
}

// MapWindow shows a window.
func (c *Conn) MapWindow(w xdraw.Drawable) error {
	return xproto.MapWindowChecked(c.X, xproto.Window(w)).Check()
}

// DestroyWindow destroys a window.
func (c *Conn) DestroyWindow(w xdraw.Drawable) error {
	return xproto.DestroyWindowChecked(c.X, xproto.Window(w)).Check()
}

// CreatePixmap creates a pixmap of the given depth on the screen of d.
func (c *Conn) CreatePixmap(d xdraw.Drawable, depth uint8, width, height int) (xdraw.Drawable, error) {
	pid, err := xproto.NewPixmapId(c.X)
	if err != nil {
		return xdraw.None, fmt.Errorf("allocate pixmap id: %w", err)
	}
	err = xproto.CreatePixmapChecked(c.X, depth, pid, xproto.Drawable(d),
		uint16(width), uint16(height)).Check()
	if err != nil {
		return xdraw.None, fmt.Errorf("create pixmap: %w", err)
	}
	return xdraw.Drawable(pid), nil
}

// FreePixmap releases a pixmap.
func (c *Conn) FreePixmap(p xdraw.Drawable) error {
	return xproto.FreePixmapChecked(c.X, xproto.Pixmap(p)).Check()
}

// EventKind classifies the events the drawing loop cares about.
type EventKind int

const (
	// EventOther is any event not listed below.
	EventOther EventKind = iota
	// EventExpose asks for a redraw of part of a window.
	EventExpose
	// EventConfigure reports a new window geometry.
	EventConfigure
	// EventClosed means the connection went away.
	EventClosed
)

// Event is a simplified X event.
type Event struct {
	Kind          EventKind
	Window        xdraw.Drawable
	Width, Height int
	// Last is set on the final Expose event of a series.
	Last bool
}

// WaitEvent blocks until the next event arrives. Protocol errors are
// returned as errors.
func (c *Conn) WaitEvent() (Event, error) {
	ev, xerr := c.X.WaitForEvent()
	if ev == nil && xerr == nil {
		return Event{Kind: EventClosed}, nil
	}
	if xerr != nil {
		return Event{Kind: EventOther}, fmt.Errorf("x11: %s", xerr.Error())
	}
	switch e := ev.(type) {
	case xproto.ExposeEvent:
		return Event{Kind: EventExpose, Window: xdraw.Drawable(e.Window), Last: e.Count == 0}, nil
	case xproto.ConfigureNotifyEvent:
		return Event{
			Kind:   EventConfigure,
			Window: xdraw.Drawable(e.Window),
			Width:  int(e.Width),
			Height: int(e.Height),
		}, nil
	}
	return Event{Kind: EventOther}, nil
}
