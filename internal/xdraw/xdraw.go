// Package xdraw holds the X11-shaped vocabulary shared by the drawing
// layers: resource identifiers, visuals, the ZPixmap pixel encoding, and the
// Conn interface through which a surface talks to a display server.
//
// Two Conn implementations exist: memconn, an in-memory server used for
// headless rendering and tests, and x11, which speaks the core protocol
// through github.com/jezek/xgb.
package xdraw

import (
	"errors"
	"image"
)

// Drawable identifies a window or pixmap on the server.
type Drawable uint32

// GContext identifies a server-side graphics context.
type GContext uint32

// None is the X11 null resource. A surface whose drawable is None is
// uninitialized.
const None = 0

var (
	// ErrUnsupportedDepth is returned when pixels must be encoded for a depth
	// without a 16 or 32 bits-per-pixel ZPixmap layout.
	ErrUnsupportedDepth = errors.New("xdraw: unsupported depth")
	// ErrShortData is returned when an image reply is smaller than its rectangle.
	ErrShortData = errors.New("xdraw: image data too short")
	// ErrBadDrawable is returned for requests naming an unknown drawable.
	ErrBadDrawable = errors.New("xdraw: bad drawable")
	// ErrBadGContext is returned for requests naming an unknown graphics context.
	ErrBadGContext = errors.New("xdraw: bad graphics context")
)

// Conn is the subset of a display connection the drawing layers need.
// Rectangles are in drawable coordinates; image data uses the ZPixmap
// layout described by EncodeZPixmap.
type Conn interface {
	// CreateGC allocates a graphics context usable on drawables with the
	// same root and depth as d.
	CreateGC(d Drawable) (GContext, error)
	FreeGC(gc GContext) error
	// ChangeGC sets the foreground and background pixels of gc.
	ChangeGC(gc GContext, fg, bg uint32) error
	PutImage(d Drawable, gc GContext, depth uint8, r image.Rectangle, data []byte) error
	GetImage(d Drawable, r image.Rectangle) (depth uint8, data []byte, err error)
	// ColorPixel returns the native pixel value for a "#RRGGBB" or
	// "#RRGGBBAA" color string.
	ColorPixel(hex string) uint32
}
