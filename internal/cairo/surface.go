// Package cairo implements a small Cairo-compatible drawing context over X11
// drawables.
//
// A Surface keeps a client-side copy of the drawable's pixels. Vector
// drawing happens in that copy and reaches the server only when the surface
// is flushed, the same way cairo's XCB backend batches its writes. Anything
// that draws on the drawable by other means must flush first and mark the
// surface dirty afterwards, so the copy is fetched again before it is next
// read.
package cairo

import (
	"errors"
	"fmt"
	"image"

	"github.com/opd-ai/go-wmdraw/internal/xdraw"
)

var (
	// ErrSurfaceFinished is reported by operations on a destroyed surface.
	ErrSurfaceFinished = errors.New("cairo: surface finished")
	// ErrInvalidRestore is reported when Restore has no matching Save.
	ErrInvalidRestore = errors.New("cairo: restore without matching save")
	// ErrInvalidSize is reported for negative surface dimensions.
	ErrInvalidSize = errors.New("cairo: invalid size")
)

// Surface is an XCB-style surface bound to one drawable.
type Surface struct {
	conn     xdraw.Conn
	drawable xdraw.Drawable
	visual   *xdraw.Visual
	width    int
	height   int

	cache  *image.RGBA
	damage image.Rectangle // written locally, not yet sent to the server
	stale  image.Rectangle // changed on the server, not yet read back

	gc        xdraw.GContext
	status    error
	destroyed bool
}

// NewXCBSurface creates a surface drawing on d, whose pixels are laid out
// according to visual. Nothing is read from the server until the surface
// is first drawn on.
func NewXCBSurface(conn xdraw.Conn, d xdraw.Drawable, visual *xdraw.Visual, width, height int) *Surface {
	s := &Surface{
		conn:     conn,
		drawable: d,
		visual:   visual,
	}
	if visual == nil {
		s.visual = xdraw.DefaultVisual()
	}
	if width < 0 || height < 0 {
		s.setError(fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height))
		width, height = 0, 0
	}
	s.resize(width, height)
	return s
}

func (s *Surface) resize(width, height int) {
	s.width, s.height = width, height
	s.cache = image.NewRGBA(image.Rect(0, 0, width, height))
	s.damage = image.Rectangle{}
	s.stale = s.cache.Bounds()
}

func (s *Surface) setError(err error) {
	if s.status == nil {
		s.status = err
	}
}

// Drawable returns the drawable the surface targets.
func (s *Surface) Drawable() xdraw.Drawable { return s.drawable }

// Visual returns the pixel format of the surface.
func (s *Surface) Visual() *xdraw.Visual { return s.visual }

// Width returns the surface width in pixels.
func (s *Surface) Width() int { return s.width }

// Height returns the surface height in pixels.
func (s *Surface) Height() int { return s.height }

// Bounds returns the rectangle covered by the surface.
func (s *Surface) Bounds() image.Rectangle { return image.Rect(0, 0, s.width, s.height) }

// Status returns the first error the surface ran into, or nil.
func (s *Surface) Status() error { return s.status }

// IsDestroyed reports whether Destroy has been called.
func (s *Surface) IsDestroyed() bool { return s.destroyed }

// Damage returns the area drawn locally but not flushed yet.
func (s *Surface) Damage() image.Rectangle { return s.damage }

// Stale returns the area that will be read back from the server before the
// next local read.
func (s *Surface) Stale() image.Rectangle { return s.stale }

// Flush sends all pending drawing to the server.
func (s *Surface) Flush() {
	if s.destroyed || s.damage.Empty() {
		return
	}
	r := s.damage
	s.damage = image.Rectangle{}
	if err := s.ensureGC(); err != nil {
		s.setError(err)
		return
	}
	data, err := xdraw.EncodeZPixmap(s.visual, s.cache, r)
	if err != nil {
		s.setError(fmt.Errorf("cairo: flush: %w", err))
		return
	}
	if err := s.conn.PutImage(s.drawable, s.gc, s.visual.Depth, r, data); err != nil {
		s.setError(fmt.Errorf("cairo: flush: %w", err))
	}
}

func (s *Surface) ensureGC() error {
	if s.gc != xdraw.None {
		return nil
	}
	gc, err := s.conn.CreateGC(s.drawable)
	if err != nil {
		return fmt.Errorf("cairo: create gc: %w", err)
	}
	s.gc = gc
	return nil
}

// MarkDirty tells the surface that the drawable was changed by other means.
// Pending local drawing that was not flushed is overwritten on the next
// read, so callers flush before drawing externally.
func (s *Surface) MarkDirty() {
	s.MarkDirtyRectangle(0, 0, s.width, s.height)
}

// MarkDirtyRectangle is like MarkDirty but limited to one area.
func (s *Surface) MarkDirtyRectangle(x, y, width, height int) {
	if s.destroyed {
		return
	}
	r := image.Rect(x, y, x+width, y+height).Intersect(s.Bounds())
	s.stale = s.stale.Union(r)
}

// SetSize changes the size of the surface after its drawable was resized.
// Pending drawing is flushed and the contents are read back lazily.
func (s *Surface) SetSize(width, height int) {
	if s.destroyed {
		s.setError(ErrSurfaceFinished)
		return
	}
	if width < 0 || height < 0 {
		s.setError(fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height))
		return
	}
	s.Flush()
	s.resize(width, height)
}

// refresh reads the stale area back from the server.
func (s *Surface) refresh() {
	r := s.stale
	if r.Empty() {
		return
	}
	s.stale = image.Rectangle{}
	_, data, err := s.conn.GetImage(s.drawable, r)
	if err != nil {
		s.setError(fmt.Errorf("cairo: read back: %w", err))
		return
	}
	if err := xdraw.DecodeZPixmap(s.visual, data, r, s.cache); err != nil {
		s.setError(fmt.Errorf("cairo: read back: %w", err))
	}
}

// pixels returns the up to date local copy.
func (s *Surface) pixels() *image.RGBA {
	s.refresh()
	return s.cache
}

// Image returns a copy of the surface contents.
func (s *Surface) Image() *image.RGBA {
	if s.destroyed {
		return image.NewRGBA(image.Rectangle{})
	}
	src := s.pixels()
	img := image.NewRGBA(src.Bounds())
	copy(img.Pix, src.Pix)
	return img
}

func (s *Surface) addDamage(r image.Rectangle) {
	s.damage = s.damage.Union(r.Intersect(s.Bounds()))
}

// Destroy flushes pending drawing and releases the surface's server
// resources. Calling it again does nothing.
func (s *Surface) Destroy() {
	if s.destroyed {
		return
	}
	s.Flush()
	if s.gc != xdraw.None {
		if err := s.conn.FreeGC(s.gc); err != nil {
			s.setError(fmt.Errorf("cairo: free gc: %w", err))
		}
		s.gc = xdraw.None
	}
	s.cache = nil
	s.damage = image.Rectangle{}
	s.stale = image.Rectangle{}
	s.destroyed = true
}
