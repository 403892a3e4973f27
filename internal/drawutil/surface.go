package drawutil

import (
	"github.com/opd-ai/go-wmdraw/internal/cairo"
	"github.com/opd-ai/go-wmdraw/internal/logging"
	"github.com/opd-ai/go-wmdraw/internal/xdraw"
)

// Surface is a drawable together with the resources needed to draw on it.
// The zero value is an uninitialized surface on which every drawing
// operation is a no-op.
type Surface struct {
	// ID is the drawable, or xdraw.None while uninitialized.
	ID xdraw.Drawable
	// GC is the graphics context used for text. It is xdraw.None if it
	// could not be allocated.
	GC     xdraw.GContext
	Visual *xdraw.Visual
	Width  int
	Height int

	surface *cairo.Surface
	cr      *cairo.Context
	disp    *Display
}

// Init binds s to drawable. A nil visual selects the display default.
// Failing to allocate the graphics context is logged and the surface is
// still usable for everything but text. Initializing a surface that is
// already initialized frees it first.
func (s *Surface) Init(d *Display, drawable xdraw.Drawable, visual *xdraw.Visual, width, height int) {
	if s.Initialized() {
		s.Free()
	}
	if visual == nil {
		visual = d.visual
	}
	s.disp = d
	s.ID = drawable
	s.Visual = visual
	s.Width = width
	s.Height = height

	gc, err := d.conn.CreateGC(drawable)
	if err != nil {
		d.log.Error("could not create graphical context", "drawable", drawable, "error", err)
		gc = xdraw.None
	}
	s.GC = gc

	s.surface = cairo.NewXCBSurface(d.conn, drawable, visual, width, height)
	s.cr = cairo.Create(s.surface)
}

// Initialized reports whether s is bound to a drawable.
func (s *Surface) Initialized() bool {
	return s.ID != xdraw.None
}

// guard logs and returns false if s is uninitialized.
func (s *Surface) guard() bool {
	if s.Initialized() {
		return true
	}
	s.logger().Error("surface is not initialized, skipping drawing")
	return false
}

// SetSize records a new size after the drawable was resized. The graphics
// context is kept. Negative sizes are logged and ignored.
func (s *Surface) SetSize(width, height int) {
	if width < 0 || height < 0 {
		s.logger().Error("invalid surface size, keeping the old one", "width", width, "height", height)
		return
	}
	s.Width = width
	s.Height = height
	if s.surface != nil {
		s.surface.SetSize(width, height)
	}
}

// Free releases the graphics context and the cairo resources and resets s
// to the uninitialized state. It may be called any number of times.
func (s *Surface) Free() {
	if s.GC != xdraw.None && s.disp != nil {
		if err := s.disp.conn.FreeGC(s.GC); err != nil {
			s.disp.log.Warn("could not free graphical context", "gc", s.GC, "error", err)
		}
		if f, ok := s.disp.text.(interface{ Forget(xdraw.GContext) }); ok {
			f.Forget(s.GC)
		}
	}
	if s.cr != nil {
		s.cr.Destroy()
	}
	if s.surface != nil {
		s.surface.Destroy()
	}
	s.cr = nil
	s.surface = nil
	s.GC = xdraw.None
	s.ID = xdraw.None
}

// Flush sends buffered vector drawing to the drawable.
func (s *Surface) Flush() {
	if s.surface != nil {
		s.surface.Flush()
	}
}

// Invalidate declares the vector cache stale after the drawable was drawn
// on by other means.
func (s *Surface) Invalidate() {
	if s.surface != nil {
		s.surface.MarkDirty()
	}
}

// Status returns the first error recorded by the cairo surface.
func (s *Surface) Status() error {
	if s.surface == nil {
		return nil
	}
	return s.surface.Status()
}

// Cairo returns the cairo surface, or nil while uninitialized.
func (s *Surface) Cairo() *cairo.Surface { return s.surface }

// Context returns the cairo context, or nil while uninitialized.
func (s *Surface) Context() *cairo.Context { return s.cr }

// Display returns the display s was last initialized with.
func (s *Surface) Display() *Display { return s.disp }

func (s *Surface) logger() logging.Logger {
	if s.disp == nil {
		return logging.NopLogger()
	}
	return s.disp.log
}
