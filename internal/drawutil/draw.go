package drawutil

import (
	"github.com/opd-ai/go-wmdraw/internal/cairo"
	"github.com/opd-ai/go-wmdraw/internal/text"
)

func setSourceColor(cr *cairo.Context, c Color) {
	cr.SetSourceRGBA(c.Red, c.Green, c.Blue, c.Alpha)
}

// Text draws t at (x, y) in fg on a bg box, cut to maxWidth pixels.
// Pending vector drawing is flushed first because the text goes straight
// to the drawable, and the vector cache is invalidated afterwards.
func Text(t *text.String, s *Surface, fg, bg Color, x, y, maxWidth int) {
	if !s.guard() {
		return
	}
	s.Flush()
	tr := s.disp.text
	if tr == nil || t == nil {
		s.disp.log.Warn("no text renderer or text, skipping text")
		return
	}
	tr.SetFontColors(s.GC, fg.Pixel, bg.Pixel)
	tr.DrawText(t, s.ID, s.GC, s.Visual, x, y, maxWidth)
	s.Invalidate()
}

// Rectangle fills the rectangle [x, x+w) × [y, y+h) with c. The color
// replaces the destination, alpha included.
func Rectangle(s *Surface, c Color, x, y, w, h float64) {
	if !s.guard() {
		return
	}
	cr := s.cr
	cr.Save()
	cr.SetOperator(cairo.OperatorSource)
	setSourceColor(cr, c)
	cr.Rectangle(x, y, w, h)
	cr.Fill()
	// text drawn next must see these pixels
	s.Flush()
	cr.Restore()
}

// ClearSurface replaces the whole surface with c.
func ClearSurface(s *Surface, c Color) {
	if !s.guard() {
		return
	}
	cr := s.cr
	cr.Save()
	cr.SetOperator(cairo.OperatorSource)
	setSourceColor(cr, c)
	cr.Paint()
	s.Flush()
	cr.Restore()
}

// CopySurface copies the w×h area at (srcX, srcY) of src to (destX, destY)
// of dest. Both surfaces are flushed before it returns.
func CopySurface(src, dest *Surface, srcX, srcY, destX, destY, w, h float64) {
	if !src.guard() || !dest.guard() {
		return
	}
	cr := dest.cr
	cr.Save()
	cr.SetOperator(cairo.OperatorSource)
	cr.SetSourceSurface(src.surface, destX-srcX, destY-srcY)
	cr.Rectangle(destX, destY, w, h)
	cr.Fill()
	src.Flush()
	dest.Flush()
	cr.Restore()
}
