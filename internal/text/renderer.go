package text

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/opd-ai/go-wmdraw/internal/logging"
	"github.com/opd-ai/go-wmdraw/internal/xdraw"
)

const ellipsis = "…"

// ImageRenderer draws text client side with a font.Face and uploads the
// result into the drawable through a graphics context, the way an
// ImageText request paints glyphs on a filled background box.
//
// Colors are native pixel values. They are remembered per graphics context
// and also stored in the server-side context.
type ImageRenderer struct {
	conn   xdraw.Conn
	face   font.Face
	log    logging.Logger
	colors map[xdraw.GContext][2]uint32
}

// NewImageRenderer returns a renderer drawing with face on conn.
func NewImageRenderer(conn xdraw.Conn, face font.Face, log logging.Logger) *ImageRenderer {
	return &ImageRenderer{
		conn:   conn,
		face:   face,
		log:    logging.OrNop(log),
		colors: make(map[xdraw.GContext][2]uint32),
	}
}

// Face returns the font face used for drawing.
func (r *ImageRenderer) Face() font.Face { return r.face }

// SetFontColors sets the foreground and background pixels for text drawn
// through gc.
func (r *ImageRenderer) SetFontColors(gc xdraw.GContext, fg, bg uint32) {
	r.colors[gc] = [2]uint32{fg, bg}
	if gc == xdraw.None {
		return
	}
	if err := r.conn.ChangeGC(gc, fg, bg); err != nil {
		r.log.Error("could not set font colors", "gc", gc, "error", err)
	}
}

// Forget drops the colors remembered for gc once it has been freed.
func (r *ImageRenderer) Forget(gc xdraw.GContext) {
	delete(r.colors, gc)
}

// Height returns the height of a text line: ascent plus descent.
func (r *ImageRenderer) Height() int {
	m := r.face.Metrics()
	return (m.Ascent + m.Descent).Ceil()
}

// Width returns the advance of the drawable text of t in pixels.
func (r *ImageRenderer) Width(t *String) int {
	return font.MeasureString(r.face, t.Plain()).Ceil()
}

// Truncate returns the longest prefix of s that fits in maxWidth pixels,
// ending with an ellipsis when anything was cut. maxWidth <= 0 means no
// limit.
func (r *ImageRenderer) Truncate(s string, maxWidth int) string {
	if maxWidth <= 0 || font.MeasureString(r.face, s).Ceil() <= maxWidth {
		return s
	}
	limit := fixed.I(maxWidth)
	runes := []rune(s)
	for n := len(runes) - 1; n > 0; n-- {
		cand := string(runes[:n]) + ellipsis
		if font.MeasureString(r.face, cand) <= limit {
			return cand
		}
	}
	return ""
}

// DrawText draws t with its top-left corner at (x, y) of d. The baseline
// sits at y plus the font ascent. Text wider than maxWidth is ellipsized.
func (r *ImageRenderer) DrawText(t *String, d xdraw.Drawable, gc xdraw.GContext, v *xdraw.Visual, x, y, maxWidth int) {
	if err := r.drawText(t, d, gc, v, x, y, maxWidth); err != nil {
		r.log.Error("could not draw text", "text", t.String(), "error", err)
	}
}

func (r *ImageRenderer) drawText(t *String, d xdraw.Drawable, gc xdraw.GContext, v *xdraw.Visual, x, y, maxWidth int) error {
	if gc == xdraw.None {
		return fmt.Errorf("text: no graphics context")
	}
	if v == nil {
		v = xdraw.DefaultVisual()
	}
	s := r.Truncate(t.Plain(), maxWidth)
	if s == "" {
		return nil
	}
	w := font.MeasureString(r.face, s).Ceil()
	if maxWidth > 0 && w > maxWidth {
		w = maxWidth
	}
	h := r.Height()
	if w <= 0 || h <= 0 {
		return nil
	}

	pix := r.colors[gc]
	fg, bg := pixelColor(v, pix[0]), pixelColor(v, pix[1])
	tile := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(tile, tile.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	dr := &font.Drawer{
		Dst:  tile,
		Src:  image.NewUniform(fg),
		Face: r.face,
		Dot:  fixed.Point26_6{X: 0, Y: r.face.Metrics().Ascent},
	}
	dr.DrawString(s)

	data, err := xdraw.EncodeZPixmap(v, tile, tile.Bounds())
	if err != nil {
		return err
	}
	return r.conn.PutImage(d, gc, v.Depth, tile.Bounds().Add(image.Pt(x, y)), data)
}

func pixelColor(v *xdraw.Visual, p uint32) color.RGBA {
	cr, cg, cb, ca := v.RGBA(p)
	return color.RGBA{R: cr, G: cg, B: cb, A: ca}
}
