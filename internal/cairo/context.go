package cairo

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

// Operator selects how drawn pixels combine with the destination.
type Operator int

const (
	// OperatorClear erases the destination where the shape covers it.
	OperatorClear Operator = iota
	// OperatorSource replaces the destination, alpha included, with the
	// source where the shape covers it.
	OperatorSource
	// OperatorOver draws the source over the destination. It is the default.
	OperatorOver
)

func (op Operator) String() string {
	switch op {
	case OperatorClear:
		return "CLEAR"
	case OperatorSource:
		return "SOURCE"
	case OperatorOver:
		return "OVER"
	}
	return "UNKNOWN"
}

// pattern is the current source: either a solid color or another surface
// placed at an offset.
type pattern struct {
	solid   color.RGBA // premultiplied
	surface *Surface
	dx, dy  int
}

type state struct {
	op     Operator
	source pattern
}

type segment struct {
	x, y  float32
	move  bool
	close bool
}

// Context is a drawing context targeting one Surface.
type Context struct {
	target    *Surface
	st        state
	saved     []state
	path      []segment
	destroyed bool
}

// Create returns a context drawing on target with an opaque black source
// and the OVER operator.
func Create(target *Surface) *Context {
	return &Context{
		target: target,
		st: state{
			op:     OperatorOver,
			source: pattern{solid: color.RGBA{A: 0xff}},
		},
	}
}

// Target returns the surface the context draws on.
func (c *Context) Target() *Surface { return c.target }

// Status returns the target's error state.
func (c *Context) Status() error { return c.target.Status() }

// Save pushes a copy of the current operator and source.
func (c *Context) Save() {
	c.saved = append(c.saved, c.st)
}

// Restore pops the state pushed by the matching Save.
func (c *Context) Restore() {
	n := len(c.saved)
	if n == 0 {
		c.target.setError(ErrInvalidRestore)
		return
	}
	c.st = c.saved[n-1]
	c.saved = c.saved[:n-1]
}

// SaveDepth returns how many states are saved.
func (c *Context) SaveDepth() int { return len(c.saved) }

// SetOperator sets the compositing operator.
func (c *Context) SetOperator(op Operator) { c.st.op = op }

// Operator returns the compositing operator.
func (c *Context) Operator() Operator { return c.st.op }

// SetSourceRGB sets an opaque solid source. Channels are in [0, 1].
func (c *Context) SetSourceRGB(r, g, b float64) {
	c.SetSourceRGBA(r, g, b, 1)
}

// SetSourceRGBA sets a solid source. Channels are in [0, 1] and not
// premultiplied.
func (c *Context) SetSourceRGBA(r, g, b, a float64) {
	a = clampUnit(a)
	c.st.source = pattern{solid: color.RGBA{
		R: clampToByte(clampUnit(r) * a),
		G: clampToByte(clampUnit(g) * a),
		B: clampToByte(clampUnit(b) * a),
		A: clampToByte(a),
	}}
}

// SetSourceSurface uses src as the source, with its origin at (x, y) in
// user space. Offsets are rounded to whole pixels. Areas outside src are
// transparent.
func (c *Context) SetSourceSurface(src *Surface, x, y float64) {
	c.st.source = pattern{
		surface: src,
		dx:      int(math.Round(x)),
		dy:      int(math.Round(y)),
	}
}

// NewPath discards the current path.
func (c *Context) NewPath() { c.path = c.path[:0] }

// MoveTo begins a new sub-path.
func (c *Context) MoveTo(x, y float64) {
	c.path = append(c.path, segment{x: float32(x), y: float32(y), move: true})
}

// LineTo adds a line to the current sub-path.
func (c *Context) LineTo(x, y float64) {
	c.path = append(c.path, segment{x: float32(x), y: float32(y)})
}

// ClosePath closes the current sub-path.
func (c *Context) ClosePath() {
	c.path = append(c.path, segment{close: true})
}

// Rectangle adds a closed rectangular sub-path. Negative sizes extend the
// rectangle left or up.
func (c *Context) Rectangle(x, y, width, height float64) {
	c.MoveTo(x, y)
	c.LineTo(x+width, y)
	c.LineTo(x+width, y+height)
	c.LineTo(x, y+height)
	c.ClosePath()
}

// Fill fills the current path with the source and clears the path.
func (c *Context) Fill() {
	c.FillPreserve()
	c.NewPath()
}

// FillPreserve fills the current path and keeps it.
func (c *Context) FillPreserve() {
	if !c.canDraw() || len(c.path) == 0 {
		return
	}
	if r, ok := c.pixelAlignedRect(); ok {
		c.composite(r, nil)
		return
	}
	mask, bbox := c.rasterize()
	if bbox.Empty() {
		return
	}
	c.composite(bbox, mask)
}

// Paint fills the whole surface with the source.
func (c *Context) Paint() {
	if !c.canDraw() {
		return
	}
	c.composite(c.target.Bounds(), nil)
}

// Destroy releases the context. The target surface is not affected.
func (c *Context) Destroy() {
	c.destroyed = true
	c.saved = nil
	c.path = nil
}

func (c *Context) canDraw() bool {
	if c.destroyed {
		return false
	}
	if c.target.destroyed {
		c.target.setError(ErrSurfaceFinished)
		return false
	}
	return true
}

// pixelAlignedRect reports whether the path is one rectangle on whole pixel
// coordinates, which needs no coverage mask.
func (c *Context) pixelAlignedRect() (image.Rectangle, bool) {
	p := c.path
	if len(p) != 5 || !p[0].move || !p[4].close {
		return image.Rectangle{}, false
	}
	for _, s := range p[:4] {
		if s.x != float32(math.Floor(float64(s.x))) || s.y != float32(math.Floor(float64(s.y))) {
			return image.Rectangle{}, false
		}
	}
	if p[0].y != p[1].y || p[1].x != p[2].x || p[2].y != p[3].y || p[3].x != p[0].x {
		return image.Rectangle{}, false
	}
	r := image.Rect(int(p[0].x), int(p[0].y), int(p[2].x), int(p[2].y))
	return r.Intersect(c.target.Bounds()), true
}

// rasterize computes the coverage of the path with the non-zero winding
// rule.
func (c *Context) rasterize() (*image.Alpha, image.Rectangle) {
	b := c.target.Bounds()
	if b.Empty() {
		return nil, image.Rectangle{}
	}
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.DrawOp = draw.Src
	minX, minY := float32(math.Inf(1)), float32(math.Inf(1))
	maxX, maxY := float32(math.Inf(-1)), float32(math.Inf(-1))
	open := false
	for _, s := range c.path {
		if s.close {
			if open {
				z.ClosePath()
				open = false
			}
			continue
		}
		minX, minY = min(minX, s.x), min(minY, s.y)
		maxX, maxY = max(maxX, s.x), max(maxY, s.y)
		if s.move || !open {
			if open {
				z.ClosePath()
			}
			z.MoveTo(s.x, s.y)
			open = true
			continue
		}
		z.LineTo(s.x, s.y)
	}
	if open {
		z.ClosePath()
	}
	mask := image.NewAlpha(b)
	z.Draw(mask, b, image.Opaque, image.Point{})
	bbox := image.Rect(
		int(math.Floor(float64(minX))), int(math.Floor(float64(minY))),
		int(math.Ceil(float64(maxX))), int(math.Ceil(float64(maxY))),
	)
	return mask, bbox.Intersect(b)
}

// sourceImage returns the source as an image in target coordinates.
func (c *Context) sourceImage() image.Image {
	src := c.st.source
	if src.surface == nil {
		return image.NewUniform(src.solid)
	}
	pix := src.surface.pixels()
	if src.surface == c.target {
		snap := image.NewRGBA(pix.Bounds())
		copy(snap.Pix, pix.Pix)
		pix = snap
	}
	return &offsetImage{img: pix, dx: src.dx, dy: src.dy}
}

// composite applies the operator inside r. A nil mask means full coverage.
func (c *Context) composite(r image.Rectangle, mask *image.Alpha) {
	if r.Empty() {
		return
	}
	// Replacing every pixel of the stale area makes reading it back useless.
	if mask == nil && c.st.op != OperatorOver && c.st.source.surface != c.target && c.target.stale.In(r) {
		c.target.stale = image.Rectangle{}
	}
	dst := c.target.pixels()
	src := c.sourceImage()
	switch c.st.op {
	case OperatorOver:
		if mask == nil {
			draw.Draw(dst, r, src, r.Min, draw.Over)
		} else {
			draw.DrawMask(dst, r, src, r.Min, mask, r.Min, draw.Over)
		}
	case OperatorSource:
		if mask == nil {
			if c.st.source.surface != nil {
				draw.Draw(dst, r, image.Transparent, image.Point{}, draw.Src)
			}
			draw.Draw(dst, r, src, r.Min, draw.Src)
		} else {
			lerp(dst, r, src, mask)
		}
	case OperatorClear:
		if mask == nil {
			draw.Draw(dst, r, image.Transparent, image.Point{}, draw.Src)
		} else {
			lerp(dst, r, image.Transparent, mask)
		}
	}
	c.target.addDamage(r)
}

// lerp blends src into dst by mask coverage: full coverage replaces the
// destination, partial coverage interpolates between the two.
func lerp(dst *image.RGBA, r image.Rectangle, src image.Image, mask *image.Alpha) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m := uint32(mask.AlphaAt(x, y).A)
			if m == 0 {
				continue
			}
			sr, sg, sb, sa := src.At(x, y).RGBA()
			i := dst.PixOffset(x, y)
			d := dst.Pix[i : i+4 : i+4]
			d[0] = mix(d[0], sr, m)
			d[1] = mix(d[1], sg, m)
			d[2] = mix(d[2], sb, m)
			d[3] = mix(d[3], sa, m)
		}
	}
}

func mix(d uint8, s16, m uint32) uint8 {
	s := s16 >> 8
	return uint8((s*m + uint32(d)*(0xff-m) + 0x7f) / 0xff)
}

// offsetImage shows img translated by (dx, dy), transparent outside it.
type offsetImage struct {
	img    *image.RGBA
	dx, dy int
}

func (o *offsetImage) ColorModel() color.Model { return color.RGBAModel }

func (o *offsetImage) Bounds() image.Rectangle {
	return o.img.Bounds().Add(image.Pt(o.dx, o.dy))
}

func (o *offsetImage) At(x, y int) color.Color {
	return o.img.RGBAAt(x-o.dx, y-o.dy)
}

func clampUnit(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampToByte(v float64) uint8 {
	return uint8(math.Round(clampUnit(v) * 255))
}
