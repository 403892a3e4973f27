// Package memconn implements xdraw.Conn as an in-memory display server.
//
// Drawables are plain pixel arrays holding native pixel values, the way an
// X server stores them, so that requests go through the same ZPixmap
// encoding as a real connection. Every request is counted, which lets tests
// assert exactly which calls a drawing operation made.
package memconn

import (
	"encoding/binary"
	"fmt"
	"image"
	"sort"
	"sync"

	"github.com/opd-ai/go-wmdraw/internal/xdraw"
)

type drawable struct {
	w, h  int
	depth uint8
	pix   []uint32
}

func (d *drawable) bounds() image.Rectangle {
	return image.Rect(0, 0, d.w, d.h)
}

type gcState struct {
	drawable xdraw.Drawable
	fg, bg   uint32
}

// Server is an in-memory display server. It is safe for concurrent use.
type Server struct {
	mu        sync.Mutex
	visual    *xdraw.Visual
	nextID    uint32
	drawables map[xdraw.Drawable]*drawable
	gcs       map[xdraw.GContext]*gcState
	calls     map[string]int

	// FailCreateGC makes CreateGC fail, as a server out of resources would.
	FailCreateGC bool
}

// New returns a server whose screen uses visual v, or xdraw.DefaultVisual
// when v is nil.
func New(v *xdraw.Visual) *Server {
	if v == nil {
		v = xdraw.DefaultVisual()
	}
	return &Server{
		visual:    v,
		nextID:    0x200000,
		drawables: make(map[xdraw.Drawable]*drawable),
		gcs:       make(map[xdraw.GContext]*gcState),
		calls:     make(map[string]int),
	}
}

// Visual returns the screen visual.
func (s *Server) Visual() *xdraw.Visual {
	return s.visual
}

func (s *Server) allocID() uint32 {
	s.nextID++
	return s.nextID
}

// CreatePixmap creates a w×h drawable with the screen depth, cleared to
// pixel 0.
func (s *Server) CreatePixmap(w, h int) xdraw.Drawable {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := xdraw.Drawable(s.allocID())
	s.drawables[id] = &drawable{w: w, h: h, depth: s.visual.Depth, pix: make([]uint32, w*h)}
	return id
}

// FreePixmap releases a drawable created by CreatePixmap.
func (s *Server) FreePixmap(d xdraw.Drawable) {
	s.mu.Lock()
	delete(s.drawables, d)
	s.mu.Unlock()
}

// ResizeDrawable changes the size of d, keeping the pixels of the
// overlapping area the way a window keeps its contents with a static
// bit gravity.
func (s *Server) ResizeDrawable(d xdraw.Drawable, w, h int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.drawables[d]
	if !ok {
		return fmt.Errorf("%w: 0x%x", xdraw.ErrBadDrawable, d)
	}
	nd := &drawable{w: w, h: h, depth: old.depth, pix: make([]uint32, w*h)}
	for y := 0; y < min(h, old.h); y++ {
		copy(nd.pix[y*w:y*w+min(w, old.w)], old.pix[y*old.w:])
	}
	s.drawables[d] = nd
	return nil
}

// Size returns the dimensions of d.
func (s *Server) Size(d xdraw.Drawable) (w, h int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dr, ok := s.drawables[d]
	if !ok {
		return 0, 0, false
	}
	return dr.w, dr.h, true
}

// Pixel returns the native pixel at (x, y) of d. Pixels outside the
// drawable read as zero.
func (s *Server) Pixel(d xdraw.Drawable, x, y int) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	dr, ok := s.drawables[d]
	if !ok || !image.Pt(x, y).In(dr.bounds()) {
		return 0
	}
	return dr.pix[y*dr.w+x]
}

// SetPixel stores a native pixel at (x, y) of d, bypassing request
// accounting. It stands in for other clients drawing on the same drawable.
func (s *Server) SetPixel(d xdraw.Drawable, x, y int, p uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dr, ok := s.drawables[d]; ok && image.Pt(x, y).In(dr.bounds()) {
		dr.pix[y*dr.w+x] = p
	}
}

// Image returns a copy of d decoded through the screen visual.
func (s *Server) Image(d xdraw.Drawable) *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	dr, ok := s.drawables[d]
	if !ok {
		return image.NewRGBA(image.Rectangle{})
	}
	img := image.NewRGBA(dr.bounds())
	for i, p := range dr.pix {
		r, g, b, a := s.visual.RGBA(p)
		copy(img.Pix[4*i:], []uint8{r, g, b, a})
	}
	return img
}

// GC reports the foreground and background pixels of gc.
func (s *Server) GC(gc xdraw.GContext) (fg, bg uint32, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.gcs[gc]
	if !ok {
		return 0, 0, false
	}
	return st.fg, st.bg, true
}

// LiveGCs returns the number of allocated graphics contexts.
func (s *Server) LiveGCs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.gcs)
}

// Calls returns how many requests named name (for example "PutImage")
// the server has handled.
func (s *Server) Calls(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

// TotalCalls returns the number of requests of any kind.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

// CallNames lists the request names seen so far, sorted.
func (s *Server) CallNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.calls))
	for name := range s.calls {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResetCalls clears the request counters.
func (s *Server) ResetCalls() {
	s.mu.Lock()
	s.calls = make(map[string]int)
	s.mu.Unlock()
}

// CreateGC implements xdraw.Conn.
func (s *Server) CreateGC(d xdraw.Drawable) (xdraw.GContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["CreateGC"]++
	if s.FailCreateGC {
		return xdraw.None, fmt.Errorf("memconn: CreateGC: resource allocation failed")
	}
	if _, ok := s.drawables[d]; !ok {
		return xdraw.None, fmt.Errorf("%w: 0x%x", xdraw.ErrBadDrawable, d)
	}
	gc := xdraw.GContext(s.allocID())
	s.gcs[gc] = &gcState{drawable: d, bg: 1}
	return gc, nil
}

// FreeGC implements xdraw.Conn.
func (s *Server) FreeGC(gc xdraw.GContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["FreeGC"]++
	if _, ok := s.gcs[gc]; !ok {
		return fmt.Errorf("%w: 0x%x", xdraw.ErrBadGContext, gc)
	}
	delete(s.gcs, gc)
	return nil
}

// ChangeGC implements xdraw.Conn.
func (s *Server) ChangeGC(gc xdraw.GContext, fg, bg uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["ChangeGC"]++
	st, ok := s.gcs[gc]
	if !ok {
		return fmt.Errorf("%w: 0x%x", xdraw.ErrBadGContext, gc)
	}
	st.fg, st.bg = fg, bg
	return nil
}

// PutImage implements xdraw.Conn. Parts of r outside the drawable are
// clipped.
func (s *Server) PutImage(d xdraw.Drawable, gc xdraw.GContext, depth uint8, r image.Rectangle, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["PutImage"]++
	dr, ok := s.drawables[d]
	if !ok {
		return fmt.Errorf("%w: 0x%x", xdraw.ErrBadDrawable, d)
	}
	if _, ok := s.gcs[gc]; !ok {
		return fmt.Errorf("%w: 0x%x", xdraw.ErrBadGContext, gc)
	}
	if depth != dr.depth {
		return fmt.Errorf("memconn: PutImage: depth %d does not match drawable depth %d", depth, dr.depth)
	}
	stride, err := xdraw.Stride(depth, r.Dx())
	if err != nil {
		return err
	}
	if len(data) < stride*r.Dy() {
		return fmt.Errorf("%w: got %d bytes for %v", xdraw.ErrShortData, len(data), r)
	}
	wide := depth > 16
	clip := r.Intersect(dr.bounds())
	for y := clip.Min.Y; y < clip.Max.Y; y++ {
		row := data[(y-r.Min.Y)*stride:]
		for x := clip.Min.X; x < clip.Max.X; x++ {
			i := x - r.Min.X
			var p uint32
			if wide {
				p = binary.LittleEndian.Uint32(row[4*i:])
			} else {
				p = uint32(binary.LittleEndian.Uint16(row[2*i:]))
			}
			dr.pix[y*dr.w+x] = p
		}
	}
	return nil
}

// GetImage implements xdraw.Conn. Pixels outside the drawable read as zero.
func (s *Server) GetImage(d xdraw.Drawable, r image.Rectangle) (uint8, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["GetImage"]++
	dr, ok := s.drawables[d]
	if !ok {
		return 0, nil, fmt.Errorf("%w: 0x%x", xdraw.ErrBadDrawable, d)
	}
	stride, err := xdraw.Stride(dr.depth, r.Dx())
	if err != nil {
		return 0, nil, err
	}
	data := make([]byte, stride*r.Dy())
	wide := dr.depth > 16
	clip := r.Intersect(dr.bounds())
	for y := clip.Min.Y; y < clip.Max.Y; y++ {
		row := data[(y-r.Min.Y)*stride:]
		for x := clip.Min.X; x < clip.Max.X; x++ {
			i := x - r.Min.X
			p := dr.pix[y*dr.w+x]
			if wide {
				binary.LittleEndian.PutUint32(row[4*i:], p)
			} else {
				binary.LittleEndian.PutUint16(row[2*i:], uint16(p))
			}
		}
	}
	return dr.depth, data, nil
}

// ColorPixel implements xdraw.Conn using the screen visual.
func (s *Server) ColorPixel(hex string) uint32 {
	s.mu.Lock()
	s.calls["ColorPixel"]++
	s.mu.Unlock()
	return s.visual.ColorPixel(hex)
}

var _ xdraw.Conn = (*Server)(nil)
