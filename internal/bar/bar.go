// Package bar draws a status bar with workspace buttons on the left and
// status blocks on the right. Frames are drawn into a pixmap and copied to
// the window in one step.
package bar

import (
	"errors"
	"fmt"

	"github.com/opd-ai/go-wmdraw/internal/config"
	"github.com/opd-ai/go-wmdraw/internal/drawutil"
	"github.com/opd-ai/go-wmdraw/internal/logging"
	"github.com/opd-ai/go-wmdraw/internal/text"
	"github.com/opd-ai/go-wmdraw/internal/xdraw"
)

// ErrClosed is returned by operations on a closed bar.
var ErrClosed = errors.New("bar is closed")

// Workspace is the state of one workspace button.
type Workspace struct {
	Name    string
	Focused bool
	Visible bool
	Urgent  bool
}

// TextMeasurer reports text extents. Text renderers implement it.
type TextMeasurer interface {
	Width(t *text.String) int
	Height() int
}

// DrawHook draws on the back buffer after the built-in content.
type DrawHook interface {
	DrawFrame(s *drawutil.Surface, width, height int) error
}

// BufferAllocator replaces the back buffer when the bar is resized.
// Without one the buffer drawable is expected to have been resized by the
// caller.
type BufferAllocator interface {
	NewBuffer(width, height int) (xdraw.Drawable, error)
	FreeBuffer(d xdraw.Drawable)
}

// WindowMapper maps and unmaps the bar window on Show and Hide.
type WindowMapper interface {
	MapWindow(w xdraw.Drawable) error
	UnmapWindow(w xdraw.Drawable) error
}

// Options are the optional collaborators of a Bar.
type Options struct {
	Hook    DrawHook
	Buffers BufferAllocator
	Mapper  WindowMapper
}

// Bar owns a window surface and a back buffer surface of the same size.
type Bar struct {
	disp    *drawutil.Display
	log     logging.Logger
	measure TextMeasurer
	opts    Options

	win    xdraw.Drawable
	buffer xdraw.Drawable
	width  int
	height int

	window drawutil.Surface
	back   drawutil.Surface

	cfg     config.Config
	palette palette

	hidden bool
	closed bool
}

// New creates a bar drawing into win through the back buffer. Both
// drawables must be at least width × height as given by cfg.Bar.
func New(d *drawutil.Display, win, buffer xdraw.Drawable, cfg config.Config, opts Options) (*Bar, error) {
	if d == nil {
		return nil, errors.New("display cannot be nil")
	}
	if cfg.Bar.Width <= 0 || cfg.Bar.Height <= 0 {
		return nil, fmt.Errorf("invalid bar size %dx%d", cfg.Bar.Width, cfg.Bar.Height)
	}
	b := &Bar{
		disp:   d,
		log:    d.Logger(),
		opts:   opts,
		win:    win,
		buffer: buffer,
		width:  cfg.Bar.Width,
		height: cfg.Bar.Height,
	}
	b.measure = measurerFor(d.TextRenderer())
	b.Reconfigure(cfg)
	b.initSurfaces()
	return b, nil
}

func (b *Bar) initSurfaces() {
	b.window.Init(b.disp, b.win, nil, b.width, b.height)
	b.back.Init(b.disp, b.buffer, nil, b.width, b.height)
}

// Reconfigure applies new colors, padding and blocks. The size is changed
// with Resize.
func (b *Bar) Reconfigure(cfg config.Config) {
	b.cfg = cfg
	b.palette = newPalette(b.disp, cfg.Colors)
}

// Size returns the current bar size.
func (b *Bar) Size() (width, height int) { return b.width, b.height }

// Hidden reports whether the bar is hidden.
func (b *Bar) Hidden() bool { return b.hidden }

// Window returns the window surface.
func (b *Bar) Window() *drawutil.Surface { return &b.window }

// Buffer returns the back buffer surface.
func (b *Bar) Buffer() *drawutil.Surface { return &b.back }

// Render draws a full frame: background, workspace buttons, status blocks
// and the draw hook, then shows it in the window. Rendering a hidden bar
// does nothing.
func (b *Bar) Render(workspaces []Workspace, blocks []config.Block) error {
	if b.closed {
		return ErrClosed
	}
	if b.hidden {
		return nil
	}

	drawutil.ClearSurface(&b.back, b.palette.background)
	x := b.drawWorkspaces(workspaces)
	b.drawBlocks(blocks, x)

	var hookErr error
	if b.opts.Hook != nil {
		if err := b.opts.Hook.DrawFrame(&b.back, b.width, b.height); err != nil {
			b.log.Warn("draw hook failed", "error", err)
			hookErr = fmt.Errorf("draw hook: %w", err)
		}
	}

	drawutil.CopySurface(&b.back, &b.window, 0, 0, 0, 0, float64(b.width), float64(b.height))
	if err := b.window.Status(); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return hookErr
}

// Resize changes the bar size. With a BufferAllocator the back buffer is
// replaced; otherwise both drawables must already have the new size.
func (b *Bar) Resize(width, height int) error {
	if b.closed {
		return ErrClosed
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid bar size %dx%d", width, height)
	}
	if width == b.width && height == b.height {
		return nil
	}

	if b.opts.Buffers != nil {
		buf, err := b.opts.Buffers.NewBuffer(width, height)
		if err != nil {
			return fmt.Errorf("resize: %w", err)
		}
		b.back.Free()
		b.opts.Buffers.FreeBuffer(b.buffer)
		b.buffer = buf
	}

	b.width, b.height = width, height
	b.cfg.Bar.Width, b.cfg.Bar.Height = width, height
	if b.hidden {
		return nil
	}
	if !b.back.Initialized() {
		b.back.Init(b.disp, b.buffer, nil, width, height)
	} else {
		b.back.SetSize(width, height)
	}
	b.window.SetSize(width, height)
	return nil
}

// Hide releases both surfaces and unmaps the window. Drawing resumes after
// Show.
func (b *Bar) Hide() {
	if b.closed || b.hidden {
		return
	}
	b.hidden = true
	b.window.Free()
	b.back.Free()
	if b.opts.Mapper != nil {
		if err := b.opts.Mapper.UnmapWindow(b.win); err != nil {
			b.log.Warn("could not unmap bar window", "window", b.win, "error", err)
		}
	}
}

// Show maps the window and re-creates the surfaces.
func (b *Bar) Show() {
	if b.closed || !b.hidden {
		return
	}
	b.hidden = false
	if b.opts.Mapper != nil {
		if err := b.opts.Mapper.MapWindow(b.win); err != nil {
			b.log.Warn("could not map bar window", "window", b.win, "error", err)
		}
	}
	b.initSurfaces()
}

// Close frees the surfaces. The drawables stay owned by the caller. Close
// may be called more than once.
func (b *Bar) Close() {
	b.window.Free()
	b.back.Free()
	b.closed = true
}
