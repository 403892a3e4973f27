//go:build linux

package main

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/opd-ai/go-wmdraw/internal/bar"
	"github.com/opd-ai/go-wmdraw/internal/config"
	"github.com/opd-ai/go-wmdraw/internal/drawutil"
	"github.com/opd-ai/go-wmdraw/internal/logging"
	"github.com/opd-ai/go-wmdraw/internal/xdraw"
	"github.com/opd-ai/go-wmdraw/internal/xdraw/x11"
)

// coreFontPrefix selects an X core font instead of a client-side face.
const coreFontPrefix = "x:"

// xBackend draws on a dock window of a real X server.
type xBackend struct {
	conn   *x11.Conn
	disp   *drawutil.Display
	visual *xdraw.Visual
	win    xdraw.Drawable
	buffer xdraw.Drawable
	font   *x11.FontRenderer
	log    logging.Logger
}

func openX11(cfg *config.Config, log logging.Logger) (*xBackend, error) {
	c, err := x11.Open(cfg.Display.Name, log)
	if err != nil {
		return nil, err
	}
	b := &xBackend{conn: c, log: log}

	// The visual is resolved once; every surface uses it.
	b.visual = c.ResolveVisual(cfg.Display.Transparency)

	sw, sh := c.ScreenSize()
	if cfg.Bar.Width == 0 {
		cfg.Bar.Width = sw
	}
	y := 0
	if cfg.Bar.Position == config.PositionBottom {
		y = sh - cfg.Bar.Height
	}

	b.win, err = c.CreateWindow(x11.WindowOptions{
		Y:      y,
		Width:  cfg.Bar.Width,
		Height: cfg.Bar.Height,
		Visual: b.visual,
		Title:  "wmdraw",
		Dock:   true,
	})
	if err != nil {
		c.Close()
		return nil, err
	}
	b.buffer, err = c.CreatePixmap(b.win, b.visual.Depth, cfg.Bar.Width, cfg.Bar.Height)
	if err != nil {
		b.Close()
		return nil, err
	}

	var tr drawutil.TextRenderer
	if pattern, ok := strings.CutPrefix(cfg.Bar.Font, coreFontPrefix); ok {
		b.font, err = c.OpenFont(pattern)
		if err != nil {
			log.Warn("could not open core font, using a client-side font", "font", pattern, "error", err)
		} else {
			tr = b.font
		}
	}
	if tr == nil {
		tr = newImageText(c, cfg.Bar.Font, log)
	}

	b.disp = drawutil.NewDisplay(c, drawutil.Options{Visual: b.visual, Text: tr, Logger: log})
	return b, nil
}

func (b *xBackend) Display() *drawutil.Display { return b.disp }
func (b *xBackend) Window() xdraw.Drawable     { return b.win }
func (b *xBackend) Buffer() xdraw.Drawable     { return b.buffer }

func (b *xBackend) BarOptions() bar.Options {
	return bar.Options{
		Buffers: &xBuffers{backend: b},
		Mapper:  b.conn,
	}
}

func (b *xBackend) Snapshot(width, height int) (image.Image, error) {
	r := image.Rect(0, 0, width, height)
	_, data, err := b.conn.GetImage(b.win, r)
	if err != nil {
		return nil, err
	}
	img := image.NewRGBA(r)
	if err := xdraw.DecodeZPixmap(b.visual, data, r, img); err != nil {
		return nil, err
	}
	return img, nil
}

type xEvent struct {
	ev  x11.Event
	err error
}

// Run handles exposure, resizes and reloads until the connection closes or
// ctx is done.
func (b *xBackend) Run(ctx context.Context, a *app) error {
	events := make(chan xEvent)
	go func() {
		defer close(events)
		for {
			ev, err := b.conn.WaitEvent()
			select {
			case events <- xEvent{ev, err}:
			case <-ctx.Done():
				return
			}
			if ev.Kind == x11.EventClosed {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-a.Reloads():
			a.Reload()
		case e, ok := <-events:
			if !ok {
				return nil
			}
			if e.err != nil {
				b.log.Warn("X error", "error", e.err)
				continue
			}
			if err := b.handle(a, e.ev); err != nil {
				return err
			}
			if e.ev.Kind == x11.EventClosed {
				return nil
			}
		}
	}
}

func (b *xBackend) handle(a *app, ev x11.Event) error {
	if ev.Window != b.win {
		return nil
	}
	switch ev.Kind {
	case x11.EventExpose:
		if ev.Last {
			if err := a.Render(); err != nil {
				b.log.Warn("render failed", "error", err)
			}
		}
	case x11.EventConfigure:
		w, h := a.bar.Size()
		if ev.Width == w && ev.Height == h {
			return nil
		}
		if err := a.bar.Resize(ev.Width, ev.Height); err != nil {
			return fmt.Errorf("resize: %w", err)
		}
		if err := a.Render(); err != nil {
			b.log.Warn("render failed", "error", err)
		}
	}
	return nil
}

func (b *xBackend) Close() {
	if b.font != nil {
		b.font.Close()
		b.font = nil
	}
	if b.buffer != xdraw.None {
		if err := b.conn.FreePixmap(b.buffer); err != nil {
			b.log.Warn("could not free back buffer", "error", err)
		}
		b.buffer = xdraw.None
	}
	if b.win != xdraw.None {
		if err := b.conn.DestroyWindow(b.win); err != nil {
			b.log.Warn("could not destroy window", "error", err)
		}
		b.win = xdraw.None
	}
	b.conn.Close()
}

// xBuffers replaces the back buffer pixmap, which X cannot resize.
type xBuffers struct {
	backend *xBackend
}

func (x *xBuffers) NewBuffer(width, height int) (xdraw.Drawable, error) {
	b := x.backend
	p, err := b.conn.CreatePixmap(b.win, b.visual.Depth, width, height)
	if err != nil {
		return xdraw.None, err
	}
	b.buffer = p
	return p, nil
}

func (x *xBuffers) FreeBuffer(d xdraw.Drawable) {
	if err := x.backend.conn.FreePixmap(d); err != nil {
		x.backend.log.Warn("could not free back buffer", "error", err)
	}
}
