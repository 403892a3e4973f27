package main

import (
	"context"
	"image"

	"github.com/opd-ai/go-wmdraw/internal/bar"
	"github.com/opd-ai/go-wmdraw/internal/config"
	"github.com/opd-ai/go-wmdraw/internal/drawutil"
	"github.com/opd-ai/go-wmdraw/internal/logging"
	"github.com/opd-ai/go-wmdraw/internal/preview"
	"github.com/opd-ai/go-wmdraw/internal/xdraw"
	"github.com/opd-ai/go-wmdraw/internal/xdraw/memconn"
)

// defaultHeadlessWidth replaces a width of 0 when there is no screen to
// measure.
const defaultHeadlessWidth = 1024

// headless draws into an in-memory server.
type headless struct {
	srv    *memconn.Server
	disp   *drawutil.Display
	win    xdraw.Drawable
	buffer xdraw.Drawable
	width  int
	height int
	log    logging.Logger
	// preview opens a window showing the bar from Run.
	preview bool
}

func openHeadless(cfg *config.Config, log logging.Logger) (*headless, error) {
	if cfg.Bar.Width == 0 {
		cfg.Bar.Width = defaultHeadlessWidth
	}
	srv := memconn.New(nil)
	h := &headless{
		srv:    srv,
		width:  cfg.Bar.Width,
		height: cfg.Bar.Height,
		log:    log,
	}
	h.win = srv.CreatePixmap(h.width, h.height)
	h.buffer = srv.CreatePixmap(h.width, h.height)
	h.disp = drawutil.NewDisplay(srv, drawutil.Options{
		Visual: srv.Visual(),
		Text:   newImageText(srv, cfg.Bar.Font, log),
		Logger: log,
	})
	return h, nil
}

func (h *headless) Display() *drawutil.Display { return h.disp }
func (h *headless) Window() xdraw.Drawable     { return h.win }
func (h *headless) Buffer() xdraw.Drawable     { return h.buffer }

func (h *headless) BarOptions() bar.Options {
	return bar.Options{Buffers: memBuffers{h.srv}}
}

func (h *headless) Snapshot(width, height int) (image.Image, error) {
	return h.srv.Image(h.win), nil
}

// Run shows the preview window when asked, otherwise it serves reloads
// until ctx is done.
func (h *headless) Run(ctx context.Context, a *app) error {
	if a.flags.preview {
		g := preview.NewGame(h.srv, h.win, h.width, h.height, preview.Options{
			Title: "wmdraw preview",
			Scale: 2,
			Redraw: func() error {
				select {
				case <-a.Reloads():
					a.Reload()
				default:
				}
				return a.Render()
			},
			OnError: func(err error) { h.log.Warn("render failed", "error", err) },
		})
		g.SetContext(ctx)
		return g.Run()
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-a.Reloads():
			a.Reload()
		}
	}
}

func (h *headless) Close() {
	h.srv.FreePixmap(h.buffer)
	h.srv.FreePixmap(h.win)
}

// memBuffers allocates back buffers on the in-memory server.
type memBuffers struct {
	srv *memconn.Server
}

func (m memBuffers) NewBuffer(width, height int) (xdraw.Drawable, error) {
	return m.srv.CreatePixmap(width, height), nil
}

func (m memBuffers) FreeBuffer(d xdraw.Drawable) { m.srv.FreePixmap(d) }
