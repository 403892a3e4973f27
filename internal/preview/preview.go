// Package preview shows an in-memory drawable in a desktop window, for
// working on bar layouts and scripts without an X server.
package preview

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/opd-ai/go-wmdraw/internal/xdraw"
)

// ErrTerminated is returned by Update once the context is cancelled.
var ErrTerminated = errors.New("preview terminated")

// DefaultRedrawInterval is how often the redraw callback runs.
const DefaultRedrawInterval = time.Second

// Source provides the pixels of a drawable. memconn.Server implements it.
type Source interface {
	Image(d xdraw.Drawable) *image.RGBA
}

// ErrorHandler receives errors from the redraw callback.
type ErrorHandler func(err error)

// DefaultErrorHandler writes errors to stderr.
func DefaultErrorHandler(err error) {
	fmt.Fprintf(os.Stderr, "redraw error: %v\n", err)
}

// Options configure a Game.
type Options struct {
	Title string
	// Scale enlarges the window by an integer factor, at least 1.
	Scale int
	// Redraw runs on the game goroutine every RedrawInterval.
	Redraw         func() error
	RedrawInterval time.Duration
	OnError        ErrorHandler
}

// Game is an ebiten.Game that shows one drawable.
type Game struct {
	src      Source
	drawable xdraw.Drawable
	opts     Options

	mu         sync.Mutex
	width      int
	height     int
	frame      *ebiten.Image
	lastRedraw time.Time
	ctx        context.Context
	running    bool
}

// NewGame creates a Game showing the width × height drawable d of src.
func NewGame(src Source, d xdraw.Drawable, width, height int, opts Options) *Game {
	if opts.Scale < 1 {
		opts.Scale = 1
	}
	if opts.RedrawInterval <= 0 {
		opts.RedrawInterval = DefaultRedrawInterval
	}
	if opts.OnError == nil {
		opts.OnError = DefaultErrorHandler
	}
	return &Game{src: src, drawable: d, opts: opts, width: width, height: height}
}

// SetContext makes Update stop the game when ctx is done.
func (g *Game) SetContext(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ctx = ctx
}

// Resize changes the shown area after the drawable was resized.
func (g *Game) Resize(width, height int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.width, g.height = width, height
	g.frame = nil
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	g.mu.Lock()
	ctx := g.ctx
	due := g.opts.Redraw != nil && time.Since(g.lastRedraw) >= g.opts.RedrawInterval
	if due {
		g.lastRedraw = time.Now()
	}
	g.mu.Unlock()

	if ctx != nil {
		select {
		case <-ctx.Done():
			return ErrTerminated
		default:
		}
	}
	// Redraw outside the lock; it may call Resize.
	if due {
		if err := g.opts.Redraw(); err != nil {
			g.opts.OnError(err)
		}
	}
	return nil
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	g.mu.Lock()
	defer g.mu.Unlock()

	img := g.src.Image(g.drawable)
	b := img.Bounds()
	if b.Dx() != g.width || b.Dy() != g.height || b.Empty() {
		return
	}
	if g.frame == nil {
		g.frame = ebiten.NewImage(g.width, g.height)
	}
	g.frame.WritePixels(img.Pix)
	screen.DrawImage(g.frame, nil)
}

// Layout implements ebiten.Game.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.width, g.height
}

// Run opens the window and blocks until it is closed or the context ends.
func (g *Game) Run() error {
	g.mu.Lock()
	ebiten.SetWindowSize(g.width*g.opts.Scale, g.height*g.opts.Scale)
	ebiten.SetWindowTitle(g.opts.Title)
	g.running = true
	g.mu.Unlock()

	err := ebiten.RunGame(g)

	g.mu.Lock()
	g.running = false
	g.mu.Unlock()

	if errors.Is(err, ErrTerminated) {
		return nil
	}
	return err
}

// IsRunning reports whether Run is active.
func (g *Game) IsRunning() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.running
}
