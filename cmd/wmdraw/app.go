package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"

	"golang.org/x/image/font/basicfont"

	"github.com/opd-ai/go-wmdraw/internal/bar"
	"github.com/opd-ai/go-wmdraw/internal/config"
	"github.com/opd-ai/go-wmdraw/internal/drawutil"
	"github.com/opd-ai/go-wmdraw/internal/logging"
	"github.com/opd-ai/go-wmdraw/internal/lua"
	"github.com/opd-ai/go-wmdraw/internal/text"
	"github.com/opd-ai/go-wmdraw/internal/xdraw"
)

// backend is where the bar is drawn: an X server or memory.
type backend interface {
	Display() *drawutil.Display
	Window() xdraw.Drawable
	Buffer() xdraw.Drawable
	BarOptions() bar.Options
	// Snapshot reads the window contents.
	Snapshot(width, height int) (image.Image, error)
	// Run drives a until ctx is done or the window goes away.
	Run(ctx context.Context, a *app) error
	Close()
}

// app owns everything one wmdraw process draws with.
type app struct {
	flags  flags
	log    logging.Logger
	parser *config.Parser
	cfg    config.Config

	be      backend
	bar     *bar.Bar
	hook    scriptHook
	watcher *config.Watcher

	reloadCh chan struct{}
}

func newApp(f flags, log logging.Logger) (*app, error) {
	parser, err := config.NewParser()
	if err != nil {
		return nil, err
	}
	a := &app{flags: f, log: log, parser: parser, reloadCh: make(chan struct{}, 1)}

	cfg, err := loadConfig(parser, f.configPath, log)
	if err != nil {
		parser.Close()
		return nil, err
	}
	if f.display != "" {
		cfg.Display.Name = f.display
	}
	if f.headless || f.preview {
		cfg.Display.Headless = true
	}

	if cfg.Display.Headless {
		a.be, err = openHeadless(&cfg, log)
	} else {
		a.be, err = openX11(&cfg, log)
	}
	if err != nil {
		parser.Close()
		return nil, err
	}
	a.cfg = cfg

	if err := a.loadScript(); err != nil {
		log.Error("could not load script", "error", err)
	}

	opts := a.be.BarOptions()
	opts.Hook = &a.hook
	a.bar, err = bar.New(a.be.Display(), a.be.Window(), a.be.Buffer(), cfg, opts)
	if err != nil {
		a.Close()
		return nil, err
	}
	log.Info("bar ready",
		"width", cfg.Bar.Width,
		"height", cfg.Bar.Height,
		"visual", a.be.Display().DefaultVisual().String(),
		"headless", cfg.Display.Headless)
	return a, nil
}

// Headless reports whether the bar is drawn into memory.
func (a *app) Headless() bool { return a.cfg.Display.Headless }

// workspaces turns the configured names into buttons, the first focused.
func (a *app) workspaces() []bar.Workspace {
	ws := make([]bar.Workspace, len(a.cfg.Workspaces))
	for i, name := range a.cfg.Workspaces {
		ws[i] = bar.Workspace{Name: name, Focused: i == 0, Visible: i == 0}
	}
	return ws
}

// Render draws one frame.
func (a *app) Render() error {
	return a.bar.Render(a.workspaces(), a.cfg.Blocks)
}

// RequestReload schedules a reload on the drawing goroutine.
func (a *app) RequestReload() {
	select {
	case a.reloadCh <- struct{}{}:
	default:
	}
}

// Reloads returns the channel RequestReload signals.
func (a *app) Reloads() <-chan struct{} { return a.reloadCh }

// Reload re-reads the configuration and script and redraws. A broken
// configuration is logged and the old one stays in effect. The bar size,
// font and display settings only change on restart.
func (a *app) Reload() {
	cfg, err := loadConfig(a.parser, a.flags.configPath, a.log)
	if err != nil {
		a.log.Error("reload failed, keeping the previous configuration", "error", err)
		return
	}
	w, h := a.bar.Size()
	if (cfg.Bar.Width != 0 && cfg.Bar.Width != w) || cfg.Bar.Height != h {
		a.log.Warn("bar size changes take effect after a restart")
	}
	if cfg.Bar.Font != a.cfg.Bar.Font {
		a.log.Warn("font changes take effect after a restart", "font", cfg.Bar.Font)
	}
	cfg.Bar.Width, cfg.Bar.Height = w, h
	cfg.Bar.Font = a.cfg.Bar.Font
	cfg.Display = a.cfg.Display
	a.cfg = cfg
	a.bar.Reconfigure(cfg)

	a.hook.close(a.log)
	if err := a.loadScript(); err != nil {
		a.log.Error("could not load script", "error", err)
	}
	if err := a.Render(); err != nil {
		a.log.Warn("render failed", "error", err)
	}
	a.log.Info("configuration reloaded")
}

// scriptPath is the configured script, or the configuration file itself
// when it is a Lua file.
func (a *app) scriptPath() string {
	if a.cfg.Script != "" {
		return a.cfg.Script
	}
	if a.cfg.Source != "" && config.IsLuaScript(a.cfg.Source) {
		return a.cfg.Source
	}
	return ""
}

func (a *app) loadScript() error {
	path := a.scriptPath()
	if path == "" {
		return nil
	}
	rc := lua.DefaultConfig()
	rc.Stdout = os.Stderr
	s, err := lua.LoadScript(path, a.be.Display(), rc)
	if err != nil {
		return err
	}
	if !s.HasDrawHook() {
		a.log.Debug("script has no draw hook", "path", path)
	}
	a.hook.script = s
	return nil
}

// StartWatcher reloads when the configuration file or script changes.
func (a *app) StartWatcher() error {
	if a.flags.configPath == "" {
		return errors.New("-watch needs a configuration file")
	}
	paths := []string{a.flags.configPath}
	if a.cfg.Script != "" {
		paths = append(paths, a.cfg.Script)
	}
	w, err := config.NewWatcher(paths, config.DefaultWatchDebounce,
		func() error {
			a.RequestReload()
			return nil
		},
		func(err error) {
			a.log.Warn("watch error", "error", err)
		},
	)
	if err != nil {
		return err
	}
	a.watcher = w
	w.Start()
	a.log.Info("watching configuration", "paths", paths)
	return nil
}

// Run hands control to the backend.
func (a *app) Run(ctx context.Context) error {
	return a.be.Run(ctx, a)
}

// WritePNG saves the current window contents.
func (a *app) WritePNG(path string) error {
	img, err := a.be.Snapshot(a.bar.Size())
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// Close releases everything. It may be called more than once.
func (a *app) Close() {
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if a.bar != nil {
		a.bar.Close()
	}
	a.hook.close(a.log)
	if a.be != nil {
		a.be.Close()
		a.be = nil
	}
	if a.parser != nil {
		a.parser.Close()
		a.parser = nil
	}
}

// scriptHook forwards frames to the current script, which changes on
// reload.
type scriptHook struct {
	script *lua.Script
}

func (h *scriptHook) DrawFrame(s *drawutil.Surface, width, height int) error {
	if h.script == nil {
		return nil
	}
	return h.script.DrawFrame(s, width, height)
}

func (h *scriptHook) close(log logging.Logger) {
	if h.script == nil {
		return
	}
	if err := h.script.Close(); err != nil {
		log.Warn("script shutdown failed", "error", err)
	}
	h.script = nil
}

// newImageText returns a client-side text renderer for the font spec,
// falling back to the built-in bitmap font.
func newImageText(conn xdraw.Conn, spec string, log logging.Logger) *text.ImageRenderer {
	face, err := text.LoadFace(spec)
	if err != nil {
		log.Warn("could not load font, using the built-in font", "font", spec, "error", err)
		face = basicfont.Face7x13
	}
	return text.NewImageRenderer(conn, face, log)
}
