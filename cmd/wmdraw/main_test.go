package main

import (
	"flag"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/opd-ai/go-wmdraw/internal/config"
	"github.com/opd-ai/go-wmdraw/internal/logging"
)

func TestVersion(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
}

func TestParseFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f, err := parseFlags(fs, []string{"-c", "bar.lua", "-headless", "-png", "out.png", "-debug", "-json-log"})
	if err != nil {
		t.Fatalf("parseFlags failed: %v", err)
	}
	if f.configPath != "bar.lua" || !f.headless || f.pngPath != "out.png" || !f.debug || !f.jsonLog {
		t.Errorf("flags = %+v", f)
	}
	if f.preview || f.watch || f.version {
		t.Errorf("unset flags are true: %+v", f)
	}

	fs = flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if _, err := parseFlags(fs, []string{"-nope"}); err == nil {
		t.Error("expected error for unknown flag")
	}
}

func TestRunExitCodes(t *testing.T) {
	if code := run([]string{"-v"}); code != 0 {
		t.Errorf("-v exit code = %d", code)
	}
	if code := run([]string{"-c", "/nonexistent/wmdraw.conf"}); code != 1 {
		t.Errorf("missing config exit code = %d", code)
	}
}

func TestLoadConfig(t *testing.T) {
	p, err := config.NewParser()
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()
	log := logging.NopLogger()

	cfg, err := loadConfig(p, "", log)
	if err != nil {
		t.Fatalf("defaults failed: %v", err)
	}
	if cfg.Bar.Height != config.DefaultBarHeight {
		t.Errorf("height = %d", cfg.Bar.Height)
	}

	bad := filepath.Join(t.TempDir(), "bad.conf")
	if err := os.WriteFile(bad, []byte("background #fff\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(p, bad, log); err == nil {
		t.Error("expected validation error")
	}
}

func TestHeadlessPNG(t *testing.T) {
	dir := t.TempDir()
	conf := filepath.Join(dir, "bar.lua")
	content := `
wmdraw.config = {
    font = 'fixed',
    width = 120,
    height = 16,
    colors = { background = '#102030' },
    blocks = { 'ok' },
}
function wmdraw_draw(w, h)
    draw_rectangle('#ff0000', w - 4, 0, 4, h)
end
`
	if err := os.WriteFile(conf, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "bar.png")

	if code := run([]string{"-headless", "-c", conf, "-png", out}); code != 0 {
		t.Fatalf("exit code = %d", code)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 120 || b.Dy() != 16 {
		t.Fatalf("image size = %v", b)
	}
	r, g, b, _ := img.At(119, 8).RGBA()
	if r>>8 != 0xff || g != 0 || b != 0 {
		t.Errorf("hook pixel = %d %d %d", r>>8, g>>8, b>>8)
	}
	r, g, b, _ = img.At(60, 0).RGBA()
	if r>>8 != 0x10 || g>>8 != 0x20 || b>>8 != 0x30 {
		t.Errorf("background pixel = %#x %#x %#x", r>>8, g>>8, b>>8)
	}
}

func TestAppReload(t *testing.T) {
	dir := t.TempDir()
	conf := filepath.Join(dir, "bar.conf")
	if err := os.WriteFile(conf, []byte("width 40\nheight 10\nbackground #000000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	a, err := newApp(flags{configPath: conf, headless: true}, logging.NopLogger())
	if err != nil {
		t.Fatalf("newApp failed: %v", err)
	}
	defer a.Close()
	rec := &logging.Recorder{}

	if err := os.WriteFile(conf, []byte("width 40\nheight 10\nbackground #0000ff\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	a.Reload()
	img, err := a.be.Snapshot(a.bar.Size())
	if err != nil {
		t.Fatal(err)
	}
	if r, g, b, _ := img.At(39, 9).RGBA(); r != 0 || g != 0 || b>>8 != 0xff {
		t.Errorf("pixel after reload = %d %d %d", r>>8, g>>8, b>>8)
	}

	if err := os.WriteFile(conf, []byte("width 40\nheight 10\nfont fixed\nbackground #0000ff\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	a.log = rec
	a.Reload()
	a.log = logging.NopLogger()
	if a.cfg.Bar.Font != config.DefaultFont {
		t.Errorf("font = %q after reload, want it kept until restart", a.cfg.Bar.Font)
	}
	if rec.Count(slog.LevelWarn) == 0 {
		t.Error("font change on reload was not logged")
	}

	// A broken file keeps the previous configuration.
	if err := os.WriteFile(conf, []byte("background nope\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	a.Reload()
	if a.cfg.Colors.Background != "#0000ff" {
		t.Errorf("background = %q after a broken reload", a.cfg.Colors.Background)
	}

	a.RequestReload()
	a.RequestReload()
	if n := len(a.Reloads()); n != 1 {
		t.Errorf("%d pending reloads, want 1", n)
	}
	a.Close()
}
