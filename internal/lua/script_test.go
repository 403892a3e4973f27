package lua

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/opd-ai/go-wmdraw/internal/drawutil"
	"github.com/opd-ai/go-wmdraw/internal/xdraw/memconn"
)

func TestLoadScriptDrawFrame(t *testing.T) {
	srv := memconn.New(nil)
	disp := drawutil.NewDisplay(srv, drawutil.Options{})

	path := filepath.Join(t.TempDir(), "bar.lua")
	code := `
wmdraw.config = { height = 10 }
function wmdraw_draw(w, h)
    draw_rectangle('#00ff00', w - 2, 0, 2, h)
end
`
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := LoadScript(path, disp, DefaultConfig())
	if err != nil {
		t.Fatalf("LoadScript failed: %v", err)
	}
	defer s.Close()
	if !s.HasDrawHook() {
		t.Fatal("draw hook not registered")
	}

	surf := &drawutil.Surface{}
	surf.Init(disp, srv.CreatePixmap(8, 4), nil, 8, 4)
	defer surf.Free()

	if err := s.DrawFrame(surf, 8, 4); err != nil {
		t.Fatalf("DrawFrame failed: %v", err)
	}
	if got := srv.Pixel(surf.ID, 7, 3); got != 0x00ff00 {
		t.Errorf("hook pixel = %#x", got)
	}
	if got := srv.Pixel(surf.ID, 5, 3); got != 0 {
		t.Errorf("pixel outside hook drawing = %#x", got)
	}
	if s.bindings.Target() != nil {
		t.Error("target still bound after the frame")
	}
	if err := s.DrawFrame(nil, 1, 1); err == nil {
		t.Error("expected error for nil target")
	}
}

func TestLoadScriptStringLifecycle(t *testing.T) {
	disp := drawutil.NewDisplay(memconn.New(nil), drawutil.Options{})
	s, err := LoadScriptString("hooks", `
started = 0
function wmdraw_startup() started = started + 1 end
function wmdraw_shutdown() error('shutdown failed') end
`, disp, DefaultConfig())
	if err != nil {
		t.Fatalf("LoadScriptString failed: %v", err)
	}
	if v, _ := s.Runtime().GetGlobal("started").TryInt(); v != 1 {
		t.Errorf("startup ran %d times", v)
	}
	if s.HasDrawHook() {
		t.Error("HasDrawHook = true without wmdraw_draw")
	}
	if err := s.Close(); err == nil {
		t.Error("expected the shutdown error")
	}
}

func TestLoadScriptErrors(t *testing.T) {
	disp := drawutil.NewDisplay(memconn.New(nil), drawutil.Options{})
	if _, err := LoadScript(filepath.Join(t.TempDir(), "missing.lua"), disp, DefaultConfig()); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := LoadScriptString("bad", "function (", disp, DefaultConfig()); err == nil {
		t.Error("expected syntax error")
	}
	if _, err := LoadScriptString("nodisp", "", nil, DefaultConfig()); err == nil {
		t.Error("expected error for nil display")
	}
}
