package bar

import (
	"errors"
	"testing"

	"golang.org/x/image/font/basicfont"

	"github.com/opd-ai/go-wmdraw/internal/config"
	"github.com/opd-ai/go-wmdraw/internal/drawutil"
	"github.com/opd-ai/go-wmdraw/internal/logging"
	"github.com/opd-ai/go-wmdraw/internal/text"
	"github.com/opd-ai/go-wmdraw/internal/xdraw"
	"github.com/opd-ai/go-wmdraw/internal/xdraw/memconn"
)

type fixture struct {
	srv    *memconn.Server
	disp   *drawutil.Display
	win    xdraw.Drawable
	buffer xdraw.Drawable
	cfg    config.Config
}

func newFixture(t *testing.T, w, h int) *fixture {
	t.Helper()
	srv := memconn.New(nil)
	rec := &logging.Recorder{}
	disp := drawutil.NewDisplay(srv, drawutil.Options{
		Text:   text.NewImageRenderer(srv, basicfont.Face7x13, rec),
		Logger: rec,
	})
	cfg := config.DefaultConfig()
	cfg.Bar.Width, cfg.Bar.Height = w, h
	return &fixture{
		srv:    srv,
		disp:   disp,
		win:    srv.CreatePixmap(w, h),
		buffer: srv.CreatePixmap(w, h),
		cfg:    cfg,
	}
}

func (f *fixture) bar(t *testing.T, opts Options) *Bar {
	t.Helper()
	b, err := New(f.disp, f.win, f.buffer, f.cfg, opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(b.Close)
	return b
}

func TestNewErrors(t *testing.T) {
	f := newFixture(t, 10, 10)
	if _, err := New(nil, f.win, f.buffer, f.cfg, Options{}); err == nil {
		t.Error("expected error for nil display")
	}
	cfg := f.cfg
	cfg.Bar.Width = 0
	if _, err := New(f.disp, f.win, f.buffer, cfg, Options{}); err == nil {
		t.Error("expected error for zero width")
	}
}

func TestRenderWorkspaces(t *testing.T) {
	f := newFixture(t, 200, 20)
	b := f.bar(t, Options{})

	err := b.Render([]Workspace{
		{Name: "1", Focused: true, Visible: true},
		{Name: "2"},
	}, nil)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	// Button 1: 1px border, 4px padding, one 7px glyph, so 17px wide.
	if got := f.srv.Pixel(f.win, 0, 0); got != 0x4c7899 {
		t.Errorf("focused border = %#x", got)
	}
	if got := f.srv.Pixel(f.win, 2, 10); got != 0x285577 {
		t.Errorf("focused background = %#x", got)
	}
	if got := f.srv.Pixel(f.win, 17, 10); got != 0x000000 {
		t.Errorf("gap between buttons = %#x", got)
	}
	// Button 2 starts at 18.
	if got := f.srv.Pixel(f.win, 18, 0); got != 0x333333 {
		t.Errorf("inactive border = %#x", got)
	}
	if got := f.srv.Pixel(f.win, 20, 10); got != 0x222222 {
		t.Errorf("inactive background = %#x", got)
	}
	if got := f.srv.Pixel(f.win, 100, 10); got != 0x000000 {
		t.Errorf("bar background = %#x", got)
	}
}

func TestRenderCopiesBufferToWindow(t *testing.T) {
	f := newFixture(t, 50, 10)
	f.cfg.Colors.Background = "#123456"
	b := f.bar(t, Options{})

	if err := b.Render(nil, nil); err != nil {
		t.Fatal(err)
	}
	for _, d := range []xdraw.Drawable{f.win, f.buffer} {
		for _, p := range [][2]int{{0, 0}, {49, 9}, {25, 5}} {
			if got := f.srv.Pixel(d, p[0], p[1]); got != 0x123456 {
				t.Errorf("drawable %d pixel %v = %#x", d, p, got)
			}
		}
	}
	if !b.Buffer().Cairo().Damage().Empty() || !b.Window().Cairo().Damage().Empty() {
		t.Error("surfaces left with unflushed damage")
	}
}

func TestRenderBlocks(t *testing.T) {
	f := newFixture(t, 100, 13)
	f.cfg.Bar.Padding = 2
	f.cfg.Colors.Separator = "#00ff00"
	b := f.bar(t, Options{})

	err := b.Render(nil, []config.Block{
		{Text: "a"},
		{Text: "b", Urgent: true},
	})
	if err != nil {
		t.Fatal(err)
	}

	// From the right: pad 2, "b" at [91, 98), pad 2, separator at 88,
	// pad 2, "a" at [79, 86).
	if got := f.srv.Pixel(f.win, 89, 0); got != 0x900000 {
		t.Errorf("urgent block background = %#x", got)
	}
	if got := f.srv.Pixel(f.win, 88, 6); got != 0x00ff00 {
		t.Errorf("separator = %#x", got)
	}
	if got := f.srv.Pixel(f.win, 88, 0); got != 0x000000 {
		t.Errorf("above separator = %#x", got)
	}
	white := false
	for x := 79; x < 86; x++ {
		for y := 0; y < 13; y++ {
			if f.srv.Pixel(f.win, x, y) == 0xffffff {
				white = true
			}
		}
	}
	if !white {
		t.Error("statusline text not drawn")
	}
}

func TestBlocksDoNotOverlapWorkspaces(t *testing.T) {
	f := newFixture(t, 40, 13)
	b := f.bar(t, Options{})

	err := b.Render([]Workspace{{Name: "main", Focused: true}}, []config.Block{{Text: "a very long status"}})
	if err != nil {
		t.Fatal(err)
	}
	// The button is 38px wide; the block does not fit and is dropped.
	if got := f.srv.Pixel(f.win, 39, 6); got != 0x000000 {
		t.Errorf("pixel after button = %#x", got)
	}
}

type hookFunc func(s *drawutil.Surface, w, h int) error

func (f hookFunc) DrawFrame(s *drawutil.Surface, w, h int) error { return f(s, w, h) }

func TestRenderHook(t *testing.T) {
	f := newFixture(t, 30, 10)
	var gotW, gotH int
	hook := hookFunc(func(s *drawutil.Surface, w, h int) error {
		gotW, gotH = w, h
		drawutil.Rectangle(s, f.disp.HexToColor("#ff00ff"), 0, 0, 3, 3)
		return nil
	})
	b := f.bar(t, Options{Hook: hook})

	if err := b.Render(nil, nil); err != nil {
		t.Fatal(err)
	}
	if gotW != 30 || gotH != 10 {
		t.Errorf("hook got %dx%d", gotW, gotH)
	}
	if got := f.srv.Pixel(f.win, 1, 1); got != 0xff00ff {
		t.Errorf("hook drawing not copied to the window: %#x", got)
	}
}

func TestRenderHookError(t *testing.T) {
	f := newFixture(t, 10, 10)
	errHook := errors.New("hook failed")
	b := f.bar(t, Options{Hook: hookFunc(func(*drawutil.Surface, int, int) error { return errHook })})

	if err := b.Render(nil, nil); !errors.Is(err, errHook) {
		t.Errorf("err = %v, want %v", err, errHook)
	}
	// The frame is still shown.
	if got := f.srv.Pixel(f.win, 5, 5); got != 0x000000 {
		t.Errorf("window pixel = %#x", got)
	}
}

type mapper struct{ mapped, unmapped int }

func (m *mapper) MapWindow(xdraw.Drawable) error   { m.mapped++; return nil }
func (m *mapper) UnmapWindow(xdraw.Drawable) error { m.unmapped++; return nil }

func TestHideShow(t *testing.T) {
	f := newFixture(t, 20, 10)
	m := &mapper{}
	b := f.bar(t, Options{Mapper: m})

	b.Hide()
	b.Hide()
	if !b.Hidden() || m.unmapped != 1 {
		t.Fatalf("hidden = %v, unmapped = %d", b.Hidden(), m.unmapped)
	}
	if b.Window().Initialized() || b.Buffer().Initialized() {
		t.Error("surfaces still initialized while hidden")
	}
	if n := f.srv.LiveGCs(); n != 0 {
		t.Errorf("%d GCs alive while hidden", n)
	}

	f.srv.ResetCalls()
	if err := b.Render(nil, nil); err != nil {
		t.Fatal(err)
	}
	if n := f.srv.TotalCalls(); n != 0 {
		t.Errorf("hidden render made %d calls", n)
	}

	b.Show()
	if b.Hidden() || m.mapped != 1 {
		t.Fatalf("hidden = %v, mapped = %d", b.Hidden(), m.mapped)
	}
	if err := b.Render(nil, nil); err != nil {
		t.Fatal(err)
	}
	if f.srv.Calls("PutImage") == 0 {
		t.Error("no drawing after Show")
	}
}

func TestCloseTwice(t *testing.T) {
	f := newFixture(t, 20, 10)
	b, err := New(f.disp, f.win, f.buffer, f.cfg, Options{})
	if err != nil {
		t.Fatal(err)
	}
	b.Close()
	b.Close()
	if n := f.srv.LiveGCs(); n != 0 {
		t.Errorf("%d GCs alive after Close", n)
	}
	if err := b.Render(nil, nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Render after Close = %v", err)
	}
	if err := b.Resize(5, 5); !errors.Is(err, ErrClosed) {
		t.Errorf("Resize after Close = %v", err)
	}
	b.Show()
	if b.Window().Initialized() {
		t.Error("Show re-initialized a closed bar")
	}
}

func TestResizeInPlace(t *testing.T) {
	f := newFixture(t, 50, 10)
	b := f.bar(t, Options{})

	if err := f.srv.ResizeDrawable(f.win, 200, 100); err != nil {
		t.Fatal(err)
	}
	if err := f.srv.ResizeDrawable(f.buffer, 200, 100); err != nil {
		t.Fatal(err)
	}
	if err := b.Resize(200, 100); err != nil {
		t.Fatal(err)
	}
	if w, h := b.Size(); w != 200 || h != 100 {
		t.Fatalf("size = %dx%d", w, h)
	}
	if err := b.Render(nil, nil); err != nil {
		t.Fatal(err)
	}
	f.srv.SetPixel(f.win, 199, 99, 0xffffff)
	f.cfg.Colors.Background = "#0000ff"
	b.Reconfigure(f.cfg)
	if err := b.Render(nil, nil); err != nil {
		t.Fatal(err)
	}
	if got := f.srv.Pixel(f.win, 199, 99); got != 0x0000ff {
		t.Errorf("corner after resize = %#x", got)
	}

	if err := b.Resize(0, 10); err == nil {
		t.Error("expected error for zero width")
	}
}

type memBuffers struct {
	srv   *memconn.Server
	freed []xdraw.Drawable
}

func (m *memBuffers) NewBuffer(w, h int) (xdraw.Drawable, error) {
	return m.srv.CreatePixmap(w, h), nil
}

func (m *memBuffers) FreeBuffer(d xdraw.Drawable) {
	m.freed = append(m.freed, d)
	m.srv.FreePixmap(d)
}

func TestResizeReplacesBuffer(t *testing.T) {
	f := newFixture(t, 20, 10)
	bufs := &memBuffers{srv: f.srv}
	b := f.bar(t, Options{Buffers: bufs})

	if err := f.srv.ResizeDrawable(f.win, 40, 10); err != nil {
		t.Fatal(err)
	}
	if err := b.Resize(40, 10); err != nil {
		t.Fatal(err)
	}
	if len(bufs.freed) != 1 || bufs.freed[0] != f.buffer {
		t.Fatalf("freed = %v, want the old buffer", bufs.freed)
	}
	if b.Buffer().ID == f.buffer || b.Buffer().Width != 40 {
		t.Errorf("buffer = %d (%d wide)", b.Buffer().ID, b.Buffer().Width)
	}
	if n := f.srv.LiveGCs(); n != 2 {
		t.Errorf("live GCs = %d, want 2", n)
	}
	if err := b.Render(nil, nil); err != nil {
		t.Fatal(err)
	}
	if got := f.srv.Pixel(f.win, 39, 9); got != 0 {
		t.Errorf("pixel = %#x", got)
	}
}

func TestPaletteDashKeepsDefault(t *testing.T) {
	f := newFixture(t, 10, 10)
	colors := f.cfg.Colors
	colors.FocusedWorkspace = "- #112233"
	colors.UrgentWorkspace = "#ffffff - - "
	p := newPalette(f.disp, colors)

	if p.focused.border != f.disp.HexToColor("#4c7899") {
		t.Errorf("focused border = %+v", p.focused.border)
	}
	if p.focused.background != f.disp.HexToColor("#112233") {
		t.Errorf("focused background = %+v", p.focused.background)
	}
	if p.focused.text != f.disp.HexToColor("#ffffff") {
		t.Errorf("focused text = %+v", p.focused.text)
	}
	if p.urgent.border != f.disp.HexToColor("#ffffff") || p.urgent.background != f.disp.HexToColor("#900000") {
		t.Errorf("urgent = %+v", p.urgent)
	}

	ws := []struct {
		ws   Workspace
		want buttonColors
	}{
		{Workspace{Urgent: true, Focused: true}, p.urgent},
		{Workspace{Focused: true}, p.focused},
		{Workspace{Visible: true}, p.active},
		{Workspace{}, p.inactive},
	}
	for _, tt := range ws {
		if got := p.workspaceColors(tt.ws); got != tt.want {
			t.Errorf("workspaceColors(%+v) = %+v", tt.ws, got)
		}
	}
}

func TestFixedMeasurer(t *testing.T) {
	m := measurerFor(nil)
	if got := m.Width(text.New("héllo")); got != 35 {
		t.Errorf("Width = %d", got)
	}
	if m.Height() != 13 {
		t.Errorf("Height = %d", m.Height())
	}
}
