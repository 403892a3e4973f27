package text

import (
	"strings"
	"testing"

	"golang.org/x/image/font/basicfont"

	"github.com/opd-ai/go-wmdraw/internal/xdraw"
	"github.com/opd-ai/go-wmdraw/internal/xdraw/memconn"
)

func newTestRenderer(t *testing.T) (*memconn.Server, xdraw.Drawable, xdraw.GContext, *ImageRenderer) {
	t.Helper()
	srv := memconn.New(nil)
	d := srv.CreatePixmap(100, 20)
	gc, err := srv.CreateGC(d)
	if err != nil {
		t.Fatal(err)
	}
	return srv, d, gc, NewImageRenderer(srv, basicfont.Face7x13, nil)
}

func TestSetFontColors(t *testing.T) {
	srv, _, gc, r := newTestRenderer(t)
	r.SetFontColors(gc, 0xffffff, 0x000080)
	if fg, bg, _ := srv.GC(gc); fg != 0xffffff || bg != 0x000080 {
		t.Errorf("GC colors = %#x %#x", fg, bg)
	}
}

func TestDrawTextFillsBackground(t *testing.T) {
	srv, d, gc, r := newTestRenderer(t)
	r.SetFontColors(gc, 0xffffff, 0x112233)
	r.DrawText(New("ab"), d, gc, srv.Visual(), 10, 2, 0)

	// basicfont: 7 pixels per glyph, 13 pixels high
	if got := srv.Pixel(d, 10, 2); got != 0x112233 {
		t.Errorf("top-left of the text box = %#x, want background", got)
	}
	if got := srv.Pixel(d, 9, 2); got != 0 {
		t.Errorf("pixel left of the box = %#x, want untouched", got)
	}
	if got := srv.Pixel(d, 24, 2); got != 0 {
		t.Errorf("pixel right of the box = %#x, want untouched", got)
	}
	fgSeen := false
	for y := 2; y < 15; y++ {
		for x := 10; x < 24; x++ {
			if srv.Pixel(d, x, y) == 0xffffff {
				fgSeen = true
			}
		}
	}
	if !fgSeen {
		t.Error("no foreground pixel drawn")
	}
}

func TestTruncate(t *testing.T) {
	_, _, _, r := newTestRenderer(t)
	tests := []struct {
		in       string
		maxWidth int
		want     string
	}{
		{"short", 0, "short"},
		{"short", 35, "short"},
		{"longer text", 35, "long…"},
		{"abc", 3, ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := r.Truncate(tt.in, tt.maxWidth); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.maxWidth, got, tt.want)
			}
		})
	}
}

func TestDrawTextWithoutGC(t *testing.T) {
	srv, d, _, r := newTestRenderer(t)
	srv.ResetCalls()
	r.DrawText(New("x"), d, xdraw.None, nil, 0, 0, 0)
	if srv.Calls("PutImage") != 0 {
		t.Error("text drawn without a graphics context")
	}
}

func TestMeasure(t *testing.T) {
	_, _, _, r := newTestRenderer(t)
	if got := r.Width(New(strings.Repeat("x", 4))); got != 28 {
		t.Errorf("Width = %d, want 28", got)
	}
	if got := r.Height(); got != 13 {
		t.Errorf("Height = %d, want 13", got)
	}
}

func TestLoadFace(t *testing.T) {
	tests := []struct {
		spec    string
		wantErr bool
	}{
		{"fixed", false},
		{"gomono:12", false},
		{"pango:goregular 11", false},
		{"xft:gobold:9", false},
		{"gomono:big", true},
		{"/nonexistent/font.ttf:10", true},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			face, err := LoadFace(tt.spec)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadFace(%q) error = %v, wantErr %v", tt.spec, err, tt.wantErr)
			}
			if err == nil && face == nil {
				t.Error("nil face without error")
			}
		})
	}
}
