//go:build linux

package x11

import (
	"image"
	"os"
	"testing"

	"github.com/opd-ai/go-wmdraw/internal/text"
	"github.com/opd-ai/go-wmdraw/internal/xdraw"
)

// openTestConn connects to $DISPLAY or skips the test.
func openTestConn(t *testing.T) *Conn {
	t.Helper()
	if os.Getenv("DISPLAY") == "" {
		t.Skip("DISPLAY not set")
	}
	c, err := Open("", nil)
	if err != nil {
		t.Skipf("no X server: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestChar2b(t *testing.T) {
	got := char2b(text.New("aé€").UCS2())
	want := [][2]byte{{0x00, 'a'}, {0x00, 0xe9}, {0x20, 0xac}}
	if len(got) != len(want) {
		t.Fatalf("len = %d", len(got))
	}
	for i, w := range want {
		if got[i].Byte1 != w[0] || got[i].Byte2 != w[1] {
			t.Errorf("char %d = %x %x, want %x %x", i, got[i].Byte1, got[i].Byte2, w[0], w[1])
		}
	}
}

func TestCompositorStatusString(t *testing.T) {
	tests := []struct {
		status CompositorStatus
		want   string
	}{
		{CompositorActive, "active"},
		{CompositorInactive, "inactive"},
		{CompositorUnknown, "unknown"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestPixmapRoundTrip(t *testing.T) {
	c := openTestConn(t)
	v := c.RootVisual()
	p, err := c.CreatePixmap(c.Root(), v.Depth, 16, 16)
	if err != nil {
		t.Fatalf("CreatePixmap: %v", err)
	}
	defer c.FreePixmap(p)
	gc, err := c.CreateGC(p)
	if err != nil {
		t.Fatalf("CreateGC: %v", err)
	}
	defer c.FreeGC(gc)

	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	data, err := xdraw.EncodeZPixmap(v, img, img.Bounds())
	if err != nil {
		t.Skipf("root visual not encodable: %v", err)
	}
	if err := c.PutImage(p, gc, v.Depth, img.Bounds(), data); err != nil {
		t.Fatalf("PutImage: %v", err)
	}
	_, back, err := c.GetImage(p, image.Rect(4, 4, 5, 5))
	if err != nil {
		t.Fatalf("GetImage: %v", err)
	}
	dst := image.NewRGBA(image.Rect(0, 0, 16, 16))
	if err := xdraw.DecodeZPixmap(v, back, image.Rect(4, 4, 5, 5), dst); err != nil {
		t.Fatal(err)
	}
	if got := dst.RGBAAt(4, 4); got.R != 0xff || got.G != 0xff || got.B != 0xff {
		t.Errorf("pixel = %v, want white", got)
	}
}

func TestColorPixelTrueColor(t *testing.T) {
	c := openTestConn(t)
	if !c.RootVisual().IsTrueColor() {
		t.Skip("root visual is not TrueColor")
	}
	if got, want := c.ColorPixel("#ff0000"), c.RootVisual().Pixel(0xff, 0, 0, 0xff); got != want {
		t.Errorf("ColorPixel = %#x, want %#x", got, want)
	}
}
