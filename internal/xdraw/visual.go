package xdraw

import (
	"fmt"
	"math/bits"
	"strconv"
)

// Visual class values from the core protocol.
const (
	StaticGray  = 0
	GrayScale   = 1
	StaticColor = 2
	PseudoColor = 3
	TrueColor   = 4
	DirectColor = 5
)

// Visual describes how pixel values map to colors on a drawable.
type Visual struct {
	ID        uint32
	Class     uint8
	Depth     uint8
	RedMask   uint32
	GreenMask uint32
	BlueMask  uint32
}

// DefaultVisual returns the 24-bit TrueColor visual found on nearly every
// modern X server. It is used when no visual is configured.
func DefaultVisual() *Visual {
	return &Visual{
		Class:     TrueColor,
		Depth:     24,
		RedMask:   0xff0000,
		GreenMask: 0x00ff00,
		BlueMask:  0x0000ff,
	}
}

// ARGBVisual returns a 32-bit TrueColor visual with an alpha channel in the
// top byte, as offered by compositing servers.
func ARGBVisual(id uint32) *Visual {
	v := DefaultVisual()
	v.ID = id
	v.Depth = 32
	return v
}

func (v *Visual) String() string {
	return fmt.Sprintf("visual 0x%x depth %d class %d", v.ID, v.Depth, v.Class)
}

// IsTrueColor reports whether pixels can be computed from the masks alone.
func (v *Visual) IsTrueColor() bool {
	return v != nil && (v.Class == TrueColor || v.Class == DirectColor)
}

// AlphaMask returns the bits of a pixel not used by the color channels on a
// 32-bit visual, or zero.
func (v *Visual) AlphaMask() uint32 {
	if v.Depth != 32 {
		return 0
	}
	return ^(v.RedMask | v.GreenMask | v.BlueMask)
}

// BytesPerPixel returns the ZPixmap storage size of one pixel.
func (v *Visual) BytesPerPixel() (int, error) {
	return bytesPerPixel(v.Depth)
}

func bytesPerPixel(depth uint8) (int, error) {
	switch {
	case depth > 16 && depth <= 32:
		return 4, nil
	case depth > 8 && depth <= 16:
		return 2, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrUnsupportedDepth, depth)
}

func pack(c uint8, mask uint32) uint32 {
	if mask == 0 {
		return 0
	}
	shift := bits.TrailingZeros32(mask)
	width := bits.OnesCount32(mask)
	max := uint32(1)<<width - 1
	return ((uint32(c)*max + 127) / 255) << shift & mask
}

func unpack(p, mask uint32) uint8 {
	if mask == 0 {
		return 0
	}
	shift := bits.TrailingZeros32(mask)
	width := bits.OnesCount32(mask)
	max := uint32(1)<<width - 1
	return uint8(((p&mask)>>shift*255 + max/2) / max)
}

// Pixel packs 8-bit channels into a pixel value. Alpha is kept only on
// visuals with an alpha mask.
func (v *Visual) Pixel(r, g, b, a uint8) uint32 {
	return pack(r, v.RedMask) | pack(g, v.GreenMask) | pack(b, v.BlueMask) | pack(a, v.AlphaMask())
}

// RGBA unpacks a pixel value. Visuals without an alpha mask report opaque
// pixels.
func (v *Visual) RGBA(p uint32) (r, g, b, a uint8) {
	a = 0xff
	if m := v.AlphaMask(); m != 0 {
		a = unpack(p, m)
	}
	return unpack(p, v.RedMask), unpack(p, v.GreenMask), unpack(p, v.BlueMask), a
}

// ParseHex reads the channels of "#RRGGBB" or "#RRGGBBAA". Alpha defaults
// to 0xff.
func ParseHex(hex string) (r, g, b, a uint8, err error) {
	if len(hex) != 7 && len(hex) != 9 || hex[0] != '#' {
		return 0, 0, 0, 0, fmt.Errorf("xdraw: invalid color %q", hex)
	}
	var ch [4]uint8
	ch[3] = 0xff
	for i := 0; i < (len(hex)-1)/2; i++ {
		n, perr := strconv.ParseUint(hex[1+2*i:3+2*i], 16, 8)
		if perr != nil {
			return 0, 0, 0, 0, fmt.Errorf("xdraw: invalid color %q: %w", hex, perr)
		}
		ch[i] = uint8(n)
	}
	return ch[0], ch[1], ch[2], ch[3], nil
}

// ColorPixel computes the pixel for a hex color on a TrueColor visual. The
// alpha digits are ignored and 32-bit pixels are always opaque, matching how
// window managers paint borders and text backgrounds. Invalid input yields 0.
func (v *Visual) ColorPixel(hex string) uint32 {
	r, g, b, _, err := ParseHex(hex)
	if err != nil {
		return 0
	}
	return v.Pixel(r, g, b, 0xff)
}
