package xdraw

import (
	"encoding/binary"
	"fmt"
	"image"
)

// Stride returns the length in bytes of one ZPixmap scanline of width
// pixels. Scanlines are padded to 32 bits.
func Stride(depth uint8, width int) (int, error) {
	bpp, err := bytesPerPixel(depth)
	if err != nil {
		return 0, err
	}
	return (width*bpp + 3) &^ 3, nil
}

// EncodeZPixmap converts the pixels of img inside r to LSB-first ZPixmap
// data for visual v. img holds premultiplied colors, which is also what a
// 32-bit ARGB visual expects.
func EncodeZPixmap(v *Visual, img *image.RGBA, r image.Rectangle) ([]byte, error) {
	r = r.Intersect(img.Bounds())
	bpp, err := v.BytesPerPixel()
	if err != nil {
		return nil, err
	}
	stride, _ := Stride(v.Depth, r.Dx())
	data := make([]byte, stride*r.Dy())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := data[(y-r.Min.Y)*stride:]
		off := img.PixOffset(r.Min.X, y)
		for x := 0; x < r.Dx(); x++ {
			s := img.Pix[off+4*x : off+4*x+4 : off+4*x+4]
			p := v.Pixel(s[0], s[1], s[2], s[3])
			if bpp == 4 {
				binary.LittleEndian.PutUint32(row[4*x:], p)
			} else {
				binary.LittleEndian.PutUint16(row[2*x:], uint16(p))
			}
		}
	}
	return data, nil
}

// DecodeZPixmap writes LSB-first ZPixmap data covering r into dst at the
// same coordinates. Parts of r outside dst are skipped.
func DecodeZPixmap(v *Visual, data []byte, r image.Rectangle, dst *image.RGBA) error {
	bpp, err := v.BytesPerPixel()
	if err != nil {
		return err
	}
	stride, _ := Stride(v.Depth, r.Dx())
	if len(data) < stride*r.Dy() {
		return fmt.Errorf("%w: got %d bytes for %v", ErrShortData, len(data), r)
	}
	clip := r.Intersect(dst.Bounds())
	for y := clip.Min.Y; y < clip.Max.Y; y++ {
		row := data[(y-r.Min.Y)*stride:]
		for x := clip.Min.X; x < clip.Max.X; x++ {
			i := x - r.Min.X
			var p uint32
			if bpp == 4 {
				p = binary.LittleEndian.Uint32(row[4*i:])
			} else {
				p = uint32(binary.LittleEndian.Uint16(row[2*i:]))
			}
			cr, cg, cb, ca := v.RGBA(p)
			off := dst.PixOffset(x, y)
			dst.Pix[off+0] = cr
			dst.Pix[off+1] = cg
			dst.Pix[off+2] = cb
			dst.Pix[off+3] = ca
		}
	}
	return nil
}
