package text

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// DefaultFontSize is used when a font spec names no size.
const DefaultFontSize = 10

var embedded = map[string][]byte{
	"go":         goregular.TTF,
	"goregular":  goregular.TTF,
	"gobold":     gobold.TTF,
	"gomono":     gomono.TTF,
	"monospace":  gomono.TTF,
	"gomonobold": gomonobold.TTF,
	"sans":       goregular.TTF,
	"sans-serif": goregular.TTF,
}

// LoadFace resolves a font spec of the form "name[:size]". name is one of
// the embedded Go fonts ("gomono", "goregular", ...), "fixed" for the 7x13
// bitmap font, or the path of a TrueType or OpenType file. An "xft:" or
// "pango:" prefix is accepted and ignored.
func LoadFace(spec string) (font.Face, error) {
	spec = strings.TrimSpace(spec)
	for _, prefix := range []string{"pango:", "xft:"} {
		spec = strings.TrimPrefix(spec, prefix)
	}
	name, size := spec, float64(DefaultFontSize)
	if i := strings.LastIndexByte(spec, ':'); i >= 0 {
		v, err := strconv.ParseFloat(spec[i+1:], 64)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("text: invalid font size in %q", spec)
		}
		name, size = spec[:i], v
	} else if i := strings.LastIndexByte(spec, ' '); i >= 0 {
		// "DejaVu Sans Mono 10" style
		if v, err := strconv.ParseFloat(spec[i+1:], 64); err == nil && v > 0 {
			name, size = strings.TrimSpace(spec[:i]), v
		}
	}

	switch name = strings.TrimSpace(name); name {
	case "", "fixed", "basic":
		return basicfont.Face7x13, nil
	}

	data, ok := embedded[strings.ToLower(name)]
	if !ok {
		b, err := os.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("text: load font %q: %w", name, err)
		}
		data = b
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("text: parse font %q: %w", name, err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("text: create face %q: %w", name, err)
	}
	return face, nil
}
