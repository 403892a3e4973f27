// Package text holds the text objects drawn by wmdraw and the renderers
// that put them on a drawable.
package text

import (
	"html"
	"strings"
	"unicode/utf8"
)

// String is an immutable piece of text. It keeps the UTF-8 source and
// computes the glyph count and UCS-2 form the first time they are needed.
type String struct {
	utf8   string
	markup bool

	plain  string
	glyphs int
	ucs2   []uint16
	cached bool
}

// New returns a plain text string.
func New(s string) *String {
	return &String{utf8: s}
}

// NewMarkup returns a string holding Pango-style markup. Renderers without
// markup support draw its text content with the tags removed.
func NewMarkup(s string) *String {
	return &String{utf8: s, markup: true}
}

// String returns the UTF-8 source, markup included.
func (s *String) String() string { return s.utf8 }

// IsMarkup reports whether the string holds markup.
func (s *String) IsMarkup() bool { return s.markup }

func (s *String) compute() {
	if s.cached {
		return
	}
	s.cached = true
	s.plain = s.utf8
	if s.markup {
		s.plain = stripMarkup(s.utf8)
	}
	s.glyphs = utf8.RuneCountInString(s.plain)
	s.ucs2 = make([]uint16, 0, s.glyphs)
	for _, r := range s.plain {
		// outside the basic multilingual plane there is no UCS-2 code
		if r > 0xffff {
			r = utf8.RuneError
		}
		s.ucs2 = append(s.ucs2, uint16(r))
	}
}

// Plain returns the drawable text: the source with markup removed.
func (s *String) Plain() string {
	s.compute()
	return s.plain
}

// Glyphs returns the number of characters in the drawable text.
func (s *String) Glyphs() int {
	s.compute()
	return s.glyphs
}

// UCS2 returns the drawable text as UCS-2 code units, as the X11 core
// font requests expect.
func (s *String) UCS2() []uint16 {
	s.compute()
	return s.ucs2
}

func stripMarkup(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for {
		i := strings.IndexByte(s, '<')
		if i < 0 {
			b.WriteString(s)
			break
		}
		b.WriteString(s[:i])
		j := strings.IndexByte(s[i:], '>')
		if j < 0 {
			b.WriteString(s[i:])
			break
		}
		s = s[i+j+1:]
	}
	return html.UnescapeString(b.String())
}
