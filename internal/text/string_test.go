package text

import (
	"testing"
)

func TestString(t *testing.T) {
	tests := []struct {
		name   string
		s      *String
		plain  string
		glyphs int
	}{
		{"ascii", New("workspace 1"), "workspace 1", 11},
		{"utf8", New("héllo"), "héllo", 5},
		{"markup", NewMarkup("<b>bold</b> &amp; <span foreground='red'>red</span>"), "bold & red", 10},
		{"unterminated tag", NewMarkup("a <b"), "a <b", 4},
		{"empty", New(""), "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.Plain(); got != tt.plain {
				t.Errorf("Plain() = %q, want %q", got, tt.plain)
			}
			if got := tt.s.Glyphs(); got != tt.glyphs {
				t.Errorf("Glyphs() = %d, want %d", got, tt.glyphs)
			}
			if got := len(tt.s.UCS2()); got != tt.glyphs {
				t.Errorf("len(UCS2()) = %d, want %d", got, tt.glyphs)
			}
		})
	}
}

func TestStringKeepsSource(t *testing.T) {
	s := NewMarkup("<i>x</i>")
	if s.String() != "<i>x</i>" || !s.IsMarkup() {
		t.Errorf("String() = %q, IsMarkup() = %v", s.String(), s.IsMarkup())
	}
}

func TestUCS2ReplacesAstralRunes(t *testing.T) {
	got := New("a😀").UCS2()
	if len(got) != 2 || got[0] != 'a' || got[1] != 0xfffd {
		t.Errorf("UCS2() = %x", got)
	}
}
