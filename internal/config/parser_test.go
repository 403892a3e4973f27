package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		content string
		want    Format
	}{
		{"wmdraw.config = {}", FormatLua},
		{"-- comment\n  wmdraw.config={ height = 3 }", FormatLua},
		{"height 20", FormatLines},
		{"x = wmdraw.config", FormatLines},
		{"", FormatLines},
	}
	for _, tt := range tests {
		if got := DetectFormat([]byte(tt.content)); got != tt.want {
			t.Errorf("DetectFormat(%q) = %v, want %v", tt.content, got, tt.want)
		}
	}
}

func TestParserParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wmdraw.lua")
	content := "wmdraw.config = { height = 30, script = 'hooks.lua' }\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := NewParser()
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	defer p.Close()

	cfg, err := p.ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if cfg.Bar.Height != 30 {
		t.Errorf("height = %d", cfg.Bar.Height)
	}
	if cfg.Source != path {
		t.Errorf("source = %q", cfg.Source)
	}
	if want := filepath.Join(dir, "hooks.lua"); cfg.Script != want {
		t.Errorf("script = %q, want %q", cfg.Script, want)
	}

	if _, err := p.ParseFile(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParserParseFromFS(t *testing.T) {
	t.Setenv("TEST_WMDRAW_USER", "ada")
	fsys := fstest.MapFS{
		"bar.conf": {Data: []byte("block \"hi $TEST_WMDRAW_USER\"\n")},
	}

	p, err := NewParser()
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	defer p.Close()

	cfg, err := p.ParseFromFS(fsys, "bar.conf")
	if err != nil {
		t.Fatalf("ParseFromFS failed: %v", err)
	}
	if len(cfg.Blocks) != 1 || cfg.Blocks[0].Text != "hi ada" {
		t.Errorf("blocks = %+v", cfg.Blocks)
	}
}

func TestParserParseReaderForcedFormat(t *testing.T) {
	p, err := NewParser()
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	defer p.Close()

	// Without the marker line this would be read as the line format.
	cfg, err := p.ParseReader(strings.NewReader("wmdraw.config = { height = 12 }"), FormatLua)
	if err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}
	if cfg.Bar.Height != 12 {
		t.Errorf("height = %d", cfg.Bar.Height)
	}

	if _, err := p.ParseReader(strings.NewReader("height 12"), Format(99)); err == nil {
		t.Error("expected error for unknown format")
	}
}
