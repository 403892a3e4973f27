package config

import (
	"reflect"
	"strings"
	"testing"
)

func TestLuaConfigParserParse(t *testing.T) {
	p, err := NewLuaConfigParser()
	if err != nil {
		t.Fatalf("NewLuaConfigParser failed: %v", err)
	}
	defer p.Close()

	content := `
wmdraw.config = {
    font = 'gomono:12',
    height = 26,
    position = 'bottom',
    transparency = true,
    padding = 6.7,
    colors = {
        background = '#202020',
        urgent_workspace = '#ff0000 - -',
    },
    workspaces = { 'mail', 'code' },
    blocks = {
        'plain',
        { text = 'load 0.5', color = '#00ff00', markup = 'yes' },
    },
}

function wmdraw_draw(w, h) end
`
	cfg, err := p.Parse([]byte(content))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Bar.Font != "gomono:12" || cfg.Bar.Height != 26 {
		t.Errorf("bar = %+v", cfg.Bar)
	}
	if cfg.Bar.Position != PositionBottom {
		t.Errorf("position = %v", cfg.Bar.Position)
	}
	if cfg.Bar.Padding != 6 {
		t.Errorf("padding = %d, want 6", cfg.Bar.Padding)
	}
	if !cfg.Display.Transparency {
		t.Error("transparency not set")
	}
	if cfg.Colors.Background != "#202020" || cfg.Colors.UrgentWorkspace != "#ff0000 - -" {
		t.Errorf("colors = %+v", cfg.Colors)
	}
	if cfg.Colors.Statusline != DefaultConfig().Colors.Statusline {
		t.Errorf("statusline lost its default: %q", cfg.Colors.Statusline)
	}
	if want := []string{"mail", "code"}; !reflect.DeepEqual(cfg.Workspaces, want) {
		t.Errorf("workspaces = %v", cfg.Workspaces)
	}
	want := []Block{
		{Text: "plain"},
		{Text: "load 0.5", Color: "#00ff00", Markup: true},
	}
	if !reflect.DeepEqual(cfg.Blocks, want) {
		t.Errorf("blocks = %+v, want %+v", cfg.Blocks, want)
	}
}

func TestLuaConfigParserDefaults(t *testing.T) {
	p, err := NewLuaConfigParser()
	if err != nil {
		t.Fatalf("NewLuaConfigParser failed: %v", err)
	}
	defer p.Close()

	cfg, err := p.Parse([]byte("local x = 1"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !reflect.DeepEqual(*cfg, DefaultConfig()) {
		t.Errorf("config = %+v, want defaults", *cfg)
	}
}

func TestLuaConfigParserErrors(t *testing.T) {
	p, err := NewLuaConfigParser()
	if err != nil {
		t.Fatalf("NewLuaConfigParser failed: %v", err)
	}
	defer p.Close()

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"syntax", "wmdraw.config = {", "compile"},
		{"runtime", "error('boom')", "execute"},
		{"not a table", "wmdraw.config = 3", "not a table"},
		{"bad position", "wmdraw.config = { position = 'left' }", "unknown position"},
		{"bad block", "wmdraw.config = { blocks = { true } }", "blocks[1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Parse([]byte(tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}
