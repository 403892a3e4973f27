package config

import (
	"strings"
	"testing"
)

func TestValidateDefaults(t *testing.T) {
	cfg := DefaultConfig()
	result := Validate(&cfg)
	if !result.IsValid() {
		t.Fatalf("defaults invalid: %v", result.Error())
	}
	if result.Error() != nil {
		t.Error("Error() should be nil for a valid config")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"zero height", func(c *Config) { c.Bar.Height = 0 }, "bar.height"},
		{"negative width", func(c *Config) { c.Bar.Width = -1 }, "bar.width"},
		{"negative padding", func(c *Config) { c.Bar.Padding = -2 }, "bar.padding"},
		{"bad position", func(c *Config) { c.Bar.Position = Position(7) }, "bar.position"},
		{"short hex", func(c *Config) { c.Colors.Background = "#fff" }, "colors.background"},
		{"named color", func(c *Config) { c.Colors.Statusline = "white" }, "colors.statusline"},
		{"too many colors", func(c *Config) { c.Colors.ActiveWorkspace = "#000000 #000000 #000000 #000000" }, "colors.active_workspace"},
		{"bad token", func(c *Config) { c.Colors.UrgentWorkspace = "#000000 red" }, "colors.urgent_workspace"},
		{"empty list", func(c *Config) { c.Colors.FocusedWorkspace = "  " }, "colors.focused_workspace"},
		{"block color", func(c *Config) { c.Blocks = []Block{{Text: "x", Color: "#12"}} }, "blocks[0].color"},
		{"empty workspace", func(c *Config) { c.Workspaces = []string{"1", " "} }, "workspaces[1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			result := Validate(&cfg)
			if result.IsValid() {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(result.Error().Error(), tt.field) {
				t.Errorf("error %q does not name %s", result.Error(), tt.field)
			}
		})
	}
}

func TestValidateAcceptsPlaceholders(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Colors.FocusedWorkspace = "- #285577AA -"
	cfg.Colors.InactiveWorkspace = "#333333"
	if result := Validate(&cfg); !result.IsValid() {
		t.Errorf("unexpected errors: %v", result.Error())
	}
}

func TestValidateWarnings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bar.Font = ""
	cfg.Bar.Width = 20000
	cfg.Blocks = []Block{{}}
	result := Validate(&cfg)
	if !result.IsValid() {
		t.Fatalf("warnings must not invalidate: %v", result.Error())
	}
	if len(result.Warnings) != 3 {
		t.Errorf("got %d warnings, want 3: %v", len(result.Warnings), result.Warnings)
	}
}

func TestParsePosition(t *testing.T) {
	for _, s := range []string{"top", "TOP", ""} {
		if p, err := ParsePosition(s); err != nil || p != PositionTop {
			t.Errorf("ParsePosition(%q) = %v, %v", s, p, err)
		}
	}
	if p, err := ParsePosition(" bottom "); err != nil || p != PositionBottom {
		t.Errorf("ParsePosition(bottom) = %v, %v", p, err)
	}
	if _, err := ParsePosition("left"); err == nil {
		t.Error("expected error for left")
	}
	if PositionBottom.String() != "bottom" || PositionTop.String() != "top" {
		t.Error("String mismatch")
	}
}
