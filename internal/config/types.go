// Package config loads wmdraw configuration files.
//
// Two formats are understood. Lua files assign a table to wmdraw.config and
// may define drawing hooks in the same file. Line files use the
// "key value" syntax of i3bar's bar block. Parser detects the format from
// the content.
package config

import (
	"fmt"
	"strings"
)

// Position is the screen edge the bar is attached to.
type Position int

const (
	PositionTop Position = iota
	PositionBottom
)

// ParsePosition parses "top" or "bottom".
func ParsePosition(s string) (Position, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "top", "":
		return PositionTop, nil
	case "bottom":
		return PositionBottom, nil
	}
	return PositionTop, fmt.Errorf("unknown position: %q", s)
}

func (p Position) String() string {
	if p == PositionBottom {
		return "bottom"
	}
	return "top"
}

// Config is a complete wmdraw configuration.
type Config struct {
	Display    DisplayConfig
	Bar        BarConfig
	Colors     ColorConfig
	Workspaces []string
	Blocks     []Block
	// Script is a Lua file defining a wmdraw_draw(width, height) hook.
	// A Lua configuration file is its own script when this is empty.
	Script string
	// Source is the file the configuration was read from, if any.
	Source string
}

// DisplayConfig selects the drawing backend.
type DisplayConfig struct {
	// Name is the X display, "" for $DISPLAY.
	Name string
	// Headless draws into memory instead of an X server.
	Headless bool
	// Transparency asks for a 32-bit ARGB visual when a compositor runs.
	Transparency bool
}

// BarConfig describes the bar geometry and font.
type BarConfig struct {
	// Font is a font spec understood by the text renderer, or "x:<pattern>"
	// for an X core font.
	Font     string
	Width    int // 0 means the screen width
	Height   int
	Position Position
	// Padding is the horizontal space around text inside a button or block.
	Padding int
	// SeparatorWidth is the width of the line between status blocks.
	SeparatorWidth int
}

// ColorConfig holds color specs as text. Single colors are "#RRGGBB" or
// "#RRGGBBAA"; workspace entries list border, background and text colors,
// where "-" keeps the default for that slot.
type ColorConfig struct {
	Background        string
	Statusline        string
	Separator         string
	FocusedWorkspace  string
	ActiveWorkspace   string
	InactiveWorkspace string
	UrgentWorkspace   string
}

// Block is one entry of the status line.
type Block struct {
	Text   string
	Color  string // empty means the statusline color
	Markup bool
	Urgent bool
}
