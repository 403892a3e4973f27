package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseLines parses the line format:
//
//	font gomono:11
//	height 22
//	position bottom
//	focused_workspace #4c7899 #285577 #ffffff
//	block "CPU 12%" #00ff00
//
// Blank lines and lines starting with '#' are skipped. Lines of the form
// "bar {", "colors {" and "}" are accepted so i3 bar blocks can be pasted
// in; they do not introduce a scope.
func ParseLines(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	workspaces := false
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if line == "}" || strings.HasSuffix(line, "{") {
			continue
		}
		fields, err := splitFields(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		if fields[0] == "workspace" && !workspaces {
			cfg.Workspaces = nil
			workspaces = true
		}
		if err := parseDirective(&cfg, fields, lineNum); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading configuration: %w", err)
	}
	return &cfg, nil
}

func parseDirective(cfg *Config, fields []string, lineNum int) error {
	key := strings.ToLower(fields[0])
	args := fields[1:]
	value := strings.Join(args, " ")

	switch key {
	case "display":
		cfg.Display.Name = value
	case "headless":
		cfg.Display.Headless = value == "" || parseBool(value)
	case "transparency":
		cfg.Display.Transparency = value == "" || parseBool(value)

	case "font":
		cfg.Bar.Font = value
	case "height", "width", "padding", "separator_width":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("line %d: invalid %s: %q", lineNum, key, value)
		}
		switch key {
		case "height":
			cfg.Bar.Height = n
		case "width":
			cfg.Bar.Width = n
		case "padding":
			cfg.Bar.Padding = n
		default:
			cfg.Bar.SeparatorWidth = n
		}
	case "position":
		pos, err := ParsePosition(value)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
		cfg.Bar.Position = pos
	case "script":
		cfg.Script = value

	case "background":
		cfg.Colors.Background = value
	case "statusline":
		cfg.Colors.Statusline = value
	case "separator":
		cfg.Colors.Separator = value
	case "focused_workspace":
		cfg.Colors.FocusedWorkspace = value
	case "active_workspace":
		cfg.Colors.ActiveWorkspace = value
	case "inactive_workspace":
		cfg.Colors.InactiveWorkspace = value
	case "urgent_workspace":
		cfg.Colors.UrgentWorkspace = value

	case "workspace":
		if len(args) != 1 {
			return fmt.Errorf("line %d: workspace takes one name", lineNum)
		}
		cfg.Workspaces = append(cfg.Workspaces, args[0])
	case "block", "markup_block", "urgent_block":
		if len(args) == 0 || len(args) > 2 {
			return fmt.Errorf("line %d: usage: %s \"<text>\" [color]", lineNum, key)
		}
		b := Block{
			Text:   args[0],
			Markup: key == "markup_block",
			Urgent: key == "urgent_block",
		}
		if len(args) == 2 {
			b.Color = args[1]
		}
		cfg.Blocks = append(cfg.Blocks, b)

	default:
		return fmt.Errorf("line %d: unknown directive %q", lineNum, key)
	}
	return nil
}

var errUnterminatedQuote = errors.New("unterminated quote")

// splitFields splits line on whitespace. Double-quoted fields may contain
// spaces and the escapes \" and \\.
func splitFields(line string) ([]string, error) {
	var (
		fields []string
		cur    strings.Builder
		inWord bool
	)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			inWord = true
			i++
			for ; i < len(line) && line[i] != '"'; i++ {
				if line[i] == '\\' && i+1 < len(line) {
					i++
				}
				cur.WriteByte(line[i])
			}
			if i >= len(line) {
				return nil, errUnterminatedQuote
			}
		case c == ' ' || c == '\t':
			if inWord {
				fields = append(fields, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			inWord = true
			cur.WriteByte(c)
		}
	}
	if inWord {
		fields = append(fields, cur.String())
	}
	return fields, nil
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1", "on":
		return true
	}
	return false
}
