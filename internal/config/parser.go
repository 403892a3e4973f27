package config

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Format is a configuration file format.
type Format int

const (
	// FormatAuto detects the format from the content.
	FormatAuto Format = iota
	FormatLines
	FormatLua
)

func (f Format) String() string {
	switch f {
	case FormatLines:
		return "lines"
	case FormatLua:
		return "lua"
	}
	return "auto"
}

var luaConfigPattern = regexp.MustCompile(`(?m)^\s*wmdraw\.config\s*=`)

// DetectFormat reports the format of content.
func DetectFormat(content []byte) Format {
	if luaConfigPattern.Match(content) {
		return FormatLua
	}
	return FormatLines
}

// Parser reads configuration files in either format.
type Parser struct {
	lua *LuaConfigParser
}

// NewParser creates a Parser.
func NewParser() (*Parser, error) {
	lua, err := NewLuaConfigParser()
	if err != nil {
		return nil, fmt.Errorf("failed to create Lua parser: %w", err)
	}
	return &Parser{lua: lua}, nil
}

// Close releases the Lua runtime.
func (p *Parser) Close() error {
	if p.lua != nil {
		return p.lua.Close()
	}
	return nil
}

// ParseFile reads and parses the file at path. Environment variables are
// expanded after parsing and a relative Script is resolved against the
// file's directory.
func (p *Parser) ParseFile(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := p.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Source = path
	if cfg.Script != "" && !filepath.IsAbs(cfg.Script) {
		cfg.Script = filepath.Join(filepath.Dir(path), cfg.Script)
	}
	return cfg, nil
}

// ParseFromFS parses the named file from fsys.
func (p *Parser) ParseFromFS(fsys fs.FS, name string) (*Config, error) {
	content, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := p.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	cfg.Source = name
	return cfg, nil
}

// ParseReader parses everything read from r in the given format.
func (p *Parser) ParseReader(r io.Reader, format Format) (*Config, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return p.parse(content, format)
}

// Parse parses content, detecting its format.
func (p *Parser) Parse(content []byte) (*Config, error) {
	return p.parse(content, FormatAuto)
}

func (p *Parser) parse(content []byte, format Format) (*Config, error) {
	if format == FormatAuto {
		format = DetectFormat(content)
	}
	var (
		cfg *Config
		err error
	)
	switch format {
	case FormatLua:
		cfg, err = p.lua.Parse(content)
	case FormatLines:
		cfg, err = ParseLines(bytes.NewReader(content))
	default:
		return nil, fmt.Errorf("unknown format: %v", format)
	}
	if err != nil {
		return nil, err
	}
	ExpandEnvConfig(cfg)
	return cfg, nil
}

// IsLuaScript reports whether path names a Lua file by extension.
func IsLuaScript(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".lua")
}
