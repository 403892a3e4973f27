package config

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/arnodel/golua/lib"
	rt "github.com/arnodel/golua/runtime"
)

// Resource limits for evaluating a configuration chunk.
const (
	luaCPULimit    = 10_000_000
	luaMemoryLimit = 50 * 1024 * 1024
)

// LuaConfigParser evaluates Lua configuration files and reads the
// wmdraw.config table they assign.
type LuaConfigParser struct {
	runtime *rt.Runtime
	cleanup func()
	mu      sync.Mutex
}

// NewLuaConfigParser creates a parser with its own Lua runtime. Output of
// print() is discarded.
func NewLuaConfigParser() (*LuaConfigParser, error) {
	return NewLuaConfigParserWithOutput(io.Discard)
}

// NewLuaConfigParserWithOutput creates a parser whose print() writes to stdout.
func NewLuaConfigParserWithOutput(stdout io.Writer) (*LuaConfigParser, error) {
	if stdout == nil {
		stdout = io.Discard
	}
	runtime := rt.New(stdout)
	cleanup := lib.LoadAll(runtime)
	return &LuaConfigParser{runtime: runtime, cleanup: cleanup}, nil
}

// Close releases the runtime.
func (p *LuaConfigParser) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cleanup != nil {
		p.cleanup()
		p.cleanup = nil
	}
	return nil
}

// Parse runs content and converts wmdraw.config into a Config. Keys not
// present keep their default.
func (p *LuaConfigParser) Parse(content []byte) (cfg *Config, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.runtime.GlobalEnv().Set(rt.StringValue("wmdraw"), rt.TableValue(rt.NewTable()))

	closure, err := p.runtime.CompileAndLoadLuaChunk("config", content, rt.TableValue(p.runtime.GlobalEnv()))
	if err != nil {
		return nil, fmt.Errorf("failed to compile Lua configuration: %w", err)
	}

	p.runtime.PushContext(rt.RuntimeContextDef{
		HardLimits: rt.RuntimeResources{
			Cpu:    luaCPULimit,
			Memory: luaMemoryLimit,
		},
	})
	defer p.runtime.PopContext()

	// Hard limit violations panic inside golua.
	defer func() {
		if r := recover(); r != nil {
			cfg, err = nil, fmt.Errorf("failed to execute Lua configuration: %v", r)
		}
	}()

	if _, err := rt.Call1(p.runtime.MainThread(), rt.FunctionValue(closure)); err != nil {
		return nil, fmt.Errorf("failed to execute Lua configuration: %w", err)
	}
	return p.extractConfig()
}

func (p *LuaConfigParser) extractConfig() (*Config, error) {
	cfg := DefaultConfig()

	wmdraw, ok := p.runtime.GlobalEnv().Get(rt.StringValue("wmdraw")).TryTable()
	if !ok {
		return nil, errors.New("wmdraw is not a table")
	}
	val := wmdraw.Get(rt.StringValue("config"))
	if val == rt.NilValue {
		return &cfg, nil
	}
	table, ok := val.TryTable()
	if !ok {
		return nil, errors.New("wmdraw.config is not a table")
	}
	if err := extractConfigTable(&cfg, table); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func extractConfigTable(cfg *Config, table *rt.Table) error {
	if v := getTableString(table, "display"); v != nil {
		cfg.Display.Name = *v
	}
	if v := getTableBool(table, "headless"); v != nil {
		cfg.Display.Headless = *v
	}
	if v := getTableBool(table, "transparency"); v != nil {
		cfg.Display.Transparency = *v
	}

	if v := getTableString(table, "font"); v != nil {
		cfg.Bar.Font = *v
	}
	if v := getTableInt(table, "width"); v != nil {
		cfg.Bar.Width = *v
	}
	if v := getTableInt(table, "height"); v != nil {
		cfg.Bar.Height = *v
	}
	if v := getTableInt(table, "padding"); v != nil {
		cfg.Bar.Padding = *v
	}
	if v := getTableInt(table, "separator_width"); v != nil {
		cfg.Bar.SeparatorWidth = *v
	}
	if v := getTableString(table, "position"); v != nil {
		pos, err := ParsePosition(*v)
		if err != nil {
			return err
		}
		cfg.Bar.Position = pos
	}
	if v := getTableString(table, "script"); v != nil {
		cfg.Script = *v
	}

	if colors, ok := table.Get(rt.StringValue("colors")).TryTable(); ok {
		extractColors(&cfg.Colors, colors)
	}

	if list, ok := table.Get(rt.StringValue("workspaces")).TryTable(); ok {
		cfg.Workspaces = cfg.Workspaces[:0]
		for i := int64(1); i <= list.Len(); i++ {
			if s, ok := list.Get(rt.IntValue(i)).TryString(); ok {
				cfg.Workspaces = append(cfg.Workspaces, s)
			}
		}
	}

	if list, ok := table.Get(rt.StringValue("blocks")).TryTable(); ok {
		blocks, err := extractBlocks(list)
		if err != nil {
			return err
		}
		cfg.Blocks = blocks
	}
	return nil
}

func extractColors(c *ColorConfig, table *rt.Table) {
	fields := map[string]*string{
		"background":         &c.Background,
		"statusline":         &c.Statusline,
		"separator":          &c.Separator,
		"focused_workspace":  &c.FocusedWorkspace,
		"active_workspace":   &c.ActiveWorkspace,
		"inactive_workspace": &c.InactiveWorkspace,
		"urgent_workspace":   &c.UrgentWorkspace,
	}
	for key, dst := range fields {
		if v := getTableString(table, key); v != nil {
			*dst = *v
		}
	}
}

// extractBlocks accepts both plain strings and tables of the form
// {text = "...", color = "#rrggbb", markup = true, urgent = false}.
func extractBlocks(list *rt.Table) ([]Block, error) {
	var blocks []Block
	for i := int64(1); i <= list.Len(); i++ {
		v := list.Get(rt.IntValue(i))
		if s, ok := v.TryString(); ok {
			blocks = append(blocks, Block{Text: s})
			continue
		}
		t, ok := v.TryTable()
		if !ok {
			return nil, fmt.Errorf("blocks[%d]: expected string or table", i)
		}
		var b Block
		if s := getTableString(t, "text"); s != nil {
			b.Text = *s
		}
		if s := getTableString(t, "color"); s != nil {
			b.Color = *s
		}
		if m := getTableBool(t, "markup"); m != nil {
			b.Markup = *m
		}
		if u := getTableBool(t, "urgent"); u != nil {
			b.Urgent = *u
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// getTableBool returns nil when key is absent or not a boolean. The strings
// "yes", "true" and "1" count as true.
func getTableBool(table *rt.Table, key string) *bool {
	val := table.Get(rt.StringValue(key))
	if val == rt.NilValue {
		return nil
	}
	if b, ok := val.TryBool(); ok {
		return &b
	}
	if s, ok := val.TryString(); ok {
		b := parseBool(s)
		return &b
	}
	return nil
}

func getTableString(table *rt.Table, key string) *string {
	val := table.Get(rt.StringValue(key))
	if val == rt.NilValue {
		return nil
	}
	if s, ok := val.TryString(); ok {
		return &s
	}
	return nil
}

// getTableInt truncates floats.
func getTableInt(table *rt.Table, key string) *int {
	val := table.Get(rt.StringValue(key))
	if val == rt.NilValue {
		return nil
	}
	if n, ok := val.TryInt(); ok {
		i := int(n)
		return &i
	}
	if f, ok := val.TryFloat(); ok {
		i := int(f)
		return &i
	}
	return nil
}
