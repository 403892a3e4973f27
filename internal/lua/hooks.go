package lua

import (
	"fmt"
	"sync"

	rt "github.com/arnodel/golua/runtime"
)

// HookType names a script callback.
type HookType int

const (
	HookInvalid HookType = iota
	// HookStartup runs once after the script is loaded.
	HookStartup
	// HookDraw runs once per bar frame with the bar width and height, after
	// the built-in content and before the frame is shown.
	HookDraw
	// HookShutdown runs before the script is unloaded.
	HookShutdown
)

func (h HookType) String() string {
	switch h {
	case HookStartup:
		return "startup"
	case HookDraw:
		return "draw"
	case HookShutdown:
		return "shutdown"
	case HookInvalid:
		return "invalid"
	}
	return "unknown"
}

// LuaFunctionName is the global a script defines to handle h.
func (h HookType) LuaFunctionName() string {
	return "wmdraw_" + h.String()
}

// ParseHookType parses "startup", "draw" or "shutdown".
func ParseHookType(s string) (HookType, error) {
	switch s {
	case "startup":
		return HookStartup, nil
	case "draw":
		return HookDraw, nil
	case "shutdown":
		return HookShutdown, nil
	}
	return HookInvalid, fmt.Errorf("invalid hook type: %q", s)
}

var allHooks = []HookType{HookStartup, HookDraw, HookShutdown}

// HookManager tracks which hooks a script defines.
type HookManager struct {
	runtime *Runtime
	hooks   map[HookType]bool
	mu      sync.RWMutex
}

// NewHookManager creates a HookManager for runtime.
func NewHookManager(runtime *Runtime) (*HookManager, error) {
	if runtime == nil {
		return nil, ErrNilRuntime
	}
	return &HookManager{runtime: runtime, hooks: make(map[HookType]bool)}, nil
}

// AutoRegisterHooks records every hook function the script defined and
// returns them. Call it after the script has run.
func (hm *HookManager) AutoRegisterHooks() []HookType {
	var found []HookType
	for _, h := range allHooks {
		if hm.runtime.HasFunction(h.LuaFunctionName()) {
			found = append(found, h)
		}
	}

	hm.mu.Lock()
	hm.hooks = make(map[HookType]bool, len(found))
	for _, h := range found {
		hm.hooks[h] = true
	}
	hm.mu.Unlock()
	return found
}

// IsRegistered reports whether the script defines h.
func (hm *HookManager) IsRegistered(h HookType) bool {
	hm.mu.RLock()
	defer hm.mu.RUnlock()
	return hm.hooks[h]
}

// Call runs h. An unregistered hook is not an error.
func (hm *HookManager) Call(h HookType, args ...rt.Value) error {
	if !hm.IsRegistered(h) {
		return nil
	}
	if _, err := hm.runtime.CallFunction(h.LuaFunctionName(), args...); err != nil {
		return fmt.Errorf("hook %s execution failed: %w", h, err)
	}
	return nil
}

// CallDraw runs the draw hook with the frame size.
func (hm *HookManager) CallDraw(width, height int) error {
	return hm.Call(HookDraw, rt.IntValue(int64(width)), rt.IntValue(int64(height)))
}
