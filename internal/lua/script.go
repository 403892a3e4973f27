package lua

import (
	"errors"
	"fmt"

	rt "github.com/arnodel/golua/runtime"

	"github.com/opd-ai/go-wmdraw/internal/drawutil"
)

// Script is a loaded user script with the drawing functions available and
// its hooks registered. It draws on whatever surface it is given per frame.
type Script struct {
	runtime  *Runtime
	bindings *DrawBindings
	hooks    *HookManager
}

// LoadScript runs the Lua file at path and calls its startup hook. A
// configuration file may be loaded as a script: the wmdraw table it
// assigns into exists beforehand.
func LoadScript(path string, disp *drawutil.Display, config RuntimeConfig) (*Script, error) {
	runtime, err := NewRuntime(config)
	if err != nil {
		return nil, err
	}
	s, err := newScript(runtime, disp)
	if err != nil {
		runtime.Close()
		return nil, err
	}
	if _, err := runtime.ExecuteFile(path); err != nil {
		runtime.Close()
		return nil, err
	}
	if err := s.start(); err != nil {
		runtime.Close()
		return nil, err
	}
	return s, nil
}

// LoadScriptString is LoadScript for source held in memory.
func LoadScriptString(name, code string, disp *drawutil.Display, config RuntimeConfig) (*Script, error) {
	runtime, err := NewRuntime(config)
	if err != nil {
		return nil, err
	}
	s, err := newScript(runtime, disp)
	if err != nil {
		runtime.Close()
		return nil, err
	}
	if _, err := runtime.ExecuteString(name, code); err != nil {
		runtime.Close()
		return nil, err
	}
	if err := s.start(); err != nil {
		runtime.Close()
		return nil, err
	}
	return s, nil
}

func newScript(runtime *Runtime, disp *drawutil.Display) (*Script, error) {
	bindings, err := NewDrawBindings(runtime, disp)
	if err != nil {
		return nil, err
	}
	hooks, err := NewHookManager(runtime)
	if err != nil {
		return nil, err
	}
	runtime.SetGlobal("wmdraw", rt.TableValue(rt.NewTable()))
	return &Script{runtime: runtime, bindings: bindings, hooks: hooks}, nil
}

func (s *Script) start() error {
	s.hooks.AutoRegisterHooks()
	return s.hooks.Call(HookStartup)
}

// Runtime returns the script's runtime.
func (s *Script) Runtime() *Runtime { return s.runtime }

// HasDrawHook reports whether the script defines wmdraw_draw.
func (s *Script) HasDrawHook() bool { return s.hooks.IsRegistered(HookDraw) }

// DrawFrame calls wmdraw_draw(width, height) with target bound for the
// drawing functions.
func (s *Script) DrawFrame(target *drawutil.Surface, width, height int) error {
	if target == nil {
		return errors.New("nil target surface")
	}
	s.bindings.Bind(target)
	defer s.bindings.Bind(nil)
	return s.hooks.CallDraw(width, height)
}

// Close calls the shutdown hook and releases the runtime.
func (s *Script) Close() error {
	err := s.hooks.Call(HookShutdown)
	if cerr := s.runtime.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("close script: %w", err)
	}
	return nil
}
