// Package lua runs user Lua scripts with resource limits and exposes the
// drawing operations to them.
package lua

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/arnodel/golua/lib"
	rt "github.com/arnodel/golua/runtime"
)

// RuntimeConfig sets the limits applied to every chunk and function call.
type RuntimeConfig struct {
	// CPULimit is the instruction budget per call, 0 for unlimited.
	CPULimit uint64
	// MemoryLimit is the allocation budget in bytes per call, 0 for unlimited.
	MemoryLimit uint64
	// Stdout receives print() output in addition to the internal buffer.
	Stdout io.Writer
}

// DefaultConfig returns a 10M instruction and 50 MB limit.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		CPULimit:    10_000_000,
		MemoryLimit: 50 * 1024 * 1024,
	}
}

// Runtime is a golua runtime safe for use from several goroutines.
type Runtime struct {
	config  RuntimeConfig
	runtime *rt.Runtime
	output  *bytes.Buffer
	cleanup func()
	mu      sync.Mutex
}

// NewRuntime creates a runtime with the standard libraries loaded.
func NewRuntime(config RuntimeConfig) (*Runtime, error) {
	output := &bytes.Buffer{}
	var stdout io.Writer = output
	if config.Stdout != nil {
		stdout = io.MultiWriter(config.Stdout, output)
	}

	runtime := rt.New(stdout)
	cleanup := lib.LoadAll(runtime)

	return &Runtime{
		config:  config,
		runtime: runtime,
		output:  output,
		cleanup: cleanup,
	}, nil
}

func (r *Runtime) limits() rt.RuntimeContextDef {
	return rt.RuntimeContextDef{
		HardLimits: rt.RuntimeResources{
			Cpu:    r.config.CPULimit,
			Memory: r.config.MemoryLimit,
		},
	}
}

// ExecuteString compiles and runs code. name appears in error messages.
func (r *Runtime) ExecuteString(name, code string) (rt.Value, error) {
	return r.execute(name, []byte(code))
}

// ExecuteFile reads and runs the Lua file at path.
func (r *Runtime) ExecuteFile(path string) (rt.Value, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return rt.NilValue, fmt.Errorf("failed to read Lua file %s: %w", path, err)
	}
	return r.execute(path, content)
}

func (r *Runtime) execute(name string, code []byte) (result rt.Value, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	closure, err := r.runtime.CompileAndLoadLuaChunk(name, code, rt.TableValue(r.runtime.GlobalEnv()))
	if err != nil {
		return rt.NilValue, fmt.Errorf("failed to load Lua code: %w", err)
	}

	r.runtime.PushContext(r.limits())
	defer r.runtime.PopContext()
	defer recoverLimit(name, &result, &err)

	result, err = rt.Call1(r.runtime.MainThread(), rt.FunctionValue(closure))
	if err != nil {
		return rt.NilValue, fmt.Errorf("Lua execution error: %w", err)
	}
	return result, nil
}

// HasFunction reports whether the global name holds a function.
func (r *Runtime) HasFunction(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runtime.GlobalEnv().Get(rt.StringValue(name)).Type() == rt.FunctionType
}

// CallFunction calls the global function name within the runtime limits.
func (r *Runtime) CallFunction(name string, args ...rt.Value) (result rt.Value, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fn := r.runtime.GlobalEnv().Get(rt.StringValue(name))
	if fn == rt.NilValue {
		return rt.NilValue, fmt.Errorf("%w: %s", ErrFunctionNotFound, name)
	}

	r.runtime.PushContext(r.limits())
	defer r.runtime.PopContext()
	defer recoverLimit(name, &result, &err)

	result, err = rt.Call1(r.runtime.MainThread(), fn, args...)
	if err != nil {
		return rt.NilValue, fmt.Errorf("failed to call function %s: %w", name, err)
	}
	return result, nil
}

// recoverLimit turns a golua hard limit panic into an error.
func recoverLimit(name string, result *rt.Value, err *error) {
	if p := recover(); p != nil {
		*result = rt.NilValue
		*err = fmt.Errorf("%w: %s: %v", ErrLimitExceeded, name, p)
	}
}

// GetGlobal returns the global name, or nil.
func (r *Runtime) GetGlobal(name string) rt.Value {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runtime.GlobalEnv().Get(rt.StringValue(name))
}

// SetGlobal sets the global name.
func (r *Runtime) SetGlobal(name string, value rt.Value) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runtime.GlobalEnv().Set(rt.StringValue(name), value)
}

// SetGoFunction registers fn as the global name. Registered functions must
// not call back into the Runtime.
func (r *Runtime) SetGoFunction(name string, fn rt.GoFunctionFunc, nArgs int, hasVarArgs bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	goFunc := rt.NewGoFunction(fn, name, nArgs, hasVarArgs)
	rt.SolemnlyDeclareCompliance(rt.ComplyMemSafe|rt.ComplyCpuSafe, goFunc)
	r.runtime.GlobalEnv().Set(rt.StringValue(name), rt.FunctionValue(goFunc))
}

// Output returns everything printed so far.
func (r *Runtime) Output() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.output.String()
}

// ClearOutput empties the print buffer.
func (r *Runtime) ClearOutput() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.output.Reset()
}

// Close releases the runtime. It must not be used afterwards.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cleanup != nil {
		r.cleanup()
		r.cleanup = nil
	}
	return nil
}
