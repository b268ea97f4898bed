package script

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/keyflow/internal/config"
	"github.com/dshills/keyflow/internal/input/command"
)

// DefaultTimeout bounds a single handler call.
const DefaultTimeout = 2 * time.Second

// Engine compiles and runs Lua command handlers.
type Engine struct {
	mu sync.Mutex

	L       *lua.LState
	timeout time.Duration
	logger  *slog.Logger
	closed  bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout sets the per-call time limit. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.timeout = d
		}
	}
}

// WithLogger sets the logger used by keyflow.log and for failures.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates an engine with a fresh sandboxed Lua state.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		timeout: DefaultTimeout,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(e.L)
	e.L.PreloadModule("keyflow", e.loadModule)
	e.L.SetGlobal("keyflow", e.L.SetFuncs(e.L.NewTable(), e.moduleFuncs()))
	return e
}

// openSafeLibraries opens the libraries that cannot reach the host.
func openSafeLibraries(L *lua.LState) {
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.LoadLibName, lua.OpenPackage},
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}
	if pkg, ok := L.GetGlobal("package").(*lua.LTable); ok {
		L.SetField(pkg, "path", lua.LString(""))
		L.SetField(pkg, "cpath", lua.LString(""))
	}
}

func (e *Engine) moduleFuncs() map[string]lua.LGFunction {
	return map[string]lua.LGFunction{
		"log": func(L *lua.LState) int {
			e.logger.Info("script", "message", L.CheckString(1))
			return 0
		},
	}
}

func (e *Engine) loadModule(L *lua.LState) int {
	L.Push(L.SetFuncs(L.NewTable(), e.moduleFuncs()))
	return 1
}

// Compile compiles source into a handler. name labels the chunk in errors.
func (e *Engine) Compile(name, source string) (command.Handler, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, ErrEngineClosed
	}

	fn, err := e.L.Load(strings.NewReader(source), name)
	if err != nil {
		return nil, &CompileError{Name: name, Err: err}
	}

	return func(inv command.Invocation) (any, error) {
		return e.call(name, fn, inv)
	}, nil
}

// Handler compiles spec.Script. Commands without a script get no handler.
func (e *Engine) Handler(spec config.CommandSpec) (command.Handler, error) {
	if spec.Script == "" {
		return nil, nil
	}
	return e.Compile(spec.Name, spec.Script)
}

var _ config.HandlerSource = (*Engine)(nil)

func (e *Engine) call(name string, fn *lua.LFunction, inv command.Invocation) (any, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, ErrEngineClosed
	}

	ctx := context.Background()
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
		e.L.SetContext(ctx)
		defer e.L.RemoveContext()
	}

	top := e.L.GetTop()
	err := e.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, e.invocationTable(inv))
	if err != nil {
		e.L.SetTop(top)
		if ctx.Err() != nil {
			e.logger.Warn("script timed out", "name", name, "timeout", e.timeout)
			return nil, fmt.Errorf("%w: %s", ErrTimeout, name)
		}
		return nil, err
	}

	ret := e.L.Get(-1)
	e.L.Pop(1)
	return toGo(ret), nil
}

func (e *Engine) invocationTable(inv command.Invocation) *lua.LTable {
	t := e.L.NewTable()
	t.RawSetString("name", lua.LString(inv.Signature.Name))
	t.RawSetString("keys", lua.LString(inv.Keys.VimString()))
	t.RawSetString("count", lua.LNumber(inv.Count))
	if inv.HasArgument {
		arg := inv.Argument.VimString()
		if inv.Argument.IsChar() && !inv.Argument.IsModified() {
			arg = string(inv.Argument.Rune)
		}
		t.RawSetString("argument", lua.LString(arg))
	}
	return t
}

// Close releases the Lua state. Handlers compiled by the engine fail with
// ErrEngineClosed afterwards.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.L.Close()
	e.closed = true
	return nil
}

// toGo converts a Lua value to a plain Go value. Integral numbers become
// int, tables with only array keys become []any, other tables map[string]any.
func toGo(v lua.LValue) any {
	switch v := v.(type) {
	case lua.LString:
		return string(v)
	case lua.LNumber:
		f := float64(v)
		if f == math.Trunc(f) && f >= math.MinInt32 && f <= math.MaxInt32 {
			return int(f)
		}
		return f
	case lua.LBool:
		return bool(v)
	case *lua.LTable:
		if n := v.Len(); n > 0 {
			list := make([]any, 0, n)
			for i := 1; i <= n; i++ {
				list = append(list, toGo(v.RawGetInt(i)))
			}
			return list
		}
		m := make(map[string]any)
		v.ForEach(func(k, val lua.LValue) {
			m[k.String()] = toGo(val)
		})
		return m
	default:
		return nil
	}
}
