package script

import "errors"

var (
	// ErrEngineClosed is returned when compiling or running on a closed engine.
	ErrEngineClosed = errors.New("script engine is closed")

	// ErrTimeout is returned when a handler runs longer than the engine allows.
	ErrTimeout = errors.New("script timed out")
)

// CompileError reports a Lua chunk that failed to compile.
type CompileError struct {
	Name string
	Err  error
}

func (e *CompileError) Error() string {
	return "compile " + e.Name + ": " + e.Err.Error()
}

func (e *CompileError) Unwrap() error {
	return e.Err
}
