package plugins

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.starlark.net/starlark"

	"github.com/lonesomebyte537/lets/pkg/engine"
)

// initFunc is the entry point every plugin file must define.
const initFunc = "init"

// ctxKey is the thread-local key holding the invocation context.
const ctxKey = "lets.context"

// Script is a plugin file. It implements engine.Extension.
type Script struct {
	path  string
	scope string
	src   []byte
}

// NewScript creates the extension for the plugin file at path.
func NewScript(path string) *Script {
	return &Script{
		path:  path,
		scope: strings.TrimSuffix(filepath.Base(path), Extension),
	}
}

// NewScriptSource creates an extension from in-memory source. name is the
// file name the source pretends to come from.
func NewScriptSource(name string, src []byte) *Script {
	s := NewScript(name)
	s.src = src
	return s
}

// Name returns the plugin's context.
func (s *Script) Name() string { return s.scope }

// Path returns the plugin file path.
func (s *Script) Path() string { return s.path }

// Init executes the file and calls its init function with the lets module.
func (s *Script) Init(ctx context.Context, e *engine.Engine) error {
	src := s.src
	if src == nil {
		data, err := os.ReadFile(s.path)
		if err != nil {
			return fmt.Errorf("failed to read plugin %s: %w", s.path, err)
		}
		src = data
	}

	module := newModule(e, s.scope)
	thread, stop := newThread(ctx, e, s.scope)
	defer stop()

	globals, err := starlark.ExecFile(thread, s.path, src, starlark.StringDict{"lets": module})
	if err != nil {
		return fmt.Errorf("failed to execute plugin %s: %w", s.path, describe(err))
	}

	fn, ok := globals[initFunc].(starlark.Callable)
	if !ok {
		return fmt.Errorf("plugin %s does not define %s(lets)", s.path, initFunc)
	}
	if _, err := starlark.Call(thread, fn, starlark.Tuple{module}, nil); err != nil {
		return fmt.Errorf("failed to initialize plugin %s: %w", s.path, describe(err))
	}
	return nil
}

// newThread creates a thread printing through the engine. It is cancelled
// when ctx is done; stop releases the cancellation hook.
func newThread(ctx context.Context, e *engine.Engine, name string) (*starlark.Thread, func() bool) {
	thread := &starlark.Thread{
		Name: name,
		Print: func(_ *starlark.Thread, msg string) {
			e.Info(msg)
		},
	}
	thread.SetLocal(ctxKey, ctx)
	stop := context.AfterFunc(ctx, func() {
		thread.Cancel(context.Cause(ctx).Error())
	})
	return thread, stop
}

// threadContext returns the context the thread runs for.
func threadContext(thread *starlark.Thread) context.Context {
	if ctx, ok := thread.Local(ctxKey).(context.Context); ok {
		return ctx
	}
	return context.Background()
}

// handler adapts a Starlark function to an engine handler. The function is
// called as fn(lets, verb, args).
func handler(module starlark.Value, scope string, fn starlark.Callable) engine.Handler {
	return func(ctx context.Context, e *engine.Engine, invoked string, args []string) int {
		thread, stop := newThread(ctx, e, scope)
		defer stop()

		list := make([]starlark.Value, len(args))
		for i, a := range args {
			list[i] = starlark.String(a)
		}

		res, err := starlark.Call(thread, fn, starlark.Tuple{module, starlark.String(invoked), starlark.NewList(list)}, nil)
		if err != nil {
			reportFailure(e, err)
			return engine.ExitFailure
		}

		code, err := exitCode(res)
		if err != nil {
			e.Error(fmt.Sprintf("verb %s: %v", fn.Name(), err))
			return engine.ExitFailure
		}
		return code
	}
}

// reportFailure prints a failed verb. Engine errors raised through the lets
// module are shown without the Starlark backtrace.
func reportFailure(e *engine.Engine, err error) {
	var engineErr *engine.Error
	switch {
	case engine.IsAmbiguous(err):
		errors.As(err, &engineErr)
		e.Warning(engineErr.Error())
	case errors.As(err, &engineErr):
		e.Error(engineErr.Error())
	default:
		e.Error(describe(err).Error())
	}
}

func exitCode(v starlark.Value) (int, error) {
	switch v := v.(type) {
	case starlark.NoneType:
		return engine.ExitOK, nil
	case starlark.Int:
		code, ok := v.Int64()
		if !ok {
			return 0, fmt.Errorf("exit code %s out of range", v)
		}
		return int(code), nil
	default:
		return 0, fmt.Errorf("must return None or int, got %s", v.Type())
	}
}

// backtraceError reports a Starlark failure with its call stack while keeping
// the original error in the chain.
type backtraceError struct {
	backtrace string
	err       error
}

func (b *backtraceError) Error() string { return b.backtrace }
func (b *backtraceError) Unwrap() error { return b.err }

// describe adds the Starlark backtrace to evaluation errors.
func describe(err error) error {
	var evalErr *starlark.EvalError
	if errors.As(err, &evalErr) {
		return &backtraceError{backtrace: evalErr.Backtrace(), err: err}
	}
	return err
}
