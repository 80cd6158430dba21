package starlark

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"go.starlark.net/starlark"
)

// DefaultFunction is the function a transform script must define.
const DefaultFunction = "transform"

// Script is a loaded Starlark transform script.
type Script struct {
	Path    string
	globals starlark.StringDict
	logger  *slog.Logger
}

// ScriptError reports a failure loading or running a script.
type ScriptError struct {
	File    string
	Message string
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

// LoadScript executes the file at path and keeps its globals.
// The "project" global is available while the file executes and when its
// functions run.
func LoadScript(path string, project *ProjectInfo, logger *slog.Logger) (*Script, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	content, err := os.ReadFile(path) //nolint:gosec // G304: script path is declared in the project config
	if err != nil {
		return nil, &ScriptError{File: path, Message: fmt.Sprintf("failed to read file: %v", err)}
	}

	predeclared := starlark.StringDict{}
	if project != nil {
		predeclared["project"] = project.ToStarlark()
	}

	thread := newThread("load:"+filepath.Base(path), logger)
	globals, err := starlark.ExecFile(thread, path, content, predeclared) //nolint:staticcheck // SA1019: will migrate to ExecFileOptions later
	if err != nil {
		return nil, &ScriptError{File: path, Message: fmt.Sprintf("Starlark execution error: %v", err)}
	}

	return &Script{Path: path, globals: globals, logger: logger}, nil
}

// CallTransform calls fn(css, options) and returns its string result.
func (s *Script) CallTransform(ctx context.Context, fn, css string, options map[string]any) (string, error) {
	if fn == "" {
		fn = DefaultFunction
	}

	v, ok := s.globals[fn]
	if !ok {
		return "", &ScriptError{File: s.Path, Message: fmt.Sprintf("function %q is not defined", fn)}
	}
	callable, ok := v.(starlark.Callable)
	if !ok {
		return "", &ScriptError{File: s.Path, Message: fmt.Sprintf("%q is a %s, not a function", fn, v.Type())}
	}

	opts, err := GoToStarlark(options)
	if err != nil {
		return "", &ScriptError{File: s.Path, Message: fmt.Sprintf("options: %v", err)}
	}
	if options == nil {
		opts = starlark.NewDict(0)
	}

	thread := newThread("transform:"+filepath.Base(s.Path), s.logger)
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			thread.Cancel(ctx.Err().Error())
		case <-done:
		}
	}()

	result, err := starlark.Call(thread, callable, starlark.Tuple{starlark.String(css), opts}, nil)
	if err != nil {
		return "", &ScriptError{File: s.Path, Message: fmt.Sprintf("%s() failed: %v", fn, err)}
	}

	str, ok := result.(starlark.String)
	if !ok {
		return "", &ScriptError{File: s.Path, Message: fmt.Sprintf("%s() must return a string, got %s", fn, result.Type())}
	}
	return string(str), nil
}

func newThread(name string, logger *slog.Logger) *starlark.Thread {
	return &starlark.Thread{
		Name: name,
		Print: func(t *starlark.Thread, msg string) {
			logger.Debug("starlark print", slog.String("thread", t.Name), slog.String("msg", msg))
		},
	}
}
