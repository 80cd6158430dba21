package transform

import (
	"context"
	"fmt"
	"path/filepath"

	starscript "github.com/leapstack-labs/glaze/internal/starlark"
)

// Starlark runs a project-local Starlark script as a transform.
//
// Options:
//
//	script: transforms/rewrite.star   # required, relative to the project root
//	function: transform               # optional
//
// Every other option is passed to the function as its second argument.
type Starlark struct{}

// NewStarlark creates the starlark transform.
func NewStarlark() *Starlark { return &Starlark{} }

// Name returns "starlark".
func (*Starlark) Name() string { return "starlark" }

// Apply loads the script and calls its transform function with css.
func (*Starlark) Apply(ctx context.Context, css string, args Args) (string, error) {
	script, err := stringOption(args.Options, "script", "")
	if err != nil {
		return "", err
	}
	if script == "" {
		return "", fmt.Errorf("option script is required")
	}
	fn, err := stringOption(args.Options, "function", starscript.DefaultFunction)
	if err != nil {
		return "", err
	}

	path := script
	if !filepath.IsAbs(path) {
		path = filepath.Join(args.Root, path)
	}

	loaded, err := starscript.LoadScript(path, &starscript.ProjectInfo{Root: args.Root, Production: args.Production}, nil)
	if err != nil {
		return "", err
	}

	passthrough := make(map[string]any, len(args.Options))
	for k, v := range args.Options {
		if k != "script" && k != "function" {
			passthrough[k] = v
		}
	}
	return loaded.CallTransform(ctx, fn, css, passthrough)
}
