// Package compiler defines the boundary to the Glaze source compiler.
//
// The compiler itself is an external engine. Glaze calls it with an input
// path and receives the compiled stylesheet and script back; writing them to
// disk stays with the build pipeline.
package compiler

import "context"

// Extension is the required extension of Glaze source files.
const Extension = ".glz"

// Artifacts are the compiled outputs of one source file.
type Artifacts struct {
	Style  string
	Script string
}

// Compiler translates a Glaze source file into artifacts.
type Compiler interface {
	Compile(ctx context.Context, inputPath string) (Artifacts, error)
}

// Func adapts a function to the Compiler interface.
type Func func(ctx context.Context, inputPath string) (Artifacts, error)

// Compile calls f.
func (f Func) Compile(ctx context.Context, inputPath string) (Artifacts, error) {
	return f(ctx, inputPath)
}
