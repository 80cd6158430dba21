// Package config resolves the Glaze project configuration that governs how a
// source file is built.
//
// A project is configured by the nearest glaze config file found by walking
// upward from the input file's directory. Exactly one file is used; there is
// no merging across directory levels.
package config

import (
	"github.com/leapstack-labs/glaze/internal/transform"
)

// ProjectConfig is the validated, defaulted configuration for one build.
// It is computed per pipeline invocation and must not be mutated after
// resolution.
type ProjectConfig struct {
	// PurgeSources are glob patterns of content files used as selector usage
	// evidence when pruning in production mode.
	PurgeSources []string

	// OutDir is the default output directory, relative to the working directory.
	OutDir string

	// StyleTransforms are applied to the compiled stylesheet in order.
	StyleTransforms []transform.Descriptor

	// ScriptExt is the extension (without dot) of the emitted script file.
	ScriptExt string

	// File is the config file the values were read from. Empty when no file
	// was found and all values are defaults.
	File string

	// Root is the directory purge sources and transform scripts are resolved
	// against: the config file's directory, or the input's directory.
	Root string
}

// fileSchema mirrors the accepted keys of a config file. Pointer fields
// distinguish absent keys from empty values.
type fileSchema struct {
	PurgeSources []string `koanf:"purgeSources"`
	OutDir       *string  `koanf:"outDir"`
	PostCSS      any      `koanf:"postcss"`
	ScriptExt    *string  `koanf:"scriptExt"`
}
