package config

import "github.com/leapstack-labs/glaze/internal/transform"

// Default configuration values.
const (
	DefaultOutDir    = "."
	DefaultScriptExt = "js"
)

// FileNames are the recognized config file names, in lookup order.
var FileNames = []string{
	"glaze.config.yaml",
	"glaze.config.yml",
	"glaze.yaml",
	"glaze.yml",
}

// Defaults returns the configuration used when no config file is found.
func Defaults() *ProjectConfig {
	return &ProjectConfig{
		PurgeSources:    []string{},
		OutDir:          DefaultOutDir,
		StyleTransforms: []transform.Descriptor{},
		ScriptExt:       DefaultScriptExt,
	}
}

// defaultValues is the lowest koanf layer of a config file load, keyed as in
// the file.
func defaultValues() map[string]any {
	return map[string]any{
		"purgeSources": []any{},
		"outDir":       DefaultOutDir,
		"scriptExt":    DefaultScriptExt,
	}
}
