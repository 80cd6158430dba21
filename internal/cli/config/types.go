// Package config holds the settings of the glaze command line itself.
//
// These are not project settings: a project is configured by its glaze
// config file (see internal/config). CLI settings come from defaults,
// GLAZE_* environment variables and flags.
package config

import "github.com/leapstack-labs/glaze/internal/compiler"

// Config holds all CLI configuration options.
type Config struct {
	Verbose      bool   `koanf:"verbose"`
	LogFormat    string `koanf:"log_format"`
	Compiler     string `koanf:"compiler"`
	OutputFormat string `koanf:"output"`
}

// Default configuration values.
const (
	DefaultLogFormat = "text"
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=text without styling
	DefaultCompiler  = compiler.DefaultCommand
)

// EnvPrefix is the prefix of environment variables read as settings.
const EnvPrefix = "GLAZE_"
