package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Resolver locates and loads the project configuration for an input file.
type Resolver struct {
	// HomeDir bounds the upward search. When empty the user's home directory
	// is used. Inputs outside of it are searched up to the filesystem root.
	HomeDir string

	logger *slog.Logger
}

// NewResolver creates a resolver bounded by the user's home directory.
func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{logger: logger}
}

// Resolve returns the configuration for inputPath. A missing config file is
// not an error; it yields Defaults. A config file that cannot be parsed or
// fails validation returns a *ValidationError.
func (r *Resolver) Resolve(inputPath string) (*ProjectConfig, error) {
	absInput, err := filepath.Abs(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve input path %s: %w", inputPath, err)
	}
	startDir := filepath.Dir(absInput)

	configPath := r.FindConfigFile(startDir)
	if configPath == "" {
		r.log().Debug("no config file found, using defaults", slog.String("start", startDir))
		cfg := Defaults()
		cfg.Root = startDir
		return cfg, nil
	}

	r.log().Debug("using config file", slog.String("path", configPath))
	return Load(configPath)
}

// FindConfigFile searches startDir and its parents for a config file and
// returns the first one found. The boundary directory itself is checked
// before the search gives up. Returns empty string if none is found.
func (r *Resolver) FindConfigFile(startDir string) string {
	boundary := r.boundary(startDir)

	dir := filepath.Clean(startDir)
	for {
		if path := configFileIn(dir); path != "" {
			return path
		}
		if dir == boundary {
			return ""
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return ""
		}
		dir = parent
	}
}

// boundary returns the home directory when startDir lies inside it, and
// empty string (no boundary short of the root) otherwise.
func (r *Resolver) boundary(startDir string) string {
	home := r.HomeDir
	if home == "" {
		var err error
		if home, err = os.UserHomeDir(); err != nil {
			return ""
		}
	}
	home = filepath.Clean(home)

	rel, err := filepath.Rel(home, filepath.Clean(startDir))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ""
	}
	return home
}

func (r *Resolver) log() *slog.Logger {
	if r.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.logger
}

// configFileIn returns the first recognized config file in dir.
func configFileIn(dir string) string {
	for _, name := range FileNames {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

// Load reads, validates and defaults a single config file.
func Load(path string) (*ProjectConfig, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %s: %w", path, err)
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaultValues(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load config defaults: %w", err)
	}
	if err := k.Load(file.Provider(absPath), yaml.Parser()); err != nil {
		return nil, &ValidationError{File: absPath, Problems: []string{err.Error()}}
	}

	var raw fileSchema
	if err := k.UnmarshalWithConf("", &raw, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:      &raw,
			ErrorUnused: true,
			TagName:     "koanf",
		},
	}); err != nil {
		return nil, &ValidationError{File: absPath, Problems: decodeProblems(err)}
	}

	content, err := os.ReadFile(absPath) //nolint:gosec // G304: path comes from the config search
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", absPath, err)
	}
	order, err := postcssKeyOrder(content)
	if err != nil {
		return nil, &ValidationError{File: absPath, Problems: []string{err.Error()}}
	}

	cfg, problems := validate(&raw, order)
	if len(problems) > 0 {
		return nil, &ValidationError{File: absPath, Problems: problems}
	}

	cfg.File = absPath
	cfg.Root = filepath.Dir(absPath)

	return cfg, nil
}

// decodeProblems splits a mapstructure error into one line per problem.
func decodeProblems(err error) []string {
	var problems []string
	for _, line := range strings.Split(err.Error(), "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "*"))
		if line == "" || strings.HasSuffix(line, "error(s) decoding:") || strings.HasPrefix(line, "decoding failed due to") {
			continue
		}
		problems = append(problems, line)
	}
	if len(problems) == 0 {
		problems = []string{err.Error()}
	}
	return problems
}
