// Package pipeline orchestrates a Glaze build: config resolution, the
// external compiler, style transforms, production optimization and output.
package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/leapstack-labs/glaze/internal/compiler"
	"github.com/leapstack-labs/glaze/internal/config"
	"github.com/leapstack-labs/glaze/internal/optimize"
	"github.com/leapstack-labs/glaze/internal/output"
	"github.com/leapstack-labs/glaze/internal/transform"
)

// Options select the build mode.
type Options struct {
	Production bool
}

// Request is one compile invocation.
type Request struct {
	// Input is the .glz file, relative to the working directory or absolute.
	Input string

	// OutputDir overrides the configured output directory when non-empty.
	OutputDir string

	Options Options
}

// Result describes a successful build.
type Result struct {
	Input      string
	OutputDir  string
	ConfigFile string
	Transforms int
	Optimize   *optimize.Report
	Written    *output.Written
}

// Pipeline runs builds. It holds no per-build state and may be reused.
type Pipeline struct {
	compiler  compiler.Compiler
	resolver  *config.Resolver
	registry  *transform.Registry
	optimizer *optimize.Optimizer
	logger    *slog.Logger
	homeDir   string
	workDir   string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used by every stage.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithRegistry replaces the built-in style transform registry.
func WithRegistry(r *transform.Registry) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.registry = r
		}
	}
}

// WithHomeDir bounds the config search at dir instead of the user's home.
func WithHomeDir(dir string) Option {
	return func(p *Pipeline) {
		p.homeDir = dir
	}
}

// WithWorkDir anchors relative paths at dir instead of the process working
// directory.
func WithWorkDir(dir string) Option {
	return func(p *Pipeline) {
		p.workDir = dir
	}
}

// New creates a Pipeline around c.
func New(c compiler.Compiler, opts ...Option) *Pipeline {
	p := &Pipeline{
		compiler: c,
		registry: transform.DefaultRegistry(),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.resolver = config.NewResolver(p.logger)
	p.resolver.HomeDir = p.homeDir
	p.optimizer = optimize.New(p.logger)
	return p
}

// Compile builds one input. Stages run strictly in order and the first
// failure stops the build; nothing is written unless every earlier stage
// succeeded. Errors are *Error values.
func (p *Pipeline) Compile(ctx context.Context, req Request) (*Result, error) {
	wd, err := p.workingDir()
	if err != nil {
		return nil, fail(KindUnknown, "resolve working directory", err, "")
	}
	input := anchor(wd, req.Input)
	log := p.logger.With(slog.String("input", input))

	// 1. Config
	cfg, err := p.resolver.Resolve(input)
	if err != nil {
		return nil, fail(KindConfigValidation, "resolve config", err, "fix the config file, or remove it to build with defaults")
	}
	if cfg.File != "" {
		log.Debug("resolved config", slog.String("file", cfg.File))
	}

	// 2. Output directory
	outDir := req.OutputDir
	if outDir == "" {
		outDir = cfg.OutDir
	}
	outDir = anchor(wd, outDir)

	// 3. Input extension
	if filepath.Ext(input) != compiler.Extension {
		return nil, fail(KindInvalidInputExtension, "validate input",
			fmt.Errorf("%s does not have the %s extension", input, compiler.Extension),
			"Glaze files must end with "+compiler.Extension+" extension")
	}
	if output.Stem(input) == "" {
		return nil, fail(KindInvalidInputExtension, "validate input",
			fmt.Errorf("%s has no name before the %s extension", input, compiler.Extension),
			"name the input file, for example style"+compiler.Extension)
	}

	// 4. Compiler
	log.Debug("compiling")
	artifacts, err := p.compiler.Compile(ctx, input)
	if err != nil {
		return nil, fail(KindCompiler, "compile", err, compilerHint(err))
	}

	// 5. Style transforms
	env := transform.Env{Root: cfg.Root, Production: req.Options.Production}
	style, err := transform.NewChain(p.registry, log).Apply(ctx, artifacts.Style, cfg.StyleTransforms, env)
	if err != nil {
		return nil, fail(KindTransform, "transform styles", err, "")
	}
	artifacts.Style = style

	// 6. Production optimization
	artifacts, report, err := p.optimizer.Optimize(ctx, artifacts, cfg.PurgeSources, cfg.Root, req.Options.Production)
	if err != nil {
		return nil, fail(KindOptimization, "optimize", err, "")
	}

	// 7. Output
	written, err := output.NewWriter(cfg.ScriptExt).Write(outDir, filepath.Base(input), artifacts)
	if err != nil {
		return nil, fail(KindWrite, "write output", err, "")
	}
	log.Debug("wrote artifacts", slog.String("style", written.StylePath), slog.String("script", written.ScriptPath))

	return &Result{
		Input:      input,
		OutputDir:  outDir,
		ConfigFile: cfg.File,
		Transforms: len(cfg.StyleTransforms),
		Optimize:   report,
		Written:    written,
	}, nil
}

func (p *Pipeline) workingDir() (string, error) {
	if p.workDir != "" {
		return p.workDir, nil
	}
	return os.Getwd()
}

// anchor makes path absolute relative to dir.
func anchor(dir, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(dir, path)
}

func compilerHint(err error) string {
	if stderrors.Is(err, exec.ErrNotFound) {
		return "install the Glaze compiler or point --compiler (GLAZE_COMPILER) at it"
	}
	return ""
}
