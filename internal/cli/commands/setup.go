package commands

import (
	"log/slog"

	"github.com/leapstack-labs/glaze/internal/cli/config"
	"github.com/leapstack-labs/glaze/internal/cli/output"
	"github.com/leapstack-labs/glaze/internal/compiler"
	"github.com/leapstack-labs/glaze/internal/pipeline"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext for cmd.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// CompilerFactory creates the compiler used by build commands. Tests replace
// it to avoid running an external executable.
var CompilerFactory = func(cfg *config.Config, logger *slog.Logger) compiler.Compiler {
	return compiler.NewExecCompiler(cfg.Compiler, logger)
}

// newPipeline creates a build pipeline from the command context.
func (cc *CommandContext) newPipeline() *pipeline.Pipeline {
	return pipeline.New(CompilerFactory(cc.Cfg, cc.Logger), pipeline.WithLogger(cc.Logger))
}

// getConfig returns the current configuration, or defaults when the root
// command did not load one (e.g. a subcommand executed on its own in tests).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		LogFormat:    config.DefaultLogFormat,
		Compiler:     config.DefaultCompiler,
		OutputFormat: config.DefaultOutput,
	}
}
