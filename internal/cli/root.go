// Package cli provides the command-line interface for Glaze.
package cli

import (
	"os"

	"github.com/leapstack-labs/glaze/internal/cli/commands"
	"github.com/leapstack-labs/glaze/internal/cli/config"
	"github.com/leapstack-labs/glaze/internal/cli/output"
	"github.com/leapstack-labs/glaze/internal/pipeline"
	"github.com/spf13/cobra"
)

// Version is the release version (set at build time).
var Version = "0.1.0"

// Exit codes returned by the glaze binary.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	opts := &commands.CompileOptions{}

	rootCmd := &cobra.Command{
		Use:   "glaze <input_file> [output_dir]",
		Short: "Glaze - build front end for .glz files",
		Long: `Glaze compiles a .glz source file into a stylesheet and a script.

The stylesheet runs through the style transforms declared in the project's
glaze config file. With --production, rules unused by the configured
purgeSources are pruned and both outputs are minified.

Running glaze with an input file is the same as 'glaze compile'.`,
		Example: `  glaze src/style.glz
  glaze src/style.glz dist -p`,
		Version: Version,
		Args:    cobra.RangeArgs(0, 2),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.LoadConfig(cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			logger := config.NewLogger(cfg, cmd.ErrOrStderr())
			cmd.SetContext(config.WithLogger(cmd.Context(), logger))
			logger.Debug("cli config loaded",
				"compiler", cfg.Compiler,
				"output", cfg.OutputFormat,
				"log_format", cfg.LogFormat)

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return commands.RunCompile(cmd, args, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags
	rootCmd.PersistentFlags().Bool("verbose", false, "Verbose output (debug logging)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format (text|json)")
	rootCmd.PersistentFlags().String("compiler", "", "Compiler command line (default: glazec)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (auto|text|json)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "text", "json"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log-format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	commands.AddCompileFlags(rootCmd, opts)

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewCompileCommand())
	rootCmd.AddCommand(commands.NewInitCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command with os.Args and returns the process exit code.
func Execute() int {
	return ExecuteArgs(NewRootCmd(), os.Args[1:])
}

// ExecuteArgs runs rootCmd with args, reporting any failure and its hints on
// the command's error writer.
func ExecuteArgs(rootCmd *cobra.Command, args []string) int {
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		r := output.NewRenderer(rootCmd.OutOrStdout(), rootCmd.ErrOrStderr(), output.ModeText)
		r.Error(err.Error(), pipeline.Hints(err)...)
		return ExitCode(err)
	}
	return ExitOK
}

// ExitCode maps err to the process exit code. Mistakes in the invocation or
// the project config exit with ExitUsage; every other failure with ExitError.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch pipeline.KindOf(err) {
	case pipeline.KindConfigValidation, pipeline.KindInvalidInputExtension:
		return ExitUsage
	default:
		return ExitError
	}
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for Glaze.

To load completions:

Bash:
  $ source <(glaze completion bash)

Zsh:
  $ glaze completion zsh > "${fpath[1]}/_glaze"

Fish:
  $ glaze completion fish | source

PowerShell:
  PS> glaze completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
