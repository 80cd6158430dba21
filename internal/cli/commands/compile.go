package commands

import (
	"fmt"
	"path/filepath"

	"github.com/leapstack-labs/glaze/internal/cli/output"
	"github.com/leapstack-labs/glaze/internal/pipeline"
	"github.com/spf13/cobra"
)

// CompileOptions holds flags of the compile command.
type CompileOptions struct {
	Production bool
}

// NewCompileCommand creates the compile command.
func NewCompileCommand() *cobra.Command {
	opts := &CompileOptions{}

	cmd := &cobra.Command{
		Use:   "compile <input_file> [output_dir]",
		Short: "Compile a .glz file into a stylesheet and a script",
		Long: `Compile a Glaze source file into <name>.css and <name>.js.

The project configuration is read from the nearest glaze.config.yaml,
glaze.config.yml, glaze.yaml or glaze.yml found in the input's directory or
one of its parents. The output directory defaults to the configured outDir.

In production mode, unused rules are pruned against the configured
purgeSources and both outputs are minified.`,
		Example: `  # Compile into the configured output directory
  glaze compile src/style.glz

  # Compile into dist/ with pruning and minification
  glaze compile src/style.glz dist --production`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunCompile(cmd, args, opts)
		},
	}

	AddCompileFlags(cmd, opts)
	return cmd
}

// AddCompileFlags registers the compile flags on cmd.
func AddCompileFlags(cmd *cobra.Command, opts *CompileOptions) {
	cmd.Flags().BoolVarP(&opts.Production, "production", "p", false, "Enables production mode (prune and minify)")
}

// RunCompile builds args[0] into args[1] (optional).
func RunCompile(cmd *cobra.Command, args []string, opts *CompileOptions) error {
	cc := NewCommandContext(cmd)

	req := pipeline.Request{
		Input:   args[0],
		Options: pipeline.Options{Production: opts.Production},
	}
	if len(args) > 1 {
		req.OutputDir = args[1]
	}

	result, err := cc.newPipeline().Compile(cmd.Context(), req)
	if err != nil {
		return err
	}

	return renderCompileResult(cc.Renderer, result, opts.Production)
}

type compileJSON struct {
	Input        string   `json:"input"`
	ConfigFile   string   `json:"config_file,omitempty"`
	OutputDir    string   `json:"output_dir"`
	Files        []string `json:"files"`
	Production   bool     `json:"production"`
	Transforms   int      `json:"transforms"`
	Pruned       bool     `json:"pruned"`
	RemovedRules int      `json:"removed_rules"`
	Minified     bool     `json:"minified"`
}

func renderCompileResult(r *output.Renderer, res *pipeline.Result, production bool) error {
	if r.Mode() == output.ModeJSON {
		out := compileJSON{
			Input:      res.Input,
			ConfigFile: res.ConfigFile,
			OutputDir:  res.OutputDir,
			Files:      []string{res.Written.StylePath, res.Written.ScriptPath},
			Production: production,
			Transforms: res.Transforms,
		}
		if res.Optimize != nil {
			out.Pruned = res.Optimize.Pruned
			out.RemovedRules = res.Optimize.RemovedRules
			out.Minified = res.Optimize.Minified
		}
		return r.JSON(out)
	}

	if res.ConfigFile != "" {
		r.StatusLine("config", "success", res.ConfigFile)
	} else {
		r.StatusLine("config", "skipped", "no config file, using defaults")
	}
	if res.Transforms > 0 {
		r.StatusLine("transforms", "success", fmt.Sprintf("%d applied", res.Transforms))
	}
	if production && res.Optimize != nil {
		if res.Optimize.Pruned {
			r.StatusLine("prune", "success", fmt.Sprintf("%d rules removed using %d files", res.Optimize.RemovedRules, len(res.Optimize.PurgeFiles)))
		} else {
			r.StatusLine("prune", "skipped", "no purgeSources declared")
		}
		r.StatusLine("minify", "success", "")
	}
	r.StatusLine(filepath.Base(res.Written.StylePath), "success", res.Written.StylePath)
	r.StatusLine(filepath.Base(res.Written.ScriptPath), "success", res.Written.ScriptPath)
	return nil
}
