package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/glaze/internal/cli/output"
	"github.com/leapstack-labs/glaze/internal/config"
	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new Glaze project",
		Long: `Initialize a new Glaze project from the built-in template.

This creates:
  - glaze.yaml configuration file
  - style.glz starter stylesheet
  - index.html page using it (also the default purge source)
  - .gitignore ignoring the dist/ output directory`,
		Example: `  # Initialize in current directory
  glaze init

  # Initialize in a new directory
  glaze init my-site

  # Overwrite existing files
  glaze init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			cc := NewCommandContext(cmd)
			return runInit(cc.Renderer, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")

	return cmd
}

func runInit(r *output.Renderer, dir string, force bool) error {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	// Refuse to clobber an existing project config
	if !force {
		for _, name := range config.FileNames {
			if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
				return fmt.Errorf("%s already exists. Use --force to overwrite", name)
			}
		}
	}

	written, err := copyTemplate("minimal", dir, force)
	if err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	files, _ := listTemplateFiles("minimal")
	for _, f := range files {
		status := "skipped"
		for _, w := range written {
			if w == f {
				status = "success"
				break
			}
		}
		r.StatusLine(f, status, "")
	}

	r.Println("")
	r.Success("Glaze project initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Edit style.glz")
	r.Println("  2. Run 'glaze compile style.glz' to build dist/style.css and dist/style.js")
	r.Println("  3. Run 'glaze compile style.glz --production' for a pruned, minified build")

	return nil
}
