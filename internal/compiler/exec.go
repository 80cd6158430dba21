package compiler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// DefaultCommand is the compiler executable used when none is configured.
const DefaultCommand = "glazec"

// ExecCompiler runs an external compiler executable as `<command> <input>`.
// The executable must print a JSON object {"css": "...", "js": "..."} on
// stdout and exit zero.
type ExecCompiler struct {
	command string
	args    []string
	logger  *slog.Logger
}

// NewExecCompiler creates a compiler from a command line such as
// "glazec --json". Empty means DefaultCommand.
func NewExecCompiler(commandLine string, logger *slog.Logger) *ExecCompiler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		fields = []string{DefaultCommand}
	}
	return &ExecCompiler{command: fields[0], args: fields[1:], logger: logger}
}

// Command returns the executable name.
func (c *ExecCompiler) Command() string { return c.command }

type execOutput struct {
	CSS *string `json:"css"`
	JS  *string `json:"js"`
}

// Compile runs the executable on inputPath.
func (c *ExecCompiler) Compile(ctx context.Context, inputPath string) (Artifacts, error) {
	args := append(append([]string{}, c.args...), inputPath)
	cmd := exec.CommandContext(ctx, c.command, args...) //nolint:gosec // G204: compiler command is user configuration

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	c.logger.Debug("running compiler", slog.String("command", c.command), slog.Any("args", args))
	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return Artifacts{}, fmt.Errorf("compiler %q not found in PATH: %w", c.command, err)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return Artifacts{}, fmt.Errorf("compiler %q failed: %w\n%s", c.command, err, msg)
		}
		return Artifacts{}, fmt.Errorf("compiler %q failed: %w", c.command, err)
	}

	var out execOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return Artifacts{}, fmt.Errorf("compiler %q produced invalid output: %w", c.command, err)
	}
	if out.CSS == nil || out.JS == nil {
		return Artifacts{}, fmt.Errorf("compiler %q output must contain both \"css\" and \"js\"", c.command)
	}

	return Artifacts{Style: *out.CSS, Script: *out.JS}, nil
}
