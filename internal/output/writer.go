// Package output writes build artifacts to disk.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/glaze/internal/compiler"
)

// DefaultScriptExt is used when a Writer has no script extension set.
const DefaultScriptExt = "js"

// Written lists the files produced by one Write call.
type Written struct {
	StylePath  string
	ScriptPath string
}

// Writer emits the stylesheet and script of one input.
type Writer struct {
	// ScriptExt is the script file extension, without dot.
	ScriptExt string
}

// NewWriter creates a Writer using scriptExt (DefaultScriptExt when empty).
func NewWriter(scriptExt string) *Writer {
	if scriptExt == "" {
		scriptExt = DefaultScriptExt
	}
	return &Writer{ScriptExt: scriptExt}
}

// Stem returns the part of a file name before its first dot, so "app.min.glz"
// becomes "app". Names starting with a dot keep everything before the last
// extension.
func Stem(name string) string {
	base := filepath.Base(name)
	if i := strings.Index(base, "."); i > 0 {
		return base[:i]
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// FileNames returns the style and script file names derived from inputName.
func (w *Writer) FileNames(inputName string) (style, script string) {
	stem := Stem(inputName)
	return stem + ".css", stem + "." + w.ext()
}

// Write creates dir and its parents if needed and writes both artifacts,
// replacing existing files. Each file is replaced atomically; the pair is not.
func (w *Writer) Write(dir, inputName string, artifacts compiler.Artifacts) (*Written, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	styleName, scriptName := w.FileNames(inputName)
	written := &Written{
		StylePath:  filepath.Join(dir, styleName),
		ScriptPath: filepath.Join(dir, scriptName),
	}

	if err := writeFile(written.StylePath, artifacts.Style); err != nil {
		return nil, err
	}
	if err := writeFile(written.ScriptPath, artifacts.Script); err != nil {
		return nil, err
	}
	return written, nil
}

func (w *Writer) ext() string {
	if w.ScriptExt == "" {
		return DefaultScriptExt
	}
	return strings.TrimPrefix(w.ScriptExt, ".")
}

// writeFile writes content to a temporary sibling and renames it over path.
func writeFile(path, content string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil { //nolint:gosec // G302: build outputs are meant to be readable
		cleanup()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
