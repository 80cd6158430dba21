// Package optimize implements the production build stage: pruning unused
// style rules, then minifying the stylesheet and the script.
package optimize

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/glaze/internal/compiler"
	"github.com/leapstack-labs/glaze/internal/purge"
)

// Report describes what an optimization run did.
type Report struct {
	Pruned       bool
	RemovedRules int
	PurgeFiles   []string
	Minified     bool
}

// Optimizer runs the production stage.
type Optimizer struct {
	purger *purge.Purger
	logger *slog.Logger
}

// New creates an Optimizer.
func New(logger *slog.Logger) *Optimizer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Optimizer{purger: purge.New(logger), logger: logger}
}

// Optimize returns artifacts unchanged unless production is set. In
// production mode it prunes the style against purgeSources (resolved against
// root) when any are declared, then minifies both artifacts. Pruning always
// runs before minification.
func (o *Optimizer) Optimize(ctx context.Context, artifacts compiler.Artifacts, purgeSources []string, root string, production bool) (compiler.Artifacts, *Report, error) {
	report := &Report{}
	if !production {
		return artifacts, report, nil
	}

	out := artifacts

	if len(purgeSources) > 0 {
		res, err := o.purger.Purge(ctx, out.Style, root, purgeSources)
		if err != nil {
			return compiler.Artifacts{}, nil, fmt.Errorf("failed to prune stylesheet: %w", err)
		}
		out.Style = res.CSS
		report.Pruned = true
		report.RemovedRules = res.Removed
		report.PurgeFiles = res.Files
	} else {
		o.logger.Debug("no purge sources declared, skipping pruning")
	}

	style, err := MinifyCSS(out.Style)
	if err != nil {
		return compiler.Artifacts{}, nil, err
	}
	script, err := MinifyJS(out.Script)
	if err != nil {
		return compiler.Artifacts{}, nil, err
	}
	out.Style = style
	out.Script = script
	report.Minified = true

	return out, report, nil
}
