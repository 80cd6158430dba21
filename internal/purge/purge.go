// Package purge removes CSS rules whose selectors are not referenced by any
// declared content source.
//
// Content sources are HTML, Markdown or arbitrary text files. Every class,
// id and element name a rule's selector requires must appear in the content
// for the rule to be kept. The analysis is a heuristic: names built at
// runtime by string concatenation are not seen.
package purge

import (
	"context"
	"log/slog"
)

// Result describes one pruning run.
type Result struct {
	CSS     string
	Files   []string
	Removed int
}

// Purger prunes stylesheets against content sources.
type Purger struct {
	logger *slog.Logger
}

// New creates a Purger.
func New(logger *slog.Logger) *Purger {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Purger{logger: logger}
}

// Purge expands patterns against root, scans the matching files and removes
// unused rules from css. With no patterns css is returned unchanged.
func (p *Purger) Purge(ctx context.Context, css, root string, patterns []string) (*Result, error) {
	if len(patterns) == 0 {
		return &Result{CSS: css}, nil
	}

	files, err := ExpandSources(root, patterns)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		p.logger.Warn("purge sources matched no files", slog.Any("patterns", patterns), slog.String("root", root))
	}

	usage, err := ScanFiles(ctx, files)
	if err != nil {
		return nil, err
	}

	out, removed := Prune(css, usage)
	p.logger.Debug("pruned stylesheet",
		slog.Int("files", len(files)),
		slog.Int("names", len(usage)),
		slog.Int("removed_rules", removed))

	return &Result{CSS: out, Files: files, Removed: removed}, nil
}

// Prune removes the rules of css not used according to usage and returns the
// new text and the number of rules removed.
func Prune(css string, usage Usage) (string, int) {
	nodes, removed := pruneNodes(parseStylesheet(css), usage)
	return renderStylesheet(nodes), removed
}

func pruneNodes(nodes []node, usage Usage) ([]node, int) {
	kept := make([]node, 0, len(nodes))
	removed := 0

	for _, n := range nodes {
		switch n.kind {
		case kindRule:
			if !ruleUsed(n.prelude, usage) {
				removed++
				continue
			}
		case kindGroup:
			children, r := pruneNodes(n.children, usage)
			removed += r
			if !hasRules(children) {
				continue
			}
			n.children = children
		}
		kept = append(kept, n)
	}
	return kept, removed
}

// hasRules reports whether nodes contain anything besides comments.
func hasRules(nodes []node) bool {
	for _, n := range nodes {
		if n.kind != kindComment {
			return true
		}
	}
	return false
}

// ruleUsed reports whether any selector of the list is used.
func ruleUsed(prelude string, usage Usage) bool {
	for _, sel := range splitSelectors(prelude) {
		if selectorUsed(sel, usage) {
			return true
		}
	}
	return false
}

// selectorUsed reports whether every name the selector requires was seen.
// Selectors requiring no names, such as "*" or ":root", are always used.
func selectorUsed(sel string, usage Usage) bool {
	names := parseSelector(sel)
	if names.empty() {
		return true
	}
	for _, c := range names.classes {
		if !usage.Has(c) {
			return false
		}
	}
	for _, id := range names.ids {
		if !usage.Has(id) {
			return false
		}
	}
	for _, t := range names.types {
		if !usage.Has(t) {
			return false
		}
	}
	return true
}
