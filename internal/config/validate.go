package config

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/glaze/internal/transform"
)

// ValidationError reports a config file that failed to parse or validate.
type ValidationError struct {
	File     string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid config file %s:\n  - %s", e.File, strings.Join(e.Problems, "\n  - "))
}

// validate checks the decoded file against the schema and builds a
// ProjectConfig from it. Keys set to null in the file keep their defaults.
func validate(raw *fileSchema, postcssOrder []string) (*ProjectConfig, []string) {
	var problems []string
	cfg := Defaults()
	if raw.PurgeSources != nil {
		cfg.PurgeSources = raw.PurgeSources
	}

	for i, src := range raw.PurgeSources {
		if strings.TrimSpace(src) == "" {
			problems = append(problems, fmt.Sprintf("purgeSources[%d]: must not be empty", i))
		}
	}

	if raw.OutDir != nil {
		if *raw.OutDir == "" {
			problems = append(problems, "outDir: must not be empty")
		}
		cfg.OutDir = *raw.OutDir
	}

	if raw.ScriptExt != nil {
		ext := *raw.ScriptExt
		switch {
		case ext == "":
			problems = append(problems, "scriptExt: must not be empty")
		case strings.ContainsAny(ext, `./\`):
			problems = append(problems, fmt.Sprintf("scriptExt: %q must be a bare extension such as \"js\"", ext))
		}
		cfg.ScriptExt = ext
	}

	descriptors, descProblems := parseTransforms(raw.PostCSS, postcssOrder)
	problems = append(problems, descProblems...)
	if descriptors != nil {
		cfg.StyleTransforms = descriptors
	}

	return cfg, problems
}

// parseTransforms accepts either a mapping of plugin name to options or a
// sequence of descriptors. A descriptor in a sequence is a plugin name or a
// mapping with "name" and optional "options".
func parseTransforms(v any, order []string) ([]transform.Descriptor, []string) {
	// A mapping whose entries are all null may reach us as nil.
	if v == nil && len(order) > 0 {
		v = map[string]any{}
	}

	switch val := v.(type) {
	case nil:
		return nil, nil

	case map[string]any:
		keys := orderedKeys(val, order)
		var (
			out      []transform.Descriptor
			problems []string
		)
		for _, name := range keys {
			opts, enabled, err := pluginOptions(val[name])
			if err != nil {
				problems = append(problems, fmt.Sprintf("postcss.%s: %v", name, err))
				continue
			}
			if enabled {
				out = append(out, transform.Descriptor{Name: name, Options: opts})
			}
		}
		return out, problems

	case []any:
		var (
			out      []transform.Descriptor
			problems []string
		)
		for i, item := range val {
			d, err := parseDescriptor(item)
			if err != nil {
				problems = append(problems, fmt.Sprintf("postcss[%d]: %v", i, err))
				continue
			}
			out = append(out, d)
		}
		return out, problems

	default:
		return nil, []string{fmt.Sprintf("postcss: expected a mapping or a sequence, got %T", v)}
	}
}

// pluginOptions interprets the value of a mapping entry. true and null enable
// the plugin without options, false disables it.
func pluginOptions(v any) (map[string]any, bool, error) {
	switch opts := v.(type) {
	case nil:
		return nil, true, nil
	case bool:
		return nil, opts, nil
	case map[string]any:
		return opts, true, nil
	default:
		return nil, false, fmt.Errorf("options must be a mapping, true, false or null, got %T", v)
	}
}

func parseDescriptor(item any) (transform.Descriptor, error) {
	switch d := item.(type) {
	case string:
		if d == "" {
			return transform.Descriptor{}, fmt.Errorf("plugin name must not be empty")
		}
		return transform.Descriptor{Name: d}, nil

	case map[string]any:
		name, ok := d["name"].(string)
		if !ok || name == "" {
			return transform.Descriptor{}, fmt.Errorf("descriptor requires a string \"name\"")
		}
		for key := range d {
			if key != "name" && key != "options" {
				return transform.Descriptor{}, fmt.Errorf("unknown descriptor key %q", key)
			}
		}
		var opts map[string]any
		if raw, present := d["options"]; present && raw != nil {
			if opts, ok = raw.(map[string]any); !ok {
				return transform.Descriptor{}, fmt.Errorf("options must be a mapping, got %T", raw)
			}
		}
		return transform.Descriptor{Name: name, Options: opts}, nil

	default:
		return transform.Descriptor{}, fmt.Errorf("expected a plugin name or a mapping, got %T", item)
	}
}

// orderedKeys returns the keys of m in declared order. Keys missing from the
// recorded order are appended sorted so the result stays deterministic.
// Declared keys with a null value may be absent from m and are kept.
func orderedKeys(m map[string]any, order []string) []string {
	keys := make([]string, 0, len(m))
	seen := make(map[string]bool, len(m))
	for _, k := range order {
		if !seen[k] {
			keys = append(keys, k)
			seen[k] = true
		}
	}

	var rest []string
	for k := range m {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

// postcssKeyOrder returns the declared key order of a top-level postcss
// mapping. Go maps lose it, so the document is walked as a yaml.Node.
func postcssKeyOrder(content []byte) ([]string, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, nil
	}

	root := doc.Content[0]
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "postcss" {
			continue
		}
		node := root.Content[i+1]
		if node.Kind != yaml.MappingNode {
			return nil, nil
		}
		keys := make([]string, 0, len(node.Content)/2)
		for j := 0; j+1 < len(node.Content); j += 2 {
			keys = append(keys, node.Content[j].Value)
		}
		return keys, nil
	}
	return nil, nil
}
