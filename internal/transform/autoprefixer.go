package transform

import (
	"context"
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/leapstack-labs/glaze/internal/optimize"
)

// DefaultBrowsers are the targets used when no browsers option is given.
var DefaultBrowsers = []string{"chrome58", "firefox57", "safari11", "edge16"}

var engineNames = map[string]api.EngineName{
	"chrome":  api.EngineChrome,
	"edge":    api.EngineEdge,
	"firefox": api.EngineFirefox,
	"ie":      api.EngineIE,
	"ios":     api.EngineIOS,
	"opera":   api.EngineOpera,
	"safari":  api.EngineSafari,
}

// Autoprefixer adds vendor prefixes and lowers newer CSS syntax for a set of
// browser targets.
//
// Options:
//
//	browsers: ["chrome58", "safari11"]   # engine name followed by version
type Autoprefixer struct{}

// NewAutoprefixer creates the autoprefixer transform.
func NewAutoprefixer() *Autoprefixer { return &Autoprefixer{} }

// Name returns "autoprefixer".
func (*Autoprefixer) Name() string { return "autoprefixer" }

// Apply runs esbuild's CSS transform with the configured engine targets.
func (*Autoprefixer) Apply(_ context.Context, css string, args Args) (string, error) {
	browsers, err := stringList(args.Options, "browsers")
	if err != nil {
		return "", err
	}
	if len(browsers) == 0 {
		browsers = DefaultBrowsers
	}

	engines := make([]api.Engine, 0, len(browsers))
	for _, b := range browsers {
		engine, err := parseEngine(b)
		if err != nil {
			return "", err
		}
		engines = append(engines, engine)
	}

	result := api.Transform(css, api.TransformOptions{
		Loader:   api.LoaderCSS,
		Engines:  engines,
		LogLevel: api.LogLevelSilent,
	})
	if len(result.Errors) > 0 {
		return "", fmt.Errorf("esbuild errors:\n%s", optimize.FormatMessages(result.Errors))
	}
	return string(result.Code), nil
}

// parseEngine splits a target such as "chrome58" or "safari 11.1".
func parseEngine(target string) (api.Engine, error) {
	t := strings.ToLower(strings.TrimSpace(target))
	i := strings.IndexFunc(t, func(r rune) bool { return r >= '0' && r <= '9' })
	if i <= 0 {
		return api.Engine{}, fmt.Errorf("invalid browser target %q: expected a name followed by a version", target)
	}

	name := strings.TrimSpace(t[:i])
	engine, ok := engineNames[name]
	if !ok {
		return api.Engine{}, fmt.Errorf("unknown browser %q in target %q", name, target)
	}
	return api.Engine{Name: engine, Version: t[i:]}, nil
}

// stringList reads an optional list of strings from options.
func stringList(opts map[string]any, key string) ([]string, error) {
	v, ok := opts[key]
	if !ok || v == nil {
		return nil, nil
	}

	switch list := v.(type) {
	case []string:
		return list, nil
	case string:
		return []string{list}, nil
	case []any:
		out := make([]string, 0, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("option %s[%d]: expected string, got %T", key, i, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("option %s: expected a list of strings, got %T", key, v)
	}
}

// stringOption reads an optional string from options.
func stringOption(opts map[string]any, key, fallback string) (string, error) {
	v, ok := opts[key]
	if !ok || v == nil {
		return fallback, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("option %s: expected string, got %T", key, v)
	}
	return s, nil
}
