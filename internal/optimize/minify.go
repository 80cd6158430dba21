package optimize

import (
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// MinifyCSS compacts a stylesheet. Legal comments ("/*!") are kept inline.
func MinifyCSS(css string) (string, error) {
	result := api.Transform(css, api.TransformOptions{
		Loader:           api.LoaderCSS,
		MinifyWhitespace: true,
		MinifySyntax:     true,
		LegalComments:    api.LegalCommentsInline,
		LogLevel:         api.LogLevelSilent,
	})
	if len(result.Errors) > 0 {
		return "", fmt.Errorf("css minification failed:\n%s", FormatMessages(result.Errors))
	}
	return string(result.Code), nil
}

// MinifyJS compacts a script, renaming local identifiers.
func MinifyJS(js string) (string, error) {
	result := api.Transform(js, api.TransformOptions{
		Loader:            api.LoaderJS,
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
		LegalComments:     api.LegalCommentsInline,
		LogLevel:          api.LogLevelSilent,
	})
	if len(result.Errors) > 0 {
		return "", fmt.Errorf("script minification failed:\n%s", FormatMessages(result.Errors))
	}
	return string(result.Code), nil
}

// FormatMessages renders esbuild diagnostics one per line, prefixed with
// line:column when a location is known.
func FormatMessages(msgs []api.Message) string {
	var b strings.Builder
	for _, m := range msgs {
		if m.Location != nil {
			fmt.Fprintf(&b, "%d:%d: ", m.Location.Line, m.Location.Column)
		}
		b.WriteString(m.Text)
		b.WriteByte('\n')
	}
	return b.String()
}
