package optimize

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/leapstack-labs/glaze/internal/compiler"
	"github.com/leapstack-labs/glaze/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSS = `/*! keep me */
.btn {
  color: red;
}

.unused {
  color: blue;
}
`

const sampleJS = `function greet(name) {
  const message = "hello " + name;
  console.log(message);
}
greet("glaze");
`

func TestOptimize_NotProduction(t *testing.T) {
	in := compiler.Artifacts{Style: sampleCSS, Script: sampleJS}

	out, report, err := New(testutil.NewTestLogger(t)).Optimize(context.Background(), in, []string{"*.html"}, t.TempDir(), false)
	require.NoError(t, err)
	assert.Equal(t, in, out, "development builds must be left untouched")
	assert.False(t, report.Pruned)
	assert.False(t, report.Minified)
}

func TestOptimize_Production(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFiles(t, root, map[string]string{
		"index.html": `<button class="btn">Go</button>`,
	})
	in := compiler.Artifacts{Style: sampleCSS, Script: sampleJS}
	o := New(testutil.NewTestLogger(t))

	t.Run("prunes then minifies", func(t *testing.T) {
		out, report, err := o.Optimize(context.Background(), in, []string{"*.html"}, root, true)
		require.NoError(t, err)

		assert.True(t, report.Pruned)
		assert.Equal(t, 1, report.RemovedRules)
		assert.Len(t, report.PurgeFiles, 1)
		assert.True(t, report.Minified)

		assert.Contains(t, out.Style, ".btn{color:red}")
		assert.NotContains(t, out.Style, "unused")
		assert.Contains(t, out.Style, "/*! keep me */")
		assert.Less(t, len(out.Script), len(sampleJS))
		assert.NotContains(t, out.Script, "\n  ")
	})

	t.Run("without purge sources only minifies", func(t *testing.T) {
		out, report, err := o.Optimize(context.Background(), in, nil, root, true)
		require.NoError(t, err)

		assert.False(t, report.Pruned)
		assert.True(t, report.Minified)
		assert.Contains(t, out.Style, ".unused")
		assert.NotContains(t, out.Style, "\n  color")
	})

	t.Run("idempotent", func(t *testing.T) {
		once, _, err := o.Optimize(context.Background(), in, []string{"*.html"}, root, true)
		require.NoError(t, err)
		twice, _, err := o.Optimize(context.Background(), once, []string{"*.html"}, root, true)
		require.NoError(t, err)

		assert.Equal(t, once.Style, twice.Style)

		// Local names may be reassigned on every pass.
		assert.LessOrEqual(t, len(twice.Script), len(once.Script))
		assert.Equal(t, maskLocals(once.Script), maskLocals(twice.Script))
	})

	t.Run("invalid script fails", func(t *testing.T) {
		_, _, err := o.Optimize(context.Background(), compiler.Artifacts{Style: ".a{}", Script: "function ("}, nil, root, true)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "script minification failed")
	})
}

var localName = regexp.MustCompile(`\b[A-Za-z_$]\b`)

// maskLocals replaces the one-letter identifiers produced by renaming.
func maskLocals(js string) string {
	return localName.ReplaceAllString(js, "_")
}

func TestMinifyJS_RenamedLocals(t *testing.T) {
	once, err := MinifyJS(sampleJS)
	require.NoError(t, err)
	assert.Contains(t, once, "greet(")
	assert.NotContains(t, once, "message")

	twice, err := MinifyJS(once)
	require.NoError(t, err)
	assert.Len(t, twice, len(once))
	assert.Equal(t, maskLocals(once), maskLocals(twice))
}

func TestFormatMessages(t *testing.T) {
	got := FormatMessages([]api.Message{
		{Text: "Unexpected \"(\"", Location: &api.Location{Line: 1, Column: 9}},
		{Text: "no location"},
	})
	assert.Equal(t, "1:9: Unexpected \"(\"\nno location\n", got)
}

func TestMinifyCSS(t *testing.T) {
	got, err := MinifyCSS(".a {\n  margin: 0px;\n}\n")
	require.NoError(t, err)
	assert.Equal(t, ".a{margin:0}", strings.TrimSpace(got))
}

func TestMinifyJS(t *testing.T) {
	got, err := MinifyJS("let answer = 40 + 2;\nconsole.log(answer);\n")
	require.NoError(t, err)
	assert.NotContains(t, got, "\n\n")
	assert.Contains(t, got, "console.log")
}
