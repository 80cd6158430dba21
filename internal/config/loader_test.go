package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/glaze/internal/testutil"
	"github.com/leapstack-labs/glaze/internal/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestResolver returns a resolver whose search stops at home.
func newTestResolver(t *testing.T, home string) *Resolver {
	t.Helper()
	r := NewResolver(testutil.NewTestLogger(t))
	r.HomeDir = home
	return r
}

func TestResolve_NoConfigFile(t *testing.T) {
	home := t.TempDir()
	testutil.WriteFiles(t, home, map[string]string{"site/src/style.glz": ""})
	input := filepath.Join(home, "site", "src", "style.glz")

	cfg, err := newTestResolver(t, home).Resolve(input)
	require.NoError(t, err)

	assert.Empty(t, cfg.File)
	assert.Equal(t, filepath.Join(home, "site", "src"), cfg.Root)
	assert.Equal(t, DefaultOutDir, cfg.OutDir)
	assert.Equal(t, DefaultScriptExt, cfg.ScriptExt)
	assert.NotNil(t, cfg.PurgeSources)
	assert.Empty(t, cfg.PurgeSources)
	assert.NotNil(t, cfg.StyleTransforms)
	assert.Empty(t, cfg.StyleTransforms)
}

func TestResolve_UpwardSearch(t *testing.T) {
	tests := []struct {
		name     string
		files    map[string]string
		wantFile string // relative to home, empty for none
		wantOut  string
	}{
		{
			name: "config in input directory",
			files: map[string]string{
				"site/src/glaze.yaml": "outDir: here\n",
			},
			wantFile: "site/src/glaze.yaml",
			wantOut:  "here",
		},
		{
			name: "config in ancestor",
			files: map[string]string{
				"site/glaze.config.yml": "outDir: dist\n",
			},
			wantFile: "site/glaze.config.yml",
			wantOut:  "dist",
		},
		{
			name: "nearest config wins without merging",
			files: map[string]string{
				"site/glaze.yaml":     "outDir: outer\nscriptExt: mjs\n",
				"site/src/glaze.yaml": "outDir: inner\n",
			},
			wantFile: "site/src/glaze.yaml",
			wantOut:  "inner",
		},
		{
			name: "file name precedence within a directory",
			files: map[string]string{
				"site/glaze.yml":         "outDir: yml\n",
				"site/glaze.config.yaml": "outDir: config-yaml\n",
			},
			wantFile: "site/glaze.config.yaml",
			wantOut:  "config-yaml",
		},
		{
			name: "home directory itself is searched",
			files: map[string]string{
				"glaze.yaml": "outDir: home\n",
			},
			wantFile: "glaze.yaml",
			wantOut:  "home",
		},
		{
			name: "directory named like a config file is ignored",
			files: map[string]string{
				"site/src/glaze.yaml/keep": "",
				"site/glaze.yml":           "outDir: real\n",
			},
			wantFile: "site/glaze.yml",
			wantOut:  "real",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := t.TempDir()
			tt.files["site/src/style.glz"] = ""
			testutil.WriteFiles(t, home, tt.files)

			cfg, err := newTestResolver(t, home).Resolve(filepath.Join(home, "site", "src", "style.glz"))
			require.NoError(t, err)

			want := filepath.Join(home, filepath.FromSlash(tt.wantFile))
			assert.Equal(t, want, cfg.File)
			assert.Equal(t, filepath.Dir(want), cfg.Root)
			assert.Equal(t, tt.wantOut, cfg.OutDir)
			assert.Equal(t, DefaultScriptExt, cfg.ScriptExt)
		})
	}
}

func TestResolve_StopsAtHome(t *testing.T) {
	parent := t.TempDir()
	testutil.WriteFiles(t, parent, map[string]string{
		"glaze.yaml":               "outDir: above-home\n",
		"home/user/site/style.glz": "",
	})

	cfg, err := newTestResolver(t, filepath.Join(parent, "home", "user")).
		Resolve(filepath.Join(parent, "home", "user", "site", "style.glz"))
	require.NoError(t, err)
	assert.Empty(t, cfg.File, "config above the home directory must not be used")
	assert.Equal(t, DefaultOutDir, cfg.OutDir)
}

func TestResolve_OutsideHomeSearchesToRoot(t *testing.T) {
	parent := t.TempDir()
	testutil.WriteFiles(t, parent, map[string]string{
		"glaze.yaml":         "outDir: found\n",
		"project/style.glz":  "",
		"elsewhere/home/.rc": "",
	})

	cfg, err := newTestResolver(t, filepath.Join(parent, "elsewhere", "home")).
		Resolve(filepath.Join(parent, "project", "style.glz"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(parent, "glaze.yaml"), cfg.File)
	assert.Equal(t, "found", cfg.OutDir)
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		content string
		check   func(t *testing.T, cfg *ProjectConfig)
	}{
		{
			name:    "empty file yields defaults",
			content: "",
			check: func(t *testing.T, cfg *ProjectConfig) {
				assert.Equal(t, DefaultOutDir, cfg.OutDir)
				assert.Equal(t, DefaultScriptExt, cfg.ScriptExt)
				assert.NotNil(t, cfg.PurgeSources)
				assert.Empty(t, cfg.PurgeSources)
				assert.NotNil(t, cfg.StyleTransforms)
				assert.Empty(t, cfg.StyleTransforms)
			},
		},
		{
			name:    "null keys keep defaults",
			content: "purgeSources:\noutDir:\nscriptExt:\npostcss:\n",
			check: func(t *testing.T, cfg *ProjectConfig) {
				assert.Equal(t, DefaultOutDir, cfg.OutDir)
				assert.Equal(t, DefaultScriptExt, cfg.ScriptExt)
				assert.NotNil(t, cfg.PurgeSources)
				assert.Empty(t, cfg.PurgeSources)
				assert.NotNil(t, cfg.StyleTransforms)
				assert.Empty(t, cfg.StyleTransforms)
			},
		},
		{
			name:    "file values override default layer",
			content: "scriptExt: mjs\n",
			check: func(t *testing.T, cfg *ProjectConfig) {
				assert.Equal(t, DefaultOutDir, cfg.OutDir)
				assert.Equal(t, "mjs", cfg.ScriptExt)
			},
		},
		{
			name: "all keys",
			content: `purgeSources:
  - "*.html"
  - "src/**/*.vue"
outDir: dist
scriptExt: mjs
postcss:
  autoprefixer:
    browsers: ["safari11"]
`,
			check: func(t *testing.T, cfg *ProjectConfig) {
				assert.Equal(t, []string{"*.html", "src/**/*.vue"}, cfg.PurgeSources)
				assert.Equal(t, "dist", cfg.OutDir)
				assert.Equal(t, "mjs", cfg.ScriptExt)
				require.Len(t, cfg.StyleTransforms, 1)
				assert.Equal(t, "autoprefixer", cfg.StyleTransforms[0].Name)
				assert.Equal(t, []any{"safari11"}, cfg.StyleTransforms[0].Options["browsers"])
			},
		},
		{
			name: "postcss mapping keeps declared order",
			content: `postcss:
  zeta: {}
  alpha: true
  disabled: false
  mid:
  banner:
    text: hi
`,
			check: func(t *testing.T, cfg *ProjectConfig) {
				var names []string
				for _, d := range cfg.StyleTransforms {
					names = append(names, d.Name)
				}
				assert.Equal(t, []string{"zeta", "alpha", "mid", "banner"}, names)
				assert.Nil(t, cfg.StyleTransforms[1].Options)
				assert.Equal(t, map[string]any{"text": "hi"}, cfg.StyleTransforms[3].Options)
			},
		},
		{
			name: "postcss sequence",
			content: `postcss:
  - autoprefixer
  - name: banner
    options:
      text: "(c) me"
  - name: autoprefixer
`,
			check: func(t *testing.T, cfg *ProjectConfig) {
				assert.Equal(t, []transform.Descriptor{
					{Name: "autoprefixer"},
					{Name: "banner", Options: map[string]any{"text": "(c) me"}},
					{Name: "autoprefixer"},
				}, cfg.StyleTransforms)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "glaze.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0600))

			cfg, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, path, cfg.File)
			assert.Equal(t, dir, cfg.Root)
			tt.check(t, cfg)
		})
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{name: "unknown key", content: "outDir: dist\npurge: [a]\n", wantMsg: "purge"},
		{name: "empty outDir", content: "outDir: \"\"\n", wantMsg: "outDir: must not be empty"},
		{name: "outDir wrong type", content: "outDir: [a, b]\n", wantMsg: "outDir"},
		{name: "empty scriptExt", content: "scriptExt: \"\"\n", wantMsg: "scriptExt: must not be empty"},
		{name: "scriptExt with dot", content: "scriptExt: .js\n", wantMsg: "bare extension"},
		{name: "purgeSources not a list", content: "purgeSources: 3\n", wantMsg: "purgeSources"},
		{name: "empty purge source", content: "purgeSources: [\"*.html\", \"\"]\n", wantMsg: "purgeSources[1]: must not be empty"},
		{name: "postcss scalar", content: "postcss: autoprefixer\n", wantMsg: "postcss: expected a mapping or a sequence"},
		{name: "postcss bad plugin options", content: "postcss:\n  autoprefixer: 3\n", wantMsg: "postcss.autoprefixer"},
		{name: "postcss descriptor without name", content: "postcss:\n  - options: {}\n", wantMsg: "postcss[0]: descriptor requires a string \"name\""},
		{name: "postcss descriptor unknown key", content: "postcss:\n  - name: banner\n    opts: {}\n", wantMsg: "unknown descriptor key \"opts\""},
		{name: "malformed yaml", content: "outDir: [unclosed\n", wantMsg: "invalid config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "glaze.yml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0600))

			_, err := Load(path)
			require.Error(t, err)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, path, ve.File)
			assert.NotEmpty(t, ve.Problems)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoad_CollectsEveryProblem(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glaze.yaml")
	require.NoError(t, os.WriteFile(path, []byte("outDir: \"\"\nscriptExt: \"\"\n"), 0600))

	_, err := Load(path)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Problems, 2)
	assert.True(t, strings.HasPrefix(err.Error(), "invalid config file "+path))
}

func TestOrderedKeys(t *testing.T) {
	m := map[string]any{"b": 1, "a": 2, "c": 3}
	assert.Equal(t, []string{"c", "a", "b"}, orderedKeys(m, []string{"c", "a", "b"}))
	assert.Equal(t, []string{"c", "a", "b"}, orderedKeys(m, []string{"c"}))
	assert.Equal(t, []string{"x", "a", "b"}, orderedKeys(map[string]any{"a": 1, "b": 1}, []string{"x"}))
}
