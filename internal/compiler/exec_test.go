package compiler

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/leapstack-labs/glaze/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCompiler writes an executable shell script standing in for glazec.
func fakeCompiler(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script compilers are not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "fake-glazec")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0700)) //nolint:gosec // G306: must be executable
	return path
}

func TestNewExecCompiler(t *testing.T) {
	assert.Equal(t, DefaultCommand, NewExecCompiler("", nil).Command())
	assert.Equal(t, DefaultCommand, NewExecCompiler("   ", nil).Command())

	c := NewExecCompiler("glazec --json --strict", nil)
	assert.Equal(t, "glazec", c.Command())
	assert.Equal(t, []string{"--json", "--strict"}, c.args)
}

func TestExecCompiler_Compile(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		want    Artifacts
		wantErr string
	}{
		{
			name:   "json output",
			script: `printf '{"css": ".a{color:red}", "js": "console.log(1)"}'`,
			want:   Artifacts{Style: ".a{color:red}", Script: "console.log(1)"},
		},
		{
			name:   "empty artifacts are valid",
			script: `printf '{"css": "", "js": ""}'`,
			want:   Artifacts{},
		},
		{
			name:   "receives input path as last argument",
			script: `printf '{"css": "/* %s */", "js": ""}' "$(basename "$1")"`,
			want:   Artifacts{Style: "/* style.glz */"},
		},
		{
			name:    "non-zero exit carries stderr",
			script:  "echo 'style.glz:3: unexpected }' >&2\nexit 3",
			wantErr: "style.glz:3: unexpected }",
		},
		{
			name:    "invalid json",
			script:  "echo not json",
			wantErr: "invalid output",
		},
		{
			name:    "missing js key",
			script:  `printf '{"css": ""}'`,
			wantErr: `must contain both "css" and "js"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewExecCompiler(fakeCompiler(t, tt.script), testutil.NewTestLogger(t))
			got, err := c.Compile(context.Background(), filepath.Join("src", "style.glz"))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExecCompiler_NotFound(t *testing.T) {
	c := NewExecCompiler("glazec-does-not-exist-anywhere", nil)
	_, err := c.Compile(context.Background(), "style.glz")
	require.Error(t, err)
	assert.ErrorIs(t, err, exec.ErrNotFound)
	assert.Contains(t, err.Error(), "not found in PATH")
}

func TestFunc(t *testing.T) {
	var called string
	var c Compiler = Func(func(_ context.Context, inputPath string) (Artifacts, error) {
		called = inputPath
		return Artifacts{Style: "s", Script: "j"}, nil
	})

	got, err := c.Compile(context.Background(), "a.glz")
	require.NoError(t, err)
	assert.Equal(t, "a.glz", called)
	assert.Equal(t, Artifacts{Style: "s", Script: "j"}, got)
}
