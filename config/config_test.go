package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hannajonsd/jsparse/mediatype"
	"github.com/hannajonsd/jsparse/parser"
)

func TestDecodeYAML(t *testing.T) {
	cfg, err := Decode(strings.NewReader(`
mode: module
tokens: true
format: json
jobs: 4
exclude: [dist, "*.min.js"]
syntax:
  jsx: true
  decorators: false
`), ".yaml")
	require.NoError(t, err)

	assert.Equal(t, parser.ModeModule, cfg.Mode)
	assert.True(t, cfg.Tokens)
	assert.False(t, cfg.Scope)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, 4, cfg.Jobs)
	assert.Equal(t, []string{"dist", "*.min.js"}, cfg.Exclude)
	assert.Equal(t, "auto", cfg.Color)
	assert.Equal(t, int64(DefaultMaxFileSize), cfg.MaxFileSize)
	require.NotNil(t, cfg.Syntax.JSX)
	assert.True(t, *cfg.Syntax.JSX)
	assert.Nil(t, cfg.Syntax.ImportAttributes)
}

func TestDecodeTOML(t *testing.T) {
	cfg, err := Decode(strings.NewReader(`
mode = "script"
scope = true
color = "never"
max_file_size = 1024

[syntax]
allow_return_outside_function = true
`), ".toml")
	require.NoError(t, err)

	assert.Equal(t, parser.ModeScript, cfg.Mode)
	assert.True(t, cfg.Scope)
	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, "never", cfg.Color)
	assert.Equal(t, int64(1024), cfg.MaxFileSize)
	require.NotNil(t, cfg.Syntax.AllowReturnOutsideFunction)
	assert.True(t, *cfg.Syntax.AllowReturnOutsideFunction)
}

func TestDecodeEmptyYAML(t *testing.T) {
	cfg, err := Decode(strings.NewReader(""), ".yml")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		name    string
		content string
		ext     string
		want    error
	}{
		{"unknown yaml key", "colour: always\n", ".yaml", ErrInvalid},
		{"unknown toml key", "colour = \"always\"\n", ".toml", ErrInvalid},
		{"bad mode", "mode: library\n", ".yaml", ErrInvalid},
		{"bad format", "format: xml\n", ".yaml", ErrInvalid},
		{"negative jobs", "jobs = -1\n", ".toml", ErrInvalid},
		{"zero size", "max_file_size: 0\n", ".yaml", ErrInvalid},
		{"json config", "{}", ".json", ErrUnsupportedFormat},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tc.content), tc.ext)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestFindAndLoad(t *testing.T) {
	dir := t.TempDir()
	assert.Empty(t, Find(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "jsparse.toml"), []byte("jobs = 2\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jsparse.yml"), []byte("jobs: 3\n"), 0o644))

	path := Find(dir)
	assert.Equal(t, filepath.Join(dir, "jsparse.yml"), path)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Jobs)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSyntaxFor(t *testing.T) {
	on, off := true, false
	cfg := Default()
	cfg.Syntax = SyntaxOverrides{JSX: &on, Decorators: &off, NoEarlyErrors: &on}

	es, ok := cfg.SyntaxFor(mediatype.JavaScript).(parser.EsSyntax)
	require.True(t, ok)
	assert.True(t, es.JSX)
	assert.False(t, es.Decorators)
	assert.True(t, es.ImportAttributes)

	ts, ok := cfg.SyntaxFor(mediatype.TypeScript).(parser.TsSyntax)
	require.True(t, ok)
	assert.True(t, ts.TSX)
	assert.False(t, ts.Decorators)
	assert.True(t, ts.NoEarlyErrors)

	// no overrides keeps the derived configuration
	assert.Equal(t, parser.GetSyntax(mediatype.Mts), Default().SyntaxFor(mediatype.Mts))
}
