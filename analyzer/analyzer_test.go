package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/hannajonsd/jsparse/parser"
	"github.com/hannajonsd/jsparse/telemetry"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func setupTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	previous := otel.GetTracerProvider()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(previous)
	})
	return exporter
}

func workspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"package.json": `{"type": "module", "dependencies": {"lodash": "^4.17.21", "chalk": "5.3.0"}}`,
		"src/main.js": "import _ from 'lodash';\nimport chalk from 'chalk';\nimport fs from 'node:fs';\nimport { helper } from './util.js';\n" +
			"_.merge({}, {});\nconsole.log(chalk.red('x'));\nhelper();\n",
		"src/util.js":   "import _ from 'lodash';\nimport axios from 'axios';\nexport function helper() { return _.get({}, 'a'); }\naxios.get('/');\n",
		"src/broken.js": "t u",
		"src/warn.ts":   "const x;\n",
		"src/big.js":    "// " + strings.Repeat("x", 2048) + "\n",
		"README.md":     "# app\n",
	})
	return root
}

func TestFindSourceFiles(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		".gitignore":          "# build output\ngenerated/\n*.gen.ts\n!keep.gen.ts\n",
		"src/a.js":            "",
		"src/b.ts":            "",
		"src/c.gen.ts":        "",
		"src/keep.gen.ts":     "",
		"src/types.d.ts":      "",
		"src/data.json":       "{}",
		"generated/g.js":      "",
		"legacy/l.js":         "",
		"node_modules/x/i.js": "",
		".hidden/h.js":        "",
		"dist/out.js":         "",
		"README.md":           "",
	})
	extra := filepath.Join(t.TempDir(), "extra.mjs")
	require.NoError(t, os.WriteFile(extra, nil, 0o644))

	a := New(Options{Exclude: []string{"legacy/"}})
	files, err := a.FindSourceFiles(root, extra)
	require.NoError(t, err)

	var rel []string
	for _, f := range files[:len(files)-1] {
		r, err := filepath.Rel(root, f)
		require.NoError(t, err)
		rel = append(rel, filepath.ToSlash(r))
	}
	assert.Equal(t, []string{"src/a.js", "src/b.ts", "src/keep.gen.ts", "src/types.d.ts"}, rel)
	assert.Equal(t, extra, files[len(files)-1])

	_, err = a.FindSourceFiles(filepath.Join(root, "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRun(t *testing.T) {
	exporter := setupTestTracer(t)
	root := workspace(t)

	a := New(Options{Dependencies: true, Jobs: 2, MaxFileSize: 1024})
	report, err := a.Run(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, a.RunID(), report.RunID)

	require.Len(t, report.Files, 5)
	byName := make(map[string]FileResult)
	for _, f := range report.Files {
		byName[filepath.Base(f.Path)] = f
	}

	big := byName["big.js"]
	assert.Equal(t, telemetry.StatusSkipped, big.Status)
	assert.Contains(t, big.Error, ErrFileTooLarge.Error())

	broken := byName["broken.js"]
	assert.Equal(t, telemetry.StatusFatal, broken.Status)
	require.Len(t, broken.Diagnostics, 1)
	assert.Equal(t, parser.Fatal, broken.Diagnostics[0].Severity)
	assert.Equal(t, uint32(1), broken.Diagnostics[0].Line)
	assert.Equal(t, uint32(3), broken.Diagnostics[0].Column)
	assert.Nil(t, broken.Parsed())

	main := byName["main.js"]
	assert.Equal(t, telemetry.StatusOK, main.Status)
	assert.Equal(t, parser.ModeModule, main.Mode)
	assert.True(t, main.Module)
	assert.Equal(t, 7, main.Statements)
	require.NotNil(t, main.Deps)
	require.NotNil(t, main.Parsed())

	warn := byName["warn.ts"]
	assert.Equal(t, telemetry.StatusRecovered, warn.Status)
	assert.NotEmpty(t, warn.Diagnostics)

	assert.Equal(t, telemetry.StatusOK, byName["util.js"].Status)

	require.Len(t, report.Dependencies, 3)
	axios, chalk, lodash := report.Dependencies[0], report.Dependencies[1], report.Dependencies[2]

	assert.Equal(t, "axios", axios.Name)
	assert.False(t, axios.IsInManifest)
	assert.Equal(t, []string{"axios.get"}, axios.Calls)

	assert.Equal(t, "chalk", chalk.Name)
	assert.Equal(t, "5.3.0", chalk.Version)
	assert.Equal(t, []string{"chalk.red"}, chalk.Calls)

	assert.Equal(t, "lodash", lodash.Name)
	assert.Equal(t, "^4.17.21", lodash.Version)
	assert.True(t, lodash.IsInManifest)
	assert.Equal(t, []string{main.Path, byName["util.js"].Path}, lodash.FoundInFiles)
	assert.Equal(t, []string{"_.merge", "_.get"}, lodash.Calls)

	s := report.Summary
	assert.Equal(t, 5, s.Files)
	assert.Equal(t, 3, s.Parsed)
	assert.Equal(t, 1, s.Recovered)
	assert.Equal(t, 1, s.Fatal)
	assert.Equal(t, 1, s.Skipped)
	assert.Equal(t, 0, s.Errors)
	assert.Equal(t, len(broken.Diagnostics)+len(warn.Diagnostics), s.Diagnostics)
	assert.Equal(t, 3, s.Dependencies)

	spans := exporter.GetSpans()
	require.Len(t, spans, 5)
	failed := 0
	for _, span := range spans {
		assert.Equal(t, "analyzer.parseFile", span.Name)
		assert.Contains(t, span.Attributes, attribute.String("run.id", a.RunID()))
		if span.Status.Code == codes.Error {
			failed++
		}
	}
	// the fatal parse and the oversized file
	assert.Equal(t, 2, failed)
}

func TestAnalyzeFileForcedMode(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.js": "import x from 'x';\nx();\n"})

	a := New(Options{Mode: parser.ModeScript})
	result := a.AnalyzeFile(context.Background(), filepath.Join(root, "a.js"))
	assert.Equal(t, parser.ModeScript, result.Mode)
	assert.False(t, result.Module)
	assert.Equal(t, telemetry.StatusRecovered, result.Status)
	assert.Nil(t, result.Deps)
}

func TestAnalyzeFileCommonJSPackage(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"package.json": `{"type": "commonjs"}`,
		"a.ts":         "import { readFile } from 'fs';\nexport const read = readFile;\n",
		"c.cts":        "import fs = require('fs');\nexport const read = fs.readFile;\n",
		"d.js":         "const fs = require('fs');\nmodule.exports = fs.readFile;\n",
	})

	a := New(Options{})
	for _, name := range []string{"a.ts", "c.cts"} {
		result := a.AnalyzeFile(context.Background(), filepath.Join(root, name))
		assert.Equal(t, parser.ModeModule, result.Mode, name)
		assert.True(t, result.Module, name)
		assert.Equal(t, telemetry.StatusOK, result.Status, name)
		assert.Empty(t, result.Diagnostics, name)
	}

	result := a.AnalyzeFile(context.Background(), filepath.Join(root, "d.js"))
	assert.Equal(t, parser.ModeScript, result.Mode)
	assert.False(t, result.Module)
	assert.Equal(t, telemetry.StatusOK, result.Status)
}

func TestAnalyzeFileUnsupported(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"data.json": "{}"})

	result := New(Options{}).AnalyzeFile(context.Background(), filepath.Join(root, "data.json"))
	assert.Equal(t, telemetry.StatusSkipped, result.Status)
	assert.Contains(t, result.Error, ErrUnsupportedMediaType.Error())
}

func TestAnalyzeFileMissing(t *testing.T) {
	result := New(Options{}).AnalyzeFile(context.Background(), filepath.Join(t.TempDir(), "gone.ts"))
	assert.Equal(t, telemetry.StatusError, result.Status)
	assert.NotEmpty(t, result.Error)
}

func TestAnalyzeFilesCanceled(t *testing.T) {
	root := workspace(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Options{}).AnalyzeFiles(ctx, []string{filepath.Join(root, "src", "main.js")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSyntaxEntries(t *testing.T) {
	a := New(Options{})
	entries := a.SyntaxEntries([]string{"a.tsx", "b.jsx", "c.d.mts"})
	require.Len(t, entries, 3)

	ts, ok := entries[0].Syntax.(parser.TsSyntax)
	require.True(t, ok)
	assert.True(t, ts.TSX)
	assert.Equal(t, "typescript", entries[0].Flavor)

	es, ok := entries[1].Syntax.(parser.EsSyntax)
	require.True(t, ok)
	assert.True(t, es.JSX)

	dts, ok := entries[2].Syntax.(parser.TsSyntax)
	require.True(t, ok)
	assert.True(t, dts.Dts)
}

func TestNormalizePackage(t *testing.T) {
	assert.Equal(t, "lodash", normalizePackage("lodash"))
	assert.Equal(t, "@scope/pkg", normalizePackage("@scope/pkg"))
	assert.Empty(t, normalizePackage("fs"))
	assert.Empty(t, normalizePackage("node:fs"))
	assert.Empty(t, normalizePackage(""))
}

func TestIsSemverRange(t *testing.T) {
	for _, v := range []string{"^1.0.0", "~2.1", ">=3", "1.x", "*", "1 - 2", "1 || 2", "latest"} {
		assert.True(t, isSemverRange(v), v)
	}
	for _, v := range []string{"", "1.2.3", "5.3.0"} {
		assert.False(t, isSemverRange(v), v)
	}
}
