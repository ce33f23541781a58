package reachability_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hannajonsd/jsparse/mediatype"
	"github.com/hannajonsd/jsparse/parser"
	"github.com/hannajonsd/jsparse/reachability"
	"github.com/hannajonsd/jsparse/sourcetext"
)

const esmSource = `import _ from 'lodash';
import * as fs from 'node:fs';
import { merge as m } from '@scope/pkg/sub';
import './side-effect.js';
_.merge({}, {});
m();
fs.promises.readFile('x');
new _.Thing();
function shadow(_) { _.merge(); }
`

const cjsSource = `const express = require('express');
const { join, resolve: res } = require('path');
const app = express();
app.listen(3000);
join('a', 'b');
res('c');
async function load() {
  const lazy = await import('./lazy.js');
  lazy.run();
}
import('chalk').then(() => {});
function local(require) { return require('not-a-dep'); }
`

func parse(t *testing.T, text string, mt mediatype.MediaType, mode parser.Mode) *parser.ParsedSource {
	t.Helper()
	ps, err := parser.Parse(parser.ParseParams{
		Specifier: "file:///app/main" + mt.Extension(),
		TextInfo:  sourcetext.New(text),
		MediaType: mt,
	}, mode)
	require.NoError(t, err)
	return ps
}

func callees(calls []reachability.Call) []string {
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Callee
	}
	return out
}

func TestAnalyzeStaticImports(t *testing.T) {
	ps := parse(t, esmSource, mediatype.JavaScript, parser.ModeModule)
	result := reachability.Analyze(ps)

	assert.Equal(t, "file:///app/main.js", result.Specifier)
	require.Len(t, result.Imports, 4)

	lodash := result.Imports[0]
	assert.Equal(t, "lodash", lodash.Specifier)
	assert.Equal(t, "lodash", lodash.PackageName)
	assert.Equal(t, reachability.KindImport, lodash.Kind)
	require.Len(t, lodash.Bindings, 1)
	assert.Equal(t, "_", lodash.Bindings[0].Local.Sym)
	assert.Equal(t, "default", lodash.Bindings[0].Imported)

	fs := result.Imports[1]
	assert.Equal(t, "node:fs", fs.PackageName)
	require.Len(t, fs.Bindings, 1)
	assert.Equal(t, "*", fs.Bindings[0].Imported)

	scoped := result.Imports[2]
	assert.Equal(t, "@scope/pkg", scoped.PackageName)
	require.Len(t, scoped.Bindings, 1)
	assert.Equal(t, "m", scoped.Bindings[0].Local.Sym)
	assert.Equal(t, "merge", scoped.Bindings[0].Imported)

	side := result.Imports[3]
	assert.Equal(t, "./side-effect.js", side.Specifier)
	assert.Empty(t, side.PackageName)
	assert.Empty(t, side.Bindings)

	// the shadowed `_` inside shadow() is not the import
	assert.Equal(t, []string{"_.merge", "m", "fs.promises.readFile", "_.Thing"}, callees(result.Calls))
	assert.Equal(t, "merge", result.Calls[1].Imported)
	assert.Equal(t, "node:fs", result.Calls[2].Specifier)
}

func TestAnalyzeCommonJS(t *testing.T) {
	ps := parse(t, cjsSource, mediatype.JavaScript, parser.ModeProgram)
	require.False(t, ps.IsModule())
	result := reachability.Analyze(ps)

	require.Len(t, result.Imports, 4)
	specs := make([]string, len(result.Imports))
	kinds := make([]reachability.ImportKind, len(result.Imports))
	for i, imp := range result.Imports {
		specs[i] = imp.Specifier
		kinds[i] = imp.Kind
	}
	assert.Equal(t, []string{"express", "path", "./lazy.js", "chalk"}, specs)
	assert.Equal(t, []reachability.ImportKind{
		reachability.KindRequire,
		reachability.KindRequire,
		reachability.KindDynamic,
		reachability.KindDynamic,
	}, kinds)

	path := result.Imports[1]
	require.Len(t, path.Bindings, 2)
	assert.Equal(t, "join", path.Bindings[0].Local.Sym)
	assert.Equal(t, "join", path.Bindings[0].Imported)
	assert.Equal(t, "res", path.Bindings[1].Local.Sym)
	assert.Equal(t, "resolve", path.Bindings[1].Imported)

	assert.Equal(t, []string{"express", "join", "res", "lazy.run"}, callees(result.Calls))
	assert.Equal(t, "resolve", result.Calls[2].Imported)
}

func TestAnalyzeReExportsAndTypeImports(t *testing.T) {
	source := `import type { Options } from 'pkg-types';
export { Button, helper as assist } from './button';
export * from 'lib-all';
export * as ns from 'lib-ns';
let o: Options;
`
	ps := parse(t, source, mediatype.TypeScript, parser.ModeModule)
	result := reachability.Analyze(ps)

	require.Len(t, result.Imports, 4)

	types := result.Imports[0]
	assert.Equal(t, reachability.KindType, types.Kind)
	require.Len(t, types.Bindings, 1)
	assert.Equal(t, "Options", types.Bindings[0].Imported)

	button := result.Imports[1]
	assert.Equal(t, reachability.KindReExport, button.Kind)
	require.Len(t, button.Bindings, 2)
	assert.Equal(t, "Button", button.Bindings[0].Local.Sym)
	assert.Equal(t, "assist", button.Bindings[1].Local.Sym)
	assert.Equal(t, "helper", button.Bindings[1].Imported)

	all := result.Imports[2]
	assert.Equal(t, reachability.KindReExport, all.Kind)
	require.Len(t, all.Bindings, 1)
	assert.Equal(t, "*", all.Bindings[0].Imported)

	ns := result.Imports[3]
	require.Len(t, ns.Bindings, 1)
	assert.Equal(t, "ns", ns.Bindings[0].Local.Sym)
	assert.Equal(t, "*", ns.Bindings[0].Imported)

	assert.Empty(t, result.Calls)
}

func TestAnalyzeLeavesSourceUntouched(t *testing.T) {
	ps := parse(t, esmSource, mediatype.JavaScript, parser.ModeModule)
	require.False(t, ps.HasScopeAnalysis())

	reachability.Analyze(ps)
	assert.False(t, ps.HasScopeAnalysis())
}

func TestReachableCalls(t *testing.T) {
	result := reachability.Analyze(parse(t, esmSource, mediatype.JavaScript, parser.ModeModule))

	assert.Equal(t, []string{"_.merge", "_.Thing"}, result.ReachableCalls("lodash"))
	assert.Equal(t, []string{"_.merge"}, result.ReachableCalls("lodash", "MERGE"))
	assert.Equal(t, []string{"m"}, result.ReachableCalls("@scope/pkg", "merge"))
	assert.Equal(t, []string{"fs.promises.readFile"}, result.ReachableCalls("node:fs", "readFile"))
	assert.Empty(t, result.ReachableCalls("lodash", "template"))
	assert.Empty(t, result.ReachableCalls("react"))

	assert.Equal(t, []string{"_"}, result.Aliases("lodash"))
	assert.Equal(t, []string{"lodash", "node:fs", "@scope/pkg"}, result.Packages())
}

func TestPackageName(t *testing.T) {
	cases := map[string]string{
		"lodash":                   "lodash",
		"lodash/fp":                "lodash",
		"lodash@4.17.21/fp":        "lodash",
		"@scope/pkg":               "@scope/pkg",
		"@scope/pkg/sub/path":      "@scope/pkg",
		"npm:@scope/pkg@1.2.3/x":   "@scope/pkg",
		"npm:chalk@5":              "chalk",
		"jsr:@std/path":            "@std/path",
		"node:fs":                  "node:fs",
		"node:fs/promises":         "node:fs",
		"./local.js":               "",
		"../up.js":                 "",
		"/abs.js":                  "",
		"https://deno.land/x/m.ts": "",
		"data:text/javascript,1":   "",
		"@broken":                  "",
		"":                         "",
	}
	for in, want := range cases {
		assert.Equal(t, want, reachability.PackageName(in), in)
	}
}
