package main

import (
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hannajonsd/jsparse/analyzer"
	"github.com/hannajonsd/jsparse/config"
	"github.com/hannajonsd/jsparse/parser"
	"github.com/hannajonsd/jsparse/reachability"
)

func testCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	flags := cmd.Flags()
	flags.String("mode", "auto", "")
	flags.Bool("scope", false, "")
	flags.String("format", "text", "")
	flags.Int("jobs", 0, "")
	flags.String("color", "auto", "")
	flags.Int64("max-file-size", config.DefaultMaxFileSize, "")
	flags.StringSlice("exclude", nil, "")
	return cmd
}

func TestApplyFlags(t *testing.T) {
	a := &app{cfg: config.Default()}
	a.cfg.Format = "json"
	a.cfg.Exclude = []string{"dist/"}

	cmd := testCommand()
	require.NoError(t, cmd.Flags().Parse([]string{"--mode=script", "--jobs=3", "--exclude=gen/"}))
	require.NoError(t, a.applyFlags(cmd))

	assert.Equal(t, parser.ModeScript, a.cfg.Mode)
	assert.Equal(t, 3, a.cfg.Jobs)
	// unchanged flags keep the config file value
	assert.Equal(t, "json", a.cfg.Format)
	assert.Equal(t, []string{"dist/", "gen/"}, a.cfg.Exclude)
}

func TestApplyFlagsInvalid(t *testing.T) {
	a := &app{cfg: config.Default()}
	cmd := testCommand()
	require.NoError(t, cmd.Flags().Parse([]string{"--format=xml"}))
	assert.ErrorIs(t, a.applyFlags(cmd), config.ErrInvalid)

	cmd = testCommand()
	require.NoError(t, cmd.Flags().Parse([]string{"--mode=library"}))
	assert.Error(t, a.applyFlags(cmd))
}

func TestColored(t *testing.T) {
	a := &app{cfg: config.Default()}
	a.cfg.Color = "always"
	assert.True(t, a.colored())
	a.cfg.Color = "never"
	assert.False(t, a.colored())
}

func TestRoots(t *testing.T) {
	assert.Equal(t, []string{"."}, roots(nil))
	assert.Equal(t, []string{"src", "lib"}, roots([]string{"src", "lib"}))
}

func TestFilterDependencies(t *testing.T) {
	report := &analyzer.Report{
		Files: []analyzer.FileResult{
			{Deps: &reachability.AnalysisResult{Calls: []reachability.Call{
				{Callee: "_.merge", Specifier: "lodash", Imported: "default"},
				{Callee: "_.get", Specifier: "lodash", Imported: "default"},
			}}},
			{Deps: &reachability.AnalysisResult{Calls: []reachability.Call{
				{Callee: "_.merge", Specifier: "lodash/fp", Imported: "default"},
				{Callee: "axios.get", Specifier: "axios", Imported: "default"},
			}}},
			{},
		},
		Dependencies: []analyzer.DiscoveredDependency{
			{Name: "axios", Calls: []string{"axios.get"}},
			{Name: "lodash", Calls: []string{"_.merge", "_.get"}},
		},
	}

	deps := filterDependencies(report, "lodash", []string{"merge"})
	require.Len(t, deps, 1)
	assert.Equal(t, "lodash", deps[0].Name)
	assert.Equal(t, []string{"_.merge"}, deps[0].Calls)

	assert.Empty(t, filterDependencies(report, "react", nil))
}

func TestAnalyzeExample(t *testing.T) {
	a := &app{cfg: config.Default()}
	report, err := a.analyzer(analyzer.Options{Dependencies: true}).Run(context.Background(), "testdata")
	require.NoError(t, err)

	require.Len(t, report.Files, 1)
	assert.True(t, report.Files[0].Module)
	assert.Empty(t, report.Files[0].Diagnostics)

	require.Len(t, report.Dependencies, 2)
	langParser, express := report.Dependencies[0], report.Dependencies[1]
	assert.Equal(t, "accept-language-parser", langParser.Name)
	assert.False(t, langParser.IsInManifest)
	assert.Equal(t, []string{"parse"}, langParser.Calls)
	assert.Equal(t, "express", express.Name)
	assert.Equal(t, "4.19.2", express.Version)
	assert.Equal(t, []string{"express"}, express.Calls)
}
