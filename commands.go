package main

import (
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hannajonsd/jsparse/analyzer"
)

var parseCmd = &cobra.Command{
	Use:   "parse [paths...]",
	Short: "Parse files and report syntax diagnostics",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := state.analyzer(analyzer.Options{})
		report, err := a.Run(cmd.Context(), roots(args)...)
		if err != nil {
			return err
		}
		p, err := state.printer()
		if err != nil {
			return err
		}
		if err := p.Report(report); err != nil {
			return err
		}
		if report.Summary.Fatal > 0 || report.Summary.Errors > 0 {
			return errFailures
		}
		return nil
	},
}

var tokensCmd = &cobra.Command{
	Use:   "tokens [paths...]",
	Short: "Print the tokens of each file",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := state.analyzer(analyzer.Options{CaptureTokens: true})
		report, err := a.Run(cmd.Context(), roots(args)...)
		if err != nil {
			return err
		}
		p, err := state.printer()
		if err != nil {
			return err
		}
		return p.Tokens(report.Files)
	},
}

var syntaxCmd = &cobra.Command{
	Use:   "syntax [paths...]",
	Short: "Show the grammar configuration each file is parsed with",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := state.analyzer(analyzer.Options{})
		paths, err := a.FindSourceFiles(roots(args)...)
		if err != nil {
			return err
		}
		p, err := state.printer()
		if err != nil {
			return err
		}
		return p.Syntax(a.SyntaxEntries(paths))
	},
}

var depsCmd = &cobra.Command{
	Use:   "deps [paths...]",
	Short: "List imported packages and the calls that reach them",
	Long: `deps lists the external packages imported by the files and the calls
that reach them. With --package only that package is reported, and the
command exits with status 1 when one of its calls is reachable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		pkg, _ := cmd.Flags().GetString("package")
		symbols, _ := cmd.Flags().GetStringSlice("symbol")

		a := state.analyzer(analyzer.Options{Dependencies: true, ScopeAnalysis: true})
		report, err := a.Run(cmd.Context(), roots(args)...)
		if err != nil {
			return err
		}

		reachable := false
		if pkg != "" {
			report.Dependencies = filterDependencies(report, pkg, symbols)
			report.Summary.Dependencies = len(report.Dependencies)
			for _, dep := range report.Dependencies {
				reachable = reachable || len(dep.Calls) > 0
			}
		}

		p, err := state.printer()
		if err != nil {
			return err
		}
		if err := p.Report(report); err != nil {
			return err
		}
		if reachable {
			return errFailures
		}
		return nil
	},
}

func init() {
	depsCmd.Flags().String("package", "", "only report this package")
	depsCmd.Flags().StringSlice("symbol", nil, "with --package, only count calls to these exported names")
	parseCmd.Flags().Bool("tokens", false, "capture tokens")
}

// filterDependencies keeps pkg and recomputes its calls restricted to
// symbols.
func filterDependencies(report *analyzer.Report, pkg string, symbols []string) []analyzer.DiscoveredDependency {
	var out []analyzer.DiscoveredDependency
	for _, dep := range report.Dependencies {
		if !strings.EqualFold(dep.Name, pkg) {
			continue
		}
		dep.Calls = nil
		for _, f := range report.Files {
			if f.Deps == nil {
				continue
			}
			for _, call := range f.Deps.ReachableCalls(dep.Name, symbols...) {
				if !slices.Contains(dep.Calls, call) {
					dep.Calls = append(dep.Calls, call)
				}
			}
		}
		out = append(out, dep)
	}
	return out
}
