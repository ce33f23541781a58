package reachability

import "github.com/hannajonsd/jsparse/parser"

// Analyze lists the module dependencies of a parsed file and the calls
// that reach them. Scope analysis is run on a copy when the source was
// parsed without it.
func Analyze(ps *parser.ParsedSource) AnalysisResult {
	ps = ps.WithScopeAnalysis()
	program := ps.Program()

	collector := newImportCollector(ps.UnresolvedContext())
	program.Walk(collector.visit)

	return AnalysisResult{
		Specifier: ps.Specifier(),
		Imports:   collector.imports,
		Calls:     extractCalls(program, bindingTable(collector.imports)),
	}
}
