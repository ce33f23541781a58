package reachability

import "strings"

func samePackage(specifier, pkg string) bool {
	return strings.EqualFold(specifier, pkg) || strings.EqualFold(PackageName(specifier), pkg)
}

// ReachableCalls returns the distinct callees that reach pkg. With symbols,
// only callees whose last segment or imported name matches one of them
// (case-insensitively) are kept.
func (r AnalysisResult) ReachableCalls(pkg string, symbols ...string) []string {
	var wanted map[string]bool
	if len(symbols) > 0 {
		wanted = make(map[string]bool, len(symbols))
		for _, sym := range symbols {
			wanted[strings.ToLower(sym)] = true
		}
	}

	var out []string
	for _, call := range r.Calls {
		if !samePackage(call.Specifier, pkg) {
			continue
		}
		if wanted != nil {
			last := call.Callee[strings.LastIndexByte(call.Callee, '.')+1:]
			if !wanted[strings.ToLower(last)] && !wanted[strings.ToLower(call.Imported)] {
				continue
			}
		}
		out = append(out, call.Callee)
	}
	return deduplicate(out)
}

// Aliases returns the local names bound to pkg.
func (r AnalysisResult) Aliases(pkg string) []string {
	var out []string
	for _, imp := range r.Imports {
		if imp.Kind == KindReExport || !samePackage(imp.Specifier, pkg) {
			continue
		}
		for _, b := range imp.Bindings {
			out = append(out, b.Local.Sym)
		}
	}
	return deduplicate(out)
}

// Packages returns the distinct package names imported by the file.
func (r AnalysisResult) Packages() []string {
	var out []string
	for _, imp := range r.Imports {
		if imp.PackageName != "" {
			out = append(out, imp.PackageName)
		}
	}
	return deduplicate(out)
}

// deduplicate removes duplicate strings while preserving order.
func deduplicate(items []string) []string {
	seen := make(map[string]bool)
	var result []string
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			result = append(result, item)
		}
	}
	return result
}
