package analyzer

import (
	"cmp"
	"log/slog"
	"slices"
	"strings"
)

// nodeBuiltins are the Node.js core modules importable without the
// "node:" prefix.
var nodeBuiltins = map[string]bool{
	"assert": true, "async_hooks": true, "buffer": true, "child_process": true,
	"cluster": true, "console": true, "constants": true, "crypto": true,
	"dgram": true, "diagnostics_channel": true, "dns": true, "domain": true,
	"events": true, "fs": true, "http": true, "http2": true, "https": true,
	"inspector": true, "module": true, "net": true, "os": true, "path": true,
	"perf_hooks": true, "process": true, "punycode": true, "querystring": true,
	"readline": true, "repl": true, "stream": true, "string_decoder": true,
	"timers": true, "tls": true, "trace_events": true, "tty": true, "url": true,
	"util": true, "v8": true, "vm": true, "wasi": true, "worker_threads": true,
	"zlib": true,
}

// normalizePackage maps an import's package name to the dependency it
// counts as, or "" for runtime builtins.
func normalizePackage(name string) string {
	if name == "" || strings.HasPrefix(name, "node:") || nodeBuiltins[name] {
		return ""
	}
	return name
}

// DiscoverDependencies lists the external packages imported by the parsed
// files, with the version declared in the nearest package.json and the
// calls that reach them. Results need dependency analysis enabled.
func (a *Analyzer) DiscoverDependencies(results []FileResult) []DiscoveredDependency {
	index := make(map[string]int)
	var deps []DiscoveredDependency

	for _, r := range results {
		if r.Deps == nil {
			continue
		}
		for _, imp := range r.Deps.Imports {
			name := normalizePackage(imp.PackageName)
			if name == "" {
				continue
			}

			i, ok := index[name]
			if !ok {
				m, err := a.manifests.Nearest(r.Path)
				if err != nil {
					slog.Debug("manifest lookup failed", slog.String("path", r.Path), slog.String("error", err.Error()))
				}
				version := m.Version(name)
				deps = append(deps, DiscoveredDependency{
					Name:         name,
					Version:      version,
					IsInManifest: version != "",
				})
				i = len(deps) - 1
				index[name] = i
			}

			dep := &deps[i]
			if n := len(dep.FoundInFiles); n == 0 || dep.FoundInFiles[n-1] != r.Path {
				dep.FoundInFiles = append(dep.FoundInFiles, r.Path)
				dep.Calls = appendUnique(dep.Calls, r.Deps.ReachableCalls(name)...)
			}
		}
	}

	slices.SortFunc(deps, func(x, y DiscoveredDependency) int {
		return cmp.Compare(x.Name, y.Name)
	})
	return deps
}

func appendUnique(dst []string, items ...string) []string {
	for _, item := range items {
		if !slices.Contains(dst, item) {
			dst = append(dst, item)
		}
	}
	return dst
}

// isSemverRange reports whether a declared version is a range rather than
// an exact version.
func isSemverRange(version string) bool {
	if version == "" {
		return false
	}
	for _, indicator := range []string{"^", "~", ">=", "<=", ">", "<", " - ", "||", "*", ".x"} {
		if strings.Contains(version, indicator) {
			return true
		}
	}
	return version == "latest"
}
