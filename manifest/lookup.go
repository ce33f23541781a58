// Package manifest finds the package.json governing a source file.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/hannajonsd/jsparse/mediatype"
	"github.com/hannajonsd/jsparse/parser"
)

const FileName = "package.json"

type PackageJSON struct {
	Name                 string            `json:"name"`
	Version              string            `json:"version"`
	Type                 string            `json:"type"`
	Dependencies         map[string]string `json:"dependencies"`
	DevDependencies      map[string]string `json:"devDependencies"`
	PeerDependencies     map[string]string `json:"peerDependencies"`
	OptionalDependencies map[string]string `json:"optionalDependencies"`
}

// Manifest is a parsed package.json and where it was found.
type Manifest struct {
	Path    string
	Package PackageJSON
}

// IsModule reports whether .js files under the manifest are ES modules.
func (m *Manifest) IsModule() bool {
	return m != nil && m.Package.Type == "module"
}

// IsCommonJS reports whether the manifest explicitly declares CommonJS.
func (m *Manifest) IsCommonJS() bool {
	return m != nil && m.Package.Type == "commonjs"
}

// Version returns the declared version range of a dependency, searching
// dependencies, devDependencies, peerDependencies and optionalDependencies
// in that order.
func (m *Manifest) Version(pkg string) string {
	if m == nil {
		return ""
	}
	for _, deps := range []map[string]string{
		m.Package.Dependencies,
		m.Package.DevDependencies,
		m.Package.PeerDependencies,
		m.Package.OptionalDependencies,
	} {
		if v, ok := deps[pkg]; ok {
			return v
		}
	}
	return ""
}

// Lookup resolves the nearest package.json for files. Results are cached
// per directory; a Lookup is safe for concurrent use.
type Lookup struct {
	mu    sync.Mutex
	cache map[string]*Manifest
}

func NewLookup() *Lookup {
	return &Lookup{cache: make(map[string]*Manifest)}
}

// Nearest returns the manifest in the file's directory or the closest
// ancestor. It returns nil without error when there is none.
func (l *Lookup) Nearest(path string) (*Manifest, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	return l.nearestIn(filepath.Dir(abs))
}

func (l *Lookup) nearestIn(dir string) (*Manifest, error) {
	l.mu.Lock()
	m, ok := l.cache[dir]
	l.mu.Unlock()
	if ok {
		return m, nil
	}

	m, err := load(filepath.Join(dir, FileName))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if parent := filepath.Dir(dir); parent != dir {
			if m, err = l.nearestIn(parent); err != nil {
				return nil, err
			}
		}
	case err != nil:
		return nil, err
	}

	l.mu.Lock()
	l.cache[dir] = m
	l.mu.Unlock()
	return m, nil
}

func load(path string) (*Manifest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pkg PackageJSON
	if err := json.Unmarshal(content, &pkg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &Manifest{Path: path, Package: pkg}, nil
}

// ModeFor picks the parse mode for a file. TypeScript is always module
// code, since import and export are allowed even in CommonJS output
// (import x = require() in a .cts file). For JavaScript explicit extensions
// win; otherwise the nearest package.json "type" decides, and without one
// the parser detects the mode from the source.
func (l *Lookup) ModeFor(path string, mt mediatype.MediaType) (parser.Mode, error) {
	switch {
	case mt.IsTypeScript(), mt == mediatype.Mjs:
		return parser.ModeModule, nil
	case mt == mediatype.Cjs:
		return parser.ModeScript, nil
	}

	m, err := l.Nearest(path)
	if err != nil {
		return parser.ModeProgram, err
	}
	switch {
	case m.IsModule():
		return parser.ModeModule, nil
	case m.IsCommonJS():
		return parser.ModeScript, nil
	default:
		return parser.ModeProgram, nil
	}
}
