package reachability

import "github.com/hannajonsd/jsparse/ast"

// ImportKind tells how a module specifier entered the file.
type ImportKind string

const (
	KindImport   ImportKind = "import"
	KindType     ImportKind = "type"
	KindReExport ImportKind = "reexport"
	KindDynamic  ImportKind = "dynamic"
	KindRequire  ImportKind = "require"
)

// Binding is a local name introduced by an import. Imported is the
// exported name it refers to: "default", "*" or a named export.
type Binding struct {
	Local    ast.Id `json:"local" msgpack:"local"`
	Imported string `json:"imported" msgpack:"imported"`
}

type PackageImport struct {
	Specifier   string     `json:"specifier" msgpack:"specifier"`
	PackageName string     `json:"package,omitempty" msgpack:"package,omitempty"` // "lodash", "@scope/pkg"; empty for relative paths
	Kind        ImportKind `json:"kind" msgpack:"kind"`
	Bindings    []Binding  `json:"bindings,omitempty" msgpack:"bindings,omitempty"`
	Span        ast.Span   `json:"span" msgpack:"span"`
}

// Call is a call or construction whose callee is an imported binding or a
// member of one.
type Call struct {
	Callee    string   `json:"callee" msgpack:"callee"` // "parse", "_.merge", "fs.promises.readFile"
	Specifier string   `json:"specifier" msgpack:"specifier"`
	Imported  string   `json:"imported" msgpack:"imported"`
	Span      ast.Span `json:"span" msgpack:"span"`
}

type AnalysisResult struct {
	Specifier string          `json:"specifier" msgpack:"specifier"`
	Imports   []PackageImport `json:"imports" msgpack:"imports"`
	Calls     []Call          `json:"calls" msgpack:"calls"`
}
