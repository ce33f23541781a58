package analyzer

import (
	"time"

	"github.com/hannajonsd/jsparse/ast"
	"github.com/hannajonsd/jsparse/mediatype"
	"github.com/hannajonsd/jsparse/parser"
	"github.com/hannajonsd/jsparse/reachability"
)

// DiagnosticInfo is a rendered syntax error.
type DiagnosticInfo struct {
	Message  string          `json:"message" msgpack:"message"`
	Severity parser.Severity `json:"severity" msgpack:"severity"`
	Line     uint32          `json:"line" msgpack:"line"`
	Column   uint32          `json:"column" msgpack:"column"`
	Span     ast.Span        `json:"span" msgpack:"span"`
	LineText string          `json:"line_text" msgpack:"line_text"`
}

// FileResult is the outcome of processing one file.
type FileResult struct {
	Path        string                       `json:"path" msgpack:"path"`
	MediaType   mediatype.MediaType          `json:"media_type" msgpack:"media_type"`
	Mode        parser.Mode                  `json:"mode" msgpack:"mode"`
	Status      string                       `json:"status" msgpack:"status"`
	Module      bool                         `json:"module" msgpack:"module"`
	Statements  int                          `json:"statements" msgpack:"statements"`
	Comments    int                          `json:"comments" msgpack:"comments"`
	Tokens      []ast.Token                  `json:"tokens,omitempty" msgpack:"tokens,omitempty"`
	Diagnostics []DiagnosticInfo             `json:"diagnostics,omitempty" msgpack:"diagnostics,omitempty"`
	Deps        *reachability.AnalysisResult `json:"deps,omitempty" msgpack:"deps,omitempty"`
	Error       string                       `json:"error,omitempty" msgpack:"error,omitempty"`
	Duration    time.Duration                `json:"duration_ns" msgpack:"duration_ns"`

	parsed *parser.ParsedSource
}

// Parsed returns the parsed source, or nil when the file did not parse.
func (r *FileResult) Parsed() *parser.ParsedSource {
	return r.parsed
}

// DiscoveredDependency is an external package imported somewhere in the
// analyzed files.
type DiscoveredDependency struct {
	Name         string   `json:"name" msgpack:"name"`
	Version      string   `json:"version,omitempty" msgpack:"version,omitempty"`
	IsInManifest bool     `json:"in_manifest" msgpack:"in_manifest"`
	FoundInFiles []string `json:"files" msgpack:"files"`
	Calls        []string `json:"calls,omitempty" msgpack:"calls,omitempty"`
}

type Summary struct {
	Files        int `json:"files" msgpack:"files"`
	Parsed       int `json:"parsed" msgpack:"parsed"`
	Recovered    int `json:"recovered" msgpack:"recovered"`
	Fatal        int `json:"fatal" msgpack:"fatal"`
	Skipped      int `json:"skipped" msgpack:"skipped"`
	Errors       int `json:"errors" msgpack:"errors"`
	Diagnostics  int `json:"diagnostics" msgpack:"diagnostics"`
	Dependencies int `json:"dependencies" msgpack:"dependencies"`
}

// Report is the result of one run over a set of files.
type Report struct {
	RunID        string                 `json:"run_id" msgpack:"run_id"`
	Files        []FileResult           `json:"files" msgpack:"files"`
	Dependencies []DiscoveredDependency `json:"dependencies,omitempty" msgpack:"dependencies,omitempty"`
	Summary      Summary                `json:"summary" msgpack:"summary"`
}

// SyntaxEntry is the grammar configuration chosen for a file.
type SyntaxEntry struct {
	Path      string              `json:"path" msgpack:"path"`
	MediaType mediatype.MediaType `json:"media_type" msgpack:"media_type"`
	Flavor    string              `json:"flavor" msgpack:"flavor"`
	Syntax    parser.Syntax       `json:"syntax" msgpack:"syntax"`
}
