package parser

import (
	"slices"

	"github.com/hannajonsd/jsparse/ast"
	"github.com/hannajonsd/jsparse/comments"
	"github.com/hannajonsd/jsparse/mediatype"
	"github.com/hannajonsd/jsparse/scope"
	"github.com/hannajonsd/jsparse/sourcetext"
)

// ParsedSource is the result of a successful parse. It is immutable and
// may be read from many goroutines at once; the program it exposes must
// not be modified.
type ParsedSource struct {
	specifier   string
	mediaType   mediatype.MediaType
	textInfo    *sourcetext.Info
	syntax      Syntax
	comments    *comments.Comments
	program     ast.Program
	tokens      []ast.Token
	hasTokens   bool
	contexts    *ast.SyntaxContexts
	diagnostics []*Diagnostic
}

func (ps *ParsedSource) Specifier() string {
	return ps.specifier
}

func (ps *ParsedSource) MediaType() mediatype.MediaType {
	return ps.mediaType
}

func (ps *ParsedSource) TextInfo() *sourcetext.Info {
	return ps.textInfo
}

func (ps *ParsedSource) Text() string {
	return ps.textInfo.Text()
}

// Syntax returns the grammar configuration the source was parsed with.
func (ps *ParsedSource) Syntax() Syntax {
	return ps.syntax
}

func (ps *ParsedSource) Comments() *comments.Comments {
	return ps.comments
}

func (ps *ParsedSource) Program() ast.Program {
	return ps.program
}

func (ps *ParsedSource) IsModule() bool {
	return ps.program.IsModule()
}

// Module returns the module. It panics if the source was parsed as a script.
func (ps *ParsedSource) Module() *ast.Module {
	if ps.program.Module == nil {
		panic("Could not get module since the source was parsed as a script.")
	}
	return ps.program.Module
}

// Script returns the script. It panics if the source was parsed as a module.
func (ps *ParsedSource) Script() *ast.Script {
	if ps.program.Script == nil {
		panic("Could not get script since the source was parsed as a module.")
	}
	return ps.program.Script
}

// Tokens returns the captured tokens. It panics if the source was parsed
// without token capture.
func (ps *ParsedSource) Tokens() []ast.Token {
	if !ps.hasTokens {
		panic(msgTokensNotCaptured)
	}
	return ps.tokens
}

func (ps *ParsedSource) HasTokens() bool {
	return ps.hasTokens
}

// Diagnostics returns the recoverable syntax errors ordered by position.
func (ps *ParsedSource) Diagnostics() []*Diagnostic {
	return slices.Clone(ps.diagnostics)
}

// LeadingComments returns the comments before the first token.
func (ps *ParsedSource) LeadingComments() []comments.Comment {
	body := ps.program.Body()
	if len(body) == 0 {
		return ps.comments.Leading(0)
	}
	return ps.comments.Leading(body[0].Span.Lo)
}

func (ps *ParsedSource) HasScopeAnalysis() bool {
	return ps.contexts != nil
}

// TopLevelContext returns the context of top-level bindings. It panics if
// the source was parsed without scope analysis.
func (ps *ParsedSource) TopLevelContext() ast.SyntaxContext {
	if ps.contexts == nil {
		panic(msgScopeNotAnalyzed)
	}
	return ps.contexts.TopLevel
}

// UnresolvedContext returns the context of identifiers with no declaration.
// It panics if the source was parsed without scope analysis.
func (ps *ParsedSource) UnresolvedContext() ast.SyntaxContext {
	if ps.contexts == nil {
		panic(msgScopeNotAnalyzed)
	}
	return ps.contexts.Unresolved
}

// IdOf returns the resolved identity of an identifier node taken from this
// source's program. It panics if the source was parsed without scope
// analysis.
func (ps *ParsedSource) IdOf(n *ast.Node) ast.Id {
	if ps.contexts == nil {
		panic(msgScopeNotAnalyzed)
	}
	return n.ToId()
}

// WithScopeAnalysis returns a ParsedSource with resolved identifiers. The
// receiver is left untouched; the analysis runs on a copy of its program.
func (ps *ParsedSource) WithScopeAnalysis() *ParsedSource {
	if ps.contexts != nil {
		return ps
	}

	program := ps.program.Clone()
	contexts := scope.Analyze(program)

	out := *ps
	out.program = program
	out.contexts = &contexts
	return &out
}
