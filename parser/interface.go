package parser

import (
	"fmt"
	"strings"

	"github.com/hannajonsd/jsparse/ast"
	"github.com/hannajonsd/jsparse/comments"
	"github.com/hannajonsd/jsparse/mediatype"
	"github.com/hannajonsd/jsparse/sourcetext"
)

// ParseParams describes one source to parse.
type ParseParams struct {
	Specifier     string
	TextInfo      *sourcetext.Info
	MediaType     mediatype.MediaType
	CaptureTokens bool
	ScopeAnalysis bool
	// Syntax overrides GetSyntax(MediaType) when set.
	Syntax Syntax
}

// Mode selects how the top level is parsed.
type Mode int

const (
	// ModeProgram parses a module when the source has import or export
	// statements and a script otherwise.
	ModeProgram Mode = iota
	ModeModule
	ModeScript
)

func (m Mode) String() string {
	switch m {
	case ModeModule:
		return "module"
	case ModeScript:
		return "script"
	default:
		return "program"
	}
}

// ParseMode parses the textual form used by the CLI and config files.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "program", "auto":
		return ModeProgram, nil
	case "module":
		return ModeModule, nil
	case "script":
		return ModeScript, nil
	}
	return ModeProgram, fmt.Errorf("unknown parse mode %q", s)
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ProgramPostProcess rewrites a freshly parsed program. It runs once,
// before scope analysis, and must return a program of the same kind.
type ProgramPostProcess func(ast.Program) ast.Program

type ModulePostProcess func(*ast.Module) *ast.Module

type ScriptPostProcess func(*ast.Script) *ast.Script

// rawParseResult is what a parse yields before post-processing.
type rawParseResult struct {
	comments    *comments.Builder
	program     ast.Program
	tokens      []ast.Token
	diagnostics []*Diagnostic
}
