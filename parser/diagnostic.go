package parser

import (
	"fmt"

	"github.com/hannajonsd/jsparse/ast"
	"github.com/hannajonsd/jsparse/sourcetext"
)

// Severity tells whether a syntax error stopped the parse.
type Severity int

const (
	Recoverable Severity = iota
	Fatal
)

func (s Severity) String() string {
	if s == Fatal {
		return "fatal"
	}
	return "recoverable"
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Diagnostic is a syntax error in one source text. Fatal diagnostics are
// returned as the error of a parse; recoverable ones are attached to the
// ParsedSource.
type Diagnostic struct {
	Specifier string
	Range     ast.Span
	Severity  Severity
	message   string
	text      *sourcetext.Info
}

func newDiagnostic(specifier string, text *sourcetext.Info, span ast.Span, severity Severity, message string) *Diagnostic {
	return &Diagnostic{
		Specifier: specifier,
		Range:     span,
		Severity:  severity,
		message:   message,
		text:      text,
	}
}

func (d *Diagnostic) Message() string {
	return d.message
}

// DisplayPosition returns the 1-based line and column of the start of the
// error.
func (d *Diagnostic) DisplayPosition() sourcetext.LineCol {
	return d.text.LineAndColumnDisplay(d.Range.Lo)
}

// LineText returns the source line the error starts on.
func (d *Diagnostic) LineText() string {
	return d.text.LineText(d.text.LineIndex(d.Range.Lo))
}

func (d *Diagnostic) Error() string {
	pos := d.DisplayPosition()
	return fmt.Sprintf("%s at %s:%d:%d", d.message, d.Specifier, pos.Line, pos.Column)
}
