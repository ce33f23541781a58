package parser

import "errors"

var (
	// ErrNoSource is returned when ParseParams carries no text.
	ErrNoSource = errors.New("no source text")

	// ErrGrammar is returned when the grammar cannot be loaded into the
	// tree-sitter runtime.
	ErrGrammar = errors.New("incompatible grammar")

	// ErrParseAborted is returned when tree-sitter produces no tree.
	ErrParseAborted = errors.New("parse aborted")
)

const (
	msgTokensNotCaptured  = "Tokens not found because they were not captured during parsing."
	msgScopeNotAnalyzed   = "Could not get syntax context because the source was not parsed with scope analysis."
	msgExpectedTerminator = "Expected ';', '}' or <eof>"
	msgUnexpectedToken    = "Unexpected token"
	msgUnexpectedEOF      = "Unexpected eof"
	msgExpressionExpected = "Expression expected"
	msgInvalidUTF8        = "Invalid UTF-8 in source text"
	msgConstInit          = "'const' declarations must be initialized"
	msgImportExportScript = "'import', and 'export' cannot be used outside of module code"
	msgAmbientImpl        = "An implementation cannot be declared in ambient contexts."
	msgReturnOutside      = "Return statement is not allowed here"
	msgSuperOutside       = "'super' can only be used in a method"
	msgJSXDisabled        = "JSX syntax is not enabled"
	msgDecoratorsDisabled = "Decorators are not enabled"
	msgImportAttributes   = "Import attributes are not enabled"
	msgAmbiguousAssertion = "This syntax is reserved in files with the .mts or .cts extension. Use an `as` expression instead."
	msgAmbiguousArrow     = "This syntax is reserved in files with the .mts or .cts extension. Add a trailing comma or explicit constraint."
)
