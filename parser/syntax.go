package parser

import (
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/hannajonsd/jsparse/mediatype"
)

// ESVersion is the language level every source is parsed at.
const ESVersion = "es2021"

// Syntax selects the grammar and the language extensions accepted for a
// parse. It is either EsSyntax or TsSyntax.
type Syntax interface {
	isSyntax()
	Flavor() string
}

// EsSyntax configures JavaScript parsing.
type EsSyntax struct {
	AllowReturnOutsideFunction bool `json:"allow_return_outside_function" yaml:"allow_return_outside_function" toml:"allow_return_outside_function"`
	AllowSuperOutsideMethod    bool `json:"allow_super_outside_method" yaml:"allow_super_outside_method" toml:"allow_super_outside_method"`
	AutoAccessors              bool `json:"auto_accessors" yaml:"auto_accessors" toml:"auto_accessors"`
	Decorators                 bool `json:"decorators" yaml:"decorators" toml:"decorators"`
	DecoratorsBeforeExport     bool `json:"decorators_before_export" yaml:"decorators_before_export" toml:"decorators_before_export"`
	ExportDefaultFrom          bool `json:"export_default_from" yaml:"export_default_from" toml:"export_default_from"`
	FnBind                     bool `json:"fn_bind" yaml:"fn_bind" toml:"fn_bind"`
	ImportAttributes           bool `json:"import_attributes" yaml:"import_attributes" toml:"import_attributes"`
	JSX                        bool `json:"jsx" yaml:"jsx" toml:"jsx"`
	ExplicitResourceManagement bool `json:"explicit_resource_management" yaml:"explicit_resource_management" toml:"explicit_resource_management"`
}

// TsSyntax configures TypeScript parsing.
type TsSyntax struct {
	Decorators               bool `json:"decorators" yaml:"decorators" toml:"decorators"`
	DisallowAmbiguousJSXLike bool `json:"disallow_ambiguous_jsx_like" yaml:"disallow_ambiguous_jsx_like" toml:"disallow_ambiguous_jsx_like"`
	Dts                      bool `json:"dts" yaml:"dts" toml:"dts"`
	TSX                      bool `json:"tsx" yaml:"tsx" toml:"tsx"`
	NoEarlyErrors            bool `json:"no_early_errors" yaml:"no_early_errors" toml:"no_early_errors"`
}

func (EsSyntax) isSyntax() {}
func (TsSyntax) isSyntax() {}

func (EsSyntax) Flavor() string { return "es" }
func (TsSyntax) Flavor() string { return "typescript" }

// GetSyntax returns the grammar configuration for a media type.
func GetSyntax(mediaType mediatype.MediaType) Syntax {
	switch mediaType {
	case mediatype.TypeScript, mediatype.Mts, mediatype.Cts,
		mediatype.Dts, mediatype.Dmts, mediatype.Dcts, mediatype.Tsx:
		return TsSyntax{
			Decorators:               true,
			DisallowAmbiguousJSXLike: mediaType == mediatype.Mts || mediaType == mediatype.Cts,
			Dts:                      mediaType.IsDeclaration(),
			TSX:                      mediaType == mediatype.Tsx,
		}
	default:
		return EsSyntax{
			AllowReturnOutsideFunction: true,
			AllowSuperOutsideMethod:    true,
			AutoAccessors:              true,
			Decorators:                 false,
			DecoratorsBeforeExport:     false,
			ExportDefaultFrom:          true,
			FnBind:                     false,
			ImportAttributes:           true,
			JSX:                        mediaType == mediatype.Jsx,
			ExplicitResourceManagement: true,
		}
	}
}

var (
	javascriptLanguage = sync.OnceValue(func() *tree_sitter.Language {
		return tree_sitter.NewLanguage(tree_sitter_javascript.Language())
	})
	typescriptLanguage = sync.OnceValue(func() *tree_sitter.Language {
		return tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
	})
	tsxLanguage = sync.OnceValue(func() *tree_sitter.Language {
		return tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX())
	})
)

// grammarFor picks the tree-sitter grammar for a syntax.
func grammarFor(syntax Syntax) (*tree_sitter.Language, string) {
	switch s := syntax.(type) {
	case TsSyntax:
		if s.TSX {
			return tsxLanguage(), "tsx"
		}
		return typescriptLanguage(), "typescript"
	default:
		return javascriptLanguage(), "javascript"
	}
}

func jsxEnabled(syntax Syntax) bool {
	switch s := syntax.(type) {
	case EsSyntax:
		return s.JSX
	case TsSyntax:
		return s.TSX
	}
	return false
}

func decoratorsEnabled(syntax Syntax) bool {
	switch s := syntax.(type) {
	case EsSyntax:
		return s.Decorators
	case TsSyntax:
		return s.Decorators
	}
	return false
}

func earlyErrorsEnabled(syntax Syntax) bool {
	s, ok := syntax.(TsSyntax)
	return !ok || !s.NoEarlyErrors
}
