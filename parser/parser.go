package parser

import (
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/hannajonsd/jsparse/ast"
	"github.com/hannajonsd/jsparse/scope"
)

// ParseProgram parses the source as a module or a script depending on
// whether it contains import or export statements.
func ParseProgram(params ParseParams) (*ParsedSource, error) {
	return parseWithPostProcess(params, ModeProgram, nil)
}

func ParseProgramWithPostProcess(params ParseParams, postProcess ProgramPostProcess) (*ParsedSource, error) {
	return parseWithPostProcess(params, ModeProgram, func(p ast.Program) ast.Program {
		out := postProcess(p)
		if out.IsModule() == out.IsScript() {
			panic("post-process must return a program holding exactly one of module or script")
		}
		return out
	})
}

// ParseModule parses the source as an ES module.
func ParseModule(params ParseParams) (*ParsedSource, error) {
	return parseWithPostProcess(params, ModeModule, nil)
}

func ParseModuleWithPostProcess(params ParseParams, postProcess ModulePostProcess) (*ParsedSource, error) {
	return parseWithPostProcess(params, ModeModule, func(p ast.Program) ast.Program {
		if p.Module == nil {
			panic("expected a module program")
		}
		m := postProcess(p.Module)
		if m == nil {
			panic("module post-process returned nil")
		}
		return ast.Program{Module: m}
	})
}

// ParseScript parses the source as a classic script.
func ParseScript(params ParseParams) (*ParsedSource, error) {
	return parseWithPostProcess(params, ModeScript, nil)
}

func ParseScriptWithPostProcess(params ParseParams, postProcess ScriptPostProcess) (*ParsedSource, error) {
	return parseWithPostProcess(params, ModeScript, func(p ast.Program) ast.Program {
		if p.Script == nil {
			panic("expected a script program")
		}
		s := postProcess(p.Script)
		if s == nil {
			panic("script post-process returned nil")
		}
		return ast.Program{Script: s}
	})
}

// Parse dispatches on mode.
func Parse(params ParseParams, mode Mode) (*ParsedSource, error) {
	return parseWithPostProcess(params, mode, nil)
}

func parseWithPostProcess(params ParseParams, mode Mode, postProcess ProgramPostProcess) (*ParsedSource, error) {
	syntax := params.Syntax
	if syntax == nil {
		syntax = GetSyntax(params.MediaType)
	}

	start := time.Now()
	raw, err := parse(params, syntax, mode)
	if err != nil {
		slog.Debug("parse failed",
			slog.String("specifier", params.Specifier),
			slog.String("media_type", params.MediaType.String()),
			slog.String("error", err.Error()))
		return nil, err
	}

	program := raw.program
	if postProcess != nil {
		program = postProcess(program)
	}

	var contexts *ast.SyntaxContexts
	if params.ScopeAnalysis {
		c := scope.Analyze(program)
		contexts = &c
	}

	slog.Debug("parsed source",
		slog.String("specifier", params.Specifier),
		slog.String("media_type", params.MediaType.String()),
		slog.String("es_version", ESVersion),
		slog.Bool("module", program.IsModule()),
		slog.Int("diagnostics", len(raw.diagnostics)),
		slog.Duration("duration", time.Since(start)))

	return &ParsedSource{
		specifier:   params.Specifier,
		mediaType:   params.MediaType,
		textInfo:    params.TextInfo,
		syntax:      syntax,
		comments:    raw.comments.Freeze(),
		program:     program,
		tokens:      raw.tokens,
		hasTokens:   params.CaptureTokens,
		contexts:    contexts,
		diagnostics: raw.diagnostics,
	}, nil
}

func parse(params ParseParams, syntax Syntax, mode Mode) (*rawParseResult, error) {
	info := params.TextInfo
	if info == nil {
		return nil, ErrNoSource
	}

	text := info.Text()
	if !utf8.ValidString(text) {
		pos := invalidUTF8Offset(text)
		return nil, newDiagnostic(params.Specifier, info, ast.Span{Lo: pos, Hi: pos + 1}, Fatal, msgInvalidUTF8)
	}

	language, grammar := grammarFor(syntax)
	p := tree_sitter.NewParser()
	defer p.Close()
	if err := p.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrGrammar, grammar, err)
	}

	tree := p.Parse([]byte(text), nil)
	if tree == nil {
		return nil, fmt.Errorf("%w: %s", ErrParseAborted, params.Specifier)
	}
	defer tree.Close()

	snap := newSnapshot(info, params.CaptureTokens)
	root := snap.convertTree(tree)

	rec := &recovery{specifier: params.Specifier, text: info}
	rec.check(root)
	if rec.fatal != nil {
		return nil, rec.fatal
	}

	isModule := mode == ModeModule || mode == ModeProgram && hasModuleSyntax(root.Children)

	diagnostics := rec.recoverable
	v := &validator{
		syntax:    syntax,
		mediaType: params.MediaType,
		module:    isModule,
		report: func(span ast.Span, message string) {
			diagnostics = append(diagnostics, newDiagnostic(params.Specifier, info, span, Recoverable, message))
		},
	}
	v.run(root.Children)
	sortDiagnostics(diagnostics)

	var program ast.Program
	if isModule {
		program.Module = &ast.Module{Span: root.Span, Body: root.Children, Shebang: snap.shebang}
	} else {
		program.Script = &ast.Script{Span: root.Span, Body: root.Children, Shebang: snap.shebang}
	}

	return &rawParseResult{
		comments:    snap.comments,
		program:     program,
		tokens:      snap.tokens,
		diagnostics: diagnostics,
	}, nil
}

func hasModuleSyntax(body []*ast.Node) bool {
	for _, stmt := range body {
		if stmt.Kind == "import_statement" || stmt.Kind == "export_statement" {
			return true
		}
	}
	return false
}

func invalidUTF8Offset(text string) uint32 {
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r == utf8.RuneError && size <= 1 {
			return uint32(i)
		}
		i += size
	}
	return uint32(len(text))
}
