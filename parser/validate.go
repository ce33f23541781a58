package parser

import (
	"github.com/hannajonsd/jsparse/ast"
	"github.com/hannajonsd/jsparse/mediatype"
)

// validator reports early errors and syntax the configuration does not
// enable. All of its findings are recoverable.
type validator struct {
	syntax    Syntax
	mediaType mediatype.MediaType
	module    bool
	report    func(span ast.Span, message string)
}

type walkState struct {
	function bool
	method   bool
	ambient  bool
}

func (v *validator) run(body []*ast.Node) {
	early := earlyErrorsEnabled(v.syntax)

	if !v.module {
		for _, stmt := range body {
			if stmt.Kind == "import_statement" || stmt.Kind == "export_statement" {
				v.report(stmt.Span, msgImportExportScript)
			}
		}
	}

	state := walkState{ambient: v.mediaType.IsDeclaration()}
	for _, stmt := range body {
		v.visit(stmt, state, early)
	}
}

func (v *validator) visit(n *ast.Node, state walkState, early bool) {
	switch n.Kind {
	case "lexical_declaration":
		if early && !state.ambient && n.HasToken("const") {
			for _, decl := range n.NamedChildren() {
				if decl.Kind == "variable_declarator" && decl.ChildByField("value") == nil {
					v.report(decl.Span, msgConstInit)
				}
			}
		}
	case "ambient_declaration":
		state.ambient = true
	case "function_declaration", "generator_function_declaration":
		if early && state.ambient && n.ChildByField("body") != nil {
			v.report(n.Span, msgAmbientImpl)
		}
	case "method_definition":
		if early && state.ambient && n.ChildByField("body") != nil {
			v.report(n.Span, msgAmbientImpl)
		}
	case "return_statement":
		if early && !state.function && !v.allowReturnOutsideFunction() {
			v.report(n.Span, msgReturnOutside)
		}
	case "super":
		if early && !state.method && !v.allowSuperOutsideMethod() {
			v.report(n.Span, msgSuperOutside)
		}
	case "jsx_element", "jsx_self_closing_element":
		if !jsxEnabled(v.syntax) {
			v.report(n.Span, msgJSXDisabled)
			return
		}
	case "decorator":
		if !decoratorsEnabled(v.syntax) {
			v.report(n.Span, msgDecoratorsDisabled)
		}
	case "import_attribute":
		if es, ok := v.syntax.(EsSyntax); ok && !es.ImportAttributes {
			v.report(n.Span, msgImportAttributes)
		}
	case "type_assertion":
		if v.disallowAmbiguousJSXLike() {
			v.report(n.Span, msgAmbiguousAssertion)
		}
	case "arrow_function":
		if v.disallowAmbiguousJSXLike() && ambiguousTypeParameters(n.ChildByField("type_parameters")) {
			v.report(n.ChildByField("type_parameters").Span, msgAmbiguousArrow)
		}
	}

	switch n.Kind {
	case "function_declaration", "generator_function_declaration", "function_expression",
		"generator_function", "arrow_function", "function_signature":
		state.function = true
		if n.Kind != "arrow_function" {
			state.method = false
		}
	case "method_definition", "class_static_block":
		state.function = true
		state.method = true
	case "field_definition", "public_field_definition":
		state.method = true
	}

	for _, c := range n.Children {
		v.visit(c, state, early)
	}
}

func (v *validator) allowReturnOutsideFunction() bool {
	es, ok := v.syntax.(EsSyntax)
	return ok && es.AllowReturnOutsideFunction
}

func (v *validator) allowSuperOutsideMethod() bool {
	es, ok := v.syntax.(EsSyntax)
	return ok && es.AllowSuperOutsideMethod
}

func (v *validator) disallowAmbiguousJSXLike() bool {
	ts, ok := v.syntax.(TsSyntax)
	return ok && ts.DisallowAmbiguousJSXLike
}

// ambiguousTypeParameters matches "<T>" with a single unconstrained
// parameter and no trailing comma.
func ambiguousTypeParameters(params *ast.Node) bool {
	if params == nil {
		return false
	}
	named := params.NamedChildren()
	if len(named) != 1 || named[0].Kind != "type_parameter" {
		return false
	}
	if named[0].ChildByField("constraint") != nil {
		return false
	}
	return !params.HasToken(",")
}
