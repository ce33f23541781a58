// Package scope resolves identifiers to their declaring scope. Each
// identifier node gets a SyntaxContext so that two identifiers are the
// same binding exactly when their ast.Id values are equal.
package scope

import (
	"unicode"
	"unicode/utf8"

	"github.com/hannajonsd/jsparse/ast"
)

const (
	unresolvedMark ast.SyntaxContext = 1
	topLevelMark   ast.SyntaxContext = 2
)

type namespace uint8

const (
	valueNS namespace = 1 << iota
	typeNS
	bothNS = valueNS | typeNS
)

type scope struct {
	parent   *scope
	ctxt     ast.SyntaxContext
	function bool
	values   map[string]struct{}
	types    map[string]struct{}
}

type resolver struct {
	current *scope
	next    ast.SyntaxContext
}

// Analyze assigns syntax contexts to every identifier in the program and
// returns the unresolved and top-level markers. The program must not be
// shared with other goroutines while it runs.
func Analyze(program ast.Program) ast.SyntaxContexts {
	program.Walk(func(n *ast.Node) bool {
		n.Ctxt = ast.EmptyContext
		return true
	})

	r := &resolver{next: topLevelMark + 1}
	r.current = &scope{ctxt: topLevelMark, function: true, values: map[string]struct{}{}, types: map[string]struct{}{}}

	body := program.Body()
	r.hoistVars(body)
	r.declareStatements(body)
	for _, n := range body {
		r.visit(n)
	}

	return ast.SyntaxContexts{Unresolved: unresolvedMark, TopLevel: topLevelMark}
}

func (r *resolver) push(function bool) {
	r.current = &scope{
		parent:   r.current,
		ctxt:     r.next,
		function: function,
		values:   map[string]struct{}{},
		types:    map[string]struct{}{},
	}
	r.next++
}

func (r *resolver) pop() {
	r.current = r.current.parent
}

func (r *resolver) functionScope() *scope {
	s := r.current
	for !s.function {
		s = s.parent
	}
	return s
}

func declareIn(s *scope, id *ast.Node, ns namespace) {
	if id == nil || id.Text == "" {
		return
	}
	id.Ctxt = s.ctxt
	if ns&valueNS != 0 {
		s.values[id.Text] = struct{}{}
	}
	if ns&typeNS != 0 {
		s.types[id.Text] = struct{}{}
	}
}

func (r *resolver) declare(id *ast.Node, ns namespace) {
	declareIn(r.current, id, ns)
}

func (r *resolver) lookup(name string, ns namespace) ast.SyntaxContext {
	for s := r.current; s != nil; s = s.parent {
		table := s.values
		if ns == typeNS {
			table = s.types
		}
		if _, ok := table[name]; ok {
			return s.ctxt
		}
	}
	return unresolvedMark
}

func (r *resolver) resolve(id *ast.Node, ns namespace) {
	if id.Ctxt != ast.EmptyContext {
		return
	}
	id.Ctxt = r.lookup(id.Text, ns)
}

// hoistVars declares every var binding reachable from the statements
// without crossing a function boundary.
func (r *resolver) hoistVars(stmts []*ast.Node) {
	target := r.functionScope()
	for _, stmt := range stmts {
		ast.Walk(stmt, func(n *ast.Node) bool {
			if n.Named && isFunctionLike(n.Kind) || n.Kind == "class_body" {
				return false
			}
			switch n.Kind {
			case "variable_declaration":
				for _, decl := range n.NamedChildren() {
					if decl.Kind == "variable_declarator" {
						for _, id := range patternBindings(decl.ChildByField("name")) {
							declareIn(target, id, valueNS)
						}
					}
				}
			case "for_in_statement":
				if kind := n.ChildByField("kind"); kind != nil && kind.Kind == "var" {
					for _, id := range patternBindings(n.ChildByField("left")) {
						declareIn(target, id, valueNS)
					}
				}
			}
			return true
		})
	}
}

// declareStatements declares the block-scoped bindings introduced directly
// by a statement list.
func (r *resolver) declareStatements(stmts []*ast.Node) {
	for _, stmt := range stmts {
		r.declareStatement(stmt)
	}
}

func (r *resolver) declareStatement(stmt *ast.Node) {
	switch stmt.Kind {
	case "lexical_declaration":
		for _, decl := range stmt.NamedChildren() {
			if decl.Kind == "variable_declarator" {
				for _, id := range patternBindings(decl.ChildByField("name")) {
					r.declare(id, valueNS)
				}
			}
		}
	case "function_declaration", "generator_function_declaration", "function_signature":
		r.declare(stmt.ChildByField("name"), valueNS)
	case "class_declaration", "abstract_class_declaration", "enum_declaration", "internal_module", "module":
		name := stmt.ChildByField("name")
		if name != nil && name.Kind != "string" {
			r.declare(name, bothNS)
		}
	case "interface_declaration", "type_alias_declaration":
		r.declare(stmt.ChildByField("name"), typeNS)
	case "import_statement":
		r.declareImport(stmt)
	case "import_alias":
		r.declare(stmt.ChildOfKind("identifier"), bothNS)
	case "export_statement":
		if decl := stmt.ChildByField("declaration"); decl != nil {
			r.declareStatement(decl)
		}
	case "ambient_declaration":
		for _, c := range stmt.NamedChildren() {
			if c.Kind == "variable_declaration" {
				for _, decl := range c.NamedChildren() {
					if decl.Kind == "variable_declarator" {
						for _, id := range patternBindings(decl.ChildByField("name")) {
							r.declare(id, valueNS)
						}
					}
				}
				continue
			}
			r.declareStatement(c)
		}
	case "expression_statement":
		// namespace declarations are wrapped in an expression statement
		for _, c := range stmt.NamedChildren() {
			if c.Kind == "internal_module" {
				r.declareStatement(c)
			}
		}
	}
}

func (r *resolver) declareImport(stmt *ast.Node) {
	typeOnly := stmt.HasToken("type") || stmt.HasToken("typeof")
	ns := valueNS
	if typeOnly {
		ns = typeNS
	}

	if req := stmt.ChildOfKind("import_require_clause"); req != nil {
		r.declare(req.ChildOfKind("identifier"), bothNS)
		return
	}

	clause := stmt.ChildOfKind("import_clause")
	if clause == nil {
		return
	}
	for _, c := range clause.NamedChildren() {
		switch c.Kind {
		case "identifier":
			r.declare(c, importNS(ns))
		case "namespace_import":
			r.declare(c.ChildOfKind("identifier"), importNS(ns))
		case "named_imports":
			for _, spec := range c.NamedChildren() {
				if spec.Kind != "import_specifier" {
					continue
				}
				specNS := ns
				if spec.HasToken("type") || spec.HasToken("typeof") {
					specNS = typeNS
				}
				local := spec.ChildByField("alias")
				if local == nil {
					local = spec.ChildByField("name")
				}
				if local != nil && local.Kind == "identifier" {
					r.declare(local, importNS(specNS))
				}
			}
		}
	}
}

// importNS widens a value import to both namespaces: an imported class or
// enum is usable as a type as well.
func importNS(ns namespace) namespace {
	if ns == valueNS {
		return bothNS
	}
	return ns
}

// patternBindings returns the identifiers bound by a declaration pattern.
func patternBindings(pattern *ast.Node) []*ast.Node {
	if pattern == nil {
		return nil
	}
	var out []*ast.Node
	var collect func(*ast.Node)
	collect = func(n *ast.Node) {
		switch n.Kind {
		case "identifier", "shorthand_property_identifier_pattern":
			out = append(out, n)
		case "object_pattern", "array_pattern", "rest_pattern", "formal_parameters":
			for _, c := range n.NamedChildren() {
				collect(c)
			}
		case "pair_pattern":
			if v := n.ChildByField("value"); v != nil {
				collect(v)
			}
		case "assignment_pattern", "object_assignment_pattern":
			if l := n.ChildByField("left"); l != nil {
				collect(l)
			}
		case "required_parameter", "optional_parameter":
			if p := n.ChildByField("pattern"); p != nil {
				collect(p)
			}
		}
	}
	collect(pattern)
	return out
}

func isFunctionLike(kind string) bool {
	switch kind {
	case "function_declaration", "function_expression", "function",
		"generator_function_declaration", "generator_function",
		"arrow_function", "method_definition", "class_static_block",
		"function_signature", "method_signature", "abstract_method_signature",
		"call_signature", "construct_signature", "function_type", "constructor_type":
		return true
	}
	return false
}

func (r *resolver) visitChildren(n *ast.Node) {
	for _, c := range n.Children {
		r.visit(c)
	}
}

func (r *resolver) visit(n *ast.Node) {
	if !n.Named {
		return
	}
	switch n.Kind {
	case "identifier", "shorthand_property_identifier", "shorthand_property_identifier_pattern":
		r.resolve(n, valueNS)
	case "type_identifier":
		r.resolve(n, typeNS)
	case "nested_type_identifier":
		// the qualifier names a namespace, the member after the dot is not
		// a binding
		if id := qualifier(n.ChildByField("module")); id != nil {
			r.resolve(id, typeNS)
		}
	case "index_signature":
		r.visitIndexSignature(n)
	case "conditional_type":
		r.visitConditionalType(n)
	case "property_identifier", "private_property_identifier", "statement_identifier":
	case "statement_block":
		r.push(false)
		r.declareStatements(n.Children)
		r.visitChildren(n)
		r.pop()
	case "for_statement", "for_in_statement", "switch_body":
		r.push(false)
		r.declareLoopHead(n)
		r.visitChildren(n)
		r.pop()
	case "catch_clause":
		r.push(false)
		for _, id := range patternBindings(n.ChildByField("parameter")) {
			r.declare(id, valueNS)
		}
		r.visitChildren(n)
		r.pop()
	case "class_declaration", "class", "abstract_class_declaration",
		"interface_declaration", "type_alias_declaration":
		r.visitGenericDeclaration(n)
	case "import_specifier":
		if alias := n.ChildByField("alias"); alias != nil {
			r.visit(alias)
		} else if name := n.ChildByField("name"); name != nil {
			r.visit(name)
		}
	case "export_statement":
		if n.ChildByField("source") != nil {
			return
		}
		r.visitChildren(n)
	case "export_specifier":
		if name := n.ChildByField("name"); name != nil {
			r.visit(name)
		}
	case "jsx_opening_element", "jsx_closing_element", "jsx_self_closing_element":
		for _, c := range n.Children {
			if c.Field == "name" && c.Kind == "identifier" && isIntrinsicElement(c.Text) {
				continue
			}
			r.visit(c)
		}
	default:
		if isFunctionLike(n.Kind) {
			r.visitFunction(n)
			return
		}
		r.visitChildren(n)
	}
}

func (r *resolver) declareLoopHead(n *ast.Node) {
	switch n.Kind {
	case "for_statement":
		if init := n.ChildByField("initializer"); init != nil {
			r.declareStatement(init)
		}
	case "for_in_statement":
		if kind := n.ChildByField("kind"); kind != nil && kind.Kind != "var" {
			for _, id := range patternBindings(n.ChildByField("left")) {
				r.declare(id, valueNS)
			}
		}
	case "switch_body":
		for _, c := range n.NamedChildren() {
			r.declareStatements(c.ChildrenByField("body"))
		}
	}
}

// visitGenericDeclaration visits the declared name in the enclosing scope
// and the rest of the declaration in a scope holding its type parameters.
func (r *resolver) visitGenericDeclaration(n *ast.Node) {
	name := n.ChildByField("name")
	if name != nil && n.Kind != "class" {
		r.visit(name)
	}

	r.push(false)
	if n.Kind == "class" && name != nil {
		r.declare(name, bothNS)
	}
	r.declareTypeParameters(n.ChildByField("type_parameters"))
	for _, c := range n.Children {
		if c != name {
			r.visit(c)
		}
	}
	r.pop()
}

// visitIndexSignature scopes the key of a mapped type ([K in keyof T]: K)
// or an index signature ([key: string]: T) to the signature.
func (r *resolver) visitIndexSignature(n *ast.Node) {
	r.push(false)
	defer r.pop()

	if clause := n.ChildOfKind("mapped_type_clause"); clause != nil {
		r.declare(clause.ChildByField("name"), typeNS)
	} else if name := n.ChildByField("name"); name != nil {
		r.declare(name, valueNS)
	}
	r.visitChildren(n)
}

// visitConditionalType binds the infer declarations of the extends clause
// in the true branch only.
func (r *resolver) visitConditionalType(n *ast.Node) {
	left := n.ChildByField("left")
	right := n.ChildByField("right")
	consequence := n.ChildByField("consequence")
	if left != nil {
		r.visit(left)
	}

	r.push(false)
	if right != nil {
		ast.Walk(right, func(c *ast.Node) bool {
			if c.Kind == "conditional_type" {
				return false
			}
			if c.Kind == "infer_type" {
				r.declare(c.ChildOfKind("type_identifier"), typeNS)
			}
			return true
		})
		r.visit(right)
	}
	if consequence != nil {
		r.visit(consequence)
	}
	r.pop()

	for _, c := range n.Children {
		if c != left && c != right && c != consequence {
			r.visit(c)
		}
	}
}

// qualifier returns the leftmost identifier of a dotted name.
func qualifier(n *ast.Node) *ast.Node {
	for n != nil {
		switch n.Kind {
		case "identifier":
			return n
		case "nested_identifier", "member_expression":
			n = n.ChildByField("object")
		default:
			return nil
		}
	}
	return nil
}

func (r *resolver) declareTypeParameters(params *ast.Node) {
	if params == nil {
		return
	}
	for _, p := range params.NamedChildren() {
		if p.Kind == "type_parameter" {
			r.declare(p.ChildByField("name"), typeNS)
		}
	}
}

func (r *resolver) visitFunction(n *ast.Node) {
	name := n.ChildByField("name")
	expression := n.Kind == "function_expression" || n.Kind == "function" || n.Kind == "generator_function"
	if name != nil && !expression {
		r.visit(name)
	}

	r.push(true)
	defer r.pop()

	if name != nil && expression {
		r.declare(name, valueNS)
	}
	r.declareTypeParameters(n.ChildByField("type_parameters"))
	if params := n.ChildByField("parameters"); params != nil {
		for _, id := range patternBindings(params) {
			r.declare(id, valueNS)
		}
	}
	if param := n.ChildByField("parameter"); param != nil {
		for _, id := range patternBindings(param) {
			r.declare(id, valueNS)
		}
	}

	body := n.ChildByField("body")
	if body != nil && body.Kind == "statement_block" {
		r.hoistVars(body.Children)
		r.declareStatements(body.Children)
	}

	for _, c := range n.Children {
		switch {
		case c == name && !expression:
		case c == body && body.Kind == "statement_block":
			// function bodies share the function scope
			r.visitChildren(body)
		default:
			r.visit(c)
		}
	}
}

// isIntrinsicElement reports whether a JSX tag name like "div" names a
// host element rather than a component binding.
func isIntrinsicElement(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsLower(r)
}
