package reachability

import (
	"strings"

	"github.com/hannajonsd/jsparse/ast"
)

type importCollector struct {
	unresolved ast.SyntaxContext
	imports    []PackageImport
	// call nodes already recorded through their declarator
	claimed map[*ast.Node]bool
}

func newImportCollector(unresolved ast.SyntaxContext) *importCollector {
	return &importCollector{unresolved: unresolved, claimed: make(map[*ast.Node]bool)}
}

func (c *importCollector) visit(n *ast.Node) bool {
	switch n.Kind {
	case "import_statement":
		c.importStatement(n)
		return false
	case "export_statement":
		c.exportStatement(n)
	case "variable_declarator":
		c.declarator(n)
	case "call_expression":
		if c.claimed[n] {
			return true
		}
		if spec, kind, ok := c.loader(n); ok {
			c.add(PackageImport{Specifier: spec, Kind: kind, Span: n.Span})
		}
	}
	return true
}

func (c *importCollector) add(imp PackageImport) {
	imp.PackageName = PackageName(imp.Specifier)
	c.imports = append(c.imports, imp)
}

func (c *importCollector) importStatement(n *ast.Node) {
	kind := KindImport
	if n.HasToken("type") || n.HasToken("typeof") {
		kind = KindType
	}

	if req := n.ChildOfKind("import_require_clause"); req != nil {
		src := req.ChildByField("source")
		name := req.ChildOfKind("identifier")
		if src == nil || name == nil {
			return
		}
		c.add(PackageImport{
			Specifier: src.StringValue(),
			Kind:      KindRequire,
			Bindings:  []Binding{{Local: name.ToId(), Imported: "*"}},
			Span:      n.Span,
		})
		return
	}

	src := n.ChildByField("source")
	if src == nil {
		return
	}
	imp := PackageImport{Specifier: src.StringValue(), Kind: kind, Span: n.Span}
	if clause := n.ChildOfKind("import_clause"); clause != nil {
		imp.Bindings = importClauseBindings(clause)
	}
	c.add(imp)
}

func importClauseBindings(clause *ast.Node) []Binding {
	var out []Binding
	for _, child := range clause.Children {
		switch child.Kind {
		case "identifier":
			// Default import: import foo from "module"
			out = append(out, Binding{Local: child.ToId(), Imported: "default"})
		case "namespace_import":
			// Namespace import: import * as foo from "module"
			if id := child.ChildOfKind("identifier"); id != nil {
				out = append(out, Binding{Local: id.ToId(), Imported: "*"})
			}
		case "named_imports":
			// Named imports: import { a, b as c } from "module"
			for _, spec := range child.Children {
				if spec.Kind != "import_specifier" {
					continue
				}
				name := spec.ChildByField("name")
				if name == nil {
					continue
				}
				local := name
				if alias := spec.ChildByField("alias"); alias != nil {
					local = alias
				}
				if local.Kind != "identifier" {
					continue
				}
				out = append(out, Binding{Local: local.ToId(), Imported: exportName(name)})
			}
		}
	}
	return out
}

func (c *importCollector) exportStatement(n *ast.Node) {
	src := n.ChildByField("source")
	if src == nil {
		return
	}

	// Re-exports bind nothing locally; Local carries the exported name.
	var bindings []Binding
	for _, child := range n.Children {
		switch child.Kind {
		case "*":
			if n.ChildOfKind("namespace_export") == nil {
				bindings = append(bindings, Binding{Local: ast.Id{Sym: "*"}, Imported: "*"})
			}
		case "namespace_export":
			if name := lastNamed(child); name != nil {
				bindings = append(bindings, Binding{Local: ast.Id{Sym: exportName(name)}, Imported: "*"})
			}
		case "export_clause":
			for _, spec := range child.Children {
				if spec.Kind != "export_specifier" {
					continue
				}
				name := spec.ChildByField("name")
				if name == nil {
					continue
				}
				exported := name
				if alias := spec.ChildByField("alias"); alias != nil {
					exported = alias
				}
				bindings = append(bindings, Binding{Local: ast.Id{Sym: exportName(exported)}, Imported: exportName(name)})
			}
		}
	}

	c.add(PackageImport{Specifier: src.StringValue(), Kind: KindReExport, Bindings: bindings, Span: n.Span})
}

// declarator records `const x = require("m")`, `const { a } = require("m")`
// and `const m = await import("m")` together with their bindings.
func (c *importCollector) declarator(n *ast.Node) {
	value := n.ChildByField("value")
	if value != nil && value.Kind == "await_expression" {
		value = lastNamed(value)
	}
	if value == nil || value.Kind != "call_expression" {
		return
	}
	spec, kind, ok := c.loader(value)
	if !ok {
		return
	}
	c.claimed[value] = true

	imp := PackageImport{Specifier: spec, Kind: kind, Span: value.Span}
	switch name := n.ChildByField("name"); {
	case name == nil:
	case name.Kind == "identifier":
		imp.Bindings = []Binding{{Local: name.ToId(), Imported: "*"}}
	case name.Kind == "object_pattern":
		imp.Bindings = objectPatternBindings(name)
	}
	c.add(imp)
}

func objectPatternBindings(pattern *ast.Node) []Binding {
	var out []Binding
	for _, child := range pattern.Children {
		switch child.Kind {
		case "shorthand_property_identifier_pattern":
			out = append(out, Binding{Local: child.ToId(), Imported: child.Text})
		case "object_assignment_pattern":
			if left := child.ChildByField("left"); left != nil && left.Kind == "shorthand_property_identifier_pattern" {
				out = append(out, Binding{Local: left.ToId(), Imported: left.Text})
			}
		case "pair_pattern":
			key, value := child.ChildByField("key"), child.ChildByField("value")
			if key == nil || value == nil {
				continue
			}
			if value.Kind == "assignment_pattern" {
				value = value.ChildByField("left")
			}
			if value == nil || value.Kind != "identifier" {
				continue
			}
			out = append(out, Binding{Local: value.ToId(), Imported: exportName(key)})
		}
	}
	return out
}

// loader reports whether call is `import("m")` or an unshadowed
// `require("m")` with a literal specifier.
func (c *importCollector) loader(call *ast.Node) (string, ImportKind, bool) {
	fn := call.ChildByField("function")
	if fn == nil {
		return "", "", false
	}

	var kind ImportKind
	switch {
	case fn.Kind == "import":
		kind = KindDynamic
	case fn.Kind == "identifier" && fn.Text == "require" && fn.Ctxt == c.unresolved:
		kind = KindRequire
	default:
		return "", "", false
	}

	args := call.ChildByField("arguments")
	if args == nil {
		return "", "", false
	}
	named := args.NamedChildren()
	if len(named) == 0 || named[0].Kind != "string" {
		return "", "", false
	}
	return named[0].StringValue(), kind, true
}

func exportName(n *ast.Node) string {
	if n.Kind == "string" {
		return n.StringValue()
	}
	return n.Text
}

func lastNamed(n *ast.Node) *ast.Node {
	named := n.NamedChildren()
	if len(named) == 0 {
		return nil
	}
	return named[len(named)-1]
}

// PackageName returns the package a bare specifier refers to, e.g.
// "lodash" for "lodash/fp" and "@scope/pkg" for "npm:@scope/pkg@1/x".
// Relative paths and URLs have no package name.
func PackageName(specifier string) string {
	s := specifier
	switch {
	case s == "", strings.HasPrefix(s, "."), strings.HasPrefix(s, "/"):
		return ""
	case strings.HasPrefix(s, "node:"):
		return strings.SplitN(s, "/", 2)[0]
	case strings.HasPrefix(s, "npm:"), strings.HasPrefix(s, "jsr:"):
		s = strings.TrimLeft(s[4:], "/")
	case strings.Contains(s, "://"), strings.HasPrefix(s, "data:"):
		return ""
	}

	parts := strings.Split(s, "/")
	name := parts[0]
	if strings.HasPrefix(name, "@") {
		if len(parts) < 2 {
			return ""
		}
		name += "/" + parts[1]
		if i := strings.LastIndexByte(name, '@'); i > 0 {
			name = name[:i]
		}
		return name
	}
	if i := strings.IndexByte(name, '@'); i > 0 {
		name = name[:i]
	}
	return name
}
