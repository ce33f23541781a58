package reachability

import (
	"strings"

	"github.com/hannajonsd/jsparse/ast"
)

type importRef struct {
	specifier string
	imported  string
}

// bindingTable maps every local import binding to where it came from.
func bindingTable(imports []PackageImport) map[ast.Id]importRef {
	table := make(map[ast.Id]importRef)
	for _, imp := range imports {
		if imp.Kind == KindReExport {
			continue
		}
		for _, b := range imp.Bindings {
			table[b.Local] = importRef{specifier: imp.Specifier, imported: b.Imported}
		}
	}
	return table
}

func extractCalls(program ast.Program, table map[ast.Id]importRef) []Call {
	var calls []Call
	if len(table) == 0 {
		return calls
	}

	program.Walk(func(n *ast.Node) bool {
		var callee *ast.Node
		switch n.Kind {
		case "call_expression":
			callee = n.ChildByField("function")
		case "new_expression":
			callee = n.ChildByField("constructor")
		default:
			return true
		}
		if callee == nil {
			return true
		}

		root, path, ok := calleePath(callee)
		if !ok {
			return true
		}
		ref, ok := table[root.ToId()]
		if !ok {
			return true
		}
		calls = append(calls, Call{
			Callee:    strings.Join(path, "."),
			Specifier: ref.specifier,
			Imported:  ref.imported,
			Span:      n.Span,
		})
		return true
	})

	return calls
}

// calleePath resolves `a`, `a.b` and `a?.b.c` to the root identifier and
// the dotted path. Computed members and call chains are not followed.
func calleePath(n *ast.Node) (*ast.Node, []string, bool) {
	switch n.Kind {
	case "identifier":
		return n, []string{n.Text}, true
	case "parenthesized_expression":
		if inner := lastNamed(n); inner != nil {
			return calleePath(inner)
		}
	case "member_expression":
		object, property := n.ChildByField("object"), n.ChildByField("property")
		if object == nil || property == nil {
			return nil, nil, false
		}
		root, path, ok := calleePath(object)
		if !ok {
			return nil, nil, false
		}
		return root, append(path, property.Text), true
	}
	return nil, nil, false
}
