package parser

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/hannajonsd/jsparse/ast"
	"github.com/hannajonsd/jsparse/sourcetext"
)

// recovery classifies the error and missing nodes tree-sitter left in the
// tree. tree-sitter always produces a tree; the rules below decide which
// of its repairs abort the parse:
//
//   - two expressions on one line with nothing separating them is fatal
//     ("Expected ';', '}' or <eof>") at the start of the second one;
//   - an error at the top level that runs to the end of input is fatal;
//   - every other error or missing token is recoverable.
type recovery struct {
	specifier string
	text      *sourcetext.Info

	fatal       *Diagnostic
	recoverable []*Diagnostic
}

func (r *recovery) report(span ast.Span, severity Severity, message string) {
	d := newDiagnostic(r.specifier, r.text, span, severity, message)
	if severity == Recoverable {
		r.recoverable = append(r.recoverable, d)
		return
	}
	if r.fatal == nil || span.Lo < r.fatal.Range.Lo {
		r.fatal = d
	}
}

func (r *recovery) check(root *ast.Node) {
	stmts := root.Children
	for i, stmt := range stmts {
		if !stmt.IsError() {
			r.checkStatement(stmt)
			continue
		}

		var prev, next *ast.Node
		if i > 0 {
			prev = stmts[i-1]
		}
		if i+1 < len(stmts) {
			next = stmts[i+1]
		}
		r.checkTopLevelError(stmt, prev, next)
	}
}

func (r *recovery) checkTopLevelError(errNode, prev, next *ast.Node) {
	if pos, ok := r.adjacentExpressions(errNode.NamedChildren()); ok {
		r.report(ast.Span{Lo: pos, Hi: pos}, Fatal, msgExpectedTerminator)
		return
	}
	if next != nil && endsWithExpression(errNode) && r.text.IsSameLine(errNode.Span.Hi, next.Span.Lo) {
		r.report(ast.Span{Lo: next.Span.Lo, Hi: next.Span.Lo}, Fatal, msgExpectedTerminator)
		return
	}
	if prev != nil && prev.Kind == "expression_statement" && !prev.HasToken(";") &&
		r.text.IsSameLine(prev.Span.Hi, errNode.Span.Lo) {
		r.report(ast.Span{Lo: errNode.Span.Lo, Hi: errNode.Span.Lo}, Fatal, msgExpectedTerminator)
		return
	}
	if next == nil && strings.TrimSpace(r.text.Slice(errNode.Span.Hi, r.text.Len())) == "" {
		r.report(ast.Span{Lo: errNode.Span.Hi, Hi: errNode.Span.Hi}, Fatal, msgUnexpectedEOF)
		return
	}
	r.report(errNode.Span, Recoverable, errorMessage(errNode))
	r.checkChildren(errNode)
}

// adjacentExpressions finds two expression nodes inside an error with
// only whitespace between them on a single line.
func (r *recovery) adjacentExpressions(children []*ast.Node) (uint32, bool) {
	for i := 1; i < len(children); i++ {
		a, b := children[i-1], children[i]
		if !isExpressionKind(a.Kind) || !isExpressionKind(b.Kind) {
			continue
		}
		if r.text.IsSameLine(a.Span.Hi, b.Span.Lo) && strings.TrimSpace(r.text.Slice(a.Span.Hi, b.Span.Lo)) == "" {
			return b.Span.Lo, true
		}
	}
	return 0, false
}

func (r *recovery) checkStatement(stmt *ast.Node) {
	if stmt.Kind == "expression_statement" {
		children := stmt.Children
		for i := 1; i < len(children); i++ {
			a, b := children[i-1], children[i]
			if !r.text.IsSameLine(a.Span.Hi, b.Span.Lo) {
				continue
			}
			switch {
			case isExpressionKind(a.Kind) && b.IsError() && danglingOperator(b):
				pos := r.nextNonSpace(b.Span.Hi)
				r.report(ast.Span{Lo: pos, Hi: pos}, Fatal, msgExpressionExpected)
				return
			case isExpressionKind(a.Kind) && (b.IsError() || b.Missing && b.Kind == ";"):
				pos := r.nextNonSpace(b.Span.Lo)
				r.report(ast.Span{Lo: pos, Hi: pos}, Fatal, msgExpectedTerminator)
				return
			case a.IsError() && endsWithExpression(a) && isExpressionKind(b.Kind):
				r.report(ast.Span{Lo: b.Span.Lo, Hi: b.Span.Lo}, Fatal, msgExpectedTerminator)
				return
			}
		}
	}
	r.checkChildren(stmt)
}

func (r *recovery) checkChildren(n *ast.Node) {
	for _, c := range n.Children {
		r.checkNested(c)
	}
}

func (r *recovery) checkNested(n *ast.Node) {
	switch {
	case n.Missing:
		pos := r.nextNonSpace(n.Span.Lo)
		r.report(ast.Span{Lo: pos, Hi: pos}, Recoverable, missingMessage(n))
	case n.IsError():
		r.report(n.Span, Recoverable, errorMessage(n))
		r.checkChildren(n)
	case strings.HasSuffix(n.Kind, "_statement") && n.Kind != "expression_statement":
		r.checkChildren(n)
	case n.Kind == "expression_statement":
		r.checkStatement(n)
	default:
		r.checkChildren(n)
	}
}

func (r *recovery) nextNonSpace(pos uint32) uint32 {
	text := r.text.Text()
	for int(pos) < len(text) && strings.IndexByte(" \t\n\r\v\f", text[pos]) >= 0 {
		pos++
	}
	return pos
}

func missingMessage(n *ast.Node) string {
	if n.Named {
		if isExpressionKind(n.Kind) {
			return msgExpressionExpected
		}
		return fmt.Sprintf("Expected %s", n.Kind)
	}
	if n.Kind == ";" {
		return msgExpectedTerminator
	}
	return fmt.Sprintf("Expected '%s'", n.Kind)
}

func errorMessage(n *ast.Node) string {
	if n.IsLeaf() {
		if text := strings.TrimSpace(n.Text); text != "" {
			return fmt.Sprintf("%s `%s`", msgUnexpectedToken, text)
		}
		return msgUnexpectedToken
	}
	if first := n.Children[0]; first.IsLeaf() && !first.Named {
		return fmt.Sprintf("%s `%s`", msgUnexpectedToken, first.Text)
	}
	return msgUnexpectedToken
}

// danglingOperator reports whether an error node ends in a binary or
// assignment operator with no right-hand side, as in "x = ;".
func danglingOperator(n *ast.Node) bool {
	last := n
	for len(last.Children) > 0 {
		last = last.Children[len(last.Children)-1]
	}
	switch strings.TrimSpace(last.Text) {
	case "=", "+=", "-=", "*=", "/=", "%=", "**=", "<<=", ">>=", ">>>=", "&=", "|=", "^=", "&&=", "||=", "??=",
		"+", "-", "*", "/", "%", "**", "<<", ">>", ">>>", "&", "|", "^", "&&", "||", "??",
		"==", "===", "!=", "!==", "<", ">", "<=", ">=", "instanceof", "in":
		return true
	}
	return false
}

func endsWithExpression(n *ast.Node) bool {
	if len(n.Children) == 0 {
		return false
	}
	return isExpressionKind(n.Children[len(n.Children)-1].Kind)
}

func isExpressionKind(kind string) bool {
	switch kind {
	case "identifier", "number", "string", "template_string", "regex", "true", "false",
		"null", "undefined", "this", "super", "array", "object", "parenthesized_expression",
		"member_expression", "subscript_expression", "call_expression", "new_expression",
		"binary_expression", "unary_expression", "update_expression", "arrow_function",
		"function_expression", "class", "await_expression", "ternary_expression",
		"assignment_expression", "augmented_assignment_expression", "as_expression",
		"satisfies_expression", "non_null_expression", "type_assertion", "yield_expression":
		return true
	}
	return false
}

// sortDiagnostics orders diagnostics by position, keeping discovery order
// for equal offsets.
func sortDiagnostics(diags []*Diagnostic) {
	slices.SortStableFunc(diags, func(a, b *Diagnostic) int {
		return cmp.Compare(a.Range.Lo, b.Range.Lo)
	})
}
