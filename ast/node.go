package ast

import (
	"fmt"
	"strings"
)

// Span is a half-open byte range into the source text.
type Span struct {
	Lo uint32 `json:"lo" msgpack:"lo"`
	Hi uint32 `json:"hi" msgpack:"hi"`
}

func (s Span) Len() uint32 {
	return s.Hi - s.Lo
}

func (s Span) IsEmpty() bool {
	return s.Lo == s.Hi
}

func (s Span) Contains(pos uint32) bool {
	return s.Lo <= pos && pos < s.Hi
}

func (s Span) String() string {
	return fmt.Sprintf("%d..%d", s.Lo, s.Hi)
}

// Node is one node of a parsed syntax tree. Kinds and field names are the
// grammar's own (e.g. "call_expression" with field "function"). Leaves
// carry their source text.
type Node struct {
	Kind     string        `json:"kind" msgpack:"kind"`
	Field    string        `json:"field,omitempty" msgpack:"field,omitempty"`
	Named    bool          `json:"named,omitempty" msgpack:"named,omitempty"`
	Missing  bool          `json:"missing,omitempty" msgpack:"missing,omitempty"`
	Span     Span          `json:"span" msgpack:"span"`
	Text     string        `json:"text,omitempty" msgpack:"text,omitempty"`
	Ctxt     SyntaxContext `json:"ctxt,omitempty" msgpack:"ctxt,omitempty"`
	Children []*Node       `json:"children,omitempty" msgpack:"children,omitempty"`
}

const KindError = "ERROR"

func (n *Node) IsError() bool {
	return n.Kind == KindError
}

func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// HasError reports whether the node or any descendant is an error or a
// missing token.
func (n *Node) HasError() bool {
	found := false
	Walk(n, func(c *Node) bool {
		if c.IsError() || c.Missing {
			found = true
		}
		return !found
	})
	return found
}

// ChildByField returns the first child stored under the field name.
func (n *Node) ChildByField(field string) *Node {
	for _, c := range n.Children {
		if c.Field == field {
			return c
		}
	}
	return nil
}

func (n *Node) ChildrenByField(field string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Field == field {
			out = append(out, c)
		}
	}
	return out
}

func (n *Node) ChildOfKind(kind string) *Node {
	for _, c := range n.Children {
		if c.Kind == kind {
			return c
		}
	}
	return nil
}

// HasToken reports whether an anonymous child with the given kind, such as
// "type" or "async", is present.
func (n *Node) HasToken(kind string) bool {
	for _, c := range n.Children {
		if !c.Named && c.Kind == kind {
			return true
		}
	}
	return false
}

func (n *Node) NamedChildren() []*Node {
	out := make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		if c.Named {
			out = append(out, c)
		}
	}
	return out
}

// Walk visits n and its descendants in source order. Returning false from
// visit skips the node's children.
func Walk(n *Node, visit func(*Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, visit)
	}
}

// Find returns every descendant (including n) of the given kind.
func Find(n *Node, kind string) []*Node {
	var out []*Node
	Walk(n, func(c *Node) bool {
		if c.Kind == kind {
			out = append(out, c)
		}
		return true
	})
	return out
}

// Clone returns a deep copy of the subtree.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	cp := *n
	if n.Children != nil {
		cp.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			cp.Children[i] = c.Clone()
		}
	}
	return &cp
}

// StringValue returns the contents of a string literal without quotes.
// Escape sequences are kept as written.
func (n *Node) StringValue() string {
	if n.IsLeaf() {
		return strings.Trim(n.Text, "\"'`")
	}
	var b strings.Builder
	for _, c := range n.Children {
		if c.Kind == "string_fragment" || c.Kind == "escape_sequence" {
			b.WriteString(c.Text)
		}
	}
	return b.String()
}

// Sexp renders the named structure of the subtree the way tree-sitter
// prints it, e.g. "(program (expression_statement (identifier)))".
func (n *Node) Sexp() string {
	var b strings.Builder
	writeSexp(&b, n, "")
	return b.String()
}

func writeSexp(b *strings.Builder, n *Node, field string) {
	if field != "" {
		b.WriteString(field)
		b.WriteString(": ")
	}
	if n.Missing {
		fmt.Fprintf(b, "(MISSING %q)", n.Kind)
		return
	}
	b.WriteByte('(')
	b.WriteString(n.Kind)
	for _, c := range n.Children {
		if !c.Named && !c.Missing {
			continue
		}
		b.WriteByte(' ')
		writeSexp(b, c, c.Field)
	}
	b.WriteByte(')')
}
