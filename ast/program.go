package ast

import "fmt"

// SyntaxContext tags an identifier with the scope of the binding it refers
// to. The zero value means no context was assigned.
type SyntaxContext uint32

const EmptyContext SyntaxContext = 0

// SyntaxContexts holds the two markers assigned by scope analysis.
type SyntaxContexts struct {
	Unresolved SyntaxContext `json:"unresolved" msgpack:"unresolved"`
	TopLevel   SyntaxContext `json:"top_level" msgpack:"top_level"`
}

// Id identifies a binding: two identifiers with equal Ids refer to the same
// declaration.
type Id struct {
	Sym  string        `json:"sym" msgpack:"sym"`
	Ctxt SyntaxContext `json:"ctxt" msgpack:"ctxt"`
}

func (id Id) String() string {
	return fmt.Sprintf("%s#%d", id.Sym, id.Ctxt)
}

// ToId returns the identity of an identifier node.
func (n *Node) ToId() Id {
	return Id{Sym: n.Text, Ctxt: n.Ctxt}
}

// Token is one lexical token of the source in order of appearance.
type Token struct {
	Kind string `json:"kind" msgpack:"kind"`
	Span Span   `json:"span" msgpack:"span"`
}

type Module struct {
	Span    Span    `json:"span" msgpack:"span"`
	Body    []*Node `json:"body" msgpack:"body"`
	Shebang string  `json:"shebang,omitempty" msgpack:"shebang,omitempty"`
}

type Script struct {
	Span    Span    `json:"span" msgpack:"span"`
	Body    []*Node `json:"body" msgpack:"body"`
	Shebang string  `json:"shebang,omitempty" msgpack:"shebang,omitempty"`
}

// Program is either a module or a script. Exactly one field is set.
type Program struct {
	Module *Module `json:"module,omitempty" msgpack:"module,omitempty"`
	Script *Script `json:"script,omitempty" msgpack:"script,omitempty"`
}

func (p Program) IsModule() bool {
	return p.Module != nil
}

func (p Program) IsScript() bool {
	return p.Script != nil
}

func (p Program) Body() []*Node {
	if p.Module != nil {
		return p.Module.Body
	}
	if p.Script != nil {
		return p.Script.Body
	}
	return nil
}

func (p Program) Span() Span {
	if p.Module != nil {
		return p.Module.Span
	}
	if p.Script != nil {
		return p.Script.Span
	}
	return Span{}
}

func (p Program) Shebang() string {
	if p.Module != nil {
		return p.Module.Shebang
	}
	if p.Script != nil {
		return p.Script.Shebang
	}
	return ""
}

// Walk visits every top-level statement and its descendants.
func (p Program) Walk(visit func(*Node) bool) {
	for _, n := range p.Body() {
		Walk(n, visit)
	}
}

// Clone deep-copies the program so the copy can be modified freely.
func (p Program) Clone() Program {
	if p.Module != nil {
		return Program{Module: &Module{Span: p.Module.Span, Body: cloneBody(p.Module.Body), Shebang: p.Module.Shebang}}
	}
	if p.Script != nil {
		return Program{Script: &Script{Span: p.Script.Span, Body: cloneBody(p.Script.Body), Shebang: p.Script.Shebang}}
	}
	return Program{}
}

func cloneBody(body []*Node) []*Node {
	out := make([]*Node, len(body))
	for i, n := range body {
		out[i] = n.Clone()
	}
	return out
}
