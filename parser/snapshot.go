package parser

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/hannajonsd/jsparse/ast"
	"github.com/hannajonsd/jsparse/comments"
	"github.com/hannajonsd/jsparse/sourcetext"
)

// snapshot copies a tree-sitter tree into ast nodes in one cursor walk,
// streaming comments into the builder and optionally buffering tokens.
type snapshot struct {
	text     *sourcetext.Info
	comments *comments.Builder

	captureTokens bool
	tokens        []ast.Token

	shebang string

	// comment attachment state
	sawToken bool
	prevHi   uint32
	pending  []comments.Comment
}

func newSnapshot(text *sourcetext.Info, captureTokens bool) *snapshot {
	s := &snapshot{
		text:          text,
		comments:      comments.NewBuilder(),
		captureTokens: captureTokens,
	}
	if captureTokens {
		s.tokens = make([]ast.Token, 0, text.Len()/4)
	}
	return s
}

func isCommentKind(kind string) bool {
	return kind == "comment" || kind == "html_comment"
}

// atomicTokenKind reports kinds that lex as a single token even though
// the grammar gives them children.
func atomicTokenKind(kind string) bool {
	return kind == "string" || kind == "regex"
}

// convertTree converts the root node and returns the program's top-level
// statements.
func (s *snapshot) convertTree(tree *tree_sitter.Tree) *ast.Node {
	cursor := tree.Walk()
	defer cursor.Close()

	root := s.convert(cursor, false)
	s.finish()
	return root
}

func (s *snapshot) convert(cursor *tree_sitter.TreeCursor, inToken bool) *ast.Node {
	n := cursor.Node()
	span := ast.Span{Lo: uint32(n.StartByte()), Hi: uint32(n.EndByte())}
	node := &ast.Node{
		Kind:    n.Kind(),
		Field:   cursor.FieldName(),
		Named:   n.IsNamed(),
		Missing: n.IsMissing(),
		Span:    span,
	}

	if !inToken && atomicTokenKind(node.Kind) {
		s.token(node.Kind, span)
		inToken = true
	}

	if !cursor.GotoFirstChild() {
		node.Text = s.text.Slice(span.Lo, span.Hi)
		if !inToken && !node.Missing && !span.IsEmpty() {
			s.token(node.Kind, span)
		}
		return node
	}

	for {
		child := cursor.Node()
		kind := child.Kind()
		switch {
		case isCommentKind(kind):
			lo, hi := uint32(child.StartByte()), uint32(child.EndByte())
			s.comment(comments.FromSource(s.text.Slice(lo, hi), ast.Span{Lo: lo, Hi: hi}))
		case kind == "hash_bang_line":
			s.shebang = trimShebang(s.text.Slice(uint32(child.StartByte()), uint32(child.EndByte())))
		default:
			node.Children = append(node.Children, s.convert(cursor, inToken))
		}
		if !cursor.GotoNextSibling() {
			break
		}
	}
	cursor.GotoParent()
	return node
}

func trimShebang(line string) string {
	if len(line) >= 2 && line[0] == '#' && line[1] == '!' {
		return line[2:]
	}
	return line
}

func (s *snapshot) token(kind string, span ast.Span) {
	for _, c := range s.pending {
		s.comments.AddLeading(span.Lo, c)
	}
	s.pending = s.pending[:0]
	s.sawToken = true
	s.prevHi = span.Hi

	if s.captureTokens {
		s.tokens = append(s.tokens, ast.Token{Kind: kind, Span: span})
	}
}

// comment attaches a comment that shares a line with the previous token
// as trailing; everything else waits for the next token.
func (s *snapshot) comment(c comments.Comment) {
	if s.sawToken && len(s.pending) == 0 && s.text.IsSameLine(s.prevHi, c.Span.Lo) {
		s.comments.AddTrailing(s.prevHi, c)
		return
	}
	s.pending = append(s.pending, c)
}

// finish attaches comments left after the last token.
func (s *snapshot) finish() {
	for _, c := range s.pending {
		if s.sawToken {
			s.comments.AddTrailing(s.prevHi, c)
		} else {
			s.comments.AddLeading(0, c)
		}
	}
	s.pending = nil
}
