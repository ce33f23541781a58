package comments

import (
	"slices"
	"strings"

	"github.com/hannajonsd/jsparse/ast"
)

type Kind int

const (
	Line Kind = iota
	Block
)

func (k Kind) String() string {
	if k == Block {
		return "block"
	}
	return "line"
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Comment is a single comment. Text excludes the comment delimiters.
type Comment struct {
	Kind Kind     `json:"kind" msgpack:"kind"`
	Text string   `json:"text" msgpack:"text"`
	Span ast.Span `json:"span" msgpack:"span"`
}

// FromSource builds a Comment from its raw source text.
func FromSource(raw string, span ast.Span) Comment {
	switch {
	case strings.HasPrefix(raw, "//"):
		return Comment{Kind: Line, Text: raw[2:], Span: span}
	case strings.HasPrefix(raw, "/*"):
		return Comment{Kind: Block, Text: strings.TrimSuffix(raw[2:], "*/"), Span: span}
	case strings.HasPrefix(raw, "<!--"):
		return Comment{Kind: Line, Text: raw[4:], Span: span}
	case strings.HasPrefix(raw, "-->"):
		return Comment{Kind: Line, Text: raw[3:], Span: span}
	default:
		return Comment{Kind: Line, Text: raw, Span: span}
	}
}

// Builder collects comments during a parse. It is owned by a single
// goroutine and must not be used after Freeze.
type Builder struct {
	leading  map[uint32][]Comment
	trailing map[uint32][]Comment
	count    int
}

func NewBuilder() *Builder {
	return &Builder{
		leading:  make(map[uint32][]Comment),
		trailing: make(map[uint32][]Comment),
	}
}

// AddLeading attaches c to the token starting at pos.
func (b *Builder) AddLeading(pos uint32, c Comment) {
	b.leading[pos] = append(b.leading[pos], c)
	b.count++
}

// AddTrailing attaches c to the token ending at pos.
func (b *Builder) AddTrailing(pos uint32, c Comment) {
	b.trailing[pos] = append(b.trailing[pos], c)
	b.count++
}

func (b *Builder) Len() int {
	return b.count
}

// Freeze converts the builder into an index that can be read from any
// number of goroutines.
func (b *Builder) Freeze() *Comments {
	all := make([]Comment, 0, b.count)
	for _, cs := range b.leading {
		all = append(all, cs...)
	}
	for _, cs := range b.trailing {
		all = append(all, cs...)
	}
	slices.SortStableFunc(all, func(x, y Comment) int {
		return int(x.Span.Lo) - int(y.Span.Lo)
	})

	c := &Comments{leading: b.leading, trailing: b.trailing, all: all}
	b.leading, b.trailing, b.count = nil, nil, 0
	return c
}

// Comments is an immutable comment index.
type Comments struct {
	leading  map[uint32][]Comment
	trailing map[uint32][]Comment
	all      []Comment
}

// Leading returns the comments before the token starting at pos.
func (c *Comments) Leading(pos uint32) []Comment {
	return slices.Clone(c.leading[pos])
}

// Trailing returns the comments after the token ending at pos.
func (c *Comments) Trailing(pos uint32) []Comment {
	return slices.Clone(c.trailing[pos])
}

func (c *Comments) HasLeading(pos uint32) bool {
	return len(c.leading[pos]) > 0
}

func (c *Comments) HasTrailing(pos uint32) bool {
	return len(c.trailing[pos]) > 0
}

// All returns every comment ordered by position.
func (c *Comments) All() []Comment {
	return slices.Clone(c.all)
}

func (c *Comments) Len() int {
	return len(c.all)
}
