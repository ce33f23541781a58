package sourcetext

import (
	"errors"
	"fmt"
	"sort"
	"unicode/utf8"

	"fortio.org/safecast"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrTooLarge is returned for texts whose offsets do not fit in 32 bits.
var ErrTooLarge = errors.New("source text too large")

// Info is an immutable source text together with its line index.
type Info struct {
	text       string
	lineStarts []uint32
}

// LineCol is a human-readable position.
type LineCol struct {
	Line   uint32 // 1-based
	Column uint32 // 1-based, counted in characters
}

func (lc LineCol) String() string {
	return fmt.Sprintf("%d:%d", lc.Line, lc.Column)
}

// New indexes text. It panics when the text is larger than 4GiB.
func New(text string) *Info {
	info, err := build(text)
	if err != nil {
		panic(err)
	}
	return info
}

// FromBytes decodes raw file contents: a UTF-8 byte order mark is
// dropped and UTF-16 input (detected by its byte order mark) is
// converted to UTF-8.
func FromBytes(data []byte) (*Info, error) {
	decoded, _, err := transform.Bytes(unicode.BOMOverride(encoding.Nop.NewDecoder()), data)
	if err != nil {
		return nil, fmt.Errorf("decode source: %w", err)
	}
	return build(string(decoded))
}

func build(text string) (*Info, error) {
	if _, err := safecast.Conv[uint32](len(text)); err != nil {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(text))
	}

	starts := make([]uint32, 1, 64)
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			starts = append(starts, uint32(i+1))
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				continue
			}
			starts = append(starts, uint32(i+1))
		}
	}

	return &Info{text: text, lineStarts: starts}, nil
}

func (info *Info) Text() string {
	return info.text
}

func (info *Info) Len() uint32 {
	return uint32(len(info.text))
}

func (info *Info) LineCount() int {
	return len(info.lineStarts)
}

// LineIndex returns the 0-based line holding the byte offset.
func (info *Info) LineIndex(offset uint32) int {
	if offset > info.Len() {
		offset = info.Len()
	}
	return sort.Search(len(info.lineStarts), func(i int) bool {
		return info.lineStarts[i] > offset
	}) - 1
}

// LineStart returns the byte offset at which the 0-based line begins.
func (info *Info) LineStart(line int) uint32 {
	return info.lineStarts[line]
}

// LineEnd returns the offset of the line terminator (or end of text).
func (info *Info) LineEnd(line int) uint32 {
	if line+1 >= len(info.lineStarts) {
		return info.Len()
	}
	end := info.lineStarts[line+1]
	for end > info.lineStarts[line] && (info.text[end-1] == '\n' || info.text[end-1] == '\r') {
		end--
	}
	return end
}

// LineText returns the text of the 0-based line without its terminator.
func (info *Info) LineText(line int) string {
	return info.text[info.LineStart(line):info.LineEnd(line)]
}

// LineAndColumnDisplay converts a byte offset to a 1-based line and column.
func (info *Info) LineAndColumnDisplay(offset uint32) LineCol {
	if offset > info.Len() {
		offset = info.Len()
	}
	line := info.LineIndex(offset)
	start := info.lineStarts[line]
	column := utf8.RuneCountInString(info.text[start:offset])
	return LineCol{
		Line:   safecast.MustConv[uint32](line + 1),
		Column: safecast.MustConv[uint32](column + 1),
	}
}

// Slice returns text[lo:hi].
func (info *Info) Slice(lo, hi uint32) string {
	return info.text[lo:hi]
}

// IsSameLine reports whether two offsets lie on the same line.
func (info *Info) IsSameLine(a, b uint32) bool {
	return info.LineIndex(a) == info.LineIndex(b)
}
