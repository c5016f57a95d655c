package frontmatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/DandyLyons/frontrange/pkg/node"
)

// LineRange is an inclusive, 1-based range of lines. A range with End <
// Start is empty.
type LineRange struct {
	Start int
	End   int
}

// Empty reports whether r covers no line.
func (r LineRange) Empty() bool {
	return r.End < r.Start
}

// Len returns the number of lines r covers.
func (r LineRange) Len() int {
	if r.Empty() {
		return 0
	}

	return r.End - r.Start + 1
}

func (r LineRange) String() string {
	if r.Start == r.End {
		return fmt.Sprintf("%d", r.Start)
	}

	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// LineIndex maps byte offsets of a text to line numbers. LF, CRLF and CR
// all end a line, and a line break inside a quoted scalar counts like any
// other.
type LineIndex struct {
	text   string
	starts []int // offset of the first byte of each line
}

// NewLineIndex indexes text.
func NewLineIndex(text string) *LineIndex {
	idx := &LineIndex{text: text, starts: []int{0}}

	s := newLineScanner(text)
	for {
		tok, ok := s.next()
		if !ok || tok.next >= len(text) {
			break
		}

		idx.starts = append(idx.starts, tok.next)
	}

	return idx
}

// LineCount returns the number of lines. A trailing line break does not
// start a new line; empty text has one empty line.
func (x *LineIndex) LineCount() int {
	return len(x.starts)
}

// Line returns the 1-based line holding offset. Offsets past the end map to
// the last line.
func (x *LineIndex) Line(offset int) int {
	if offset < 0 {
		return 1
	}

	return sort.Search(len(x.starts), func(i int) bool { return x.starts[i] > offset })
}

// Range returns the lines touched by the byte range [start, end).
func (x *LineIndex) Range(start, end int) LineRange {
	if end <= start {
		return LineRange{Start: x.Line(start), End: x.Line(start)}
	}

	return LineRange{Start: x.Line(start), End: x.Line(end - 1)}
}

// Offset returns the offset of the first byte of line.
func (x *LineIndex) Offset(line int) (int, bool) {
	if line < 1 || line > len(x.starts) {
		return 0, false
	}

	return x.starts[line-1], true
}

// Extract returns the text of r, line breaks included.
func (x *LineIndex) Extract(r LineRange) (string, error) {
	if r.Empty() {
		return "", nil
	}

	start, ok := x.Offset(r.Start)
	if !ok {
		return "", fmt.Errorf("%w: %d (have %d)", ErrLineOutOfRange, r.Start, x.LineCount())
	}

	if r.End > x.LineCount() {
		return "", fmt.Errorf("%w: %d (have %d)", ErrLineOutOfRange, r.End, x.LineCount())
	}

	end := len(x.text)
	if next, ok := x.Offset(r.End + 1); ok {
		end = next
	}

	return x.text[start:end], nil
}

// ExtractLines returns lines r of text, line breaks included.
func ExtractLines(text string, r LineRange) (string, error) {
	return NewLineIndex(text).Extract(r)
}

// PreambleLines returns the lines between the delimiters of a parsed,
// unmodified document. The range is empty for an empty front matter block.
func (d Document) PreambleLines() (LineRange, error) {
	if d.closing == 0 {
		return LineRange{}, ErrNoSourceLines
	}

	return LineRange{Start: 2, End: d.closing - 1}, nil
}

// KeyLines returns the lines of the top-level pair stored under key, from
// its key line through its value. Blank and comment lines that trail the
// value are not included. It needs a parsed, unmodified document.
func (d Document) KeyLines(key string) (LineRange, error) {
	if d.closing == 0 {
		return LineRange{}, ErrNoSourceLines
	}

	pairs := d.preamble.Pairs()

	i := d.preamble.Index(node.Scalar(key))
	if i < 0 {
		return LineRange{}, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}

	// Node lines count from the first front matter line, which is line 2.
	r := LineRange{Start: pairs[i].Key.Line() + 1, End: d.closing - 1}

	if i+1 < len(pairs) {
		next := pairs[i+1].Key.Line() + 1
		if next > r.Start {
			r.End = next - 1
		} else {
			// Both keys share a line, as in a flow mapping.
			r.End = r.Start
		}
	}

	idx := NewLineIndex(d.source)

	for r.End > r.Start {
		text, err := idx.Extract(LineRange{Start: r.End, End: r.End})
		if err != nil {
			return LineRange{}, err
		}

		trimmed := strings.TrimSpace(text)
		if trimmed != "" && !strings.HasPrefix(trimmed, "#") && trimmed != "..." {
			break
		}

		r.End--
	}

	return r, nil
}
