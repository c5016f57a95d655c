package frontmatter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/DandyLyons/frontrange/pkg/node"
	"github.com/DandyLyons/frontrange/pkg/yamlcodec"
)

const (
	delimiter     = "---"
	byteOrderMark = "\ufeff"
)

// Composer turns front matter text into a node tree.
type Composer interface {
	Compose(src []byte) (node.Node, error)
}

type parseOptions struct {
	composer Composer
}

// ParseOption configures Parse.
type ParseOption func(*parseOptions)

// WithComposer replaces the YAML composer. A nil composer is ignored.
func WithComposer(c Composer) ParseOption {
	return func(opts *parseOptions) {
		if c != nil {
			opts.composer = c
		}
	}
}

// Parse splits text into front matter and body.
//
// The first line must be exactly "---", optionally preceded by a UTF-8 byte
// order mark that Print writes back, and the front matter runs to the next
// "---" line. Lines may end in LF, CRLF or CR. Everything after the closing
// delimiter's line break is the body, verbatim. Empty or comment-only front
// matter yields an empty mapping.
//
// Errors: ErrMissingOpeningDelimiter, ErrMissingClosingDelimiter, a
// *NotMappingError (ErrPreambleNotMapping) when the front matter is a list
// or scalar, and a *GrammarError (ErrPreambleGrammar) when the composer
// fails.
func Parse(text string, opts ...ParseOption) (Document, error) {
	options := parseOptions{composer: yamlcodec.Composer{}}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	lines := newLineScanner(text)

	first, ok := lines.next()
	hasBOM := ok && strings.HasPrefix(first.text, byteOrderMark)

	if !ok || strings.TrimPrefix(first.text, byteOrderMark) != delimiter {
		return Document{}, fmt.Errorf("parse: %w", ErrMissingOpeningDelimiter)
	}

	for {
		tok, ok := lines.next()
		if !ok {
			return Document{}, fmt.Errorf("parse: %w", ErrMissingClosingDelimiter)
		}

		if tok.text != delimiter {
			continue
		}

		preamble, err := compose(options.composer, text[first.next:tok.start])
		if err != nil {
			return Document{}, err
		}

		return Document{
			preamble: preamble,
			body:     text[tok.next:],
			bom:      hasBOM,
			source:   text,
			closing:  tok.num,
		}, nil
	}
}

func compose(c Composer, text string) (node.Mapping, error) {
	if isBlank(text) {
		return node.Mapping{}, nil
	}

	root, err := c.Compose([]byte(text))
	if err != nil {
		if errors.Is(err, yamlcodec.ErrEmptyDocument) {
			return node.Mapping{}, nil
		}

		grammarErr := &GrammarError{Err: err}

		var ce *yamlcodec.ComposeError
		if errors.As(err, &ce) && ce.Line > 0 {
			// The front matter starts on line 2, after the opening delimiter.
			grammarErr.Line = ce.Line + 1
		}

		return node.Mapping{}, fmt.Errorf("parse: %w", grammarErr)
	}

	m, ok := root.AsMapping()
	if !ok {
		return node.Mapping{}, fmt.Errorf("parse: %w", &NotMappingError{Kind: root.Kind()})
	}

	return m, nil
}

func isBlank(text string) bool {
	for i := range len(text) {
		switch text[i] {
		case ' ', '\t', '\n', '\r':
		default:
			return false
		}
	}

	return true
}

// lineToken is one line of text without its terminator.
type lineToken struct {
	text  string
	num   int // 1-based
	start int // offset of the first byte
	next  int // offset just past the terminator
}

type lineScanner struct {
	src string
	idx int
	num int
}

func newLineScanner(src string) *lineScanner {
	return &lineScanner{src: src}
}

// next returns the next line. LF, CRLF and a lone CR all end a line.
func (s *lineScanner) next() (lineToken, bool) {
	if s.idx >= len(s.src) {
		return lineToken{}, false
	}

	start := s.idx
	for s.idx < len(s.src) && s.src[s.idx] != '\n' && s.src[s.idx] != '\r' {
		s.idx++
	}

	end := s.idx

	if s.idx < len(s.src) {
		if s.src[s.idx] == '\r' && s.idx+1 < len(s.src) && s.src[s.idx+1] == '\n' {
			s.idx++
		}

		s.idx++
	}

	s.num++

	return lineToken{text: s.src[start:end], num: s.num, start: start, next: s.idx}, true
}
