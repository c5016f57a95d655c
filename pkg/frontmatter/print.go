package frontmatter

import (
	"fmt"
	"strings"

	"github.com/DandyLyons/frontrange/pkg/node"
	"github.com/DandyLyons/frontrange/pkg/render"
	"github.com/DandyLyons/frontrange/pkg/yamlcodec"
)

// Emitter writes a node tree as YAML text ending in a line break.
type Emitter interface {
	Emit(n node.Node, p render.Profile) (string, error)
}

type printOptions struct {
	emitter Emitter
}

// PrintOption configures Print.
type PrintOption func(*printOptions)

// WithEmitter replaces the YAML emitter. A nil emitter is ignored.
func WithEmitter(e Emitter) PrintOption {
	return func(opts *printOptions) {
		if e != nil {
			opts.emitter = e
		}
	}
}

// Print renders d under p: the opening delimiter, the front matter, the
// closing delimiter and the body, unchanged.
//
// Delimiters and front matter use p.LineBreak; the body keeps its own line
// breaks. p.ExplicitStart is the one profile toggle with no visible effect:
// the opening delimiter already marks the YAML document start, so no "---"
// is added after it. p.ExplicitEnd writes "..." before the closing
// delimiter. An empty mapping prints as two adjacent delimiters.
// SortKeys sorts a copy; d is never changed. A byte order mark read by
// Parse is written back first.
func Print(d Document, p render.Profile, opts ...PrintOption) (string, error) {
	options := printOptions{emitter: yamlcodec.Emitter{}}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	err := p.Validate()
	if err != nil {
		return "", fmt.Errorf("print: %w", err)
	}

	lb := p.LineBreak.Bytes()

	var b strings.Builder

	if d.bom {
		b.WriteString(byteOrderMark)
	}

	b.WriteString(delimiter + lb)

	switch {
	case d.preamble.Len() > 0:
		emitProfile := p
		emitProfile.ExplicitStart = false

		text, err := options.emitter.Emit(node.FromMapping(d.preamble), emitProfile)
		if err != nil {
			return "", fmt.Errorf("print: %w", err)
		}

		b.WriteString(text)
	case p.ExplicitEnd:
		b.WriteString("..." + lb)
	}

	b.WriteString(delimiter + lb)
	b.WriteString(d.body)

	return b.String(), nil
}
