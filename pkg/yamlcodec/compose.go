// Package yamlcodec converts between YAML text and [node.Node] trees.
//
// [Composer] reads YAML with gopkg.in/yaml.v3 and keeps what a faithful
// round trip needs: key order, scalar styles, block/flow layout, anchors,
// aliases and source positions. [Emitter] writes a tree back out under a
// [render.Profile].
package yamlcodec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/DandyLyons/frontrange/pkg/node"
)

var (
	// ErrNotComposable is returned when the text is not valid YAML or cannot be
	// represented as a node tree (for example a mapping with duplicate keys).
	ErrNotComposable = errors.New("not composable")
	// ErrEmptyDocument is returned when the text holds no YAML value.
	ErrEmptyDocument = errors.New("empty document")
)

// ComposeError reports a YAML syntax or structure error with the 1-based
// line it was found on (0 when unknown).
type ComposeError struct {
	Line int
	Msg  string
}

func (e *ComposeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}

	return e.Msg
}

// Unwrap lets errors.Is match ErrNotComposable.
func (e *ComposeError) Unwrap() error {
	return ErrNotComposable
}

// Composer turns YAML text into a node tree.
type Composer struct{}

// Compose parses src and returns its root node.
func (Composer) Compose(src []byte) (node.Node, error) {
	return Compose(src)
}

// Compose parses src, which must hold a single YAML document.
//
// Empty input, whitespace, or comments only yield ErrEmptyDocument. Syntax
// errors, duplicate mapping keys and a second document after "..." or "---"
// yield a *ComposeError.
func Compose(src []byte) (node.Node, error) {
	dec := yaml.NewDecoder(bytes.NewReader(src))

	var doc yaml.Node

	err := dec.Decode(&doc)
	if errors.Is(err, io.EOF) {
		return node.Node{}, ErrEmptyDocument
	}

	if err != nil {
		return node.Node{}, composeErr(err)
	}

	for {
		var extra yaml.Node

		err = dec.Decode(&extra)
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return node.Node{}, composeErr(err)
		}

		if !emptyDocument(&extra) {
			return node.Node{}, &ComposeError{Line: documentLine(&extra), Msg: "more than one YAML document"}
		}
	}

	if emptyDocument(&doc) {
		return node.Node{}, ErrEmptyDocument
	}

	root := doc.Content[0]

	return convert(root)
}

func convert(y *yaml.Node) (node.Node, error) {
	var out node.Node

	switch y.Kind {
	case yaml.ScalarNode:
		out = node.StyledScalar(y.Value, scalarStyle(y))
	case yaml.AliasNode:
		out = node.Alias(y.Value)
	case yaml.SequenceNode:
		items := make([]node.Node, 0, len(y.Content))

		for _, child := range y.Content {
			item, err := convert(child)
			if err != nil {
				return node.Node{}, err
			}

			items = append(items, item)
		}

		out = node.Sequence(items...).WithCollectionStyle(collectionStyle(y))
	case yaml.MappingNode:
		var m node.Mapping

		for i := 0; i+1 < len(y.Content); i += 2 {
			key, err := convert(y.Content[i])
			if err != nil {
				return node.Node{}, err
			}

			value, err := convert(y.Content[i+1])
			if err != nil {
				return node.Node{}, err
			}

			err = m.Insert(key, value)
			if err != nil {
				return node.Node{}, &ComposeError{Line: y.Content[i].Line, Msg: err.Error()}
			}
		}

		out = node.FromMapping(m).WithCollectionStyle(collectionStyle(y))
	case yaml.DocumentNode:
		if len(y.Content) == 0 {
			return node.Node{}, ErrEmptyDocument
		}

		return convert(y.Content[0])
	default:
		return node.Node{}, &ComposeError{Line: y.Line, Msg: fmt.Sprintf("unsupported yaml node kind %d", y.Kind)}
	}

	if y.Anchor != "" && y.Kind != yaml.AliasNode {
		out = out.WithAnchor(y.Anchor)
	}

	return out.WithPosition(y.Line, y.Column), nil
}

func scalarStyle(y *yaml.Node) node.ScalarStyle {
	style := y.Style &^ (yaml.TaggedStyle | yaml.FlowStyle)

	switch style {
	case yaml.SingleQuotedStyle:
		return node.StyleSingleQuoted
	case yaml.DoubleQuotedStyle:
		if explicitCoreTag(y) {
			return node.StylePlain
		}

		return node.StyleDoubleQuoted
	case yaml.LiteralStyle:
		return node.StyleLiteral
	case yaml.FoldedStyle:
		return node.StyleFolded
	default:
		// "!!str 123" must stay a string once the tag is gone.
		if y.Style&yaml.TaggedStyle != 0 && y.Tag == "!!str" && node.AmbiguousPlain(y.Value) {
			return node.StyleDoubleQuoted
		}

		return node.StylePlain
	}
}

// explicitCoreTag reports whether a quoted scalar carries a non-string core
// tag that its text resolves to when plain, as canonical output does
// (!!int "1").
func explicitCoreTag(y *yaml.Node) bool {
	if y.Style&yaml.TaggedStyle == 0 {
		return false
	}

	resolved := node.ResolvePlain(y.Value)

	return resolved != node.TypeString && y.Tag == resolved.Tag()
}

func collectionStyle(y *yaml.Node) node.CollectionStyle {
	if y.Style&yaml.FlowStyle != 0 {
		return node.CollectionFlow
	}

	return node.CollectionBlock
}

var yamlLinePattern = regexp.MustCompile(`line (\d+): (.*)`)

// emptyDocument reports whether doc holds no value: nothing at all, or
// only comments.
func emptyDocument(doc *yaml.Node) bool {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return true
	}

	root := doc.Content[0]

	return root.Kind == yaml.ScalarNode && root.Value == "" && root.Tag == "!!null" && root.Anchor == ""
}

// documentLine is the line a document's content starts on.
func documentLine(doc *yaml.Node) int {
	if len(doc.Content) > 0 && doc.Content[0].Line > 0 {
		return doc.Content[0].Line
	}

	return doc.Line
}

func composeErr(err error) error {
	msg := strings.TrimPrefix(err.Error(), "yaml: ")

	if m := yamlLinePattern.FindStringSubmatch(msg); m != nil {
		line, convErr := strconv.Atoi(m[1])
		if convErr == nil {
			return &ComposeError{Line: line, Msg: m[2]}
		}
	}

	return &ComposeError{Msg: msg}
}
