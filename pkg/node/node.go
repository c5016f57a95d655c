// Package node models parsed YAML data as an immutable tagged union.
//
// A [Node] is one of four kinds:
//
//	KindScalar    text plus the quoting style it was written in
//	KindSequence  ordered list of nodes
//	KindMapping   ordered, duplicate-free key/value pairs ([Mapping])
//	KindAlias     reference to an anchor defined elsewhere
//
// Nodes have value semantics. Accessors that expose nested data return
// copies, so a caller can never observe a change made through another holder.
// Style, anchor and source position are presentation metadata: they are
// preserved through a parse/print round trip but ignored by [Node.Equal].
package node

import (
	"fmt"
	"slices"
	"strings"
)

// Kind identifies which variant of [Node] is populated.
type Kind uint8

// Kind values. The zero value is KindScalar so that Node{} is an empty
// unspecified scalar.
const (
	KindScalar Kind = iota
	KindSequence
	KindMapping
	KindAlias
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	case KindAlias:
		return "alias"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ScalarStyle records how a scalar was (or should be) written.
type ScalarStyle uint8

// ScalarStyle values.
const (
	StyleUnspecified ScalarStyle = iota
	StylePlain
	StyleSingleQuoted
	StyleDoubleQuoted
	StyleLiteral
	StyleFolded
)

func (s ScalarStyle) String() string {
	switch s {
	case StyleUnspecified:
		return "unspecified"
	case StylePlain:
		return "plain"
	case StyleSingleQuoted:
		return "single-quoted"
	case StyleDoubleQuoted:
		return "double-quoted"
	case StyleLiteral:
		return "literal"
	case StyleFolded:
		return "folded"
	default:
		return fmt.Sprintf("style(%d)", uint8(s))
	}
}

// Quoted reports whether the style forces the scalar to be a string.
func (s ScalarStyle) Quoted() bool {
	return s == StyleSingleQuoted || s == StyleDoubleQuoted || s == StyleLiteral || s == StyleFolded
}

// CollectionStyle records whether a sequence or mapping was written in block
// or flow form.
type CollectionStyle uint8

// CollectionStyle values.
const (
	CollectionUnspecified CollectionStyle = iota
	CollectionBlock
	CollectionFlow
)

func (s CollectionStyle) String() string {
	switch s {
	case CollectionUnspecified:
		return "unspecified"
	case CollectionBlock:
		return "block"
	case CollectionFlow:
		return "flow"
	default:
		return fmt.Sprintf("collection(%d)", uint8(s))
	}
}

// Node is an immutable YAML value. Construct nodes with [Scalar],
// [StyledScalar], [Sequence], [FromMapping] or [Alias].
type Node struct {
	kind       Kind
	text       string // scalar text, or alias name
	style      ScalarStyle
	collection CollectionStyle
	items      []Node
	mapping    Mapping
	anchor     string
	line       int
	column     int
}

// Scalar returns a scalar node with no style preference.
func Scalar(text string) Node {
	return Node{kind: KindScalar, text: text}
}

// StyledScalar returns a scalar node that prefers the given style.
func StyledScalar(text string, style ScalarStyle) Node {
	return Node{kind: KindScalar, text: text, style: style}
}

// Sequence returns a sequence node holding copies of items.
func Sequence(items ...Node) Node {
	return Node{kind: KindSequence, items: slices.Clone(items)}
}

// FromMapping returns a mapping node holding a copy of m.
func FromMapping(m Mapping) Node {
	return Node{kind: KindMapping, mapping: m.Clone()}
}

// Alias returns an alias node referring to the anchor name.
func Alias(name string) Node {
	return Node{kind: KindAlias, text: name}
}

// Kind returns the populated variant.
func (n Node) Kind() Kind { return n.kind }

// IsScalar reports whether n is a scalar.
func (n Node) IsScalar() bool { return n.kind == KindScalar }

// IsSequence reports whether n is a sequence.
func (n Node) IsSequence() bool { return n.kind == KindSequence }

// IsMapping reports whether n is a mapping.
func (n Node) IsMapping() bool { return n.kind == KindMapping }

// IsAlias reports whether n is an alias.
func (n Node) IsAlias() bool { return n.kind == KindAlias }

// Text returns the scalar text. It is empty for non-scalars.
func (n Node) Text() string {
	if n.kind != KindScalar {
		return ""
	}

	return n.text
}

// AliasName returns the referenced anchor for alias nodes.
func (n Node) AliasName() string {
	if n.kind != KindAlias {
		return ""
	}

	return n.text
}

// Style returns the scalar style. Non-scalars report StyleUnspecified.
func (n Node) Style() ScalarStyle {
	if n.kind != KindScalar {
		return StyleUnspecified
	}

	return n.style
}

// CollectionStyle returns the block/flow preference of a sequence or mapping.
func (n Node) CollectionStyle() CollectionStyle {
	if n.kind != KindSequence && n.kind != KindMapping {
		return CollectionUnspecified
	}

	return n.collection
}

// Anchor returns the anchor name defined on n, if any.
func (n Node) Anchor() string { return n.anchor }

// Line returns the 1-based source line n was composed from, or 0.
func (n Node) Line() int { return n.line }

// Column returns the 1-based source column n was composed from, or 0.
func (n Node) Column() int { return n.column }

// Len returns the number of items or pairs. Scalars and aliases report 0.
func (n Node) Len() int {
	switch n.kind {
	case KindSequence:
		return len(n.items)
	case KindMapping:
		return n.mapping.Len()
	default:
		return 0
	}
}

// Items returns a copy of the sequence items, or nil for non-sequences.
func (n Node) Items() []Node {
	if n.kind != KindSequence {
		return nil
	}

	return slices.Clone(n.items)
}

// Item returns the i-th sequence item.
func (n Node) Item(i int) (Node, bool) {
	if n.kind != KindSequence || i < 0 || i >= len(n.items) {
		return Node{}, false
	}

	return n.items[i], true
}

// Mapping returns a copy of the mapping, or an empty mapping for other kinds.
func (n Node) Mapping() Mapping {
	if n.kind != KindMapping {
		return Mapping{}
	}

	return n.mapping.Clone()
}

// AsScalar returns the scalar text and true when n is a scalar.
func (n Node) AsScalar() (string, bool) {
	if n.kind != KindScalar {
		return "", false
	}

	return n.text, true
}

// AsSequence returns a copy of the items and true when n is a sequence.
func (n Node) AsSequence() ([]Node, bool) {
	if n.kind != KindSequence {
		return nil, false
	}

	return slices.Clone(n.items), true
}

// AsMapping returns a copy of the mapping and true when n is a mapping.
func (n Node) AsMapping() (Mapping, bool) {
	if n.kind != KindMapping {
		return Mapping{}, false
	}

	return n.mapping.Clone(), true
}

// WithStyle returns a copy of a scalar with a different style. Other kinds
// are returned unchanged.
func (n Node) WithStyle(style ScalarStyle) Node {
	if n.kind == KindScalar {
		n.style = style
	}

	return n
}

// WithCollectionStyle returns a copy of a sequence or mapping with a
// different block/flow preference.
func (n Node) WithCollectionStyle(style CollectionStyle) Node {
	if n.kind == KindSequence || n.kind == KindMapping {
		n.collection = style
	}

	return n
}

// WithAnchor returns a copy of n carrying the anchor name.
func (n Node) WithAnchor(name string) Node {
	n.anchor = name

	return n
}

// WithPosition returns a copy of n carrying a source position.
func (n Node) WithPosition(line, column int) Node {
	n.line = line
	n.column = column

	return n
}

// WithItems returns a sequence holding copies of items, keeping the
// metadata of n when n is itself a sequence.
func (n Node) WithItems(items []Node) Node {
	if n.kind != KindSequence {
		return Sequence(items...)
	}

	n.items = slices.Clone(items)

	return n
}

// WithMapping returns a mapping node holding a copy of m, keeping the
// metadata of n when n is itself a mapping.
func (n Node) WithMapping(m Mapping) Node {
	if n.kind != KindMapping {
		return FromMapping(m)
	}

	n.mapping = m.Clone()

	return n
}

// Equal reports deep structural equality. Scalars compare by text only;
// style, anchors and positions are ignored.
func (n Node) Equal(other Node) bool {
	if n.kind != other.kind {
		return false
	}

	switch n.kind {
	case KindScalar, KindAlias:
		return n.text == other.text
	case KindSequence:
		return slices.EqualFunc(n.items, other.items, Node.Equal)
	case KindMapping:
		return n.mapping.Equal(other.mapping)
	default:
		return false
	}
}

// EqualFold is like [Node.Equal] but compares scalar text case-insensitively
// when n and other are both scalars.
func (n Node) EqualFold(other Node) bool {
	if n.kind == KindScalar && other.kind == KindScalar {
		return strings.EqualFold(n.text, other.text)
	}

	return n.Equal(other)
}

// Clone returns a deep copy of n.
func (n Node) Clone() Node {
	switch n.kind {
	case KindSequence:
		items := make([]Node, len(n.items))
		for i := range n.items {
			items[i] = n.items[i].Clone()
		}

		n.items = items
	case KindMapping:
		n.mapping = n.mapping.Clone()
	}

	return n
}

// String returns a compact single-line rendering for debugging and error
// messages. It is not valid YAML in general; use the yamlcodec emitter for
// that.
func (n Node) String() string {
	var b strings.Builder
	n.writeDebug(&b)

	return b.String()
}

func (n Node) writeDebug(b *strings.Builder) {
	switch n.kind {
	case KindScalar:
		if n.style == StylePlain || n.style == StyleUnspecified {
			b.WriteString(n.text)
		} else {
			fmt.Fprintf(b, "%q", n.text)
		}
	case KindAlias:
		b.WriteString("*")
		b.WriteString(n.text)
	case KindSequence:
		b.WriteString("[")

		for i, item := range n.items {
			if i > 0 {
				b.WriteString(", ")
			}

			item.writeDebug(b)
		}

		b.WriteString("]")
	case KindMapping:
		b.WriteString("{")

		for i, pair := range n.mapping.pairs {
			if i > 0 {
				b.WriteString(", ")
			}

			pair.Key.writeDebug(b)
			b.WriteString(": ")
			pair.Value.writeDebug(b)
		}

		b.WriteString("}")
	default:
		b.WriteString(n.kind.String())
	}
}
