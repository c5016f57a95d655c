package yamlcodec

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/DandyLyons/frontrange/pkg/node"
	"github.com/DandyLyons/frontrange/pkg/render"
)

// ErrUnknownKind is returned when a node carries a kind the emitter does not
// know how to write.
var ErrUnknownKind = errors.New("unknown node kind")

// maxImplicitKey is the longest key YAML allows without the "? " indicator.
const maxImplicitKey = 1024

// Emitter writes node trees as YAML text.
type Emitter struct{}

// Emit renders n under p.
func (Emitter) Emit(n node.Node, p render.Profile) (string, error) {
	return Emit(n, p)
}

// Emit renders n as a YAML document under p. The output always ends with a
// line break and uses p.LineBreak throughout.
//
// A scalar whose requested style cannot represent its text falls back to a
// more permissive style: plain, then single-quoted, then double-quoted;
// literal and folded go straight to double-quoted. Non-string scalars that
// are plain keep their plain form under every forced style.
//
// SortKeys keeps an anchored pair ahead of the siblings that alias it. A
// tree that still puts an alias before its anchor fails with
// ErrAliasBeforeAnchor.
func Emit(n node.Node, p render.Profile) (string, error) {
	err := p.Validate()
	if err != nil {
		return "", fmt.Errorf("emit: %w", err)
	}

	if p.SortKeys {
		n = sortKeys(n)
	}

	if err := checkAliasOrder(n); err != nil {
		return "", err
	}

	e := &emitter{p: p}

	if p.ExplicitStart {
		e.b.WriteString("---\n")
	}

	e.root(n)

	if e.err != nil {
		return "", e.err
	}

	if p.ExplicitEnd {
		e.b.WriteString("...\n")
	}

	out := e.b.String()
	if lb := p.LineBreak.Bytes(); lb != "\n" {
		out = strings.ReplaceAll(out, "\n", lb)
	}

	return out, nil
}

type emitter struct {
	p   render.Profile
	b   strings.Builder
	err error
}

func (e *emitter) fail(n node.Node) {
	if e.err == nil {
		e.err = fmt.Errorf("emit: %w: %s", ErrUnknownKind, n.Kind())
	}
}

func (e *emitter) indent(col int) {
	for range col {
		e.b.WriteByte(' ')
	}
}

// column returns the 0-based column the next byte will be written at.
func (e *emitter) column() int {
	s := e.b.String()

	return len(s) - strings.LastIndexByte(s, '\n') - 1
}

func (e *emitter) root(n node.Node) {
	if e.p.Canonical {
		e.canonical(n, 0)
		e.b.WriteByte('\n')

		return
	}

	switch n.Kind() {
	case node.KindMapping:
		if n.Len() == 0 || e.mappingFlow(n) {
			e.flowWrapped(n, 0)
			e.b.WriteByte('\n')

			return
		}

		if n.Anchor() != "" {
			e.b.WriteString("&" + n.Anchor() + "\n")
		}

		e.blockMapping(n.Mapping(), 0, false)
	case node.KindSequence:
		if n.Len() == 0 || e.sequenceFlow(n) {
			e.flowWrapped(n, 0)
			e.b.WriteByte('\n')

			return
		}

		if n.Anchor() != "" {
			e.b.WriteString("&" + n.Anchor() + "\n")
		}

		e.blockSequence(n.Items(), 0, false)
	case node.KindScalar:
		if n.Anchor() != "" {
			e.b.WriteString("&" + n.Anchor() + " ")
		}

		e.blockScalar(n, 0)
	case node.KindAlias:
		e.b.WriteString("*" + n.AliasName() + "\n")
	default:
		e.fail(n)
	}
}

func (e *emitter) sequenceFlow(n node.Node) bool {
	switch e.p.SequenceStyle {
	case render.CollectionFlow:
		return true
	case render.CollectionBlock:
		return false
	default:
		return n.CollectionStyle() == node.CollectionFlow
	}
}

func (e *emitter) mappingFlow(n node.Node) bool {
	switch e.p.MappingStyle {
	case render.CollectionFlow:
		return true
	case render.CollectionBlock:
		return false
	default:
		return n.CollectionStyle() == node.CollectionFlow
	}
}

func (e *emitter) blockMapping(m node.Mapping, col int, inlineFirst bool) {
	for i, pair := range m.Pairs() {
		if i > 0 || !inlineFirst {
			e.indent(col)
		}

		if key, ok := e.simpleKey(pair.Key); ok {
			e.b.WriteString(key)
			e.b.WriteByte(':')
			e.entry(pair.Value, col, false)

			continue
		}

		e.b.WriteString("? ")
		e.b.WriteString(e.flow(pair.Key))
		e.b.WriteByte('\n')
		e.indent(col)
		e.b.WriteByte(':')
		e.entry(pair.Value, col, false)
	}
}

func (e *emitter) blockSequence(items []node.Node, col int, inlineFirst bool) {
	for i, item := range items {
		if i > 0 || !inlineFirst {
			e.indent(col)
		}

		e.b.WriteByte('-')
		e.entry(item, col, true)
	}
}

// entry writes a value after a "key:" or "-" indicator at column col,
// finishing the line and any nested block lines.
func (e *emitter) entry(n node.Node, col int, inSequence bool) {
	anchor := n.Anchor()

	switch n.Kind() {
	case node.KindScalar:
		if anchor != "" {
			e.b.WriteString(" &" + anchor)
		}

		style := e.chooseStyle(n, false, false)
		if style == node.StylePlain && n.Text() == "" {
			e.b.WriteByte('\n')

			return
		}

		e.b.WriteByte(' ')
		e.blockScalar(n, col)
	case node.KindAlias:
		e.b.WriteString(" *" + n.AliasName() + "\n")
	case node.KindSequence:
		if n.Len() == 0 || e.sequenceFlow(n) {
			e.b.WriteByte(' ')
			e.flowWrapped(n, col)
			e.b.WriteByte('\n')

			return
		}

		if inSequence && anchor == "" {
			e.b.WriteByte(' ')
			e.blockSequence(n.Items(), col+2, true)

			return
		}

		if anchor != "" {
			e.b.WriteString(" &" + anchor)
		}

		e.b.WriteByte('\n')
		e.blockSequence(n.Items(), col+e.p.Indent, false)
	case node.KindMapping:
		if n.Len() == 0 || e.mappingFlow(n) {
			e.b.WriteByte(' ')
			e.flowWrapped(n, col)
			e.b.WriteByte('\n')

			return
		}

		if inSequence && anchor == "" {
			e.b.WriteByte(' ')
			e.blockMapping(n.Mapping(), col+2, true)

			return
		}

		if anchor != "" {
			e.b.WriteString(" &" + anchor)
		}

		e.b.WriteByte('\n')
		e.blockMapping(n.Mapping(), col+e.p.Indent, false)
	default:
		e.fail(n)
	}
}

// blockScalar writes a scalar in block context, ending the line. Block
// styles put their content at col+indent.
func (e *emitter) blockScalar(n node.Node, col int) {
	style := e.chooseStyle(n, false, false)

	switch style {
	case node.StyleLiteral:
		e.literal(n.Text(), col+e.p.Indent)
	case node.StyleFolded:
		e.folded(n.Text(), col+e.p.Indent)
	default:
		e.b.WriteString(e.quote(n.Text(), style))
		e.b.WriteByte('\n')
	}
}

func (e *emitter) simpleKey(k node.Node) (string, bool) {
	var out string

	switch k.Kind() {
	case node.KindScalar:
		out = e.inline(k, false, true)
	case node.KindAlias:
		// ":" may belong to an alias name, so the separator needs a space.
		out = "*" + k.AliasName() + " "
	default:
		return "", false
	}

	if len(out) > maxImplicitKey {
		return "", false
	}

	return out, true
}

// inline renders a scalar on a single line with its anchor, if any.
func (e *emitter) inline(n node.Node, flow, key bool) string {
	var out string

	if n.Text() == "" && !n.Style().Quoted() && (flow || key) {
		// An empty null cannot stand alone here; the tag keeps its type.
		out = `!!null ""`
	} else {
		out = e.quote(n.Text(), e.chooseStyle(n, flow, key))
	}

	if n.Anchor() != "" {
		out = "&" + n.Anchor() + " " + out
	}

	return out
}

func (e *emitter) quote(text string, style node.ScalarStyle) string {
	switch style {
	case node.StyleSingleQuoted:
		return "'" + strings.ReplaceAll(text, "'", "''") + "'"
	case node.StyleDoubleQuoted:
		return e.doubleQuoted(text)
	default:
		return text
	}
}

// flow renders n on a single line in flow context.
func (e *emitter) flow(n node.Node) string {
	prefix := ""
	if n.Anchor() != "" && n.Kind() != node.KindScalar {
		prefix = "&" + n.Anchor() + " "
	}

	switch n.Kind() {
	case node.KindScalar:
		return e.inline(n, true, false)
	case node.KindAlias:
		return "*" + n.AliasName()
	case node.KindSequence:
		return prefix + "[" + strings.Join(e.flowParts(n), ", ") + "]"
	case node.KindMapping:
		return prefix + "{" + strings.Join(e.flowParts(n), ", ") + "}"
	default:
		e.fail(n)

		return ""
	}
}

// flowParts renders the entries of a sequence or mapping in flow context.
func (e *emitter) flowParts(n node.Node) []string {
	if n.IsSequence() {
		items := n.Items()
		parts := make([]string, len(items))

		for i, item := range items {
			parts[i] = e.flow(item)
		}

		return parts
	}

	pairs := n.Mapping().Pairs()
	parts := make([]string, len(pairs))

	for i, pair := range pairs {
		parts[i] = e.flowKey(pair.Key) + ": " + e.flow(pair.Value)
	}

	return parts
}

func (e *emitter) flowKey(k node.Node) string {
	switch k.Kind() {
	case node.KindScalar:
		return e.inline(k, true, true)
	case node.KindAlias:
		return "*" + k.AliasName() + " "
	default:
		return "? " + e.flow(k)
	}
}

// flowWrapped writes a flow collection starting at the current position.
// With a width set, entries that would cross it move to continuation lines
// indented one level past col.
func (e *emitter) flowWrapped(n node.Node, col int) {
	single := e.flow(n)
	if e.p.Width <= 0 || n.Len() == 0 || e.column()+len(single) <= e.p.Width {
		e.b.WriteString(single)

		return
	}

	open, closing := "[", "]"
	if n.IsMapping() {
		open, closing = "{", "}"
	}

	if n.Anchor() != "" {
		e.b.WriteString("&" + n.Anchor() + " ")
	}

	e.b.WriteString(open)

	parts := e.flowParts(n)
	cont := col + e.p.Indent

	for i, part := range parts {
		piece := part + ","
		if i == len(parts)-1 {
			piece = part + closing
		}

		if i > 0 {
			if e.column()+1+len(piece) > e.p.Width {
				e.b.WriteByte('\n')
				e.indent(cont)
			} else {
				e.b.WriteByte(' ')
			}
		}

		e.b.WriteString(piece)
	}
}

func (e *emitter) canonical(n node.Node, col int) {
	if n.Anchor() != "" && n.Kind() != node.KindAlias {
		e.b.WriteString("&" + n.Anchor() + " ")
	}

	inner := col + e.p.Indent

	switch n.Kind() {
	case node.KindScalar:
		tag := node.TypeString.Tag()
		if !n.Style().Quoted() {
			tag = node.ResolvePlain(n.Text()).Tag()
		}

		e.b.WriteString(tag + " " + e.doubleQuoted(n.Text()))
	case node.KindAlias:
		e.b.WriteString("*" + n.AliasName())
	case node.KindSequence:
		if n.Len() == 0 {
			e.b.WriteString("!!seq []")

			return
		}

		e.b.WriteString("!!seq [\n")

		for _, item := range n.Items() {
			e.indent(inner)
			e.canonical(item, inner)
			e.b.WriteString(",\n")
		}

		e.indent(col)
		e.b.WriteByte(']')
	case node.KindMapping:
		if n.Len() == 0 {
			e.b.WriteString("!!map {}")

			return
		}

		e.b.WriteString("!!map {\n")

		for _, pair := range n.Mapping().Pairs() {
			e.indent(inner)
			e.b.WriteString("? ")
			e.canonical(pair.Key, inner)
			e.b.WriteByte('\n')
			e.indent(inner)
			e.b.WriteString(": ")
			e.canonical(pair.Value, inner)
			e.b.WriteString(",\n")
		}

		e.indent(col)
		e.b.WriteByte('}')
	default:
		e.fail(n)
	}
}

func isPrintable(r rune) bool {
	switch {
	case r == utf8.RuneError:
		return false
	case r >= 0x20 && r <= 0x7E:
		return true
	case r == 0x85:
		return true
	case r >= 0xA0 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return r != 0xFEFF
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	default:
		return false
	}
}

func isBreak(r rune) bool {
	return r == '\n' || r == '\r' || r == 0x85 || r == 0x2028 || r == 0x2029
}
