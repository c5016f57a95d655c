package yamlcodec

import (
	"fmt"
	"strings"

	"github.com/DandyLyons/frontrange/pkg/node"
	"github.com/DandyLyons/frontrange/pkg/render"
)

// chooseStyle picks the style n is written in. The result is a pure function
// of the node, the profile and the context.
func (e *emitter) chooseStyle(n node.Node, flow, key bool) node.ScalarStyle {
	text := n.Text()

	if !n.Style().Quoted() && n.Type() != node.TypeString {
		if text == "" && (flow || key) {
			return node.StyleDoubleQuoted
		}

		return node.StylePlain
	}

	want := n.Style()
	if forced := e.forcedStyle(); forced != node.StyleUnspecified {
		// Keys never take block styles, so a forced block style leaves them be.
		if !key || (forced != node.StyleLiteral && forced != node.StyleFolded) {
			want = forced
		}
	}

	switch want {
	case node.StyleLiteral:
		if !flow && !key && e.literalOK(text) {
			return node.StyleLiteral
		}

		return node.StyleDoubleQuoted
	case node.StyleFolded:
		if !flow && !key && e.foldedOK(text) {
			return node.StyleFolded
		}

		return node.StyleDoubleQuoted
	case node.StyleDoubleQuoted:
		return node.StyleDoubleQuoted
	case node.StyleSingleQuoted:
		if e.singleOK(text) {
			return node.StyleSingleQuoted
		}

		return node.StyleDoubleQuoted
	default:
		// Plain text from the source resolved to a string already; only new
		// or requoted text must avoid forms other parsers read as non-strings.
		if e.plainOK(text, flow, n.Style() != node.StylePlain) {
			return node.StylePlain
		}

		if e.singleOK(text) {
			return node.StyleSingleQuoted
		}

		return node.StyleDoubleQuoted
	}
}

func (e *emitter) forcedStyle() node.ScalarStyle {
	switch e.p.ScalarStyle {
	case render.ScalarPlain:
		return node.StylePlain
	case render.ScalarSingleQuoted:
		return node.StyleSingleQuoted
	case render.ScalarDoubleQuoted:
		return node.StyleDoubleQuoted
	case render.ScalarLiteral:
		return node.StyleLiteral
	case render.ScalarFolded:
		return node.StyleFolded
	default:
		return node.StyleUnspecified
	}
}

// textOK reports whether every rune can appear unescaped.
func (e *emitter) textOK(text string, allowNewline bool) bool {
	for _, r := range text {
		if r == '\n' && allowNewline {
			continue
		}

		if isBreak(r) || !isPrintable(r) || r == '\t' {
			return false
		}

		if r > 0x7E && !e.p.AllowUnicode {
			return false
		}
	}

	return true
}

// plainOK reports whether a string scalar survives being written plain.
// strict also rejects YAML 1.1 forms such as yes/no.
func (e *emitter) plainOK(text string, flow, strict bool) bool {
	if text == "" || !e.textOK(text, false) || node.ResolvePlain(text) != node.TypeString {
		return false
	}

	if strict && node.AmbiguousPlain(text) {
		return false
	}

	if text[0] == ' ' || text[len(text)-1] == ' ' {
		return false
	}

	if strings.HasPrefix(text, "---") || strings.HasPrefix(text, "...") {
		return false
	}

	switch text[0] {
	case '#', ',', '[', ']', '{', '}', '&', '*', '!', '|', '>', '\'', '"', '%', '@', '`':
		return false
	case '-', '?', ':':
		if flow || len(text) == 1 || text[1] == ' ' {
			return false
		}
	}

	if strings.Contains(text, ": ") || strings.Contains(text, " #") || strings.HasSuffix(text, ":") {
		return false
	}

	if flow && strings.ContainsAny(text, ",[]{}:") {
		return false
	}

	return true
}

func (e *emitter) singleOK(text string) bool {
	return e.textOK(text, false)
}

// literalOK reports whether text can be written as a "|" block scalar
// without an indentation indicator.
func (e *emitter) literalOK(text string) bool {
	if text == "" || strings.HasPrefix(text, "\n") || !e.textOK(text, true) {
		return false
	}

	if text[0] == ' ' {
		return false
	}

	for _, line := range strings.Split(text, "\n") {
		if line != "" && strings.TrimLeft(line, " ") == "" {
			return false
		}
	}

	return true
}

// foldedOK adds the folded constraints: lines starting or ending with a
// space change meaning when folded.
func (e *emitter) foldedOK(text string) bool {
	if !e.literalOK(text) {
		return false
	}

	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, " ") || strings.HasSuffix(line, " ") {
			return false
		}
	}

	return true
}

// chomping returns the block chomping indicator that reproduces the
// trailing line breaks of text.
func chomping(text string) string {
	switch {
	case !strings.HasSuffix(text, "\n"):
		return "-"
	case strings.HasSuffix(text, "\n\n"):
		return "+"
	default:
		return ""
	}
}

func splitBlock(text string) (lines []string, trailing int) {
	body := strings.TrimRight(text, "\n")

	return strings.Split(body, "\n"), len(text) - len(body)
}

func (e *emitter) literal(text string, col int) {
	e.b.WriteString("|" + chomping(text) + "\n")

	lines, trailing := splitBlock(text)
	for _, line := range lines {
		if line != "" {
			e.indent(col)
			e.b.WriteString(line)
		}

		e.b.WriteByte('\n')
	}

	for i := 1; i < trailing; i++ {
		e.b.WriteByte('\n')
	}
}

// folded writes text as a ">" block scalar. A run of k line breaks between
// two content lines is written as k empty lines; with a width set, long
// lines are broken at single spaces.
func (e *emitter) folded(text string, col int) {
	e.b.WriteString(">" + chomping(text) + "\n")

	lines, trailing := splitBlock(text)
	for i, line := range lines {
		if i > 0 && line != "" {
			e.b.WriteByte('\n')
		}

		if line == "" {
			e.b.WriteByte('\n')

			continue
		}

		for _, segment := range e.wrap(line, col) {
			e.indent(col)
			e.b.WriteString(segment)
			e.b.WriteByte('\n')
		}
	}

	for i := 1; i < trailing; i++ {
		e.b.WriteByte('\n')
	}
}

// wrap breaks line at single spaces so that each piece fits the width
// starting at col. Words longer than the width stay whole.
func (e *emitter) wrap(line string, col int) []string {
	limit := e.p.Width - col
	if e.p.Width <= 0 || len(line) <= limit {
		return []string{line}
	}

	var out []string

	start, lastBreak := 0, -1

	for i := 1; i < len(line)-1; i++ {
		if line[i] != ' ' || line[i-1] == ' ' || line[i+1] == ' ' {
			continue
		}

		if i-start > limit && lastBreak > start {
			out = append(out, line[start:lastBreak])
			start = lastBreak + 1
		}

		lastBreak = i
	}

	if len(line)-start > limit && lastBreak > start {
		out = append(out, line[start:lastBreak])
		start = lastBreak + 1
	}

	return append(out, line[start:])
}

func (e *emitter) doubleQuoted(text string) string {
	var b strings.Builder

	b.WriteByte('"')

	for _, r := range text {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case 0:
			b.WriteString(`\0`)
		case 0x07:
			b.WriteString(`\a`)
		case '\b':
			b.WriteString(`\b`)
		case 0x0B:
			b.WriteString(`\v`)
		case '\f':
			b.WriteString(`\f`)
		case 0x1B:
			b.WriteString(`\e`)
		case 0x85:
			b.WriteString(`\N`)
		case 0x2028:
			b.WriteString(`\L`)
		case 0x2029:
			b.WriteString(`\P`)
		default:
			switch {
			case isPrintable(r) && (r <= 0x7E || e.p.AllowUnicode):
				b.WriteRune(r)
			case r <= 0xFF:
				fmt.Fprintf(&b, `\x%02X`, r)
			case r <= 0xFFFF:
				fmt.Fprintf(&b, `\u%04X`, r)
			default:
				fmt.Fprintf(&b, `\U%08X`, r)
			}
		}
	}

	b.WriteByte('"')

	return b.String()
}
