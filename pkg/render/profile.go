// Package render defines how a preamble is re-emitted as text.
//
// A [Profile] is a fully specified set of eleven formatting toggles. A
// [Partial] is one configuration source's opinion about any subset of them.
// [Resolve] merges partials lowest precedence first on top of [Defaults]:
//
//	profile := render.Resolve(globalCfg, projectCfg, flagOverrides)
//
// For every field the rightmost partial that sets it wins; fields nobody
// sets keep their default.
package render

import (
	"errors"
	"fmt"
	"strings"
)

// Default values for every Profile field.
const (
	DefaultIndent       = 2
	DefaultWidth        = 0 // unlimited
	DefaultAllowUnicode = true
)

// Indentation limits accepted by the emitter.
const (
	MinIndent = 1
	MaxIndent = 9
)

var (
	// ErrInvalidIndent is returned for an indent outside [MinIndent, MaxIndent].
	ErrInvalidIndent = errors.New("indent out of range")
	// ErrInvalidWidth is returned for a negative width.
	ErrInvalidWidth = errors.New("width must not be negative")
	// ErrUnknownStyle is returned when decoding an unknown enum name.
	ErrUnknownStyle = errors.New("unknown style")
)

// Profile is a fully specified rendering configuration. Build it with
// [Resolve] or [Defaults]; treat it as immutable afterwards.
type Profile struct {
	// Canonical emits the YAML canonical form: explicit tags, double-quoted
	// scalars, flow collections, explicit keys.
	Canonical bool
	// Indent is the number of spaces per nesting level.
	Indent int
	// Width is the preferred maximum line width. 0 disables wrapping.
	Width int
	// AllowUnicode emits non-ASCII characters as-is. When false they are
	// escaped inside double-quoted scalars.
	AllowUnicode bool
	// LineBreak selects the line terminator for the whole document.
	LineBreak LineBreak
	// ExplicitStart marks the start of the YAML document with "---".
	ExplicitStart bool
	// ExplicitEnd marks the end of the YAML document with "...".
	ExplicitEnd bool
	// SortKeys orders mapping keys before emission.
	SortKeys bool
	// SequenceStyle forces block or flow sequences.
	SequenceStyle CollectionStyle
	// MappingStyle forces block or flow mappings.
	MappingStyle CollectionStyle
	// ScalarStyle forces a scalar style where it can represent the value.
	ScalarStyle ScalarStyle
}

// Defaults returns the built-in profile.
func Defaults() Profile {
	return Profile{
		Canonical:     false,
		Indent:        DefaultIndent,
		Width:         DefaultWidth,
		AllowUnicode:  DefaultAllowUnicode,
		LineBreak:     LineBreakLF,
		ExplicitStart: false,
		ExplicitEnd:   false,
		SortKeys:      false,
		SequenceStyle: CollectionAutomatic,
		MappingStyle:  CollectionAutomatic,
		ScalarStyle:   ScalarAutomatic,
	}
}

// Validate reports out-of-range values.
func (p Profile) Validate() error {
	return p.Partial().Validate()
}

// Partial returns p with every field set.
func (p Profile) Partial() Partial {
	return Partial{
		Canonical:     &p.Canonical,
		Indent:        &p.Indent,
		Width:         &p.Width,
		AllowUnicode:  &p.AllowUnicode,
		LineBreak:     &p.LineBreak,
		ExplicitStart: &p.ExplicitStart,
		ExplicitEnd:   &p.ExplicitEnd,
		SortKeys:      &p.SortKeys,
		SequenceStyle: &p.SequenceStyle,
		MappingStyle:  &p.MappingStyle,
		ScalarStyle:   &p.ScalarStyle,
	}
}

// LineBreak is the line terminator convention.
type LineBreak uint8

// LineBreak values.
const (
	LineBreakLF LineBreak = iota
	LineBreakCRLF
	LineBreakCR
)

var lineBreakNames = []string{"lf", "crlf", "cr"}

// Bytes returns the terminator text.
func (lb LineBreak) Bytes() string {
	switch lb {
	case LineBreakCRLF:
		return "\r\n"
	case LineBreakCR:
		return "\r"
	default:
		return "\n"
	}
}

func (lb LineBreak) String() string { return enumName(lineBreakNames, int(lb)) }

// MarshalText implements encoding.TextMarshaler.
func (lb LineBreak) MarshalText() ([]byte, error) { return []byte(lb.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (lb *LineBreak) UnmarshalText(text []byte) error {
	i, err := enumIndex(lineBreakNames, "line break", string(text))
	if err != nil {
		return err
	}

	*lb = LineBreak(i)

	return nil
}

// CollectionStyle selects block or flow layout for sequences and mappings.
type CollectionStyle uint8

// CollectionStyle values. CollectionAutomatic keeps each node's own
// preference and defaults to block.
const (
	CollectionAutomatic CollectionStyle = iota
	CollectionBlock
	CollectionFlow
)

var collectionNames = []string{"automatic", "block", "flow"}

func (s CollectionStyle) String() string { return enumName(collectionNames, int(s)) }

// MarshalText implements encoding.TextMarshaler.
func (s CollectionStyle) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *CollectionStyle) UnmarshalText(text []byte) error {
	i, err := enumIndex(collectionNames, "collection style", string(text))
	if err != nil {
		return err
	}

	*s = CollectionStyle(i)

	return nil
}

// ScalarStyle selects the quoting style for scalars.
type ScalarStyle uint8

// ScalarStyle values. ScalarAutomatic keeps each scalar's own style and
// prefers plain for new values.
const (
	ScalarAutomatic ScalarStyle = iota
	ScalarPlain
	ScalarSingleQuoted
	ScalarDoubleQuoted
	ScalarLiteral
	ScalarFolded
)

var scalarNames = []string{"automatic", "plain", "single-quoted", "double-quoted", "literal", "folded"}

func (s ScalarStyle) String() string { return enumName(scalarNames, int(s)) }

// MarshalText implements encoding.TextMarshaler.
func (s ScalarStyle) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *ScalarStyle) UnmarshalText(text []byte) error {
	i, err := enumIndex(scalarNames, "scalar style", string(text))
	if err != nil {
		return err
	}

	*s = ScalarStyle(i)

	return nil
}

func enumName(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return fmt.Sprintf("invalid(%d)", i)
	}

	return names[i]
}

func enumIndex(names []string, label, text string) (int, error) {
	want := strings.ToLower(strings.TrimSpace(text))
	for i, name := range names {
		if name == want {
			return i, nil
		}
	}

	return 0, fmt.Errorf("%w: %s %q (want one of %s)", ErrUnknownStyle, label, text, strings.Join(names, ", "))
}
