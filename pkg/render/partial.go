package render

import "fmt"

// Partial is one source's formatting preferences. A nil field means the
// source has no opinion. JSON field names are the on-disk config keys.
type Partial struct {
	Canonical     *bool            `json:"canonical,omitempty"`
	Indent        *int             `json:"indent,omitempty"`
	Width         *int             `json:"width,omitempty"`
	AllowUnicode  *bool            `json:"allow_unicode,omitempty"` //nolint:tagliatelle // snake_case for config file
	LineBreak     *LineBreak       `json:"line_break,omitempty"`    //nolint:tagliatelle // snake_case for config file
	ExplicitStart *bool            `json:"explicit_start,omitempty"`
	ExplicitEnd   *bool            `json:"explicit_end,omitempty"`
	SortKeys      *bool            `json:"sort_keys,omitempty"`
	SequenceStyle *CollectionStyle `json:"sequence_style,omitempty"`
	MappingStyle  *CollectionStyle `json:"mapping_style,omitempty"`
	ScalarStyle   *ScalarStyle     `json:"scalar_style,omitempty"`
}

// Ptr returns a pointer to v, for building partials inline.
func Ptr[T any](v T) *T {
	return &v
}

// IsEmpty reports whether p sets no field.
func (p Partial) IsEmpty() bool {
	return p == Partial{}
}

// Validate reports out-of-range values among the fields p sets.
func (p Partial) Validate() error {
	if p.Indent != nil && (*p.Indent < MinIndent || *p.Indent > MaxIndent) {
		return fmt.Errorf("%w: %d (want %d..%d)", ErrInvalidIndent, *p.Indent, MinIndent, MaxIndent)
	}

	if p.Width != nil && *p.Width < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWidth, *p.Width)
	}

	if p.LineBreak != nil && int(*p.LineBreak) >= len(lineBreakNames) {
		return fmt.Errorf("%w: line break %d", ErrUnknownStyle, *p.LineBreak)
	}

	if p.SequenceStyle != nil && int(*p.SequenceStyle) >= len(collectionNames) {
		return fmt.Errorf("%w: sequence style %d", ErrUnknownStyle, *p.SequenceStyle)
	}

	if p.MappingStyle != nil && int(*p.MappingStyle) >= len(collectionNames) {
		return fmt.Errorf("%w: mapping style %d", ErrUnknownStyle, *p.MappingStyle)
	}

	if p.ScalarStyle != nil && int(*p.ScalarStyle) >= len(scalarNames) {
		return fmt.Errorf("%w: scalar style %d", ErrUnknownStyle, *p.ScalarStyle)
	}

	return nil
}

// Merge returns base with every field overlay sets replaced by overlay's
// value. Fields overlay leaves nil never override base.
func Merge(base, overlay Partial) Partial {
	base.Canonical = pick(base.Canonical, overlay.Canonical)
	base.Indent = pick(base.Indent, overlay.Indent)
	base.Width = pick(base.Width, overlay.Width)
	base.AllowUnicode = pick(base.AllowUnicode, overlay.AllowUnicode)
	base.LineBreak = pick(base.LineBreak, overlay.LineBreak)
	base.ExplicitStart = pick(base.ExplicitStart, overlay.ExplicitStart)
	base.ExplicitEnd = pick(base.ExplicitEnd, overlay.ExplicitEnd)
	base.SortKeys = pick(base.SortKeys, overlay.SortKeys)
	base.SequenceStyle = pick(base.SequenceStyle, overlay.SequenceStyle)
	base.MappingStyle = pick(base.MappingStyle, overlay.MappingStyle)
	base.ScalarStyle = pick(base.ScalarStyle, overlay.ScalarStyle)

	return base
}

// Fill returns a Profile with every field p sets, and defaults elsewhere.
func (p Partial) Fill(defaults Profile) Profile {
	out := defaults

	fill(&out.Canonical, p.Canonical)
	fill(&out.Indent, p.Indent)
	fill(&out.Width, p.Width)
	fill(&out.AllowUnicode, p.AllowUnicode)
	fill(&out.LineBreak, p.LineBreak)
	fill(&out.ExplicitStart, p.ExplicitStart)
	fill(&out.ExplicitEnd, p.ExplicitEnd)
	fill(&out.SortKeys, p.SortKeys)
	fill(&out.SequenceStyle, p.SequenceStyle)
	fill(&out.MappingStyle, p.MappingStyle)
	fill(&out.ScalarStyle, p.ScalarStyle)

	return out
}

// Resolve merges sources, lowest precedence first, on top of [Defaults] and
// returns the fully specified profile.
func Resolve(sources ...Partial) Profile {
	var merged Partial
	for _, src := range sources {
		merged = Merge(merged, src)
	}

	return merged.Fill(Defaults())
}

func pick[T any](base, overlay *T) *T {
	if overlay != nil {
		v := *overlay

		return &v
	}

	return base
}

func fill[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
