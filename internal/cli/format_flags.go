package cli

import (
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/DandyLyons/frontrange/pkg/render"
)

// formatFlags are the per-invocation formatting overrides, the highest
// configuration layer. They are accepted before and after the command name.
type formatFlags struct {
	set *flag.FlagSet

	canonical     bool
	indent        int
	width         int
	noUnicode     bool
	lineBreak     string
	explicitStart bool
	explicitEnd   bool
	sortKeys      bool
	sequenceStyle string
	mappingStyle  string
	scalarStyle   string
	noColor       bool
}

func newFormatFlags() *formatFlags {
	f := &formatFlags{set: flag.NewFlagSet("format", flag.ContinueOnError)}

	f.set.BoolVar(&f.canonical, "canonical", false, "Emit canonical YAML")
	f.set.IntVar(&f.indent, "indent", render.DefaultIndent, "Spaces per nesting level")
	f.set.IntVar(&f.width, "width", render.DefaultWidth, "Preferred line width, 0 disables wrapping")
	f.set.BoolVar(&f.noUnicode, "no-unicode", false, "Escape non-ASCII characters")
	f.set.StringVar(&f.lineBreak, "line-break", "lf", "Line break: lf, crlf or cr")
	f.set.BoolVar(&f.explicitStart, "explicit-start", false, "Mark the YAML document start")
	f.set.BoolVar(&f.explicitEnd, "explicit-end", false, "Mark the YAML document end")
	f.set.BoolVar(&f.sortKeys, "sort-keys", false, "Sort mapping keys")
	f.set.StringVar(&f.sequenceStyle, "sequence-style", "automatic", "Sequence style: automatic, block or flow")
	f.set.StringVar(&f.mappingStyle, "mapping-style", "automatic", "Mapping style: automatic, block or flow")
	f.set.StringVar(&f.scalarStyle, "scalar-style", "automatic", "Scalar style: automatic, plain, single-quoted, double-quoted, literal or folded")
	f.set.BoolVar(&f.noColor, "no-color", false, "Disable colored output")

	return f
}

// partial returns the overrides for the flags the user actually set.
func (f *formatFlags) partial() (render.Partial, error) {
	var p render.Partial

	if f.changed("canonical") {
		p.Canonical = render.Ptr(f.canonical)
	}

	if f.changed("indent") {
		p.Indent = render.Ptr(f.indent)
	}

	if f.changed("width") {
		p.Width = render.Ptr(f.width)
	}

	if f.changed("no-unicode") {
		p.AllowUnicode = render.Ptr(!f.noUnicode)
	}

	if f.changed("explicit-start") {
		p.ExplicitStart = render.Ptr(f.explicitStart)
	}

	if f.changed("explicit-end") {
		p.ExplicitEnd = render.Ptr(f.explicitEnd)
	}

	if f.changed("sort-keys") {
		p.SortKeys = render.Ptr(f.sortKeys)
	}

	if f.changed("line-break") {
		var lb render.LineBreak
		if err := lb.UnmarshalText([]byte(f.lineBreak)); err != nil {
			return render.Partial{}, fmt.Errorf("--line-break: %w", err)
		}

		p.LineBreak = &lb
	}

	for _, c := range []struct {
		name  string
		value string
		dst   **render.CollectionStyle
	}{
		{name: "sequence-style", value: f.sequenceStyle, dst: &p.SequenceStyle},
		{name: "mapping-style", value: f.mappingStyle, dst: &p.MappingStyle},
	} {
		if !f.changed(c.name) {
			continue
		}

		var style render.CollectionStyle
		if err := style.UnmarshalText([]byte(c.value)); err != nil {
			return render.Partial{}, fmt.Errorf("--%s: %w", c.name, err)
		}

		*c.dst = &style
	}

	if f.changed("scalar-style") {
		var style render.ScalarStyle
		if err := style.UnmarshalText([]byte(f.scalarStyle)); err != nil {
			return render.Partial{}, fmt.Errorf("--scalar-style: %w", err)
		}

		p.ScalarStyle = &style
	}

	return p, nil
}

func (f *formatFlags) changed(name string) bool {
	fl := f.set.Lookup(name)

	return fl != nil && fl.Changed
}
