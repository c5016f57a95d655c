package frontmatter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DandyLyons/frontrange/pkg/frontmatter"
	"github.com/DandyLyons/frontrange/pkg/node"
	"github.com/DandyLyons/frontrange/pkg/render"
)

const sampleDocument = `---
title: "Hello: world"
draft: false
count: 3
tags: [swift, go]
summary: >
  A folded
  summary.
notes: |
  first
  second
author:
  name: Ada
  links:
    - https://example.com
    - "mailto:ada@example.com"
---
# Heading

Body with --- inside and trailing spaces
`

func styleSample() map[string]render.Profile {
	with := func(edit func(p *render.Profile)) render.Profile {
		p := render.Defaults()
		edit(&p)

		return p
	}

	return map[string]render.Profile{
		"defaults":      render.Defaults(),
		"canonical":     with(func(p *render.Profile) { p.Canonical = true }),
		"indent four":   with(func(p *render.Profile) { p.Indent = 4 }),
		"width":         with(func(p *render.Profile) { p.Width = 20; p.ScalarStyle = render.ScalarFolded }),
		"ascii":         with(func(p *render.Profile) { p.AllowUnicode = false }),
		"crlf":          with(func(p *render.Profile) { p.LineBreak = render.LineBreakCRLF }),
		"cr":            with(func(p *render.Profile) { p.LineBreak = render.LineBreakCR }),
		"markers":       with(func(p *render.Profile) { p.ExplicitStart = true; p.ExplicitEnd = true }),
		"flow":          with(func(p *render.Profile) { p.MappingStyle = render.CollectionFlow }),
		"block":         with(func(p *render.Profile) { p.SequenceStyle = render.CollectionBlock }),
		"double quoted": with(func(p *render.Profile) { p.ScalarStyle = render.ScalarDoubleQuoted }),
		"single quoted": with(func(p *render.Profile) { p.ScalarStyle = render.ScalarSingleQuoted }),
		"plain":         with(func(p *render.Profile) { p.ScalarStyle = render.ScalarPlain }),
		"literal":       with(func(p *render.Profile) { p.ScalarStyle = render.ScalarLiteral }),
	}
}

// Contract: parse(print(d, p)) gives back d, order and body included, for
// every profile in the sample.
func Test_Print_RoundTrips_When_ParsedAgain(t *testing.T) {
	t.Parallel()

	doc, err := frontmatter.Parse(sampleDocument)
	require.NoError(t, err)

	for name, p := range styleSample() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			out, err := frontmatter.Print(doc, p)
			require.NoError(t, err)

			again, err := frontmatter.Parse(out)
			require.NoError(t, err, "printed:\n%s", out)

			assert.True(t, doc.Equal(again), "round trip mismatch\nprinted:\n%s", out)
			assert.Equal(t, doc.Body(), again.Body())
			assert.Equal(t, doc.Keys(), again.Keys())
		})
	}
}

// Contract: printing an unedited document with defaults reproduces the
// front matter byte for byte when it is already in the default layout.
func Test_Print_ReproducesText_When_DocumentUnchanged(t *testing.T) {
	t.Parallel()

	text := "---\ntitle: A\ntags:\n  - x\nquoted: \"q\"\nflow: [a, b]\n---\nBody\n"

	doc, err := frontmatter.Parse(text)
	require.NoError(t, err)

	out, err := frontmatter.Print(doc, render.Defaults())
	require.NoError(t, err)
	assert.Equal(t, text, out)
}

// Contract: a byte order mark survives parsing, editing and printing.
func Test_Print_KeepsByteOrderMark_When_ParsedWithOne(t *testing.T) {
	t.Parallel()

	text := "\ufeff---\ntitle: A\n---\nBody\n"

	doc, err := frontmatter.Parse(text)
	require.NoError(t, err)

	out, err := frontmatter.Print(doc, render.Defaults())
	require.NoError(t, err)
	assert.Equal(t, text, out)

	out, err = frontmatter.Print(doc.Set("title", node.Scalar("B")), render.Defaults())
	require.NoError(t, err)
	assert.Equal(t, "\ufeff---\ntitle: B\n---\nBody\n", out)

	out, err = frontmatter.Print(frontmatter.New(doc.Preamble(), doc.Body()), render.Defaults())
	require.NoError(t, err)
	assert.Equal(t, "---\ntitle: A\n---\nBody\n", out)
}

func Test_Print_WritesDelimiters_When_ProfileVaries(t *testing.T) {
	t.Parallel()

	doc := frontmatter.New(node.MustMapping(node.StringPair("a", node.Scalar("1"))), "body\n")

	cases := []struct {
		name string
		edit func(p *render.Profile)
		want string
	}{
		{name: "defaults", edit: func(*render.Profile) {}, want: "---\na: 1\n---\nbody\n"},
		{name: "explicit start adds nothing", edit: func(p *render.Profile) { p.ExplicitStart = true }, want: "---\na: 1\n---\nbody\n"},
		{name: "explicit end", edit: func(p *render.Profile) { p.ExplicitEnd = true }, want: "---\na: 1\n...\n---\nbody\n"},
		{name: "crlf keeps body", edit: func(p *render.Profile) { p.LineBreak = render.LineBreakCRLF }, want: "---\r\na: 1\r\n---\r\nbody\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			p := render.Defaults()
			tc.edit(&p)

			out, err := frontmatter.Print(doc, p)
			require.NoError(t, err)
			assert.Equal(t, tc.want, out)
		})
	}
}

func Test_Print_WritesAdjacentDelimiters_When_PreambleEmpty(t *testing.T) {
	t.Parallel()

	out, err := frontmatter.Print(frontmatter.New(node.Mapping{}, "x"), render.Defaults())
	require.NoError(t, err)
	assert.Equal(t, "---\n---\nx", out)

	doc, err := frontmatter.Parse(out)
	require.NoError(t, err)
	assert.Equal(t, 0, doc.Len())
}

// Contract: sort-keys reorders the output only; the document keeps its order.
func Test_Print_SortsCopy_When_SortKeysSet(t *testing.T) {
	t.Parallel()

	doc := frontmatter.New(node.MustMapping(
		node.StringPair("b", node.Scalar("1")),
		node.StringPair("a", node.Scalar("2")),
	), "")

	p := render.Defaults()
	p.SortKeys = true

	out, err := frontmatter.Print(doc, p)
	require.NoError(t, err)
	assert.Equal(t, "---\na: 2\nb: 1\n---\n", out)
	assert.Equal(t, []string{"b", "a"}, doc.Keys())
}

// Contract: sorted output can always be parsed again.
func Test_Print_RoundTrips_When_SortedKeysAliasAnchors(t *testing.T) {
	t.Parallel()

	doc, err := frontmatter.Parse("---\nz: &x 1\na: *x\n---\nbody\n")
	require.NoError(t, err)

	p := render.Defaults()
	p.SortKeys = true

	out, err := frontmatter.Print(doc, p)
	require.NoError(t, err)
	assert.Equal(t, "---\nz: &x 1\na: *x\n---\nbody\n", out)

	again, err := frontmatter.Parse(out)
	require.NoError(t, err)
	assert.True(t, doc.Equal(again))
}

// Contract: every toggle changes the rendering of a document that exercises it.
func Test_Print_ChangesOutput_When_AnyToggleFlipped(t *testing.T) {
	t.Parallel()

	doc, err := frontmatter.Parse("---\nm:\n  k: v\nb: [alpha, \"beta\", gamma, delta]\nc: café\n---\n")
	require.NoError(t, err)

	base, err := frontmatter.Print(doc, render.Defaults())
	require.NoError(t, err)

	toggles := map[string]func(p *render.Profile){
		"canonical":      func(p *render.Profile) { p.Canonical = true },
		"indent":         func(p *render.Profile) { p.Indent = 4 },
		"width":          func(p *render.Profile) { p.Width = 20 },
		"allow unicode":  func(p *render.Profile) { p.AllowUnicode = false },
		"line break":     func(p *render.Profile) { p.LineBreak = render.LineBreakCR },
		"explicit end":   func(p *render.Profile) { p.ExplicitEnd = true },
		"sort keys":      func(p *render.Profile) { p.SortKeys = true },
		"sequence style": func(p *render.Profile) { p.SequenceStyle = render.CollectionBlock },
		"mapping style":  func(p *render.Profile) { p.MappingStyle = render.CollectionFlow },
		"scalar style":   func(p *render.Profile) { p.ScalarStyle = render.ScalarDoubleQuoted },
	}

	for name, edit := range toggles {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			p := render.Defaults()
			edit(&p)

			out, err := frontmatter.Print(doc, p)
			require.NoError(t, err)
			assert.NotEqual(t, base, out)
		})
	}

	p := render.Defaults()
	p.ExplicitStart = true

	out, err := frontmatter.Print(doc, p)
	require.NoError(t, err)
	assert.Equal(t, base, out, "explicit start leaves output unchanged")
}

func Test_Print_ReturnsError_When_ProfileInvalid(t *testing.T) {
	t.Parallel()

	p := render.Defaults()
	p.Width = -3

	_, err := frontmatter.Print(frontmatter.Document{}, p)
	require.ErrorIs(t, err, render.ErrInvalidWidth)
}
