package frontmatter_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DandyLyons/frontrange/pkg/frontmatter"
	"github.com/DandyLyons/frontrange/pkg/node"
)

func Test_LineIndex_MapsOffsets_When_LineBreaksMixed(t *testing.T) {
	t.Parallel()

	text := "a\nbb\r\nccc\rd"
	idx := frontmatter.NewLineIndex(text)

	assert.Equal(t, 4, idx.LineCount())

	cases := []struct {
		offset int
		line   int
	}{
		{offset: 0, line: 1},
		{offset: 1, line: 1},
		{offset: 2, line: 2},
		{offset: 5, line: 2},
		{offset: 6, line: 3},
		{offset: 9, line: 3},
		{offset: 10, line: 4},
		{offset: 99, line: 4},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.line, idx.Line(tc.offset), "offset %d", tc.offset)
	}
}

// Contract: line breaks inside quoted scalars count as lines.
func Test_LineIndex_CountsQuotedNewlines(t *testing.T) {
	t.Parallel()

	text := "---\nquote: \"first\n  second\"\nnext: 1\n---\n"
	idx := frontmatter.NewLineIndex(text)

	assert.Equal(t, 4, idx.Line(strings.Index(text, "next")))
	assert.Equal(t, frontmatter.LineRange{Start: 2, End: 3}, idx.Range(strings.Index(text, "quote"), strings.Index(text, "next")-1))
}

func Test_ExtractLines_ReturnsLines_When_RangeValid(t *testing.T) {
	t.Parallel()

	text := "one\ntwo\nthree\n"

	got, err := frontmatter.ExtractLines(text, frontmatter.LineRange{Start: 2, End: 3})
	require.NoError(t, err)
	assert.Equal(t, "two\nthree\n", got)

	_, err = frontmatter.ExtractLines(text, frontmatter.LineRange{Start: 3, End: 5})
	require.ErrorIs(t, err, frontmatter.ErrLineOutOfRange)
}

func Test_Document_KeyLines_CoversValue_When_Parsed(t *testing.T) {
	t.Parallel()

	text := strings.Join([]string{
		"---",
		"title: A",
		"tags:",
		"  - x",
		"  - y",
		"",
		"# trailing comment",
		"quote: \"multi",
		"  line\"",
		"last: 1",
		"---",
		"body",
	}, "\n")

	doc := mustParse(t, text)

	cases := []struct {
		key  string
		want frontmatter.LineRange
	}{
		{key: "title", want: frontmatter.LineRange{Start: 2, End: 2}},
		{key: "tags", want: frontmatter.LineRange{Start: 3, End: 5}},
		{key: "quote", want: frontmatter.LineRange{Start: 8, End: 9}},
		{key: "last", want: frontmatter.LineRange{Start: 10, End: 10}},
	}

	for _, tc := range cases {
		got, err := doc.KeyLines(tc.key)
		require.NoError(t, err, tc.key)
		assert.Equal(t, tc.want, got, tc.key)
	}

	lines, err := doc.KeyLines("tags")
	require.NoError(t, err)

	extracted, err := frontmatter.ExtractLines(text, lines)
	require.NoError(t, err)
	assert.Equal(t, "tags:\n  - x\n  - y\n", extracted)

	preamble, err := doc.PreambleLines()
	require.NoError(t, err)
	assert.Equal(t, frontmatter.LineRange{Start: 2, End: 10}, preamble)

	_, err = doc.KeyLines("missing")
	require.ErrorIs(t, err, frontmatter.ErrKeyNotFound)
}

func Test_Document_KeyLines_ReturnsError_When_DocumentEdited(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, "---\na: 1\n---\n").Set("b", node.Scalar("2"))

	_, err := doc.KeyLines("a")
	require.ErrorIs(t, err, frontmatter.ErrNoSourceLines)

	_, err = doc.PreambleLines()
	require.ErrorIs(t, err, frontmatter.ErrNoSourceLines)
}

func Test_Document_PreambleLines_IsEmpty_When_NoFrontMatter(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, "---\n---\nbody\n")

	r, err := doc.PreambleLines()
	require.NoError(t, err)
	assert.True(t, r.Empty())
	assert.Equal(t, 0, r.Len())
}
