package schema_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DandyLyons/frontrange/pkg/frontmatter"
	"github.com/DandyLyons/frontrange/pkg/node"
	"github.com/DandyLyons/frontrange/pkg/schema"
)

const postSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "post",
  "type": "object",
  "required": ["title", "tags"],
  "additionalProperties": false,
  "properties": {
    "title": {"type": "string", "pattern": "^[A-Z]"},
    "draft": {"type": "boolean"},
    "count": {"type": "integer"},
    "ratio": {"type": ["number", "null"]},
    "status": {"enum": ["draft", "published", 3]},
    "tags": {"type": "array", "minItems": 1, "maxItems": 2, "items": {"type": "string"}},
    "meta": {"type": "object", "additionalProperties": {"type": "string"}}
  }
}`

func preamble(t *testing.T, text string) node.Node {
	t.Helper()

	doc, err := frontmatter.Parse(text)
	require.NoError(t, err)

	return node.FromMapping(doc.Preamble())
}

func Test_Validate_ReturnsNoViolations_When_DocumentConforms(t *testing.T) {
	t.Parallel()

	s, err := schema.Parse([]byte(postSchema))
	require.NoError(t, err)

	n := preamble(t, "---\ntitle: Hello\ndraft: false\ncount: 3\nratio: ~\nstatus: 3\ntags: [go]\nmeta: {a: x}\n---\n")

	assert.Empty(t, schema.Validate(n, s))
}

func Test_Validate_ReportsViolations_When_DocumentBreaksSchema(t *testing.T) {
	t.Parallel()

	s, err := schema.Parse([]byte(postSchema))
	require.NoError(t, err)

	n := preamble(t, "---\ntitle: hello\ndraft: 'no'\ncount: 1.5\nstatus: archived\ntags: [go, 1, x]\nmeta: {a: 1}\nextra: true\n---\n")

	got := schema.Validate(n, s)

	codes := make(map[string]string, len(got))
	for _, v := range got {
		codes[v.Path] = v.Code
	}

	want := map[string]string{
		"/title":  schema.CodePattern,
		"/draft":  schema.CodeInvalidType,
		"/count":  schema.CodeInvalidType,
		"/status": schema.CodeInvalidEnum,
		"/tags":   schema.CodeTooLong,
		"/tags/1": schema.CodeInvalidType,
		"/meta/a": schema.CodeInvalidType,
		"/extra":  schema.CodeUnknownKey,
	}

	if diff := cmp.Diff(want, codes); diff != "" {
		t.Fatalf("violations mismatch (-want +got):\n%s\n%v", diff, got)
	}
}

func Test_Validate_ReportsMissingRequired_InSchemaOrder(t *testing.T) {
	t.Parallel()

	s, err := schema.Parse([]byte(postSchema))
	require.NoError(t, err)

	got := schema.Validate(preamble(t, "---\n---\n"), s)

	want := []schema.Violation{
		{Path: "/title", Code: schema.CodeRequired, Message: "required key is missing"},
		{Path: "/tags", Code: schema.CodeRequired, Message: "required key is missing"},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("violations mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, "/title: required key is missing", got[0].String())
}

func Test_Validate_TreatsWholeFloatAsInteger_And_FollowsAliases(t *testing.T) {
	t.Parallel()

	s, err := schema.Parse([]byte(`{"properties": {"n": {"type": "integer"}, "copy": {"type": "object", "required": ["x"]}, "few": {"minItems": 2}}}`))
	require.NoError(t, err)

	n := preamble(t, "---\nn: 2.0\nbase: &b {x: 1}\ncopy: *b\nfew: [1]\n---\n")

	got := schema.Validate(n, s)
	require.Len(t, got, 1)
	assert.Equal(t, schema.CodeTooShort, got[0].Code)
	assert.Equal(t, "/few", got[0].Path)

	assert.Nil(t, schema.Validate(n, nil))
}

func Test_Parse_ReturnsError_When_SchemaInvalid(t *testing.T) {
	t.Parallel()

	cases := []string{
		`{"type": "strnig"}`,
		`{"properties": {"a": {"pattern": "("}}}`,
		`{"items": {"minItems": -1}}`,
		`{"type": 3}`,
		`not json`,
	}

	for _, src := range cases {
		_, err := schema.Parse([]byte(src))
		require.ErrorIs(t, err, schema.ErrInvalidSchema, src)
	}
}

// Contract: explicit > embedded $schema > project > none.
func Test_Resolver_AppliesPriority(t *testing.T) {
	t.Parallel()

	embedded := node.MustMapping(node.StringPair(schema.EmbeddedKey, node.Scalar("schemas/post.json")))

	cases := []struct {
		name     string
		resolver schema.Resolver
		preamble node.Mapping
		want     schema.Source
	}{
		{name: "explicit wins", resolver: schema.Resolver{Explicit: "/x.json", Project: "/p.json"}, preamble: embedded, want: schema.Source{Path: "/x.json", Origin: schema.OriginExplicit}},
		{name: "embedded beats project", resolver: schema.Resolver{Project: "/p.json"}, preamble: embedded, want: schema.Source{Path: "/docs/schemas/post.json", Origin: schema.OriginEmbedded}},
		{name: "project", resolver: schema.Resolver{Project: "/p.json"}, preamble: node.Mapping{}, want: schema.Source{Path: "/p.json", Origin: schema.OriginProject}},
		{name: "none", resolver: schema.Resolver{}, preamble: node.Mapping{}, want: schema.Source{}},
		{name: "empty embedded ignored", resolver: schema.Resolver{}, preamble: node.MustMapping(node.StringPair(schema.EmbeddedKey, node.Scalar(""))), want: schema.Source{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := tc.resolver.Resolve("/docs/post.md", tc.preamble)
			assert.Equal(t, tc.want, got)
		})
	}

	assert.Equal(t, "none", schema.OriginNone.String())
	assert.Equal(t, "embedded", schema.OriginEmbedded.String())
}

type countingReader struct {
	files map[string]string
	reads int
}

func (r *countingReader) ReadFile(path string) ([]byte, error) {
	r.reads++

	data, ok := r.files[path]
	if !ok {
		return nil, errors.New("no such file")
	}

	return []byte(data), nil
}

// Contract: each path is read and parsed once, failures included.
func Test_Cache_LoadsEachPathOnce(t *testing.T) {
	t.Parallel()

	reader := &countingReader{files: map[string]string{"/s.json": `{"type": "object"}`, "/bad.json": `{`}}
	cache := schema.NewCache(reader)

	first, err := cache.Load("/s.json")
	require.NoError(t, err)

	second, err := cache.Load("/./s.json")
	require.NoError(t, err)
	assert.Same(t, first, second)

	_, err = cache.Load("/bad.json")
	require.ErrorIs(t, err, schema.ErrInvalidSchema)

	_, err = cache.Load("/bad.json")
	require.ErrorIs(t, err, schema.ErrInvalidSchema)

	_, err = cache.Load("/missing.json")
	require.ErrorIs(t, err, schema.ErrSchemaRead)

	assert.Equal(t, 3, reader.reads)
	assert.Equal(t, 3, cache.Len())
}
