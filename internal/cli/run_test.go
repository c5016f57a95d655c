package cli_test

import (
	"strings"
	"testing"

	"github.com/DandyLyons/frontrange/internal/cli"
)

const post = "---\ntitle: A\ntags:\n  - x\n---\nBody\n"

func TestRun_PrintsUsage_When_NoCommand(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stdout := c.MustRun()
	cli.AssertContains(t, stdout, "Usage: fr [options] <command> [args]")
	cli.AssertContains(t, stdout, "sort-keys <file>...")
}

func TestRun_Fails_When_CommandUnknown(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stderr := c.MustFail("frobnicate")
	cli.AssertContains(t, stderr, "unknown command: frobnicate")
}

func TestRun_PrintsCommandHelp_When_HelpFlagGiven(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stdout := c.MustRun("set", "--help")
	cli.AssertContains(t, stdout, "Usage: fr set <key> <value> <file>...")
	cli.AssertContains(t, stdout, "--dry-run")
	cli.AssertContains(t, stdout, "--indent")
}

func TestRun_Fails_When_ArgumentsMissing(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stderr := c.MustFail("set", "title")
	cli.AssertContains(t, stderr, "wrong number of arguments")
	cli.AssertContains(t, stderr, "Usage: fr set")
}

// Contract: set then get returns the new value; the rest of the file is kept.
func TestSetThenGet_RoundTrips(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("post.md", post)

	stdout := c.MustRun("set", "title", "B", "post.md")
	if stdout != "updated post.md\n" {
		t.Fatalf("stdout=%q", stdout)
	}

	if got, want := c.ReadFile("post.md"), "---\ntitle: B\ntags:\n  - x\n---\nBody\n"; got != want {
		t.Fatalf("file=%q, want=%q", got, want)
	}

	if got := c.MustRun("get", "title", "post.md"); got != "B\n" {
		t.Fatalf("get=%q, want=%q", got, "B\n")
	}

	cli.AssertContains(t, c.MustRun("get", "tags", "post.md"), "- x")
}

func TestSet_QuotesAmbiguousStrings_Unless_YAMLRequested(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("post.md", "---\ntitle: A\n---\n")

	c.MustRun("set", "draft", "true", "post.md")
	cli.AssertContains(t, c.ReadFile("post.md"), "draft: \"true\"\n")

	c.MustRun("set", "--yaml", "draft", "false", "post.md")
	cli.AssertContains(t, c.ReadFile("post.md"), "draft: false\n")

	c.MustRun("set", "views", "3", "post.md")
	cli.AssertContains(t, c.ReadFile("post.md"), "views: \"3\"\n")

	stdout := c.MustRun("set", "--yaml", "views", "3", "post.md")
	cli.AssertContains(t, stdout, "updated post.md")
	cli.AssertContains(t, c.ReadFile("post.md"), "views: 3\n")

	// "n" is a YAML 1.1 boolean, so the key itself is quoted.
	c.MustRun("set", "n", "x", "post.md")
	cli.AssertContains(t, c.ReadFile("post.md"), "'n': x\n")

	c.MustRun("set", "--yaml", "tags", "[a, b]", "post.md")
	cli.AssertContains(t, c.ReadFile("post.md"), "tags: [a, b]\n")
}

func TestSet_LeavesFileAlone_When_ValueUnchanged(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("post.md", "---\ntitle:   A\n---\n")

	stdout := c.MustRun("set", "title", "A", "post.md")
	cli.AssertContains(t, stdout, "unchanged post.md")

	if got := c.ReadFile("post.md"); got != "---\ntitle:   A\n---\n" {
		t.Fatalf("file rewritten: %q", got)
	}
}

func TestSet_PrintsDiff_When_DryRun(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("post.md", post)

	stdout := c.MustRun("set", "--dry-run", "title", "B", "post.md")
	cli.AssertContains(t, stdout, "--- post.md\n+++ post.md (dry run)\n")
	cli.AssertContains(t, stdout, "-title: A\n+title: B\n")

	if got := c.ReadFile("post.md"); got != post {
		t.Fatalf("dry run wrote the file: %q", got)
	}
}

func TestRemove_ReportsUnchanged_When_KeyMissing(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("post.md", post)

	stdout := c.MustRun("remove", "missing", "post.md")
	cli.AssertContains(t, stdout, "unchanged post.md")

	c.MustRun("remove", "tags", "post.md")

	if got, want := c.ReadFile("post.md"), "---\ntitle: A\n---\nBody\n"; got != want {
		t.Fatalf("file=%q, want=%q", got, want)
	}
}

// Contract: a precondition failure skips that file with a warning and the
// batch carries on.
func TestRename_SkipsFile_When_PreconditionFails(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("a.md", "---\nold: 1\nz: 2\n---\n")
	c.WriteFile("b.md", "---\nz: 2\n---\n")
	c.WriteFile("c.md", "---\nold: 1\nnew: 2\n---\n")

	stdout, stderr, code := c.Run("rename", "old", "new", "a.md", "b.md", "c.md")
	if code != 1 {
		t.Fatalf("exit=%d, want=1\nstderr: %s", code, stderr)
	}

	cli.AssertContains(t, stdout, "updated a.md")
	cli.AssertContains(t, stderr, "warning: b.md:")
	cli.AssertContains(t, stderr, "old key not found")
	cli.AssertContains(t, stderr, "warning: c.md:")
	cli.AssertContains(t, stderr, "skipped 2 of 3 files")

	if got, want := c.ReadFile("a.md"), "---\nnew: 1\nz: 2\n---\n"; got != want {
		t.Fatalf("a.md=%q, want=%q", got, want)
	}
}

func TestBatch_WarnsAndContinues_When_FileUnparsable(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("bad.md", "no front matter\n")
	c.WriteFile("good.md", post)

	stdout, stderr, code := c.Run("set", "title", "C", "bad.md", "good.md", "missing.md")
	if code != 1 {
		t.Fatalf("exit=%d, want=1", code)
	}

	cli.AssertContains(t, stdout, "updated good.md")
	cli.AssertContains(t, stderr, "bad.md")
	cli.AssertContains(t, stderr, "fix its front matter")
	cli.AssertContains(t, stderr, "missing.md")
}

func TestSortKeys_AndReorder(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("post.md", "---\nb: 1\nc: 2\na: 3\n---\n")

	c.MustRun("sort-keys", "post.md")

	if got := c.ReadFile("post.md"); got != "---\na: 3\nb: 1\nc: 2\n---\n" {
		t.Fatalf("sorted=%q", got)
	}

	stdout := c.MustRun("sort-keys", "post.md")
	cli.AssertContains(t, stdout, "unchanged post.md")

	c.MustRun("sort-keys", "--reverse", "post.md")

	if got := c.ReadFile("post.md"); got != "---\nc: 2\nb: 1\na: 3\n---\n" {
		t.Fatalf("reversed=%q", got)
	}

	c.MustRun("reorder", "a,missing,b", "post.md")

	if got := c.ReadFile("post.md"); got != "---\na: 3\nb: 1\nc: 2\n---\n" {
		t.Fatalf("reordered=%q", got)
	}
}

func TestArray_EditsSequence(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("post.md", "---\ntags: [Go, yaml]\ntitle: A\n---\n")

	c.MustRun("array", "append", "tags", "cli", "post.md")
	cli.AssertContains(t, c.ReadFile("post.md"), "tags: [Go, yaml, cli]\n")

	stdout := c.MustRun("array", "prepend", "--skip-duplicates", "--ignore-case", "tags", "go", "post.md")
	cli.AssertContains(t, stdout, "unchanged post.md")

	c.MustRun("array", "remove", "tags", "yaml", "post.md")
	cli.AssertContains(t, c.ReadFile("post.md"), "tags: [Go, cli]\n")

	stdout = c.MustRun("array", "contains", "-i", "tags", "GO", "post.md")
	if stdout != "post.md: true\n" {
		t.Fatalf("contains=%q", stdout)
	}

	_, stderr, code := c.Run("array", "append", "title", "x", "post.md")
	if code != 1 {
		t.Fatalf("exit=%d, want=1", code)
	}

	cli.AssertContains(t, stderr, "not an array")

	stderr = c.MustFail("array", "shuffle", "tags", "x", "post.md")
	cli.AssertContains(t, stderr, "unknown array operation: shuffle")
}

func TestGet_PrintsJSON_When_Requested(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("a.md", "---\nn: 3\n---\n")
	c.WriteFile("b.md", "---\nn: [1, two]\n---\n")

	stdout := c.MustRun("get", "--json", "n", "a.md")
	if stdout != "3\n" {
		t.Fatalf("single=%q", stdout)
	}

	stdout = c.MustRun("get", "--json", "n", "a.md", "b.md")
	want := "{\n  \"a.md\": 3,\n  \"b.md\": [\n    1,\n    \"two\"\n  ]\n}\n"

	if stdout != want {
		t.Fatalf("multi=%q, want=%q", stdout, want)
	}

	stdout = c.MustRun("get", "n", "a.md", "b.md")
	cli.AssertContains(t, stdout, "a.md: 3\nb.md:\n  ")
	cli.AssertContains(t, stdout, "two")
}

func TestLines_PrintsRangeAndText(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("post.md", "---\ntitle: A\ntags:\n  - x\n  - y\n---\nBody\n")

	stdout := c.MustRun("lines", "tags", "post.md")
	if stdout != "3-5\ntags:\n  - x\n  - y\n" {
		t.Fatalf("lines=%q", stdout)
	}

	stderr := c.MustFail("lines", "nope", "post.md")
	cli.AssertContains(t, stderr, "key not found")
}

func TestQueryAndSearch(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("a.md", "---\ncount: 3\ntags: [go]\ndraft: false\n---\n")
	c.WriteFile("b.md", "---\ncount: 1\ntags: [rust]\ndraft: true\n---\n")

	if got := c.MustRun("query", "count + 1", "a.md"); got != "4\n" {
		t.Fatalf("query=%q", got)
	}

	got := c.MustRun("query", "tags", "a.md", "b.md")
	if got != "a.md: [\"go\"]\nb.md: [\"rust\"]\n" {
		t.Fatalf("query multi=%q", got)
	}

	if got := c.MustRun("search", `"go" in tags && !draft`, "a.md", "b.md"); got != "a.md\n" {
		t.Fatalf("search=%q", got)
	}

	stderr := c.MustFail("search", "count >", "a.md")
	cli.AssertContains(t, stderr, "invalid query")

	_, stderr, code := c.Run("search", "count", "a.md")
	if code != 1 {
		t.Fatalf("exit=%d, want=1", code)
	}

	cli.AssertContains(t, stderr, "did not return a boolean")
}

func TestValidate_UsesProjectSchema(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile(".frontrange.json", `{"schema": "schemas/post.json"}`)
	c.WriteFile("schemas/post.json", `{"type": "object", "required": ["title"]}`)
	c.WriteFile("other.json", `{"properties": {"title": {"type": "integer"}}}`)
	c.WriteFile("posts/good.md", "---\ntitle: A\n---\n")
	c.WriteFile("posts/bad.md", "---\nname: A\n---\n")
	c.WriteFile("posts/own.md", "---\n$schema: ../other.json\ntitle: A\n---\n")

	stdout, stderr, code := c.Run("validate", "posts/good.md", "posts/bad.md", "posts/own.md")
	if code != 1 {
		t.Fatalf("exit=%d, want=1", code)
	}

	cli.AssertContains(t, stdout, "posts/good.md: ok\n")
	cli.AssertContains(t, stdout, "posts/bad.md: /title: required key is missing\n")
	cli.AssertContains(t, stdout, "posts/own.md: /title: expected integer, got string\n")
	cli.AssertContains(t, stderr, "posts/bad.md: 1 schema violation(s)")

	stdout = c.MustRun("validate", "--schema", "schemas/post.json", "posts/own.md")
	if stdout != "posts/own.md: ok\n" {
		t.Fatalf("explicit=%q", stdout)
	}
}

func TestValidate_Warns_When_NoSchemaApplies(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("post.md", post)

	_, stderr, code := c.Run("validate", "post.md")
	if code != 1 {
		t.Fatalf("exit=%d, want=1", code)
	}

	cli.AssertContains(t, stderr, "post.md: no schema applies")
}

func TestFmt_RendersWithResolvedProfile(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile(".frontrange.json", "{\n  // house style\n  \"indent\": 4,\n}\n")
	c.WriteFile("post.md", "---\nauthor:\n  name: Ada\n---\nBody\n")

	_, stderr, code := c.Run("fmt", "--check", "post.md")
	if code != 1 {
		t.Fatalf("check exit=%d, want=1", code)
	}

	cli.AssertContains(t, stderr, "post.md: not formatted")

	c.MustRun("fmt", "post.md")

	if got, want := c.ReadFile("post.md"), "---\nauthor:\n    name: Ada\n---\nBody\n"; got != want {
		t.Fatalf("file=%q, want=%q", got, want)
	}

	c.MustRun("fmt", "--check", "post.md")

	// Flags outrank the project config.
	c.MustRun("fmt", "--indent", "2", "post.md")

	if got, want := c.ReadFile("post.md"), "---\nauthor:\n  name: Ada\n---\nBody\n"; got != want {
		t.Fatalf("file=%q, want=%q", got, want)
	}
}

func TestPrintConfig_ShowsSources(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stdout := c.MustRun("print-config")
	cli.AssertContains(t, stdout, `"indent": 2`)
	cli.AssertContains(t, stdout, "(using defaults only)")

	c.WriteFile(".frontrange.json", `{"indent": 4}`)
	c.WriteFile(".home/.config/frontrange/config.json", `{"sort_keys": true, "indent": 3}`)

	stdout = c.MustRun("--line-break", "crlf", "print-config")
	cli.AssertContains(t, stdout, `"indent": 4`)
	cli.AssertContains(t, stdout, `"sort_keys": true`)
	cli.AssertContains(t, stdout, `"line_break": "crlf"`)
	cli.AssertContains(t, stdout, "#   project: "+c.Path(".frontrange.json"))
	cli.AssertContains(t, stdout, "#   global: "+c.Path(".home/.config/frontrange/config.json"))
}

// Contract: a malformed config aborts the command; it is never skipped.
func TestRun_Fails_When_ConfigMalformed(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile(".frontrange.json", `{"indent": "wide"}`)
	c.WriteFile("post.md", post)

	stderr := c.MustFail("get", "title", "post.md")
	cli.AssertContains(t, stderr, "invalid config file")

	stderr = c.MustFail("--config", "nope.json", "print-config")
	cli.AssertContains(t, stderr, "config file not found")

	stderr = c.MustFail("--scalar-style", "fancy", "print-config")
	cli.AssertContains(t, stderr, "--scalar-style")
}

func TestSet_WritesCRLF_When_LineBreakFlagSet(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("post.md", post)

	c.MustRun("set", "--line-break", "crlf", "title", "B", "post.md")

	got := c.ReadFile("post.md")
	if !strings.HasPrefix(got, "---\r\ntitle: B\r\ntags:\r\n  - x\r\n---\r\n") {
		t.Fatalf("file=%q", got)
	}
}
