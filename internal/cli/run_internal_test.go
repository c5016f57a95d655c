package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/DandyLyons/frontrange/internal/fs"
)

func runMem(t *testing.T, mem *fs.Mem, args ...string) (string, string, int) {
	t.Helper()

	var out, errOut strings.Builder

	argv := append([]string{"fr", "--cwd", "/work"}, args...)
	code := run(mem, &out, &errOut, argv, map[string]string{"HOME": "/home"}, nil)

	return out.String(), errOut.String(), code
}

func TestEdit_KeepsFile_When_WriteFails(t *testing.T) {
	t.Parallel()

	mem := fs.NewMem()
	mem.WriteFile("/work/a.md", []byte("---\ntitle: A\n---\n"))
	mem.WriteFile("/work/b.md", []byte("---\ntitle: A\n---\n"))
	mem.Fail(fs.OpWriteFile, "/work/a.md", errors.New("disk full"))

	stdout, stderr, code := runMem(t, mem, "set", "title", "B", "a.md", "b.md")
	if code != 1 {
		t.Fatalf("exit=%d, want=1", code)
	}

	if !strings.Contains(stderr, "a.md: write:") || !strings.Contains(stderr, "disk full") {
		t.Fatalf("stderr=%q", stderr)
	}

	if !strings.Contains(stdout, "updated b.md") {
		t.Fatalf("stdout=%q", stdout)
	}

	data, _ := mem.ReadFile("/work/a.md")
	if string(data) != "---\ntitle: A\n---\n" {
		t.Fatalf("a.md=%q", data)
	}

	if mem.Locked("/work/a.md") || mem.Locked("/work/b.md") {
		t.Fatal("lock not released")
	}
}

func TestEdit_SkipsFile_When_Locked(t *testing.T) {
	t.Parallel()

	mem := fs.NewMem()
	mem.WriteFile("/work/a.md", []byte("---\ntitle: A\n---\n"))

	held, err := mem.Lock("/work/a.md")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	defer held.Close()

	_, stderr, code := runMem(t, mem, "remove", "title", "a.md")
	if code != 1 {
		t.Fatalf("exit=%d, want=1", code)
	}

	if !strings.Contains(stderr, "a.md: lock:") {
		t.Fatalf("stderr=%q", stderr)
	}

	data, _ := mem.ReadFile("/work/a.md")
	if string(data) != "---\ntitle: A\n---\n" {
		t.Fatalf("a.md=%q", data)
	}
}

func TestRun_Fails_When_ConfigUnreadable(t *testing.T) {
	t.Parallel()

	mem := fs.NewMem()
	mem.WriteFile("/work/.frontrange.json", []byte(`{"indent": 4}`))
	mem.Fail(fs.OpReadFile, "/work/.frontrange.json", errors.New("permission denied"))

	_, stderr, code := runMem(t, mem, "print-config")
	if code != 1 {
		t.Fatalf("exit=%d, want=1", code)
	}

	if !strings.Contains(stderr, "cannot read config file") {
		t.Fatalf("stderr=%q", stderr)
	}
}

func TestRenderDiff_ElidesDistantContext(t *testing.T) {
	t.Parallel()

	before := "a\nb\nc\nd\ne\nf\ng\n"
	after := "a\nb\nc\nd\ne\nf\nG\n"

	got := renderDiff(newPalette(false), "x.md", before, after)
	want := "--- x.md\n+++ x.md (dry run)\n...\n e\n f\n-g\n+G\n"

	if got != want {
		t.Fatalf("diff=%q, want=%q", got, want)
	}
}

func TestSplitKeys_TrimsAndDropsEmpty(t *testing.T) {
	t.Parallel()

	got := splitKeys(" a, b ,,c ")
	if strings.Join(got, "|") != "a|b|c" {
		t.Fatalf("keys=%q", got)
	}
}
