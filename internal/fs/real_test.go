package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestReal_Exists_ReturnsFalseForNonExistent(t *testing.T) {
	t.Parallel()

	fsys := NewReal()

	exists, err := fsys.Exists(filepath.Join(t.TempDir(), "missing.md"))
	if err != nil {
		t.Fatalf("err=%v, want=nil", err)
	}

	if exists {
		t.Fatal("exists=true, want=false")
	}
}

func TestReal_Exists_ReturnsTrueForFileAndDirectory(t *testing.T) {
	t.Parallel()

	fsys := NewReal()
	dir := t.TempDir()
	path := filepath.Join(dir, "post.md")

	if err := os.WriteFile(path, []byte("---\n---\n"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	for _, p := range []string{path, dir} {
		exists, err := fsys.Exists(p)
		if err != nil || !exists {
			t.Fatalf("Exists(%q)=(%v, %v), want=(true, nil)", p, exists, err)
		}
	}

	isDir, err := IsDir(fsys, dir)
	if err != nil || !isDir {
		t.Fatalf("IsDir=(%v, %v), want=(true, nil)", isDir, err)
	}

	isFile, err := IsFile(fsys, dir)
	if err != nil || isFile {
		t.Fatalf("IsFile(dir)=(%v, %v), want=(false, nil)", isFile, err)
	}
}

// Contract: atomic writes replace content and keep the mode of an existing file.
func TestReal_WriteFileAtomic_ReplacesContent_When_FileExists(t *testing.T) {
	t.Parallel()

	fsys := NewReal()
	path := filepath.Join(t.TempDir(), "post.md")

	if err := os.WriteFile(path, []byte("old"), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if err := fsys.WriteFileAtomic(path, []byte("new"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}

	got, err := fsys.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if string(got) != "new" {
		t.Fatalf("content=%q, want=%q", got, "new")
	}

	info, err := fsys.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}

	if got, want := info.Mode().Perm(), os.FileMode(0o600); got != want {
		t.Fatalf("perm=%v, want=%v", got, want)
	}
}

func TestReal_WriteFileAtomic_UsesPerm_When_FileIsNew(t *testing.T) {
	t.Parallel()

	fsys := NewReal()
	path := filepath.Join(t.TempDir(), "new.md")

	if err := fsys.WriteFileAtomic(path, []byte("x"), 0o640); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}

	info, err := fsys.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}

	if got, want := info.Mode().Perm(), os.FileMode(0o640); got != want {
		t.Fatalf("perm=%v, want=%v", got, want)
	}
}

// Contract: a second Lock on the same path waits, then times out while the
// first lock is held, and succeeds once it is released.
func TestReal_Lock_TimesOut_When_AlreadyHeld(t *testing.T) {
	t.Parallel()

	fsys := &Real{LockTimeout: 50 * time.Millisecond}
	path := filepath.Join(t.TempDir(), "post.md")

	first, err := fsys.Lock(path)
	if err != nil {
		t.Fatalf("first Lock: %v", err)
	}

	if _, err := os.Stat(LockPath(path)); err != nil {
		t.Fatalf("lock file missing: %v", err)
	}

	_, err = fsys.Lock(path)
	if !errors.Is(err, ErrLockTimeout) {
		t.Fatalf("second Lock err=%v, want=%v", err, ErrLockTimeout)
	}

	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := os.Stat(LockPath(path)); !os.IsNotExist(err) {
		t.Fatalf("lock file still present after Close: %v", err)
	}

	again, err := fsys.Lock(path)
	if err != nil {
		t.Fatalf("Lock after release: %v", err)
	}

	if err := again.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Closing twice is harmless.
	if err := again.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestLockPath_IsHiddenSibling(t *testing.T) {
	t.Parallel()

	if got, want := LockPath(filepath.Join("notes", "post.md")), filepath.Join("notes", ".post.md.lock"); got != want {
		t.Fatalf("LockPath=%q, want=%q", got, want)
	}
}
