package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/DandyLyons/frontrange/pkg/frontmatter"
	"github.com/DandyLyons/frontrange/pkg/node"
)

const filePerms = 0o644

// editFunc applies one edit. changed is false when the document is left as
// it was, in which case nothing is written.
type editFunc func(doc frontmatter.Document) (out frontmatter.Document, changed bool, err error)

// isPrecondition reports whether err is a per-document precondition failure
// that skips the file instead of aborting the batch.
func isPrecondition(err error) bool {
	for _, target := range []error{
		frontmatter.ErrKeyNotFound,
		frontmatter.ErrOldKeyNotFound,
		frontmatter.ErrNewKeyAlreadyExists,
		frontmatter.ErrNotAnArray,
		node.ErrIndexOutOfRange,
		node.ErrDuplicateKey,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}

// load reads and parses one file.
func (a *app) load(arg string) (frontmatter.Document, string, error) {
	path := a.path(arg)

	data, err := a.fs.ReadFile(path)
	if err != nil {
		return frontmatter.Document{}, "", err
	}

	doc, err := frontmatter.Parse(string(data))
	if err != nil {
		return frontmatter.Document{}, string(data), err
	}

	return doc, string(data), nil
}

// edit runs fn on every file. Each file is locked for the whole
// read-modify-write and written atomically. Files that fail to load or
// whose edit fails a precondition are skipped with a warning.
func (a *app) edit(ctx context.Context, o *IO, files []string, dryRun bool, verb string, fn editFunc) error {
	skipped := 0

	for _, arg := range files {
		if err := ctx.Err(); err != nil {
			return errInterrupted
		}

		if err := a.editOne(o, arg, dryRun, verb, fn); err != nil {
			skipped++

			o.WarnLLM(fmt.Sprintf("%s: %v", arg, err), skipAction(err))
		}
	}

	if skipped > 0 && len(files) > 1 {
		o.ErrPrintln(fmt.Sprintf("skipped %d of %d files", skipped, len(files)))
	}

	return nil
}

func (a *app) editOne(o *IO, arg string, dryRun bool, verb string, fn editFunc) error {
	path := a.path(arg)

	lock, err := a.fs.Lock(path)
	if err != nil {
		return fmt.Errorf("lock: %w", err)
	}
	defer lock.Close()

	doc, original, err := a.load(arg)
	if err != nil {
		return err
	}

	updated, changed, err := fn(doc)
	if err != nil {
		return err
	}

	if !changed {
		o.Println("unchanged", arg)

		return nil
	}

	text, err := frontmatter.Print(updated, a.profile())
	if err != nil {
		return err
	}

	if text == original {
		o.Println("unchanged", arg)

		return nil
	}

	if dryRun {
		o.Printf("%s", renderDiff(o.colors, arg, original, text))

		return nil
	}

	if err := a.fs.WriteFileAtomic(path, []byte(text), filePerms); err != nil {
		return fmt.Errorf("write: %w", err)
	}

	o.Println(verb, arg)

	return nil
}

func skipAction(err error) string {
	switch {
	case isPrecondition(err):
		return "file skipped, check the key and value"
	case isParseError(err):
		return "file skipped, fix its front matter"
	default:
		return "file skipped"
	}
}

func isParseError(err error) bool {
	for _, target := range []error{
		frontmatter.ErrMissingOpeningDelimiter,
		frontmatter.ErrMissingClosingDelimiter,
		frontmatter.ErrPreambleNotMapping,
		frontmatter.ErrPreambleGrammar,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}

// eachDocument loads every file and calls fn with it. Load failures are
// warnings; an error from fn is a warning for that file too.
func (a *app) eachDocument(ctx context.Context, o *IO, files []string, fn func(arg string, doc frontmatter.Document) error) error {
	for _, arg := range files {
		if err := ctx.Err(); err != nil {
			return errInterrupted
		}

		doc, _, err := a.load(arg)
		if err == nil {
			err = fn(arg, doc)
		}

		if err != nil {
			o.WarnLLM(fmt.Sprintf("%s: %v", arg, err), skipAction(err))
		}
	}

	return nil
}
