package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/DandyLyons/frontrange/pkg/frontmatter"
)

// editOptions are the flags every editing command accepts.
type editOptions struct {
	dryRun bool
}

func (e *editOptions) register(flags *flag.FlagSet) {
	flags.BoolVarP(&e.dryRun, "dry-run", "n", false, "Print a diff instead of writing")
}

func (a *app) cmdSet() *Command {
	var (
		opts   editOptions
		asYAML bool
	)

	flags := flag.NewFlagSet("set", flag.ContinueOnError)
	opts.register(flags)
	flags.BoolVar(&asYAML, "yaml", false, "Read the value as YAML instead of a string")

	return &Command{
		Flags: flags,
		Usage: "set <key> <value> <file>...",
		Short: "Set a key, appending it when absent",
		Long: `Set a top-level key. An existing key keeps its position; a new key is
appended. The value is a string unless --yaml is given.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) < 3 {
				return errUsage
			}

			value, err := parseValue(args[1], asYAML)
			if err != nil {
				return err
			}

			return a.edit(ctx, o, args[2:], opts.dryRun, "updated", func(doc frontmatter.Document) (frontmatter.Document, bool, error) {
				if old, ok := doc.Get(args[0]); ok && old.Equal(value) && old.Type() == value.Type() {
					return doc, false, nil
				}

				return doc.Set(args[0], value), true, nil
			})
		},
	}
}

func (a *app) cmdRemove() *Command {
	var opts editOptions

	flags := flag.NewFlagSet("remove", flag.ContinueOnError)
	opts.register(flags)

	return &Command{
		Flags: flags,
		Usage: "remove <key> <file>...",
		Short: "Remove a key",
		Long:  "Remove a top-level key. Files without the key are left unchanged.",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) < 2 {
				return errUsage
			}

			return a.edit(ctx, o, args[1:], opts.dryRun, "updated", func(doc frontmatter.Document) (frontmatter.Document, bool, error) {
				out, removed := doc.Remove(args[0])

				return out, removed, nil
			})
		},
	}
}

func (a *app) cmdRename() *Command {
	var opts editOptions

	flags := flag.NewFlagSet("rename", flag.ContinueOnError)
	opts.register(flags)

	return &Command{
		Flags: flags,
		Usage: "rename <old> <new> <file>...",
		Short: "Rename a key in place",
		Long: `Rename a top-level key, keeping its value and position. Files where
<old> is missing or <new> already exists are skipped with a warning.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) < 3 {
				return errUsage
			}

			return a.edit(ctx, o, args[2:], opts.dryRun, "updated", func(doc frontmatter.Document) (frontmatter.Document, bool, error) {
				out, err := doc.Rename(args[0], args[1])

				return out, err == nil, err
			})
		},
	}
}

func (a *app) cmdSortKeys() *Command {
	var (
		opts    editOptions
		reverse bool
	)

	flags := flag.NewFlagSet("sort-keys", flag.ContinueOnError)
	opts.register(flags)
	flags.BoolVarP(&reverse, "reverse", "r", false, "Sort in descending order")

	return &Command{
		Flags: flags,
		Usage: "sort-keys <file>...",
		Short: "Sort top-level keys",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) < 1 {
				return errUsage
			}

			return a.edit(ctx, o, args, opts.dryRun, "sorted", func(doc frontmatter.Document) (frontmatter.Document, bool, error) {
				out := doc.SortByKey()
				if reverse {
					out = out.Reverse()
				}

				return out, !sameOrder(doc, out), nil
			})
		},
	}
}

func (a *app) cmdReorder() *Command {
	var opts editOptions

	flags := flag.NewFlagSet("reorder", flag.ContinueOnError)
	opts.register(flags)

	return &Command{
		Flags: flags,
		Usage: "reorder <key,key,...> <file>...",
		Short: "Move the listed keys to the front",
		Long: `Move the listed keys to the front in the given order. Keys a file does
not have are ignored; the other keys keep their relative order.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) < 2 {
				return errUsage
			}

			keys := splitKeys(args[0])
			if len(keys) == 0 {
				return errEmptyKeyList
			}

			return a.edit(ctx, o, args[1:], opts.dryRun, "reordered", func(doc frontmatter.Document) (frontmatter.Document, bool, error) {
				out := doc.Prioritize(keys...)

				return out, !sameOrder(doc, out), nil
			})
		},
	}
}

func (a *app) cmdArray() *Command {
	var (
		opts           editOptions
		skipDuplicates bool
		ignoreCase     bool
		asYAML         bool
	)

	flags := flag.NewFlagSet("array", flag.ContinueOnError)
	opts.register(flags)
	flags.BoolVar(&skipDuplicates, "skip-duplicates", false, "Do not add a value that is already present")
	flags.BoolVarP(&ignoreCase, "ignore-case", "i", false, "Compare values ignoring case")
	flags.BoolVar(&asYAML, "yaml", false, "Read the value as YAML instead of a string")

	return &Command{
		Flags: flags,
		Usage: "array <append|prepend|remove|contains> <key> <value> <file>...",
		Short: "Edit or test a sequence value",
		Long: `Edit the sequence stored under <key>.

  append     add <value> at the end
  prepend    add <value> at the start
  remove     remove the first element equal to <value>
  contains   print whether each file's sequence holds <value>

Only scalar elements are compared. Files where <key> is missing or not a
sequence are skipped with a warning.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) < 4 {
				return errUsage
			}

			op, key := args[0], args[1]

			value, err := parseValue(args[2], asYAML)
			if err != nil {
				return err
			}

			files := args[3:]
			arrayOpts := frontmatter.ArrayOptions{SkipDuplicates: skipDuplicates, CaseInsensitive: ignoreCase}

			switch op {
			case "append", "prepend":
				return a.edit(ctx, o, files, opts.dryRun, "updated", func(doc frontmatter.Document) (frontmatter.Document, bool, error) {
					if op == "append" {
						return doc.ArrayAppend(key, value, arrayOpts)
					}

					return doc.ArrayPrepend(key, value, arrayOpts)
				})
			case "remove":
				return a.edit(ctx, o, files, opts.dryRun, "updated", func(doc frontmatter.Document) (frontmatter.Document, bool, error) {
					return doc.ArrayRemoveFirst(key, value, ignoreCase)
				})
			case "contains":
				return a.eachDocument(ctx, o, files, func(arg string, doc frontmatter.Document) error {
					found, err := doc.ArrayContains(key, value, ignoreCase)
					if err != nil {
						return err
					}

					o.Printf("%s: %t\n", arg, found)

					return nil
				})
			default:
				return fmt.Errorf("%w: %s", errArrayOp, op)
			}
		},
	}
}

func splitKeys(list string) []string {
	var keys []string

	for _, k := range strings.Split(list, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}

	return keys
}

func sameOrder(a, b frontmatter.Document) bool {
	return slices.Equal(a.Keys(), b.Keys())
}
