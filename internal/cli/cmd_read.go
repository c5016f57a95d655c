package cli

import (
	"context"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	flag "github.com/spf13/pflag"

	"github.com/DandyLyons/frontrange/pkg/frontmatter"
	"github.com/DandyLyons/frontrange/pkg/node"
	"github.com/DandyLyons/frontrange/pkg/query"
	"github.com/DandyLyons/frontrange/pkg/yamlcodec"
)

func (a *app) cmdGet() *Command {
	var asJSON bool

	flags := flag.NewFlagSet("get", flag.ContinueOnError)
	flags.BoolVar(&asJSON, "json", false, "Print values as JSON")

	return &Command{
		Flags: flags,
		Usage: "get <key> <file>...",
		Short: "Print the value of a key",
		Long: `Print the value of a top-level key. Scalars print as their text and
collections as YAML. With several files each value is prefixed by its file.
With --json one JSON value is printed, or an object keyed by file.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) < 2 {
				return errUsage
			}

			key, files := args[0], args[1:]
			collected := map[string]any{}

			err := a.eachDocument(ctx, o, files, func(arg string, doc frontmatter.Document) error {
				value, ok := doc.Get(key)
				if !ok {
					return fmt.Errorf("%q: %w", key, frontmatter.ErrKeyNotFound)
				}

				if asJSON {
					collected[arg] = query.Env(doc.Preamble())[key]

					return nil
				}

				text, err := a.renderValue(value)
				if err != nil {
					return err
				}

				if len(files) == 1 {
					o.Printf("%s", text)

					return nil
				}

				if value.IsScalar() {
					o.Printf("%s: %s", o.colors.header.Sprint(arg), text)
				} else {
					o.Printf("%s:\n%s", o.colors.header.Sprint(arg), indentLines(text, "  "))
				}

				return nil
			})
			if err != nil || !asJSON {
				return err
			}

			var out any = collected
			if len(files) == 1 {
				out = collected[files[0]]
			}

			return printJSON(o, out)
		},
	}
}

// renderValue prints scalars as bare text and collections as YAML with the
// resolved profile.
func (a *app) renderValue(value node.Node) (string, error) {
	if text, ok := value.AsScalar(); ok {
		return text + "\n", nil
	}

	p := a.profile()
	p.ExplicitStart, p.ExplicitEnd = false, false

	return yamlcodec.Emit(value, p)
}

func (a *app) cmdLines() *Command {
	return &Command{
		Flags: flag.NewFlagSet("lines", flag.ContinueOnError),
		Usage: "lines <key> <file>",
		Short: "Print the source lines of a key",
		Long: `Print the 1-based line range a top-level key occupies in the file,
followed by those lines. Trailing blank and comment lines are excluded.`,
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) != 2 {
				return errUsage
			}

			doc, text, err := a.load(args[1])
			if err != nil {
				return err
			}

			r, err := doc.KeyLines(args[0])
			if err != nil {
				return err
			}

			extracted, err := frontmatter.ExtractLines(text, r)
			if err != nil {
				return err
			}

			o.Println(o.colors.header.Sprint(r.String()))
			o.Printf("%s", extracted)

			return nil
		},
	}
}

func (a *app) cmdQuery() *Command {
	var asJSON bool

	flags := flag.NewFlagSet("query", flag.ContinueOnError)
	flags.BoolVar(&asJSON, "json", false, "Print results as JSON")

	return &Command{
		Flags: flags,
		Usage: "query <expr> <file>...",
		Short: "Evaluate an expression against each file",
		Long: `Evaluate an expression with the file's front matter as variables and
print the result. Missing keys are nil.

Examples:
  fr query 'len(tags)' post.md
  fr query 'path("author.name")' *.md`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) < 2 {
				return errUsage
			}

			program, err := query.Compile(args[0])
			if err != nil {
				return err
			}

			files := args[1:]
			collected := map[string]any{}

			err = a.eachDocument(ctx, o, files, func(arg string, doc frontmatter.Document) error {
				result, err := program.Eval(doc.Preamble())
				if err != nil {
					return err
				}

				if asJSON {
					collected[arg] = result

					return nil
				}

				text, err := formatResult(result)
				if err != nil {
					return err
				}

				if len(files) == 1 {
					o.Println(text)
				} else {
					o.Printf("%s: %s\n", o.colors.header.Sprint(arg), text)
				}

				return nil
			})
			if err != nil || !asJSON {
				return err
			}

			var out any = collected
			if len(files) == 1 {
				out = collected[files[0]]
			}

			return printJSON(o, out)
		},
	}
}

func (a *app) cmdSearch() *Command {
	return &Command{
		Flags: flag.NewFlagSet("search", flag.ContinueOnError),
		Usage: "search <expr> <file>...",
		Short: "Print the files whose front matter matches",
		Long: `Print each file for which the boolean expression holds.

Example:
  fr search '"go" in tags && !draft' *.md`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) < 2 {
				return errUsage
			}

			program, err := query.Compile(args[0])
			if err != nil {
				return err
			}

			return a.eachDocument(ctx, o, args[1:], func(arg string, doc frontmatter.Document) error {
				matched, err := program.Match(doc.Preamble())
				if err != nil {
					return err
				}

				if matched {
					o.Println(o.colors.match.Sprint(arg))
				}

				return nil
			})
		},
	}
}

// formatResult prints strings bare and everything else as JSON.
func formatResult(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("format result: %w", err)
	}

	return string(data), nil
}

func printJSON(o *IO, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("format JSON: %w", err)
	}

	o.Println(string(data))

	return nil
}

func indentLines(text, prefix string) string {
	lines := strings.SplitAfter(text, "\n")

	var b strings.Builder

	for _, line := range lines {
		if line == "" {
			continue
		}

		b.WriteString(prefix + line)
	}

	return b.String()
}
