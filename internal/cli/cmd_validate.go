package cli

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/DandyLyons/frontrange/internal/config"
	"github.com/DandyLyons/frontrange/pkg/frontmatter"
	"github.com/DandyLyons/frontrange/pkg/node"
	"github.com/DandyLyons/frontrange/pkg/schema"
)

func (a *app) cmdValidate() *Command {
	var schemaPath string

	flags := flag.NewFlagSet("validate", flag.ContinueOnError)
	flags.StringVarP(&schemaPath, "schema", "s", "", "Validate against this schema `file`")

	return &Command{
		Flags: flags,
		Usage: "validate [--schema <file>] <file>...",
		Short: "Check front matter against a JSON schema",
		Long: `Check each file's front matter against a JSON schema. The schema is,
in order of priority: --schema, the file's own "$schema" key (relative to
the file), or the "schema" entry of the project config. Files with no
schema, or with violations, are reported as warnings.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) < 1 {
				return errUsage
			}

			resolver := schema.Resolver{Project: a.cfg.Schema}
			if schemaPath != "" {
				resolver.Explicit = a.path(schemaPath)
			}

			return a.eachDocument(ctx, o, args, func(arg string, doc frontmatter.Document) error {
				src := resolver.Resolve(a.path(arg), doc.Preamble())
				if src.Origin == schema.OriginNone {
					o.WarnLLM(arg+": no schema applies", "pass --schema, add a \"$schema\" key, or set \"schema\" in "+config.FileName)

					return nil
				}

				s, err := a.schemas.Load(src.Path)
				if err != nil {
					return err
				}

				violations := schema.Validate(node.FromMapping(doc.Preamble()), s)
				if len(violations) == 0 {
					o.Println(arg + ": ok")

					return nil
				}

				for _, v := range violations {
					o.Printf("%s: %s\n", o.colors.removed.Sprint(arg), v)
				}

				o.WarnLLM(fmt.Sprintf("%s: %d schema violation(s) against %s", arg, len(violations), src.Path), "fix the listed fields")

				return nil
			})
		},
	}
}
