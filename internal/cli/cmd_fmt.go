package cli

import (
	"context"

	flag "github.com/spf13/pflag"

	"github.com/DandyLyons/frontrange/pkg/frontmatter"
)

func (a *app) cmdFmt() *Command {
	var (
		opts  editOptions
		check bool
	)

	flags := flag.NewFlagSet("fmt", flag.ContinueOnError)
	opts.register(flags)
	flags.BoolVar(&check, "check", false, "Report files that are not formatted, without writing")

	return &Command{
		Flags: flags,
		Usage: "fmt [--check] <file>...",
		Short: "Re-render front matter with the resolved profile",
		Long: `Re-render each file's front matter with the resolved formatting profile.
The body is left untouched. With --check nothing is written and each file
that would change is reported as a warning.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) < 1 {
				return errUsage
			}

			if !check {
				return a.edit(ctx, o, args, opts.dryRun, "formatted", func(doc frontmatter.Document) (frontmatter.Document, bool, error) {
					return doc, true, nil
				})
			}

			return a.eachDocument(ctx, o, args, func(arg string, doc frontmatter.Document) error {
				text, err := frontmatter.Print(doc, a.profile())
				if err != nil {
					return err
				}

				if source, _ := doc.Source(); source != text {
					o.WarnLLM(arg+": not formatted", "run fr fmt "+arg)
				}

				return nil
			})
		},
	}
}
