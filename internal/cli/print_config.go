package cli

import (
	"context"

	flag "github.com/spf13/pflag"

	"github.com/DandyLyons/frontrange/internal/config"
)

func (a *app) cmdPrintConfig() *Command {
	return &Command{
		Flags: flag.NewFlagSet("print-config", flag.ContinueOnError),
		Usage: "print-config",
		Short: "Show resolved configuration",
		Long: `Show the formatting profile after merging defaults, the global config,
the project config and command line flags, followed by the files used.`,
		Exec: func(_ context.Context, o *IO, _ []string) error {
			formatted, err := config.Format(a.cfg)
			if err != nil {
				return err
			}

			o.Println(formatted)

			sources := a.cfg.Sources

			o.Println("")
			o.Println("# Sources:")

			if sources.Global != "" {
				o.Println("#   global:", sources.Global)
			}

			if sources.Project != "" {
				o.Println("#   project:", sources.Project)
			}

			if sources.Global == "" && sources.Project == "" {
				o.Println("#   (using defaults only)")
			}

			return nil
		},
	}
}
