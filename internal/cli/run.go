// Package cli implements fr, a command line tool that reads and edits the
// YAML front matter of text documents.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mattn/go-isatty"
	flag "github.com/spf13/pflag"

	"github.com/DandyLyons/frontrange/internal/config"
	"github.com/DandyLyons/frontrange/internal/fs"
	"github.com/DandyLyons/frontrange/pkg/render"
	"github.com/DandyLyons/frontrange/pkg/schema"
)

// Run is the main entry point. Returns exit code.
//
// env is the process environment. A value received on sigCh cancels the
// running command between files.
func Run(_ io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	return run(fs.NewReal(), out, errOut, args, env, sigCh)
}

// app is the state shared by every command of one invocation.
type app struct {
	fs      fs.FS
	env     map[string]string
	global  globalFlags
	format  *formatFlags
	workDir string
	cfg     config.Config
	schemas *schema.Cache
}

type globalFlags struct {
	workDir    string
	configPath string
	help       bool
}

func run(fsys fs.FS, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	a := &app{fs: fsys, env: env, format: newFormatFlags(), schemas: schema.NewCache(fsys)}

	globals := flag.NewFlagSet("fr", flag.ContinueOnError)
	globals.SetInterspersed(false)
	globals.SetOutput(&strings.Builder{})
	globals.StringVarP(&a.global.workDir, "cwd", "C", "", "Run as if started in `dir`")
	globals.StringVarP(&a.global.configPath, "config", "c", "", "Use the config `file` instead of searching for "+config.FileName)
	globals.BoolVarP(&a.global.help, "help", "h", false, "Show help")
	globals.AddFlagSet(a.format.set)

	if len(args) > 0 {
		args = args[1:]
	}

	if err := globals.Parse(args); err != nil {
		fprintln(errOut, "error:", err)
		printUsage(errOut, a.commands())

		return 1
	}

	rest := globals.Args()
	if a.global.help || len(rest) == 0 {
		printUsage(out, a.commands())

		return 0
	}

	cmd, ok := a.lookup(rest[0])
	if !ok {
		fprintln(errOut, "error:", fmt.Errorf("%w: %s", errUnknownCmd, rest[0]))
		printUsage(errOut, a.commands())

		return 1
	}

	cmd.Flags.AddFlagSet(a.format.set)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sigCh != nil {
		go func() {
			select {
			case <-sigCh:
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	o := NewIO(out, errOut)

	return cmd.Run(ctx, o, rest[1:], func() error {
		if err := a.setup(); err != nil {
			return err
		}

		o.SetColor(a.colorEnabled(out))

		return nil
	})
}

// setup resolves the working directory and loads the configuration once
// all flags are known.
func (a *app) setup() error {
	workDir := a.global.workDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("cannot get working directory: %w", err)
		}

		workDir = wd
	}

	abs, err := filepath.Abs(workDir)
	if err != nil {
		return fmt.Errorf("cannot resolve working directory: %w", err)
	}

	a.workDir = abs

	overrides, err := a.format.partial()
	if err != nil {
		return err
	}

	cfg, err := config.Load(config.Input{
		FS:         a.fs,
		WorkDir:    a.workDir,
		ConfigPath: a.global.configPath,
		Env:        environ(a.env),
		Overrides:  overrides,
	})
	if err != nil {
		return err
	}

	a.cfg = cfg

	return nil
}

// colorEnabled reports whether output goes to a terminal and the user did
// not opt out with --no-color or NO_COLOR.
func (a *app) colorEnabled(out io.Writer) bool {
	if a.format.noColor {
		return false
	}

	if _, ok := a.env["NO_COLOR"]; ok {
		return false
	}

	f, ok := out.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (a *app) profile() render.Profile {
	return a.cfg.Profile
}

// path resolves a command argument against the working directory.
func (a *app) path(arg string) string {
	if filepath.IsAbs(arg) {
		return arg
	}

	return filepath.Join(a.workDir, arg)
}

func (a *app) lookup(name string) (*Command, bool) {
	for _, c := range a.commands() {
		if c.Name() == name {
			return c, true
		}
	}

	return nil, false
}

func (a *app) commands() []*Command {
	return []*Command{
		a.cmdGet(),
		a.cmdSet(),
		a.cmdRemove(),
		a.cmdRename(),
		a.cmdSortKeys(),
		a.cmdReorder(),
		a.cmdArray(),
		a.cmdLines(),
		a.cmdQuery(),
		a.cmdSearch(),
		a.cmdValidate(),
		a.cmdFmt(),
		a.cmdPrintConfig(),
	}
}

func environ(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}

	slices.Sort(out)

	return out
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func printUsage(writer io.Writer, cmds []*Command) {
	fprintln(writer, `fr - read and edit YAML front matter

Usage: fr [options] <command> [args]

Options:
  -C, --cwd <dir>         Run as if started in <dir>
  -c, --config <file>     Use specified config file
      --no-color          Disable colored output

Formatting (also accepted after the command):
      --indent <n>        Spaces per nesting level
      --width <n>         Preferred line width, 0 disables wrapping
      --canonical         Emit canonical YAML
      --sort-keys         Sort mapping keys
      --explicit-start    Mark the YAML document start
      --explicit-end      Mark the YAML document end
      --no-unicode        Escape non-ASCII characters
      --line-break <lb>   lf, crlf or cr
      --sequence-style    automatic, block or flow
      --mapping-style     automatic, block or flow
      --scalar-style      automatic, plain, single-quoted, double-quoted, literal or folded

Commands:`)

	for _, c := range cmds {
		fprintln(writer, c.HelpLine())
	}
}
