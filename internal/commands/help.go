package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"chaintodo/internal/config"
	"chaintodo/internal/exitcode"
	"chaintodo/internal/service"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "chaintodo help" }
func (c *HelpCmd) NeedsLedger() bool { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	fmt.Fprintln(out, "\nCommands:")
	for _, cmd := range DefaultRegistry.All() {
		name := cmd.Name()
		if aliases := cmd.Aliases(); len(aliases) > 0 {
			name += " (" + strings.Join(aliases, ", ") + ")"
		}
		fmt.Fprintf(out, "  %-22s %s\n", name, cmd.Synopsis())
	}
	return exitcode.Success
}

const helpText = `Usage:
  chaintodo                                  List all tasks
  chaintodo list [common flags] [--open]     List tasks (--open hides completed)
  chaintodo add [common flags] <content...>
  chaintodo toggle [common flags] <n>
  chaintodo rm [common flags] <n>
  chaintodo mv [common flags] <from> <to>
  chaintodo wallet [common flags]
  chaintodo tui [common flags]
  chaintodo serve [common flags] [--addr <host:port>]
  chaintodo import [common flags] <file.json>
  chaintodo mirror [common flags] [--list <name>]
  chaintodo login [common flags]
  chaintodo logout [common flags]
  chaintodo help
  chaintodo version

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
  --yes            Answer yes to confirmation prompts
`
