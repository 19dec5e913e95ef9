package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"chaintodo/internal/config"
	"chaintodo/internal/exitcode"
	"chaintodo/internal/importer"
	"chaintodo/internal/logging"
	"chaintodo/internal/service"
)

func init() {
	Register(&ImportCmd{})
}

// ImportCmd implements the import command.
type ImportCmd struct{}

func (c *ImportCmd) Name() string      { return "import" }
func (c *ImportCmd) Aliases() []string { return nil }
func (c *ImportCmd) Synopsis() string  { return "Create tasks from a JSON file" }
func (c *ImportCmd) Usage() string     { return "chaintodo import <file.json>" }
func (c *ImportCmd) NeedsLedger() bool { return true }

func (c *ImportCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ImportCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "error: import file required")
		return exitcode.UserError
	}

	f, err := os.Open(args[0])
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	defer f.Close()

	items, err := importer.Parse(f)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if len(items) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "nothing to import")
		}
		return exitcode.Success
	}

	if !confirm(cfg, errOut, fmt.Sprintf("Import %d tasks? Each one is a separate transaction.", len(items))) {
		return cancelled(cfg, out)
	}

	n, err := importer.Run(ctx, svc, items)
	if err != nil {
		var ierr *importer.ImportError
		if errors.As(err, &ierr) {
			logging.FromContext(ctx).Warn("import stopped", "done", ierr.Done, "total", ierr.Total)
		}
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitCodeFor(err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "imported %d tasks\n", n)
	}
	return exitcode.Success
}
