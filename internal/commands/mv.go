package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"chaintodo/internal/config"
	"chaintodo/internal/exitcode"
	"chaintodo/internal/logging"
	"chaintodo/internal/service"
	"chaintodo/internal/tasks"
)

func init() {
	Register(&MvCmd{})
}

// MvCmd implements the mv command.
type MvCmd struct{}

func (c *MvCmd) Name() string      { return "mv" }
func (c *MvCmd) Aliases() []string { return []string{"move"} }
func (c *MvCmd) Synopsis() string  { return "Move a task to another position" }
func (c *MvCmd) Usage() string     { return "chaintodo mv <from> <to>" }
func (c *MvCmd) NeedsLedger() bool { return true }

func (c *MvCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *MvCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) != 2 {
		fmt.Fprintln(errOut, "error: from and to positions required")
		return exitcode.UserError
	}
	from, err := parsePosition(args[0])
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	to, err := parsePosition(args[1])
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	list, err := tasks.Load(ctx, svc)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitCodeFor(err)
	}
	if _, err := tasks.At(list, from); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if _, err := tasks.At(list, to); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if from == to {
		if !cfg.Quiet {
			fmt.Fprintln(out, tasks.StatusReordered)
		}
		return exitcode.Success
	}

	status(cfg, errOut, tasks.StatusReordering)
	if _, err := tasks.Reorder(ctx, svc, list, from-1, to-1); err != nil {
		var rerr *tasks.ReorderError
		if errors.As(err, &rerr) {
			logging.FromContext(ctx).Warn("reorder left partially applied",
				"applied", rerr.Applied, "total", rerr.Total, "err", rerr.Err)
		}
		return fail(errOut, tasks.StatusReorderErr, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, tasks.StatusReordered)
	}
	return exitcode.Success
}
