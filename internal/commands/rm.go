package commands

import (
	"context"
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
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct{}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete a task" }
func (c *RmCmd) Usage() string     { return "chaintodo rm <n>" }
func (c *RmCmd) NeedsLedger() bool { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	num, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	_, task, err := findTaskByNumber(ctx, svc, num)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitCodeFor(err)
	}

	if !confirm(cfg, errOut, tasks.ConfirmDelete(task.Content)) {
		return cancelled(cfg, out)
	}

	logging.FromContext(ctx).Debug("deleteTask", "id", task.ID)
	status(cfg, errOut, tasks.StatusDeleting)
	if _, err := tasks.Delete(ctx, svc, task.ID); err != nil {
		logging.FromContext(ctx).Error("delete failed", "id", task.ID, "err", err)
		return fail(errOut, tasks.StatusDeleteErr, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, tasks.StatusDeleted)
	}
	return exitcode.Success
}
