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
	Register(&ToggleCmd{})
}

// ToggleCmd implements the toggle command.
type ToggleCmd struct{}

func (c *ToggleCmd) Name() string      { return "toggle" }
func (c *ToggleCmd) Aliases() []string { return []string{"done"} }
func (c *ToggleCmd) Synopsis() string  { return "Mark a task complete or incomplete" }
func (c *ToggleCmd) Usage() string     { return "chaintodo toggle <n>" }
func (c *ToggleCmd) NeedsLedger() bool { return true }

func (c *ToggleCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ToggleCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
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

	if !confirm(cfg, errOut, tasks.ConfirmToggle(task.Content, task.Completed)) {
		return cancelled(cfg, out)
	}

	status(cfg, errOut, tasks.StatusToggling)
	if _, err := tasks.Toggle(ctx, svc, task.ID); err != nil {
		logging.FromContext(ctx).Error("toggle failed", "id", task.ID, "err", err)
		return fail(errOut, tasks.StatusToggleErr, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, tasks.StatusToggled(task.Content))
	}
	return exitcode.Success
}
