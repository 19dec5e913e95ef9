package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"chaintodo/internal/config"
	"chaintodo/internal/exitcode"
	"chaintodo/internal/logging"
	"chaintodo/internal/service"
	"chaintodo/internal/tasks"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct{}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string     { return "chaintodo add <content...>" }
func (c *AddCmd) NeedsLedger() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	content := strings.Join(args, " ")
	if strings.TrimSpace(content) == "" {
		fmt.Fprintln(errOut, "error: task content required")
		return exitcode.UserError
	}

	if !confirm(cfg, errOut, tasks.ConfirmCreate(content)) {
		return cancelled(cfg, out)
	}

	status(cfg, errOut, tasks.StatusCreating)
	list, err := tasks.Create(ctx, svc, content)
	if err != nil {
		logging.FromContext(ctx).Error("create failed", "err", err)
		return fail(errOut, tasks.StatusCreateErr, err)
	}
	logging.FromContext(ctx).Debug("task created", "tasks", len(list))

	if !cfg.Quiet {
		fmt.Fprintln(out, tasks.StatusCreated)
	}
	return exitcode.Success
}
