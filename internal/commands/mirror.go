package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"chaintodo/internal/config"
	"chaintodo/internal/exitcode"
	"chaintodo/internal/mirror"
	"chaintodo/internal/mirror/googletasks"
	"chaintodo/internal/service"
)

func init() {
	Register(&MirrorCmd{})
}

// newMirrorTarget opens the remote side of a mirror. Tests replace it.
var newMirrorTarget = func(ctx context.Context, cfg *config.Config) (mirror.Target, error) {
	return googletasks.New(ctx, cfg)
}

// MirrorCmd implements the mirror command.
type MirrorCmd struct {
	list string
}

func (c *MirrorCmd) Name() string      { return "mirror" }
func (c *MirrorCmd) Aliases() []string { return []string{"sync"} }
func (c *MirrorCmd) Synopsis() string  { return "Copy tasks to a Google Tasks list" }
func (c *MirrorCmd) Usage() string     { return "chaintodo mirror [--list <name>]" }
func (c *MirrorCmd) NeedsLedger() bool { return true }

func (c *MirrorCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.list, "list", "", "")
}

func (c *MirrorCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	if !cfg.HasOAuthClient() {
		fmt.Fprintf(errOut, "error: oauth_client.json not found in %s (run: chaintodo login)\n", cfg.Dir)
		return exitcode.AuthError
	}
	if !cfg.HasToken() {
		fmt.Fprintln(errOut, "error: not logged in (run: chaintodo login)")
		return exitcode.AuthError
	}

	listName := c.list
	if listName == "" {
		listName = cfg.Settings.MirrorList
	}

	target, err := newMirrorTarget(ctx, cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
		return exitcode.AuthError
	}

	res, err := mirror.Sync(ctx, svc, target, listName)
	if err != nil {
		fmt.Fprintf(errOut, "error: mirror failed after %s: %v\n", res, err)
		return exitCodeFor(err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "mirrored to %q: %s\n", listName, res)
	}
	return exitcode.Success
}
