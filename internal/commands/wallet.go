package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"chaintodo/internal/config"
	"chaintodo/internal/exitcode"
	"chaintodo/internal/output"
	"chaintodo/internal/service"
)

func init() {
	Register(&WalletCmd{})
}

// WalletCmd implements the wallet command: it connects and reports the signer.
type WalletCmd struct{}

func (c *WalletCmd) Name() string      { return "wallet" }
func (c *WalletCmd) Aliases() []string { return []string{"connect"} }
func (c *WalletCmd) Synopsis() string  { return "Connect the wallet and show its address" }
func (c *WalletCmd) Usage() string     { return "chaintodo wallet" }
func (c *WalletCmd) NeedsLedger() bool { return true }

func (c *WalletCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WalletCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	account, err := svc.Account(ctx)
	if err != nil {
		fmt.Fprintf(errOut, "error: please connect your wallet: %v\n", err)
		return exitCodeFor(err)
	}
	output.FormatAccount(out, cfg.Settings.Backend, account)
	return exitcode.Success
}
