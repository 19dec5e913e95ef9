// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"

	"chaintodo/internal/config"
	"chaintodo/internal/service"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsLedger returns true if the command reads or writes tasks.
	// Commands like help, version, login, logout return false.
	NeedsLedger() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// cfg is always provided (config dir, settings, prompt input).
	// svc is nil if NeedsLedger() returns false.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int
}
