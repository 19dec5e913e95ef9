package commands

import (
	"errors"
	"fmt"
	"io"

	"chaintodo/internal/exitcode"
	"chaintodo/internal/service"
	"chaintodo/internal/tasks"
	"chaintodo/internal/wallet"
)

// fail prints the generic failure line followed by the cause and maps the
// cause to an exit code.
func fail(errOut io.Writer, statusMsg string, err error) int {
	fmt.Fprintf(errOut, "error: %s %v\n", statusMsg, err)
	return exitCodeFor(err)
}

func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, wallet.ErrNoWallet), errors.Is(err, wallet.ErrWalletLocked):
		return exitcode.AuthError
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, tasks.ErrOutOfRange),
		errors.Is(err, tasks.ErrEmptyContent):
		return exitcode.UserError
	default:
		return exitcode.BackendError
	}
}
