// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, out-of-range position, empty content).
	UserError = 1

	// AuthError indicates a wallet or credentials error (no wallet, locked keystore, not logged in).
	AuthError = 2

	// BackendError indicates a ledger, RPC or transaction failure.
	BackendError = 3
)
