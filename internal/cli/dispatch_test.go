package cli_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chaintodo/internal/cli"
	"chaintodo/internal/commands"
	"chaintodo/internal/config"
	"chaintodo/internal/exitcode"
	"chaintodo/internal/service"
	"chaintodo/internal/testutil"
	"chaintodo/internal/wallet"
)

// testFactory creates a service factory that returns the given FakeService.
func testFactory(svc service.Service) cli.ServiceFactory {
	return func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		return svc, nil
	}
}

func errFactory(err error) cli.ServiceFactory {
	return func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		return nil, err
	}
}

// run dispatches args with an isolated config directory.
func run(t *testing.T, factory cli.ServiceFactory, stdin string, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	for _, key := range []string{"CHAINTODO_BACKEND", "CHAINTODO_RPC_URL", "CHAINTODO_CONTRACT_ADDRESS", "CHAINTODO_LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	var in io.Reader
	if stdin != "" {
		in = strings.NewReader(stdin)
	}

	full := args
	if len(args) > 0 {
		full = append([]string{args[0], "--config", t.TempDir()}, args[1:]...)
	}

	var outBuf, errBuf bytes.Buffer
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)
	code = dispatcher.Run(context.Background(), full, in, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	_, stderr, code := run(t, testFactory(testutil.NewFakeService()), "", "unknowncmd")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: unknown command: unknowncmd\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	var outBuf, errBuf bytes.Buffer
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))
	code := dispatcher.Run(context.Background(), []string{"--quiet"}, nil, &outBuf, &errBuf)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if errBuf.String() != "error: unknown command: --quiet\n" {
		t.Errorf("unexpected stderr %q", errBuf.String())
	}
}

func TestDispatcher_CaseInsensitiveAlias(t *testing.T) {
	stdout, _, code := run(t, nil, "", "VERSION")
	if code != exitcode.Success || stdout != "chaintodo 0.1.0\n" {
		t.Errorf("unexpected result %q (%d)", stdout, code)
	}
}

func TestDispatcher_UnknownFlag(t *testing.T) {
	_, stderr, code := run(t, nil, "", "help", "--unknown")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: unknown flag: -unknown\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_FlagNeedsValue(t *testing.T) {
	var outBuf, errBuf bytes.Buffer
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, nil)
	code := dispatcher.Run(context.Background(), []string{"list", "--config"}, nil, &outBuf, &errBuf)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if errBuf.String() != "error: flag needs an argument: -config\n" {
		t.Errorf("unexpected stderr %q", errBuf.String())
	}
}

func TestDispatcher_AddWithYes(t *testing.T) {
	svc := testutil.NewFakeService()
	stdout, _, code := run(t, testFactory(svc), "", "add", "--yes", "--quiet", "Buy", "milk")

	if code != exitcode.Success {
		t.Fatalf("expected success, got %d", code)
	}
	if stdout != "" {
		t.Errorf("expected quiet output, got %q", stdout)
	}
	if snap := svc.Snapshot(); len(snap) != 1 || snap[0].Content != "Buy milk" {
		t.Errorf("unexpected ledger %+v", snap)
	}
}

func TestDispatcher_StdinConfirms(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("drop me", false)

	_, stderr, code := run(t, testFactory(svc), "y\n", "rm", "1")
	if code != exitcode.Success {
		t.Fatalf("expected success, got %d: %s", code, stderr)
	}
	if !svc.Snapshot()[0].Deleted() {
		t.Error("expected task to be deleted")
	}
}

func TestDispatcher_FactoryErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   int
		prefix string
	}{
		{"no wallet", fmt.Errorf("load signer: %w", wallet.ErrNoWallet), exitcode.AuthError, "error: please connect your wallet: "},
		{"locked wallet", wallet.ErrWalletLocked, exitcode.AuthError, "error: please connect your wallet: "},
		{"rpc down", errors.New("dial tcp: connection refused"), exitcode.BackendError, "error: backend error: "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, code := run(t, errFactory(tt.err), "", "list")
			if code != tt.code {
				t.Errorf("expected exit code %d, got %d", tt.code, code)
			}
			if !strings.HasPrefix(stderr, tt.prefix) {
				t.Errorf("expected prefix %q, got %q", tt.prefix, stderr)
			}
		})
	}
}

func TestDispatcher_LedgerNotOpenedForHelp(t *testing.T) {
	_, _, code := run(t, errFactory(errors.New("must not be called")), "", "help")
	if code != exitcode.Success {
		t.Errorf("expected help to skip the ledger, got %d", code)
	}
}

type closingService struct {
	*testutil.FakeService
	closed bool
}

func (c *closingService) Close() error {
	c.closed = true
	return nil
}

func TestDispatcher_ClosesLedger(t *testing.T) {
	svc := &closingService{FakeService: testutil.NewFakeService()}
	_, _, code := run(t, testFactory(svc), "", "list")
	if code != exitcode.Success {
		t.Fatalf("expected success, got %d", code)
	}
	if !svc.closed {
		t.Error("expected ledger to be closed after the command")
	}
}

func TestDispatcher_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.ConfigFile), []byte(`backend = "ethereum"`), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CHAINTODO_RPC_URL", "")
	t.Setenv("CHAINTODO_CONTRACT_ADDRESS", "")
	t.Setenv("CHAINTODO_BACKEND", "")

	var outBuf, errBuf bytes.Buffer
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))
	code := dispatcher.Run(context.Background(), []string{"list", "--config", dir}, nil, &outBuf, &errBuf)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(errBuf.String(), "error: ") {
		t.Errorf("unexpected stderr %q", errBuf.String())
	}
}
