package backend

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"chaintodo/internal/config"
	"chaintodo/internal/wallet"
)

func TestOpen_Local(t *testing.T) {
	cfg := &config.Config{Settings: config.Settings{
		Backend: config.BackendLocal,
		LocalDB: filepath.Join(t.TempDir(), "nested", "tasks.db"),
	}}

	svc, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer svc.(io.Closer).Close()

	if err := svc.CreateTask(context.Background(), "hello"); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	count, err := svc.TaskCount(context.Background())
	if err != nil || count != 1 {
		t.Errorf("expected count 1, got %d (%v)", count, err)
	}
}

func TestOpen_EthereumWithoutWallet(t *testing.T) {
	t.Setenv(wallet.EnvPrivateKey, "")
	cfg := &config.Config{Settings: config.Settings{
		Backend:         config.BackendEthereum,
		RPCURL:          "http://127.0.0.1:8545",
		ContractAddress: "0x5FbDB2315678afecb367f032d93F642f64180aa3",
		Keystore:        filepath.Join(t.TempDir(), "missing.json"),
	}}

	_, err := Open(context.Background(), cfg)
	if !errors.Is(err, wallet.ErrNoWallet) {
		t.Errorf("expected ErrNoWallet, got %v", err)
	}
}

func TestOpen_Unknown(t *testing.T) {
	cfg := &config.Config{Settings: config.Settings{Backend: "ipfs"}}
	if _, err := Open(context.Background(), cfg); err == nil {
		t.Error("expected error for unknown backend")
	}
}
