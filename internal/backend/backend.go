// Package backend opens the task ledger selected in config.
package backend

import (
	"context"
	"fmt"
	"os"

	"chaintodo/internal/backend/ethereum"
	"chaintodo/internal/backend/sqlite"
	"chaintodo/internal/config"
	"chaintodo/internal/logging"
	"chaintodo/internal/service"
	"chaintodo/internal/wallet"
)

// Open returns the ledger for cfg.Settings.Backend. The result implements
// io.Closer.
func Open(ctx context.Context, cfg *config.Config) (service.Service, error) {
	logger := logging.FromContext(ctx)

	switch cfg.Settings.Backend {
	case config.BackendLocal:
		logger.Debug("opening local ledger", "path", cfg.Settings.LocalDB)
		store, err := sqlite.Open(ctx, cfg.Settings.LocalDB)
		if err != nil {
			return nil, err
		}
		return store, nil

	case config.BackendEthereum:
		w, err := wallet.Load(cfg.Settings.Keystore, os.Getenv)
		if err != nil {
			return nil, err
		}
		logger.Debug("opening contract", "address", cfg.Settings.ContractAddress, "signer", w.Address.Hex())
		client, err := ethereum.New(ctx, cfg, w)
		if err != nil {
			return nil, err
		}
		return client, nil

	default:
		return nil, fmt.Errorf("unknown backend: %s", cfg.Settings.Backend)
	}
}
