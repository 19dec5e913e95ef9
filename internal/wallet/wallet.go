// Package wallet loads the signing key that authorizes ledger writes.
package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Environment variables consulted by Load.
const (
	EnvPrivateKey       = "CHAINTODO_PRIVATE_KEY"
	EnvKeystorePassword = "CHAINTODO_KEYSTORE_PASSWORD"
)

var (
	// ErrNoWallet is returned when neither a private key nor a keystore is configured.
	ErrNoWallet = errors.New("no wallet configured (set " + EnvPrivateKey + " or keystore in config.toml)")

	// ErrWalletLocked is returned when the keystore cannot be decrypted.
	ErrWalletLocked = errors.New("wallet locked: keystore passphrase rejected")
)

// Wallet is an unlocked signer.
type Wallet struct {
	Address common.Address
	key     *ecdsa.PrivateKey
}

// Load unlocks the signer. A hex private key in the environment wins over
// the keystore file at keystorePath.
func Load(keystorePath string, getenv func(string) string) (*Wallet, error) {
	if hexKey := strings.TrimSpace(getenv(EnvPrivateKey)); hexKey != "" {
		return FromHex(hexKey)
	}
	if keystorePath == "" {
		return nil, ErrNoWallet
	}

	data, err := os.ReadFile(keystorePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: keystore not found: %s", ErrNoWallet, keystorePath)
		}
		return nil, fmt.Errorf("read keystore: %w", err)
	}

	key, err := keystore.DecryptKey(data, getenv(EnvKeystorePassword))
	if err != nil {
		if errors.Is(err, keystore.ErrDecrypt) {
			return nil, ErrWalletLocked
		}
		return nil, fmt.Errorf("invalid keystore: %w", err)
	}
	return &Wallet{Address: key.Address, key: key.PrivateKey}, nil
}

// FromHex builds a wallet from a hex private key, with or without 0x.
func FromHex(hexKey string) (*Wallet, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return &Wallet{Address: crypto.PubkeyToAddress(key.PublicKey), key: key}, nil
}

// Transactor returns signing options bound to chainID and ctx.
func (w *Wallet) Transactor(ctx context.Context, chainID *big.Int) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(w.key, chainID)
	if err != nil {
		return nil, err
	}
	opts.Context = ctx
	return opts, nil
}
