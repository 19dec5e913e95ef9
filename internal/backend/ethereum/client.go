// Package ethereum implements the service.Service interface against the
// deployed task-list contract.
package ethereum

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/oauth2"

	"chaintodo/internal/config"
	"chaintodo/internal/logging"
	"chaintodo/internal/service"
	"chaintodo/internal/wallet"
)

const (
	// APITimeout bounds each read call. Confirmation waits are bounded only
	// by the caller's context.
	APITimeout = 10 * time.Second
)

//go:embed todolist.abi.json
var todoListABI string

// ErrReverted is returned when a transaction is mined with a failed status.
var ErrReverted = errors.New("transaction reverted")

// Backend is what the client needs from a chain connection: contract calls,
// transaction submission and receipt lookup.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

// Client implements service.Service using a bound contract.
type Client struct {
	backend  Backend
	contract *bind.BoundContract
	wallet   *wallet.Wallet
	chainID  *big.Int
	logger   *log.Logger
	closer   func()
}

// ParseABI parses the embedded contract interface.
func ParseABI() (abi.ABI, error) {
	return abi.JSON(strings.NewReader(todoListABI))
}

// New dials rpc_url and binds the contract at contract_address to w.
// If rpc_token is set it is sent as a bearer token on every RPC request.
func New(ctx context.Context, cfg *config.Config, w *wallet.Wallet) (*Client, error) {
	s := cfg.Settings

	var rpcClient *rpc.Client
	var err error
	if s.RPCToken != "" {
		httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: s.RPCToken,
			TokenType:   "Bearer",
		}))
		rpcClient, err = rpc.DialOptions(ctx, s.RPCURL, rpc.WithHTTPClient(httpClient))
	} else {
		rpcClient, err = rpc.DialContext(ctx, s.RPCURL)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", s.RPCURL, err)
	}
	eth := ethclient.NewClient(rpcClient)

	chainID := big.NewInt(s.ChainID)
	if s.ChainID == 0 {
		callCtx, cancel := context.WithTimeout(ctx, APITimeout)
		chainID, err = eth.ChainID(callCtx)
		cancel()
		if err != nil {
			eth.Close()
			return nil, wrapError(fmt.Errorf("failed to read chain id: %w", err))
		}
	}

	c, err := NewWithBackend(eth, common.HexToAddress(s.ContractAddress), w, chainID)
	if err != nil {
		eth.Close()
		return nil, err
	}
	c.logger = logging.FromContext(ctx)
	c.closer = eth.Close
	return c, nil
}

// NewWithBackend binds the contract at address on an existing backend.
func NewWithBackend(backend Backend, address common.Address, w *wallet.Wallet, chainID *big.Int) (*Client, error) {
	if w == nil {
		return nil, wallet.ErrNoWallet
	}
	parsed, err := ParseABI()
	if err != nil {
		return nil, fmt.Errorf("invalid contract abi: %w", err)
	}
	return &Client{
		backend:  backend,
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
		wallet:   w,
		chainID:  chainID,
		logger:   logging.Discard(),
	}, nil
}

// Close releases the RPC connection.
func (c *Client) Close() error {
	if c.closer != nil {
		c.closer()
	}
	return nil
}

// Account returns the signer address.
func (c *Client) Account(ctx context.Context) (string, error) {
	return c.wallet.Address.Hex(), nil
}

// TaskCount calls taskCount().
func (c *Client) TaskCount(ctx context.Context) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var out []interface{}
	if err := c.contract.Call(c.callOpts(ctx), &out, "taskCount"); err != nil {
		return 0, wrapError(err)
	}
	if len(out) != 1 {
		return 0, fmt.Errorf("taskCount: unexpected %d return values", len(out))
	}
	count := abi.ConvertType(out[0], new(big.Int)).(*big.Int)
	if !count.IsUint64() {
		return 0, fmt.Errorf("taskCount: value out of range: %s", count)
	}
	return count.Uint64(), nil
}

// Task calls tasks(id).
func (c *Client) Task(ctx context.Context, id uint64) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var out []interface{}
	if err := c.contract.Call(c.callOpts(ctx), &out, "tasks", new(big.Int).SetUint64(id)); err != nil {
		return service.Task{}, wrapError(err)
	}
	return decodeTask(out)
}

// CreateTask sends createTask(content) and waits for it to be mined.
func (c *Client) CreateTask(ctx context.Context, content string) error {
	return c.transact(ctx, "createTask", content)
}

// ToggleCompleted sends toggleCompleted(id) and waits for it to be mined.
func (c *Client) ToggleCompleted(ctx context.Context, id uint64) error {
	return c.transact(ctx, "toggleCompleted", new(big.Int).SetUint64(id))
}

// DeleteTask sends deleteTask(id) and waits for it to be mined.
func (c *Client) DeleteTask(ctx context.Context, id uint64) error {
	return c.transact(ctx, "deleteTask", new(big.Int).SetUint64(id))
}

// UpdateTaskOrder sends updateTaskOrder(id, order) and waits for it to be mined.
func (c *Client) UpdateTaskOrder(ctx context.Context, id, order uint64) error {
	return c.transact(ctx, "updateTaskOrder", new(big.Int).SetUint64(id), new(big.Int).SetUint64(order))
}

func (c *Client) callOpts(ctx context.Context) *bind.CallOpts {
	return &bind.CallOpts{Context: ctx, From: c.wallet.Address}
}

func (c *Client) transact(ctx context.Context, method string, params ...interface{}) error {
	opts, err := c.wallet.Transactor(ctx, c.chainID)
	if err != nil {
		return err
	}

	tx, err := c.contract.Transact(opts, method, params...)
	if err != nil {
		return wrapError(err)
	}
	c.logger.Debug("transaction sent", "method", method, "tx", tx.Hash().Hex())

	receipt, err := bind.WaitMined(ctx, c.backend, tx)
	if err != nil {
		return wrapError(err)
	}
	c.logger.Debug("transaction mined", "method", method, "tx", tx.Hash().Hex(),
		"block", receipt.BlockNumber, "gas", receipt.GasUsed, "status", receipt.Status)

	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("%s: %w (tx %s)", method, ErrReverted, tx.Hash().Hex())
	}
	return nil
}

// decodeTask converts the tuple returned by tasks(id).
func decodeTask(out []interface{}) (service.Task, error) {
	if len(out) != 5 {
		return service.Task{}, fmt.Errorf("tasks: unexpected %d return values", len(out))
	}

	id := abi.ConvertType(out[0], new(big.Int)).(*big.Int)
	content, ok := out[1].(string)
	if !ok {
		return service.Task{}, fmt.Errorf("tasks: content is %T", out[1])
	}
	completed, ok := out[2].(bool)
	if !ok {
		return service.Task{}, fmt.Errorf("tasks: completed is %T", out[2])
	}
	createdAt := abi.ConvertType(out[3], new(big.Int)).(*big.Int)
	order := abi.ConvertType(out[4], new(big.Int)).(*big.Int)

	if !id.IsUint64() || !order.IsUint64() || !createdAt.IsInt64() {
		return service.Task{}, fmt.Errorf("tasks: value out of range (id %s, createdAt %s, order %s)", id, createdAt, order)
	}

	task := service.Task{
		ID:        id.Uint64(),
		Content:   content,
		Completed: completed,
		Order:     order.Uint64(),
	}
	if createdAt.Sign() > 0 {
		task.CreatedAt = time.Unix(createdAt.Int64(), 0)
	}
	return task, nil
}

// wrapError wraps RPC and contract errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	errStr := err.Error()

	switch {
	case errors.Is(err, context.DeadlineExceeded) || strings.Contains(errStr, "context deadline exceeded"):
		return fmt.Errorf("request timed out")
	case strings.Contains(errStr, "insufficient funds"):
		return fmt.Errorf("insufficient funds for gas: %w", err)
	case strings.Contains(errStr, "execution reverted"):
		return fmt.Errorf("%w: %v", ErrReverted, err)
	case strings.Contains(errStr, "401") || strings.Contains(errStr, "403"):
		return fmt.Errorf("rpc endpoint rejected credentials (check rpc_token): %w", err)
	case errors.Is(err, bind.ErrNoCode):
		return fmt.Errorf("no contract deployed at configured address")
	}
	return err
}
