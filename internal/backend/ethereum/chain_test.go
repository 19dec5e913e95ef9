package ethereum

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	geth "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"chaintodo/internal/wallet"
)

const testKey = "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291"

var testContract = common.HexToAddress("0x00000000000000000000000000000000000c0de1")

// fakeChain answers contract calls from canned values and mines every sent
// transaction with receiptStatus.
type fakeChain struct {
	mu  sync.Mutex
	abi abi.ABI

	count         *big.Int
	task          []interface{}
	receiptStatus uint64

	calls []string
	sent  []*types.Transaction
}

func newFakeChain(t *testing.T) *fakeChain {
	t.Helper()
	parsed, err := ParseABI()
	if err != nil {
		t.Fatalf("ParseABI: %v", err)
	}
	return &fakeChain{abi: parsed, count: big.NewInt(0), receiptStatus: types.ReceiptStatusSuccessful}
}

func (f *fakeChain) CallContract(ctx context.Context, call geth.CallMsg, blockNumber *big.Int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	method, err := f.abi.MethodById(call.Data[:4])
	if err != nil {
		return nil, err
	}
	f.calls = append(f.calls, method.Name)
	switch method.Name {
	case "taskCount":
		return method.Outputs.Pack(f.count)
	case "tasks":
		return method.Outputs.Pack(f.task...)
	}
	return nil, errors.New("unexpected call " + method.Name)
}

func (f *fakeChain) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	return []byte{0x60, 0x80}, nil
}

func (f *fakeChain) PendingCodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	return []byte{0x60, 0x80}, nil
}

func (f *fakeChain) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	return &types.Header{Number: big.NewInt(1), BaseFee: big.NewInt(1_000_000_000)}, nil
}

func (f *fakeChain) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return uint64(len(f.sent)), nil
}

func (f *fakeChain) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (f *fakeChain) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000), nil
}

func (f *fakeChain) EstimateGas(ctx context.Context, call geth.CallMsg) (uint64, error) {
	return 60_000, nil
}

func (f *fakeChain) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, tx)
	return nil
}

func (f *fakeChain) FilterLogs(ctx context.Context, q geth.FilterQuery) ([]types.Log, error) {
	return nil, nil
}

func (f *fakeChain) SubscribeFilterLogs(ctx context.Context, q geth.FilterQuery, ch chan<- types.Log) (geth.Subscription, error) {
	return nil, errors.New("subscriptions not supported")
}

func (f *fakeChain) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, tx := range f.sent {
		if tx.Hash() == hash {
			return &types.Receipt{
				Status:      f.receiptStatus,
				TxHash:      hash,
				BlockNumber: big.NewInt(2),
				GasUsed:     45_000,
			}, nil
		}
	}
	return nil, geth.NotFound
}

func newChainClient(t *testing.T, chain *fakeChain) (*Client, *wallet.Wallet) {
	t.Helper()
	w, err := wallet.FromHex(testKey)
	if err != nil {
		t.Fatalf("FromHex: %v", err)
	}
	c, err := NewWithBackend(chain, testContract, w, big.NewInt(31337))
	if err != nil {
		t.Fatalf("NewWithBackend: %v", err)
	}
	return c, w
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestClient_TaskCount(t *testing.T) {
	chain := newFakeChain(t)
	chain.count = big.NewInt(3)
	c, _ := newChainClient(t, chain)

	got, err := c.TaskCount(testContext(t))
	if err != nil {
		t.Fatalf("TaskCount: %v", err)
	}
	if got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
}

func TestClient_TaskCountOutOfRange(t *testing.T) {
	chain := newFakeChain(t)
	chain.count = new(big.Int).Lsh(big.NewInt(1), 64)
	c, _ := newChainClient(t, chain)

	if _, err := c.TaskCount(testContext(t)); err == nil {
		t.Error("expected error for count above uint64")
	}
}

func TestClient_Task(t *testing.T) {
	chain := newFakeChain(t)
	chain.task = []interface{}{big.NewInt(2), "x", false, big.NewInt(1714000000), big.NewInt(7)}
	c, _ := newChainClient(t, chain)

	task, err := c.Task(testContext(t), 2)
	if err != nil {
		t.Fatalf("Task: %v", err)
	}
	if task.ID != 2 || task.Content != "x" || task.Completed || task.Order != 7 {
		t.Errorf("unexpected task %+v", task)
	}
	if !task.CreatedAt.Equal(time.Unix(1714000000, 0)) {
		t.Errorf("unexpected createdAt %v", task.CreatedAt)
	}
}

func TestClient_TaskOutOfRange(t *testing.T) {
	huge := new(big.Int).Lsh(big.NewInt(1), 70)
	tests := []struct {
		name  string
		tuple []interface{}
	}{
		{"id", []interface{}{huge, "x", false, big.NewInt(1), big.NewInt(1)}},
		{"createdAt", []interface{}{big.NewInt(1), "x", false, huge, big.NewInt(1)}},
		{"order", []interface{}{big.NewInt(1), "x", false, big.NewInt(1), huge}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := newFakeChain(t)
			chain.task = tt.tuple
			c, _ := newChainClient(t, chain)

			if _, err := c.Task(testContext(t), 1); err == nil {
				t.Errorf("expected error for %s above 64 bits", tt.name)
			}
		})
	}
}

func TestClient_UpdateTaskOrderSendsOneTransaction(t *testing.T) {
	chain := newFakeChain(t)
	c, w := newChainClient(t, chain)

	if err := c.UpdateTaskOrder(testContext(t), 4, 9); err != nil {
		t.Fatalf("UpdateTaskOrder: %v", err)
	}
	if len(chain.sent) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(chain.sent))
	}

	tx := chain.sent[0]
	if tx.To() == nil || *tx.To() != testContract {
		t.Errorf("expected transaction to %s, got %v", testContract.Hex(), tx.To())
	}
	if tx.ChainId().Cmp(big.NewInt(31337)) != 0 {
		t.Errorf("expected chain id 31337, got %s", tx.ChainId())
	}
	sender, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx)
	if err != nil || sender != w.Address {
		t.Errorf("expected signer %s, got %s (%v)", w.Address.Hex(), sender.Hex(), err)
	}

	method := chain.abi.Methods["updateTaskOrder"]
	if string(tx.Data()[:4]) != string(method.ID) {
		t.Fatalf("expected updateTaskOrder selector, got %x", tx.Data()[:4])
	}
	args, err := method.Inputs.Unpack(tx.Data()[4:])
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if args[0].(*big.Int).Uint64() != 4 || args[1].(*big.Int).Uint64() != 9 {
		t.Errorf("unexpected args %v", args)
	}
}

func TestClient_WritesUseNextNonce(t *testing.T) {
	chain := newFakeChain(t)
	c, _ := newChainClient(t, chain)
	ctx := testContext(t)

	if err := c.CreateTask(ctx, "one"); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if err := c.DeleteTask(ctx, 1); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if len(chain.sent) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(chain.sent))
	}
	if chain.sent[0].Nonce() != 0 || chain.sent[1].Nonce() != 1 {
		t.Errorf("unexpected nonces %d, %d", chain.sent[0].Nonce(), chain.sent[1].Nonce())
	}
}

func TestClient_RevertedTransaction(t *testing.T) {
	chain := newFakeChain(t)
	chain.receiptStatus = types.ReceiptStatusFailed
	c, _ := newChainClient(t, chain)

	err := c.ToggleCompleted(testContext(t), 1)
	if !errors.Is(err, ErrReverted) {
		t.Fatalf("expected ErrReverted, got %v", err)
	}
	if len(chain.sent) != 1 {
		t.Errorf("expected the transaction to be sent once, got %d", len(chain.sent))
	}
}
