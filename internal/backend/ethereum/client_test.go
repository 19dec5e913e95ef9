package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"testing"
	"time"
)

func TestParseABI_HasContractMethods(t *testing.T) {
	parsed, err := ParseABI()
	if err != nil {
		t.Fatalf("ParseABI: %v", err)
	}
	for _, name := range []string{"taskCount", "tasks", "createTask", "toggleCompleted", "deleteTask", "updateTaskOrder"} {
		if _, ok := parsed.Methods[name]; !ok {
			t.Errorf("missing method %s", name)
		}
	}
	if !parsed.Methods["tasks"].IsConstant() {
		t.Error("tasks should be a view method")
	}
	if parsed.Methods["createTask"].IsConstant() {
		t.Error("createTask should be state-changing")
	}
}

func TestDecodeTask_FromABIEncodedReturn(t *testing.T) {
	parsed, err := ParseABI()
	if err != nil {
		t.Fatalf("ParseABI: %v", err)
	}
	outputs := parsed.Methods["tasks"].Outputs

	data, err := outputs.Pack(big.NewInt(4), "ship it", true, big.NewInt(1714000000), big.NewInt(2))
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	values, err := outputs.Unpack(data)
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}

	task, err := decodeTask(values)
	if err != nil {
		t.Fatalf("decodeTask: %v", err)
	}
	if task.ID != 4 || task.Content != "ship it" || !task.Completed || task.Order != 2 {
		t.Errorf("unexpected task: %+v", task)
	}
	if !task.CreatedAt.Equal(time.Unix(1714000000, 0)) {
		t.Errorf("unexpected createdAt: %v", task.CreatedAt)
	}
}

func TestDecodeTask_DeletedSlot(t *testing.T) {
	parsed, _ := ParseABI()
	outputs := parsed.Methods["tasks"].Outputs

	data, err := outputs.Pack(big.NewInt(0), "", false, big.NewInt(0), big.NewInt(0))
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	values, _ := outputs.Unpack(data)

	task, err := decodeTask(values)
	if err != nil {
		t.Fatalf("decodeTask: %v", err)
	}
	if !task.Deleted() {
		t.Errorf("expected deleted slot, got %+v", task)
	}
	if !task.CreatedAt.IsZero() {
		t.Errorf("expected zero createdAt, got %v", task.CreatedAt)
	}
}

func TestDecodeTask_WrongShape(t *testing.T) {
	if _, err := decodeTask([]interface{}{big.NewInt(1)}); err == nil {
		t.Error("expected error for short tuple")
	}
	if _, err := decodeTask([]interface{}{big.NewInt(1), 7, true, big.NewInt(0), big.NewInt(0)}); err == nil {
		t.Error("expected error for non-string content")
	}
}

func TestWrapError(t *testing.T) {
	tests := []struct {
		in       error
		contains string
		reverted bool
	}{
		{in: context.DeadlineExceeded, contains: "timed out"},
		{in: errors.New("insufficient funds for gas * price + value"), contains: "insufficient funds"},
		{in: errors.New("execution reverted: not owner"), contains: "not owner", reverted: true},
		{in: errors.New("401 Unauthorized"), contains: "rpc_token"},
		{in: errors.New("something else"), contains: "something else"},
	}

	for _, tt := range tests {
		got := wrapError(tt.in)
		if !strings.Contains(got.Error(), tt.contains) {
			t.Errorf("wrapError(%v) = %v, want it to contain %q", tt.in, got, tt.contains)
		}
		if errors.Is(got, ErrReverted) != tt.reverted {
			t.Errorf("wrapError(%v): errors.Is(ErrReverted) = %v", tt.in, !tt.reverted)
		}
	}

	if wrapError(nil) != nil {
		t.Error("wrapError(nil) should be nil")
	}
	if got := wrapError(fmt.Errorf("call: %w", context.DeadlineExceeded)); got.Error() != "request timed out" {
		t.Errorf("expected wrapped deadline to map to timeout, got %v", got)
	}
}

func TestNewWithBackend_RequiresWallet(t *testing.T) {
	if _, err := NewWithBackend(nil, [20]byte{}, nil, big.NewInt(1)); err == nil {
		t.Error("expected error without wallet")
	}
}
