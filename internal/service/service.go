// Package service defines the backend-agnostic interface for task ledger operations.
package service

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a task ID is outside the ledger.
var ErrNotFound = errors.New("not found")

// Service defines the interface for task ledger operations.
// Every contract call goes through this interface.
// Commands never import the Ethereum SDK directly.
type Service interface {
	// Account returns the address of the signer that authorizes writes.
	Account(ctx context.Context) (string, error)

	// TaskCount returns the number of task slots ever created.
	// IDs run from 1 to TaskCount inclusive; deleted slots are not compacted.
	TaskCount(ctx context.Context) (uint64, error)

	// Task returns the raw record stored under id.
	// A deleted slot is returned as a zero record, not an error.
	Task(ctx context.Context, id uint64) (Task, error)

	// CreateTask appends a task and blocks until the write is confirmed.
	CreateTask(ctx context.Context, content string) error

	// ToggleCompleted flips the completion flag and blocks until confirmed.
	ToggleCompleted(ctx context.Context, id uint64) error

	// DeleteTask clears the slot and blocks until confirmed.
	DeleteTask(ctx context.Context, id uint64) error

	// UpdateTaskOrder stores a display order for id and blocks until confirmed.
	UpdateTaskOrder(ctx context.Context, id, order uint64) error
}
