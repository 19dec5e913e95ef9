// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"chaintodo/internal/service"
)

// DefaultAccount is the signer address reported by FakeService.
const DefaultAccount = "0x00000000000000000000000000000000000000aa"

// OrderUpdate records one UpdateTaskOrder call.
type OrderUpdate struct {
	ID    uint64
	Order uint64
}

// FakeService is an in-memory implementation of service.Service for testing.
// Slots behave like the contract: IDs start at 1, are never reused, and a
// deleted slot reads back as a zero record.
type FakeService struct {
	mu    sync.RWMutex
	slots []service.Task // slots[i] holds id i+1
	now   func() time.Time

	// Calls made to UpdateTaskOrder, in order.
	OrderUpdates []OrderUpdate

	// Error injection for testing
	AccountErr      error
	TaskCountErr    error
	TaskErr         map[uint64]error // id -> error
	CreateTaskErr   error
	ToggleErr       error
	DeleteTaskErr   error
	UpdateOrderErr  error
	UpdateOrderFail int // fail the Nth UpdateTaskOrder call (1-based) with UpdateOrderErr; 0 fails every call
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		TaskErr: make(map[uint64]error),
		now: func() time.Time {
			return time.Unix(1700000000, 0)
		},
	}
}

// AddTask appends a task directly, bypassing error injection.
// Returns the assigned ID.
func (f *FakeService) AddTask(content string, completed bool) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.appendLocked(content, completed)
}

// AddDeleted appends a cleared slot, as left behind by a delete.
func (f *FakeService) AddDeleted() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slots = append(f.slots, service.Task{})
	return uint64(len(f.slots))
}

// SetOrder overwrites the stored order of id, bypassing error injection.
func (f *FakeService) SetOrder(id, order uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id >= 1 && id <= uint64(len(f.slots)) && f.slots[id-1].ID != 0 {
		f.slots[id-1].Order = order
	}
}

// Snapshot returns a copy of every slot, deleted ones included.
func (f *FakeService) Snapshot() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.Task, len(f.slots))
	copy(out, f.slots)
	return out
}

func (f *FakeService) appendLocked(content string, completed bool) uint64 {
	id := uint64(len(f.slots) + 1)
	f.slots = append(f.slots, service.Task{
		ID:        id,
		Content:   content,
		Completed: completed,
		CreatedAt: f.now().Add(time.Duration(id) * time.Minute),
		Order:     id,
	})
	return id
}

// Account implements service.Service.
func (f *FakeService) Account(ctx context.Context) (string, error) {
	if f.AccountErr != nil {
		return "", f.AccountErr
	}
	return DefaultAccount, nil
}

// TaskCount implements service.Service.
func (f *FakeService) TaskCount(ctx context.Context) (uint64, error) {
	if f.TaskCountErr != nil {
		return 0, f.TaskCountErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return uint64(len(f.slots)), nil
}

// Task implements service.Service.
func (f *FakeService) Task(ctx context.Context, id uint64) (service.Task, error) {
	if err, ok := f.TaskErr[id]; ok && err != nil {
		return service.Task{}, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if id == 0 || id > uint64(len(f.slots)) {
		return service.Task{}, nil
	}
	return f.slots[id-1], nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, content string) error {
	if f.CreateTaskErr != nil {
		return f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appendLocked(content, false)
	return nil
}

// ToggleCompleted implements service.Service.
func (f *FakeService) ToggleCompleted(ctx context.Context, id uint64) error {
	if f.ToggleErr != nil {
		return f.ToggleErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	slot, err := f.liveSlotLocked(id)
	if err != nil {
		return err
	}
	slot.Completed = !slot.Completed
	return nil
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id uint64) error {
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.liveSlotLocked(id); err != nil {
		return err
	}
	f.slots[id-1] = service.Task{}
	return nil
}

// UpdateTaskOrder implements service.Service.
func (f *FakeService) UpdateTaskOrder(ctx context.Context, id, order uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	call := len(f.OrderUpdates) + 1
	if f.UpdateOrderErr != nil && (f.UpdateOrderFail == 0 || f.UpdateOrderFail == call) {
		return f.UpdateOrderErr
	}

	slot, err := f.liveSlotLocked(id)
	if err != nil {
		return err
	}
	slot.Order = order
	f.OrderUpdates = append(f.OrderUpdates, OrderUpdate{ID: id, Order: order})
	return nil
}

func (f *FakeService) liveSlotLocked(id uint64) (*service.Task, error) {
	if id == 0 || id > uint64(len(f.slots)) || f.slots[id-1].ID == 0 {
		return nil, fmt.Errorf("task %d: %w", id, service.ErrNotFound)
	}
	return &f.slots[id-1], nil
}
