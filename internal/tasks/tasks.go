// Package tasks loads the task collection from a ledger and applies mutations.
//
// Every mutator follows the same shape: validate input, issue one write (or,
// for reorder, a serial run of writes), wait for confirmation, then reload
// the whole collection. There is no retry and no rollback.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"chaintodo/internal/service"
)

var (
	// ErrEmptyContent is returned when a task would be created without content.
	ErrEmptyContent = errors.New("task content required")

	// ErrOutOfRange is returned when a display position does not exist.
	ErrOutOfRange = errors.New("task number out of range")
)

// ReorderError reports a reorder that stopped partway.
// Applied writes stay applied; nothing is rolled back.
type ReorderError struct {
	Applied int
	Total   int
	Err     error
}

func (e *ReorderError) Error() string {
	return fmt.Sprintf("reorder stopped after %d of %d updates: %v", e.Applied, e.Total, e.Err)
}

func (e *ReorderError) Unwrap() error { return e.Err }

// Load reads the task count, then fetches every slot from 1 to count in
// sequence. Deleted slots are dropped. The result is sorted by Order, with
// ID breaking ties.
func Load(ctx context.Context, svc service.Service) ([]service.Task, error) {
	count, err := svc.TaskCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("read task count: %w", err)
	}

	loaded := make([]service.Task, 0, count)
	for id := uint64(1); id <= count; id++ {
		task, err := svc.Task(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("read task %d: %w", id, err)
		}
		if task.Deleted() {
			continue
		}
		loaded = append(loaded, task)
	}

	SortByOrder(loaded)
	return loaded, nil
}

// SortByOrder sorts tasks in place by Order, then ID.
func SortByOrder(list []service.Task) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Order != list[j].Order {
			return list[i].Order < list[j].Order
		}
		return list[i].ID < list[j].ID
	})
}

// At returns the task at 1-based display position n.
func At(list []service.Task, n int) (service.Task, error) {
	if n < 1 || n > len(list) {
		return service.Task{}, fmt.Errorf("%w: %d", ErrOutOfRange, n)
	}
	return list[n-1], nil
}

// Find returns the task with the given ID.
func Find(list []service.Task, id uint64) (service.Task, bool) {
	for _, t := range list {
		if t.ID == id {
			return t, true
		}
	}
	return service.Task{}, false
}

// Create issues createTask and reloads.
func Create(ctx context.Context, svc service.Service, content string) ([]service.Task, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if err := svc.CreateTask(ctx, content); err != nil {
		return nil, err
	}
	return Load(ctx, svc)
}

// Toggle issues toggleCompleted for id and reloads.
func Toggle(ctx context.Context, svc service.Service, id uint64) ([]service.Task, error) {
	if err := svc.ToggleCompleted(ctx, id); err != nil {
		return nil, err
	}
	return Load(ctx, svc)
}

// Delete issues deleteTask for id and reloads.
func Delete(ctx context.Context, svc service.Service, id uint64) ([]service.Task, error) {
	if err := svc.DeleteTask(ctx, id); err != nil {
		return nil, err
	}
	return Load(ctx, svc)
}

// Move returns a copy of list with the item at index from (0-based) placed at
// index to, and Order renumbered 1..N. list itself is not modified.
func Move(list []service.Task, from, to int) ([]service.Task, error) {
	if from < 0 || from >= len(list) {
		return nil, fmt.Errorf("%w: %d", ErrOutOfRange, from+1)
	}
	if to < 0 || to >= len(list) {
		return nil, fmt.Errorf("%w: %d", ErrOutOfRange, to+1)
	}

	moved := make([]service.Task, 0, len(list))
	item := list[from]
	for i, t := range list {
		if i == from {
			continue
		}
		moved = append(moved, t)
	}
	moved = append(moved[:to], append([]service.Task{item}, moved[to:]...)...)

	for i := range moved {
		moved[i].Order = uint64(i + 1)
	}
	return moved, nil
}

// Reorder moves the item at from to to (0-based), then writes the new order
// of every task whose order changed, one confirmed write at a time in the
// new display order. The collection is reloaded after a full run.
func Reorder(ctx context.Context, svc service.Service, list []service.Task, from, to int) ([]service.Task, error) {
	moved, err := Move(list, from, to)
	if err != nil {
		return nil, err
	}

	previous := make(map[uint64]uint64, len(list))
	for _, t := range list {
		previous[t.ID] = t.Order
	}

	var pending []service.Task
	for _, t := range moved {
		if previous[t.ID] != t.Order {
			pending = append(pending, t)
		}
	}

	for i, t := range pending {
		if err := svc.UpdateTaskOrder(ctx, t.ID, t.Order); err != nil {
			return nil, &ReorderError{Applied: i, Total: len(pending), Err: err}
		}
	}

	return Load(ctx, svc)
}
