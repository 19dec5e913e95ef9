// Package mirror copies the ledger's task list into an external task list.
// The copy is one way: remote edits are overwritten on the next sync.
package mirror

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"chaintodo/internal/logging"
	"chaintodo/internal/service"
	"chaintodo/internal/tasks"
)

// notesPrefix tags remote tasks created by a sync with the ledger ID they mirror.
const notesPrefix = "chaintodo-id:"

// Remote is one task in the remote list.
type Remote struct {
	ID        string
	Title     string
	Completed bool
	Notes     string
}

// LedgerID returns the ledger ID this remote task mirrors, or false when the
// task was not created by a sync.
func (r Remote) LedgerID() (uint64, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(r.Notes), notesPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(rest, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// NotesFor returns the notes marker for a ledger ID.
func NotesFor(id uint64) string {
	return notesPrefix + strconv.FormatUint(id, 10)
}

// Target is the remote side of a sync.
type Target interface {
	EnsureList(ctx context.Context, title string) (string, error)
	ListTasks(ctx context.Context, listID string) ([]Remote, error)
	InsertTask(ctx context.Context, listID string, task Remote) error
	UpdateTask(ctx context.Context, listID string, task Remote) error
	DeleteTask(ctx context.Context, listID, taskID string) error
}

// Result counts what a sync changed.
type Result struct {
	Created   int
	Updated   int
	Deleted   int
	Unchanged int
}

func (r Result) String() string {
	return fmt.Sprintf("%d created, %d updated, %d deleted, %d unchanged", r.Created, r.Updated, r.Deleted, r.Unchanged)
}

// Sync makes the remote list titled listTitle match the ledger.
// Remote tasks without a ledger marker are left alone. Calls are serial and a
// failure stops the sync; the partial Result is returned with the error.
func Sync(ctx context.Context, svc service.Service, target Target, listTitle string) (Result, error) {
	var res Result
	logger := logging.FromContext(ctx).With("list", listTitle)

	list, err := tasks.Load(ctx, svc)
	if err != nil {
		return res, err
	}

	listID, err := target.EnsureList(ctx, listTitle)
	if err != nil {
		return res, fmt.Errorf("failed to open remote list: %w", err)
	}

	remote, err := target.ListTasks(ctx, listID)
	if err != nil {
		return res, fmt.Errorf("failed to read remote list: %w", err)
	}

	mirrored := make(map[uint64]Remote, len(remote))
	var stale []Remote
	for _, r := range remote {
		id, ok := r.LedgerID()
		if !ok {
			continue
		}
		if _, dup := mirrored[id]; dup {
			stale = append(stale, r)
			continue
		}
		mirrored[id] = r
	}

	for _, task := range list {
		want := Remote{
			Title:     task.Content,
			Completed: task.Completed,
			Notes:     NotesFor(task.ID),
		}
		have, ok := mirrored[task.ID]
		delete(mirrored, task.ID)

		switch {
		case !ok:
			if err := target.InsertTask(ctx, listID, want); err != nil {
				return res, fmt.Errorf("failed to mirror task %d: %w", task.ID, err)
			}
			res.Created++
		case have.Title != want.Title || have.Completed != want.Completed:
			want.ID = have.ID
			if err := target.UpdateTask(ctx, listID, want); err != nil {
				return res, fmt.Errorf("failed to mirror task %d: %w", task.ID, err)
			}
			res.Updated++
		default:
			res.Unchanged++
		}
	}

	for _, r := range mirrored {
		stale = append(stale, r)
	}
	for _, r := range stale {
		if err := target.DeleteTask(ctx, listID, r.ID); err != nil {
			return res, fmt.Errorf("failed to remove remote task %s: %w", r.ID, err)
		}
		res.Deleted++
	}

	logger.Debug("mirror complete", "created", res.Created, "updated", res.Updated, "deleted", res.Deleted)
	return res, nil
}
