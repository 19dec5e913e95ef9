// Package sqlite implements the service.Service interface on a local SQLite
// file, following the contract's rules: IDs start at 1 and are never reused,
// and a deleted task leaves a cleared slot behind.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"chaintodo/internal/service"
)

// LocalAccount is the pseudo-address reported for the local ledger.
const LocalAccount = "local"

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	content    TEXT    NOT NULL,
	completed  INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL,
	task_order INTEGER NOT NULL DEFAULT 0,
	deleted    INTEGER NOT NULL DEFAULT 0
);
`

// Store is a SQLite-backed task ledger.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the ledger at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("create ledger dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	// One writer at a time, matching one confirmed transaction at a time.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Account implements service.Service.
func (s *Store) Account(ctx context.Context) (string, error) {
	return LocalAccount, nil
}

// TaskCount implements service.Service. Deleted slots are counted.
func (s *Store) TaskCount(ctx context.Context) (uint64, error) {
	var count uint64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks").Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Task implements service.Service. A deleted or unknown slot reads back as a zero record.
func (s *Store) Task(ctx context.Context, id uint64) (service.Task, error) {
	var (
		task      service.Task
		completed int
		createdAt int64
		deleted   int
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, content, completed, created_at, task_order, deleted
		FROM tasks WHERE id = ?`, id).
		Scan(&task.ID, &task.Content, &completed, &createdAt, &task.Order, &deleted)
	if err == sql.ErrNoRows {
		return service.Task{}, nil
	}
	if err != nil {
		return service.Task{}, err
	}
	if deleted != 0 {
		return service.Task{}, nil
	}
	task.Completed = completed != 0
	task.CreatedAt = time.Unix(createdAt, 0)
	return task, nil
}

// CreateTask implements service.Service. The new task's order is its ID.
func (s *Store) CreateTask(ctx context.Context, content string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO tasks (content, created_at) VALUES (?, ?)",
		content, s.now().Unix())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "UPDATE tasks SET task_order = ? WHERE id = ?", id, id); err != nil {
		return err
	}
	return tx.Commit()
}

// ToggleCompleted implements service.Service.
func (s *Store) ToggleCompleted(ctx context.Context, id uint64) error {
	return s.updateLive(ctx, id, "UPDATE tasks SET completed = 1 - completed WHERE id = ? AND deleted = 0", id)
}

// DeleteTask implements service.Service.
func (s *Store) DeleteTask(ctx context.Context, id uint64) error {
	return s.updateLive(ctx, id,
		"UPDATE tasks SET deleted = 1, content = '', completed = 0, task_order = 0 WHERE id = ? AND deleted = 0", id)
}

// UpdateTaskOrder implements service.Service.
func (s *Store) UpdateTaskOrder(ctx context.Context, id, order uint64) error {
	return s.updateLive(ctx, id, "UPDATE tasks SET task_order = ? WHERE id = ? AND deleted = 0", order, id)
}

func (s *Store) updateLive(ctx context.Context, id uint64, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("task %d: %w", id, service.ErrNotFound)
	}
	return nil
}
