package service

import "time"

// Task represents a single task record.
type Task struct {
	ID        uint64
	Content   string
	Completed bool
	CreatedAt time.Time // second precision
	Order     uint64    // display ordering only
}

// Deleted reports whether the record is a cleared slot.
func (t Task) Deleted() bool {
	return t.ID == 0 || t.Content == ""
}
