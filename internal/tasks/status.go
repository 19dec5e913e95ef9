package tasks

import "fmt"

// Transient status lines shown while a write is in flight and after it settles.
const (
	StatusCreating  = "Waiting for task to be processed..."
	StatusCreated   = "Task added successfully!"
	StatusCreateErr = "Failed to add task."

	StatusToggling  = "Updating task status..."
	StatusToggleErr = "Failed to update task."

	StatusDeleting  = "Deleting task..."
	StatusDeleted   = "Task deleted successfully!"
	StatusDeleteErr = "Failed to delete task."

	StatusReordering = "Reordering tasks..."
	StatusReordered  = "Task order updated!"
	StatusReorderErr = "Failed to reorder tasks."
)

// StatusToggled is the success line for a toggle of the named task.
func StatusToggled(content string) string {
	return fmt.Sprintf("Task %q status updated!", content)
}

// ConfirmCreate is the confirmation question asked before createTask.
func ConfirmCreate(content string) string {
	return fmt.Sprintf("Add new task: %q?", content)
}

// ConfirmToggle is the confirmation question asked before toggleCompleted.
func ConfirmToggle(content string, completed bool) string {
	action := "mark as complete"
	if completed {
		action = "mark as incomplete"
	}
	return fmt.Sprintf("Are you sure you want to %s task: %q?", action, content)
}

// ConfirmDelete is the confirmation question asked before deleteTask.
func ConfirmDelete(content string) string {
	return fmt.Sprintf("Are you sure you want to delete task: %q?", content)
}
