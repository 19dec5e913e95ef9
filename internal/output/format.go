// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"chaintodo/internal/service"
)

// TimeLayout renders createdAt in local time.
const TimeLayout = "2006-01-02 15:04:05"

// FormatTask formats a task line.
// Format: "{N:>4}  [x] {CONTENT}  (added {TIME})\n"
func FormatTask(w io.Writer, num int, task service.Task) {
	fmt.Fprintf(w, "%4d  [%s] %s  (added %s)\n", num, checkbox(task.Completed), NormalizeContent(task.Content), FormatTime(task.CreatedAt))
}

// FormatAccount formats the wallet status line.
func FormatAccount(w io.Writer, backend, account string) {
	fmt.Fprintf(w, "connected: %s (%s)\n", account, backend)
}

// FormatTime renders a creation timestamp, or "-" when unknown.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(TimeLayout)
}

// NormalizeContent normalizes task content for display.
// - Empty or whitespace-only content becomes "(untitled)"
// - Newlines are replaced with spaces
func NormalizeContent(content string) string {
	content = strings.ReplaceAll(content, "\r", " ")
	content = strings.ReplaceAll(content, "\n", " ")

	if strings.TrimSpace(content) == "" {
		return "(untitled)"
	}
	return content
}

func checkbox(completed bool) string {
	if completed {
		return "x"
	}
	return " "
}
