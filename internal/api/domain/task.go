package domain

import (
	"slices"
	"time"
)

// Task priorities, lowest to highest.
var TaskPriorities = []string{"low", "medium", "high", "urgent"}

// Task statuses.
const (
	TaskOpen = "open"
	TaskDone = "done"
)

// ValidTaskPriority reports whether p is a known priority.
func ValidTaskPriority(p string) bool { return slices.Contains(TaskPriorities, p) }

// Task is a to-do for an agency user, optionally linked to a client.
// Overdue open tasks feed the daily digest.
type Task struct {
	ID          string
	TenantID    string
	ClientID    string // optional
	Title       string
	DueDate     *time.Time
	Priority    string
	Status      string
	CreatedByID string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Overdue reports whether the task is open with a due date in the past.
func (t Task) Overdue(now time.Time) bool {
	return t.Status == TaskOpen && t.DueDate != nil && t.DueDate.Before(now)
}
