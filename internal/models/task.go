package models

import (
	"fmt"
	"strings"
)

// TaskStatus is stored by its symbolic name, not an ordinal.
type TaskStatus string

const (
	StatusOpen       TaskStatus = "OPEN"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusDone       TaskStatus = "DONE"
	StatusFailed     TaskStatus = "FAILED"
)

// AllStatuses lists the valid statuses in lifecycle order.
func AllStatuses() []TaskStatus {
	return []TaskStatus{StatusOpen, StatusInProgress, StatusDone, StatusFailed}
}

// ParseTaskStatus matches a status token case-insensitively.
func ParseTaskStatus(s string) (TaskStatus, error) {
	token := strings.ToUpper(strings.TrimSpace(s))
	for _, st := range AllStatuses() {
		if token == string(st) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Task represents a work item. All timestamps are epoch milliseconds;
// the due date is the owning calendar date at local midnight.
type Task struct {
	ID uint `gorm:"primarykey" json:"id"`

	Title       string     `gorm:"not null" json:"title"`
	Description string     `json:"description"`
	Assignee    string     `json:"assignee"` // user login, soft reference, may dangle
	DueDate     int64      `gorm:"column:due_date_ms" json:"due_date"`
	Status      TaskStatus `gorm:"default:OPEN" json:"status"`

	CreatedAt int64 `gorm:"column:created_at_ms;autoCreateTime:false" json:"created_at"`
	UpdatedAt int64 `gorm:"column:updated_at_ms;autoUpdateTime:false" json:"updated_at"`

	// OverdueNotifiedAt is the dedup marker for the overdue sweep. Only the
	// sweep sets it; a user edit clears it only by moving the due date into
	// the future.
	OverdueNotifiedAt *int64 `gorm:"column:overdue_notified_at_ms" json:"overdue_notified_at"`

	// Version is bumped on every write so a stale read-modify-write save
	// fails instead of silently reverting a concurrent sweep mark.
	Version int64 `gorm:"not null;default:1" json:"-"`
}
