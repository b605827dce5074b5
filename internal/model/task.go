package model

import "time"

// Task statuses. A task starts in pending and moves to exactly one of the
// terminal statuses; nothing ever moves back to pending.
const (
	StatusPending = "pending"
	StatusDone    = "done"
	StatusSkip    = "skip"
	StatusTimeout = "timeout"
	StatusSnoozed = "snoozed"
)

// TerminalStatuses lists every status a task can end up in.
var TerminalStatuses = []string{StatusDone, StatusSkip, StatusTimeout, StatusSnoozed}

// Task represents one instance of a recipient being asked to perform a
// scheduled exercise slot. Rows are never deleted; terminal statuses are
// kept as history for reporting.
type Task struct {
	TaskID    string `gorm:"primaryKey"`
	UserID    string `gorm:"index:idx_task_natural,unique"`
	Date      string `gorm:"index:idx_task_natural,unique"` // local civil date, 2006-01-02
	Time      string `gorm:"index:idx_task_natural,unique"` // rotation key, e.g. "10:40"
	SlotID    string `gorm:"index:idx_task_natural,unique"`
	Status    string `gorm:"index"`
	CreatedAt time.Time
	TimeoutAt time.Time
	ClickedAt *time.Time
}

// IsValidStatus reports whether s is a status the store accepts.
func IsValidStatus(s string) bool {
	if s == StatusPending {
		return true
	}
	for _, t := range TerminalStatuses {
		if s == t {
			return true
		}
	}
	return false
}
