package model

import "time"

// Event is an append-only audit record written whenever a task enters a
// status. It is never read back by the reporting path.
type Event struct {
	ID        uint   `gorm:"primaryKey"`
	TaskID    string `gorm:"index"`
	UserID    string
	EventType string
	CreatedAt time.Time
}
