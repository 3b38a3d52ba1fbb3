package domain

import "time"

// ScheduleEvent is an audit log entry for a persisted date change.
type ScheduleEvent struct {
	ID        string
	TaskID    string
	OldStart  *time.Time // nil when the task had no stored date
	OldEnd    *time.Time
	NewStart  time.Time
	NewEnd    time.Time
	CreatedAt time.Time
}
