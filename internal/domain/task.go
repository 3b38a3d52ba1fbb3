package domain

import "time"

// TaskStatus represents the progress state of a construction task.
type TaskStatus string

const (
	TaskStatusNotStarted TaskStatus = "not_started"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusBlocked    TaskStatus = "blocked"
)

// IsValid checks if the status is one of the allowed values.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusNotStarted, TaskStatusInProgress, TaskStatusCompleted, TaskStatusBlocked:
		return true
	default:
		return false
	}
}

// TaskPriority represents the priority level of a task.
type TaskPriority string

const (
	TaskPriorityLow      TaskPriority = "low"
	TaskPriorityMedium   TaskPriority = "medium"
	TaskPriorityHigh     TaskPriority = "high"
	TaskPriorityCritical TaskPriority = "critical"
)

// IsValid checks if the priority is one of the allowed values.
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityCritical:
		return true
	default:
		return false
	}
}

// TaskType distinguishes regular schedule work from punch list items.
type TaskType string

const (
	TaskTypeRegular   TaskType = "regular"
	TaskTypePunchList TaskType = "punch_list"
)

// Task represents a unit of construction work placed on the timeline.
type Task struct {
	ID             string
	ProjectID      string
	Title          string
	Category       string
	Phase          Phase // empty when not assigned; inferred from Category
	Status         TaskStatus
	Priority       TaskPriority
	Type           TaskType
	EstimatedHours *float64
	StartDate      *time.Time
	DueDate        *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasDates returns true if both the start and due dates are set.
func (t *Task) HasDates() bool {
	return t.StartDate != nil && t.DueDate != nil
}

// WithDates returns a copy of the task with the given dates.
// The receiver is never modified.
func (t *Task) WithDates(start, due time.Time) *Task {
	cp := *t
	cp.StartDate = &start
	cp.DueDate = &due
	return &cp
}
