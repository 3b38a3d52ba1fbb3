package domain

import "time"

// Project groups the tasks shown on one timeline.
type Project struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
