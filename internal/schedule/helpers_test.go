package schedule_test

import (
	"time"

	"github.com/mtlprog/sitetimeline/internal/domain"
	"github.com/mtlprog/sitetimeline/internal/schedule"
)

var fixedNow = time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func hours(h float64) *float64 {
	return &h
}

func newEstimator() *schedule.Estimator {
	return schedule.NewEstimator(func() time.Time { return fixedNow })
}

func newTask(id, category string) *domain.Task {
	return &domain.Task{
		ID:       id,
		Title:    "Task " + id,
		Category: category,
		Status:   domain.TaskStatusNotStarted,
		Priority: domain.TaskPriorityMedium,
		Type:     domain.TaskTypeRegular,
	}
}
