package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mtlprog/sitetimeline/internal/domain"
	"github.com/mtlprog/sitetimeline/internal/schedule"
)

// MovePreview is the outcome of validating a move without starting a drag.
type MovePreview struct {
	TaskID          string
	ProposedStart   time.Time
	ProposedSpan    domain.DateSpan
	Validity        domain.Validity
	Violations      []domain.Violation
	Impacts         []domain.TaskImpact
	AffectedTaskIDs []string
}

// PreviewMove validates moving a task to start, against the displayed task set.
// Nothing is changed; the active drag, if any, is left alone.
func (s *TimelineService) PreviewMove(ctx context.Context, projectID, taskID string, start time.Time) (*MovePreview, error) {
	m, err := s.Machine(ctx, projectID)
	if err != nil {
		return nil, err
	}

	tasks := m.DisplayTasks()
	task := findTask(tasks, taskID)
	if task == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, taskID)
	}

	start = domain.StartOfDay(start)
	violations := s.validator.ValidateMove(task, start, tasks)
	impacts := s.impacts.CalculateImpact(task, start, tasks)

	affected := schedule.AffectedTaskIDs(violations)
	for _, impact := range impacts {
		if impact.TaskID != task.ID && impact.Classification != domain.ImpactUnchanged {
			affected = appendMissing(affected, impact.TaskID)
		}
	}

	return &MovePreview{
		TaskID:          task.ID,
		ProposedStart:   start,
		ProposedSpan:    s.estimator.MoveTo(task, start),
		Validity:        schedule.AggregateValidity(violations),
		Violations:      violations,
		Impacts:         impacts,
		AffectedTaskIDs: affected,
	}, nil
}

// TaskReport is the validation of one task at its current start.
type TaskReport struct {
	Task       *domain.Task
	Span       domain.DateSpan
	Validity   domain.Validity
	Violations []domain.Violation
}

// CheckSchedule validates every task of a project where it currently sits and
// returns the tasks that have at least one violation. Completed tasks are skipped.
func (s *TimelineService) CheckSchedule(ctx context.Context, projectID string) ([]TaskReport, error) {
	tasks, err := s.loadTasks(ctx, projectID)
	if err != nil {
		return nil, err
	}

	reports := []TaskReport{}
	for _, task := range tasks {
		if task.Status == domain.TaskStatusCompleted {
			continue
		}
		span := s.estimator.EstimateDates(task)
		violations := s.validator.ValidateMove(task, span.Start, tasks)
		if len(violations) == 0 {
			continue
		}
		reports = append(reports, TaskReport{
			Task:       task,
			Span:       span,
			Validity:   schedule.AggregateValidity(violations),
			Violations: violations,
		})
	}

	slog.Info("schedule checked",
		"project_id", projectID,
		"tasks", len(tasks),
		"with_violations", len(reports),
	)

	return reports, nil
}

func findTask(tasks []*domain.Task, taskID string) *domain.Task {
	for _, task := range tasks {
		if task.ID == taskID {
			return task
		}
	}
	return nil
}

func appendMissing(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
