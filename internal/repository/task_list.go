package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/mtlprog/sitetimeline/internal/domain"
)

// TaskListFilters holds all supported filters for task listing.
type TaskListFilters struct {
	ProjectID     string              // Required: filter by project
	Statuses      []domain.TaskStatus // Optional: filter by status
	Phases        []domain.Phase      // Optional: filter by stored phase
	Types         []domain.TaskType   // Optional: filter by task type
	ScheduledOnly bool                // Optional: only tasks with both dates stored
}

// List retrieves the tasks of a project matching filters.
// Scheduled tasks come first by start date, then undated tasks by creation time.
func (r *TaskRepository) List(ctx context.Context, filters TaskListFilters) ([]*domain.Task, error) {
	qb := psql.Select(taskColumns...).From("tasks").
		Where(sq.Eq{"project_id": filters.ProjectID})

	if len(filters.Statuses) > 0 {
		qb = qb.Where(sq.Eq{"status": filters.Statuses})
	}
	if len(filters.Phases) > 0 {
		qb = qb.Where(sq.Eq{"phase": filters.Phases})
	}
	if len(filters.Types) > 0 {
		qb = qb.Where(sq.Eq{"type": filters.Types})
	}
	if filters.ScheduledOnly {
		qb = qb.Where(sq.NotEq{"start_date": nil}).Where(sq.NotEq{"due_date": nil})
	}

	query, args, err := qb.
		OrderBy("start_date ASC NULLS LAST", "created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build List query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}

	tasks, err := scanTasks(rows)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	return tasks, nil
}
