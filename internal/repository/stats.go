package repository

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// ProjectStatsResult summarises the stored schedule of a project.
type ProjectStatsResult struct {
	TotalTasks    int
	Unscheduled   int // tasks missing a start or due date
	TasksByStatus map[string]int
	TasksByPhase  map[string]int
	EarliestStart *time.Time
	LatestDue     *time.Time
}

// GetProjectStats retrieves task counts and the stored date span of a project.
func (r *TaskRepository) GetProjectStats(ctx context.Context, projectID string) (*ProjectStatsResult, error) {
	result := &ProjectStatsResult{
		TasksByStatus: make(map[string]int),
		TasksByPhase:  make(map[string]int),
	}

	query, args, err := psql.
		Select(
			"COUNT(*)",
			"COUNT(*) FILTER (WHERE start_date IS NULL OR due_date IS NULL)",
			"MIN(start_date)",
			"MAX(due_date)",
		).
		From("tasks").
		Where(sq.Eq{"project_id": projectID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build project totals query: %w", err)
	}

	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&result.TotalTasks,
		&result.Unscheduled,
		&result.EarliestStart,
		&result.LatestDue,
	)
	if err != nil {
		return nil, fmt.Errorf("query project totals: %w", err)
	}

	if err := r.countBy(ctx, projectID, "status", result.TasksByStatus); err != nil {
		return nil, err
	}
	if err := r.countBy(ctx, projectID, "phase", result.TasksByPhase); err != nil {
		return nil, err
	}

	return result, nil
}

// countBy fills counts with the number of project tasks per value of column.
func (r *TaskRepository) countBy(ctx context.Context, projectID, column string, counts map[string]int) error {
	query, args, err := psql.
		Select(column, "COUNT(*)").
		From("tasks").
		Where(sq.Eq{"project_id": projectID}).
		GroupBy(column).
		ToSql()
	if err != nil {
		return fmt.Errorf("build count by %s query: %w", column, err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query tasks by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var value string
		var count int
		if err := rows.Scan(&value, &count); err != nil {
			return fmt.Errorf("scan %s count: %w", column, err)
		}
		counts[value] = count
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate %s rows: %w", column, err)
	}

	return nil
}
