package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mtlprog/sitetimeline/internal/domain"
)

// ScheduleEventRepository stores the audit trail of persisted date changes.
type ScheduleEventRepository struct {
	pool *pgxpool.Pool
}

// NewScheduleEventRepository creates a new ScheduleEventRepository.
func NewScheduleEventRepository(pool *pgxpool.Pool) *ScheduleEventRepository {
	return &ScheduleEventRepository{pool: pool}
}

// Create inserts an event within tx and fills in its ID and CreatedAt.
func (r *ScheduleEventRepository) Create(ctx context.Context, tx pgx.Tx, event *domain.ScheduleEvent) error {
	query, args, err := psql.
		Insert("schedule_events").
		Columns("task_id", "old_start", "old_end", "new_start", "new_end").
		Values(event.TaskID, event.OldStart, event.OldEnd, event.NewStart, event.NewEnd).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if err := tx.QueryRow(ctx, query, args...).Scan(&event.ID, &event.CreatedAt); err != nil {
		return fmt.Errorf("insert schedule event: %w", err)
	}

	return nil
}

// ListByTask returns the date history of a task, oldest first.
func (r *ScheduleEventRepository) ListByTask(ctx context.Context, taskID string) ([]*domain.ScheduleEvent, error) {
	query, args, err := psql.
		Select("id", "task_id", "old_start", "old_end", "new_start", "new_end", "created_at").
		From("schedule_events").
		Where(sq.Eq{"task_id": taskID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query schedule events: %w", err)
	}
	defer rows.Close()

	events := []*domain.ScheduleEvent{}
	for rows.Next() {
		var event domain.ScheduleEvent
		err := rows.Scan(
			&event.ID,
			&event.TaskID,
			&event.OldStart,
			&event.OldEnd,
			&event.NewStart,
			&event.NewEnd,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan schedule event: %w", err)
		}
		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return events, nil
}
