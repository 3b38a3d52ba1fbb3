package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mtlprog/sitetimeline/internal/domain"
)

// taskColumns is the shared list of columns for task queries.
var taskColumns = []string{
	"id", "project_id", "title", "category", "phase", "status", "priority", "type",
	"estimated_hours", "start_date", "due_date", "created_at", "updated_at",
}

// TaskRepository handles database operations for tasks.
type TaskRepository struct {
	pool   *pgxpool.Pool
	events *ScheduleEventRepository
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{
		pool:   pool,
		events: NewScheduleEventRepository(pool),
	}
}

// scanTask scans a single row into a Task struct.
func scanTask(row pgx.Row) (*domain.Task, error) {
	var task domain.Task
	var phase string
	err := row.Scan(
		&task.ID,
		&task.ProjectID,
		&task.Title,
		&task.Category,
		&phase,
		&task.Status,
		&task.Priority,
		&task.Type,
		&task.EstimatedHours,
		&task.StartDate,
		&task.DueDate,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}
	task.Phase = domain.Phase(phase)
	return &task, nil
}

// scanTasks scans multiple rows into a slice of Task structs.
func scanTasks(rows pgx.Rows) ([]*domain.Task, error) {
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return tasks, nil
}

// ListTasks returns every task of a project in timeline order.
func (r *TaskRepository) ListTasks(ctx context.Context, projectID string) ([]*domain.Task, error) {
	return r.List(ctx, TaskListFilters{ProjectID: projectID})
}

// GetByID retrieves a task by ID.
func (r *TaskRepository) GetByID(ctx context.Context, taskID string) (*domain.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"id": taskID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for task: %w", err)
	}

	return scanTask(r.pool.QueryRow(ctx, query, args...))
}

// GetByIDForUpdate retrieves a task by ID with FOR UPDATE lock (within transaction).
func (r *TaskRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, taskID string) (*domain.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"id": taskID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByIDForUpdate query for task %s: %w", taskID, err)
	}

	return scanTask(tx.QueryRow(ctx, query, args...))
}

// UpdateDates sets the start and due dates of a task.
func (r *TaskRepository) UpdateDates(ctx context.Context, tx pgx.Tx, taskID string, start, due time.Time) error {
	query, args, err := psql.
		Update("tasks").
		Set("start_date", start).
		Set("due_date", due).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": taskID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build UpdateDates query for task %s: %w", taskID, err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update task dates: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrTaskNotFound, taskID)
	}

	return nil
}

// SaveTaskDates applies a batch of date changes in one transaction, recording a
// schedule event for each task. Either every update is stored or none is.
func (r *TaskRepository) SaveTaskDates(ctx context.Context, updates []domain.DateUpdate) error {
	if len(updates) == 0 {
		return domain.ErrEmptyDateUpdate
	}
	for _, u := range updates {
		if u.End.Before(u.Start) {
			return fmt.Errorf("%w: task %s ends %s before it starts %s",
				domain.ErrInvalidDates, u.TaskID, u.End.Format(time.DateOnly), u.Start.Format(time.DateOnly))
		}
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	for _, u := range updates {
		task, err := r.GetByIDForUpdate(ctx, tx, u.TaskID)
		if err != nil {
			return fmt.Errorf("lock task %s: %w", u.TaskID, err)
		}

		if err := r.UpdateDates(ctx, tx, u.TaskID, u.Start, u.End); err != nil {
			return err
		}

		event := &domain.ScheduleEvent{
			TaskID:   u.TaskID,
			OldStart: task.StartDate,
			OldEnd:   task.DueDate,
			NewStart: u.Start,
			NewEnd:   u.End,
		}
		if err := r.events.Create(ctx, tx, event); err != nil {
			return fmt.Errorf("create schedule event: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// Create creates a new task in the database within a transaction.
// Returns the created task with ID, CreatedAt, and UpdatedAt populated.
func (r *TaskRepository) Create(ctx context.Context, tx pgx.Tx, task *domain.Task) (*domain.Task, error) {
	if task.Status == "" {
		task.Status = domain.TaskStatusNotStarted
	}
	if task.Priority == "" {
		task.Priority = domain.TaskPriorityMedium
	}
	if task.Type == "" {
		task.Type = domain.TaskTypeRegular
	}

	query, args, err := psql.
		Insert("tasks").
		Columns(
			"project_id", "title", "category", "phase", "status", "priority", "type",
			"estimated_hours", "start_date", "due_date",
		).
		Values(
			task.ProjectID,
			task.Title,
			task.Category,
			string(task.Phase),
			task.Status,
			task.Priority,
			task.Type,
			task.EstimatedHours,
			task.StartDate,
			task.DueDate,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Create query for task: %w", err)
	}

	err = tx.QueryRow(ctx, query, args...).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	return task, nil
}
