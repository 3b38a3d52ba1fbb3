// Package service loads project task sets, keeps one drag machine per project
// and connects accepted moves to persistent storage.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mtlprog/sitetimeline/internal/config"
	"github.com/mtlprog/sitetimeline/internal/domain"
	"github.com/mtlprog/sitetimeline/internal/drag"
	"github.com/mtlprog/sitetimeline/internal/schedule"
	"github.com/mtlprog/sitetimeline/internal/timeline"
)

// TaskStore loads and saves project tasks.
type TaskStore interface {
	ListTasks(ctx context.Context, projectID string) ([]*domain.Task, error)
	SaveTaskDates(ctx context.Context, updates []domain.DateUpdate) error
}

// ProjectStore looks up projects.
type ProjectStore interface {
	GetByID(ctx context.Context, projectID string) (*domain.Project, error)
}

// Options configures a TimelineService. Zero values take the config defaults.
type Options struct {
	SaveTimeout      time.Duration
	SaveAttempts     int
	SaveBackoff      time.Duration
	DropZoneStepDays int
	ViewportWidthPx  float64
	ViewMode         domain.ViewMode
	Now              func() time.Time
}

func (o Options) withDefaults() Options {
	if o.SaveTimeout <= 0 {
		o.SaveTimeout = config.DefaultSaveTimeout
	}
	if o.SaveAttempts <= 0 {
		o.SaveAttempts = config.DefaultSaveAttempts
	}
	if o.SaveBackoff <= 0 {
		o.SaveBackoff = config.DefaultSaveBackoff
	}
	if o.DropZoneStepDays <= 0 {
		o.DropZoneStepDays = config.DefaultDropZoneStepDays
	}
	if o.ViewportWidthPx <= 0 {
		o.ViewportWidthPx = config.DefaultViewportWidthPx
	}
	if o.ViewMode == "" {
		o.ViewMode = domain.ViewMode(config.DefaultViewMode)
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// TimelineService coordinates timelines and drags across projects.
type TimelineService struct {
	tasks    TaskStore
	projects ProjectStore
	saver    *retryingSaver
	opts     Options

	estimator *schedule.Estimator
	validator *schedule.Validator
	impacts   *schedule.ImpactCalculator

	mu       sync.Mutex
	machines map[string]*drag.Machine
}

// NewTimelineService creates a new TimelineService.
func NewTimelineService(tasks TaskStore, projects ProjectStore, opts Options) *TimelineService {
	opts = opts.withDefaults()
	estimator := schedule.NewEstimator(opts.Now)
	return &TimelineService{
		tasks:     tasks,
		projects:  projects,
		saver:     newRetryingSaver(tasks, opts),
		opts:      opts,
		estimator: estimator,
		validator: schedule.NewValidator(estimator),
		impacts:   schedule.NewImpactCalculator(estimator),
		machines:  make(map[string]*drag.Machine),
	}
}

// Machine returns the drag machine of a project, loading its tasks on first use.
func (s *TimelineService) Machine(ctx context.Context, projectID string) (*drag.Machine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m, ok := s.machines[projectID]; ok {
		return m, nil
	}

	tasks, err := s.loadTasks(ctx, projectID)
	if err != nil {
		return nil, err
	}

	m, err := drag.NewMachine(s.saver, tasks, drag.Config{
		ViewportWidthPx:  s.opts.ViewportWidthPx,
		ViewMode:         s.opts.ViewMode,
		DropZoneStepDays: s.opts.DropZoneStepDays,
		Now:              s.opts.Now,
	})
	if err != nil {
		return nil, fmt.Errorf("create drag machine for project %s: %w", projectID, err)
	}
	s.machines[projectID] = m

	slog.Info("timeline loaded", "project_id", projectID, "tasks", len(tasks))

	return m, nil
}

func (s *TimelineService) loadTasks(ctx context.Context, projectID string) ([]*domain.Task, error) {
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return nil, err
	}

	tasks, err := s.tasks.ListTasks(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list tasks for project %s: %w", projectID, err)
	}
	return tasks, nil
}

// Refresh reloads the task set of a project from storage. Pending overrides stay applied.
func (s *TimelineService) Refresh(ctx context.Context, projectID string) (*drag.Machine, error) {
	m, err := s.Machine(ctx, projectID)
	if err != nil {
		return nil, err
	}

	tasks, err := s.loadTasks(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := m.SetTasks(tasks); err != nil {
		return nil, fmt.Errorf("refresh project %s: %w", projectID, err)
	}

	slog.Info("timeline refreshed", "project_id", projectID, "tasks", len(tasks))

	return m, nil
}

// StartDrag begins dragging a task of a project.
func (s *TimelineService) StartDrag(ctx context.Context, projectID, taskID string) (domain.DragSession, error) {
	m, err := s.Machine(ctx, projectID)
	if err != nil {
		return domain.DragSession{}, err
	}
	return m.Start(taskID)
}

// MoveDrag updates the pointer position of the active drag.
func (s *TimelineService) MoveDrag(ctx context.Context, projectID string, pointerX float64) (domain.DragSession, error) {
	m, err := s.Machine(ctx, projectID)
	if err != nil {
		return domain.DragSession{}, err
	}
	return m.Move(pointerX)
}

// DropDrag finishes the active drag. The save of a committed drop continues
// after the request that triggered it has returned.
func (s *TimelineService) DropDrag(ctx context.Context, projectID string, pointerX float64) (drag.DropResult, error) {
	m, err := s.Machine(ctx, projectID)
	if err != nil {
		return drag.DropResult{}, err
	}
	return m.Drop(ctx, pointerX)
}

// CancelDrag abandons the active drag of a project.
func (s *TimelineService) CancelDrag(ctx context.Context, projectID string) error {
	m, err := s.Machine(ctx, projectID)
	if err != nil {
		return err
	}
	return m.Cancel()
}

// SetViewport changes the viewport width and zoom level of a project timeline.
func (s *TimelineService) SetViewport(ctx context.Context, projectID string, widthPx float64, mode domain.ViewMode) error {
	m, err := s.Machine(ctx, projectID)
	if err != nil {
		return err
	}
	return m.SetViewport(widthPx, mode)
}

// Overrides returns the pending local overrides of a project.
func (s *TimelineService) Overrides(ctx context.Context, projectID string) (map[string]domain.DateOverride, error) {
	m, err := s.Machine(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return m.Overrides(), nil
}

// ResetOverrides drops the pending local overrides of a project.
func (s *TimelineService) ResetOverrides(ctx context.Context, projectID string) (int, error) {
	m, err := s.Machine(ctx, projectID)
	if err != nil {
		return 0, err
	}

	n := m.ResetLocalOverrides()
	slog.Info("local overrides reset", "project_id", projectID, "dropped", n)

	return n, nil
}

// Wait blocks until the background saves of every loaded project have finished.
func (s *TimelineService) Wait() {
	s.mu.Lock()
	machines := make([]*drag.Machine, 0, len(s.machines))
	for _, m := range s.machines {
		machines = append(machines, m)
	}
	s.mu.Unlock()

	for _, m := range machines {
		m.Wait()
	}
}

// ViewportQuery describes the visible part of the task list.
type ViewportQuery struct {
	ScrollTopPx      float64
	ViewportHeightPx float64
	RowHeightPx      float64
	BufferRows       int
	Threshold        int
}

// Bar is one task row as it is drawn.
type Bar struct {
	Task       *domain.Task
	Span       domain.DateSpan
	LeftPx     float64
	WidthPx    float64
	Overridden bool
}

// TimelineView is everything needed to draw a project timeline.
type TimelineView struct {
	ProjectID        string
	Range            domain.TimelineRange
	ViewportWidthPx  float64
	TotalRows        int
	Window           timeline.Window
	Virtualized      bool
	Bars             []Bar // rows inside Window only
	PendingOverrides int
	LastSaveError    error
	Drag             *domain.DragSession
}

// Timeline returns the drawable view of a project with pending overrides applied.
func (s *TimelineService) Timeline(ctx context.Context, projectID string, q ViewportQuery) (*TimelineView, error) {
	m, err := s.Machine(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if q.RowHeightPx <= 0 {
		q.RowHeightPx = config.DefaultRowHeightPx
	}
	if q.BufferRows < 0 {
		q.BufferRows = config.DefaultBufferRows
	}
	if q.Threshold <= 0 {
		q.Threshold = config.DefaultVirtualizeThreshold
	}

	tasks := m.DisplayTasks()
	rng := m.Range()
	width := m.ViewportWidth()
	overrides := m.Overrides()

	window, virtualized := timeline.PlanWindow(q.ScrollTopPx, q.ViewportHeightPx, q.RowHeightPx, len(tasks), q.BufferRows, q.Threshold)

	view := &TimelineView{
		ProjectID:        projectID,
		Range:            rng,
		ViewportWidthPx:  width,
		TotalRows:        len(tasks),
		Window:           window,
		Virtualized:      virtualized,
		Bars:             make([]Bar, 0, window.Len()),
		PendingOverrides: len(overrides),
		LastSaveError:    m.LastSaveError(),
	}
	for i := window.StartIndex; i <= window.EndIndex && i < len(tasks); i++ {
		task := tasks[i]
		span := m.Estimate(task)
		left, w := timeline.BarGeometry(span, width, rng)
		_, overridden := overrides[task.ID]
		view.Bars = append(view.Bars, Bar{
			Task:       task,
			Span:       span,
			LeftPx:     left,
			WidthPx:    w,
			Overridden: overridden,
		})
	}
	if session, ok := m.Snapshot(); ok {
		view.Drag = &session
	}

	return view, nil
}
