// Package drag owns the lifecycle of a single task-bar drag on the timeline:
// start, live move with continuous validation, drop (commit or reject) and
// cancel, plus the local overlay of optimistically accepted dates.
package drag

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mtlprog/sitetimeline/internal/domain"
	"github.com/mtlprog/sitetimeline/internal/schedule"
	"github.com/mtlprog/sitetimeline/internal/timeline"
)

// Saver persists a batch of task date changes.
type Saver interface {
	SaveTaskDates(ctx context.Context, updates []domain.DateUpdate) error
}

// State is the lifecycle state of the drag machine.
type State string

const (
	StateIdle      State = "idle"
	StateDragging  State = "dragging"
	StateCommitted State = "committed"
	StateCancelled State = "cancelled"
)

// Outcome is the result of a drop.
type Outcome string

const (
	OutcomeCommitted Outcome = "committed"
	OutcomeRejected  Outcome = "rejected"
)

// DropResult describes a finished drag.
type DropResult struct {
	Outcome Outcome
	Session domain.DragSession
	Updates []domain.DateUpdate

	// Saved delivers the persistence outcome of a committed drop, then closes.
	// Nil for rejected drops.
	Saved <-chan error
}

// Config holds the viewport and sampling settings of a Machine.
type Config struct {
	ViewportWidthPx  float64
	ViewMode         domain.ViewMode
	DropZoneStepDays int
	Now              func() time.Time
}

// evaluation is the cached result of validating one candidate date.
type evaluation struct {
	taskID     string
	candidate  time.Time
	generation uint64

	violations []domain.Violation
	impacts    []domain.TaskImpact
	validity   domain.Validity
	affected   []string
}

// Machine runs one drag gesture at a time over a fixed task set.
type Machine struct {
	mu sync.Mutex

	saver     Saver
	estimator *schedule.Estimator
	validator *schedule.Validator
	impacts   *schedule.ImpactCalculator
	overlay   *Overlay
	now       func() time.Time
	stepDays  int

	tasks      []*domain.Task
	display    []*domain.Task
	generation uint64

	viewportWidth float64
	rng           domain.TimelineRange

	state   State
	dragged *domain.Task
	session *domain.DragSession
	cache   *evaluation

	lastSaveErr error
	saves       sync.WaitGroup
}

// NewMachine creates a Machine over tasks. A nil saver keeps accepted moves local only.
func NewMachine(saver Saver, tasks []*domain.Task, cfg Config) (*Machine, error) {
	if cfg.ViewportWidthPx <= 0 {
		return nil, fmt.Errorf("%w: width %v", domain.ErrInvalidViewport, cfg.ViewportWidthPx)
	}
	if !cfg.ViewMode.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidViewMode, cfg.ViewMode)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.DropZoneStepDays <= 0 {
		cfg.DropZoneStepDays = schedule.DefaultDropZoneStepDays
	}

	estimator := schedule.NewEstimator(cfg.Now)
	m := &Machine{
		saver:         saver,
		estimator:     estimator,
		validator:     schedule.NewValidator(estimator),
		impacts:       schedule.NewImpactCalculator(estimator),
		overlay:       NewOverlay(),
		now:           cfg.Now,
		stepDays:      cfg.DropZoneStepDays,
		tasks:         tasks,
		viewportWidth: cfg.ViewportWidthPx,
		rng:           domain.TimelineRange{ViewMode: cfg.ViewMode},
		state:         StateIdle,
	}
	if err := m.refresh(); err != nil {
		return nil, err
	}
	return m, nil
}

// allowedTransitions is the drag lifecycle; dragging -> idle is a rejected drop.
var allowedTransitions = map[State][]State{
	StateIdle:      {StateDragging},
	StateDragging:  {StateCommitted, StateCancelled, StateIdle},
	StateCommitted: {StateIdle},
	StateCancelled: {StateIdle},
}

func (m *Machine) transition(to State) error {
	for _, allowed := range allowedTransitions[m.state] {
		if allowed == to {
			m.state = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, m.state, to)
}

// refresh rebuilds the displayed task set and the timeline range. Callers hold mu.
func (m *Machine) refresh() error {
	m.display = m.overlay.Apply(m.tasks)
	m.generation++
	m.cache = nil

	spans := make([]domain.DateSpan, len(m.display))
	for i, task := range m.display {
		spans[i] = m.estimator.EstimateDates(task)
	}
	rng, err := timeline.NewRange(spans, m.rng.ViewMode, m.now())
	if err != nil {
		return fmt.Errorf("build timeline range: %w", err)
	}
	m.rng = rng
	return nil
}

func (m *Machine) findTask(taskID string) *domain.Task {
	for _, task := range m.display {
		if task.ID == taskID {
			return task
		}
	}
	return nil
}

// Start begins dragging a task. Only one drag may be active at a time.
func (m *Machine) Start(taskID string) (domain.DragSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateIdle {
		return domain.DragSession{}, fmt.Errorf("%w: task %s is being dragged", domain.ErrDragInProgress, m.session.DraggedTaskID)
	}

	task := m.findTask(taskID)
	if task == nil {
		return domain.DragSession{}, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, taskID)
	}

	if err := m.transition(StateDragging); err != nil {
		return domain.DragSession{}, err
	}

	span := m.estimator.EstimateDates(task)
	m.dragged = task
	m.session = &domain.DragSession{
		DraggedTaskID: task.ID,
		PointerX:      timeline.PixelFromDate(span.Start, m.viewportWidth, m.rng),
		OriginalSpan:  span,
		DropZones:     m.validator.ComputeDropZones(task, m.rng, m.display, m.stepDays),
	}
	m.apply(m.evaluate(span.Start))

	slog.Debug("drag started",
		"task_id", task.ID,
		"original_start", span.Start,
		"drop_zones", len(m.session.DropZones),
	)

	return m.snapshot(), nil
}

// Move re-evaluates the drag at a new pointer position. It never blocks on I/O.
func (m *Machine) Move(pointerX float64) (domain.DragSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateDragging {
		return domain.DragSession{}, domain.ErrNoActiveDrag
	}

	m.session.PointerX = pointerX
	m.apply(m.evaluate(timeline.DateFromPixel(pointerX, m.viewportWidth, m.rng)))

	return m.snapshot(), nil
}

// Drop finishes the drag at pointerX.
//
// A blocking violation rejects the move and nothing is saved. Otherwise the
// dragged and impacted tasks are written to the overlay, the machine goes back
// to idle and the batch is saved in the background. A failed save does not
// roll the overlay back; see ResetLocalOverrides.
func (m *Machine) Drop(ctx context.Context, pointerX float64) (DropResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateDragging {
		return DropResult{}, domain.ErrNoActiveDrag
	}

	m.session.PointerX = pointerX
	m.apply(m.evaluate(timeline.DateFromPixel(pointerX, m.viewportWidth, m.rng)))
	final := m.snapshot()

	if final.Validity == domain.ValidityInvalid {
		if err := m.transition(StateIdle); err != nil {
			return DropResult{}, err
		}
		m.clearSession()

		slog.Info("drop rejected",
			"task_id", final.DraggedTaskID,
			"candidate_date", final.CandidateDate,
			"violations", len(final.Violations),
		)

		return DropResult{Outcome: OutcomeRejected, Session: final}, nil
	}

	if err := m.transition(StateCommitted); err != nil {
		return DropResult{}, err
	}

	updates := m.buildUpdates(final)
	for _, u := range updates {
		start, end := u.Start, u.End
		m.overlay.Set(u.TaskID, domain.DateOverride{Start: &start, End: &end})
	}

	saved := make(chan error, 1)
	if m.saver == nil {
		saved <- nil
		close(saved)
	} else {
		m.saves.Add(1)
		go m.persist(context.WithoutCancel(ctx), updates, saved)
	}

	if err := m.transition(StateIdle); err != nil {
		return DropResult{}, err
	}
	m.clearSession()
	if err := m.refresh(); err != nil {
		return DropResult{}, err
	}

	slog.Info("drop committed",
		"task_id", final.DraggedTaskID,
		"candidate_date", final.CandidateDate,
		"validity", final.Validity,
		"updates", len(updates),
	)

	return DropResult{
		Outcome: OutcomeCommitted,
		Session: final,
		Updates: updates,
		Saved:   saved,
	}, nil
}

// Cancel abandons the active drag without saving anything.
func (m *Machine) Cancel() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateDragging {
		return domain.ErrNoActiveDrag
	}
	if err := m.transition(StateCancelled); err != nil {
		return err
	}

	slog.Debug("drag cancelled", "task_id", m.session.DraggedTaskID)

	m.clearSession()
	return m.transition(StateIdle)
}

func (m *Machine) clearSession() {
	m.session = nil
	m.dragged = nil
}

// buildUpdates turns the final evaluation into the batch to persist.
func (m *Machine) buildUpdates(final domain.DragSession) []domain.DateUpdate {
	moved := m.estimator.MoveTo(m.dragged, final.CandidateDate)
	updates := []domain.DateUpdate{{
		TaskID: m.dragged.ID,
		Start:  moved.Start,
		End:    moved.End,
	}}

	for _, impact := range final.Impacts {
		if impact.TaskID == m.dragged.ID || impact.Classification == domain.ImpactUnchanged {
			continue
		}
		task := m.findTask(impact.TaskID)
		if task == nil {
			continue
		}
		span := m.estimator.MoveTo(task, impact.ProposedDate)
		updates = append(updates, domain.DateUpdate{
			TaskID: task.ID,
			Start:  span.Start,
			End:    span.End,
		})
	}
	return updates
}

func (m *Machine) persist(ctx context.Context, updates []domain.DateUpdate, saved chan<- error) {
	defer m.saves.Done()
	defer close(saved)

	err := m.saver.SaveTaskDates(ctx, updates)

	m.mu.Lock()
	m.lastSaveErr = err
	m.mu.Unlock()

	if err != nil {
		slog.Error("failed to save task dates",
			"task_id", updates[0].TaskID,
			"updates", len(updates),
			"error", err,
		)
	} else {
		slog.Info("task dates saved",
			"task_id", updates[0].TaskID,
			"updates", len(updates),
		)
	}

	saved <- err
}

// evaluate validates the dragged task at candidate, reusing the last result
// while neither the candidate nor the task set has changed. Callers hold mu.
func (m *Machine) evaluate(candidate time.Time) *evaluation {
	if c := m.cache; c != nil && c.taskID == m.dragged.ID && c.candidate.Equal(candidate) && c.generation == m.generation {
		return c
	}

	violations := m.validator.ValidateMove(m.dragged, candidate, m.display)
	impacts := m.impacts.CalculateImpact(m.dragged, candidate, m.display)

	affected := schedule.AffectedTaskIDs(violations)
	for _, impact := range impacts {
		if impact.Classification != domain.ImpactUnchanged && impact.TaskID != m.dragged.ID {
			affected = appendUnique(affected, impact.TaskID)
		}
	}

	m.cache = &evaluation{
		taskID:     m.dragged.ID,
		candidate:  candidate,
		generation: m.generation,
		violations: violations,
		impacts:    impacts,
		validity:   schedule.AggregateValidity(violations),
		affected:   affected,
	}
	return m.cache
}

func (m *Machine) apply(e *evaluation) {
	m.session.CandidateDate = e.candidate
	m.session.Violations = e.violations
	m.session.Impacts = e.impacts
	m.session.Validity = e.validity
	m.session.AffectedTaskIDs = e.affected
}

// snapshot copies the active session so callers never share its slices. Callers hold mu.
func (m *Machine) snapshot() domain.DragSession {
	s := *m.session
	s.Violations = append([]domain.Violation(nil), m.session.Violations...)
	s.Impacts = append([]domain.TaskImpact(nil), m.session.Impacts...)
	s.AffectedTaskIDs = append([]string(nil), m.session.AffectedTaskIDs...)
	s.DropZones = append([]domain.DropZone(nil), m.session.DropZones...)
	return s
}

// Snapshot returns the active drag, or false when idle.
func (m *Machine) Snapshot() (domain.DragSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return domain.DragSession{}, false
	}
	return m.snapshot(), true
}

// State returns the current lifecycle state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state
}

// Range returns the timeline range the pointer is mapped onto.
func (m *Machine) Range() domain.TimelineRange {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.rng
}

// ViewportWidth returns the viewport width in pixels.
func (m *Machine) ViewportWidth() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.viewportWidth
}

// SetViewport changes the viewport width and zoom level. Not allowed mid-drag.
func (m *Machine) SetViewport(widthPx float64, mode domain.ViewMode) error {
	if widthPx <= 0 {
		return fmt.Errorf("%w: width %v", domain.ErrInvalidViewport, widthPx)
	}
	if !mode.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidViewMode, mode)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateIdle {
		return domain.ErrDragInProgress
	}
	m.viewportWidth = widthPx
	m.rng.ViewMode = mode
	return m.refresh()
}

// SetTasks replaces the task set, for example after reloading from storage.
// Pending overrides stay in place.
func (m *Machine) SetTasks(tasks []*domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tasks = tasks
	if err := m.refresh(); err != nil {
		return err
	}
	if m.dragged != nil {
		if task := m.findTask(m.dragged.ID); task != nil {
			m.dragged = task
		}
	}
	return nil
}

// DisplayTasks returns the tasks with pending overrides applied.
func (m *Machine) DisplayTasks() []*domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]*domain.Task(nil), m.display...)
}

// Estimate returns the effective span of a task as the machine sees it.
func (m *Machine) Estimate(task *domain.Task) domain.DateSpan {
	return m.estimator.EstimateDates(task)
}

// Overrides returns a copy of the pending local overrides.
func (m *Machine) Overrides() map[string]domain.DateOverride {
	return m.overlay.Snapshot()
}

// ResetLocalOverrides discards every pending override, whatever the state of
// persistence, and returns how many were dropped.
func (m *Machine) ResetLocalOverrides() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := m.overlay.Reset()
	if err := m.refresh(); err != nil {
		slog.Error("failed to refresh timeline after reset", "error", err)
	}
	if m.dragged != nil {
		if task := m.findTask(m.dragged.ID); task != nil {
			m.dragged = task
		}
	}
	return n
}

// LastSaveError returns the error of the most recent save, nil if it succeeded.
func (m *Machine) LastSaveError() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.lastSaveErr
}

// Wait blocks until every background save has finished.
func (m *Machine) Wait() {
	m.saves.Wait()
}

func appendUnique(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
