package schedule

import (
	"math"
	"time"

	"github.com/mtlprog/sitetimeline/internal/domain"
)

const (
	// HoursPerWorkday converts estimated hours into working days.
	HoursPerWorkday = 8

	// DefaultDurationDays is used when nothing else tells how long a task takes.
	DefaultDurationDays = 14
)

// phaseDurations holds typical construction phase lengths in days.
var phaseDurations = map[domain.Phase]int{
	domain.PhaseFoundation: 21,
	domain.PhaseFraming:    30,
	domain.PhaseRoofing:    10,
	domain.PhaseElectrical: 14,
	domain.PhasePlumbing:   14,
	domain.PhaseHVAC:       21,
	domain.PhaseInsulation: 7,
	domain.PhaseDrywall:    14,
	domain.PhaseFlooring:   10,
	domain.PhasePaint:      7,
	domain.PhaseFinish:     28,
}

// PhaseDurationDays returns the default length of a phase in days.
func PhaseDurationDays(phase domain.Phase) int {
	if days, ok := phaseDurations[phase]; ok {
		return days
	}
	return DefaultDurationDays
}

// Estimator derives effective dates for tasks with missing schedule data.
type Estimator struct {
	now func() time.Time
}

// NewEstimator creates a new Estimator. A nil clock uses time.Now.
func NewEstimator(now func() time.Time) *Estimator {
	if now == nil {
		now = time.Now
	}
	return &Estimator{now: now}
}

// EstimateDates returns the effective span of a task.
//
// Explicit start and due dates win. Otherwise the length comes from the
// estimated hours (8 hour workdays, at least one day) or the phase default,
// anchored at whichever date the task has, then at its creation day, then today.
// The task is never modified.
func (e *Estimator) EstimateDates(task *domain.Task) domain.DateSpan {
	if task.HasDates() {
		return domain.DateSpan{Start: *task.StartDate, End: *task.DueDate}
	}

	days := e.DurationDays(task)

	switch {
	case task.StartDate != nil:
		start := *task.StartDate
		return domain.DateSpan{Start: start, End: domain.AddDays(start, days)}
	case task.DueDate != nil:
		end := *task.DueDate
		return domain.DateSpan{Start: domain.AddDays(end, -days), End: end}
	}

	base := domain.StartOfDay(e.now())
	if !task.CreatedAt.IsZero() {
		base = domain.StartOfDay(task.CreatedAt)
	}
	return domain.DateSpan{Start: base, End: domain.AddDays(base, days)}
}

// DurationDays returns the estimated length of a task in whole days, ignoring explicit dates.
func (e *Estimator) DurationDays(task *domain.Task) int {
	if h := task.EstimatedHours; h != nil && *h >= 0 && !math.IsInf(*h, 0) && !math.IsNaN(*h) {
		return max(int(math.Ceil(*h/HoursPerWorkday)), 1)
	}
	return PhaseDurationDays(PhaseOf(task))
}

// Duration returns the length of the task bar, negative for malformed tasks.
func (e *Estimator) Duration(task *domain.Task) time.Duration {
	return e.EstimateDates(task).Duration()
}

// MoveTo returns the span of the task if it started at start, keeping its length.
func (e *Estimator) MoveTo(task *domain.Task, start time.Time) domain.DateSpan {
	return domain.DateSpan{Start: start, End: start.Add(e.Duration(task))}
}
