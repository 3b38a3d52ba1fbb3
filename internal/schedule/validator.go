package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/mtlprog/sitetimeline/internal/domain"
)

// InspectionBuffer is the time after an inspected task during which nothing else should start.
const InspectionBuffer = 2 * domain.Day

// Validator checks proposed task moves against construction sequencing rules.
type Validator struct {
	estimator *Estimator
}

// NewValidator creates a new Validator.
func NewValidator(estimator *Estimator) *Validator {
	return &Validator{
		estimator: estimator,
	}
}

// ValidateMove evaluates starting task at proposedStart against every other task.
// Violations are ordered: phase sequencing, weather, inspection buffer, weekend start.
func (v *Validator) ValidateMove(task *domain.Task, proposedStart time.Time, allTasks []*domain.Task) []domain.Violation {
	var violations []domain.Violation

	violations = append(violations, v.checkPhaseSequence(task, proposedStart, allTasks)...)

	if violation, ok := checkWeather(task, proposedStart); ok {
		violations = append(violations, violation)
	}

	if violation, ok := v.checkInspectionBuffer(task, proposedStart, allTasks); ok {
		violations = append(violations, violation)
	}

	if violation, ok := checkWeekendStart(task, proposedStart); ok {
		violations = append(violations, violation)
	}

	return violations
}

// AggregateValidity folds violations into a single validity.
// Any error makes the move invalid; info never downgrades it.
func AggregateValidity(violations []domain.Violation) domain.Validity {
	validity := domain.ValidityValid
	for _, violation := range violations {
		switch violation.Severity {
		case domain.SeverityError:
			return domain.ValidityInvalid
		case domain.SeverityWarning:
			validity = domain.ValidityWarning
		}
	}
	return validity
}

// AffectedTaskIDs collects the distinct task ids named by violations, in order of appearance.
func AffectedTaskIDs(violations []domain.Violation) []string {
	var ids []string
	for _, violation := range violations {
		ids = appendUnique(ids, violation.AffectedTaskIDs...)
	}
	return ids
}

// checkPhaseSequence requires every earlier-phase task to be finished before the move.
func (v *Validator) checkPhaseSequence(task *domain.Task, proposedStart time.Time, allTasks []*domain.Task) []domain.Violation {
	phase := PhaseOf(task)
	if !phase.IsValid() {
		return nil
	}

	var violations []domain.Violation
	for _, other := range allTasks {
		if other.ID == task.ID {
			continue
		}
		otherPhase := PhaseOf(other)
		if !otherPhase.Precedes(phase) {
			continue
		}

		prereqEnd := v.estimator.EstimateDates(other).End
		if !prereqEnd.After(proposedStart) {
			continue
		}

		suggested := domain.AddDays(domain.StartOfDay(prereqEnd), 1)
		violations = append(violations, domain.Violation{
			Kind:     domain.ViolationPhaseDependency,
			Severity: domain.SeverityError,
			Message: fmt.Sprintf("%q (%s) cannot start before %q (%s) finishes on %s",
				task.Title, phase, other.Title, otherPhase, prereqEnd.Format(time.DateOnly)),
			AffectedTaskIDs: []string{other.ID, task.ID},
			SuggestedDate:   &suggested,
		})
	}
	return violations
}

// checkWeather warns about outdoor work in the unfavourable months.
func checkWeather(task *domain.Task, proposedStart time.Time) (domain.Violation, bool) {
	if !hasTrait(task, weatherSensitive) {
		return domain.Violation{}, false
	}

	month := proposedStart.Month()
	var reason string
	switch {
	case month == time.December || month == time.January || month == time.February:
		reason = "winter conditions"
	case (month == time.March || month == time.April) && hasTrait(task, rainySeasonWork):
		reason = "rainy season"
	default:
		return domain.Violation{}, false
	}

	return domain.Violation{
		Kind:     domain.ViolationWeatherConstraint,
		Severity: domain.SeverityWarning,
		Message: fmt.Sprintf("%q is weather sensitive; starting in %s risks delays from %s",
			task.Title, month, reason),
		AffectedTaskIDs: []string{task.ID},
	}, true
}

// checkInspectionBuffer warns when work starts right after a task that needs an inspection.
func (v *Validator) checkInspectionBuffer(task *domain.Task, proposedStart time.Time, allTasks []*domain.Task) (domain.Violation, bool) {
	if !hasTrait(task, inspectionRequired) {
		return domain.Violation{}, false
	}

	end := v.estimator.MoveTo(task, proposedStart).End
	windowEnd := end.Add(InspectionBuffer)

	ids := []string{task.ID}
	var titles []string
	for _, other := range allTasks {
		if other.ID == task.ID {
			continue
		}
		start := v.estimator.EstimateDates(other).Start
		if start.Before(end) || start.After(windowEnd) {
			continue
		}
		ids = appendUnique(ids, other.ID)
		titles = append(titles, fmt.Sprintf("%q", other.Title))
	}
	if len(titles) == 0 {
		return domain.Violation{}, false
	}

	return domain.Violation{
		Kind:     domain.ViolationInspectionRequired,
		Severity: domain.SeverityWarning,
		Message: fmt.Sprintf("%q needs an inspection after %s; %s start within %d days",
			task.Title, end.Format(time.DateOnly), strings.Join(titles, ", "), int(InspectionBuffer/domain.Day)),
		AffectedTaskIDs: ids,
	}, true
}

// checkWeekendStart suggests the following Monday for weekend starts.
func checkWeekendStart(task *domain.Task, proposedStart time.Time) (domain.Violation, bool) {
	var shift int
	switch proposedStart.Weekday() {
	case time.Saturday:
		shift = 2
	case time.Sunday:
		shift = 1
	default:
		return domain.Violation{}, false
	}

	monday := domain.AddDays(domain.StartOfDay(proposedStart), shift)
	return domain.Violation{
		Kind:            domain.ViolationWeekendStart,
		Severity:        domain.SeverityInfo,
		Message:         fmt.Sprintf("%q starts on a %s; consider %s", task.Title, proposedStart.Weekday(), monday.Format(time.DateOnly)),
		AffectedTaskIDs: []string{task.ID},
		SuggestedDate:   &monday,
	}, true
}

func appendUnique(ids []string, more ...string) []string {
	for _, id := range more {
		found := false
		for _, existing := range ids {
			if existing == id {
				found = true
				break
			}
		}
		if !found {
			ids = append(ids, id)
		}
	}
	return ids
}
