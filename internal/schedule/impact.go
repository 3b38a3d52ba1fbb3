package schedule

import (
	"time"

	"github.com/mtlprog/sitetimeline/internal/domain"
)

// AdjacencyWindow is how soon after a task ends another task must start to count as dependent.
const AdjacencyWindow = 3 * domain.Day

// ImpactCalculator estimates how a drag shifts neighbouring tasks.
//
// There is no dependency graph: a task is treated as dependent when it starts
// within AdjacencyWindow after the dragged task originally ended. This can
// both over- and under-trigger.
type ImpactCalculator struct {
	estimator *Estimator
}

// NewImpactCalculator creates a new ImpactCalculator.
func NewImpactCalculator(estimator *Estimator) *ImpactCalculator {
	return &ImpactCalculator{
		estimator: estimator,
	}
}

// CalculateImpact returns the impact on the dragged task first, followed by its dependents.
func (c *ImpactCalculator) CalculateImpact(dragged *domain.Task, proposedStart time.Time, allTasks []*domain.Task) []domain.TaskImpact {
	original := c.estimator.EstimateDates(dragged)
	newEnd := proposedStart.Add(original.Duration())

	impacts := []domain.TaskImpact{{
		TaskID:         dragged.ID,
		OriginalDate:   original.Start,
		ProposedDate:   proposedStart,
		Classification: Classify(original.Start, proposedStart),
	}}

	for _, other := range allTasks {
		if other.ID == dragged.ID {
			continue
		}
		start := c.estimator.EstimateDates(other).Start
		if !isAdjacent(original.End, start) {
			continue
		}

		impact := domain.TaskImpact{
			TaskID:         other.ID,
			OriginalDate:   start,
			ProposedDate:   start,
			Classification: domain.ImpactUnchanged,
		}
		pushed := newEnd.Add(domain.Day)
		if start.Sub(newEnd) < AdjacencyWindow && pushed.After(start) {
			impact.ProposedDate = pushed
			impact.Classification = domain.ImpactDelayed
		}
		impacts = append(impacts, impact)
	}

	return impacts
}

// Classify compares a proposed start with the original one.
func Classify(original, proposed time.Time) domain.ImpactClassification {
	switch {
	case proposed.After(original):
		return domain.ImpactDelayed
	case proposed.Before(original):
		return domain.ImpactAccelerated
	default:
		return domain.ImpactUnchanged
	}
}

func isAdjacent(end, start time.Time) bool {
	return !start.Before(end) && start.Sub(end) <= AdjacencyWindow
}
