package schedule

import (
	"time"

	"github.com/mtlprog/sitetimeline/internal/domain"
)

// DefaultDropZoneStepDays is the sampling interval used when none is given.
const DefaultDropZoneStepDays = 7

// ComputeDropZones samples the whole range every stepDays and records how a
// move of task to the start of each interval would validate.
//
// This is an approximation: the validity of an interval is the validity at its
// first day only, so a zone can be shown as valid while a later day inside it
// is not (a weekend, a month boundary, a prerequisite finishing mid-interval).
// Use ValidateMove for the exact answer at a given date.
func (v *Validator) ComputeDropZones(task *domain.Task, r domain.TimelineRange, allTasks []*domain.Task, stepDays int) []domain.DropZone {
	if stepDays <= 0 {
		stepDays = DefaultDropZoneStepDays
	}
	if !r.End.After(r.Start) {
		return nil
	}

	var zones []domain.DropZone
	for start := r.Start; start.Before(r.End); start = domain.AddDays(start, stepDays) {
		end := domain.AddDays(start, stepDays)
		if end.After(r.End) {
			end = r.End
		}
		zones = append(zones, domain.DropZone{
			IntervalStart: start,
			IntervalEnd:   end,
			Validity:      AggregateValidity(v.ValidateMove(task, start, allTasks)),
		})
	}
	return zones
}

// ZoneAt returns the drop zone containing date t.
func ZoneAt(zones []domain.DropZone, t time.Time) (domain.DropZone, bool) {
	for _, zone := range zones {
		if !t.Before(zone.IntervalStart) && t.Before(zone.IntervalEnd) {
			return zone, true
		}
	}
	return domain.DropZone{}, false
}
