// Package schedule implements the construction scheduling rules used while a
// task bar is dragged: duration estimates, move validation, impact on
// neighbouring tasks and drop-zone sampling. Everything here is pure and
// synchronous so it can run on every pointer move.
package schedule

import (
	"strings"

	"github.com/mtlprog/sitetimeline/internal/domain"
)

// categoryPhases maps category keywords to phases, first match wins.
var categoryPhases = []struct {
	keyword string
	phase   domain.Phase
}{
	{"foundation", domain.PhaseFoundation},
	{"framing", domain.PhaseFraming},
	{"roofing", domain.PhaseRoofing},
	{"electrical", domain.PhaseElectrical},
	{"plumbing", domain.PhasePlumbing},
	{"hvac", domain.PhaseHVAC},
	{"insulation", domain.PhaseInsulation},
	{"drywall", domain.PhaseDrywall},
	{"flooring", domain.PhaseFlooring},
	{"paint", domain.PhasePaint},
	{"finish", domain.PhaseFinish},
}

var (
	weatherSensitive   = []string{"roofing", "siding", "foundation", "concrete", "paint"}
	rainySeasonWork    = []string{"foundation", "concrete"}
	inspectionRequired = []string{"foundation", "framing", "electrical", "plumbing", "final"}
)

// InferPhase classifies a free-text category by keyword.
// Returns domain.PhaseUnknown when nothing matches.
func InferPhase(category string) domain.Phase {
	c := strings.ToLower(category)
	for _, cp := range categoryPhases {
		if strings.Contains(c, cp.keyword) {
			return cp.phase
		}
	}
	return domain.PhaseUnknown
}

// PhaseOf returns the explicitly assigned phase of a task, falling back to
// category inference for tasks created before phases were assigned.
func PhaseOf(task *domain.Task) domain.Phase {
	if task.Phase.IsValid() {
		return task.Phase
	}
	return InferPhase(task.Category)
}

// hasTrait reports whether the task category or assigned phase matches one of the keywords.
func hasTrait(task *domain.Task, keywords []string) bool {
	c := strings.ToLower(task.Category)
	for _, k := range keywords {
		if strings.Contains(c, k) || string(task.Phase) == k {
			return true
		}
	}
	return false
}
