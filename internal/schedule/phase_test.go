package schedule_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mtlprog/sitetimeline/internal/domain"
	"github.com/mtlprog/sitetimeline/internal/schedule"
)

func TestInferPhase(t *testing.T) {
	t.Parallel()

	tests := []struct {
		category string
		want     domain.Phase
	}{
		{"Foundation", domain.PhaseFoundation},
		{"wall framing", domain.PhaseFraming},
		{"Electrical", domain.PhaseElectrical},
		{"HVAC install", domain.PhaseHVAC},
		{"Exterior paint", domain.PhasePaint},
		{"final inspection", domain.PhaseUnknown},
		{"", domain.PhaseUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, schedule.InferPhase(tt.category))
		})
	}
}

func TestPhaseOf_PrefersExplicitPhase(t *testing.T) {
	t.Parallel()

	task := newTask("a", "foundation")
	task.Phase = domain.PhaseDrywall
	assert.Equal(t, domain.PhaseDrywall, schedule.PhaseOf(task))

	task.Phase = "bogus"
	assert.Equal(t, domain.PhaseFoundation, schedule.PhaseOf(task))
}

func TestPhase_Precedes(t *testing.T) {
	t.Parallel()

	assert.True(t, domain.PhaseFoundation.Precedes(domain.PhaseFraming))
	assert.True(t, domain.PhaseFraming.Precedes(domain.PhaseFinish))
	assert.False(t, domain.PhaseElectrical.Precedes(domain.PhasePlumbing))
	assert.False(t, domain.PhasePlumbing.Precedes(domain.PhaseElectrical))
	assert.False(t, domain.PhaseFinish.Precedes(domain.PhasePaint))
	assert.False(t, domain.PhaseUnknown.Precedes(domain.PhaseFraming))
}
