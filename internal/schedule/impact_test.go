package schedule_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlprog/sitetimeline/internal/domain"
	"github.com/mtlprog/sitetimeline/internal/schedule"
)

func impactFixture() (dragged, dependent, far *domain.Task, all []*domain.Task) {
	dragged = newTask("a", "framing")
	dragged.StartDate = datePtr(2024, 6, 1)
	dragged.DueDate = datePtr(2024, 6, 10)

	dependent = newTask("d", "roofing")
	dependent.StartDate = datePtr(2024, 6, 12)
	dependent.DueDate = datePtr(2024, 6, 20)

	far = newTask("f", "paint")
	far.StartDate = datePtr(2024, 6, 20)
	far.DueDate = datePtr(2024, 6, 25)

	return dragged, dependent, far, []*domain.Task{dragged, dependent, far}
}

func TestCalculateImpact_DelayPushesDependent(t *testing.T) {
	t.Parallel()

	dragged, _, _, all := impactFixture()
	impacts := schedule.NewImpactCalculator(newEstimator()).CalculateImpact(dragged, date(2024, 6, 5), all)

	require.Len(t, impacts, 2)
	assert.Equal(t, domain.TaskImpact{
		TaskID:         "a",
		OriginalDate:   date(2024, 6, 1),
		ProposedDate:   date(2024, 6, 5),
		Classification: domain.ImpactDelayed,
	}, impacts[0])
	assert.Equal(t, domain.TaskImpact{
		TaskID:         "d",
		OriginalDate:   date(2024, 6, 12),
		ProposedDate:   date(2024, 6, 15),
		Classification: domain.ImpactDelayed,
	}, impacts[1])
}

func TestCalculateImpact_AccelerationLeavesDependent(t *testing.T) {
	t.Parallel()

	dragged, _, _, all := impactFixture()
	impacts := schedule.NewImpactCalculator(newEstimator()).CalculateImpact(dragged, date(2024, 5, 28), all)

	require.Len(t, impacts, 2)
	assert.Equal(t, domain.ImpactAccelerated, impacts[0].Classification)
	assert.Equal(t, "d", impacts[1].TaskID)
	assert.Equal(t, domain.ImpactUnchanged, impacts[1].Classification)
	assert.Equal(t, impacts[1].OriginalDate, impacts[1].ProposedDate)
}

func TestCalculateImpact_NoMove(t *testing.T) {
	t.Parallel()

	dragged, _, _, all := impactFixture()
	impacts := schedule.NewImpactCalculator(newEstimator()).CalculateImpact(dragged, date(2024, 6, 1), all)

	require.Len(t, impacts, 2)
	for _, impact := range impacts {
		assert.Equal(t, domain.ImpactUnchanged, impact.Classification, impact.TaskID)
	}
}

func TestCalculateImpact_SmallDelayWithinGap(t *testing.T) {
	t.Parallel()

	// The dependent starts two days after the dragged task ends; a one day
	// delay still leaves a free day, so nothing is pushed.
	dragged, _, _, all := impactFixture()
	impacts := schedule.NewImpactCalculator(newEstimator()).CalculateImpact(dragged, date(2024, 6, 2), all)

	require.Len(t, impacts, 2)
	assert.Equal(t, domain.ImpactDelayed, impacts[0].Classification)
	assert.Equal(t, domain.ImpactUnchanged, impacts[1].Classification)
}

func TestCalculateImpact_AlwaysIncludesDragged(t *testing.T) {
	t.Parallel()

	lone := newTask("solo", "")
	impacts := schedule.NewImpactCalculator(newEstimator()).CalculateImpact(lone, date(2024, 5, 1), nil)

	require.Len(t, impacts, 1)
	assert.Equal(t, "solo", impacts[0].TaskID)
	assert.Equal(t, domain.ImpactUnchanged, impacts[0].Classification)
}

func TestClassify(t *testing.T) {
	t.Parallel()

	assert.Equal(t, domain.ImpactDelayed, schedule.Classify(date(2024, 1, 1), date(2024, 1, 2)))
	assert.Equal(t, domain.ImpactAccelerated, schedule.Classify(date(2024, 1, 2), date(2024, 1, 1)))
	assert.Equal(t, domain.ImpactUnchanged, schedule.Classify(date(2024, 1, 1), date(2024, 1, 1)))
}
