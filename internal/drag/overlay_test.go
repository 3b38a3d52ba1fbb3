package drag_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlprog/sitetimeline/internal/domain"
	"github.com/mtlprog/sitetimeline/internal/drag"
)

func TestOverlay_SetMergesFields(t *testing.T) {
	t.Parallel()

	o := drag.NewOverlay()
	o.Set("a", domain.DateOverride{Start: datePtr(2024, 6, 3)})
	o.Set("a", domain.DateOverride{End: datePtr(2024, 6, 13)})

	got, ok := o.Get("a")
	require.True(t, ok)
	assert.Equal(t, date(2024, 6, 3), *got.Start)
	assert.Equal(t, date(2024, 6, 13), *got.End)
	assert.Equal(t, 1, o.Len())

	_, ok = o.Get("missing")
	assert.False(t, ok)
}

func TestOverlay_SetCopiesDates(t *testing.T) {
	t.Parallel()

	o := drag.NewOverlay()
	start := date(2024, 6, 3)
	o.Set("a", domain.DateOverride{Start: &start})
	start = date(2030, 1, 1)

	got, _ := o.Get("a")
	assert.Equal(t, date(2024, 6, 3), *got.Start)
}

func TestOverlay_Apply(t *testing.T) {
	t.Parallel()

	a := task("a", "framing")
	a.StartDate = datePtr(2024, 6, 3)
	a.DueDate = datePtr(2024, 6, 13)
	b := task("b", "roofing")

	o := drag.NewOverlay()
	o.Set("a", domain.DateOverride{Start: datePtr(2024, 6, 10)})

	out := o.Apply([]*domain.Task{a, b})
	require.Len(t, out, 2)

	assert.Equal(t, date(2024, 6, 10), *out[0].StartDate)
	assert.Equal(t, date(2024, 6, 13), *out[0].DueDate, "end keeps the stored value")
	assert.Equal(t, date(2024, 6, 3), *a.StartDate, "input must not be modified")
	assert.Same(t, b, out[1])
}

func TestOverlay_Reset(t *testing.T) {
	t.Parallel()

	o := drag.NewOverlay()
	o.Set("a", domain.DateOverride{Start: datePtr(2024, 6, 10)})
	o.Set("b", domain.DateOverride{Start: datePtr(2024, 6, 21)})

	snapshot := o.Snapshot()
	assert.Equal(t, 2, o.Reset())
	assert.Equal(t, 0, o.Len())
	assert.Len(t, snapshot, 2, "snapshot is independent of the overlay")
	assert.Equal(t, 0, o.Reset())
}
