package timeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mtlprog/sitetimeline/internal/timeline"
)

func TestVisibleRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		scroll   float64
		viewport float64
		row      float64
		total    int
		buffer   int
		want     timeline.Window
	}{
		{"scrolled into a long list", 1600, 600, 80, 200, 5, timeline.Window{StartIndex: 15, EndIndex: 33}},
		{"top of list", 0, 600, 80, 200, 5, timeline.Window{StartIndex: 0, EndIndex: 18}},
		{"bottom of list", 15800, 600, 80, 200, 5, timeline.Window{StartIndex: 192, EndIndex: 199}},
		{"scrolled past the end", 1e6, 600, 80, 200, 5, timeline.Window{StartIndex: 199, EndIndex: 199}},
		{"negative scroll", -300, 600, 80, 200, 5, timeline.Window{StartIndex: 0, EndIndex: 18}},
		{"no buffer", 800, 400, 40, 100, 0, timeline.Window{StartIndex: 20, EndIndex: 30}},
		{"single row", 0, 600, 80, 1, 5, timeline.Window{StartIndex: 0, EndIndex: 0}},
		{"zero row height", 100, 600, 0, 10, 5, timeline.Window{StartIndex: 0, EndIndex: 9}},
		{"empty list", 0, 600, 80, 0, 5, timeline.Window{StartIndex: 0, EndIndex: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := timeline.VisibleRange(tt.scroll, tt.viewport, tt.row, tt.total, tt.buffer)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVisibleRange_Bounds(t *testing.T) {
	t.Parallel()

	for total := 1; total <= 120; total += 7 {
		for scroll := 0.0; scroll <= 12000; scroll += 137 {
			for _, buffer := range []int{0, 3, 5, 40} {
				w := timeline.VisibleRange(scroll, 600, 37, total, buffer)
				assert.GreaterOrEqual(t, w.StartIndex, 0)
				assert.LessOrEqual(t, w.StartIndex, w.EndIndex)
				assert.LessOrEqual(t, w.EndIndex, total-1)
			}
		}
	}
}

func TestPlanWindow(t *testing.T) {
	t.Parallel()

	t.Run("short list renders whole", func(t *testing.T) {
		t.Parallel()

		w, virtual := timeline.PlanWindow(1600, 600, 80, 50, 5, 50)
		assert.False(t, virtual)
		assert.Equal(t, timeline.Window{StartIndex: 0, EndIndex: 49}, w)
		assert.Equal(t, 50, w.Len())
	})

	t.Run("long list is windowed", func(t *testing.T) {
		t.Parallel()

		w, virtual := timeline.PlanWindow(1600, 600, 80, 200, 5, 50)
		assert.True(t, virtual)
		assert.Equal(t, timeline.Window{StartIndex: 15, EndIndex: 33}, w)
		assert.True(t, w.Contains(20))
		assert.False(t, w.Contains(34))
	})

	t.Run("empty list", func(t *testing.T) {
		t.Parallel()

		w, virtual := timeline.PlanWindow(0, 600, 80, 0, 5, 50)
		assert.False(t, virtual)
		assert.Zero(t, w.Len())
	})
}
