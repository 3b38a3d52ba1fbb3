package timeline

import (
	"fmt"
	"time"

	"github.com/mtlprog/sitetimeline/internal/domain"
)

// Padding returns the buffer added on both sides of the tightest task bounds.
func Padding(mode domain.ViewMode) time.Duration {
	switch mode {
	case domain.ViewModeDays:
		return 7 * domain.Day
	case domain.ViewModeMonths:
		return 30 * domain.Day
	default:
		return 14 * domain.Day
	}
}

// NewRange computes the timeline window covering all spans plus view mode padding.
// With no spans the window is centred on today.
func NewRange(spans []domain.DateSpan, mode domain.ViewMode, now time.Time) (domain.TimelineRange, error) {
	if !mode.IsValid() {
		return domain.TimelineRange{}, fmt.Errorf("%w: %q", domain.ErrInvalidViewMode, mode)
	}

	lo := domain.StartOfDay(now)
	hi := lo
	for i, span := range spans {
		first, last := span.Start, span.End
		// Malformed spans still have to be visible.
		if last.Before(first) {
			first, last = last, first
		}
		if i == 0 || first.Before(lo) {
			lo = first
		}
		if i == 0 || last.After(hi) {
			hi = last
		}
	}

	pad := Padding(mode)
	return domain.TimelineRange{
		Start:    domain.StartOfDay(lo).Add(-pad),
		End:      domain.StartOfDay(hi).Add(domain.Day + pad),
		ViewMode: mode,
	}, nil
}
