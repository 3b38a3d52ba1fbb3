// Package timeline holds the pure geometry of the scheduler: pixel to date
// mapping, timeline range construction and virtual row windows.
package timeline

import (
	"math"
	"time"

	"github.com/mtlprog/sitetimeline/internal/domain"
)

// SnapInterval returns the smallest date step a drag resolves to in the given view mode.
// Unknown modes snap to whole days.
func SnapInterval(mode domain.ViewMode) time.Duration {
	switch mode {
	case domain.ViewModeDays:
		return 6 * time.Hour
	case domain.ViewModeMonths:
		return 7 * domain.Day
	default:
		return domain.Day
	}
}

// DateFromPixel converts a horizontal offset inside the viewport into a snapped date.
// Offsets outside [0, viewportWidthPx] are clamped to the range edges.
func DateFromPixel(pixelX, viewportWidthPx float64, r domain.TimelineRange) time.Time {
	total := r.End.Sub(r.Start)
	if viewportWidthPx <= 0 || total <= 0 {
		return r.Start
	}

	x := math.Min(math.Max(pixelX, 0), viewportWidthPx)
	fractionalDays := x / viewportWidthPx * r.Days()

	snap := SnapInterval(r.ViewMode)
	snapDays := snap.Hours() / 24
	steps := int64(math.Round(fractionalDays / snapDays))

	offset := time.Duration(steps) * snap
	if offset > total {
		offset = total
	}
	return r.Start.Add(offset)
}

// PixelFromDate converts a date into a horizontal offset inside the viewport.
// Dates outside the range map outside [0, viewportWidthPx].
func PixelFromDate(date time.Time, viewportWidthPx float64, r domain.TimelineRange) float64 {
	total := r.End.Sub(r.Start)
	if viewportWidthPx <= 0 || total <= 0 {
		return 0
	}
	return float64(date.Sub(r.Start)) / float64(total) * viewportWidthPx
}

// SnapWidthPx returns the width in pixels of one snap interval.
func SnapWidthPx(viewportWidthPx float64, r domain.TimelineRange) float64 {
	total := r.End.Sub(r.Start)
	if viewportWidthPx <= 0 || total <= 0 {
		return 0
	}
	return float64(SnapInterval(r.ViewMode)) / float64(total) * viewportWidthPx
}

// BarGeometry returns the left offset and width in pixels of a task bar.
// Malformed spans (end before start) produce a zero width.
func BarGeometry(span domain.DateSpan, viewportWidthPx float64, r domain.TimelineRange) (left, width float64) {
	left = PixelFromDate(span.Start, viewportWidthPx, r)
	right := PixelFromDate(span.End, viewportWidthPx, r)
	return left, math.Max(right-left, 0)
}
