package domain

import "time"

// ViewMode is the zoom level of the timeline.
type ViewMode string

const (
	ViewModeDays   ViewMode = "days"
	ViewModeWeeks  ViewMode = "weeks"
	ViewModeMonths ViewMode = "months"
)

// IsValid checks if the view mode is one of the allowed values.
func (m ViewMode) IsValid() bool {
	switch m {
	case ViewModeDays, ViewModeWeeks, ViewModeMonths:
		return true
	default:
		return false
	}
}

// TimelineRange is the calendar window drawn across the viewport.
// Start is always before End.
type TimelineRange struct {
	Start    time.Time
	End      time.Time
	ViewMode ViewMode
}

// Days returns the length of the range in (fractional) days.
func (r TimelineRange) Days() float64 {
	return r.End.Sub(r.Start).Hours() / 24
}

// DateSpan holds the effective start and end of a task bar.
type DateSpan struct {
	Start time.Time
	End   time.Time
}

// Duration returns End - Start. Negative for malformed tasks.
func (s DateSpan) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// DateUpdate is a single task schedule change handed to persistence.
type DateUpdate struct {
	TaskID string
	Start  time.Time
	End    time.Time
}

// DateOverride is a pending local change not yet confirmed by persistence.
// Nil fields leave the stored value in place.
type DateOverride struct {
	Start *time.Time
	End   *time.Time
}

// Day is the length of one calendar day on the timeline.
const Day = 24 * time.Hour

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// AddDays shifts t by n calendar days, keeping the wall-clock time.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}
