package config

import "time"

const (
	// DefaultPort is the default HTTP server port.
	DefaultPort = "8080"

	// DefaultDatabaseURL is empty; must be provided via flag or environment.
	DefaultDatabaseURL = ""

	// DefaultSaveTimeout bounds a single batch save of task dates.
	DefaultSaveTimeout = 10 * time.Second

	// DefaultSaveAttempts is how many times a failed batch save is tried in total.
	DefaultSaveAttempts = 3

	// DefaultSaveBackoff is the first retry delay; it doubles on each attempt.
	DefaultSaveBackoff = 200 * time.Millisecond

	// DefaultDropZoneStepDays is the sampling interval for drop zones.
	DefaultDropZoneStepDays = 7

	// DefaultVirtualizeThreshold is the row count above which only the visible window is rendered.
	DefaultVirtualizeThreshold = 50

	// DefaultBufferRows is the number of extra rows rendered above and below the viewport.
	DefaultBufferRows = 5

	// DefaultRowHeightPx is the height of a single timeline row.
	DefaultRowHeightPx = 40

	// DefaultViewportWidthPx is used until a client reports its own width.
	DefaultViewportWidthPx = 1200

	// DefaultViewMode is the initial zoom level of a timeline.
	DefaultViewMode = "weeks"
)
