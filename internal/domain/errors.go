package domain

import "errors"

// Domain-specific errors for scheduling logic.
var (
	// Task errors
	ErrTaskNotFound    = errors.New("task not found")
	ErrTaskConflict    = errors.New("task was modified concurrently")
	ErrInvalidDates    = errors.New("invalid task dates")
	ErrEmptyDateUpdate = errors.New("no date updates")

	// Project errors
	ErrProjectNotFound = errors.New("project not found")

	// Drag errors
	ErrDragInProgress    = errors.New("drag already in progress")
	ErrNoActiveDrag      = errors.New("no active drag")
	ErrInvalidTransition = errors.New("invalid drag state transition")

	// Validation errors
	ErrInvalidViewMode = errors.New("invalid view mode")
	ErrInvalidViewport = errors.New("invalid viewport")
)
