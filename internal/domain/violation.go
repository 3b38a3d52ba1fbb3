package domain

import "time"

// ViolationKind identifies the scheduling rule that produced a violation.
type ViolationKind string

const (
	ViolationPhaseDependency    ViolationKind = "phase_dependency"
	ViolationWeatherConstraint  ViolationKind = "weather_constraint"
	ViolationInspectionRequired ViolationKind = "inspection_required"
	ViolationWeekendStart       ViolationKind = "weekend_start"
)

// Severity grades how strongly a violation affects a move.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Violation describes a broken or questionable scheduling rule.
type Violation struct {
	Kind            ViolationKind
	Severity        Severity
	Message         string
	AffectedTaskIDs []string
	SuggestedDate   *time.Time
}

// Validity is the aggregated outcome of all violations for a move.
type Validity string

const (
	ValidityValid   Validity = "valid"
	ValidityWarning Validity = "warning"
	ValidityInvalid Validity = "invalid"
)

// ImpactClassification describes how a move shifts a task.
type ImpactClassification string

const (
	ImpactDelayed     ImpactClassification = "delayed"
	ImpactAccelerated ImpactClassification = "accelerated"
	ImpactUnchanged   ImpactClassification = "unchanged"
)

// TaskImpact describes the effect of a drag on one task.
type TaskImpact struct {
	TaskID         string
	OriginalDate   time.Time
	ProposedDate   time.Time
	Classification ImpactClassification
}

// DropZone is the coarse validity of a timeline interval for the dragged task.
type DropZone struct {
	IntervalStart time.Time
	IntervalEnd   time.Time
	Validity      Validity
}

// DragSession is a snapshot of an in-flight drag gesture.
type DragSession struct {
	DraggedTaskID   string
	PointerX        float64
	OriginalSpan    DateSpan
	CandidateDate   time.Time
	Validity        Validity
	Violations      []Violation
	Impacts         []TaskImpact
	AffectedTaskIDs []string
	DropZones       []DropZone
}
