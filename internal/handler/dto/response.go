package dto

import (
	"time"

	"github.com/mtlprog/sitetimeline/internal/domain"
	"github.com/mtlprog/sitetimeline/internal/drag"
	"github.com/mtlprog/sitetimeline/internal/repository"
	"github.com/mtlprog/sitetimeline/internal/service"
)

// SpanResponse is a start/end date pair.
type SpanResponse struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// RangeResponse is the date range covered by the timeline.
type RangeResponse struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	ViewMode string    `json:"view_mode"`
}

// TaskBarResponse is one task row of the timeline.
type TaskBarResponse struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	Category       string       `json:"category"`
	Phase          string       `json:"phase"`
	Status         string       `json:"status"`
	Priority       string       `json:"priority"`
	Type           string       `json:"type"`
	EstimatedHours *float64     `json:"estimated_hours"`
	StartDate      *time.Time   `json:"start_date"`
	DueDate        *time.Time   `json:"due_date"`
	Span           SpanResponse `json:"span"`
	LeftPx         float64      `json:"left_px"`
	WidthPx        float64      `json:"width_px"`
	Overridden     bool         `json:"overridden"`
}

// WindowResponse is the range of rows to render.
type WindowResponse struct {
	StartIndex int `json:"start_index"`
	EndIndex   int `json:"end_index"`
}

// TimelineResponse represents the response for GET /projects/:id/timeline.
type TimelineResponse struct {
	ProjectID        string               `json:"project_id"`
	Range            RangeResponse        `json:"range"`
	ViewportWidthPx  float64              `json:"viewport_width_px"`
	TotalRows        int                  `json:"total_rows"`
	Window           WindowResponse       `json:"window"`
	Virtualized      bool                 `json:"virtualized"`
	Tasks            []TaskBarResponse    `json:"tasks"`
	PendingOverrides int                  `json:"pending_overrides"`
	LastSaveError    *string              `json:"last_save_error"`
	Drag             *DragSessionResponse `json:"drag"`
}

// ViolationResponse is a single rule violation.
type ViolationResponse struct {
	Kind            string     `json:"kind"`
	Severity        string     `json:"severity"`
	Message         string     `json:"message"`
	AffectedTaskIDs []string   `json:"affected_task_ids"`
	SuggestedDate   *time.Time `json:"suggested_date"`
}

// ImpactResponse describes how a task moves as a result of a drag.
type ImpactResponse struct {
	TaskID         string    `json:"task_id"`
	OriginalDate   time.Time `json:"original_date"`
	ProposedDate   time.Time `json:"proposed_date"`
	Classification string    `json:"classification"`
}

// DropZoneResponse is the validity of one sampled interval.
type DropZoneResponse struct {
	IntervalStart time.Time `json:"interval_start"`
	IntervalEnd   time.Time `json:"interval_end"`
	Validity      string    `json:"validity"`
}

// DragSessionResponse is a snapshot of the active drag.
type DragSessionResponse struct {
	DraggedTaskID   string              `json:"dragged_task_id"`
	PointerX        float64             `json:"pointer_x"`
	OriginalSpan    SpanResponse        `json:"original_span"`
	CandidateDate   time.Time           `json:"candidate_date"`
	Validity        string              `json:"validity"`
	Violations      []ViolationResponse `json:"violations"`
	Impacts         []ImpactResponse    `json:"impacts"`
	AffectedTaskIDs []string            `json:"affected_task_ids"`
	DropZones       []DropZoneResponse  `json:"drop_zones,omitempty"`
}

// DateUpdateResponse is one saved task date change.
type DateUpdateResponse struct {
	TaskID string    `json:"task_id"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

// DropResponse represents the response for POST /projects/:id/drag/drop.
// A committed drop is saved in the background; check last_save_error on the timeline.
type DropResponse struct {
	Outcome string               `json:"outcome"`
	Session DragSessionResponse  `json:"session"`
	Updates []DateUpdateResponse `json:"updates"`
}

// OverridesResponse represents the response for GET /projects/:id/overrides.
type OverridesResponse struct {
	Overrides map[string]SpanOverride `json:"overrides"`
}

// SpanOverride is a pending local date change.
type SpanOverride struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

// ResetOverridesResponse represents the response for DELETE /projects/:id/overrides.
type ResetOverridesResponse struct {
	Dropped int `json:"dropped"`
}

// PreviewResponse represents the response for POST /projects/:id/validate.
type PreviewResponse struct {
	TaskID          string              `json:"task_id"`
	ProposedSpan    SpanResponse        `json:"proposed_span"`
	Validity        string              `json:"validity"`
	Violations      []ViolationResponse `json:"violations"`
	Impacts         []ImpactResponse    `json:"impacts"`
	AffectedTaskIDs []string            `json:"affected_task_ids"`
}

// TaskReportResponse is the validation of one task where it currently sits.
type TaskReportResponse struct {
	TaskID     string              `json:"task_id"`
	Title      string              `json:"title"`
	Span       SpanResponse        `json:"span"`
	Validity   string              `json:"validity"`
	Violations []ViolationResponse `json:"violations"`
}

// ScheduleCheckResponse represents the response for GET /projects/:id/check.
type ScheduleCheckResponse struct {
	ProjectID string               `json:"project_id"`
	Tasks     []TaskReportResponse `json:"tasks"`
}

// ProjectStatsResponse represents the response for GET /projects/:id/stats.
type ProjectStatsResponse struct {
	ProjectID     string         `json:"project_id"`
	TotalTasks    int            `json:"total_tasks"`
	Unscheduled   int            `json:"unscheduled"`
	TasksByStatus map[string]int `json:"tasks_by_status"`
	TasksByPhase  map[string]int `json:"tasks_by_phase"`
	EarliestStart *time.Time     `json:"earliest_start"`
	LatestDue     *time.Time     `json:"latest_due"`
}

// ScheduleEventResponse is one entry of a task's date history.
type ScheduleEventResponse struct {
	ID        string     `json:"id"`
	OldStart  *time.Time `json:"old_start"`
	OldEnd    *time.Time `json:"old_end"`
	NewStart  time.Time  `json:"new_start"`
	NewEnd    time.Time  `json:"new_end"`
	CreatedAt time.Time  `json:"created_at"`
}

// TaskHistoryResponse represents the response for GET /tasks/:id/history.
type TaskHistoryResponse struct {
	TaskID string                  `json:"task_id"`
	Events []ScheduleEventResponse `json:"events"`
}

// ToSpan converts domain.DateSpan to SpanResponse.
func ToSpan(span domain.DateSpan) SpanResponse {
	return SpanResponse{Start: span.Start, End: span.End}
}

// ToTimelineResponse converts service.TimelineView to TimelineResponse.
func ToTimelineResponse(view *service.TimelineView) TimelineResponse {
	resp := TimelineResponse{
		ProjectID: view.ProjectID,
		Range: RangeResponse{
			Start:    view.Range.Start,
			End:      view.Range.End,
			ViewMode: string(view.Range.ViewMode),
		},
		ViewportWidthPx:  view.ViewportWidthPx,
		TotalRows:        view.TotalRows,
		Window:           WindowResponse{StartIndex: view.Window.StartIndex, EndIndex: view.Window.EndIndex},
		Virtualized:      view.Virtualized,
		Tasks:            make([]TaskBarResponse, len(view.Bars)),
		PendingOverrides: view.PendingOverrides,
	}
	for i, bar := range view.Bars {
		resp.Tasks[i] = TaskBarResponse{
			ID:             bar.Task.ID,
			Title:          bar.Task.Title,
			Category:       bar.Task.Category,
			Phase:          string(bar.Task.Phase),
			Status:         string(bar.Task.Status),
			Priority:       string(bar.Task.Priority),
			Type:           string(bar.Task.Type),
			EstimatedHours: bar.Task.EstimatedHours,
			StartDate:      bar.Task.StartDate,
			DueDate:        bar.Task.DueDate,
			Span:           ToSpan(bar.Span),
			LeftPx:         bar.LeftPx,
			WidthPx:        bar.WidthPx,
			Overridden:     bar.Overridden,
		}
	}
	if view.LastSaveError != nil {
		msg := view.LastSaveError.Error()
		resp.LastSaveError = &msg
	}
	if view.Drag != nil {
		session := ToDragSessionResponse(*view.Drag, false)
		resp.Drag = &session
	}
	return resp
}

// ToViolations converts domain violations to responses.
func ToViolations(violations []domain.Violation) []ViolationResponse {
	out := make([]ViolationResponse, len(violations))
	for i, v := range violations {
		out[i] = ViolationResponse{
			Kind:            string(v.Kind),
			Severity:        string(v.Severity),
			Message:         v.Message,
			AffectedTaskIDs: v.AffectedTaskIDs,
			SuggestedDate:   v.SuggestedDate,
		}
	}
	return out
}

// ToImpacts converts domain impacts to responses.
func ToImpacts(impacts []domain.TaskImpact) []ImpactResponse {
	out := make([]ImpactResponse, len(impacts))
	for i, impact := range impacts {
		out[i] = ImpactResponse{
			TaskID:         impact.TaskID,
			OriginalDate:   impact.OriginalDate,
			ProposedDate:   impact.ProposedDate,
			Classification: string(impact.Classification),
		}
	}
	return out
}

// ToDragSessionResponse converts domain.DragSession to DragSessionResponse.
// Drop zones are only included when withZones is set.
func ToDragSessionResponse(session domain.DragSession, withZones bool) DragSessionResponse {
	resp := DragSessionResponse{
		DraggedTaskID:   session.DraggedTaskID,
		PointerX:        session.PointerX,
		OriginalSpan:    ToSpan(session.OriginalSpan),
		CandidateDate:   session.CandidateDate,
		Validity:        string(session.Validity),
		Violations:      ToViolations(session.Violations),
		Impacts:         ToImpacts(session.Impacts),
		AffectedTaskIDs: nonNil(session.AffectedTaskIDs),
	}
	if withZones {
		resp.DropZones = make([]DropZoneResponse, len(session.DropZones))
		for i, zone := range session.DropZones {
			resp.DropZones[i] = DropZoneResponse{
				IntervalStart: zone.IntervalStart,
				IntervalEnd:   zone.IntervalEnd,
				Validity:      string(zone.Validity),
			}
		}
	}
	return resp
}

// ToDropResponse converts drag.DropResult to DropResponse.
func ToDropResponse(result drag.DropResult) DropResponse {
	updates := make([]DateUpdateResponse, len(result.Updates))
	for i, u := range result.Updates {
		updates[i] = DateUpdateResponse{TaskID: u.TaskID, Start: u.Start, End: u.End}
	}
	return DropResponse{
		Outcome: string(result.Outcome),
		Session: ToDragSessionResponse(result.Session, false),
		Updates: updates,
	}
}

// ToOverridesResponse converts the pending overrides to OverridesResponse.
func ToOverridesResponse(overrides map[string]domain.DateOverride) OverridesResponse {
	out := make(map[string]SpanOverride, len(overrides))
	for id, o := range overrides {
		out[id] = SpanOverride{Start: o.Start, End: o.End}
	}
	return OverridesResponse{Overrides: out}
}

// ToPreviewResponse converts service.MovePreview to PreviewResponse.
func ToPreviewResponse(preview *service.MovePreview) PreviewResponse {
	return PreviewResponse{
		TaskID:          preview.TaskID,
		ProposedSpan:    ToSpan(preview.ProposedSpan),
		Validity:        string(preview.Validity),
		Violations:      ToViolations(preview.Violations),
		Impacts:         ToImpacts(preview.Impacts),
		AffectedTaskIDs: nonNil(preview.AffectedTaskIDs),
	}
}

// ToScheduleCheckResponse converts schedule reports to ScheduleCheckResponse.
func ToScheduleCheckResponse(projectID string, reports []service.TaskReport) ScheduleCheckResponse {
	tasks := make([]TaskReportResponse, len(reports))
	for i, report := range reports {
		tasks[i] = TaskReportResponse{
			TaskID:     report.Task.ID,
			Title:      report.Task.Title,
			Span:       ToSpan(report.Span),
			Validity:   string(report.Validity),
			Violations: ToViolations(report.Violations),
		}
	}
	return ScheduleCheckResponse{ProjectID: projectID, Tasks: tasks}
}

// ToProjectStatsResponse converts repository.ProjectStatsResult to ProjectStatsResponse.
func ToProjectStatsResponse(projectID string, stats *repository.ProjectStatsResult) ProjectStatsResponse {
	return ProjectStatsResponse{
		ProjectID:     projectID,
		TotalTasks:    stats.TotalTasks,
		Unscheduled:   stats.Unscheduled,
		TasksByStatus: stats.TasksByStatus,
		TasksByPhase:  stats.TasksByPhase,
		EarliestStart: stats.EarliestStart,
		LatestDue:     stats.LatestDue,
	}
}

// ToTaskHistoryResponse converts schedule events to TaskHistoryResponse.
func ToTaskHistoryResponse(taskID string, events []*domain.ScheduleEvent) TaskHistoryResponse {
	out := make([]ScheduleEventResponse, len(events))
	for i, e := range events {
		out[i] = ScheduleEventResponse{
			ID:        e.ID,
			OldStart:  e.OldStart,
			OldEnd:    e.OldEnd,
			NewStart:  e.NewStart,
			NewEnd:    e.NewEnd,
			CreatedAt: e.CreatedAt,
		}
	}
	return TaskHistoryResponse{TaskID: taskID, Events: out}
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
