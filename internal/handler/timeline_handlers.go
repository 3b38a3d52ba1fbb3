package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/mtlprog/sitetimeline/internal/config"
	"github.com/mtlprog/sitetimeline/internal/domain"
	"github.com/mtlprog/sitetimeline/internal/handler/dto"
	"github.com/mtlprog/sitetimeline/internal/service"
)

// handleGetTimeline returns the drawable timeline of a project.
func (h *Handler) handleGetTimeline(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	projectID, ok := extractID(w, r, "project")
	if !ok {
		return
	}

	q, err := parseTimelineQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	view, err := h.timelines.Timeline(ctx, projectID, service.ViewportQuery{
		ScrollTopPx:      q.ScrollTopPx,
		ViewportHeightPx: q.ViewportHeightPx,
		RowHeightPx:      q.RowHeightPx,
		BufferRows:       q.BufferRows,
		Threshold:        q.Threshold,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToTimelineResponse(view))
}

// parseTimelineQuery reads the viewport query parameters, applying defaults.
func parseTimelineQuery(r *http.Request) (dto.TimelineQuery, error) {
	query := r.URL.Query()
	q := dto.TimelineQuery{
		RowHeightPx: config.DefaultRowHeightPx,
		BufferRows:  config.DefaultBufferRows,
		Threshold:   config.DefaultVirtualizeThreshold,
	}

	floats := []struct {
		name string
		dst  *float64
	}{
		{"scroll_top", &q.ScrollTopPx},
		{"viewport_height", &q.ViewportHeightPx},
		{"row_height", &q.RowHeightPx},
	}
	for _, f := range floats {
		raw := query.Get(f.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			return q, &queryError{name: f.name, reason: "must be a non-negative number"}
		}
		*f.dst = v
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"buffer", &q.BufferRows},
		{"threshold", &q.Threshold},
	}
	for _, f := range ints {
		raw := query.Get(f.name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return q, &queryError{name: f.name, reason: "must be a non-negative integer"}
		}
		*f.dst = v
	}

	return q, nil
}

type queryError struct {
	name   string
	reason string
}

func (e *queryError) Error() string {
	return e.name + " " + e.reason
}

// handleSetViewport changes the viewport width and zoom level.
func (h *Handler) handleSetViewport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	projectID, ok := extractID(w, r, "project")
	if !ok {
		return
	}

	var req dto.ViewportRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.timelines.SetViewport(ctx, projectID, req.WidthPx, domain.ViewMode(req.ViewMode)); err != nil {
		respondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleRefresh reloads the project tasks from storage.
func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	projectID, ok := extractID(w, r, "project")
	if !ok {
		return
	}

	if _, err := h.timelines.Refresh(ctx, projectID); err != nil {
		respondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleStartDrag begins dragging a task.
func (h *Handler) handleStartDrag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	projectID, ok := extractID(w, r, "project")
	if !ok {
		return
	}

	var req dto.StartDragRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if _, err := uuid.Parse(req.TaskID); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "task_id must be a valid UUID")
		return
	}

	session, err := h.timelines.StartDrag(ctx, projectID, req.TaskID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToDragSessionResponse(session, true))
}

// parsePointer decodes a pointer request. Returns false if invalid (error already sent to client).
func parsePointer(w http.ResponseWriter, r *http.Request) (float64, bool) {
	var req dto.PointerRequest
	if !decodeJSON(w, r, &req) {
		return 0, false
	}
	if req.PointerX == nil {
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "pointer_x is required")
		return 0, false
	}
	return *req.PointerX, true
}

// handleMoveDrag re-evaluates the active drag at a new pointer position.
func (h *Handler) handleMoveDrag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	projectID, ok := extractID(w, r, "project")
	if !ok {
		return
	}
	pointerX, ok := parsePointer(w, r)
	if !ok {
		return
	}

	session, err := h.timelines.MoveDrag(ctx, projectID, pointerX)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToDragSessionResponse(session, false))
}

// handleDropDrag finishes the active drag. Committed changes are saved in the background.
func (h *Handler) handleDropDrag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	projectID, ok := extractID(w, r, "project")
	if !ok {
		return
	}
	pointerX, ok := parsePointer(w, r)
	if !ok {
		return
	}

	result, err := h.timelines.DropDrag(ctx, projectID, pointerX)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToDropResponse(result))
}

// handleCancelDrag abandons the active drag.
func (h *Handler) handleCancelDrag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	projectID, ok := extractID(w, r, "project")
	if !ok {
		return
	}

	if err := h.timelines.CancelDrag(ctx, projectID); err != nil {
		respondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleGetOverrides lists the pending local overrides.
func (h *Handler) handleGetOverrides(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	projectID, ok := extractID(w, r, "project")
	if !ok {
		return
	}

	overrides, err := h.timelines.Overrides(ctx, projectID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToOverridesResponse(overrides))
}

// handleResetOverrides drops the pending local overrides.
func (h *Handler) handleResetOverrides(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	projectID, ok := extractID(w, r, "project")
	if !ok {
		return
	}

	n, err := h.timelines.ResetOverrides(ctx, projectID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ResetOverridesResponse{Dropped: n})
}

// handleValidateMove previews a move without starting a drag.
func (h *Handler) handleValidateMove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	projectID, ok := extractID(w, r, "project")
	if !ok {
		return
	}

	var req dto.ValidateMoveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if _, err := uuid.Parse(req.TaskID); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "task_id must be a valid UUID")
		return
	}
	start, err := time.Parse(time.DateOnly, req.StartDate)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "start_date must be YYYY-MM-DD")
		return
	}

	preview, err := h.timelines.PreviewMove(ctx, projectID, req.TaskID, start)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToPreviewResponse(preview))
}

// handleCheckSchedule validates every stored task where it currently sits.
func (h *Handler) handleCheckSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	projectID, ok := extractID(w, r, "project")
	if !ok {
		return
	}

	reports, err := h.timelines.CheckSchedule(ctx, projectID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToScheduleCheckResponse(projectID, reports))
}
