package handler

import (
	"net/http"

	"github.com/mtlprog/sitetimeline/internal/handler/dto"
)

// handleGetStats returns task counts and the stored date span of a project.
func (h *Handler) handleGetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	projectID, ok := extractID(w, r, "project")
	if !ok {
		return
	}

	stats, err := h.stats.GetProjectStats(ctx, projectID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch project stats")
		return
	}

	respondJSON(w, http.StatusOK, dto.ToProjectStatsResponse(projectID, stats))
}

// handleGetTaskHistory returns the persisted date changes of a task, oldest first.
func (h *Handler) handleGetTaskHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	taskID, ok := extractID(w, r, "task")
	if !ok {
		return
	}

	events, err := h.history.ListByTask(ctx, taskID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToTaskHistoryResponse(taskID, events))
}
