package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mtlprog/sitetimeline/internal/domain"
	"github.com/mtlprog/sitetimeline/internal/handler/dto"
	"github.com/mtlprog/sitetimeline/internal/middleware"
	"github.com/mtlprog/sitetimeline/internal/repository"
	"github.com/mtlprog/sitetimeline/internal/service"
)

// Pinger reports whether storage is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatsStore summarises stored project schedules.
type StatsStore interface {
	GetProjectStats(ctx context.Context, projectID string) (*repository.ProjectStatsResult, error)
}

// HistoryStore reads the date history of tasks.
type HistoryStore interface {
	ListByTask(ctx context.Context, taskID string) ([]*domain.ScheduleEvent, error)
}

// Dependencies are the collaborators of a Handler.
type Dependencies struct {
	Pinger    Pinger
	Timelines *service.TimelineService
	Stats     StatsStore
	History   HistoryStore
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	pinger    Pinger
	timelines *service.TimelineService
	stats     StatsStore
	history   HistoryStore
}

// New creates a Handler backed by PostgreSQL.
func New(pool *pgxpool.Pool, opts service.Options) *Handler {
	taskRepo := repository.NewTaskRepository(pool)
	projectRepo := repository.NewProjectRepository(pool)
	eventRepo := repository.NewScheduleEventRepository(pool)

	return NewWithDependencies(Dependencies{
		Pinger:    pool,
		Timelines: service.NewTimelineService(taskRepo, projectRepo, opts),
		Stats:     taskRepo,
		History:   eventRepo,
	})
}

// NewWithDependencies creates a Handler from explicit collaborators.
func NewWithDependencies(deps Dependencies) *Handler {
	return &Handler{
		pinger:    deps.Pinger,
		timelines: deps.Timelines,
		stats:     deps.Stats,
		history:   deps.History,
	}
}

// RegisterRoutes registers all HTTP routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /healthz", h.handleHealthz)

	// Timeline
	mux.HandleFunc("GET /api/v1/projects/{id}/timeline", h.handleGetTimeline)
	mux.HandleFunc("PUT /api/v1/projects/{id}/viewport", h.handleSetViewport)
	mux.HandleFunc("POST /api/v1/projects/{id}/refresh", h.handleRefresh)

	// Drag lifecycle
	mux.HandleFunc("POST /api/v1/projects/{id}/drag/start", h.handleStartDrag)
	mux.HandleFunc("POST /api/v1/projects/{id}/drag/move", h.handleMoveDrag)
	mux.HandleFunc("POST /api/v1/projects/{id}/drag/drop", h.handleDropDrag)
	mux.HandleFunc("POST /api/v1/projects/{id}/drag/cancel", h.handleCancelDrag)

	// Local overrides
	mux.HandleFunc("GET /api/v1/projects/{id}/overrides", h.handleGetOverrides)
	mux.HandleFunc("DELETE /api/v1/projects/{id}/overrides", h.handleResetOverrides)

	// Schedule checks
	mux.HandleFunc("POST /api/v1/projects/{id}/validate", h.handleValidateMove)
	mux.HandleFunc("GET /api/v1/projects/{id}/check", h.handleCheckSchedule)
	mux.HandleFunc("GET /api/v1/projects/{id}/stats", h.handleGetStats)
	mux.HandleFunc("GET /api/v1/tasks/{id}/history", h.handleGetTaskHistory)
}

// Routes returns the registered routes wrapped in request logging and panic recovery.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return middleware.RequestLogger(middleware.Recover(mux))
}

// Wait blocks until background saves have finished.
func (h *Handler) Wait() {
	h.timelines.Wait()
}

// handleHealthz returns 200 OK if the database is reachable.
func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.pinger.Ping(ctx); err != nil {
		slog.Error("database health check failed", "error", err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// respondError writes a standard error response.
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, dto.NewErrorResponse(code, message))
}

// respondDomainError maps err through dto.MapDomainError.
func respondDomainError(w http.ResponseWriter, err error) {
	status, code, message := dto.MapDomainError(err)
	respondError(w, status, code, message)
}

// extractID extracts and validates the {id} path parameter.
// Returns (id, true) if valid, ("", false) if invalid (error already sent to client).
func extractID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id := r.PathValue("id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", name+" id is required")
		return "", false
	}

	if _, err := uuid.Parse(id); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", name+"_id must be a valid UUID")
		return "", false
	}

	return id, true
}

// decodeJSON reads the request body into v.
// Returns false if the body is not valid JSON (error already sent to client).
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return false
	}
	return true
}
