package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"vigil/internal/listsync"
	"vigil/pkg/platform/httputil"
	"vigil/pkg/requestcontext"
)

// Service defines the interface for sync operations.
type Service interface {
	SyncList(ctx context.Context, listID string) (listsync.Result, error)
	SyncAll(ctx context.Context) listsync.Report
	Lists() []listsync.ListConfig
}

// Handler wires sync endpoints to the sync service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a sync handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts sync endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/sync", h.HandleSyncAll)
	r.Post("/sync/{listID}", h.HandleSyncList)
	r.Get("/sync/lists", h.HandleLists)
}

// HandleSyncList handles POST /sync/{listID} requests.
func (h *Handler) HandleSyncList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	listID := chi.URLParam(r, "listID")
	start := time.Now()

	result, err := h.service.SyncList(ctx, listID)
	if err != nil {
		h.logger.ErrorContext(ctx, "list sync request failed",
			"request_id", requestID,
			"list", listID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "list sync request completed",
		"request_id", requestID,
		"list", listID,
		"status", result.Status,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, statusForResult(result), FromResult(result))
}

// HandleSyncAll handles POST /sync requests.
func (h *Handler) HandleSyncAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	report := h.service.SyncAll(ctx)

	h.logger.InfoContext(ctx, "full sync completed",
		"request_id", requestID,
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"skipped", report.Skipped,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromReport(report))
}

// HandleLists handles GET /sync/lists requests.
func (h *Handler) HandleLists(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, FromLists(h.service.Lists()))
}

// statusForResult maps a per-list outcome to an HTTP status. A failed sync is
// a 502: the failure is on the regulator side or in transit, not the caller.
func statusForResult(result listsync.Result) int {
	if result.Status == listsync.StatusFailed {
		return http.StatusBadGateway
	}
	return http.StatusOK
}
