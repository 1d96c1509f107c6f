package exports

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/sifterhq/sifter/internal/records"
	"github.com/sifterhq/sifter/pkg/handlers"
	"github.com/sifterhq/sifter/pkg/routes"
)

// Handler provides HTTP endpoints for dashboard export operations.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "exports"),
	}
}

// Routes returns the route group definition for export endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/exports",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/{companyId}/{dashboard}", Handler: h.Export},
			{Method: "GET", Pattern: "/{companyId}/status", Handler: h.Status},
		},
	}
}

// Export runs a sync for one company and dashboard. An optional batch_size
// query parameter overrides the configured batch size.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	companyID, err := uuid.Parse(r.PathValue("companyId"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrEmptyCompany)
		return
	}

	dashboard, err := records.ParseDashboard(r.PathValue("dashboard"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	batchSize := 0
	if raw := r.URL.Query().Get("batch_size"); raw != "" {
		batchSize, err = strconv.Atoi(raw)
		if err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
			return
		}
	}

	result, err := h.sys.Export(r.Context(), companyID, dashboard, batchSize)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Status returns the per-dashboard sync state for a company.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	companyID, err := uuid.Parse(r.PathValue("companyId"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrEmptyCompany)
		return
	}

	statuses, err := h.sys.SyncStatuses(r.Context(), companyID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, statuses)
}
