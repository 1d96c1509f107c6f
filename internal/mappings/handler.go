package mappings

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/sifterhq/sifter/pkg/handlers"
	"github.com/sifterhq/sifter/pkg/routes"
)

// Handler provides HTTP endpoints for mapping operations.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "mappings"),
	}
}

// Routes returns the route group definition for mapping endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/mappings",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/{fileId}/analyze", Handler: h.Analyze},
			{Method: "POST", Pattern: "/{fileId}/confirm", Handler: h.Confirm},
			{Method: "GET", Pattern: "/{fileId}/detections", Handler: h.Detections},
			{Method: "GET", Pattern: "/{fileId}/confirmed", Handler: h.Confirmed},
		},
	}
}

// Analyze runs the analysis stage for a file and returns the entity
// classification plus mapping suggestions.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	fileID, err := uuid.Parse(r.PathValue("fileId"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	result, err := h.sys.Analyze(r.Context(), fileID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Confirm records the caller's mapping decisions for a file.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	fileID, err := uuid.Parse(r.PathValue("fileId"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	var cmd ConfirmCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.sys.Confirm(r.Context(), fileID, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Detections returns the file's current column detections in column order.
func (h *Handler) Detections(w http.ResponseWriter, r *http.Request) {
	fileID, err := uuid.Parse(r.PathValue("fileId"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	detections, err := h.sys.Detections(r.Context(), fileID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, detections)
}

// Confirmed returns the file's human-confirmed mappings.
func (h *Handler) Confirmed(w http.ResponseWriter, r *http.Request) {
	fileID, err := uuid.Parse(r.PathValue("fileId"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	confirmed, err := h.sys.Confirmed(r.Context(), fileID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, confirmed)
}
