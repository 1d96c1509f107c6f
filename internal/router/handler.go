package router

import (
	"log/slog"
	"net/http"

	"github.com/sifterhq/sifter/pkg/handlers"
	"github.com/sifterhq/sifter/pkg/routes"
)

// Handler exposes routing usage for observability.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "router"),
	}
}

// Routes returns the route group definition for router endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/router",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/usage", Handler: h.Usage},
		},
	}
}

// Usage returns the current day's spend against the configured budget.
func (h *Handler) Usage(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.sys.Usage())
}
