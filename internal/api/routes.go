package api

import (
	"net/http"

	"github.com/sifterhq/sifter/internal/config"
	"github.com/sifterhq/sifter/internal/router"
	"github.com/sifterhq/sifter/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) {
	routes.Register(
		mux,
		domain.Uploads.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
		domain.Mappings.Handler().Routes(),
		domain.Records.Handler().Routes(),
		domain.Exports.Handler().Routes(),
		domain.Queue.Handler().Routes(),
		domain.Prompts.Handler().Routes(),
		router.NewHandler(domain.Router, runtime.Logger).Routes(),
	)
}
