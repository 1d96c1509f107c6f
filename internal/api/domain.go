package api

import (
	"github.com/sifterhq/sifter/internal/classifier"
	"github.com/sifterhq/sifter/internal/exports"
	"github.com/sifterhq/sifter/internal/mappings"
	"github.com/sifterhq/sifter/internal/prompts"
	"github.com/sifterhq/sifter/internal/queue"
	"github.com/sifterhq/sifter/internal/records"
	"github.com/sifterhq/sifter/internal/router"
	"github.com/sifterhq/sifter/internal/uploads"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Queue    queue.System
	Uploads  uploads.System
	Prompts  prompts.System
	Router   router.System
	Mappings mappings.System
	Records  records.System
	Exports  exports.System
}

// NewDomain creates all domain systems from the API runtime. Systems are
// assembled in dependency order: queue and prompts stand alone, uploads
// mirrors status onto the queue, the classifier routes through the model
// router, and mappings, records, and exports build on the layers beneath
// them.
func NewDomain(runtime *Runtime) *Domain {
	db := runtime.Database.Connection()

	queueSystem := queue.New(db, runtime.Logger, runtime.Pagination)

	uploadsSystem := uploads.New(
		db,
		runtime.Storage,
		queueSystem,
		runtime.Logger,
		runtime.Pagination,
	)

	promptsSystem := prompts.New(db, runtime.Logger, runtime.Pagination)

	routerSystem := router.New(
		runtime.Config.Router,
		runtime.LLM,
		runtime.Logger,
	)

	classifierSystem := classifier.New(
		promptsSystem,
		routerSystem,
		runtime.Logger,
	)

	mappingsSystem := mappings.New(
		db,
		uploadsSystem,
		classifierSystem,
		runtime.Logger,
		runtime.Config.Mappings,
	)

	recordsSystem := records.New(
		db,
		uploadsSystem,
		mappingsSystem,
		runtime.Logger,
		runtime.Pagination,
	)

	registry := exports.NewRegistry()
	for _, dashboard := range records.Dashboards() {
		registry.Register(dashboard, &exports.LogSink{
			Dashboard: dashboard,
			Logger:    runtime.Logger,
		})
	}

	exportsSystem := exports.New(
		db,
		recordsSystem,
		uploadsSystem,
		registry,
		runtime.Logger,
		runtime.Config.Exports,
	)

	return &Domain{
		Queue:    queueSystem,
		Uploads:  uploadsSystem,
		Prompts:  promptsSystem,
		Router:   routerSystem,
		Mappings: mappingsSystem,
		Records:  recordsSystem,
		Exports:  exportsSystem,
	}
}
