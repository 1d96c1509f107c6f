package exports

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sifterhq/sifter/internal/records"
)

// Registry maps dashboards to their registered sinks. Registration
// happens at startup; lookups are concurrent-safe.
type Registry struct {
	mu    sync.RWMutex
	sinks map[records.Dashboard]Sink
}

// NewRegistry creates an empty sink registry.
func NewRegistry() *Registry {
	return &Registry{sinks: make(map[records.Dashboard]Sink)}
}

// Register binds a sink to a dashboard, replacing any prior binding.
func (r *Registry) Register(dashboard records.Dashboard, sink Sink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sinks[dashboard] = sink
}

// Get returns the sink bound to a dashboard.
func (r *Registry) Get(dashboard records.Dashboard) (Sink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sink, ok := r.sinks[dashboard]
	return sink, ok
}

// LogSink acknowledges every record it receives, logging batch sizes.
// It stands in for destinations that have not been wired to a real
// downstream consumer yet.
type LogSink struct {
	Dashboard records.Dashboard
	Logger    *slog.Logger
}

// Write counts the whole batch as created.
func (s *LogSink) Write(ctx context.Context, batch []records.ProcessedRecord) (WriteResult, error) {
	s.Logger.InfoContext(
		ctx, "sink received batch",
		"dashboard", s.Dashboard,
		"records", len(batch),
	)
	return WriteResult{Created: len(batch)}, nil
}
