package exports_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/sifterhq/sifter/internal/exports"
	"github.com/sifterhq/sifter/internal/records"
)

func TestRegistry(t *testing.T) {
	registry := exports.NewRegistry()

	if _, ok := registry.Get(records.DashboardInventory); ok {
		t.Error("empty registry should have no sinks")
	}

	sink := &exports.LogSink{
		Dashboard: records.DashboardInventory,
		Logger:    slog.New(slog.DiscardHandler),
	}
	registry.Register(records.DashboardInventory, sink)

	got, ok := registry.Get(records.DashboardInventory)
	if !ok {
		t.Fatal("registered sink not found")
	}
	if got != exports.Sink(sink) {
		t.Error("got a different sink than registered")
	}

	replacement := &exports.LogSink{
		Dashboard: records.DashboardInventory,
		Logger:    slog.New(slog.DiscardHandler),
	}
	registry.Register(records.DashboardInventory, replacement)
	if got, _ := registry.Get(records.DashboardInventory); got != exports.Sink(replacement) {
		t.Error("re-registering should replace the prior sink")
	}
}

func TestLogSinkCountsBatchAsCreated(t *testing.T) {
	sink := &exports.LogSink{
		Dashboard: records.DashboardOrders,
		Logger:    slog.New(slog.DiscardHandler),
	}

	batch := make([]records.ProcessedRecord, 3)
	result, err := sink.Write(context.Background(), batch)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if result.Created != 3 {
		t.Errorf("got %d created, want 3", result.Created)
	}
	if result.Updated != 0 || result.Failed != 0 {
		t.Errorf("got updated=%d failed=%d, want zero", result.Updated, result.Failed)
	}
}

func TestParseSyncStatus(t *testing.T) {
	tests := []struct {
		input   string
		want    exports.SyncStatus
		wantErr bool
	}{
		{"pending", exports.SyncPending, false},
		{"running", exports.SyncRunning, false},
		{"completed", exports.SyncCompleted, false},
		{"failed", exports.SyncFailed, false},
		{"queued", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := exports.ParseSyncStatus(tt.input)
			if tt.wantErr {
				if !errors.Is(err, exports.ErrInvalidSyncStatus) {
					t.Errorf("got %v, want ErrInvalidSyncStatus", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestExportConfigDefaults(t *testing.T) {
	var cfg exports.Config
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if cfg.BatchSize != 100 {
		t.Errorf("got batch size %d, want 100", cfg.BatchSize)
	}
	if cfg.MaxConcurrentBatches != 4 {
		t.Errorf("got concurrency %d, want 4", cfg.MaxConcurrentBatches)
	}

	bad := exports.Config{BatchSize: -5}
	if err := bad.Finalize(nil); err == nil {
		t.Error("negative batch size should fail validation")
	}
}
