package exports_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/sifterhq/sifter/internal/exports"
	"github.com/sifterhq/sifter/internal/records"
	"github.com/sifterhq/sifter/internal/uploads"
)

type fakeRecords struct {
	records.System

	mu      sync.Mutex
	pending []records.ProcessedRecord
	marked  []uuid.UUID
}

func (f *fakeRecords) PendingExport(
	ctx context.Context,
	companyID uuid.UUID,
	dashboard records.Dashboard,
	limit int,
) ([]records.ProcessedRecord, error) {
	return f.pending, nil
}

func (f *fakeRecords) MarkExported(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marked = append(f.marked, ids...)
	return nil
}

type fakeUploads struct {
	uploads.System

	mu          sync.Mutex
	transitions []uuid.UUID
}

func (f *fakeUploads) Transition(
	ctx context.Context,
	id uuid.UUID,
	target uploads.Status,
	from ...uploads.Status,
) (*uploads.FileUpload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transitions = append(f.transitions, id)
	return &uploads.FileUpload{ID: id, Status: target}, nil
}

type scriptedSink struct {
	result exports.WriteResult
}

func (s *scriptedSink) Write(ctx context.Context, batch []records.ProcessedRecord) (exports.WriteResult, error) {
	r := s.result
	if r.Created == 0 && r.Updated == 0 && r.Failed == 0 {
		r.Created = len(batch)
	}
	return r, nil
}

func pendingRecords(n int, fileID uuid.UUID) []records.ProcessedRecord {
	recs := make([]records.ProcessedRecord, n)
	for i := range recs {
		recs[i] = records.ProcessedRecord{ID: uuid.New(), FileUploadID: fileID}
	}
	return recs
}

func exportSystem(
	t *testing.T,
	recs *fakeRecords,
	ups *fakeUploads,
	sink exports.Sink,
) (exports.System, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	registry := exports.NewRegistry()
	registry.Register(records.DashboardInventory, sink)

	sys := exports.New(
		db, recs, ups, registry,
		slog.New(slog.DiscardHandler),
		exports.Config{BatchSize: 100, MaxConcurrentBatches: 2},
	)
	return sys, mock
}

func expectSyncRow(mock sqlmock.Sqlmock) {
	mock.ExpectExec("INSERT INTO dashboard_sync_status").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE dashboard_sync_status").
		WillReturnResult(sqlmock.NewResult(1, 1))
}

func TestExportMarksCleanBatches(t *testing.T) {
	fileID := uuid.New()
	recs := &fakeRecords{pending: pendingRecords(3, fileID)}
	ups := &fakeUploads{}
	sys, mock := exportSystem(t, recs, ups, &scriptedSink{})
	expectSyncRow(mock)

	result, err := sys.Export(context.Background(), uuid.New(), records.DashboardInventory, 0)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	if result.Exported != 3 || result.Failed != 0 {
		t.Errorf("got exported=%d failed=%d, want 3/0", result.Exported, result.Failed)
	}
	if result.Status != exports.SyncCompleted {
		t.Errorf("got status %s, want completed", result.Status)
	}
	if len(recs.marked) != 3 {
		t.Errorf("got %d records marked exported, want 3", len(recs.marked))
	}
	if len(ups.transitions) != 1 || ups.transitions[0] != fileID {
		t.Errorf("source file not transitioned: %v", ups.transitions)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("sync status writes: %v", err)
	}
}

func TestExportKeepsRejectedBatchPending(t *testing.T) {
	recs := &fakeRecords{pending: pendingRecords(2, uuid.New())}
	ups := &fakeUploads{}
	sink := &scriptedSink{result: exports.WriteResult{Created: 1, Failed: 1}}
	sys, mock := exportSystem(t, recs, ups, sink)
	expectSyncRow(mock)

	result, err := sys.Export(context.Background(), uuid.New(), records.DashboardInventory, 0)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	if len(recs.marked) != 0 {
		t.Errorf("rejected batch must stay pending, got %d marked", len(recs.marked))
	}
	if result.Exported != 0 {
		t.Errorf("got exported=%d, want 0", result.Exported)
	}
	if result.Failed != 1 {
		t.Errorf("got failed=%d, want 1", result.Failed)
	}
	if result.Status != exports.SyncFailed {
		t.Errorf("got status %s, want failed", result.Status)
	}
	if len(ups.transitions) != 0 {
		t.Errorf("no file should transition on a failed run, got %v", ups.transitions)
	}
}

func TestExportRerunWithNothingPending(t *testing.T) {
	recs := &fakeRecords{}
	ups := &fakeUploads{}
	sys, mock := exportSystem(t, recs, ups, &scriptedSink{})
	expectSyncRow(mock)

	result, err := sys.Export(context.Background(), uuid.New(), records.DashboardInventory, 0)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	if result.Exported != 0 || result.Failed != 0 {
		t.Errorf("got exported=%d failed=%d, want 0/0", result.Exported, result.Failed)
	}
	if result.Status != exports.SyncCompleted {
		t.Errorf("got status %s, want completed", result.Status)
	}
	if len(recs.marked) != 0 {
		t.Errorf("nothing to mark on an empty run, got %d", len(recs.marked))
	}
}

func TestExportUnregisteredDashboard(t *testing.T) {
	sys, _ := exportSystem(t, &fakeRecords{}, &fakeUploads{}, &scriptedSink{})

	_, err := sys.Export(context.Background(), uuid.New(), records.DashboardOrders, 0)
	if err == nil {
		t.Fatal("expected error for unregistered dashboard")
	}
}
