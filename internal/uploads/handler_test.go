package uploads_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/sifterhq/sifter/internal/uploads"
	"github.com/sifterhq/sifter/pkg/pagination"
)

type fakeSystem struct {
	uploads.System

	target uploads.Status
	from   []uploads.Status
}

func (f *fakeSystem) Transition(
	ctx context.Context,
	id uuid.UUID,
	target uploads.Status,
	from ...uploads.Status,
) (*uploads.FileUpload, error) {
	f.target = target
	f.from = from
	return &uploads.FileUpload{ID: id, Status: target}, nil
}

func TestRetryResetsToUploaded(t *testing.T) {
	sys := &fakeSystem{}
	h := uploads.NewHandler(sys, slog.New(slog.DiscardHandler), pagination.Config{}, 0)

	r := httptest.NewRequest("POST", "/uploads/"+uuid.NewString()+"/retry", nil)
	r.SetPathValue("id", uuid.NewString())
	w := httptest.NewRecorder()

	h.Retry(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", w.Code)
	}
	if sys.target != uploads.StatusUploaded {
		t.Errorf("retry should reset to uploaded, got %s", sys.target)
	}
	if len(sys.from) != 1 || sys.from[0] != uploads.StatusFailed {
		t.Errorf("retry should only leave failed, got %v", sys.from)
	}
}

func TestArchiveLeavesCompletedOrExported(t *testing.T) {
	sys := &fakeSystem{}
	h := uploads.NewHandler(sys, slog.New(slog.DiscardHandler), pagination.Config{}, 0)

	r := httptest.NewRequest("POST", "/uploads/"+uuid.NewString()+"/archive", nil)
	r.SetPathValue("id", uuid.NewString())
	w := httptest.NewRecorder()

	h.Archive(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", w.Code)
	}
	if sys.target != uploads.StatusArchived {
		t.Errorf("got target %s, want archived", sys.target)
	}
	if len(sys.from) != 2 {
		t.Errorf("archive should leave completed or exported, got %v", sys.from)
	}
}
