package records

import (
	"context"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/sifterhq/sifter/internal/classifier"
	"github.com/sifterhq/sifter/internal/uploads"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func versionFixture() (*uploads.FileUpload, uploads.RawRow, StandardizedRow) {
	up := &uploads.FileUpload{ID: uuid.New(), CompanyID: uuid.New()}
	row := uploads.RawRow{
		FileUploadID: up.ID,
		RowNumber:    1,
		Values:       map[string]string{"Item Name": "Widget", "Qty": "5"},
	}
	srow := StandardizedRow{
		Data:    map[string]any{"item_name": "Widget", "quantity": int64(5)},
		Hash:    "f00d",
		Status:  ValidationPassed,
		Errors:  []string{},
		Quality: 100,
	}
	return up, row, srow
}

func TestInsertVersionedFirstVersion(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	up, row, srow := versionFixture()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, version_number FROM processed_records").
		WillReturnRows(sqlmock.NewRows([]string{"id", "version_number"}))
	mock.ExpectExec("INSERT INTO processed_records").
		WithArgs(
			sqlmock.AnyArg(), up.ID, up.CompanyID, row.RowNumber, srow.Hash,
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			1, nil,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	r := &repo{db: db, logger: discardLogger()}
	err = r.insertVersioned(
		context.Background(), tx, up, classifier.EntityInventory,
		row, srow, map[string]string{"Qty": "quantity"}, []Dashboard{DashboardInventory},
	)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("first version should insert with no parent: %v", err)
	}
}

func TestInsertVersionedSupersedesCurrent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	up, row, srow := versionFixture()
	currentID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, version_number FROM processed_records").
		WillReturnRows(
			sqlmock.NewRows([]string{"id", "version_number"}).
				AddRow(currentID.String(), 3),
		)
	mock.ExpectExec("UPDATE processed_records SET is_current = false, superseded_by").
		WithArgs(sqlmock.AnyArg(), currentID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO processed_records").
		WithArgs(
			sqlmock.AnyArg(), up.ID, up.CompanyID, row.RowNumber, srow.Hash,
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			4, currentID,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	r := &repo{db: db, logger: discardLogger()}
	err = r.insertVersioned(
		context.Background(), tx, up, classifier.EntityInventory,
		row, srow, map[string]string{"Qty": "quantity"}, []Dashboard{DashboardInventory},
	)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("new row must take version 4 and supersede the old current: %v", err)
	}
}

func TestPendingExportFiltersAlreadyExported(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`exported_at IS NULL`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	r := &repo{db: db, logger: discardLogger()}
	got, err := r.PendingExport(context.Background(), uuid.New(), DashboardInventory, 0)
	if err != nil {
		t.Fatalf("pending export: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d records, want none", len(got))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("query must exclude already-exported records: %v", err)
	}
}
