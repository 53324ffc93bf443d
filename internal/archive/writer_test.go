package archive

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/api/googleapi"

	"github.com/sakanusa/gerai-analytics-backend/internal/aggregate"
	pkgbigquery "github.com/sakanusa/gerai-analytics-backend/pkg/bigquery"
)

func TestNewWriterValidation(t *testing.T) {
	if _, err := New(nil, Config{SnapshotsTable: "snapshots"}); err == nil {
		t.Fatal("expected error when client missing")
	}
	if _, err := New(&pkgbigquery.Client{}, Config{SnapshotsTable: " "}); err == nil {
		t.Fatal("expected error when snapshots table missing")
	}
}

func TestArchiveWritesOneRow(t *testing.T) {
	writer, fake := newWriterWithFakeInserter()

	snapshot := &aggregate.Snapshot{ReferenceMonth: "May 2025"}
	snapshot.Totals.OrderCount = 7
	snapshot.Totals.TotalInvoice = decimal.NewFromInt(1200)
	snapshot.ThisMonth.ActivationRate = decimal.NewFromInt(25)

	now := time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)
	if err := writer.Archive(context.Background(), "invoice", snapshot, now); err != nil {
		t.Fatalf("unexpected archive error: %v", err)
	}

	if len(fake.inserted) != 1 {
		t.Fatalf("expected 1 row, got %d", len(fake.inserted))
	}
	row, ok := fake.inserted[0].(*SnapshotRow)
	if !ok {
		t.Fatalf("unexpected row type %T", fake.inserted[0])
	}
	if row.Variant != "invoice" || row.ReferenceMonth != "May 2025" {
		t.Fatalf("unexpected row identity %+v", row)
	}
	if row.OrderCount != 7 || row.TotalInvoice != "1200" {
		t.Fatalf("unexpected row totals %+v", row)
	}

	var decoded aggregate.Snapshot
	if err := json.Unmarshal([]byte(row.Payload), &decoded); err != nil {
		t.Fatalf("payload is not valid snapshot JSON: %v", err)
	}
	if decoded.ReferenceMonth != "May 2025" {
		t.Fatalf("payload lost reference month: %q", decoded.ReferenceMonth)
	}
}

func TestArchiveRetriesOnTransientError(t *testing.T) {
	writer, fake := newWriterWithFakeInserter()
	fake.responses = []error{
		&googleapi.Error{Code: http.StatusServiceUnavailable},
		nil,
	}

	snapshot := &aggregate.Snapshot{ReferenceMonth: "May 2025"}
	if err := writer.Archive(context.Background(), "sales", snapshot, time.Now()); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if fake.calls != 2 {
		t.Fatalf("expected 2 insert attempts, got %d", fake.calls)
	}
}

func TestArchiveStopsOnPermanentError(t *testing.T) {
	writer, fake := newWriterWithFakeInserter()
	fake.responses = []error{
		&googleapi.Error{Code: http.StatusBadRequest},
		nil,
	}

	snapshot := &aggregate.Snapshot{ReferenceMonth: "May 2025"}
	if err := writer.Archive(context.Background(), "sales", snapshot, time.Now()); err == nil {
		t.Fatal("expected permanent error to surface")
	}
	if fake.calls != 1 {
		t.Fatalf("expected 1 insert attempt, got %d", fake.calls)
	}
}

type fakeInserter struct {
	responses []error
	inserted  []any
	calls     int
}

func (f *fakeInserter) InsertRows(ctx context.Context, table string, rows []any) error {
	f.calls++
	var err error
	if len(f.responses) > 0 {
		err = f.responses[0]
		f.responses = f.responses[1:]
	}
	if err == nil {
		f.inserted = append(f.inserted, rows...)
	}
	return err
}

func newWriterWithFakeInserter() (*Writer, *fakeInserter) {
	fake := &fakeInserter{}
	writer := &Writer{
		client: fake,
		table:  "dashboard_snapshots",
		retry: RetryPolicy{
			MaxAttempts:    3,
			InitialBackoff: time.Millisecond,
			MaximumBackoff: 2 * time.Millisecond,
		},
	}
	return writer, fake
}
