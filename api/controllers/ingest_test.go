package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sakanusa/gerai-analytics-backend/internal/aggregate"
	"github.com/sakanusa/gerai-analytics-backend/internal/ingest"
	"github.com/sakanusa/gerai-analytics-backend/internal/orders"
	"github.com/sakanusa/gerai-analytics-backend/pkg/db/models"
	"github.com/sakanusa/gerai-analytics-backend/pkg/pagination"
)

type captureRepo struct {
	upserts int
	err     error
}

func (r *captureRepo) WithTx(tx *gorm.DB) orders.Repository { return r }

func (r *captureRepo) Upsert(ctx context.Context, order *models.Order, items []models.OrderLineItem) error {
	if r.err != nil {
		return r.err
	}
	r.upserts++
	return nil
}

func (r *captureRepo) FindByCode(ctx context.Context, orderCode string) (*models.Order, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *captureRepo) List(ctx context.Context, params pagination.Params, filters orders.Filters) (*orders.OrderList, error) {
	return nil, nil
}

func (r *captureRepo) ListForAggregation(ctx context.Context, filters orders.Filters) ([]aggregate.Order, error) {
	return nil, nil
}

type passTx struct{}

func (passTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error { return fn(nil) }

type mapIdem struct{ seen map[string]bool }

func (m *mapIdem) CheckAndMarkProcessed(ctx context.Context, eventID string) (bool, error) {
	if m.seen[eventID] {
		return true, nil
	}
	m.seen[eventID] = true
	return false, nil
}

func (m *mapIdem) Delete(ctx context.Context, eventID string) error {
	delete(m.seen, eventID)
	return nil
}

func ingestHandler(t *testing.T, repo *captureRepo) http.HandlerFunc {
	t.Helper()
	svc, err := ingest.NewService(repo, passTx{}, &mapIdem{seen: map[string]bool{}}, testLogger())
	require.NoError(t, err)
	return IngestOrder(svc, testLogger())
}

const ingestBody = `{
	"version": 1,
	"eventId": "evt-http-1",
	"occurredAt": "2025-05-20T10:00:00Z",
	"data": {
		"order_code": "ORD-1",
		"store_id": "ST-1",
		"store_name": "Gerai Satu",
		"month_label": "May 2025",
		"payment_status": "LUNAS",
		"items": [{"product_id": "SKU-1", "product_name": "Kopi Susu", "qty": 2}]
	}
}`

func TestIngestOrderAcceptsEvent(t *testing.T) {
	repo := &captureRepo{}
	handler := ingestHandler(t, repo)

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodPost, "/ingest/orders", strings.NewReader(ingestBody)))

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, 1, repo.upserts)
}

func TestIngestOrderRejectsMissingEventID(t *testing.T) {
	handler := ingestHandler(t, &captureRepo{})

	body := `{"version": 1, "data": {"order_code": "ORD-1"}}`
	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodPost, "/ingest/orders", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIngestOrderRejectsInvalidPayload(t *testing.T) {
	repo := &captureRepo{}
	handler := ingestHandler(t, repo)

	body := `{"version": 1, "eventId": "evt-2", "data": {"order_code": ""}}`
	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodPost, "/ingest/orders", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, repo.upserts)
}
