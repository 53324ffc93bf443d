package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"github.com/sakanusa/gerai-analytics-backend/internal/aggregate"
	"github.com/sakanusa/gerai-analytics-backend/internal/dashboard"
	"github.com/sakanusa/gerai-analytics-backend/internal/export"
	"github.com/sakanusa/gerai-analytics-backend/internal/orders"
	"github.com/sakanusa/gerai-analytics-backend/pkg/config"
	"github.com/sakanusa/gerai-analytics-backend/pkg/logger"
	"github.com/sakanusa/gerai-analytics-backend/pkg/pagination"
)

type fixedDashboard struct{}

func (fixedDashboard) Snapshot(ctx context.Context, variant dashboard.Variant, query dashboard.Query) (*aggregate.Snapshot, error) {
	return &aggregate.Snapshot{ReferenceMonth: "May 2025"}, nil
}

func (fixedDashboard) Export(ctx context.Context, variant dashboard.Variant, kind export.TableKind, query dashboard.Query) (*export.Table, error) {
	return &export.Table{Title: "Store Recap"}, nil
}

type fixedOrders struct{}

func (fixedOrders) List(ctx context.Context, params pagination.Params, filters orders.Filters) (*orders.OrderList, error) {
	return &orders.OrderList{}, nil
}

func (fixedOrders) GetByCode(ctx context.Context, orderCode string) (*orders.OrderSummary, error) {
	return &orders.OrderSummary{OrderCode: orderCode}, nil
}

func testRouter() http.Handler {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	return NewRouter(Deps{
		Config:           cfg,
		Logger:           logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		DashboardService: fixedDashboard{},
		OrdersService:    fixedOrders{},
		Registry:         prometheus.NewRegistry(),
	})
}

func TestRouterWiresRoutes(t *testing.T) {
	router := testRouter()

	cases := []struct {
		path   string
		status int
	}{
		{"/health/live", http.StatusOK},
		{"/health/ready", http.StatusOK},
		{"/metrics", http.StatusOK},
		{"/api/v1/dashboard/invoice", http.StatusOK},
		{"/api/v1/dashboard/sales/export/stores", http.StatusOK},
		{"/api/v1/orders", http.StatusOK},
		{"/api/v1/orders/ORD-1", http.StatusOK},
		{"/api/v1/unknown", http.StatusNotFound},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))
		assert.Equal(t, tc.status, w.Code, tc.path)
	}
}

func TestRouterSkipsIngestWhenDisabled(t *testing.T) {
	router := testRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/ingest/orders", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouterSetsRequestID(t *testing.T) {
	router := testRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}
