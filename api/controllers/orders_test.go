package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakanusa/gerai-analytics-backend/internal/orders"
	pkgerrors "github.com/sakanusa/gerai-analytics-backend/pkg/errors"
	"github.com/sakanusa/gerai-analytics-backend/pkg/pagination"
	"github.com/sakanusa/gerai-analytics-backend/pkg/types"
)

type stubOrdersService struct {
	list        *orders.OrderList
	summary     *orders.OrderSummary
	err         error
	lastParams  pagination.Params
	lastFilters orders.Filters
	lastCode    string
}

func (s *stubOrdersService) List(ctx context.Context, params pagination.Params, filters orders.Filters) (*orders.OrderList, error) {
	s.lastParams = params
	s.lastFilters = filters
	return s.list, s.err
}

func (s *stubOrdersService) GetByCode(ctx context.Context, orderCode string) (*orders.OrderSummary, error) {
	s.lastCode = orderCode
	return s.summary, s.err
}

func ordersTestRouter(svc orders.Service) http.Handler {
	r := chi.NewRouter()
	r.Get("/orders", ListOrders(svc, testLogger()))
	r.Get("/orders/{orderCode}", GetOrder(svc, testLogger()))
	return r
}

func TestListOrdersPassesParams(t *testing.T) {
	svc := &stubOrdersService{list: &orders.OrderList{NextCursor: "abc"}}
	router := ordersTestRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders?limit=10&cursor=tok&store_id=ST-1", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 10, svc.lastParams.Limit)
	assert.Equal(t, "tok", svc.lastParams.Cursor)
	assert.Equal(t, "ST-1", svc.lastFilters.StoreID)

	var body types.SuccessEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	list := body.Data.(map[string]any)
	assert.Equal(t, "abc", list["next_cursor"])
}

func TestListOrdersRejectsBadLimit(t *testing.T) {
	router := ordersTestRouter(&stubOrdersService{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders?limit=9999", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListOrdersRejectsInvertedDates(t *testing.T) {
	router := ordersTestRouter(&stubOrdersService{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders?date_from=2025-05-10&date_to=2025-05-01", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetOrderMapsNotFound(t *testing.T) {
	svc := &stubOrdersService{err: pkgerrors.New(pkgerrors.CodeNotFound, "order not found")}
	router := ordersTestRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/ORD-404", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ORD-404", svc.lastCode)
}
