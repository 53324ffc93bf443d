package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sakanusa/gerai-analytics-backend/api/responses"
	"github.com/sakanusa/gerai-analytics-backend/api/validators"
	"github.com/sakanusa/gerai-analytics-backend/internal/orders"
	"github.com/sakanusa/gerai-analytics-backend/pkg/logger"
	"github.com/sakanusa/gerai-analytics-backend/pkg/pagination"
)

// ListOrders serves the cursor-paginated order list.
func ListOrders(service orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		filters, err := parseOrderFilters(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		list, err := service.List(ctx, params, filters)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// GetOrder serves a single order looked up by its code.
func GetOrder(service orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		summary, err := service.GetByCode(ctx, chi.URLParam(r, "orderCode"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, summary)
	}
}
