package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/sakanusa/gerai-analytics-backend/api/validators"
	"github.com/sakanusa/gerai-analytics-backend/internal/dashboard"
	"github.com/sakanusa/gerai-analytics-backend/internal/orders"
	"github.com/sakanusa/gerai-analytics-backend/pkg/enums"
	pkgerrors "github.com/sakanusa/gerai-analytics-backend/pkg/errors"
)

// parseOrderFilters reads the shared filter query parameters used by the
// order list and every dashboard page.
func parseOrderFilters(r *http.Request) (orders.Filters, error) {
	query := r.URL.Query()

	filters := orders.Filters{
		StoreID: strings.TrimSpace(query.Get("store_id")),
		Area:    strings.TrimSpace(query.Get("area")),
		Segment: strings.TrimSpace(query.Get("segment")),
		Hub:     strings.TrimSpace(query.Get("hub")),
	}

	if raw := strings.TrimSpace(query.Get("payment_status")); raw != "" {
		status, err := enums.ParsePaymentStatus(raw)
		if err != nil {
			return orders.Filters{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment status").
				WithDetails(map[string]any{"field": "payment_status"})
		}
		filters.PaymentStatus = &status
	}

	if raw := strings.TrimSpace(query.Get("payment_type")); raw != "" {
		paymentType, err := enums.ParsePaymentType(raw)
		if err != nil {
			return orders.Filters{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment type").
				WithDetails(map[string]any{"field": "payment_type"})
		}
		filters.PaymentType = &paymentType
	}

	from, err := validators.ParseQueryDate(r, "date_from")
	if err != nil {
		return orders.Filters{}, err
	}
	to, err := validators.ParseQueryDate(r, "date_to")
	if err != nil {
		return orders.Filters{}, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return orders.Filters{}, pkgerrors.New(pkgerrors.CodeValidation, "date_to must not precede date_from")
	}
	filters.DateFrom = from
	filters.DateTo = to

	return filters, nil
}

// parseDashboardQuery reads the shared filters plus the optional month/year
// pair that re-anchors the headline month.
func parseDashboardQuery(r *http.Request) (dashboard.Query, error) {
	filters, err := parseOrderFilters(r)
	if err != nil {
		return dashboard.Query{}, err
	}
	query := dashboard.Query{Filters: filters}

	monthRaw := strings.TrimSpace(r.URL.Query().Get("month"))
	yearRaw := strings.TrimSpace(r.URL.Query().Get("year"))
	if monthRaw == "" && yearRaw == "" {
		return query, nil
	}
	if monthRaw == "" || yearRaw == "" {
		return dashboard.Query{}, pkgerrors.New(pkgerrors.CodeValidation, "month and year must be provided together")
	}

	month, err := validators.ParseQueryInt(r, "month", 0, 1, 12)
	if err != nil {
		return dashboard.Query{}, err
	}
	year, err := validators.ParseQueryInt(r, "year", 0, 2000, 2100)
	if err != nil {
		return dashboard.Query{}, err
	}

	query.Reference = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return query, nil
}
