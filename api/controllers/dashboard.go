package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sakanusa/gerai-analytics-backend/api/responses"
	"github.com/sakanusa/gerai-analytics-backend/internal/dashboard"
	"github.com/sakanusa/gerai-analytics-backend/internal/export"
	pkgerrors "github.com/sakanusa/gerai-analytics-backend/pkg/errors"
	"github.com/sakanusa/gerai-analytics-backend/pkg/logger"
)

// DashboardSnapshot serves the aggregated snapshot for one dashboard page.
func DashboardSnapshot(service dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		variant := dashboard.Variant(strings.ToLower(chi.URLParam(r, "variant")))
		if !variant.IsValid() {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "unknown dashboard variant"))
			return
		}
		ctx = logg.WithVariant(ctx, string(variant))

		query, err := parseDashboardQuery(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		snapshot, err := service.Snapshot(ctx, variant, query)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, snapshot)
	}
}

// DashboardExport serves one snapshot dimension flattened into table rows.
func DashboardExport(service dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		variant := dashboard.Variant(strings.ToLower(chi.URLParam(r, "variant")))
		if !variant.IsValid() {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "unknown dashboard variant"))
			return
		}
		ctx = logg.WithVariant(ctx, string(variant))

		kind := export.TableKind(strings.ToLower(chi.URLParam(r, "table")))
		if !kind.IsValid() {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "unknown export table"))
			return
		}

		query, err := parseDashboardQuery(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		table, err := service.Export(ctx, variant, kind, query)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, table)
	}
}
