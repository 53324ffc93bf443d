package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakanusa/gerai-analytics-backend/api/controllers"
	"github.com/sakanusa/gerai-analytics-backend/api/middleware"
	"github.com/sakanusa/gerai-analytics-backend/internal/dashboard"
	"github.com/sakanusa/gerai-analytics-backend/internal/ingest"
	"github.com/sakanusa/gerai-analytics-backend/internal/orders"
	"github.com/sakanusa/gerai-analytics-backend/pkg/config"
	"github.com/sakanusa/gerai-analytics-backend/pkg/logger"
)

// Deps carries everything the router wires into handlers. IngestService and
// Registry are optional; their routes are skipped when nil.
type Deps struct {
	Config           *config.Config
	Logger           *logger.Logger
	Readiness        map[string]controllers.Pinger
	DashboardService dashboard.Service
	OrdersService    orders.Service
	IngestService    *ingest.Service
	Registry         *prometheus.Registry
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(deps.Logger),
		middleware.RequestID(deps.Logger),
		middleware.Logging(deps.Logger),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(deps.Config))
		r.Get("/ready", controllers.HealthReady(deps.Config, deps.Logger, deps.Readiness))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/dashboard/{variant}", func(r chi.Router) {
			r.Get("/", controllers.DashboardSnapshot(deps.DashboardService, deps.Logger))
			r.Get("/export/{table}", controllers.DashboardExport(deps.DashboardService, deps.Logger))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(deps.OrdersService, deps.Logger))
			r.Get("/{orderCode}", controllers.GetOrder(deps.OrdersService, deps.Logger))
		})

		if deps.IngestService != nil {
			r.Post("/ingest/orders", controllers.IngestOrder(deps.IngestService, deps.Logger))
		}
	})

	return r
}
