package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/horizon-travel/horizon/internal/invoices"
	"github.com/horizon-travel/horizon/internal/observability"
	"github.com/horizon-travel/horizon/internal/quotations"
	"github.com/horizon-travel/horizon/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	QuotationsHandler *quotations.Handler
	InvoicesHandler   *invoices.Handler
	JobHandler        *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with Horizon defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api/v1", func(api chi.Router) {
		if params.QuotationsHandler != nil {
			params.QuotationsHandler.MountRoutes(api)
		}
		if params.InvoicesHandler != nil {
			params.InvoicesHandler.MountRoutes(api)
		}
		if params.JobHandler != nil {
			api.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	return r
}
