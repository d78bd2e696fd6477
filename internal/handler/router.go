package handler

import (
	"html/template"
	"net/http"
	"time"

	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/domain"
	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/infra/observability"
	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/service"
	"github.com/YannWeb3/Coach-Setter-Dashboard/web"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Services groups the use cases served by the router.
type Services struct {
	Finance   *service.FinanceService
	Views     *service.ViewSessions
	Redirect  *service.AuthRedirect
	Sessions  *service.SessionVerifier
	Presenter *Presenter
}

// Options toggles optional router behavior.
type Options struct {
	// AuthRequired protects the dashboard and /v1 with a session token.
	AuthRequired bool
	// DevTools exposes the /v1/dev helpers.
	DevTools bool
	// SecureCookies marks the view and session cookies Secure.
	SecureCookies bool
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(svc Services, opts Options, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	tmpl := template.Must(template.ParseFS(web.TemplatesFS, "templates/*.html"))

	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger, metrics))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svc.Finance, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- Auth redirect screen (public) ---
	r.Get("/auth/callback", authCallbackHandler(svc.Redirect, svc.Sessions, tmpl, opts, logger))
	r.Get("/auth/callback/events", authEventsHandler(svc.Redirect, logger))

	protected := func(r chi.Router) {
		if opts.AuthRequired {
			r.Use(SessionAuthMiddleware(svc.Sessions, logger))
		}
	}

	// --- Dashboard (HTML) ---
	r.Group(func(r chi.Router) {
		protected(r)
		r.Get("/", dashboardPageHandler(svc, tmpl, opts, logger))
		r.Post("/dashboard/period", selectPeriodFormHandler(svc.Views, opts, logger))
		r.Post("/dashboard/categories/{category}/toggle", toggleCategoryFormHandler(svc.Views, opts, logger))
	})

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		protected(r)

		// =============================================
		// 1. Summaries & projections
		// =============================================
		r.Get("/summaries/{period}", getSummaryHandler(svc.Finance, logger))
		r.Get("/comparison", getComparisonHandler(svc.Finance, logger))
		r.Get("/evolution", getEvolutionHandler(svc.Finance, logger))
		r.Get("/distribution", getDistributionHandler(svc.Finance, logger))

		// =============================================
		// 2. View sessions
		// =============================================
		r.Post("/views", openViewHandler(svc.Views, logger))
		r.Get("/views/{viewId}", getViewHandler(svc.Views, logger))
		r.Put("/views/{viewId}/period", selectViewPeriodHandler(svc.Views, logger))
		r.Post("/views/{viewId}/categories/{category}/toggle", toggleViewCategoryHandler(svc.Views, logger))
		r.Delete("/views/{viewId}", closeViewHandler(svc.Views, logger))
		r.Get("/views/{viewId}/dashboard", getViewDashboardHandler(svc.Finance, svc.Views, logger))

		// =============================================
		// 3. Metrics
		// =============================================
		r.Get("/metrics/dashboard", dashboardMetricsHandler(metrics))

		// =============================================
		// Dev Tools (testing helpers)
		// =============================================
		if opts.DevTools {
			r.Post("/dev/session-token", devSessionTokenHandler(svc.Sessions, logger))
		}
	})

	return r
}

// ============================================================
// Operational endpoints
// ============================================================

func healthzHandler(finance *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "finance-dashboard", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		if finance != nil {
			start := time.Now()
			err := finance.Ping(ctx)
			latency := time.Since(start).Milliseconds()
			sh := domain.ServiceHealth{
				Name: finance.SourceName(), Status: "healthy", LatencyMs: latency, LastChecked: now,
			}
			if err != nil {
				logger.Warn("data source health check failed", zap.Error(err))
				sh.Status = "degraded"
				sh.Error = err.Error()
			}
			services = append(services, sh)
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func dashboardMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetDashboardSnapshot())
	}
}
