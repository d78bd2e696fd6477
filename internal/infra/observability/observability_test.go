package observability_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/domain"
	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/infra/observability"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func TestMetrics_Snapshot(t *testing.T) {
	m := observability.NewMetrics()

	m.IncrPeriodSelection(domain.PeriodYear)
	m.IncrPeriodSelection(domain.PeriodYear)
	m.IncrCategoryToggle(domain.CategoryPurchases)
	m.IncrRedirect(domain.RedirectIssued)
	m.IncrRedirect(domain.RedirectCancelled)
	m.IncrRedirect(domain.RedirectCancelled)
	m.IncrCacheHit("summary")
	m.IncrCacheHit("summary")
	m.IncrCacheHit("summary")
	m.IncrCacheMiss("evolution")
	m.IncrSourceError("supabase")
	m.ViewOpened()

	snap := m.GetDashboardSnapshot()
	if snap.PeriodSelections["year"] != 2 || snap.PeriodSelections["month"] != 0 {
		t.Errorf("unexpected period selections %v", snap.PeriodSelections)
	}
	if snap.CategoryToggles["purchases"] != 1 {
		t.Errorf("unexpected toggles %v", snap.CategoryToggles)
	}
	if snap.RedirectsIssued != 1 || snap.RedirectsCanceled != 2 {
		t.Errorf("unexpected redirects issued=%v cancelled=%v", snap.RedirectsIssued, snap.RedirectsCanceled)
	}
	if snap.CacheHitRate != 0.75 {
		t.Errorf("expected hit rate 0.75, got %v", snap.CacheHitRate)
	}
	if snap.SourceErrors != 1 || snap.ViewsOpened != 1 {
		t.Errorf("unexpected source errors %v / views %v", snap.SourceErrors, snap.ViewsOpened)
	}
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	a := observability.NewMetrics()
	b := observability.NewMetrics()
	a.IncrPeriodSelection(domain.PeriodMonth)
	if b.GetDashboardSnapshot().PeriodSelections["month"] != 0 {
		t.Error("metrics leaked across registries")
	}
}

func TestZapLoggerMiddleware_RecordsRoutePattern(t *testing.T) {
	m := observability.NewMetrics()
	r := chi.NewRouter()
	r.Use(observability.ZapLoggerMiddleware(zap.NewNop(), m))
	r.Get("/v1/summaries/{period}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/summaries/year", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("expected 418, got %d", rec.Code)
	}

	out := httptest.NewRecorder()
	promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}).ServeHTTP(out, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(out.Body.String(), `operation="GET /v1/summaries/{period}"`) {
		t.Errorf("route pattern not recorded:\n%s", out.Body.String())
	}
}

func TestNewLogger_Levels(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "bogus", ""} {
		if observability.NewLogger(lvl) == nil {
			t.Errorf("nil logger for level %q", lvl)
		}
	}
}

func TestInitTracer_WithoutEndpoint(t *testing.T) {
	shutdown, err := observability.InitTracer(context.Background(), "", "test")
	if err != nil {
		t.Fatal(err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}
}
