package observability

import (
	"time"

	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the dashboard.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration  *prometheus.HistogramVec
	sourceErrors     *prometheus.CounterVec
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
	periodSelections *prometheus.CounterVec
	categoryToggles  *prometheus.CounterVec
	redirects        *prometheus.CounterVec
	viewsOpened      prometheus.Counter
	viewsClosed      prometheus.Counter
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dashboard_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		sourceErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_source_errors_total",
				Help: "Total errors returned by the financial data source.",
			},
			[]string{"source"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		periodSelections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_period_selections_total",
				Help: "Period selector changes by selected period.",
			},
			[]string{"period"},
		),
		categoryToggles: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_category_toggles_total",
				Help: "Expense category expand/collapse toggles.",
			},
			[]string{"category"},
		),
		redirects: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_auth_redirects_total",
				Help: "Post-login redirect timers by outcome.",
			},
			[]string{"outcome"},
		),
		viewsOpened: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "dashboard_views_opened_total",
				Help: "Dashboard view sessions opened.",
			},
		),
		viewsClosed: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "dashboard_views_closed_total",
				Help: "Dashboard view sessions closed explicitly (TTL expiry not included).",
			},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrSourceError increments the data source error counter.
func (m *Metrics) IncrSourceError(source string) {
	m.sourceErrors.WithLabelValues(source).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrPeriodSelection counts a period selector change.
func (m *Metrics) IncrPeriodSelection(p domain.Period) {
	m.periodSelections.WithLabelValues(p.Key()).Inc()
}

// IncrCategoryToggle counts an expand/collapse toggle.
func (m *Metrics) IncrCategoryToggle(c domain.ExpenseCategory) {
	m.categoryToggles.WithLabelValues(c.Key()).Inc()
}

// IncrRedirect counts a redirect timer outcome (issued, cancelled).
func (m *Metrics) IncrRedirect(outcome domain.RedirectState) {
	m.redirects.WithLabelValues(outcome.String()).Inc()
}

// ViewOpened counts a new view session.
func (m *Metrics) ViewOpened() {
	m.viewsOpened.Inc()
}

// ViewClosed counts an explicitly closed view session.
func (m *Metrics) ViewClosed() {
	m.viewsClosed.Inc()
}

// GetDashboardSnapshot returns a snapshot of usage metrics suitable for
// the GET /v1/metrics/dashboard endpoint.
func (m *Metrics) GetDashboardSnapshot() *domain.DashboardMetrics {
	periods := make(map[string]float64)
	for _, p := range domain.AllPeriods() {
		periods[p.Key()] = getCounterValue(m.periodSelections, p.Key())
	}
	toggles := make(map[string]float64)
	for _, c := range domain.AllExpenseCategories() {
		toggles[c.Key()] = getCounterValue(m.categoryToggles, c.Key())
	}

	hits := getCounterValue(m.cacheHits, "summary") + getCounterValue(m.cacheHits, "evolution")
	misses := getCounterValue(m.cacheMisses, "summary") + getCounterValue(m.cacheMisses, "evolution")
	hitRate := float64(0)
	if hits+misses > 0 {
		hitRate = hits / (hits + misses)
	}

	sourceErrors := float64(0)
	for _, s := range []string{"static", "sqlite", "supabase"} {
		sourceErrors += getCounterValue(m.sourceErrors, s)
	}

	return &domain.DashboardMetrics{
		PeriodSelections:  periods,
		CategoryToggles:   toggles,
		ViewsOpened:       readMetric(m.viewsOpened),
		ViewsClosed:       readMetric(m.viewsClosed),
		RedirectsIssued:   getCounterValue(m.redirects, domain.RedirectIssued.String()),
		RedirectsCanceled: getCounterValue(m.redirects, domain.RedirectCancelled.String()),
		CacheHits:         hits,
		CacheMisses:       misses,
		CacheHitRate:      hitRate,
		SourceErrors:      sourceErrors,
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	return readMetric(cv.WithLabelValues(label))
}

func readMetric(c prometheus.Metric) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
