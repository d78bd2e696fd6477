package domain

// ============================================================
// Health & Metrics API Responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual dependency.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
	Error       string `json:"error,omitempty"`
}

// DashboardMetrics is returned by GET /v1/metrics/dashboard.
type DashboardMetrics struct {
	PeriodSelections  map[string]float64 `json:"periodSelections"`
	CategoryToggles   map[string]float64 `json:"categoryToggles"`
	ViewsOpened       float64            `json:"viewsOpened"`
	ViewsClosed       float64            `json:"viewsClosed"`
	RedirectsIssued   float64            `json:"redirectsIssued"`
	RedirectsCanceled float64            `json:"redirectsCancelled"`
	CacheHits         float64            `json:"cacheHits"`
	CacheMisses       float64            `json:"cacheMisses"`
	CacheHitRate      float64            `json:"cacheHitRate"`
	SourceErrors      float64            `json:"sourceErrors"`
}

// ============================================================
// Generic API Response wrappers
// ============================================================

// SuccessResponse wraps a successful single-entity response.
type SuccessResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}
