package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/domain"
	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/format"
	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/handler"
	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/infra/cache"
	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/infra/fixtures"
	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/infra/observability"
	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/render"
	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/service"

	"go.uber.org/zap"
)

const testSecret = "test-secret"

type testEnv struct {
	router   http.Handler
	metrics  *observability.Metrics
	sessions *service.SessionVerifier
}

func newEnv(t *testing.T, opts handler.Options) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	summaries := cache.New[any](time.Minute)
	views := cache.New[domain.ViewState](time.Hour)
	t.Cleanup(summaries.Close)
	t.Cleanup(views.Close)

	f := format.New("fr")
	sessions := service.NewSessionVerifier(testSecret)
	svc := handler.Services{
		Finance:   service.NewFinanceService(fixtures.NewSource(), summaries, metrics, logger),
		Views:     service.NewViewSessions(views, metrics, logger),
		Redirect:  service.NewAuthRedirect(10*time.Millisecond, "/", metrics, logger),
		Sessions:  sessions,
		Presenter: handler.NewPresenter(f, render.New(f.Currency)),
	}
	return &testEnv{
		router:   handler.NewRouter(svc, opts, metrics, logger),
		metrics:  metrics,
		sessions: sessions,
	}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func viewCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == handler.ViewCookie {
			return c
		}
	}
	t.Fatal("expected dashboard_view cookie")
	return nil
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

// --- Operational endpoints ---

func TestOperationalEndpoints(t *testing.T) {
	env := newEnv(t, handler.Options{})

	for _, path := range []string{"/healthz", "/readyz", "/metrics", "/ping"} {
		rec := env.do(httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestHealthz_ReportsDataSource(t *testing.T) {
	env := newEnv(t, handler.Options{})

	rec := env.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	var health domain.HealthStatus
	decodeJSON(t, rec, &health)

	if health.Status != "healthy" || len(health.Services) != 2 || health.Services[1].Name != "static" {
		t.Errorf("unexpected health: %+v", health)
	}
}

// --- Dashboard page ---

func TestDashboardPage_DefaultView(t *testing.T) {
	env := newEnv(t, handler.Options{})

	rec := env.do(httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	viewCookie(t, rec)

	body := rec.Body.String()
	for _, want := range []string{
		"Total Revenus (CA + Upsells)",
		"Charges Totales",
		"Bénéfice Net (Marge: 43.3%)",
		"Salaires",
		`data-category="subscriptions"`,
		"<svg",
		"Dépenses",
		"Marge (%)",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected body to contain %q", want)
		}
	}
	if strings.Contains(body, "Abonnement 1") {
		t.Error("collapsed category should not list its line items")
	}
}

func TestDashboardPage_PeriodAndToggleForms(t *testing.T) {
	env := newEnv(t, handler.Options{})
	cookie := viewCookie(t, env.do(httptest.NewRequest(http.MethodGet, "/", nil)))

	toggle := httptest.NewRequest(http.MethodPost, "/dashboard/categories/subscriptions/toggle", nil)
	toggle.AddCookie(cookie)
	if rec := env.do(toggle); rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Fatalf("toggle: expected 303 to /, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	page := httptest.NewRequest(http.MethodGet, "/", nil)
	page.AddCookie(cookie)
	if body := env.do(page).Body.String(); !strings.Contains(body, "Abonnement 1") {
		t.Error("expanded subscriptions should list line items")
	}

	form := url.Values{"period": {"year"}}
	sel := httptest.NewRequest(http.MethodPost, "/dashboard/period", strings.NewReader(form.Encode()))
	sel.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	sel.AddCookie(cookie)
	if rec := env.do(sel); rec.Code != http.StatusSeeOther {
		t.Fatalf("period: expected 303, got %d", rec.Code)
	}

	page = httptest.NewRequest(http.MethodGet, "/", nil)
	page.AddCookie(cookie)
	body := env.do(page).Body.String()
	if !strings.Contains(body, service.DetailNote) {
		t.Error("year view should show the monthly detail note")
	}
	if !strings.Contains(body, "Bénéfice Net (Marge: 44.0%)") {
		t.Error("year view should show the year margin")
	}
}

func TestDashboardPage_RejectsInvalidInput(t *testing.T) {
	env := newEnv(t, handler.Options{})

	form := url.Values{"period": {"decade"}}
	req := httptest.NewRequest(http.MethodPost, "/dashboard/period", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if rec := env.do(req); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/dashboard/categories/travel/toggle", nil)
	if rec := env.do(req); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

// --- JSON API ---

func TestGetSummary(t *testing.T) {
	env := newEnv(t, handler.Options{})

	rec := env.do(httptest.NewRequest(http.MethodGet, "/v1/summaries/half-year", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Summary struct {
			Period string `json:"period"`
			Profit string `json:"profit"`
		} `json:"summary"`
		Margin struct {
			Display    string `json:"display"`
			Applicable bool   `json:"applicable"`
		} `json:"margin"`
		KPIs []json.RawMessage `json:"kpis"`
	}
	decodeJSON(t, rec, &resp)

	if resp.Summary.Period != "half-year" || resp.Summary.Profit != "37000" {
		t.Errorf("unexpected summary: %+v", resp.Summary)
	}
	if resp.Margin.Display != "43.5%" || !resp.Margin.Applicable {
		t.Errorf("unexpected margin: %+v", resp.Margin)
	}
	if len(resp.KPIs) != 3 {
		t.Errorf("expected 3 kpis, got %d", len(resp.KPIs))
	}
}

func TestGetSummary_InvalidPeriod(t *testing.T) {
	env := newEnv(t, handler.Options{})

	rec := env.do(httptest.NewRequest(http.MethodGet, "/v1/summaries/decade", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestProjectionEndpoints(t *testing.T) {
	env := newEnv(t, handler.Options{})

	var cmp struct {
		Columns []struct {
			Label     string `json:"label"`
			Available bool   `json:"available"`
			Profit    string `json:"profit"`
		} `json:"columns"`
	}
	decodeJSON(t, env.do(httptest.NewRequest(http.MethodGet, "/v1/comparison", nil)), &cmp)
	if len(cmp.Columns) != 3 || cmp.Columns[2].Label != "Année" || cmp.Columns[2].Profit != "77000" {
		t.Errorf("unexpected comparison: %+v", cmp.Columns)
	}

	var evo struct {
		Points []domain.EvolutionPoint `json:"points"`
	}
	decodeJSON(t, env.do(httptest.NewRequest(http.MethodGet, "/v1/evolution", nil)), &evo)
	if len(evo.Points) != 12 {
		t.Errorf("expected 12 points, got %d", len(evo.Points))
	}

	var dist struct {
		Slices []struct {
			Name       string `json:"name"`
			ColorToken string `json:"colorToken"`
		} `json:"slices"`
	}
	decodeJSON(t, env.do(httptest.NewRequest(http.MethodGet, "/v1/distribution", nil)), &dist)
	if len(dist.Slices) != 5 || dist.Slices[0].Name != "Personnel" {
		t.Errorf("unexpected slices: %+v", dist.Slices)
	}
}

func TestViewLifecycle(t *testing.T) {
	env := newEnv(t, handler.Options{})

	rec := env.do(httptest.NewRequest(http.MethodPost, "/v1/views", nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("open: expected 201, got %d", rec.Code)
	}
	var view struct {
		ID       string          `json:"id"`
		Period   string          `json:"period"`
		Expanded map[string]bool `json:"expanded"`
	}
	decodeJSON(t, rec, &view)
	if view.Period != "month" || !view.Expanded["personnel"] || view.Expanded["other"] {
		t.Fatalf("unexpected default view: %+v", view)
	}
	base := "/v1/views/" + view.ID

	rec = env.do(httptest.NewRequest(http.MethodPut, base+"/period", strings.NewReader(`{"period":"year"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("select: expected 200, got %d", rec.Code)
	}

	rec = env.do(httptest.NewRequest(http.MethodPost, base+"/categories/other/toggle", nil))
	decodeJSON(t, rec, &view)
	if view.Period != "year" || !view.Expanded["other"] || !view.Expanded["personnel"] {
		t.Errorf("unexpected view after toggle: %+v", view)
	}

	rec = env.do(httptest.NewRequest(http.MethodGet, base+"/dashboard", nil))
	var dash struct {
		NoData   bool `json:"noData"`
		Expenses struct {
			Detailed bool   `json:"detailed"`
			Note     string `json:"note"`
		} `json:"expenses"`
	}
	decodeJSON(t, rec, &dash)
	if dash.NoData || dash.Expenses.Detailed || dash.Expenses.Note != service.DetailNote {
		t.Errorf("unexpected year dashboard: %+v", dash)
	}

	if rec := env.do(httptest.NewRequest(http.MethodDelete, base, nil)); rec.Code != http.StatusNoContent {
		t.Errorf("close: expected 204, got %d", rec.Code)
	}
	if rec := env.do(httptest.NewRequest(http.MethodGet, base, nil)); rec.Code != http.StatusNotFound {
		t.Errorf("closed view: expected 404, got %d", rec.Code)
	}

	snap := env.metrics.GetDashboardSnapshot()
	if snap.ViewsOpened != 1 || snap.ViewsClosed != 1 || snap.PeriodSelections["year"] != 1 {
		t.Errorf("unexpected metrics: %+v", snap)
	}
}

func TestViewPeriod_InvalidBody(t *testing.T) {
	env := newEnv(t, handler.Options{})

	var view struct {
		ID string `json:"id"`
	}
	decodeJSON(t, env.do(httptest.NewRequest(http.MethodPost, "/v1/views", nil)), &view)

	tests := map[string]string{
		"malformed": `{"period":`,
		"unknown":   `{"period":"decade"}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			rec := env.do(httptest.NewRequest(http.MethodPut, "/v1/views/"+view.ID+"/period", strings.NewReader(body)))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})
	}
}

// --- Auth ---

func TestAuthRequired(t *testing.T) {
	env := newEnv(t, handler.Options{AuthRequired: true})
	token, err := env.sessions.Sign("user-1", "coach@example.com", "authenticated", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if rec := env.do(httptest.NewRequest(http.MethodGet, "/v1/comparison", nil)); rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: expected 401, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/comparison", nil)
	req.Header.Set("Authorization", "Token abc")
	if rec := env.do(req); rec.Code != http.StatusUnauthorized {
		t.Errorf("bad scheme: expected 401, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/comparison", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	if rec := env.do(req); rec.Code != http.StatusOK {
		t.Errorf("bearer: expected 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: handler.SessionCookie, Value: token})
	if rec := env.do(req); rec.Code != http.StatusOK {
		t.Errorf("cookie: expected 200, got %d", rec.Code)
	}

	if rec := env.do(httptest.NewRequest(http.MethodGet, "/auth/callback", nil)); rec.Code != http.StatusOK {
		t.Errorf("callback must stay public, got %d", rec.Code)
	}
}

func TestSessionAuthMiddleware_InjectsSession(t *testing.T) {
	verifier := service.NewSessionVerifier("test-secret")
	token, err := verifier.Sign("user-7", "setter@example.com", "authenticated", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	var got *domain.Session
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = handler.SessionFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	mw := handler.SessionAuthMiddleware(verifier, zap.NewNop())(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got == nil || got.Subject != "user-7" || got.Email != "setter@example.com" {
		t.Errorf("unexpected session %+v", got)
	}
	if handler.SessionFromContext(context.Background()) != nil {
		t.Error("expected no session outside the middleware")
	}
}

func TestAuthCallback(t *testing.T) {
	env := newEnv(t, handler.Options{})

	rec := env.do(httptest.NewRequest(http.MethodGet, "/auth/callback", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Vérification en cours...") || !strings.Contains(body, "<noscript>") {
		t.Error("expected the redirect screen with a noscript fallback")
	}

	rec = env.do(httptest.NewRequest(http.MethodGet, "/auth/callback?access_token=garbage", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("invalid token: expected 401, got %d", rec.Code)
	}

	token, _ := env.sessions.Sign("user-1", "", "", time.Hour)
	rec = env.do(httptest.NewRequest(http.MethodGet, "/auth/callback?access_token="+token, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token: expected 200, got %d", rec.Code)
	}
	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == handler.SessionCookie {
			session = c
		}
	}
	if session == nil || session.Value != token || !session.HttpOnly {
		t.Errorf("expected HttpOnly session cookie, got %+v", session)
	}
}

func TestAuthEvents_NavigatesOnce(t *testing.T) {
	env := newEnv(t, handler.Options{})

	rec := env.do(httptest.NewRequest(http.MethodGet, "/auth/callback/events", nil))
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("unexpected content type %q", ct)
	}
	body := rec.Body.String()
	if body != "event: navigate\ndata: /\n\n" {
		t.Errorf("unexpected stream %q", body)
	}
	if env.metrics.GetDashboardSnapshot().RedirectsIssued != 1 {
		t.Error("expected one issued redirect")
	}
}

func TestAuthEvents_ClientGoneCancels(t *testing.T) {
	env := newEnv(t, handler.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/auth/callback/events", nil).WithContext(ctx)
	rec := env.do(req)

	if strings.Contains(rec.Body.String(), "event:") {
		t.Errorf("expected no navigation, got %q", rec.Body.String())
	}
	time.Sleep(30 * time.Millisecond)
	snap := env.metrics.GetDashboardSnapshot()
	if snap.RedirectsCanceled != 1 || snap.RedirectsIssued != 0 {
		t.Errorf("unexpected redirect counters: %+v", snap)
	}
}

func TestDevSessionToken(t *testing.T) {
	off := newEnv(t, handler.Options{})
	if rec := off.do(httptest.NewRequest(http.MethodPost, "/v1/dev/session-token", nil)); rec.Code != http.StatusNotFound && rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("dev tools disabled: expected 404/405, got %d", rec.Code)
	}

	env := newEnv(t, handler.Options{DevTools: true})
	rec := env.do(httptest.NewRequest(http.MethodPost, "/v1/dev/session-token?sub=coach", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]string
	decodeJSON(t, rec, &resp)
	s, err := env.sessions.Verify(resp["accessToken"])
	if err != nil || s.Subject != "coach" {
		t.Errorf("issued token does not verify: %v %+v", err, s)
	}
}

func TestDashboardMetricsEndpoint(t *testing.T) {
	env := newEnv(t, handler.Options{})
	env.do(httptest.NewRequest(http.MethodGet, "/v1/summaries/month", nil))
	env.do(httptest.NewRequest(http.MethodGet, "/v1/summaries/month", nil))

	var snap domain.DashboardMetrics
	decodeJSON(t, env.do(httptest.NewRequest(http.MethodGet, "/v1/metrics/dashboard", nil)), &snap)
	if snap.CacheHits < 1 || snap.CacheMisses < 1 {
		t.Errorf("expected cache activity, got %+v", snap)
	}
}
