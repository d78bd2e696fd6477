package handler

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/domain"
	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ViewCookie identifies the viewer's dashboard session.
const ViewCookie = "dashboard_view"

// ============================================================
// Dashboard page: GET /
// ============================================================

func dashboardPageHandler(svc Services, tmpl *template.Template, opts Options, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /")
		defer span.End()

		view := currentView(w, r, svc.Views, opts)
		span.SetAttributes(attribute.String("view_id", view.ID), attribute.String("period", view.Period.Key()))
		if session := SessionFromContext(ctx); session != nil {
			span.SetAttributes(attribute.String("subject", session.Subject))
			logger.Debug("dashboard requested",
				zap.String("subject", session.Subject),
				zap.String("view_id", view.ID),
			)
		}

		d, err := svc.Finance.BuildDashboard(ctx, view)
		if err != nil {
			logger.Error("failed to build dashboard", zap.String("view_id", view.ID), zap.Error(err))
			http.Error(w, http.StatusText(statusFor(err)), statusFor(err))
			return
		}

		var buf bytes.Buffer
		if err := tmpl.ExecuteTemplate(&buf, "dashboard.html", svc.Presenter.page(d)); err != nil {
			logger.Error("failed to render dashboard", zap.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
	}
}

// ============================================================
// Form actions: POST /dashboard/...
// ============================================================

func selectPeriodFormHandler(views *service.ViewSessions, opts Options, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /dashboard/period")
		defer span.End()

		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		p, err := domain.ParsePeriod(r.PostFormValue("period"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		view := currentView(w, r, views, opts)
		if _, err := views.SelectPeriod(ctx, view.ID, p); err != nil {
			logger.Warn("period selection failed", zap.String("view_id", view.ID), zap.Error(err))
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func toggleCategoryFormHandler(views *service.ViewSessions, opts Options, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /dashboard/categories/{category}/toggle")
		defer span.End()

		c, err := domain.ParseExpenseCategory(chi.URLParam(r, "category"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		view := currentView(w, r, views, opts)
		if _, err := views.ToggleCategory(ctx, view.ID, c); err != nil {
			logger.Warn("category toggle failed", zap.String("view_id", view.ID), zap.Error(err))
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// currentView returns the viewer's session, opening a new one (and
// setting its cookie) when the cookie is missing or the session expired.
func currentView(w http.ResponseWriter, r *http.Request, views *service.ViewSessions, opts Options) domain.ViewState {
	if c, err := r.Cookie(ViewCookie); err == nil && c.Value != "" {
		if v, err := views.Get(r.Context(), c.Value); err == nil {
			return v
		}
	}
	v := views.Open(r.Context())
	http.SetCookie(w, &http.Cookie{
		Name:     ViewCookie,
		Value:    v.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return v
}
