package handler

import (
	"encoding/json"
	"net/http"

	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/domain"
	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// 1. Summaries & projections
// ============================================================

type summaryResponse struct {
	Summary *domain.FinancialSummary `json:"summary"`
	Margin  domain.Margin            `json:"margin"`
	KPIs    []domain.KPICard         `json:"kpis"`
	Revenue domain.RevenueDetail     `json:"revenue"`
}

func getSummaryHandler(finance *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/summaries/{period}")
		defer span.End()

		p, err := domain.ParsePeriod(chi.URLParam(r, "period"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.String("period", p.Key()))

		sum, err := finance.Summary(ctx, p)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, summaryResponse{
			Summary: sum,
			Margin:  sum.Margin(),
			KPIs:    finance.KPIs(sum),
			Revenue: finance.RevenueDetail(sum),
		})
	}
}

func getComparisonHandler(finance *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/comparison")
		defer span.End()

		table, err := finance.Comparison(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, table)
	}
}

func getEvolutionHandler(finance *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/evolution")
		defer span.End()

		pts, err := finance.Evolution(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"points": pts})
	}
}

func getDistributionHandler(finance *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/distribution")
		defer span.End()

		slices, err := finance.Distribution(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"slices": slices})
	}
}

// ============================================================
// 2. View sessions
// ============================================================

func openViewHandler(views *service.ViewSessions, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/views")
		defer span.End()

		writeJSON(w, http.StatusCreated, views.Open(ctx))
	}
}

func getViewHandler(views *service.ViewSessions, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/views/{viewId}")
		defer span.End()

		v, err := views.Get(ctx, chi.URLParam(r, "viewId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func selectViewPeriodHandler(views *service.ViewSessions, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/views/{viewId}/period")
		defer span.End()

		var req struct {
			Period string `json:"period"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		p, err := domain.ParsePeriod(req.Period)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		v, err := views.SelectPeriod(ctx, chi.URLParam(r, "viewId"), p)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func toggleViewCategoryHandler(views *service.ViewSessions, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/views/{viewId}/categories/{category}/toggle")
		defer span.End()

		c, err := domain.ParseExpenseCategory(chi.URLParam(r, "category"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		v, err := views.ToggleCategory(ctx, chi.URLParam(r, "viewId"), c)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func closeViewHandler(views *service.ViewSessions, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/views/{viewId}")
		defer span.End()

		views.Close(ctx, chi.URLParam(r, "viewId"))
		w.WriteHeader(http.StatusNoContent)
	}
}

func getViewDashboardHandler(finance *service.FinanceService, views *service.ViewSessions, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/views/{viewId}/dashboard")
		defer span.End()

		v, err := views.Get(ctx, chi.URLParam(r, "viewId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		d, err := finance.BuildDashboard(ctx, v)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, d)
	}
}
