package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/domain"
	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/infra/resilience"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Financial summaries: financial_summaries, expense_categories,
// expense_line_items, monthly_evolution
// ============================================================

type summaryRow struct {
	Period            string          `json:"period"`
	RevenueDirect     decimal.Decimal `json:"revenue_direct"`
	RevenueUpsell     decimal.Decimal `json:"revenue_upsell"`
	RevenueTotal      decimal.Decimal `json:"revenue_total"`
	SalesCount        int             `json:"sales_count"`
	AverageBasket     decimal.Decimal `json:"average_basket"`
	UpsellRate        decimal.Decimal `json:"upsell_rate"`
	ExpensesTotal     decimal.Decimal `json:"expenses_total"`
	Profit            decimal.Decimal `json:"profit"`
	EvolutionRevenue  decimal.Decimal `json:"evolution_revenue"`
	EvolutionExpenses decimal.Decimal `json:"evolution_expenses"`
	EvolutionProfit   decimal.Decimal `json:"evolution_profit"`
}

type categoryRow struct {
	Category string          `json:"category"`
	Total    json.RawMessage `json:"total"`
}

type lineItemRow struct {
	Category string          `json:"category"`
	Label    string          `json:"label"`
	Value    json.RawMessage `json:"value"`
}

type evolutionRow struct {
	Label    string          `json:"label"`
	Revenue  decimal.Decimal `json:"revenue"`
	Expenses decimal.Decimal `json:"expenses"`
}

// Summary fetches the record of period with its expense breakdown.
func (c *Client) Summary(ctx context.Context, period domain.Period) (*domain.FinancialSummary, error) {
	ctx, span := tracer.Start(ctx, "Supabase.Summary")
	defer span.End()
	span.SetAttributes(attribute.String("period", period.Key()))

	if !period.Valid() {
		return nil, &domain.ErrValidation{Field: "period", Message: "unknown period"}
	}

	var summary *domain.FinancialSummary
	err := c.execute(ctx, "supabase/summaries", func() error {
		path := fmt.Sprintf("financial_summaries?period=eq.%s&limit=1", period.Key())
		body, err := c.doRequest(ctx, http.MethodGet, path)
		if err != nil {
			return err
		}
		if body == nil || string(body) == "[]" {
			return resilience.Permanent(&domain.ErrNoData{Period: period})
		}

		var rows []summaryRow
		if err := json.Unmarshal(body, &rows); err != nil {
			c.logger.Warn("supabase: malformed financial summary, treating period as empty",
				zap.String("period", period.Key()),
				zap.Error(err),
			)
			return resilience.Permanent(&domain.ErrNoData{Period: period})
		}
		if len(rows) == 0 {
			return resilience.Permanent(&domain.ErrNoData{Period: period})
		}

		cats, items, err := c.fetchBreakdown(ctx, period)
		if err != nil {
			return err
		}

		r := rows[0]
		summary = &domain.FinancialSummary{
			Period:        period,
			RevenueDirect: r.RevenueDirect,
			RevenueUpsell: r.RevenueUpsell,
			RevenueTotal:  r.RevenueTotal,
			SalesCount:    r.SalesCount,
			AverageBasket: r.AverageBasket,
			UpsellRate:    r.UpsellRate,
			ExpensesTotal: r.ExpensesTotal,
			Profit:        r.Profit,
			Evolution: domain.Evolution{
				Revenue:  r.EvolutionRevenue,
				Expenses: r.EvolutionExpenses,
				Profit:   r.EvolutionProfit,
			},
			Expenses: domain.NewExpenseBreakdown(buildCategories(period, cats, items, c.logger)),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if errs := summary.CheckConsistency(); len(errs) > 0 {
		c.logger.Warn("supabase: inconsistent financial summary",
			zap.String("period", period.Key()),
			zap.Errors("violations", errs),
		)
	}
	return summary, nil
}

func (c *Client) fetchBreakdown(ctx context.Context, period domain.Period) ([]categoryRow, []lineItemRow, error) {
	var cats []categoryRow
	body, err := c.doRequest(ctx, http.MethodGet,
		fmt.Sprintf("expense_categories?period=eq.%s&select=category,total", period.Key()))
	if err != nil {
		return nil, nil, err
	}
	if body != nil {
		if err := json.Unmarshal(body, &cats); err != nil {
			return nil, nil, resilience.Permanent(fmt.Errorf("decode expense categories: %w", err))
		}
	}
	if len(cats) == 0 {
		return nil, nil, nil
	}

	var items []lineItemRow
	body, err = c.doRequest(ctx, http.MethodGet,
		fmt.Sprintf("expense_line_items?period=eq.%s&select=category,label,value&order=position.asc", period.Key()))
	if err != nil {
		return nil, nil, err
	}
	if body != nil {
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, nil, resilience.Permanent(fmt.Errorf("decode expense line items: %w", err))
		}
	}
	return cats, items, nil
}

// Evolution fetches the monthly series ordered by position.
func (c *Client) Evolution(ctx context.Context) ([]domain.EvolutionPoint, error) {
	ctx, span := tracer.Start(ctx, "Supabase.Evolution")
	defer span.End()

	var points []domain.EvolutionPoint
	err := c.execute(ctx, "supabase/evolution", func() error {
		body, err := c.doRequest(ctx, http.MethodGet,
			"monthly_evolution?select=label,revenue,expenses&order=position.asc")
		if err != nil {
			return err
		}
		if body == nil {
			points = []domain.EvolutionPoint{}
			return nil
		}

		var rows []evolutionRow
		if err := json.Unmarshal(body, &rows); err != nil {
			return resilience.Permanent(fmt.Errorf("decode evolution: %w", err))
		}
		points = make([]domain.EvolutionPoint, 0, len(rows))
		for _, r := range rows {
			points = append(points, domain.EvolutionPoint{Label: r.Label, Revenue: r.Revenue, Expenses: r.Expenses})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return points, nil
}
