// Package fixtures is the compiled-in financial dataset of the dashboard.
// It is the default data source and the seed of the SQLite store.
package fixtures

import (
	"context"

	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/domain"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("fixtures")

// Source serves the static dataset. Every call returns a fresh copy.
type Source struct{}

// NewSource creates the static data source.
func NewSource() *Source {
	return &Source{}
}

// Name identifies the source in logs and health checks.
func (s *Source) Name() string { return "static" }

// Summary returns the record of the given period.
func (s *Source) Summary(ctx context.Context, period domain.Period) (*domain.FinancialSummary, error) {
	_, span := tracer.Start(ctx, "Fixtures.Summary")
	defer span.End()
	span.SetAttributes(attribute.String("period", period.Key()))

	if !period.Valid() {
		return nil, &domain.ErrValidation{Field: "period", Message: "unknown period"}
	}
	for _, sum := range Summaries() {
		if sum.Period == period {
			return sum, nil
		}
	}
	return nil, &domain.ErrNoData{Period: period}
}

// Evolution returns the 12-month series.
func (s *Source) Evolution(ctx context.Context) ([]domain.EvolutionPoint, error) {
	_, span := tracer.Start(ctx, "Fixtures.Evolution")
	defer span.End()
	return EvolutionSeries(), nil
}

// ============================================================
// Dataset
// ============================================================

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func items(pairs ...any) []domain.LineItem {
	out := make([]domain.LineItem, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, domain.LineItem{
			Label: pairs[i].(string),
			Value: dec(int64(pairs[i+1].(int))),
		})
	}
	return out
}

// Summaries returns the three period records: month, half-year, year.
// Only the month carries the categorized expense breakdown.
func Summaries() []*domain.FinancialSummary {
	return []*domain.FinancialSummary{
		{
			Period:        domain.PeriodMonth,
			RevenueDirect: dec(12000),
			RevenueUpsell: dec(3000),
			RevenueTotal:  dec(15000),
			SalesCount:    8,
			AverageBasket: dec(1500),
			UpsellRate:    decimal.RequireFromString("37.5"),
			ExpensesTotal: dec(8500),
			Profit:        dec(6500),
			Evolution:     domain.Evolution{Revenue: dec(12), Expenses: dec(5), Profit: dec(23)},
			Expenses: &domain.ExpenseBreakdown{Categories: []domain.CategoryExpense{
				{
					Category:  domain.CategoryPersonnel,
					Total:     dec(3500),
					LineItems: items("Salaires", 3000, "Sous-traitance", 500),
				},
				{
					Category:  domain.CategorySubscriptions,
					Total:     dec(1200),
					LineItems: items("Abonnement 1", 300, "Abonnement 2", 450, "Abonnement 3", 250, "Abonnement 4", 200),
				},
				{
					Category:  domain.CategoryContractors,
					Total:     dec(1800),
					LineItems: items("Prestataire 1", 800, "Prestataire 2", 600, "Prestataire 3", 400),
				},
				{
					Category:  domain.CategoryPurchases,
					Total:     dec(1500),
					LineItems: items("Achat 1", 800, "Achat 2", 400, "Achat 3", 300),
				},
				{
					Category:  domain.CategoryOther,
					Total:     dec(500),
					LineItems: items("Tickets resto", 300, "Divers", 200),
				},
			}},
		},
		{
			Period:        domain.PeriodHalfYear,
			RevenueDirect: dec(68000),
			RevenueUpsell: dec(17000),
			RevenueTotal:  dec(85000),
			SalesCount:    48,
			AverageBasket: dec(1416),
			UpsellRate:    decimal.RequireFromString("33.3"),
			ExpensesTotal: dec(48000),
			Profit:        dec(37000),
			Evolution:     domain.Evolution{Revenue: dec(15), Expenses: dec(8), Profit: dec(28)},
		},
		{
			Period:        domain.PeriodYear,
			RevenueDirect: dec(140000),
			RevenueUpsell: dec(35000),
			RevenueTotal:  dec(175000),
			SalesCount:    96,
			AverageBasket: dec(1458),
			UpsellRate:    dec(35),
			ExpensesTotal: dec(98000),
			Profit:        dec(77000),
			Evolution:     domain.Evolution{Revenue: dec(18), Expenses: dec(10), Profit: dec(32)},
		},
	}
}

// EvolutionSeries returns the monthly revenue/expenses points, Jan to Déc.
func EvolutionSeries() []domain.EvolutionPoint {
	raw := []struct {
		label             string
		revenue, expenses int64
	}{
		{"Jan", 12000, 7500},
		{"Fév", 13500, 8000},
		{"Mar", 14000, 8200},
		{"Avr", 13000, 7800},
		{"Mai", 15000, 8500},
		{"Juin", 16000, 8700},
		{"Juil", 14500, 8300},
		{"Aoû", 13000, 7900},
		{"Sep", 15500, 8600},
		{"Oct", 16500, 8800},
		{"Nov", 17000, 9000},
		{"Déc", 15000, 8500},
	}
	out := make([]domain.EvolutionPoint, 0, len(raw))
	for _, r := range raw {
		out = append(out, domain.EvolutionPoint{
			Label:    r.label,
			Revenue:  dec(r.revenue),
			Expenses: dec(r.expenses),
		})
	}
	return out
}
