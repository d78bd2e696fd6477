// Package service holds the dashboard use cases: period summaries and
// their projections, view sessions, the post-login redirect and session
// verification.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/domain"
	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/infra/observability"
	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/port"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("service/finance")

// DetailNote is shown instead of the category breakdown for periods that
// only carry aggregate expenses.
const DetailNote = "Vue détaillée disponible pour la période mensuelle"

const evolutionCacheKey = "evolution"

// FinanceService reads summaries from a FinancialSource and derives the
// dashboard projections from them.
type FinanceService struct {
	source  port.FinancialSource
	cache   port.Cache[any]
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewFinanceService creates the finance service with all dependencies injected.
func NewFinanceService(
	source port.FinancialSource,
	cache port.Cache[any],
	metrics *observability.Metrics,
	logger *zap.Logger,
) *FinanceService {
	return &FinanceService{
		source:  source,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

// SourceName returns the name of the configured data source.
func (s *FinanceService) SourceName() string {
	return s.source.Name()
}

// Ping probes the data source when it supports health checks.
func (s *FinanceService) Ping(ctx context.Context) error {
	if p, ok := s.source.(port.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// ============================================================
// Period summaries
// ============================================================

// Summary returns the record of period. A missing record yields
// *domain.ErrNoData; cached summaries are shared and must not be mutated.
func (s *FinanceService) Summary(ctx context.Context, period domain.Period) (*domain.FinancialSummary, error) {
	ctx, span := tracer.Start(ctx, "FinanceService.Summary")
	defer span.End()
	span.SetAttributes(attribute.String("period", period.Key()))

	if !period.Valid() {
		return nil, &domain.ErrValidation{Field: "period", Message: "must be one of month, half-year, year"}
	}

	cacheKey := fmt.Sprintf("summary:%s", period.Key())
	if cached, ok := s.cache.Get(cacheKey); ok {
		if sum, ok := cached.(*domain.FinancialSummary); ok {
			s.metrics.IncrCacheHit("summary")
			return sum, nil
		}
	}
	s.metrics.IncrCacheMiss("summary")

	start := time.Now()
	sum, err := s.source.Summary(ctx, period)
	s.metrics.RecordRequestDuration("source.summary", time.Since(start))
	if err != nil {
		var nd *domain.ErrNoData
		if errors.As(err, &nd) {
			s.logger.Info("no financial data for period", zap.String("period", period.Key()))
			return nil, err
		}
		s.logger.Error("failed to load financial summary",
			zap.String("period", period.Key()),
			zap.String("source", s.source.Name()),
			zap.Error(err),
		)
		s.metrics.IncrSourceError(s.source.Name())
		return nil, fmt.Errorf("summary fetch: %w", err)
	}

	s.cache.Set(cacheKey, sum)
	return sum, nil
}

// Evolution returns the monthly series. It does not depend on the
// selected period.
func (s *FinanceService) Evolution(ctx context.Context) ([]domain.EvolutionPoint, error) {
	ctx, span := tracer.Start(ctx, "FinanceService.Evolution")
	defer span.End()

	if cached, ok := s.cache.Get(evolutionCacheKey); ok {
		if pts, ok := cached.([]domain.EvolutionPoint); ok {
			s.metrics.IncrCacheHit("evolution")
			return pts, nil
		}
	}
	s.metrics.IncrCacheMiss("evolution")

	pts, err := s.source.Evolution(ctx)
	if err != nil {
		s.logger.Error("failed to load evolution series",
			zap.String("source", s.source.Name()),
			zap.Error(err),
		)
		s.metrics.IncrSourceError(s.source.Name())
		return nil, fmt.Errorf("evolution fetch: %w", err)
	}

	s.cache.Set(evolutionCacheKey, pts)
	return pts, nil
}

// ============================================================
// Projections
// ============================================================

// KPIs builds the three headline cards of a summary.
func (s *FinanceService) KPIs(sum *domain.FinancialSummary) []domain.KPICard {
	return []domain.KPICard{
		{
			Key:       "revenue",
			Title:     "Total Revenus (CA + Upsells)",
			Value:     sum.RevenueTotal,
			Evolution: sum.Evolution.Revenue,
			Trend:     domain.TrendOf(sum.Evolution.Revenue),
		},
		{
			Key:       "expenses",
			Title:     "Charges Totales",
			Value:     sum.ExpensesTotal,
			Evolution: sum.Evolution.Expenses,
			Trend:     domain.TrendOf(sum.Evolution.Expenses),
		},
		{
			Key:       "profit",
			Title:     fmt.Sprintf("Bénéfice Net (Marge: %s)", sum.Margin()),
			Value:     sum.Profit,
			Evolution: sum.Evolution.Profit,
			Trend:     domain.TrendOf(sum.Evolution.Profit),
		},
	}
}

// RevenueDetail builds the revenue breakdown card. Values are read
// directly from the summary.
func (s *FinanceService) RevenueDetail(sum *domain.FinancialSummary) domain.RevenueDetail {
	return domain.RevenueDetail{
		Direct:        sum.RevenueDirect,
		SalesCount:    sum.SalesCount,
		AverageBasket: sum.AverageBasket,
		Upsell:        sum.RevenueUpsell,
		UpsellRate:    sum.UpsellRate,
		Total:         sum.RevenueTotal,
	}
}

// ExpensePanel projects the expense breakdown of sum under flags. Line
// items are only included for expanded categories.
func (s *FinanceService) ExpensePanel(sum *domain.FinancialSummary, flags domain.CategoryFlags) domain.ExpensePanel {
	panel := domain.ExpensePanel{
		Period: sum.Period,
		Total:  sum.ExpensesTotal,
	}
	if !sum.HasCategories() {
		panel.Note = DetailNote
		return panel
	}

	panel.Detailed = true
	panel.Entries = make([]domain.ExpensePanelEntry, 0, len(sum.Expenses.Categories))
	for _, ce := range sum.Expenses.Categories {
		entry := domain.ExpensePanelEntry{
			Category:   ce.Category,
			Label:      ce.Category.Label(),
			ColorToken: ce.Category.ColorToken(),
			Total:      ce.Total,
			Expanded:   flags.IsExpanded(ce.Category),
		}
		if entry.Expanded {
			entry.LineItems = ce.LineItems
		}
		panel.Entries = append(panel.Entries, entry)
	}
	return panel
}

// Distribution projects the month's category totals into ring slices,
// in category order. It is empty when the month has no breakdown.
func (s *FinanceService) Distribution(ctx context.Context) ([]domain.DistributionSlice, error) {
	ctx, span := tracer.Start(ctx, "FinanceService.Distribution")
	defer span.End()

	sum, err := s.Summary(ctx, domain.PeriodMonth)
	if err != nil {
		var nd *domain.ErrNoData
		if errors.As(err, &nd) {
			return []domain.DistributionSlice{}, nil
		}
		return nil, err
	}
	return DistributionOf(sum), nil
}

// DistributionOf projects the category totals of sum into ring slices.
func DistributionOf(sum *domain.FinancialSummary) []domain.DistributionSlice {
	if !sum.HasCategories() {
		return []domain.DistributionSlice{}
	}

	total := sum.Expenses.Sum()
	slices := make([]domain.DistributionSlice, 0, len(sum.Expenses.Categories))
	for _, ce := range sum.Expenses.Categories {
		share := decimal.Zero
		if !total.IsZero() {
			share = ce.Total.Mul(decimal.NewFromInt(100)).DivRound(total, 1)
		}
		slices = append(slices, domain.DistributionSlice{
			Category:   ce.Category,
			Name:       ce.Category.Label(),
			Value:      ce.Total,
			ColorToken: ce.Category.ColorToken(),
			Share:      share,
		})
	}
	return slices
}

// Comparison loads the three periods concurrently and tabulates revenue,
// expenses, profit and margin. A period without data is flagged
// unavailable rather than failing the table.
func (s *FinanceService) Comparison(ctx context.Context) (domain.ComparisonTable, error) {
	ctx, span := tracer.Start(ctx, "FinanceService.Comparison")
	defer span.End()

	periods := domain.AllPeriods()
	columns := make([]domain.ComparisonColumn, len(periods))

	g, gCtx := errgroup.WithContext(ctx)
	for i, p := range periods {
		i, p := i, p
		g.Go(func() error {
			col := domain.ComparisonColumn{Period: p, Label: p.Label()}
			sum, err := s.Summary(gCtx, p)
			if err != nil {
				var nd *domain.ErrNoData
				if errors.As(err, &nd) {
					columns[i] = col
					return nil
				}
				return err
			}
			col.Available = true
			col.Revenue = sum.RevenueTotal
			col.Expenses = sum.ExpensesTotal
			col.Profit = sum.Profit
			col.Margin = sum.Margin()
			columns[i] = col
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.ComparisonTable{}, err
	}
	return domain.ComparisonTable{Columns: columns}, nil
}

// ============================================================
// Full dashboard
// ============================================================

// BuildDashboard assembles every projection of view concurrently.
func (s *FinanceService) BuildDashboard(ctx context.Context, view domain.ViewState) (*domain.Dashboard, error) {
	ctx, span := tracer.Start(ctx, "FinanceService.BuildDashboard")
	defer span.End()
	span.SetAttributes(attribute.String("period", view.Period.Key()))

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("dashboard", time.Since(start))
	}()

	d := &domain.Dashboard{View: view}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sum, err := s.Summary(gCtx, view.Period)
		if err != nil {
			var nd *domain.ErrNoData
			if errors.As(err, &nd) {
				d.NoData = true
				return nil
			}
			return err
		}
		panel := s.ExpensePanel(sum, view.Expanded)
		revenue := s.RevenueDetail(sum)
		d.Summary = sum
		d.Margin = sum.Margin()
		d.KPIs = s.KPIs(sum)
		d.Revenue = &revenue
		d.Expenses = &panel
		return nil
	})

	g.Go(func() error {
		pts, err := s.Evolution(gCtx)
		if err != nil {
			return err
		}
		d.Evolution = pts
		return nil
	})

	g.Go(func() error {
		slices, err := s.Distribution(gCtx)
		if err != nil {
			return err
		}
		d.Distribution = slices
		return nil
	})

	g.Go(func() error {
		table, err := s.Comparison(gCtx)
		if err != nil {
			return err
		}
		d.Comparison = table
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}
