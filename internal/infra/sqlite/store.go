// Package sqlite is the embedded SQL data source of the dashboard.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/domain"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

var tracer = otel.Tracer("sqlite")

// Store reads financial summaries from a SQLite database.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open creates (if needed) and migrates the database at dbPath.
func Open(dbPath string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("sqlite store ready", zap.String("path", dbPath))
	return &Store{db: db, logger: logger}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Name identifies the source in logs and health checks.
func (s *Store) Name() string { return "sqlite" }

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ============================================================
// Summaries
// ============================================================

const summaryQuery = `
SELECT revenue_direct, revenue_upsell, revenue_total, sales_count, average_basket,
       upsell_rate, expenses_total, profit, evolution_revenue, evolution_expenses, evolution_profit
FROM financial_summaries
WHERE period = ?`

// Summary returns the record of period, or *domain.ErrNoData.
func (s *Store) Summary(ctx context.Context, period domain.Period) (*domain.FinancialSummary, error) {
	ctx, span := tracer.Start(ctx, "SQLite.Summary")
	defer span.End()
	span.SetAttributes(attribute.String("period", period.Key()))

	if !period.Valid() {
		return nil, &domain.ErrValidation{Field: "period", Message: "unknown period"}
	}

	var raw summaryColumns
	err := s.db.QueryRowContext(ctx, summaryQuery, period.Key()).Scan(
		&raw.revenueDirect, &raw.revenueUpsell, &raw.revenueTotal, &raw.salesCount,
		&raw.averageBasket, &raw.upsellRate, &raw.expensesTotal, &raw.profit,
		&raw.evolutionRevenue, &raw.evolutionExpenses, &raw.evolutionProfit,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.ErrNoData{Period: period}
	}
	if err != nil {
		return nil, fmt.Errorf("query summary %s: %w", period.Key(), err)
	}

	sum, err := raw.summary(period)
	if err != nil {
		s.logger.Warn("malformed financial summary, treating period as empty",
			zap.String("period", period.Key()),
			zap.Error(err),
		)
		return nil, &domain.ErrNoData{Period: period}
	}

	entries, err := s.categories(ctx, period)
	if err != nil {
		return nil, err
	}
	sum.Expenses = domain.NewExpenseBreakdown(entries)

	if errs := sum.CheckConsistency(); len(errs) > 0 {
		s.logger.Warn("inconsistent financial summary",
			zap.String("period", period.Key()),
			zap.Errors("violations", errs),
		)
	}
	return sum, nil
}

// summaryColumns holds a financial_summaries row before parsing.
type summaryColumns struct {
	revenueDirect, revenueUpsell, revenueTotal string
	salesCount                                 string
	averageBasket, upsellRate                  string
	expensesTotal, profit                      string
	evolutionRevenue, evolutionExpenses        string
	evolutionProfit                            string
}

func (c summaryColumns) summary(period domain.Period) (*domain.FinancialSummary, error) {
	sum := &domain.FinancialSummary{Period: period}
	fields := []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"revenue_direct", c.revenueDirect, &sum.RevenueDirect},
		{"revenue_upsell", c.revenueUpsell, &sum.RevenueUpsell},
		{"revenue_total", c.revenueTotal, &sum.RevenueTotal},
		{"average_basket", c.averageBasket, &sum.AverageBasket},
		{"upsell_rate", c.upsellRate, &sum.UpsellRate},
		{"expenses_total", c.expensesTotal, &sum.ExpensesTotal},
		{"profit", c.profit, &sum.Profit},
		{"evolution_revenue", c.evolutionRevenue, &sum.Evolution.Revenue},
		{"evolution_expenses", c.evolutionExpenses, &sum.Evolution.Expenses},
		{"evolution_profit", c.evolutionProfit, &sum.Evolution.Profit},
	}
	for _, f := range fields {
		d, err := decimal.NewFromString(f.raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = d
	}

	n, err := strconv.Atoi(c.salesCount)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("sales_count: invalid value %q", c.salesCount)
	}
	sum.SalesCount = n
	return sum, nil
}

// categories loads the category totals and line items of a period.
// Malformed entries are skipped with a warning.
func (s *Store) categories(ctx context.Context, period domain.Period) ([]domain.CategoryExpense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, total FROM expense_categories WHERE period = ?`, period.Key())
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var entries []domain.CategoryExpense
	for rows.Next() {
		var key, rawTotal string
		if err := rows.Scan(&key, &rawTotal); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cat, err := domain.ParseExpenseCategory(key)
		if err != nil {
			s.logger.Warn("skipping unknown expense category",
				zap.String("period", period.Key()), zap.String("category", key))
			continue
		}
		total, err := decimal.NewFromString(rawTotal)
		if err != nil {
			s.logger.Warn("skipping expense category with malformed total",
				zap.String("period", period.Key()), zap.String("category", key), zap.Error(err))
			continue
		}
		entries = append(entries, domain.CategoryExpense{Category: cat, Total: total})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	kept := entries[:0]
	for _, ce := range entries {
		items, err := s.lineItems(ctx, period, ce.Category)
		if err != nil {
			var ve *domain.ErrValidation
			if errors.As(err, &ve) {
				s.logger.Warn("skipping expense category with malformed line item",
					zap.String("period", period.Key()), zap.String("category", ce.Category.Key()), zap.Error(err))
				continue
			}
			return nil, err
		}
		ce.LineItems = items
		kept = append(kept, ce)
	}
	return kept, nil
}

func (s *Store) lineItems(ctx context.Context, period domain.Period, cat domain.ExpenseCategory) ([]domain.LineItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT label, value FROM expense_line_items WHERE period = ? AND category = ? ORDER BY position, id`,
		period.Key(), cat.Key())
	if err != nil {
		return nil, fmt.Errorf("query line items: %w", err)
	}
	defer rows.Close()

	var items []domain.LineItem
	for rows.Next() {
		var label, raw string
		if err := rows.Scan(&label, &raw); err != nil {
			return nil, fmt.Errorf("scan line item: %w", err)
		}
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, &domain.ErrValidation{Field: "value", Message: fmt.Sprintf("line item %q: %v", label, err)}
		}
		items = append(items, domain.LineItem{Label: label, Value: v})
	}
	return items, rows.Err()
}

// ============================================================
// Evolution
// ============================================================

// Evolution returns the monthly series ordered by position.
func (s *Store) Evolution(ctx context.Context) ([]domain.EvolutionPoint, error) {
	ctx, span := tracer.Start(ctx, "SQLite.Evolution")
	defer span.End()

	rows, err := s.db.QueryContext(ctx,
		`SELECT label, revenue, expenses FROM monthly_evolution ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query evolution: %w", err)
	}
	defer rows.Close()

	var points []domain.EvolutionPoint
	for rows.Next() {
		var p domain.EvolutionPoint
		if err := rows.Scan(&p.Label, &p.Revenue, &p.Expenses); err != nil {
			return nil, fmt.Errorf("scan evolution point: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evolution: %w", err)
	}
	return points, nil
}

// ============================================================
// Test and admin helpers
// ============================================================

// Exec runs a raw statement. Used to load alternative datasets.
func (s *Store) Exec(ctx context.Context, query string, args ...any) error {
	_, err := s.db.ExecContext(ctx, query, args...)
	return err
}
