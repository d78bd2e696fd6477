package supabase

import (
	"encoding/json"
	"fmt"

	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ============================================================
// Row mapping (PostgREST JSON → domain)
// ============================================================

// parseAmount accepts a JSON number or a quoted decimal string.
func parseAmount(raw json.RawMessage) (decimal.Decimal, error) {
	var d decimal.Decimal
	if len(raw) == 0 || string(raw) == "null" {
		return d, fmt.Errorf("missing amount")
	}
	if err := d.UnmarshalJSON(raw); err != nil {
		return d, err
	}
	return d, nil
}

// buildCategories assembles category rows and line item rows into
// entries. Entries with an unknown category key or an unparsable amount
// are skipped with a warning.
func buildCategories(period domain.Period, cats []categoryRow, items []lineItemRow, logger *zap.Logger) []domain.CategoryExpense {
	byCategory := make(map[string][]lineItemRow, len(cats))
	for _, li := range items {
		byCategory[li.Category] = append(byCategory[li.Category], li)
	}

	entries := make([]domain.CategoryExpense, 0, len(cats))
	seen := make(map[domain.ExpenseCategory]bool, len(cats))

next:
	for _, row := range cats {
		cat, err := domain.ParseExpenseCategory(row.Category)
		if err != nil {
			logger.Warn("supabase: skipping unknown expense category",
				zap.String("period", period.Key()), zap.String("category", row.Category))
			continue
		}
		if seen[cat] {
			logger.Warn("supabase: skipping duplicate expense category",
				zap.String("period", period.Key()), zap.String("category", row.Category))
			continue
		}
		total, err := parseAmount(row.Total)
		if err != nil {
			logger.Warn("supabase: skipping expense category with malformed total",
				zap.String("period", period.Key()), zap.String("category", row.Category), zap.Error(err))
			continue
		}

		ce := domain.CategoryExpense{Category: cat, Total: total}
		for _, li := range byCategory[row.Category] {
			v, err := parseAmount(li.Value)
			if err != nil {
				logger.Warn("supabase: skipping expense category with malformed line item",
					zap.String("period", period.Key()),
					zap.String("category", row.Category),
					zap.String("label", li.Label),
					zap.Error(err),
				)
				continue next
			}
			ce.LineItems = append(ce.LineItems, domain.LineItem{Label: li.Label, Value: v})
		}
		seen[cat] = true
		entries = append(entries, ce)
	}
	return entries
}
