package domain

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// ============================================================
// Financial Summary (one record per reporting period)
// ============================================================

// FinancialSummary holds the headline figures of a reporting period.
// AverageBasket and UpsellRate are supplied as-is and never derived.
type FinancialSummary struct {
	Period        Period            `json:"period"`
	RevenueDirect decimal.Decimal   `json:"revenueDirect"`
	RevenueUpsell decimal.Decimal   `json:"revenueUpsell"`
	RevenueTotal  decimal.Decimal   `json:"revenueTotal"`
	SalesCount    int               `json:"salesCount"`
	AverageBasket decimal.Decimal   `json:"averageBasket"`
	UpsellRate    decimal.Decimal   `json:"upsellRate"`
	ExpensesTotal decimal.Decimal   `json:"expensesTotal"`
	Profit        decimal.Decimal   `json:"profit"`
	Evolution     Evolution         `json:"evolution"`
	Expenses      *ExpenseBreakdown `json:"expenseCategories,omitempty"`
}

// Evolution holds percentage deltas against the previous comparable period.
type Evolution struct {
	Revenue  decimal.Decimal `json:"revenue"`
	Expenses decimal.Decimal `json:"expenses"`
	Profit   decimal.Decimal `json:"profit"`
}

// ExpenseBreakdown lists category totals in category display order.
type ExpenseBreakdown struct {
	Categories []CategoryExpense `json:"categories"`
}

// CategoryExpense is the aggregate and detail of one expense category.
type CategoryExpense struct {
	Category  ExpenseCategory `json:"category"`
	Total     decimal.Decimal `json:"total"`
	LineItems []LineItem      `json:"lineItems"`
}

// LineItem is a single labelled expense.
type LineItem struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
}

// EvolutionPoint is one month of the revenue/expenses time series.
type EvolutionPoint struct {
	Label    string          `json:"label"`
	Revenue  decimal.Decimal `json:"revenue"`
	Expenses decimal.Decimal `json:"expenses"`
}

// DistributionSlice is one slice of the expense distribution ring.
type DistributionSlice struct {
	Category   ExpenseCategory `json:"category"`
	Name       string          `json:"name"`
	Value      decimal.Decimal `json:"value"`
	ColorToken string          `json:"colorToken"`
	Share      decimal.Decimal `json:"share"` // percentage of the distribution total, 1 decimal
}

// NewExpenseBreakdown orders entries by category display order.
// It returns nil when there is nothing to break down.
func NewExpenseBreakdown(entries []CategoryExpense) *ExpenseBreakdown {
	if len(entries) == 0 {
		return nil
	}
	out := make([]CategoryExpense, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return &ExpenseBreakdown{Categories: out}
}

// HasCategories reports whether categorized expense detail is available.
func (s *FinancialSummary) HasCategories() bool {
	return s.Expenses != nil && len(s.Expenses.Categories) > 0
}

// Category returns the breakdown of a single category, if present.
func (b *ExpenseBreakdown) Category(c ExpenseCategory) (CategoryExpense, bool) {
	if b == nil {
		return CategoryExpense{}, false
	}
	for _, ce := range b.Categories {
		if ce.Category == c {
			return ce, true
		}
	}
	return CategoryExpense{}, false
}

// Sum returns the total of all category totals.
func (b *ExpenseBreakdown) Sum() decimal.Decimal {
	total := decimal.Zero
	if b == nil {
		return total
	}
	for _, ce := range b.Categories {
		total = total.Add(ce.Total)
	}
	return total
}

// LineItemsSum returns the sum of the category's line item values.
func (ce CategoryExpense) LineItemsSum() decimal.Decimal {
	total := decimal.Zero
	for _, li := range ce.LineItems {
		total = total.Add(li.Value)
	}
	return total
}

// Margin returns the derived profit margin of the summary.
func (s *FinancialSummary) Margin() Margin {
	return MarginPercent(s.Profit, s.RevenueTotal)
}

// CheckConsistency reports every data invariant the record violates.
// A nil result means the record is internally consistent.
func (s *FinancialSummary) CheckConsistency() []error {
	var errs []error
	if !s.Period.Valid() {
		errs = append(errs, &ErrValidation{Field: "period", Message: "unknown period"})
	}
	if !s.RevenueDirect.Add(s.RevenueUpsell).Equal(s.RevenueTotal) {
		errs = append(errs, &ErrValidation{
			Field:   "revenueTotal",
			Message: fmt.Sprintf("%s != %s + %s", s.RevenueTotal, s.RevenueDirect, s.RevenueUpsell),
		})
	}
	if !s.RevenueTotal.Sub(s.ExpensesTotal).Equal(s.Profit) {
		errs = append(errs, &ErrValidation{
			Field:   "profit",
			Message: fmt.Sprintf("%s != %s - %s", s.Profit, s.RevenueTotal, s.ExpensesTotal),
		})
	}
	if s.SalesCount < 0 {
		errs = append(errs, &ErrValidation{Field: "salesCount", Message: "must not be negative"})
	}
	if !s.HasCategories() {
		return errs
	}
	for _, ce := range s.Expenses.Categories {
		if sum := ce.LineItemsSum(); !sum.Equal(ce.Total) {
			errs = append(errs, &ErrValidation{
				Field:   "expenseCategories." + ce.Category.Key(),
				Message: fmt.Sprintf("total %s != line items %s", ce.Total, sum),
			})
		}
	}
	if sum := s.Expenses.Sum(); !sum.Equal(s.ExpensesTotal) {
		errs = append(errs, &ErrValidation{
			Field:   "expenseCategories",
			Message: fmt.Sprintf("categories %s != expensesTotal %s", sum, s.ExpensesTotal),
		})
	}
	return errs
}
