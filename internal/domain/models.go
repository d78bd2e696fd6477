package domain

import "github.com/shopspring/decimal"

// ============================================================
// Dashboard projections (what the views render)
// ============================================================

// Trend is the direction arrow of a KPI card.
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
)

// TrendOf returns up for a strictly positive delta, down otherwise.
func TrendOf(delta decimal.Decimal) Trend {
	if delta.IsPositive() {
		return TrendUp
	}
	return TrendDown
}

// KPICard is one of the three headline cards.
type KPICard struct {
	Key       string          `json:"key"`
	Title     string          `json:"title"`
	Value     decimal.Decimal `json:"value"`
	Evolution decimal.Decimal `json:"evolution"`
	Trend     Trend           `json:"trend"`
}

// RevenueDetail is the revenue breakdown card.
type RevenueDetail struct {
	Direct        decimal.Decimal `json:"direct"`
	SalesCount    int             `json:"salesCount"`
	AverageBasket decimal.Decimal `json:"averageBasket"`
	Upsell        decimal.Decimal `json:"upsell"`
	UpsellRate    decimal.Decimal `json:"upsellRate"`
	Total         decimal.Decimal `json:"total"`
}

// ExpensePanel is the expense breakdown as shown for a period.
// When Detailed is false only Total and Note are meaningful.
type ExpensePanel struct {
	Period   Period              `json:"period"`
	Detailed bool                `json:"detailed"`
	Entries  []ExpensePanelEntry `json:"entries,omitempty"`
	Total    decimal.Decimal     `json:"total"`
	Note     string              `json:"note,omitempty"`
}

// ExpensePanelEntry is one category row. LineItems is empty when collapsed.
type ExpensePanelEntry struct {
	Category   ExpenseCategory `json:"category"`
	Label      string          `json:"label"`
	ColorToken string          `json:"colorToken"`
	Total      decimal.Decimal `json:"total"`
	Expanded   bool            `json:"expanded"`
	LineItems  []LineItem      `json:"lineItems,omitempty"`
}

// ComparisonColumn holds one period of the comparative table.
type ComparisonColumn struct {
	Period    Period          `json:"period"`
	Label     string          `json:"label"`
	Available bool            `json:"available"`
	Revenue   decimal.Decimal `json:"revenue"`
	Expenses  decimal.Decimal `json:"expenses"`
	Profit    decimal.Decimal `json:"profit"`
	Margin    Margin          `json:"margin"`
}

// ComparisonTable is the revenue/expenses/profit/margin × period table.
type ComparisonTable struct {
	Columns []ComparisonColumn `json:"columns"`
}

// Column returns the column of period p.
func (t ComparisonTable) Column(p Period) (ComparisonColumn, bool) {
	for _, c := range t.Columns {
		if c.Period == p {
			return c, true
		}
	}
	return ComparisonColumn{}, false
}

// Dashboard is the full projection of a view state.
// Summary is nil (and NoData true) when the period has no record.
type Dashboard struct {
	View         ViewState           `json:"view"`
	NoData       bool                `json:"noData"`
	Summary      *FinancialSummary   `json:"summary,omitempty"`
	Margin       Margin              `json:"margin"`
	KPIs         []KPICard           `json:"kpis,omitempty"`
	Revenue      *RevenueDetail      `json:"revenue,omitempty"`
	Expenses     *ExpensePanel       `json:"expenses,omitempty"`
	Evolution    []EvolutionPoint    `json:"evolution"`
	Distribution []DistributionSlice `json:"distribution"`
	Comparison   ComparisonTable     `json:"comparison"`
}
