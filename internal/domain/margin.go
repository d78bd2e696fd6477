package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Margin is profit expressed as a percentage of total revenue.
// Applicable is false when total revenue is zero; Percent is then zero.
type Margin struct {
	Percent    decimal.Decimal
	Applicable bool
}

// MarginPercent returns round(profit / revenueTotal * 100, 1).
// A zero revenue yields a non-applicable margin instead of NaN or Inf.
func MarginPercent(profit, revenueTotal decimal.Decimal) Margin {
	if revenueTotal.IsZero() {
		return Margin{Percent: decimal.Zero}
	}
	pct := profit.Mul(hundred).DivRound(revenueTotal, 1)
	return Margin{Percent: pct, Applicable: true}
}

// String renders the margin as "43.3%" or "N/A".
func (m Margin) String() string {
	if !m.Applicable {
		return "N/A"
	}
	return m.Percent.StringFixed(1) + "%"
}

func (m Margin) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Percent    string `json:"percent"`
		Applicable bool   `json:"applicable"`
		Display    string `json:"display"`
	}{
		Percent:    m.Percent.StringFixed(1),
		Applicable: m.Applicable,
		Display:    m.String(),
	})
}
