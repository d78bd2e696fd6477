package domain

import (
	"encoding/json"
	"strings"
)

// ============================================================
// Expense categories
// ============================================================

// ExpenseCategory is the closed set of expense groupings shown on the
// dashboard. The declaration order is the display order.
type ExpenseCategory int

const (
	CategoryPersonnel ExpenseCategory = iota
	CategorySubscriptions
	CategoryContractors
	CategoryPurchases
	CategoryOther

	categoryCount
)

type categoryInfo struct {
	key   string
	alias string
	label string
	color string
}

var categories = [categoryCount]categoryInfo{
	CategoryPersonnel:     {key: "personnel", alias: "personnel", label: "Personnel", color: "#3b82f6"},
	CategorySubscriptions: {key: "subscriptions", alias: "abonnements", label: "Abonnements", color: "#10b981"},
	CategoryContractors:   {key: "contractors", alias: "prestataires", label: "Prestataires", color: "#8b5cf6"},
	CategoryPurchases:     {key: "purchases", alias: "achats", label: "Achats", color: "#f59e0b"},
	CategoryOther:         {key: "other", alias: "autres", label: "Autres", color: "#ef4444"},
}

// AllExpenseCategories returns every category in display order.
func AllExpenseCategories() []ExpenseCategory {
	out := make([]ExpenseCategory, 0, categoryCount)
	for c := ExpenseCategory(0); c < categoryCount; c++ {
		out = append(out, c)
	}
	return out
}

// ParseExpenseCategory resolves a category key or its French alias.
func ParseExpenseCategory(s string) (ExpenseCategory, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for i, info := range categories {
		if info.key == key || info.alias == key {
			return ExpenseCategory(i), nil
		}
	}
	return 0, &ErrValidation{Field: "category", Message: "unknown expense category " + s}
}

// Valid reports whether c is a known category.
func (c ExpenseCategory) Valid() bool {
	return c >= 0 && c < categoryCount
}

// Key returns the canonical key, e.g. "subscriptions".
func (c ExpenseCategory) Key() string {
	if !c.Valid() {
		return ""
	}
	return categories[c].key
}

// Label returns the display name, e.g. "Abonnements".
func (c ExpenseCategory) Label() string {
	if !c.Valid() {
		return ""
	}
	return categories[c].label
}

// ColorToken returns the stable chart color of the category.
func (c ExpenseCategory) ColorToken() string {
	if !c.Valid() {
		return ""
	}
	return categories[c].color
}

func (c ExpenseCategory) String() string {
	return c.Key()
}

func (c ExpenseCategory) MarshalJSON() ([]byte, error) {
	if !c.Valid() {
		return nil, &ErrValidation{Field: "category", Message: "unknown expense category"}
	}
	return json.Marshal(c.Key())
}

func (c *ExpenseCategory) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return &ErrValidation{Field: "category", Message: "must be a string"}
	}
	parsed, err := ParseExpenseCategory(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
