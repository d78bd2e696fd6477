package domain

import (
	"encoding/json"
	"time"
)

// ============================================================
// Transient view state
// ============================================================

// CategoryFlags holds the expand/collapse flag of every category.
type CategoryFlags [categoryCount]bool

// DefaultCategoryFlags returns the initial flags: only personnel expanded.
func DefaultCategoryFlags() CategoryFlags {
	var f CategoryFlags
	f[CategoryPersonnel] = true
	return f
}

// Toggle flips the flag of c. Other categories are untouched.
func (f *CategoryFlags) Toggle(c ExpenseCategory) {
	if !c.Valid() {
		return
	}
	f[c] = !f[c]
}

// IsExpanded reports whether c is expanded.
func (f CategoryFlags) IsExpanded(c ExpenseCategory) bool {
	if !c.Valid() {
		return false
	}
	return f[c]
}

// MarshalJSON renders the flags as {"personnel":true,...}.
func (f CategoryFlags) MarshalJSON() ([]byte, error) {
	m := make(map[string]bool, categoryCount)
	for c := ExpenseCategory(0); c < categoryCount; c++ {
		m[c.Key()] = f[c]
	}
	return json.Marshal(m)
}

// ViewState is the per-viewer selection of a mounted dashboard.
type ViewState struct {
	ID        string        `json:"id"`
	Period    Period        `json:"period"`
	Expanded  CategoryFlags `json:"expanded"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// DefaultViewState returns the state of a freshly mounted dashboard.
func DefaultViewState(id string, now time.Time) ViewState {
	return ViewState{
		ID:        id,
		Period:    PeriodMonth,
		Expanded:  DefaultCategoryFlags(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SelectPeriod changes the selected period. Expanded flags are kept.
func (v *ViewState) SelectPeriod(p Period) error {
	if !p.Valid() {
		return &ErrValidation{Field: "period", Message: "unknown period"}
	}
	v.Period = p
	return nil
}

// ToggleCategory flips the expanded flag of c.
func (v *ViewState) ToggleCategory(c ExpenseCategory) error {
	if !c.Valid() {
		return &ErrValidation{Field: "category", Message: "unknown expense category"}
	}
	v.Expanded.Toggle(c)
	return nil
}
