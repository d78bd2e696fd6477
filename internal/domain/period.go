package domain

import (
	"encoding/json"
	"strings"
)

// ============================================================
// Reporting periods
// ============================================================

// Period is one of the three mutually exclusive reporting windows.
// The zero value is PeriodMonth, the default selection.
type Period int

const (
	PeriodMonth Period = iota
	PeriodHalfYear
	PeriodYear

	periodCount
)

var periodKeys = [periodCount]string{
	PeriodMonth:    "month",
	PeriodHalfYear: "half-year",
	PeriodYear:     "year",
}

var periodLabels = [periodCount]string{
	PeriodMonth:    "Mois",
	PeriodHalfYear: "Semestre",
	PeriodYear:     "Année",
}

// periodAliases maps the keys used by the original dashboard front-end.
var periodAliases = map[string]Period{
	"mois":     PeriodMonth,
	"semestre": PeriodHalfYear,
	"annee":    PeriodYear,
	"année":    PeriodYear,
}

// AllPeriods returns the periods in display order.
func AllPeriods() []Period {
	return []Period{PeriodMonth, PeriodHalfYear, PeriodYear}
}

// ParsePeriod resolves a period key (or one of its French aliases).
func ParsePeriod(s string) (Period, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for p, k := range periodKeys {
		if k == key {
			return Period(p), nil
		}
	}
	if p, ok := periodAliases[key]; ok {
		return p, nil
	}
	return 0, &ErrValidation{Field: "period", Message: "must be one of month, half-year, year"}
}

// Valid reports whether p is one of the three known periods.
func (p Period) Valid() bool {
	return p >= 0 && p < periodCount
}

// Key returns the canonical key, e.g. "half-year".
func (p Period) Key() string {
	if !p.Valid() {
		return ""
	}
	return periodKeys[p]
}

// Label returns the display label of the period.
func (p Period) Label() string {
	if !p.Valid() {
		return ""
	}
	return periodLabels[p]
}

func (p Period) String() string {
	return p.Key()
}

func (p Period) MarshalJSON() ([]byte, error) {
	if !p.Valid() {
		return nil, &ErrValidation{Field: "period", Message: "unknown period"}
	}
	return json.Marshal(p.Key())
}

func (p *Period) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return &ErrValidation{Field: "period", Message: "must be a string"}
	}
	parsed, err := ParsePeriod(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
