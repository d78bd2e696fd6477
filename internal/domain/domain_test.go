package domain_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/domain"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in   string
		want domain.Period
	}{
		{"month", domain.PeriodMonth},
		{"half-year", domain.PeriodHalfYear},
		{"year", domain.PeriodYear},
		{"Mois", domain.PeriodMonth},
		{"semestre", domain.PeriodHalfYear},
		{"année", domain.PeriodYear},
		{" annee ", domain.PeriodYear},
	}
	for _, tt := range tests {
		got, err := domain.ParsePeriod(tt.in)
		if err != nil {
			t.Fatalf("ParsePeriod(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParsePeriod(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParsePeriod_Invalid(t *testing.T) {
	_, err := domain.ParsePeriod("quarter")
	var ve *domain.ErrValidation
	if !errors.As(err, &ve) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if ve.Field != "period" {
		t.Errorf("expected field 'period', got %q", ve.Field)
	}
}

func TestPeriod_JSON(t *testing.T) {
	b, err := json.Marshal(domain.PeriodHalfYear)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"half-year"` {
		t.Errorf("unexpected JSON %s", b)
	}

	var p domain.Period
	if err := json.Unmarshal([]byte(`"semestre"`), &p); err != nil {
		t.Fatal(err)
	}
	if p != domain.PeriodHalfYear {
		t.Errorf("expected half-year, got %v", p)
	}

	if _, err := json.Marshal(domain.Period(7)); err == nil {
		t.Error("expected error marshalling an unknown period")
	}
}

func TestExpenseCategory_Mapping(t *testing.T) {
	want := []struct {
		key, label, color string
	}{
		{"personnel", "Personnel", "#3b82f6"},
		{"subscriptions", "Abonnements", "#10b981"},
		{"contractors", "Prestataires", "#8b5cf6"},
		{"purchases", "Achats", "#f59e0b"},
		{"other", "Autres", "#ef4444"},
	}
	all := domain.AllExpenseCategories()
	if len(all) != len(want) {
		t.Fatalf("expected %d categories, got %d", len(want), len(all))
	}
	for i, c := range all {
		if c.Key() != want[i].key || c.Label() != want[i].label || c.ColorToken() != want[i].color {
			t.Errorf("category %d = (%s, %s, %s), want %+v", i, c.Key(), c.Label(), c.ColorToken(), want[i])
		}
	}
}

func TestParseExpenseCategory_FrenchAlias(t *testing.T) {
	c, err := domain.ParseExpenseCategory("abonnements")
	if err != nil {
		t.Fatal(err)
	}
	if c != domain.CategorySubscriptions {
		t.Errorf("expected subscriptions, got %v", c)
	}
	if _, err := domain.ParseExpenseCategory("marketing"); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestMarginPercent(t *testing.T) {
	tests := []struct {
		profit, revenue string
		want            string
	}{
		{"6500", "15000", "43.3%"},
		{"37000", "85000", "43.5%"},
		{"77000", "175000", "44.0%"},
		{"-500", "1000", "-50.0%"},
		{"1", "8", "12.5%"},
		{"1", "16", "6.3%"},
		{"444999999996", "10000000000000", "4.4%"},
		{"-444999999996", "10000000000000", "-4.4%"},
		{"445", "10000", "4.5%"},
	}
	for _, tt := range tests {
		m := domain.MarginPercent(d(tt.profit), d(tt.revenue))
		if !m.Applicable {
			t.Fatalf("margin %s/%s should be applicable", tt.profit, tt.revenue)
		}
		if m.String() != tt.want {
			t.Errorf("MarginPercent(%s, %s) = %s, want %s", tt.profit, tt.revenue, m, tt.want)
		}
	}
}

func TestMarginPercent_ZeroRevenue(t *testing.T) {
	m := domain.MarginPercent(d("-200"), decimal.Zero)
	if m.Applicable {
		t.Fatal("margin on zero revenue must not be applicable")
	}
	if !m.Percent.IsZero() {
		t.Errorf("expected zero percent, got %s", m.Percent)
	}
	if m.String() != "N/A" {
		t.Errorf("expected N/A, got %s", m)
	}

	b, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatal(err)
	}
	if out["applicable"] != false || out["display"] != "N/A" {
		t.Errorf("unexpected JSON %s", b)
	}
}

func validSummary() *domain.FinancialSummary {
	return &domain.FinancialSummary{
		Period:        domain.PeriodMonth,
		RevenueDirect: d("12000"),
		RevenueUpsell: d("3000"),
		RevenueTotal:  d("15000"),
		SalesCount:    8,
		ExpensesTotal: d("500"),
		Profit:        d("14500"),
		Expenses: &domain.ExpenseBreakdown{Categories: []domain.CategoryExpense{
			{Category: domain.CategoryOther, Total: d("500"), LineItems: []domain.LineItem{
				{Label: "Tickets resto", Value: d("300")},
				{Label: "Divers", Value: d("200")},
			}},
		}},
	}
}

func TestCheckConsistency_Valid(t *testing.T) {
	if errs := validSummary().CheckConsistency(); len(errs) != 0 {
		t.Fatalf("expected no violations, got %v", errs)
	}
}

func TestCheckConsistency_Violations(t *testing.T) {
	s := validSummary()
	s.RevenueTotal = d("15001")
	s.SalesCount = -1
	s.Expenses.Categories[0].LineItems[1].Value = d("100")

	errs := s.CheckConsistency()
	fields := map[string]bool{}
	for _, err := range errs {
		var ve *domain.ErrValidation
		if errors.As(err, &ve) {
			fields[ve.Field] = true
		}
	}
	for _, f := range []string{"revenueTotal", "profit", "salesCount", "expenseCategories.other"} {
		if !fields[f] {
			t.Errorf("expected violation on %s, got %v", f, errs)
		}
	}
}

func TestCategoryFlags_ToggleTwiceRestores(t *testing.T) {
	for _, c := range domain.AllExpenseCategories() {
		f := domain.DefaultCategoryFlags()
		before := f
		f.Toggle(c)
		if f.IsExpanded(c) == before.IsExpanded(c) {
			t.Errorf("toggle %s did not flip", c)
		}
		f.Toggle(c)
		if f != before {
			t.Errorf("double toggle of %s did not restore flags", c)
		}
	}
}

func TestCategoryFlags_ToggleIsolated(t *testing.T) {
	for _, a := range domain.AllExpenseCategories() {
		f := domain.DefaultCategoryFlags()
		before := f
		f.Toggle(a)
		for _, b := range domain.AllExpenseCategories() {
			if b == a {
				continue
			}
			if f.IsExpanded(b) != before.IsExpanded(b) {
				t.Errorf("toggling %s changed %s", a, b)
			}
		}
	}
}

func TestViewState_Default(t *testing.T) {
	v := domain.DefaultViewState("v1", time.Now())
	if v.Period != domain.PeriodMonth {
		t.Errorf("expected month, got %v", v.Period)
	}
	for _, c := range domain.AllExpenseCategories() {
		want := c == domain.CategoryPersonnel
		if v.Expanded.IsExpanded(c) != want {
			t.Errorf("category %s expanded=%v, want %v", c, v.Expanded.IsExpanded(c), want)
		}
	}
}

func TestViewState_PeriodSwitchKeepsFlags(t *testing.T) {
	v := domain.DefaultViewState("v1", time.Now())
	if err := v.ToggleCategory(domain.CategoryPurchases); err != nil {
		t.Fatal(err)
	}
	flags := v.Expanded

	for _, p := range []domain.Period{domain.PeriodHalfYear, domain.PeriodMonth} {
		if err := v.SelectPeriod(p); err != nil {
			t.Fatal(err)
		}
	}
	if v.Period != domain.PeriodMonth {
		t.Errorf("expected month, got %v", v.Period)
	}
	if v.Expanded != flags {
		t.Errorf("period switch changed flags: %v != %v", v.Expanded, flags)
	}
}

func TestViewState_RejectsUnknownValues(t *testing.T) {
	v := domain.DefaultViewState("v1", time.Now())
	if err := v.SelectPeriod(domain.Period(9)); err == nil {
		t.Error("expected error for unknown period")
	}
	if err := v.ToggleCategory(domain.ExpenseCategory(-1)); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestTrendOf(t *testing.T) {
	if domain.TrendOf(d("12")) != domain.TrendUp {
		t.Error("positive delta should trend up")
	}
	if domain.TrendOf(decimal.Zero) != domain.TrendDown {
		t.Error("zero delta should trend down")
	}
	if domain.TrendOf(d("-3")) != domain.TrendDown {
		t.Error("negative delta should trend down")
	}
}

func TestErrNoData_Message(t *testing.T) {
	err := &domain.ErrNoData{Period: domain.PeriodYear}
	if err.Error() != "no financial data for period year" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
