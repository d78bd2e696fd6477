package format_test

import (
	"strings"
	"testing"

	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/domain"
	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/format"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCurrency_English(t *testing.T) {
	f := format.New("en")
	tests := map[string]string{
		"15000":   "€15,000",
		"175000":  "€175,000",
		"500":     "€500",
		"-1200":   "-€1,200",
		"1416.50": "€1,416.50",
	}
	for in, want := range tests {
		if got := f.Currency(d(in)); got != want {
			t.Errorf("Currency(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestCurrency_FrenchGroupsAndSuffixes(t *testing.T) {
	f := format.New("fr")
	got := f.Currency(d("15000"))
	if !strings.HasSuffix(got, " €") {
		t.Errorf("expected euro suffix, got %q", got)
	}
	if strings.HasPrefix(got, "15000") {
		t.Errorf("expected digit grouping, got %q", got)
	}
	if !strings.HasPrefix(got, "15") || !strings.Contains(got, "000") {
		t.Errorf("unexpected amount %q", got)
	}
}

func TestNew_FallsBackToFrench(t *testing.T) {
	if got := format.New("not a locale!").Locale(); got != "fr" {
		t.Errorf("expected fr fallback, got %s", got)
	}
}

func TestPercentAndDelta(t *testing.T) {
	f := format.New("fr")
	if got := f.Percent(d("37.5")); got != "37.5%" {
		t.Errorf("Percent = %q", got)
	}
	if got := f.Percent(d("35")); got != "35%" {
		t.Errorf("Percent = %q", got)
	}
	deltas := map[string]string{"12": "+12%", "-5": "-5%", "0": "0%", "2.25": "+2.3%"}
	for in, want := range deltas {
		if got := f.Delta(d(in)); got != want {
			t.Errorf("Delta(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestMargin(t *testing.T) {
	f := format.New("fr")
	if got := f.Margin(domain.MarginPercent(d("6500"), d("15000"))); got != "43.3%" {
		t.Errorf("Margin = %q", got)
	}
	if got := f.Margin(domain.MarginPercent(d("1"), decimal.Zero)); got != "N/A" {
		t.Errorf("Margin = %q", got)
	}
}

func TestCount(t *testing.T) {
	if got := format.New("en").Count(1200); got != "1,200" {
		t.Errorf("Count = %q", got)
	}
}
