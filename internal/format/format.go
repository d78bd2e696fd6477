// Package format renders amounts, margins and deltas for display.
package format

import (
	"strings"

	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/domain"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter formats values for one locale.
type Formatter struct {
	tag     language.Tag
	printer *message.Printer
	suffix  bool // currency symbol after the amount
}

// New returns a formatter for a BCP 47 locale ("fr", "en-US").
// Unparsable locales fall back to French.
func New(locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.French
	}
	base, _ := tag.Base()
	return &Formatter{
		tag:     tag,
		printer: message.NewPrinter(tag),
		suffix:  base.String() != "en",
	}
}

// Locale returns the formatter's language tag.
func (f *Formatter) Locale() string {
	return f.tag.String()
}

// Number formats d with the locale's grouping, dropping a zero fraction.
func (f *Formatter) Number(d decimal.Decimal) string {
	if d.Equal(d.Truncate(0)) {
		return f.printer.Sprintf("%d", d.IntPart())
	}
	return f.printer.Sprintf("%.2f", d.InexactFloat64())
}

// Currency formats d as a euro amount, e.g. "15 000 €" or "€15,000".
func (f *Formatter) Currency(d decimal.Decimal) string {
	n := f.Number(d.Abs())
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	if f.suffix {
		return sign + n + " €"
	}
	return sign + "€" + n
}

// Count formats an integer count with grouping.
func (f *Formatter) Count(n int) string {
	return f.printer.Sprintf("%d", n)
}

// Percent formats d with one decimal, e.g. "37.5%".
func (f *Formatter) Percent(d decimal.Decimal) string {
	return d.Round(1).String() + "%"
}

// Margin formats a margin, "43.3%" or "N/A".
func (f *Formatter) Margin(m domain.Margin) string {
	return m.String()
}

// Delta formats a signed evolution, e.g. "+12%" or "-5%".
func (f *Formatter) Delta(d decimal.Decimal) string {
	s := d.Round(1).String()
	if d.IsPositive() && !strings.HasPrefix(s, "+") {
		s = "+" + s
	}
	return s + "%"
}
