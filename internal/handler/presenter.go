package handler

import (
	"html/template"

	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/domain"
	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/format"
	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/port"
)

// ============================================================
// Dashboard page view model
// ============================================================

// Presenter turns dashboard projections into display strings and charts.
type Presenter struct {
	fmt    *format.Formatter
	charts port.ChartRenderer
}

// NewPresenter creates a presenter for the given formatter and renderer.
func NewPresenter(f *format.Formatter, charts port.ChartRenderer) *Presenter {
	return &Presenter{fmt: f, charts: charts}
}

type dashboardPage struct {
	Locale            string
	Periods           []periodOption
	PeriodLabel       string
	NoData            bool
	KPIs              []kpiView
	Revenue           revenueView
	Expenses          expensesView
	EvolutionChart    template.HTML
	DistributionChart template.HTML
	Comparison        comparisonView
}

type periodOption struct {
	Key      string
	Label    string
	Selected bool
}

type kpiView struct {
	Key   string
	Title string
	Value string
	Delta string
	Trend string
}

type revenueView struct {
	Direct        string
	SalesCount    string
	AverageBasket string
	Upsell        string
	UpsellRate    string
	Total         string
}

type expensesView struct {
	Detailed bool
	Entries  []expenseEntryView
	Note     string
	Total    string
}

type expenseEntryView struct {
	Key       string
	Label     string
	Color     string
	Total     string
	Expanded  bool
	LineItems []lineItemView
}

type lineItemView struct {
	Label string
	Value string
}

type comparisonView struct {
	Headers []string
	Rows    []comparisonRow
}

type comparisonRow struct {
	Label string
	Cells []string
}

// page builds the template data of d.
func (p *Presenter) page(d *domain.Dashboard) dashboardPage {
	page := dashboardPage{
		Locale:            p.fmt.Locale(),
		PeriodLabel:       d.View.Period.Label(),
		NoData:            d.NoData,
		EvolutionChart:    p.charts.Area(d.Evolution),
		DistributionChart: p.charts.Ring(d.Distribution),
		Comparison:        p.comparison(d.Comparison),
	}
	for _, period := range domain.AllPeriods() {
		page.Periods = append(page.Periods, periodOption{
			Key:      period.Key(),
			Label:    period.Label(),
			Selected: period == d.View.Period,
		})
	}
	if d.NoData || d.Summary == nil {
		return page
	}

	for _, k := range d.KPIs {
		page.KPIs = append(page.KPIs, kpiView{
			Key:   k.Key,
			Title: k.Title,
			Value: p.fmt.Currency(k.Value),
			Delta: p.fmt.Delta(k.Evolution),
			Trend: string(k.Trend),
		})
	}

	if d.Revenue != nil {
		page.Revenue = revenueView{
			Direct:        p.fmt.Currency(d.Revenue.Direct),
			SalesCount:    p.fmt.Count(d.Revenue.SalesCount),
			AverageBasket: p.fmt.Currency(d.Revenue.AverageBasket),
			Upsell:        p.fmt.Currency(d.Revenue.Upsell),
			UpsellRate:    p.fmt.Percent(d.Revenue.UpsellRate),
			Total:         p.fmt.Currency(d.Revenue.Total),
		}
	}

	if d.Expenses != nil {
		page.Expenses = expensesView{
			Detailed: d.Expenses.Detailed,
			Note:     d.Expenses.Note,
			Total:    p.fmt.Currency(d.Expenses.Total),
		}
		for _, e := range d.Expenses.Entries {
			ev := expenseEntryView{
				Key:      e.Category.Key(),
				Label:    e.Label,
				Color:    e.ColorToken,
				Total:    p.fmt.Currency(e.Total),
				Expanded: e.Expanded,
			}
			for _, li := range e.LineItems {
				ev.LineItems = append(ev.LineItems, lineItemView{Label: li.Label, Value: p.fmt.Currency(li.Value)})
			}
			page.Expenses.Entries = append(page.Expenses.Entries, ev)
		}
	}
	return page
}

func (p *Presenter) comparison(t domain.ComparisonTable) comparisonView {
	v := comparisonView{
		Rows: []comparisonRow{
			{Label: "Revenus"},
			{Label: "Dépenses"},
			{Label: "Bénéfice"},
			{Label: "Marge (%)"},
		},
	}
	for _, col := range t.Columns {
		v.Headers = append(v.Headers, col.Label)
		if !col.Available {
			for i := range v.Rows {
				v.Rows[i].Cells = append(v.Rows[i].Cells, "—")
			}
			continue
		}
		v.Rows[0].Cells = append(v.Rows[0].Cells, p.fmt.Currency(col.Revenue))
		v.Rows[1].Cells = append(v.Rows[1].Cells, p.fmt.Currency(col.Expenses))
		v.Rows[2].Cells = append(v.Rows[2].Cells, p.fmt.Currency(col.Profit))
		v.Rows[3].Cells = append(v.Rows[3].Cells, p.fmt.Margin(col.Margin))
	}
	return v
}
