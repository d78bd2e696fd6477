package render_test

import (
	"strings"
	"testing"

	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/domain"
	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/infra/fixtures"
	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/render"

	"github.com/shopspring/decimal"
)

func TestArea_TwoSeriesTwelveLabels(t *testing.T) {
	out := string(render.New(nil).Area(fixtures.EvolutionSeries()))

	if !strings.HasPrefix(out, "<svg") || !strings.HasSuffix(out, "</svg>") {
		t.Fatalf("not an svg document: %.60s", out)
	}
	for _, want := range []string{`series-revenue`, `series-expenses`, render.RevenueColor, render.ExpensesColor, ">Jan<", ">Déc<"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q", want)
		}
	}
	if n := strings.Count(out, `text-anchor="middle"`); n != 12 {
		t.Errorf("expected 12 x labels, got %d", n)
	}
	// max value 17000 → top tick 20000
	if !strings.Contains(out, ">20000<") {
		t.Error("expected a 20000 top grid tick")
	}
}

func TestArea_UsesTickFormatter(t *testing.T) {
	r := render.New(func(d decimal.Decimal) string { return "T" + d.String() })
	out := string(r.Area(fixtures.EvolutionSeries()))
	if !strings.Contains(out, ">T0<") {
		t.Error("tick formatter not applied")
	}
}

func TestArea_EscapesLabels(t *testing.T) {
	pts := []domain.EvolutionPoint{{Label: "<b>", Revenue: decimal.NewFromInt(1), Expenses: decimal.Zero}}
	out := string(render.New(nil).Area(pts))
	if strings.Contains(out, "<b>") {
		t.Error("label was not escaped")
	}
}

func TestArea_Empty(t *testing.T) {
	out := string(render.New(nil).Area(nil))
	if !strings.HasSuffix(out, "</svg>") || strings.Contains(out, "series") {
		t.Errorf("unexpected empty chart %s", out)
	}
}

func slices() []domain.DistributionSlice {
	var out []domain.DistributionSlice
	for _, c := range domain.AllExpenseCategories() {
		out = append(out, domain.DistributionSlice{
			Category:   c,
			Name:       c.Label(),
			Value:      decimal.NewFromInt(100),
			ColorToken: c.ColorToken(),
			Share:      decimal.NewFromInt(20),
		})
	}
	return out
}

func TestRing_OneArcPerSliceInOrder(t *testing.T) {
	out := string(render.New(nil).Ring(slices()))

	if n := strings.Count(out, "data-category="); n != 5 {
		t.Fatalf("expected 5 arcs, got %d", n)
	}
	last := -1
	for _, c := range domain.AllExpenseCategories() {
		i := strings.Index(out, `data-category="`+c.Key()+`"`)
		if i < last {
			t.Errorf("arc %s out of order", c.Key())
		}
		last = i
		if !strings.Contains(out, c.ColorToken()) {
			t.Errorf("missing color %s", c.ColorToken())
		}
	}
	if !strings.Contains(out, "Abonnements (20.0%)") {
		t.Error("legend missing share")
	}
}

func TestRing_SingleSliceFullTurn(t *testing.T) {
	one := slices()[:1]
	out := string(render.New(nil).Ring(one))
	if strings.Contains(out, "NaN") {
		t.Fatal("full turn produced NaN")
	}
	if strings.Count(out, "A") < 4 {
		t.Error("expected the full ring to be drawn with two half arcs per radius")
	}
}

func TestRing_EmptyDrawsPlaceholder(t *testing.T) {
	out := string(render.New(nil).Ring(nil))
	if !strings.Contains(out, "<circle") {
		t.Error("expected placeholder ring")
	}
}
