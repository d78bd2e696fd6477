// Package render draws the dashboard charts as inline SVG.
package render

import (
	"fmt"
	"html/template"
	"math"
	"strings"

	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/domain"

	"github.com/shopspring/decimal"
)

// Series colors of the evolution chart.
const (
	RevenueColor  = "#10b981"
	ExpensesColor = "#ef4444"
	gridColor     = "#e5e7eb"
	axisTextColor = "#6b7280"
)

// SVG renders charts at a fixed viewBox size.
type SVG struct {
	Width  int
	Height int
	// FormatTick formats y-axis tick values; defaults to the plain integer.
	FormatTick func(decimal.Decimal) string
}

// New creates a renderer with the dashboard's default chart size.
func New(formatTick func(decimal.Decimal) string) *SVG {
	return &SVG{Width: 640, Height: 300, FormatTick: formatTick}
}

type padding struct{ top, right, bottom, left float64 }

var areaPad = padding{top: 16, right: 16, bottom: 32, left: 64}

const gridLines = 4

// ============================================================
// Evolution (two-series area chart)
// ============================================================

// Area draws revenue and expenses as two filled areas on a shared x axis.
func (s *SVG) Area(points []domain.EvolutionPoint) template.HTML {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" role="img" aria-label="Évolution revenus et charges" class="chart chart-area">`, s.Width, s.Height)

	if len(points) == 0 {
		b.WriteString(`</svg>`)
		return template.HTML(b.String())
	}

	plotW := float64(s.Width) - areaPad.left - areaPad.right
	plotH := float64(s.Height) - areaPad.top - areaPad.bottom
	baseY := areaPad.top + plotH

	maxV := 0.0
	for _, p := range points {
		maxV = math.Max(maxV, p.Revenue.InexactFloat64())
		maxV = math.Max(maxV, p.Expenses.InexactFloat64())
	}
	top := niceCeil(maxV)

	x := func(i int) float64 {
		if len(points) == 1 {
			return areaPad.left + plotW/2
		}
		return areaPad.left + float64(i)*plotW/float64(len(points)-1)
	}
	y := func(v decimal.Decimal) float64 {
		if top == 0 {
			return baseY
		}
		return baseY - v.InexactFloat64()/top*plotH
	}

	// grid and y ticks
	b.WriteString(`<g class="grid">`)
	for i := 0; i <= gridLines; i++ {
		tick := top * float64(i) / gridLines
		gy := baseY - plotH*float64(i)/gridLines
		fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-dasharray="3 3"/>`,
			areaPad.left, gy, areaPad.left+plotW, gy, gridColor)
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" text-anchor="end" font-size="11" fill="%s">%s</text>`,
			areaPad.left-8, gy+4, axisTextColor, template.HTMLEscapeString(s.tick(tick)))
	}
	b.WriteString(`</g>`)

	// x labels
	b.WriteString(`<g class="x-axis">`)
	for i, p := range points {
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" text-anchor="middle" font-size="11" fill="%s">%s</text>`,
			x(i), baseY+20, axisTextColor, template.HTMLEscapeString(p.Label))
	}
	b.WriteString(`</g>`)

	s.series(&b, "revenue", RevenueColor, points, x, y, baseY, func(p domain.EvolutionPoint) decimal.Decimal { return p.Revenue })
	s.series(&b, "expenses", ExpensesColor, points, x, y, baseY, func(p domain.EvolutionPoint) decimal.Decimal { return p.Expenses })

	b.WriteString(`</svg>`)
	return template.HTML(b.String())
}

func (s *SVG) series(b *strings.Builder, name, color string, points []domain.EvolutionPoint,
	x func(int) float64, y func(decimal.Decimal) float64, baseY float64,
	value func(domain.EvolutionPoint) decimal.Decimal) {

	var line strings.Builder
	for i, p := range points {
		if i > 0 {
			line.WriteByte(' ')
		}
		fmt.Fprintf(&line, "%.1f,%.1f", x(i), y(value(p)))
	}

	fmt.Fprintf(b, `<g class="series series-%s">`, name)
	fmt.Fprintf(b, `<path d="M%.1f,%.1f L%s L%.1f,%.1f Z" fill="%s" fill-opacity="0.3" stroke="none"/>`,
		x(0), baseY, strings.ReplaceAll(line.String(), " ", " L"), x(len(points)-1), baseY, color)
	fmt.Fprintf(b, `<polyline points="%s" fill="none" stroke="%s" stroke-width="2"/>`, line.String(), color)
	b.WriteString(`</g>`)
}

func (s *SVG) tick(v float64) string {
	d := decimal.NewFromFloat(v).Round(0)
	if s.FormatTick != nil {
		return s.FormatTick(d)
	}
	return d.String()
}

// niceCeil rounds v up to 1, 2, 2.5 or 5 times a power of ten, so grid
// ticks land on round values.
func niceCeil(v float64) float64 {
	if v <= 0 {
		return 0
	}
	exp := math.Pow(10, math.Floor(math.Log10(v)))
	for _, m := range []float64{1, 2, 2.5, 5, 10} {
		if m*exp >= v {
			return m * exp
		}
	}
	return 10 * exp
}

// ============================================================
// Distribution (donut)
// ============================================================

const (
	ringOuter = 0.9
	ringInner = 0.55
)

// Ring draws one donut arc per slice, in slice order, with a legend.
func (s *SVG) Ring(slices []domain.DistributionSlice) template.HTML {
	size := float64(s.Height)
	cx, cy := size/2, size/2
	outer := size / 2 * ringOuter
	inner := size / 2 * ringInner

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" role="img" aria-label="Répartition des charges" class="chart chart-ring">`, s.Width, s.Height)

	total := 0.0
	for _, sl := range slices {
		if sl.Value.IsPositive() {
			total += sl.Value.InexactFloat64()
		}
	}

	b.WriteString(`<g class="arcs">`)
	if total > 0 {
		angle := -math.Pi / 2
		for _, sl := range slices {
			if !sl.Value.IsPositive() {
				continue
			}
			sweep := sl.Value.InexactFloat64() / total * 2 * math.Pi
			fmt.Fprintf(&b, `<path d="%s" fill="%s" fill-rule="evenodd" data-category="%s"><title>%s</title></path>`,
				arcPath(cx, cy, outer, inner, angle, sweep), sl.ColorToken,
				sl.Category.Key(), template.HTMLEscapeString(sl.Name))
			angle += sweep
		}
	} else {
		fmt.Fprintf(&b, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="none" stroke="%s" stroke-width="%.1f"/>`,
			cx, cy, (outer+inner)/2, gridColor, outer-inner)
	}
	b.WriteString(`</g>`)

	// legend
	b.WriteString(`<g class="legend">`)
	lx := size + 16
	for i, sl := range slices {
		ly := 24 + float64(i)*24
		fmt.Fprintf(&b, `<rect x="%.1f" y="%.1f" width="12" height="12" rx="2" fill="%s"/>`, lx, ly-10, sl.ColorToken)
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" font-size="12">%s (%s%%)</text>`,
			lx+18, ly, template.HTMLEscapeString(sl.Name), sl.Share.StringFixed(1))
	}
	b.WriteString(`</g>`)

	b.WriteString(`</svg>`)
	return template.HTML(b.String())
}

// arcPath returns the path of a donut segment starting at angle a0 and
// spanning sweep radians. A full turn is drawn as two half arcs.
func arcPath(cx, cy, outer, inner, a0, sweep float64) string {
	if sweep >= 2*math.Pi-1e-9 {
		return fmt.Sprintf(
			"M%.2f,%.2f A%.2f,%.2f 0 1 1 %.2f,%.2f A%.2f,%.2f 0 1 1 %.2f,%.2f Z "+
				"M%.2f,%.2f A%.2f,%.2f 0 1 0 %.2f,%.2f A%.2f,%.2f 0 1 0 %.2f,%.2f Z",
			cx, cy-outer, outer, outer, cx, cy+outer, outer, outer, cx, cy-outer,
			cx, cy-inner, inner, inner, cx, cy+inner, inner, inner, cx, cy-inner,
		)
	}

	a1 := a0 + sweep
	large := 0
	if sweep > math.Pi {
		large = 1
	}
	ox0, oy0 := cx+outer*math.Cos(a0), cy+outer*math.Sin(a0)
	ox1, oy1 := cx+outer*math.Cos(a1), cy+outer*math.Sin(a1)
	ix1, iy1 := cx+inner*math.Cos(a1), cy+inner*math.Sin(a1)
	ix0, iy0 := cx+inner*math.Cos(a0), cy+inner*math.Sin(a0)

	return fmt.Sprintf("M%.2f,%.2f A%.2f,%.2f 0 %d 1 %.2f,%.2f L%.2f,%.2f A%.2f,%.2f 0 %d 0 %.2f,%.2f Z",
		ox0, oy0, outer, outer, large, ox1, oy1, ix1, iy1, inner, inner, large, ix0, iy0)
}
