// Package report renders profile reports: the full HTML document that is
// mailed out, the summary fragment returned to the browser, a plain-text
// view for the terminal and an optional PDF export.
package report

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/katachat/katareport/pkg/models"
	"github.com/katachat/katareport/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Bar charts
// ════════════════════════════════════════════════════════════════════

// Palette is cycled by group index: every bar of group i uses
// Palette[i%len(Palette)].
var Palette = []string{"#5E9CA0", "#FFA500", "#9966CC"}

// PaletteColor returns the bar color for the i-th group.
func PaletteColor(i int) string {
	return Palette[i%len(Palette)]
}

// ChartConfig holds rendering parameters for SVG charts.
type ChartConfig struct {
	Width       int    // SVG width in pixels (default: 520)
	BarHeight   int    // bar thickness (default: 22)
	BarGap      int    // gap between bars (default: 10)
	MarginTop   int    // room for the title (default: 36)
	MarginLeft  int    // room for labels (default: 110)
	MarginRight int    // room for value text (default: 50)
	BgColor     string // background color (default: "#ffffff")
	TrackColor  string // empty track color (default: "#eeeeee")
	TextColor   string // label color (default: "#333333")
	FontSize    int    // label font size (default: 12)
	Title       string // chart title
}

// DefaultChartConfig returns sensible defaults for chart rendering.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:       520,
		BarHeight:   22,
		BarGap:      10,
		MarginTop:   36,
		MarginLeft:  110,
		MarginRight: 50,
		BgColor:     "#ffffff",
		TrackColor:  "#eeeeee",
		TextColor:   "#333333",
		FontSize:    12,
	}
}

// height returns the SVG height needed for n bars.
func (c ChartConfig) height(n int) int {
	return c.MarginTop + n*(c.BarHeight+c.BarGap) + c.BarGap
}

// BarItem is one bar. Value is shown verbatim; only the bar width is
// clamped to 0..100.
type BarItem struct {
	Label string
	Value int
	Color string
}

// barItems turns a metric group into bars colored for its position.
func barItems(g models.MetricGroup, index int) []BarItem {
	color := PaletteColor(index)
	items := make([]BarItem, g.Len())
	for i := range items {
		items[i] = BarItem{Label: g.Labels[i], Value: g.Values[i], Color: color}
	}
	return items
}

// HorizontalBarChart generates an inline SVG horizontal bar chart on a
// fixed 0..100 scale.
func HorizontalBarChart(items []BarItem, cfg ChartConfig) string {
	if cfg.Width == 0 {
		title := cfg.Title
		cfg = DefaultChartConfig()
		cfg.Title = title
	}
	if len(items) == 0 {
		return emptySVG(cfg, "No data")
	}

	height := cfg.height(len(items))
	plotW := float64(cfg.Width - cfg.MarginLeft - cfg.MarginRight)

	var sb strings.Builder
	sb.WriteString(svgHeader(cfg.Width, height))
	sb.WriteString(fmt.Sprintf(`<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`,
		cfg.Width, height, cfg.BgColor))
	if cfg.Title != "" {
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="22" font-size="14" font-weight="bold" fill="%s" text-anchor="middle">%s</text>`,
			cfg.Width/2, cfg.TextColor, escapeXML(cfg.Title)))
	}

	for i, item := range items {
		y := cfg.MarginTop + cfg.BarGap + i*(cfg.BarHeight+cfg.BarGap)
		w := plotW * float64(utils.ClampPct(item.Value)) / 100
		color := item.Color
		if color == "" {
			color = PaletteColor(0)
		}

		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-size="%d" fill="%s" text-anchor="end">%s</text>`,
			cfg.MarginLeft-8, y+cfg.BarHeight/2+4, cfg.FontSize, cfg.TextColor, escapeXML(item.Label)))
		sb.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="%.1f" height="%d" fill="%s" rx="3"/>`,
			cfg.MarginLeft, y, plotW, cfg.BarHeight, cfg.TrackColor))
		sb.WriteString(fmt.Sprintf(`<rect class="bar" x="%d" y="%d" width="%.1f" height="%d" fill="%s" rx="3" data-value="%d"/>`,
			cfg.MarginLeft, y, w, cfg.BarHeight, color, item.Value))
		sb.WriteString(fmt.Sprintf(`<text class="bar-value" x="%.1f" y="%d" font-size="%d" fill="%s">%s</text>`,
			float64(cfg.MarginLeft)+w+5, y+cfg.BarHeight/2+4, cfg.FontSize, cfg.TextColor, utils.FormatPct(item.Value)))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// cssBar is the template model for one CSS bar.
type cssBar struct {
	Label string
	Value int
	Text  string
	Style template.CSS
}

// cssChart is the template model for one CSS chart.
type cssChart struct {
	Title string
	Bars  []cssBar
}

// CSSBarChart renders bars as nested divs with inline styles, which survive
// most mail clients.
func CSSBarChart(title string, items []BarItem) (template.HTML, error) {
	chart := cssChart{Title: title}
	for _, item := range items {
		color := item.Color
		if color == "" {
			color = PaletteColor(0)
		}
		chart.Bars = append(chart.Bars, cssBar{
			Label: item.Label,
			Value: item.Value,
			Text:  utils.FormatPct(item.Value),
			Style: template.CSS(fmt.Sprintf(
				"width:%d%%;background-color:%s;color:#ffffff;padding:4px 0;border-radius:4px;text-align:right;white-space:nowrap;",
				utils.ClampPct(item.Value), color)),
		})
	}

	var sb strings.Builder
	if err := chartTemplate.Execute(&sb, chart); err != nil {
		return "", fmt.Errorf("executing chart template: %w", err)
	}
	return template.HTML(sb.String()), nil
}

// ════════════════════════════════════════════════════════════════════
// SVG Helpers
// ════════════════════════════════════════════════════════════════════

func svgHeader(width, height int) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`,
		width, height, width, height)
}

func emptySVG(cfg ChartConfig, msg string) string {
	w, h := cfg.Width, 120
	if w == 0 {
		w = 400
	}
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"><rect width="%d" height="%d" fill="#f5f5f5"/><text x="%d" y="%d" text-anchor="middle" fill="#999" font-size="14">%s</text></svg>`,
		w, h, w, h, w/2, h/2, escapeXML(msg))
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}
