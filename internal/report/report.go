package report

import (
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/katachat/katareport/internal/locale"
	"github.com/katachat/katareport/pkg/models"
	"github.com/katachat/katareport/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Renderer: narrative, charts and footer into HTML documents
// ════════════════════════════════════════════════════════════════════

// Chart styles.
const (
	StyleCSS = "css"
	StyleSVG = "svg"
)

// ErrMalformedGroup is returned when a group's labels and values differ in
// length.
var ErrMalformedGroup = errors.New("report: labels and values differ in length")

// Documents holds both renderings of one report.
type Documents struct {
	// Full is a standalone HTML document with the identity header.
	Full string
	// Summary is an HTML fragment without any identity fields.
	Summary string
}

// Options control rendering details.
type Options struct {
	Style    string      // StyleCSS (default) or StyleSVG
	ChartCfg ChartConfig // SVG chart config
	Clock    utils.Clock // timestamp source (default: utils.NowSGT)
}

// Renderer renders reports for one template set. It is safe for concurrent
// use.
type Renderer struct {
	set  *locale.Set
	opts Options
}

// NewRenderer returns a renderer for set.
func NewRenderer(set *locale.Set, opts Options) (*Renderer, error) {
	if set == nil {
		return nil, errors.New("report: nil template set")
	}
	switch opts.Style {
	case "":
		opts.Style = StyleCSS
	case StyleCSS, StyleSVG:
	default:
		return nil, fmt.Errorf("report: unknown chart style %q", opts.Style)
	}
	if opts.ChartCfg.Width == 0 {
		opts.ChartCfg = DefaultChartConfig()
	}
	if opts.Clock == nil {
		opts.Clock = utils.NowSGT
	}
	return &Renderer{set: set, opts: opts}, nil
}

// Input is everything one report is built from.
type Input struct {
	ReportID   string
	Identity   models.Identity
	Paragraphs []string
	Groups     []models.MetricGroup
}

// identityRow is one line of the identity header.
type identityRow struct {
	Label string
	Value string
}

// documentData is the template model for both documents.
type documentData struct {
	Lang            string
	Title           string
	ReportID        string
	GeneratedAt     string
	Identity        []identityRow
	AnalysisHeading string
	Paragraphs      []string
	ChartsHeading   string
	Charts          []template.HTML
	Footer          template.HTML
}

// Render produces the full and summary documents.
func (r *Renderer) Render(in Input) (Documents, error) {
	charts, err := r.charts(in.Groups)
	if err != nil {
		return Documents{}, err
	}

	data := documentData{
		Lang:            r.set.Language.String(),
		Title:           r.set.Title,
		ReportID:        in.ReportID,
		GeneratedAt:     utils.FormatDateTime(r.opts.Clock()),
		Identity:        r.identityRows(in.Identity),
		AnalysisHeading: r.set.AnalysisHeading,
		Paragraphs:      in.Paragraphs,
		ChartsHeading:   r.set.ChartsHeading,
		Charts:          charts,
		Footer:          r.set.Footer,
	}

	var full, summary strings.Builder
	if err := fullTemplate.Execute(&full, data); err != nil {
		return Documents{}, fmt.Errorf("executing full template: %w", err)
	}
	if err := summaryTemplate.Execute(&summary, data); err != nil {
		return Documents{}, fmt.Errorf("executing summary template: %w", err)
	}
	return Documents{Full: full.String(), Summary: summary.String()}, nil
}

func (r *Renderer) charts(groups []models.MetricGroup) ([]template.HTML, error) {
	out := make([]template.HTML, 0, len(groups))
	for i, g := range groups {
		if len(g.Labels) != len(g.Values) {
			return nil, fmt.Errorf("%w: %q has %d labels, %d values", ErrMalformedGroup, g.Title, len(g.Labels), len(g.Values))
		}
		items := barItems(g, i)
		switch r.opts.Style {
		case StyleSVG:
			cfg := r.opts.ChartCfg
			cfg.Title = g.Title
			out = append(out, template.HTML(`<div class="kr-chart">`+HorizontalBarChart(items, cfg)+`</div>`))
		default:
			h, err := CSSBarChart(g.Title, items)
			if err != nil {
				return nil, err
			}
			out = append(out, h)
		}
	}
	return out, nil
}

func (r *Renderer) identityRows(id models.Identity) []identityRow {
	l := r.set.Identity
	return []identityRow{
		{l.Name, id.Name},
		{l.ChineseName, id.ChineseName},
		{l.Gender, id.Gender},
		{l.Country, id.Country},
		{l.Birthdate, id.Birthdate},
		{l.Phone, id.Phone},
		{l.Email, id.Email},
		{l.Referrer, id.Referrer},
	}
}

// ════════════════════════════════════════════════════════════════════
// Plain-text renderer
// ════════════════════════════════════════════════════════════════════

// Text renders the report for a terminal, with block-character bars.
func (r *Renderer) Text(in Input) string {
	var sb strings.Builder
	line := strings.Repeat("═", 60)
	thinLine := strings.Repeat("─", 60)

	sb.WriteString("\n" + line + "\n")
	sb.WriteString(fmt.Sprintf("  %s\n", r.set.Title))
	if in.ReportID != "" {
		sb.WriteString(fmt.Sprintf("  %s | %s\n", in.ReportID, utils.FormatDateTime(r.opts.Clock())))
	}
	sb.WriteString(line + "\n")

	for _, row := range r.identityRows(in.Identity) {
		if row.Value != "" {
			sb.WriteString(fmt.Sprintf("  %-14s %s\n", row.Label, row.Value))
		}
	}
	sb.WriteString(thinLine + "\n")

	sb.WriteString(fmt.Sprintf("\n  %s\n\n", r.set.AnalysisHeading))
	for _, p := range in.Paragraphs {
		sb.WriteString("  " + p + "\n\n")
	}
	sb.WriteString(thinLine + "\n")

	for _, g := range in.Groups {
		sb.WriteString(fmt.Sprintf("\n  ■ %s\n", g.Title))
		for i := 0; i < g.Len() && i < len(g.Values); i++ {
			v := g.Values[i]
			bar := strings.Repeat("█", utils.ClampPct(v)/5)
			sb.WriteString(fmt.Sprintf("    %-18s %-20s %s\n", g.Labels[i], bar, utils.FormatPct(v)))
		}
	}
	sb.WriteString("\n" + line + "\n")
	return sb.String()
}

// ════════════════════════════════════════════════════════════════════
// Utility
// ════════════════════════════════════════════════════════════════════

// FormatDuration formats a duration for display.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%.1fm", d.Minutes())
}
