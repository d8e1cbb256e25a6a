package models

import "time"

// MetricGroup is a named set of labeled percentage values rendered as one chart.
// Values are independent samples; they are not required to sum to 100.
type MetricGroup struct {
	Title  string   `json:"title"`
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
}

// Len returns the number of labeled values in the group.
func (g MetricGroup) Len() int { return len(g.Labels) }

// Report is the per-request result of the pipeline. It is never persisted.
type Report struct {
	ID          string        `json:"report_id"`
	TemplateSet string        `json:"template_set"`
	Age         int           `json:"age"`
	Birthdate   time.Time     `json:"birthdate"`
	Paragraphs  []string      `json:"paragraphs"`
	Groups      []MetricGroup `json:"metrics"`
	Footer      string        `json:"-"`
	CreatedAt   time.Time     `json:"created_at"`
}

// AnalyzeResponse is the JSON body returned to the widget.
type AnalyzeResponse struct {
	ReportID string        `json:"report_id,omitempty"`
	Metrics  []MetricGroup `json:"metrics"`
	Analysis string        `json:"analysis"`
}

// ErrorResponse is the JSON body returned on failure.
type ErrorResponse struct {
	Error string `json:"error"`
}
