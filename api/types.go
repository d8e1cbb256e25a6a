package api

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status       string   `json:"status"`
	Version      string   `json:"version"`
	Time         string   `json:"time"`
	TemplateSets []string `json:"template_sets"`
}

// TemplateSetInfo describes one template set in GET /api/v1/template-sets.
type TemplateSetInfo struct {
	ID       string   `json:"id"`
	Language string   `json:"language"`
	Title    string   `json:"title"`
	Groups   []string `json:"groups"`
	Default  bool     `json:"default"`
}
