package report

import "html/template"

// Templates are embedded as Go constants and parsed once.

const chartHTML = `<div class="kr-chart" style="margin:18px 0;">
<h3 style="font-size:15px;margin:0 0 8px;">{{.Title}}</h3>
{{range .Bars}}<div class="kr-bar-row" style="margin:6px 0;">
<span class="kr-bar-label" style="display:inline-block;width:110px;font-size:13px;vertical-align:middle;">{{.Label}}</span>
<div class="kr-bar-track" style="display:inline-block;width:65%;background-color:#eeeeee;border-radius:4px;vertical-align:middle;">
<div class="kr-bar" data-value="{{.Value}}" style="{{.Style}}">{{.Text}}&nbsp;</div>
</div>
</div>
{{end}}</div>`

const contentHTML = `{{define "content"}}<h2 class="kr-analysis-heading">{{.AnalysisHeading}}</h2>
{{range .Paragraphs}}<p class="kr-paragraph">{{.}}</p>
{{end}}<h2 class="kr-charts-heading">{{.ChartsHeading}}</h2>
{{range .Charts}}{{.}}
{{end}}<div class="kr-footer">{{.Footer}}</div>{{end}}`

const fullHTML = `<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
</head>
<body style="font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,'PingFang SC','Microsoft YaHei',sans-serif;color:#1a1a2e;line-height:1.7;max-width:720px;margin:0 auto;padding:20px;">
<h1 style="font-size:20px;border-bottom:3px solid #5E9CA0;padding-bottom:8px;">{{.Title}}</h1>
<table class="kr-identity" style="border-collapse:collapse;margin:12px 0;font-size:14px;">
{{range .Identity}}<tr><th style="text-align:left;padding:3px 12px 3px 0;color:#6b7280;font-weight:500;">{{.Label}}</th><td class="kr-field" style="padding:3px 0;">{{.Value}}</td></tr>
{{end}}</table>
{{template "content" .}}
<p class="kr-generated" style="color:#6b7280;font-size:12px;">{{.ReportID}} · {{.GeneratedAt}}</p>
</body>
</html>`

const summaryHTML = `<div class="kr-summary">
{{template "content" .}}
</div>`

var (
	chartTemplate   = template.Must(template.New("chart").Parse(chartHTML))
	fullTemplate    = template.Must(template.Must(template.New("full").Parse(contentHTML)).Parse(fullHTML))
	summaryTemplate = template.Must(template.Must(template.New("summary").Parse(contentHTML)).Parse(summaryHTML))
)
