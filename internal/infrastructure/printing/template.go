package printing

import (
	"bytes"
	"html/template"
	"time"

	analyticsapp "github.com/bizdir/backend/internal/application/analytics"
	"github.com/bizdir/backend/internal/domain/analytics"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

var funcMap = template.FuncMap{
	"formatInt":      formatInt,
	"formatChange":   signedChange,
	"formatDateTime": formatDateTime,
	"title":          func(s string) string { return cases.Title(language.English).String(s) },
	"inc":            func(i int) int { return i + 1 },
	"rankedSection": func(heading string, rows []analytics.Ranked) rankedSection {
		return rankedSection{Heading: heading, Rows: rows}
	},
}

type rankedSection struct {
	Heading string
	Rows    []analytics.Ranked
}

var summaryTemplate = template.Must(template.New("summary").Funcs(funcMap).Parse(summaryHTML))

// RenderSummaryHTML renders the printable HTML page of report
func RenderSummaryHTML(report analyticsapp.ExportReport) (string, error) {
	var buf bytes.Buffer
	if err := summaryTemplate.Execute(&buf, report); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// formatInt groups thousands: 12345 -> "12,345"
func formatInt(v int64) string {
	return printer.Sprintf("%d", v)
}

// formatChange renders a percentage change with its sign: 12.5 -> "+12.5%"
func formatChange(v float64) string {
	d := decimal.NewFromFloat(v).Round(1)
	s := d.StringFixed(1) + "%"
	if d.IsPositive() {
		return "+" + s
	}
	return s
}

// signedChange marks the formatted change as safe so the leading + is not escaped.
// The value only ever holds digits, a sign, a dot and %.
func signedChange(v float64) template.HTML {
	return template.HTML(formatChange(v))
}

func formatDateTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04 MST")
}

const summaryHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; font-size: 12px; color: #222; }
h1 { font-size: 20px; margin-bottom: 4px; }
h2 { font-size: 14px; margin-top: 24px; border-bottom: 1px solid #ccc; }
.meta { color: #666; }
table { width: 100%; border-collapse: collapse; margin-top: 8px; }
th, td { text-align: left; padding: 4px 6px; border-bottom: 1px solid #eee; }
td.num, th.num { text-align: right; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{with .Summary}}<p class="meta">{{.From}} to {{.To}} ({{.Days}} days, {{title .Source}} data)</p>{{end}}
<p class="meta">Generated {{formatDateTime .GeneratedAt}}</p>
{{with .Summary}}
<h2>Totals</h2>
<table>
<tr><th>Metric</th><th class="num">Current</th><th class="num">Previous</th><th class="num">Change</th></tr>
<tr><td>Page views</td><td class="num">{{formatInt .Totals.PageViews}}</td><td class="num">{{formatInt .Previous.PageViews}}</td><td class="num">{{formatChange .Changes.PageViews}}</td></tr>
<tr><td>Listing views</td><td class="num">{{formatInt .Totals.ListingViews}}</td><td class="num">{{formatInt .Previous.ListingViews}}</td><td class="num">{{formatChange .Changes.ListingViews}}</td></tr>
<tr><td>Searches</td><td class="num">{{formatInt .Totals.Searches}}</td><td class="num">{{formatInt .Previous.Searches}}</td><td class="num">{{formatChange .Changes.Searches}}</td></tr>
<tr><td>Unique visitors</td><td class="num">{{formatInt .Totals.UniqueVisitors}}</td><td class="num">{{formatInt .Previous.UniqueVisitors}}</td><td class="num">{{formatChange .Changes.UniqueVisitors}}</td></tr>
</table>
{{template "ranked" (rankedSection "Top pages" .TopPages)}}
{{template "ranked" (rankedSection "Top listings" .TopListings)}}
{{template "ranked" (rankedSection "Top searches" .TopSearches)}}
{{if .Daily}}
<h2>Daily trend</h2>
<table>
<tr><th>Date</th><th class="num">Page views</th><th class="num">Listing views</th><th class="num">Searches</th></tr>
{{range .Daily}}<tr><td>{{.Date}}</td><td class="num">{{formatInt .PageViews}}</td><td class="num">{{formatInt .ListingViews}}</td><td class="num">{{formatInt .Searches}}</td></tr>
{{end}}</table>
{{end}}
{{end}}
</body>
</html>
{{define "ranked"}}{{if .Rows}}
<h2>{{.Heading}}</h2>
<table>
<tr><th>#</th><th>Item</th><th class="num">Count</th></tr>
{{range $i, $r := .Rows}}<tr><td>{{inc $i}}</td><td>{{if $r.Label}}{{$r.Label}}{{else}}{{$r.Key}}{{end}}</td><td class="num">{{formatInt $r.Count}}</td></tr>
{{end}}</table>
{{end}}{{end}}`
