package server

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strconv"

	"github.com/KaramelBytes/happydash/internal/analysis"
	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>World Happiness Dashboard</title>
</head>
<body>
<h1>World Happiness Dashboard</h1>
{{.Body}}
<p><a href="/api/options">options</a> · <a href="/api/dashboard{{.Query}}">data</a></p>
</body>
</html>
`))

// renderPage converts the report markdown to HTML. Raw HTML is dropped and
// only links with safe schemes are rendered.
func renderPage(r *analysis.Report) ([]byte, error) {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags | mdhtml.SkipHTML | mdhtml.Safelink})
	body := markdown.ToHTML([]byte(r.Markdown()), p, renderer)

	var buf bytes.Buffer
	err := pageTmpl.Execute(&buf, struct {
		Body  template.HTML
		Query string
	}{Body: template.HTML(body), Query: query(r.Spec)})
	if err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return buf.Bytes(), nil
}

// query rebuilds the query string for the data link.
func query(spec analysis.FilterSpec) string {
	v := url.Values{}
	for _, y := range spec.Years {
		v.Add("year", strconv.Itoa(y))
	}
	for _, c := range spec.Countries {
		v.Add("country", c)
	}
	v.Set("min", strconv.FormatFloat(spec.ScoreRange.Low, 'f', -1, 64))
	v.Set("max", strconv.FormatFloat(spec.ScoreRange.High, 'f', -1, 64))
	return "?" + v.Encode()
}
