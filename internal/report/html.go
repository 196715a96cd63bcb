// Package report renders outstanding statements as self-printing HTML
// documents for the print endpoints.
package report

import (
	"bytes"
	_ "embed"
	"html/template"

	outstandingdomain "github.com/freshvale/dairyops/internal/outstanding/domain"
)

//go:embed templates/outstanding.html.tmpl
var outstandingTemplate string

type HTMLRenderer struct {
	tmpl *template.Template
}

func NewHTMLRenderer() (*HTMLRenderer, error) {
	tmpl, err := template.New("outstanding").Parse(outstandingTemplate)
	if err != nil {
		return nil, err
	}
	return &HTMLRenderer{tmpl: tmpl}, nil
}

type outstandingPage struct {
	Title  string
	Report outstandingdomain.Report
}

// RenderOutstanding produces a statement document that triggers the
// browser print dialog on load.
func (r *HTMLRenderer) RenderOutstanding(report outstandingdomain.Report) ([]byte, error) {
	var buf bytes.Buffer
	page := outstandingPage{
		Title:  "Outstanding Statement " + report.StartDate.Format("2006-01-02") + " to " + report.EndDate.Format("2006-01-02"),
		Report: report,
	}
	if err := r.tmpl.Execute(&buf, page); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
